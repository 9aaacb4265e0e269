// Package offline queues writes while the backing store is unreachable and
// replays them as a single batch once connectivity returns.
package offline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
)

// QueuedOperation is one write captured while offline.
type QueuedOperation struct {
	ID         string               `json:"id"`
	Type       database.BatchOpType `json:"type"`
	Collection string               `json:"collection"`
	DocumentID string               `json:"document_id"`
	Data       database.Document    `json:"data,omitempty"`
	QueuedAt   time.Time            `json:"queued_at"`
}

// Options configures the manager.
type Options struct {
	ConflictPolicy string
	SyncStrategy   string
	// MaxPending bounds the queue; further writes fail once reached.
	// Default 1000.
	MaxPending int
	Logger     logger.Logger
}

// Manager tracks offline state and the pending write queue. All methods are
// safe for concurrent use.
type Manager struct {
	provider database.Provider
	policy   database.ConflictPolicy
	strategy database.SyncStrategy
	max      int
	logger   logger.Logger

	mu      sync.Mutex
	offline bool
	queue   []QueuedOperation
}

// NewManager creates an offline manager over the provider.
func NewManager(provider database.Provider, opts Options) *Manager {
	if opts.MaxPending <= 0 {
		opts.MaxPending = 1000
	}
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	policy := database.ConflictPolicy(opts.ConflictPolicy)
	if policy == "" {
		policy = database.ConflictServer
	}
	strategy := database.SyncStrategy(opts.SyncStrategy)
	if strategy == "" {
		strategy = database.SyncBatch
	}
	return &Manager{
		provider: provider,
		policy:   policy,
		strategy: strategy,
		max:      opts.MaxPending,
		logger:   log,
	}
}

// EnableOfflineMode starts queuing writes instead of sending them. Enabling
// twice is a no-op.
func (m *Manager) EnableOfflineMode(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offline {
		return nil
	}
	m.offline = true
	if oc, ok := m.provider.(database.OfflineCapable); ok {
		if err := oc.EnableOffline(ctx, database.OfflineOptions{
			Conflicts:  m.policy,
			Strategy:   m.strategy,
			MaxPending: m.max,
		}); err != nil {
			m.offline = false
			return err
		}
	}
	m.logger.Info("offline mode enabled", "policy", string(m.policy), "strategy", string(m.strategy))
	return nil
}

// DisableOfflineMode stops queuing new writes. Pending operations stay in
// the queue until SyncPendingOperations is called; disabling never flushes.
func (m *Manager) DisableOfflineMode(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.offline {
		return nil
	}
	m.offline = false
	if oc, ok := m.provider.(database.OfflineCapable); ok {
		if err := oc.DisableOffline(ctx); err != nil {
			return err
		}
	}
	m.logger.Info("offline mode disabled", "pending", len(m.queue))
	return nil
}

// Offline reports whether writes are currently being queued.
func (m *Manager) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

// Pending returns a copy of the queued operations in enqueue order.
func (m *Manager) Pending() []QueuedOperation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]QueuedOperation, len(m.queue))
	copy(out, m.queue)
	return out
}

// QueueOperation captures a write for later replay. Fails when offline mode
// is off or the queue is full.
func (m *Manager) QueueOperation(opType database.BatchOpType, collection, id string, data database.Document) (*QueuedOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.offline {
		return nil, fmt.Errorf("offline mode is not enabled")
	}
	if len(m.queue) >= m.max {
		return nil, fmt.Errorf("offline queue is full (%d pending)", m.max)
	}
	op := QueuedOperation{
		ID:         uuid.NewString(),
		Type:       opType,
		Collection: collection,
		DocumentID: id,
		Data:       data.Clone(),
		QueuedAt:   time.Now().UTC(),
	}
	m.queue = append(m.queue, op)
	return &op, nil
}

// SyncPendingOperations replays the queue against the provider as one batch
// in enqueue order. On success the queue is cleared; on any failure the
// queue is kept intact so the flush can be retried.
func (m *Manager) SyncPendingOperations(ctx context.Context) (*database.SyncResult, error) {
	m.mu.Lock()
	pending := make([]QueuedOperation, len(m.queue))
	copy(pending, m.queue)
	m.mu.Unlock()

	if len(pending) == 0 {
		return &database.SyncResult{}, nil
	}

	batch := make([]database.BatchOperation, len(pending))
	for i, op := range pending {
		batch[i] = database.BatchOperation{
			Type:       op.Type,
			Collection: op.Collection,
			ID:         op.DocumentID,
			Data:       op.Data,
		}
	}

	err := m.provider.Batch(ctx, batch)
	if err != nil {
		// The whole queue stays pending for the retry, so nothing counts
		// as synced yet, even operations the partial batch applied.
		result := &database.SyncResult{}
		if batchErr, ok := database.AsBatchError(err); ok {
			for _, f := range batchErr.Failed {
				result.Errors = append(result.Errors, database.SyncError{
					OperationID: pending[f.Index].ID,
					Collection:  f.Collection,
					ID:          f.ID,
					Err:         f.Err.Error(),
				})
			}
		}
		m.logger.Warn("offline sync failed, queue retained", "pending", len(pending), "error", err.Error())
		return result, err
	}

	m.mu.Lock()
	// Drop only what was flushed; writes queued during the flush survive.
	m.queue = m.queue[len(pending):]
	m.mu.Unlock()

	m.logger.Info("offline queue flushed", "synced", len(pending))
	return &database.SyncResult{Synced: len(pending)}, nil
}

// ResolveConflict applies the configured policy to a client/server document
// pair and returns the winning version together with its record. Manual
// policy merges server state under client changes.
func (m *Manager) ResolveConflict(collection, id string, client, server database.Document) (database.Document, database.ConflictRecord) {
	record := database.ConflictRecord{
		Collection: collection,
		ID:         id,
		Client:     client.Clone(),
		Server:     server.Clone(),
		Winner:     m.policy,
	}
	switch m.policy {
	case database.ConflictClient:
		return client.Clone(), record
	case database.ConflictServer:
		return server.Clone(), record
	default:
		return server.Merge(client), record
	}
}
