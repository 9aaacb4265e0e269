// Package memory implements the storage contract with an in-process engine.
// It is the reference provider: every contract semantic (merge updates,
// idempotent delete, monotonic subscription snapshots, best-effort batches)
// is implemented literally, which makes it the fixture the contract tests and
// the migration engine run against. It is also a usable engine for tests and
// local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/metrics"
)

// Provider is an in-process document store guarded by a single RWMutex.
// Batches are applied best-effort sequentially; the engine declares no batch
// atomicity.
type Provider struct {
	mu          sync.RWMutex
	collections map[string]map[string]database.Document
	subs        map[uint64]*subscription
	nextSubID   uint64

	connected     bool
	lastConnected time.Time
	offline       bool
	offlineOpts   database.OfflineOptions

	recorder *metrics.QueryRecorder
	log      logger.Logger
}

// Options configures the memory provider.
type Options struct {
	// Recorder receives query statistics. Optional; metrics are skipped
	// when nil.
	Recorder *metrics.QueryRecorder
	Logger   logger.Logger
}

// Cosa fa: crea un provider in-memory, disconnesso finché non si chiama Connect.
// Cosa NON fa: non persiste nulla su disco.
// Esempio minimo: p := memory.New(memory.Options{})
func New(opts Options) *Provider {
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Provider{
		collections: make(map[string]map[string]database.Document),
		subs:        make(map[uint64]*subscription),
		recorder:    opts.Recorder,
		log:         log,
	}
}

// Name returns the engine identifier.
func (p *Provider) Name() string { return "memory" }

// Create inserts a document, generating an id when none is given.
func (p *Provider) Create(ctx context.Context, collection string, doc database.Document, id string) (database.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	stored, err := p.createLocked(collection, doc, id)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	p.notifyLocked(collection)
	p.mu.Unlock()

	return stored.Clone(), nil
}

func (p *Provider) createLocked(collection string, doc database.Document, id string) (database.Document, error) {
	if id == "" {
		id = uuid.NewString()
	}
	docs := p.collections[collection]
	if docs == nil {
		docs = make(map[string]database.Document)
		p.collections[collection] = docs
	}
	if _, exists := docs[id]; exists {
		return nil, &database.ConflictError{Collection: collection, ID: id}
	}

	stored := doc.Clone()
	if stored == nil {
		stored = database.Document{}
	}
	stored["id"] = id
	docs[id] = stored
	return stored, nil
}

// Read fetches a document by id. Absent documents yield (nil, nil).
func (p *Provider) Read(ctx context.Context, collection, id string) (database.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	doc, ok := p.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return doc.Clone(), nil
}

// Update merges patch into an existing document.
func (p *Provider) Update(ctx context.Context, collection, id string, patch database.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if err := p.updateLocked(collection, id, patch); err != nil {
		p.mu.Unlock()
		return err
	}
	p.notifyLocked(collection)
	p.mu.Unlock()
	return nil
}

func (p *Provider) updateLocked(collection, id string, patch database.Document) error {
	docs := p.collections[collection]
	current, ok := docs[id]
	if !ok {
		return &database.NotFoundError{Collection: collection, ID: id}
	}
	merged := current.Merge(patch)
	merged["id"] = id
	docs[id] = merged
	return nil
}

// Delete removes a document. Deleting a missing id succeeds.
func (p *Provider) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if docs, ok := p.collections[collection]; ok {
		delete(docs, id)
	}
	p.notifyLocked(collection)
	p.mu.Unlock()
	return nil
}

// Query evaluates q against the collection. No matches yields an empty slice.
func (p *Provider) Query(ctx context.Context, collection string, q database.Query) ([]database.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	p.mu.RLock()
	out := evaluate(p.collections[collection], q)
	p.mu.RUnlock()

	if p.recorder != nil {
		p.recorder.ObserveQuery(collection, q.FilterFields(), time.Since(start))
	}
	return out, nil
}

// Count returns the number of documents matching the conditions.
func (p *Provider) Count(ctx context.Context, collection string, where []database.Condition) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q := database.Query{Where: where}
	if err := q.Validate(); err != nil {
		return 0, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	var n int64
	for _, doc := range p.collections[collection] {
		if matchAll(doc, where) {
			n++
		}
	}
	return n, nil
}

// Batch applies operations sequentially. Failures do not roll back earlier
// operations; partial application is reported as a *BatchError.
func (p *Provider) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	var (
		applied []int
		failed  []*database.OperationError
		touched = make(map[string]bool)
	)
	for i, op := range ops {
		var err error
		switch op.Type {
		case database.BatchCreate:
			_, err = p.createLocked(op.Collection, op.Data, op.ID)
		case database.BatchUpdate:
			err = p.updateLocked(op.Collection, op.ID, op.Data)
		case database.BatchDelete:
			if docs, ok := p.collections[op.Collection]; ok {
				delete(docs, op.ID)
			}
		default:
			err = &database.ValidationError{Reason: "unknown batch operation type " + string(op.Type)}
		}
		if err != nil {
			failed = append(failed, &database.OperationError{
				Index:      i,
				Collection: op.Collection,
				ID:         op.ID,
				Err:        err,
			})
			continue
		}
		applied = append(applied, i)
		touched[op.Collection] = true
	}
	for collection := range touched {
		p.notifyLocked(collection)
	}
	p.mu.Unlock()

	if len(failed) > 0 {
		return &database.BatchError{Applied: applied, Failed: failed}
	}
	return nil
}

// Connect marks the engine connected. Idempotent; a second call does not
// refresh lastConnected.
func (p *Provider) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	if !p.connected {
		p.connected = true
		p.lastConnected = time.Now()
	}
	p.mu.Unlock()
	return nil
}

// Disconnect closes the provider and stops all subscriptions.
func (p *Provider) Disconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.connected = false
	subs := make([]*subscription, 0, len(p.subs))
	for _, s := range p.subs {
		subs = append(subs, s)
	}
	p.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	return nil
}

// Connected reports the connection flag.
func (p *Provider) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// Status returns the current connection state.
func (p *Provider) Status(ctx context.Context) database.ConnectionStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return database.ConnectionStatus{
		Connected:     p.connected,
		Provider:      p.Name(),
		LastConnected: p.lastConnected,
		Offline:       p.offline,
	}
}

// EnableOffline flags the engine as accepting writes while disconnected.
func (p *Provider) EnableOffline(ctx context.Context, opts database.OfflineOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.offline = true
	p.offlineOpts = opts
	p.mu.Unlock()
	p.log.Info("offline mode enabled", "conflicts", string(opts.Conflicts), "strategy", string(opts.Strategy))
	return nil
}

// DisableOffline returns the engine to online-only mode.
func (p *Provider) DisableOffline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.offline = false
	p.mu.Unlock()
	return nil
}

// SyncOffline is a no-op for the memory engine: it buffers nothing itself,
// offline writes are queued by the sync manager.
func (p *Provider) SyncOffline(ctx context.Context) (database.SyncResult, error) {
	if err := ctx.Err(); err != nil {
		return database.SyncResult{}, err
	}
	return database.SyncResult{}, nil
}

// QueryMetrics returns the recorded performance snapshot for a collection.
func (p *Provider) QueryMetrics(ctx context.Context, collection string) (database.QueryMetrics, error) {
	if err := ctx.Err(); err != nil {
		return database.QueryMetrics{}, err
	}
	if p.recorder == nil {
		return database.QueryMetrics{Collection: collection, FieldFrequency: map[string]int{}}, nil
	}
	return database.MetricsFromSnapshot(p.recorder.Snapshot(collection)), nil
}

// Optimize is a no-op for the memory engine.
func (p *Provider) Optimize(ctx context.Context, collection string) error {
	return ctx.Err()
}

// Len reports the number of documents in a collection. Test helper.
func (p *Provider) Len(collection string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.collections[collection])
}
