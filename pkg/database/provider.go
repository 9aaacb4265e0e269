package database

import "context"

// Subscription is the handle for a real-time subscription. Unsubscribe is
// safe to call from any goroutine and more than once; the second and later
// calls are no-ops. Pause suppresses callback delivery until Resume.
type Subscription interface {
	Unsubscribe()
	Pause()
	Resume()
}

// Provider is the contract every concrete storage engine implements. All
// operations are synchronous from the caller's perspective and must honor
// ctx cancellation; expected failures surface as the typed errors in this
// package, never as panics.
//
// Read semantics: an absent document yields (nil, nil), not an error, so a
// read-miss is indistinguishable from not-yet-created. Callers check for a
// nil document, not for an error, to detect absence.
type Provider interface {
	// Name returns the engine identifier (e.g. "memory", "mongodb").
	Name() string

	// Create inserts doc into collection. An empty id lets the provider
	// generate the primary key; a non-empty id is caller-controlled and
	// yields a ConflictError when it already exists. The stored document,
	// including its id, is returned.
	Create(ctx context.Context, collection string, doc Document, id string) (Document, error)

	// Read fetches a document by id. Returns (nil, nil) when absent.
	Read(ctx context.Context, collection, id string) (Document, error)

	// Update merges patch into the existing document. Fields absent from
	// patch are untouched. Returns NotFoundError when the id does not exist.
	Update(ctx context.Context, collection, id string, patch Document) error

	// Delete removes a document. Deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Query returns documents matching q, or an empty slice when none match.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Count returns the number of documents matching the conditions.
	Count(ctx context.Context, collection string, where []Condition) (int64, error)

	// Batch applies the operations as one unit where the engine supports
	// atomicity, degrading to best-effort sequential application otherwise.
	// Partial application is reported as a *BatchError with per-operation
	// failures, never as an opaque total failure.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Subscribe invokes fn with the full current result set of q on every
	// change to the collection. Snapshots are monotonic per subscription: a
	// stale snapshot is never delivered after a newer one.
	Subscribe(ctx context.Context, collection string, q Query, fn func([]Document)) (Subscription, error)

	// SubscribeDocument invokes fn with the document on every change, and
	// with nil when it is deleted.
	SubscribeDocument(ctx context.Context, collection, id string, fn func(Document)) (Subscription, error)

	// Connect establishes the engine connection. It is idempotent: calling
	// it on a connected provider does not open a second connection.
	Connect(ctx context.Context) error

	// Disconnect tears down the connection.
	Disconnect(ctx context.Context) error

	// Connected reports whether the provider currently holds a connection.
	Connected() bool

	// Status returns the polled connection state.
	Status(ctx context.Context) ConnectionStatus
}

// CacheController is an optional provider capability for cache management.
// Callers discover it with a type assertion; a provider without a cache
// simply does not implement it.
type CacheController interface {
	ClearCache(ctx context.Context) error
	InvalidateTags(ctx context.Context, tags ...string) error
}

// PerformanceReporter is an optional provider capability exposing query
// performance introspection, consumed by the optimizer.
type PerformanceReporter interface {
	// QueryMetrics returns the performance snapshot for a collection.
	QueryMetrics(ctx context.Context, collection string) (QueryMetrics, error)

	// Optimize lets the engine apply engine-internal tuning (compaction,
	// statistics refresh). It never changes schema or indexes.
	Optimize(ctx context.Context, collection string) error
}

// OfflineCapable is an optional provider capability for disconnected writes.
type OfflineCapable interface {
	// EnableOffline tells the engine to accept writes while disconnected.
	EnableOffline(ctx context.Context, opts OfflineOptions) error

	// DisableOffline returns the engine to online-only mode. Pending queued
	// writes are not flushed implicitly.
	DisableOffline(ctx context.Context) error

	// SyncOffline pushes engine-buffered offline writes to the server.
	SyncOffline(ctx context.Context) (SyncResult, error)
}
