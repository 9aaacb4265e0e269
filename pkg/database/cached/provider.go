package cached

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/metrics"
)

// Provider decorates an inner provider with read-through caching.
//
// Point reads are cached under doc:<collection>:<id> with the default TTL.
// Queries are cached only when the query carries CacheOptions, keyed by the
// query shape. Every write through this provider invalidates the touched
// document keys and all query keys of the touched collections, so cached
// reads never outlive a local write (remote writes are bounded by TTL only).
type Provider struct {
	inner      database.Provider
	cache      Cache
	defaultTTL time.Duration
	recorder   *metrics.QueryRecorder
	log        logger.Logger
}

// Options configures the cached provider.
type Options struct {
	DefaultTTL time.Duration
	Recorder   *metrics.QueryRecorder
	Logger     logger.Logger
}

// New wraps inner with the cache.
func New(inner database.Provider, cache Cache, opts Options) *Provider {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 5 * time.Minute
	}
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Provider{
		inner:      inner,
		cache:      cache,
		defaultTTL: opts.DefaultTTL,
		recorder:   opts.Recorder,
		log:        log,
	}
}

// Name reports the inner engine's identifier; the cache is transparent.
func (p *Provider) Name() string { return p.inner.Name() }

// Inner exposes the wrapped provider.
func (p *Provider) Inner() database.Provider { return p.inner }

func docKey(collection, id string) string {
	return "doc:" + collection + ":" + id
}

func queryPrefix(collection string) string {
	return "query:" + collection + ":"
}

// queryKey derives a stable key from the query shape. Cache options do not
// participate: two reads of the same shape share an entry regardless of TTL.
func queryKey(collection string, q database.Query) string {
	shape := struct {
		Where   []database.Condition
		OrderBy []database.Order
		Limit   int
		Offset  int
		Select  []string
	}{q.Where, q.OrderBy, q.Limit, q.Offset, q.Select}

	raw, err := json.Marshal(shape)
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", shape))
	}
	h := fnv.New64a()
	h.Write(raw)
	return fmt.Sprintf("%s%x", queryPrefix(collection), h.Sum64())
}

// Create writes through and invalidates the collection's query cache.
func (p *Provider) Create(ctx context.Context, collection string, doc database.Document, id string) (database.Document, error) {
	stored, err := p.inner.Create(ctx, collection, doc, id)
	if err != nil {
		return nil, err
	}
	p.invalidate(ctx, collection, stored.ID())
	return stored, nil
}

// Read serves from cache when fresh, otherwise reads through and caches the
// result. Absent documents are not cached.
func (p *Provider) Read(ctx context.Context, collection, id string) (database.Document, error) {
	key := docKey(collection, id)
	if raw, ok, err := p.cache.Get(ctx, key); err == nil && ok {
		var doc database.Document
		if unmarshalErr := json.Unmarshal(raw, &doc); unmarshalErr == nil {
			if p.recorder != nil {
				p.recorder.CacheHit(collection)
			}
			return doc, nil
		}
	}
	if p.recorder != nil {
		p.recorder.CacheMiss(collection)
	}

	doc, err := p.inner.Read(ctx, collection, id)
	if err != nil || doc == nil {
		return doc, err
	}
	if raw, marshalErr := json.Marshal(doc); marshalErr == nil {
		if setErr := p.cache.Set(ctx, key, raw, p.defaultTTL); setErr != nil {
			p.log.Warn("cache set failed", "key", key, "error", setErr)
		}
	}
	return doc, nil
}

// Update writes through and invalidates the document and query caches.
func (p *Provider) Update(ctx context.Context, collection, id string, patch database.Document) error {
	if err := p.inner.Update(ctx, collection, id, patch); err != nil {
		return err
	}
	p.invalidate(ctx, collection, id)
	return nil
}

// Delete writes through and invalidates the document and query caches.
func (p *Provider) Delete(ctx context.Context, collection, id string) error {
	if err := p.inner.Delete(ctx, collection, id); err != nil {
		return err
	}
	p.invalidate(ctx, collection, id)
	return nil
}

// Query caches result sets only for queries that opt in via CacheOptions.
func (p *Provider) Query(ctx context.Context, collection string, q database.Query) ([]database.Document, error) {
	docs, _, err := p.queryCached(ctx, collection, q)
	return docs, err
}

// QueryDocs runs the query and reports whether it was served from cache and
// how long it took.
func (p *Provider) QueryDocs(ctx context.Context, collection string, q database.Query) ([]database.Document, database.QueryInfo, error) {
	start := time.Now()
	docs, cached, err := p.queryCached(ctx, collection, q)
	return docs, database.QueryInfo{Duration: time.Since(start), Cached: cached}, err
}

func (p *Provider) queryCached(ctx context.Context, collection string, q database.Query) ([]database.Document, bool, error) {
	if q.Cache == nil {
		docs, err := p.inner.Query(ctx, collection, q)
		return docs, false, err
	}

	key := queryKey(collection, q)
	if raw, ok, err := p.cache.Get(ctx, key); err == nil && ok {
		var docs []database.Document
		if unmarshalErr := json.Unmarshal(raw, &docs); unmarshalErr == nil {
			if p.recorder != nil {
				p.recorder.CacheHit(collection)
			}
			return docs, true, nil
		}
	}
	if p.recorder != nil {
		p.recorder.CacheMiss(collection)
	}

	docs, err := p.inner.Query(ctx, collection, q)
	if err != nil {
		return nil, false, err
	}

	ttl := q.Cache.TTL
	if ttl <= 0 {
		ttl = p.defaultTTL
	}
	if raw, marshalErr := json.Marshal(docs); marshalErr == nil {
		if setErr := p.cache.Set(ctx, key, raw, ttl); setErr != nil {
			p.log.Warn("cache set failed", "key", key, "error", setErr)
		} else if len(q.Cache.Tags) > 0 {
			if tagErr := p.cache.Tag(ctx, key, q.Cache.Tags...); tagErr != nil {
				p.log.Warn("cache tag failed", "key", key, "error", tagErr)
			}
		}
	}
	return docs, false, nil
}

// Count is never cached; counts are cheap relative to staleness risk.
func (p *Provider) Count(ctx context.Context, collection string, where []database.Condition) (int64, error) {
	return p.inner.Count(ctx, collection, where)
}

// Batch writes through and invalidates every touched collection.
func (p *Provider) Batch(ctx context.Context, ops []database.BatchOperation) error {
	err := p.inner.Batch(ctx, ops)
	// Invalidate even on partial failure: some operations may have applied.
	for _, op := range ops {
		p.invalidate(ctx, op.Collection, op.ID)
	}
	return err
}

// Subscribe bypasses the cache; subscriptions observe the engine directly.
func (p *Provider) Subscribe(ctx context.Context, collection string, q database.Query, fn func([]database.Document)) (database.Subscription, error) {
	return p.inner.Subscribe(ctx, collection, q, fn)
}

// SubscribeDocument bypasses the cache.
func (p *Provider) SubscribeDocument(ctx context.Context, collection, id string, fn func(database.Document)) (database.Subscription, error) {
	return p.inner.SubscribeDocument(ctx, collection, id, fn)
}

func (p *Provider) Connect(ctx context.Context) error    { return p.inner.Connect(ctx) }
func (p *Provider) Disconnect(ctx context.Context) error { return p.inner.Disconnect(ctx) }
func (p *Provider) Connected() bool                      { return p.inner.Connected() }

func (p *Provider) Status(ctx context.Context) database.ConnectionStatus {
	return p.inner.Status(ctx)
}

// ClearCache drops every cached entry.
func (p *Provider) ClearCache(ctx context.Context) error {
	return p.cache.Clear(ctx)
}

// InvalidateTags drops entries associated with the given tags.
func (p *Provider) InvalidateTags(ctx context.Context, tags ...string) error {
	for _, t := range tags {
		if err := p.cache.InvalidateTag(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// QueryMetrics delegates to the inner provider's capability, when present.
func (p *Provider) QueryMetrics(ctx context.Context, collection string) (database.QueryMetrics, error) {
	if pr, ok := p.inner.(database.PerformanceReporter); ok {
		return pr.QueryMetrics(ctx, collection)
	}
	return database.QueryMetrics{}, fmt.Errorf("query metrics: %w", database.ErrNotSupported)
}

// Optimize delegates to the inner provider's capability, when present.
func (p *Provider) Optimize(ctx context.Context, collection string) error {
	if pr, ok := p.inner.(database.PerformanceReporter); ok {
		return pr.Optimize(ctx, collection)
	}
	return fmt.Errorf("optimize: %w", database.ErrNotSupported)
}

// EnableOffline delegates to the inner provider's capability, when present.
func (p *Provider) EnableOffline(ctx context.Context, opts database.OfflineOptions) error {
	if oc, ok := p.inner.(database.OfflineCapable); ok {
		return oc.EnableOffline(ctx, opts)
	}
	return fmt.Errorf("offline mode: %w", database.ErrNotSupported)
}

// DisableOffline delegates to the inner provider's capability, when present.
func (p *Provider) DisableOffline(ctx context.Context) error {
	if oc, ok := p.inner.(database.OfflineCapable); ok {
		return oc.DisableOffline(ctx)
	}
	return fmt.Errorf("offline mode: %w", database.ErrNotSupported)
}

// SyncOffline delegates to the inner provider's capability, when present.
func (p *Provider) SyncOffline(ctx context.Context) (database.SyncResult, error) {
	if oc, ok := p.inner.(database.OfflineCapable); ok {
		return oc.SyncOffline(ctx)
	}
	return database.SyncResult{}, fmt.Errorf("offline mode: %w", database.ErrNotSupported)
}

func (p *Provider) invalidate(ctx context.Context, collection, id string) {
	keys := []string{docKey(collection, id)}
	if err := p.cache.Delete(ctx, keys...); err != nil {
		p.log.Warn("cache invalidation failed", "collection", collection, "id", id, "error", err)
	}
	if err := p.cache.DeletePrefix(ctx, queryPrefix(collection)); err != nil {
		p.log.Warn("cache query invalidation failed", "collection", collection, "error", err)
	}
}
