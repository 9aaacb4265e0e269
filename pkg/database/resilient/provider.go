// Package resilient decorates a provider with a circuit breaker, turning a
// struggling remote engine into fast unavailable errors instead of a pile of
// hung requests.
package resilient

import (
	"context"
	"errors"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/resilience"
)

// Provider wraps another provider and routes every remote call through a
// circuit breaker. Domain outcomes like conflicts and validation failures do
// not count as backend failures.
type Provider struct {
	inner   database.Provider
	breaker *resilience.Breaker
	log     logger.Logger
}

// New wraps the provider with a circuit breaker.
func New(inner database.Provider, opts resilience.Options, log logger.Logger) *Provider {
	if log == nil {
		log = logger.NopLogger{}
	}
	if opts.Ignore == nil {
		opts.Ignore = isDomainError
	}
	return &Provider{inner: inner, breaker: resilience.NewBreaker(opts), log: log}
}

// isDomainError reports errors that describe the request rather than the
// backend. They pass through the breaker without tripping it.
func isDomainError(err error) bool {
	if database.IsConflict(err) || database.IsValidation(err) || database.IsNotFound(err) {
		return true
	}
	if _, ok := database.AsBatchError(err); ok {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, database.ErrNotSupported)
}

func (p *Provider) Name() string { return p.inner.Name() }

func (p *Provider) execute(fn func() error) error {
	err := p.breaker.Execute(fn)
	if errors.Is(err, resilience.ErrOpen) {
		p.log.Warn("circuit breaker rejected call", "provider", p.inner.Name())
		return &database.UnavailableError{Provider: p.inner.Name(), Err: err}
	}
	return err
}

func (p *Provider) Create(ctx context.Context, collection string, doc database.Document, id string) (database.Document, error) {
	var out database.Document
	err := p.execute(func() error {
		var innerErr error
		out, innerErr = p.inner.Create(ctx, collection, doc, id)
		return innerErr
	})
	return out, err
}

func (p *Provider) Read(ctx context.Context, collection, id string) (database.Document, error) {
	var out database.Document
	err := p.execute(func() error {
		var innerErr error
		out, innerErr = p.inner.Read(ctx, collection, id)
		return innerErr
	})
	return out, err
}

func (p *Provider) Update(ctx context.Context, collection, id string, patch database.Document) error {
	return p.execute(func() error {
		return p.inner.Update(ctx, collection, id, patch)
	})
}

func (p *Provider) Delete(ctx context.Context, collection, id string) error {
	return p.execute(func() error {
		return p.inner.Delete(ctx, collection, id)
	})
}

func (p *Provider) Query(ctx context.Context, collection string, q database.Query) ([]database.Document, error) {
	var out []database.Document
	err := p.execute(func() error {
		var innerErr error
		out, innerErr = p.inner.Query(ctx, collection, q)
		return innerErr
	})
	return out, err
}

func (p *Provider) Count(ctx context.Context, collection string, where []database.Condition) (int64, error) {
	var out int64
	err := p.execute(func() error {
		var innerErr error
		out, innerErr = p.inner.Count(ctx, collection, where)
		return innerErr
	})
	return out, err
}

func (p *Provider) Batch(ctx context.Context, ops []database.BatchOperation) error {
	return p.execute(func() error {
		return p.inner.Batch(ctx, ops)
	})
}

// Subscribe passes through: subscriptions are long-lived and carry their own
// reconnect behavior, a breaker around them would only delay recovery.
func (p *Provider) Subscribe(ctx context.Context, collection string, q database.Query, fn func([]database.Document)) (database.Subscription, error) {
	return p.inner.Subscribe(ctx, collection, q, fn)
}

func (p *Provider) SubscribeDocument(ctx context.Context, collection, id string, fn func(database.Document)) (database.Subscription, error) {
	return p.inner.SubscribeDocument(ctx, collection, id, fn)
}

func (p *Provider) Connect(ctx context.Context) error {
	return p.inner.Connect(ctx)
}

func (p *Provider) Disconnect(ctx context.Context) error {
	return p.inner.Disconnect(ctx)
}

func (p *Provider) Connected() bool { return p.inner.Connected() }

func (p *Provider) Status(ctx context.Context) database.ConnectionStatus {
	return p.inner.Status(ctx)
}

// BreakerState exposes the breaker state for health reporting.
func (p *Provider) BreakerState() resilience.State { return p.breaker.State() }

// Optional capabilities delegate to the wrapped provider.

func (p *Provider) QueryMetrics(ctx context.Context, collection string) (database.QueryMetrics, error) {
	if pr, ok := p.inner.(database.PerformanceReporter); ok {
		return pr.QueryMetrics(ctx, collection)
	}
	return database.QueryMetrics{}, database.ErrNotSupported
}

func (p *Provider) Optimize(ctx context.Context, collection string) error {
	if pr, ok := p.inner.(database.PerformanceReporter); ok {
		return pr.Optimize(ctx, collection)
	}
	return database.ErrNotSupported
}

func (p *Provider) EnableOffline(ctx context.Context, opts database.OfflineOptions) error {
	if oc, ok := p.inner.(database.OfflineCapable); ok {
		return oc.EnableOffline(ctx, opts)
	}
	return database.ErrNotSupported
}

func (p *Provider) DisableOffline(ctx context.Context) error {
	if oc, ok := p.inner.(database.OfflineCapable); ok {
		return oc.DisableOffline(ctx)
	}
	return database.ErrNotSupported
}

func (p *Provider) SyncOffline(ctx context.Context) (database.SyncResult, error) {
	if oc, ok := p.inner.(database.OfflineCapable); ok {
		return oc.SyncOffline(ctx)
	}
	return database.SyncResult{}, database.ErrNotSupported
}

func (p *Provider) QueryDocs(ctx context.Context, collection string, q database.Query) ([]database.Document, database.QueryInfo, error) {
	iq, ok := p.inner.(database.InfoQuerier)
	if !ok {
		return nil, database.QueryInfo{}, database.ErrNotSupported
	}
	var out []database.Document
	var info database.QueryInfo
	err := p.execute(func() error {
		var innerErr error
		out, info, innerErr = iq.QueryDocs(ctx, collection, q)
		return innerErr
	})
	return out, info, err
}

func (p *Provider) ClearCache(ctx context.Context) error {
	if cc, ok := p.inner.(database.CacheController); ok {
		return cc.ClearCache(ctx)
	}
	return database.ErrNotSupported
}

func (p *Provider) InvalidateTags(ctx context.Context, tags ...string) error {
	if cc, ok := p.inner.(database.CacheController); ok {
		return cc.InvalidateTags(ctx, tags...)
	}
	return database.ErrNotSupported
}
