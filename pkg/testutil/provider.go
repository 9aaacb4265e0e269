package testutil

import (
	"context"
	"sync"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
)

// CountingProvider wraps a provider and counts calls per operation. Used to
// assert cache-hit behavior and batch routing without touching a real
// backend.
type CountingProvider struct {
	database.Provider

	mu     sync.Mutex
	counts map[string]int
}

// NewCountingProvider wraps inner with call counting.
func NewCountingProvider(inner database.Provider) *CountingProvider {
	return &CountingProvider{Provider: inner, counts: make(map[string]int)}
}

// Calls returns how many times the named operation ran.
func (p *CountingProvider) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[op]
}

func (p *CountingProvider) bump(op string) {
	p.mu.Lock()
	p.counts[op]++
	p.mu.Unlock()
}

func (p *CountingProvider) Create(ctx context.Context, collection string, doc database.Document, id string) (database.Document, error) {
	p.bump("create")
	return p.Provider.Create(ctx, collection, doc, id)
}

func (p *CountingProvider) Read(ctx context.Context, collection, id string) (database.Document, error) {
	p.bump("read")
	return p.Provider.Read(ctx, collection, id)
}

func (p *CountingProvider) Update(ctx context.Context, collection, id string, patch database.Document) error {
	p.bump("update")
	return p.Provider.Update(ctx, collection, id, patch)
}

func (p *CountingProvider) Delete(ctx context.Context, collection, id string) error {
	p.bump("delete")
	return p.Provider.Delete(ctx, collection, id)
}

func (p *CountingProvider) Query(ctx context.Context, collection string, q database.Query) ([]database.Document, error) {
	p.bump("query")
	return p.Provider.Query(ctx, collection, q)
}

func (p *CountingProvider) Count(ctx context.Context, collection string, where []database.Condition) (int64, error) {
	p.bump("count")
	return p.Provider.Count(ctx, collection, where)
}

func (p *CountingProvider) Batch(ctx context.Context, ops []database.BatchOperation) error {
	p.bump("batch")
	return p.Provider.Batch(ctx, ops)
}
