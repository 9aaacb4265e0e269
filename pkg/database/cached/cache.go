// Package cached wraps any storage provider with a read-through cache.
// Caching is a provider concern in this layer: the wrapper is itself a
// Provider, so callers stay unaware of whether reads hit the engine or the
// cache. It also implements the CacheController capability.
package cached

import (
	"context"
	"sync"
	"time"
)

// Cache is the backing store contract for the cached provider. Implemented
// by the in-process MemoryCache below and by the Redis store.
type Cache interface {
	// Get returns the value for key and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Tag associates key with tags for group invalidation.
	Tag(ctx context.Context, key string, tags ...string) error

	// InvalidateTag removes every key associated with tag.
	InvalidateTag(ctx context.Context, tag string) error

	// Clear removes everything.
	Clear(ctx context.Context) error
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is an in-process TTL cache with a soft size bound. When full,
// expired entries are dropped first, then arbitrary entries.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	tags    map[string]map[string]bool
	maxSize int
}

// NewMemoryCache creates a MemoryCache holding at most maxSize entries.
// maxSize <= 0 means unbounded.
func NewMemoryCache(maxSize int) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		tags:    make(map[string]map[string]bool),
		maxSize: maxSize,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}
	c.entries[key] = memoryEntry{value: value, expires: time.Now().Add(ttl)}
	return nil
}

// evictLocked drops expired entries, then one arbitrary entry if still full.
func (c *MemoryCache) evictLocked() {
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxSize {
		return
	}
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}

func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *MemoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *MemoryCache) Tag(ctx context.Context, key string, tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tags {
		if c.tags[t] == nil {
			c.tags[t] = make(map[string]bool)
		}
		c.tags[t][key] = true
	}
	return nil
}

func (c *MemoryCache) InvalidateTag(ctx context.Context, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.tags[tag] {
		delete(c.entries, k)
	}
	delete(c.tags, tag)
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	c.tags = make(map[string]map[string]bool)
	return nil
}
