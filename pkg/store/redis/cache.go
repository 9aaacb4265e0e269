// Package redis provides a Redis-backed cache store for the cached provider.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
)

// keyspace prefixes every key this store writes, so Clear never touches
// other tenants of the same Redis database.
const keyspace = "storagecache:"

// Config holds Redis connection configuration.
type Config struct {
	URL              string
	MaxConns         int
	OperationTimeout time.Duration
}

// Cache is a Redis-backed implementation of the cached provider's store
// contract. Tag sets live alongside the entries, expiring after 24h.
type Cache struct {
	client  *redis.Client
	timeout time.Duration
	logger  logger.Logger
}

// Cosa fa: crea il cache store Redis con connection pooling e verifica via ping.
// Cosa NON fa: non gestisce cluster o sentinel.
// Esempio minimo: c, err := redis.NewCache(cfg, log)
func NewCache(cfg Config, log logger.Logger) (*Cache, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 2 * time.Second
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		opts.PoolSize = cfg.MaxConns
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = cfg.OperationTimeout
	opts.WriteTimeout = cfg.OperationTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info("Redis cache store connected", "max_conns", cfg.MaxConns)
	return &Cache{client: client, timeout: cfg.OperationTimeout, logger: log}, nil
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	raw, err := c.client.Get(opCtx, keyspace+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return raw, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.Set(opCtx, keyspace+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyspace + k
	}
	if err := c.client.Del(opCtx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	return c.deletePattern(ctx, keyspace+prefix+"*")
}

func (c *Cache) Tag(ctx context.Context, key string, tags ...string) error {
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	for _, t := range tags {
		tagKey := keyspace + "tag:" + t
		if err := c.client.SAdd(opCtx, tagKey, keyspace+key).Err(); err != nil {
			return fmt.Errorf("redis sadd failed: %w", err)
		}
		if err := c.client.Expire(opCtx, tagKey, 24*time.Hour).Err(); err != nil {
			return fmt.Errorf("redis expire failed: %w", err)
		}
	}
	return nil
}

func (c *Cache) InvalidateTag(ctx context.Context, tag string) error {
	opCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	tagKey := keyspace + "tag:" + tag
	members, err := c.client.SMembers(opCtx, tagKey).Result()
	if err != nil {
		return fmt.Errorf("redis smembers failed: %w", err)
	}
	if len(members) > 0 {
		if err := c.client.Del(opCtx, members...).Err(); err != nil {
			return fmt.Errorf("redis del failed: %w", err)
		}
	}
	return c.client.Del(opCtx, tagKey).Err()
}

func (c *Cache) Clear(ctx context.Context) error {
	return c.deletePattern(ctx, keyspace+"*")
}

// deletePattern scans and deletes matching keys in batches, avoiding KEYS on
// large databases.
func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		opCtx, cancel := c.withTimeout(ctx)
		keys, next, err := c.client.Scan(opCtx, cursor, pattern, 500).Result()
		if err != nil {
			cancel()
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(opCtx, keys...).Err(); err != nil {
				cancel()
				return fmt.Errorf("redis del failed: %w", err)
			}
		}
		cancel()
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
