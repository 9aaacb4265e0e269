package config

import "fmt"

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Type {
	case DatabaseTypeMemory:
	case DatabaseTypeMongoDB:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for MongoDB")
		}
		if c.Database.DatabaseName == "" {
			return fmt.Errorf("database.database_name is required for MongoDB")
		}
	case DatabaseTypeDynamoDB:
		if c.Database.Region == "" {
			return fmt.Errorf("database.region is required for DynamoDB")
		}
	default:
		return fmt.Errorf("unsupported database.type %q (supported: memory, mongodb, dynamodb)", c.Database.Type)
	}

	if c.Cache.Enabled {
		switch c.Cache.Type {
		case CacheTypeInMemory:
		case CacheTypeRedis:
			if c.Cache.URL == "" {
				return fmt.Errorf("cache.url is required when cache.type is redis")
			}
		default:
			return fmt.Errorf("unsupported cache.type %q (supported: redis, inmemory)", c.Cache.Type)
		}
		if c.Cache.DefaultTTL <= 0 {
			return fmt.Errorf("cache.default_ttl must be positive")
		}
	}

	if c.Offline.Enabled {
		switch c.Offline.ConflictPolicy {
		case ConflictPolicyClient, ConflictPolicyServer, ConflictPolicyManual:
		default:
			return fmt.Errorf("unsupported offline.conflict_policy %q (supported: client, server, manual)", c.Offline.ConflictPolicy)
		}
		switch c.Offline.SyncStrategy {
		case SyncStrategyImmediate, SyncStrategyBatch, SyncStrategyScheduled:
		default:
			return fmt.Errorf("unsupported offline.sync_strategy %q (supported: immediate, batch, scheduled)", c.Offline.SyncStrategy)
		}
		if c.Offline.MaxPending < 0 {
			return fmt.Errorf("offline.max_pending must be non-negative")
		}
	}

	if c.Performance.EnableMetrics && c.Performance.SlowQueryThreshold <= 0 {
		return fmt.Errorf("performance.slow_query_threshold must be positive when metrics are enabled")
	}

	return nil
}
