package config

import "time"

// Database type constants
const (
	// DatabaseTypeMemory represents the in-process reference engine
	DatabaseTypeMemory = "memory"
	// DatabaseTypeMongoDB represents MongoDB
	DatabaseTypeMongoDB = "mongodb"
	// DatabaseTypeDynamoDB represents AWS DynamoDB
	DatabaseTypeDynamoDB = "dynamodb"
)

// Cache type constants
const (
	// CacheTypeRedis uses Redis as the cache store
	CacheTypeRedis = "redis"
	// CacheTypeInMemory uses an in-process TTL cache store
	CacheTypeInMemory = "inmemory"
)

// Conflict policy constants for offline sync
const (
	ConflictPolicyClient = "client"
	ConflictPolicyServer = "server"
	ConflictPolicyManual = "manual"
)

// Sync strategy constants for offline sync
const (
	SyncStrategyImmediate = "immediate"
	SyncStrategyBatch     = "batch"
	SyncStrategyScheduled = "scheduled"
)

// Config is the root configuration for the storage layer. It is read once at
// process start; there is no hot-reload.
type Config struct {
	Service     ServiceConfig
	Logging     LoggingConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Offline     OfflineConfig
	Performance PerformanceConfig
}

// ServiceConfig configures service identity metadata.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// DatabaseConfig selects and configures the storage provider.
// The connection fields are engine-specific; each provider reads only the
// subset it understands.
type DatabaseConfig struct {
	Type             string        `mapstructure:"type"` // memory, mongodb, dynamodb
	URL              string        `mapstructure:"url"`
	DatabaseName     string        `mapstructure:"database_name"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	Region           string        `mapstructure:"region"`
	Endpoint         string        `mapstructure:"endpoint"`
	AccessKeyID      string        `mapstructure:"access_key_id"`
	SecretAccessKey  string        `mapstructure:"secret_access_key"`
	SessionToken     string        `mapstructure:"session_token"`
	TablePrefix      string        `mapstructure:"table_prefix"`
}

// CacheConfig configures the read-through cache wrapped around the provider.
type CacheConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Type             string        `mapstructure:"type"` // redis, inmemory
	URL              string        `mapstructure:"url"`
	MaxConns         int           `mapstructure:"max_conns"`
	DefaultTTL       time.Duration `mapstructure:"default_ttl"`
	MaxSize          int           `mapstructure:"max_size"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// OfflineConfig configures offline write queuing and conflict resolution.
type OfflineConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ConflictPolicy string `mapstructure:"conflict_policy"` // client, server, manual
	SyncStrategy   string `mapstructure:"sync_strategy"`   // immediate, batch, scheduled
	MaxPending     int    `mapstructure:"max_pending"`
}

// PerformanceConfig configures query metrics collection.
type PerformanceConfig struct {
	EnableMetrics      bool          `mapstructure:"enable_metrics"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
}

// DefaultConfig returns the configuration defaults applied before file and
// environment overrides.
func DefaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			Name:        "storage",
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Type:             DatabaseTypeMemory,
			ConnectTimeout:   5 * time.Second,
			OperationTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:          false,
			Type:             CacheTypeInMemory,
			DefaultTTL:       5 * time.Minute,
			MaxSize:          10000,
			OperationTimeout: 2 * time.Second,
		},
		Offline: OfflineConfig{
			Enabled:        false,
			ConflictPolicy: ConflictPolicyServer,
			SyncStrategy:   SyncStrategyBatch,
			MaxPending:     1000,
		},
		Performance: PerformanceConfig{
			EnableMetrics:      true,
			SlowQueryThreshold: time.Second,
		},
	}
}
