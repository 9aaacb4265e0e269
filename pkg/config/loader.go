package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Loader defines the interface for loading configuration
type Loader interface {
	Load() (*Config, error)
}

// ViperLoader implements Loader using Viper for configuration management
type ViperLoader struct {
	configFile string
	envPrefix  string
}

// NewViperLoader creates a new ViperLoader.
// configFile: path to a configuration file (optional, can be empty)
// envPrefix: prefix for environment variables (e.g. "PLATFORM")
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// Load loads configuration with precedence: ENV > file > defaults
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	l.setDefaults(v, defaults)

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	v.SetEnvPrefix(l.envPrefix)

	// Bind all environment variables explicitly for nested structs
	l.bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (l *ViperLoader) setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("service.name", d.Service.Name)
	v.SetDefault("service.environment", d.Service.Environment)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("database.type", d.Database.Type)
	v.SetDefault("database.connect_timeout", d.Database.ConnectTimeout)
	v.SetDefault("database.operation_timeout", d.Database.OperationTimeout)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.default_ttl", d.Cache.DefaultTTL)
	v.SetDefault("cache.max_size", d.Cache.MaxSize)
	v.SetDefault("cache.operation_timeout", d.Cache.OperationTimeout)

	v.SetDefault("offline.enabled", d.Offline.Enabled)
	v.SetDefault("offline.conflict_policy", d.Offline.ConflictPolicy)
	v.SetDefault("offline.sync_strategy", d.Offline.SyncStrategy)
	v.SetDefault("offline.max_pending", d.Offline.MaxPending)

	v.SetDefault("performance.enable_metrics", d.Performance.EnableMetrics)
	v.SetDefault("performance.slow_query_threshold", d.Performance.SlowQueryThreshold)
}

// bindEnvVars explicitly binds environment variables for nested structs
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("service.name", l.prefixedEnv("SERVICE_NAME"))
	v.BindEnv("service.environment", l.prefixedEnv("SERVICE_ENVIRONMENT"), l.prefixedEnv("ENVIRONMENT"))

	v.BindEnv("logging.level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("logging.format", l.prefixedEnv("LOG_FORMAT"))

	v.BindEnv("database.type", l.prefixedEnv("DATABASE_TYPE"))
	v.BindEnv("database.url", l.prefixedEnv("DATABASE_URL"))
	v.BindEnv("database.database_name", l.prefixedEnv("DATABASE_NAME"))
	v.BindEnv("database.connect_timeout", l.prefixedEnv("DATABASE_CONNECT_TIMEOUT"))
	v.BindEnv("database.operation_timeout", l.prefixedEnv("DATABASE_OPERATION_TIMEOUT"))
	v.BindEnv("database.region", l.prefixedEnv("DATABASE_REGION"), l.prefixedEnv("AWS_REGION"))
	v.BindEnv("database.endpoint", l.prefixedEnv("DATABASE_ENDPOINT"))
	v.BindEnv("database.access_key_id", l.prefixedEnv("DATABASE_ACCESS_KEY_ID"))
	v.BindEnv("database.secret_access_key", l.prefixedEnv("DATABASE_SECRET_ACCESS_KEY"))
	v.BindEnv("database.session_token", l.prefixedEnv("DATABASE_SESSION_TOKEN"))
	v.BindEnv("database.table_prefix", l.prefixedEnv("DATABASE_TABLE_PREFIX"))

	v.BindEnv("cache.enabled", l.prefixedEnv("CACHE_ENABLED"))
	v.BindEnv("cache.type", l.prefixedEnv("CACHE_TYPE"))
	v.BindEnv("cache.url", l.prefixedEnv("CACHE_URL"))
	v.BindEnv("cache.max_conns", l.prefixedEnv("CACHE_MAX_CONNS"))
	v.BindEnv("cache.default_ttl", l.prefixedEnv("CACHE_DEFAULT_TTL"))
	v.BindEnv("cache.max_size", l.prefixedEnv("CACHE_MAX_SIZE"))
	v.BindEnv("cache.operation_timeout", l.prefixedEnv("CACHE_OPERATION_TIMEOUT"))

	v.BindEnv("offline.enabled", l.prefixedEnv("OFFLINE_ENABLED"))
	v.BindEnv("offline.conflict_policy", l.prefixedEnv("OFFLINE_CONFLICT_POLICY"))
	v.BindEnv("offline.sync_strategy", l.prefixedEnv("OFFLINE_SYNC_STRATEGY"))
	v.BindEnv("offline.max_pending", l.prefixedEnv("OFFLINE_MAX_PENDING"))

	v.BindEnv("performance.enable_metrics", l.prefixedEnv("PERFORMANCE_ENABLE_METRICS"))
	v.BindEnv("performance.slow_query_threshold", l.prefixedEnv("PERFORMANCE_SLOW_QUERY_THRESHOLD"))
}

func (l *ViperLoader) prefixedEnv(name string) string {
	if l.envPrefix == "" {
		return name
	}
	return strings.ToUpper(l.envPrefix) + "_" + name
}

// MustDuration parses a duration string and panics on failure. Intended for
// wiring literals in composition roots and tests.
func MustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}
