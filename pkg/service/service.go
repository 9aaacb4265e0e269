// Package service wires configuration, provider, cache, metrics, and the
// repository layer into a single storage facade.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/config"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database/factory"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/health"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/metrics"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/offline"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/optimizer"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/repository"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/version"
)

// Service is the storage facade. It owns the provider and exposes both the
// typed repository layer and document-level operations for callers that
// predate it.
type Service struct {
	cfg      config.Config
	provider database.Provider
	repos    *repository.Factory
	recorder *metrics.QueryRecorder
	registry *metrics.Registry
	offline  *offline.Manager
	analyzer *optimizer.Analyzer
	health   *health.Registry
	logger   logger.Logger
}

// Cosa fa: costruisce il servizio storage completo a partire dalla config.
// Cosa NON fa: non apre la connessione, chiamare Connect esplicitamente.
// Esempio minimo: svc, err := service.New(cfg, log)
func New(cfg config.Config, log logger.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	registry := metrics.NewRegistry()
	var recorder *metrics.QueryRecorder
	if cfg.Performance.EnableMetrics {
		recorder = metrics.NewQueryRecorder(registry, metrics.QueryRecorderOptions{
			SlowThreshold: cfg.Performance.SlowQueryThreshold,
		})
	}

	provider, err := factory.NewProvider(cfg, recorder, log)
	if err != nil {
		return nil, err
	}

	checks := health.NewRegistry()
	checks.Register(health.NewProviderChecker("database", provider, cfg.Database.OperationTimeout))

	svc := &Service{
		cfg:      cfg,
		provider: provider,
		repos:    repository.NewFactory(provider, log),
		recorder: recorder,
		registry: registry,
		analyzer: optimizer.NewAnalyzer(optimizer.Options{Logger: log}),
		health:   checks,
		logger:   log,
	}
	if cfg.Offline.Enabled {
		svc.offline = offline.NewManager(provider, offline.Options{
			ConflictPolicy: cfg.Offline.ConflictPolicy,
			SyncStrategy:   cfg.Offline.SyncStrategy,
			MaxPending:     cfg.Offline.MaxPending,
			Logger:         log,
		})
	}
	return svc, nil
}

// Connect establishes the provider connection.
func (s *Service) Connect(ctx context.Context) error {
	if err := s.provider.Connect(ctx); err != nil {
		return err
	}
	info := version.Current(s.cfg.Service.Name)
	s.logger.Info("storage service connected",
		"provider", s.provider.Name(),
		"version", info.Version,
		"commit", info.Commit,
	)
	return nil
}

// Health runs all registered health checks.
func (s *Service) Health(ctx context.Context) health.AggregatedResult {
	return s.health.Check(ctx)
}

// Close disconnects the provider and releases all subscriptions.
func (s *Service) Close(ctx context.Context) error {
	return s.provider.Disconnect(ctx)
}

// Provider returns the underlying provider.
func (s *Service) Provider() database.Provider { return s.provider }

// Repositories returns the typed repository factory.
func (s *Service) Repositories() *repository.Factory { return s.repos }

// Accounts is shorthand for Repositories().Accounts().
func (s *Service) Accounts() *repository.AccountRepository { return s.repos.Accounts() }

// Progress is shorthand for Repositories().Progress().
func (s *Service) Progress() *repository.ProgressRepository { return s.repos.Progress() }

// Missions is shorthand for Repositories().Missions().
func (s *Service) Missions() *repository.MissionRepository { return s.repos.Missions() }

// Analytics is shorthand for Repositories().Analytics().
func (s *Service) Analytics() *repository.AnalyticsRepository { return s.repos.Analytics() }

// Registry exposes the metrics registry for HTTP scraping.
func (s *Service) Registry() *metrics.Registry { return s.registry }

// GetDocument reads a raw document. Returns nil when absent.
func (s *Service) GetDocument(ctx context.Context, collection, id string) (database.Document, error) {
	return s.provider.Read(ctx, collection, id)
}

// SetDocument stores a raw document, assigning an id when empty.
func (s *Service) SetDocument(ctx context.Context, collection string, doc database.Document, id string) (database.Document, error) {
	return s.provider.Create(ctx, collection, doc, id)
}

// UpdateDocument merges fields into an existing document and returns the
// updated state.
func (s *Service) UpdateDocument(ctx context.Context, collection, id string, fields database.Document) (database.Document, error) {
	if err := s.provider.Update(ctx, collection, id, fields); err != nil {
		return nil, err
	}
	return s.provider.Read(ctx, collection, id)
}

// DeleteDocument removes a document. Absent ids are not an error.
func (s *Service) DeleteDocument(ctx context.Context, collection, id string) error {
	return s.provider.Delete(ctx, collection, id)
}

// QueryCollection runs a raw query against a collection.
func (s *Service) QueryCollection(ctx context.Context, collection string, q database.Query) ([]database.Document, error) {
	return s.provider.Query(ctx, collection, q)
}

// QueryCollectionWithInfo runs a raw query and reports per-call execution
// metadata. When the provider stack cannot report cache hits, results are
// timed here and reported as uncached.
func (s *Service) QueryCollectionWithInfo(ctx context.Context, collection string, q database.Query) ([]database.Document, database.QueryInfo, error) {
	if iq, ok := s.provider.(database.InfoQuerier); ok {
		return iq.QueryDocs(ctx, collection, q)
	}
	start := time.Now()
	docs, err := s.provider.Query(ctx, collection, q)
	return docs, database.QueryInfo{Duration: time.Since(start)}, err
}

// OnSnapshot subscribes to the full result set of a query.
func (s *Service) OnSnapshot(ctx context.Context, collection string, q database.Query, fn func([]database.Document)) (database.Subscription, error) {
	return s.provider.Subscribe(ctx, collection, q, fn)
}

// OnDocumentSnapshot subscribes to a single document's changes.
func (s *Service) OnDocumentSnapshot(ctx context.Context, collection, id string, fn func(database.Document)) (database.Subscription, error) {
	return s.provider.SubscribeDocument(ctx, collection, id, fn)
}

// ClearCache drops all cached entries when the provider stack caches reads;
// it is a no-op otherwise.
func (s *Service) ClearCache(ctx context.Context) error {
	if cc, ok := s.provider.(database.CacheController); ok {
		return cc.ClearCache(ctx)
	}
	return nil
}

// InvalidateCacheTags drops cached entries carrying any of the given tags.
func (s *Service) InvalidateCacheTags(ctx context.Context, tags ...string) error {
	if cc, ok := s.provider.(database.CacheController); ok {
		return cc.InvalidateTags(ctx, tags...)
	}
	return nil
}

// QueryMetrics returns provider-collected query statistics for a collection,
// or an error wrapping database.ErrNotSupported when the provider does not
// report them.
func (s *Service) QueryMetrics(ctx context.Context, collection string) (database.QueryMetrics, error) {
	if pr, ok := s.provider.(database.PerformanceReporter); ok {
		return pr.QueryMetrics(ctx, collection)
	}
	return database.QueryMetrics{}, fmt.Errorf("provider %s: %w", s.provider.Name(), database.ErrNotSupported)
}

// AnalyzePerformance runs the optimizer over a collection's query metrics.
func (s *Service) AnalyzePerformance(ctx context.Context, collection string) (*optimizer.Report, error) {
	m, err := s.QueryMetrics(ctx, collection)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(m), nil
}

// Offline returns the offline sync manager, or nil when offline support is
// disabled in configuration.
func (s *Service) Offline() *offline.Manager { return s.offline }
