package repository

import (
	"sync"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/domain"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
)

// Factory builds and caches the domain repositories over a shared provider.
// All accessors are safe for concurrent use and return the same instance.
type Factory struct {
	provider database.Provider
	log      logger.Logger

	accountsOnce  sync.Once
	accounts      *AccountRepository
	progressOnce  sync.Once
	progress      *ProgressRepository
	missionsOnce  sync.Once
	missions      *MissionRepository
	analyticsOnce sync.Once
	analytics     *AnalyticsRepository
}

// NewFactory creates a repository factory bound to the provider. A nil log
// discards repository diagnostics.
func NewFactory(provider database.Provider, log logger.Logger) *Factory {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Factory{provider: provider, log: log}
}

// Provider returns the provider the factory builds repositories over.
func (f *Factory) Provider() database.Provider { return f.provider }

func (f *Factory) Accounts() *AccountRepository {
	f.accountsOnce.Do(func() {
		f.accounts = NewAccountRepository(f.provider)
		f.accounts.WithLogger(f.log)
	})
	return f.accounts
}

func (f *Factory) Progress() *ProgressRepository {
	f.progressOnce.Do(func() {
		f.progress = NewProgressRepository(f.provider)
		f.progress.WithLogger(f.log)
	})
	return f.progress
}

func (f *Factory) Missions() *MissionRepository {
	f.missionsOnce.Do(func() {
		f.missions = NewMissionRepository(f.provider)
		f.missions.WithLogger(f.log)
	})
	return f.missions
}

func (f *Factory) Analytics() *AnalyticsRepository {
	f.analyticsOnce.Do(func() {
		f.analytics = NewAnalyticsRepository(f.provider)
		f.analytics.WithLogger(f.log)
	})
	return f.analytics
}

// Collection builds a typed repository for an arbitrary collection, for
// entity types outside the built-in domain set.
func Collection[T domain.Entity](f *Factory, name string) *Repository[T] {
	return New[T](f.provider, name).WithLogger(f.log)
}
