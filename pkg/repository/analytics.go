package repository

import (
	"context"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/domain"
)

// AnalyticsRepository stores and queries tracked user events.
type AnalyticsRepository struct {
	*Repository[domain.AnalyticsEvent]
}

// NewAnalyticsRepository creates a repository bound to the analytics collection.
func NewAnalyticsRepository(provider database.Provider) *AnalyticsRepository {
	return &AnalyticsRepository{Repository: New[domain.AnalyticsEvent](provider, domain.CollectionAnalytics)}
}

// RecordEvent stores the event, stamping the timestamp when unset. The id
// is left to the provider so concurrent recorders never collide.
func (r *AnalyticsRepository) RecordEvent(ctx context.Context, event *domain.AnalyticsEvent) (*domain.AnalyticsEvent, error) {
	if event == nil {
		return nil, &database.ValidationError{Reason: "event cannot be nil"}
	}
	if event.Kind == "" {
		return nil, &database.ValidationError{Field: "kind", Reason: "event kind is required"}
	}
	stored := *event
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}
	return r.Create(ctx, &stored)
}

// FindByAccount returns the account's events, most recent first.
func (r *AnalyticsRepository) FindByAccount(ctx context.Context, accountID string, limit int) ([]*domain.AnalyticsEvent, error) {
	return r.FindAll(ctx, database.Query{
		Where:   []database.Condition{database.Where("account_id", database.OpEq, accountID)},
		OrderBy: []database.Order{{Field: "timestamp", Desc: true}},
		Limit:   limit,
	})
}

// FindBySession returns a session's events in chronological order.
func (r *AnalyticsRepository) FindBySession(ctx context.Context, sessionID string) ([]*domain.AnalyticsEvent, error) {
	return r.FindAll(ctx, database.Query{
		Where:   []database.Condition{database.Where("session_id", database.OpEq, sessionID)},
		OrderBy: []database.Order{{Field: "timestamp"}},
	})
}
