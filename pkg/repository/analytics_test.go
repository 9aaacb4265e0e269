package repository

import (
	"context"
	"testing"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database/memory"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/domain"
)

func newAnalytics(t *testing.T) *AnalyticsRepository {
	t.Helper()
	return NewAnalyticsRepository(memory.New(memory.Options{}))
}

func TestRecordEvent(t *testing.T) {
	repo := newAnalytics(t)
	ctx := context.Background()

	stored, err := repo.RecordEvent(ctx, &domain.AnalyticsEvent{
		AccountID: "acc1",
		SessionID: "s1",
		Kind:      "exercise_solved",
		Payload:   map[string]any{"topic": "algebra"},
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if stored.ID == "" {
		t.Error("expected provider-assigned id")
	}
	if stored.Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}
}

func TestRecordEventKeepsExplicitTimestamp(t *testing.T) {
	repo := newAnalytics(t)
	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stored, err := repo.RecordEvent(context.Background(), &domain.AnalyticsEvent{
		Kind:      "session_start",
		Timestamp: when,
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if !stored.Timestamp.Equal(when) {
		t.Fatalf("timestamp = %v, want %v", stored.Timestamp, when)
	}
}

func TestRecordEventValidation(t *testing.T) {
	repo := newAnalytics(t)
	ctx := context.Background()

	if _, err := repo.RecordEvent(ctx, nil); !database.IsValidation(err) {
		t.Fatalf("nil event: expected validation error, got %v", err)
	}
	if _, err := repo.RecordEvent(ctx, &domain.AnalyticsEvent{AccountID: "acc1"}); !database.IsValidation(err) {
		t.Fatalf("missing kind: expected validation error, got %v", err)
	}
}

func TestFindByAccountOrdersRecentFirst(t *testing.T) {
	repo := newAnalytics(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := repo.RecordEvent(ctx, &domain.AnalyticsEvent{
			AccountID: "acc1",
			Kind:      "page_view",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	events, err := repo.FindByAccount(ctx, "acc1", 2)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].Timestamp.After(events[1].Timestamp) {
		t.Errorf("not ordered recent first: %v then %v", events[0].Timestamp, events[1].Timestamp)
	}
	if !events[0].Timestamp.Equal(base.Add(3 * time.Minute)) {
		t.Errorf("first event = %v, want latest", events[0].Timestamp)
	}
}

func TestFindBySessionChronological(t *testing.T) {
	repo := newAnalytics(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	kinds := []string{"session_start", "page_view", "session_end"}
	for i, k := range kinds {
		_, err := repo.RecordEvent(ctx, &domain.AnalyticsEvent{
			SessionID: "s1",
			Kind:      k,
			Timestamp: base.Add(time.Duration(len(kinds)-i) * time.Second),
		})
		if err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	if _, err := repo.RecordEvent(ctx, &domain.AnalyticsEvent{SessionID: "s2", Kind: "page_view"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	events, err := repo.FindBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Fatalf("events out of order at %d", i)
		}
	}
}
