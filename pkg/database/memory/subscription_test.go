package memory

import (
	"context"
	"testing"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
)

const waitTimeout = 2 * time.Second

func waitForSnapshot(t *testing.T, ch <-chan []database.Document, check func([]database.Document) bool) {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case docs := <-ch:
			if check(docs) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	p := New(Options{})
	ctx := context.Background()

	if _, err := p.Create(ctx, "topics", database.Document{"name": "algebra"}, "a"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	ch := make(chan []database.Document, 8)
	sub, err := p.Subscribe(ctx, "topics", database.Query{}, func(docs []database.Document) {
		ch <- docs
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	waitForSnapshot(t, ch, func(docs []database.Document) bool {
		return len(docs) == 1 && docs[0].ID() == "a"
	})
}

func TestSubscribeSeesChanges(t *testing.T) {
	p := New(Options{})
	ctx := context.Background()

	ch := make(chan []database.Document, 8)
	sub, err := p.Subscribe(ctx, "topics", database.Query{
		Where: []database.Condition{database.Where("level", database.OpGte, 2)},
	}, func(docs []database.Document) {
		ch <- docs
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	// Initial snapshot is empty.
	waitForSnapshot(t, ch, func(docs []database.Document) bool { return len(docs) == 0 })

	if _, err := p.Create(ctx, "topics", database.Document{"level": 3}, "b"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	waitForSnapshot(t, ch, func(docs []database.Document) bool {
		return len(docs) == 1 && docs[0].ID() == "b"
	})

	// A document below the filter threshold does not appear.
	if _, err := p.Create(ctx, "topics", database.Document{"level": 1}, "c"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := p.Delete(ctx, "topics", "b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	waitForSnapshot(t, ch, func(docs []database.Document) bool { return len(docs) == 0 })
}

func TestSubscribeDocumentDeliversNilOnDelete(t *testing.T) {
	p := New(Options{})
	ctx := context.Background()

	if _, err := p.Create(ctx, "topics", database.Document{"name": "algebra"}, "a"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	type delivery struct {
		doc     database.Document
		deleted bool
	}
	ch := make(chan delivery, 8)
	sub, err := p.SubscribeDocument(ctx, "topics", "a", func(doc database.Document) {
		ch <- delivery{doc: doc, deleted: doc == nil}
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	// Initial state, then deletion.
	deadline := time.After(waitTimeout)
	sawDoc := false
	for {
		select {
		case d := <-ch:
			if !sawDoc {
				if d.deleted {
					t.Fatal("initial delivery should carry the document")
				}
				sawDoc = true
				if err := p.Delete(ctx, "topics", "a"); err != nil {
					t.Fatalf("delete failed: %v", err)
				}
				continue
			}
			if d.deleted {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for nil delivery")
		}
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	p := New(Options{})
	sub, err := p.Subscribe(context.Background(), "topics", database.Query{}, func([]database.Document) {})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	sub.Unsubscribe()
	sub.Unsubscribe() // must not panic or deadlock
}

func TestPauseHoldsResumeDeliversLatest(t *testing.T) {
	p := New(Options{})
	ctx := context.Background()

	ch := make(chan []database.Document, 16)
	sub, err := p.Subscribe(ctx, "topics", database.Query{}, func(docs []database.Document) {
		ch <- docs
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	waitForSnapshot(t, ch, func(docs []database.Document) bool { return len(docs) == 0 })

	sub.Pause()
	// Give the run loop a moment to observe the pause before mutating.
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		if _, err := p.Create(ctx, "topics", database.Document{"n": i}, ""); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	select {
	case docs := <-ch:
		t.Fatalf("received snapshot while paused: %v", docs)
	case <-time.After(100 * time.Millisecond):
	}

	sub.Resume()
	waitForSnapshot(t, ch, func(docs []database.Document) bool { return len(docs) == 3 })
}

func TestDisconnectStopsSubscriptions(t *testing.T) {
	p := New(Options{})
	ctx := context.Background()

	ch := make(chan []database.Document, 8)
	if _, err := p.Subscribe(ctx, "topics", database.Query{}, func(docs []database.Document) {
		ch <- docs
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	waitForSnapshot(t, ch, func(docs []database.Document) bool { return len(docs) == 0 })

	if err := p.Disconnect(ctx); err != nil {
		t.Fatalf("disconnect failed: %v", err)
	}
	if err := p.Connect(ctx); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}

	if _, err := p.Create(ctx, "topics", database.Document{}, "x"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	select {
	case docs := <-ch:
		if len(docs) > 0 {
			t.Fatalf("subscription survived disconnect: %v", docs)
		}
	case <-time.After(100 * time.Millisecond):
	}
}
