package mongodb

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
)

// changeSub watches a collection change stream and re-issues the subscriber's
// query after every event. One goroutine per subscription; delivery is
// sequential, so snapshots are monotonic.
type changeSub struct {
	cancel context.CancelFunc
	once   sync.Once

	mu     sync.Mutex
	paused bool
}

func (s *changeSub) Unsubscribe() {
	s.once.Do(s.cancel)
}

func (s *changeSub) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

func (s *changeSub) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

func (s *changeSub) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Subscribe delivers the full current result set of q on every change to the
// collection. Requires change stream support (replica set or sharded
// deployment); standalone servers reject the watch.
func (p *Provider) Subscribe(ctx context.Context, collection string, q database.Query, fn func([]database.Document)) (database.Subscription, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	stream, err := p.collection(collection).Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, &database.UnavailableError{Provider: "mongodb", Err: err}
	}

	sub := &changeSub{cancel: cancel}
	deliver := func() {
		if sub.isPaused() {
			return
		}
		docs, qerr := p.Query(streamCtx, collection, q)
		if qerr != nil {
			p.log.Warn("subscription query failed", "collection", collection, "error", qerr)
			return
		}
		fn(docs)
	}

	go func() {
		defer stream.Close(context.Background())
		deliver()
		for stream.Next(streamCtx) {
			deliver()
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			p.log.Error("change stream closed unexpectedly", "collection", collection, "error", err)
		}
	}()

	return sub, nil
}

// SubscribeDocument delivers the document on every change and nil when it is
// deleted.
func (p *Provider) SubscribeDocument(ctx context.Context, collection, id string, fn func(database.Document)) (database.Subscription, error) {
	streamCtx, cancel := context.WithCancel(context.Background())
	stream, err := p.collection(collection).Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, &database.UnavailableError{Provider: "mongodb", Err: err}
	}

	sub := &changeSub{cancel: cancel}
	deliver := func() {
		if sub.isPaused() {
			return
		}
		doc, rerr := p.Read(streamCtx, collection, id)
		if rerr != nil {
			p.log.Warn("subscription read failed", "collection", collection, "id", id, "error", rerr)
			return
		}
		fn(doc)
	}

	go func() {
		defer stream.Close(context.Background())
		deliver()
		for stream.Next(streamCtx) {
			deliver()
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			p.log.Error("change stream closed unexpectedly", "collection", collection, "id", id, "error", err)
		}
	}()

	return sub, nil
}
