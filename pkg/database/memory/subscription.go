package memory

import (
	"context"
	"sync"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
)

// snapshot is one delivery unit for a subscription: either a full query
// result set or a single document (nil when deleted).
type snapshot struct {
	docs []database.Document
	doc  database.Document
}

type subscription struct {
	id         uint64
	provider   *Provider
	collection string
	query      database.Query
	docID      string
	isDoc      bool
	fn         func([]database.Document)
	fnDoc      func(database.Document)

	// ch holds at most the latest snapshot; the notifier drops stale
	// snapshots in favor of newer ones, which keeps delivery monotonic.
	ch     chan snapshot
	resume chan struct{}
	closed chan struct{}
	once   sync.Once

	mu     sync.Mutex
	paused bool
}

// Subscribe registers a collection subscription. The callback immediately
// receives the current result set, then the full result set after every
// change to the collection. Callbacks run on a dedicated goroutine per
// subscription and must not block indefinitely.
func (p *Provider) Subscribe(ctx context.Context, collection string, q database.Query, fn func([]database.Document)) (database.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s := &subscription{
		provider:   p,
		collection: collection,
		query:      q,
		fn:         fn,
		ch:         make(chan snapshot, 1),
		resume:     make(chan struct{}, 1),
		closed:     make(chan struct{}),
	}

	p.mu.Lock()
	p.nextSubID++
	s.id = p.nextSubID
	p.subs[s.id] = s
	s.push(snapshot{docs: evaluate(p.collections[collection], q)})
	p.mu.Unlock()

	go s.run()
	return s, nil
}

// SubscribeDocument registers a single-document subscription. The callback
// immediately receives the current document (nil when absent), then the
// document after every change, and nil when it is deleted.
func (p *Provider) SubscribeDocument(ctx context.Context, collection, id string, fn func(database.Document)) (database.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &subscription{
		provider:   p,
		collection: collection,
		docID:      id,
		isDoc:      true,
		fnDoc:      fn,
		ch:         make(chan snapshot, 1),
		resume:     make(chan struct{}, 1),
		closed:     make(chan struct{}),
	}

	p.mu.Lock()
	p.nextSubID++
	s.id = p.nextSubID
	p.subs[s.id] = s
	s.push(p.documentSnapshotLocked(collection, id))
	p.mu.Unlock()

	go s.run()
	return s, nil
}

// notifyLocked recomputes and pushes snapshots for every subscription on the
// collection. Caller holds the write lock, so snapshots are computed in
// mutation order and each subscription observes a monotonic sequence.
func (p *Provider) notifyLocked(collection string) {
	for _, s := range p.subs {
		if s.collection != collection {
			continue
		}
		if s.isDoc {
			s.push(p.documentSnapshotLocked(collection, s.docID))
			continue
		}
		s.push(snapshot{docs: evaluate(p.collections[collection], s.query)})
	}
}

func (p *Provider) documentSnapshotLocked(collection, id string) snapshot {
	doc, ok := p.collections[collection][id]
	if !ok {
		return snapshot{doc: nil}
	}
	return snapshot{doc: doc.Clone()}
}

// push replaces any undelivered snapshot with the newer one. Never blocks;
// called under the provider lock.
func (s *subscription) push(snap snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

func (s *subscription) run() {
	var pending *snapshot
	for {
		select {
		case <-s.closed:
			return
		case snap := <-s.ch:
			if s.isPaused() {
				pending = &snap
				continue
			}
			s.dispatch(snap)
			pending = nil
		case <-s.resume:
			if pending != nil && !s.isPaused() {
				s.dispatch(*pending)
				pending = nil
			}
		}
	}
}

func (s *subscription) dispatch(snap snapshot) {
	if s.isDoc {
		s.fnDoc(snap.doc)
		return
	}
	s.fn(snap.docs)
}

func (s *subscription) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Unsubscribe removes the subscription. Safe to call from any goroutine and
// more than once.
func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.closed)
		s.provider.mu.Lock()
		delete(s.provider.subs, s.id)
		s.provider.mu.Unlock()
	})
}

// Pause suppresses callback delivery until Resume. The latest snapshot that
// arrives while paused is delivered on Resume.
func (s *subscription) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Resume re-enables callback delivery.
func (s *subscription) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	select {
	case s.resume <- struct{}{}:
	default:
	}
}
