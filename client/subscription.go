package client

import (
	"context"
	"sync"
	"time"
)

// QueryState is the state of a subscribed query.
type QueryState[V any] struct {
	Status    Status
	Data      V     // last successful result; kept while loading or on error
	Err       error // error of the last request, if it failed
	Stale     bool  // Data was invalidated by a mutation
	FetchedAt time.Time
}

// Subscription delivers the state transitions of one query until closed.
// Only the latest state is buffered: a slow reader skips intermediate states.
type Subscription[V any] struct {
	updates chan QueryState[V]
	sub     *subscriber
	cache   *cache
	key     string
	done    chan struct{}
	once    sync.Once
}

func newSubscription[V any](c *cache, key string, convert func(interface{}) V) *Subscription[V] {
	s := &Subscription[V]{
		updates: make(chan QueryState[V], 1),
		cache:   c,
		key:     key,
		done:    make(chan struct{}),
	}
	s.sub = &subscriber{deliver: func(snap snapshot) {
		st := QueryState[V]{Status: snap.status, Err: snap.err, Stale: snap.stale, FetchedAt: snap.fetchedAt}
		if snap.data != nil {
			st.Data = convert(snap.data)
		}
		select {
		case <-s.updates: // drop the unread state
		default:
		}
		s.updates <- st
	}}
	return s
}

// watch closes the subscription when ctx is done.
func (s *Subscription[V]) watch(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
}

// Updates returns the channel of state transitions. It is closed by Close.
func (s *Subscription[V]) Updates() <-chan QueryState[V] { return s.updates }

// Refetch issues a new request for the query.
func (s *Subscription[V]) Refetch() {
	select {
	case <-s.done:
		return
	default:
	}
	s.cache.refetch(context.Background(), s.key)
}

// Close detaches the subscription: no state is delivered after Close returns.
func (s *Subscription[V]) Close() {
	s.once.Do(func() {
		s.cache.unsubscribe(s.key, s.sub)
		s.sub.close(func() { close(s.updates) })
		close(s.done)
	})
}
