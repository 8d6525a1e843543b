package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/trezcool/masomo-admin/core"
)

// ListKey is the tag key shared by every list query of a resource type.
const ListKey = "list"

var nowFunc = time.Now // mockable

// Tag associates cached queries with the resources they depend on.
type Tag struct {
	Type string
	Key  string // a resource ID or ListKey
}

// Status is the lifecycle of a query: idle -> loading -> success | error, back to loading on refetch.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "idle"
}

type fetchFunc func(ctx context.Context) (interface{}, error)

// snapshot is the state of an entry at one point in time.
type snapshot struct {
	status    Status
	data      interface{}
	err       error
	stale     bool
	fetchedAt time.Time
}

// entry is one cached query.
//
// Every request gets a sequence number when issued. Only the result of the latest request
// is applied, so a response never overwrites or preempts the result of a request issued
// after it. Results issued at or before staleAt are stale.
type entry struct {
	key   string
	tags  []Tag
	fetch fetchFunc

	state     Status // of the applied result
	data      interface{}
	err       error
	fetchedAt time.Time

	latest  uint64
	applied uint64
	staleAt uint64

	subs map[*subscriber]struct{}
}

func (e *entry) loading() bool { return e.latest > e.applied }

func (e *entry) stale() bool { return e.applied <= e.staleAt }

func (e *entry) fresh() bool { return e.state == StatusSuccess && !e.stale() }

func (e *entry) snapshot() snapshot {
	snap := snapshot{
		status:    e.state,
		data:      e.data,
		err:       e.err,
		stale:     e.state != StatusIdle && e.stale(),
		fetchedAt: e.fetchedAt,
	}
	if e.loading() {
		snap.status = StatusLoading
	}
	return snap
}

// subscriber receives the snapshots of one entry until it is closed.
type subscriber struct {
	mu      sync.Mutex
	closed  bool
	deliver func(snapshot)
}

func (s *subscriber) send(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.deliver(snap)
	}
}

func (s *subscriber) close(onClose func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		onClose()
	}
}

// cache holds the queries of one client: entries keyed by request signature and a tag index.
// It is owned by the client and guarded by mu.
type cache struct {
	mu      sync.Mutex
	seq     uint64
	entries map[string]*entry
	tags    map[Tag]map[string]struct{}
	group   singleflight.Group

	policy  Policy
	logger  core.Logger
	metrics *cacheMetrics
}

func newCache(policy Policy, logger core.Logger, metrics *cacheMetrics) *cache {
	return &cache{
		entries: make(map[string]*entry),
		tags:    make(map[Tag]map[string]struct{}),
		policy:  policy,
		logger:  logger,
		metrics: metrics,
	}
}

// lookup returns the entry for key, creating and indexing it if needed. Must be called with c.mu held.
func (c *cache) lookup(key string, tags []Tag, fetch fetchFunc) *entry {
	if e, ok := c.entries[key]; ok {
		return e
	}
	e := &entry{key: key, tags: tags, fetch: fetch, subs: make(map[*subscriber]struct{})}
	c.entries[key] = e
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return e
}

// read returns the data of the query identified by key, fetching it unless fresh data is cached.
// Concurrent reads of the same key share one request.
func (c *cache) read(ctx context.Context, key string, tags []Tag, fetch fetchFunc, ro readOptions) (interface{}, error) {
	c.mu.Lock()
	e := c.lookup(key, tags, fetch)
	if !ro.force && !c.policy.RefetchOnMountOrArgChange && e.fresh() {
		data := e.data
		c.mu.Unlock()
		c.metrics.hit(ctx)
		return data, nil
	}
	ch := c.start(ctx, e, ro.force)
	c.mu.Unlock()

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// start issues a request for e, or joins the one in flight unless force is set.
// Must be called with c.mu held.
func (c *cache) start(ctx context.Context, e *entry, force bool) <-chan singleflight.Result {
	if !force && e.loading() {
		return c.group.DoChan(e.key, c.flight(ctx, e, e.latest))
	}

	c.seq++
	seq := c.seq
	e.latest = seq
	c.group.Forget(e.key) // the request in flight, if any, is superseded
	ch := c.group.DoChan(e.key, c.flight(ctx, e, seq))
	c.metrics.miss(ctx)
	c.notify(e)
	return ch
}

// flight runs the request issued with the sequence number seq.
// It outlives the caller's context: other callers may be waiting for it.
func (c *cache) flight(ctx context.Context, e *entry, seq uint64) func() (interface{}, error) {
	ctx = context.WithoutCancel(ctx)
	return func() (interface{}, error) {
		data, err := e.fetch(ctx)

		c.mu.Lock()
		c.apply(e, seq, data, err)
		c.mu.Unlock()
		return data, err
	}
}

// apply stores the result of request seq. Must be called with c.mu held.
func (c *cache) apply(e *entry, seq uint64, data interface{}, err error) {
	if seq <= e.applied || seq < e.latest {
		c.logger.Debug("client: dropping superseded response", e.key)
		return
	}
	e.applied = seq
	if err != nil {
		e.state, e.err = StatusError, err
	} else {
		e.state, e.data, e.err, e.fetchedAt = StatusSuccess, data, nil, nowFunc()
	}
	c.notify(e)
}

// notify sends the state of e to its subscribers. Must be called with c.mu held.
func (c *cache) notify(e *entry) {
	if len(e.subs) == 0 {
		return
	}
	snap := e.snapshot()
	for sub := range e.subs {
		sub.send(snap)
	}
}

// invalidate marks the queries tagged with any of tags stale.
// Subscribed queries are refetched in the background; the others on their next read.
func (c *cache) invalidate(ctx context.Context, tags ...Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{})
	for _, tag := range tags {
		for key := range c.tags[tag] {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			e := c.entries[key]
			e.staleAt = c.seq
			if len(e.subs) > 0 {
				c.start(ctx, e, true)
			}
		}
	}
	c.metrics.invalidated(ctx, len(seen))
	if len(seen) > 0 {
		c.logger.Debug("client: invalidated queries", tags, len(seen))
	}
}

// subscribe attaches sub to the query identified by key and fetches it unless fresh data is cached.
func (c *cache) subscribe(ctx context.Context, key string, tags []Tag, fetch fetchFunc, sub *subscriber, ro readOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookup(key, tags, fetch)
	e.subs[sub] = struct{}{}
	if !ro.force && !c.policy.RefetchOnMountOrArgChange && e.fresh() {
		c.metrics.hit(ctx)
		sub.send(e.snapshot())
		return
	}
	if ro.force || !e.loading() {
		c.start(ctx, e, ro.force)
		return
	}
	sub.send(e.snapshot())
}

func (c *cache) unsubscribe(key string, sub *subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		delete(e.subs, sub)
	}
}

// refetch issues a new request for key if it is cached.
func (c *cache) refetch(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.start(ctx, e, true)
	}
}

// refetchSubscribed issues a new request for every query having subscribers.
func (c *cache) refetchSubscribed(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if len(e.subs) > 0 {
			c.start(ctx, e, true)
		}
	}
}

// reset drops every cached result. Subscribed queries are kept and refetched;
// responses to requests issued before the reset are dropped.
func (c *cache) reset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if len(e.subs) == 0 {
			delete(c.entries, key)
			for _, tag := range e.tags {
				delete(c.tags[tag], key)
				if len(c.tags[tag]) == 0 {
					delete(c.tags, tag)
				}
			}
			continue
		}
		e.state, e.data, e.err, e.fetchedAt = StatusIdle, nil, nil, time.Time{}
		e.applied, e.latest, e.staleAt = c.seq, c.seq, c.seq
		c.start(ctx, e, true)
	}
}

// cached reports whether key has a result, and whether it is stale.
func (c *cache) cached(key string) (ok, stale bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.entries[key]
	if !found || e.state == StatusIdle {
		return false, false
	}
	return true, e.stale()
}
