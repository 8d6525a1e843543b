package client

import (
	"context"
	"net/url"
	"slices"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/masomo-admin/core/resource"
)

var errEmptyID = errors.New("empty resource ID")

// Identifiable is implemented by update DTOs: Key returns the ID of the resource to update.
type Identifiable interface {
	Key() string
}

// ResourceClient is a cache-coherent client of one REST resource collection.
// T is the resource, C the creation DTO and U the update DTO.
//
// Reads are cached by request signature and tagged: lists with (type, ListKey), single
// resources with (type, id). Successful mutations invalidate the affected tags.
type ResourceClient[T any, C any, U Identifiable] struct {
	resourceType string
	path         string
	tr           *Transport
	cache        *cache
}

// NewResourceClient returns a client of the collection at path (e.g. "/classrooms").
// resourceType names the cache tags of the collection.
func NewResourceClient[T any, C any, U Identifiable](tr *Transport, resourceType, path string) (*ResourceClient[T, C, U], error) {
	metrics, err := newCacheMetrics(tr.opts.MeterProvider, resourceType)
	if err != nil {
		return nil, err
	}
	return &ResourceClient[T, C, U]{
		resourceType: resourceType,
		path:         path,
		tr:           tr,
		cache:        newCache(tr.opts.Policy, tr.logger, metrics),
	}, nil
}

func (rc *ResourceClient[T, C, U]) listTag() Tag { return Tag{Type: rc.resourceType, Key: ListKey} }

func (rc *ResourceClient[T, C, U]) idTag(id string) Tag { return Tag{Type: rc.resourceType, Key: id} }

func (rc *ResourceClient[T, C, U]) itemPath(id string) string {
	return rc.path + "/" + url.PathEscape(id)
}

func (rc *ResourceClient[T, C, U]) listQuery(params resource.Params) (string, []Tag, fetchFunc) {
	query := params.Normalize().Values()
	fetch := func(ctx context.Context) (interface{}, error) {
		var page resource.Page[T]
		if err := rc.tr.do(ctx, rest.Get, rc.path, query, nil, &page); err != nil {
			return nil, err
		}
		if page.Content == nil {
			page.Content = []T{}
		}
		return page, nil
	}
	return signature(rest.Get, rc.path, query), []Tag{rc.listTag()}, fetch
}

func (rc *ResourceClient[T, C, U]) getQuery(id string) (string, []Tag, fetchFunc) {
	path := rc.itemPath(id)
	fetch := func(ctx context.Context) (interface{}, error) {
		var obj T
		if err := rc.tr.do(ctx, rest.Get, path, nil, nil, &obj); err != nil {
			return nil, err
		}
		return obj, nil
	}
	return signature(rest.Get, path, nil), []Tag{rc.idTag(id)}, fetch
}

func copyPage[T any](data interface{}) resource.Page[T] {
	page := data.(resource.Page[T])
	page.Content = slices.Clone(page.Content)
	return page
}

func copyObj[T any](data interface{}) T {
	return data.(T)
}

// List returns a page of the collection: GET /{resource}?page&size&sortBy&sortDesc.
// Missing params take the documented defaults.
func (rc *ResourceClient[T, C, U]) List(ctx context.Context, params resource.Params, opts ...ReadOption) (resource.Page[T], error) {
	key, tags, fetch := rc.listQuery(params)
	data, err := rc.cache.read(ctx, key, tags, fetch, newReadOptions(opts))
	if err != nil {
		return resource.Page[T]{}, err
	}
	return copyPage[T](data), nil
}

// Get returns one resource: GET /{resource}/{id}.
func (rc *ResourceClient[T, C, U]) Get(ctx context.Context, id string, opts ...ReadOption) (T, error) {
	var zero T
	if id == "" {
		return zero, errEmptyID
	}
	key, tags, fetch := rc.getQuery(id)
	data, err := rc.cache.read(ctx, key, tags, fetch, newReadOptions(opts))
	if err != nil {
		return zero, err
	}
	return copyObj[T](data), nil
}

// Create creates a resource: POST /{resource}. On success, lists are invalidated.
func (rc *ResourceClient[T, C, U]) Create(ctx context.Context, dto C) (T, error) {
	var obj T
	if err := rc.tr.do(ctx, rest.Post, rc.path, nil, dto, &obj); err != nil {
		var zero T
		return zero, err
	}
	rc.cache.invalidate(ctx, rc.listTag())
	return obj, nil
}

// Update updates the resource identified by dto.Key(): PUT /{resource}/{id}.
// On success, lists and the resource are invalidated.
func (rc *ResourceClient[T, C, U]) Update(ctx context.Context, dto U) (T, error) {
	var obj T
	id := dto.Key()
	if id == "" {
		return obj, errEmptyID
	}
	if err := rc.tr.do(ctx, rest.Put, rc.itemPath(id), nil, dto, &obj); err != nil {
		var zero T
		return zero, err
	}
	rc.cache.invalidate(ctx, rc.listTag(), rc.idTag(id))
	return obj, nil
}

// Remove deletes a resource and returns it: DELETE /{resource}/{id}.
// On success, lists and the resource are invalidated.
func (rc *ResourceClient[T, C, U]) Remove(ctx context.Context, id string) (T, error) {
	var obj T
	if id == "" {
		return obj, errEmptyID
	}
	if err := rc.tr.do(ctx, rest.Delete, rc.itemPath(id), nil, nil, &obj); err != nil {
		var zero T
		return zero, err
	}
	rc.cache.invalidate(ctx, rc.listTag(), rc.idTag(id))
	return obj, nil
}

// WatchList subscribes to a page of the collection. The subscription ends with ctx or Close.
func (rc *ResourceClient[T, C, U]) WatchList(ctx context.Context, params resource.Params, opts ...ReadOption) *Subscription[resource.Page[T]] {
	key, tags, fetch := rc.listQuery(params)
	sub := newSubscription(rc.cache, key, copyPage[T])
	rc.cache.subscribe(ctx, key, tags, fetch, sub.sub, newReadOptions(opts))
	sub.watch(ctx)
	return sub
}

// WatchGet subscribes to one resource. The subscription ends with ctx or Close.
func (rc *ResourceClient[T, C, U]) WatchGet(ctx context.Context, id string, opts ...ReadOption) (*Subscription[T], error) {
	if id == "" {
		return nil, errEmptyID
	}
	key, tags, fetch := rc.getQuery(id)
	sub := newSubscription(rc.cache, key, copyObj[T])
	rc.cache.subscribe(ctx, key, tags, fetch, sub.sub, newReadOptions(opts))
	sub.watch(ctx)
	return sub, nil
}

// Invalidate marks the queries tagged with any of tags stale.
func (rc *ResourceClient[T, C, U]) Invalidate(ctx context.Context, tags ...Tag) {
	rc.cache.invalidate(ctx, tags...)
}

// Focus refetches the subscribed queries if the policy says so.
func (rc *ResourceClient[T, C, U]) Focus() {
	if rc.cache.policy.RefetchOnFocus {
		rc.cache.refetchSubscribed(context.Background())
	}
}

// Reconnect refetches the subscribed queries if the policy says so.
func (rc *ResourceClient[T, C, U]) Reconnect() {
	if rc.cache.policy.RefetchOnReconnect {
		rc.cache.refetchSubscribed(context.Background())
	}
}

// Reset drops every cached result.
func (rc *ResourceClient[T, C, U]) Reset() {
	rc.cache.reset(context.Background())
}

// Cached reports whether the list query for params has a result, and whether it is stale.
func (rc *ResourceClient[T, C, U]) Cached(params resource.Params) (ok, stale bool) {
	key, _, _ := rc.listQuery(params)
	return rc.cache.cached(key)
}
