package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/resource"
)

var errDuplicateID = errors.New("duplicate id")

// table is a thread-safe resource.Repository keeping objects in a map.
type table[T resource.Entity] struct {
	mutex sync.RWMutex
	rows  map[string]T
}

func newTable[T resource.Entity]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (tbl *table[T]) reset() {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()
	tbl.rows = make(map[string]T)
}

func (tbl *table[T]) Create(_ context.Context, obj T) (T, error) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if _, ok := tbl.rows[obj.Key()]; ok {
		var zero T
		return zero, errors.Wrap(errDuplicateID, obj.Key())
	}
	tbl.rows[obj.Key()] = obj
	return obj, nil
}

func (tbl *table[T]) Get(_ context.Context, id string) (T, error) {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	if obj, ok := tbl.rows[id]; ok {
		return obj, nil
	}
	var zero T
	return zero, core.ErrNotFound
}

func (tbl *table[T]) Query(_ context.Context, q resource.Query) (resource.Page[T], error) {
	tbl.mutex.RLock()
	objs := make([]T, 0, len(tbl.rows))
	for _, obj := range tbl.rows {
		objs = append(objs, obj)
	}
	tbl.mutex.RUnlock()

	sort.Slice(objs, func(i, j int) bool {
		c := resource.Compare(objs[i].SortValue(q.SortBy), objs[j].SortValue(q.SortBy))
		if c == 0 {
			return objs[i].Key() < objs[j].Key() // stable pages
		}
		if q.SortDesc {
			return c > 0
		}
		return c < 0
	})

	page := resource.Page[T]{Content: []T{}, TotalElements: int64(len(objs))}
	start := q.Offset()
	if start < 0 || start >= len(objs) || q.Size <= 0 {
		return page, nil
	}
	end := start + q.Size
	if end > len(objs) {
		end = len(objs)
	}
	page.Content = append(page.Content, objs[start:end]...)
	return page, nil
}

func (tbl *table[T]) Update(_ context.Context, obj T) (T, error) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	if _, ok := tbl.rows[obj.Key()]; !ok {
		var zero T
		return zero, core.ErrNotFound
	}
	tbl.rows[obj.Key()] = obj
	return obj, nil
}

func (tbl *table[T]) Delete(_ context.Context, id string) (T, error) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	obj, ok := tbl.rows[id]
	if !ok {
		var zero T
		return zero, core.ErrNotFound
	}
	delete(tbl.rows, id)
	return obj, nil
}
