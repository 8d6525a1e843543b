package resource

import (
	"context"
	"strings"
	"time"
)

type (
	// Entity is implemented by every resource type.
	Entity interface {
		Key() string
		// SortValue returns the value of a sortable field: a string, an int or a time.Time.
		SortValue(field string) any
	}

	// Repository persists one resource type.
	// Get, Update and Delete return core.ErrNotFound when no object has the given ID.
	Repository[T Entity] interface {
		Create(ctx context.Context, obj T) (T, error)
		Get(ctx context.Context, id string) (T, error)
		Query(ctx context.Context, q Query) (Page[T], error)
		Update(ctx context.Context, obj T) (T, error)
		Delete(ctx context.Context, id string) (T, error)
	}

	// Service is the API every resource service exposes to the transport layer.
	// C is the creation DTO and U the update DTO.
	Service[T Entity, C any, U any] interface {
		Create(ctx context.Context, dto C) (T, error)
		Get(ctx context.Context, id string) (T, error)
		Query(ctx context.Context, q Query) (Page[T], error)
		Update(ctx context.Context, id string, dto U) (T, error)
		Delete(ctx context.Context, id string) (T, error)
	}
)

// TraceValue returns the sort value of the Traceable fields.
func (t Traceable) TraceValue(field string) (any, bool) {
	switch field {
	case "createdAt":
		return t.CreatedAt, true
	case "updatedAt":
		return t.UpdatedAt, true
	}
	return nil, false
}

// Compare orders two sort values of the same kind. Unknown kinds compare equal.
func Compare(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case int:
		if bv, ok := b.(int); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return 0
}

// TraceableColumns maps the Traceable sort fields to their DB columns.
func TraceableColumns(extra map[string]string) map[string]string {
	cols := map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	}
	for k, v := range extra {
		cols[k] = v
	}
	return cols
}

// SortFields lists the keys of a field -> column mapping.
func SortFields(columns map[string]string) []string {
	fields := make([]string, 0, len(columns))
	for f := range columns {
		fields = append(fields, f)
	}
	return fields
}
