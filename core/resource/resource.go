// Package resource holds the types shared by every academics resource (classrooms, courses, groups, subjects)
// on both sides of the HTTP API.
package resource

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/masomo-admin/core"
)

// Query defaults
const (
	DefaultPage     = 0
	DefaultSize     = 10
	DefaultSortBy   = "createdAt"
	DefaultSortDesc = true

	MaxSize = 100
)

var suggestionMinRatio = .6

// Traceable is embedded by every resource.
type Traceable struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"` // UTC
}

func (t Traceable) Key() string { return t.ID }

// Page is an ordered, paginated slice of a resource collection.
// TotalElements is the size of the whole collection, independent of the page size.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
}

// Params selects a Page of a resource collection.
// Pointer fields distinguish "not provided" from zero values; use Normalize to apply the defaults.
type Params struct {
	Page     *int    `json:"page,omitempty" query:"page"`
	Size     *int    `json:"size,omitempty" query:"size"`
	SortBy   *string `json:"sortBy,omitempty" query:"sortBy"`
	SortDesc *bool   `json:"sortDesc,omitempty" query:"sortDesc"`
}

// Query is a normalized Params.
type Query struct {
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

// Normalize applies the documented defaults to missing fields.
func (p Params) Normalize() Query {
	q := Query{Page: DefaultPage, Size: DefaultSize, SortBy: DefaultSortBy, SortDesc: DefaultSortDesc}
	if p.Page != nil {
		q.Page = *p.Page
	}
	if p.Size != nil {
		q.Size = *p.Size
	}
	if p.SortBy != nil && *p.SortBy != "" {
		q.SortBy = core.CleanString(*p.SortBy)
	}
	if p.SortDesc != nil {
		q.SortDesc = *p.SortDesc
	}
	return q
}

// Values encodes the query the way the API expects it: page, size, sortBy & sortDesc, always all four.
func (q Query) Values() map[string]string {
	return map[string]string{
		"page":     strconv.Itoa(q.Page),
		"size":     strconv.Itoa(q.Size),
		"sortBy":   q.SortBy,
		"sortDesc": strconv.FormatBool(q.SortDesc),
	}
}

// Offset is the index of the first element of the page.
func (q Query) Offset() int {
	return q.Page * q.Size
}

// Ordering translates the query's sort into a core.DBOrdering using the given field -> column mapping.
func (q Query) Ordering(columns map[string]string) core.DBOrdering {
	return core.DBOrdering{Field: columns[q.SortBy], Ascending: !q.SortDesc}
}

// Validate checks the paging values and that SortBy is one of `sortable`.
func (q Query) Validate(sortable []string) error {
	var flds []core.FieldError
	if q.Page < 0 {
		flds = append(flds, core.FieldError{Field: "page", Error: "must be >= 0"})
	}
	if q.Size <= 0 {
		flds = append(flds, core.FieldError{Field: "size", Error: "must be >= 1"})
	} else if q.Size > MaxSize {
		flds = append(flds, core.FieldError{Field: "size", Error: "must be <= " + strconv.Itoa(MaxSize)})
	} else if maxPage := math.MaxInt / q.Size; q.Page > maxPage {
		// Offset must not overflow
		flds = append(flds, core.FieldError{Field: "page", Error: "must be <= " + strconv.Itoa(maxPage)})
	}
	if !contains(sortable, q.SortBy) {
		msg := "invalid sort field"
		if s := suggest(q.SortBy, sortable); s != "" {
			msg += " (did you mean \"" + s + "\"?)"
		}
		flds = append(flds, core.FieldError{Field: "sortBy", Error: msg})
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, val := range values {
		if val == v {
			return true
		}
	}
	return false
}

// suggest returns the candidate most similar to `s`, if similar enough.
func suggest(s string, candidates []string) string {
	if s == "" {
		return ""
	}
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	var (
		best      string
		bestRatio float64
	)
	for _, c := range sorted {
		ratio := difflib.NewMatcher(splitChars(s), splitChars(c)).Ratio()
		if ratio > bestRatio {
			best, bestRatio = c, ratio
		}
	}
	if bestRatio < suggestionMinRatio {
		return ""
	}
	return best
}

func splitChars(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}
