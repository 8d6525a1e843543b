package resource

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-admin/core"
)

func TestParams_Normalize(t *testing.T) {
	intPtr := func(i int) *int { return &i }
	strPtr := func(s string) *string { return &s }
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name   string
		params Params
		want   Query
	}{
		{name: "defaults", want: Query{Page: 0, Size: 10, SortBy: "createdAt", SortDesc: true}},
		{
			name:   "all set",
			params: Params{Page: intPtr(2), Size: intPtr(5), SortBy: strPtr(" name "), SortDesc: boolPtr(false)},
			want:   Query{Page: 2, Size: 5, SortBy: "name", SortDesc: false},
		},
		{name: "empty sortBy", params: Params{SortBy: strPtr("")}, want: Query{Page: 0, Size: 10, SortBy: "createdAt", SortDesc: true}},
		{name: "zero values kept", params: Params{Page: intPtr(0), Size: intPtr(0)}, want: Query{Size: 0, SortBy: "createdAt", SortDesc: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Normalize())
		})
	}
}

func TestQuery_Values(t *testing.T) {
	q := Params{}.Normalize()
	assert.Equal(t, map[string]string{"page": "0", "size": "10", "sortBy": "createdAt", "sortDesc": "true"}, q.Values())
	assert.Equal(t, 20, Query{Page: 2, Size: 10}.Offset())
}

func TestQuery_Validate(t *testing.T) {
	sortable := SortFields(TraceableColumns(map[string]string{"name": "name", "capacity": "capacity"}))

	tests := []struct {
		name       string
		query      Query
		wantFields map[string]string
	}{
		{name: "valid", query: Query{Page: 0, Size: 10, SortBy: "name"}},
		{name: "max size", query: Query{Page: 3, Size: MaxSize, SortBy: "createdAt"}},
		{name: "negative page", query: Query{Page: -1, Size: 10, SortBy: "name"}, wantFields: map[string]string{"page": "must be >= 0"}},
		{name: "size 0", query: Query{Size: 0, SortBy: "name"}, wantFields: map[string]string{"size": "must be >= 1"}},
		{name: "size too big", query: Query{Size: MaxSize + 1, SortBy: "name"}, wantFields: map[string]string{"size": "must be <= 100"}},
		{
			name: "typo", query: Query{Size: 10, SortBy: "capcity"},
			wantFields: map[string]string{"sortBy": `invalid sort field (did you mean "capacity"?)`},
		},
		{name: "case matters", query: Query{Size: 10, SortBy: "Name"}, wantFields: map[string]string{"sortBy": `invalid sort field (did you mean "name"?)`}},
		{name: "nothing alike", query: Query{Size: 10, SortBy: "xyz"}, wantFields: map[string]string{"sortBy": "invalid sort field"}},
		{name: "last addressable page", query: Query{Page: math.MaxInt / MaxSize, Size: MaxSize, SortBy: "name"}},
		{
			name: "page overflows offset", query: Query{Page: math.MaxInt/MaxSize + 1, Size: MaxSize, SortBy: "name"},
			wantFields: map[string]string{"page": "must be <= " + strconv.Itoa(math.MaxInt/MaxSize)},
		},
		{name: "id is not sortable", query: Query{Size: 10, SortBy: "id"}, wantFields: map[string]string{"sortBy": "invalid sort field"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate(sortable)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("Validate() error = %v; want *core.ValidationError", err)
			}
			got := make(map[string]string, len(vErr.Fields))
			for _, f := range vErr.Fields {
				got[f.Field] = f.Error
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestCompare(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{name: "strings", a: "a", b: "b", want: -1},
		{name: "upper before lower", a: "Z", b: "a", want: -1},
		{name: "ints", a: 40, b: 3, want: 1},
		{name: "equal ints", a: 3, b: 3, want: 0},
		{name: "times", a: now, b: now.Add(time.Second), want: -1},
		{name: "mixed kinds", a: "a", b: 1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}
