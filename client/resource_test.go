package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-admin/core/classroom"
	"github.com/trezcool/masomo-admin/core/resource"
)

func pageOf(objs ...classroom.Classroom) resource.Page[classroom.Classroom] {
	return resource.Page[classroom.Classroom]{Content: objs, TotalElements: int64(len(objs))}
}

func TestResourceClient_List_query(t *testing.T) {
	tests := []struct {
		name      string
		params    resource.Params
		wantQuery string
	}{
		{name: "defaults", wantQuery: "page=0&size=10&sortBy=createdAt&sortDesc=true"},
		{
			name:      "all set",
			params:    resource.Params{Page: intPtr(2), Size: intPtr(25), SortBy: strPtr("name"), SortDesc: boolPtr(false)},
			wantQuery: "page=2&size=25&sortBy=name&sortDesc=false",
		},
		{name: "page only", params: resource.Params{Page: intPtr(3)}, wantQuery: "page=3&size=10&sortBy=createdAt&sortDesc=true"},
		{
			name:      "sort only",
			params:    resource.Params{SortBy: strPtr(" capacity ")},
			wantQuery: "page=0&size=10&sortBy=capacity&sortDesc=true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, pageOf())
			})
			api := newTestAPI(t, srv, Policy{})

			page, err := api.Classrooms.List(context.Background(), tt.params)
			require.NoError(t, err)
			assert.NotNil(t, page.Content)

			r := srv.waitRequest(t)
			assert.Equal(t, "/v1/classrooms", r.URL.Path)
			assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
			assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		})
	}
}

func TestResourceClient_Get_cache(t *testing.T) {
	cls := newClassroom("A", "Room A", 30)
	tests := []struct {
		name      string
		policy    Policy
		opts      []ReadOption
		wantCount int
	}{
		{name: "cached", wantCount: 1},
		{name: "refetch on mount", policy: Policy{RefetchOnMountOrArgChange: true}, wantCount: 2},
		{name: "forced", opts: []ReadOption{ForceRefetch()}, wantCount: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, cls)
			})
			api := newTestAPI(t, srv, tt.policy)
			ctx := context.Background()

			got, err := api.Classrooms.Get(ctx, "A")
			require.NoError(t, err)
			assert.Equal(t, cls, got)

			got, err = api.Classrooms.Get(ctx, "A", tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, cls, got)

			assert.Equal(t, tt.wantCount, srv.count(http.MethodGet, "/v1/classrooms/A"))
		})
	}
}

func TestResourceClient_Get_emptyID(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, pageOf())
	})
	api := newTestAPI(t, srv, Policy{})

	_, err := api.Classrooms.Get(context.Background(), "")
	assert.ErrorIs(t, err, errEmptyID)
	_, err = api.Classrooms.Remove(context.Background(), "")
	assert.ErrorIs(t, err, errEmptyID)
	_, err = api.Classrooms.Update(context.Background(), classroom.UpdateClassroom{Name: "x"})
	assert.ErrorIs(t, err, errEmptyID)
	_, err = api.Classrooms.WatchGet(context.Background(), "")
	assert.ErrorIs(t, err, errEmptyID)

	assert.Empty(t, srv.received)
}

func TestResourceClient_Get_dedup(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, newClassroom("A", "Room A", 30))
	})
	api := newTestAPI(t, srv, Policy{})

	var wg sync.WaitGroup
	results := make([]classroom.Classroom, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cls, err := api.Classrooms.Get(context.Background(), "A")
			assert.NoError(t, err)
			results[i] = cls
		}(i)
	}
	srv.waitRequest(t)
	time.Sleep(50 * time.Millisecond) // let the other readers join
	close(release)
	wg.Wait()

	for _, cls := range results {
		assert.Equal(t, "Room A", cls.Name)
	}
	assert.Equal(t, 1, srv.count(http.MethodGet, "/v1/classrooms/A"))
}

func TestResourceClient_Get_cancelledCallerDoesNotCancelRequest(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, newClassroom("A", "Room A", 30))
	})
	api := newTestAPI(t, srv, Policy{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error)
	go func() {
		_, err := api.Classrooms.Get(ctx, "A")
		errc <- err
	}()
	srv.waitRequest(t)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		ok, _ := api.Classrooms.cache.cached(signature("GET", "/classrooms/A", nil))
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cls, err := api.Classrooms.Get(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "Room A", cls.Name)
	assert.Equal(t, 1, srv.count(http.MethodGet, "/v1/classrooms/A"))
}

func TestResourceClient_Get_lastRequestWins(t *testing.T) {
	var (
		mu      sync.Mutex
		n       int
		arrived = make(chan struct{})
		first   = make(chan struct{})
	)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		n++
		nth := n
		mu.Unlock()
		if nth == 1 {
			close(arrived)
			<-first
			writeJSON(w, http.StatusOK, newClassroom("A", "first", 30))
			return
		}
		writeJSON(w, http.StatusOK, newClassroom("A", "second", 30))
	})
	api := newTestAPI(t, srv, Policy{})
	ctx := context.Background()

	firstRes := make(chan classroom.Classroom)
	go func() {
		cls, err := api.Classrooms.Get(ctx, "A")
		assert.NoError(t, err)
		firstRes <- cls
	}()
	<-arrived

	second, err := api.Classrooms.Get(ctx, "A", ForceRefetch())
	require.NoError(t, err)
	assert.Equal(t, "second", second.Name)

	// the superseded request resolves last
	close(first)
	assert.Equal(t, "first", (<-firstRes).Name, "each caller gets the response to its own request")

	cached, err := api.Classrooms.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "second", cached.Name)
	assert.Equal(t, 2, srv.count(http.MethodGet, "/v1/classrooms/A"))
}

func TestResourceClient_Get_supersededResolvesFirst(t *testing.T) {
	var (
		mu       sync.Mutex
		n        int
		arrived1 = make(chan struct{})
		arrived2 = make(chan struct{})
		first    = make(chan struct{})
		second   = make(chan struct{})
	)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		n++
		nth := n
		mu.Unlock()
		if nth == 1 {
			close(arrived1)
			<-first
			writeJSON(w, http.StatusOK, newClassroom("A", "first", 30))
			return
		}
		close(arrived2)
		<-second
		writeJSON(w, http.StatusOK, newClassroom("A", "second", 30))
	})
	api := newTestAPI(t, srv, Policy{})
	ctx := context.Background()

	get := func(opts ...ReadOption) <-chan classroom.Classroom {
		res := make(chan classroom.Classroom, 1)
		go func() {
			cls, err := api.Classrooms.Get(ctx, "A", opts...)
			assert.NoError(t, err)
			res <- cls
		}()
		return res
	}

	firstRes := get()
	<-arrived1
	secondRes := get(ForceRefetch())
	<-arrived2

	close(first)
	assert.Equal(t, "first", (<-firstRes).Name, "each caller gets the response to its own request")

	// the entry is still waiting for the latest request
	joined := get()
	select {
	case cls := <-joined:
		t.Fatalf("Get() = %q before the latest request resolved", cls.Name)
	case <-time.After(50 * time.Millisecond):
	}

	close(second)
	assert.Equal(t, "second", (<-secondRes).Name)
	assert.Equal(t, "second", (<-joined).Name)

	cached, err := api.Classrooms.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "second", cached.Name)
	assert.Equal(t, 2, srv.count(http.MethodGet, "/v1/classrooms/A"))
}

func TestResourceClient_Create_invalidatesList(t *testing.T) {
	var (
		mu    sync.Mutex
		rooms []classroom.Classroom
	)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, pageOf(rooms...))
		case http.MethodPost:
			cls := newClassroom("B", "Room B", 20)
			rooms = append(rooms, cls)
			writeJSON(w, http.StatusCreated, cls)
		}
	})
	api := newTestAPI(t, srv, Policy{})
	ctx := context.Background()

	page, err := api.Classrooms.List(ctx, resource.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Content)

	ok, stale := api.Classrooms.Cached(resource.Params{})
	assert.True(t, ok)
	assert.False(t, stale)

	created, err := api.Classrooms.Create(ctx, classroom.NewClassroom{Name: "Room B", Capacity: 20})
	require.NoError(t, err)
	assert.Equal(t, "B", created.ID)

	ok, stale = api.Classrooms.Cached(resource.Params{})
	assert.True(t, ok)
	assert.True(t, stale)
	assert.Equal(t, 1, srv.count(http.MethodGet, "/v1/classrooms"), "invalidation does not refetch unsubscribed queries")

	for i := 0; i < 3; i++ {
		page, err = api.Classrooms.List(ctx, resource.Params{})
		require.NoError(t, err)
		assert.Equal(t, []classroom.Classroom{created}, page.Content)
	}
	assert.Equal(t, 2, srv.count(http.MethodGet, "/v1/classrooms"), "exactly one refetch")
}

func TestResourceClient_Update_invalidatesListAndItem(t *testing.T) {
	var (
		mu   sync.Mutex
		name = "Room A"
	)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodPut:
			name = "Room A+"
			writeJSON(w, http.StatusOK, newClassroom("A", name, 30))
		case r.URL.Path == "/v1/classrooms":
			writeJSON(w, http.StatusOK, pageOf(newClassroom("A", name, 30)))
		default:
			writeJSON(w, http.StatusOK, newClassroom(strings.TrimPrefix(r.URL.Path, "/v1/classrooms/"), name, 30))
		}
	})
	api := newTestAPI(t, srv, Policy{})
	ctx := context.Background()

	_, err := api.Classrooms.List(ctx, resource.Params{})
	require.NoError(t, err)
	_, err = api.Classrooms.Get(ctx, "A")
	require.NoError(t, err)
	_, err = api.Classrooms.Get(ctx, "Z")
	require.NoError(t, err)

	_, err = api.Classrooms.Update(ctx, classroom.UpdateClassroom{ID: "A", Name: "Room A+"})
	require.NoError(t, err)

	got, err := api.Classrooms.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Room A+", got.Name)
	page, err := api.Classrooms.List(ctx, resource.Params{})
	require.NoError(t, err)
	assert.Equal(t, "Room A+", page.Content[0].Name)
	_, err = api.Classrooms.Get(ctx, "Z")
	require.NoError(t, err)

	assert.Equal(t, 2, srv.count(http.MethodGet, "/v1/classrooms/A"))
	assert.Equal(t, 2, srv.count(http.MethodGet, "/v1/classrooms"))
	assert.Equal(t, 1, srv.count(http.MethodGet, "/v1/classrooms/Z"), "other items stay cached")
}

func TestResourceClient_Create_validationError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"errors": map[string][]string{"capacity": {"must be >= 1"}},
			})
			return
		}
		writeJSON(w, http.StatusOK, pageOf(newClassroom("A", "Room A", 30)))
	})
	api := newTestAPI(t, srv, Policy{})
	ctx := context.Background()

	before, err := api.Classrooms.List(ctx, resource.Params{})
	require.NoError(t, err)

	_, err = api.Classrooms.Create(ctx, classroom.NewClassroom{Name: "Math", Capacity: 0})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, map[string][]string{"capacity": {"must be >= 1"}}, vErr.FieldErrors)
	assert.Equal(t, "validation failed: capacity: must be >= 1", vErr.Error())

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Status)

	_, stale := api.Classrooms.Cached(resource.Params{})
	assert.False(t, stale, "a failed mutation invalidates nothing")
	after, err := api.Classrooms.List(ctx, resource.Params{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, srv.count(http.MethodGet, "/v1/classrooms"))
}

func TestResourceClient_Remove_notFound(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusOK, pageOf(newClassroom("A", "Room A", 30)))
	})
	api := newTestAPI(t, srv, Policy{})
	ctx := context.Background()

	before, err := api.Classrooms.List(ctx, resource.Params{})
	require.NoError(t, err)

	_, err = api.Classrooms.Remove(ctx, "nonexistent-id")
	var nfErr *NotFoundError
	require.True(t, errors.As(err, &nfErr))
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, 1, srv.count(http.MethodDelete, "/v1/classrooms/nonexistent-id"))

	after, err := api.Classrooms.List(ctx, resource.Params{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, srv.count(http.MethodGet, "/v1/classrooms"))
}

func TestResourceClient_errors(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/classrooms/missing":
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		case "/v1/classrooms/boom":
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		case "/v1/classrooms/garbage":
			_, _ = w.Write([]byte("{"))
		}
	})
	api := newTestAPI(t, srv, Policy{})
	ctx := context.Background()

	_, err := api.Classrooms.Get(ctx, "missing")
	var nfErr *NotFoundError
	assert.True(t, errors.As(err, &nfErr))

	_, err = api.Classrooms.Get(ctx, "boom")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Contains(t, httpErr.Body, "internal server error")
	assert.False(t, errors.As(err, &nfErr))

	_, err = api.Classrooms.Get(ctx, "garbage")
	assert.Error(t, err)
	assert.False(t, errors.As(err, &httpErr))

	srv.Close()
	_, err = api.Classrooms.Get(ctx, "offline")
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.MethodGet, netErr.Op)
	assert.Equal(t, srv.URL+"/v1/classrooms/offline", netErr.URL)
}

func TestResourceClient_errorIsCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			writeJSON(w, http.StatusInternalServerError, nil)
			return
		}
		writeJSON(w, http.StatusOK, newClassroom("A", "Room A", 30))
	})
	api := newTestAPI(t, srv, Policy{})
	ctx := context.Background()

	_, err := api.Classrooms.Get(ctx, "A")
	require.Error(t, err)

	fail.Store(false)
	cls, err := api.Classrooms.Get(ctx, "A")
	require.NoError(t, err, "errors are not served from the cache")
	assert.Equal(t, "Room A", cls.Name)
	assert.Equal(t, 2, srv.count(http.MethodGet, "/v1/classrooms/A"))
}

func TestResourceClient_invalidatedInFlight(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			<-release
		}
		writeJSON(w, http.StatusOK, newClassroom("A", "Room A", 30))
	})
	api := newTestAPI(t, srv, Policy{})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := api.Classrooms.Get(ctx, "A")
		assert.NoError(t, err)
	}()
	srv.waitRequest(t)

	_, err := api.Classrooms.Update(ctx, classroom.UpdateClassroom{ID: "A", Name: "Room A"})
	require.NoError(t, err)
	close(release)
	<-done

	ok, stale := api.Classrooms.cache.cached(signature("GET", "/classrooms/A", nil))
	assert.True(t, ok)
	assert.True(t, stale, "a response to a request issued before the mutation is stale")

	_, err = api.Classrooms.Get(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, srv.count(http.MethodGet, "/v1/classrooms/A"))
}

func TestResourceClient_itemPathEscaped(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newClassroom("a/b", "Room", 1))
	})
	api := newTestAPI(t, srv, Policy{})

	_, err := api.Classrooms.Get(context.Background(), "a/b")
	require.NoError(t, err)
	r := srv.waitRequest(t)
	assert.Equal(t, "/v1/classrooms/"+url.PathEscape("a/b"), r.URL.EscapedPath())
}
