package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/masomo-admin/core/classroom"
	"github.com/trezcool/masomo-admin/core/resource"
)

const testToken = "t0k3n"

// testServer counts the requests it receives by method and path.
type testServer struct {
	*httptest.Server
	mu       sync.Mutex
	hits     map[string]int
	received chan *http.Request
}

func newTestServer(t *testing.T, h http.HandlerFunc) *testServer {
	srv := &testServer{hits: make(map[string]int), received: make(chan *http.Request, 100)}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.mu.Lock()
		srv.hits[r.Method+" "+r.URL.Path]++
		srv.mu.Unlock()
		srv.received <- r
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (srv *testServer) count(method, path string) int {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.hits[method+" "+path]
}

// waitRequest returns the next request received by the server.
func (srv *testServer) waitRequest(t *testing.T) *http.Request {
	select {
	case r := <-srv.received:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("waitRequest(): no request received")
		return nil
	}
}

func newTestAPI(t *testing.T, srv *testServer, policy Policy, options ...func(*Options)) *API {
	opts := Options{
		BaseURL:     srv.URL + "/v1",
		Credentials: StaticToken(testToken),
		Policy:      policy,
	}
	for _, o := range options {
		o(&opts)
	}
	api, err := NewAPI(opts)
	if err != nil {
		t.Fatalf("newTestAPI() failed: %v", err)
	}
	return api
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClassroom(id, name string, capacity int) classroom.Classroom {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	return classroom.Classroom{
		Traceable: resource.Traceable{ID: id, CreatedAt: now, UpdatedAt: now},
		Name:      name,
		Capacity:  capacity,
	}
}

// nextState waits for a state matching ok on the subscription.
func nextState[V any](t *testing.T, sub *Subscription[V], ok func(QueryState[V]) bool) QueryState[V] {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case st, open := <-sub.Updates():
			if !open {
				t.Fatalf("nextState(): subscription closed")
			}
			if ok(st) {
				return st
			}
		case <-timeout:
			t.Fatalf("nextState(): timed out")
		}
	}
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
