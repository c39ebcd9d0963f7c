package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shareport/shareport/internal/service"
)

func newIdempotencyStoreForTest(t *testing.T) service.IdempotencyStore {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return service.NewRedisIdempotencyStore(client, "idem_mw_test")
}

func TestIdempotencyReplaysCompletedResponse(t *testing.T) {
	store := newIdempotencyStoreForTest(t)
	calls := 0
	h := Idempotency(store, "test_scope", time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"n":1}`))
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/things", strings.NewReader(`{"a":1}`))
		req.Header.Set("Idempotency-Key", "key-1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	first := do()
	if first.Code != http.StatusCreated || calls != 1 {
		t.Fatalf("first request: code=%d calls=%d", first.Code, calls)
	}

	second := do()
	if second.Code != http.StatusCreated {
		t.Fatalf("replay: expected 201, got %d", second.Code)
	}
	if calls != 1 {
		t.Fatalf("replay must not re-run the handler, calls=%d", calls)
	}
	if second.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatal("expected replay marker header")
	}
	if second.Body.String() != `{"n":1}` {
		t.Fatalf("replay body: got %q", second.Body.String())
	}
}

func TestIdempotencyReplaysRedirectWithLocation(t *testing.T) {
	store := newIdempotencyStoreForTest(t)
	calls := 0
	h := Idempotency(store, "test_scope", time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Redirect(w, r, "https://blob.test/blobs/report.pdf", http.StatusFound)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/s/abc", nil)
		req.Header.Set("Idempotency-Key", "key-redirect")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	first := do()
	if first.Code != http.StatusFound {
		t.Fatalf("first request: got %d", first.Code)
	}
	wantLocation := first.Header().Get("Location")
	if wantLocation == "" {
		t.Fatal("first response is missing its Location header")
	}

	second := do()
	if calls != 1 {
		t.Fatalf("replay must not re-run the handler, calls=%d", calls)
	}
	if second.Code != http.StatusFound {
		t.Fatalf("replay: expected 302, got %d", second.Code)
	}
	if got := second.Header().Get("Location"); got != wantLocation {
		t.Fatalf("replayed redirect Location: got %q want %q", got, wantLocation)
	}
}

func TestIdempotencyKeyReuseWithDifferentBodyConflicts(t *testing.T) {
	store := newIdempotencyStoreForTest(t)
	h := Idempotency(store, "test_scope", time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/things", strings.NewReader(`{"a":1}`))
	req.Header.Set("Idempotency-Key", "key-2")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first request: got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/things", strings.NewReader(`{"a":2}`))
	req.Header.Set("Idempotency-Key", "key-2")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for key reuse with new payload, got %d", rr.Code)
	}
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	store := newIdempotencyStoreForTest(t)
	calls := 0
	h := Idempotency(store, "test_scope", time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/things", strings.NewReader(`{"a":1}`))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("request %d: got %d", i+1, rr.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("keyless requests must each run the handler, calls=%d", calls)
	}
}
