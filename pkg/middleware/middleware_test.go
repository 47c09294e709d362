package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]string
	setErr  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{entries: make(map[string]string)}
}

func (s *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key], nil
}

func (s *fakeIdempotencyStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func TestIdempotencyMiddleware_ReplaysFirstSuccessBody(t *testing.T) {
	store := newFakeIdempotencyStore()

	calls := 0
	// Writes a body without calling WriteHeader: the implicit 200 must
	// still be treated as a success and cached.
	handler := IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"Programarea a fost trimisă cu succes."}`))
	}))

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/appointment", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "client-key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := post()
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, 1, calls)

	second := post()
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls, "replayed request must not reach the handler again")
}

func TestIdempotencyMiddleware_DistinctKeysNotShared(t *testing.T) {
	store := newFakeIdempotencyStore()

	calls := 0
	handler := IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))

	for _, key := range []string{"key-a", "key-b"} {
		req := httptest.NewRequest("POST", "/api/appointment", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", key)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_NoKeyPassesThrough(t *testing.T) {
	store := newFakeIdempotencyStore()

	calls := 0
	handler := IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/appointment", strings.NewReader("{}"))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2, calls, "requests without a key are never cached")
	assert.Empty(t, store.entries)
}

func TestIdempotencyMiddleware_ErrorResponsesNotCached(t *testing.T) {
	store := newFakeIdempotencyStore()

	calls := 0
	handler := IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"Eroare la trimiterea emailului"}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/appointment", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "client-key-1")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2, calls, "failed deliveries must be retried, not replayed")
}

func TestIdempotencyMiddleware_StoreFailureDoesNotBreakResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	store.setErr = errors.New("redis down")

	handler := IdempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest("POST", "/api/appointment", strings.NewReader("{}"))
	req.Header.Set("Idempotency-Key", "client-key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
