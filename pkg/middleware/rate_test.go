package middleware_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dukaan/pkg/middleware"
)

func TestMemoryStoreFixedWindow(t *testing.T) {
	store := middleware.NewMemoryStore()

	for i := 0; i < 3; i++ {
		if !store.Allow("client-a", 3, time.Minute) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if store.Allow("client-a", 3, time.Minute) {
		t.Error("fourth request in the window should be blocked")
	}

	// Other clients are counted independently.
	if !store.Allow("client-b", 3, time.Minute) {
		t.Error("a different key must have its own counter")
	}
}

func TestMemoryStoreWindowReset(t *testing.T) {
	store := middleware.NewMemoryStore()

	if !store.Allow("client", 1, 20*time.Millisecond) {
		t.Fatal("first request should pass")
	}
	if store.Allow("client", 1, 20*time.Millisecond) {
		t.Fatal("second request inside the window should be blocked")
	}

	time.Sleep(30 * time.Millisecond)

	if !store.Allow("client", 1, 20*time.Millisecond) {
		t.Error("counter should reset after the window elapses")
	}
}

func TestMemoryStoreConcurrentCounting(t *testing.T) {
	store := middleware.NewMemoryStore()

	const workers = 20
	var allowed int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if store.Allow("shared", 5, time.Minute) {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != 5 {
		t.Errorf("allowed = %d, want exactly 5", allowed)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := middleware.RateLimitWith(middleware.NewMemoryStore(), 3, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		if rec := send("10.0.0.1:5000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := send("10.0.0.1:5000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["detail"] != "Too many requests - slow down and try again in a minute" {
		t.Errorf("detail = %q", body["detail"])
	}

	// A different client address is not affected.
	if rec := send("10.0.0.2:5000"); rec.Code != http.StatusOK {
		t.Errorf("other client blocked: status = %d", rec.Code)
	}
}

func TestRateLimitUsesForwardedFor(t *testing.T) {
	handler := middleware.RateLimitWith(middleware.NewMemoryStore(), 1, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	send := func(fwd string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "127.0.0.1:9999" // same proxy for all clients
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("198.51.100.7"); code != http.StatusOK {
		t.Fatalf("first request: status = %d", code)
	}
	if code := send("198.51.100.7"); code != http.StatusTooManyRequests {
		t.Errorf("same forwarded client should be limited, got %d", code)
	}
	if code := send("198.51.100.8"); code != http.StatusOK {
		t.Errorf("distinct forwarded client should pass, got %d", code)
	}
}

func TestRateLimitManyClients(t *testing.T) {
	handler := middleware.RateLimit(2, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = fmt.Sprintf("10.1.0.%d:1234", i)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("client %d first request blocked: %d", i, rec.Code)
		}
	}
}
