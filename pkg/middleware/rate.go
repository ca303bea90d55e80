// Package middleware provides the HTTP middleware stack: authentication
// guard, scope checks, rate limiting, request logging, panic recovery,
// and CORS.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"dukaan/pkg/logger"
	"dukaan/pkg/response"
	"github.com/redis/go-redis/v9"
)

// RateStore counts requests per client key within a window.
type RateStore interface {
	// Allow records one request for key and reports whether it is still
	// within max for the window.
	Allow(key string, max int, window time.Duration) bool
}

// ── In-memory store ──────────────────────────────────────────────────────────

// bucket tracks a fixed-window request count for one client.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(max int, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

// MemoryStore keeps per-client counters in process memory. Suitable for a
// single instance; use RedisStore when running more than one replica.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{buckets: map[string]*bucket{}}

	// Evict buckets whose window has expired so long-running servers do
	// not grow without bound.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			s.mu.Lock()
			for key, b := range s.buckets {
				b.mu.Lock()
				expired := now.After(b.resetAt)
				b.mu.Unlock()
				if expired {
					delete(s.buckets, key)
				}
			}
			s.mu.Unlock()
		}
	}()

	return s
}

func (s *MemoryStore) Allow(key string, max int, window time.Duration) bool {
	s.mu.Lock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{resetAt: time.Now().Add(window)}
		s.buckets[key] = b
	}
	s.mu.Unlock()

	return b.allow(max, window)
}

// ── Redis store ──────────────────────────────────────────────────────────────

// RedisStore implements a fixed-window counter shared across instances.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Allow(key string, max int, window time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	fullKey := s.prefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open: a limiter outage must not take the login endpoint down.
		logger.Warn("rate limiter redis unavailable", "error", err.Error())
		return true
	}

	return incr.Val() <= int64(max)
}

// ── Middleware ───────────────────────────────────────────────────────────────

// RateLimitWith returns a middleware limiting each client address to max
// requests per window, counted in the given store. Exceedance returns a
// fixed 429 body distinct from the error taxonomy.
func RateLimitWith(store RateStore, max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
				ip = fwd
			}

			if !store.Allow(ip, max, window) {
				response.RateLimited(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit is RateLimitWith backed by a fresh in-memory store.
// Example: middleware.RateLimit(100, time.Minute)
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	return RateLimitWith(NewMemoryStore(), max, window)
}
