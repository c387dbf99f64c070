package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"catalog-api/internal/cache"
	"catalog-api/internal/metrics"
)

const cacheStatusHeader = "X-Cache"

// ResponseCache is the caching stage of the request pipeline. ReadThrough
// serves GET responses from the store and populates it on a successful
// miss; Invalidate removes key families after a successful write.
type ResponseCache struct {
	store   cache.Store
	ttl     time.Duration
	metrics *metrics.Metrics
	group   singleflight.Group

	// generation advances on every invalidation. A read that began under an
	// older generation is neither shared with later readers nor stored.
	generation atomic.Uint64
}

func NewResponseCache(store cache.Store, ttl time.Duration, m *metrics.Metrics) *ResponseCache {
	return &ResponseCache{store: store, ttl: ttl, metrics: m}
}

func (c *ResponseCache) ReadThrough(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || c.ttl <= 0 {
			c.countLookup(metrics.OutcomeBypass)
			w.Header().Set(cacheStatusHeader, "BYPASS")
			next.ServeHTTP(w, r)
			return
		}

		key := cache.KeyFor(r.Method, r.URL.RequestURI())
		if err := cache.ValidateKey(key); err != nil {
			c.countLookup(metrics.OutcomeBypass)
			w.Header().Set(cacheStatusHeader, "BYPASS")
			next.ServeHTTP(w, r)
			return
		}

		if body, ok := c.lookup(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(cacheStatusHeader, "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		// Concurrent misses on one key share a single handler run.
		generation := c.generation.Load()
		flight := key + "#" + strconv.FormatUint(generation, 10)
		result, _, _ := c.group.Do(flight, func() (any, error) {
			rec := newBufferedResponse()
			next.ServeHTTP(rec, r)
			if rec.successful() && c.generation.Load() == generation {
				ctx := context.WithoutCancel(r.Context())
				c.populate(ctx, key, rec.body.Bytes())
				// An invalidation that landed during the write may have
				// missed this entry.
				if c.generation.Load() != generation {
					c.discard(ctx, key)
				}
			}
			return rec, nil
		})

		w.Header().Set(cacheStatusHeader, "MISS")
		result.(*bufferedResponse).writeTo(w)
	})
}

// Invalidate runs the handler, and only if it succeeded deletes every key
// matching patterns before the response reaches the client. A failed
// invalidation never fails the write.
func (c *ResponseCache) Invalidate(patterns ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newBufferedResponse()
			next.ServeHTTP(rec, r)

			if rec.successful() {
				c.generation.Add(1)
				ctx := context.WithoutCancel(r.Context())
				for _, pattern := range patterns {
					c.invalidate(ctx, pattern)
				}
			}

			rec.writeTo(w)
		})
	}
}

func (c *ResponseCache) lookup(ctx context.Context, key string) ([]byte, bool) {
	body, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("cache lookup failed; treating as miss", "key", key, "error", err)
		c.countLookup(metrics.OutcomeError)
		return nil, false
	}
	if !ok {
		c.countLookup(metrics.OutcomeMiss)
		return nil, false
	}

	c.countLookup(metrics.OutcomeHit)
	return body, true
}

func (c *ResponseCache) populate(ctx context.Context, key string, body []byte) {
	result := "ok"
	if err := c.store.Set(ctx, key, body, c.ttl); err != nil {
		slog.Warn("cache populate failed", "key", key, "error", err)
		result = "error"
	}

	if c.metrics != nil {
		c.metrics.CachePopulates.WithLabelValues(result).Inc()
	}
}

func (c *ResponseCache) invalidate(ctx context.Context, pattern string) {
	deleted, err := c.store.DeleteMatching(ctx, pattern)
	if err != nil {
		slog.Error("cache invalidation failed; stale entries may be served until TTL expiry",
			"pattern", pattern, "ttl", c.ttl.String(), "error", err)
		if c.metrics != nil {
			c.metrics.Invalidations.WithLabelValues(pattern, "error").Inc()
		}
		return
	}

	slog.Debug("cache invalidated", "pattern", pattern, "deleted", deleted)
	if c.metrics != nil {
		c.metrics.Invalidations.WithLabelValues(pattern, "ok").Inc()
		c.metrics.InvalidatedKeys.Add(float64(deleted))
	}
}

func (c *ResponseCache) discard(ctx context.Context, key string) {
	if _, err := c.store.DeleteMatching(ctx, cache.ExactPattern(key)); err != nil {
		slog.Error("cache discard failed; stale entry may be served until TTL expiry",
			"key", key, "ttl", c.ttl.String(), "error", err)
	}
}

func (c *ResponseCache) countLookup(outcome string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(outcome).Inc()
	}
}

// bufferedResponse holds a complete response so the pipeline can act on
// its status before anything is sent.
type bufferedResponse struct {
	header      http.Header
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: http.Header{}, status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(statusCode int) {
	if b.wroteHeader {
		return
	}
	b.status = statusCode
	b.wroteHeader = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wroteHeader = true
	return b.body.Write(p)
}

func (b *bufferedResponse) successful() bool {
	return b.status >= 200 && b.status < 300
}

// writeTo replays the response. It only reads b, so one buffered response
// may be replayed to several writers.
func (b *bufferedResponse) writeTo(w http.ResponseWriter) {
	dst := w.Header()
	for key, values := range b.header {
		dst[key] = append([]string(nil), values...)
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
