// Package pagecache memoizes cleaned pages in Redis so that re-ingesting a
// corpus skips pages whose raw text has not changed. Concurrent cleanings
// of the same page are collapsed through singleflight, and a circuit
// breaker degrades the cache to straight computation when Redis misbehaves.
package pagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/pipeline"
	apperrors "github.com/ayurcorpus/corpus-cleaning-platform/pkg/errors"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/metrics"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/redis"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "page:"

// Cache implements pipeline.PageCache over Redis.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New builds a Cache around an established Redis client. m may be nil.
func New(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		breaker: resilience.NewCircuitBreaker("page-cache", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		}),
		metrics: m,
		logger:  slog.Default().With("component", "page-cache"),
	}
}

// GetOrCompute returns the cached cleaning of page, computing and storing
// it on a miss. Identical pages requested concurrently share one
// computation. Redis failures are absorbed: the page is computed locally
// and the result simply is not cached.
func (c *Cache) GetOrCompute(ctx context.Context, page pipeline.Page, compute func() (pipeline.CleanedPage, error)) (pipeline.CleanedPage, error) {
	key := cacheKey(page)

	v, err, _ := c.group.Do(key, func() (any, error) {
		if cached, ok := c.lookup(ctx, key); ok {
			c.hits.Add(1)
			if c.metrics != nil {
				c.metrics.PageCacheHits.Inc()
			}
			return cached, nil
		}
		c.misses.Add(1)
		if c.metrics != nil {
			c.metrics.PageCacheMisses.Inc()
		}

		cleaned, err := compute()
		if err != nil {
			return pipeline.CleanedPage{}, err
		}
		c.store(ctx, key, cleaned)
		return cleaned, nil
	})
	if err != nil {
		return pipeline.CleanedPage{}, err
	}
	return v.(pipeline.CleanedPage), nil
}

func (c *Cache) lookup(ctx context.Context, key string) (pipeline.CleanedPage, bool) {
	var raw string
	err := c.breaker.Execute(func() error {
		var err error
		raw, err = c.client.Get(ctx, key)
		if redis.IsNilError(err) {
			raw = ""
			return nil
		}
		return err
	})
	if err != nil || raw == "" {
		if err != nil {
			c.logger.Warn("page cache lookup degraded",
				"error", apperrors.Local(apperrors.ErrCacheUnavailable, "%v", err),
			)
		}
		c.observeBreaker()
		return pipeline.CleanedPage{}, false
	}
	c.observeBreaker()

	var cleaned pipeline.CleanedPage
	if err := json.Unmarshal([]byte(raw), &cleaned); err != nil {
		// Corrupt entry; drop it and recompute.
		_ = c.client.Del(ctx, key)
		return pipeline.CleanedPage{}, false
	}
	return cleaned, true
}

func (c *Cache) store(ctx context.Context, key string, cleaned pipeline.CleanedPage) {
	data, err := json.Marshal(cleaned)
	if err != nil {
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, string(data), c.ttl)
	})
	if err != nil {
		c.logger.Warn("page cache store skipped", "error", err)
	}
	c.observeBreaker()
}

// Invalidate removes every cached page. Called when the vocabulary or
// canonical dictionary changes, since any cached cleaning may now differ.
func (c *Cache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating page cache: %w", err)
	}
	c.logger.Info("page cache invalidated", "deleted", deleted)
	return deleted, nil
}

// Stats returns hit and miss counts since construction.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) observeBreaker() {
	if c.metrics != nil {
		c.metrics.CircuitBreakerState.WithLabelValues("page-cache").Set(float64(c.breaker.GetState()))
	}
}

// cacheKey derives a stable key from the page identity and raw text, so
// edited source pages miss and re-clean.
func cacheKey(page pipeline.Page) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|", page.Source, page.Page)
	h.Write([]byte(page.Text))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
