// Package cache provides time-bounded caching of fetch results. It decorates
// the catalog and Kp sources so repeated refreshes inside a TTL reuse the
// previous response. The evaluation pipeline never depends on caching for
// correctness; these decorators are owned entirely by the serving layer.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sunwolf-labs/supt-monitor/internal/adapter/ingv"
	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

// CatalogFetcher is the source being decorated by CatalogCache.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context, q ingv.Query) (domain.Table, error)
}

// KpFetcher is the source being decorated by KpCache.
type KpFetcher interface {
	FetchKp(ctx context.Context) (float64, error)
}

// CatalogCache caches catalog tables keyed by query parameters. Only
// successful fetches are cached so transient failures can be retried.
type CatalogCache struct {
	inner CatalogFetcher
	ttl   time.Duration
	clock clockwork.Clock

	hits   prometheus.Counter // nil when uninstrumented
	misses prometheus.Counter

	mu      sync.Mutex
	entries map[string]catalogEntry
}

type catalogEntry struct {
	table   domain.Table
	expires time.Time
}

// NewCatalogCache decorates a catalog source with a TTL cache.
func NewCatalogCache(inner CatalogFetcher, ttl time.Duration, clock clockwork.Clock) *CatalogCache {
	return &CatalogCache{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]catalogEntry),
	}
}

// Instrument attaches hit/miss counters. Optional; a bare cache records
// nothing.
func (c *CatalogCache) Instrument(hits, misses prometheus.Counter) *CatalogCache {
	c.hits = hits
	c.misses = misses
	return c
}

func (c *CatalogCache) FetchCatalog(ctx context.Context, q ingv.Query) (domain.Table, error) {
	key := q.CacheKey()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.clock.Now().Before(e.expires) {
		c.mu.Unlock()
		if c.hits != nil {
			c.hits.Inc()
		}
		return e.table, nil
	}
	c.mu.Unlock()
	if c.misses != nil {
		c.misses.Inc()
	}

	table, err := c.inner.FetchCatalog(ctx, q)
	if err != nil {
		return table, err
	}

	c.mu.Lock()
	c.entries[key] = catalogEntry{table: table, expires: c.clock.Now().Add(c.ttl)}
	c.evictExpiredLocked()
	c.mu.Unlock()
	return table, nil
}

// Invalidate drops all cached catalog entries.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]catalogEntry)
	c.mu.Unlock()
}

// evictExpiredLocked keeps the map from accumulating stale windows as the
// rolling query window shifts on every refresh.
func (c *CatalogCache) evictExpiredLocked() {
	now := c.clock.Now()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}

// KpCache caches the single current Kp value.
type KpCache struct {
	inner KpFetcher
	ttl   time.Duration
	clock clockwork.Clock

	hits   prometheus.Counter // nil when uninstrumented
	misses prometheus.Counter

	mu      sync.Mutex
	kp      float64
	expires time.Time
	valid   bool
}

// NewKpCache decorates a Kp source with a TTL cache.
func NewKpCache(inner KpFetcher, ttl time.Duration, clock clockwork.Clock) *KpCache {
	return &KpCache{inner: inner, ttl: ttl, clock: clock}
}

// Instrument attaches hit/miss counters. Optional; a bare cache records
// nothing.
func (c *KpCache) Instrument(hits, misses prometheus.Counter) *KpCache {
	c.hits = hits
	c.misses = misses
	return c
}

func (c *KpCache) FetchKp(ctx context.Context) (float64, error) {
	c.mu.Lock()
	if c.valid && c.clock.Now().Before(c.expires) {
		kp := c.kp
		c.mu.Unlock()
		if c.hits != nil {
			c.hits.Inc()
		}
		return kp, nil
	}
	c.mu.Unlock()
	if c.misses != nil {
		c.misses.Inc()
	}

	kp, err := c.inner.FetchKp(ctx)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.kp = kp
	c.expires = c.clock.Now().Add(c.ttl)
	c.valid = true
	c.mu.Unlock()
	return kp, nil
}

// Invalidate drops the cached Kp value.
func (c *KpCache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
