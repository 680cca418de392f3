// Package cache holds recently fetched forecasts and collapses concurrent
// upstream requests for the same key into a single fetch.
package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"surfcast/internal/msw"
)

// DefaultTTL is the freshness window: an entry older than this is stale and
// must be refetched before it is served as fresh.
const DefaultTTL = 3 * time.Hour

// Fetcher issues the upstream request for one key. *msw.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, spotID int, units msw.UnitSystem) (*msw.Forecast, error)
}

// Key identifies one cache entry.
type Key struct {
	SpotID int
	Units  msw.UnitSystem
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s", k.SpotID, k.Units)
}

type entry struct {
	forecast  *msw.Forecast
	fetchedAt time.Time
}

// Cache is the only mutable shared state in the service. Per-key coordination
// goes through a singleflight group so unrelated keys never block each other;
// the entry map itself is guarded by a short-lived mutex that is never held
// across a network call.
type Cache struct {
	fetcher Fetcher
	store   Store
	ttl     time.Duration
	now     func() time.Time

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[Key]entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithStore adds a persistent write-through store. Entries found in the store
// at construction seed the in-memory map, so restarts inside the freshness
// window skip the upstream fetch.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// withNow injects the clock for tests.
func withNow(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache over the given fetcher.
func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[Key]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store != nil {
		c.warm()
	}
	return c
}

func (c *Cache) warm() {
	stored, err := c.store.Load()
	if err != nil {
		log.Printf("cache: could not warm from store: %v", err)
		return
	}
	for _, se := range stored {
		c.entries[se.Key] = entry{forecast: se.Forecast, fetchedAt: se.FetchedAt}
	}
	if len(stored) > 0 {
		log.Printf("cache: warmed %d entries from store", len(stored))
	}
}

// GetOrFetch returns the forecast for (spotID, units), fetching upstream only
// when no fresh entry exists. Concurrent callers for one key share a single
// upstream call and all receive its outcome. When a fetch fails but a stale
// entry exists, the stale forecast is returned flagged Stale instead of the
// error; the entry is left in place so a later call can retry.
//
// Cancelling a waiting caller's context releases that caller with ctx.Err()
// but never cancels the shared fetch, which runs to completion and populates
// the cache for whoever comes next.
func (c *Cache) GetOrFetch(ctx context.Context, spotID int, units msw.UnitSystem) (*msw.Forecast, error) {
	key := Key{SpotID: spotID, Units: units}

	if fc, ok := c.lookup(key); ok {
		return fc, nil
	}

	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		// A fetch that finished while we queued may have refreshed the entry.
		if fc, ok := c.lookup(key); ok {
			return fc, nil
		}

		fc, err := c.fetcher.Fetch(context.WithoutCancel(ctx), spotID, units)
		if err != nil {
			if stale, ok := c.lookupStale(key); ok {
				log.Printf("cache: fetch failed for %s, serving stale entry: %v", key, err)
				return stale, nil
			}
			return nil, err
		}

		c.put(key, fc)
		return fc, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*msw.Forecast), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// lookup returns a fresh entry's forecast, or ok=false.
func (c *Cache) lookup(key Key) (*msw.Forecast, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	fc := *e.forecast
	fc.Stale = false
	return &fc, true
}

// lookupStale returns any entry's forecast flagged stale, regardless of age.
func (c *Cache) lookupStale(key Key) (*msw.Forecast, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	fc := *e.forecast
	fc.Stale = true
	return &fc, true
}

func (c *Cache) put(key Key, fc *msw.Forecast) {
	fetchedAt := c.now()

	c.mu.Lock()
	c.entries[key] = entry{forecast: fc, fetchedAt: fetchedAt}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Put(key, fc, fetchedAt); err != nil {
			log.Printf("cache: persisting %s failed: %v", key, err)
		}
	}
}
