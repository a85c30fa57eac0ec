package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pable/gleague-scout/internal/logger"
	"github.com/pable/gleague-scout/internal/metrics"
	"github.com/pable/gleague-scout/internal/model"
)

// DefaultTTL is how long a fetched population is reused.
const DefaultTTL = time.Hour

// Snapshot is a cached population with its provenance.
type Snapshot struct {
	Population model.Population
	FetchedAt  time.Time
	// Stale is set when the upstream failed and an expired snapshot was served.
	Stale bool
}

type cacheEntry struct {
	pop       model.Population
	fetchedAt time.Time
}

type seasonsEntry struct {
	seasons   []int
	fetchedAt time.Time
}

// Cached reuses populations from src for ttl. Callers always receive copies.
type Cached struct {
	src Source
	ttl time.Duration
	now func() time.Time
	log logger.Logger

	group singleflight.Group

	mu      sync.Mutex
	entries map[model.Scope]cacheEntry
	seasons map[model.Kind]seasonsEntry
}

// CacheOption configures a Cached source.
type CacheOption func(*Cached)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cached) { c.now = now }
}

// WithLogger sets the logger used for refresh and fallback messages.
func WithLogger(l logger.Logger) CacheOption {
	return func(c *Cached) { c.log = l }
}

// NewCached wraps src. A non-positive ttl uses DefaultTTL.
func NewCached(src Source, ttl time.Duration, opts ...CacheOption) *Cached {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cached{
		src:     src,
		ttl:     ttl,
		now:     time.Now,
		log:     logger.Nop(),
		entries: make(map[model.Scope]cacheEntry),
		seasons: make(map[model.Kind]seasonsEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Name() string { return "cached(" + c.src.Name() + ")" }

// FetchPopulation returns a copy of the cached or freshly fetched population.
// A stale snapshot is served without error; use Snapshot to observe staleness.
func (c *Cached) FetchPopulation(ctx context.Context, scope model.Scope) (model.Population, error) {
	snap, err := c.Snapshot(ctx, scope)
	if err != nil {
		return model.Population{}, err
	}
	return snap.Population, nil
}

// Snapshot returns the population for scope. Within the TTL the cached copy
// is reused. After it, the upstream is queried; if that fails with
// ErrUnavailable and an older snapshot exists, the older one is returned
// with Stale set.
func (c *Cached) Snapshot(ctx context.Context, scope model.Scope) (Snapshot, error) {
	c.mu.Lock()
	e, ok := c.entries[scope]
	c.mu.Unlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		metrics.RecordCache(metrics.CacheHit)
		return Snapshot{Population: e.pop.Clone(), FetchedAt: e.fetchedAt}, nil
	}

	v, err, _ := c.group.Do(scope.String(), func() (any, error) {
		pop, err := c.src.FetchPopulation(ctx, scope)
		if err != nil {
			return nil, err
		}
		entry := cacheEntry{pop: pop.Clone(), fetchedAt: c.now()}
		c.mu.Lock()
		c.entries[scope] = entry
		c.mu.Unlock()
		return entry, nil
	})
	if err == nil {
		metrics.RecordCache(metrics.CacheMiss)
		entry := v.(cacheEntry)
		c.log.Debug(ctx, "population refreshed", logger.String("scope", scope.String()), logger.Int("rows", entry.pop.Len()))
		return Snapshot{Population: entry.pop.Clone(), FetchedAt: entry.fetchedAt}, nil
	}

	if ok && errors.Is(err, ErrUnavailable) {
		metrics.RecordCache(metrics.CacheStale)
		c.log.Warn(ctx, "serving stale population",
			logger.String("scope", scope.String()),
			logger.String("fetched_at", e.fetchedAt.Format(time.RFC3339)),
			logger.Error(err))
		return Snapshot{Population: e.pop.Clone(), FetchedAt: e.fetchedAt, Stale: true}, nil
	}
	metrics.RecordCache(metrics.CacheError)
	return Snapshot{}, fmt.Errorf("fetch %s from %s: %w", scope, c.src.Name(), err)
}

// Seasons caches the season list of kind under the same TTL and fallback rules.
func (c *Cached) Seasons(ctx context.Context, kind model.Kind) ([]int, error) {
	c.mu.Lock()
	e, ok := c.seasons[kind]
	c.mu.Unlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return append([]int(nil), e.seasons...), nil
	}

	seasons, err := c.src.Seasons(ctx, kind)
	if err != nil {
		if ok && errors.Is(err, ErrUnavailable) {
			c.log.Warn(ctx, "serving stale season list", logger.String("kind", kind.String()), logger.Error(err))
			return append([]int(nil), e.seasons...), nil
		}
		return nil, fmt.Errorf("seasons for %s from %s: %w", kind, c.src.Name(), err)
	}
	c.mu.Lock()
	c.seasons[kind] = seasonsEntry{seasons: append([]int(nil), seasons...), fetchedAt: c.now()}
	c.mu.Unlock()
	return seasons, nil
}

// Invalidate drops the cached population for scope.
func (c *Cached) Invalidate(scope model.Scope) {
	c.mu.Lock()
	delete(c.entries, scope)
	c.mu.Unlock()
}

// Purge drops every cached population and season list.
func (c *Cached) Purge() {
	c.mu.Lock()
	c.entries = make(map[model.Scope]cacheEntry)
	c.seasons = make(map[model.Kind]seasonsEntry)
	c.mu.Unlock()
}
