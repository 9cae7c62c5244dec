package tables

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rpgo/actuarial-engine/internal/domain"
	"golang.org/x/sync/singleflight"
)

var cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "actuarial_table_cache_requests_total",
	Help: "Decrement table cache lookups by result (hit, miss, error).",
}, []string{"result"})

// Cache is a process-wide read-through store of decrement tables keyed by
// (code, gender). Entries are never evicted; a restart refreshes them.
//
// # Thread Safety
//
// Safe for concurrent use. Concurrent misses on the same key share a single
// load through singleflight.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*DecrementTable
	flight  singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*DecrementTable)}
}

func cacheKey(code string, gender domain.Gender) string {
	return code + "|" + string(gender)
}

// Get returns a cached table.
func (c *Cache) Get(code string, gender domain.Gender) (*DecrementTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.entries[cacheKey(code, gender)]
	return t, ok
}

// GetOrLoad returns the cached table or runs load once for all concurrent
// callers of the same key and stores the result. Failed loads are not cached.
func (c *Cache) GetOrLoad(code string, gender domain.Gender, load func() (*DecrementTable, error)) (*DecrementTable, error) {
	if t, ok := c.Get(code, gender); ok {
		cacheRequests.WithLabelValues("hit").Inc()
		return t, nil
	}
	key := cacheKey(code, gender)
	// only the caller whose closure ran the load counts as a miss
	loaded := false
	v, err, _ := c.flight.Do(key, func() (any, error) {
		if t, ok := c.Get(code, gender); ok {
			return t, nil
		}
		t, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = t
		c.mu.Unlock()
		loaded = true
		return t, nil
	})
	if err != nil {
		cacheRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	if loaded {
		cacheRequests.WithLabelValues("miss").Inc()
	} else {
		cacheRequests.WithLabelValues("hit").Inc()
	}
	return v.(*DecrementTable), nil
}

// Len reports the number of cached tables.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Provider resolves decrement tables by code and gender through a Source,
// memoizing them in an injected Cache.
type Provider struct {
	source Source
	cache  *Cache
}

// NewProvider creates a provider. A nil cache gets a private one.
func NewProvider(source Source, cache *Cache) *Provider {
	if cache == nil {
		cache = NewCache()
	}
	return &Provider{source: source, cache: cache}
}

// NewDefaultProvider serves the built-in tables only.
func NewDefaultProvider() *Provider {
	return NewProvider(BuiltinSource{}, NewCache())
}

// Get returns the table for code and gender. UNISEX requests fall back to the
// entry-wise average of the MALE and FEMALE tables when the source has no
// unisex variant. Unknown codes return a *domain.TableNotFoundError.
func (p *Provider) Get(ctx context.Context, code string, gender domain.Gender) (*DecrementTable, error) {
	return p.cache.GetOrLoad(code, gender, func() (*DecrementTable, error) {
		t, err := p.source.Lookup(ctx, code, gender)
		if err == nil {
			return t, nil
		}
		if gender != domain.GenderUnisex || !errors.Is(err, domain.ErrTableNotFound) {
			return nil, err
		}
		male, mErr := p.Get(ctx, code, domain.GenderMale)
		if mErr != nil {
			return nil, err
		}
		female, fErr := p.Get(ctx, code, domain.GenderFemale)
		if fErr != nil {
			return nil, err
		}
		return blend(code, male, female)
	})
}

// GetAdjusted returns the table with an aggravation (negative pct) or
// smoothing (positive pct) applied. The adjusted copy is not cached.
func (p *Provider) GetAdjusted(ctx context.Context, code string, gender domain.Gender, pct float64) (*DecrementTable, error) {
	t, err := p.Get(ctx, code, gender)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", code, err)
	}
	return ApplyAggravation(t, pct), nil
}
