// Package variant memoizes batched product-variant lookups so overlapping
// UI needs for pricing and inventory share one network call per SKU set.
package variant

import (
	"context"
	"sort"
	"strings"
	"sync"

	"storefront-web/internal/domain"

	"golang.org/x/sync/singleflight"
)

// Fetcher performs the underlying batch lookup. A failed fetch must return
// nil; the cache converts it to an empty result so dependent views degrade
// to "not found" instead of failing.
type Fetcher func(ctx context.Context, skus []string) []domain.VariantFull

// Cache lives for the whole process and never expires entries on its own;
// callers force a refresh when they need authoritative data, e.g. right
// before checkout submission.
type Cache struct {
	fetch Fetcher

	mu      sync.RWMutex
	entries map[string][]domain.VariantFull
	flight  singleflight.Group
}

func NewCache(fetch Fetcher) *Cache {
	return &Cache{
		fetch:   fetch,
		entries: make(map[string][]domain.VariantFull),
	}
}

// Variants returns the variant snapshots for the given SKUs. Cached results
// are served without I/O; concurrent misses for the same key coalesce into a
// single fetch; forceRefresh bypasses and overwrites the cached entry.
func (c *Cache) Variants(ctx context.Context, skus []string, forceRefresh bool) []domain.VariantFull {
	key := cacheKey(skus)

	if !forceRefresh {
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached
		}
	} else {
		// Detach any in-flight fetch so this caller gets a fresh one.
		c.flight.Forget(key)
	}

	v, _, _ := c.flight.Do(key, func() (interface{}, error) {
		result := c.fetch(ctx, skus)
		if result == nil {
			result = []domain.VariantFull{}
		}
		c.mu.Lock()
		c.entries[key] = result
		c.mu.Unlock()
		return result, nil
	})
	return v.([]domain.VariantFull)
}

// cacheKey normalizes a SKU list so equal sets map to the same entry
// regardless of order or case.
func cacheKey(skus []string) string {
	normalized := make([]string, len(skus))
	for i, sku := range skus {
		normalized[i] = strings.ToLower(sku)
	}
	sort.Strings(normalized)
	return strings.Join(normalized, ",")
}
