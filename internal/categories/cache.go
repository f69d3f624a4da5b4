package categories

import (
	"context"
	"sync"
)

// Cache memoizes one fetch from a Source for the lifetime of a session.
// Policy: fetch once, keep the result (including an empty catalog) until an
// explicit Refresh; a failed fetch is not memoized, so the next call
// retries. There is no automatic expiry.
type Cache struct {
	mu     sync.Mutex
	source Source
	cat    Catalog
	loaded bool
}

// NewCache wraps a source with one-shot memoization.
func NewCache(source Source) *Cache {
	return &Cache{source: source}
}

// Categories returns the memoized catalog, fetching it on first use.
func (c *Cache) Categories(ctx context.Context) (Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.cat, nil
	}
	return c.fetchLocked(ctx)
}

// Refresh discards the memoized catalog and fetches again.
func (c *Cache) Refresh(ctx context.Context) (Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	return c.fetchLocked(ctx)
}

func (c *Cache) fetchLocked(ctx context.Context) (Catalog, error) {
	cat, err := c.source.Categories(ctx)
	if err != nil {
		// Fall back to an empty catalog but do not memoize the failure.
		return Catalog{}, err
	}
	c.cat = cat
	c.loaded = true
	return cat, nil
}
