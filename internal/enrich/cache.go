package enrich

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"anidex/internal/catalog"
)

// Cache layers an in-memory LRU over the SQLite store. The store may be nil,
// in which case the cache is memory-only.
type Cache struct {
	memory *lru.Cache[string, *catalog.Enrichment]
	store  *Store
}

// NewCache builds a cache holding up to size entries in memory.
func NewCache(size int, store *Store) (*Cache, error) {
	memory, err := lru.New[string, *catalog.Enrichment](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Cache{memory: memory, store: store}, nil
}

func cacheKey(mediaType catalog.MediaType, tmdbID int64) string {
	return fmt.Sprintf("%s:%d", mediaType, tmdbID)
}

// Get checks memory first, then the store. Store hits are promoted into
// memory.
func (c *Cache) Get(ctx context.Context, mediaType catalog.MediaType, tmdbID int64) (*catalog.Enrichment, bool, error) {
	key := cacheKey(mediaType, tmdbID)
	if enrichment, ok := c.memory.Get(key); ok {
		return enrichment, true, nil
	}
	if c.store == nil {
		return nil, false, nil
	}

	enrichment, ok, err := c.store.Get(ctx, mediaType, tmdbID)
	if err != nil || !ok {
		return nil, false, err
	}
	c.memory.Add(key, enrichment)
	return enrichment, true, nil
}

// Put writes through to both levels.
func (c *Cache) Put(ctx context.Context, mediaType catalog.MediaType, tmdbID int64, enrichment *catalog.Enrichment) error {
	c.memory.Add(cacheKey(mediaType, tmdbID), enrichment)
	if c.store == nil {
		return nil
	}
	return c.store.Put(ctx, mediaType, tmdbID, enrichment)
}
