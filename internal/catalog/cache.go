package catalog

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/StickerSwap_Go/internal/domain"
)

// cachedSnapshot wraps a catalog snapshot with version metadata for invalidation
type cachedSnapshot struct {
	Version      string
	Collectibles []domain.Collectible
	CachedAt     time.Time
}

// snapshotCache keeps the latest catalog snapshot with time-based expiration.
type snapshotCache struct {
	lru *expirable.LRU[string, *cachedSnapshot]
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		lru: expirable.NewLRU[string, *cachedSnapshot](1, nil, ttl),
	}
}

// Get returns the cached snapshot when present, unexpired and of the current schema.
func (c *snapshotCache) Get() ([]domain.Collectible, bool) {
	entry, found := c.lru.Get(cacheKeyAll)
	if !found {
		return nil, false
	}
	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(cacheKeyAll)
		return nil, false
	}
	return entry.Collectibles, true
}

func (c *snapshotCache) Set(collectibles []domain.Collectible) {
	c.lru.Add(cacheKeyAll, &cachedSnapshot{
		Version:      CacheSchemaVersion,
		Collectibles: collectibles,
		CachedAt:     time.Now(),
	})
}

func (c *snapshotCache) Clear() {
	c.lru.Purge()
}
