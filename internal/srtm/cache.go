package srtm

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Loader produces the tile for a name. A nil result is cached as the empty tile.
type Loader func(name string) *Tile

// TileCache is a concurrency-safe, unbounded map of tiles keyed by name.
// Entries are never evicted; concurrent loads of one name run the loader once.
type TileCache struct {
	mu      sync.RWMutex
	entries map[string]*Tile
	group   singleflight.Group
	hits    atomic.Int64
	misses  atomic.Int64
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewTileCache creates an empty TileCache.
func NewTileCache() *TileCache {
	return &TileCache{entries: make(map[string]*Tile)}
}

// Get returns a cached tile.
func (c *TileCache) Get(name string) (*Tile, bool) {
	c.mu.RLock()
	t, ok := c.entries[name]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return t, ok
}

// Put stores a tile, replacing any previous entry for its name.
func (c *TileCache) Put(name string, t *Tile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = t
}

// Load returns the cached tile for name, calling loader on a miss.
func (c *TileCache) Load(name string, loader Loader) *Tile {
	if t, ok := c.Get(name); ok {
		return t
	}

	v, _, _ := c.group.Do(name, func() (any, error) {
		c.mu.RLock()
		t, ok := c.entries[name]
		c.mu.RUnlock()
		if ok {
			return t, nil
		}

		t = loader(name)
		if t == nil {
			t = EmptyTile(name)
		}
		c.Put(name, t)
		return t, nil
	})
	return v.(*Tile)
}

// Len returns the number of cached tiles, empty tiles included.
func (c *TileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache performance statistics.
func (c *TileCache) Stats() CacheStats {
	entries := c.Len()
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries: entries,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}
