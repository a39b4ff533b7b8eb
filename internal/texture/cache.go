package texture

import (
	"sync"
)

// Resolver resolves a texture name to a decoded, mip-mapped texture.
type Resolver interface {
	Resolve(texName string, srgb bool) *Image
}

// Cache is a concurrency-safe texture cache.
type Cache struct {
	mu    sync.RWMutex
	items map[cacheKey]*cacheEntry
	index *Index
}

type cacheKey struct {
	path string
	srgb bool
}

type cacheEntry struct {
	img *Image
	err error
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[cacheKey]*cacheEntry),
		index: index,
	}
}

// Resolve loads and caches a texture by name. Returns nil if not found or
// undecodable; Err reports why.
func (c *Cache) Resolve(texName string, srgb bool) *Image {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil
	}
	key := cacheKey{path: path, srgb: srgb}

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.img
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := LoadTexture(path, srgb)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[key]; exists {
		return entry.img
	}
	c.items[key] = &cacheEntry{img: img, err: err}
	return img
}

// Err returns the load error recorded for a texture name, if any.
func (c *Cache) Err(texName string, srgb bool) error {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, exists := c.items[cacheKey{path: path, srgb: srgb}]; exists {
		return entry.err
	}
	return nil
}
