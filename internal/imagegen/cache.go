package imagegen

import (
	"slices"
	"sync"
	"time"
)

// Cache holds rendered images in memory, each expiring ttl after it was set.
type Cache[K comparable] struct {
	mu      sync.RWMutex
	entries map[K]cacheEntry
	order   []K
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewCache creates an empty cache with the given TTL.
func NewCache[K comparable](ttl time.Duration) *Cache[K] {
	return &Cache[K]{
		entries: make(map[K]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves a cached image if it exists and is not stale.
func (c *Cache[K]) Get(key K) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

// Set stores an image in the cache.
func (c *Cache[K]) Set(key K, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{data: data, expiresAt: c.now().Add(c.ttl)}
}

// GetAny returns any cached image, stale or not, as a fallback. Entries are
// tried in insertion order.
func (c *Cache[K]) GetAny() ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, k := range c.order {
		if e, ok := c.entries[k]; ok {
			return e.data, true
		}
	}
	return nil, false
}

// List returns the keys with a fresh entry.
func (c *Cache[K]) List() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	return slices.DeleteFunc(slices.Clone(c.order), func(k K) bool {
		return now.After(c.entries[k].expiresAt)
	})
}
