// Package cache is a small in-memory TTL cache for successful responses.
package cache

import (
	"sync"
	"time"
)

// Cache provides an in-memory cache with TTL support and an optional size
// bound. It is safe for concurrent use.
type Cache[V any] struct {
	mu         sync.RWMutex
	items      map[string]cacheItem[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type cacheItem[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a Cache with the default TTL. maxEntries <= 0 means unbounded.
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	return &Cache[V]{
		items:      make(map[string]cacheItem[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves a value. The second result is false if the key does not
// exist or the item has expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || !c.now().Before(item.expiresAt) {
		var zero V
		return zero, false
	}
	return item.value, true
}

// Set stores a value. If ttl is zero the cache's default TTL is used.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.ttl
	}
	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictLocked()
	}
	c.items[key] = cacheItem[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// evictLocked drops expired items, or the item closest to expiry if none are.
func (c *Cache[V]) evictLocked() {
	now := c.now()
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, item := range c.items {
		if !now.Before(item.expiresAt) {
			delete(c.items, k)
			continue
		}
		if oldestKey == "" || item.expiresAt.Before(oldest) {
			oldestKey, oldest = k, item.expiresAt
		}
	}
	if len(c.items) >= c.maxEntries && oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// Delete removes an item. No-op if the key does not exist.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem[V])
}

// Len returns the number of stored items, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
