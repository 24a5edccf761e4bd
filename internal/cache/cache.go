// Package cache keeps recent load results in memory for a fixed time.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL matches the dashboard refresh interval.
const DefaultTTL = 5 * time.Minute

type entry[V any] struct {
	value    V
	cachedAt time.Time
}

// Cache is a TTL map safe for concurrent use. Expired entries stay readable
// through Read with allowStale until replaced.
type Cache[V any] struct {
	TTL time.Duration
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]entry[V]
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{TTL: ttl, Now: time.Now, entries: make(map[string]entry[V])}
}

// Read returns the value for key. Entries older than TTL are only returned
// when allowStale is set.
func (c *Cache[V]) Read(key string, allowStale bool) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || (!allowStale && c.Now().Sub(e.cachedAt) > c.TTL) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Write(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: v, cachedAt: c.Now()}
}

// CachedAt reports when key was last written, or nil.
func (c *Cache[V]) CachedAt(key string) *time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	t := e.cachedAt
	return &t
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}
