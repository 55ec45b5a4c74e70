// Package cache provides the in-memory TTL caches backing symbol
// resolution, quotes, and composition lookups. Cache lifetime is process
// lifetime; nothing is persisted.
package cache

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounds each cache; the oldest entry is evicted on overflow.
const DefaultMaxEntries = 4096

// Entry holds a cached payload and its fetch timestamp.
type Entry[V any] struct {
	Value      V
	InsertedAt time.Time
}

// IsExpired reports whether an entry is older than ttl at the given instant.
func IsExpired[V any](e Entry[V], now time.Time, ttl time.Duration) bool {
	if e.InsertedAt.IsZero() {
		return true
	}
	return now.Sub(e.InsertedAt) >= ttl
}

// TTL is a bounded key→(value, insertedAt) map. Expired entries are treated
// as absent and overwritten on the next Set.
type TTL[V any] struct {
	mu      sync.Mutex
	entries map[string]Entry[V]
	ttl     time.Duration
	max     int
	now     func() time.Time // injectable clock for testing
}

// NewTTL creates a cache with the given TTL and the default size bound.
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		entries: make(map[string]Entry[V]),
		ttl:     ttl,
		max:     DefaultMaxEntries,
		now:     time.Now,
	}
}

// SetClock replaces the cache clock. Test use only.
func (c *TTL[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the cached value for key when present and fresh.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if IsExpired(e, c.now(), c.ttl) {
		delete(c.entries, key)
		return zero, false
	}
	return e.Value, true
}

// Set stores a value under key, evicting the oldest entry when full.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[key] = Entry[V]{Value: value, InsertedAt: c.now()}
}

// Len returns the number of entries, expired or not.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[V]) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.InsertedAt.Before(oldest) {
			oldestKey, oldest = k, e.InsertedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
