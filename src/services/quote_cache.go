package services

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// QuoteCache is a TTL cache with an injectable clock. Expired entries are
// dropped lazily on read.
type QuoteCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry[V]
}

// NewQuoteCache creates a cache. A nil clock means time.Now.
func NewQuoteCache[V any](ttl time.Duration, now func() time.Time) *QuoteCache[V] {
	if now == nil {
		now = time.Now
	}
	return &QuoteCache[V]{ttl: ttl, now: now, entries: make(map[string]cacheEntry[V])}
}

func (c *QuoteCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *QuoteCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Len counts entries, including expired ones not yet read.
func (c *QuoteCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *QuoteCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry[V])
}
