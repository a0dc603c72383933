package studio

import (
	"strings"
	"sync"
	"time"
)

// ResponseCache caches mock API responses keyed by operation and arguments.
//
// Entries are stamped with the catalog revision they were computed from.
// Any catalog change (create, delete, reload) bumps the revision, so stale
// entries miss without explicit invalidation. Entries also expire after
// the TTL.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	revision uint64
	value    any
	cachedAt time.Time
	hitCount int
}

// NewResponseCache creates a cache with the given TTL.
// A TTL of 0 disables caching.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Lookup returns the cached value for key if it was stored at revision
// and has not expired.
func (c *ResponseCache) Lookup(key string, revision uint64) (any, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	// Catalog changed since the entry was stored
	if entry.revision != revision {
		return nil, false
	}
	if c.now().Sub(entry.cachedAt) > c.ttl {
		return nil, false
	}

	c.mu.Lock()
	entry.hitCount++
	c.mu.Unlock()
	return entry.value, true
}

// Store saves value for key at revision.
func (c *ResponseCache) Store(key string, revision uint64, value any) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{
		revision: revision,
		value:    value,
		cachedAt: c.now(),
	}
}

// Invalidate removes every entry whose key starts with prefix.
func (c *ResponseCache) Invalidate(prefix string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// CacheStats describes the cache contents.
type CacheStats struct {
	Entries int
	Hits    int
}

// Stats returns cache statistics.
func (c *ResponseCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := CacheStats{Entries: len(c.entries)}
	for _, e := range c.entries {
		s.Hits += e.hitCount
	}
	return s
}
