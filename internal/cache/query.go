package cache

import (
	"sync"
	"time"

	"github.com/caburj/kwartrack/internal/core/querykey"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// QueryCache caches read query results by query key and drops them by pattern.
type QueryCache struct {
	mu         sync.Mutex // orders Invalidate against SetIfCurrent
	entries    *LRUCache[querykey.Key, any]
	generation uint64
	hits       uint64
	misses     uint64
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Entries    int
	Hits       uint64
	Misses     uint64
	Generation uint64
}

// NewQueryCache creates a query cache holding at most maxEntries results for ttl.
func NewQueryCache(maxEntries int, ttl time.Duration) *QueryCache {
	return &QueryCache{entries: NewLRUCache[querykey.Key, any](maxEntries, ttl)}
}

// Get returns the cached result for key.
func (c *QueryCache) Get(key querykey.Key) (any, bool) {
	v, ok := c.entries.Get(key)
	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
	return v, ok
}

// Set stores the result for key.
func (c *QueryCache) Set(key querykey.Key, value any) {
	c.entries.Set(key, value)
}

// Generation returns the number of Invalidate calls so far.
func (c *QueryCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// SetIfCurrent stores value unless an invalidation happened after generation was read.
func (c *QueryCache) SetIfCurrent(key querykey.Key, value any, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return false
	}
	c.entries.Set(key, value)
	return true
}

// Invalidate drops every entry matched by one of the patterns.
func (c *QueryCache) Invalidate(patterns ...querykey.Pattern) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	if len(patterns) == 0 {
		return 0
	}
	return c.entries.DeleteFunc(func(k querykey.Key) bool {
		for _, p := range patterns {
			if p.Matches(k) {
				return true
			}
		}
		return false
	})
}

// Purge drops every entry.
func (c *QueryCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.entries.DeleteFunc(func(querykey.Key) bool { return true })
}

// Keys returns the cached keys, most recently used first.
func (c *QueryCache) Keys() []querykey.Key {
	return c.entries.Keys()
}

// CleanExpired removes expired entries.
func (c *QueryCache) CleanExpired() int {
	return c.entries.CleanExpired()
}

// Stats reports cache usage.
func (c *QueryCache) Stats() Stats {
	size := c.entries.Size()
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: size, Hits: c.hits, Misses: c.misses, Generation: c.generation}
}

// SetClock replaces the time source. Tests only.
func (c *QueryCache) SetClock(now func() time.Time) {
	c.entries.SetClock(now)
}

var _ secondary.QueryCache = (*QueryCache)(nil)
