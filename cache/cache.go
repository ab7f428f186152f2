// Package cache provides the process-local TTL store that backs analysis
// results. Entries live in one flat key space so invalidation can work on
// key prefixes.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"patternleader/observability"
)

// DefaultTTL is applied when Set receives a non-positive TTL.
const DefaultTTL = 900 * time.Second

// Key builds the canonical cache key for an analysis result.
func Key(market, symbol, period string) string {
	return fmt.Sprintf("analysis:%s:%s:%s", market, symbol, period)
}

type entry struct {
	value    any
	cachedAt time.Time
	expireAt time.Time
}

// Stats summarizes the cache key space.
type Stats struct {
	TotalKeys   int    `json:"total_keys"`
	ActiveKeys  int    `json:"active_keys"`
	ExpiredKeys int    `json:"expired_keys"`
	CacheType   string `json:"cache_type"`
}

// MemoryCache is a TTL key-value store guarded by a read-write mutex.
// Expired entries are dropped lazily on Get and in bulk by CleanupExpired.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemoryCache creates an empty cache. A non-positive defaultTTL falls
// back to DefaultTTL.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &MemoryCache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// New creates the cache backend named by cacheType. Only the memory backend
// exists; asking for redis logs a warning and serves memory instead.
func New(cacheType string, defaultTTL time.Duration) *MemoryCache {
	if cacheType != "" && cacheType != "memory" {
		observability.Warn("unsupported cache type, falling back to in-memory cache",
			"cache_type", cacheType)
	}
	return NewMemoryCache(defaultTTL)
}

// Get returns the value stored under key. An entry at or past its expiry is
// deleted and reported as a miss.
func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expireAt) {
		c.mu.Lock()
		// Re-check under the write lock, a concurrent Set may have
		// refreshed the key in the meantime.
		if cur, ok := c.entries[key]; ok && cur.expireAt.Equal(e.expireAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		observability.GetMetrics().RecordCacheEvictions("lazy", 1)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. A non-positive TTL uses the cache default.
func (c *MemoryCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now()

	c.mu.Lock()
	c.entries[key] = entry{
		value:    value,
		cachedAt: now,
		expireAt: now.Add(ttl),
	}
	c.mu.Unlock()
}

// Delete removes key and reports whether it was present.
func (c *MemoryCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// InvalidatePattern deletes every key matching pattern and returns the
// count. A trailing '*' matches any suffix; without one the pattern must
// match a key exactly.
func (c *MemoryCache) InvalidatePattern(pattern string) int {
	prefix, wildcard := strings.CutSuffix(pattern, "*")

	c.mu.Lock()
	defer c.mu.Unlock()

	if !wildcard {
		if _, ok := c.entries[pattern]; !ok {
			return 0
		}
		delete(c.entries, pattern)
		return 1
	}

	count := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			count++
		}
	}
	return count
}

// Clear drops every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// CleanupExpired removes every expired entry and returns how many were
// dropped. Meant to run periodically from the janitor.
func (c *MemoryCache) CleanupExpired() int {
	now := c.now()

	c.mu.Lock()
	count := 0
	for key, e := range c.entries {
		if !now.Before(e.expireAt) {
			delete(c.entries, key)
			count++
		}
	}
	total := len(c.entries)
	c.mu.Unlock()

	if count > 0 {
		observability.GetMetrics().RecordCacheEvictions("janitor", count)
	}
	observability.GetMetrics().SetCacheKeys("active", total)
	return count
}

// Stats counts total, still-live and expired-but-unswept keys.
func (c *MemoryCache) Stats() Stats {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		TotalKeys: len(c.entries),
		CacheType: "memory",
	}
	for _, e := range c.entries {
		if now.Before(e.expireAt) {
			stats.ActiveKeys++
		} else {
			stats.ExpiredKeys++
		}
	}
	return stats
}
