// Package ratecache provides the TTL cache used by the conversion service.
// The cache is an auxiliary optimization, never a source of truth: a miss is
// always recoverable by asking the providers again.
package ratecache

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTTL is how long a cached rate stays usable.
const DefaultTTL = 5 * time.Minute

// DefaultMaxEntries bounds the cache size; exceeding it triggers an
// opportunistic sweep of expired entries.
const DefaultMaxEntries = 100

type entry struct {
	rate     decimal.Decimal
	provider string
	storedAt time.Time
}

// Cache is a mutex-guarded TTL cache keyed by (from, to, date-bucket).
// All methods are safe for concurrent use; no method blocks on anything
// but the internal lock, so an in-flight provider call for one key never
// delays lookups for another.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int

	hits   int64
	misses int64

	now func() time.Time // injectable clock for tests
}

// New returns a cache with the given TTL and size bound. Non-positive
// arguments fall back to the defaults.
func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Key builds the cache key for a currency pair and optional historical date.
// Live lookups share the "current" bucket; dated lookups bucket by day.
func Key(from, to string, date *time.Time) string {
	bucket := "current"
	if date != nil {
		bucket = date.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s", from, to, bucket)
}

// Get returns the cached rate and the provider that produced it, if the
// entry exists and has not expired.
func (c *Cache) Get(key string) (decimal.Decimal, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) > c.ttl {
		if ok {
			delete(c.entries, key)
		}
		c.misses++
		return decimal.Decimal{}, "", false
	}
	c.hits++
	return e.rate, e.provider, true
}

// Put stores a rate. When the cache exceeds its size bound, expired entries
// are swept while the lock is held.
func (c *Cache) Put(key string, rate decimal.Decimal, provider string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{rate: rate, provider: provider, storedAt: c.now()}

	if len(c.entries) > c.maxEntries {
		c.sweepLocked()
	}
}

// sweepLocked removes expired entries. Caller must hold c.mu.
func (c *Cache) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the current number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cumulative hit and miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
