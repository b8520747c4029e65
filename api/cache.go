/*
cache.go - Calculation result cache

PURPOSE:
  Calculator requests are pure functions of (plan, price, term, down
  payment), so identical requests from the public landing page can be
  served from cache instead of recomputing a 60-row schedule. Cached
  values are the serialized response JSON keyed by the request fields.

IMPLEMENTATIONS:
  - MemoryCache: process-local map, used by default and in tests
  - RedisCache:  shared cache for multi-instance deployments; enabled
                 when REDIS_ADDR is configured

CACHE SAFETY:
  The plan's id and pricing fields are part of the key and every entry in
  both implementations expires after cacheTTL. Keys embed caller-supplied
  request fields from a public endpoint, so MemoryCache additionally caps
  its entry count instead of growing without bound. A cache failure is
  never an error: Get misses and Set errors degrade to recomputation.

SEE ALSO:
  - handlers.go: Calculate() is the only consumer
  - config/config.go: REDIS_ADDR knob
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheTTL bounds how long a cached calculation can outlive plan edits made
// directly in the database.
const cacheTTL = time.Hour

// CalculationCache stores serialized calculation responses.
type CalculationCache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value. Implementations may evict at any time.
	Set(ctx context.Context, key, value string) error
}

// =============================================================================
// MEMORY CACHE
// =============================================================================

// memoryCacheMaxEntries caps how many schedules the in-process cache holds.
const memoryCacheMaxEntries = 1024

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is a process-local CalculationCache with per-entry expiry and
// a hard cap on entry count.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	// Still at capacity after pruning expired entries: drop arbitrary live
	// ones. Entries are recomputable, so eviction order does not matter.
	for k := range c.entries {
		if len(c.entries) < memoryCacheMaxEntries {
			break
		}
		if k != key {
			delete(c.entries, k)
		}
	}
	c.entries[key] = memoryEntry{value: value, expiresAt: now.Add(cacheTTL)}
	return nil
}

// =============================================================================
// REDIS CACHE
// =============================================================================

// RedisCache is a shared CalculationCache over Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects a cache to the Redis instance at addr.
func NewRedisCache(addr string) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{client: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, key, value, cacheTTL).Err()
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var (
	_ CalculationCache = (*MemoryCache)(nil)
	_ CalculationCache = (*RedisCache)(nil)
)
