// Package cache memoizes serialized API responses for a fixed time-to-live.
//
// The grade dataset never changes while the process runs, so entries are only
// ever removed by expiry.
package cache

import (
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL is how long a response stays cached.
	DefaultTTL = time.Hour
	// DefaultCleanupInterval is how often expired entries are purged.
	DefaultCleanupInterval = 10 * time.Minute
)

// ComputeFunc produces a response body on a cache miss.
type ComputeFunc func() ([]byte, error)

// Cache stores response bodies keyed by endpoint and query parameters.
// It is safe for concurrent use.
type Cache struct {
	entries *gocache.Cache
	flight  singleflight.Group
}

// New creates a cache whose entries expire after ttl.
func New(ttl, cleanupInterval time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	return &Cache{
		entries: gocache.New(ttl, cleanupInterval),
	}
}

// Key builds the cache key for endpoint and the full set of request
// parameters. Parameters are encoded sorted by name, so the key does not
// depend on the order in which a client sent them.
func Key(endpoint string, params url.Values) string {
	return endpoint + "?" + params.Encode()
}

// Get returns the cached body for key, if present and unexpired.
func (c *Cache) Get(key string) ([]byte, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	return body, ok
}

// GetOrCompute returns the cached body for key or runs compute, stores its
// result and returns it. The boolean reports a cache hit. Concurrent misses
// on the same key share a single compute call; the first stored body wins.
// Errors are returned to every waiting caller and are not cached.
func (c *Cache) GetOrCompute(endpoint, key string, compute ComputeFunc) ([]byte, bool, error) {
	if body, ok := c.Get(key); ok {
		cacheHits.WithLabelValues(endpoint).Inc()
		return body, true, nil
	}
	cacheMisses.WithLabelValues(endpoint).Inc()

	v, err, _ := c.flight.Do(key, func() (any, error) {
		if body, ok := c.Get(key); ok {
			return body, nil
		}

		body, err := compute()
		if err != nil {
			return nil, err
		}

		if err := c.entries.Add(key, body, gocache.DefaultExpiration); err != nil {
			if existing, ok := c.Get(key); ok {
				return existing, nil
			}
		}
		cacheEntries.Set(float64(c.entries.ItemCount()))
		return body, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

// Len returns the number of entries, including expired ones not yet purged.
func (c *Cache) Len() int {
	return c.entries.ItemCount()
}
