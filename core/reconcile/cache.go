package reconcile

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// statsCache holds per-event Stats for a short TTL.
// Concurrent misses for the same event share a single build.
type statsCache struct {
	entries *gocache.Cache
	sf      singleflight.Group
	ttl     time.Duration
}

// newStatsCache creates a cache. A zero ttl disables caching.
func newStatsCache(ttl time.Duration) *statsCache {
	c := &statsCache{ttl: ttl}
	if ttl > 0 {
		c.entries = gocache.New(ttl, 2*ttl)
	}
	return c
}

// getOrBuild returns the cached stats for key, or builds and stores them.
func (c *statsCache) getOrBuild(key string, build func() (Stats, error)) (Stats, error) {
	if c.entries == nil {
		return build()
	}

	// Fast path
	if v, ok := c.entries.Get(key); ok {
		return v.(Stats), nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Double-check after winning the flight
		if v, ok := c.entries.Get(key); ok {
			return v, nil
		}

		stats, err := build()
		if err != nil {
			return nil, err
		}
		c.entries.Set(key, stats, gocache.DefaultExpiration)
		return stats, nil
	})
	if err != nil {
		return Stats{}, err
	}

	return result.(Stats), nil
}

// invalidate drops the cached stats for key.
func (c *statsCache) invalidate(key string) {
	if c.entries != nil {
		c.entries.Delete(key)
	}
}
