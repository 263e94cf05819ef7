package cache

import (
	"context"
	"nearby-pro-service/internal/ports"
	"sync"
	"time"
)

type memEntry struct {
	result  ports.GeocodeResult
	expires time.Time
}

// MemoryGeocodeCache keeps geocode hits in process memory.
// It is the default when neither Redis nor Postgres is configured.
type MemoryGeocodeCache struct {
	ttl time.Duration
	now func() time.Time

	mu sync.RWMutex
	m  map[string]memEntry
}

func NewMemoryGeocodeCache(ttl time.Duration) *MemoryGeocodeCache {
	return &MemoryGeocodeCache{ttl: ttl, now: time.Now, m: map[string]memEntry{}}
}

func (c *MemoryGeocodeCache) Get(ctx context.Context, key string) (ports.GeocodeResult, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return ports.GeocodeResult{}, false, nil
	}

	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return ports.GeocodeResult{}, false, nil
	}

	return e.result, true, nil
}

func (c *MemoryGeocodeCache) Put(ctx context.Context, key string, r ports.GeocodeResult) error {
	e := memEntry{result: r}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.m[key] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryGeocodeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
