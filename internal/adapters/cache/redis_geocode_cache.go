package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"nearby-pro-service/internal/platform/obs"
	"nearby-pro-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geocode:"

// RedisGeocodeCache stores geocode hits as JSON strings with an expiry.
type RedisGeocodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client, ttl: ttl}
}

// OpenRedis returns nil when addr is empty.
func OpenRedis(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password})
}

func (c *RedisGeocodeCache) Get(ctx context.Context, key string) (_ ports.GeocodeResult, _ bool, err error) {
	defer obs.Time(ctx, "geocode.redis.Get")(&err)

	if c.client == nil {
		return ports.GeocodeResult{}, false, errors.New("redis geocode cache: client is nil")
	}

	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.GeocodeResult{}, false, nil
	}
	if err != nil {
		return ports.GeocodeResult{}, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	var r ports.GeocodeResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return ports.GeocodeResult{}, false, fmt.Errorf("redis decode %q: %w", key, err)
	}

	return r, true, nil
}

func (c *RedisGeocodeCache) Put(ctx context.Context, key string, r ports.GeocodeResult) error {
	if c.client == nil {
		return errors.New("redis geocode cache: client is nil")
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("redis encode %q: %w", key, err)
	}

	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}

	return nil
}
