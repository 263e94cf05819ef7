package cache

import (
	"context"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lawGarden = ports.GeocodeResult{
	Label:      "Law Garden, Ahmedabad",
	Coordinate: domain.Coordinate{Lat: 23.0258, Lng: 72.5603},
}

func TestRedisGeocodeCacheRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := OpenRedis(mr.Addr(), "")
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisGeocodeCache(client, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "in|law garden")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "in|law garden", lawGarden))
	assert.True(t, mr.Exists(redisKeyPrefix+"in|law garden"))

	got, ok, err := c.Get(ctx, "in|law garden")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lawGarden, got)

	mr.FastForward(2 * time.Hour)
	_, ok, err = c.Get(ctx, "in|law garden")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisGeocodeCacheCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := OpenRedis(mr.Addr(), "")
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set(redisKeyPrefix+"bad", "{not json"))

	_, ok, err := NewRedisGeocodeCache(client, 0).Get(context.Background(), "bad")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestOpenRedisEmptyAddr(t *testing.T) {
	assert.Nil(t, OpenRedis("", ""))
}

func TestMemoryGeocodeCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryGeocodeCache(time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", lawGarden))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lawGarden, got)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestSQLCachesRequireDB(t *testing.T) {
	ctx := context.Background()

	_, _, err := NewSQLGeocodeCache(nil, 0).Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, NewSQLGeocodeCache(nil, 0).Put(ctx, "k", lawGarden))

	_, _, err = NewSQLRouteCache(nil).Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, NewSQLRouteCache(nil).Put(ctx, "k", domain.RoutePath{{Lat: 1, Lng: 1}}))
}
