package cache

import (
	"context"
	"testing"
	"time"

	"multidrop-route-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisTravelCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisTravelCache(client, 10*time.Minute)

	in := map[string]ports.TravelEstimate{
		"a|b": {DistanceKm: 4.8, DurationMinutes: 9.6},
		"b|a": {DistanceKm: 5.1, DurationMinutes: 11, TrafficMultiplier: 1.2},
	}
	require.NoError(t, c.PutMany(ctx, in))

	got, err := c.GetMany(ctx, []string{"a|b", "b|a", "a|c"})
	require.NoError(t, err)
	assert.Equal(t, in, got)

	assert.True(t, mr.Exists("travel:a|b"))
	assert.Equal(t, 10*time.Minute, mr.TTL("travel:a|b"))
}

func TestRedisTravelCacheExpires(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewRedisTravelCache(client, time.Minute)

	require.NoError(t, c.PutMany(ctx, map[string]ports.TravelEstimate{"a|b": {DistanceKm: 1}}))
	mr.FastForward(2 * time.Minute)

	got, err := c.GetMany(ctx, []string{"a|b"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisTravelCacheCorruptValue(t *testing.T) {
	mr, client := newTestRedis(t)
	require.NoError(t, mr.Set("travel:a|b", "not json"))

	_, err := NewRedisTravelCache(client, time.Minute).GetMany(context.Background(), []string{"a|b"})
	assert.Error(t, err)
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "http://nope")
	assert.Error(t, err)
}
