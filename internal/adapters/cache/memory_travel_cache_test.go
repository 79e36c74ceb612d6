package cache

import (
	"context"
	"testing"
	"time"

	"multidrop-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTravelCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	c := NewMemoryTravelCache(10, time.Minute)
	c.now = func() time.Time { return now }

	est := ports.TravelEstimate{DistanceKm: 4.8, DurationMinutes: 9.6}
	require.NoError(t, c.PutMany(ctx, map[string]ports.TravelEstimate{"a|b": est}))

	got, err := c.GetMany(ctx, []string{"a|b", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]ports.TravelEstimate{"a|b": est}, got)

	now = now.Add(time.Minute)
	got, err = c.GetMany(ctx, []string{"a|b"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, c.Len())
}

func TestMemoryTravelCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryTravelCache(2, time.Hour)

	put := func(k string) {
		require.NoError(t, c.PutMany(ctx, map[string]ports.TravelEstimate{k: {DistanceKm: 1}}))
	}

	put("a")
	put("b")
	_, _ = c.GetMany(ctx, []string{"a"})
	put("c")

	got, err := c.GetMany(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Contains(t, got, "a")
	assert.NotContains(t, got, "b")
	assert.Contains(t, got, "c")
	assert.Equal(t, 2, c.Len())
}
