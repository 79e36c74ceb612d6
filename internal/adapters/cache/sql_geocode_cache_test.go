package cache

import (
	"context"
	"testing"

	"multidrop-route-service/internal/adapters/repositories"
	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLGeocodeCacheSQLite(t *testing.T) {
	ctx := context.Background()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, repositories.InitSchema(ctx, conn, db.SQLite))

	c := NewSQLGeocodeCache(conn, db.SQLite)

	bridge := domain.Coordinates{Lat: 51.5045, Lng: -0.0865}
	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"London Bridge": bridge}))

	got, err := c.GetMany(ctx, []string{"London Bridge", " London Bridge ", "Nowhere", ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"London Bridge": bridge}, got)

	moved := domain.Coordinates{Lat: 51.5079, Lng: -0.0877}
	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"London Bridge": moved}))
	got, err = c.GetMany(ctx, []string{"London Bridge"})
	require.NoError(t, err)
	assert.Equal(t, moved, got["London Bridge"])

	assert.Error(t, c.PutMany(ctx, map[string]domain.Coordinates{"Null Island": {}}))
}
