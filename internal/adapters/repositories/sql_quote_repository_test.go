package repositories

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/db"
	"multidrop-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(context.Background(), conn, db.SQLite))
	return conn
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	assert.NoError(t, InitSchema(context.Background(), conn, db.SQLite))
}

func TestSQLQuoteRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLQuoteRepository(openTestDB(t), db.SQLite)

	latest := domain.Clock(17 * 60)
	q := &domain.Quote{
		ID:        "q-1",
		CreatedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		Route: &domain.OptimizedRoute{
			VehicleType: domain.VehicleVan,
			Waypoints: []domain.Waypoint{
				{Address: "Depot", Coordinates: domain.Coordinates{Lat: 51.5, Lng: -0.1}},
				{Address: "Drop", Coordinates: domain.Coordinates{Lat: 51.51, Lng: -0.09}, TimeWindow: &domain.TimeWindow{Latest: &latest}},
			},
			TotalStops: 2,
			Optimization: domain.Optimization{
				Algorithm:       domain.AlgorithmDirect,
				EfficiencyScore: 100,
			},
		},
		Pricing: &domain.MultiDropPricing{
			VehicleType: domain.VehicleVan,
			PerLegCharges: []domain.LegCharge{{
				BaseFee:    2500,
				Surcharges: []domain.Surcharge{{Type: domain.SurchargeCongestionZone, Amount: 1500}},
			}},
		},
		Totals: domain.QuoteTotals{LegCosts: 4000, Subtotal: 4000, VAT: 800, Total: 4800},
	}

	require.NoError(t, repo.SaveQuote(ctx, q))

	got, err := repo.GetQuote(ctx, "q-1")
	require.NoError(t, err)
	assert.Equal(t, q, got)

	assert.Error(t, repo.SaveQuote(ctx, q), "duplicate id")
}

func TestSQLQuoteRepositoryNotFound(t *testing.T) {
	repo := NewSQLQuoteRepository(openTestDB(t), db.SQLite)

	_, err := repo.GetQuote(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrQuoteNotFound)
}

func TestSQLQuoteRepositoryRejectsUnknownAlgorithm(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	repo := NewSQLQuoteRepository(conn, db.SQLite)

	payload := `{"ID":"q-2","Route":{"VehicleType":"van","Optimization":{"Algorithm":"genetic"}}}`
	_, err := conn.ExecContext(ctx, `INSERT INTO quotes (id, created_at, vehicle_type, total_pence, payload) VALUES (?, ?, ?, ?, ?)`,
		"q-2", time.Now().UTC(), "van", 0, payload)
	require.NoError(t, err)

	_, err = repo.GetQuote(ctx, "q-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genetic")
}

func TestSeedGeocodesFromJSON(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	path := filepath.Join(t.TempDir(), "geocodes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"address": "10  Downing Street, London", "lat": 51.5034, "lng": -0.1276},
		{"address": "Canary Wharf, London", "lat": 51.5054, "lng": -0.0235}
	]`), 0o600))

	n, err := SeedGeocodesFromJSON(ctx, conn, db.SQLite, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var lat float64
	require.NoError(t, conn.QueryRow(`SELECT lat FROM geocode_cache WHERE address = ?`, "10 Downing Street, London").Scan(&lat))
	assert.Equal(t, 51.5034, lat)

	// reseeding overwrites
	_, err = SeedGeocodesFromJSON(ctx, conn, db.SQLite, path)
	require.NoError(t, err)
}

func TestSeedGeocodesRejectsBadRows(t *testing.T) {
	conn := openTestDB(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"address": "Null Island", "lat": 0, "lng": 0}]`), 0o600))

	_, err := SeedGeocodesFromJSON(context.Background(), conn, db.SQLite, path)
	assert.Error(t, err)
}
