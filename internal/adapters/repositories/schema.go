package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/db"
)

// InitSchema creates the quote and geocode cache tables for the dialect.
func InitSchema(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	realType, timeType := "REAL", "TEXT"
	if dialect == db.Postgres {
		realType, timeType = "DOUBLE PRECISION", "TIMESTAMPTZ"
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createQuotesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		created_at %s NOT NULL,
		vehicle_type TEXT NOT NULL,
		total_pence BIGINT NOT NULL,
		payload TEXT NOT NULL
	);
	`, timeType)

	createGeocodeCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat %[1]s NOT NULL,
		lng %[1]s NOT NULL
	);
	`, realType)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_quotes_created_at
	ON quotes(created_at);
	`

	statements := []string{
		createQuotesQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type GeocodeSeed struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// SeedGeocodesFromJSON pre-populates the geocode cache from a JSON file of
// known addresses. Existing rows are overwritten.
func SeedGeocodesFromJSON(ctx context.Context, conn *sql.DB, dialect db.Dialect, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: read %q: %w", jsonPath, err)
	}

	var data []GeocodeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed geocodes: parse json: %w", err)
	}

	rows := make([]GeocodeSeed, 0, len(data))
	for i, item := range data {
		addr := strings.Join(strings.Fields(item.Address), " ")
		if addr == "" {
			return 0, fmt.Errorf("seed geocodes: item at index %d: address cannot be empty", i+1)
		}
		if !(domain.Coordinates{Lat: item.Lat, Lng: item.Lng}).Valid() {
			return 0, fmt.Errorf("seed geocodes: item at index %d: invalid coordinates for %q", i+1, addr)
		}
		rows = append(rows, GeocodeSeed{Address: addr, Lat: item.Lat, Lng: item.Lng})
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, dialect.Rebind(`
	INSERT INTO geocode_cache (address, lat, lng)
	VALUES (?, ?, ?)
	ON CONFLICT (address) DO UPDATE
	SET lat = excluded.lat,
		lng = excluded.lng;
	`))
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range rows {
		if _, err := stmt.ExecContext(ctx, g.Address, g.Lat, g.Lng); err != nil {
			return 0, fmt.Errorf("seed geocodes: insert %q: %w", g.Address, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed geocodes: commit tx: %w", err)
	}

	return len(rows), nil
}
