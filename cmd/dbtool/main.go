package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"multidrop-route-service/internal/adapters/repositories"
	"multidrop-route-service/internal/config"
	"multidrop-route-service/internal/platform/db"
	"multidrop-route-service/internal/platform/logging"

	"go.uber.org/zap"
)

// dbtool prepares a Postgres database: it creates the schema and seeds the
// geocode cache with known addresses.
func main() {
	envLoaded := config.LoadEnv()

	log := logging.New(logging.Config{
		Level:  config.Get("LOG_LEVEL", "info"),
		Format: config.Get("LOG_FORMAT", "console"),
	})
	defer func() { _ = log.Sync() }()

	if !envLoaded {
		log.Info("no .env file found, using environment variables")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/geocodes.json")
	if err := initAndSeed(context.Background(), conn, seedPath, log); err != nil {
		log.Error("dbtool failed", zap.Error(err))
		conn.Close()
		os.Exit(1)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string, log *zap.Logger) error {
	log.Info("initializing database schema")
	if err := repositories.InitSchema(ctx, conn, db.Postgres); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info("schema ready")

	log.Info("seeding geocode cache", zap.String("path", seedPath))
	n, err := repositories.SeedGeocodesFromJSON(ctx, conn, db.Postgres, seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info("seeding complete", zap.Int("addresses", n))

	return nil
}
