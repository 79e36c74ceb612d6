package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"multidrop-route-service/internal/adapters/cache"
	"multidrop-route-service/internal/adapters/distance"
	"multidrop-route-service/internal/adapters/repositories"
	"multidrop-route-service/internal/api"
	"multidrop-route-service/internal/config"
	"multidrop-route-service/internal/domain"
	"multidrop-route-service/internal/platform/db"
	"multidrop-route-service/internal/platform/logging"
	"multidrop-route-service/internal/ports"
	"multidrop-route-service/internal/services"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or SQLite, Redis, ORS) behind ports
// and starts the HTTP server.
func main() {
	envLoaded := config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if !envLoaded {
		log.Info("no .env file found, using environment variables")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pricing := config.DefaultPricing()
	if cfg.PricingPath != "" {
		p, err := config.LoadPricing(cfg.PricingPath)
		if err != nil {
			return err
		}
		pricing = p
	}

	conn, dialect, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return err
	}

	opts := []services.QuoteOption{
		services.WithQuoteRepository(repositories.NewSQLQuoteRepository(conn, dialect)),
	}

	if cfg.ORSAPIKey != "" {
		travelCache, err := newTravelCache(ctx, cfg, log)
		if err != nil {
			return err
		}

		// Geocodes persist alongside quotes; travel times expire.
		ors, err := distance.NewORSClient(cfg.ORSAPIKey, travelCache, cache.NewSQLGeocodeCache(conn, dialect))
		if err != nil {
			return err
		}
		opts = append(opts, services.WithTravelEstimator(ors), services.WithGeocoder(ors))
	} else {
		log.Warn("ORS_API_KEY not set: using straight-line travel estimates and no geocoding")
	}

	quotes := services.NewQuoteService(pricing, opts...)

	vehicles := make([]domain.VehicleType, 0, len(pricing.Vehicles))
	for _, v := range pricing.Vehicles {
		vehicles = append(vehicles, v.Type)
	}
	router := api.NewRouter(quotes, pricing.Routing.MaxDrops, vehicles, log)

	// Timeouts are tuned for cold-cache matrix lookups (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("db", string(dialect)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openDB prefers Postgres when DATABASE_URL is set and falls back to a
// local SQLite file.
func openDB(cfg config.AppConfig) (*sql.DB, db.Dialect, error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		return conn, db.Postgres, err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, "", fmt.Errorf("openDB: create %q: %w", dir, err)
		}
	}
	conn, err := db.OpenSQLite(cfg.DBPath)
	return conn, db.SQLite, err
}

func newTravelCache(ctx context.Context, cfg config.AppConfig, log *zap.Logger) (ports.TravelCache, error) {
	if cfg.RedisURL == "" {
		log.Info("travel cache: in-memory", zap.Int("size", cfg.TravelCacheSize), zap.Duration("ttl", cfg.TravelCacheTTL))
		return cache.NewMemoryTravelCache(cfg.TravelCacheSize, cfg.TravelCacheTTL), nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	log.Info("travel cache: redis", zap.Duration("ttl", cfg.TravelCacheTTL))
	return cache.NewRedisTravelCache(client, cfg.TravelCacheTTL), nil
}
