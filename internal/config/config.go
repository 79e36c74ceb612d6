package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds process-level settings read from the environment.
type AppConfig struct {
	Port            string
	DatabaseURL     string
	DBPath          string
	RedisURL        string
	ORSAPIKey       string
	PricingPath     string
	LogLevel        string
	LogFormat       string
	TravelCacheTTL  time.Duration
	TravelCacheSize int
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// LoadEnv loads a .env file when present. A missing file is not an error.
func LoadEnv() bool {
	return godotenv.Load() == nil
}

// Load reads the application configuration from the environment.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		Port:        Get("PORT", "8080"),
		DatabaseURL: Get("DATABASE_URL", ""),
		DBPath:      Get("DB_PATH", "data/app.db"),
		RedisURL:    Get("REDIS_URL", ""),
		ORSAPIKey:   Get("ORS_API_KEY", ""),
		PricingPath: Get("PRICING_PATH", ""),
		LogLevel:    Get("LOG_LEVEL", "info"),
		LogFormat:   Get("LOG_FORMAT", "json"),
	}

	ttl, err := time.ParseDuration(Get("TRAVEL_CACHE_TTL", "15m"))
	if err != nil {
		return AppConfig{}, fmt.Errorf("load config: TRAVEL_CACHE_TTL: %w", err)
	}
	if ttl <= 0 {
		return AppConfig{}, fmt.Errorf("load config: TRAVEL_CACHE_TTL must be positive")
	}
	cfg.TravelCacheTTL = ttl

	size, err := strconv.Atoi(Get("TRAVEL_CACHE_SIZE", "10000"))
	if err != nil || size < 1 {
		return AppConfig{}, fmt.Errorf("load config: TRAVEL_CACHE_SIZE must be a positive integer")
	}
	cfg.TravelCacheSize = size

	return cfg, nil
}
