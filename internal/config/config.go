// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an
// error. A local .env file is honoured when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store mode values.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all runtime configuration for the exchange service.
type Config struct {
	Port      string
	StoreMode string // "memory" (demo/fixtures) or "postgres" (live)

	DatabaseURL string // required when StoreMode is "postgres"
	RedisURL    string // optional: empty disables event publishing

	SeedDemoData bool // memory mode only

	ReconcileIntervalMinutes int

	AllowedOrigins []string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	mode := os.Getenv("STORE_MODE")
	if mode == "" {
		mode = StoreMemory
	}
	if mode != StoreMemory && mode != StorePostgres {
		return nil, fmt.Errorf("STORE_MODE must be %q or %q, got %q", StoreMemory, StorePostgres, mode)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if mode == StorePostgres && dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when STORE_MODE=postgres")
	}

	interval := 15
	if s := os.Getenv("RECONCILE_INTERVAL_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("RECONCILE_INTERVAL_MINUTES must be a positive integer, got %q", s)
		}
		interval = v
	}

	port := os.Getenv("EXCHANGE_PORT")
	if port == "" {
		port = "8083"
	}

	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if s := os.Getenv("ALLOWED_ORIGINS"); s != "" {
		origins = origins[:0]
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		Port:                     port,
		StoreMode:                mode,
		DatabaseURL:              dbURL,
		RedisURL:                 os.Getenv("REDIS_URL"),
		SeedDemoData:             os.Getenv("SEED_DEMO_DATA") == "true",
		ReconcileIntervalMinutes: interval,
		AllowedOrigins:           origins,
	}, nil
}
