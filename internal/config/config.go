package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL    string
	ServerAddr     string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	// OfferPolicy is an optional boolean expression evaluated against
	// incoming counter-offers; empty means no screening.
	OfferPolicy string
}

// Load reads configuration from a local .env file (if present) and the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "procure_hub")
		pass := getenv("POSTGRES_PASSWORD", "procure_hub_pass")
		db := getenv("POSTGRES_DB", "procure_hub")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}
	addr := getenv("SERVER_ADDR", "0.0.0.0:8080")
	pollInterval := parseDuration(getenv("POLL_INTERVAL", "3s"), 3*time.Second)
	requestTimeout := parseDuration(getenv("REQUEST_TIMEOUT", "10s"), 10*time.Second)

	return &Config{
		DatabaseURL:    dsn,
		ServerAddr:     addr,
		PollInterval:   pollInterval,
		RequestTimeout: requestTimeout,
		OfferPolicy:    os.Getenv("OFFER_POLICY"),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}
