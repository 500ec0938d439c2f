// Package config reads service settings from the environment.
// main loads a .env file with godotenv before calling Load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	DBDriver string
	DBPath   string
	// Required when DBDriver is postgres.
	DatabaseURL string
	SeedPath    string

	// Empty disables Redis; boundary answers are then cached in the database.
	RedisAddr        string
	RedisDB          int
	BoundaryCacheTTL time.Duration

	OverpassURL         string
	ProviderTimeout     time.Duration
	ProviderMaxAttempts int

	// 0 draws a fresh seed per request.
	ClusterSeed uint64
}

// Get returns the value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	return n, nil
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	return d, nil
}

func getUint64(key string, fallback uint64) (uint64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	return n, nil
}

// Load reads every setting, applying defaults for unset keys.
func Load() (Config, error) {
	cfg := Config{
		Port:        Get("PORT", "8080"),
		DBDriver:    strings.ToLower(Get("DB_DRIVER", "sqlite")),
		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: Get("DATABASE_URL", ""),
		SeedPath:    Get("SEED_PATH", "data/seeds/outlets.json"),
		RedisAddr:   Get("REDIS_ADDR", ""),
		OverpassURL: Get("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
	}

	var err error
	if cfg.RedisDB, err = GetInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.BoundaryCacheTTL, err = GetDuration("BOUNDARY_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ProviderTimeout, err = GetDuration("PROVIDER_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ProviderMaxAttempts, err = GetInt("PROVIDER_MAX_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	if cfg.ClusterSeed, err = getUint64("CLUSTER_SEED", 0); err != nil {
		return Config{}, err
	}

	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("config: DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("config: DB_DRIVER=%q: want sqlite or postgres", cfg.DBDriver)
	}
	if cfg.ProviderMaxAttempts < 1 {
		return Config{}, fmt.Errorf("config: PROVIDER_MAX_ATTEMPTS=%d: must be at least 1", cfg.ProviderMaxAttempts)
	}

	return cfg, nil
}
