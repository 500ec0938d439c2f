package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"sector-partition-service/internal/adapters/boundary"
	"sector-partition-service/internal/adapters/cache"
	"sector-partition-service/internal/adapters/repositories"
	"sector-partition-service/internal/api"
	"sector-partition-service/internal/config"
	"sector-partition-service/internal/platform/db"
	"sector-partition-service/internal/ports"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Overpass, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.OpenDriver(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Apply migrations and seed demo outlets on startup for local runs.
	if err := initAndSeed(conn, cfg); err != nil {
		log.Fatal(err)
	}

	overpass, err := boundary.NewOverpassProvider(
		cfg.OverpassURL,
		cfg.ProviderTimeout,
		boundary.WithMaxAttempts(cfg.ProviderMaxAttempts),
	)
	if err != nil {
		log.Fatal(err)
	}

	store, closeStore, err := boundaryStore(conn, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()
	provider := boundary.NewCachedProvider(overpass, store, cfg.BoundaryCacheTTL)

	router := api.NewRouter(api.Deps{
		Outlets:     repositories.NewSQLOutletRepository(conn),
		Sectors:     repositories.NewSQLSectorRepository(conn, cfg.DBDriver),
		Provider:    provider,
		ClusterSeed: cfg.ClusterSeed,
		Ping:        conn.PingContext,
	})

	// Write timeout covers one full Overpass retry cycle on a cold cache.
	log.Printf("Server listening addr=:%s driver=%s redis=%t", cfg.Port, cfg.DBDriver, cfg.RedisAddr != "")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      time.Duration(cfg.ProviderMaxAttempts)*cfg.ProviderTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// boundaryStore prefers Redis and falls back to the boundary_cache table.
func boundaryStore(conn *sql.DB, cfg config.Config) (ports.BoundaryCache, func(), error) {
	if cfg.RedisAddr == "" {
		if cfg.DBDriver == db.DriverPostgres {
			return cache.NewSQLBoundaryCache(conn), func() {}, nil
		}
		return cache.NewSqliteBoundaryCache(conn), func() {}, nil
	}

	rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("boundary store: ping redis %s: %w", cfg.RedisAddr, err)
	}

	return boundary.NewRedisCache(rc), func() { _ = rc.Close() }, nil
}

func initAndSeed(conn *sql.DB, cfg config.Config) error {
	if err := db.MigrateUp(conn, cfg.DBDriver); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(cfg.SeedPath); os.IsNotExist(err) {
		log.Printf("seed file not found path=%s (skipping)", cfg.SeedPath)
		return nil
	}

	if err := repositories.SeedOutletsFromJSON(context.Background(), conn, cfg.DBDriver, cfg.SeedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
