package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"sector-partition-service/internal/adapters/repositories"
	"sector-partition-service/internal/config"
	"sector-partition-service/internal/platform/db"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	seedPath := flag.String("seed", cfg.SeedPath, "outlets JSON file to load after migrating")
	migrateOnly := flag.Bool("migrate-only", false, "apply migrations without seeding")
	flag.Parse()

	conn, err := db.OpenDriver(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(conn, cfg.DBDriver, *seedPath, *migrateOnly); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(conn *sql.DB, driver, seedPath string, migrateOnly bool) error {
	log.Println("Applying migrations...")
	if err := db.MigrateUp(conn, driver); err != nil {
		return err
	}
	version, dirty, err := db.MigrateVersion(conn, driver)
	if err != nil {
		return err
	}
	log.Printf("Schema ready. version=%d dirty=%t", version, dirty)

	if migrateOnly {
		return nil
	}

	log.Printf("Seeding outlets from %s...", seedPath)
	if err := repositories.SeedOutletsFromJSON(context.Background(), conn, driver, seedPath); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
