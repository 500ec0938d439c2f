package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

type OutletSeed struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Populate the outlets table from a JSON file. Existing ids are overwritten.
func SeedOutletsFromJSON(ctx context.Context, db *sql.DB, driver, jsonPath string) error {
	if db == nil {
		return errors.New("seed outlets: DB is nil")
	}

	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed outlets: read %q: %w", jsonPath, err)
	}

	var data []OutletSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed outlets: parse json: %w", err)
	}

	rows := make([]OutletSeed, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("seed outlets: item at index %d: id cannot be empty", i+1)
		}
		if math.IsNaN(item.Lat) || item.Lat < -90 || item.Lat > 90 {
			return fmt.Errorf("seed outlets: id=%s: latitude %v out of range", id, item.Lat)
		}
		if math.IsNaN(item.Lon) || item.Lon < -180 || item.Lon > 180 {
			return fmt.Errorf("seed outlets: id=%s: longitude %v out of range", id, item.Lon)
		}
		rows = append(rows, OutletSeed{ID: id, Name: strings.TrimSpace(item.Name), Lat: item.Lat, Lon: item.Lon})
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed outlets: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := rebind(driver, `
	INSERT INTO outlets (id, name, lat, lon)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed outlets: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range rows {
		if _, err := stmt.ExecContext(ctx, o.ID, o.Name, o.Lat, o.Lon); err != nil {
			return fmt.Errorf("seed outlets: insert id=%s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed outlets: commit tx: %w", err)
	}

	return nil
}
