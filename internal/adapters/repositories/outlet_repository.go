package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sector-partition-service/internal/domain"
	"sector-partition-service/internal/platform/obs"
)

// SQL-backed implementation of the OutletRepository port.
// The query is portable across the SQLite and Postgres drivers.
type SQLOutletRepository struct{ DB *sql.DB }

func NewSQLOutletRepository(db *sql.DB) *SQLOutletRepository {
	return &SQLOutletRepository{DB: db}
}

// Return all outlets stored in the database, ordered by id.
func (s *SQLOutletRepository) ListOutlets(ctx context.Context) (_ []domain.Outlet, err error) {
	defer obs.Time(ctx, "outlets.ListOutlets")(&err)

	if s.DB == nil {
		return nil, errors.New("outlet repository: DB is nil")
	}

	query := `
	SELECT
		id,
		name,
		lat,
		lon
	FROM outlets
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list outlets: query outlets table: %w", err)
	}
	defer rows.Close()

	outlets := make([]domain.Outlet, 0, 64)
	for rows.Next() {
		var o domain.Outlet
		if err := rows.Scan(&o.ID, &o.Name, &o.Location.Lat, &o.Location.Lon); err != nil {
			return nil, fmt.Errorf("list outlets: scan row: %w", err)
		}
		outlets = append(outlets, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list outlets: row iteration: %w", err)
	}

	return outlets, nil
}
