package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sector-partition-service/internal/domain"
	"sector-partition-service/internal/platform/geo"
	"sector-partition-service/internal/platform/obs"
	"time"
)

// SQL-backed implementation of the SectorRepository port.
// Geometries are stored as GeoJSON text and member ids as a JSON array so the
// schema stays portable between SQLite and Postgres.
type SQLSectorRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLSectorRepository(db *sql.DB, driver string) *SQLSectorRepository {
	return &SQLSectorRepository{DB: db, Driver: driver}
}

// Persist a run and all of its sectors in one transaction.
func (s *SQLSectorRepository) SaveRun(ctx context.Context, run domain.PartitionRun) (err error) {
	defer obs.Time(ctx, "sectors.SaveRun")(&err)

	if s.DB == nil {
		return errors.New("sector repository: DB is nil")
	}
	if run.ID == "" {
		return fmt.Errorf("save run: empty id: %w", domain.ErrInvalidParameter)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, rebind(s.Driver, `
	INSERT INTO partition_runs (id, strategy, created_at)
	VALUES (?, ?, ?);
	`), run.ID, run.Strategy, run.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save run id=%s: insert run: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, rebind(s.Driver, `
	INSERT INTO sectors (
		run_id,
		sector_id,
		name,
		geometry,
		centroid_lat,
		centroid_lon,
		member_outlet_ids
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save run id=%s: prepare sector insert: %w", run.ID, err)
	}
	defer stmt.Close()

	for _, sec := range run.Sectors {
		geometry, err := geo.MarshalGeometry(sec.Geometry)
		if err != nil {
			return fmt.Errorf("save run id=%s: sector %d: %w", run.ID, sec.ID, err)
		}

		members := sec.MemberOutletIDs
		if members == nil {
			members = []string{}
		}
		memberJSON, err := json.Marshal(members)
		if err != nil {
			return fmt.Errorf("save run id=%s: sector %d: encode members: %w", run.ID, sec.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			run.ID, sec.ID, sec.Name, string(geometry),
			sec.Centroid.Lat, sec.Centroid.Lon, string(memberJSON),
		)
		if err != nil {
			return fmt.Errorf("save run id=%s: insert sector %d: %w", run.ID, sec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run id=%s: commit tx: %w", run.ID, err)
	}

	return nil
}

// Load a run with its sectors ordered by sector id.
func (s *SQLSectorRepository) GetRun(ctx context.Context, id string) (_ *domain.PartitionRun, err error) {
	defer obs.Time(ctx, "sectors.GetRun")(&err)

	if s.DB == nil {
		return nil, errors.New("sector repository: DB is nil")
	}

	run := domain.PartitionRun{ID: id}
	var createdAt string
	err = s.DB.QueryRowContext(ctx, rebind(s.Driver, `
	SELECT strategy, created_at
	FROM partition_runs
	WHERE id = ?;
	`), id).Scan(&run.Strategy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run id=%s: %w", id, domain.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run id=%s: query partition_runs table: %w", id, err)
	}

	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("get run id=%s: parse created_at %q: %w", id, createdAt, err)
	}

	rows, err := s.DB.QueryContext(ctx, rebind(s.Driver, `
	SELECT
		sector_id,
		name,
		geometry,
		centroid_lat,
		centroid_lon,
		member_outlet_ids
	FROM sectors
	WHERE run_id = ?
	ORDER BY sector_id;
	`), id)
	if err != nil {
		return nil, fmt.Errorf("get run id=%s: query sectors table: %w", id, err)
	}
	defer rows.Close()

	run.Sectors = make([]domain.Sector, 0, 16)
	for rows.Next() {
		var (
			sec        domain.Sector
			geometry   string
			memberJSON string
		)
		if err := rows.Scan(&sec.ID, &sec.Name, &geometry, &sec.Centroid.Lat, &sec.Centroid.Lon, &memberJSON); err != nil {
			return nil, fmt.Errorf("get run id=%s: scan row: %w", id, err)
		}

		sec.Geometry, err = geo.UnmarshalGeometry([]byte(geometry))
		if err != nil {
			return nil, fmt.Errorf("get run id=%s: sector %d: %w", id, sec.ID, err)
		}
		if err := json.Unmarshal([]byte(memberJSON), &sec.MemberOutletIDs); err != nil {
			return nil, fmt.Errorf("get run id=%s: sector %d: decode members: %w", id, sec.ID, err)
		}

		run.Sectors = append(run.Sectors, sec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run id=%s: row iteration: %w", id, err)
	}

	return &run, nil
}
