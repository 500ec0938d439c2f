package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sector-partition-service/internal/platform/obs"
	"strings"
	"time"
)

// SQLBoundaryCache is a Postgres-backed store for serialized boundary answers.
type SQLBoundaryCache struct {
	DB *sql.DB

	now func() time.Time
}

func NewSQLBoundaryCache(db *sql.DB) *SQLBoundaryCache {
	return &SQLBoundaryCache{DB: db, now: time.Now}
}

// Fetch the cached payload for key, if present and unexpired.
func (s *SQLBoundaryCache) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "boundary.cache.sql.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("boundary cache: db is nil")
	}

	q := `
	SELECT payload
	FROM boundary_cache
	WHERE cache_key = $1 AND expires_at > $2;
	`

	var payload string
	err = s.DB.QueryRowContext(ctx, q, key, s.now().Unix()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get boundary cache: query boundary_cache table: %w", err)
	}

	return payload, true, nil
}

// Store payload under key until ttl elapses.
func (s *SQLBoundaryCache) Put(ctx context.Context, key, payload string, ttl time.Duration) error {
	if s.DB == nil {
		return errors.New("boundary cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert boundary cache: empty key")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO boundary_cache (cache_key, payload, expires_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (cache_key) DO UPDATE
	SET payload = EXCLUDED.payload,
		expires_at = EXCLUDED.expires_at;
	`, key, payload, s.now().Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("insert boundary cache key=%q: %w", key, err)
	}

	return nil
}
