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

// SQLite backed store for serialized boundary answers.
// Used when no Redis server is configured; expired rows are ignored on read
// and replaced on the next write.
type SqliteBoundaryCache struct {
	DB *sql.DB

	now func() time.Time
}

func NewSqliteBoundaryCache(db *sql.DB) *SqliteBoundaryCache {
	return &SqliteBoundaryCache{DB: db, now: time.Now}
}

// Fetch the cached payload for key, if present and unexpired.
func (s *SqliteBoundaryCache) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "boundary.cache.sqlite.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("boundary cache: db is nil")
	}

	q := `
	SELECT payload
	FROM boundary_cache
	WHERE cache_key = ? AND expires_at > ?;
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
func (s *SqliteBoundaryCache) Put(ctx context.Context, key, payload string, ttl time.Duration) error {
	if s.DB == nil {
		return errors.New("boundary cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert boundary cache: empty key")
	}

	query := `
	INSERT OR REPLACE INTO boundary_cache (
		cache_key,
		payload,
		expires_at
	)
	VALUES (?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, query, key, payload, s.now().Add(ttl).Unix()); err != nil {
		return fmt.Errorf("insert boundary cache key=%q: %w", key, err)
	}

	return nil
}
