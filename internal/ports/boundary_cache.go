package ports

import (
	"context"
	"time"
)

// Key/value store for serialized boundary answers.
type BoundaryCache interface {
	// Return ok=false on a miss or an expired entry.
	Get(ctx context.Context, key string) (payload string, ok bool, err error)
	Put(ctx context.Context, key, payload string, ttl time.Duration) error
}
