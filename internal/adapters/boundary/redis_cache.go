package boundary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sector-partition-service/internal/domain"
	"sector-partition-service/internal/platform/obs"
	"sector-partition-service/internal/ports"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultCacheTTL = 24 * time.Hour

// RedisCache is a BoundaryCache on a Redis server; entries expire through Redis TTLs.
type RedisCache struct {
	rc *redis.Client
}

func NewRedisCache(rc *redis.Client) *RedisCache {
	return &RedisCache{rc: rc}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	s, err := r.rc.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return s, true, nil
}

func (r *RedisCache) Put(ctx context.Context, key, payload string, ttl time.Duration) error {
	if err := r.rc.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// CachedProvider serves boundary lookups from a cache before delegating to next.
//
// Administrative boundaries change rarely, so answers are stored as JSON for ttl.
// Empty answers are not cached: they usually mean a misspelt region name.
// Cache read and write failures are logged and never fail the lookup.
type CachedProvider struct {
	next  ports.BoundaryProvider
	store ports.BoundaryCache
	ttl   time.Duration
}

func NewCachedProvider(next ports.BoundaryProvider, store ports.BoundaryCache, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedProvider{next: next, store: store, ttl: ttl}
}

type cachedFeature struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	AdminLevel int           `json:"admin_level"`
	OuterRings [][][2]float64 `json:"outer_rings"`
}

func (c *CachedProvider) FetchSubdivisions(
	ctx context.Context,
	q ports.BoundaryQuery,
) ([]domain.AdminFeature, error) {
	if c.next == nil {
		return nil, errors.New("cached boundary provider: next provider is nil")
	}
	if c.store == nil {
		return c.next.FetchSubdivisions(ctx, q)
	}

	key := cacheKey(q)
	s, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		log.Printf("req_id=%s boundary cache read failed key=%s err=%v", obs.RequestID(ctx), key, err)
	case ok:
		features, derr := decodeFeatures(s)
		if derr == nil {
			obs.BoundaryCacheHitsTotal.Inc()
			return features, nil
		}
		log.Printf("req_id=%s boundary cache decode failed key=%s err=%v", obs.RequestID(ctx), key, derr)
	}
	obs.BoundaryCacheMissesTotal.Inc()

	features, err := c.next.FetchSubdivisions(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(features) > 0 {
		payload, err := encodeFeatures(features)
		if err != nil {
			log.Printf("req_id=%s boundary cache encode failed key=%s err=%v", obs.RequestID(ctx), key, err)
		} else if err := c.store.Put(ctx, key, payload, c.ttl); err != nil {
			log.Printf("req_id=%s boundary cache write failed key=%s err=%v", obs.RequestID(ctx), key, err)
		}
	}

	return features, nil
}

func cacheKey(q ports.BoundaryQuery) string {
	name := strings.Join(strings.Fields(strings.ToLower(q.ParentName)), " ")
	return fmt.Sprintf("boundary:%d:%d:%s", q.ParentLevel, q.ChildLevel, name)
}

func encodeFeatures(features []domain.AdminFeature) (string, error) {
	out := make([]cachedFeature, 0, len(features))
	for _, f := range features {
		rings := make([][][2]float64, 0, len(f.OuterRings))
		for _, r := range f.OuterRings {
			ring := make([][2]float64, 0, len(r))
			for _, p := range r {
				ring = append(ring, [2]float64{p.Lon, p.Lat})
			}
			rings = append(rings, ring)
		}
		out = append(out, cachedFeature{ID: f.ID, Name: f.Name, AdminLevel: f.AdminLevel, OuterRings: rings})
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeFeatures(s string) ([]domain.AdminFeature, error) {
	var in []cachedFeature
	if err := json.Unmarshal([]byte(s), &in); err != nil {
		return nil, err
	}

	out := make([]domain.AdminFeature, 0, len(in))
	for _, f := range in {
		rings := make([][]domain.GeoPoint, 0, len(f.OuterRings))
		for _, r := range f.OuterRings {
			ring := make([]domain.GeoPoint, 0, len(r))
			for _, p := range r {
				ring = append(ring, domain.GeoPoint{Lat: p[1], Lon: p[0]})
			}
			rings = append(rings, ring)
		}
		out = append(out, domain.AdminFeature{ID: f.ID, Name: f.Name, AdminLevel: f.AdminLevel, OuterRings: rings})
	}
	return out, nil
}
