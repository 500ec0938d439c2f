package services

import (
	"context"
	"errors"
	"fmt"
	"sector-partition-service/internal/domain"
	"sector-partition-service/internal/platform/obs"
	"sector-partition-service/internal/ports"
	"strings"
)

// Pair of OSM admin_level values a subdivision level descends between.
type AdminLevels struct {
	Parent int
	Child  int
}

// AdminLevelsFor translates a subdivision level into the provider's admin levels:
// city 4 -> 6, commune 6 -> 8, neighborhood 8 -> 10.
func AdminLevelsFor(level domain.SubdivisionLevel) (AdminLevels, error) {
	switch level {
	case domain.LevelCity:
		return AdminLevels{Parent: 4, Child: 6}, nil
	case domain.LevelCommune:
		return AdminLevels{Parent: 6, Child: 8}, nil
	case domain.LevelNeighborhood:
		return AdminLevels{Parent: 8, Child: 10}, nil
	default:
		return AdminLevels{}, fmt.Errorf("admin levels for %v: %w", level, domain.ErrInvalidParameter)
	}
}

// HierarchyMapper turns the administrative subdivisions of a named region into sectors.
// It issues exactly one provider query per call and never retries; wrap the
// provider (or the context) for timeout and retry policy.
type HierarchyMapper struct {
	provider ports.BoundaryProvider
}

func NewHierarchyMapper(provider ports.BoundaryProvider) *HierarchyMapper {
	return &HierarchyMapper{provider: provider}
}

// MapHierarchy returns one sector per child area of parentRegionName.
//
// Provider failures are returned wrapped with domain.ErrProviderUnavailable.
// An empty answer, or one where no feature has a ring of at least three distinct
// points, is domain.ErrNoSubdivisionFound; no fallback strategy is tried.
func (m *HierarchyMapper) MapHierarchy(
	ctx context.Context,
	parentRegionName string,
	level domain.SubdivisionLevel,
) (_ []domain.Sector, err error) {
	defer obs.Time(ctx, "hierarchy.MapHierarchy")(&err)

	if m.provider == nil {
		return nil, errors.New("map hierarchy: boundary provider is nil")
	}

	name := strings.TrimSpace(parentRegionName)
	if name == "" {
		return nil, fmt.Errorf("map hierarchy: region name must be non-empty: %w", domain.ErrInvalidParameter)
	}

	levels, err := AdminLevelsFor(level)
	if err != nil {
		return nil, fmt.Errorf("map hierarchy: %w", err)
	}

	features, err := m.provider.FetchSubdivisions(ctx, ports.BoundaryQuery{
		ParentName:  name,
		ParentLevel: levels.Parent,
		ChildLevel:  levels.Child,
	})
	if err != nil {
		return nil, fmt.Errorf("map hierarchy: region %q: %w: %w", name, domain.ErrProviderUnavailable, err)
	}

	if len(features) == 0 {
		return nil, fmt.Errorf("map hierarchy: region %q level %v: %w", name, level, domain.ErrNoSubdivisionFound)
	}

	sectors := make([]domain.Sector, 0, len(features))
	for _, f := range features {
		s := featureToSector(len(sectors)+1, f)
		// A feature without a usable ring has no area to cover.
		if len(s.Geometry.Rings) == 0 {
			continue
		}
		sectors = append(sectors, s)
	}
	if len(sectors) == 0 {
		return nil, fmt.Errorf("map hierarchy: region %q level %v: no usable geometry: %w", name, level, domain.ErrNoSubdivisionFound)
	}

	return sectors, nil
}

// featureToSector keeps every outer ring of the feature. Open rings are closed and
// rings with fewer than three distinct points are dropped.
func featureToSector(id int, f domain.AdminFeature) domain.Sector {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		zoneID := f.ID
		if zoneID == 0 {
			zoneID = int64(id)
		}
		name = fmt.Sprintf("Zone %d", zoneID)
	}

	rings := make([]domain.Ring, 0, len(f.OuterRings))
	for _, r := range f.OuterRings {
		ring := domain.Ring(r).Closed()
		if distinctPoints(ring) < 3 {
			continue
		}
		rings = append(rings, ring)
	}
	geometry := domain.Polygon{Rings: rings}

	var centroid domain.GeoPoint
	if bbox := ComputeBBox(geometry); bbox.IsFinite() {
		centroid = bbox.Center()
	}

	return domain.Sector{
		ID:              id,
		Name:            name,
		Geometry:        geometry,
		Centroid:        centroid,
		MemberOutletIDs: []string{},
	}
}

func distinctPoints(r domain.Ring) int {
	seen := make(map[domain.GeoPoint]struct{}, len(r))
	for _, p := range r {
		seen[p] = struct{}{}
	}
	return len(seen)
}
