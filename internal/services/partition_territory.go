package services

import (
	"context"
	"errors"
	"fmt"
	"sector-partition-service/internal/domain"
	"sector-partition-service/internal/platform/obs"
	"sector-partition-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Strategy names one of the three partitioning strategies.
type Strategy string

const (
	StrategyCluster   Strategy = "cluster"
	StrategyGrid      Strategy = "grid"
	StrategyHierarchy Strategy = "hierarchy"
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyCluster, StrategyGrid, StrategyHierarchy:
		return st, nil
	default:
		return "", fmt.Errorf("parse strategy %q: %w", s, domain.ErrUnknownStrategy)
	}
}

// PartitionRequest carries the parameters of exactly one strategy.
// Fields belonging to other strategies are ignored.
type PartitionRequest struct {
	Strategy Strategy

	// Cluster.
	K    int
	Seed *uint64

	// Grid. BBox defaults to the envelope of all outlets.
	Rows int
	Cols int
	BBox *domain.BoundingBox

	// Hierarchy.
	RegionName string
	Level      domain.SubdivisionLevel

	// Populate MemberOutletIDs of grid and hierarchy sectors.
	AssignOutlets bool
}

type PartitionResult struct {
	RunID      string
	Strategy   Strategy
	CreatedAt  time.Time
	Sectors    []domain.Sector
	Bounds     domain.BoundingBox
	Unassigned []string
}

// Run converts the result into its persistence form.
func (r *PartitionResult) Run() domain.PartitionRun {
	return domain.PartitionRun{
		ID:        r.RunID,
		Strategy:  string(r.Strategy),
		CreatedAt: r.CreatedAt,
		Sectors:   r.Sectors,
	}
}

// PartitionTerritory runs one partitioning strategy end to end.
//
// Outlets are read from repo only when the strategy needs them. Clustering runs
// in its own goroutine so a cancelled request returns promptly; the computation
// itself cannot be interrupted and finishes in the background. An empty sector
// list is a valid result that callers should present as "no sectors generated".
func PartitionTerritory(
	ctx context.Context,
	req PartitionRequest,
	repo ports.OutletRepository,
	provider ports.BoundaryProvider,
) (_ *PartitionResult, err error) {
	defer obs.Time(ctx, "partition."+string(req.Strategy))(&err)

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		obs.PartitionRequestsTotal.WithLabelValues(string(req.Strategy), outcome).Inc()
		obs.PartitionDurationMs.WithLabelValues(string(req.Strategy)).Observe(float64(time.Since(start).Milliseconds()))
	}()

	var (
		sectors    []domain.Sector
		outlets    []domain.Outlet
		unassigned []string
	)

	needOutlets := req.Strategy == StrategyCluster ||
		(req.Strategy == StrategyGrid && (req.BBox == nil || req.AssignOutlets)) ||
		(req.Strategy == StrategyHierarchy && req.AssignOutlets)
	if needOutlets {
		if repo == nil {
			return nil, errors.New("partition territory: outlet repository is nil")
		}
		outlets, err = repo.ListOutlets(ctx)
		if err != nil {
			return nil, fmt.Errorf("partition territory: list outlets: %w", err)
		}
	}

	switch req.Strategy {
	case StrategyCluster:
		var partitioner *ClusterPartitioner
		if req.Seed != nil {
			partitioner = NewSeededClusterPartitioner(*req.Seed)
		} else {
			partitioner = NewClusterPartitioner(nil)
		}

		sectors, err = offload(ctx, func() []domain.Sector {
			return partitioner.Partition(outlets, req.K)
		})
		if err != nil {
			return nil, fmt.Errorf("partition territory: cluster: %w", err)
		}

	case StrategyGrid:
		var bbox domain.BoundingBox
		bbox, err = gridBounds(req.BBox, outlets)
		if err != nil {
			return nil, fmt.Errorf("partition territory: grid: %w", err)
		}
		sectors = DivideGrid(bbox, req.Rows, req.Cols)

	case StrategyHierarchy:
		sectors, err = NewHierarchyMapper(provider).MapHierarchy(ctx, req.RegionName, req.Level)
		if err != nil {
			return nil, fmt.Errorf("partition territory: %w", err)
		}

	default:
		return nil, fmt.Errorf("partition territory: %q: %w", req.Strategy, domain.ErrUnknownStrategy)
	}

	if req.AssignOutlets && req.Strategy != StrategyCluster {
		sectors, unassigned = AssignOutletsToSectors(sectors, outlets)
	}

	obs.SectorsProducedTotal.WithLabelValues(string(req.Strategy)).Add(float64(len(sectors)))

	return &PartitionResult{
		RunID:      uuid.New().String(),
		Strategy:   req.Strategy,
		CreatedAt:  time.Now().UTC(),
		Sectors:    sectors,
		Bounds:     ComputeBBox(sectors),
		Unassigned: unassigned,
	}, nil
}

// gridBounds prefers the explicit box and falls back to the outlets' envelope.
func gridBounds(explicit *domain.BoundingBox, outlets []domain.Outlet) (domain.BoundingBox, error) {
	if explicit != nil {
		return *explicit, nil
	}

	locs := make([]domain.GeoPoint, 0, len(outlets))
	for _, o := range outlets {
		locs = append(locs, o.Location)
	}

	bbox := ComputeBBox(locs)
	if !bbox.IsFinite() {
		return domain.BoundingBox{}, fmt.Errorf("no bounding box and no outlets: %w", domain.ErrEmptyGeometry)
	}
	return bbox, nil
}

// offload runs fn on its own goroutine and waits for it or for ctx.
func offload(ctx context.Context, fn func() []domain.Sector) ([]domain.Sector, error) {
	done := make(chan []domain.Sector, 1)
	go func() {
		done <- fn()
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case s := <-done:
		return s, nil
	}
}
