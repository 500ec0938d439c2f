package services

import (
	"context"
	"errors"
	"sector-partition-service/internal/adapters/boundary"
	"sector-partition-service/internal/domain"
	"testing"
	"time"

	"github.com/google/uuid"
)

type staticOutlets struct {
	outlets []domain.Outlet
	err     error
	calls   int
}

func (s *staticOutlets) ListOutlets(ctx context.Context) ([]domain.Outlet, error) {
	s.calls++
	return s.outlets, s.err
}

func abidjanOutlets() []domain.Outlet {
	return []domain.Outlet{
		{ID: "o1", Name: "Cocody 1", Location: pt(-3.98, 5.36)},
		{ID: "o2", Name: "Cocody 2", Location: pt(-3.97, 5.35)},
		{ID: "o3", Name: "Plateau 1", Location: pt(-4.02, 5.32)},
		{ID: "o4", Name: "Plateau 2", Location: pt(-4.03, 5.33)},
		{ID: "o5", Name: "Yopougon", Location: pt(-4.08, 5.34)},
	}
}

func TestPartitionTerritoryCluster(t *testing.T) {
	repo := &staticOutlets{outlets: abidjanOutlets()}
	seed := uint64(7)

	res, err := PartitionTerritory(context.Background(), PartitionRequest{
		Strategy: StrategyCluster,
		K:        2,
		Seed:     &seed,
	}, repo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Fatalf("run id %q is not a uuid: %v", res.RunID, err)
	}
	if res.Strategy != StrategyCluster {
		t.Fatalf("strategy = %q", res.Strategy)
	}
	if len(res.Sectors) != 2 {
		t.Fatalf("sectors = %d, want 2", len(res.Sectors))
	}

	total := 0
	for _, s := range res.Sectors {
		total += len(s.MemberOutletIDs)
	}
	if total != 5 {
		t.Fatalf("members = %d, want 5", total)
	}
	if !res.Bounds.IsFinite() {
		t.Fatalf("bounds = %+v, want finite", res.Bounds)
	}

	run := res.Run()
	if run.ID != res.RunID || run.Strategy != "cluster" || len(run.Sectors) != 2 {
		t.Fatalf("run = %+v", run)
	}
}

func TestPartitionTerritoryGridDefaultsToOutletBounds(t *testing.T) {
	repo := &staticOutlets{outlets: abidjanOutlets()}

	res, err := PartitionTerritory(context.Background(), PartitionRequest{
		Strategy:      StrategyGrid,
		Rows:          2,
		Cols:          3,
		AssignOutlets: true,
	}, repo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Sectors) != 6 {
		t.Fatalf("sectors = %d, want 6", len(res.Sectors))
	}
	want := domain.BoundingBox{MinLng: -4.08, MinLat: 5.32, MaxLng: -3.97, MaxLat: 5.36}
	if res.Bounds != want {
		t.Fatalf("bounds = %+v, want %+v", res.Bounds, want)
	}

	// Every outlet lies inside the envelope, so all of them are placed.
	if len(res.Unassigned) != 0 {
		t.Fatalf("unassigned = %v", res.Unassigned)
	}
	total := 0
	for _, s := range res.Sectors {
		total += len(s.MemberOutletIDs)
	}
	if total != 5 {
		t.Fatalf("members = %d, want 5", total)
	}
}

func TestPartitionTerritoryGridExplicitBoxSkipsRepository(t *testing.T) {
	repo := &staticOutlets{err: errors.New("must not be called")}

	res, err := PartitionTerritory(context.Background(), PartitionRequest{
		Strategy: StrategyGrid,
		Rows:     2,
		Cols:     2,
		BBox:     &domain.BoundingBox{MinLng: 0, MinLat: 0, MaxLng: 10, MaxLat: 10},
	}, repo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("repository called %d times", repo.calls)
	}
	if len(res.Sectors) != 4 || res.Sectors[0].Name != "A1" {
		t.Fatalf("sectors = %+v", res.Sectors)
	}
}

func TestPartitionTerritoryGridWithoutOutlets(t *testing.T) {
	_, err := PartitionTerritory(context.Background(), PartitionRequest{
		Strategy: StrategyGrid,
		Rows:     2,
		Cols:     2,
	}, &staticOutlets{}, nil)

	if !errors.Is(err, domain.ErrEmptyGeometry) {
		t.Fatalf("err = %v, want ErrEmptyGeometry", err)
	}
}

func TestPartitionTerritoryHierarchy(t *testing.T) {
	provider := boundary.NewMockBoundaryProvider([]boundary.MockRegion{{
		ParentName: "Abidjan",
		ChildLevel: 8,
		Features: []domain.AdminFeature{
			{ID: 1, Name: "Cocody", OuterRings: square(-4.0, 5.3, 0.1)},
			{ID: 2, Name: "Yopougon", OuterRings: square(-4.1, 5.3, 0.05)},
		},
	}})
	repo := &staticOutlets{outlets: abidjanOutlets()}

	res, err := PartitionTerritory(context.Background(), PartitionRequest{
		Strategy:      StrategyHierarchy,
		RegionName:    "Abidjan",
		Level:         domain.LevelCommune,
		AssignOutlets: true,
	}, repo, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Sectors) != 2 {
		t.Fatalf("sectors = %d, want 2", len(res.Sectors))
	}
	cocody := res.Sectors[0].MemberOutletIDs
	if len(cocody) != 2 || cocody[0] != "o1" || cocody[1] != "o2" {
		t.Fatalf("Cocody members = %v, want [o1 o2]", cocody)
	}
	yop := res.Sectors[1].MemberOutletIDs
	if len(yop) != 1 || yop[0] != "o5" {
		t.Fatalf("Yopougon members = %v, want [o5]", yop)
	}
	// The Plateau outlets sit between the two squares.
	if len(res.Unassigned) != 2 {
		t.Fatalf("unassigned = %v, want 2 Plateau outlets", res.Unassigned)
	}
}

func TestPartitionTerritoryHierarchyNotFound(t *testing.T) {
	provider := boundary.NewMockBoundaryProvider(nil)

	res, err := PartitionTerritory(context.Background(), PartitionRequest{
		Strategy:   StrategyHierarchy,
		RegionName: "Atlantis",
		Level:      domain.LevelCity,
	}, nil, provider)

	if !errors.Is(err, domain.ErrNoSubdivisionFound) {
		t.Fatalf("err = %v, want ErrNoSubdivisionFound", err)
	}
	if res != nil {
		t.Fatalf("result = %+v, want nil", res)
	}
}

func TestPartitionTerritoryUnknownStrategy(t *testing.T) {
	_, err := PartitionTerritory(context.Background(), PartitionRequest{Strategy: "voronoi"}, nil, nil)
	if !errors.Is(err, domain.ErrUnknownStrategy) {
		t.Fatalf("err = %v, want ErrUnknownStrategy", err)
	}
}

func TestPartitionTerritoryRepositoryFailure(t *testing.T) {
	cause := errors.New("db down")
	_, err := PartitionTerritory(context.Background(), PartitionRequest{Strategy: StrategyCluster, K: 2},
		&staticOutlets{err: cause}, nil)
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped %v", err, cause)
	}
}

func TestOffloadReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := offload(ctx, func() []domain.Sector {
		time.Sleep(50 * time.Millisecond)
		return NewSeededClusterPartitioner(1).Partition(abidjanOutlets(), 2)
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"cluster": StrategyCluster, " GRID ": StrategyGrid, "Hierarchy": StrategyHierarchy} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStrategy("hex"); !errors.Is(err, domain.ErrUnknownStrategy) {
		t.Errorf("ParseStrategy(hex) err = %v", err)
	}
}
