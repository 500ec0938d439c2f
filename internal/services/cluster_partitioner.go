package services

import (
	"math"
	"math/rand/v2"
	"sector-partition-service/internal/domain"
	"time"

	"gonum.org/v1/gonum/stat"
)

const (
	// Upper bound on assignment/update rounds.
	MaxClusterIterations = 100
	// Centers moving less than this (degrees, ~11 m) between rounds have converged.
	ClusterConvergenceTolerance = 1e-4
)

// ClusterPartitioner groups outlets into K sectors with a K-means style loop.
//
// A ClusterPartitioner owns its random source and is not safe for concurrent
// use; build one per request.
type ClusterPartitioner struct {
	rng *rand.Rand
}

// NewClusterPartitioner returns a partitioner that draws the first seed center
// from rng. A nil rng uses a time-seeded source.
func NewClusterPartitioner(rng *rand.Rand) *ClusterPartitioner {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now))
	}
	return &ClusterPartitioner{rng: rng}
}

// NewSeededClusterPartitioner returns a partitioner whose runs are reproducible
// for a given seed.
func NewSeededClusterPartitioner(seed uint64) *ClusterPartitioner {
	return NewClusterPartitioner(rand.New(rand.NewPCG(seed, seed)))
}

// Partition clusters outlets into at most k sectors.
//
// k is clamped to [1, len(outlets)]. Seeding is greedy farthest-point: one
// random outlet, then repeatedly the outlet farthest from every chosen center.
// Rounds of nearest-center assignment and mean recomputation run until every
// center moves less than ClusterConvergenceTolerance or MaxClusterIterations is
// reached. Distances are planar on (lon, lat).
//
// Each non-empty cluster becomes one Sector whose geometry is the convex hull
// of its members and whose centroid is the final center. An empty input
// returns an empty slice; there are no failure modes.
func (c *ClusterPartitioner) Partition(outlets []domain.Outlet, k int) []domain.Sector {
	n := len(outlets)
	if n == 0 {
		return []domain.Sector{}
	}

	if k <= 0 {
		k = 1
	}
	if k > n {
		k = n
	}

	points := make([]domain.GeoPoint, n)
	for i, o := range outlets {
		points[i] = o.Location
	}

	centers := c.seedCenters(points, k)
	assignment := make([]int, n)

	for iter := 0; iter < MaxClusterIterations; iter++ {
		assignNearest(points, centers, assignment)
		next := recomputeCenters(points, centers, assignment)

		converged := true
		for i := range centers {
			if planarDistance(centers[i], next[i]) >= ClusterConvergenceTolerance {
				converged = false
				break
			}
		}
		centers = next
		if converged {
			break
		}
	}

	assignNearest(points, centers, assignment)

	members := make([][]int, k)
	for i, ci := range assignment {
		members[ci] = append(members[ci], i)
	}

	sectors := make([]domain.Sector, 0, k)
	for ci, idx := range members {
		if len(idx) == 0 {
			continue
		}

		ids := make([]string, 0, len(idx))
		locs := make([]domain.GeoPoint, 0, len(idx))
		for _, i := range idx {
			ids = append(ids, outlets[i].ID)
			locs = append(locs, points[i])
		}

		pos := len(sectors)
		sectors = append(sectors, domain.Sector{
			ID:              pos + 1,
			Name:            clusterSectorName(pos),
			Geometry:        BuildHull(locs),
			Centroid:        centers[ci],
			MemberOutletIDs: ids,
		})
	}

	return sectors
}

// seedCenters performs deterministic farthest-point seeding after one random pick.
func (c *ClusterPartitioner) seedCenters(points []domain.GeoPoint, k int) []domain.GeoPoint {
	centers := make([]domain.GeoPoint, 0, k)
	centers = append(centers, points[c.rng.IntN(len(points))])

	// minDist[i] tracks the squared distance from point i to its closest chosen center.
	minDist := make([]float64, len(points))
	for i, p := range points {
		minDist[i] = planarDistance2(p, centers[0])
	}

	for len(centers) < k {
		best := 0
		for i := range points {
			if minDist[i] > minDist[best] {
				best = i
			}
		}

		next := points[best]
		centers = append(centers, next)
		for i, p := range points {
			if d := planarDistance2(p, next); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	return centers
}

// assignNearest writes the index of the nearest center for every point.
// Ties go to the lower center index.
func assignNearest(points, centers []domain.GeoPoint, assignment []int) {
	for i, p := range points {
		best := 0
		bestDist := math.Inf(1)
		for ci, c := range centers {
			if d := planarDistance2(p, c); d < bestDist {
				bestDist = d
				best = ci
			}
		}
		assignment[i] = best
	}
}

// recomputeCenters moves each center to the mean of its members.
//
// A cluster that received no members is reseeded at the worst-served point:
// the point farthest from its own center that no other empty cluster has
// claimed this round.
func recomputeCenters(points, centers []domain.GeoPoint, assignment []int) []domain.GeoPoint {
	k := len(centers)
	lats := make([][]float64, k)
	lons := make([][]float64, k)
	for i, ci := range assignment {
		lats[ci] = append(lats[ci], points[i].Lat)
		lons[ci] = append(lons[ci], points[i].Lon)
	}

	next := make([]domain.GeoPoint, k)
	claimed := make(map[int]struct{})
	for ci := range centers {
		if len(lats[ci]) > 0 {
			next[ci] = domain.GeoPoint{
				Lat: stat.Mean(lats[ci], nil),
				Lon: stat.Mean(lons[ci], nil),
			}
			continue
		}

		worst := -1
		worstDist := -1.0
		for i, p := range points {
			if _, ok := claimed[i]; ok {
				continue
			}
			if d := planarDistance2(p, centers[assignment[i]]); d > worstDist {
				worstDist = d
				worst = i
			}
		}

		if worst < 0 {
			next[ci] = centers[ci]
			continue
		}
		claimed[worst] = struct{}{}
		next[ci] = points[worst]
	}

	return next
}
