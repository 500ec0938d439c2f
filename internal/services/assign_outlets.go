package services

import (
	"sector-partition-service/internal/domain"
	"sector-partition-service/internal/platform/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// AssignOutletsToSectors fills MemberOutletIDs of grid or hierarchy sectors.
//
// Each outlet joins the first sector whose geometry contains it, so outlets on
// a shared cell edge land in exactly one sector. Outlets outside every sector
// are returned as unassigned. The input sectors are not modified; a new slice
// is returned.
func AssignOutletsToSectors(
	sectors []domain.Sector,
	outlets []domain.Outlet,
) (_ []domain.Sector, unassigned []string) {
	out := make([]domain.Sector, len(sectors))
	shapes := make([]orb.MultiPolygon, len(sectors))
	bounds := make([]orb.Bound, len(sectors))
	for i, s := range sectors {
		out[i] = s
		out[i].MemberOutletIDs = make([]string, 0)
		shapes[i] = geo.ToMultiPolygon(s.Geometry)
		bounds[i] = shapes[i].Bound()
	}

	for _, o := range outlets {
		pt := geo.ToPoint(o.Location)
		placed := false
		for i := range out {
			// Cheap envelope rejection before the ring test.
			if !bounds[i].Contains(pt) {
				continue
			}
			if planar.MultiPolygonContains(shapes[i], pt) || onBoundary(shapes[i], pt) {
				out[i].MemberOutletIDs = append(out[i].MemberOutletIDs, o.ID)
				placed = true
				break
			}
		}
		if !placed {
			unassigned = append(unassigned, o.ID)
		}
	}

	return out, unassigned
}

// onBoundary reports whether pt lies on an edge of any ring.
// planar containment is ambiguous for boundary points and grid edges are common.
func onBoundary(mp orb.MultiPolygon, pt orb.Point) bool {
	const eps = 1e-12
	for _, poly := range mp {
		for _, ring := range poly {
			for i := 0; i+1 < len(ring); i++ {
				if planar.DistanceFromSegmentSquared(ring[i], ring[i+1], pt) <= eps*eps {
					return true
				}
			}
		}
	}
	return false
}
