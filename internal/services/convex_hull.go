package services

import (
	"cmp"
	"math"
	"sector-partition-service/internal/domain"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// Radius in degrees of the synthetic polygon used for degenerate hulls (~1.1 km).
	FallbackHullRadius = 0.01
	// Vertex count of the synthetic polygon (closing point excluded).
	FallbackHullSides = 16
)

// BuildHull returns the convex hull of points as a single closed ring.
//
// The hull is built with Andrew's monotone chain over (longitude, latitude)
// treated as planar coordinates. The ring is counter-clockwise and starts at
// the lexicographically smallest point, so the output does not depend on input
// order. Collinear points are not kept as vertices.
//
// Fewer than three distinct hull vertices cannot form a polygon; in that case a
// 16-sided regular polygon around the first point is returned instead (around
// the origin when points is empty).
func BuildHull(points []domain.GeoPoint) domain.Polygon {
	if len(points) < 3 {
		return fallbackHull(points)
	}

	sorted := slices.Clone(points)
	slices.SortFunc(sorted, func(a, b domain.GeoPoint) int {
		if c := cmp.Compare(a.Lon, b.Lon); c != 0 {
			return c
		}
		return cmp.Compare(a.Lat, b.Lat)
	})

	lower := make([]domain.GeoPoint, 0, len(sorted))
	for _, p := range sorted {
		for len(lower) >= 2 && turn(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]domain.GeoPoint, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && turn(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	ring := make(domain.Ring, 0, len(lower)+len(upper)-1)
	ring = append(ring, lower[:len(lower)-1]...)
	ring = append(ring, upper[:len(upper)-1]...)

	// All points duplicate or collinear.
	if len(ring) < 3 {
		return fallbackHull(points)
	}

	ring = append(ring, ring[0])
	return domain.Polygon{Rings: []domain.Ring{ring}}
}

// turn is the 2D cross product of (a - o) and (b - o).
// Positive means o -> a -> b is a strict left (counter-clockwise) turn.
func turn(o, a, b domain.GeoPoint) float64 {
	return r2.Cross(r2.Sub(vec(a), vec(o)), r2.Sub(vec(b), vec(o)))
}

func vec(p domain.GeoPoint) r2.Vec {
	return r2.Vec{X: p.Lon, Y: p.Lat}
}

// fallbackHull synthesizes a regular polygon around the first point. The radius
// is widened past FallbackHullRadius when needed so that every input point lies
// inside the polygon (the polygon's inradius is radius*cos(pi/sides)).
func fallbackHull(points []domain.GeoPoint) domain.Polygon {
	var center domain.GeoPoint
	if len(points) > 0 {
		center = points[0]
	}

	radius := FallbackHullRadius
	apothem := math.Cos(math.Pi / FallbackHullSides)
	for _, p := range points {
		d := planarDistance(center, p)
		if need := d / apothem * (1 + 1e-9); need > radius {
			radius = need
		}
	}

	ring := make(domain.Ring, 0, FallbackHullSides+1)
	for i := 0; i < FallbackHullSides; i++ {
		theta := 2 * math.Pi * float64(i) / FallbackHullSides
		ring = append(ring, domain.GeoPoint{
			Lat: center.Lat + radius*math.Sin(theta),
			Lon: center.Lon + radius*math.Cos(theta),
		})
	}
	ring = append(ring, ring[0])

	return domain.Polygon{Rings: []domain.Ring{ring}}
}

// planarDistance treats (lon, lat) as Cartesian coordinates. This is only a
// local-scale approximation: a degree of longitude shrinks with latitude, so
// callers partitioning large regions should project coordinates first.
func planarDistance(a, b domain.GeoPoint) float64 {
	return r2.Norm(r2.Sub(vec(a), vec(b)))
}

func planarDistance2(a, b domain.GeoPoint) float64 {
	return r2.Norm2(r2.Sub(vec(a), vec(b)))
}
