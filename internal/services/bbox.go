package services

import (
	"sector-partition-service/internal/domain"

	"github.com/paulmach/orb"
)

// ComputeBBox returns the axis-aligned envelope of a nested coordinate structure.
//
// It accepts the domain geometry types, orb geometries, GeoJSON-style positions
// ([]float64 as [lon, lat]) and arbitrarily nested []any as produced by decoding
// GeoJSON coordinates. Polygon and MultiPolygon shapes are handled uniformly by
// recursion. An empty geometry yields a non-finite box (see BoundingBox.IsFinite);
// callers must treat that as a failure.
func ComputeBBox(geometry any) domain.BoundingBox {
	b := domain.EmptyBoundingBox()
	walkCoordinates(geometry, &b)
	return b
}

func walkCoordinates(g any, b *domain.BoundingBox) {
	switch v := g.(type) {
	case nil:
	case domain.GeoPoint:
		b.Extend(v)
	case []domain.GeoPoint:
		for _, p := range v {
			b.Extend(p)
		}
	case [][]domain.GeoPoint:
		for _, r := range v {
			walkCoordinates(r, b)
		}
	case domain.Ring:
		walkCoordinates([]domain.GeoPoint(v), b)
	case []domain.Ring:
		for _, r := range v {
			walkCoordinates(r, b)
		}
	case domain.Polygon:
		walkCoordinates(v.Rings, b)
	case []domain.Polygon:
		for _, p := range v {
			walkCoordinates(p.Rings, b)
		}
	case domain.Sector:
		walkCoordinates(v.Geometry, b)
	case []domain.Sector:
		for _, s := range v {
			walkCoordinates(s.Geometry, b)
		}
	case domain.AdminFeature:
		walkCoordinates(v.OuterRings, b)
	case orb.Point:
		b.Extend(domain.GeoPoint{Lat: v[1], Lon: v[0]})
	case orb.Ring:
		walkCoordinates([]orb.Point(v), b)
	case orb.LineString:
		walkCoordinates([]orb.Point(v), b)
	case []orb.Point:
		for _, p := range v {
			walkCoordinates(p, b)
		}
	case orb.Polygon:
		for _, r := range v {
			walkCoordinates(r, b)
		}
	case orb.MultiPolygon:
		for _, p := range v {
			walkCoordinates(p, b)
		}
	case []float64:
		// A GeoJSON position; extra ordinates (altitude) are ignored.
		if len(v) >= 2 {
			b.Extend(domain.GeoPoint{Lat: v[1], Lon: v[0]})
		}
	case [][]float64:
		for _, p := range v {
			walkCoordinates(p, b)
		}
	case [][][]float64:
		for _, r := range v {
			walkCoordinates(r, b)
		}
	case [][][][]float64:
		for _, p := range v {
			walkCoordinates(p, b)
		}
	case []any:
		if pos, ok := asPosition(v); ok {
			walkCoordinates(pos, b)
			return
		}
		for _, child := range v {
			walkCoordinates(child, b)
		}
	}
}

// asPosition recognises a decoded GeoJSON position: a list whose first two
// elements are numbers.
func asPosition(v []any) ([]float64, bool) {
	if len(v) < 2 {
		return nil, false
	}
	lon, ok1 := v[0].(float64)
	lat, ok2 := v[1].(float64)
	if !ok1 || !ok2 {
		return nil, false
	}
	return []float64{lon, lat}, true
}
