// Package geo converts domain geometries to and from paulmach/orb types and GeoJSON.
package geo

import (
	"errors"
	"fmt"
	"sector-partition-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func ToPoint(p domain.GeoPoint) orb.Point { return orb.Point{p.Lon, p.Lat} }

func FromPoint(p orb.Point) domain.GeoPoint { return domain.GeoPoint{Lat: p[1], Lon: p[0]} }

// ToMultiPolygon maps every outer ring to its own polygon part.
func ToMultiPolygon(p domain.Polygon) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(p.Rings))
	for _, r := range p.Rings {
		ring := make(orb.Ring, 0, len(r))
		for _, pt := range r {
			ring = append(ring, ToPoint(pt))
		}
		mp = append(mp, orb.Polygon{ring})
	}
	return mp
}

// ToGeometry returns a GeoJSON-ready geometry: a Polygon for a single ring and
// a MultiPolygon otherwise. Several outer rings inside one GeoJSON Polygon would
// be read as holes.
func ToGeometry(p domain.Polygon) orb.Geometry {
	mp := ToMultiPolygon(p)
	if len(mp) == 1 {
		return mp[0]
	}
	return mp
}

// FromGeometry flattens an orb Polygon or MultiPolygon into outer rings.
// Holes are not part of the sector model and are rejected.
func FromGeometry(g orb.Geometry) (domain.Polygon, error) {
	var parts []orb.Polygon
	switch v := g.(type) {
	case orb.Polygon:
		parts = []orb.Polygon{v}
	case orb.MultiPolygon:
		parts = v
	case nil:
		return domain.Polygon{}, errors.New("from geometry: geometry is nil")
	default:
		return domain.Polygon{}, fmt.Errorf("from geometry: unsupported type %s", g.GeoJSONType())
	}

	out := domain.Polygon{Rings: make([]domain.Ring, 0, len(parts))}
	for i, poly := range parts {
		if len(poly) == 0 {
			continue
		}
		if len(poly) > 1 {
			return domain.Polygon{}, fmt.Errorf("from geometry: part %d has %d holes", i, len(poly)-1)
		}
		ring := make(domain.Ring, 0, len(poly[0]))
		for _, pt := range poly[0] {
			ring = append(ring, FromPoint(pt))
		}
		out.Rings = append(out.Rings, ring)
	}
	return out, nil
}

// MarshalGeometry encodes a polygon as a GeoJSON geometry object.
func MarshalGeometry(p domain.Polygon) ([]byte, error) {
	b, err := geojson.NewGeometry(ToGeometry(p)).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal geometry: %w", err)
	}
	return b, nil
}

// UnmarshalGeometry decodes a GeoJSON Polygon or MultiPolygon.
func UnmarshalGeometry(data []byte) (domain.Polygon, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return domain.Polygon{}, fmt.Errorf("unmarshal geometry: %w", err)
	}
	return FromGeometry(g.Geometry())
}

// SectorsToFeatureCollection renders sectors as GeoJSON features with
// id, name, centroid ([lon, lat]) and member_outlet_ids properties.
func SectorsToFeatureCollection(sectors []domain.Sector) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range sectors {
		f := geojson.NewFeature(ToGeometry(s.Geometry))
		f.ID = s.ID
		members := s.MemberOutletIDs
		if members == nil {
			members = []string{}
		}
		f.Properties["id"] = s.ID
		f.Properties["name"] = s.Name
		f.Properties["centroid"] = s.Centroid.CoordsToList()
		f.Properties["member_outlet_ids"] = members
		fc.Append(f)
	}
	return fc
}
