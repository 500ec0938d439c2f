package domain

import "math"

// Immutable geographic position (WGS84 degrees).
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Return the point as [lon, lat] for GeoJSON compatibility.
func (p GeoPoint) CoordsToList() []float64 { return []float64{p.Lon, p.Lat} }

// Ring is a closed sequence of points: the first point equals the last.
type Ring []GeoPoint

// IsClosed reports whether the ring has at least one point and ends where it starts.
func (r Ring) IsClosed() bool {
	return len(r) > 0 && r[0] == r[len(r)-1]
}

// Closed returns the ring with its first point appended when it is open.
func (r Ring) Closed() Ring {
	if len(r) == 0 || r.IsClosed() {
		return r
	}
	out := make(Ring, 0, len(r)+1)
	out = append(out, r...)
	return append(out, r[0])
}

// Polygon holds one or more closed outer rings.
// Administrative areas with enclaves or islands legitimately carry several rings.
type Polygon struct {
	Rings []Ring
}

// Axis-aligned envelope in degrees.
type BoundingBox struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

// EmptyBoundingBox returns the identity envelope that any point extends.
func EmptyBoundingBox() BoundingBox {
	return BoundingBox{
		MinLng: math.Inf(1),
		MinLat: math.Inf(1),
		MaxLng: math.Inf(-1),
		MaxLat: math.Inf(-1),
	}
}

// Extend grows the box to include p.
func (b *BoundingBox) Extend(p GeoPoint) {
	b.MinLng = math.Min(b.MinLng, p.Lon)
	b.MinLat = math.Min(b.MinLat, p.Lat)
	b.MaxLng = math.Max(b.MaxLng, p.Lon)
	b.MaxLat = math.Max(b.MaxLat, p.Lat)
}

// IsFinite is false for the box of an empty geometry.
func (b BoundingBox) IsFinite() bool {
	for _, v := range []float64{b.MinLng, b.MinLat, b.MaxLng, b.MaxLat} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return b.MinLng <= b.MaxLng && b.MinLat <= b.MaxLat
}

func (b BoundingBox) Center() GeoPoint {
	return GeoPoint{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLng + b.MaxLng) / 2,
	}
}
