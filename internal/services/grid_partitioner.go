package services

import (
	"sector-partition-service/internal/domain"
	"strconv"
)

// DivideGrid splits bbox into rows x cols rectangular sectors.
//
// Rows are lettered from the northern edge (row A is the top row) and columns
// are numbered west to east from 1, giving names A1, A2, ..., B1, ... Each
// cell is a closed counter-clockwise ring of 4 corners plus the closing point,
// starting at its south-west corner.
//
// The grid ignores outlet density, so cells may be empty, and member lists are
// left empty (see AssignOutletsToSectors). Non-positive rows or cols are not
// rejected; they produce no cells. Range validation is the caller's job.
func DivideGrid(bbox domain.BoundingBox, rows, cols int) []domain.Sector {
	if rows <= 0 || cols <= 0 {
		return []domain.Sector{}
	}

	width := (bbox.MaxLng - bbox.MinLng) / float64(cols)
	height := (bbox.MaxLat - bbox.MinLat) / float64(rows)

	sectors := make([]domain.Sector, 0, rows*cols)
	for r := 0; r < rows; r++ {
		north := bbox.MaxLat - float64(r)*height
		south := north - height
		// Pin the last row to the box edge to avoid floating-point drift.
		if r == rows-1 {
			south = bbox.MinLat
		}

		for c := 0; c < cols; c++ {
			west := bbox.MinLng + float64(c)*width
			east := west + width
			if c == cols-1 {
				east = bbox.MaxLng
			}

			ring := domain.Ring{
				{Lat: south, Lon: west},
				{Lat: south, Lon: east},
				{Lat: north, Lon: east},
				{Lat: north, Lon: west},
				{Lat: south, Lon: west},
			}

			sectors = append(sectors, domain.Sector{
				ID:              r*cols + c + 1,
				Name:            Letters(r) + strconv.Itoa(c+1),
				Geometry:        domain.Polygon{Rings: []domain.Ring{ring}},
				Centroid:        domain.GeoPoint{Lat: (south + north) / 2, Lon: (west + east) / 2},
				MemberOutletIDs: []string{},
			})
		}
	}

	return sectors
}
