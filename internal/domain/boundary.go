package domain

import (
	"fmt"
	"strings"
)

// SubdivisionLevel selects how deep below a parent region the hierarchy mapper descends.
type SubdivisionLevel int

const (
	LevelCity SubdivisionLevel = iota + 1
	LevelCommune
	LevelNeighborhood
)

func (l SubdivisionLevel) String() string {
	switch l {
	case LevelCity:
		return "city"
	case LevelCommune:
		return "commune"
	case LevelNeighborhood:
		return "neighborhood"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseSubdivisionLevel accepts the lowercase names used by the HTTP API.
func ParseSubdivisionLevel(s string) (SubdivisionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "city":
		return LevelCity, nil
	case "commune":
		return LevelCommune, nil
	case "neighborhood", "neighbourhood":
		return LevelNeighborhood, nil
	default:
		return 0, fmt.Errorf("parse subdivision level %q: %w", s, ErrInvalidParameter)
	}
}

// Named administrative area returned by a boundary provider.
// OuterRings may hold several disjoint parts.
type AdminFeature struct {
	ID         int64
	Name       string
	AdminLevel int
	OuterRings [][]GeoPoint
}
