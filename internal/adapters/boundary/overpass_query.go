package boundary

import (
	"fmt"
	"sector-partition-service/internal/domain"
	"strconv"
	"strings"
)

type overpassResponse struct {
	Remark   string            `json:"remark"`
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type    string            `json:"type"`
	ID      int64             `json:"id"`
	Tags    map[string]string `json:"tags"`
	Members []overpassMember  `json:"members"`
}

type overpassMember struct {
	Type     string           `json:"type"`
	Ref      int64            `json:"ref"`
	Role     string           `json:"role"`
	Geometry []overpassLatLon `json:"geometry"`
}

type overpassLatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// buildSubdivisionQuery selects administrative relations at childLevel inside
// the area named parent. parentLevel narrows the area match when positive.
func buildSubdivisionQuery(parent string, parentLevel, childLevel, timeoutSec int) string {
	if timeoutSec <= 0 {
		timeoutSec = 60
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n", timeoutSec)
	fmt.Fprintf(&b, `area["boundary"="administrative"]["name"="%s"]`, escapeOverpass(parent))
	if parentLevel > 0 {
		fmt.Fprintf(&b, `["admin_level"="%d"]`, parentLevel)
	}
	b.WriteString("->.parent;\n")
	fmt.Fprintf(&b, `rel(area.parent)["boundary"="administrative"]["admin_level"="%d"];`+"\n", childLevel)
	b.WriteString("out geom;")
	return b.String()
}

func escapeOverpass(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// features converts relations at the requested level into admin features.
// Relations without any outer geometry are skipped.
func (r overpassResponse) features(childLevel int) []domain.AdminFeature {
	out := make([]domain.AdminFeature, 0, len(r.Elements))
	for _, el := range r.Elements {
		if el.Type != "relation" {
			continue
		}

		level := childLevel
		if v, err := strconv.Atoi(el.Tags["admin_level"]); err == nil {
			level = v
		}
		if level != childLevel {
			continue
		}

		segments := make([][]domain.GeoPoint, 0, len(el.Members))
		for _, m := range el.Members {
			if m.Type != "way" || m.Role != "outer" || len(m.Geometry) == 0 {
				continue
			}
			seg := make([]domain.GeoPoint, 0, len(m.Geometry))
			for _, p := range m.Geometry {
				seg = append(seg, domain.GeoPoint{Lat: p.Lat, Lon: p.Lon})
			}
			segments = append(segments, seg)
		}

		rings := assembleRings(segments)
		if len(rings) == 0 {
			continue
		}

		out = append(out, domain.AdminFeature{
			ID:         el.ID,
			Name:       el.Tags["name"],
			AdminLevel: level,
			OuterRings: rings,
		})
	}
	return out
}

// assembleRings joins outer way segments end to end into rings.
//
// OSM splits a boundary into ways that share endpoints and may run in either
// direction. Segments are chained until the ring closes or no segment connects;
// a ring left open is returned as is and closed by the consumer.
func assembleRings(segments [][]domain.GeoPoint) [][]domain.GeoPoint {
	remaining := make([][]domain.GeoPoint, 0, len(segments))
	for _, s := range segments {
		if len(s) > 0 {
			remaining = append(remaining, s)
		}
	}

	rings := make([][]domain.GeoPoint, 0)
	for len(remaining) > 0 {
		cur := append([]domain.GeoPoint(nil), remaining[0]...)
		remaining = remaining[1:]

		for len(cur) < 2 || cur[0] != cur[len(cur)-1] {
			last := cur[len(cur)-1]
			joined := false
			for i, seg := range remaining {
				switch last {
				case seg[0]:
					cur = append(cur, seg[1:]...)
				case seg[len(seg)-1]:
					for j := len(seg) - 2; j >= 0; j-- {
						cur = append(cur, seg[j])
					}
				default:
					continue
				}
				remaining = append(remaining[:i], remaining[i+1:]...)
				joined = true
				break
			}
			if !joined {
				break
			}
		}

		rings = append(rings, cur)
	}
	return rings
}
