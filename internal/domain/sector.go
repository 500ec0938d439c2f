package domain

import "time"

// Represents a named geographic partition produced by one partitioning strategy.
// A Sector is built once per request and never mutated afterwards; ownership
// passes to the caller for persistence.
type Sector struct {
	ID              int
	Name            string
	Geometry        Polygon
	Centroid        GeoPoint
	MemberOutletIDs []string
}

// Represents one persisted partitioning request and the sectors it produced.
type PartitionRun struct {
	ID        string
	Strategy  string
	CreatedAt time.Time
	Sectors   []Sector
}
