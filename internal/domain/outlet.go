package domain

// Represents a geo-located point of sale owned by the outlet directory.
// The partitioning engine only reads outlets.
type Outlet struct {
	ID       string
	Name     string
	Location GeoPoint
}
