package ports

import (
	"context"
	"sector-partition-service/internal/domain"
)

// Scope of one administrative-boundary lookup.
// ParentLevel is a hint; providers may match the parent by name alone.
type BoundaryQuery struct {
	ParentName  string
	ParentLevel int
	ChildLevel  int
}

// Contract for the external administrative-boundary source.
type BoundaryProvider interface {
	// Return the named child areas of the parent region at the child admin level.
	FetchSubdivisions(ctx context.Context, q BoundaryQuery) ([]domain.AdminFeature, error)
}
