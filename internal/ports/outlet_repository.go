package ports

import (
	"context"
	"sector-partition-service/internal/domain"
)

// Port: a boundary for reading outlets from the outlet directory.
type OutletRepository interface {
	// Retrieve all outlets available for partitioning.
	ListOutlets(ctx context.Context) ([]domain.Outlet, error)
}
