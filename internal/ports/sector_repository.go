package ports

import (
	"context"
	"sector-partition-service/internal/domain"
)

// Port: persistence for partition runs and their sectors.
type SectorRepository interface {
	SaveRun(ctx context.Context, run domain.PartitionRun) error
	// Return domain.ErrRunNotFound when no run has the given id.
	GetRun(ctx context.Context, id string) (*domain.PartitionRun, error)
}
