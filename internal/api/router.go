package api

import (
	"context"
	"net/http"
	"sector-partition-service/internal/api/handlers"
	"sector-partition-service/internal/ports"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the adapters the HTTP layer depends on. Sectors and Ping may be nil.
type Deps struct {
	Outlets     ports.OutletRepository
	Sectors     ports.SectorRepository
	Provider    ports.BoundaryProvider
	ClusterSeed uint64
	Ping        func(ctx context.Context) error
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Ping: d.Ping}
	outletHandler := &handlers.OutletHandler{Repo: d.Outlets}
	partitionHandler := &handlers.PartitionHandler{
		Outlets:     d.Outlets,
		Sectors:     d.Sectors,
		Provider:    d.Provider,
		DefaultSeed: d.ClusterSeed,
	}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/outlets", outletHandler.List)
	mux.HandleFunc("/partitions", partitionHandler.Create)
	mux.HandleFunc("/partitions/{id}", partitionHandler.Get)

	return loggingMiddleware(mux)
}
