package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PartitionRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sectors_partition_requests_total",
		Help: "Partition requests by strategy and outcome",
	}, []string{"strategy", "outcome"})
	PartitionDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sectors_partition_duration_ms",
		Help:    "Partition duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"strategy"})
	SectorsProducedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sectors_produced_total",
		Help: "Sectors produced by strategy",
	}, []string{"strategy"})
	BoundaryProviderRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sectors_boundary_provider_requests_total",
		Help: "Total boundary provider HTTP queries",
	})
	BoundaryProviderFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sectors_boundary_provider_failures_total",
		Help: "Total failed boundary provider queries",
	})
	BoundaryCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sectors_boundary_cache_hits_total",
		Help: "Total boundary cache hits",
	})
	BoundaryCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sectors_boundary_cache_misses_total",
		Help: "Total boundary cache misses",
	})
)

func init() {
	prometheus.MustRegister(PartitionRequestsTotal)
	prometheus.MustRegister(PartitionDurationMs)
	prometheus.MustRegister(SectorsProducedTotal)
	prometheus.MustRegister(BoundaryProviderRequestsTotal)
	prometheus.MustRegister(BoundaryProviderFailuresTotal)
	prometheus.MustRegister(BoundaryCacheHitsTotal)
	prometheus.MustRegister(BoundaryCacheMissesTotal)
}
