package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fabriclens_graph_build_duration_seconds",
			Help:    "Relationship graph build duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
	)

	r.GraphRecordsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fabriclens_graph_records_total",
			Help: "Number of records indexed in the most recent graph build",
		},
	)

	r.GraphDuplicateDns = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fabriclens_graph_duplicate_dns_total",
			Help: "Total number of duplicate dns collapsed during graph builds",
		},
	)
}
