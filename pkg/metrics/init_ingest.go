package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initIngestMetrics() {
	r.IngestFilesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabriclens_ingest_files_total",
			Help: "Total number of export files processed",
		},
		[]string{"format", "status"},
	)

	r.IngestRecordsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fabriclens_ingest_records_total",
			Help: "Total number of records decoded from export files",
		},
	)

	r.IngestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fabriclens_ingest_duration_seconds",
			Help:    "Export file decode duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
		[]string{"format"},
	)
}
