package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCatalogMetrics() {
	r.CatalogDatasetsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fabriclens_catalog_datasets_total",
			Help: "Number of datasets currently in the catalog",
		},
	)

	r.CatalogWritesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabriclens_catalog_writes_total",
			Help: "Total number of catalog write operations",
		},
		[]string{"operation", "status"},
	)

	r.CatalogBatchBytesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabriclens_catalog_batch_bytes_total",
			Help: "Bytes written for record batches, before and after compression",
		},
		[]string{"stage"},
	)
}
