// Package metrics exposes Prometheus instrumentation for ingestion, graph
// builds, analyzers, and the dataset catalog.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Ingestion Metrics
	IngestFilesTotal   *prometheus.CounterVec
	IngestRecordsTotal prometheus.Counter
	IngestDuration     *prometheus.HistogramVec

	// Graph Metrics
	GraphBuildDuration prometheus.Histogram
	GraphRecordsTotal  prometheus.Gauge
	GraphDuplicateDns  prometheus.Counter

	// Analysis Metrics
	AnalyzerDuration *prometheus.HistogramVec
	AssessmentsTotal prometheus.Counter

	// Catalog Metrics
	CatalogDatasetsTotal   prometheus.Gauge
	CatalogWritesTotal     *prometheus.CounterVec
	CatalogBatchBytesTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initIngestMetrics()
	r.initGraphMetrics()
	r.initAnalysisMetrics()
	r.initCatalogMetrics()
	return r
}

// Default returns the process-wide registry.
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Prometheus exposes the underlying registry for scraping.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Package-level handles on the default registry, for call-site brevity.
var (
	IngestFilesTotal   = Default().IngestFilesTotal
	IngestRecordsTotal = Default().IngestRecordsTotal
	IngestDuration     = Default().IngestDuration
	GraphBuildDuration = Default().GraphBuildDuration
	GraphRecordsTotal  = Default().GraphRecordsTotal
	GraphDuplicateDns  = Default().GraphDuplicateDns
	AnalyzerDuration   = Default().AnalyzerDuration
	AssessmentsTotal   = Default().AssessmentsTotal

	CatalogDatasetsTotal   = Default().CatalogDatasetsTotal
	CatalogWritesTotal     = Default().CatalogWritesTotal
	CatalogBatchBytesTotal = Default().CatalogBatchBytesTotal
)
