package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalyzerDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fabriclens_analyzer_duration_seconds",
			Help:    "Analyzer execution duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"analyzer"},
	)

	r.AssessmentsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fabriclens_assessments_total",
			Help: "Total number of completed full assessments",
		},
	)
}
