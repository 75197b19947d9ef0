// Package metrics exports Prometheus collectors for the analysis engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded on inkwell_analysis_total.
const (
	OutcomeOK                  = "ok"
	OutcomeTaxonomyUnavailable = "taxonomy_unavailable"
	OutcomeDegraded            = "degraded" // analyzed without a taxonomy
	OutcomeError               = "error"
)

var (
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_analysis_duration_seconds",
		Help:    "Time to analyze one body of markup",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	}, []string{"source"})

	analysisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_analysis_total",
		Help: "Analysis runs by caller and outcome",
	}, []string{"source", "outcome"})

	uncategorizedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_analysis_uncategorized_total",
		Help: "Analysis runs that matched no category",
	}, []string{"source"})

	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_jobs_processed_total",
		Help: "Background jobs handled by the worker, by task type and status",
	}, []string{"task_type", "status"})
)

// ObserveAnalysis records one analysis run. source names the caller: "create",
// "update", "reanalyze" or "preview".
func ObserveAnalysis(source, outcome string, uncategorized bool, elapsed time.Duration) {
	analysisDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	analysisTotal.WithLabelValues(source, outcome).Inc()
	if uncategorized {
		uncategorizedTotal.WithLabelValues(source).Inc()
	}
}

// ObserveJob records a finished background job.
func ObserveJob(taskType, status string) {
	jobsProcessed.WithLabelValues(taskType, status).Inc()
}

// Handler serves the default registry for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
