// Package metrics exposes screening counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StockScreener/internal/model"
)

// Run outcome labels.
const (
	StatusOK      = "ok"
	StatusEmpty   = "empty"
	StatusFailed  = "failed"
	StatusPartial = "partial"
)

// Recorder owns the screener collectors on its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	runsTotal   *prometheus.CounterVec
	analyses    *prometheus.CounterVec
	runDuration prometheus.Histogram
	errorsTotal *prometheus.CounterVec
	lastScore   *prometheus.GaugeVec
}

// New creates a recorder with all collectors registered on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_runs_total",
				Help: "Total number of screening runs by outcome",
			},
			[]string{"status"},
		),
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_analyses_total",
				Help: "Total number of stock analyses by recommendation",
			},
			[]string{"recommendation"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "screener_run_duration_seconds",
				Help:    "Duration of a full screening run in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_collaborator_errors_total",
				Help: "Total number of collaborator failures",
			},
			[]string{"component"},
		),
		lastScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "screener_last_score",
				Help: "Overall score of the latest analysis of a symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordRun records the outcome and duration of a run.
func (r *Recorder) RecordRun(status string, d time.Duration) {
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(d.Seconds())
}

// RecordAnalysis counts one result and updates the symbol's score gauge.
// Insufficient-data results only count toward the recommendation.
func (r *Recorder) RecordAnalysis(res *model.AnalysisResult) {
	r.analyses.WithLabelValues(string(res.Recommendation)).Inc()
	if res.Computed() {
		r.lastScore.WithLabelValues(res.Symbol).Set(res.Score())
	}
}

// RecordError counts a failure of a collaborator (fetch, refine, notify, record).
func (r *Recorder) RecordError(component string) {
	r.errorsTotal.WithLabelValues(component).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
