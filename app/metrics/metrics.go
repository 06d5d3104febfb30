// Package metrics exposes Prometheus instrumentation for monitor runs.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ProductsChecked   *prometheus.CounterVec
	SourceDiagnostics *prometheus.CounterVec
	NewItems          *prometheus.CounterVec
	ProductFailures   prometheus.Counter
	Runs              *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	FeedItems         *prometheus.GaugeVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics, registering them on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = initMetrics()
	})
	return instance
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}

	m.ProductsChecked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "release_notes_products_checked_total",
		Help: "Total product source checks by source type",
	}, []string{"source_type"})

	m.SourceDiagnostics = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "release_notes_source_diagnostics_total",
		Help: "Degraded source checks by kind (transient, structural, config)",
	}, []string{"kind"})

	m.NewItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "release_notes_new_items_total",
		Help: "Items reported as new, by team",
	}, []string{"team"})

	m.ProductFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "release_notes_product_failures_total",
		Help: "Product checks aborted by an unexpected error",
	})

	m.Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "release_notes_runs_total",
		Help: "Completed runs by outcome",
	}, []string{"outcome"})

	m.RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "release_notes_run_duration_seconds",
		Help:    "Wall time of a full run",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
	})

	m.FeedItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "release_notes_feed_items",
		Help: "Items currently in each rendered feed",
	}, []string{"team"})

	return m
}
