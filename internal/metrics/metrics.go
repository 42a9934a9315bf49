// Package metrics provides the centralized Prometheus registry for the
// training pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	TrainingRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpe_scout",
		Name:      "training_runs_total",
		Help:      "Total number of completed per-instrument training runs",
	})
	TrainingFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpe_scout",
		Name:      "training_failures_total",
		Help:      "Total number of per-instrument pipeline failures",
	}, []string{"stage"})
	EpochsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpe_scout",
		Name:      "epochs_total",
		Help:      "Total number of training epochs executed",
	})
	DataFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpe_scout",
		Name:      "data_fetches_total",
		Help:      "Total number of provider fetches",
	}, []string{"provider"})
)

// Gauge metrics
var (
	InstrumentSharpe = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sharpe_scout",
		Name:      "instrument_sharpe_ratio",
		Help:      "Latest Sharpe ratio per instrument",
	}, []string{"symbol"})
	InstrumentTestAccuracy = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sharpe_scout",
		Name:      "instrument_test_accuracy",
		Help:      "Latest directional test accuracy per instrument",
	}, []string{"symbol"})
	RankedInstruments = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpe_scout",
		Name:      "ranked_instruments",
		Help:      "Number of instruments in the latest ranking table",
	})
)

// Histogram metrics
var (
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpe_scout",
		Name:      "training_duration_seconds",
		Help:      "Duration of per-instrument training runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	DataFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpe_scout",
		Name:      "data_fetch_duration_seconds",
		Help:      "Duration of provider fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(TrainingRunsTotal)
		registry.MustRegister(TrainingFailuresTotal)
		registry.MustRegister(EpochsTotal)
		registry.MustRegister(DataFetchesTotal)

		registry.MustRegister(InstrumentSharpe)
		registry.MustRegister(InstrumentTestAccuracy)
		registry.MustRegister(RankedInstruments)

		registry.MustRegister(TrainingDuration)
		registry.MustRegister(DataFetchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordTrainingRun records a completed training run.
func RecordTrainingRun(epochs int, duration time.Duration) {
	TrainingRunsTotal.Inc()
	EpochsTotal.Add(float64(epochs))
	TrainingDuration.Observe(duration.Seconds())
}

// RecordTrainingFailure records a per-instrument failure at a stage.
func RecordTrainingFailure(stage string) {
	TrainingFailuresTotal.WithLabelValues(stage).Inc()
}

// RecordDataFetch records a provider fetch.
func RecordDataFetch(provider string, duration time.Duration) {
	DataFetchesTotal.WithLabelValues(provider).Inc()
	DataFetchDuration.Observe(duration.Seconds())
}
