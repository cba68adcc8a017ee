// Package metrics provides the Prometheus metrics registry for the racehorse ledger.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "racehorse"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	LedgerAppendsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_appends_total",
		Help:      "Total number of settled bets appended to the ledger",
	})
	LedgerCorruptTailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_corrupt_tail_recoveries_total",
		Help:      "Appends that continued from zero because the last row was unreadable",
	})
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Selection runs by outcome",
	}, []string{"outcome"})
	CompletionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "completion_errors_total",
		Help:      "Chat completion failures by reason",
	}, []string{"reason"})
)

// Gauge metrics
var (
	CumulativeProfit = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cumulative_profit_units",
		Help:      "Cumulative profit in stake units as of the last ledger row",
	})
	ROITotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roi_total",
		Help:      "Cumulative profit divided by settled bets",
	})
	SettledBets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "settled_bets",
		Help:      "Number of rows in the ledger",
	})
)

// Histogram metrics
var (
	CompletionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "completion_latency_seconds",
		Help:      "Latency of chat completion requests in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(LedgerAppendsTotal)
		registry.MustRegister(LedgerCorruptTailTotal)
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(CompletionErrorsTotal)

		registry.MustRegister(CumulativeProfit)
		registry.MustRegister(ROITotal)
		registry.MustRegister(SettledBets)

		registry.MustRegister(CompletionLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// RecordAppend records a ledger append and the running totals it produced.
func RecordAppend(cumProfit, roi float64, rows int) {
	LedgerAppendsTotal.Inc()
	UpdateLedgerTotals(cumProfit, roi, rows)
}

// UpdateLedgerTotals sets the ledger gauges without counting an append.
func UpdateLedgerTotals(cumProfit, roi float64, rows int) {
	CumulativeProfit.Set(cumProfit)
	ROITotal.Set(roi)
	SettledBets.Set(float64(rows))
}

// RecordCorruptTail records a zero-baseline recovery.
func RecordCorruptTail() {
	LedgerCorruptTailTotal.Inc()
}

// RecordPrediction records the outcome of a selection run.
func RecordPrediction(outcome string) {
	PredictionsTotal.WithLabelValues(outcome).Inc()
}

// RecordCompletionError records a failed completion request.
func RecordCompletionError(reason string) {
	CompletionErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordCompletionLatency records completion request latency.
func RecordCompletionLatency(durationSeconds float64) {
	CompletionLatency.Observe(durationSeconds)
}

// WriteTextfile writes the registry in the node_exporter textfile format.
// The write goes through a temporary file so scrapers never see a partial file.
func WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, GetRegistry()); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
