package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Scan metrics
	symbolsScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalforge_symbols_scanned_total",
			Help: "Total number of symbols backtested",
		},
		[]string{"market"},
	)

	scanErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalforge_scan_errors_total",
			Help: "Total number of symbols skipped due to errors",
		},
		[]string{"market"},
	)

	signalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalforge_signals_total",
			Help: "Total number of trade signals produced",
		},
		[]string{"market"},
	)

	// Simulation metrics
	openPositions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signalforge_open_positions",
			Help: "Open positions at the end of the latest simulation",
		},
		[]string{"market"},
	)

	portfolioValue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signalforge_portfolio_value",
			Help: "Latest simulated portfolio value in the display currency",
		},
	)

	simulationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signalforge_simulation_duration_seconds",
			Help:    "Wall time of portfolio simulation runs",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(symbolsScanned)
	prometheus.MustRegister(scanErrors)
	prometheus.MustRegister(signalsGenerated)
	prometheus.MustRegister(openPositions)
	prometheus.MustRegister(portfolioValue)
	prometheus.MustRegister(simulationDuration)
}

// MetricsHandler serves the Prometheus metrics endpoint.
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint.
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordSymbolScanned counts a completed symbol backtest and the signals
// it produced.
func RecordSymbolScanned(market string, signalCount int) {
	symbolsScanned.WithLabelValues(market).Inc()
	signalsGenerated.WithLabelValues(market).Add(float64(signalCount))
}

// RecordScanError counts a symbol excluded from the batch.
func RecordScanError(market string) {
	scanErrors.WithLabelValues(market).Inc()
}

// UpdateOpenPositions sets the per-market open position gauge.
func UpdateOpenPositions(market string, count int) {
	openPositions.WithLabelValues(market).Set(float64(count))
}

// UpdatePortfolioValue sets the latest simulated portfolio value.
func UpdatePortfolioValue(value float64) {
	portfolioValue.Set(value)
}

// ObserveSimulationDuration records the wall time of a simulation run.
func ObserveSimulationDuration(d time.Duration) {
	simulationDuration.Observe(d.Seconds())
}
