// Package telemetry collects and exposes evaluation metrics for the
// goodness-of-fit engine in Prometheus format, and defines the observer
// contract through which the objective controller reports evaluation events
// without coupling to a metrics or logging backend.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agbru/gofcalc/internal/logging"
)

// Observer receives a notification for every top-level objective evaluation.
type Observer interface {
	// EvaluationDone is called after an evaluation completes.
	//
	// Parameters:
	//   - name: The objective instance name.
	//   - mode: The operating mode label ("slave", "sim-master", "mp-master").
	//   - value: The computed objective value (0 on failure).
	//   - elapsed: Wall-clock duration of the evaluation.
	//   - err: The evaluation error, if any.
	EvaluationDone(name, mode string, value float64, elapsed time.Duration, err error)
}

// Prometheus metrics for engine-level observability
var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gofcalc_evaluations_total",
		Help: "Total number of objective evaluations, by operating mode",
	}, []string{"mode"})
	evaluationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gofcalc_evaluation_errors_total",
		Help: "Total number of failed objective evaluations",
	})
	evaluationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gofcalc_evaluation_seconds",
		Help:    "Objective evaluation durations in seconds",
		Buckets: prometheus.ExponentialBuckets(1e-6, 10, 8),
	})
	activeWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gofcalc_active_workers",
		Help: "Current number of live worker front-ends",
	})
)

// PrometheusObserver records evaluation events into the package's Prometheus
// collectors.
type PrometheusObserver struct{}

// NewPrometheusObserver creates a new PrometheusObserver.
func NewPrometheusObserver() *PrometheusObserver {
	return &PrometheusObserver{}
}

// EvaluationDone implements Observer by updating the counters and histogram.
func (o *PrometheusObserver) EvaluationDone(_ string, mode string, _ float64, elapsed time.Duration, err error) {
	evaluationsTotal.WithLabelValues(mode).Inc()
	evaluationSeconds.Observe(elapsed.Seconds())
	if err != nil {
		evaluationErrors.Inc()
	}
}

// WorkerStarted increments the live-worker gauge.
func WorkerStarted() { activeWorkers.Inc() }

// WorkerStopped decrements the live-worker gauge.
func WorkerStopped() { activeWorkers.Dec() }

// LoggingObserver logs evaluation events through the engine's logging
// surface. It is safe for concurrent use.
type LoggingObserver struct {
	logger logging.Logger
	mu     sync.Mutex
	count  int
}

// NewLoggingObserver creates an observer that logs every evaluation.
func NewLoggingObserver(logger logging.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// EvaluationDone implements Observer by logging the outcome.
func (o *LoggingObserver) EvaluationDone(name, mode string, value float64, elapsed time.Duration, err error) {
	o.mu.Lock()
	o.count++
	n := o.count
	o.mu.Unlock()

	if err != nil {
		o.logger.Error("evaluation failed", err,
			logging.String("objective", name),
			logging.String("mode", mode),
			logging.Int("sequence", n))
		return
	}
	o.logger.Debug("evaluation done",
		logging.String("objective", name),
		logging.String("mode", mode),
		logging.Float64("value", value),
		logging.Int("sequence", n),
		logging.Float64("seconds", elapsed.Seconds()))
}

// MultiObserver fans one event out to several observers in order.
type MultiObserver []Observer

// EvaluationDone implements Observer.
func (m MultiObserver) EvaluationDone(name, mode string, value float64, elapsed time.Duration, err error) {
	for _, o := range m {
		if o != nil {
			o.EvaluationDone(name, mode, value, elapsed, err)
		}
	}
}
