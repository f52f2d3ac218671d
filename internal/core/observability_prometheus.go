package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports command timings and outcome counters to
// a prometheus registry.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder builds a recorder and registers its
// collectors with reg. A nil registerer leaves the collectors unregistered,
// which is occasionally useful in tests.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	r := &PrometheusMetricsRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rewind_command_duration_seconds",
			Help:    "Time spent executing a single engine command.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rewind_command_results_total",
			Help: "Engine command outcomes partitioned by operation and status.",
		}, []string{"op", "status"}),
	}
	if reg != nil {
		if err := reg.Register(r.durations); err != nil {
			return nil, err
		}
		if err := reg.Register(r.results); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	if op == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(op).Observe(duration.Seconds())
	r.results.WithLabelValues(op, status).Inc()
}
