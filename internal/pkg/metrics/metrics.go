// Package metrics exposes Prometheus instruments for order-creation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is nil-safe: a nil *Recorder records nothing.
type Recorder struct {
	runs  *prometheus.CounterVec
	steps *prometheus.HistogramVec
}

// New registers the instruments on reg. Pass prometheus.DefaultRegisterer in
// main and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_runs_total",
				Help: "Order-creation runs by outcome.",
			},
			[]string{"outcome"},
		),
		steps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "order_step_duration_seconds",
				Help:    "Duration of order-creation steps in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step", "status"},
		),
	}
	reg.MustRegister(r.runs, r.steps)
	return r
}

func (r *Recorder) ObserveStep(step, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.steps.WithLabelValues(step, status).Observe(d.Seconds())
}

// ObserveRun counts a finished run. outcome is "success", "warning" or an apperr kind.
func (r *Recorder) ObserveRun(outcome string) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(outcome).Inc()
}
