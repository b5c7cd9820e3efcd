// Package telemetry exposes run metrics over Prometheus.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics carries the counters the controller reports into.
type Metrics struct {
	Dispatches      *prometheus.CounterVec
	Retries         prometheus.Counter
	FindingsKept    prometheus.Counter
	FindingsDropped *prometheus.CounterVec
	BudgetRatio     prometheus.Gauge
	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
}

// New registers the metric set on the given registerer. Pass
// prometheus.DefaultRegisterer in production, a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daybrief",
			Name:      "dispatches_total",
			Help:      "Collaborator dispatches by kind.",
		}, []string{"kind"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "daybrief",
			Name:      "dispatch_retries_total",
			Help:      "Dispatches retried after empty or failed results.",
		}),
		FindingsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "daybrief",
			Name:      "findings_kept_total",
			Help:      "Findings that survived verification and dedup.",
		}),
		FindingsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daybrief",
			Name:      "findings_dropped_total",
			Help:      "Findings dropped, by reason.",
		}, []string{"reason"}),
		BudgetRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "daybrief",
			Name:      "budget_usage_ratio",
			Help:      "Consumed share of the run's input ceiling.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daybrief",
			Name:      "runs_total",
			Help:      "Research runs by outcome.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "daybrief",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a research run.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 8),
		}),
	}
	reg.MustRegister(m.Dispatches, m.Retries, m.FindingsKept, m.FindingsDropped,
		m.BudgetRatio, m.Runs, m.RunDuration)
	return m
}
