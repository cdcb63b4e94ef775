// Package metrics holds the hub's ambient prometheus instrumentation:
// active session count, per-command dispatch latency, and confirmed
// payments. Grounded on the teacher family's CounterVec/GaugeVec/
// HistogramVec registration pattern.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every collector the hub registers.
type Metrics struct {
	ActiveSessions    prometheus.Gauge
	CommandDuration   *prometheus.HistogramVec
	CommandErrors     *prometheus.CounterVec
	ConfirmedPayments prometheus.Counter
	EventsPublished   *prometheus.CounterVec
}

// New constructs and registers every collector against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "anypayx",
			Subsystem: "hub",
			Name:      "active_sessions",
			Help:      "Number of currently connected WebSocket sessions.",
		}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "anypayx",
			Subsystem: "hub",
			Name:      "command_duration_seconds",
			Help:      "Dispatch latency of inbound session commands.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		CommandErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anypayx",
			Subsystem: "hub",
			Name:      "command_errors_total",
			Help:      "Count of session commands that returned an error envelope.",
		}, []string{"action", "kind"}),
		ConfirmedPayments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "anypayx",
			Subsystem: "hub",
			Name:      "confirmed_payments_total",
			Help:      "Count of payments marked confirmed by the confirmation pipeline.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anypayx",
			Subsystem: "hub",
			Name:      "events_published_total",
			Help:      "Count of events fanned out to subscribed sessions.",
		}, []string{"topic"}),
	}

	reg.MustRegister(
		m.ActiveSessions,
		m.CommandDuration,
		m.CommandErrors,
		m.ConfirmedPayments,
		m.EventsPublished,
	)
	return m
}
