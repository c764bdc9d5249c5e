package guarded

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks delivery through a guarded sink.
type Metrics struct {
	Delivered    prometheus.Counter
	Failures     prometheus.Counter
	Dropped      prometheus.Counter
	BreakerState prometheus.Gauge
}

// NewMetrics registers the sink metrics with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Delivered: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_audit_sink_delivered_total",
			Help: "Audit events delivered to the external sink",
		}),
		Failures: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_audit_sink_failures_total",
			Help: "Audit events the external sink failed to accept",
		}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_audit_sink_dropped_total",
			Help: "Audit events dropped while the circuit breaker was open",
		}),
		BreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_audit_sink_breaker_open",
			Help: "Circuit breaker state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) setOpen(open bool) {
	if open {
		m.BreakerState.Set(1)
		return
	}
	m.BreakerState.Set(0)
}
