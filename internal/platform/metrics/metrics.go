package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the ledger.
type Metrics struct {
	RecordsCreated      *prometheus.CounterVec
	Transitions         *prometheus.CounterVec
	AuthorizationDenied *prometheus.CounterVec
	VotesCast           prometheus.Counter
	RateLimited         *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var latencyBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// New creates the ledger collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chronoledger_records_created_total",
			Help: "Total number of ledger records created, by kind",
		}, []string{"kind"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chronoledger_transitions_total",
			Help: "Total number of successful record mutations, by action",
		}, []string{"action"}),
		AuthorizationDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chronoledger_authorization_denied_total",
			Help: "Total number of operations rejected by the authorization policy, by action",
		}, []string{"action"}),
		VotesCast: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronoledger_votes_cast_total",
			Help: "Total number of votes recorded on resolutions",
		}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chronoledger_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter, by key type",
		}, []string{"key_type"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chronoledger_operation_duration_seconds",
			Help:    "Duration of ledger service operations",
			Buckets: latencyBuckets,
		}, []string{"operation"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chronoledger_http_request_duration_seconds",
			Help:    "Duration of HTTP requests, by route pattern and status",
			Buckets: latencyBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// IncrementCreated records a new record of kind.
func (m *Metrics) IncrementCreated(kind string) {
	m.RecordsCreated.WithLabelValues(kind).Inc()
}

// IncrementTransition records a successful mutation.
func (m *Metrics) IncrementTransition(action string) {
	m.Transitions.WithLabelValues(action).Inc()
}

// IncrementDenied records a policy rejection.
func (m *Metrics) IncrementDenied(action string) {
	m.AuthorizationDenied.WithLabelValues(action).Inc()
}

// IncrementVotes records one vote.
func (m *Metrics) IncrementVotes() {
	m.VotesCast.Inc()
}

// IncrementRateLimited records a rejected request.
func (m *Metrics) IncrementRateLimited(keyType string) {
	m.RateLimited.WithLabelValues(keyType).Inc()
}

// ObserveOperation records the duration of a service operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveHTTPRequest records the duration of an HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}
