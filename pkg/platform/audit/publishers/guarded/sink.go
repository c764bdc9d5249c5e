// Package guarded wraps an audit sink with a circuit breaker so a broker
// outage costs one fast rejection per event instead of a produce timeout.
package guarded

import (
	"context"
	"errors"
	"log/slog"

	audit "chronoledger/pkg/platform/audit"
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = errors.New("audit sink circuit open")

// Sink is an audit.Sink guarded by a Breaker.
type Sink struct {
	next    audit.Sink
	breaker *Breaker
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures a Sink.
type Option func(*Sink)

func WithBreaker(b *Breaker) Option {
	return func(s *Sink) {
		s.breaker = b
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Sink) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// New wraps next. Without WithBreaker a default breaker is used.
func New(next audit.Sink, opts ...Option) *Sink {
	s := &Sink{next: next}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = NewBreaker(0, 0)
	}
	return s
}

// Publish forwards event unless the breaker is open.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	if !s.breaker.Allow() {
		if s.metrics != nil {
			s.metrics.Dropped.Inc()
		}
		return ErrOpen
	}

	if err := s.next.Publish(ctx, event); err != nil {
		wasOpen := s.breaker.IsOpen()
		open := s.breaker.RecordFailure()
		if s.metrics != nil {
			s.metrics.Failures.Inc()
			s.metrics.setOpen(open)
		}
		if open && !wasOpen && s.logger != nil {
			s.logger.WarnContext(ctx, "audit sink circuit opened", "error", err)
		}
		return err
	}

	s.breaker.RecordSuccess()
	if s.metrics != nil {
		s.metrics.Delivered.Inc()
		s.metrics.setOpen(false)
	}
	return nil
}
