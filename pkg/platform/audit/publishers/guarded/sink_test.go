package guarded

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "chronoledger/pkg/platform/audit"
)

type stubSink struct {
	err   error
	calls int
}

func (s *stubSink) Publish(context.Context, audit.Event) error {
	s.calls++
	return s.err
}

func TestBreaker(t *testing.T) {
	t.Run("opens after threshold consecutive failures", func(t *testing.T) {
		b := NewBreaker(2, time.Minute)
		assert.False(t, b.RecordFailure())
		assert.True(t, b.RecordFailure())
		assert.True(t, b.IsOpen())
		assert.False(t, b.Allow())
	})

	t.Run("success resets the failure count", func(t *testing.T) {
		b := NewBreaker(2, time.Minute)
		b.RecordFailure()
		b.RecordSuccess()
		assert.False(t, b.RecordFailure())
	})

	t.Run("half-opens after cooldown", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		b := NewBreaker(3, time.Second)
		b.now = func() time.Time { return now }

		for range 3 {
			b.RecordFailure()
		}
		require.False(t, b.Allow())

		now = now.Add(2 * time.Second)
		assert.True(t, b.Allow())
		assert.True(t, b.RecordFailure(), "one failure while half-open reopens")
		assert.False(t, b.Allow(), "a failed trial restarts the cooldown")
	})

	t.Run("half-open admits a single trial call", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		b := NewBreaker(1, time.Second)
		b.now = func() time.Time { return now }
		require.True(t, b.RecordFailure())

		now = now.Add(2 * time.Second)
		admitted := 0
		for range 10 {
			if b.Allow() {
				admitted++
			}
		}
		assert.Equal(t, 1, admitted)
		assert.True(t, b.IsOpen())

		b.RecordSuccess()
		assert.False(t, b.IsOpen())
		assert.True(t, b.Allow())
		assert.True(t, b.Allow())
	})

	t.Run("defaults apply to non-positive arguments", func(t *testing.T) {
		b := NewBreaker(0, 0)
		assert.Equal(t, 5, b.threshold)
		assert.Equal(t, time.Minute, b.cooldown)
	})
}

func TestSinkPublish(t *testing.T) {
	ctx := context.Background()
	event := audit.Event{Action: "timeline_created", Kind: audit.KindTimeline, RecordID: 1}

	t.Run("forwards and counts deliveries", func(t *testing.T) {
		next := &stubSink{}
		m := NewMetrics(prometheus.NewRegistry())
		s := New(next, WithMetrics(m))

		require.NoError(t, s.Publish(ctx, event))
		assert.Equal(t, 1, next.calls)
		assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Delivered))
	})

	t.Run("drops events while open", func(t *testing.T) {
		next := &stubSink{err: errors.New("broker down")}
		m := NewMetrics(prometheus.NewRegistry())
		s := New(next, WithBreaker(NewBreaker(2, time.Minute)), WithMetrics(m))

		assert.Error(t, s.Publish(ctx, event))
		assert.Error(t, s.Publish(ctx, event))
		assert.ErrorIs(t, s.Publish(ctx, event), ErrOpen)

		assert.Equal(t, 2, next.calls)
		assert.Equal(t, 2.0, promtestutil.ToFloat64(m.Failures))
		assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Dropped))
		assert.Equal(t, 1.0, promtestutil.ToFloat64(m.BreakerState))
	})
}
