package guarded

import (
	"sync"
	"time"
)

// Breaker stops calls to a failing sink for a cooldown period once
// threshold consecutive failures have been recorded.
type Breaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration
	now       func() time.Time

	failures  int
	openUntil time.Time
	open      bool
	// trial is set while the single half-open call is in flight.
	trial bool
}

// NewBreaker creates a closed breaker. Non-positive arguments fall back to
// five failures and one minute.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may go through. After the cooldown the
// breaker half-opens and admits exactly one trial call; everything else is
// rejected until that call is recorded. A failed trial restarts the cooldown.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	if b.trial || !b.now().After(b.openUntil) {
		return false
	}
	b.trial = true
	return true
}

// RecordSuccess closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
	b.trial = false
}

// RecordFailure counts a failure and reports whether the breaker is now open.
func (b *Breaker) RecordFailure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.trial {
		b.trial = false
		b.openUntil = b.now().Add(b.cooldown)
		return true
	}
	b.failures++
	if b.failures >= b.threshold {
		b.open = true
		b.openUntil = b.now().Add(b.cooldown)
	}
	return b.open
}

// IsOpen reports whether calls are currently being rejected.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}
