package bucket

import (
	"context"
	"sort"
	"sync"
	"time"

	"chronoledger/internal/ratelimit/models"
)

// sweepEvery bounds how often Allow scans every key for expired windows.
const sweepEvery = time.Minute

// hits holds the admitted request times of one key, oldest first.
type hits []time.Time

// since drops every hit at or before cutoff.
func (h hits) since(cutoff time.Time) hits {
	i := sort.Search(len(h), func(i int) bool { return h[i].After(cutoff) })
	return h[i:]
}

type bucket struct {
	hits   hits
	window time.Duration
}

// InMemoryBucketStore is a sliding-window limiter local to one process. Each
// key keeps at most limit timestamps and is dropped once its window has
// passed, either on its own next check or by the periodic sweep.
type InMemoryBucketStore struct {
	mu        sync.Mutex
	keys      map[string]*bucket
	now       func() time.Time
	lastSweep time.Time
}

func NewInMemoryBucketStore() *InMemoryBucketStore {
	return &InMemoryBucketStore{keys: make(map[string]*bucket), now: time.Now}
}

// Allow admits one request for key when fewer than limit requests fell
// inside the trailing window.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepEvery {
		s.sweep(now)
	}

	var live hits
	if b := s.keys[key]; b != nil {
		live = b.hits.since(now.Add(-window))
	}

	if len(live) >= limit {
		resetAt := now.Add(window)
		if len(live) > 0 {
			resetAt = live[0].Add(window)
			s.keys[key] = &bucket{hits: live, window: window}
		} else {
			delete(s.keys, key)
		}
		return &models.Result{
			Limit:      limit,
			ResetAt:    resetAt,
			RetryAfter: models.RetryAfterSeconds(now, resetAt),
		}, nil
	}

	live = append(live, now)
	s.keys[key] = &bucket{hits: live, window: window}
	return &models.Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(live),
		ResetAt:   live[0].Add(window),
	}, nil
}

// sweep drops every key whose newest hit has left its window. Must be called
// while holding s.mu.
func (s *InMemoryBucketStore) sweep(now time.Time) {
	for key, b := range s.keys {
		if len(b.hits) == 0 || !b.hits[len(b.hits)-1].After(now.Add(-b.window)) {
			delete(s.keys, key)
		}
	}
	s.lastSweep = now
}
