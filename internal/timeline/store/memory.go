package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"chronoledger/internal/timeline/models"
	id "chronoledger/pkg/domain"
	"chronoledger/pkg/platform/sentinel"
)

// ErrNotFound is returned when a timeline does not exist.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores timelines in a map guarded by a RWMutex. It hands out copies
// so callers never alias stored records.
type InMemory struct {
	mu        sync.RWMutex
	timelines map[id.TimelineID]*models.Timeline
}

func NewInMemory() *InMemory {
	return &InMemory{timelines: make(map[id.TimelineID]*models.Timeline)}
}

// Create stores a new timeline. Records are never overwritten or deleted.
func (s *InMemory) Create(ctx context.Context, timeline *models.Timeline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.timelines[timeline.ID]; exists {
		return fmt.Errorf("timeline %s: %w", timeline.ID, sentinel.ErrConflict)
	}
	s.timelines[timeline.ID] = timeline.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, timelineID id.TimelineID) (*models.Timeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.timelines[timelineID]; ok {
		return t.Clone(), nil
	}
	return nil, ErrNotFound
}

// List returns every timeline ordered by id.
func (s *InMemory) List(_ context.Context) ([]*models.Timeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Timeline, 0, len(s.timelines))
	for _, t := range s.timelines {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Execute runs validate and mutate against a working copy while holding the
// write lock. The copy replaces the stored record only if validate returns nil,
// so a rejected operation leaves the record untouched.
func (s *InMemory) Execute(ctx context.Context, timelineID id.TimelineID, validate func(*models.Timeline) error, mutate func(*models.Timeline)) (*models.Timeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.timelines[timelineID]
	if !ok {
		return nil, ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.timelines[timelineID] = working
	return working.Clone(), nil
}
