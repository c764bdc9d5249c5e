package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"chronoledger/internal/anomaly/models"
	id "chronoledger/pkg/domain"
	"chronoledger/pkg/platform/sentinel"
)

// ErrNotFound is returned when an anomaly or resolution does not exist.
var ErrNotFound = sentinel.ErrNotFound

// InMemory holds anomalies and their resolutions behind one RWMutex, so an
// implementation can update a resolution and its anomaly in a single critical
// section.
type InMemory struct {
	mu          sync.RWMutex
	anomalies   map[id.AnomalyID]*models.Anomaly
	resolutions map[id.ResolutionID]*models.Resolution
}

func NewInMemory() *InMemory {
	return &InMemory{
		anomalies:   make(map[id.AnomalyID]*models.Anomaly),
		resolutions: make(map[id.ResolutionID]*models.Resolution),
	}
}

// CreateAnomaly stores a new anomaly. Records are never overwritten or deleted.
func (s *InMemory) CreateAnomaly(ctx context.Context, anomaly *models.Anomaly) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.anomalies[anomaly.ID]; exists {
		return fmt.Errorf("anomaly %s: %w", anomaly.ID, sentinel.ErrConflict)
	}
	s.anomalies[anomaly.ID] = anomaly.Clone()
	return nil
}

func (s *InMemory) FindAnomaly(_ context.Context, anomalyID id.AnomalyID) (*models.Anomaly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.anomalies[anomalyID]; ok {
		return a.Clone(), nil
	}
	return nil, ErrNotFound
}

// ListAnomalies returns every anomaly ordered by id.
func (s *InMemory) ListAnomalies(_ context.Context) ([]*models.Anomaly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Anomaly, 0, len(s.anomalies))
	for _, a := range s.anomalies {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateResolution stores a new resolution after running check against the
// anomaly it targets, under the same lock. A missing anomaly yields
// ErrNotFound and a failing check is returned as is; neither stores anything.
func (s *InMemory) CreateResolution(ctx context.Context, resolution *models.Resolution, check func(*models.Anomaly) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	anomaly, ok := s.anomalies[resolution.AnomalyID]
	if !ok {
		return ErrNotFound
	}
	if err := check(anomaly.Clone()); err != nil {
		return err
	}
	if _, exists := s.resolutions[resolution.ID]; exists {
		return fmt.Errorf("resolution %s: %w", resolution.ID, sentinel.ErrConflict)
	}
	s.resolutions[resolution.ID] = resolution.Clone()
	return nil
}

func (s *InMemory) FindResolution(_ context.Context, resolutionID id.ResolutionID) (*models.Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.resolutions[resolutionID]; ok {
		return r.Clone(), nil
	}
	return nil, ErrNotFound
}

// ListResolutions returns the resolutions proposed for an anomaly, ordered by
// id. An unknown anomaly yields ErrNotFound.
func (s *InMemory) ListResolutions(_ context.Context, anomalyID id.AnomalyID) ([]*models.Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.anomalies[anomalyID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]*models.Resolution, 0)
	for _, r := range s.resolutions {
		if r.AnomalyID == anomalyID {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ExecuteResolution runs validate and mutate against a working copy of the
// resolution while holding the write lock. The stored record is replaced only
// if validate returns nil.
func (s *InMemory) ExecuteResolution(ctx context.Context, resolutionID id.ResolutionID, validate func(*models.Resolution) error, mutate func(*models.Resolution)) (*models.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.resolutions[resolutionID]
	if !ok {
		return nil, ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.resolutions[resolutionID] = working
	return working.Clone(), nil
}

// ExecuteImplementation is ExecuteResolution over a resolution and its linked
// anomaly together: both working copies are validated, mutated and stored
// under one lock, so readers see either neither write or both. validate
// receives a nil anomaly when the link is dangling.
func (s *InMemory) ExecuteImplementation(
	ctx context.Context,
	resolutionID id.ResolutionID,
	validate func(*models.Resolution, *models.Anomaly) error,
	mutate func(*models.Resolution, *models.Anomaly),
) (*models.Resolution, *models.Anomaly, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.resolutions[resolutionID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	resolution := current.Clone()
	anomaly := s.anomalies[resolution.AnomalyID].Clone()
	if err := validate(resolution, anomaly); err != nil {
		return nil, nil, err
	}
	if anomaly == nil {
		return nil, nil, fmt.Errorf("anomaly %s: %w", resolution.AnomalyID, sentinel.ErrInvalidState)
	}
	mutate(resolution, anomaly)
	s.resolutions[resolutionID] = resolution
	s.anomalies[anomaly.ID] = anomaly
	return resolution.Clone(), anomaly.Clone(), nil
}
