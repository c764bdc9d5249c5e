package models

import (
	"time"

	id "chronoledger/pkg/domain"
	dErrors "chronoledger/pkg/domain-errors"
)

// Status is the lifecycle state of a timeline.
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// CanTransitionTo reports whether a timeline in s may move to next.
// Resolving an already resolved timeline is allowed and leaves it resolved.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusResolved
	case StatusResolved:
		return next == StatusResolved
	default:
		return false
	}
}

// Timeline is a record holding a mutable opaque state plus a consistency score.
//
// Invariants:
//   - Creator is immutable after construction
//   - Status transitions: active → resolved only; never back to active
//   - State is replaced wholesale on update; no history is kept
//   - ConsistencyScore is unbounded and defaults to 0
type Timeline struct {
	ID               id.TimelineID `json:"id"`
	Creator          id.Principal  `json:"creator"`
	Description      string        `json:"description"`
	State            string        `json:"state"`
	ConsistencyScore int64         `json:"consistency_score"`
	Status           Status        `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewTimeline builds an active timeline. Description and state are stored as
// given, including empty or whitespace-only values.
func NewTimeline(timelineID id.TimelineID, description, state string, creator id.Principal, now time.Time) (*Timeline, error) {
	if timelineID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInternal, "timeline id must be allocated")
	}
	return &Timeline{
		ID:          timelineID,
		Creator:     creator,
		Description: description,
		State:       state,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ApplyState replaces the state value.
func (t *Timeline) ApplyState(state string, now time.Time) {
	t.State = state
	t.UpdatedAt = now
}

// ApplyConsistencyScore overwrites the consistency score.
func (t *Timeline) ApplyConsistencyScore(score int64, now time.Time) {
	t.ConsistencyScore = score
	t.UpdatedAt = now
}

// CanResolve checks the resolved transition. It only fails for a status
// outside the known set.
func (t *Timeline) CanResolve() error {
	if !t.Status.CanTransitionTo(StatusResolved) {
		return dErrors.New(dErrors.CodeConflict, "timeline cannot be resolved from status "+string(t.Status))
	}
	return nil
}

// ApplyResolution marks the timeline resolved.
// Call CanResolve first to validate the transition.
func (t *Timeline) ApplyResolution(now time.Time) {
	t.Status = StatusResolved
	t.UpdatedAt = now
}

// Clone returns a copy that shares no mutable state with t.
func (t *Timeline) Clone() *Timeline {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
