package models

import (
	"slices"
	"time"

	id "chronoledger/pkg/domain"
	dErrors "chronoledger/pkg/domain-errors"
)

// ResolutionStatus is the lifecycle state of a resolution.
type ResolutionStatus string

const (
	ResolutionProposed    ResolutionStatus = "proposed"
	ResolutionImplemented ResolutionStatus = "implemented"
)

// Resolution is a proposed fix for an anomaly. AnomalyID is a reference, not
// ownership: the anomaly belongs to the anomaly side of the store.
//
// Invariants:
//   - Votes only increases
//   - Status moves proposed → implemented once; implemented is terminal
//   - Voters is only populated under attested voting and then has one entry
//     per counted vote
type Resolution struct {
	ID            id.ResolutionID  `json:"id"`
	ProposerID    id.Principal     `json:"proposer_id"`
	AnomalyID     id.AnomalyID     `json:"anomaly_id"`
	Description   string           `json:"description"`
	Votes         uint64           `json:"votes"`
	Status        ResolutionStatus `json:"status"`
	ProposedAt    time.Time        `json:"proposed_at"`
	ImplementedAt *time.Time       `json:"implemented_at,omitempty"`
	Voters        []id.Principal   `json:"voters,omitempty"`
}

func NewResolution(resolutionID id.ResolutionID, anomalyID id.AnomalyID, description string, proposer id.Principal, now time.Time) (*Resolution, error) {
	if resolutionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInternal, "resolution id must be allocated")
	}
	return &Resolution{
		ID:          resolutionID,
		ProposerID:  proposer,
		AnomalyID:   anomalyID,
		Description: description,
		Status:      ResolutionProposed,
		ProposedAt:  now,
	}, nil
}

func (r *Resolution) IsProposed() bool {
	return r.Status == ResolutionProposed
}

// CanVote rejects votes once the resolution has left the proposed state.
func (r *Resolution) CanVote() error {
	if !r.IsProposed() {
		return dErrors.New(dErrors.CodeInvalidResolution, "resolution is not open for voting")
	}
	return nil
}

// HasVoted reports whether voter is among the recorded voters.
func (r *Resolution) HasVoted(voter id.Principal) bool {
	return slices.Contains(r.Voters, voter)
}

// ApplyVote counts one vote. When record is true the voter is remembered.
func (r *Resolution) ApplyVote(voter id.Principal, record bool) {
	r.Votes++
	if record {
		r.Voters = append(r.Voters, voter)
	}
}

// CanImplement rejects implementing anything but a proposed resolution, so a
// second implementation attempt fails.
func (r *Resolution) CanImplement() error {
	if !r.IsProposed() {
		return dErrors.New(dErrors.CodeInvalidResolution, "resolution is already implemented")
	}
	return nil
}

// ApplyImplemented marks the resolution implemented.
// Call CanImplement first to validate the transition.
func (r *Resolution) ApplyImplemented(now time.Time) {
	r.Status = ResolutionImplemented
	r.ImplementedAt = &now
}

func (r *Resolution) Clone() *Resolution {
	if r == nil {
		return nil
	}
	c := *r
	if r.ImplementedAt != nil {
		t := *r.ImplementedAt
		c.ImplementedAt = &t
	}
	c.Voters = slices.Clone(r.Voters)
	return &c
}
