package models

import (
	"time"

	id "chronoledger/pkg/domain"
	dErrors "chronoledger/pkg/domain-errors"
)

// AnomalyStatus is the lifecycle state of an anomaly.
type AnomalyStatus string

const (
	AnomalyUnresolved AnomalyStatus = "unresolved"
	AnomalyResolved   AnomalyStatus = "resolved"
)

// Anomaly is a reported issue awaiting a resolution.
//
// Invariants:
//   - Status moves unresolved → resolved once, and only when a linked
//     resolution is implemented
//   - Reporter, Description and Severity never change after reporting
type Anomaly struct {
	ID          id.AnomalyID  `json:"id"`
	Reporter    id.Principal  `json:"reporter"`
	ReportedAt  time.Time     `json:"reported_at"`
	Description string        `json:"description"`
	Severity    int64         `json:"severity"`
	Status      AnomalyStatus `json:"status"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
}

// NewAnomaly builds an unresolved anomaly. Severity is not range checked.
func NewAnomaly(anomalyID id.AnomalyID, description string, severity int64, reporter id.Principal, now time.Time) (*Anomaly, error) {
	if anomalyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInternal, "anomaly id must be allocated")
	}
	return &Anomaly{
		ID:          anomalyID,
		Reporter:    reporter,
		ReportedAt:  now,
		Description: description,
		Severity:    severity,
		Status:      AnomalyUnresolved,
	}, nil
}

func (a *Anomaly) IsUnresolved() bool {
	return a.Status == AnomalyUnresolved
}

// CanAcceptProposal reports whether new resolutions may target the anomaly.
func (a *Anomaly) CanAcceptProposal() error {
	if !a.IsUnresolved() {
		return dErrors.New(dErrors.CodeInvalidAnomaly, "anomaly is already resolved")
	}
	return nil
}

// ApplyResolved marks the anomaly resolved. An anomaly that is already
// resolved keeps its original ResolvedAt.
func (a *Anomaly) ApplyResolved(now time.Time) {
	if a.Status == AnomalyResolved {
		return
	}
	a.Status = AnomalyResolved
	a.ResolvedAt = &now
}

func (a *Anomaly) Clone() *Anomaly {
	if a == nil {
		return nil
	}
	c := *a
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}
