package audit

import (
	"context"
	"time"

	id "chronoledger/pkg/domain"
)

// RecordKind names the ledger record an event concerns.
type RecordKind string

const (
	KindTimeline   RecordKind = "timeline"
	KindAnomaly    RecordKind = "anomaly"
	KindResolution RecordKind = "resolution"
)

// Event is emitted by the ledger services after a successful mutation. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time    `json:"timestamp"`
	Action    string       `json:"action"`
	Kind      RecordKind   `json:"kind"`
	RecordID  uint64       `json:"record_id"`
	Principal id.Principal `json:"principal,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	// Detail carries a short, non-sensitive summary (e.g. the new score).
	Detail string `json:"detail,omitempty"`
}

type AuditEvent string

const (
	// Timeline events
	EventTimelineCreated      AuditEvent = "timeline_created"
	EventTimelineStateUpdated AuditEvent = "timeline_state_updated"
	EventTimelineEvaluated    AuditEvent = "timeline_evaluated"
	EventTimelineResolved     AuditEvent = "timeline_resolved"

	// Anomaly events
	EventAnomalyReported AuditEvent = "anomaly_reported"
	EventAnomalyResolved AuditEvent = "anomaly_resolved"

	// Resolution events
	EventResolutionProposed    AuditEvent = "resolution_proposed"
	EventResolutionVoted       AuditEvent = "resolution_voted"
	EventResolutionImplemented AuditEvent = "resolution_implemented"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListAll(ctx context.Context) ([]Event, error)
}

// Sink receives events after they are stored, e.g. a message broker.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
