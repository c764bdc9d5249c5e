// Package policy provides authorization decisions for ledger actions.
package policy

import (
	id "chronoledger/pkg/domain"
)

// Action identifies a gated ledger operation.
type Action int

const (
	// ActionUpdateState replaces a timeline's state. Only the timeline creator may.
	ActionUpdateState Action = iota + 1
	// ActionEvaluateConsistency sets a timeline's consistency score.
	ActionEvaluateConsistency
	// ActionResolveTimeline marks a timeline resolved.
	ActionResolveTimeline
	// ActionImplementResolution implements a resolution and resolves its anomaly.
	ActionImplementResolution
	// ActionVote casts a vote on a proposed resolution.
	ActionVote
	// ActionReadAudit lists the audit trail.
	ActionReadAudit
)

func (a Action) String() string {
	switch a {
	case ActionUpdateState:
		return "update_state"
	case ActionEvaluateConsistency:
		return "evaluate_consistency"
	case ActionResolveTimeline:
		return "resolve_timeline"
	case ActionImplementResolution:
		return "implement_resolution"
	case ActionVote:
		return "vote"
	case ActionReadAudit:
		return "read_audit"
	default:
		return "unknown"
	}
}

// Resource describes the record an action targets. Owner is the record's
// creator where the record has one.
type Resource struct {
	Owner id.Principal
}

// Policy decides whether a principal may perform an action on a resource.
// Implementations must be pure: no I/O, no mutation.
type Policy interface {
	Can(principal id.Principal, action Action, resource Resource) bool
}

// OwnerPolicy grants privileged actions to a fixed set of owner principals,
// compared by exact match, and creator-only actions to the resource owner.
//
// v0 policy: owners evaluate, resolve, implement and read the audit trail;
// only a timeline's creator updates its state; anyone may vote.
type OwnerPolicy struct {
	owners map[id.Principal]struct{}
}

// NewOwnerPolicy builds a policy for the given owners. Empty principals are ignored.
func NewOwnerPolicy(owners ...id.Principal) *OwnerPolicy {
	set := make(map[id.Principal]struct{}, len(owners))
	for _, o := range owners {
		if o.IsNil() {
			continue
		}
		set[o] = struct{}{}
	}
	return &OwnerPolicy{owners: set}
}

// IsOwner reports whether p is a configured owner principal.
func (p *OwnerPolicy) IsOwner(principal id.Principal) bool {
	if principal.IsNil() {
		return false
	}
	_, ok := p.owners[principal]
	return ok
}

func (p *OwnerPolicy) Can(principal id.Principal, action Action, resource Resource) bool {
	switch action {
	case ActionUpdateState:
		// Exact match, so a timeline created anonymously stays updatable
		// anonymously.
		return principal == resource.Owner
	case ActionEvaluateConsistency, ActionResolveTimeline, ActionImplementResolution, ActionReadAudit:
		return p.IsOwner(principal)
	case ActionVote:
		return true
	default:
		return false
	}
}
