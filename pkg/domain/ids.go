package domain

import (
	"strconv"
	"strings"

	dErrors "chronoledger/pkg/domain-errors"
)

// Record identifiers are issued by a single allocator shared across record
// kinds, so a TimelineID and an AnomalyID never carry the same value within one
// ledger. The distinct types keep them from being passed interchangeably.
type (
	TimelineID   uint64
	AnomalyID    uint64
	ResolutionID uint64
)

func (id TimelineID) String() string   { return strconv.FormatUint(uint64(id), 10) }
func (id AnomalyID) String() string    { return strconv.FormatUint(uint64(id), 10) }
func (id ResolutionID) String() string { return strconv.FormatUint(uint64(id), 10) }

func (id TimelineID) IsNil() bool   { return id == 0 }
func (id AnomalyID) IsNil() bool    { return id == 0 }
func (id ResolutionID) IsNil() bool { return id == 0 }

// Principal is an opaque caller identity. It is compared by exact match and
// never normalized.
type Principal string

func (p Principal) String() string { return string(p) }

// IsNil returns true if no principal was supplied.
func (p Principal) IsNil() bool { return p == "" }

// ParseTimelineID parses a decimal record id at a trust boundary.
func ParseTimelineID(s string) (TimelineID, error) {
	v, err := parseRecordID(s, "timeline")
	return TimelineID(v), err
}

// ParseAnomalyID parses a decimal record id at a trust boundary.
func ParseAnomalyID(s string) (AnomalyID, error) {
	v, err := parseRecordID(s, "anomaly")
	return AnomalyID(v), err
}

// ParseResolutionID parses a decimal record id at a trust boundary.
func ParseResolutionID(s string) (ResolutionID, error) {
	v, err := parseRecordID(s, "resolution")
	return ResolutionID(v), err
}

// maxIDLength bounds input before handing it to strconv.
const maxIDLength = 20

func parseRecordID(s, kind string) (uint64, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	if len(s) > maxIDLength || strings.TrimSpace(s) != s {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if v == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" id must be positive")
	}
	return v, nil
}
