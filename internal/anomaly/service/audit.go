package service

import (
	"context"
	"strconv"

	id "chronoledger/pkg/domain"
	"chronoledger/pkg/platform/audit"
	"chronoledger/pkg/requestcontext"
)

// logAudit records a successful mutation. Audit failures are logged and never
// fail the ledger operation, which has already been applied.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, kind audit.RecordKind, recordID uint64, principal id.Principal, detail string) {
	requestID := requestcontext.RequestID(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event),
			"kind", string(kind),
			"record_id", recordID,
			"principal", principal,
			"request_id", requestID,
			"log_type", "audit",
		)
	}
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    string(event),
		Kind:      kind,
		RecordID:  recordID,
		Principal: principal,
		RequestID: requestID,
		Detail:    detail,
	})
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"event", string(event),
			"record_id", recordID,
			"error", err,
		)
	}
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
