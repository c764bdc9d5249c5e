// Package admin exposes owner-only operational endpoints.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"chronoledger/internal/platform/middleware"
	"chronoledger/internal/policy"
	dErrors "chronoledger/pkg/domain-errors"
	"chronoledger/pkg/platform/audit"
	"chronoledger/pkg/platform/httputil"
	"chronoledger/pkg/requestcontext"
)

const defaultAuditLimit = 100

// AuditReader is the query side of the audit store.
type AuditReader interface {
	ListByRecord(ctx context.Context, kind audit.RecordKind, recordID uint64) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

type Handler struct {
	audit  AuditReader
	policy policy.Policy
	logger *slog.Logger
}

func New(reader AuditReader, pol policy.Policy, logger *slog.Logger) *Handler {
	return &Handler{audit: reader, policy: pol, logger: logger}
}

// Register mounts /admin routes behind the ReadAudit policy check.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAction(h.policy, policy.ActionReadAudit, h.logger))
		r.Get("/audit", h.HandleListAudit)
	})
}

// HandleListAudit handles GET /admin/audit.
//
// With kind and record_id it returns that record's history; otherwise the
// newest events up to limit (default 100).
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		events []audit.Event
		err    error
	)
	if kind := q.Get("kind"); kind != "" {
		recordKind, ok := parseKind(kind)
		if !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "kind must be timeline, anomaly or resolution"))
			return
		}
		recordID, perr := strconv.ParseUint(q.Get("record_id"), 10, 64)
		if perr != nil || recordID == 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "record_id must be a positive integer"))
			return
		}
		events, err = h.audit.ListByRecord(ctx, recordKind, recordID)
	} else {
		limit := defaultAuditLimit
		if raw := q.Get("limit"); raw != "" {
			n, perr := strconv.Atoi(raw)
			if perr != nil || n <= 0 {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
				return
			}
			limit = n
		}
		events, err = h.audit.ListRecent(ctx, limit)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read audit trail",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newAuditListResponse(events))
}

func parseKind(s string) (audit.RecordKind, bool) {
	switch k := audit.RecordKind(s); k {
	case audit.KindTimeline, audit.KindAnomaly, audit.KindResolution:
		return k, true
	}
	return "", false
}
