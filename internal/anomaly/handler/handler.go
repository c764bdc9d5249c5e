package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chronoledger/internal/anomaly/models"
	id "chronoledger/pkg/domain"
	"chronoledger/pkg/platform/httputil"
	"chronoledger/pkg/requestcontext"
)

// Service defines the anomaly and resolution operations exposed over HTTP.
type Service interface {
	ReportAnomaly(ctx context.Context, description string, severity int64, reporter id.Principal) (*models.Anomaly, error)
	GetAnomaly(ctx context.Context, anomalyID id.AnomalyID) (*models.Anomaly, error)
	ListAnomalies(ctx context.Context) ([]*models.Anomaly, error)
	ProposeResolution(ctx context.Context, anomalyID id.AnomalyID, description string, proposer id.Principal) (*models.Resolution, error)
	ListResolutions(ctx context.Context, anomalyID id.AnomalyID) ([]*models.Resolution, error)
	GetResolution(ctx context.Context, resolutionID id.ResolutionID) (*models.Resolution, error)
	Vote(ctx context.Context, resolutionID id.ResolutionID, voter id.Principal) (*models.Resolution, error)
	Implement(ctx context.Context, resolutionID id.ResolutionID, caller id.Principal) (*models.Resolution, error)
}

// Handler wires anomaly and resolution endpoints to the anomaly service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts anomaly and resolution endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/anomalies", func(r chi.Router) {
		r.Post("/", h.HandleReport)
		r.Get("/", h.HandleListAnomalies)
		r.Get("/{id}", h.HandleGetAnomaly)
		r.Post("/{id}/resolutions", h.HandlePropose)
		r.Get("/{id}/resolutions", h.HandleListResolutions)
	})
	r.Route("/resolutions", func(r chi.Router) {
		r.Get("/{id}", h.HandleGetResolution)
		r.Post("/{id}/votes", h.HandleVote)
		r.Post("/{id}/implement", h.HandleImplement)
	})
}

// HandleReport handles POST /anomalies. The caller becomes the reporter.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.Principal(ctx)

	req, ok := httputil.DecodeAndPrepare[ReportAnomalyRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	a, err := h.service.ReportAnomaly(ctx, req.Description, *req.Severity, caller)
	if err != nil {
		h.fail(ctx, w, "report anomaly", err, caller)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, a)
}

// HandleListAnomalies handles GET /anomalies.
func (h *Handler) HandleListAnomalies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all, err := h.service.ListAnomalies(ctx)
	if err != nil {
		h.fail(ctx, w, "list anomalies", err, requestcontext.Principal(ctx))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"anomalies": all})
}

// HandleGetAnomaly handles GET /anomalies/{id}.
func (h *Handler) HandleGetAnomaly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	anomalyID, ok := anomalyParam(w, r)
	if !ok {
		return
	}
	a, err := h.service.GetAnomaly(ctx, anomalyID)
	if err != nil {
		h.fail(ctx, w, "get anomaly", err, requestcontext.Principal(ctx))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

// HandlePropose handles POST /anomalies/{id}/resolutions.
func (h *Handler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.Principal(ctx)

	anomalyID, ok := anomalyParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProposeResolutionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.service.ProposeResolution(ctx, anomalyID, req.Description, caller)
	if err != nil {
		h.fail(ctx, w, "propose resolution", err, caller)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// HandleListResolutions handles GET /anomalies/{id}/resolutions.
func (h *Handler) HandleListResolutions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	anomalyID, ok := anomalyParam(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListResolutions(ctx, anomalyID)
	if err != nil {
		h.fail(ctx, w, "list resolutions", err, requestcontext.Principal(ctx))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"resolutions": list})
}

// HandleGetResolution handles GET /resolutions/{id}.
func (h *Handler) HandleGetResolution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resolutionID, ok := resolutionParam(w, r)
	if !ok {
		return
	}
	res, err := h.service.GetResolution(ctx, resolutionID)
	if err != nil {
		h.fail(ctx, w, "get resolution", err, requestcontext.Principal(ctx))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleVote handles POST /resolutions/{id}/votes. No body.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.Principal(ctx)

	resolutionID, ok := resolutionParam(w, r)
	if !ok {
		return
	}
	res, err := h.service.Vote(ctx, resolutionID, caller)
	if err != nil {
		h.fail(ctx, w, "vote", err, caller)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleImplement handles POST /resolutions/{id}/implement. Owner only.
func (h *Handler) HandleImplement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.Principal(ctx)

	resolutionID, ok := resolutionParam(w, r)
	if !ok {
		return
	}
	res, err := h.service.Implement(ctx, resolutionID, caller)
	if err != nil {
		h.fail(ctx, w, "implement resolution", err, caller)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func anomalyParam(w http.ResponseWriter, r *http.Request) (id.AnomalyID, bool) {
	anomalyID, err := id.ParseAnomalyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return anomalyID, true
}

func resolutionParam(w http.ResponseWriter, r *http.Request) (id.ResolutionID, bool) {
	resolutionID, err := id.ParseResolutionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return resolutionID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error, caller id.Principal) {
	h.logger.WarnContext(ctx, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"principal", caller,
		"error", err,
	)
	httputil.WriteCallerError(w, err, caller)
}
