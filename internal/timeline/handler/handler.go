package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chronoledger/internal/timeline/models"
	id "chronoledger/pkg/domain"
	"chronoledger/pkg/platform/httputil"
	"chronoledger/pkg/requestcontext"
)

// Service defines the timeline operations exposed over HTTP.
type Service interface {
	CreateTimeline(ctx context.Context, description, initialState string, creator id.Principal) (*models.Timeline, error)
	UpdateState(ctx context.Context, timelineID id.TimelineID, newState string, caller id.Principal) (*models.Timeline, error)
	EvaluateConsistency(ctx context.Context, timelineID id.TimelineID, score int64, caller id.Principal) (*models.Timeline, error)
	ResolveTimeline(ctx context.Context, timelineID id.TimelineID, caller id.Principal) (*models.Timeline, error)
	GetTimeline(ctx context.Context, timelineID id.TimelineID) (*models.Timeline, error)
	ListTimelines(ctx context.Context) ([]*models.Timeline, error)
}

// Handler wires timeline endpoints to the timeline service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts timeline endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/timelines", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}/state", h.HandleUpdateState)
		r.Post("/{id}/consistency", h.HandleEvaluateConsistency)
		r.Post("/{id}/resolve", h.HandleResolve)
	})
}

// HandleCreate handles POST /timelines. The caller becomes the creator.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := requestcontext.Principal(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateTimelineRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	t, err := h.service.CreateTimeline(ctx, req.Description, req.InitialState, caller)
	if err != nil {
		h.fail(ctx, w, "create timeline", err, caller)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, t)
}

// HandleList handles GET /timelines.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all, err := h.service.ListTimelines(ctx)
	if err != nil {
		h.fail(ctx, w, "list timelines", err, requestcontext.Principal(ctx))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"timelines": all})
}

// HandleGet handles GET /timelines/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	timelineID, ok := h.timelineID(w, r)
	if !ok {
		return
	}
	t, err := h.service.GetTimeline(ctx, timelineID)
	if err != nil {
		h.fail(ctx, w, "get timeline", err, requestcontext.Principal(ctx))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleUpdateState handles PUT /timelines/{id}/state. Creator only.
func (h *Handler) HandleUpdateState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := requestcontext.Principal(ctx)

	timelineID, ok := h.timelineID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateStateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	t, err := h.service.UpdateState(ctx, timelineID, req.State, caller)
	if err != nil {
		h.fail(ctx, w, "update timeline state", err, caller)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleEvaluateConsistency handles POST /timelines/{id}/consistency. Owner only.
func (h *Handler) HandleEvaluateConsistency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := requestcontext.Principal(ctx)

	timelineID, ok := h.timelineID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[EvaluateConsistencyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	t, err := h.service.EvaluateConsistency(ctx, timelineID, *req.Score, caller)
	if err != nil {
		h.fail(ctx, w, "evaluate consistency", err, caller)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleResolve handles POST /timelines/{id}/resolve. Owner only.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.Principal(ctx)

	timelineID, ok := h.timelineID(w, r)
	if !ok {
		return
	}

	t, err := h.service.ResolveTimeline(ctx, timelineID, caller)
	if err != nil {
		h.fail(ctx, w, "resolve timeline", err, caller)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) timelineID(w http.ResponseWriter, r *http.Request) (id.TimelineID, bool) {
	timelineID, err := id.ParseTimelineID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return timelineID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error, caller id.Principal) {
	h.logger.WarnContext(ctx, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"principal", caller,
		"error", err,
	)
	httputil.WriteCallerError(w, err, caller)
}
