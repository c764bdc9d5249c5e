package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"chronoledger/internal/platform/metrics"
	"chronoledger/internal/policy"
	"chronoledger/internal/timeline/models"
	id "chronoledger/pkg/domain"
	dErrors "chronoledger/pkg/domain-errors"
	"chronoledger/pkg/platform/audit"
	"chronoledger/pkg/platform/sentinel"
	"chronoledger/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, timeline *models.Timeline) error
	FindByID(ctx context.Context, timelineID id.TimelineID) (*models.Timeline, error)
	List(ctx context.Context) ([]*models.Timeline, error)
	Execute(ctx context.Context, timelineID id.TimelineID, validate func(*models.Timeline) error, mutate func(*models.Timeline)) (*models.Timeline, error)
}

type IDAllocator interface {
	Next(ctx context.Context) (uint64, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the timeline registry: creation, creator-gated state
// updates and owner-gated evaluation and resolution.
type Service struct {
	timelines      Store
	ids            IDAllocator
	policy         policy.Policy
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(timelines Store, ids IDAllocator, pol policy.Policy, opts ...Option) (*Service, error) {
	if timelines == nil {
		return nil, errors.New("timeline store is required")
	}
	if ids == nil {
		return nil, errors.New("id allocator is required")
	}
	if pol == nil {
		return nil, errors.New("policy is required")
	}
	s := &Service{timelines: timelines, ids: ids, policy: pol}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateTimeline allocates an id and stores an active timeline with a zero
// consistency score. Inputs are stored as given.
func (s *Service) CreateTimeline(ctx context.Context, description, initialState string, creator id.Principal) (*models.Timeline, error) {
	defer s.observe("create_timeline", time.Now())

	next, err := s.ids.Next(ctx)
	if err != nil {
		return nil, allocationErr(err, "failed to allocate timeline id")
	}
	t, err := models.NewTimeline(id.TimelineID(next), description, initialState, creator, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.timelines.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create timeline")
	}

	s.logAudit(ctx, audit.EventTimelineCreated, t.ID, creator, "")
	if s.metrics != nil {
		s.metrics.IncrementCreated(string(audit.KindTimeline))
	}
	return t, nil
}

// UpdateState replaces the timeline's state. Only the creator may update it.
// Existence is checked before authorization.
func (s *Service) UpdateState(ctx context.Context, timelineID id.TimelineID, newState string, caller id.Principal) (*models.Timeline, error) {
	defer s.observe("update_state", time.Now())

	now := requestcontext.Now(ctx)
	t, err := s.timelines.Execute(ctx, timelineID,
		func(t *models.Timeline) error {
			if !s.policy.Can(caller, policy.ActionUpdateState, policy.Resource{Owner: t.Creator}) {
				return s.deny(ctx, policy.ActionUpdateState, caller, "only the timeline creator may update its state")
			}
			return nil
		},
		func(t *models.Timeline) {
			t.ApplyState(newState, now)
		},
	)
	if err != nil {
		return nil, wrapTimelineErr(err)
	}

	s.logAudit(ctx, audit.EventTimelineStateUpdated, t.ID, caller, "")
	s.incrementTransition(policy.ActionUpdateState)
	return t, nil
}

// EvaluateConsistency overwrites the consistency score. Owner only; the score
// is not range-checked. Authorization is checked before existence.
func (s *Service) EvaluateConsistency(ctx context.Context, timelineID id.TimelineID, score int64, caller id.Principal) (*models.Timeline, error) {
	defer s.observe("evaluate_consistency", time.Now())

	if !s.policy.Can(caller, policy.ActionEvaluateConsistency, policy.Resource{}) {
		return nil, s.deny(ctx, policy.ActionEvaluateConsistency, caller, "only the owner may evaluate consistency")
	}

	now := requestcontext.Now(ctx)
	t, err := s.timelines.Execute(ctx, timelineID,
		func(*models.Timeline) error { return nil },
		func(t *models.Timeline) {
			t.ApplyConsistencyScore(score, now)
		},
	)
	if err != nil {
		return nil, wrapTimelineErr(err)
	}

	s.logAudit(ctx, audit.EventTimelineEvaluated, t.ID, caller, "score="+formatScore(score))
	s.incrementTransition(policy.ActionEvaluateConsistency)
	return t, nil
}

// ResolveTimeline marks the timeline resolved. Owner only; resolving an
// already resolved timeline succeeds. Authorization is checked before existence.
func (s *Service) ResolveTimeline(ctx context.Context, timelineID id.TimelineID, caller id.Principal) (*models.Timeline, error) {
	defer s.observe("resolve_timeline", time.Now())

	if !s.policy.Can(caller, policy.ActionResolveTimeline, policy.Resource{}) {
		return nil, s.deny(ctx, policy.ActionResolveTimeline, caller, "only the owner may resolve a timeline")
	}

	now := requestcontext.Now(ctx)
	t, err := s.timelines.Execute(ctx, timelineID,
		func(t *models.Timeline) error {
			return t.CanResolve()
		},
		func(t *models.Timeline) {
			t.ApplyResolution(now)
		},
	)
	if err != nil {
		return nil, wrapTimelineErr(err)
	}

	s.logAudit(ctx, audit.EventTimelineResolved, t.ID, caller, "")
	s.incrementTransition(policy.ActionResolveTimeline)
	return t, nil
}

// GetTimeline returns a timeline by id.
func (s *Service) GetTimeline(ctx context.Context, timelineID id.TimelineID) (*models.Timeline, error) {
	t, err := s.timelines.FindByID(ctx, timelineID)
	if err != nil {
		return nil, wrapTimelineErr(err)
	}
	return t, nil
}

// ListTimelines returns every timeline ordered by id.
func (s *Service) ListTimelines(ctx context.Context) ([]*models.Timeline, error) {
	all, err := s.timelines.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list timelines")
	}
	return all, nil
}

func (s *Service) deny(ctx context.Context, action policy.Action, caller id.Principal, msg string) error {
	if s.logger != nil {
		s.logger.WarnContext(ctx, "authorization denied",
			"action", action.String(),
			"principal", caller,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.metrics != nil {
		s.metrics.IncrementDenied(action.String())
	}
	return dErrors.New(dErrors.CodeUnauthorized, msg)
}

func wrapTimelineErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "timeline not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "timeline operation aborted")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "timeline operation failed")
}

func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, start)
	}
}

func (s *Service) incrementTransition(action policy.Action) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(action.String())
	}
}

func allocationErr(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
