package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"chronoledger/internal/anomaly/models"
	"chronoledger/internal/platform/metrics"
	"chronoledger/internal/policy"
	id "chronoledger/pkg/domain"
	dErrors "chronoledger/pkg/domain-errors"
	"chronoledger/pkg/platform/audit"
	"chronoledger/pkg/platform/sentinel"
	"chronoledger/pkg/requestcontext"
)

type Store interface {
	CreateAnomaly(ctx context.Context, anomaly *models.Anomaly) error
	FindAnomaly(ctx context.Context, anomalyID id.AnomalyID) (*models.Anomaly, error)
	ListAnomalies(ctx context.Context) ([]*models.Anomaly, error)
	CreateResolution(ctx context.Context, resolution *models.Resolution, check func(*models.Anomaly) error) error
	FindResolution(ctx context.Context, resolutionID id.ResolutionID) (*models.Resolution, error)
	ListResolutions(ctx context.Context, anomalyID id.AnomalyID) ([]*models.Resolution, error)
	ExecuteResolution(ctx context.Context, resolutionID id.ResolutionID, validate func(*models.Resolution) error, mutate func(*models.Resolution)) (*models.Resolution, error)
	ExecuteImplementation(ctx context.Context, resolutionID id.ResolutionID, validate func(*models.Resolution, *models.Anomaly) error, mutate func(*models.Resolution, *models.Anomaly)) (*models.Resolution, *models.Anomaly, error)
}

type IDAllocator interface {
	Next(ctx context.Context) (uint64, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the anomaly registry and the resolutions proposed
// against it: reporting, proposal, voting and owner-gated implementation.
type Service struct {
	store          Store
	ids            IDAllocator
	policy         policy.Policy
	attested       bool
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

// WithAttestedVoting requires a voter on every vote and counts each voter at
// most once per resolution. Without it votes are anonymous and unbounded.
func WithAttestedVoting() Option {
	return func(s *Service) {
		s.attested = true
	}
}

// New constructs a Service. ids should be the same allocator the timeline
// registry uses so identifiers stay unique across record kinds.
func New(store Store, ids IDAllocator, pol policy.Policy, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("anomaly store is required")
	}
	if ids == nil {
		return nil, errors.New("id allocator is required")
	}
	if pol == nil {
		return nil, errors.New("policy is required")
	}
	s := &Service{store: store, ids: ids, policy: pol}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ReportAnomaly allocates an id and stores an unresolved anomaly stamped with
// the request time. It has no failure mode beyond the allocator and store.
func (s *Service) ReportAnomaly(ctx context.Context, description string, severity int64, reporter id.Principal) (*models.Anomaly, error) {
	defer s.observe("report_anomaly", time.Now())

	next, err := s.ids.Next(ctx)
	if err != nil {
		return nil, allocationErr(err, "failed to allocate anomaly id")
	}
	a, err := models.NewAnomaly(id.AnomalyID(next), description, severity, reporter, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateAnomaly(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store anomaly")
	}

	s.logAudit(ctx, audit.EventAnomalyReported, audit.KindAnomaly, uint64(a.ID), reporter, "severity="+formatInt(severity))
	s.incrementCreated(audit.KindAnomaly)
	return a, nil
}

// GetAnomaly returns an anomaly by id.
func (s *Service) GetAnomaly(ctx context.Context, anomalyID id.AnomalyID) (*models.Anomaly, error) {
	a, err := s.store.FindAnomaly(ctx, anomalyID)
	if err != nil {
		return nil, wrapErr(err, dErrors.CodeNotFound, "anomaly not found")
	}
	return a, nil
}

// ListAnomalies returns every anomaly ordered by id.
func (s *Service) ListAnomalies(ctx context.Context) ([]*models.Anomaly, error) {
	all, err := s.store.ListAnomalies(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list anomalies")
	}
	return all, nil
}

// ProposeResolution records a proposed fix for an unresolved anomaly. An
// unknown or already resolved anomaly fails with InvalidAnomaly before an id
// is drawn.
func (s *Service) ProposeResolution(ctx context.Context, anomalyID id.AnomalyID, description string, proposer id.Principal) (*models.Resolution, error) {
	defer s.observe("propose_resolution", time.Now())

	a, err := s.store.FindAnomaly(ctx, anomalyID)
	if err != nil {
		return nil, wrapErr(err, dErrors.CodeInvalidAnomaly, "anomaly not found")
	}
	if err := a.CanAcceptProposal(); err != nil {
		return nil, err
	}

	next, err := s.ids.Next(ctx)
	if err != nil {
		return nil, allocationErr(err, "failed to allocate resolution id")
	}
	r, err := models.NewResolution(id.ResolutionID(next), anomalyID, description, proposer, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	// Re-checked under the store lock: the anomaly may have been resolved
	// since the read above.
	if err := s.store.CreateResolution(ctx, r, func(a *models.Anomaly) error {
		return a.CanAcceptProposal()
	}); err != nil {
		return nil, wrapErr(err, dErrors.CodeInvalidAnomaly, "anomaly not found")
	}

	s.logAudit(ctx, audit.EventResolutionProposed, audit.KindResolution, uint64(r.ID), proposer, "anomaly="+anomalyID.String())
	s.incrementCreated(audit.KindResolution)
	return r, nil
}

// Vote counts one vote for a proposed resolution. In open mode the voter is
// ignored and repeat votes all count. In attested mode an empty voter is
// unauthorized and a repeat vote is a conflict.
func (s *Service) Vote(ctx context.Context, resolutionID id.ResolutionID, voter id.Principal) (*models.Resolution, error) {
	defer s.observe("vote", time.Now())

	if !s.policy.Can(voter, policy.ActionVote, policy.Resource{}) || (s.attested && voter.IsNil()) {
		return nil, s.deny(ctx, policy.ActionVote, voter, "voter identity required")
	}

	r, err := s.store.ExecuteResolution(ctx, resolutionID,
		func(r *models.Resolution) error {
			if err := r.CanVote(); err != nil {
				return err
			}
			if s.attested && r.HasVoted(voter) {
				return dErrors.New(dErrors.CodeConflict, "voter has already voted on this resolution")
			}
			return nil
		},
		func(r *models.Resolution) {
			r.ApplyVote(voter, s.attested)
		},
	)
	if err != nil {
		return nil, wrapErr(err, dErrors.CodeInvalidResolution, "resolution not found")
	}

	s.logAudit(ctx, audit.EventResolutionVoted, audit.KindResolution, uint64(r.ID), voter, "votes="+formatUint(r.Votes))
	if s.metrics != nil {
		s.metrics.IncrementVotes()
	}
	return r, nil
}

// Implement marks a proposed resolution implemented and its anomaly resolved
// in one store critical section. Owner only, checked before existence.
func (s *Service) Implement(ctx context.Context, resolutionID id.ResolutionID, caller id.Principal) (*models.Resolution, error) {
	defer s.observe("implement_resolution", time.Now())

	if !s.policy.Can(caller, policy.ActionImplementResolution, policy.Resource{}) {
		return nil, s.deny(ctx, policy.ActionImplementResolution, caller, "only the owner may implement a resolution")
	}

	now := requestcontext.Now(ctx)
	r, a, err := s.store.ExecuteImplementation(ctx, resolutionID,
		func(r *models.Resolution, a *models.Anomaly) error {
			if err := r.CanImplement(); err != nil {
				return err
			}
			if a == nil {
				return dErrors.New(dErrors.CodeInvalidAnomaly, "linked anomaly no longer exists")
			}
			return nil
		},
		func(r *models.Resolution, a *models.Anomaly) {
			r.ApplyImplemented(now)
			a.ApplyResolved(now)
		},
	)
	if err != nil {
		return nil, wrapErr(err, dErrors.CodeInvalidResolution, "resolution not found")
	}

	s.logAudit(ctx, audit.EventResolutionImplemented, audit.KindResolution, uint64(r.ID), caller, "")
	s.logAudit(ctx, audit.EventAnomalyResolved, audit.KindAnomaly, uint64(a.ID), caller, "resolution="+r.ID.String())
	if s.metrics != nil {
		s.metrics.IncrementTransition(policy.ActionImplementResolution.String())
	}
	return r, nil
}

// GetResolution returns a resolution by id.
func (s *Service) GetResolution(ctx context.Context, resolutionID id.ResolutionID) (*models.Resolution, error) {
	r, err := s.store.FindResolution(ctx, resolutionID)
	if err != nil {
		return nil, wrapErr(err, dErrors.CodeNotFound, "resolution not found")
	}
	return r, nil
}

// ListResolutions returns the resolutions proposed for an anomaly.
func (s *Service) ListResolutions(ctx context.Context, anomalyID id.AnomalyID) ([]*models.Resolution, error) {
	list, err := s.store.ListResolutions(ctx, anomalyID)
	if err != nil {
		return nil, wrapErr(err, dErrors.CodeNotFound, "anomaly not found")
	}
	return list, nil
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

// wrapErr translates store errors. A missing record becomes missingCode, so
// the same sentinel can surface as NotFound on reads and as InvalidAnomaly or
// InvalidResolution on lifecycle operations.
func wrapErr(err error, missingCode dErrors.Code, missingMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(missingCode, missingMsg)
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidAnomaly, "linked anomaly no longer exists")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "anomaly operation aborted")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "anomaly operation failed")
}

func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, start)
	}
}

func (s *Service) incrementCreated(kind audit.RecordKind) {
	if s.metrics != nil {
		s.metrics.IncrementCreated(string(kind))
	}
}

func allocationErr(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
