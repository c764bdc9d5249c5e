package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"chronoledger/internal/allocator"
	"chronoledger/internal/allocator/mocks"
	"chronoledger/internal/platform/metrics"
	"chronoledger/internal/policy"
	"chronoledger/internal/timeline/models"
	"chronoledger/internal/timeline/store"
	id "chronoledger/pkg/domain"
	dErrors "chronoledger/pkg/domain-errors"
	"chronoledger/pkg/platform/audit"
	"chronoledger/pkg/platform/audit/publisher"
	auditmemory "chronoledger/pkg/platform/audit/store/memory"
	"chronoledger/pkg/requestcontext"
)

const owner id.Principal = "CONTRACT_OWNER"

// =============================================================================
// Timeline Service Test Suite
// =============================================================================
// The service owns the authorization ordering and the no-partial-write
// guarantee, so tests assert both the error code and the stored record after
// every rejected call.

type TimelineServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemory
	audit   *auditmemory.InMemoryStore
	metrics *metrics.Metrics
	service *Service
}

func TestTimelineServiceSuite(t *testing.T) {
	suite.Run(t, new(TimelineServiceSuite))
}

func (s *TimelineServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	s.store = store.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	svc, err := New(s.store, allocator.NewCounter(), policy.NewOwnerPolicy(owner),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *TimelineServiceSuite) create(description, state string, creator id.Principal) *models.Timeline {
	t, err := s.service.CreateTimeline(s.ctx, description, state, creator)
	s.Require().NoError(err)
	return t
}

func (s *TimelineServiceSuite) stored(timelineID id.TimelineID) *models.Timeline {
	t, err := s.store.FindByID(s.ctx, timelineID)
	s.Require().NoError(err)
	return t
}

func (s *TimelineServiceSuite) TestNew() {
	ids := allocator.NewCounter()
	pol := policy.NewOwnerPolicy(owner)

	_, err := New(nil, ids, pol)
	s.ErrorContains(err, "timeline store is required")
	_, err = New(s.store, nil, pol)
	s.ErrorContains(err, "id allocator is required")
	_, err = New(s.store, ids, nil)
	s.ErrorContains(err, "policy is required")
}

func (s *TimelineServiceSuite) TestCreateTimeline() {
	s.Run("first timeline gets id 1, active, zero score", func() {
		t := s.create("Alpha timeline", "|ψ⟩ = α|0⟩ + β|1⟩", "creator1")
		s.Equal(id.TimelineID(1), t.ID)
		s.Equal("Alpha timeline", t.Description)
		s.Equal("|ψ⟩ = α|0⟩ + β|1⟩", t.State)
		s.Equal(models.StatusActive, t.Status)
		s.Equal(int64(0), t.ConsistencyScore)
		s.Equal(requestcontext.Now(s.ctx), t.CreatedAt)
	})

	s.Run("ids are strictly increasing", func() {
		a := s.create("a", "s", "c")
		b := s.create("b", "s", "c")
		s.Greater(b.ID, a.ID)
	})

	s.Run("blank inputs are accepted as-is", func() {
		t := s.create("  ", "", "")
		s.Equal("  ", t.Description)
		s.Empty(t.State)
	})

	s.Equal(4.0, promtestutil.ToFloat64(s.metrics.RecordsCreated.WithLabelValues("timeline")))
}

func (s *TimelineServiceSuite) TestCreateTimelineAllocatorFailure() {
	ctrl := gomock.NewController(s.T())
	ids := mocks.NewMockAllocator(ctrl)
	ids.EXPECT().Next(gomock.Any()).Return(uint64(0), errors.New("redis down"))

	svc, err := New(s.store, ids, policy.NewOwnerPolicy(owner))
	s.Require().NoError(err)

	_, err = svc.CreateTimeline(s.ctx, "d", "s", "alice")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(all, "nothing is stored when allocation fails")
}

// TestUpdateState covers the creator-only scenario:
// create("T1","ψ0","alice") → 1; update by alice succeeds; update by bob is Unauthorized.
func (s *TimelineServiceSuite) TestUpdateState() {
	t := s.create("T1", "ψ0", "alice")
	s.Require().Equal(id.TimelineID(1), t.ID)

	s.Run("creator replaces the state", func() {
		updated, err := s.service.UpdateState(s.ctx, 1, "ψ1", "alice")
		s.Require().NoError(err)
		s.Equal("ψ1", updated.State)
		s.Equal("ψ1", s.stored(1).State)
	})

	s.Run("other callers are unauthorized and state is unchanged", func() {
		before := s.stored(1)
		for _, caller := range []id.Principal{"bob", owner, "", "Alice"} {
			_, err := s.service.UpdateState(s.ctx, 1, "ψ2", caller)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "caller %q", caller)
		}
		s.Equal(before, s.stored(1))
	})

	s.Run("unknown timeline is not found even for unknown callers", func() {
		_, err := s.service.UpdateState(s.ctx, 99, "ψ", "bob")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("update is a full replacement", func() {
		_, err := s.service.UpdateState(s.ctx, 1, "", "alice")
		s.Require().NoError(err)
		s.Empty(s.stored(1).State)
	})

	s.Equal(4.0, promtestutil.ToFloat64(s.metrics.AuthorizationDenied.WithLabelValues(policy.ActionUpdateState.String())))
}

// An anonymous creator is stored as-is and only the anonymous caller matches it.
func (s *TimelineServiceSuite) TestUpdateStateEmptyCreator() {
	t := s.create("T1", "psi0", "")
	s.Require().Empty(t.Creator)

	updated, err := s.service.UpdateState(s.ctx, t.ID, "psi1", "")
	s.Require().NoError(err)
	s.Equal("psi1", updated.State)

	_, err = s.service.UpdateState(s.ctx, t.ID, "psi2", "alice")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal("psi1", s.stored(t.ID).State)
}

func (s *TimelineServiceSuite) TestEvaluateConsistency() {
	t := s.create("Gamma timeline", "ψ", "creator3")

	s.Run("owner overwrites the score", func() {
		updated, err := s.service.EvaluateConsistency(s.ctx, t.ID, 85, owner)
		s.Require().NoError(err)
		s.Equal(int64(85), updated.ConsistencyScore)
	})

	s.Run("scores are not range checked", func() {
		for _, score := range []int64{-1000, 0, 1 << 40} {
			updated, err := s.service.EvaluateConsistency(s.ctx, t.ID, score, owner)
			s.Require().NoError(err)
			s.Equal(score, updated.ConsistencyScore)
		}
	})

	s.Run("non-owners are unauthorized, including the creator", func() {
		before := s.stored(t.ID)
		for _, caller := range []id.Principal{"unauthorized_user", "creator3", ""} {
			_, err := s.service.EvaluateConsistency(s.ctx, t.ID, 90, caller)
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "caller %q", caller)
		}
		s.Equal(before, s.stored(t.ID))
	})

	s.Run("authorization is checked before existence", func() {
		_, err := s.service.EvaluateConsistency(s.ctx, 99, 1, "unauthorized_user")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		_, err = s.service.EvaluateConsistency(s.ctx, 99, 1, owner)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *TimelineServiceSuite) TestResolveTimeline() {
	t := s.create("Delta timeline", "ψ", "creator4")

	s.Run("non-owner is unauthorized and status stays active", func() {
		_, err := s.service.ResolveTimeline(s.ctx, t.ID, "unauthorized_user")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal(models.StatusActive, s.stored(t.ID).Status)
	})

	s.Run("owner resolves", func() {
		resolved, err := s.service.ResolveTimeline(s.ctx, t.ID, owner)
		s.Require().NoError(err)
		s.Equal(models.StatusResolved, resolved.Status)
	})

	s.Run("re-resolving is permitted", func() {
		resolved, err := s.service.ResolveTimeline(s.ctx, t.ID, owner)
		s.Require().NoError(err)
		s.Equal(models.StatusResolved, resolved.Status)
	})

	s.Run("unknown timeline", func() {
		_, err := s.service.ResolveTimeline(s.ctx, 99, "unauthorized_user")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		_, err = s.service.ResolveTimeline(s.ctx, 99, owner)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("resolved timelines still accept creator state updates", func() {
		_, err := s.service.UpdateState(s.ctx, t.ID, "ψ'", "creator4")
		s.Require().NoError(err)
	})
}

func (s *TimelineServiceSuite) TestReads() {
	s.create("a", "s", "c")
	s.create("b", "s", "c")

	t, err := s.service.GetTimeline(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal("b", t.Description)

	_, err = s.service.GetTimeline(s.ctx, 3)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	all, err := s.service.ListTimelines(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *TimelineServiceSuite) TestAuditTrail() {
	t := s.create("T1", "ψ0", "alice")
	_, err := s.service.UpdateState(s.ctx, t.ID, "ψ1", "alice")
	s.Require().NoError(err)
	_, err = s.service.UpdateState(s.ctx, t.ID, "ψ2", "bob")
	s.Require().Error(err)
	_, err = s.service.EvaluateConsistency(s.ctx, t.ID, 7, owner)
	s.Require().NoError(err)
	_, err = s.service.ResolveTimeline(s.ctx, t.ID, owner)
	s.Require().NoError(err)

	events, err := s.audit.ListByRecord(s.ctx, audit.KindTimeline, uint64(t.ID))
	s.Require().NoError(err)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Equal([]string{
		string(audit.EventTimelineCreated),
		string(audit.EventTimelineStateUpdated),
		string(audit.EventTimelineEvaluated),
		string(audit.EventTimelineResolved),
	}, actions, "rejected calls leave no audit entry")
	s.Equal("score=7", events[2].Detail)
	s.Equal(owner, events[3].Principal)
}
