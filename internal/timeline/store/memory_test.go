package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chronoledger/internal/timeline/models"
	id "chronoledger/pkg/domain"
	"chronoledger/pkg/platform/sentinel"
)

type TimelineStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *TimelineStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestTimelineStoreSuite(t *testing.T) {
	suite.Run(t, new(TimelineStoreSuite))
}

func (s *TimelineStoreSuite) newTimeline(timelineID id.TimelineID) *models.Timeline {
	t, err := models.NewTimeline(timelineID, "Alpha timeline", "ψ0", "alice", time.Now())
	s.Require().NoError(err)
	return t
}

// TestCreationAndLookups verifies the store correctly creates and retrieves timelines.
func (s *TimelineStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds timeline by ID", func() {
		t := s.newTimeline(1)
		s.Require().NoError(s.store.Create(s.ctx, t))

		found, err := s.store.FindByID(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(t.Description, found.Description)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, 999)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate ID", func() {
		err := s.store.Create(s.ctx, s.newTimeline(1))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("lists ordered by ID", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newTimeline(7)))
		s.Require().NoError(s.store.Create(s.ctx, s.newTimeline(3)))

		all, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 3)
		s.Equal([]id.TimelineID{1, 3, 7}, []id.TimelineID{all[0].ID, all[1].ID, all[2].ID})
	})
}

// TestIsolation verifies callers cannot mutate stored records through returned pointers.
func (s *TimelineStoreSuite) TestIsolation() {
	t := s.newTimeline(1)
	s.Require().NoError(s.store.Create(s.ctx, t))
	t.State = "mutated after create"

	found, err := s.store.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("ψ0", found.State)

	found.State = "mutated after find"
	again, err := s.store.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("ψ0", again.State)
}

// TestExecute verifies validate-then-mutate atomicity.
func (s *TimelineStoreSuite) TestExecute() {
	s.Require().NoError(s.store.Create(s.ctx, s.newTimeline(1)))

	s.Run("applies mutation when validation passes", func() {
		updated, err := s.store.Execute(s.ctx, 1,
			func(*models.Timeline) error { return nil },
			func(t *models.Timeline) { t.ApplyState("ψ1", time.Now()) },
		)
		s.Require().NoError(err)
		s.Equal("ψ1", updated.State)

		found, err := s.store.FindByID(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal("ψ1", found.State)
	})

	s.Run("leaves record untouched when validation fails", func() {
		rejected := errors.New("rejected")
		_, err := s.store.Execute(s.ctx, 1,
			func(t *models.Timeline) error {
				t.State = "partial write"
				return rejected
			},
			func(t *models.Timeline) { t.ApplyState("ψ2", time.Now()) },
		)
		s.Require().ErrorIs(err, rejected)

		found, err := s.store.FindByID(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal("ψ1", found.State)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.Execute(s.ctx, 42,
			func(*models.Timeline) error { return nil },
			func(*models.Timeline) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("honours cancelled context", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		_, err := s.store.Execute(ctx, 1,
			func(*models.Timeline) error { return nil },
			func(*models.Timeline) {},
		)
		s.Require().ErrorIs(err, context.Canceled)
	})
}
