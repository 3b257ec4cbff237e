package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tapforge/clicker-server/internal/dependencies/mocks"
	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/storage/memory"
	"github.com/tapforge/clicker-server/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(baseTime)
	s.controller = NewController(s.storage, testCatalog(), s.clock, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) createPlayer(score, sps int64) *model.Player {
	p := &model.Player{
		ID:          "player-1",
		Name:        "Alice",
		Token:       "token-1",
		Score:       score,
		Sps:         sps,
		Upgrades:    map[string]int{},
		LastUpdated: s.clock.Now(),
		CreatedAt:   s.clock.Now(),
	}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, p))
	return p
}

func (s *ControllerSuite) TestSubmitActionsPersists() {
	s.createPlayer(0, 0)
	s.clock.Advance(time.Second)

	updated, err := s.controller.SubmitActions(s.ctx, "token-1", clicks(5))
	s.Require().NoError(err)
	s.Equal(int64(5), updated.Score)

	stored, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(int64(5), stored.Score)
	s.Equal(s.clock.Now().UTC(), stored.LastUpdated)
}

func (s *ControllerSuite) TestSubmitActionsRejectionLeavesStoreUntouched() {
	s.createPlayer(9, 2)
	before, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)

	s.clock.Advance(time.Second)

	_, err = s.controller.SubmitActions(s.ctx, "token-1", []model.Action{buy("warp_drive")})
	s.ErrorIs(err, model.ErrUnknownUpgrade)

	after, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *ControllerSuite) TestSubmitActionsRateRejectionLeavesStoreUntouched() {
	s.createPlayer(0, 0)
	s.clock.Advance(time.Second)

	_, err := s.controller.SubmitActions(s.ctx, "token-1", clicks(11))
	s.ErrorIs(err, model.ErrClickRateExceeded)

	stored, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(int64(0), stored.Score)
	s.Equal(baseTime, stored.LastUpdated)
}

func (s *ControllerSuite) TestSubmitActionsInvalidToken() {
	s.createPlayer(0, 0)

	_, err := s.controller.SubmitActions(s.ctx, "bogus", clicks(1))
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ControllerSuite) TestSubmitActionsAccruesPassiveIncome() {
	s.createPlayer(0, 4)
	s.clock.Advance(10 * time.Second)

	updated, err := s.controller.SubmitActions(s.ctx, "token-1", nil)
	s.Require().NoError(err)
	s.Equal(int64(40), updated.Score)
}

func (s *ControllerSuite) TestPlayerStateByToken() {
	s.createPlayer(100, 0)

	p, err := s.controller.PlayerState(s.ctx, "token-1")
	s.Require().NoError(err)
	s.Equal("Alice", p.Name)
	s.Equal(int64(100), p.Score)
}

func (s *ControllerSuite) TestPlayerStateByName() {
	s.createPlayer(100, 0)

	p, err := s.controller.PlayerState(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(int64(100), p.Score)
}

func (s *ControllerSuite) TestPlayerStateProjectsWithoutPersisting() {
	s.createPlayer(0, 5)
	s.clock.Advance(10 * time.Second)

	p, err := s.controller.PlayerState(s.ctx, "token-1")
	s.Require().NoError(err)
	s.Equal(int64(50), p.Score)

	// The projection is read-only: the stored record still accrues from
	// the original LastUpdated.
	stored, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(int64(0), stored.Score)
	s.Equal(baseTime, stored.LastUpdated)
}

func (s *ControllerSuite) TestPlayerStateNotFound() {
	_, err := s.controller.PlayerState(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
