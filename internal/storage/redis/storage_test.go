package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/tapforge/clicker-server/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) newPlayer(id, name, token string, score int64) *model.Player {
	return &model.Player{
		ID:          model.PlayerID(id),
		Name:        name,
		Token:       token,
		Score:       score,
		Upgrades:    map[string]int{},
		LastUpdated: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Player tests

func (s *StorageSuite) TestCreateAndGetPlayer() {
	p := s.newPlayer("p1", "Alice", "t1", 5)
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, p))

	got, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Alice", got.Name)
	s.Equal(int64(5), got.Score)
	s.True(got.LastUpdated.Equal(p.LastUpdated))
}

func (s *StorageSuite) TestCreatePlayerNameTaken() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p1", "Alice", "t1", 0)))

	err := s.storage.CreatePlayer(s.ctx, s.newPlayer("p2", "Alice", "t2", 0))
	s.ErrorIs(err, model.ErrNameTaken)
}

func (s *StorageSuite) TestCreatePlayerFailureReleasesName() {
	// A string value at the leaderboard key makes the record pipeline fail
	// with WRONGTYPE after the name has been reserved
	s.Require().NoError(s.mini.Set(leaderboardKey(), "corrupt"))

	err := s.storage.CreatePlayer(s.ctx, s.newPlayer("p1", "Alice", "t1", 0))
	s.Require().Error(err)

	// The failed create must not leave the name pointing at a record that
	// was never written
	s.mini.Del(leaderboardKey())
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p2", "Alice", "t2", 0)))

	got, err := s.storage.GetPlayerByName(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p2"), got.ID)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGetPlayerByTokenAndName() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p1", "Alice", "t1", 0)))

	byToken, err := s.storage.GetPlayerByToken(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), byToken.ID)

	byName, err := s.storage.GetPlayerByName(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), byName.ID)

	_, err = s.storage.GetPlayerByToken(s.ctx, "bogus")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayer() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p1", "Alice", "t1", 0)))
	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "p1"))

	_, err := s.storage.GetPlayer(s.ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.storage.GetPlayerByToken(s.ctx, "t1")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	entries, err := s.storage.TopPlayers(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)

	// The freed name can be registered again
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p2", "Alice", "t2", 0)))
}

// UpdatePlayerByToken tests

func (s *StorageSuite) TestUpdatePlayerByToken() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p1", "Alice", "t1", 0)))

	updated, err := s.storage.UpdatePlayerByToken(s.ctx, "t1", func(p *model.Player) error {
		p.Score = 42
		p.Upgrades["auto_clicker"] = 1
		return nil
	})
	s.Require().NoError(err)
	s.Equal(int64(42), updated.Score)

	stored, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(42), stored.Score)
	s.Equal(1, stored.Upgrades["auto_clicker"])
}

func (s *StorageSuite) TestUpdatePlayerByTokenUnknownToken() {
	_, err := s.storage.UpdatePlayerByToken(s.ctx, "bogus", func(p *model.Player) error {
		return nil
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestUpdatePlayerByTokenAbortDiscardsChanges() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p1", "Alice", "t1", 10)))

	_, err := s.storage.UpdatePlayerByToken(s.ctx, "t1", func(p *model.Player) error {
		p.Score = 999
		return model.ErrInsufficientFunds
	})
	s.ErrorIs(err, model.ErrInsufficientFunds)

	stored, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(int64(10), stored.Score)
}

func (s *StorageSuite) TestUpdatePlayerByTokenRefreshesLeaderboard() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p1", "Alice", "t1", 0)))
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p2", "Bob", "t2", 50)))

	_, err := s.storage.UpdatePlayerByToken(s.ctx, "t1", func(p *model.Player) error {
		p.Score = 100
		return nil
	})
	s.Require().NoError(err)

	entries, err := s.storage.TopPlayers(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("Alice", entries[0].Name)
	s.Equal(int64(100), entries[0].Score)
}

// Leaderboard tests

func (s *StorageSuite) TestTopPlayersOrdering() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p1", "Alice", "t1", 50)))
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p2", "Bob", "t2", 100)))
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p3", "Carol", "t3", 50)))

	entries, err := s.storage.TopPlayers(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("Bob", entries[0].Name)
	s.Equal("Alice", entries[1].Name)
}

// Friend graph tests

func (s *StorageSuite) TestFriendRequestLifecycle() {
	req := &model.FriendRequest{From: "p1", To: "p2", CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s.Require().NoError(s.storage.CreateFriendRequest(s.ctx, req))

	got, err := s.storage.GetFriendRequest(s.ctx, "p1", "p2")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), got.From)

	err = s.storage.CreateFriendRequest(s.ctx, req)
	s.ErrorIs(err, model.ErrFriendRequestExists)

	reqs, err := s.storage.ListFriendRequests(s.ctx, "p2")
	s.Require().NoError(err)
	s.Require().Len(reqs, 1)

	s.Require().NoError(s.storage.DeleteFriendRequest(s.ctx, "p1", "p2"))
	_, err = s.storage.GetFriendRequest(s.ctx, "p1", "p2")
	s.ErrorIs(err, model.ErrFriendRequestNotFound)
}

func (s *StorageSuite) TestFriendshipSymmetric() {
	s.Require().NoError(s.storage.AddFriendship(s.ctx, "p1", "p2"))

	ab, err := s.storage.AreFriends(s.ctx, "p1", "p2")
	s.Require().NoError(err)
	ba, err := s.storage.AreFriends(s.ctx, "p2", "p1")
	s.Require().NoError(err)
	s.True(ab)
	s.True(ba)

	friends, err := s.storage.ListFriends(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p2"}, friends)
}

func (s *StorageSuite) TestDeletePlayerCleansFriendGraph() {
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p1", "Alice", "t1", 0)))
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, s.newPlayer("p2", "Bob", "t2", 0)))
	s.Require().NoError(s.storage.AddFriendship(s.ctx, "p1", "p2"))
	s.Require().NoError(s.storage.CreateFriendRequest(s.ctx, &model.FriendRequest{From: "p2", To: "p1", CreatedAt: time.Now()}))

	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "p1"))

	friends, err := s.storage.ListFriends(s.ctx, "p2")
	s.Require().NoError(err)
	s.Empty(friends)

	_, err = s.storage.GetFriendRequest(s.ctx, "p2", "p1")
	s.ErrorIs(err, model.ErrFriendRequestNotFound)
}
