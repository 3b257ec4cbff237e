package social

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/tapforge/clicker-server/internal/dependencies/clock"
	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/storage"
)

// Friend is one entry of a player's friend list
type Friend struct {
	Name  string
	Score int64
}

// IncomingRequest is a pending friend request with the sender resolved to
// a display name
type IncomingRequest struct {
	From   string
	SentAt time.Time
}

// Service manages the friends / friend-request graph
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new social service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// SendRequest records a friend request from the player to the named target.
// A pending request in the opposite direction is accepted instead of
// duplicated.
func (s *Service) SendRequest(ctx context.Context, from *model.Player, toName string) error {
	target, err := s.storage.GetPlayerByName(ctx, toName)
	if err != nil {
		return err
	}
	if target.ID == from.ID {
		return model.ErrSelfFriendRequest
	}

	friends, err := s.storage.AreFriends(ctx, from.ID, target.ID)
	if err != nil {
		return err
	}
	if friends {
		return model.ErrAlreadyFriends
	}

	// Both sides wanting the friendship completes it
	if _, err := s.storage.GetFriendRequest(ctx, target.ID, from.ID); err == nil {
		return s.accept(ctx, target.ID, from.ID)
	} else if !errors.Is(err, model.ErrFriendRequestNotFound) {
		return err
	}

	req := &model.FriendRequest{
		From:      from.ID,
		To:        target.ID,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.storage.CreateFriendRequest(ctx, req); err != nil {
		return err
	}

	s.logger.Info("friend request sent",
		slog.String("from", string(from.ID)),
		slog.String("to", string(target.ID)),
	)
	return nil
}

// Accept completes the pending request from the named sender to the player
func (s *Service) Accept(ctx context.Context, to *model.Player, fromName string) error {
	sender, err := s.storage.GetPlayerByName(ctx, fromName)
	if err != nil {
		return err
	}
	if _, err := s.storage.GetFriendRequest(ctx, sender.ID, to.ID); err != nil {
		return err
	}
	return s.accept(ctx, sender.ID, to.ID)
}

func (s *Service) accept(ctx context.Context, from, to model.PlayerID) error {
	if err := s.storage.DeleteFriendRequest(ctx, from, to); err != nil {
		return err
	}
	if err := s.storage.AddFriendship(ctx, from, to); err != nil {
		return err
	}
	s.logger.Info("friendship created",
		slog.String("a", string(from)),
		slog.String("b", string(to)),
	)
	return nil
}

// Decline removes the pending request from the named sender to the player
func (s *Service) Decline(ctx context.Context, to *model.Player, fromName string) error {
	sender, err := s.storage.GetPlayerByName(ctx, fromName)
	if err != nil {
		return err
	}
	if _, err := s.storage.GetFriendRequest(ctx, sender.ID, to.ID); err != nil {
		return err
	}
	return s.storage.DeleteFriendRequest(ctx, sender.ID, to.ID)
}

// Friends returns the player's friend list sorted by name
func (s *Service) Friends(ctx context.Context, id model.PlayerID) ([]Friend, error) {
	ids, err := s.storage.ListFriends(ctx, id)
	if err != nil {
		return nil, err
	}

	friends := make([]Friend, 0, len(ids))
	for _, friendID := range ids {
		player, err := s.storage.GetPlayer(ctx, friendID)
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue // friend deleted since the edge was written
		}
		if err != nil {
			return nil, err
		}
		friends = append(friends, Friend{Name: player.Name, Score: player.Score})
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].Name < friends[j].Name })
	return friends, nil
}

// PendingRequests returns the player's incoming requests, oldest first
func (s *Service) PendingRequests(ctx context.Context, id model.PlayerID) ([]IncomingRequest, error) {
	reqs, err := s.storage.ListFriendRequests(ctx, id)
	if err != nil {
		return nil, err
	}

	incoming := make([]IncomingRequest, 0, len(reqs))
	for _, req := range reqs {
		sender, err := s.storage.GetPlayer(ctx, req.From)
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		incoming = append(incoming, IncomingRequest{From: sender.Name, SentAt: req.CreatedAt})
	}
	sort.Slice(incoming, func(i, j int) bool { return incoming[i].SentAt.Before(incoming[j].SentAt) })
	return incoming, nil
}
