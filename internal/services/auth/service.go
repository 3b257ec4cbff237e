package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tapforge/clicker-server/internal/dependencies/clock"
	"github.com/tapforge/clicker-server/internal/dependencies/random"
	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/storage"
)

const maxNameLength = 32

// tokenBytes of entropy go into each bearer token
const tokenBytes = 24

// Service handles registration and bearer-token authentication. Tokens are
// the sole credential: opaque, issued once at registration, no expiry.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new auth service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// Register creates a player record for the given display name and issues
// its bearer token. Names are unique: a taken name fails with ErrNameTaken
// rather than silently handing back the existing player's token.
func (s *Service) Register(ctx context.Context, name string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return nil, model.ErrInvalidName
	}

	now := s.clock.Now().UTC()
	player := &model.Player{
		ID:          model.PlayerID(uuid.NewString()),
		Name:        name,
		Token:       s.random.Token(tokenBytes),
		Score:       0,
		Sps:         0,
		Upgrades:    make(map[string]int),
		LastUpdated: now,
		CreatedAt:   now,
	}

	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player registered",
		slog.String("player_id", string(player.ID)),
		slog.String("name", player.Name),
	)
	return player, nil
}

// ValidateToken resolves a bearer token to its player record
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.Player, error) {
	if token == "" {
		return nil, model.ErrInvalidToken
	}
	player, err := s.storage.GetPlayerByToken(ctx, token)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return nil, model.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return player, nil
}

// DeletePlayer removes a player record entirely (administrative operation)
func (s *Service) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	if err := s.storage.DeletePlayer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("player deleted", slog.String("player_id", string(id)))
	return nil
}
