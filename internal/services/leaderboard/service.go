package leaderboard

import (
	"context"

	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/storage"
)

// DefaultSize is the number of entries served when none is configured
const DefaultSize = 10

// Service serves the top-N leaderboard. Rankings use stored scores only;
// passive income is not projected here, it lands on the board when a
// player's next batch reconciles.
type Service struct {
	storage storage.Storage
	size    int
}

// New creates a new leaderboard service
func New(storage storage.Storage, size int) *Service {
	if size <= 0 {
		size = DefaultSize
	}
	return &Service{
		storage: storage,
		size:    size,
	}
}

// Top returns the leaderboard, score descending, ties by name
func (s *Service) Top(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return s.storage.TopPlayers(ctx, s.size)
}
