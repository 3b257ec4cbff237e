package storage

import (
	"context"

	"github.com/tapforge/clicker-server/internal/model"
)

// UpdateFunc mutates a player record in place during a serialized
// read-modify-write. Returning an error aborts the update; nothing is
// persisted in that case.
type UpdateFunc func(p *model.Player) error

// Storage defines the interface for data persistence.
//
// Implementations must serialize UpdatePlayerByToken per record: two
// concurrent updates for the same player never interleave their
// read-modify-write cycles, while updates for different players may run in
// parallel. All getters return copies that the caller owns.
type Storage interface {
	// Player operations
	CreatePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByToken(ctx context.Context, token string) (*model.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// UpdatePlayerByToken loads the record for the token, applies fn to a
	// copy, and persists the result as a single logical write. If fn fails
	// the stored record is left untouched.
	UpdatePlayerByToken(ctx context.Context, token string, fn UpdateFunc) (*model.Player, error)

	// TopPlayers returns up to n players ordered by score descending,
	// ties broken by name ascending.
	TopPlayers(ctx context.Context, n int) ([]model.LeaderboardEntry, error)

	// Friend graph operations
	CreateFriendRequest(ctx context.Context, req *model.FriendRequest) error
	GetFriendRequest(ctx context.Context, from, to model.PlayerID) (*model.FriendRequest, error)
	DeleteFriendRequest(ctx context.Context, from, to model.PlayerID) error
	ListFriendRequests(ctx context.Context, to model.PlayerID) ([]*model.FriendRequest, error)
	AddFriendship(ctx context.Context, a, b model.PlayerID) error
	AreFriends(ctx context.Context, a, b model.PlayerID) (bool, error)
	ListFriends(ctx context.Context, id model.PlayerID) ([]model.PlayerID, error)
}
