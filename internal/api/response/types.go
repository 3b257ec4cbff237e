package response

import (
	"time"

	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/services/generator"
	"github.com/tapforge/clicker-server/internal/services/social"
)

// RegisterResponse is the response for player registration
type RegisterResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// PlayerState represents a player's game state in API responses.
// The token is never echoed here.
type PlayerState struct {
	Name        string         `json:"name"`
	Score       int64          `json:"score"`
	Sps         int64          `json:"sps"`
	Upgrades    map[string]int `json:"upgrades"`
	LastUpdated time.Time      `json:"last_updated"`
}

// PlayerStateFromModel converts a model.Player to a response PlayerState
func PlayerStateFromModel(p *model.Player) PlayerState {
	upgrades := p.Upgrades
	if upgrades == nil {
		upgrades = map[string]int{}
	}
	return PlayerState{
		Name:        p.Name,
		Score:       p.Score,
		Sps:         p.Sps,
		Upgrades:    upgrades,
		LastUpdated: p.LastUpdated,
	}
}

// LeaderboardEntry is one row of the leaderboard
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// LeaderboardResponse is the full leaderboard
type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardFromModel converts storage entries to the response form
func LeaderboardFromModel(entries []model.LeaderboardEntry) LeaderboardResponse {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{Rank: i + 1, Name: e.Name, Score: e.Score}
	}
	return LeaderboardResponse{Entries: out}
}

// UpgradeSpec describes one purchasable upgrade with its current price for
// the requesting player
type UpgradeSpec struct {
	ID             string  `json:"id"`
	BaseCost       int64   `json:"base_cost"`
	CostMultiplier float64 `json:"cost_multiplier"`
	PpcIncrease    int64   `json:"ppc_increase"`
	PpsIncrease    int64   `json:"pps_increase"`
	Level          int     `json:"level"`
	NextCost       int64   `json:"next_cost"`
}

// CatalogResponse is the upgrade catalog priced for a player
type CatalogResponse struct {
	Upgrades []UpgradeSpec `json:"upgrades"`
}

// Friend is one friend list entry
type Friend struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// FriendsResponse is a player's friend list
type FriendsResponse struct {
	Friends []Friend `json:"friends"`
}

// FriendsFromService converts social friends to the response form
func FriendsFromService(friends []social.Friend) FriendsResponse {
	out := make([]Friend, len(friends))
	for i, f := range friends {
		out[i] = Friend{Name: f.Name, Score: f.Score}
	}
	return FriendsResponse{Friends: out}
}

// FriendRequest is one incoming friend request
type FriendRequest struct {
	From   string    `json:"from"`
	SentAt time.Time `json:"sent_at"`
}

// FriendRequestsResponse is a player's pending incoming requests
type FriendRequestsResponse struct {
	Requests []FriendRequest `json:"requests"`
}

// FriendRequestsFromService converts social requests to the response form
func FriendRequestsFromService(reqs []social.IncomingRequest) FriendRequestsResponse {
	out := make([]FriendRequest, len(reqs))
	for i, r := range reqs {
		out[i] = FriendRequest{From: r.From, SentAt: r.SentAt}
	}
	return FriendRequestsResponse{Requests: out}
}

// Suggestion is a generated upgrade idea
type Suggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BaseCost    int64  `json:"base_cost"`
	PpsIncrease int64  `json:"pps_increase"`
}

// SuggestionFromService converts a generator suggestion
func SuggestionFromService(s generator.Suggestion) Suggestion {
	return Suggestion{
		Name:        s.Name,
		Description: s.Description,
		BaseCost:    s.BaseCost,
		PpsIncrease: s.PpsIncrease,
	}
}
