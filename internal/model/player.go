package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is the authoritative record for one registered player.
// Score and Sps are non-negative at all times; LastUpdated marks the last
// time passive income was folded into Score and never moves backwards.
type Player struct {
	ID          PlayerID
	Name        string
	Token       string // opaque bearer credential, immutable for the record's lifetime
	Score       int64
	Sps         int64 // passive score per second
	Upgrades    map[string]int
	LastUpdated time.Time
	CreatedAt   time.Time
}

// Clone returns a deep copy of the player, including the upgrades map.
// Stores hand out clones so callers never alias persisted state.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Upgrades = make(map[string]int, len(p.Upgrades))
	for id, level := range p.Upgrades {
		cp.Upgrades[id] = level
	}
	return &cp
}

// UpgradeLevel returns the owned level of an upgrade, zero if not owned
func (p *Player) UpgradeLevel(id string) int {
	return p.Upgrades[id]
}

// LeaderboardEntry is one row of the top-N leaderboard
type LeaderboardEntry struct {
	Name  string
	Score int64
}

// FriendRequest is a pending, directed friendship offer
type FriendRequest struct {
	From      PlayerID
	To        PlayerID
	CreatedAt time.Time
}
