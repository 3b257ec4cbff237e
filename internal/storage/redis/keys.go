package redis

import (
	"fmt"

	"github.com/tapforge/clicker-server/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "clicker"

// playerKey returns the Redis key for a Player record
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// tokenIndexKey returns the Redis key for the token -> player_id index
func tokenIndexKey(token string) string {
	return fmt.Sprintf("%s:idx:token:%s", keyPrefix, token)
}

// nameIndexKey returns the Redis key for the name -> player_id index
func nameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:name:%s", keyPrefix, name)
}

// leaderboardKey returns the Redis key for the score sorted set
func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}

// friendsKey returns the Redis key for a player's friend SET
func friendsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:friends:%s", keyPrefix, id)
}

// requestKey returns the Redis key for one pending friend request
func requestKey(from, to model.PlayerID) string {
	return fmt.Sprintf("%s:freq:%s:%s", keyPrefix, to, from)
}

// incomingRequestsKey returns the Redis key for the SET of senders with a
// pending request to this player
func incomingRequestsKey(to model.PlayerID) string {
	return fmt.Sprintf("%s:idx:freq_in:%s", keyPrefix, to)
}

// outgoingRequestsKey returns the Redis key for the SET of recipients this
// player has a pending request to
func outgoingRequestsKey(from model.PlayerID) string {
	return fmt.Sprintf("%s:idx:freq_out:%s", keyPrefix, from)
}
