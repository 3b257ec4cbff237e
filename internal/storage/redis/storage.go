package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Player records are JSON blobs with token and name indexes; the
// leaderboard is a sorted set kept in step with every save.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// The name index doubles as the uniqueness guard
	ok, err := s.client.SetNX(ctx, nameIndexKey(player.Name), string(player.ID), 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNameTaken
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.ID), data, 0)
	pipe.Set(ctx, tokenIndexKey(player.Token), string(player.ID), 0)
	pipe.ZAdd(ctx, leaderboardKey(), redis.Z{Score: float64(player.Score), Member: string(player.ID)})
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the name reservation so a failed create does not leave the
		// name pointing at a record that was never written
		s.client.Del(ctx, nameIndexKey(player.Name))
		return err
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.getPlayerByKey(ctx, playerKey(id))
}

func (s *Storage) GetPlayerByToken(ctx context.Context, token string) (*model.Player, error) {
	id, err := s.client.Get(ctx, tokenIndexKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.getPlayerByKey(ctx, playerKey(model.PlayerID(id)))
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	id, err := s.client.Get(ctx, nameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.getPlayerByKey(ctx, playerKey(model.PlayerID(id)))
}

func (s *Storage) getPlayerByKey(ctx context.Context, key string) (*model.Player, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	if player.Upgrades == nil {
		player.Upgrades = make(map[string]int)
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		return err
	}

	friends, err := s.ListFriends(ctx, id)
	if err != nil {
		return err
	}
	incoming, err := s.client.SMembers(ctx, incomingRequestsKey(id)).Result()
	if err != nil {
		return err
	}
	outgoing, err := s.client.SMembers(ctx, outgoingRequestsKey(id)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.Del(ctx, tokenIndexKey(player.Token))
	pipe.Del(ctx, nameIndexKey(player.Name))
	pipe.ZRem(ctx, leaderboardKey(), string(id))
	pipe.Del(ctx, friendsKey(id))
	for _, friend := range friends {
		pipe.SRem(ctx, friendsKey(friend), string(id))
	}
	pipe.Del(ctx, incomingRequestsKey(id))
	for _, from := range incoming {
		pipe.Del(ctx, requestKey(model.PlayerID(from), id))
		pipe.SRem(ctx, outgoingRequestsKey(model.PlayerID(from)), string(id))
	}
	pipe.Del(ctx, outgoingRequestsKey(id))
	for _, to := range outgoing {
		pipe.Del(ctx, requestKey(id, model.PlayerID(to)))
		pipe.SRem(ctx, incomingRequestsKey(model.PlayerID(to)), string(id))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) UpdatePlayerByToken(ctx context.Context, token string, fn storage.UpdateFunc) (*model.Player, error) {
	id, err := s.client.Get(ctx, tokenIndexKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	key := playerKey(model.PlayerID(id))

	var updated *model.Player
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPlayerNotFound
			}
			return err
		}

		var player model.Player
		if err := json.Unmarshal(data, &player); err != nil {
			return err
		}
		if player.Upgrades == nil {
			player.Upgrades = make(map[string]int)
		}

		if err := fn(&player); err != nil {
			return err
		}

		next, err := json.Marshal(&player)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			pipe.ZAdd(ctx, leaderboardKey(), redis.Z{Score: float64(player.Score), Member: string(player.ID)})
			return nil
		})
		if err != nil {
			return err
		}
		updated = &player
		return nil
	}

	// Optimistic concurrency: retry when another writer touches the record
	// between our read and the queued write.
	for i := 0; i < s.cfg.MaxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("player update contention after %d retries: %w", s.cfg.MaxUpdateRetries, redis.TxFailedErr)
}

// Leaderboard operations

func (s *Storage) TopPlayers(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		return []model.LeaderboardEntry{}, nil
	}

	members, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []model.LeaderboardEntry{}, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = playerKey(model.PlayerID(m.Member.(string)))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // index entry for a record deleted mid-read
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{Name: player.Name, Score: player.Score})
	}

	// The ZSET orders by score only; apply the name tiebreak
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Friend graph operations

func (s *Storage) CreateFriendRequest(ctx context.Context, req *model.FriendRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, requestKey(req.From, req.To), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrFriendRequestExists
	}

	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, incomingRequestsKey(req.To), string(req.From))
	pipe.SAdd(ctx, outgoingRequestsKey(req.From), string(req.To))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetFriendRequest(ctx context.Context, from, to model.PlayerID) (*model.FriendRequest, error) {
	data, err := s.client.Get(ctx, requestKey(from, to)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrFriendRequestNotFound
		}
		return nil, err
	}

	var req model.FriendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Storage) DeleteFriendRequest(ctx context.Context, from, to model.PlayerID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, requestKey(from, to))
	pipe.SRem(ctx, incomingRequestsKey(to), string(from))
	pipe.SRem(ctx, outgoingRequestsKey(from), string(to))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListFriendRequests(ctx context.Context, to model.PlayerID) ([]*model.FriendRequest, error) {
	senders, err := s.client.SMembers(ctx, incomingRequestsKey(to)).Result()
	if err != nil {
		return nil, err
	}
	if len(senders) == 0 {
		return nil, nil
	}

	keys := make([]string, len(senders))
	for i, from := range senders {
		keys[i] = requestKey(model.PlayerID(from), to)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	requests := make([]*model.FriendRequest, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var req model.FriendRequest
		if err := json.Unmarshal([]byte(val.(string)), &req); err != nil {
			continue
		}
		requests = append(requests, &req)
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
	return requests, nil
}

func (s *Storage) AddFriendship(ctx context.Context, a, b model.PlayerID) error {
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, friendsKey(a), string(b))
	pipe.SAdd(ctx, friendsKey(b), string(a))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) AreFriends(ctx context.Context, a, b model.PlayerID) (bool, error) {
	return s.client.SIsMember(ctx, friendsKey(a), string(b)).Result()
}

func (s *Storage) ListFriends(ctx context.Context, id model.PlayerID) ([]model.PlayerID, error) {
	members, err := s.client.SMembers(ctx, friendsKey(id)).Result()
	if err != nil {
		return nil, err
	}

	friends := make([]model.PlayerID, 0, len(members))
	for _, m := range members {
		friends = append(friends, model.PlayerID(m))
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i] < friends[j] })
	return friends, nil
}
