package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// A global RWMutex guards the maps; a per-player mutex serializes the
// read-modify-write cycle of UpdatePlayerByToken so batches for different
// players proceed in parallel.
type Storage struct {
	mu sync.RWMutex

	players    map[model.PlayerID]*model.Player
	tokenIndex map[string]model.PlayerID
	nameIndex  map[string]model.PlayerID
	requests   map[requestKey]*model.FriendRequest
	friends    map[model.PlayerID]map[model.PlayerID]struct{}

	lockMu      sync.Mutex
	playerLocks map[model.PlayerID]*sync.Mutex
}

type requestKey struct {
	from model.PlayerID
	to   model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:     make(map[model.PlayerID]*model.Player),
		tokenIndex:  make(map[string]model.PlayerID),
		nameIndex:   make(map[string]model.PlayerID),
		requests:    make(map[requestKey]*model.FriendRequest),
		friends:     make(map[model.PlayerID]map[model.PlayerID]struct{}),
		playerLocks: make(map[model.PlayerID]*sync.Mutex),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nameIndex[player.Name]; ok {
		return model.ErrNameTaken
	}
	cp := player.Clone()
	s.players[cp.ID] = cp
	s.tokenIndex[cp.Token] = cp.ID
	s.nameIndex[cp.Name] = cp.ID
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) GetPlayerByToken(ctx context.Context, token string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokenIndex[token]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.players[id].Clone(), nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.players[id].Clone(), nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	delete(s.players, id)
	delete(s.tokenIndex, player.Token)
	delete(s.nameIndex, player.Name)
	for friend := range s.friends[id] {
		delete(s.friends[friend], id)
	}
	delete(s.friends, id)
	for key := range s.requests {
		if key.from == id || key.to == id {
			delete(s.requests, key)
		}
	}
	return nil
}

func (s *Storage) UpdatePlayerByToken(ctx context.Context, token string, fn storage.UpdateFunc) (*model.Player, error) {
	s.mu.RLock()
	id, ok := s.tokenIndex[token]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlayerNotFound
	}

	lock := s.playerLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	player, ok := s.players[id]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlayerNotFound
	}

	next := player.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.players[id] = next
	s.mu.Unlock()
	return next.Clone(), nil
}

func (s *Storage) playerLock(id model.PlayerID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.playerLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.playerLocks[id] = lock
	}
	return lock
}

// Leaderboard operations

func (s *Storage) TopPlayers(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := make([]model.LeaderboardEntry, 0, len(s.players))
	for _, p := range s.players {
		entries = append(entries, model.LeaderboardEntry{Name: p.Name, Score: p.Score})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Friend graph operations

func (s *Storage) CreateFriendRequest(ctx context.Context, req *model.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := requestKey{from: req.From, to: req.To}
	if _, ok := s.requests[key]; ok {
		return model.ErrFriendRequestExists
	}
	cp := *req
	s.requests[key] = &cp
	return nil
}

func (s *Storage) GetFriendRequest(ctx context.Context, from, to model.PlayerID) (*model.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestKey{from: from, to: to}]
	if !ok {
		return nil, model.ErrFriendRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *Storage) DeleteFriendRequest(ctx context.Context, from, to model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, requestKey{from: from, to: to})
	return nil
}

func (s *Storage) ListFriendRequests(ctx context.Context, to model.PlayerID) ([]*model.FriendRequest, error) {
	s.mu.RLock()
	var requests []*model.FriendRequest
	for key, req := range s.requests {
		if key.to == to {
			cp := *req
			requests = append(requests, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
	return requests, nil
}

func (s *Storage) AddFriendship(ctx context.Context, a, b model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.friends[a] == nil {
		s.friends[a] = make(map[model.PlayerID]struct{})
	}
	if s.friends[b] == nil {
		s.friends[b] = make(map[model.PlayerID]struct{})
	}
	s.friends[a][b] = struct{}{}
	s.friends[b][a] = struct{}{}
	return nil
}

func (s *Storage) AreFriends(ctx context.Context, a, b model.PlayerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.friends[a][b]
	return ok, nil
}

func (s *Storage) ListFriends(ctx context.Context, id model.PlayerID) ([]model.PlayerID, error) {
	s.mu.RLock()
	friends := make([]model.PlayerID, 0, len(s.friends[id]))
	for friend := range s.friends[id] {
		friends = append(friends, friend)
	}
	s.mu.RUnlock()

	sort.Slice(friends, func(i, j int) bool { return friends[i] < friends[j] })
	return friends, nil
}
