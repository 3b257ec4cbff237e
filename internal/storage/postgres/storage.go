package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	token        TEXT NOT NULL UNIQUE,
	score        BIGINT NOT NULL DEFAULT 0,
	sps          BIGINT NOT NULL DEFAULT 0,
	upgrades     JSONB NOT NULL DEFAULT '{}',
	last_updated TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS players_score_idx ON players (score DESC);

CREATE TABLE IF NOT EXISTS friend_requests (
	from_id    TEXT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
	to_id      TEXT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (from_id, to_id)
);

CREATE TABLE IF NOT EXISTS friendships (
	player_id TEXT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
	friend_id TEXT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
	PRIMARY KEY (player_id, friend_id)
);
`

// Storage is a PostgreSQL-backed implementation of the storage interface.
// Per-record serialization of UpdatePlayerByToken comes from a single-row
// transaction with SELECT ... FOR UPDATE.
type Storage struct {
	db *sql.DB
}

// New opens a connection pool and applies the schema
func New(dsn string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

// NewWithDB creates a Storage with an existing pool (for testing).
// The schema must already be applied.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// isUniqueViolation reports whether err is a unique_violation on the named
// constraint. The constraint is checked so a collision on another unique
// column (the token) is not misreported.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		pqErr.Code.Name() == "unique_violation" &&
		pqErr.Constraint == constraint
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	upgrades, err := json.Marshal(player.Upgrades)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (id, name, token, score, sps, upgrades, last_updated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, string(player.ID), player.Name, player.Token, player.Score, player.Sps, upgrades, player.LastUpdated, player.CreatedAt)

	if isUniqueViolation(err, "players_name_key") {
		return model.ErrNameTaken
	}
	return err
}

const playerColumns = `id, name, token, score, sps, upgrades, last_updated, created_at`

func scanPlayer(row *sql.Row) (*model.Player, error) {
	var p model.Player
	var upgrades []byte
	err := row.Scan(&p.ID, &p.Name, &p.Token, &p.Score, &p.Sps, &upgrades, &p.LastUpdated, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(upgrades, &p.Upgrades); err != nil {
		return nil, err
	}
	if p.Upgrades == nil {
		p.Upgrades = make(map[string]int)
	}
	return &p, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, string(id)))
}

func (s *Storage) GetPlayerByToken(ctx context.Context, token string) (*model.Player, error) {
	return scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE token = $1`, token))
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	return scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE name = $1`, name))
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

func (s *Storage) UpdatePlayerByToken(ctx context.Context, token string, fn storage.UpdateFunc) (*model.Player, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var p model.Player
	var upgrades []byte
	err = tx.QueryRowContext(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE token = $1
		FOR UPDATE
	`, token).Scan(&p.ID, &p.Name, &p.Token, &p.Score, &p.Sps, &upgrades, &p.LastUpdated, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(upgrades, &p.Upgrades); err != nil {
		return nil, err
	}
	if p.Upgrades == nil {
		p.Upgrades = make(map[string]int)
	}

	if err := fn(&p); err != nil {
		return nil, err
	}

	nextUpgrades, err := json.Marshal(p.Upgrades)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE players
		SET score = $2, sps = $3, upgrades = $4, last_updated = $5
		WHERE id = $1
	`, string(p.ID), p.Score, p.Sps, nextUpgrades, p.LastUpdated); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Leaderboard operations

func (s *Storage) TopPlayers(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, score
		FROM players
		ORDER BY score DESC, name ASC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Score); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Friend graph operations

func (s *Storage) CreateFriendRequest(ctx context.Context, req *model.FriendRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friend_requests (from_id, to_id, created_at)
		VALUES ($1, $2, $3)
	`, string(req.From), string(req.To), req.CreatedAt)

	if isUniqueViolation(err, "friend_requests_pkey") {
		return model.ErrFriendRequestExists
	}
	return err
}

func (s *Storage) GetFriendRequest(ctx context.Context, from, to model.PlayerID) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := s.db.QueryRowContext(ctx, `
		SELECT from_id, to_id, created_at
		FROM friend_requests
		WHERE from_id = $1 AND to_id = $2
	`, string(from), string(to)).Scan(&req.From, &req.To, &req.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrFriendRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Storage) DeleteFriendRequest(ctx context.Context, from, to model.PlayerID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM friend_requests WHERE from_id = $1 AND to_id = $2
	`, string(from), string(to))
	return err
}

func (s *Storage) ListFriendRequests(ctx context.Context, to model.PlayerID) ([]*model.FriendRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_id, to_id, created_at
		FROM friend_requests
		WHERE to_id = $1
		ORDER BY created_at ASC
	`, string(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*model.FriendRequest
	for rows.Next() {
		var req model.FriendRequest
		if err := rows.Scan(&req.From, &req.To, &req.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, &req)
	}
	return requests, rows.Err()
}

func (s *Storage) AddFriendship(ctx context.Context, a, b model.PlayerID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, pair := range [][2]model.PlayerID{{a, b}, {b, a}} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO friendships (player_id, friend_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, string(pair[0]), string(pair[1])); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) AreFriends(ctx context.Context, a, b model.PlayerID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friendships WHERE player_id = $1 AND friend_id = $2
		)
	`, string(a), string(b)).Scan(&exists)
	return exists, err
}

func (s *Storage) ListFriends(ctx context.Context, id model.PlayerID) ([]model.PlayerID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT friend_id FROM friendships WHERE player_id = $1 ORDER BY friend_id ASC
	`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	friends := []model.PlayerID{}
	for rows.Next() {
		var friend model.PlayerID
		if err := rows.Scan(&friend); err != nil {
			return nil, err
		}
		friends = append(friends, friend)
	}
	return friends, rows.Err()
}
