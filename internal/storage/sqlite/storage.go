package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	token        TEXT NOT NULL UNIQUE,
	score        INTEGER NOT NULL DEFAULT 0,
	sps          INTEGER NOT NULL DEFAULT 0,
	upgrades     TEXT NOT NULL DEFAULT '{}',
	last_updated INTEGER NOT NULL,
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS players_score_idx ON players (score DESC);

CREATE TABLE IF NOT EXISTS friend_requests (
	from_id    TEXT NOT NULL,
	to_id      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (from_id, to_id)
);

CREATE TABLE IF NOT EXISTS friendships (
	player_id TEXT NOT NULL,
	friend_id TEXT NOT NULL,
	PRIMARY KEY (player_id, friend_id)
);
`

// Storage is an embedded SQLite implementation of the storage interface.
// Timestamps are stored as UTC unix nanoseconds. The pool is capped at one
// connection, so every UpdatePlayerByToken transaction owns the writer and
// read-modify-write cycles cannot interleave.
type Storage struct {
	db *sql.DB
}

// New opens (creating if necessary) the database file and applies the schema
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	upgrades, err := json.Marshal(player.Upgrades)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (id, name, token, score, sps, upgrades, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, string(player.ID), player.Name, player.Token, player.Score, player.Sps,
		string(upgrades), player.LastUpdated.UTC().UnixNano(), player.CreatedAt.UTC().UnixNano())

	if isUniqueViolation(err, "players.name") {
		return model.ErrNameTaken
	}
	return err
}

const playerColumns = `id, name, token, score, sps, upgrades, last_updated, created_at`

func scanPlayer(row *sql.Row) (*model.Player, error) {
	var p model.Player
	var upgrades string
	var lastUpdated, createdAt int64
	err := row.Scan(&p.ID, &p.Name, &p.Token, &p.Score, &p.Sps, &upgrades, &lastUpdated, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(upgrades), &p.Upgrades); err != nil {
		return nil, err
	}
	if p.Upgrades == nil {
		p.Upgrades = make(map[string]int)
	}
	p.LastUpdated = time.Unix(0, lastUpdated).UTC()
	p.CreatedAt = time.Unix(0, createdAt).UTC()
	return &p, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = ?`, string(id)))
}

func (s *Storage) GetPlayerByToken(ctx context.Context, token string) (*model.Player, error) {
	return scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE token = ?`, token))
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	return scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE name = ?`, name))
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, string(id))
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
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM friend_requests WHERE from_id = ? OR to_id = ?`, string(id), string(id)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM friendships WHERE player_id = ? OR friend_id = ?`, string(id), string(id)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Storage) UpdatePlayerByToken(ctx context.Context, token string, fn storage.UpdateFunc) (*model.Player, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var p model.Player
	var upgrades string
	var lastUpdated, createdAt int64
	err = tx.QueryRowContext(ctx, `
		SELECT `+playerColumns+` FROM players WHERE token = ?
	`, token).Scan(&p.ID, &p.Name, &p.Token, &p.Score, &p.Sps, &upgrades, &lastUpdated, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(upgrades), &p.Upgrades); err != nil {
		return nil, err
	}
	if p.Upgrades == nil {
		p.Upgrades = make(map[string]int)
	}
	p.LastUpdated = time.Unix(0, lastUpdated).UTC()
	p.CreatedAt = time.Unix(0, createdAt).UTC()

	if err := fn(&p); err != nil {
		return nil, err
	}

	nextUpgrades, err := json.Marshal(p.Upgrades)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE players
		SET score = ?, sps = ?, upgrades = ?, last_updated = ?
		WHERE id = ?
	`, p.Score, p.Sps, string(nextUpgrades), p.LastUpdated.UTC().UnixNano(), string(p.ID)); err != nil {
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
		LIMIT ?
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
		VALUES (?, ?, ?)
	`, string(req.From), string(req.To), req.CreatedAt.UTC().UnixNano())

	if isUniqueViolation(err, "friend_requests.from_id") {
		return model.ErrFriendRequestExists
	}
	return err
}

func (s *Storage) GetFriendRequest(ctx context.Context, from, to model.PlayerID) (*model.FriendRequest, error) {
	var req model.FriendRequest
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT from_id, to_id, created_at
		FROM friend_requests
		WHERE from_id = ? AND to_id = ?
	`, string(from), string(to)).Scan(&req.From, &req.To, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrFriendRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	req.CreatedAt = time.Unix(0, createdAt).UTC()
	return &req, nil
}

func (s *Storage) DeleteFriendRequest(ctx context.Context, from, to model.PlayerID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM friend_requests WHERE from_id = ? AND to_id = ?
	`, string(from), string(to))
	return err
}

func (s *Storage) ListFriendRequests(ctx context.Context, to model.PlayerID) ([]*model.FriendRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_id, to_id, created_at
		FROM friend_requests
		WHERE to_id = ?
		ORDER BY created_at ASC
	`, string(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*model.FriendRequest
	for rows.Next() {
		var req model.FriendRequest
		var createdAt int64
		if err := rows.Scan(&req.From, &req.To, &createdAt); err != nil {
			return nil, err
		}
		req.CreatedAt = time.Unix(0, createdAt).UTC()
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
			INSERT OR IGNORE INTO friendships (player_id, friend_id)
			VALUES (?, ?)
		`, string(pair[0]), string(pair[1])); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) AreFriends(ctx context.Context, a, b model.PlayerID) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM friendships WHERE player_id = ? AND friend_id = ?
	`, string(a), string(b)).Scan(&count)
	return count > 0, err
}

func (s *Storage) ListFriends(ctx context.Context, id model.PlayerID) ([]model.PlayerID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT friend_id FROM friendships WHERE player_id = ? ORDER BY friend_id ASC
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
