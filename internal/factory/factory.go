package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/tapforge/clicker-server/internal/dependencies/clock"
	"github.com/tapforge/clicker-server/internal/dependencies/random"
	"github.com/tapforge/clicker-server/internal/model"
	"github.com/tapforge/clicker-server/internal/services/auth"
	"github.com/tapforge/clicker-server/internal/services/game"
	"github.com/tapforge/clicker-server/internal/services/generator"
	"github.com/tapforge/clicker-server/internal/services/leaderboard"
	"github.com/tapforge/clicker-server/internal/services/social"
	"github.com/tapforge/clicker-server/internal/storage"
	"github.com/tapforge/clicker-server/internal/storage/memory"
	"github.com/tapforge/clicker-server/internal/storage/postgres"
	redisstorage "github.com/tapforge/clicker-server/internal/storage/redis"
	"github.com/tapforge/clicker-server/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
	StorageTypeSQLite   = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService        *auth.Service
	GameController     *game.Controller
	LeaderboardService *leaderboard.Service
	SocialService      *social.Service
	Generator          generator.Generator
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresDSN is the connection string (required if StorageType is "postgres")
	PostgresDSN string
	// SQLitePath is the database file path (required if StorageType is "sqlite")
	SQLitePath string
	// GameConfig holds reconciliation settings (optional)
	// If zero value, defaults apply
	GameConfig game.Config
	// LeaderboardSize bounds the leaderboard (optional)
	LeaderboardSize int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("PostgresDSN required when StorageType is postgres")
		}
		pgStore, err := postgres.New(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		store = pgStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis', 'postgres' or 'sqlite'")
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.GameConfig, cfg.LeaderboardSize, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, gameCfg game.Config, leaderboardSize int, logger *slog.Logger) *App {
	catalog := model.DefaultCatalog()

	authService := auth.New(store, clk, rnd, logger)
	gameController := game.NewController(store, catalog, clk, gameCfg, logger)
	leaderboardService := leaderboard.New(store, leaderboardSize)
	socialService := social.New(store, clk, logger)
	gen := generator.NewStatic(rnd)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		AuthService:        authService,
		GameController:     gameController,
		LeaderboardService: leaderboardService,
		SocialService:      socialService,
		Generator:          gen,
	}
}
