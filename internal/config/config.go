package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all server configuration, populated from the environment
type Config struct {
	Host string `env:"HTTP_HOST" envDefault:""`
	Port int    `env:"HTTP_PORT" envDefault:"8080"`

	// StorageType selects the backend: memory, redis, postgres or sqlite
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"clicker.db"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// ClickRate is the maximum accepted clicks per elapsed second
	ClickRate       float64 `env:"CLICK_RATE" envDefault:"10"`
	LeaderboardSize int     `env:"LEADERBOARD_SIZE" envDefault:"10"`

	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN"`

	// AdminKeyHash is a bcrypt hash of the admin key; empty disables the
	// admin surface
	AdminKeyHash string `env:"ADMIN_KEY_HASH"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
