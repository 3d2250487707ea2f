// internal/config/config.go
//
// Typed server configuration read from the environment.
// main loads an optional .env file first (godotenv), then calls Load.
//
// Environment variables (defaults in brackets):
//   PORT [5175], LOG_LEVEL [info], DB_PATH [./data/battleship.db],
//   JWT_SECRET [dev_secret_change_me], JWT_EXPIRES_DAYS [14],
//   COOKIE_NAME [battleship_token], CLIENT_ORIGIN [http://localhost:5173],
//   DAILY_SALT [local_dev_salt], PRODUCTION [false], REQUEST_TIMEOUT [10s].

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the HTTP host.
type Config struct {
	Port           string        `env:"PORT" envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	DBPath         string        `env:"DB_PATH" envDefault:"./data/battleship.db"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int           `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string        `env:"COOKIE_NAME" envDefault:"battleship_token"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	DailySalt      string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	Production     bool          `env:"PRODUCTION" envDefault:"false"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTExpiresDays <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRES_DAYS must be positive, got %d", cfg.JWTExpiresDays)
	}
	return cfg, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string { return ":" + c.Port }
