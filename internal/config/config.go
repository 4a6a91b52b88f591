package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the process configuration read from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	JWTSecret   string `env:"JWT_SECRET"`

	// Days before today averaged into the usage baseline.
	AlertBaselineDays int `env:"ALERT_BASELINE_DAYS" envDefault:"7"`

	Database Database
}

// Database describes how to reach the ledger store.
type Database struct {
	Type         string `env:"DB_TYPE" envDefault:"postgres"`
	URL          string `env:"DATABASE_URL"`
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	User         string `env:"DB_USER" envDefault:"postgres"`
	Password     string `env:"DB_PASSWORD"`
	Name         string `env:"DB_NAME" envDefault:"powder_ledger"`
	Port         string `env:"DB_PORT" envDefault:"5432"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"powder-ledger.db"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
}

// Load reads an optional .env file and parses the environment into a Config.
// A missing .env file is not an error; the process environment still applies.
func Load(files ...string) (Config, bool, error) {
	dotenv := godotenv.Load(files...) == nil

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, dotenv, fmt.Errorf("parse env: %w", err)
	}

	cfg.Database.Type = strings.ToLower(strings.TrimSpace(cfg.Database.Type))
	if cfg.AlertBaselineDays <= 0 {
		return Config{}, dotenv, fmt.Errorf("ALERT_BASELINE_DAYS must be positive, got %d", cfg.AlertBaselineDays)
	}
	return cfg, dotenv, nil
}

// AuthEnabled reports whether routes require a bearer token.
func (c Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

// AllowedOrigins returns CORS_ORIGINS in the comma separated form fiber expects.
func (c Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
