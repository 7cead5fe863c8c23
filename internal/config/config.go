package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, read from environment variables.
type Config struct {
	Port    string `env:"CHECKPOINT_PORT" envDefault:"8080"`
	DBPath  string `env:"CHECKPOINT_DB_PATH" envDefault:"checkpoint.db"`
	BaseURL string `env:"CHECKPOINT_BASE_URL" envDefault:"http://localhost:8080"`
	Env     string `env:"CHECKPOINT_ENV" envDefault:"development"`

	LogLevel  string `env:"CHECKPOINT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"CHECKPOINT_LOG_FORMAT" envDefault:"text"`

	// JWTSecret signs user auth tokens. Required.
	JWTSecret string `env:"CHECKPOINT_JWT_SECRET"`

	// Admin identity for the magic-link flow and the bulk sync endpoint.
	AdminEmail    string `env:"CHECKPOINT_ADMIN_EMAIL"`
	AdminUsername string `env:"CHECKPOINT_ADMIN_USERNAME" envDefault:"josplay"`
	AdminPassword string `env:"CHECKPOINT_ADMIN_PASSWORD"`

	// Resend email delivery. Magic links cannot be delivered without it,
	// but the server still runs (sends are logged and dropped).
	ResendAPIKey string `env:"CHECKPOINT_RESEND_API_KEY"`
	EmailFrom    string `env:"CHECKPOINT_EMAIL_FROM" envDefault:"Checkpoint <login@checkpoint.local>"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("CHECKPOINT_JWT_SECRET is required")
	}

	return cfg, nil
}

// Production reports whether the server runs in production mode.
// Controls the Secure attribute on session cookies.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}
