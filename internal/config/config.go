// Package config reads process configuration from USSIM_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is everything cmd/ussim needs to wire a process.
type Config struct {
	Seed     int64 `env:"USSIM_SEED" envDefault:"42"`
	Unseeded bool  `env:"USSIM_UNSEEDED"`
	Resume   bool  `env:"USSIM_RESUME" envDefault:"true"`

	StoreDriver string `env:"USSIM_STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"USSIM_SQLITE_PATH" envDefault:"data/ussim.db"`

	S3Bucket    string `env:"USSIM_S3_BUCKET"`
	S3Region    string `env:"USSIM_S3_REGION" envDefault:"us-east-1"`
	S3Prefix    string `env:"USSIM_S3_PREFIX" envDefault:"saves/"`
	S3Endpoint  string `env:"USSIM_S3_ENDPOINT"`
	S3PathStyle bool   `env:"USSIM_S3_PATH_STYLE"`

	CatalogPath string `env:"USSIM_CATALOG"`

	APIPort     int      `env:"USSIM_API_PORT" envDefault:"8080"`
	AdminKey    string   `env:"USSIM_ADMIN_KEY"`
	CORSOrigins []string `env:"USSIM_CORS_ORIGINS" envSeparator:","`
	RateLimit   int      `env:"USSIM_RATE_LIMIT" envDefault:"120"` // admin requests per minute per client

	TickInterval   time.Duration `env:"USSIM_TICK_INTERVAL" envDefault:"2s"`
	Speed          float64       `env:"USSIM_SPEED" envDefault:"1"`
	AutosaveMonths int           `env:"USSIM_AUTOSAVE_MONTHS" envDefault:"12"`

	LogLevel string `env:"USSIM_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config and checks cross-field rules.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.StoreDriver == "s3" && cfg.S3Bucket == "" {
		return Config{}, fmt.Errorf("USSIM_S3_BUCKET required for the s3 store")
	}
	if cfg.AutosaveMonths < 0 {
		return Config{}, fmt.Errorf("USSIM_AUTOSAVE_MONTHS must not be negative")
	}
	return cfg, nil
}

// Level maps LogLevel onto slog levels. Unknown names read as info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
