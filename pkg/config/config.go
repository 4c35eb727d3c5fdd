// Package config loads aquarium settings from an optional .env file and the environment.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"github.com/unowned-ai/aquarium/pkg/utils"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Config holds the aquarium settings.
// Environment variables are parsed from the AQUARIUM_ prefix.
type Config struct {
	Backend Backend `envconfig:"BACKEND" default:"file"`

	// DataDir holds the JSON documents of the file backend.
	DataDir string `envconfig:"DATA_DIR" default:""`

	// SQLite
	DBPath      string `envconfig:"DB_PATH" default:""`
	WAL         bool   `envconfig:"WAL" default:"false"`
	Sync        string `envconfig:"SYNC" default:"FULL"`
	ForeignKeys bool   `envconfig:"FOREIGN_KEYS" default:"false"`

	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// ResolveDefaults validates the backend and fills in paths left empty.
func (c *Config) ResolveDefaults() error {
	c.Backend = Backend(strings.ToLower(string(c.Backend)))
	switch c.Backend {
	case "":
		c.Backend = BackendFile
	case BackendFile, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("unsupported BACKEND: %s", c.Backend)
	}

	if c.DataDir == "" {
		c.DataDir = utils.GetDefaultDataDir()
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "aquarium.db")
	}
	c.Sync = strings.ToUpper(c.Sync)

	if c.Backend == BackendPostgres && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
	}
	return nil
}

// Override adjusts a Config after the environment is read and before defaults are resolved.
type Override func(*Config)

// New creates a Config from the environment. A .env file in the working
// directory is loaded first when present; variables already set win.
func New(overrides ...Override) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("AQUARIUM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	for _, o := range overrides {
		o(&cfg)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("backend", string(cfg.Backend)).
		Str("data_dir", cfg.DataDir).
		Str("db_path", cfg.DBPath).
		Bool("wal", cfg.WAL).
		Str("sync", cfg.Sync).
		Bool("foreign_keys", cfg.ForeignKeys).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Msg("Configuration loaded")

	return &cfg, nil
}
