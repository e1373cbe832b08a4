package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"explorer/internal/domain"
)

// FileName is the config file looked up in the user config directory.
const FileName = "explorer.yaml"

// Config holds all configuration for the explorer.
// Values come from an optional YAML file; environment variables always
// override the file, and command-line flags override both.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Schema  SchemaConfig  `yaml:"schema"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// StoreConfig selects where configurations and recents are persisted.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"EXPLORER_STORE_DRIVER" env-default:"sqlite"`
	// DSN is a file path for sqlite and a connection string otherwise.
	// Empty means the default SQLite file under the user data directory.
	DSN      string `yaml:"dsn" env:"EXPLORER_STORE_DSN" env-default:""`
	Database string `yaml:"database" env:"EXPLORER_STORE_DATABASE" env-default:"explorer"`
}

type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout" env:"EXPLORER_FETCH_TIMEOUT" env-default:"30s"`
	MaxBodyMB     int64         `yaml:"max_body_mb" env:"EXPLORER_FETCH_MAX_BODY_MB" env-default:"64"`
	PrefetchLimit int           `yaml:"prefetch_limit" env:"EXPLORER_FETCH_PREFETCH_LIMIT" env-default:"4"`
}

type SchemaConfig struct {
	CacheSize int `yaml:"cache_size" env:"EXPLORER_SCHEMA_CACHE_SIZE" env-default:"32"`
}

type HistoryConfig struct {
	MaxNodes int `yaml:"max_nodes" env:"EXPLORER_HISTORY_MAX_NODES" env-default:"40"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"EXPLORER_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"EXPLORER_LOG_FORMAT" env-default:"console"`
}

// Load reads path, or the default config file when path is empty and that
// file exists, then applies environment overrides and derived defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if p, ok := defaultFile(); ok {
			path = p
		}
	}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish fills derived defaults and validates the result.
func (c *Config) finish() error {
	switch domain.StoreDriver(c.Store.Driver) {
	case domain.StoreDriverSQLite, domain.StoreDriverPostgres, domain.StoreDriverMySQL,
		domain.StoreDriverMongoDB, domain.StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.DSN == "" && domain.StoreDriver(c.Store.Driver) == domain.StoreDriverSQLite {
		dsn, err := DefaultDatabasePath()
		if err != nil {
			return err
		}
		c.Store.DSN = dsn
	}
	if c.Fetch.Timeout <= 0 {
		return errors.New("fetch.timeout must be positive")
	}
	if c.Fetch.MaxBodyMB <= 0 {
		return errors.New("fetch.max_body_mb must be positive")
	}
	return nil
}

// MaxBodyBytes converts the configured response limit to bytes.
func (c *Config) MaxBodyBytes() int64 {
	return c.Fetch.MaxBodyMB << 20
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// DefaultDatabasePath is the SQLite file used when no DSN is configured.
func DefaultDatabasePath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "explorer", "explorer.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "explorer", "explorer.db"), nil
}

func defaultFile() (string, bool) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	p := filepath.Join(dir, "explorer", FileName)
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}
