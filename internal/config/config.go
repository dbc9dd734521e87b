// ABOUTME: Anchor configuration: JSON file, .env file, and environment overrides.
// ABOUTME: Also the factory for the local KV backend and the remote store.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/harperreed/anchor/internal/charm"
	"github.com/harperreed/anchor/internal/logger"
	"github.com/harperreed/anchor/internal/redisstore"
	"github.com/harperreed/anchor/internal/remote"
	"github.com/harperreed/anchor/internal/storage"
	"github.com/joho/godotenv"
)

// Backend names for the local KV store.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendCharm  = "charm"
	BackendRedis  = "redis"
)

// Config stores anchor configuration.
type Config struct {
	// Backend selects the local store: "sqlite" (default), "badger", "charm", or "redis".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for local data and logs.
	// Supports ~ expansion. Defaults to ~/.local/share/anchor.
	DataDir string `json:"data_dir,omitempty"`

	// UserID is written on every remote row.
	UserID string `json:"user_id,omitempty"`

	Remote    RemoteConfig `json:"remote,omitempty"`
	RedisAddr string       `json:"redis_addr,omitempty"`
	Log       LogConfig    `json:"log,omitempty"`
}

// RemoteConfig points at the hosted Postgres store of record.
type RemoteConfig struct {
	URL         string `json:"url,omitempty"`
	Key         string `json:"key,omitempty"`
	AutoMigrate bool   `json:"auto_migrate,omitempty"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level   string `json:"level,omitempty"`
	File    string `json:"file,omitempty"`
	Console bool   `json:"console,omitempty"`
}

// envOverrides are read from the process environment after .env is loaded.
type envOverrides struct {
	RemoteURL string `env:"ANCHOR_REMOTE_URL"`
	RemoteKey string `env:"ANCHOR_REMOTE_KEY"`
	UserID    string `env:"ANCHOR_USER_ID"`
	Backend   string `env:"ANCHOR_BACKEND"`
	DataDir   string `env:"ANCHOR_DATA_DIR"`
	LogLevel  string `env:"ANCHOR_LOG_LEVEL"`
	RedisAddr string `env:"ANCHOR_REDIS_ADDR"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetUserID returns the remote user identity, defaulting to "default".
func (c *Config) GetUserID() string {
	if c.UserID == "" {
		return "default"
	}
	return c.UserID
}

// GetRedisAddr returns the Redis address, defaulting to localhost.
func (c *Config) GetRedisAddr() string {
	if c.RedisAddr == "" {
		return "localhost:6379"
	}
	return c.RedisAddr
}

// RemoteConfigured reports whether a remote store URL is set.
func (c *Config) RemoteConfigured() bool {
	return c.Remote.URL != ""
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the local KV backend selected by the config.
func (c *Config) OpenStorage() (storage.KV, error) {
	dataDir := c.GetDataDir()

	switch c.GetBackend() {
	case BackendSQLite:
		return storage.Open(filepath.Join(dataDir, "anchor.db"))
	case BackendBadger:
		return storage.OpenBadger(filepath.Join(dataDir, "badger"))
	case BackendCharm:
		return charm.InitClient()
	case BackendRedis:
		return redisstore.Open(c.GetRedisAddr(), "", 0)
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// RemoteDSN returns the Postgres DSN with the remote key set as the password.
func (c *Config) RemoteDSN() (string, error) {
	if !c.RemoteConfigured() {
		return "", remote.ErrNotConfigured
	}
	if c.Remote.Key == "" {
		return c.Remote.URL, nil
	}
	u, err := url.Parse(c.Remote.URL)
	if err != nil {
		return "", fmt.Errorf("parse remote url: %w", err)
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.Remote.Key)
	return u.String(), nil
}

// OpenRemote connects to the remote store, or returns remote.ErrNotConfigured.
func (c *Config) OpenRemote() (*remote.PostgresStore, error) {
	dsn, err := c.RemoteDSN()
	if err != nil {
		return nil, err
	}
	return remote.OpenPostgres(remote.Options{DSN: dsn, AutoMigrate: c.Remote.AutoMigrate})
}

// LoggerConfig returns the logger settings, logging to <data_dir>/logs/anchor.log by default.
func (c *Config) LoggerConfig() logger.Config {
	file := ExpandPath(c.Log.File)
	if file == "" {
		file = filepath.Join(c.GetDataDir(), "logs", "anchor.log")
	}
	return logger.Config{
		Level:   c.Log.Level,
		File:    file,
		Console: c.Log.Console,
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "anchor", "config.json")
}

// Load reads config from disk, then applies .env and environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads config from path. A missing file yields an empty config.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv loads ./.env when present and overlays ANCHOR_* variables.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Remote.URL, o.RemoteURL)
	set(&c.Remote.Key, o.RemoteKey)
	set(&c.UserID, o.UserID)
	set(&c.Backend, o.Backend)
	set(&c.DataDir, o.DataDir)
	set(&c.Log.Level, o.LogLevel)
	set(&c.RedisAddr, o.RedisAddr)
	return nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
