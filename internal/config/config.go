// Package config loads the signal-store configuration file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gwillem/signal-store/internal/kv"
	"github.com/gwillem/signal-store/internal/store"
)

// Medium names accepted in the medium field.
const (
	MediumSQLite = "sqlite"
	MediumBolt   = "bolt"
	MediumDir    = "dir"
	MediumMemory = "memory"
)

// DefaultPassphraseEnv is read for the seal passphrase when seal.passphrase_env
// is not set.
const DefaultPassphraseEnv = "SIGNAL_STORE_PASSPHRASE"

// Config is the root configuration.
type Config struct {
	DataDir string        `yaml:"data_dir"`
	Account string        `yaml:"account"`
	Medium  string        `yaml:"medium"`
	Seal    SealConfig    `yaml:"seal"`
	Logging LoggingConfig `yaml:"logging"`
}

// SealConfig enables value encryption at rest.
type SealConfig struct {
	Enabled       bool   `yaml:"enabled"`
	PassphraseEnv string `yaml:"passphrase_env"`
}

// LoggingConfig selects log level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses configuration from YAML.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// Unset variables expand to an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = store.DefaultDataDir()
	}
	if c.Account == "" {
		c.Account = "default"
	}
	if c.Medium == "" {
		c.Medium = MediumSQLite
	}
	if c.Seal.PassphraseEnv == "" {
		c.Seal.PassphraseEnv = DefaultPassphraseEnv
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the configuration for unsupported values.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Medium {
	case MediumSQLite, MediumBolt, MediumDir, MediumMemory:
	default:
		return fmt.Errorf("medium must be one of sqlite, bolt, dir, memory; got %q", c.Medium)
	}
	if _, err := store.AccountDir(c.DataDir, c.Account); err != nil {
		return fmt.Errorf("account: %w", err)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json; got %q", c.Logging.Format)
	}
	return nil
}

// AccountDir returns the data directory of the configured account.
func (c *Config) AccountDir() (string, error) {
	return store.AccountDir(c.DataDir, c.Account)
}

// DSN returns the medium DSN of the configured account.
func (c *Config) DSN() (string, error) {
	if c.Medium == MediumMemory {
		return "memory:", nil
	}
	dir, err := c.AccountDir()
	if err != nil {
		return "", err
	}
	switch c.Medium {
	case MediumSQLite:
		return kv.FileDSN("sqlite", filepath.Join(dir, "store.db"))
	case MediumBolt:
		return kv.FileDSN("bolt", filepath.Join(dir, "store.bolt"))
	case MediumDir:
		return kv.FileDSN("dir", filepath.Join(dir, "records"))
	}
	return "", fmt.Errorf("unknown medium %q", c.Medium)
}

// Passphrase returns the seal passphrase from the configured environment
// variable. ok is false when sealing is disabled or the variable is unset.
func (c *Config) Passphrase() (string, bool) {
	if !c.Seal.Enabled {
		return "", false
	}
	p := os.Getenv(c.Seal.PassphraseEnv)
	return p, p != ""
}

// NewLogger builds a logger writing to w with the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("logging.level must be debug, info, warn or error; got %q", s)
}
