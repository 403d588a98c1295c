// Package config provides configuration file parsing for journalwatch.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the complete journalwatch configuration.
type Config struct {
	Journal JournalConfig `yaml:"journal"`
	Store   StoreConfig   `yaml:"store"`
	Service ServiceConfig `yaml:"service"`
	Logging LoggingConfig `yaml:"logging"`
}

// JournalConfig locates and paces the journal reader.
type JournalConfig struct {
	Dir          string        `yaml:"dir"`
	PollInterval time.Duration `yaml:"poll_interval"`
	SeedIdentity bool          `yaml:"seed_identity"` // backward scan for commander/system at start
}

// StoreConfig locates the shared database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServiceConfig tunes the ingestion loop.
type ServiceConfig struct {
	LeaseTTL            time.Duration `yaml:"lease_ttl"`
	MaintenanceSchedule string        `yaml:"maintenance_schedule"` // cron expression, empty disables
}

// LoggingConfig configures the logrus logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Dir returns the journalwatch config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/journalwatch if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "journalwatch"), nil
}

// DataDir returns ~/.journalwatch, where the database and daemon log live.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".journalwatch"), nil
}

// DefaultJournalDir is where the game client writes its journal on Windows.
func DefaultJournalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Saved Games", "Frontier Developments", "Elite Dangerous")
}

// Default returns the built-in configuration.
func Default() *Config {
	storePath := "journalwatch.db"
	if dir, err := DataDir(); err == nil {
		storePath = filepath.Join(dir, "journalwatch.db")
	}

	return &Config{
		Journal: JournalConfig{
			Dir:          DefaultJournalDir(),
			PollInterval: 500 * time.Millisecond,
			SeedIdentity: true,
		},
		Store: StoreConfig{
			Path: storePath,
		},
		Service: ServiceConfig{
			LeaseTTL:            30 * time.Second,
			MaintenanceSchedule: "*/15 * * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path means
// {Dir()}/config.yaml, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("resolving config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// No config file: defaults only.
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.Journal.Dir = expandHome(cfg.Journal.Dir)
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Journal.PollInterval <= 0 {
		return fmt.Errorf("journal.poll_interval must be positive, got %s", c.Journal.PollInterval)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Service.LeaseTTL <= c.StaleAfter() {
		return fmt.Errorf("service.lease_ttl (%s) must exceed the heartbeat staleness limit (%s)", c.Service.LeaseTTL, c.StaleAfter())
	}
	if c.Service.MaintenanceSchedule != "" {
		if _, err := cron.ParseStandard(c.Service.MaintenanceSchedule); err != nil {
			return fmt.Errorf("service.maintenance_schedule: %w", err)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}
	return nil
}

// StaleAfter is the heartbeat age beyond which readers presume the service
// dead: twice the poll interval.
func (c *Config) StaleAfter() time.Duration {
	return 2 * c.Journal.PollInterval
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
