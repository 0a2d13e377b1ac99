package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultAppID scopes the store paths when no config overrides it
const DefaultAppID = "default-vibespinner"

// StoreScope selects shared or per-user item pools
type StoreScope string

const (
	ScopeShared StoreScope = "shared" // all users share one item pool
	ScopeUser   StoreScope = "user"   // items addressed per user
)

// ORPolicy selects filter-bar behavior for OR groups
type ORPolicy string

const (
	ORMulti  ORPolicy = "multi"  // independent multi-select
	ORSingle ORPolicy = "single" // one tag per group at a time
)

// EmptyMode selects what an empty filter set shows
type EmptyMode string

const (
	EmptyNone EmptyMode = "none" // no filters = show nothing
	EmptyAll  EmptyMode = "all"  // no filters = show everything
)

// Config represents .vibespinner/config.yaml
type Config struct {
	Version string       `yaml:"version"`
	App     AppConfig    `yaml:"app"`
	Store   StoreConfig  `yaml:"store"`
	Filter  FilterConfig `yaml:"filter"`
}

// AppConfig holds deployment identity
type AppConfig struct {
	ID string `yaml:"id"`
}

// StoreConfig holds persistence settings
type StoreConfig struct {
	Scope  StoreScope `yaml:"scope"`
	DBPath string     `yaml:"db_path,omitempty"`
}

// FilterConfig holds the configurable filter semantics
type FilterConfig struct {
	ORPolicy          ORPolicy  `yaml:"or_policy"`
	EmptyMode         EmptyMode `yaml:"empty_mode"`
	ConfirmWindowSecs int       `yaml:"confirm_window_secs"`
}

// Defaults returns the configuration used when no file exists
func Defaults() *Config {
	return &Config{
		Version: "1",
		App:     AppConfig{ID: DefaultAppID},
		Store:   StoreConfig{Scope: ScopeShared},
		Filter: FilterConfig{
			ORPolicy:          ORMulti,
			EmptyMode:         EmptyNone,
			ConfirmWindowSecs: 3,
		},
	}
}

// Path returns the config file location under a project root
func Path(root string) string {
	return filepath.Join(root, ".vibespinner", "config.yaml")
}

// FindRoot walks upward from dir looking for a .vibespinner directory;
// falls back to dir itself
func FindRoot(dir string) string {
	current := dir
	for {
		if info, err := os.Stat(filepath.Join(current, ".vibespinner")); err == nil && info.IsDir() {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// Load reads the config file, falling back to defaults when it is
// absent or unreadable (the app stays usable without configuration)
func Load(root string) *Config {
	cfg := Defaults()

	raw, err := os.ReadFile(Path(root))
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return Defaults()
	}
	cfg.normalize()
	return cfg
}

// Save writes the config file, creating the directory as needed
func Save(root string, cfg *Config) error {
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DBPath returns the configured database path or the default under root
func (c *Config) DBPath(root string) string {
	if c.Store.DBPath != "" {
		return c.Store.DBPath
	}
	return filepath.Join(root, ".vibespinner", "vibe.db")
}

// normalize fills unset enum fields with their defaults
func (c *Config) normalize() {
	d := Defaults()
	if c.App.ID == "" {
		c.App.ID = d.App.ID
	}
	if c.Store.Scope == "" {
		c.Store.Scope = d.Store.Scope
	}
	if c.Filter.ORPolicy == "" {
		c.Filter.ORPolicy = d.Filter.ORPolicy
	}
	if c.Filter.EmptyMode == "" {
		c.Filter.EmptyMode = d.Filter.EmptyMode
	}
	if c.Filter.ConfirmWindowSecs <= 0 {
		c.Filter.ConfirmWindowSecs = d.Filter.ConfirmWindowSecs
	}
}
