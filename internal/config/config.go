// Package config loads and saves the mfx application config
// ($XDG_CONFIG_HOME/mfx/config.yaml).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/marcus/mfx/internal/lockfile"
	"gopkg.in/yaml.v3"
)

const (
	fileName    = "config.yaml"
	lockName    = "config.yaml.lock"
	lockTimeout = 2 * time.Second
)

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// History defaults
const (
	DefaultMaxSearch = 6
	DefaultMaxFile   = 9
)

// ErrUnknownKey is returned by Get and Set for keys outside the schema
var ErrUnknownKey = errors.New("unknown config key")

type StorageConfig struct {
	Backend       string `yaml:"backend,omitempty"`
	GlobalPath    string `yaml:"global_path,omitempty"`
	WorkspacePath string `yaml:"workspace_path,omitempty"`
}

type HistoryConfig struct {
	MaxSearch int `yaml:"max_search,omitempty"`
	MaxFile   int `yaml:"max_file,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

type ProfilesConfig struct {
	GlobalDir           string `yaml:"global_dir,omitempty"`
	ProjectDir          string `yaml:"project_dir,omitempty"`
	AutomaticValidation *bool  `yaml:"automatic_validation,omitempty"` // nil = default true
}

type RemoteConfig struct {
	// Fixture is a YAML file seeding the in-memory resource API
	Fixture string `yaml:"fixture,omitempty"`
}

// Config is the application config
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	History  HistoryConfig  `yaml:"history"`
	Log      LogConfig      `yaml:"log"`
	Profiles ProfilesConfig `yaml:"profiles"`
	Remote   RemoteConfig   `yaml:"remote"`
}

// Dir returns the mfx config directory, honoring XDG_CONFIG_HOME
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mfx"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "mfx"), nil
}

// DefaultPath returns the config file path inside Dir
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults(filepath.Dir(path))
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) applyDefaults(dir string) {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.GlobalPath == "" {
		c.Storage.GlobalPath = filepath.Join(dir, c.SettingsFileName())
	}
	if c.History.MaxSearch <= 0 {
		c.History.MaxSearch = DefaultMaxSearch
	}
	if c.History.MaxFile <= 0 {
		c.History.MaxFile = DefaultMaxFile
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Profiles.GlobalDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Profiles.GlobalDir = filepath.Join(home, ".mfx")
		}
	}
}

// SettingsFileName is the default settings file name for the backend
func (c *Config) SettingsFileName() string {
	if c.Storage.Backend == BackendSQLite {
		return "settings.db"
	}
	return "settings.json"
}

// UseBackend switches the backend, moving a default-named global file along
func (c *Config) UseBackend(b string) error {
	if err := c.Set("storage.backend", b); err != nil {
		return err
	}
	switch filepath.Base(c.Storage.GlobalPath) {
	case "settings.json", "settings.db":
		c.Storage.GlobalPath = filepath.Join(filepath.Dir(c.Storage.GlobalPath), c.SettingsFileName())
	}
	return nil
}

// AutomaticValidation reports whether profiles are checked on expand
func (c *Config) AutomaticValidation() bool {
	return c.Profiles.AutomaticValidation == nil || *c.Profiles.AutomaticValidation
}

// Save writes the config using atomic write (temp file + rename)
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.yaml.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

// withConfigLock serializes read-modify-write of the config file
func withConfigLock(path string, fn func() error) error {
	return lockfile.With(filepath.Join(filepath.Dir(path), lockName), lockTimeout, fn)
}

// Update loads the config, applies fn and saves it under the config lock
func Update(path string, fn func(*Config) error) error {
	return withConfigLock(path, func() error {
		cfg, err := Load(path)
		if err != nil {
			return err
		}
		if err := fn(cfg); err != nil {
			return err
		}
		return Save(path, cfg)
	})
}

type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(ptr func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error { *ptr(c) = v; return nil },
	}
}

func intField(ptr func(*Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fmt.Errorf("expected a positive integer, got %q", v)
			}
			*ptr(c) = n
			return nil
		},
	}
}

func oneOf(f field, allowed ...string) field {
	set := f.set
	f.set = func(c *Config, v string) error {
		for _, a := range allowed {
			if v == a {
				return set(c, v)
			}
		}
		return fmt.Errorf("expected one of %s, got %q", strings.Join(allowed, "|"), v)
	}
	return f
}

var fields = map[string]field{
	"storage.backend": oneOf(stringField(func(c *Config) *string { return &c.Storage.Backend }),
		BackendFile, BackendSQLite, BackendMemory),
	"storage.global_path":    stringField(func(c *Config) *string { return &c.Storage.GlobalPath }),
	"storage.workspace_path": stringField(func(c *Config) *string { return &c.Storage.WorkspacePath }),
	"history.max_search":     intField(func(c *Config) *int { return &c.History.MaxSearch }),
	"history.max_file":       intField(func(c *Config) *int { return &c.History.MaxFile }),
	"log.level": oneOf(stringField(func(c *Config) *string { return &c.Log.Level }),
		"debug", "info", "warn", "error"),
	"log.format":           oneOf(stringField(func(c *Config) *string { return &c.Log.Format }), "text", "json"),
	"profiles.global_dir":  stringField(func(c *Config) *string { return &c.Profiles.GlobalDir }),
	"profiles.project_dir": stringField(func(c *Config) *string { return &c.Profiles.ProjectDir }),
	"profiles.automatic_validation": {
		get: func(c *Config) string { return strconv.FormatBool(c.AutomaticValidation()) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", v)
			}
			c.Profiles.AutomaticValidation = &b
			return nil
		},
	},
	"remote.fixture": stringField(func(c *Config) *string { return &c.Remote.Fixture }),
}

// Keys lists the settable keys in sorted order
func Keys() []string {
	out := make([]string, 0, len(fields))
	for k := range fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the value of a dotted key
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(c), nil
}

// Set parses and assigns the value of a dotted key
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := f.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
