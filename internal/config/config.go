package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator"
	"github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
)

const appName = "otterboard"

const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	Library   LibraryConfig   `toml:"library"`
	Capture   CaptureConfig   `toml:"capture"`
	Server    ServerConfig    `toml:"server"`
	Logging   LoggingConfig   `toml:"logging"`
}

type StorageConfig struct {
	Backend string `toml:"backend" validate:"required,oneof=bolt sqlite memory"`
	Path    string `toml:"path"`
}

type ClipboardConfig struct {
	PollInterval   string   `toml:"poll_interval"`
	DropDir        string   `toml:"drop_dir"`
	IgnorePatterns []string `toml:"ignore_patterns"`
	UseRegex       bool     `toml:"use_regex"`
}

type LibraryConfig struct {
	MaxItems          int  `toml:"max_items" validate:"min=0"`
	DedupeConsecutive bool `toml:"dedupe_consecutive"`
}

type CaptureConfig struct {
	Tool string `toml:"tool"`
}

type ServerConfig struct {
	Address  string `toml:"address" validate:"required"`
	User     string `toml:"user" validate:"required"`
	Database string `toml:"database"`
}

type LoggingConfig struct {
	Level string `toml:"level" validate:"required,oneof=debug info warn error"`
}

func Default() Config {
	return Config{
		Storage:   StorageConfig{Backend: BackendBolt},
		Clipboard: ClipboardConfig{PollInterval: "350ms"},
		Library:   LibraryConfig{MaxItems: 5000, DedupeConsecutive: true},
		Server:    ServerConfig{Address: "127.0.0.1:5000", User: "local"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Path is where the config file lives: $XDG_CONFIG_HOME/otterboard/config.toml.
func Path() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Load reads the config at path, or at Path() when path is empty. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	if _, err := c.PollInterval(); err != nil {
		return fmt.Errorf("config validation error: clipboard.poll_interval: %w", err)
	}
	return nil
}

func (c Config) PollInterval() (time.Duration, error) {
	s := strings.TrimSpace(c.Clipboard.PollInterval)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative interval %s", d)
	}
	return d, nil
}

// StoragePath resolves the library store location, defaulting to a file in
// the XDG data dir named after the backend.
func (c Config) StoragePath() (string, error) {
	if p := strings.TrimSpace(c.Storage.Path); p != "" {
		return homedir.Expand(p)
	}
	name := "library.db"
	if c.Storage.Backend == BackendSQLite {
		name = "library.sqlite"
	}
	return filepath.Join(xdg.DataHome, appName, name), nil
}

// ServerDatabase resolves the sqlite file backing the HTTP service.
func (c Config) ServerDatabase() (string, error) {
	if p := strings.TrimSpace(c.Server.Database); p != "" {
		return homedir.Expand(p)
	}
	return filepath.Join(xdg.DataHome, appName, "server.sqlite"), nil
}

// DropDir resolves the drop directory, or "" when disabled.
func (c Config) DropDir() (string, error) {
	p := strings.TrimSpace(c.Clipboard.DropDir)
	if p == "" {
		return "", nil
	}
	return homedir.Expand(p)
}
