// Package config loads viewer configuration from an optional YAML file
// merged with CITYTWIN_* environment variables. Environment variables
// take precedence over file values.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all settings of the viewer and its CLI tools.
type Config struct {
	// SceneDir is the directory holding the scene manifest
	SceneDir string `koanf:"scene_dir"`

	// BackendURL is the base URL of the city model service. Empty
	// disables custom-mesh substitution and property refresh.
	BackendURL string `koanf:"backend_url"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `koanf:"log_level"`

	// WatchDebounce collapses bursts of scene file writes into one
	// reload
	WatchDebounce time.Duration `koanf:"watch_debounce"`

	// AutoReload reloads the scene when its files change on disk
	AutoReload bool `koanf:"auto_reload"`
}

// Default values for optional settings.
const (
	DefaultLogLevel      = "info"
	DefaultWatchDebounce = 500 * time.Millisecond
)

// Load reads configuration from an optional YAML file and the
// environment. A missing file path is fine; a named file that fails to
// load is an error.
func Load(configFilePath string) (*Config, error) {
	k := koanf.New(".")

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFilePath, err)
		}
	}

	// CITYTWIN_SCENE_DIR -> scene_dir
	err := k.Load(env.Provider("CITYTWIN_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CITYTWIN_"))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{
		LogLevel:      DefaultLogLevel,
		WatchDebounce: DefaultWatchDebounce,
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = DefaultWatchDebounce
	}
	return cfg, nil
}

// SlogLevel maps the configured log level to a slog level
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
