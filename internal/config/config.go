// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// crmdash.
//
// Configuration is TOML with sensible defaults and environment
// variable overrides. Locations, in order of precedence:
//   - path given on the command line
//   - ~/.crmdash/config.toml
//   - built-in defaults
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"

	"github.com/webitof/crmdash/internal/util"
)

// Config is the complete crmdash configuration.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	UI       UIConfig       `toml:"ui"`
	Activity ActivityConfig `toml:"activity"`
}

// BackendConfig points the client at the CRM backend.
type BackendConfig struct {
	// BaseURL is the backend root; all endpoints hang off it.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the transport timeout per request. No retries are
	// layered on top.
	TimeoutSecs int `toml:"timeout_secs"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme is "dark", "light", or "auto" (detect from terminal).
	Theme string `toml:"theme"`
	// ToastSecs is how long success/info toasts stay on screen.
	ToastSecs int `toml:"toast_secs"`
}

// ActivityConfig controls the local activity log.
type ActivityConfig struct {
	// Enabled turns the local mutation log on or off.
	Enabled bool `toml:"enabled"`
	// MaxEntries bounds the log; older rows are pruned past it.
	MaxEntries int `toml:"max_entries"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:     "https://webitofbackend-1.onrender.com",
			TimeoutSecs: 30,
		},
		UI: UIConfig{
			Theme:     "auto",
			ToastSecs: 4,
		},
		Activity: ActivityConfig{
			Enabled:    true,
			MaxEntries: 500,
		},
	}
}

// Timeout returns the backend timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// ToastDuration returns the toast display time as a duration.
func (c Config) ToastDuration() time.Duration {
	return time.Duration(c.UI.ToastSecs) * time.Second
}

// Validate normalizes out-of-range values back to defaults.
func (c *Config) Validate() {
	def := Default()
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = def.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs <= 0 || c.Backend.TimeoutSecs > 300 {
		c.Backend.TimeoutSecs = def.Backend.TimeoutSecs
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.ToastSecs <= 0 || c.UI.ToastSecs > 60 {
		c.UI.ToastSecs = def.UI.ToastSecs
	}
	if c.Activity.MaxEntries <= 0 {
		c.Activity.MaxEntries = def.Activity.MaxEntries
	}
}

// =============================================================================
// LOCATIONS
// =============================================================================

// Dir returns the crmdash state directory (~/.crmdash), creating it if
// needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".crmdash")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config at path, applying defaults for anything unset,
// then environment overrides, then validation. A missing file is not
// an error: defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	cfg.Validate()
	return cfg, nil
}

// LoadDefault loads from the default path.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), err
	}
	return Load(path)
}

// Save writes the config to path atomically.
func Save(cfg Config, path string) error {
	var buf []byte
	{
		w := &tomlBuffer{}
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		buf = w.data
	}
	return util.AtomicWriteFile(path, buf, 0o600)
}

// tomlBuffer adapts toml.NewEncoder to an in-memory buffer so the file
// write can go through the atomic path.
type tomlBuffer struct {
	data []byte
}

func (b *tomlBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// applyEnv layers CRMDASH_* environment overrides onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CRMDASH_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("CRMDASH_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutSecs = n
		}
	}
	if v := os.Getenv("CRMDASH_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// =============================================================================
// LIVE RELOAD
// =============================================================================

// Watch re-loads the config whenever the file at path changes and
// delivers the result to onChange. It returns a stop function. Editors
// that replace the file (rename-over) are handled by re-watching the
// parent directory.
func Watch(path string, onChange func(Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					log.Printf("config: reload failed: %v", err)
					continue
				}
				log.Printf("config: reloaded from %s", path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("config: watcher error: %v", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
