// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Backend.BaseURL == "" {
		t.Error("default base URL must be set")
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Timeout())
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("theme = %q, want auto", cfg.UI.Theme)
	}
	if !cfg.Activity.Enabled {
		t.Error("activity log should default on")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[ui]\ntheme = \"light\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q, want light", cfg.UI.Theme)
	}
	if cfg.Backend.BaseURL != Default().Backend.BaseURL {
		t.Error("unset sections must keep defaults")
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should report a parse failure")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CRMDASH_BASE_URL", "http://localhost:5000")
	t.Setenv("CRMDASH_THEME", "dark")
	t.Setenv("CRMDASH_TIMEOUT_SECS", "10")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.BaseURL != "http://localhost:5000" {
		t.Errorf("base URL = %q", cfg.Backend.BaseURL)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	if cfg.Backend.TimeoutSecs != 10 {
		t.Errorf("timeout = %d", cfg.Backend.TimeoutSecs)
	}
}

func TestValidate_ClampsOutOfRange(t *testing.T) {
	cfg := Config{
		Backend:  BackendConfig{BaseURL: "", TimeoutSecs: -1},
		UI:       UIConfig{Theme: "neon", ToastSecs: 999},
		Activity: ActivityConfig{MaxEntries: 0},
	}
	cfg.Validate()

	def := Default()
	if cfg.Backend.BaseURL != def.Backend.BaseURL {
		t.Error("empty base URL must fall back to default")
	}
	if cfg.Backend.TimeoutSecs != def.Backend.TimeoutSecs {
		t.Error("negative timeout must fall back to default")
	}
	if cfg.UI.Theme != def.UI.Theme {
		t.Error("unknown theme must fall back to default")
	}
	if cfg.UI.ToastSecs != def.UI.ToastSecs {
		t.Error("oversized toast duration must fall back to default")
	}
	if cfg.Activity.MaxEntries != def.Activity.MaxEntries {
		t.Error("zero max entries must fall back to default")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Backend.BaseURL = "http://localhost:9999"
	cfg.UI.Theme = "light"
	cfg.Activity.MaxEntries = 50

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip: got %+v, want %+v", loaded, cfg)
	}
}
