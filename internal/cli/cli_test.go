// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/webitof/crmdash/internal/config"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"no args starts TUI", nil, CmdTUI},
		{"login", []string{"login"}, CmdLogin},
		{"logout", []string{"logout"}, CmdLogout},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"config", []string{"config", "show"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"-v"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"--help"}, CmdHelp},
		{"unknown falls back to help", []string{"frobnicate"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := parseArgs(tt.args)
			if got != tt.want {
				t.Errorf("parseArgs(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseArgs_PassesRemainder(t *testing.T) {
	_, rest := parseArgs([]string{"config", "set", "ui.theme", "dark"})
	if len(rest) != 3 || rest[0] != "set" || rest[2] != "dark" {
		t.Errorf("rest = %v", rest)
	}
}

func TestSetConfigKey(t *testing.T) {
	cfg := config.Default()

	if err := setConfigKey(&cfg, "backend.base_url", "http://localhost:5000"); err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.BaseURL != "http://localhost:5000" {
		t.Errorf("base URL = %q", cfg.Backend.BaseURL)
	}

	if err := setConfigKey(&cfg, "ui.theme", "light"); err != nil {
		t.Fatal(err)
	}
	if err := setConfigKey(&cfg, "ui.theme", "neon"); err == nil {
		t.Error("invalid theme must be rejected")
	}

	if err := setConfigKey(&cfg, "backend.timeout_secs", "abc"); err == nil {
		t.Error("non-numeric timeout must be rejected")
	}
	if err := setConfigKey(&cfg, "activity.enabled", "false"); err != nil {
		t.Fatal(err)
	}
	if cfg.Activity.Enabled {
		t.Error("activity.enabled not applied")
	}

	if err := setConfigKey(&cfg, "nope.nothing", "x"); err == nil {
		t.Error("unknown key must be rejected")
	}
}
