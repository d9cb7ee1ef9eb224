// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/webitof/crmdash/internal/activity"
	"github.com/webitof/crmdash/internal/api"
	"github.com/webitof/crmdash/internal/config"
	"github.com/webitof/crmdash/internal/policy"
)

// loginDoneMsg reports the outcome of a login attempt.
type loginDoneMsg struct {
	result api.LoginResult
	err    error
}

// refreshDoneMsg reports the outcome of a cache refresh.
type refreshDoneMsg struct {
	resource policy.Resource
	err      error
}

// mutationDoneMsg reports the outcome of a create/update/delete/convert.
type mutationDoneMsg struct {
	resource policy.Resource
	verb     string
	label    string // short human description of the record
	err      error
}

// staffDoneMsg reports the outcome of a background staff roster
// refresh. Failures are logged, never surfaced: the roster only feeds
// assignment pickers.
type staffDoneMsg struct {
	err error
}

// statsDoneMsg reports the outcome of a stats snapshot refresh.
type statsDoneMsg struct {
	err error
}

// activityDoneMsg delivers recent local activity entries.
type activityDoneMsg struct {
	entries []activity.Entry
	err     error
}

// configReloadedMsg delivers a live-reloaded configuration.
type configReloadedMsg struct {
	cfg config.Config
}

// ConfigReloaded wraps a reloaded configuration for Program.Send; the
// file watcher lives outside this package.
func ConfigReloaded(cfg config.Config) tea.Msg {
	return configReloadedMsg{cfg: cfg}
}
