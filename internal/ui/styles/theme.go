// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the crmdash TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects
// the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Core palette
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Danger  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Muted   lipgloss.Color

	// Chrome
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderUser  lipgloss.Style
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style

	// Content
	Card      lipgloss.Style
	CardTitle lipgloss.Style
	CardValue lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	ErrorText lipgloss.Style
	MutedText lipgloss.Style

	// Forms
	FormTitle  lipgloss.Style
	FieldLabel lipgloss.Style
	FieldError lipgloss.Style

	// Toasts
	ToastError   lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastInfo    lipgloss.Style

	// Charts
	ChartBar   lipgloss.Style
	ChartLabel lipgloss.Style
}

// New builds a theme. mode is "dark", "light", or "auto".
func New(mode string) *Theme {
	isDark := true
	switch mode {
	case "light":
		isDark = false
	case "dark":
		isDark = true
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),

		Primary: lipgloss.Color("#7C3AED"),
		Accent:  lipgloss.Color("#06B6D4"),
		Danger:  lipgloss.Color("#F43F5E"),
		Success: lipgloss.Color("#10B981"),
		Warning: lipgloss.Color("#F59E0B"),
		Muted:   lipgloss.Color("#6B7280"),
	}

	text := lipgloss.Color("#E5E7EB")
	if !isDark {
		text = lipgloss.Color("#1F2937")
	}

	t.Header = lipgloss.NewStyle().Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	t.HeaderUser = lipgloss.NewStyle().Foreground(t.Accent)
	t.StatusBar = lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 1)
	t.StatusKey = lipgloss.NewStyle().Foreground(t.Accent)

	t.Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 2)
	t.CardTitle = lipgloss.NewStyle().Foreground(t.Muted)
	t.CardValue = lipgloss.NewStyle().Bold(true).Foreground(text)
	t.Label = lipgloss.NewStyle().Foreground(t.Muted)
	t.Value = lipgloss.NewStyle().Foreground(text)
	t.ErrorText = lipgloss.NewStyle().Foreground(t.Danger)
	t.MutedText = lipgloss.NewStyle().Foreground(t.Muted)

	t.FormTitle = lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1)
	t.FieldLabel = lipgloss.NewStyle().Foreground(t.Muted).Width(14)
	t.FieldError = lipgloss.NewStyle().Foreground(t.Danger)

	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	t.ToastError = toast.Foreground(lipgloss.Color("#FFFFFF")).Background(t.Danger)
	t.ToastSuccess = toast.Foreground(lipgloss.Color("#FFFFFF")).Background(t.Success)
	t.ToastInfo = toast.Foreground(lipgloss.Color("#FFFFFF")).Background(t.Accent)

	t.ChartBar = lipgloss.NewStyle().Foreground(t.Primary)
	t.ChartLabel = lipgloss.NewStyle().Foreground(t.Muted)

	return t
}
