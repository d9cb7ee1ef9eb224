// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces for the crmdash TUI.
//
// Toasts are non-blocking notifications: they render above the status
// bar and auto-dismiss, so an error never traps the user in a modal.
package components

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/webitof/crmdash/internal/ui/styles"
)

// ToastKind classifies a toast for styling.
type ToastKind int

const (
	// ToastInfo is an informational toast.
	ToastInfo ToastKind = iota
	// ToastSuccess confirms a completed action.
	ToastSuccess
	// ToastError reports a recovered failure.
	ToastError
)

// ErrorToastDuration is the display time for error toasts; longer than
// the configured default so there is time to read them.
const ErrorToastDuration = 8 * time.Second

// toastSeq hands out toast identifiers.
var toastSeq atomic.Int64

// Toast is one notification.
type Toast struct {
	ID      int64
	Kind    ToastKind
	Message string
	Expires time.Time
}

// ToastExpiredMsg asks the stack to drop timed-out toasts.
type ToastExpiredMsg struct {
	ID int64
}

// ToastStack holds the active toasts, newest last.
type ToastStack struct {
	theme    *styles.Theme
	duration time.Duration
	toasts   []Toast
}

// NewToastStack creates a stack with the given default display time.
func NewToastStack(theme *styles.Theme, duration time.Duration) *ToastStack {
	if duration <= 0 {
		duration = 4 * time.Second
	}
	return &ToastStack{theme: theme, duration: duration}
}

// Push adds a toast and returns the command that expires it.
func (s *ToastStack) Push(kind ToastKind, message string) tea.Cmd {
	d := s.duration
	if kind == ToastError {
		d = ErrorToastDuration
	}
	t := Toast{
		ID:      toastSeq.Add(1),
		Kind:    kind,
		Message: message,
		Expires: time.Now().Add(d),
	}
	s.toasts = append(s.toasts, t)
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: t.ID}
	})
}

// Expire removes the toast with the given identifier.
func (s *ToastStack) Expire(id int64) {
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

// Clear removes all toasts.
func (s *ToastStack) Clear() {
	s.toasts = nil
}

// View renders the active toasts, one per line, or "" when empty.
func (s *ToastStack) View() string {
	if len(s.toasts) == 0 {
		return ""
	}
	out := ""
	for i, t := range s.toasts {
		if i > 0 {
			out += "\n"
		}
		switch t.Kind {
		case ToastError:
			out += s.theme.ToastError.Render("✗ " + t.Message)
		case ToastSuccess:
			out += s.theme.ToastSuccess.Render("✓ " + t.Message)
		default:
			out += s.theme.ToastInfo.Render("ℹ " + t.Message)
		}
	}
	return out
}
