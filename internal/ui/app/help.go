// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	_ "embed"

	"github.com/charmbracelet/glamour"
)

//go:embed help.md
var helpMarkdown string

// helpModel is the key-reference overlay, rendered once and cached.
type helpModel struct {
	rendered string
}

// view renders the help markdown for the terminal. Falls back to the
// raw markdown if the renderer cannot be built.
func (m *helpModel) view(width int) string {
	if m.rendered != "" {
		return m.rendered
	}

	wrap := width - 4
	if wrap < 40 {
		wrap = 40
	}
	if wrap > 100 {
		wrap = 100
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	m.rendered = out
	return out
}
