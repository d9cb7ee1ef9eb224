// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/webitof/crmdash/internal/ui/styles"
	"github.com/webitof/crmdash/internal/util"
)

// Header renders the top bar: application title on the left, the
// acting identity (username and role) on the right.
func Header(theme *styles.Theme, width int, screen, username, role string) string {
	title := theme.HeaderTitle.Render("crmdash")
	if screen != "" {
		title += theme.MutedText.Render(" · " + screen)
	}

	who := ""
	if username != "" {
		who = theme.HeaderUser.Render(username) + theme.MutedText.Render(" ("+role+")")
	}

	gap := width - lipgloss.Width(title) - lipgloss.Width(who) - 2
	if gap < 1 {
		gap = 1
	}
	return theme.Header.Render(title + util.PadWidth("", gap) + who)
}

// StatusBar renders key hints along the bottom. Hints that do not fit
// the width are dropped from the right.
func StatusBar(theme *styles.Theme, width int, hints [][2]string) string {
	out := ""
	used := 0
	for i, h := range hints {
		// Plain-text width of the piece about to be appended.
		w := len(h[0]) + 1 + len(h[1])
		if i > 0 {
			w += 3
		}
		if used+w > width {
			break
		}
		used += w
		if i > 0 {
			out += theme.StatusBar.Render("·")
		}
		out += theme.StatusKey.Render(h[0]) + theme.StatusBar.Render(" "+h[1])
	}
	return out
}
