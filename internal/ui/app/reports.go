// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/webitof/crmdash/internal/activity"
	"github.com/webitof/crmdash/internal/policy"
	"github.com/webitof/crmdash/internal/stats"
	"github.com/webitof/crmdash/internal/ui/components"
	"github.com/webitof/crmdash/internal/ui/styles"
)

// statsCmd refreshes the reports snapshot off the update loop.
func statsCmd(agg *stats.Aggregator, newCtx ctxFactory) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := newCtx()
		defer cancel()
		_, err := agg.Refresh(ctx)
		return statsDoneMsg{err: err}
	}
}

// activityCmd loads recent local activity entries.
func activityCmd(log *activity.Log) tea.Cmd {
	return func() tea.Msg {
		entries, err := log.Recent(8)
		return activityDoneMsg{entries: entries, err: err}
	}
}

// reportsModel is the read-only reports screen: totals, recent-window
// counters, and the stage/status breakdown charts.
type reportsModel struct {
	theme  *styles.Theme
	agg    *stats.Aggregator
	newCtx ctxFactory

	width int
}

func newReportsModel(theme *styles.Theme, agg *stats.Aggregator, newCtx ctxFactory) *reportsModel {
	return &reportsModel{theme: theme, agg: agg, newCtx: newCtx}
}

func (m *reportsModel) resource() policy.Resource { return policy.ResourceReports }
func (m *reportsModel) titleName() string         { return "Reports" }
func (m *reportsModel) capturingInput() bool      { return false }

func (m *reportsModel) enter() tea.Cmd {
	return statsCmd(m.agg, m.newCtx)
}

func (m *reportsModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m.enter()
		}
	}
	return nil
}

func (m *reportsModel) view() string {
	snap := m.agg.Snapshot()

	var b strings.Builder
	if !m.agg.Fetched() {
		if err := m.agg.Err(); err != nil {
			b.WriteString(m.theme.ErrorText.Render("reports unavailable: " + err.Error()))
			b.WriteString("\n\n")
		} else {
			b.WriteString(m.theme.MutedText.Render("loading reports…"))
			b.WriteString("\n\n")
		}
	}

	totals := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard(m.theme, "Users", snap.TotalUsers),
		statCard(m.theme, "Leads", snap.TotalLeads),
		statCard(m.theme, "Clients", snap.TotalClients),
		statCard(m.theme, "Projects", snap.TotalProjects),
	)
	b.WriteString(totals)
	b.WriteString("\n")

	recents := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard(m.theme, "New leads (30d)", snap.RecentLeads),
		statCard(m.theme, "New clients (30d)", snap.RecentClients),
		statCard(m.theme, "New projects (30d)", snap.RecentProjects),
	)
	b.WriteString(recents)
	b.WriteString("\n\n")

	b.WriteString(m.theme.CardTitle.Render("Leads by stage"))
	b.WriteString("\n")
	b.WriteString(components.BarChart(m.theme, snap.LeadStages, 14, chartWidth(m.width)))
	b.WriteString("\n\n")

	b.WriteString(m.theme.CardTitle.Render("Projects by status"))
	b.WriteString("\n")
	b.WriteString(components.BarChart(m.theme, snap.ProjectStatuses, 14, chartWidth(m.width)))

	return b.String()
}

func (m *reportsModel) hints() [][2]string {
	return [][2]string{{"r", "refresh"}}
}

// chartWidth sizes the bar area to the terminal, leaving room for the
// label column and count suffix.
func chartWidth(termWidth int) int {
	w := termWidth - 24
	if w < 10 {
		w = 10
	}
	if w > 50 {
		w = 50
	}
	return w
}
