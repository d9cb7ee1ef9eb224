// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/webitof/crmdash/internal/activity"
	"github.com/webitof/crmdash/internal/model"
	"github.com/webitof/crmdash/internal/policy"
	"github.com/webitof/crmdash/internal/stats"
	"github.com/webitof/crmdash/internal/ui/styles"
	"github.com/webitof/crmdash/internal/util"
)

// dashboardModel is the landing screen. Every role may see it; the
// stat cards only appear for roles that may read reports, and the
// navigation menu only lists reachable screens.
type dashboardModel struct {
	theme  *styles.Theme
	agg    *stats.Aggregator
	log    *activity.Log // nil when the activity log is disabled
	newCtx ctxFactory

	role     model.Role
	username string

	entries []activity.Entry
	width   int
}

func newDashboardModel(theme *styles.Theme, agg *stats.Aggregator, log *activity.Log, newCtx ctxFactory) *dashboardModel {
	return &dashboardModel{theme: theme, agg: agg, log: log, newCtx: newCtx}
}

func (m *dashboardModel) resource() policy.Resource { return policy.ResourceDashboard }
func (m *dashboardModel) titleName() string         { return "Dashboard" }
func (m *dashboardModel) capturingInput() bool      { return false }

// setIdentity is called on login and logout.
func (m *dashboardModel) setIdentity(username string, role model.Role) {
	m.username = username
	m.role = role
	m.entries = nil
}

// enter fetches the stat snapshot (when permitted) and the recent
// local activity.
func (m *dashboardModel) enter() tea.Cmd {
	var cmds []tea.Cmd
	if policy.Allowed(m.role, policy.ResourceReports) {
		cmds = append(cmds, statsCmd(m.agg, m.newCtx))
	}
	if m.log != nil {
		cmds = append(cmds, activityCmd(m.log))
	}
	return tea.Batch(cmds...)
}

func (m *dashboardModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case activityDoneMsg:
		if msg.err == nil {
			m.entries = msg.entries
		}
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m.enter()
		}
	}
	return nil
}

func (m *dashboardModel) view() string {
	var b strings.Builder
	b.WriteString(m.theme.Value.Render("Welcome back, ") + m.theme.HeaderUser.Render(m.username))
	b.WriteString("\n\n")

	if policy.Allowed(m.role, policy.ResourceReports) {
		snap := m.agg.Snapshot()
		cards := []string{
			statCard(m.theme, "Leads", snap.TotalLeads),
			statCard(m.theme, "Clients", snap.TotalClients),
			statCard(m.theme, "Projects", snap.TotalProjects),
		}
		if policy.Allowed(m.role, policy.ResourceUsers) {
			cards = append(cards, statCard(m.theme, "Users", snap.TotalUsers))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
		b.WriteString("\n\n")
	}

	b.WriteString(m.theme.CardTitle.Render("Screens"))
	b.WriteString("\n")
	for _, r := range policy.AllowedResources(m.role) {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			m.theme.StatusKey.Render(resourceDigit(r)),
			m.theme.Value.Render(resourceTitle(r))))
	}

	if m.log != nil && len(m.entries) > 0 {
		b.WriteString("\n" + m.theme.CardTitle.Render("Recent activity"))
		b.WriteString("\n")
		for _, e := range m.entries {
			line := fmt.Sprintf("  %s %s %sd %s",
				e.At.Format("15:04"), e.Actor, e.Verb, e.Kind)
			if e.Verb == "convert" {
				line = fmt.Sprintf("  %s %s converted a %s",
					e.At.Format("15:04"), e.Actor, e.Kind)
			}
			b.WriteString(m.theme.MutedText.Render(util.TruncateWidth(line, max(m.width-2, 20))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m *dashboardModel) hints() [][2]string {
	return [][2]string{{"r", "refresh"}, {"0-5", "screens"}}
}

// statCard renders one bordered counter card.
func statCard(theme *styles.Theme, title string, value int) string {
	return theme.Card.Render(
		theme.CardTitle.Render(title) + "\n" +
			theme.CardValue.Render(fmt.Sprintf("%d", value)))
}

// resourceDigit maps a resource onto its fixed navigation key. The
// digits never shift with role: a hidden screen leaves a gap.
func resourceDigit(r policy.Resource) string {
	switch r {
	case policy.ResourceDashboard:
		return "0"
	case policy.ResourceUsers:
		return "1"
	case policy.ResourceLeads:
		return "2"
	case policy.ResourceClients:
		return "3"
	case policy.ResourceProjects:
		return "4"
	case policy.ResourceReports:
		return "5"
	default:
		return "?"
	}
}

// resourceTitle maps a resource onto its screen title.
func resourceTitle(r policy.Resource) string {
	switch r {
	case policy.ResourceDashboard:
		return "Dashboard"
	case policy.ResourceUsers:
		return "Users"
	case policy.ResourceLeads:
		return "Leads"
	case policy.ResourceClients:
		return "Clients"
	case policy.ResourceProjects:
		return "Projects"
	case policy.ResourceReports:
		return "Reports"
	default:
		return string(r)
	}
}
