// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/webitof/crmdash/internal/api"
	"github.com/webitof/crmdash/internal/ui/styles"
)

// loginModel is the sign-in screen shown whenever no session is live.
type loginModel struct {
	theme  *styles.Theme
	client *api.Client
	newCtx ctxFactory

	username textinput.Model
	password textinput.Model
	focus    int
	spin     spinner.Model

	submitting bool
	errMsg     string
}

func newLoginModel(theme *styles.Theme, client *api.Client, newCtx ctxFactory) *loginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 30
	username.Prompt = ""
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 30
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
	)

	return &loginModel{
		theme:    theme,
		client:   client,
		newCtx:   newCtx,
		username: username,
		password: password,
		spin:     sp,
	}
}

// reset clears the form, e.g. after logout.
func (m *loginModel) reset() {
	m.username.SetValue("")
	m.password.SetValue("")
	m.errMsg = ""
	m.submitting = false
	m.focus = 0
	m.username.Focus()
	m.password.Blur()
}

// loginCmd performs the credential exchange off the update loop.
func (m *loginModel) loginCmd(username, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := m.newCtx()
		defer cancel()
		result, err := client.Login(ctx, username, password)
		return loginDoneMsg{result: result, err: err}
	}
}

func (m *loginModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.submitting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return cmd
		}
		return nil

	case loginDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = loginFailureText(msg.err)
			m.password.SetValue("")
		}
		return nil

	case tea.KeyMsg:
		if m.submitting {
			return nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "down", "up":
			m.toggleFocus()
			return nil

		case "enter":
			if m.focus == 0 {
				m.toggleFocus()
				return nil
			}
			username := strings.TrimSpace(m.username.Value())
			password := m.password.Value()
			if username == "" || password == "" {
				m.errMsg = "username and password are required"
				return nil
			}
			m.errMsg = ""
			m.submitting = true
			return tea.Batch(m.loginCmd(username, password), m.spin.Tick)
		}

		var cmd tea.Cmd
		if m.focus == 0 {
			m.username, cmd = m.username.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
		return cmd
	}
	return nil
}

func (m *loginModel) toggleFocus() {
	if m.focus == 0 {
		m.focus = 1
		m.username.Blur()
		m.password.Focus()
	} else {
		m.focus = 0
		m.password.Blur()
		m.username.Focus()
	}
}

func (m *loginModel) view() string {
	var b strings.Builder
	b.WriteString(m.theme.FormTitle.Render("Sign in"))
	b.WriteString("\n")
	b.WriteString(m.theme.FieldLabel.Render("Username") + " " + m.username.View())
	b.WriteString("\n")
	b.WriteString(m.theme.FieldLabel.Render("Password") + " " + m.password.View())
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString("\n" + m.spin.View() + m.theme.MutedText.Render(" signing in…"))
	case m.errMsg != "":
		b.WriteString("\n" + m.theme.FieldError.Render(m.errMsg))
	}

	b.WriteString("\n\n" + m.theme.MutedText.Render("enter: sign in · ctrl+c: quit"))
	return b.String()
}

// loginFailureText maps a login error onto a short message.
func loginFailureText(err error) string {
	switch {
	case api.IsAuth(err):
		return "invalid username or password"
	case api.IsTransport(err):
		return "could not reach the backend: " + err.Error()
	default:
		return err.Error()
	}
}
