// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the bubbletea program tying the screens together.
//
// The root model owns authentication state, screen routing, and the
// toast stack. Screens never talk to each other: every cross-cutting
// reaction (stats recount after a mutation, activity reload, access
// denial) happens here, in one place.
package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/webitof/crmdash/internal/activity"
	"github.com/webitof/crmdash/internal/api"
	"github.com/webitof/crmdash/internal/config"
	"github.com/webitof/crmdash/internal/model"
	"github.com/webitof/crmdash/internal/policy"
	"github.com/webitof/crmdash/internal/session"
	"github.com/webitof/crmdash/internal/stats"
	"github.com/webitof/crmdash/internal/store"
	"github.com/webitof/crmdash/internal/ui/components"
	"github.com/webitof/crmdash/internal/ui/styles"
)

// Options carries the shared dependencies into the UI.
type Options struct {
	Config   config.Config
	Client   *api.Client
	Sessions *session.Store
	Stores   *store.Stores
	Stats    *stats.Aggregator
	Activity *activity.Log // nil when disabled
}

// App is the root bubbletea model.
type App struct {
	cfg      config.Config
	theme    *styles.Theme
	keys     keyMap
	sessions *session.Store
	stores   *store.Stores
	agg      *stats.Aggregator

	login     *loginModel
	dashboard *dashboardModel
	screens   map[policy.Resource]lister
	help      helpModel

	authed   bool
	active   policy.Resource
	showHelp bool

	toasts *components.ToastStack

	width  int
	height int
}

// New builds the root model. A previously persisted session, if any,
// must already be loaded into Options.Sessions.
func New(opts Options) *App {
	theme := styles.New(opts.Config.UI.Theme)
	newCtx := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), opts.Config.Timeout())
	}
	staff := func() []model.User { return opts.Stores.Staff.Rows() }

	dashboard := newDashboardModel(theme, opts.Stats, opts.Activity, newCtx)

	screens := map[policy.Resource]lister{
		policy.ResourceDashboard: dashboard,
		policy.ResourceUsers:     newUsersList(theme, opts.Stores, newCtx, staff),
		policy.ResourceLeads:     newLeadsList(theme, opts.Stores, newCtx, staff),
		policy.ResourceClients:   newClientsList(theme, opts.Stores, newCtx, staff),
		policy.ResourceProjects:  newProjectsList(theme, opts.Stores, newCtx, staff),
		policy.ResourceReports:   newReportsModel(theme, opts.Stats, newCtx),
	}

	a := &App{
		cfg:       opts.Config,
		theme:     theme,
		keys:      defaultKeyMap(),
		sessions:  opts.Sessions,
		stores:    opts.Stores,
		agg:       opts.Stats,
		login:     newLoginModel(theme, opts.Client, newCtx),
		dashboard: dashboard,
		screens:   screens,
		active:    policy.ResourceDashboard,
		toasts:    components.NewToastStack(theme, opts.Config.ToastDuration()),
	}

	if sess := opts.Sessions.Current(); sess != nil {
		a.authed = true
		a.dashboard.setIdentity(sess.Username, sess.Role)
	}
	return a
}

// newCtx returns a per-operation context with the configured timeout.
func (a *App) newCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.cfg.Timeout())
}

// role returns the acting role, empty when logged out.
func (a *App) role() model.Role {
	if sess := a.sessions.Current(); sess != nil {
		return sess.Role
	}
	return ""
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	if !a.authed {
		return textinput.Blink
	}
	return tea.Batch(a.dashboard.enter(), a.staffRefreshCmd())
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, a.broadcast(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case components.ToastExpiredMsg:
		a.toasts.Expire(msg.ID)
		return a, nil

	case loginDoneMsg:
		if msg.err != nil {
			return a, a.login.update(msg)
		}
		return a.completeLogin(msg.result)

	case refreshDoneMsg:
		var cmds []tea.Cmd
		if msg.err != nil {
			cmds = append(cmds, a.reportFailure("refresh failed", msg.err))
		}
		cmds = append(cmds, a.broadcast(msg))
		return a, tea.Batch(cmds...)

	case mutationDoneMsg:
		return a.handleMutationDone(msg)

	case statsDoneMsg:
		var cmds []tea.Cmd
		if msg.err != nil && a.active == policy.ResourceReports {
			cmds = append(cmds, a.reportFailure("reports refresh failed", msg.err))
		}
		cmds = append(cmds, a.broadcast(msg))
		return a, tea.Batch(cmds...)

	case staffDoneMsg:
		if msg.err != nil {
			log.Printf("app: staff roster refresh failed: %v", msg.err)
		}
		return a, nil

	case configReloadedMsg:
		a.cfg = msg.cfg
		return a, a.toasts.Push(components.ToastInfo, "configuration reloaded")

	default:
		// Spinner ticks, activity results, and anything else a screen
		// produced for itself.
		if !a.authed {
			return a, a.login.update(msg)
		}
		return a, a.broadcast(msg)
	}
}

// broadcast delivers msg to every screen. Screens ignore what is not
// theirs; refresh results carry the resource they belong to.
func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, s := range a.screens {
		if cmd := s.update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if !a.authed {
		if cmd := a.login.update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	if !a.authed {
		return a, a.login.update(msg)
	}

	if a.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			a.showHelp = false
		}
		return a, nil
	}

	// A screen in form or confirm mode owns the keyboard outright, so
	// typing a digit into a name field never switches screens.
	if active := a.screens[a.active]; active.capturingInput() {
		return a, active.update(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return a, nil
	case key.Matches(msg, a.keys.Logout):
		return a.logout()
	case key.Matches(msg, a.keys.Dashboard):
		return a.goTo(policy.ResourceDashboard)
	case key.Matches(msg, a.keys.Users):
		return a.goTo(policy.ResourceUsers)
	case key.Matches(msg, a.keys.Leads):
		return a.goTo(policy.ResourceLeads)
	case key.Matches(msg, a.keys.Clients):
		return a.goTo(policy.ResourceClients)
	case key.Matches(msg, a.keys.Projects):
		return a.goTo(policy.ResourceProjects)
	case key.Matches(msg, a.keys.Reports):
		return a.goTo(policy.ResourceReports)
	}

	return a, a.screens[a.active].update(msg)
}

// goTo switches to the requested screen after an access check. A
// denied switch stays put and says so; the screen is also absent from
// the menu, so this only triggers on a memorized key.
func (a *App) goTo(r policy.Resource) (tea.Model, tea.Cmd) {
	if !policy.Allowed(a.role(), r) {
		return a, a.toasts.Push(components.ToastError, "access denied: "+resourceTitle(r))
	}
	if r == a.active {
		return a, nil
	}
	a.active = r
	return a, a.screens[r].enter()
}

// =============================================================================
// AUTH TRANSITIONS
// =============================================================================

// completeLogin installs the authenticated session and lands on the
// dashboard. A persist failure degrades to a this-run-only session.
func (a *App) completeLogin(result api.LoginResult) (tea.Model, tea.Cmd) {
	if !result.User.Role.Valid() {
		return a, tea.Batch(
			a.login.update(loginDoneMsg{err: fmt.Errorf("backend returned unknown role %q", result.User.Role)}),
		)
	}

	var cmds []tea.Cmd
	sess := session.Session{
		ID:       result.User.ID,
		Username: result.User.Username,
		Role:     result.User.Role,
		Token:    result.Token,
	}
	if err := a.sessions.Login(sess); err != nil {
		log.Printf("app: session persist failed: %v", err)
		cmds = append(cmds, a.toasts.Push(components.ToastError, "session not saved; sign-in will not survive restart"))
	}

	a.authed = true
	a.login.update(loginDoneMsg{}) // clear the submitting spinner
	a.dashboard.setIdentity(sess.Username, sess.Role)
	a.active = policy.ResourceDashboard

	cmds = append(cmds, a.dashboard.enter(), a.staffRefreshCmd())
	return a, tea.Batch(cmds...)
}

// logout drops the session, every cached collection, and all toasts.
func (a *App) logout() (tea.Model, tea.Cmd) {
	if err := a.sessions.Logout(); err != nil {
		log.Printf("app: logout cleanup failed: %v", err)
	}
	a.stores.Reset()
	a.toasts.Clear()
	a.authed = false
	a.showHelp = false
	a.active = policy.ResourceDashboard
	a.dashboard.setIdentity("", "")
	a.login.reset()
	return a, textinput.Blink
}

// staffRefreshCmd warms the staff roster behind assignment pickers.
// Client-role sessions skip it: the backend would deny the call.
func (a *App) staffRefreshCmd() tea.Cmd {
	if !policy.Allowed(a.role(), policy.ResourceLeads) {
		return nil
	}
	staff := a.stores.Staff
	newCtx := a.newCtx
	return func() tea.Msg {
		ctx, cancel := newCtx()
		defer cancel()
		return staffDoneMsg{err: staff.Refresh(ctx)}
	}
}

// =============================================================================
// MUTATION OUTCOMES
// =============================================================================

// handleMutationDone turns a mutation outcome into a toast and, on
// success, schedules the stats recount. The caches already hold the
// confirmed state by the time this message arrives.
func (a *App) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch {
	case msg.err == nil:
		cmds = append(cmds, a.toasts.Push(components.ToastSuccess, verbPast(msg.verb)+" "+msg.label))
		if policy.Allowed(a.role(), policy.ResourceReports) {
			cmds = append(cmds, statsCmd(a.agg, a.newCtx))
		}
		cmds = append(cmds, a.dashboard.enter())

	case msg.verb == "delete" && api.IsNotFound(msg.err):
		// Someone else deleted it first; the cache already reconciled.
		cmds = append(cmds, a.toasts.Push(components.ToastInfo, msg.label+" was already deleted"))

	default:
		cmds = append(cmds, a.reportFailure(msg.verb+" "+msg.label+" failed", msg.err))
	}

	cmds = append(cmds, a.broadcast(msg))
	return a, tea.Batch(cmds...)
}

// reportFailure pushes an error toast, downgrading an expired session
// to a pointed hint.
func (a *App) reportFailure(prefix string, err error) tea.Cmd {
	if api.IsAuth(err) {
		return a.toasts.Push(components.ToastError, "session expired: log out (ctrl+o) and sign in again")
	}
	return a.toasts.Push(components.ToastError, prefix+": "+err.Error())
}

// verbPast maps a mutation verb onto its past tense for toasts.
func verbPast(verb string) string {
	switch verb {
	case "create":
		return "created"
	case "update":
		return "updated"
	case "delete":
		return "deleted"
	case "convert":
		return "converted"
	default:
		return verb
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return ""
	}

	if !a.authed {
		header := components.Header(a.theme, a.width, "", "", "")
		return header + "\n\n" + a.login.view() + "\n" + a.toasts.View()
	}

	sess := a.sessions.Current()
	username, role := "", ""
	if sess != nil {
		username, role = sess.Username, string(sess.Role)
	}

	active := a.screens[a.active]
	header := components.Header(a.theme, a.width, active.titleName(), username, role)

	body := active.view()
	if a.showHelp {
		body = a.help.view(a.width)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	if t := a.toasts.View(); t != "" {
		b.WriteString(t)
		b.WriteString("\n")
	}
	b.WriteString(components.StatusBar(a.theme, a.width, a.statusHints(active)))
	return b.String()
}

// statusHints merges the active screen's hints with the global ones.
func (a *App) statusHints(active lister) [][2]string {
	hints := [][2]string{}
	if a.showHelp {
		return [][2]string{{"esc", "close help"}}
	}
	if !active.capturingInput() {
		hints = append(hints, active.hints()...)
		hints = append(hints,
			[2]string{"?", "help"},
			[2]string{"ctrl+o", "logout"},
			[2]string{"ctrl+c", "quit"},
		)
	}
	return hints
}
