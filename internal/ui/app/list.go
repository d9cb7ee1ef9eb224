// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/webitof/crmdash/internal/model"
	"github.com/webitof/crmdash/internal/policy"
	"github.com/webitof/crmdash/internal/store"
	"github.com/webitof/crmdash/internal/ui/styles"
)

// listMode is the interaction mode of an entity screen.
type listMode int

const (
	modeBrowse listMode = iota
	modeForm
	modeConfirm
)

// fieldSpec describes one form field.
type fieldSpec struct {
	label       string
	placeholder string
	required    bool
	secret      bool
}

// binding adapts one entity type to the generic list screen: table
// shape, form fields, and draft construction.
type binding[T store.Entity, D any] struct {
	resource policy.Resource
	kind     string // singular noun for toasts, e.g. "lead"
	plural   string // screen title, e.g. "Leads"

	columns []table.Column
	toRow   func(T) table.Row

	fields   []fieldSpec
	defaults []string
	fill     func(T) []string
	// makeDraft builds the payload from the form values. staff backs
	// username → identifier resolution for assignment fields.
	makeDraft func(values []string, staff []model.User) (D, error)

	describe   func(T) string
	canConvert func(T) bool // nil unless the entity supports conversion
}

// cacheAPI is the slice of store.Cache the screen needs. Satisfied by
// *store.Cache[T, D] and, via embedding, *store.Leads.
type cacheAPI[T store.Entity, D any] interface {
	State() store.State
	Err() error
	Rows() []T
	Refresh(ctx context.Context) error
	Create(ctx context.Context, draft D) (T, error)
	Update(ctx context.Context, id string, draft D) (T, error)
	Delete(ctx context.Context, id string) error
}

// entityList is the generic list + form screen for one entity type.
type entityList[T store.Entity, D any] struct {
	b     binding[T, D]
	cache cacheAPI[T, D]
	// convert is set for leads only.
	convert func(ctx context.Context, id string) error

	theme  *styles.Theme
	newCtx func() (context.Context, context.CancelFunc)
	staff  func() []model.User

	tbl  table.Model
	ids  []string // row index → record identifier
	spin spinner.Model

	mode      listMode
	editingID string
	confirmID string
	inputs    []textinput.Model
	focus     int
	formErr   string

	width  int
	height int
}

// newEntityList builds the screen for one binding.
func newEntityList[T store.Entity, D any](
	theme *styles.Theme,
	b binding[T, D],
	cache cacheAPI[T, D],
	convert func(ctx context.Context, id string) error,
	newCtx func() (context.Context, context.CancelFunc),
	staff func() []model.User,
) *entityList[T, D] {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Bold(true).Foreground(theme.Accent).BorderBottom(true)
	ts.Selected = ts.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(theme.Primary)

	tbl := table.New(
		table.WithColumns(b.columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	tbl.SetStyles(ts)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
	)

	return &entityList[T, D]{
		b:       b,
		cache:   cache,
		convert: convert,
		theme:   theme,
		newCtx:  newCtx,
		staff:   staff,
		tbl:     tbl,
		spin:    sp,
	}
}

func (l *entityList[T, D]) resource() policy.Resource { return l.b.resource }
func (l *entityList[T, D]) titleName() string         { return l.b.plural }

// capturingInput reports whether keystrokes belong to this screen's
// form or confirmation prompt instead of global navigation.
func (l *entityList[T, D]) capturingInput() bool { return l.mode != modeBrowse }

// enter is called when the screen becomes active: fetch lazily.
func (l *entityList[T, D]) enter() tea.Cmd {
	l.syncRows()
	if l.cache.State() == store.StateEmpty {
		return tea.Batch(l.refreshCmd(), l.spin.Tick)
	}
	return nil
}

// =============================================================================
// COMMANDS
// =============================================================================

func (l *entityList[T, D]) refreshCmd() tea.Cmd {
	res := l.b.resource
	return func() tea.Msg {
		ctx, cancel := l.newCtx()
		defer cancel()
		return refreshDoneMsg{resource: res, err: l.cache.Refresh(ctx)}
	}
}

func (l *entityList[T, D]) createCmd(draft D, label string) tea.Cmd {
	res, kind := l.b.resource, l.b.kind
	return func() tea.Msg {
		ctx, cancel := l.newCtx()
		defer cancel()
		_, err := l.cache.Create(ctx, draft)
		return mutationDoneMsg{resource: res, verb: "create", label: kind + " " + label, err: err}
	}
}

func (l *entityList[T, D]) updateCmd(id string, draft D, label string) tea.Cmd {
	res, kind := l.b.resource, l.b.kind
	return func() tea.Msg {
		ctx, cancel := l.newCtx()
		defer cancel()
		_, err := l.cache.Update(ctx, id, draft)
		return mutationDoneMsg{resource: res, verb: "update", label: kind + " " + label, err: err}
	}
}

func (l *entityList[T, D]) deleteCmd(id, label string) tea.Cmd {
	res, kind := l.b.resource, l.b.kind
	return func() tea.Msg {
		ctx, cancel := l.newCtx()
		defer cancel()
		err := l.cache.Delete(ctx, id)
		return mutationDoneMsg{resource: res, verb: "delete", label: kind + " " + label, err: err}
	}
}

func (l *entityList[T, D]) convertCmd(id, label string) tea.Cmd {
	res := l.b.resource
	convert := l.convert
	return func() tea.Msg {
		ctx, cancel := l.newCtx()
		defer cancel()
		err := convert(ctx, id)
		return mutationDoneMsg{resource: res, verb: "convert", label: "lead " + label, err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

func (l *entityList[T, D]) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
		l.height = msg.Height
		l.tbl.SetWidth(msg.Width - 2)
		if h := msg.Height - 8; h > 3 {
			l.tbl.SetHeight(h)
		}
		return nil

	case refreshDoneMsg:
		if msg.resource == l.b.resource {
			l.syncRows()
		}
		return nil

	case mutationDoneMsg:
		if msg.resource == l.b.resource {
			l.syncRows()
		}
		return nil

	case spinner.TickMsg:
		if l.cache.State() == store.StateLoading {
			var cmd tea.Cmd
			l.spin, cmd = l.spin.Update(msg)
			return cmd
		}
		return nil

	case tea.KeyMsg:
		switch l.mode {
		case modeForm:
			return l.updateForm(msg)
		case modeConfirm:
			return l.updateConfirm(msg)
		default:
			return l.updateBrowse(msg)
		}
	}
	return nil
}

func (l *entityList[T, D]) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "r":
		return tea.Batch(l.refreshCmd(), l.spin.Tick)

	case "n":
		l.openForm("", l.b.defaults)
		return nil

	case "e":
		row, id, ok := l.selected()
		if !ok {
			return nil
		}
		l.openForm(id, l.b.fill(row))
		return nil

	case "d":
		_, id, ok := l.selected()
		if !ok {
			return nil
		}
		l.mode = modeConfirm
		l.confirmID = id
		return nil

	case "v":
		row, id, ok := l.selected()
		if !ok || l.convert == nil || l.b.canConvert == nil || !l.b.canConvert(row) {
			return nil
		}
		return l.convertCmd(id, l.b.describe(row))
	}

	var cmd tea.Cmd
	l.tbl, cmd = l.tbl.Update(msg)
	return cmd
}

func (l *entityList[T, D]) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		id := l.confirmID
		l.mode = modeBrowse
		l.confirmID = ""
		label := id
		if row, ok := l.rowByID(id); ok {
			label = l.b.describe(row)
		}
		return l.deleteCmd(id, label)
	case "n", "N", "esc":
		l.mode = modeBrowse
		l.confirmID = ""
	}
	return nil
}

func (l *entityList[T, D]) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		l.closeForm()
		return nil

	case "tab", "down":
		l.setFocus((l.focus + 1) % len(l.inputs))
		return nil

	case "shift+tab", "up":
		l.setFocus((l.focus + len(l.inputs) - 1) % len(l.inputs))
		return nil

	case "enter":
		if l.focus < len(l.inputs)-1 {
			l.setFocus(l.focus + 1)
			return nil
		}
		return l.submitForm()
	}

	var cmd tea.Cmd
	l.inputs[l.focus], cmd = l.inputs[l.focus].Update(msg)
	return cmd
}

// submitForm validates the fields, builds the draft, and issues the
// create or update command. Validation failures stay inside the form.
func (l *entityList[T, D]) submitForm() tea.Cmd {
	values := make([]string, len(l.inputs))
	for i, in := range l.inputs {
		values[i] = strings.TrimSpace(in.Value())
	}

	for i, f := range l.b.fields {
		if f.required && values[i] == "" {
			l.formErr = f.label + " is required"
			l.setFocus(i)
			return nil
		}
	}

	draft, err := l.b.makeDraft(values, l.staff())
	if err != nil {
		l.formErr = err.Error()
		return nil
	}

	label := values[0]
	id := l.editingID
	l.closeForm()
	if id == "" {
		return l.createCmd(draft, label)
	}
	return l.updateCmd(id, draft, label)
}

// =============================================================================
// FORM STATE
// =============================================================================

func (l *entityList[T, D]) openForm(id string, values []string) {
	l.mode = modeForm
	l.editingID = id
	l.formErr = ""
	l.inputs = make([]textinput.Model, len(l.b.fields))
	for i, f := range l.b.fields {
		in := textinput.New()
		in.Placeholder = f.placeholder
		in.CharLimit = 120
		in.Width = 40
		in.Prompt = ""
		if f.secret {
			in.EchoMode = textinput.EchoPassword
		}
		if i < len(values) {
			in.SetValue(values[i])
		}
		l.inputs[i] = in
	}
	l.focus = 0
	l.inputs[0].Focus()
}

func (l *entityList[T, D]) closeForm() {
	l.mode = modeBrowse
	l.editingID = ""
	l.inputs = nil
	l.formErr = ""
}

func (l *entityList[T, D]) setFocus(i int) {
	l.inputs[l.focus].Blur()
	l.focus = i
	l.inputs[i].Focus()
}

// =============================================================================
// ROWS
// =============================================================================

// syncRows rebuilds the table from the cache.
func (l *entityList[T, D]) syncRows() {
	records := l.cache.Rows()
	rows := make([]table.Row, len(records))
	l.ids = make([]string, len(records))
	for i, rec := range records {
		rows[i] = l.b.toRow(rec)
		l.ids[i] = rec.EntityID()
	}
	l.tbl.SetRows(rows)
	if c := l.tbl.Cursor(); c >= len(rows) && len(rows) > 0 {
		l.tbl.SetCursor(len(rows) - 1)
	}
}

func (l *entityList[T, D]) selected() (T, string, bool) {
	var zero T
	i := l.tbl.Cursor()
	if i < 0 || i >= len(l.ids) {
		return zero, "", false
	}
	row, ok := l.rowByID(l.ids[i])
	return row, l.ids[i], ok
}

func (l *entityList[T, D]) rowByID(id string) (T, bool) {
	for _, rec := range l.cache.Rows() {
		if rec.EntityID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// =============================================================================
// VIEW
// =============================================================================

func (l *entityList[T, D]) view() string {
	switch l.mode {
	case modeForm:
		return l.viewForm()
	case modeConfirm:
		return l.viewConfirm()
	}

	var b strings.Builder
	switch l.cache.State() {
	case store.StateLoading:
		b.WriteString(l.spin.View() + l.theme.MutedText.Render(" loading "+strings.ToLower(l.b.plural)+"…"))
		b.WriteString("\n")
	case store.StateError:
		b.WriteString(l.theme.ErrorText.Render("fetch failed; showing last known data (press r to retry)"))
		b.WriteString("\n")
	}
	b.WriteString(l.tbl.View())
	return b.String()
}

func (l *entityList[T, D]) viewForm() string {
	title := "New " + l.b.kind
	if l.editingID != "" {
		title = "Edit " + l.b.kind
	}

	var b strings.Builder
	b.WriteString(l.theme.FormTitle.Render(title))
	b.WriteString("\n")
	for i, f := range l.b.fields {
		label := f.label
		if f.required {
			label += " *"
		}
		b.WriteString(l.theme.FieldLabel.Render(label) + " " + l.inputs[i].View())
		b.WriteString("\n")
	}
	if l.formErr != "" {
		b.WriteString("\n" + l.theme.FieldError.Render(l.formErr))
	}
	b.WriteString("\n" + l.theme.MutedText.Render("enter: next/save · esc: cancel"))
	return b.String()
}

func (l *entityList[T, D]) viewConfirm() string {
	label := l.confirmID
	if row, ok := l.rowByID(l.confirmID); ok {
		label = l.b.describe(row)
	}
	return fmt.Sprintf(
		"%s\n\n%s",
		l.theme.FormTitle.Render("Delete "+l.b.kind+" "+label+"?"),
		l.theme.MutedText.Render("y: delete · n: keep"),
	)
}

// hints returns the status bar key hints for browse mode.
func (l *entityList[T, D]) hints() [][2]string {
	h := [][2]string{
		{"r", "refresh"}, {"n", "new"}, {"e", "edit"}, {"d", "delete"},
	}
	if l.convert != nil {
		h = append(h, [2]string{"v", "convert"})
	}
	return h
}
