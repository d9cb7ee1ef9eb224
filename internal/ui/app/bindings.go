// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/webitof/crmdash/internal/model"
	"github.com/webitof/crmdash/internal/policy"
	"github.com/webitof/crmdash/internal/store"
	"github.com/webitof/crmdash/internal/ui/styles"
	"github.com/webitof/crmdash/internal/util"
)

// ctxFactory makes a per-operation context, typically with the
// configured backend timeout.
type ctxFactory = func() (context.Context, context.CancelFunc)

// staffProvider returns the current staff roster for assignment
// resolution.
type staffProvider = func() []model.User

// lister is the type-erased face of an entityList so the root model
// can hold one per entity type.
type lister interface {
	resource() policy.Resource
	titleName() string
	capturingInput() bool
	enter() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	view() string
	hints() [][2]string
}

// resolveStaff maps a username (or raw identifier) typed into an
// assignment field onto a user identifier. Empty means unassigned.
func resolveStaff(value string, staff []model.User) (string, error) {
	if value == "" {
		return "", nil
	}
	for _, u := range staff {
		if strings.EqualFold(u.Username, value) || u.ID == value {
			return u.ID, nil
		}
	}
	return "", fmt.Errorf("unknown staff member %q", value)
}

// staffName renders an embedded staff summary for a table cell.
func staffName(ref *model.StaffRef) string {
	if ref == nil || (ref.Username == "" && ref.ID == "") {
		return "Unassigned"
	}
	if ref.Username == "" {
		return ref.ID
	}
	return ref.Username
}

// =============================================================================
// USERS
// =============================================================================

func newUsersList(theme *styles.Theme, stores *store.Stores, newCtx ctxFactory, staff staffProvider) lister {
	b := binding[model.User, model.UserDraft]{
		resource: policy.ResourceUsers,
		kind:     "user",
		plural:   "Users",
		columns: []table.Column{
			{Title: "Username", Width: 20},
			{Title: "Email", Width: 30},
			{Title: "Role", Width: 10},
		},
		toRow: func(u model.User) table.Row {
			return table.Row{u.Username, u.Email, string(u.Role)}
		},
		fields: []fieldSpec{
			{label: "Username", placeholder: "username", required: true},
			{label: "Password", placeholder: "leave blank to keep", secret: true},
			{label: "Email", placeholder: "user@example.com", required: true},
			{label: "Role", placeholder: "Admin / Staff / Client", required: true},
		},
		defaults: []string{"", "", "", string(model.RoleClient)},
		fill: func(u model.User) []string {
			return []string{u.Username, "", u.Email, string(u.Role)}
		},
		makeDraft: func(values []string, _ []model.User) (model.UserDraft, error) {
			role := model.Role(values[3])
			if !role.Valid() {
				return model.UserDraft{}, fmt.Errorf("unknown role %q (Admin, Staff, or Client)", values[3])
			}
			return model.UserDraft{
				Username: values[0],
				Password: values[1],
				Email:    values[2],
				Role:     role,
			}, nil
		},
		describe: func(u model.User) string { return u.Username },
	}
	return newEntityList(theme, b, stores.Users, nil, newCtx, staff)
}

// =============================================================================
// LEADS
// =============================================================================

func newLeadsList(theme *styles.Theme, stores *store.Stores, newCtx ctxFactory, staff staffProvider) lister {
	b := binding[model.Lead, model.LeadDraft]{
		resource: policy.ResourceLeads,
		kind:     "lead",
		plural:   "Leads",
		columns: []table.Column{
			{Title: "Name", Width: 18},
			{Title: "Email", Width: 26},
			{Title: "Phone", Width: 14},
			{Title: "Stage", Width: 12},
			{Title: "Assigned", Width: 14},
		},
		toRow: func(l model.Lead) table.Row {
			return table.Row{
				l.Name, l.Email, l.Phone, string(l.Stage),
				util.TruncateWidth(staffName(l.AssignedStaff), 14),
			}
		},
		fields: []fieldSpec{
			{label: "Name", placeholder: "lead name", required: true},
			{label: "Email", placeholder: "lead@example.com", required: true},
			{label: "Phone", placeholder: "555-0100", required: true},
			{label: "Stage", placeholder: "New, Contacted, …", required: true},
			{label: "Notes", placeholder: "optional notes"},
			{label: "Assigned", placeholder: "staff username"},
		},
		defaults: []string{"", "", "", string(model.StageNew), "", ""},
		fill: func(l model.Lead) []string {
			assigned := ""
			if l.AssignedStaff != nil {
				assigned = l.AssignedStaff.Username
			}
			return []string{l.Name, l.Email, l.Phone, string(l.Stage), l.Notes, assigned}
		},
		makeDraft: func(values []string, staff []model.User) (model.LeadDraft, error) {
			stage := model.LeadStage(values[3])
			if !stage.Valid() {
				return model.LeadDraft{}, fmt.Errorf("unknown stage %q", values[3])
			}
			assigned, err := resolveStaff(values[5], staff)
			if err != nil {
				return model.LeadDraft{}, err
			}
			return model.LeadDraft{
				Name:          values[0],
				Email:         values[1],
				Phone:         values[2],
				Stage:         stage,
				Notes:         values[4],
				AssignedStaff: assigned,
			}, nil
		},
		describe: func(l model.Lead) string { return l.Name },
		// Won leads are already converted; everything else may convert.
		canConvert: func(l model.Lead) bool { return l.Stage != model.StageClosedWon },
	}
	leads := stores.Leads
	return newEntityList(theme, b, leads,
		func(ctx context.Context, id string) error { return leads.Convert(ctx, id) },
		newCtx, staff)
}

// =============================================================================
// CLIENTS
// =============================================================================

func newClientsList(theme *styles.Theme, stores *store.Stores, newCtx ctxFactory, staff staffProvider) lister {
	b := binding[model.Client, model.ClientDraft]{
		resource: policy.ResourceClients,
		kind:     "client",
		plural:   "Clients",
		columns: []table.Column{
			{Title: "Name", Width: 18},
			{Title: "Email", Width: 26},
			{Title: "Phone", Width: 14},
			{Title: "Company", Width: 16},
			{Title: "Assigned", Width: 14},
		},
		toRow: func(c model.Client) table.Row {
			return table.Row{
				c.Name, c.Email, c.Phone,
				util.TruncateWidth(c.Company, 16),
				util.TruncateWidth(staffName(c.AssignedStaff), 14),
			}
		},
		fields: []fieldSpec{
			{label: "Name", placeholder: "client name", required: true},
			{label: "Email", placeholder: "client@example.com", required: true},
			{label: "Phone", placeholder: "555-0100", required: true},
			{label: "Company", placeholder: "company"},
			{label: "Address", placeholder: "address"},
			{label: "Assigned", placeholder: "staff username"},
		},
		defaults: []string{"", "", "", "", "", ""},
		fill: func(c model.Client) []string {
			assigned := ""
			if c.AssignedStaff != nil {
				assigned = c.AssignedStaff.Username
			}
			return []string{c.Name, c.Email, c.Phone, c.Company, c.Address, assigned}
		},
		makeDraft: func(values []string, staff []model.User) (model.ClientDraft, error) {
			assigned, err := resolveStaff(values[5], staff)
			if err != nil {
				return model.ClientDraft{}, err
			}
			return model.ClientDraft{
				Name:          values[0],
				Email:         values[1],
				Phone:         values[2],
				Company:       values[3],
				Address:       values[4],
				AssignedStaff: assigned,
			}, nil
		},
		describe: func(c model.Client) string { return c.Name },
	}
	return newEntityList(theme, b, stores.Clients, nil, newCtx, staff)
}

// =============================================================================
// PROJECTS
// =============================================================================

func newProjectsList(theme *styles.Theme, stores *store.Stores, newCtx ctxFactory, staff staffProvider) lister {
	clients := stores.Clients

	// resolveClient accepts a client name or raw identifier.
	resolveClient := func(value string) (string, error) {
		if value == "" {
			return "", nil
		}
		for _, c := range clients.Rows() {
			if strings.EqualFold(c.Name, value) || c.ID == value {
				return c.ID, nil
			}
		}
		return "", fmt.Errorf("unknown client %q", value)
	}

	b := binding[model.Project, model.ProjectDraft]{
		resource: policy.ResourceProjects,
		kind:     "project",
		plural:   "Projects",
		columns: []table.Column{
			{Title: "Title", Width: 20},
			{Title: "Client", Width: 16},
			{Title: "Status", Width: 12},
			{Title: "Priority", Width: 8},
			{Title: "Assigned", Width: 20},
		},
		toRow: func(p model.Project) table.Row {
			client := ""
			if p.Client != nil {
				client = p.Client.Name
				if client == "" {
					client = p.Client.ID
				}
			}
			var names []string
			for _, s := range p.AssignedStaff {
				names = append(names, s.Username)
			}
			return table.Row{
				util.TruncateWidth(p.Title, 20),
				util.TruncateWidth(client, 16),
				string(p.Status),
				string(p.Priority),
				util.TruncateWidth(strings.Join(names, ", "), 20),
			}
		},
		fields: []fieldSpec{
			{label: "Title", placeholder: "project title", required: true},
			{label: "Description", placeholder: "optional description"},
			{label: "Client", placeholder: "client name"},
			{label: "Status", placeholder: "Planning, In Progress, …", required: true},
			{label: "Priority", placeholder: "Low, Medium, High, Urgent", required: true},
			{label: "Assigned", placeholder: "staff usernames, comma separated"},
		},
		defaults: []string{"", "", "", string(model.StatusPlanning), string(model.PriorityMedium), ""},
		fill: func(p model.Project) []string {
			client := ""
			if p.Client != nil {
				client = p.Client.Name
				if client == "" {
					client = p.Client.ID
				}
			}
			var names []string
			for _, s := range p.AssignedStaff {
				names = append(names, s.Username)
			}
			return []string{
				p.Title, p.Description, client,
				string(p.Status), string(p.Priority),
				strings.Join(names, ", "),
			}
		},
		makeDraft: func(values []string, staff []model.User) (model.ProjectDraft, error) {
			status := model.ProjectStatus(values[3])
			if !status.Valid() {
				return model.ProjectDraft{}, fmt.Errorf("unknown status %q", values[3])
			}
			priority := model.ProjectPriority(values[4])
			if !priority.Valid() {
				return model.ProjectDraft{}, fmt.Errorf("unknown priority %q", values[4])
			}
			clientID, err := resolveClient(values[2])
			if err != nil {
				return model.ProjectDraft{}, err
			}
			assigned := []string{}
			for _, name := range strings.Split(values[5], ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				id, err := resolveStaff(name, staff)
				if err != nil {
					return model.ProjectDraft{}, err
				}
				assigned = append(assigned, id)
			}
			return model.ProjectDraft{
				Title:         values[0],
				Description:   values[1],
				Client:        clientID,
				Status:        status,
				Priority:      priority,
				AssignedStaff: assigned,
			}, nil
		},
		describe: func(p model.Project) string { return p.Title },
	}
	return newEntityList(theme, b, stores.Projects, nil, newCtx, staff)
}
