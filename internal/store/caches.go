// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"

	"github.com/webitof/crmdash/internal/api"
	"github.com/webitof/crmdash/internal/model"
)

// Leads is the lead cache plus the conversion operation, which has no
// generic slot because it mutates nothing locally: the backend creates
// a client record but the converted lead stays in the collection, so
// the lead list keeps showing it.
type Leads struct {
	*Cache[model.Lead, model.LeadDraft]
	client *api.Client
}

// Convert converts the lead into a client record server-side. The lead
// rows are deliberately left untouched.
func (l *Leads) Convert(ctx context.Context, id string) error {
	if err := l.client.ConvertLead(ctx, id); err != nil {
		return err
	}
	l.notify(Mutation{Kind: "lead", Verb: "convert", ID: id})
	return nil
}

// Stores bundles every entity cache. One instance is built at startup
// and shared by reference with the UI and the headless CLI.
type Stores struct {
	Users    *Cache[model.User, model.UserDraft]
	Staff    *Cache[model.User, model.UserDraft]
	Leads    *Leads
	Clients  *Cache[model.Client, model.ClientDraft]
	Projects *Cache[model.Project, model.ProjectDraft]
}

// New wires one cache per entity type to the backend client. The staff
// cache is read-only: it backs assignment pickers and is never mutated
// directly (staff accounts are managed through the users cache).
func New(client *api.Client) *Stores {
	return &Stores{
		Users: NewCache("user", Ops[model.User, model.UserDraft]{
			List:   client.ListUsers,
			Create: client.CreateUser,
			Update: client.UpdateUser,
			Delete: client.DeleteUser,
		}),
		Staff: NewCache("staff", Ops[model.User, model.UserDraft]{
			List: client.ListStaff,
		}),
		Leads: &Leads{
			client: client,
			Cache: NewCache("lead", Ops[model.Lead, model.LeadDraft]{
				List:   client.ListLeads,
				Create: client.CreateLead,
				Update: client.UpdateLead,
				Delete: client.DeleteLead,
			}),
		},
		Clients: NewCache("client", Ops[model.Client, model.ClientDraft]{
			List:   client.ListClients,
			Create: client.CreateClient,
			Update: client.UpdateClient,
			Delete: client.DeleteClient,
		}),
		Projects: NewCache("project", Ops[model.Project, model.ProjectDraft]{
			List:   client.ListProjects,
			Create: client.CreateProject,
			Update: client.UpdateProject,
			Delete: client.DeleteProject,
		}),
	}
}

// SetMutationHook installs the same hook on every cache.
func (s *Stores) SetMutationHook(fn func(Mutation)) {
	s.Users.SetMutationHook(fn)
	s.Staff.SetMutationHook(fn)
	s.Leads.SetMutationHook(fn)
	s.Clients.SetMutationHook(fn)
	s.Projects.SetMutationHook(fn)
}

// Reset drops every cached collection, e.g. on logout.
func (s *Stores) Reset() {
	s.Users.Reset()
	s.Staff.Reset()
	s.Leads.Reset()
	s.Clients.Reset()
	s.Projects.Reset()
}
