// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package policy is the single source of truth for role-based access.
//
// Every view consults Allowed before rendering and before exposing
// mutation controls; no inline role comparisons exist anywhere else.
// The matrix is static: there are no per-record exceptions, so a staff
// member assigned to a project has exactly the same rights as any
// other staff member.
package policy

import "github.com/webitof/crmdash/internal/model"

// Resource is a guarded screen or capability.
type Resource string

const (
	// ResourceDashboard is the landing screen every role may see.
	ResourceDashboard Resource = "dashboard"
	// ResourceUsers covers viewing and mutating user accounts.
	ResourceUsers Resource = "users"
	// ResourceLeads covers viewing and mutating leads.
	ResourceLeads Resource = "leads"
	// ResourceClients covers viewing and mutating client records.
	ResourceClients Resource = "clients"
	// ResourceProjects covers viewing and mutating projects.
	ResourceProjects Resource = "projects"
	// ResourceReports covers the read-only reports screen.
	ResourceReports Resource = "reports"
)

// Resources lists every guarded resource in navigation order.
func Resources() []Resource {
	return []Resource{
		ResourceDashboard,
		ResourceUsers,
		ResourceLeads,
		ResourceClients,
		ResourceProjects,
		ResourceReports,
	}
}

// rolePermissions is the access matrix. View and mutate rights are not
// separated: a role that can see a resource can mutate it.
var rolePermissions = map[model.Role]map[Resource]bool{
	model.RoleAdmin: {
		ResourceDashboard: true,
		ResourceUsers:     true,
		ResourceLeads:     true,
		ResourceClients:   true,
		ResourceProjects:  true,
		ResourceReports:   true,
	},
	model.RoleStaff: {
		ResourceDashboard: true,
		ResourceLeads:     true,
		ResourceClients:   true,
		ResourceProjects:  true,
		ResourceReports:   true,
	},
	model.RoleClient: {
		ResourceDashboard: true,
	},
}

// Allowed reports whether the role may view and mutate the resource.
// Unknown roles and unknown resources are denied.
func Allowed(role model.Role, resource Resource) bool {
	return rolePermissions[role][resource]
}

// AllowedResources returns the resources the role may access, in
// navigation order. Used to build the menu so denied screens are
// hidden, not merely disabled.
func AllowedResources(role model.Role) []Resource {
	var out []Resource
	for _, r := range Resources() {
		if Allowed(role, r) {
			out = append(out, r)
		}
	}
	return out
}
