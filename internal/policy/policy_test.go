// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package policy

import (
	"testing"

	"github.com/webitof/crmdash/internal/model"
)

func TestAllowed_Matrix(t *testing.T) {
	tests := []struct {
		role     model.Role
		resource Resource
		want     bool
	}{
		{model.RoleAdmin, ResourceDashboard, true},
		{model.RoleAdmin, ResourceUsers, true},
		{model.RoleAdmin, ResourceLeads, true},
		{model.RoleAdmin, ResourceClients, true},
		{model.RoleAdmin, ResourceProjects, true},
		{model.RoleAdmin, ResourceReports, true},

		{model.RoleStaff, ResourceDashboard, true},
		{model.RoleStaff, ResourceUsers, false},
		{model.RoleStaff, ResourceLeads, true},
		{model.RoleStaff, ResourceClients, true},
		{model.RoleStaff, ResourceProjects, true},
		{model.RoleStaff, ResourceReports, true},

		{model.RoleClient, ResourceDashboard, true},
		{model.RoleClient, ResourceUsers, false},
		{model.RoleClient, ResourceLeads, false},
		{model.RoleClient, ResourceClients, false},
		{model.RoleClient, ResourceProjects, false},
		{model.RoleClient, ResourceReports, false},
	}

	for _, tt := range tests {
		if got := Allowed(tt.role, tt.resource); got != tt.want {
			t.Errorf("Allowed(%s, %s) = %t, want %t", tt.role, tt.resource, got, tt.want)
		}
	}
}

func TestAllowed_UnknownDenied(t *testing.T) {
	if Allowed("Superuser", ResourceUsers) {
		t.Error("unknown role must be denied")
	}
	if Allowed("", ResourceDashboard) {
		t.Error("empty role must be denied")
	}
	if Allowed(model.RoleAdmin, Resource("billing")) {
		t.Error("unknown resource must be denied")
	}
}

func TestAllowedResources_Order(t *testing.T) {
	admin := AllowedResources(model.RoleAdmin)
	if len(admin) != len(Resources()) {
		t.Fatalf("admin sees %d resources, want %d", len(admin), len(Resources()))
	}
	for i, r := range Resources() {
		if admin[i] != r {
			t.Errorf("admin[%d] = %s, want %s (navigation order)", i, admin[i], r)
		}
	}

	staff := AllowedResources(model.RoleStaff)
	for _, r := range staff {
		if r == ResourceUsers {
			t.Error("staff must not see the users screen")
		}
	}

	client := AllowedResources(model.RoleClient)
	if len(client) != 1 || client[0] != ResourceDashboard {
		t.Errorf("client sees %v, want only the dashboard", client)
	}
}
