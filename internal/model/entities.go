// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies what a logged-in user is allowed to do.
type Role string

const (
	// RoleAdmin has full access including user management.
	RoleAdmin Role = "Admin"
	// RoleStaff can work leads, clients, projects, and reports.
	RoleStaff Role = "Staff"
	// RoleClient only sees their own landing dashboard.
	RoleClient Role = "Client"
)

// Roles lists every assignable role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleStaff, RoleClient}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleClient:
		return true
	}
	return false
}

// =============================================================================
// LEAD STAGES
// =============================================================================

// LeadStage is the pipeline stage of a lead.
type LeadStage string

const (
	StageNew         LeadStage = "New"
	StageContacted   LeadStage = "Contacted"
	StageQualified   LeadStage = "Qualified"
	StageProposal    LeadStage = "Proposal"
	StageNegotiation LeadStage = "Negotiation"
	StageClosedWon   LeadStage = "Closed Won"
	StageClosedLost  LeadStage = "Closed Lost"
)

// LeadStages lists the pipeline stages in funnel order.
func LeadStages() []LeadStage {
	return []LeadStage{
		StageNew,
		StageContacted,
		StageQualified,
		StageProposal,
		StageNegotiation,
		StageClosedWon,
		StageClosedLost,
	}
}

// Valid reports whether s is a known stage.
func (s LeadStage) Valid() bool {
	for _, stage := range LeadStages() {
		if s == stage {
			return true
		}
	}
	return false
}

// =============================================================================
// PROJECT STATUS AND PRIORITY
// =============================================================================

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	StatusPlanning   ProjectStatus = "Planning"
	StatusInProgress ProjectStatus = "In Progress"
	StatusOnHold     ProjectStatus = "On Hold"
	StatusCompleted  ProjectStatus = "Completed"
	StatusCancelled  ProjectStatus = "Cancelled"
)

// ProjectStatuses lists the lifecycle states in order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{
		StatusPlanning,
		StatusInProgress,
		StatusOnHold,
		StatusCompleted,
		StatusCancelled,
	}
}

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	for _, status := range ProjectStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// ProjectPriority is the urgency level of a project.
type ProjectPriority string

const (
	PriorityLow    ProjectPriority = "Low"
	PriorityMedium ProjectPriority = "Medium"
	PriorityHigh   ProjectPriority = "High"
	PriorityUrgent ProjectPriority = "Urgent"
)

// ProjectPriorities lists the priority levels from least to most urgent.
func ProjectPriorities() []ProjectPriority {
	return []ProjectPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// Valid reports whether p is a known priority.
func (p ProjectPriority) Valid() bool {
	for _, priority := range ProjectPriorities() {
		if p == priority {
			return true
		}
	}
	return false
}

// =============================================================================
// EMBEDDED REFERENCES
// =============================================================================

// StaffRef is a staff reference on a record. The backend resolves
// references into embedded summaries on reads but accepts a bare
// identifier string on writes, so unmarshalling accepts both shapes.
type StaffRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// UnmarshalJSON accepts either "507f..." or {"_id":"507f...","username":"alice"}.
func (s *StaffRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.ID)
	}
	type plain StaffRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("staff reference: %w", err)
	}
	*s = StaffRef(p)
	return nil
}

// ClientRef is a client reference embedded on a project.
// Same dual shape as StaffRef: identifier string or summary object.
type ClientRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts either an identifier string or a summary object.
func (c *ClientRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.ID)
	}
	type plain ClientRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("client reference: %w", err)
	}
	*c = ClientRef(p)
	return nil
}

// =============================================================================
// RECORD TYPES
// =============================================================================

// User is an account that can sign in to the dashboard.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// EntityID returns the server-assigned identifier.
func (u User) EntityID() string { return u.ID }

// Lead is a sales prospect moving through the pipeline.
type Lead struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Stage         LeadStage `json:"stage"`
	Notes         string    `json:"notes,omitempty"`
	AssignedStaff *StaffRef `json:"assignedStaff,omitempty"`
}

// EntityID returns the server-assigned identifier.
func (l Lead) EntityID() string { return l.ID }

// Client is a converted customer.
type Client struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Company       string    `json:"company,omitempty"`
	Address       string    `json:"address,omitempty"`
	AssignedStaff *StaffRef `json:"assignedStaff,omitempty"`
}

// EntityID returns the server-assigned identifier.
func (c Client) EntityID() string { return c.ID }

// Project is a unit of client work with status, priority, and an
// assigned set of staff members.
type Project struct {
	ID            string          `json:"_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Client        *ClientRef      `json:"client,omitempty"`
	Status        ProjectStatus   `json:"status"`
	Priority      ProjectPriority `json:"priority"`
	AssignedStaff []StaffRef      `json:"assignedStaff,omitempty"`
}

// EntityID returns the server-assigned identifier.
func (p Project) EntityID() string { return p.ID }

// =============================================================================
// DRAFT TYPES (create/update payloads)
// =============================================================================

// UserDraft is the payload for creating or updating a user.
// Password is only sent on create; the backend ignores an empty one.
type UserDraft struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// LeadDraft is the payload for creating or updating a lead.
// AssignedStaff carries a bare user identifier.
type LeadDraft struct {
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Stage         LeadStage `json:"stage"`
	Notes         string    `json:"notes,omitempty"`
	AssignedStaff string    `json:"assignedStaff,omitempty"`
}

// ClientDraft is the payload for creating or updating a client.
type ClientDraft struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Company       string `json:"company,omitempty"`
	Address       string `json:"address,omitempty"`
	AssignedStaff string `json:"assignedStaff,omitempty"`
}

// ProjectDraft is the payload for creating or updating a project.
// Client and AssignedStaff carry bare identifiers.
type ProjectDraft struct {
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Client        string          `json:"client,omitempty"`
	Status        ProjectStatus   `json:"status"`
	Priority      ProjectPriority `json:"priority"`
	AssignedStaff []string        `json:"assignedStaff"`
}
