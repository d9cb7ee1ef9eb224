// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles() {
		if !r.Valid() {
			t.Errorf("Role(%q).Valid() = false, want true", r)
		}
	}
	for _, bad := range []Role{"", "admin", "Manager", "ADMIN"} {
		if bad.Valid() {
			t.Errorf("Role(%q).Valid() = true, want false", bad)
		}
	}
}

func TestLeadStage_Valid(t *testing.T) {
	if got := len(LeadStages()); got != 7 {
		t.Fatalf("len(LeadStages()) = %d, want 7", got)
	}
	for _, s := range LeadStages() {
		if !s.Valid() {
			t.Errorf("LeadStage(%q).Valid() = false, want true", s)
		}
	}
	// Stage values are exact strings, including the space.
	if !LeadStage("Closed Won").Valid() {
		t.Error(`LeadStage("Closed Won") should be valid`)
	}
	for _, bad := range []LeadStage{"new", "ClosedWon", "Won", ""} {
		if bad.Valid() {
			t.Errorf("LeadStage(%q).Valid() = true, want false", bad)
		}
	}
}

func TestProjectStatusAndPriority_Valid(t *testing.T) {
	if got := len(ProjectStatuses()); got != 5 {
		t.Fatalf("len(ProjectStatuses()) = %d, want 5", got)
	}
	if got := len(ProjectPriorities()); got != 4 {
		t.Fatalf("len(ProjectPriorities()) = %d, want 4", got)
	}
	if ProjectStatus("in progress").Valid() {
		t.Error("status match must be case-sensitive")
	}
	if ProjectPriority("Critical").Valid() {
		t.Error(`"Critical" is not a priority`)
	}
}

func TestStaffRef_UnmarshalBothShapes(t *testing.T) {
	var fromString StaffRef
	if err := json.Unmarshal([]byte(`"66f0a"`), &fromString); err != nil {
		t.Fatalf("unmarshal id string: %v", err)
	}
	if fromString.ID != "66f0a" || fromString.Username != "" {
		t.Errorf("from string: got %+v", fromString)
	}

	var fromObject StaffRef
	if err := json.Unmarshal([]byte(`{"_id":"66f0a","username":"alice"}`), &fromObject); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if fromObject.ID != "66f0a" || fromObject.Username != "alice" {
		t.Errorf("from object: got %+v", fromObject)
	}
}

func TestClientRef_UnmarshalBothShapes(t *testing.T) {
	var ref ClientRef
	if err := json.Unmarshal([]byte(`"abc"`), &ref); err != nil {
		t.Fatalf("unmarshal id string: %v", err)
	}
	if ref.ID != "abc" {
		t.Errorf("from string: got %+v", ref)
	}
	if err := json.Unmarshal([]byte(`{"_id":"abc","name":"Acme"}`), &ref); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if ref.Name != "Acme" {
		t.Errorf("from object: got %+v", ref)
	}
}

func TestProject_UnmarshalEmbeddedRefs(t *testing.T) {
	payload := `{
		"_id": "p1",
		"title": "Website rebuild",
		"client": {"_id": "c1", "name": "Acme"},
		"status": "In Progress",
		"priority": "High",
		"assignedStaff": ["u1", {"_id": "u2", "username": "bob"}]
	}`

	var p Project
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}
	if p.EntityID() != "p1" {
		t.Errorf("EntityID() = %q, want p1", p.EntityID())
	}
	if p.Client == nil || p.Client.Name != "Acme" {
		t.Errorf("client ref = %+v", p.Client)
	}
	if len(p.AssignedStaff) != 2 {
		t.Fatalf("assigned staff = %d, want 2", len(p.AssignedStaff))
	}
	if p.AssignedStaff[0].ID != "u1" || p.AssignedStaff[1].Username != "bob" {
		t.Errorf("assigned staff = %+v", p.AssignedStaff)
	}
}

func TestOverview_BucketLookups(t *testing.T) {
	o := Overview{
		LeadStages: []BucketCount{
			{Name: "New", Count: 3},
			{Name: "Closed Won", Count: 1},
		},
		ProjectStatuses: []BucketCount{
			{Name: "Planning", Count: 2},
		},
	}

	if got := o.StageCount(StageNew); got != 3 {
		t.Errorf("StageCount(New) = %d, want 3", got)
	}
	if got := o.StageCount(StageProposal); got != 0 {
		t.Errorf("StageCount(Proposal) = %d, want 0 for absent bucket", got)
	}
	if got := o.StatusCount(StatusPlanning); got != 2 {
		t.Errorf("StatusCount(Planning) = %d, want 2", got)
	}

	var zero Overview
	if zero.TotalLeads != 0 || zero.StageCount(StageNew) != 0 {
		t.Error("zero snapshot must read zero everywhere")
	}
}

func TestBucketCount_UnmarshalUnderscoreID(t *testing.T) {
	var b BucketCount
	if err := json.Unmarshal([]byte(`{"_id":"Qualified","count":4}`), &b); err != nil {
		t.Fatal(err)
	}
	if b.Name != "Qualified" || b.Count != 4 {
		t.Errorf("got %+v", b)
	}
}
