// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// BucketCount is one row of a server-computed breakdown table, e.g.
// the number of leads in a named stage.
type BucketCount struct {
	Name  string `json:"_id"`
	Count int    `json:"count"`
}

// Overview is the reports snapshot computed server-side. It is replaced
// wholesale on every refresh; the zero value is the pre-fetch default.
type Overview struct {
	TotalUsers    int `json:"totalUsers"`
	TotalLeads    int `json:"totalLeads"`
	TotalClients  int `json:"totalClients"`
	TotalProjects int `json:"totalProjects"`

	// Recent* count records created in the backend's rolling window
	// (30 days at the time of writing).
	RecentLeads    int `json:"recentLeads"`
	RecentClients  int `json:"recentClients"`
	RecentProjects int `json:"recentProjects"`

	LeadStages      []BucketCount `json:"leadStages"`
	ProjectStatuses []BucketCount `json:"projectStatuses"`
}

// StageCount returns the count for a named lead stage, zero if absent.
func (o Overview) StageCount(stage LeadStage) int {
	for _, b := range o.LeadStages {
		if b.Name == string(stage) {
			return b.Count
		}
	}
	return 0
}

// StatusCount returns the count for a named project status, zero if absent.
func (o Overview) StatusCount(status ProjectStatus) int {
	for _, b := range o.ProjectStatuses {
		if b.Name == string(status) {
			return b.Count
		}
	}
	return 0
}
