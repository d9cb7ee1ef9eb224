// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// status_cmd.go - session and backend status at a glance.
package cli

import (
	"context"
	"fmt"

	"github.com/webitof/crmdash/internal/api"
	"github.com/webitof/crmdash/internal/config"
	"github.com/webitof/crmdash/internal/policy"
	"github.com/webitof/crmdash/internal/session"
)

// HandleStatus prints the stored session, the backend configuration,
// and (when signed in) a live reachability check.
func HandleStatus(cfg config.Config, sessions *session.Store, client *api.Client) {
	fmt.Printf("Backend:  %s (timeout %ds)\n", cfg.Backend.BaseURL, cfg.Backend.TimeoutSecs)

	sess := sessions.Load()
	if sess == nil {
		fmt.Println("Session:  not signed in")
		return
	}
	fmt.Printf("Session:  %s (%s)\n", sess.Username, sess.Role)

	var screens []string
	for _, r := range policy.AllowedResources(sess.Role) {
		screens = append(screens, string(r))
	}
	fmt.Printf("Access:   %v\n", screens)

	if !policy.Allowed(sess.Role, policy.ResourceReports) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()
	overview, err := client.Overview(ctx)
	switch {
	case api.IsAuth(err):
		fmt.Println("Backend:  session expired; run 'crmdash login'")
	case err != nil:
		fmt.Printf("Backend:  unreachable (%v)\n", err)
	default:
		fmt.Printf("Records:  %d leads, %d clients, %d projects\n",
			overview.TotalLeads, overview.TotalClients, overview.TotalProjects)
	}
}
