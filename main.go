// crmdash - terminal dashboard for the Webitof CRM.
//
// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/webitof/crmdash/internal/activity"
	"github.com/webitof/crmdash/internal/api"
	"github.com/webitof/crmdash/internal/cli"
	"github.com/webitof/crmdash/internal/config"
	"github.com/webitof/crmdash/internal/session"
	"github.com/webitof/crmdash/internal/stats"
	"github.com/webitof/crmdash/internal/store"
	"github.com/webitof/crmdash/internal/ui/app"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
	api.Version = Version
}

func main() {
	cmd, args := cli.Parse()

	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	stateDir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sessions := session.NewStore(stateDir)
	sessions.Load()
	client := api.New(cfg.Backend.BaseURL, sessions).WithTimeout(cfg.Timeout())

	switch cmd {
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(cfg, sessions, client))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(sessions))
	case cli.CmdStatus:
		cli.HandleStatus(cfg, sessions, client)
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(cfg, stateDir, sessions, client)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the shared state and runs the dashboard.
func runTUI(cfg config.Config, stateDir string, sessions *session.Store, client *api.Client) {
	// The terminal belongs to the TUI; diagnostics go to a file.
	logPath := filepath.Join(stateDir, "crmdash.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	} else {
		log.SetOutput(os.Stderr)
	}
	log.Printf("crmdash %s starting", Version)

	stores := store.New(client)
	aggregator := stats.New(client.Overview)

	var activityLog *activity.Log
	if cfg.Activity.Enabled {
		activityLog, err = activity.Open(filepath.Join(stateDir, "activity.db"), cfg.Activity.MaxEntries)
		if err != nil {
			log.Printf("activity log disabled: %v", err)
			activityLog = nil
		} else {
			defer activityLog.Close()
		}
	}

	// Every confirmed mutation lands in the local activity log with
	// the acting user attached.
	stores.SetMutationHook(func(m store.Mutation) {
		if activityLog == nil {
			return
		}
		actor := "unknown"
		if sess := sessions.Current(); sess != nil {
			actor = sess.Username
		}
		if err := activityLog.Record(actor, m.Verb, m.Kind, m.ID); err != nil {
			log.Printf("activity record failed: %v", err)
		}
	})

	ui := app.New(app.Options{
		Config:   cfg,
		Client:   client,
		Sessions: sessions,
		Stores:   stores,
		Stats:    aggregator,
		Activity: activityLog,
	})

	program := tea.NewProgram(ui, tea.WithAltScreen())

	if configPath, err := config.DefaultPath(); err == nil {
		stop, err := config.Watch(configPath, func(c config.Config) {
			program.Send(app.ConfigReloaded(c))
		})
		if err != nil {
			log.Printf("config watch disabled: %v", err)
		} else {
			defer stop()
		}
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
