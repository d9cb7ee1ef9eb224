// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command parsing and usage for the crmdash binary.
package cli

import (
	"fmt"
	"os"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	// CmdTUI starts the full-screen dashboard. It is the default.
	CmdTUI Command = iota
	// CmdLogin signs in from the terminal without starting the TUI.
	CmdLogin
	// CmdLogout drops the persisted session.
	CmdLogout
	// CmdStatus prints the session and backend configuration.
	CmdStatus
	// CmdConfig shows or sets configuration values.
	CmdConfig
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

const usageText = `crmdash - terminal dashboard for the Webitof CRM

Usage:
  crmdash                   Start the dashboard (default)
  crmdash login             Sign in from the terminal
  crmdash logout            Drop the stored session
  crmdash status, s         Show session and backend status
  crmdash config [show|set key value]
                            Show or change configuration
  crmdash version, -v       Show version
  crmdash help, -h          Show this help

Configuration keys for 'config set':
  backend.base_url      Backend root URL
  backend.timeout_secs  Per-request timeout (1-300)
  ui.theme              dark, light, or auto
  ui.toast_secs         Notification display time (1-60)

Environment overrides:
  CRMDASH_BASE_URL, CRMDASH_TIMEOUT_SECS, CRMDASH_THEME

State lives in ~/.crmdash: config.toml, the encrypted session, and the
local activity log.
`

// Parse reads os.Args and returns the command plus its remaining
// arguments.
func Parse() (Command, []string) {
	return parseArgs(os.Args[1:])
}

// parseArgs is the testable core of Parse.
func parseArgs(args []string) (Command, []string) {
	if len(args) == 0 {
		return CmdTUI, nil
	}

	switch args[0] {
	case "login":
		return CmdLogin, args[1:]
	case "logout":
		return CmdLogout, args[1:]
	case "status", "s":
		return CmdStatus, args[1:]
	case "config":
		return CmdConfig, args[1:]
	case "version", "-v", "--version":
		return CmdVersion, args[1:]
	case "help", "-h", "--help":
		return CmdHelp, args[1:]
	default:
		fmt.Fprintf(os.Stderr, "crmdash: unknown command %q\n\n", args[0])
		return CmdHelp, nil
	}
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("crmdash %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
