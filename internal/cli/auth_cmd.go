// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - headless login/logout for scripted use and for
// terminals where the full-screen dashboard is unwanted.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/webitof/crmdash/internal/api"
	"github.com/webitof/crmdash/internal/config"
	"github.com/webitof/crmdash/internal/session"
)

// HandleLogin prompts for credentials, exchanges them with the
// backend, and persists the session for later runs.
func HandleLogin(cfg config.Config, sessions *session.Store, client *api.Client) error {
	username, password, err := promptCredentials()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	result, err := client.Login(ctx, username, password)
	if err != nil {
		if api.IsAuth(err) {
			return fmt.Errorf("invalid username or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}
	if !result.User.Role.Valid() {
		return fmt.Errorf("backend returned unknown role %q", result.User.Role)
	}

	err = sessions.Login(session.Session{
		ID:       result.User.ID,
		Username: result.User.Username,
		Role:     result.User.Role,
		Token:    result.Token,
	})
	if err != nil {
		return fmt.Errorf("signed in, but the session could not be saved: %w", err)
	}

	fmt.Printf("Signed in as %s (%s)\n", result.User.Username, result.User.Role)
	return nil
}

// HandleLogout drops the persisted session.
func HandleLogout(sessions *session.Store) error {
	had := sessions.Load() != nil
	if err := sessions.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	if had {
		fmt.Println("Signed out.")
	} else {
		fmt.Println("No session was stored.")
	}
	return nil
}

// promptCredentials reads a username with line editing and a password
// without echo.
func promptCredentials() (string, string, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	username, err := line.Prompt("Username: ")
	line.Close()
	if err != nil {
		if err == liner.ErrPromptAborted {
			return "", "", fmt.Errorf("aborted")
		}
		return "", "", fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", fmt.Errorf("username is required")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return "", "", fmt.Errorf("password is required")
	}
	return username, string(raw), nil
}
