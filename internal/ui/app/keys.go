// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the global key bindings.
type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Logout    key.Binding
	Dashboard key.Binding
	Users     key.Binding
	Leads     key.Binding
	Clients   key.Binding
	Projects  key.Binding
	Reports   key.Binding
}

// defaultKeyMap returns the global bindings. Screen navigation keys
// are uppercase so they never collide with list editing keys.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Logout:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "log out")),
		Dashboard: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "dashboard")),
		Users:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "users")),
		Leads:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "leads")),
		Clients:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "clients")),
		Projects:  key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "projects")),
		Reports:   key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "reports")),
	}
}
