// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - show and set configuration values from the terminal.
package cli

import (
	"fmt"
	"strconv"

	"github.com/webitof/crmdash/internal/config"
)

// HandleConfig implements 'crmdash config [show|set key value]'.
func HandleConfig(args []string) error {
	path, err := config.DefaultPath()
	if err != nil {
		return err
	}

	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "show":
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		fmt.Printf("backend.base_url     = %s\n", cfg.Backend.BaseURL)
		fmt.Printf("backend.timeout_secs = %d\n", cfg.Backend.TimeoutSecs)
		fmt.Printf("ui.theme             = %s\n", cfg.UI.Theme)
		fmt.Printf("ui.toast_secs        = %d\n", cfg.UI.ToastSecs)
		fmt.Printf("activity.enabled     = %t\n", cfg.Activity.Enabled)
		fmt.Printf("activity.max_entries = %d\n", cfg.Activity.MaxEntries)
		fmt.Printf("\nFile: %s\n", path)
		return nil

	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: crmdash config set <key> <value>")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := setConfigKey(&cfg, args[1], args[2]); err != nil {
			return err
		}
		cfg.Validate()
		if err := config.Save(cfg, path); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", args[1], args[2])
		return nil

	default:
		return fmt.Errorf("unknown config subcommand %q (want show or set)", sub)
	}
}

// setConfigKey applies one key=value pair onto cfg.
func setConfigKey(cfg *config.Config, key, value string) error {
	switch key {
	case "backend.base_url":
		cfg.Backend.BaseURL = value
	case "backend.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number", key)
		}
		cfg.Backend.TimeoutSecs = n
	case "ui.theme":
		switch value {
		case "dark", "light", "auto":
			cfg.UI.Theme = value
		default:
			return fmt.Errorf("ui.theme must be dark, light, or auto")
		}
	case "ui.toast_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number", key)
		}
		cfg.UI.ToastSecs = n
	case "activity.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		cfg.Activity.Enabled = b
	case "activity.max_entries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number", key)
		}
		cfg.Activity.MaxEntries = n
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}
