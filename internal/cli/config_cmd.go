// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration commands for the aichat CLI.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sspencer10/aichat-tui/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "show", "":
		return configShow()

	case "init":
		return configInit()

	case "path":
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	default:
		return fmt.Errorf("unknown config subcommand %q (try show, init, path)", args.Subcommand)
	}
}

// configShow prints the effective configuration with the API key masked.
func configShow() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	masked := *cfg
	masked.Server.APIKey = maskKey(cfg.Server.APIKey)

	path, err := config.DefaultPath()
	if err == nil {
		fmt.Printf("# %s\n", path)
	}
	return toml.NewEncoder(os.Stdout).Encode(masked)
}

// configInit writes a default config file unless one already exists.
func configInit() error {
	path, err := config.DefaultPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", path)
	fmt.Println("Set your API key there or via AICHAT_API_KEY.")
	return nil
}

// maskKey hides all but the trailing characters of a secret.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
