// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management.
//
// Configuration lives in TOML at ~/.aichat/config.toml, with sensible
// defaults and environment variable overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete aichat configuration.
type Config struct {
	// Server settings
	Server ServerConfig `toml:"server"`

	// Chat behavior
	Chat ChatConfig `toml:"chat"`

	// Speech output
	Speech SpeechConfig `toml:"speech"`

	// Local storage
	Storage StorageConfig `toml:"storage"`

	// UI behavior
	UI UIConfig `toml:"ui"`
}

// ServerConfig describes the remote assistant endpoint.
type ServerConfig struct {
	// URL is the chat endpoint the client POSTs commands to.
	URL string `toml:"url"`
	// APIKey is the bearer token. Overridden by AICHAT_API_KEY.
	APIKey string `toml:"api_key"`
	// TimeoutSecs is the request timeout for buffered (non-streaming)
	// requests. Streaming requests are governed by context cancellation.
	TimeoutSecs int `toml:"timeout_secs"`
}

// ChatConfig controls request construction.
type ChatConfig struct {
	// Model is the model identifier sent with every command.
	Model string `toml:"model"`
	// HistoryLimit is how many trailing turns accompany each command.
	HistoryLimit int `toml:"history_limit"`
}

// SpeechConfig controls spoken responses.
type SpeechConfig struct {
	// Enabled forwards finished assistant text to the speech command.
	Enabled bool `toml:"enabled"`
	// Command is the external text-to-speech program; the text to speak is
	// written to its stdin (e.g. "say" on macOS, "espeak" on Linux).
	Command string `toml:"command"`
}

// StorageConfig controls local persistence.
type StorageConfig struct {
	// Path is the SQLite database file holding sessions and messages.
	Path string `toml:"path"`
}

// UIConfig controls presentation behavior.
type UIConfig struct {
	// SyncIntervalMs is the minimum interval between placeholder refreshes
	// while a response streams in. Fragments keep accumulating between
	// syncs; nothing is lost to the throttle.
	SyncIntervalMs int `toml:"sync_interval_ms"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:         "https://ai.sspencer10.com/ask",
			TimeoutSecs: 60,
		},
		Chat: ChatConfig{
			Model:        "gpt-4o-mini",
			HistoryLimit: 20,
		},
		Speech: SpeechConfig{
			Enabled: false,
			Command: "say",
		},
		Storage: StorageConfig{
			Path: "", // Resolved to ~/.aichat/chat.db on load
		},
		UI: UIConfig{
			SyncIntervalMs: 300,
		},
	}
}

// SyncInterval returns the UI sync interval as a duration.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.UI.SyncIntervalMs) * time.Millisecond
}

// Timeout returns the buffered-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// =============================================================================
// LOADING
// =============================================================================

// ConfigDir returns the directory holding the config file and database.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aichat"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config from the default location, applying defaults for
// missing keys and environment overrides on top. A missing file is not an
// error; defaults are returned.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, err
	}

	cfg.applyEnvOverrides()
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. Secrets in the
// environment always win over the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AICHAT_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("AICHAT_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("AICHAT_MODEL"); v != "" {
		c.Chat.Model = v
	}
}

// resolvePaths fills in the default storage path when unset.
func (c *Config) resolvePaths() error {
	if c.Storage.Path != "" {
		return nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	c.Storage.Path = filepath.Join(dir, "chat.db")
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validation errors.
var (
	ErrInvalidServerURL  = errors.New("server url is not a valid http(s) URL")
	ErrInvalidHistory    = errors.New("history_limit must be positive")
	ErrInvalidSyncWindow = errors.New("sync_interval_ms must be positive")
)

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidServerURL
	}
	if c.Chat.HistoryLimit <= 0 {
		return ErrInvalidHistory
	}
	if c.UI.SyncIntervalMs <= 0 {
		return ErrInvalidSyncWindow
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the config to the given path, creating the directory if
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}
