// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatline.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.chatline/config.toml
//   - ~/.chatline/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatline configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend configuration
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Demo (embedded backend) configuration
	Demo DemoConfig `toml:"demo" json:"demo"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// BackendConfig points the client at its chat backend.
type BackendConfig struct {
	// BaseURL is the backend's HTTP base URL; the websocket channel URL is
	// derived from it.
	BaseURL string `toml:"base_url" json:"base_url"`
}

// DemoConfig controls the embedded demo backend used for offline work.
type DemoConfig struct {
	// Enabled runs the client against a locally started demo backend
	// instead of Backend.BaseURL.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Listen is the address the demo backend binds to.
	Listen string `toml:"listen" json:"listen"`
	// DatabasePath is the SQLite file backing demo persistence.
	// Empty selects ~/.chatline/demo.db.
	DatabasePath string `toml:"database_path" json:"database_path"`
}

// UIConfig contains presentation options.
type UIConfig struct {
	// Markdown renders assistant messages through the markdown renderer
	// when true, plain text when false.
	Markdown bool `toml:"markdown" json:"markdown"`
	// SidebarDelete toggles the delete affordance on sidebar entries.
	SidebarDelete bool `toml:"sidebar_delete" json:"sidebar_delete"`
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
		},
		Demo: DemoConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8000",
		},
		UI: UIConfig{
			Markdown:      true,
			SidebarDelete: true,
			Theme:         "dark",
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// ConfigDir returns the chatline configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".chatline"), nil
}

// Load reads the configuration from disk, applies environment overrides,
// and validates the result. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads the configuration from a specific directory.
func LoadFrom(dir string) (*Config, error) {
	cfg := Default()

	tomlPath := filepath.Join(dir, "config.toml")
	jsonPath := filepath.Join(dir, "config.json")

	switch {
	case fileExists(tomlPath):
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
	case fileExists(jsonPath):
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", jsonPath, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets environment variables win over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHATLINE_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("CHATLINE_DEMO"); v == "1" || v == "true" {
		cfg.Demo.Enabled = true
	}
	if v := os.Getenv("CHATLINE_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend.base_url %q", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url must be http or https, got %q", u.Scheme)
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("ui.theme must be \"dark\" or \"light\", got %q", c.UI.Theme)
	}
	if c.Demo.Enabled && c.Demo.Listen == "" {
		return fmt.Errorf("demo.listen must be set when demo.enabled is true")
	}
	return nil
}

// EffectiveBaseURL returns the URL the client should talk to, taking the
// demo backend into account.
func (c *Config) EffectiveBaseURL() string {
	if c.Demo.Enabled {
		return "http://" + c.Demo.Listen
	}
	return c.Backend.BaseURL
}

// DemoDatabasePath resolves the demo backend's SQLite path.
func (c *Config) DemoDatabasePath() (string, error) {
	if c.Demo.DatabasePath != "" {
		return c.Demo.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(dir, "demo.db"), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// fileExists reports whether a path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
