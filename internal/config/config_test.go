// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatline.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.True(t, cfg.UI.Markdown)
	assert.True(t, cfg.UI.SidebarDelete)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.False(t, cfg.Demo.Enabled)
}

func TestLoadFrom_TOML(t *testing.T) {
	dir := t.TempDir()
	content := `
[backend]
base_url = "https://chat.example.com"

[ui]
markdown = false
theme = "light"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://chat.example.com", cfg.Backend.BaseURL)
	assert.False(t, cfg.UI.Markdown)
	assert.Equal(t, "light", cfg.UI.Theme)
	// Unset sections keep defaults.
	assert.True(t, cfg.UI.SidebarDelete)
}

func TestLoadFrom_JSONFallback(t *testing.T) {
	dir := t.TempDir()
	content := `{"backend":{"base_url":"http://10.0.0.5:9000"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o644))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Backend.BaseURL)
}

func TestLoadFrom_TOMLWinsOverJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[backend]\nbase_url = \"http://from-toml:8000\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"backend":{"base_url":"http://from-json:8000"}}`), 0o644))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://from-toml:8000", cfg.Backend.BaseURL)
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	t.Setenv("CHATLINE_BACKEND_URL", "http://override:1234")
	t.Setenv("CHATLINE_DEMO", "true")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://override:1234", cfg.Backend.BaseURL)
	assert.True(t, cfg.Demo.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"bad url", func(c *Config) { c.Backend.BaseURL = "not a url" }, true},
		{"bad scheme", func(c *Config) { c.Backend.BaseURL = "ftp://x" }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"demo without listen", func(c *Config) { c.Demo.Enabled = true; c.Demo.Listen = "" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEffectiveBaseURL(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Backend.BaseURL, cfg.EffectiveBaseURL())

	cfg.Demo.Enabled = true
	cfg.Demo.Listen = "127.0.0.1:8000"
	assert.Equal(t, "http://127.0.0.1:8000", cfg.EffectiveBaseURL())
}
