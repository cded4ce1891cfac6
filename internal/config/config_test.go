// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// DEFAULT TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL != "http://127.0.0.1:1234" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.ChatPath != "/v1/chat/completions" {
		t.Errorf("ChatPath = %q", cfg.Server.ChatPath)
	}
	if cfg.Chat.DefaultModel != "qwen/qwen3-30b-a3b-2507" {
		t.Errorf("DefaultModel = %q", cfg.Chat.DefaultModel)
	}
	if cfg.Chat.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Chat.Temperature)
	}
	if cfg.Chat.MaxTokens != 1024 {
		t.Errorf("MaxTokens = %d, want 1024", cfg.Chat.MaxTokens)
	}
	if cfg.Chat.SystemPrompt == "" {
		t.Error("SystemPrompt should have a default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
base_url = "http://192.168.1.10:1234"

[chat]
default_model = "my-model"
temperature = 0.7

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Server.BaseURL != "http://192.168.1.10:1234" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Chat.DefaultModel != "my-model" {
		t.Errorf("DefaultModel = %q", cfg.Chat.DefaultModel)
	}
	if cfg.Chat.Temperature != 0.7 {
		t.Errorf("Temperature = %v", cfg.Chat.Temperature)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}

	// Unset fields fall back to defaults.
	if cfg.Server.ChatPath != "/v1/chat/completions" {
		t.Errorf("ChatPath = %q, want default", cfg.Server.ChatPath)
	}
	if cfg.Chat.MaxTokens != 1024 {
		t.Errorf("MaxTokens = %d, want default 1024", cfg.Chat.MaxTokens)
	}
}

func TestLoadFromPath_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("LoadFromPath() should fail on invalid TOML")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Chat.DefaultModel = "saved-model"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Chat.DefaultModel != "saved-model" {
		t.Errorf("DefaultModel = %q after round trip", loaded.Chat.DefaultModel)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"bad base url",
			func(c *Config) { c.Server.BaseURL = "://bad" },
			"server.base_url",
		},
		{
			"negative timeout",
			func(c *Config) { c.Server.TimeoutSecs = -1 },
			"server.timeout_secs",
		},
		{
			"temperature too high",
			func(c *Config) { c.Chat.Temperature = 3.5 },
			"chat.temperature",
		},
		{
			"negative max tokens",
			func(c *Config) { c.Chat.MaxTokens = -1 },
			"chat.max_tokens",
		},
		{
			"unknown export format",
			func(c *Config) { c.Export.Format = "pdf" },
			"export.format",
		},
		{
			"unknown theme",
			func(c *Config) { c.UI.Theme = "solarized" },
			"ui.theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SMRTLOCAL_URL", "http://10.0.0.1:1234")
	t.Setenv("SMRTLOCAL_MODEL", "env-model")
	t.Setenv("SMRTLOCAL_TEMPERATURE", "0.9")
	t.Setenv("SMRTLOCAL_MAX_TOKENS", "2048")
	t.Setenv("SMRTLOCAL_EXPORT_FORMAT", "html")
	t.Setenv("SMRTLOCAL_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://10.0.0.1:1234" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Chat.DefaultModel != "env-model" {
		t.Errorf("DefaultModel = %q", cfg.Chat.DefaultModel)
	}
	if cfg.Chat.Temperature != 0.9 {
		t.Errorf("Temperature = %v", cfg.Chat.Temperature)
	}
	if cfg.Chat.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d", cfg.Chat.MaxTokens)
	}
	if cfg.Export.Format != "html" {
		t.Errorf("Export.Format = %q", cfg.Export.Format)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

func TestApplyEnvOverrides_BadNumbersIgnored(t *testing.T) {
	t.Setenv("SMRTLOCAL_TEMPERATURE", "hot")
	t.Setenv("SMRTLOCAL_MAX_TOKENS", "lots")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Chat.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want default kept", cfg.Chat.Temperature)
	}
	if cfg.Chat.MaxTokens != 1024 {
		t.Errorf("MaxTokens = %d, want default kept", cfg.Chat.MaxTokens)
	}
}
