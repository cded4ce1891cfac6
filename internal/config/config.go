// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultSystemPrompt is the system message sent with every conversation
// unless the config overrides it.
const DefaultSystemPrompt = "你是一个专业的 AI 助手，除非用户要求，否则始终使用中文回答。" +
	"回答应简洁、清晰并具可操作性：优先给出直接答案或步骤，必要时提供示例或代码片段，" +
	"遇到不确定或需要更多信息的情况要礼貌地询问澄清问题。" +
	"避免冗长的开场白，重点突出关键点并给出建议或后续操作。" +
	"当用户问你是谁之类的问题时，你回答：我是由 LMStudio 驱动的本地 AI 助手。"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete assistant configuration.
type Config struct {
	// Server is the LM Studio endpoint configuration.
	Server ServerConfig `toml:"server"`

	// Chat controls the request parameters sent with every completion.
	Chat ChatConfig `toml:"chat"`

	// Export controls transcript export.
	Export ExportConfig `toml:"export"`

	// UI configuration.
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains the LM Studio server endpoints.
type ServerConfig struct {
	// BaseURL is the LM Studio server address.
	BaseURL string `toml:"base_url"`
	// ChatPath is the streaming chat completions path.
	ChatPath string `toml:"chat_path"`
	// ModelsPath is the model listing path.
	ModelsPath string `toml:"models_path"`
	// TimeoutSecs applies to non-streaming requests like the model list.
	TimeoutSecs int `toml:"timeout_secs"`
}

// ChatConfig contains completion request parameters.
type ChatConfig struct {
	// DefaultModel is used when the user has not picked a model.
	DefaultModel string `toml:"default_model"`
	// SystemPrompt is sent as the leading system message. Empty means no
	// system message.
	SystemPrompt string `toml:"system_prompt"`
	// Temperature for sampling.
	Temperature float64 `toml:"temperature"`
	// MaxTokens caps the reply length.
	MaxTokens int `toml:"max_tokens"`
	// AssumedBudget is the reply length assumed by the progress estimate.
	AssumedBudget int `toml:"assumed_budget"`
}

// ExportConfig contains transcript export settings.
type ExportConfig struct {
	// OutputDir is where transcripts are written. Default: current
	// working directory.
	OutputDir string `toml:"output_dir"`
	// Format is the export format: "txt", "md", or "html".
	Format string `toml:"format"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark" or "light".
	Theme string `toml:"theme"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:     "http://127.0.0.1:1234",
			ChatPath:    "/v1/chat/completions",
			ModelsPath:  "/v1/models",
			TimeoutSecs: 5,
		},
		Chat: ChatConfig{
			DefaultModel:  "qwen/qwen3-30b-a3b-2507",
			SystemPrompt:  DefaultSystemPrompt,
			Temperature:   0.2,
			MaxTokens:     1024,
			AssumedBudget: 1024,
		},
		Export: ExportConfig{
			OutputDir: ".",
			Format:    "txt",
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the assistant configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".smrtlocal"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to defaults
// when the file is absent. Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = defaults.Server.BaseURL
	}
	if cfg.Server.ChatPath == "" {
		cfg.Server.ChatPath = defaults.Server.ChatPath
	}
	if cfg.Server.ModelsPath == "" {
		cfg.Server.ModelsPath = defaults.Server.ModelsPath
	}
	if cfg.Server.TimeoutSecs == 0 {
		cfg.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}

	if cfg.Chat.DefaultModel == "" {
		cfg.Chat.DefaultModel = defaults.Chat.DefaultModel
	}
	if cfg.Chat.Temperature == 0 {
		cfg.Chat.Temperature = defaults.Chat.Temperature
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = defaults.Chat.MaxTokens
	}
	if cfg.Chat.AssumedBudget == 0 {
		cfg.Chat.AssumedBudget = defaults.Chat.AssumedBudget
	}

	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = defaults.Export.OutputDir
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = defaults.Export.Format
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# SmrtLocal Assistant configuration file")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.BaseURL != "" {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "server.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Server.BaseURL),
			})
		}
	}

	if c.Server.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.timeout_secs",
			Message: "must be non-negative",
		})
	}

	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "chat.temperature",
			Message: fmt.Sprintf("must be between 0.0 and 2.0, got %v", c.Chat.Temperature),
		})
	}

	if c.Chat.MaxTokens < 0 {
		errs = append(errs, ValidationError{
			Field:   "chat.max_tokens",
			Message: "must be non-negative",
		})
	}

	if c.Chat.AssumedBudget < 0 {
		errs = append(errs, ValidationError{
			Field:   "chat.assumed_budget",
			Message: "must be non-negative",
		})
	}

	validFormats := map[string]bool{"txt": true, "md": true, "html": true}
	if !validFormats[strings.ToLower(c.Export.Format)] {
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: txt, md, html", c.Export.Format),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - SMRTLOCAL_URL: overrides server.base_url
//   - SMRTLOCAL_MODEL: overrides chat.default_model
//   - SMRTLOCAL_SYSTEM_PROMPT: overrides chat.system_prompt
//   - SMRTLOCAL_TEMPERATURE: overrides chat.temperature
//   - SMRTLOCAL_MAX_TOKENS: overrides chat.max_tokens
//   - SMRTLOCAL_EXPORT_DIR: overrides export.output_dir
//   - SMRTLOCAL_EXPORT_FORMAT: overrides export.format
//   - SMRTLOCAL_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("SMRTLOCAL_URL"); u != "" {
		c.Server.BaseURL = u
	}
	if model := os.Getenv("SMRTLOCAL_MODEL"); model != "" {
		c.Chat.DefaultModel = model
	}
	if prompt := os.Getenv("SMRTLOCAL_SYSTEM_PROMPT"); prompt != "" {
		c.Chat.SystemPrompt = prompt
	}
	if temp := os.Getenv("SMRTLOCAL_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			c.Chat.Temperature = v
		}
	}
	if max := os.Getenv("SMRTLOCAL_MAX_TOKENS"); max != "" {
		if v, err := strconv.Atoi(max); err == nil {
			c.Chat.MaxTokens = v
		}
	}
	if dir := os.Getenv("SMRTLOCAL_EXPORT_DIR"); dir != "" {
		c.Export.OutputDir = dir
	}
	if format := os.Getenv("SMRTLOCAL_EXPORT_FORMAT"); format != "" {
		c.Export.Format = format
	}
	if theme := os.Getenv("SMRTLOCAL_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}
