// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// assistant.
//
// # Key Types
//
//   - Config: Complete configuration (server, chat, export, UI)
//   - ValidationError / ValidateErrors: Validation failures by field
//
// # Usage
//
// Load with file, env overrides, and validation applied:
//
//	cfg, err := config.Load()
//
// The config file lives at ~/.smrtlocal/config.toml. Missing files are not
// an error; defaults apply. SMRTLOCAL_* environment variables override both
// file values and defaults.
package config
