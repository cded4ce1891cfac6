// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the assistant TUI.
//
// # Key Types
//
//   - Header: Title bar with app name and active model
//   - StatusBar: Bottom bar with state, stream progress, and key hints
//
// Components are plain structs with a View() method; the chat model owns
// their state and calls View during rendering.
package components
