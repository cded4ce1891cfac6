// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main chat view: a scrolling transcript, an
// input line, and a status bar, driven by the Bubble Tea update loop.
//
// # Flow
//
// Submitting a message snapshots the conversation for the request, records
// the user turn, opens an assistant placeholder, and starts a streaming
// session. Each session event updates the live transcript; the terminal
// event resolves or fails the placeholder. Events from a superseded session
// are dropped by ID.
//
// # Key Bindings
//
//	Enter   send message
//	Esc     cancel the active stream
//	Tab     cycle models
//	Ctrl+E  export transcript
//	Ctrl+L  clear conversation
//	Ctrl+R  reload model list
//	Ctrl+S  save current model
//	Ctrl+C  quit
package chat
