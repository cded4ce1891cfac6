// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Bubble Tea messages the chat model consumes and the commands that
// produce them.

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/session"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// StreamEventMsg carries one session event into the update loop. SessionID
// lets the model drop events from a superseded session.
type StreamEventMsg struct {
	SessionID string
	Event     session.Event
}

// StreamClosedMsg signals that a session's event channel is exhausted.
type StreamClosedMsg struct {
	SessionID string
}

// ModelsLoadedMsg carries the result of a model list refresh.
type ModelsLoadedMsg struct {
	Models  []string
	FromAPI bool
	Err     error
}

// ExportDoneMsg carries the result of a transcript export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// ModelSavedMsg carries the result of saving the current model name.
type ModelSavedMsg struct {
	Name string
	Err  error
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForEvent reads the next event from the session. The command is
// re-issued from Update after each delta, which keeps exactly one pending
// read per session.
func waitForEvent(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.Events()
		if !ok {
			return StreamClosedMsg{SessionID: s.ID()}
		}
		return StreamEventMsg{SessionID: s.ID(), Event: ev}
	}
}

// loadModels fetches the model list from the server, falling back to the
// saved list when the server is unreachable.
func (m *Model) loadModels() tea.Cmd {
	client := m.client
	store := m.store
	fallback := m.cfg.Chat.DefaultModel
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		models, err := client.ListModels(ctx)
		if err == nil && len(models) > 0 {
			return ModelsLoadedMsg{Models: models, FromAPI: true}
		}

		if store != nil {
			if saved := store.Load(); len(saved) > 0 {
				return ModelsLoadedMsg{Models: saved, Err: err}
			}
		}
		return ModelsLoadedMsg{
			Models: []string{fallback, "gpt-4o", "gpt-4o-mini"},
			Err:    err,
		}
	}
}
