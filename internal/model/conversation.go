// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
package model

import (
	"errors"
	"strings"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/lmstudio"
)

// ErrInvalidState is returned when the placeholder protocol is misused,
// such as opening a second placeholder while one is already open.
var ErrInvalidState = errors.New("placeholder already open")

// PlaceholderToken identifies one in-flight assistant response. The zero
// value is never a valid token.
type PlaceholderToken int

// =============================================================================
// CONVERSATION LOG
// =============================================================================

// ConversationLog owns the ordered turn history and the single-placeholder
// lifecycle for an in-flight assistant response.
//
// The log is not safe for concurrent use: all mutation happens in the
// controlling context (the UI update loop), which is the only writer by
// construction. Background streaming never touches the log directly.
type ConversationLog struct {
	turns []Turn

	// Placeholder lifecycle. At most one placeholder is live at a time;
	// it is resolved or failed exactly once, after which resolution
	// attempts are no-ops.
	nextToken PlaceholderToken
	openToken PlaceholderToken // 0 when no placeholder is open
}

// NewConversationLog creates an empty conversation log.
func NewConversationLog() *ConversationLog {
	return &ConversationLog{}
}

// =============================================================================
// HISTORY
// =============================================================================

// Append adds a turn to the history and returns its sequence index.
// This and Reset are the only mutators of history; past entries are never
// modified.
func (l *ConversationLog) Append(turn Turn) int {
	turn.Seq = len(l.turns)
	l.turns = append(l.turns, turn)
	return turn.Seq
}

// AppendUserTurn creates and appends a user turn.
func (l *ConversationLog) AppendUserTurn(content string) int {
	return l.Append(NewTurn(RoleUser, content))
}

// History returns a copy of the turn history in order.
func (l *ConversationLog) History() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns.
func (l *ConversationLog) Len() int {
	return len(l.turns)
}

// LastAssistant returns the content of the most recent assistant turn.
func (l *ConversationLog) LastAssistant() (string, bool) {
	for i := len(l.turns) - 1; i >= 0; i-- {
		if l.turns[i].Role == RoleAssistant {
			return l.turns[i].Content, true
		}
	}
	return "", false
}

// Reset discards all history and any open placeholder unconditionally.
func (l *ConversationLog) Reset() {
	l.turns = nil
	l.openToken = 0
}

// =============================================================================
// PLACEHOLDER LIFECYCLE
// =============================================================================

// OpenPlaceholder creates the marker for an assistant response in flight.
// Returns ErrInvalidState if a placeholder is already open; that is a
// caller-programming error, not a recoverable condition.
func (l *ConversationLog) OpenPlaceholder() (PlaceholderToken, error) {
	if l.openToken != 0 {
		return 0, ErrInvalidState
	}
	l.nextToken++
	l.openToken = l.nextToken
	return l.openToken, nil
}

// HasOpenPlaceholder reports whether a placeholder is currently open.
func (l *ConversationLog) HasOpenPlaceholder() bool {
	return l.openToken != 0
}

// ResolvePlaceholder closes the placeholder with final text. An assistant
// turn is appended only if the text is non-empty and differs from the most
// recent assistant turn (duplicate-completion guard). Resolving a token that
// is not the open placeholder is a no-op, which makes resolution idempotent.
func (l *ConversationLog) ResolvePlaceholder(token PlaceholderToken, finalText string) {
	if token == 0 || token != l.openToken {
		return
	}
	l.openToken = 0

	finalText = strings.TrimSpace(finalText)
	if finalText == "" {
		return
	}
	if last, ok := l.LastAssistant(); ok && last == finalText {
		return
	}
	l.Append(NewTurn(RoleAssistant, finalText))
}

// FailPlaceholder closes the placeholder without recording an assistant
// turn. The message is surfaced to the presentation boundary by the caller;
// it is never stored in history. Idempotent like ResolvePlaceholder.
func (l *ConversationLog) FailPlaceholder(token PlaceholderToken, message string) {
	if token == 0 || token != l.openToken {
		return
	}
	l.openToken = 0
}

// =============================================================================
// OUTBOUND SNAPSHOT
// =============================================================================

// Snapshot builds the outbound message list for a new submission: the system
// prompt (if any), the history so far, and the new user turn. The new turn is
// not yet part of the history; callers append it separately so a failed
// submission still records what the user said.
func (l *ConversationLog) Snapshot(systemPrompt, userContent string) []lmstudio.Message {
	messages := make([]lmstudio.Message, 0, len(l.turns)+2)

	if systemPrompt != "" {
		messages = append(messages, lmstudio.NewSystemMessage(systemPrompt))
	}

	for _, turn := range l.turns {
		if turn.Content == "" {
			continue
		}
		messages = append(messages, lmstudio.Message{
			Role:    turn.Role.String(),
			Content: turn.Content,
		})
	}

	messages = append(messages, lmstudio.NewUserMessage(userContent))
	return messages
}
