// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
package model

import (
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// ExportLabel returns the label used for plain-text export blocks.
func (r Role) ExportLabel() string {
	switch r {
	case RoleUser:
		return "用户"
	case RoleAssistant:
		return "AI"
	case RoleSystem:
		return "系统"
	default:
		return string(r)
	}
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is one immutable entry of the conversation history.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn with the current timestamp. The sequence index is
// assigned by the log on append.
func NewTurn(role Role, content string) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
