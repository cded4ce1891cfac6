// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/model"
)

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// renderTranscript renders the conversation history plus any in-flight
// assistant text. System turns never appear on screen.
func (m *Model) renderTranscript() string {
	width := m.viewport.Width - 2
	if width < 10 {
		width = 10
	}

	var blocks []string
	for _, turn := range m.log.History() {
		switch turn.Role {
		case model.RoleUser:
			blocks = append(blocks, m.renderUserTurn(turn.Content, width))
		case model.RoleAssistant:
			blocks = append(blocks, m.renderAssistantTurn(turn.Content, width))
		}
	}

	if m.streaming() {
		blocks = append(blocks, m.renderStreamingTurn(width))
	}

	if len(blocks) == 0 {
		return m.theme.AssistantText.Render("开始对话吧。输入消息并按 Enter 发送。")
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderUserTurn(content string, width int) string {
	label := m.theme.UserLabel.Render(model.RoleUser.ExportLabel() + "：")
	body := m.theme.UserBubble.Render(m.wrapTo(content, width-4))
	return label + "\n" + body
}

func (m *Model) renderAssistantTurn(content string, width int) string {
	label := m.theme.AssistantLabel.Render(model.RoleAssistant.ExportLabel() + "：")
	body := m.theme.AssistantText.Render(m.wrapTo(content, width))
	return label + "\n" + body
}

// renderStreamingTurn shows the partial reply with a spinner. The text is the
// latest snapshot from the session, already stripped of role prefixes.
func (m *Model) renderStreamingTurn(width int) string {
	label := m.theme.AssistantLabel.Render(model.RoleAssistant.ExportLabel()+"：") +
		" " + m.spin.View()
	if m.streamText == "" {
		return label
	}
	body := m.theme.StreamingText.Render(m.wrapTo(m.streamText, width))
	return label + "\n" + body
}
