// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// VIEW
// =============================================================================

// Fixed row counts for the chrome surrounding the transcript viewport.
const (
	headerHeight = 1
	inputHeight  = 3
	statusHeight = 1
)

// View renders the full chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "加载中..."
	}

	var b strings.Builder
	b.WriteString(m.header.View())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	return b.String()
}

// renderInput draws the bordered input line.
func (m *Model) renderInput() string {
	width := m.width
	if width < 20 {
		width = 20
	}
	return m.theme.InputContainer.Width(width - 2).Render(m.input.View())
}

// refreshViewport re-renders the transcript into the viewport buffer.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
}

// wrapTo constrains rendered text to the viewport width.
func (m *Model) wrapTo(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
