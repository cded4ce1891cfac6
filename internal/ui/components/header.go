// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/ui/styles"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar showing the app name and the active model.
type Header struct {
	Title     string
	ModelName string
	Width     int
	theme     *styles.Theme
}

// NewHeader creates a new Header component with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "SmrtLocal Assistant",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetModel updates the current model name.
func (h *Header) SetModel(model string) {
	h.ModelName = model
}

// View renders the header component.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}

	title := h.theme.HeaderTitle.Render(h.Title)
	model := ""
	if h.ModelName != "" {
		model = h.theme.HeaderModel.Render(util.TruncateRunes(h.ModelName, 40))
	}

	left := title
	if model != "" {
		left = lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", model)
	}

	return h.theme.Header.Width(width).Render(left)
}
