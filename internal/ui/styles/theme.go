// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the assistant TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderModel lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserBubble     lipgloss.Style
	AssistantText  lipgloss.Style
	StreamingText  lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar       lipgloss.Style
	StatusReady     lipgloss.Style
	StatusStreaming lipgloss.Style
	StatusError     lipgloss.Style
	ShortcutKey     lipgloss.Style
	ShortcutDesc    lipgloss.Style

	// ==========================================================================
	// SPINNER AND ERROR STYLES
	// ==========================================================================

	Spinner    lipgloss.Style
	ErrorBox   lipgloss.Style
	ErrorTitle lipgloss.Style
}

// NewTheme creates a new theme with all styles configured, detecting light
// or dark from the terminal background.
func NewTheme() *Theme {
	return NewThemeFor("")
}

// NewThemeFor creates a theme for an explicit preference: "dark", "light",
// or anything else for terminal detection.
func NewThemeFor(pref string) *Theme {
	colorProfile := termenv.ColorProfile()

	isDark := termenv.HasDarkBackground()
	switch pref {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderModel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Message area
	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1).
		MarginLeft(2)

	t.AssistantText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.StreamingText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusReady = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StatusStreaming = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.StatusError = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Spinner and errors
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ErrorBox = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Rose).
		BorderLeft(true).
		PaddingLeft(1)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
