// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Raymon-5/SmrtLocal-Assistant/internal/ui/styles"
	"github.com/Raymon-5/SmrtLocal-Assistant/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusConnecting
	StatusStreaming
	StatusError
	StatusCancelled
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "就绪"
	case StatusConnecting:
		return "连接中..."
	case StatusStreaming:
		return "生成中..."
	case StatusError:
		return "错误"
	case StatusCancelled:
		return "已取消"
	default:
		return "未知"
	}
}

// StatusBar is the bottom bar showing state, progress, and key hints.
type StatusBar struct {
	Status  Status
	Percent int    // 0-100, shown while streaming
	Message string // extra detail, e.g. the error text
	Width   int
	theme   *styles.Theme
}

// NewStatusBar creates a status bar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the bar width.
func (b *StatusBar) SetWidth(width int) {
	b.Width = width
}

// Set updates the displayed state.
func (b *StatusBar) Set(status Status, percent int, message string) {
	b.Status = status
	b.Percent = percent
	b.Message = message
}

// shortcut hints shown on the right side of the bar.
var shortcuts = []struct{ key, desc string }{
	{"Enter", "发送"},
	{"Esc", "取消"},
	{"^E", "导出"},
	{"^L", "清空"},
	{"^C", "退出"},
}

// View renders the status bar.
func (b *StatusBar) View() string {
	width := b.Width
	if width < 40 {
		width = 40
	}

	var state string
	switch b.Status {
	case StatusStreaming, StatusConnecting:
		state = b.theme.StatusStreaming.Render(b.Status.String())
		if b.Status == StatusStreaming {
			state += " " + b.theme.StatusStreaming.Render(util.IntToString(b.Percent)+"%")
		}
	case StatusError:
		state = b.theme.StatusError.Render(b.Status.String())
	case StatusCancelled:
		state = b.theme.StatusError.Render(b.Status.String())
	default:
		state = b.theme.StatusReady.Render(b.Status.String())
	}

	left := state
	if b.Message != "" {
		left += " " + b.theme.ShortcutDesc.Render(util.TruncateWidth(b.Message, 60))
	}

	var hints []string
	for _, sc := range shortcuts {
		hints = append(hints, fmt.Sprintf("%s %s",
			b.theme.ShortcutKey.Render(sc.key),
			b.theme.ShortcutDesc.Render(sc.desc)))
	}
	right := strings.Join(hints, "  ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Narrow terminal: drop the hints.
		return b.theme.StatusBar.Width(width).Render(left)
	}

	return b.theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
