// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}
}

func TestNewThemeFor(t *testing.T) {
	if theme := NewThemeFor("dark"); !theme.IsDark {
		t.Error(`NewThemeFor("dark").IsDark = false`)
	}
	if theme := NewThemeFor("light"); theme.IsDark {
		t.Error(`NewThemeFor("light").IsDark = true`)
	}
}

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	theme := NewTheme()
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("GetLayoutMode() at width %d = %v, want %v", tt.width, got, tt.want)
		}
	}
}
