// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	theme := NewTheme("")

	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	rendered := theme.App.Render("test")
	if rendered == "" {
		t.Error("NewTheme() should initialize App style")
	}
}

func TestNewThemeMode(t *testing.T) {
	dark := NewTheme("dark")
	if !dark.IsDark {
		t.Error("NewTheme(\"dark\") should set IsDark")
	}

	light := NewTheme("light")
	if light.IsDark {
		t.Error("NewTheme(\"light\") should clear IsDark")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme("dark")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"Sidebar", theme.Sidebar},
		{"SidebarItemSelected", theme.SidebarItemSelected},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"AttachmentNotice", theme.AttachmentNotice},
		{"InputContainer", theme.InputContainer},
		{"AttachmentChip", theme.AttachmentChip},
		{"StatusBar", theme.StatusBar},
		{"StatusConnected", theme.StatusConnected},
		{"StatusOffline", theme.StatusOffline},
		{"DialogBox", theme.DialogBox},
		{"ErrorBox", theme.ErrorBox},
	}

	for _, s := range styles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme("dark")

	tests := []struct {
		width  int
		height int
	}{
		{80, 24},
		{120, 40},
		{40, 10},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, tc.height)
		if theme.Width != tc.width {
			t.Errorf("SetSize(%d, %d) Width = %d, want %d", tc.width, tc.height, theme.Width, tc.width)
		}
		if theme.Height != tc.height {
			t.Errorf("SetSize(%d, %d) Height = %d, want %d", tc.width, tc.height, theme.Height, tc.height)
		}
	}
}

func TestThemeGetLayoutMode(t *testing.T) {
	theme := NewTheme("dark")

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{0, LayoutNarrow},
		{40, LayoutNarrow},
		{69, LayoutNarrow},
		{70, LayoutWide},
		{150, LayoutWide},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		got := theme.GetLayoutMode()
		if got != tc.want {
			t.Errorf("GetLayoutMode() with width %d = %v, want %v", tc.width, got, tc.want)
		}
	}
}

func TestThemeSidebarWidth(t *testing.T) {
	theme := NewTheme("dark")

	tests := []struct {
		width int
		want  int
	}{
		{40, 0},   // narrow layout hides the sidebar
		{80, 24},  // quarter width clamped to the minimum
		{120, 30}, // quarter width within bounds
		{200, 36}, // clamped to the maximum
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		got := theme.SidebarWidth()
		if got != tc.want {
			t.Errorf("SidebarWidth() with width %d = %d, want %d", tc.width, got, tc.want)
		}
	}
}

func TestThemeMultipleInitialization(t *testing.T) {
	theme1 := NewTheme("dark")
	theme2 := NewTheme("dark")

	if theme1 == theme2 {
		t.Error("NewTheme() should create distinct theme instances")
	}

	theme1.SetSize(100, 50)
	theme2.SetSize(200, 80)

	if theme1.Width == theme2.Width {
		t.Error("Themes should have independent state")
	}
}
