// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/chatline/internal/transport"
	"github.com/morganforge/chatline/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom connection and shortcut bar
// =============================================================================

// StatusBar renders the bottom bar: connection state, streaming indicator,
// and key hints.
type StatusBar struct {
	Width      int
	Connection transport.State
	Streaming  bool
	Notice     string
	theme      *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		theme: theme,
	}
}

// SetWidth sets the bar width.
func (sb *StatusBar) SetWidth(width int) {
	sb.Width = width
}

// connectionLabel maps the channel state to an indicator with a shape cue
// alongside the color.
func (sb *StatusBar) connectionLabel() string {
	switch sb.Connection {
	case transport.StateConnected:
		return sb.theme.StatusConnected.Render("● connected")
	case transport.StateConnecting:
		return sb.theme.StatusPending.Render("◌ connecting")
	default:
		return sb.theme.StatusOffline.Render("✗ offline")
	}
}

// View renders the status bar.
func (sb *StatusBar) View() string {
	left := sb.connectionLabel()
	if sb.Streaming {
		left += "  " + sb.theme.ThinkingText.Render("streaming...")
	}
	if sb.Notice != "" {
		left += "  " + sb.theme.StatusOffline.Render(sb.Notice)
	}

	hints := []string{
		sb.theme.ShortcutKey.Render("ctrl+n") + sb.theme.ShortcutDesc.Render(" new"),
		sb.theme.ShortcutKey.Render("ctrl+f") + sb.theme.ShortcutDesc.Render(" attach"),
		sb.theme.ShortcutKey.Render("tab") + sb.theme.ShortcutDesc.Render(" sidebar"),
		sb.theme.ShortcutKey.Render("ctrl+c") + sb.theme.ShortcutDesc.Render(" quit"),
	}
	right := strings.Join(hints, "  ")

	gap := sb.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	bar := left + strings.Repeat(" ", gap) + right
	return sb.theme.StatusBar.Width(sb.Width).Render(bar)
}
