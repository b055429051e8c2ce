// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/chatline/internal/ui/styles"
)

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// TypingIndicator shows the animated "assistant is typing" row while a
// turn is in progress and no fragment has arrived yet.
type TypingIndicator struct {
	spinner spinner.Model
	active  bool
	theme   *styles.Theme
}

// NewTypingIndicator creates an inactive indicator.
func NewTypingIndicator(theme *styles.Theme) TypingIndicator {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"·  ", "·· ", "···", " ··", "  ·", "   "},
		FPS:    time.Second / 5,
	}
	s.Style = theme.Spinner
	return TypingIndicator{spinner: s, theme: theme}
}

// Start activates the indicator and returns its tick command.
func (t *TypingIndicator) Start() tea.Cmd {
	t.active = true
	return t.spinner.Tick
}

// Stop deactivates the indicator.
func (t *TypingIndicator) Stop() {
	t.active = false
}

// Active reports whether the indicator is animating.
func (t *TypingIndicator) Active() bool {
	return t.active
}

// Update advances the animation. Non-tick messages pass through untouched.
func (t *TypingIndicator) Update(msg tea.Msg) tea.Cmd {
	if !t.active {
		return nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return cmd
}

// View renders the indicator row, or "" when inactive.
func (t *TypingIndicator) View() string {
	if !t.active {
		return ""
	}
	return t.spinner.View() + " " + t.theme.ThinkingText.Render("assistant is typing")
}
