// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/chatline/internal/model"
	"github.com/morganforge/chatline/internal/ui/styles"
	"github.com/morganforge/chatline/internal/util"
)

// =============================================================================
// SIDEBAR COMPONENT - Conversation list
// =============================================================================

// Sidebar renders the conversation list with selection and delete
// affordances.
type Sidebar struct {
	Conversations []model.Summary
	CurrentID     string
	Cursor        int
	Width         int
	Height        int
	ShowDelete    bool
	Focused       bool
	theme         *styles.Theme
}

// NewSidebar creates an empty sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{
		Width:      28,
		Height:     24,
		ShowDelete: true,
		theme:      theme,
	}
}

// SetConversations replaces the listed conversations and clamps the cursor.
func (s *Sidebar) SetConversations(list []model.Summary) {
	s.Conversations = list
	s.clampCursor()
}

// SetSize updates the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// MoveUp moves the cursor toward the top of the list.
func (s *Sidebar) MoveUp() {
	if s.Cursor > 0 {
		s.Cursor--
	}
}

// MoveDown moves the cursor toward the bottom of the list.
func (s *Sidebar) MoveDown() {
	if s.Cursor < len(s.Conversations)-1 {
		s.Cursor++
	}
}

// CursorID returns the conversation id under the cursor, or "" when the
// list is empty.
func (s *Sidebar) CursorID() string {
	if s.Cursor < 0 || s.Cursor >= len(s.Conversations) {
		return ""
	}
	return s.Conversations[s.Cursor].ID
}

// FocusCurrent moves the cursor onto the selected conversation.
func (s *Sidebar) FocusCurrent() {
	for i, c := range s.Conversations {
		if c.ID == s.CurrentID {
			s.Cursor = i
			return
		}
	}
	s.Cursor = 0
}

func (s *Sidebar) clampCursor() {
	if s.Cursor >= len(s.Conversations) {
		s.Cursor = len(s.Conversations) - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// View renders the sidebar.
func (s *Sidebar) View() string {
	if s.Width <= 0 {
		return ""
	}

	inner := s.Width - 4
	if inner < 8 {
		inner = 8
	}

	var b strings.Builder
	b.WriteString(s.theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n")
	b.WriteString(s.theme.SidebarNewChat.Render("+ New Chat"))
	b.WriteString("\n\n")

	if len(s.Conversations) == 0 {
		b.WriteString(s.theme.SidebarEmpty.Render("No conversations"))
	}

	for i, conv := range s.Conversations {
		b.WriteString(s.renderItem(i, conv, inner))
		b.WriteString("\n")
	}

	body := b.String()
	return s.theme.Sidebar.
		Width(s.Width - 2).
		Height(s.Height).
		Render(body)
}

func (s *Sidebar) renderItem(i int, conv model.Summary, width int) string {
	title := conv.Title
	if title == "" {
		title = model.DefaultTitle
	}

	// Reserve a column for the delete affordance on the hovered row.
	titleWidth := width
	hovered := s.Focused && i == s.Cursor
	if s.ShowDelete && hovered {
		titleWidth -= 2
	}
	title = util.TruncateWidthEllipsis(title, titleWidth)

	var line string
	switch {
	case conv.ID == s.CurrentID:
		line = s.theme.SidebarItemSelected.Render(util.PadRight(title, titleWidth))
	case hovered:
		line = s.theme.SidebarItem.Underline(true).Render(util.PadRight(title, titleWidth))
	default:
		line = s.theme.SidebarItem.Render(title)
	}

	if s.ShowDelete && hovered {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, " ", s.theme.SidebarDelete.Render("x"))
	}
	return line
}
