// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/chatline/internal/model"
	"github.com/morganforge/chatline/internal/transport"
	"github.com/morganforge/chatline/internal/util"
)

// View renders the full chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	if m.dialog.Visible() {
		return m.dialog.View()
	}
	if m.focus == FocusPicker {
		return m.viewPicker()
	}

	header := m.viewHeader()
	body := m.viewBody()
	typing := m.viewTypingRow()
	input := m.viewComposer()

	m.syncStatus()
	status := m.statusBar.View()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, typing, input, status)
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) viewHeader() string {
	title := m.store.Buffer().Title
	if title == "" {
		title = model.DefaultTitle
	}
	title = util.TruncateWidthEllipsis(title, m.width-20)

	brand := m.theme.Header.Render("chatline")
	name := m.theme.HeaderTitle.Render(" " + title)
	return brand + name
}

func (m Model) viewBody() string {
	transcript := m.viewport.View()

	if m.sidebar.Width > 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), transcript)
	}
	return transcript
}

func (m Model) viewTypingRow() string {
	// Once reply text is visible the indicator row is redundant.
	if m.store.Buffer().IsStreaming() {
		return ""
	}
	if v := m.typing.View(); v != "" {
		return " " + v
	}
	return ""
}

func (m Model) viewComposer() string {
	prompt := m.theme.InputPrompt.Render("> ")

	var chip string
	if pending := m.compose.Pending(); pending != nil {
		chip = " " + m.theme.AttachmentChip.Render("📎 "+pending.Filename) + "\n"
	}

	line := prompt + m.input.View()
	if !m.canSend() {
		line = prompt + m.theme.SendDisabled.Render(m.input.Value()+" (waiting...)")
	}

	return chip + m.theme.InputContainer.Width(m.width-2).Render(line)
}

func (m Model) viewPicker() string {
	title := m.theme.DialogTitle.Render("Attach a file")
	hint := m.theme.ShortcutDesc.Render("enter to select, esc to cancel")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.picker.View(),
		"",
		hint,
	)
}

// canSend mirrors the send gate: connected and no turn in progress.
func (m Model) canSend() bool {
	return m.store.ConnectionStatus() == transport.StateConnected && !m.store.TurnInProgress()
}
