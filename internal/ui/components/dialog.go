// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/chatline/internal/ui/styles"
)

// =============================================================================
// OVERLAY DIALOGS - Legal notices and confirmations
// =============================================================================

// DialogKind selects which overlay dialog is shown.
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogPrivacy
	DialogTerms
	DialogConfirmDelete
)

const privacyText = `This Privacy Policy describes how chatline collects, uses,
and shares your information.

Conversations are stored by the configured backend. The client keeps no
local copy beyond the current session. Uploaded files are transmitted to
the backend for analysis and stored under its upload directory.`

const termsText = `By using chatline you agree to these Terms of Service.

The software is provided as is, without warranty of any kind. Assistant
responses are generated automatically and may be inaccurate; verify
anything important before acting on it.`

// Dialog renders a centered overlay box.
type Dialog struct {
	Kind    DialogKind
	Subject string // conversation title for DialogConfirmDelete
	Width   int
	Height  int
	theme   *styles.Theme
}

// NewDialog creates a hidden dialog.
func NewDialog(theme *styles.Theme) *Dialog {
	return &Dialog{theme: theme}
}

// Open shows the given dialog kind.
func (d *Dialog) Open(kind DialogKind) {
	d.Kind = kind
}

// Close hides the dialog.
func (d *Dialog) Close() {
	d.Kind = DialogNone
	d.Subject = ""
}

// Visible reports whether a dialog is showing.
func (d *Dialog) Visible() bool {
	return d.Kind != DialogNone
}

// SetSize updates the available screen area.
func (d *Dialog) SetSize(width, height int) {
	d.Width = width
	d.Height = height
}

// View renders the overlay, or "" when hidden.
func (d *Dialog) View() string {
	if d.Kind == DialogNone {
		return ""
	}

	var title, body, hint string
	switch d.Kind {
	case DialogPrivacy:
		title = "Privacy Policy"
		body = privacyText
		hint = "esc to close"
	case DialogTerms:
		title = "Terms of Service"
		body = termsText
		hint = "esc to close"
	case DialogConfirmDelete:
		title = "Delete conversation?"
		subject := d.Subject
		if subject == "" {
			subject = "this conversation"
		}
		// Keep the warning on its own line so wrapping long titles never
		// splits it.
		body = "Delete \"" + subject + "\" and its messages.\nThis cannot be undone."
		hint = "enter to delete, esc to cancel"
	}

	boxWidth := d.Width - 12
	if boxWidth > 64 {
		boxWidth = 64
	}
	if boxWidth < 30 {
		boxWidth = 30
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		d.theme.DialogTitle.Render(title),
		"",
		d.theme.DialogBody.Width(boxWidth-6).Render(body),
		"",
		d.theme.MessageMeta.Render(hint),
	)

	box := d.theme.DialogBox.Width(boxWidth).Render(content)
	return lipgloss.Place(d.Width, d.Height, lipgloss.Center, lipgloss.Center, box)
}
