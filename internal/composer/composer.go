// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package composer assembles outbound chat payloads from typed text and an
// optional uploaded attachment.
package composer

import (
	"errors"
	"strings"

	"github.com/morganforge/chatline/internal/model"
)

// ErrEmptyMessage is returned when there is nothing to send: the typed text
// is empty or whitespace and no attachment is pending.
var ErrEmptyMessage = errors.New("composer: empty message")

// =============================================================================
// PENDING ATTACHMENT
// =============================================================================

// PendingAttachment is an uploaded file waiting to be folded into the next
// outbound message. It is composer-local state, never persisted on its own:
// it is consumed exactly once, at the moment a message is actually sent.
type PendingAttachment struct {
	Filename    string // Original file name
	StoragePath string // Backend-assigned path from the upload call
	RawContent  string // Decoded textual content of the file
	MimeType    string
}

// Meta returns the attachment metadata carried on the message.
func (p *PendingAttachment) Meta() model.Attachment {
	return model.Attachment{
		Filename:    p.Filename,
		StoragePath: p.StoragePath,
		MimeType:    p.MimeType,
	}
}

// =============================================================================
// PAYLOAD
// =============================================================================

// Payload is one composed outbound message.
//
// DisplayText is what the user sees in the message list; WireText is what
// goes over the channel. They differ only when an attachment is present.
type Payload struct {
	DisplayText string
	WireText    string
	Attachment  *model.Attachment
}

// =============================================================================
// COMPOSER
// =============================================================================

// Composer holds the pending attachment between upload and send.
type Composer struct {
	pending *PendingAttachment
}

// New creates an empty composer.
func New() *Composer {
	return &Composer{}
}

// SetPending records a successfully uploaded file. It replaces any previous
// pending attachment; an upload failure must be handled by the caller and
// never reaches this method.
func (c *Composer) SetPending(att PendingAttachment) {
	c.pending = &att
}

// Pending returns the pending attachment, or nil.
func (c *Composer) Pending() *PendingAttachment {
	return c.pending
}

// ClearPending drops the pending attachment without sending it.
// Used when the user detaches the file or an upload is superseded.
func (c *Composer) ClearPending() {
	c.pending = nil
}

// Compose builds the outbound payload from the typed text and the pending
// attachment, if any. It does not clear the pending attachment: the send
// path calls ConsumePending only once the send is actually accepted, so a
// refused send (disconnected, turn in progress) leaves the attachment in
// place.
func (c *Composer) Compose(typedText string) (Payload, error) {
	return Compose(typedText, c.pending)
}

// ConsumePending clears the pending attachment after an accepted send.
func (c *Composer) ConsumePending() {
	c.pending = nil
}

// =============================================================================
// COMPOSE
// =============================================================================

// attachmentDelimiter separates the human-readable part of the wire text
// from the embedded file content.
const attachmentDelimiter = "\n\n---\n"

// Compose turns typed text plus an optional attachment into one payload.
//
// Without an attachment, display and wire text both equal the typed text,
// and empty or whitespace-only input is refused. With an attachment, the
// display text gains a one-line notice naming the file (the notice alone
// when nothing was typed), and the wire text appends a delimited section
// containing the file's decoded content and an instruction for the backend
// to analyze it.
func Compose(typedText string, att *PendingAttachment) (Payload, error) {
	trimmed := strings.TrimSpace(typedText)

	if att == nil {
		if trimmed == "" {
			return Payload{}, ErrEmptyMessage
		}
		return Payload{
			DisplayText: typedText,
			WireText:    typedText,
		}, nil
	}

	notice := "[Attached file: " + att.Filename + "]"

	var display string
	if trimmed == "" {
		display = notice
	} else {
		display = typedText + "\n" + notice
	}

	var wire strings.Builder
	wire.WriteString(display)
	wire.WriteString(attachmentDelimiter)
	wire.WriteString("The user attached the file \"")
	wire.WriteString(att.Filename)
	wire.WriteString("\". Analyze its contents below.\n\n")
	wire.WriteString(att.RawContent)

	meta := att.Meta()
	return Payload{
		DisplayText: display,
		WireText:    wire.String(),
		Attachment:  &meta,
	}, nil
}
