// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package composer assembles outbound chat payloads.
package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_PlainText(t *testing.T) {
	p, err := Compose("hello there", nil)
	require.NoError(t, err)

	assert.Equal(t, "hello there", p.DisplayText)
	assert.Equal(t, "hello there", p.WireText)
	assert.Nil(t, p.Attachment)
}

func TestCompose_RefusesEmpty(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"whitespace only", "   \t\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compose(tc.text, nil)
			assert.ErrorIs(t, err, ErrEmptyMessage)
		})
	}
}

func TestCompose_AttachmentOnly(t *testing.T) {
	att := &PendingAttachment{
		Filename:   "a.txt",
		RawContent: "X",
		MimeType:   "text/plain",
	}

	p, err := Compose("", att)
	require.NoError(t, err)

	assert.NotEmpty(t, p.DisplayText)
	assert.Contains(t, p.DisplayText, "a.txt")
	assert.Contains(t, p.WireText, "X")
	require.NotNil(t, p.Attachment)
	assert.Equal(t, "a.txt", p.Attachment.Filename)
}

func TestCompose_TextWithAttachment(t *testing.T) {
	att := &PendingAttachment{
		Filename:    "report.csv",
		StoragePath: "uploads/1/report.csv",
		RawContent:  "col1,col2\n1,2",
		MimeType:    "text/csv",
	}

	p, err := Compose("summarize this", att)
	require.NoError(t, err)

	// Display: typed text plus a one-line notice naming the file,
	// but never the file content itself.
	assert.Contains(t, p.DisplayText, "summarize this")
	assert.Contains(t, p.DisplayText, "report.csv")
	assert.NotContains(t, p.DisplayText, "col1,col2")

	// Wire: display text followed by the delimited content section.
	assert.True(t, strings.HasPrefix(p.WireText, p.DisplayText))
	assert.Contains(t, p.WireText, "col1,col2\n1,2")
	assert.Contains(t, p.WireText, "Analyze")
}

func TestComposer_PendingLifecycle(t *testing.T) {
	c := New()
	assert.Nil(t, c.Pending())

	c.SetPending(PendingAttachment{Filename: "a.txt", RawContent: "X"})
	require.NotNil(t, c.Pending())

	// Compose does not consume the attachment: a refused send keeps it.
	p, err := c.Compose("")
	require.NoError(t, err)
	assert.NotNil(t, c.Pending())
	assert.Contains(t, p.DisplayText, "a.txt")

	// Accepted send consumes it exactly once.
	c.ConsumePending()
	assert.Nil(t, c.Pending())

	// With the attachment gone, empty input is refused again.
	_, err = c.Compose("")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestComposer_ClearPending(t *testing.T) {
	c := New()
	c.SetPending(PendingAttachment{Filename: "a.txt"})
	c.ClearPending()
	assert.Nil(t, c.Pending())
}
