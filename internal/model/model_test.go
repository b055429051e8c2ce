// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"testing"
)

// =============================================================================
// STREAMING REDUCER TESTS
// =============================================================================

func TestConversation_ApplyFragment_Concatenation(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      string
	}{
		{
			name:      "single fragment",
			fragments: []string{"Hello"},
			want:      "Hello",
		},
		{
			name:      "multiple fragments concatenate in order",
			fragments: []string{"Hel", "lo, ", "wor", "ld"},
			want:      "Hello, world",
		},
		{
			name:      "empty fragments preserved",
			fragments: []string{"a", "", "b"},
			want:      "ab",
		},
		{
			name:      "unicode fragments",
			fragments: []string{"héllo ", "wörld"},
			want:      "héllo wörld",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conv := NewConversation()
			for _, f := range tc.fragments {
				conv.ApplyFragment(f)
			}

			if conv.MessageCount() != 1 {
				t.Fatalf("MessageCount() = %d, want 1", conv.MessageCount())
			}
			got := conv.GetLastMessage().GetDisplayContent()
			if got != tc.want {
				t.Errorf("content = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestConversation_ApplyFragment_SameMessageIdentity(t *testing.T) {
	conv := NewConversation()
	first := conv.ApplyFragment("Hel")
	second := conv.ApplyFragment("lo")

	if first.ID != second.ID {
		t.Errorf("fragments went to different messages: %q vs %q", first.ID, second.ID)
	}
}

func TestConversation_ApplyTerminal_Freezes(t *testing.T) {
	conv := NewConversation()
	conv.ApplyFragment("Hi")
	conv.ApplyTerminal()

	msg := conv.GetLastMessage()
	if msg.IsStreaming {
		t.Error("message should not be streaming after terminal")
	}
	if msg.Content != "Hi" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hi")
	}

	// Appending to a frozen message is a no-op
	msg.AppendFragment("more")
	if msg.GetDisplayContent() != "Hi" {
		t.Errorf("frozen message mutated: %q", msg.GetDisplayContent())
	}
}

func TestConversation_ApplyTerminal_Idempotent(t *testing.T) {
	conv := NewConversation()
	conv.ApplyFragment("Hi")
	conv.ApplyTerminal()
	conv.ApplyTerminal() // second terminal must have the same effect as one

	if conv.MessageCount() != 1 {
		t.Fatalf("MessageCount() = %d, want 1", conv.MessageCount())
	}
	if conv.GetLastMessage().Content != "Hi" {
		t.Errorf("Content = %q, want %q", conv.GetLastMessage().Content, "Hi")
	}
}

func TestConversation_ApplyTerminal_NoPendingMessage(t *testing.T) {
	conv := NewConversation()
	conv.ApplyTerminal() // no assistant message pending: no-op, not an error

	if conv.MessageCount() != 0 {
		t.Errorf("MessageCount() = %d, want 0", conv.MessageCount())
	}
}

func TestConversation_FragmentAfterTerminal_StartsNewMessage(t *testing.T) {
	conv := NewConversation()
	conv.ApplyFragment("Hi")
	conv.ApplyTerminal()
	conv.ApplyFragment("Bye")

	if conv.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2", conv.MessageCount())
	}
	if got := conv.Messages[0].GetDisplayContent(); got != "Hi" {
		t.Errorf("first message = %q, want %q", got, "Hi")
	}
	if got := conv.Messages[1].GetDisplayContent(); got != "Bye" {
		t.Errorf("second message = %q, want %q", got, "Bye")
	}
	if conv.Messages[0].IsStreaming {
		t.Error("first message should stay frozen")
	}
	if !conv.Messages[1].IsStreaming {
		t.Error("second message should be streaming")
	}
}

func TestConversation_ApplyFragment_AfterUserMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("question")
	conv.ApplyFragment("answer")

	if conv.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2", conv.MessageCount())
	}
	last := conv.GetLastMessage()
	if last.Role != RoleAssistant {
		t.Errorf("last role = %q, want assistant", last.Role)
	}
}

// =============================================================================
// TITLE TESTS
// =============================================================================

func TestConversation_TitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversation()
	if conv.GetTitle() != DefaultTitle {
		t.Errorf("GetTitle() = %q, want %q", conv.GetTitle(), DefaultTitle)
	}

	conv.AddUserMessage("How do rockets work?")
	if conv.GetTitle() != "How do rockets work?" {
		t.Errorf("GetTitle() = %q", conv.GetTitle())
	}

	// Title does not change once derived
	conv.AddUserMessage("Another question")
	if conv.GetTitle() != "How do rockets work?" {
		t.Errorf("title changed after second message: %q", conv.GetTitle())
	}
}

func TestConversation_TitleTruncation(t *testing.T) {
	conv := NewConversation()
	long := strings.Repeat("x", 100)
	conv.AddUserMessage(long)

	title := conv.GetTitle()
	if len([]rune(title)) > 30 {
		t.Errorf("title too long: %d runes", len([]rune(title)))
	}
	if !strings.HasSuffix(title, "...") {
		t.Errorf("truncated title missing ellipsis: %q", title)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_AttachmentVariant(t *testing.T) {
	att := Attachment{
		Filename:    "notes.txt",
		StoragePath: "uploads/abc/notes.txt",
		MimeType:    "text/plain",
	}
	msg := NewUserMessageWithAttachment("see attached", att)

	if !msg.HasAttachment() {
		t.Fatal("HasAttachment() = false, want true")
	}
	if msg.Kind != KindTextWithAttachment {
		t.Errorf("Kind = %q", msg.Kind)
	}
	if msg.Attachment.Filename != "notes.txt" {
		t.Errorf("Filename = %q", msg.Attachment.Filename)
	}

	plain := NewUserMessage("hi")
	if plain.HasAttachment() {
		t.Error("plain message should not report an attachment")
	}
	if plain.Kind != KindText {
		t.Errorf("Kind = %q, want %q", plain.Kind, KindText)
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("héllo wörld, this is a fairly long message")
	got := msg.Preview(10)
	if len([]rune(got)) > 10 {
		t.Errorf("Preview too long: %q", got)
	}
}

func TestConversation_ReplaceMessages(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("old")

	fresh := []*Message{
		NewUserMessage("a"),
		NewMessage(RoleAssistant, "b"),
	}
	conv.ReplaceMessages(fresh)

	if conv.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2", conv.MessageCount())
	}
	if conv.Messages[0].Content != "a" {
		t.Errorf("history not replaced wholesale")
	}
}
