// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a chat conversation with history and metadata.
//
// The message list is append-only during a session, except for the in-place
// growth of the last assistant message while a turn is streaming.
type Conversation struct {
	// Identity (assigned by the backend, or synthesized locally as a
	// fallback for offline/demo use)
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages, insertion order = conversation order
	Messages []*Message `json:"messages"`
}

// NewConversation creates a new conversation with a locally synthesized ID.
func NewConversation() *Conversation {
	return &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the conversation.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTitle()
}

// AddUserMessage creates and appends a user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// GetLastMessage returns the most recent message, or nil if empty.
func (c *Conversation) GetLastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// ReplaceMessages swaps in a freshly fetched history wholesale.
// Used when switching conversations; the buffer never merges histories.
func (c *Conversation) ReplaceMessages(msgs []*Message) {
	c.Messages = msgs
	c.UpdatedAt = time.Now()
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// =============================================================================
// STREAMING REDUCER
// =============================================================================

// ApplyFragment merges one inbound streamed fragment into the message list.
//
// If the last message is an assistant message that is still streaming, the
// fragment is appended in place (same message identity). Otherwise a new
// streaming assistant message is started, seeded with the fragment. A
// fragment arriving after the terminal marker therefore starts a fresh
// message rather than reopening the frozen one, which guards against
// duplicate or late delivery.
//
// Fragments must be applied in receipt order; the reducer does not reorder
// or buffer.
func (c *Conversation) ApplyFragment(text string) *Message {
	last := c.GetLastMessage()
	if last != nil && last.Role == RoleAssistant && last.IsStreaming {
		last.AppendFragment(text)
		c.UpdatedAt = time.Now()
		return last
	}

	msg := NewAssistantMessage()
	msg.AppendFragment(text)
	c.AddMessage(msg)
	return msg
}

// ApplyTerminal marks the assistant turn complete, freezing the streaming
// message. Idempotent: applying it with no streaming message pending is a
// no-op, not an error. Performs no content mutation.
func (c *Conversation) ApplyTerminal() {
	last := c.GetLastMessage()
	if last != nil && last.Role == RoleAssistant && last.IsStreaming {
		last.FinalizeStream()
		c.UpdatedAt = time.Now()
	}
}

// IsStreaming reports whether an assistant message is currently growing.
func (c *Conversation) IsStreaming() bool {
	last := c.GetLastMessage()
	return last != nil && last.Role == RoleAssistant && last.IsStreaming
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// DefaultTitle is the title of a conversation before any user message names it.
const DefaultTitle = "New Chat"

// updateTitle derives a title from the first user message if not set.
func (c *Conversation) updateTitle() {
	if c.Title != "" && c.Title != DefaultTitle {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			c.Title = msg.Preview(30)
			return
		}
	}
}

// SetTitle manually sets the conversation title.
func (c *Conversation) SetTitle(title string) {
	c.Title = title
	c.UpdatedAt = time.Now()
}

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return DefaultTitle
}

// =============================================================================
// SUMMARY TYPE
// =============================================================================

// Summary holds lightweight conversation metadata for the sidebar listing.
// Order of the list is backend-provided and never re-sorted client-side.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetSummary returns the conversation's listing metadata.
func (c *Conversation) GetSummary() Summary {
	return Summary{
		ID:        c.ID,
		Title:     c.GetTitle(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
