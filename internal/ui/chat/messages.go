// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/morganforge/chatline/internal/composer"
	"github.com/morganforge/chatline/internal/model"
	"github.com/morganforge/chatline/internal/transport"
)

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ConversationListMsg delivers the backend conversation listing.
type ConversationListMsg struct {
	Summaries []model.Summary
	Err       error
}

// ConversationCreatedMsg confirms a conversation was created.
type ConversationCreatedMsg struct {
	Summary model.Summary
	Err     error
}

// ConversationDeletedMsg confirms a backend deletion.
type ConversationDeletedMsg struct {
	ID  string
	Err error
}

// HistoryMsg delivers a fetched conversation history. ID is compared
// against the current selection; a mismatch means the user switched while
// the fetch was in flight and the payload is discarded.
type HistoryMsg struct {
	ID       string
	Title    string
	Messages []*model.Message
	Err      error
}

// =============================================================================
// CHANNEL MESSAGES
// =============================================================================

// ChannelOpenedMsg reports the outcome of a websocket dial. The channel is
// adopted only if its conversation is still selected.
type ChannelOpenedMsg struct {
	ConversationID string
	Channel        *transport.Channel
	Err            error
}

// ChannelEventMsg wraps one transport event together with the generation
// of the channel that produced it.
type ChannelEventMsg struct {
	Generation int
	Event      transport.Event
}

// channelDrainedMsg signals the event stream of a channel has closed.
type channelDrainedMsg struct {
	Generation int
}

// =============================================================================
// UPLOAD MESSAGES
// =============================================================================

// UploadedMsg delivers the staged attachment after a successful upload.
type UploadedMsg struct {
	Pending composer.PendingAttachment
	Err     error
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamTickMsg drives the batched flush of buffered fragments.
type StreamTickMsg struct {
	Time time.Time
}
