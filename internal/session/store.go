// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the client-side chat session state: the
// conversation list, the current selection, the visible message buffer,
// and the single open channel bound to the current conversation.
package session

import (
	"context"

	"github.com/morganforge/chatline/internal/composer"
	"github.com/morganforge/chatline/internal/model"
	"github.com/morganforge/chatline/internal/transport"
)

// =============================================================================
// CHANNEL ABSTRACTION
// =============================================================================

// Channel is the store's view of a transport channel. *transport.Channel
// satisfies it; tests substitute fakes to observe lifecycle transitions.
type Channel interface {
	Open(ctx context.Context) error
	Send(text string) error
	Events() <-chan transport.Event
	Close() error
	State() transport.State
	ConversationID() string
}

// ChannelOpener constructs a channel bound to a conversation id. The store
// owns the returned channel and releases it on every exit path.
type ChannelOpener func(conversationID string) Channel

// =============================================================================
// REMOVAL OUTCOME
// =============================================================================

// RemovalOutcome tells the caller what follow-up a deletion requires.
type RemovalOutcome int

const (
	// RemovalNone: a non-current conversation was removed; the current
	// selection and its channel are untouched.
	RemovalNone RemovalOutcome = iota
	// RemovalSelectNext: the current conversation was removed and the
	// first remaining one (NextID) should be selected.
	RemovalSelectNext
	// RemovalCreateNew: the last conversation was removed; a fresh one
	// must be created so the set never ends up empty.
	RemovalCreateNew
)

// Removal describes the result of RemoveConversation.
type Removal struct {
	Outcome RemovalOutcome
	NextID  string // set when Outcome is RemovalSelectNext
}

// =============================================================================
// STORE
// =============================================================================

// Store is the session state. It is mutated only from the single UI event
// loop; handlers run to completion before the next event, so the state
// needs no locking. Responses from suspended requests are validated
// against the current selection before they touch any state.
type Store struct {
	openFn ChannelOpener

	conversations []model.Summary
	currentID     string
	buffer        *model.Conversation
	channel       Channel

	// generation increments on every channel rebind; events tagged with an
	// older generation come from a superseded channel and are dropped.
	generation int

	turnInProgress bool
}

// NewStore creates a session store that opens channels via openFn.
func NewStore(openFn ChannelOpener) *Store {
	return &Store{
		openFn: openFn,
		buffer: model.NewConversation(),
	}
}

// =============================================================================
// READ ACCESSORS
// =============================================================================

// Conversations returns the listing in backend order.
func (s *Store) Conversations() []model.Summary {
	return s.conversations
}

// CurrentID returns the current conversation id, or "" before first load.
func (s *Store) CurrentID() string {
	return s.currentID
}

// Buffer returns the visible message buffer for the current conversation.
// Presentation reads it; only the store and the streaming reducer write it.
func (s *Store) Buffer() *model.Conversation {
	return s.buffer
}

// ConnectionStatus returns the state of the channel bound to the current
// conversation, or disconnected when none is open.
func (s *Store) ConnectionStatus() transport.State {
	if s.channel == nil {
		return transport.StateDisconnected
	}
	return s.channel.State()
}

// TurnInProgress reports whether an assistant turn is open; it gates input
// submission.
func (s *Store) TurnInProgress() bool {
	return s.turnInProgress
}

// Generation returns the current channel generation. Event handlers carry
// the generation that was current when their channel was opened.
func (s *Store) Generation() int {
	return s.generation
}

// =============================================================================
// CONVERSATION LIST LIFECYCLE
// =============================================================================

// ApplyConversationList replaces the listing wholesale; there is no
// client-side merge. The current selection is kept unless none is set, in
// which case the first conversation's id is returned for the caller to
// select (the returned id is "" when no selection change is needed).
func (s *Store) ApplyConversationList(list []model.Summary) string {
	s.conversations = list
	if s.currentID != "" || len(list) == 0 {
		return ""
	}
	return list[0].ID
}

// InsertConversation adds a newly created conversation at the head of the
// listing (the backend orders by most recent activity).
func (s *Store) InsertConversation(sum model.Summary) {
	s.conversations = append([]model.Summary{sum}, s.conversations...)
}

// RemoveConversation removes a conversation after backend deletion
// succeeded, and reports what follow-up the removal requires. Removing a
// conversation that is not current never disturbs the selection or its
// open channel.
func (s *Store) RemoveConversation(id string) Removal {
	kept := s.conversations[:0]
	for _, c := range s.conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.conversations = kept

	if id != s.currentID {
		return Removal{Outcome: RemovalNone}
	}

	// The current conversation is gone; its channel is stale.
	s.releaseChannel()
	s.currentID = ""
	s.buffer = model.NewConversation()
	s.turnInProgress = false

	if len(s.conversations) > 0 {
		return Removal{Outcome: RemovalSelectNext, NextID: s.conversations[0].ID}
	}
	return Removal{Outcome: RemovalCreateNew}
}

// =============================================================================
// SELECTION AND CHANNEL BINDING
// =============================================================================

// SelectConversation makes id the current conversation. Selecting the
// already-current id is a no-op and must not churn the channel: no close,
// no reopen, no connecting transition. Otherwise the previous channel is
// released and the visible buffer cleared before the new history loads, so
// stale content is never shown.
//
// Returns true when the selection changed and the caller should fetch the
// conversation's history and then open a channel bound to it.
func (s *Store) SelectConversation(id string) bool {
	if id == s.currentID {
		return false
	}

	s.releaseChannel()
	s.currentID = id
	s.buffer = model.NewConversation()
	s.buffer.ID = id
	s.turnInProgress = false
	return true
}

// ApplyHistory installs a fetched history into the buffer. A response for
// a conversation that is no longer current is stale: the user switched
// while the fetch was in flight. Stale responses are discarded, never
// written into the wrong conversation's buffer. Returns false on discard.
func (s *Store) ApplyHistory(id, title string, msgs []*model.Message) bool {
	if id != s.currentID {
		return false
	}
	s.buffer.ID = id
	s.buffer.SetTitle(title)
	s.buffer.ReplaceMessages(msgs)
	return true
}

// OpenChannel binds a new channel to the current conversation and opens
// it. The previous channel, if any, is released first: exactly one channel
// is open at a time, system-wide. Returns the event stream and the
// generation to tag its events with.
func (s *Store) OpenChannel(ctx context.Context) (<-chan transport.Event, int, error) {
	if s.currentID == "" {
		return nil, 0, transport.ErrNotConnected
	}

	s.releaseChannel()
	ch := s.openFn(s.currentID)
	s.generation++
	if err := ch.Open(ctx); err != nil {
		return nil, 0, err
	}
	s.channel = ch
	return ch.Events(), s.generation, nil
}

// AdoptChannel installs a channel that was opened off the event loop. By
// the time a dial completes the user may have selected another
// conversation; a channel bound to anything but the current selection is
// refused and the caller must close it. On success the previous channel is
// released and the new event generation is returned.
func (s *Store) AdoptChannel(ch Channel) (int, bool) {
	if ch.ConversationID() != s.currentID {
		return 0, false
	}
	s.releaseChannel()
	s.generation++
	s.channel = ch
	return s.generation, true
}

// releaseChannel closes and forgets the open channel, if any.
func (s *Store) releaseChannel() {
	if s.channel != nil {
		s.channel.Close()
		s.channel = nil
	}
}

// Close releases the channel on teardown.
func (s *Store) Close() {
	s.releaseChannel()
	s.turnInProgress = false
}

// =============================================================================
// SENDING
// =============================================================================

// SendUserMessage transmits one composed payload. It is a silent no-op
// (returns false) when not connected or while an assistant turn is already
// in progress; the caller keeps input affordances consistent with that.
// On success the user message is appended to the buffer with the display
// text, the wire text goes over the channel, and the turn flag is set.
func (s *Store) SendUserMessage(p composer.Payload) bool {
	if s.turnInProgress || s.ConnectionStatus() != transport.StateConnected {
		return false
	}

	// Transmit before mutating so a transport failure leaves no partial
	// state behind.
	if err := s.channel.Send(p.WireText); err != nil {
		return false
	}

	var msg *model.Message
	if p.Attachment != nil {
		msg = model.NewUserMessageWithAttachment(p.DisplayText, *p.Attachment)
	} else {
		msg = model.NewUserMessage(p.DisplayText)
	}
	s.buffer.AddMessage(msg)
	s.turnInProgress = true
	s.syncListing()
	return true
}

// syncListing mirrors the buffer's derived title and activity time onto its
// sidebar entry, so a first message renames the conversation without waiting
// for the next list reload. Order stays backend-provided; no re-sort.
func (s *Store) syncListing() {
	sum := s.buffer.GetSummary()
	for i := range s.conversations {
		if s.conversations[i].ID == sum.ID {
			s.conversations[i].Title = sum.Title
			s.conversations[i].UpdatedAt = sum.UpdatedAt
			return
		}
	}
}

// =============================================================================
// INBOUND EVENTS
// =============================================================================

// HandleEvent applies one transport event to the session state. Events
// tagged with a generation older than the current one come from a channel
// that has since been closed or superseded and are ignored; this is what
// keeps a rapid conversation switch from cross-delivering fragments into
// the wrong message list. Returns false when the event was dropped.
func (s *Store) HandleEvent(generation int, ev transport.Event) bool {
	if generation != s.generation {
		return false
	}

	switch ev.Type {
	case transport.EventFragment:
		s.buffer.ApplyFragment(ev.Text)
	case transport.EventTerminal:
		s.buffer.ApplyTerminal()
		s.turnInProgress = false
	case transport.EventClosed:
		// The channel is gone; sending stays disabled until the user
		// re-selects the conversation. No automatic reconnect.
		s.releaseChannel()
		s.buffer.ApplyTerminal()
		s.turnInProgress = false
	}
	return true
}
