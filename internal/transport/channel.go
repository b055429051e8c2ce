// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the persistent bidirectional channel to the chat
// backend. Exactly one channel is open at a time, bound to one conversation.
package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// TerminalSentinel is the raw text value the backend sends to signal that an
// assistant turn is complete.
const TerminalSentinel = "[END]"

// eventBuffer is the capacity of the inbound event queue. Fragments beyond
// it block the reader until the consumer catches up; they are never dropped.
const eventBuffer = 256

// Error variables for channel misuse.
var (
	// ErrNotConnected indicates a send was attempted while the channel is
	// not in the connected state. Sends are rejected, never queued.
	ErrNotConnected = errors.New("channel not connected")

	// ErrAlreadyOpen indicates Open was called outside the disconnected state.
	ErrAlreadyOpen = errors.New("channel already open or opening")
)

// =============================================================================
// STATE
// =============================================================================

// State is the connection state of the channel.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// =============================================================================
// EVENTS
// =============================================================================

// EventType discriminates inbound channel events.
type EventType int

const (
	// EventFragment carries one incremental chunk of assistant text.
	EventFragment EventType = iota
	// EventTerminal signals the end of an assistant turn.
	EventTerminal
	// EventClosed signals the channel closed, cleanly or not.
	EventClosed
)

// Event is one inbound occurrence on the channel. Fragments are delivered
// in receipt order; the transport preserves the order the backend sent.
type Event struct {
	Type           EventType
	ConversationID string
	Text           string // fragment text, empty otherwise
	Err            error  // close cause, nil on clean close
}

// =============================================================================
// CHANNEL
// =============================================================================

// Channel is the persistent bidirectional connection for one conversation.
//
// Lifecycle: disconnected -> connecting -> connected -> disconnected. Open
// is allowed only from disconnected; Close is allowed from any state and
// always ends in disconnected. After Close, no further events are emitted,
// even if the read loop still has frames in flight: this guards races when
// rapidly switching conversations.
type Channel struct {
	mu             sync.Mutex
	state          State
	conversationID string
	url            string
	dialer         *websocket.Dialer
	conn           *websocket.Conn
	events         chan Event
	done           chan struct{}
	closed         bool
}

// NewChannel creates a channel bound to one conversation. It starts in the
// disconnected state; call Open to connect.
func NewChannel(conversationID, url string) *Channel {
	return &Channel{
		state:          StateDisconnected,
		conversationID: conversationID,
		url:            url,
		dialer:         websocket.DefaultDialer,
		events:         make(chan Event, eventBuffer),
		done:           make(chan struct{}),
	}
}

// ConversationID returns the conversation this channel is bound to.
func (c *Channel) ConversationID() string {
	return c.conversationID
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Events returns the inbound event stream. The channel is closed after
// Close or a connection failure; consumers must tolerate that.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Open dials the backend. Allowed only from the disconnected state; the
// channel moves to connecting for the duration of the handshake and to
// connected once the provider acknowledges the open.
func (c *Channel) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrNotConnected
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.state = StateConnecting
	dialer := c.dialer
	url := c.url
	c.mu.Unlock()

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	if c.closed {
		// Closed while the handshake was in flight: release the socket.
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return ErrNotConnected
	}
	if err != nil {
		c.state = StateDisconnected
		c.mu.Unlock()
		return err
	}
	c.conn = conn
	c.state = StateConnected
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// Send transmits one raw text payload for a user turn. Rejected with
// ErrNotConnected unless the channel is connected; payloads are never
// queued, which keeps ordering trivial.
func (c *Channel) Send(text string) error {
	c.mu.Lock()
	if c.state != StateConnected || c.conn == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	conn := c.conn
	c.mu.Unlock()

	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close tears the channel down. Safe from any state and idempotent; always
// ends in disconnected. Events still in flight from the read loop are
// discarded once Close has been called.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.state = StateDisconnected
	conn := c.conn
	c.conn = nil
	close(c.done)
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	return err
}

// =============================================================================
// READ LOOP
// =============================================================================

// readLoop translates websocket frames into Events until the connection
// ends. One raw text frame is one fragment, except the terminal sentinel.
func (c *Channel) readLoop(conn *websocket.Conn) {
	defer close(c.events)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			wasClosed := c.closed
			c.state = StateDisconnected
			c.mu.Unlock()

			if !wasClosed {
				// Unexpected close: surface it once, then stop.
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					err = nil
				}
				c.emit(Event{Type: EventClosed, ConversationID: c.conversationID, Err: err})
			}
			return
		}

		text := string(data)
		ev := Event{Type: EventFragment, ConversationID: c.conversationID, Text: text}
		if text == TerminalSentinel {
			ev = Event{Type: EventTerminal, ConversationID: c.conversationID}
		}
		if !c.emit(ev) {
			return
		}
	}
}

// emit delivers an event unless the channel has been closed. Returns false
// when delivery stopped because of Close. The done check runs before the
// send: with buffer space free the two-way select could otherwise pick the
// send arm even after Close.
func (c *Channel) emit(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case <-c.done:
		return false
	case c.events <- ev:
		return true
	}
}
