// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches inbound fragments before they are applied to the
// message buffer. Without batching every websocket frame forces a full
// viewport rebuild, which flickers and burns CPU on fast streams. Buffered
// text is flushed when either:
//  1. The batch size threshold is reached
//  2. Enough time has passed since the last flush (~33ms for 30fps)
//
// Fragments are concatenated in arrival order, so a flush applies exactly
// the text of the fragments it covers.
type StreamingBuffer struct {
	buffer        strings.Builder
	fragmentCount int
	lastFlush     time.Time

	// generation tags the buffered text; fragments of a superseded channel
	// must never merge with the current stream.
	generation int

	batchSize  int
	minFlushMs time.Duration
}

// Flush cadence defaults. 30fps is smooth without being wasteful.
const (
	defaultBatchSize     = 15
	defaultFlushInterval = 33 * time.Millisecond
)

// NewStreamingBuffer creates a buffer with default cadence.
func NewStreamingBuffer() *StreamingBuffer {
	return &StreamingBuffer{
		batchSize:  defaultBatchSize,
		minFlushMs: defaultFlushInterval,
		lastFlush:  time.Now(),
	}
}

// Write buffers one fragment for the given channel generation. Text from
// an older generation still sitting in the buffer is discarded first.
func (sb *StreamingBuffer) Write(generation int, text string) {
	if generation != sb.generation {
		sb.buffer.Reset()
		sb.fragmentCount = 0
		sb.generation = generation
	}
	sb.buffer.WriteString(text)
	sb.fragmentCount++
}

// Flush returns buffered content if a flush threshold was reached.
// Returns the generation the content belongs to.
func (sb *StreamingBuffer) Flush() (string, int, bool) {
	if !sb.shouldFlush() {
		return "", 0, false
	}
	return sb.take()
}

// ForceFlush drains the buffer regardless of thresholds. Call on terminal
// events so the tail of a reply is never stranded.
func (sb *StreamingBuffer) ForceFlush() (string, int, bool) {
	if sb.buffer.Len() == 0 {
		return "", 0, false
	}
	return sb.take()
}

// Reset clears the buffer without flushing.
func (sb *StreamingBuffer) Reset() {
	sb.buffer.Reset()
	sb.fragmentCount = 0
	sb.lastFlush = time.Now()
}

// Pending returns the number of buffered fragments.
func (sb *StreamingBuffer) Pending() int {
	return sb.fragmentCount
}

func (sb *StreamingBuffer) take() (string, int, bool) {
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.fragmentCount = 0
	sb.lastFlush = time.Now()
	return content, sb.generation, true
}

func (sb *StreamingBuffer) shouldFlush() bool {
	if sb.buffer.Len() == 0 {
		return false
	}
	if sb.fragmentCount >= sb.batchSize {
		return true
	}
	return time.Since(sb.lastFlush) >= sb.minFlushMs
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd schedules the next flush check at the 30fps cadence.
func streamTickCmd() tea.Cmd {
	return tea.Tick(defaultFlushInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
