// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

// =============================================================================
// STREAMING BUFFER TESTS
// =============================================================================

func TestStreamingBufferBatchFlush(t *testing.T) {
	sb := NewStreamingBuffer()

	// Below both thresholds nothing flushes.
	sb.Write(1, "a")
	if _, _, ok := sb.Flush(); ok {
		t.Error("single fragment should not reach the batch threshold")
	}

	for i := 0; i < defaultBatchSize; i++ {
		sb.Write(1, "x")
	}
	content, generation, ok := sb.Flush()
	if !ok {
		t.Fatal("batch threshold should trigger a flush")
	}
	if generation != 1 {
		t.Errorf("flush generation = %d, want 1", generation)
	}
	if len(content) != defaultBatchSize+1 {
		t.Errorf("flushed %d bytes, want %d", len(content), defaultBatchSize+1)
	}
}

func TestStreamingBufferTimeFlush(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write(1, "slow")

	time.Sleep(defaultFlushInterval + 10*time.Millisecond)

	content, _, ok := sb.Flush()
	if !ok {
		t.Fatal("time threshold should trigger a flush")
	}
	if content != "slow" {
		t.Errorf("flushed %q, want %q", content, "slow")
	}
}

func TestStreamingBufferPreservesOrder(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write(1, "Hel")
	sb.Write(1, "lo ")
	sb.Write(1, "world")

	content, _, ok := sb.ForceFlush()
	if !ok {
		t.Fatal("ForceFlush should return buffered content")
	}
	if content != "Hello world" {
		t.Errorf("content = %q, want %q", content, "Hello world")
	}
}

func TestStreamingBufferGenerationChangeDiscards(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write(1, "stale text")

	// A new generation starts before the old text flushed; it must not
	// leak into the new stream.
	sb.Write(2, "fresh")

	content, generation, ok := sb.ForceFlush()
	if !ok {
		t.Fatal("ForceFlush should return buffered content")
	}
	if content != "fresh" {
		t.Errorf("content = %q, want %q", content, "fresh")
	}
	if generation != 2 {
		t.Errorf("generation = %d, want 2", generation)
	}
}

func TestStreamingBufferForceFlushEmpty(t *testing.T) {
	sb := NewStreamingBuffer()
	if _, _, ok := sb.ForceFlush(); ok {
		t.Error("ForceFlush on an empty buffer should report nothing")
	}
}

func TestStreamingBufferReset(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write(1, "discard me")
	sb.Reset()

	if sb.Pending() != 0 {
		t.Errorf("Pending after Reset = %d, want 0", sb.Pending())
	}
	if _, _, ok := sb.ForceFlush(); ok {
		t.Error("Reset should discard buffered content")
	}
}
