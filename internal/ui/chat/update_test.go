// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/chatline/internal/api"
	"github.com/morganforge/chatline/internal/composer"
	"github.com/morganforge/chatline/internal/config"
	"github.com/morganforge/chatline/internal/model"
	"github.com/morganforge/chatline/internal/transport"
)

// newTestModel builds a chat model against an unreachable backend; tests
// drive Update with messages directly and never execute backend commands.
func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.Default()
	m := New(cfg, api.NewClient("http://127.0.0.1:1"))

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func apply(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func composerPending(name string) composer.PendingAttachment {
	return composer.PendingAttachment{
		Filename:    name,
		StoragePath: "uploads/x/" + name,
		RawContent:  "content",
		MimeType:    "text/plain",
	}
}

func summaries(ids ...string) []model.Summary {
	out := make([]model.Summary, len(ids))
	for i, id := range ids {
		out[i] = model.Summary{ID: id, Title: "Chat " + id}
	}
	return out
}

// =============================================================================
// CONVERSATION LIST HANDLING
// =============================================================================

func TestConversationListSelectsFirst(t *testing.T) {
	m := newTestModel(t)

	m, cmd := apply(t, m, ConversationListMsg{Summaries: summaries("c1", "c2")})

	assert.Equal(t, "c1", m.Store().CurrentID())
	// Selection kicks off the history fetch and channel dial.
	assert.NotNil(t, cmd)
}

func TestConversationListEmptyCreatesOne(t *testing.T) {
	m := newTestModel(t)

	m, cmd := apply(t, m, ConversationListMsg{Summaries: nil})

	assert.Empty(t, m.Store().CurrentID())
	assert.NotNil(t, cmd, "empty listing should trigger conversation creation")
}

func TestConversationListErrorSetsNotice(t *testing.T) {
	m := newTestModel(t)

	m, _ = apply(t, m, ConversationListMsg{Err: assert.AnError})

	assert.NotEmpty(t, m.notice)
}

// =============================================================================
// CREATE AND DELETE
// =============================================================================

func TestConversationCreatedSelects(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, ConversationListMsg{Summaries: summaries("c1")})

	m, cmd := apply(t, m, ConversationCreatedMsg{Summary: model.Summary{ID: "c2", Title: "New Chat"}})

	assert.Equal(t, "c2", m.Store().CurrentID())
	require.Len(t, m.Store().Conversations(), 2)
	assert.Equal(t, "c2", m.Store().Conversations()[0].ID, "new conversation goes to the head")
	assert.NotNil(t, cmd)
}

func TestConversationDeletedSelectsNext(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, ConversationListMsg{Summaries: summaries("c1", "c2")})

	m, cmd := apply(t, m, ConversationDeletedMsg{ID: "c1"})

	assert.Equal(t, "c2", m.Store().CurrentID())
	assert.NotNil(t, cmd)
}

func TestConversationDeletedLastCreatesNew(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, ConversationListMsg{Summaries: summaries("c1")})

	m, cmd := apply(t, m, ConversationDeletedMsg{ID: "c1"})

	assert.Empty(t, m.Store().Conversations())
	assert.NotNil(t, cmd, "removing the last conversation should trigger creation")
}

func TestConversationDeletedNonCurrentKeepsSelection(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, ConversationListMsg{Summaries: summaries("c1", "c2")})

	m, cmd := apply(t, m, ConversationDeletedMsg{ID: "c2"})

	assert.Equal(t, "c1", m.Store().CurrentID())
	assert.Nil(t, cmd)
}

// =============================================================================
// HISTORY HANDLING
// =============================================================================

func TestHistoryApplied(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, ConversationListMsg{Summaries: summaries("c1")})

	msgs := []*model.Message{
		model.NewMessage(model.RoleUser, "hi"),
		model.NewMessage(model.RoleAssistant, "hello"),
	}
	m, _ = apply(t, m, HistoryMsg{ID: "c1", Title: "Chat c1", Messages: msgs})

	assert.Len(t, m.Store().Buffer().Messages, 2)
	assert.Equal(t, "Chat c1", m.Store().Buffer().Title)
}

func TestStaleHistoryDiscarded(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, ConversationListMsg{Summaries: summaries("c1", "c2")})

	// History for c2 lands while c1 is selected.
	stale := []*model.Message{model.NewMessage(model.RoleUser, "wrong window")}
	m, _ = apply(t, m, HistoryMsg{ID: "c2", Title: "Chat c2", Messages: stale})

	assert.Empty(t, m.Store().Buffer().Messages, "stale history must not be shown")
}

// =============================================================================
// CHANNEL EVENT HANDLING
// =============================================================================

func TestFragmentsCoalesceIntoOneMessage(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, ConversationListMsg{Summaries: summaries("c1")})
	generation := m.Store().Generation()

	m, _ = apply(t, m, ChannelEventMsg{Generation: generation, Event: transport.Event{
		Type: transport.EventFragment, Text: "Hel",
	}})
	m, _ = apply(t, m, ChannelEventMsg{Generation: generation, Event: transport.Event{
		Type: transport.EventFragment, Text: "lo",
	}})

	// Terminal forces the buffered tail out and freezes the message.
	m, _ = apply(t, m, ChannelEventMsg{Generation: generation, Event: transport.Event{
		Type: transport.EventTerminal,
	}})

	msgs := m.Store().Buffer().Messages
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hello", msgs[0].GetDisplayContent())
	assert.False(t, msgs[0].IsStreaming)
	assert.False(t, m.Store().TurnInProgress())
}

func TestSupersededGenerationEventDropped(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, ConversationListMsg{Summaries: summaries("c1")})
	staleGen := m.Store().Generation() - 1

	m, _ = apply(t, m, ChannelEventMsg{Generation: staleGen, Event: transport.Event{
		Type: transport.EventFragment, Text: "stray",
	}})
	m, _ = apply(t, m, ChannelEventMsg{Generation: m.Store().Generation(), Event: transport.Event{
		Type: transport.EventTerminal,
	}})

	for _, msg := range m.Store().Buffer().Messages {
		assert.NotContains(t, msg.GetDisplayContent(), "stray")
	}
}

func TestChannelClosedSetsNotice(t *testing.T) {
	m := newTestModel(t)
	m, _ = apply(t, m, ConversationListMsg{Summaries: summaries("c1")})

	m, _ = apply(t, m, ChannelEventMsg{Generation: m.Store().Generation(), Event: transport.Event{
		Type: transport.EventClosed,
	}})

	assert.Equal(t, transport.StateDisconnected, m.Store().ConnectionStatus())
	assert.NotEmpty(t, m.notice)
}

func TestTypingRowHiddenOnceReplyStreams(t *testing.T) {
	m := newTestModel(t)

	m.typing.Start()
	require.NotEmpty(t, m.viewTypingRow())

	// Reply text on screen supersedes the indicator.
	m.store.Buffer().ApplyFragment("Hel")
	assert.Empty(t, m.viewTypingRow())
}

// =============================================================================
// UPLOAD HANDLING
// =============================================================================

func TestUploadedStagesAttachment(t *testing.T) {
	m := newTestModel(t)

	m, _ = apply(t, m, UploadedMsg{Pending: composerPending("notes.txt")})

	pending := m.compose.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, "notes.txt", pending.Filename)
}

func TestUploadFailureLeavesComposerEmpty(t *testing.T) {
	m := newTestModel(t)

	m, _ = apply(t, m, UploadedMsg{Err: assert.AnError})

	assert.Nil(t, m.compose.Pending())
	assert.NotEmpty(t, m.notice)
}

func TestUploadFailureDropsEarlierAttachment(t *testing.T) {
	m := newTestModel(t)

	// Stage one attachment, then fail the next upload: nothing may ride
	// the following send.
	m, _ = apply(t, m, UploadedMsg{Pending: composerPending("old.txt")})
	m, _ = apply(t, m, UploadedMsg{Err: assert.AnError})

	assert.Nil(t, m.compose.Pending())
	assert.NotEmpty(t, m.notice)
}

// =============================================================================
// WIRE CONVERSION
// =============================================================================

func TestWireToMessages(t *testing.T) {
	wire := []api.WireMessage{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	}

	msgs := wireToMessages(wire)

	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "answer", msgs[1].GetDisplayContent())
	assert.False(t, msgs[1].IsStreaming, "history messages arrive finalized")
}
