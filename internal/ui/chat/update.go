// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/chatline/internal/session"
	"github.com/morganforge/chatline/internal/transport"
	"github.com/morganforge/chatline/internal/ui/components"
)

// Update is the single event loop. Async results re-enter here as
// messages; every session state mutation happens on this path.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applySizes()
		m.rebuildTranscript()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConversationListMsg:
		return m.handleConversationList(msg)

	case ConversationCreatedMsg:
		return m.handleConversationCreated(msg)

	case ConversationDeletedMsg:
		return m.handleConversationDeleted(msg)

	case HistoryMsg:
		return m.handleHistory(msg)

	case ChannelOpenedMsg:
		return m.handleChannelOpened(msg)

	case ChannelEventMsg:
		return m.handleChannelEvent(msg)

	case channelDrainedMsg:
		return m, nil

	case UploadedMsg:
		return m.handleUploaded(msg)

	case StreamTickMsg:
		return m.handleStreamTick()
	}

	// Animation frames and picker internals.
	var cmds []tea.Cmd
	if cmd := m.typing.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.focus == FocusPicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.store.Close()
		return m, tea.Quit
	}

	if m.dialog.Visible() {
		return m.handleDialogKey(msg)
	}

	switch m.focus {
	case FocusPicker:
		return m.handlePickerKey(msg)
	case FocusSidebar:
		return m.handleSidebarKey(msg)
	default:
		return m.handleComposerKey(msg)
	}
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.dialog.Close()
		m.pendingDelete = ""
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.dialog.Kind == components.DialogConfirmDelete && m.pendingDelete != "" {
			id := m.pendingDelete
			m.pendingDelete = ""
			m.dialog.Close()
			return m, deleteConversationCmd(m.client, id)
		}
		m.dialog.Close()
		return m, nil
	}
	return m, nil
}

func (m Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NewChat):
		return m, createConversationCmd(m.client)

	case key.Matches(msg, m.keys.Attach):
		m.focus = FocusPicker
		return m, m.picker.Init()

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.focus = FocusSidebar
		m.sidebar.Focused = true
		m.sidebar.FocusCurrent()
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Terms):
		m.dialog.Open(components.DialogTerms)
		return m, nil

	case key.Matches(msg, m.keys.Privacy):
		m.dialog.Open(components.DialogPrivacy)
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		// Esc discards a staged attachment before it is sent.
		m.compose.ClearPending()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.MoveUp()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.sidebar.MoveDown()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		id := m.sidebar.CursorID()
		m.leaveSidebar()
		return m, m.selectConversation(id)

	case key.Matches(msg, m.keys.NewChat):
		m.leaveSidebar()
		return m, createConversationCmd(m.client)

	case key.Matches(msg, m.keys.Delete):
		if !m.sidebar.ShowDelete {
			return m, nil
		}
		id := m.sidebar.CursorID()
		if id == "" {
			return m, nil
		}
		m.pendingDelete = id
		m.dialog.Subject = m.conversationTitle(id)
		m.dialog.Open(components.DialogConfirmDelete)
		return m, nil

	case key.Matches(msg, m.keys.ToggleSidebar), key.Matches(msg, m.keys.Cancel):
		m.leaveSidebar()
		return m, nil
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) {
		m.focus = FocusComposer
		m.input.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.focus = FocusComposer
		m.input.Focus()
		return m, tea.Batch(cmd, uploadFileCmd(m.client, path))
	}
	return m, cmd
}

func (m *Model) leaveSidebar() {
	m.focus = FocusComposer
	m.sidebar.Focused = false
	m.input.Focus()
}

func (m *Model) conversationTitle(id string) string {
	for _, c := range m.store.Conversations() {
		if c.ID == id {
			return c.Title
		}
	}
	return ""
}

// =============================================================================
// SUBMIT
// =============================================================================

// submit composes and sends the typed text plus any staged attachment.
// A refused send (empty input, no connection, turn in progress) leaves the
// draft and the staged attachment untouched.
func (m Model) submit() (tea.Model, tea.Cmd) {
	payload, err := m.compose.Compose(m.input.Value())
	if err != nil {
		return m, nil
	}

	if !m.store.SendUserMessage(payload) {
		return m, nil
	}

	m.compose.ConsumePending()
	m.input.Reset()
	m.rebuildTranscript()
	m.syncStatus()
	return m, m.typing.Start()
}

// =============================================================================
// CONVERSATION RESULTS
// =============================================================================

func (m Model) handleConversationList(msg ConversationListMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.notice = "failed to load conversations"
		m.syncStatus()
		return m, nil
	}

	selectID := m.store.ApplyConversationList(msg.Summaries)
	m.sidebar.SetConversations(m.store.Conversations())

	if selectID != "" {
		return m, m.selectConversation(selectID)
	}
	if len(msg.Summaries) == 0 {
		// First run: the client always has at least one conversation.
		return m, createConversationCmd(m.client)
	}
	return m, nil
}

func (m Model) handleConversationCreated(msg ConversationCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.notice = "failed to create conversation"
		m.syncStatus()
		return m, nil
	}

	m.store.InsertConversation(msg.Summary)
	m.sidebar.SetConversations(m.store.Conversations())
	return m, m.selectConversation(msg.Summary.ID)
}

func (m Model) handleConversationDeleted(msg ConversationDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.notice = "failed to delete conversation"
		m.syncStatus()
		return m, nil
	}

	removal := m.store.RemoveConversation(msg.ID)
	m.sidebar.SetConversations(m.store.Conversations())

	switch removal.Outcome {
	case session.RemovalSelectNext:
		return m, m.selectConversation(removal.NextID)
	case session.RemovalCreateNew:
		return m, createConversationCmd(m.client)
	}
	return m, nil
}

func (m Model) handleHistory(msg HistoryMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if msg.ID == m.store.CurrentID() {
			m.notice = "failed to load history"
			m.syncStatus()
		}
		return m, nil
	}

	if m.store.ApplyHistory(msg.ID, msg.Title, msg.Messages) {
		m.rebuildTranscript()
	}
	return m, nil
}

// =============================================================================
// CHANNEL RESULTS
// =============================================================================

func (m Model) handleChannelOpened(msg ChannelOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if msg.ConversationID == m.store.CurrentID() {
			m.notice = "connection failed"
			m.syncStatus()
		}
		return m, nil
	}

	generation, ok := m.store.AdoptChannel(msg.Channel)
	if !ok {
		// The user switched conversations while the dial was in flight.
		msg.Channel.Close()
		return m, nil
	}

	m.events = msg.Channel.Events()
	m.notice = ""
	m.syncStatus()
	return m, waitForEventCmd(m.events, generation)
}

func (m Model) handleChannelEvent(msg ChannelEventMsg) (tea.Model, tea.Cmd) {
	current := msg.Generation == m.store.Generation()

	var cmds []tea.Cmd
	if current && m.events != nil {
		cmds = append(cmds, waitForEventCmd(m.events, msg.Generation))
	}

	if !current {
		return m, tea.Batch(cmds...)
	}

	switch msg.Event.Type {
	case transport.EventFragment:
		m.typing.Stop()
		m.streamBuf.Write(msg.Generation, msg.Event.Text)
		if !m.ticking {
			m.ticking = true
			cmds = append(cmds, streamTickCmd())
		}

	case transport.EventTerminal:
		m.flushStream()
		m.store.HandleEvent(msg.Generation, msg.Event)
		m.typing.Stop()
		m.rebuildTranscript()
		m.syncStatus()

	case transport.EventClosed:
		m.flushStream()
		m.store.HandleEvent(msg.Generation, msg.Event)
		m.typing.Stop()
		m.events = nil
		m.notice = "connection lost"
		m.rebuildTranscript()
		m.syncStatus()
	}

	return m, tea.Batch(cmds...)
}

// flushStream drains any buffered fragments into the message buffer.
func (m *Model) flushStream() {
	if content, generation, ok := m.streamBuf.ForceFlush(); ok {
		m.store.HandleEvent(generation, transport.Event{
			Type: transport.EventFragment,
			Text: content,
		})
	}
}

func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if content, generation, ok := m.streamBuf.Flush(); ok {
		m.store.HandleEvent(generation, transport.Event{
			Type: transport.EventFragment,
			Text: content,
		})
		m.rebuildTranscript()
	}

	if m.store.TurnInProgress() || m.streamBuf.Pending() > 0 {
		return m, streamTickCmd()
	}
	m.ticking = false
	return m, nil
}

// =============================================================================
// UPLOAD RESULTS
// =============================================================================

func (m Model) handleUploaded(msg UploadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// A failed upload must never leave a stale file riding the next
		// send, even one staged by an earlier successful upload.
		m.compose.ClearPending()
		m.notice = "upload failed"
		m.syncStatus()
		return m, nil
	}

	m.compose.SetPending(msg.Pending)
	m.notice = ""
	m.syncStatus()
	return m, nil
}
