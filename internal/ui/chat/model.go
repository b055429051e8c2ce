// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/chatline/internal/api"
	"github.com/morganforge/chatline/internal/composer"
	"github.com/morganforge/chatline/internal/config"
	"github.com/morganforge/chatline/internal/session"
	"github.com/morganforge/chatline/internal/transport"
	"github.com/morganforge/chatline/internal/ui/components"
	"github.com/morganforge/chatline/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus identifies which surface receives keyboard input.
type Focus int

const (
	FocusComposer Focus = iota
	FocusSidebar
	FocusPicker
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	// Backend access
	client *api.Client

	// Session state; mutated only from Update
	store   *session.Store
	compose *composer.Composer

	// Streaming
	streamBuf *StreamingBuffer
	ticking   bool
	events    <-chan transport.Event

	// Dimensions
	width  int
	height int

	// Input focus
	focus Focus

	// UI components
	sidebar   *components.Sidebar
	statusBar *components.StatusBar
	typing    components.TypingIndicator
	dialog    *components.Dialog
	viewport  viewport.Model
	input     textinput.Model
	picker    filepicker.Model

	// Presentation options
	markdown    bool
	showSidebar bool

	// Transient error notice shown in the status bar
	notice string

	// Conversation id awaiting delete confirmation
	pendingDelete string

	quitting bool
}

// New creates the chat model against a backend client.
func New(cfg *config.Config, client *api.Client) Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	store := session.NewStore(func(id string) session.Channel {
		return transport.NewChannel(id, client.ChannelURL(id))
	})

	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.CharLimit = 4000
	input.Focus()

	picker := filepicker.New()
	if wd, err := os.Getwd(); err == nil {
		picker.CurrentDirectory = wd
	}

	sidebar := components.NewSidebar(theme)
	sidebar.ShowDelete = cfg.UI.SidebarDelete

	return Model{
		theme:       theme,
		keys:        DefaultKeyMap(),
		client:      client,
		store:       store,
		compose:     composer.New(),
		streamBuf:   NewStreamingBuffer(),
		sidebar:     sidebar,
		statusBar:   components.NewStatusBar(theme),
		typing:      components.NewTypingIndicator(theme),
		dialog:      components.NewDialog(theme),
		viewport:    viewport.New(80, 20),
		input:       input,
		picker:      picker,
		markdown:    cfg.UI.Markdown,
		showSidebar: true,
	}
}

// Init loads the conversation listing and starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		loadConversationsCmd(m.client),
	)
}

// Store exposes the session state for inspection in tests.
func (m Model) Store() *session.Store {
	return m.store
}

// =============================================================================
// LAYOUT
// =============================================================================

// applySizes propagates the window size to every component.
func (m *Model) applySizes() {
	m.theme.SetSize(m.width, m.height)

	sidebarWidth := 0
	if m.showSidebar {
		sidebarWidth = m.theme.SidebarWidth()
	}

	// Header, typing row, input, status bar
	const chromeHeight = 5

	contentWidth := m.width - sidebarWidth
	if contentWidth < 20 {
		contentWidth = 20
	}
	contentHeight := m.height - chromeHeight
	if contentHeight < 3 {
		contentHeight = 3
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	m.sidebar.SetSize(sidebarWidth, contentHeight)
	m.statusBar.SetWidth(m.width)
	m.dialog.SetSize(m.width, m.height)
	m.input.Width = contentWidth - 6
	m.picker.Height = contentHeight
}

// rebuildTranscript re-renders the message buffer into the viewport and
// keeps the view pinned to the newest content.
func (m *Model) rebuildTranscript() {
	list := components.NewMessageList(m.theme)
	list.SetWidth(m.viewport.Width)
	list.Markdown = m.markdown
	list.SetMessages(m.store.Buffer().Messages)

	m.viewport.SetContent(list.View())
	m.viewport.GotoBottom()
}

// syncStatus refreshes the status bar from session state.
func (m *Model) syncStatus() {
	m.statusBar.Connection = m.store.ConnectionStatus()
	m.statusBar.Streaming = m.store.TurnInProgress()
	m.statusBar.Notice = m.notice
}

// selectConversation switches the session to the given conversation and
// kicks off its history fetch and channel dial. Selecting the current
// conversation is a no-op.
func (m *Model) selectConversation(id string) tea.Cmd {
	if !m.store.SelectConversation(id) {
		return nil
	}

	m.sidebar.CurrentID = id
	m.streamBuf.Reset()
	m.typing.Stop()
	m.notice = ""
	m.events = nil
	m.rebuildTranscript()
	m.syncStatus()

	return tea.Batch(
		loadHistoryCmd(m.client, id),
		openChannelCmd(m.client, id),
	)
}
