// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/chatline/internal/api"
	"github.com/morganforge/chatline/internal/composer"
	"github.com/morganforge/chatline/internal/model"
	"github.com/morganforge/chatline/internal/transport"
)

// requestTimeout bounds one backend request issued from the UI.
const requestTimeout = 15 * time.Second

// =============================================================================
// CONVERSATION COMMANDS
// =============================================================================

// loadConversationsCmd fetches the conversation listing.
func loadConversationsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		list, err := client.ListConversations(ctx)
		if err != nil {
			return ConversationListMsg{Err: err}
		}
		return ConversationListMsg{Summaries: toSummaries(list)}
	}
}

// createConversationCmd creates a conversation on the backend.
func createConversationCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sum, err := client.CreateConversation(ctx)
		if err != nil {
			return ConversationCreatedMsg{Err: err}
		}
		return ConversationCreatedMsg{Summary: toSummary(sum)}
	}
}

// deleteConversationCmd deletes a conversation on the backend.
func deleteConversationCmd(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.DeleteConversation(ctx, id); err != nil {
			return ConversationDeletedMsg{ID: id, Err: err}
		}
		return ConversationDeletedMsg{ID: id}
	}
}

// loadHistoryCmd fetches one conversation with its messages.
func loadHistoryCmd(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		detail, err := client.GetConversation(ctx, id)
		if err != nil {
			return HistoryMsg{ID: id, Err: err}
		}
		return HistoryMsg{
			ID:       detail.ID,
			Title:    detail.Title,
			Messages: wireToMessages(detail.Messages),
		}
	}
}

// =============================================================================
// CHANNEL COMMANDS
// =============================================================================

// openChannelCmd dials the websocket channel for a conversation. The dial
// runs off the event loop; Update adopts the channel only if the
// conversation is still selected when the dial completes.
func openChannelCmd(client *api.Client, conversationID string) tea.Cmd {
	return func() tea.Msg {
		ch := transport.NewChannel(conversationID, client.ChannelURL(conversationID))

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := ch.Open(ctx); err != nil {
			return ChannelOpenedMsg{ConversationID: conversationID, Err: err}
		}
		return ChannelOpenedMsg{ConversationID: conversationID, Channel: ch}
	}
}

// waitForEventCmd blocks on the channel's event stream and delivers the
// next event into the loop. Reissued after every delivery.
func waitForEventCmd(events <-chan transport.Event, generation int) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return channelDrainedMsg{Generation: generation}
		}
		return ChannelEventMsg{Generation: generation, Event: ev}
	}
}

// =============================================================================
// UPLOAD COMMANDS
// =============================================================================

// uploadFileCmd reads a local file and uploads it, staging the result as a
// pending attachment.
func uploadFileCmd(client *api.Client, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return UploadedMsg{Err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		info, err := client.UploadFile(ctx, filepath.Base(path), f)
		if err != nil {
			return UploadedMsg{Err: err}
		}
		return UploadedMsg{Pending: composer.PendingAttachment{
			Filename:    info.Filename,
			StoragePath: info.Path,
			RawContent:  info.Content,
			MimeType:    info.Type,
		}}
	}
}

// =============================================================================
// WIRE CONVERSION
// =============================================================================

func toSummary(s api.ConversationSummary) model.Summary {
	return model.Summary{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSummaries(list []api.ConversationSummary) []model.Summary {
	out := make([]model.Summary, len(list))
	for i, s := range list {
		out[i] = toSummary(s)
	}
	return out
}

// wireToMessages converts persisted history into finalized messages.
func wireToMessages(wire []api.WireMessage) []*model.Message {
	out := make([]*model.Message, 0, len(wire))
	for _, w := range wire {
		role := model.RoleUser
		if w.Role == string(model.RoleAssistant) {
			role = model.RoleAssistant
		}
		out = append(out, model.NewMessage(role, w.Content))
	}
	return out
}
