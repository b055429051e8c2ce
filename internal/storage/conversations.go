// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for the embedded demo
// backend.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the conversation does not exist.
var ErrNotFound = errors.New("storage: conversation not found")

// =============================================================================
// STORED TYPES
// =============================================================================

// StoredConversation is a persisted conversation with its messages.
type StoredConversation struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []StoredMessage `json:"messages"`
}

// StoredMessage is one persisted message.
type StoredMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultTitle is the title of a conversation before its first user message.
const DefaultTitle = "New Chat"

// titleLimit caps derived titles, matching what the sidebar can show.
const titleLimit = 30

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore handles conversation persistence in SQLite.
type ConversationStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages(conversation_id, id);
`

// Open opens (and initializes) a conversation store at the given SQLite
// path. Use ":memory:" for an ephemeral store.
func Open(path string) (*ConversationStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; serialize access through a
	// single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &ConversationStore{db: db}, nil
}

// Close releases the database handle.
func (s *ConversationStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// CRUD OPERATIONS
// =============================================================================

// Create inserts a new conversation with the default title and returns its
// metadata.
func (s *ConversationStore) Create(ctx context.Context) (ConversationMeta, error) {
	now := time.Now().UTC()
	meta := ConversationMeta{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)",
		meta.ID, meta.Title, meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return ConversationMeta{}, fmt.Errorf("failed to create conversation: %w", err)
	}
	return meta, nil
}

// List returns all conversations, most recently updated first.
func (s *ConversationStore) List(ctx context.Context) ([]ConversationMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	metas := make([]ConversationMeta, 0)
	for rows.Next() {
		var m ConversationMeta
		if err := rows.Scan(&m.ID, &m.Title, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Get loads one conversation with its full message history.
func (s *ConversationStore) Get(ctx context.Context, id string) (StoredConversation, error) {
	var conv StoredConversation
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?", id).
		Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredConversation{}, ErrNotFound
	}
	if err != nil {
		return StoredConversation{}, fmt.Errorf("failed to load conversation: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content, created_at FROM messages WHERE conversation_id = ? ORDER BY id", id)
	if err != nil {
		return StoredConversation{}, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	conv.Messages = make([]StoredMessage, 0)
	for rows.Next() {
		var m StoredMessage
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return StoredConversation{}, fmt.Errorf("failed to scan message: %w", err)
		}
		conv.Messages = append(conv.Messages, m)
	}
	return conv, rows.Err()
}

// Delete removes a conversation and its messages.
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// MESSAGES
// =============================================================================

// AppendMessage persists one message and bumps the conversation's
// updated_at. The first user message also names a conversation that still
// carries the default title.
func (s *ConversationStore) AppendMessage(ctx context.Context, conversationID, role, content string) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, role, content, created_at) SELECT id, ?, ?, ? FROM conversations WHERE id = ?",
		role, content, now, conversationID)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?", now, conversationID); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	if role == "user" {
		if _, err := tx.ExecContext(ctx,
			"UPDATE conversations SET title = ? WHERE id = ? AND title = ?",
			deriveTitle(content), conversationID, DefaultTitle); err != nil {
			return fmt.Errorf("failed to update title: %w", err)
		}
	}

	return tx.Commit()
}

// deriveTitle shortens a first user message into a sidebar title.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit-3]) + "..."
}
