// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for the demo backend.
package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_CreateAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meta, err := store.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, DefaultTitle, meta.Title)

	conv, err := store.Get(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.ID, conv.ID)
	assert.Empty(t, conv.Messages)
}

func TestStore_Get_NotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_List_OrderedByActivity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	b, err := store.Create(ctx)
	require.NoError(t, err)

	// Touch a so it becomes the most recent.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.AppendMessage(ctx, a.ID, "user", "hi"))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func TestStore_AppendMessage_History(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meta, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.AppendMessage(ctx, meta.ID, "user", "question"))
	require.NoError(t, store.AppendMessage(ctx, meta.ID, "assistant", "answer"))

	conv, err := store.Get(ctx, meta.ID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "user", conv.Messages[0].Role)
	assert.Equal(t, "question", conv.Messages[0].Content)
	assert.Equal(t, "assistant", conv.Messages[1].Role)
}

func TestStore_AppendMessage_MissingConversation(t *testing.T) {
	store := openTestStore(t)
	err := store.AppendMessage(context.Background(), "missing", "user", "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_TitleDerivedFromFirstUserMessage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meta, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.AppendMessage(ctx, meta.ID, "user", "How do rockets work?"))

	conv, err := store.Get(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "How do rockets work?", conv.Title)

	// A later user message does not rename the conversation.
	require.NoError(t, store.AppendMessage(ctx, meta.ID, "user", "Another question"))
	conv, err = store.Get(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "How do rockets work?", conv.Title)
}

func TestStore_TitleTruncated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meta, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(ctx, meta.ID, "user", strings.Repeat("z", 80)))

	conv, err := store.Get(ctx, meta.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(conv.Title)), 30)
	assert.True(t, strings.HasSuffix(conv.Title, "..."))
}

func TestStore_Delete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meta, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.AppendMessage(ctx, meta.ID, "user", "hi"))

	require.NoError(t, store.Delete(ctx, meta.ID))

	_, err = store.Get(ctx, meta.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, meta.ID), ErrNotFound)
}
