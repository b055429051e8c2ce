// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// The central piece is the streaming reducer on Conversation: inbound
// transport fragments are merged into the last assistant message in place
// while a turn is open, and the terminal marker freezes it. Messages are a
// tagged union over plain text and text-with-attachment; attachment
// metadata travels as a structured field, never as markup embedded in the
// content string.
package model
