// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the chatline
// TUI: the conversation sidebar, message bubbles, typing indicator, status
// bar, and overlay dialogs. Components are pure view helpers; state lives
// in the chat model and is passed in for rendering.
package components
