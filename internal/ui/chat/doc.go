// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the chatline TUI.
//
// The package is organized by concern:
//   - model.go:     the Bubble Tea model and its construction
//   - update.go:    the event loop; all session state mutation happens here
//   - view.go:      layout and rendering
//   - messages.go:  Bubble Tea message types for async results
//   - commands.go:  tea.Cmd constructors wrapping backend calls
//   - keys.go:      keyboard bindings
//   - streaming.go: fragment batching for flicker-free streaming
//
// Concurrency model: backend requests and the websocket dial run in
// commands (goroutines) and re-enter the loop as messages. The session
// store is touched only from Update, so it needs no locking; staleness is
// handled by conversation-id and generation checks when results arrive.
package chat
