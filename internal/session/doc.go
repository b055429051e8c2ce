// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the client-side chat session state.
//
// The store owns four pieces of state: the conversation listing (backend
// order), the current selection, the visible message buffer, and the one
// channel bound to the current conversation. All mutations happen on the
// UI event loop; asynchronous work (HTTP fetches, channel events) re-enters
// through Apply/Handle methods that validate the response against the
// current selection or channel generation and silently discard stale
// arrivals.
package session
