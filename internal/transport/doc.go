// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the persistent bidirectional channel between the
// client and the chat backend.
//
// The channel is an explicitly owned resource: the session store acquires
// one per current conversation and releases it on every exit path
// (selection change, teardown, error). The wire protocol is deliberately
// thin: the client sends one raw text payload per user turn, and the
// backend streams back zero or more raw text fragments followed by the
// terminal sentinel.
package transport
