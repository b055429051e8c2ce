// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chat backend.
//
// The backend owns all business logic: conversation persistence, language
// model inference, streaming generation, and file parsing. This package only
// covers the request/response surface:
//
//   - GET    /conversations        ordered conversation listing
//   - POST   /conversations        create a conversation
//   - DELETE /conversations/{id}   delete a conversation
//   - GET    /conversations/{id}   fetch persisted history
//   - POST   /upload               multipart file upload, returns decoded text
//
// The bidirectional streaming channel at /chat-stream/{id} is handled by the
// transport package; ChannelURL derives its websocket URL from the client's
// base URL.
package api
