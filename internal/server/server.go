// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the embedded demo backend.
//
// Endpoints:
//   - GET    /conversations        ordered conversation listing
//   - POST   /conversations        create a conversation
//   - DELETE /conversations/{id}   delete a conversation
//   - GET    /conversations/{id}   conversation with history
//   - POST   /upload               multipart file upload
//   - GET    /chat-stream/{id}     websocket chat channel
//
// The production backend owns inference and persistence; this one answers
// with a canned responder and a local SQLite store so the client can be
// exercised offline against the identical contract.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/morganforge/chatline/internal/storage"
	"github.com/morganforge/chatline/internal/transport"
)

// Limits for inbound requests.
const (
	// MaxUploadSize caps uploaded files (4MB); uploads are held in memory
	// only long enough to decode them.
	MaxUploadSize = 4 * 1024 * 1024

	// MaxPayloadSize caps one inbound chat payload.
	MaxPayloadSize = 1 * 1024 * 1024
)

// fragmentsPerSecond paces streamed fragments so the client sees a
// realistic incremental stream instead of one burst.
const fragmentsPerSecond = 40

// Responder produces the assistant reply for one user payload.
// The demo default echoes with a small markdown response.
type Responder func(prompt string) string

// =============================================================================
// SERVER
// =============================================================================

// Server is the demo backend.
type Server struct {
	store     *storage.ConversationStore
	responder Responder
	upgrader  websocket.Upgrader
	logger    *log.Logger
}

// New creates a demo server over the given store. A nil responder uses the
// canned default.
func New(store *storage.ConversationStore, responder Responder) *Server {
	if responder == nil {
		responder = DefaultResponder
	}
	return &Server{
		store:     store,
		responder: responder,
		upgrader:  websocket.Upgrader{},
		logger:    log.New(io.Discard, "", 0),
	}
}

// SetLogger installs a logger for request-level diagnostics.
func (s *Server) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Handler returns the HTTP handler for the demo backend.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /conversations", s.handleList)
	mux.HandleFunc("POST /conversations", s.handleCreate)
	mux.HandleFunc("GET /conversations/{id}", s.handleGet)
	mux.HandleFunc("DELETE /conversations/{id}", s.handleDelete)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /chat-stream/{id}", s.handleChatStream)
	return mux
}

// ListenAndServe runs the demo backend until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		srv.Shutdown(context.Background())
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// =============================================================================
// CONVERSATION HANDLERS
// =============================================================================

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	meta, err := s.store.Create(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, meta)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	conv, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.store.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// UPLOAD HANDLER
// =============================================================================

// uploadResponse mirrors the backend upload contract: the stored path plus
// the decoded textual content.
type uploadResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		Filename: header.Filename,
		Path:     "uploads/" + uuid.NewString() + "/" + header.Filename,
		Content:  string(data),
		Type:     mimeType,
	})
}

// =============================================================================
// CHAT STREAM HANDLER
// =============================================================================

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")

	// The channel binds to one conversation; it must exist.
	if _, err := s.store.Get(r.Context(), conversationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, err)
		} else {
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	limiter := rate.NewLimiter(rate.Limit(fragmentsPerSecond), 1)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if len(payload) > MaxPayloadSize {
			return
		}

		text := string(payload)
		if err := s.store.AppendMessage(r.Context(), conversationID, "user", text); err != nil {
			s.logger.Printf("chat-stream %s: persist user message: %v", conversationID, err)
			return
		}

		reply := s.responder(text)
		if err := s.streamReply(r.Context(), conn, limiter, reply); err != nil {
			return
		}

		if err := s.store.AppendMessage(r.Context(), conversationID, "assistant", reply); err != nil {
			s.logger.Printf("chat-stream %s: persist assistant message: %v", conversationID, err)
			return
		}
	}
}

// streamReply sends the reply line by line as paced fragments, then the
// terminal sentinel. Line splitting mirrors the production backend, which
// flushes complete lines while generating.
func (s *Server) streamReply(ctx context.Context, conn *websocket.Conn, limiter *rate.Limiter, reply string) error {
	for _, fragment := range splitFragments(reply) {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(fragment)); err != nil {
			return err
		}
	}
	return conn.WriteMessage(websocket.TextMessage, []byte(transport.TerminalSentinel))
}

// splitFragments cuts a reply into newline-terminated fragments.
func splitFragments(reply string) []string {
	if reply == "" {
		return nil
	}
	lines := strings.SplitAfter(reply, "\n")
	fragments := lines[:0]
	for _, l := range lines {
		if l != "" {
			fragments = append(fragments, l)
		}
	}
	return fragments
}

// =============================================================================
// RESPONDER
// =============================================================================

// DefaultResponder is the canned demo reply: it echoes the prompt in a
// short markdown response.
func DefaultResponder(prompt string) string {
	first := prompt
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	return fmt.Sprintf(
		"I received your message: %q\n\nHere's a **markdown** formatted response:\n- Point 1\n- Point 2\n\n*Italic* and **bold** text are supported.\n",
		first)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"detail": err.Error()})
}
