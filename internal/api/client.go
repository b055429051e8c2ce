// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chat backend's REST surface:
// conversation CRUD, history fetch, and file upload.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is the default backend address.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// Prevents memory exhaustion on a misbehaving backend.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Error variables for common backend failures.
var (
	// ErrNotFound indicates the conversation does not exist on the backend.
	ErrNotFound = errors.New("conversation not found")

	// ErrBackendUnavailable indicates the backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// BackendError represents a non-2xx response from the backend.
type BackendError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend error (status %d)", e.StatusCode)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ConversationSummary is one entry of the GET /conversations listing.
// The backend provides the list order; the client never re-sorts it.
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WireMessage is one persisted message of a conversation's history.
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationDetail is the GET /conversations/{id} response.
type ConversationDetail struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Messages []WireMessage `json:"messages"`
}

// FileInfo is the POST /upload response: the backend stores the file and
// returns its decoded textual content alongside the assigned path.
type FileInfo struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat backend's REST endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL.
// An empty base URL falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewClientWithHTTPClient creates a client with a custom http.Client.
// Used by tests and callers that need custom transports.
func NewClientWithHTTPClient(baseURL string, hc *http.Client) *Client {
	c := NewClient(baseURL)
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ChannelURL returns the websocket URL for a conversation's chat stream.
func (c *Client) ChannelURL(conversationID string) string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = path.Join(u.Path, "chat-stream", conversationID)
	return u.String()
}

// =============================================================================
// CONVERSATION CRUD
// =============================================================================

// ListConversations fetches the ordered conversation list.
func (c *Client) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	var out []ConversationSummary
	if err := c.doJSON(ctx, http.MethodGet, "/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateConversation asks the backend to create a new conversation.
func (c *Client) CreateConversation(ctx context.Context) (ConversationSummary, error) {
	var out ConversationSummary
	if err := c.doJSON(ctx, http.MethodPost, "/conversations", nil, &out); err != nil {
		return ConversationSummary{}, err
	}
	return out, nil
}

// DeleteConversation deletes a conversation by id.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/conversations/"+url.PathEscape(id), nil, nil)
}

// GetConversation fetches a conversation's persisted history.
func (c *Client) GetConversation(ctx context.Context, id string) (ConversationDetail, error) {
	var out ConversationDetail
	if err := c.doJSON(ctx, http.MethodGet, "/conversations/"+url.PathEscape(id), nil, &out); err != nil {
		return ConversationDetail{}, err
	}
	return out, nil
}

// =============================================================================
// UPLOAD
// =============================================================================

// UploadFile uploads a file as multipart form data. The backend decodes the
// file to text and returns it in FileInfo.Content.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (FileInfo, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return FileInfo{}, fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return FileInfo{}, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FileInfo{}, c.errorFromResponse(resp)
	}

	var info FileInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize)).Decode(&info); err != nil {
		return FileInfo{}, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return info, nil
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// doJSON performs a request and decodes the JSON response into out.
// A nil out discards the body (e.g. DELETE returning no content).
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorFromResponse maps a non-2xx response to an error value.
func (c *Client) errorFromResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Detail != "" {
			message = apiErr.Detail
		} else {
			message = apiErr.Error
		}
	}

	return &BackendError{
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
