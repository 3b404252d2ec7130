// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assist provides the HTTP client for the remote assistant endpoint.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the assistant client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeServer
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeConnection, Message: "assistant endpoint unreachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsInvalidResponse checks if an error means the body could not be decoded.
func IsInvalidResponse(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeInvalidResponse
	}
	return false
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the assistant client.
type ClientConfig struct {
	// URL is the assistant endpoint commands are POSTed to.
	URL string

	// APIKey is the bearer token sent with every request.
	APIKey string

	// Timeout for buffered requests (default: 60s). Streaming requests are
	// governed by context cancellation instead.
	Timeout time.Duration
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		URL:     "https://ai.sspencer10.com/ask",
		Timeout: 60 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the assistant endpoint. Every request is
// a POST carrying the command, model, trailing history, and the one-shot web
// search flag; the server decides per response whether to stream.
//
// The Client is thread-safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new assistant client.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// newRequest builds the POST with auth and negotiation headers.
func (c *Client) newRequest(ctx context.Context, askReq *AskRequest) (*http.Request, error) {
	body, err := json.Marshal(askReq)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	return req, nil
}

// isEventStream reports whether the response negotiated SSE delivery.
func isEventStream(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/event-stream")
}

// =============================================================================
// BUFFERED ASK
// =============================================================================

// Ask sends a command and returns the complete buffered response. If the
// server streams anyway, the fragments are accumulated into a single
// response.
func (c *Client) Ask(ctx context.Context, askReq *AskRequest) (*AskResponse, error) {
	var result *AskResponse
	handler := &collectHandler{}

	if err := c.AskStream(ctx, askReq, handler); err != nil {
		return nil, err
	}

	if handler.buffered != nil {
		result = handler.buffered
	} else {
		text := handler.accumulated.String()
		result = &AskResponse{Response: &text}
	}
	return result, nil
}

// collectHandler accumulates a full response for the buffered Ask path.
type collectHandler struct {
	buffered    *AskResponse
	accumulated strings.Builder
}

func (h *collectHandler) Headers(contentType string, streaming bool) {}
func (h *collectHandler) Fragment(content string)                    { h.accumulated.WriteString(content) }
func (h *collectHandler) Buffered(resp *AskResponse)                 { h.buffered = resp }
func (h *collectHandler) Done()                                      {}

// =============================================================================
// STREAMING ASK
// =============================================================================

// AskStream sends a command and delivers the response through the handler.
// The delivery mode is chosen by the server: a text/event-stream content type
// gets per-fragment delivery, anything else is decoded as a single buffered
// envelope. Callbacks run synchronously on the calling goroutine. Returns
// when delivery is complete or an error occurs; Done is only called after a
// fully consumed body.
func (c *Client) AskStream(ctx context.Context, askReq *AskRequest, handler StreamHandler) error {
	req, err := c.newRequest(ctx, askReq)
	if err != nil {
		return err
	}

	// No client timeout for streaming; the context governs the lifetime.
	streamClient := &http.Client{}

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: "assistant endpoint unreachable", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeServer,
			Message: "assistant request failed: " + resp.Status,
		}
	}

	contentType := resp.Header.Get("Content-Type")
	streaming := isEventStream(contentType)
	handler.Headers(contentType, streaming)

	if streaming {
		reader := NewStreamReader(resp.Body)
		if err := reader.Process(ctx, handler.Fragment); err != nil {
			return err
		}
		handler.Done()
		return nil
	}

	var envelope AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	handler.Buffered(&envelope)
	handler.Done()
	return nil
}
