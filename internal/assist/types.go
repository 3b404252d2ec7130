// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assist provides the HTTP client for the remote assistant endpoint.
package assist

import (
	"github.com/sspencer10/aichat-tui/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AskRequest is the JSON body POSTed to the assistant endpoint.
type AskRequest struct {
	// Command is the user's message text.
	Command string `json:"command"`

	// Model is the model identifier to route the command to.
	Model string `json:"model"`

	// History is the trailing conversation context, oldest first.
	History []model.HistoryTurn `json:"history"`

	// WebSearch asks the server to augment the response with a web search.
	// One-shot: the caller resets it after every exchange.
	WebSearch bool `json:"webSearch"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// AskResponse is the buffered (non-streaming) response envelope.
//
// Response is a pointer so a missing field can be told apart from an empty
// string; a body with neither "response" nor "error" is a server bug the
// caller logs and drops.
type AskResponse struct {
	Response  *string `json:"response"`
	TotalCost string  `json:"total_cost"`
	ModelUsed string  `json:"model_used"`
	Error     string  `json:"error"`
}

// Text returns the response text, or "" when the field was absent.
func (r *AskResponse) Text() string {
	if r.Response == nil {
		return ""
	}
	return *r.Response
}

// =============================================================================
// DELIVERY HANDLER
// =============================================================================

// StreamHandler receives delivery callbacks from AskStream. Callbacks are
// invoked synchronously from the request goroutine, in order: Headers exactly
// once, then either Fragment zero or more times (streaming) or Buffered
// exactly once (non-streaming), then Done.
type StreamHandler interface {
	// Headers is called when response headers arrive, before any body is
	// read. streaming reports whether the server chose SSE delivery.
	Headers(contentType string, streaming bool)

	// Fragment is called for each SSE content fragment.
	Fragment(content string)

	// Buffered is called with the decoded envelope of a non-streaming
	// response.
	Buffered(resp *AskResponse)

	// Done is called after the response body is fully consumed.
	Done()
}
