// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversation state.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single turn in a conversation.
//
// Content is mutable only while IsStreaming is true (the in-progress
// assistant placeholder); once finalized the message is append-only.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	IsUser    bool      `json:"is_user"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Streaming state (not persisted). The placeholder assistant bubble is
	// the only message that ever has this set.
	IsStreaming bool `json:"-"`
}

// NewUserMessage creates a finalized user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		IsUser:    true,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates a finalized assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		IsUser:    false,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewPlaceholderMessage creates the mutable in-progress assistant bubble.
func NewPlaceholderMessage(content string) *Message {
	msg := NewAssistantMessage(content)
	msg.IsStreaming = true
	return msg
}

// Finalize freezes a streaming placeholder with its final content.
func (m *Message) Finalize(content string) {
	if !m.IsStreaming {
		return
	}
	m.Content = content
	m.IsStreaming = false
}

// Role returns the wire role string for the message.
func (m *Message) Role() string {
	if m.IsUser {
		return "user"
	}
	return "assistant"
}

// Preview returns a truncated single-line preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := strings.ReplaceAll(m.Content, "\n", " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is a handle to a persisted conversation session.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// PENDING WRITE TYPE
// =============================================================================

// PendingWrite is one (text, isUser) pair queued for a batched repository
// commit at the end of an exchange.
type PendingWrite struct {
	Content string
	IsUser  bool
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	return "msg_" + uuid.NewString()
}

// GenerateSessionID creates a unique session ID.
func GenerateSessionID() string {
	return "sess_" + uuid.NewString()
}
