// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session and message persistence.
package storage

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/sspencer10/aichat-tui/internal/model"
)

// =============================================================================
// SESSION METADATA
// =============================================================================

// SessionMeta contains metadata for listing sessions.
type SessionMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"` // First user message truncated
}

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList formats sessions for display in a table format.
func FormatSessionList(sessions []SessionMeta) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString("Sessions:\n")
	sb.WriteString("-----------------------------------------------------\n")
	sb.WriteString(formatPadded("ID", 14) + " " + formatPadded("Created", 17) + " " + formatPadded("Msgs", 5) + " Title\n")
	sb.WriteString("-----------------------------------------------------\n")

	for _, s := range sessions {
		idStr := s.ID
		if len(idStr) > 14 {
			idStr = idStr[:14]
		}
		createdStr := s.CreatedAt.Format("2006-01-02 15:04")

		sb.WriteString(formatPadded(idStr, 14) + " " +
			formatPadded(createdStr, 17) + " " +
			formatPadded(strconv.Itoa(s.MessageCount), 5) + " " +
			truncateString(s.Title, 40) + "\n")
	}
	return sb.String()
}

// =============================================================================
// SESSION EXPORT
// =============================================================================

// ExportMarkdown renders a session and its messages as Markdown.
func ExportMarkdown(session *model.Session, msgs []*model.Message) string {
	var sb strings.Builder
	sb.WriteString("# " + session.Title + "\n\n")
	sb.WriteString("Created: " + session.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range msgs {
		role := "**Assistant**"
		if msg.IsUser {
			role = "**User**"
		}
		sb.WriteString(role + " (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// exportEnvelope is the JSON export shape.
type exportEnvelope struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	CreatedAt time.Time       `json:"created_at"`
	Messages  []exportMessage `json:"messages"`
}

type exportMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ExportJSON renders a session and its messages as indented JSON.
func ExportJSON(session *model.Session, msgs []*model.Message) (string, error) {
	env := exportEnvelope{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		Messages:  make([]exportMessage, 0, len(msgs)),
	}
	for _, msg := range msgs {
		env.Messages = append(env.Messages, exportMessage{
			Role:      msg.Role(),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// truncateString truncates a string to maxLen characters, adding "..." if
// truncated. Uses rune-based truncation for proper Unicode handling.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// singleLine collapses newlines for preview display.
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", "")
}

// formatPadded pads a string to the specified width with spaces.
func formatPadded(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(runes))
}
