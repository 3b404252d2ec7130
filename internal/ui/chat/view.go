// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sspencer10/aichat-tui/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen: header, transcript viewport, input line, and
// status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.renderInput())
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	return sb.String()
}

// renderHeader shows the session title and model name.
func (m Model) renderHeader() string {
	title := styles.AssistantLabel.Render(m.sessionTitle())
	modelName := styles.Hint.Render(m.manager.Model())
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(modelName)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + modelName
}

// renderTranscript renders every message as a labeled bubble.
func (m *Model) renderTranscript() string {
	msgs := m.conv.Messages()
	if len(msgs) == 0 {
		return styles.Hint.Render("Type a command to get started.")
	}

	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n")
		}
		if msg.IsUser {
			sb.WriteString(styles.UserLabel.Render("You"))
			sb.WriteString("\n")
			sb.WriteString(styles.UserBubble.Width(m.bubbleWidth()).Render(msg.Content))
		} else {
			sb.WriteString(styles.AssistantLabel.Render("Assistant"))
			sb.WriteString("\n")
			content := msg.Content
			if msg.IsStreaming && content == "" {
				content = "..."
			} else if !msg.IsStreaming {
				content = m.renderMarkdown(content)
			}
			sb.WriteString(styles.AssistantBubble.Width(m.bubbleWidth()).Render(content))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// bubbleWidth caps message bubbles below the viewport width.
func (m *Model) bubbleWidth() int {
	w := m.viewport.Width - 2
	if w < 20 {
		w = 20
	}
	return w
}

// renderInput shows the command input line.
func (m Model) renderInput() string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Width(m.width - 2).
		Render(m.input.View())
}

// renderStatus shows the typing spinner, armed flags, and keybinding hints.
func (m Model) renderStatus() string {
	var parts []string

	if m.conv.IsTyping() {
		parts = append(parts, m.spinner.View()+"thinking")
	}
	if m.manager.WebSearchArmed() {
		parts = append(parts, styles.StatusArmed.Render("web search"))
	}
	if m.statusMsg != "" {
		parts = append(parts, styles.StatusBar.Render(m.statusMsg))
	}
	parts = append(parts, styles.Hint.Render("enter send · ctrl+n new · ctrl+w web · ctrl+c quit"))

	return styles.StatusBar.Render(strings.Join(parts, "  "))
}
