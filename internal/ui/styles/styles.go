// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the aichat TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLORS
// =============================================================================

// Cyan - Brand color, user highlights, status accents
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - Assistant messages
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Rose - Errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, armed one-shot flags
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextMuted - Hints, timestamps, very subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// Message bubble colors
var (
	UserBubbleFg     = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
	UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}

	AssistantBubbleFg     = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}
	AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}
)

// =============================================================================
// SHARED STYLES
// =============================================================================

// UserLabel styles the "You" label above user messages.
var UserLabel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

// AssistantLabel styles the assistant label.
var AssistantLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)

// UserBubble wraps user message text.
var UserBubble = lipgloss.NewStyle().
	Foreground(UserBubbleFg).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(UserBubbleBorder).
	Padding(0, 1)

// AssistantBubble wraps assistant message text.
var AssistantBubble = lipgloss.NewStyle().
	Foreground(AssistantBubbleFg).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(AssistantBubbleBorder).
	Padding(0, 1)

// StatusBar styles the bottom status line.
var StatusBar = lipgloss.NewStyle().Foreground(TextMuted)

// StatusArmed highlights an armed one-shot flag in the status line.
var StatusArmed = lipgloss.NewStyle().Foreground(Amber).Bold(true)

// ErrorText styles inline error text.
var ErrorText = lipgloss.NewStyle().Foreground(Rose)

// Hint styles keybinding hints.
var Hint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
