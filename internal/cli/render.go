// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Markdown output rendering for CLI responses.
package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderResponse renders assistant Markdown for the terminal. Piped output
// gets the raw text so it stays grep-friendly.
func RenderResponse(text string) string {
	if !IsStdoutTTY() {
		return text
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()-2),
	)
	if err != nil {
		return text
	}

	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
