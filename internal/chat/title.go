// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat contains the session manager driving the exchange lifecycle.
package chat

import (
	"strings"
	"time"
)

// =============================================================================
// TITLE EXTRACTION
// =============================================================================

// titleMarker is the inline marker the server appends to a response when it
// proposes a session title.
const titleMarker = "**Title:**"

// ExtractTitle splits a finished response into display text and a proposed
// session title. The marker and everything after it never reach the
// conversation. Returns the original text and "" when no marker is present.
func ExtractTitle(text string) (body, title string) {
	idx := strings.LastIndex(text, titleMarker)
	if idx < 0 {
		return text, ""
	}

	body = strings.TrimSpace(text[:idx])
	title = strings.TrimSpace(text[idx+len(titleMarker):])
	return body, title
}

// FallbackTitle returns the timestamp-derived title used when a response
// carries no title marker.
func FallbackTitle(t time.Time) string {
	return "Session from " + t.Format("Jan 2, 2006 at 3:04 PM")
}
