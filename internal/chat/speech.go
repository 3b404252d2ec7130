// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat contains the session manager driving the exchange lifecycle.
package chat

import (
	"strings"
)

// =============================================================================
// SPEECH OUTPUT
// =============================================================================

// Speaker voices a finished assistant response. Implementations must not
// block the caller; speaking happens off the exchange path.
type Speaker interface {
	Speak(text string)
}

// imageURLMarker appears in generated-image responses; those are never
// spoken.
const imageURLMarker = "oaidalleapiprodscus"

// scoreMarker identifies scoreboard-style responses where the headline line
// is the part worth voicing.
const scoreMarker = "SCORE:"

// SpeakableText reduces a finished response to the portion worth speaking
// aloud. Image responses return "". Scoreboard responses speak the line
// after the marker with markdown bold stripped. Everything else speaks only
// the first line.
func SpeakableText(text string) string {
	if strings.Contains(text, imageURLMarker) {
		return ""
	}

	if strings.Contains(text, scoreMarker) {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			if strings.Contains(line, scoreMarker) && i+1 < len(lines) {
				return strings.TrimSpace(strings.ReplaceAll(lines[i+1], "**", ""))
			}
		}
		return ""
	}

	// First line only; long responses are tiring to sit through.
	lines := strings.SplitN(strings.TrimSpace(text), "\n", 2)
	return strings.TrimSpace(lines[0])
}
