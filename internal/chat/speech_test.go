// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat contains the session manager driving the exchange lifecycle.
package chat

import (
	"testing"
)

func TestSpeakableText_FirstLineOnly(t *testing.T) {
	text := "First line here.\nSecond line that should stay silent.\n\nThird paragraph too."
	if got := SpeakableText(text); got != "First line here." {
		t.Errorf("SpeakableText = %q", got)
	}
}

func TestSpeakableText_SingleLine(t *testing.T) {
	if got := SpeakableText("Just one line."); got != "Just one line." {
		t.Errorf("SpeakableText = %q", got)
	}
}

func TestSpeakableText_SuppressesImageResponses(t *testing.T) {
	text := "![image](https://oaidalleapiprodscus.blob.core.windows.net/private/img.png)"
	if got := SpeakableText(text); got != "" {
		t.Errorf("Image responses must not be spoken, got %q", got)
	}
}

func TestSpeakableText_ScoreReadout(t *testing.T) {
	text := "SCORE: Cubs vs Cardinals\n**Cubs 5, Cardinals 3**\nTop of the 9th."
	if got := SpeakableText(text); got != "Cubs 5, Cardinals 3" {
		t.Errorf("SpeakableText = %q, want the cleaned second line", got)
	}
}

func TestSpeakableText_ScoreWithoutFollowingLine(t *testing.T) {
	if got := SpeakableText("SCORE: pending"); got != "" {
		t.Errorf("SpeakableText = %q, want empty", got)
	}
}
