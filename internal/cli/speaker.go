// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// speaker.go - Host integrations for the session manager: text-to-speech
// via an external command, and URL opening via the platform opener.
package cli

import (
	"log"
	"os/exec"
	"runtime"
	"strings"
)

// =============================================================================
// SPEECH
// =============================================================================

// CommandSpeaker voices text by piping it to an external command's stdin
// ("say" on macOS, "espeak" or similar elsewhere). Playback runs in the
// background; a finished response must never block on the audio pipeline.
type CommandSpeaker struct {
	command string
	logger  *log.Logger
}

// NewCommandSpeaker creates a speaker backed by the given command line.
func NewCommandSpeaker(command string, logger *log.Logger) *CommandSpeaker {
	if logger == nil {
		logger = log.Default()
	}
	return &CommandSpeaker{command: command, logger: logger}
}

// Speak voices the text without blocking the caller.
func (s *CommandSpeaker) Speak(text string) {
	if s.command == "" || strings.TrimSpace(text) == "" {
		return
	}

	parts := strings.Fields(s.command)
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(text)

	go func() {
		if err := cmd.Run(); err != nil {
			s.logger.Printf("speech command failed: %v", err)
		}
	}()
}

// =============================================================================
// URL OPENING
// =============================================================================

// ExecOpener opens URLs with the platform opener (open/xdg-open). Failures
// are logged; a dead opener must not take the exchange down with it.
type ExecOpener struct {
	logger *log.Logger
}

// NewExecOpener creates a URL opener for the current platform.
func NewExecOpener(logger *log.Logger) *ExecOpener {
	if logger == nil {
		logger = log.Default()
	}
	return &ExecOpener{logger: logger}
}

// Open launches the URL in the background.
func (o *ExecOpener) Open(url string) {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	cmd := exec.Command(name, url)

	go func() {
		if err := cmd.Run(); err != nil {
			o.logger.Printf("open %s: %v", url, err)
		}
	}()
}
