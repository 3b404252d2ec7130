// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assist provides the HTTP client for the remote assistant endpoint.
package assist

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// SSE STREAM READER
// =============================================================================

// dataPrefix marks an SSE data line; everything else on the stream is
// framing noise (comments, blank keep-alives) and is ignored.
const dataPrefix = "data:"

// doneSentinel is the payload signalling the end of the stream.
const doneSentinel = "[DONE]"

// FragmentCallback is called for each content fragment received.
type FragmentCallback func(content string)

// StreamReader handles line-by-line parsing of server-sent event responses.
// Each data line carries a JSON envelope of the form {"content": "..."};
// malformed envelopes are skipped so a single bad fragment cannot kill the
// stream.
type StreamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator   strings.Builder
	fragmentCount int
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
	}
}

// Process reads the stream and calls the callback for each content fragment.
// Blocks until the [DONE] sentinel, EOF, or context cancellation. EOF without
// a sentinel is treated as a normal end of stream.
func (s *StreamReader) Process(ctx context.Context, callback FragmentCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			content, done, err := s.readFragment()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			if done {
				return nil
			}
			if content != "" {
				callback(content)
			}
		}
	}
}

// readFragment reads one line and extracts its content fragment, if any.
// Returns done=true on the [DONE] sentinel.
func (s *StreamReader) readFragment() (content string, done bool, err error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return "", false, io.EOF
		}
		if len(line) == 0 {
			return "", false, err
		}
		// Process the final unterminated line before reporting EOF.
	}

	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false, nil
	}

	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == "" {
		return "", false, nil
	}
	if payload == doneSentinel {
		return "", true, nil
	}

	var envelope struct {
		Content string `json:"content"`
	}
	if jsonErr := json.Unmarshal([]byte(payload), &envelope); jsonErr != nil {
		// Skip malformed fragments
		return "", false, nil
	}

	if envelope.Content != "" {
		s.accumulator.WriteString(envelope.Content)
		s.fragmentCount++
	}
	return envelope.Content, false, nil
}

// Accumulated returns all content received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// FragmentCount returns the number of non-empty fragments received.
func (s *StreamReader) FragmentCount() int {
	return s.fragmentCount
}
