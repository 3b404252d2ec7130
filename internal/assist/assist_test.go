// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assist provides the HTTP client for the remote assistant endpoint.
package assist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReader_Fragments(t *testing.T) {
	stream := "data: {\"content\": \"Hello\"}\n" +
		"data: {\"content\": \", world\"}\n" +
		"data: [DONE]\n"

	reader := NewStreamReader(strings.NewReader(stream))

	var got []string
	err := reader.Process(context.Background(), func(content string) {
		got = append(got, content)
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d fragments, want 2", len(got))
	}
	if reader.Accumulated() != "Hello, world" {
		t.Errorf("Accumulated = %q", reader.Accumulated())
	}
}

func TestStreamReader_SkipsMalformedAndNoise(t *testing.T) {
	stream := ": keep-alive comment\n" +
		"\n" +
		"data: {not json}\n" +
		"data: {\"content\": \"ok\"}\n" +
		"event: something\n" +
		"data: [DONE]\n"

	reader := NewStreamReader(strings.NewReader(stream))

	count := 0
	err := reader.Process(context.Background(), func(content string) {
		count++
		if content != "ok" {
			t.Errorf("content = %q, want %q", content, "ok")
		}
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if count != 1 {
		t.Errorf("callback ran %d times, want 1", count)
	}
}

func TestStreamReader_EOFWithoutSentinel(t *testing.T) {
	// A stream cut off before [DONE] still ends cleanly with what arrived.
	stream := "data: {\"content\": \"partial\"}\n"

	reader := NewStreamReader(strings.NewReader(stream))
	if err := reader.Process(context.Background(), func(string) {}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if reader.Accumulated() != "partial" {
		t.Errorf("Accumulated = %q", reader.Accumulated())
	}
}

func TestStreamReader_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewStreamReader(strings.NewReader("data: {\"content\": \"x\"}\n"))
	if err := reader.Process(ctx, func(string) {}); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

// recordingHandler captures the delivery callback sequence.
type recordingHandler struct {
	contentType string
	streaming   bool
	fragments   []string
	buffered    *AskResponse
	done        bool
}

func (h *recordingHandler) Headers(ct string, streaming bool) {
	h.contentType = ct
	h.streaming = streaming
}
func (h *recordingHandler) Fragment(content string)    { h.fragments = append(h.fragments, content) }
func (h *recordingHandler) Buffered(resp *AskResponse) { h.buffered = resp }
func (h *recordingHandler) Done()                      { h.done = true }

func newTestClient(url string) *Client {
	return NewClient(&ClientConfig{URL: url, APIKey: "test-key"})
}

func TestAskStream_StreamingDelivery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"content\": \"2+2 \"}\n"))
		w.Write([]byte("data: {\"content\": \"is 4\"}\n"))
		w.Write([]byte("data: [DONE]\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	handler := &recordingHandler{}

	req := &AskRequest{Command: "What's 2+2?", Model: "gpt-4o-mini"}
	if err := client.AskStream(context.Background(), req, handler); err != nil {
		t.Fatalf("AskStream: %v", err)
	}

	if !handler.streaming {
		t.Error("Headers should report streaming delivery")
	}
	if strings.Join(handler.fragments, "") != "2+2 is 4" {
		t.Errorf("fragments = %v", handler.fragments)
	}
	if handler.buffered != nil {
		t.Error("Buffered must not fire on a streamed response")
	}
	if !handler.done {
		t.Error("Done should fire after the body is consumed")
	}
}

func TestAskStream_BufferedDelivery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "4", "model_used": "gpt-4o-mini", "total_cost": "0.001"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	handler := &recordingHandler{}

	if err := client.AskStream(context.Background(), &AskRequest{Command: "q"}, handler); err != nil {
		t.Fatalf("AskStream: %v", err)
	}

	if handler.streaming {
		t.Error("Headers should report buffered delivery")
	}
	if handler.buffered == nil || handler.buffered.Text() != "4" {
		t.Fatalf("buffered = %+v", handler.buffered)
	}
	if handler.buffered.TotalCost != "0.001" {
		t.Errorf("TotalCost = %q", handler.buffered.TotalCost)
	}
	if len(handler.fragments) != 0 {
		t.Error("Fragment must not fire on a buffered response")
	}
	if !handler.done {
		t.Error("Done should fire")
	}
}

func TestAskStream_MalformedBufferedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("this is not json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	handler := &recordingHandler{}

	err := client.AskStream(context.Background(), &AskRequest{Command: "q"}, handler)
	if !IsInvalidResponse(err) {
		t.Errorf("err = %v, want invalid-response ClientError", err)
	}
	if handler.done {
		t.Error("Done must not fire on a decode failure")
	}
}

func TestAskStream_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	handler := &recordingHandler{}

	err := client.AskStream(context.Background(), &AskRequest{Command: "q"}, handler)
	if err == nil {
		t.Fatal("Expected an error for a 500 response")
	}
	if handler.contentType != "" {
		t.Error("Headers must not fire on a failed request")
	}
}

func TestAsk_BufferedConvenience(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "hello"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Ask(context.Background(), &AskRequest{Command: "hi"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if resp.Text() != "hello" {
		t.Errorf("Text() = %q", resp.Text())
	}
}

func TestAsk_AccumulatesStreamedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"content\": \"a\"}\ndata: {\"content\": \"b\"}\ndata: [DONE]\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Ask(context.Background(), &AskRequest{Command: "hi"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if resp.Text() != "ab" {
		t.Errorf("Text() = %q, want %q", resp.Text(), "ab")
	}
}
