// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assist provides the HTTP client for the remote assistant endpoint.
//
// The protocol is a single POST per exchange. The server decides the delivery
// mode per response: a Content-Type of text/event-stream means incremental
// fragments framed as SSE data lines carrying {"content": "..."} envelopes and
// closed by a [DONE] sentinel; any other content type means one buffered JSON
// envelope with the complete response. Callers that need both modes implement
// StreamHandler; callers that just want text use Ask.
package assist
