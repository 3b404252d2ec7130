// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversation state.
//
// The central type is Conversation: an ordered, observable message list with
// an active session reference and a typing indicator. It is mutated by a
// single logical writer (the chat manager) and observed by the presentation
// layer through an explicit subscription API rather than implicit reactive
// bindings. The last message, when not user-authored and still streaming, is
// the mutable placeholder bubble that gets synced during a streamed response
// and frozen at finalization.
package model
