// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// The view never mutates conversation state directly. User input goes to the
// session manager; the manager mutates the conversation; the view subscribes
// to conversation change events and re-renders from snapshots. This keeps the
// Bubble Tea update loop free of exchange logic and makes the view safe to
// restart without touching an in-flight exchange.
package chat
