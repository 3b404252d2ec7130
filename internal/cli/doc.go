// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements argument parsing and the non-TUI command handlers
// for aichat: one-shot ask, the interactive chat REPL, session management,
// and config inspection.
package cli
