// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session and message persistence.
//
// Sessions and messages live in a single SQLite database (WAL mode). The
// write path is deliberately narrow: sessions are created once, and message
// rows only ever arrive through BatchAddMessages, one transactional batch
// per completed exchange. Messages are append-only; there is no update path.
package storage
