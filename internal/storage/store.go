// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session and message persistence.
package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sspencer10/aichat-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when a session doesn't exist.
var ErrSessionNotFound = errors.New("session not found")

// =============================================================================
// STORE
// =============================================================================

// schema is applied on every open; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	content    TEXT NOT NULL,
	is_user    INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);
`

// Store is the SQLite-backed session/message repository. Safe for concurrent
// use; batch writes are transactional, so a crash mid-batch leaves either
// all of the batch or none of it.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, creating parent directories
// as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps reads from blocking the finalize-time write; the busy
	// timeout covers the brief overlap when both happen anyway.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// CreateSession persists a new session immediately and returns it.
func (s *Store) CreateSession(title string) (*model.Session, error) {
	session := &model.Session{
		ID:        model.GenerateSessionID(),
		Title:     title,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(
		"INSERT INTO sessions (id, title, created_at) VALUES (?, ?, ?)",
		session.ID, session.Title, session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession fetches a single session by ID.
func (s *Store) GetSession(id string) (*model.Session, error) {
	row := s.db.QueryRow("SELECT id, title, created_at FROM sessions WHERE id = ?", id)

	var session model.Session
	if err := row.Scan(&session.ID, &session.Title, &session.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListSessions returns all sessions, most recent first, with message counts
// and a first-user-message preview for display.
func (s *Store) ListSessions() ([]SessionMeta, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.title, s.created_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id),
		       COALESCE((SELECT m.content FROM messages m
		                 WHERE m.session_id = s.id AND m.is_user = 1
		                 ORDER BY m.created_at, m.rowid LIMIT 1), '')
		FROM sessions s
		ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		var preview string
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.CreatedAt, &meta.MessageCount, &preview); err != nil {
			return nil, err
		}
		meta.Preview = truncateString(singleLine(preview), 80)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// DeleteSession removes a session and all its messages.
func (s *Store) DeleteSession(id string) error {
	result, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// BatchAddMessages appends all writes to a session in one transaction. Each
// row gets its own id and timestamp; insertion order is preserved.
func (s *Store) BatchAddMessages(sessionID string, writes []model.PendingWrite) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO messages (id, session_id, content, is_user, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, w := range writes {
		if _, err := stmt.Exec("msg_"+uuid.NewString(), sessionID, w.Content, w.IsUser, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FetchMessages returns a session's messages in chronological order.
func (s *Store) FetchMessages(sessionID string) ([]*model.Message, error) {
	rows, err := s.db.Query(`
		SELECT id, content, is_user, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.Content, &msg.IsUser, &msg.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}
