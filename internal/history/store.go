// Package history persists conversation records in PostgreSQL.
//
// Persistence is deliberately best-effort: a conversation turn must never
// fail because the history backend is down. Load returns nil on any
// failure (missing row, backend error, corrupt document) and Save absorbs
// errors after logging them. Callers therefore cannot accidentally couple
// turn success to storage health.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mosscap/mosscap/internal/transcript"
)

const (
	selectDocument = `SELECT document FROM conversations WHERE user_id = $1 AND session_id = $2`

	upsertDocument = `INSERT INTO conversations (user_id, session_id, document)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, session_id)
DO UPDATE SET document = EXCLUDED.document, updated_at = now()`
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store reads and writes conversation records keyed by (user, session).
// Safe for concurrent use; concurrent saves of the same session resolve
// to whichever write lands last.
type Store struct {
	db     DB
	logger *slog.Logger
}

// New creates a store backed by db.
func New(db DB, logger *slog.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("history: db is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger.With("component", "history")}, nil
}

// Load fetches the record for the given user and session. It returns nil
// when no record exists or when the fetch fails for any reason; failures
// are logged, never returned.
func (s *Store) Load(ctx context.Context, userID, sessionID string) *transcript.Record {
	var document []byte
	err := s.db.QueryRow(ctx, selectDocument, userID, sessionID).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug("no stored conversation",
				"user_id", userID, "session_id", sessionID)
		} else {
			s.logger.Warn("conversation load failed, starting fresh",
				"user_id", userID, "session_id", sessionID, "error", err)
		}
		return nil
	}

	var rec transcript.Record
	if err := json.Unmarshal(document, &rec); err != nil {
		s.logger.Warn("stored conversation is corrupt, starting fresh",
			"user_id", userID, "session_id", sessionID, "error", err)
		return nil
	}
	return &rec
}

// Save upserts the record, replacing any existing document for the same
// user and session. Failures are logged and swallowed so a storage outage
// never fails the turn that produced the record.
func (s *Store) Save(ctx context.Context, rec *transcript.Record) {
	if rec == nil {
		return
	}
	document, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("conversation encode failed, record lost",
			"user_id", rec.UserID, "session_id", rec.SessionID, "error", err)
		return
	}
	if _, err := s.db.Exec(ctx, upsertDocument, rec.UserID, rec.SessionID, document); err != nil {
		s.logger.Error("conversation save failed, record lost",
			"user_id", rec.UserID, "session_id", rec.SessionID, "error", err)
		return
	}
	s.logger.Debug("conversation saved",
		"user_id", rec.UserID, "session_id", rec.SessionID, "messages", len(rec.Messages))
}
