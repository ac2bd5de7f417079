// Package sqlite provides the SQLite-backed arena storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/gridfall/internal/arena/event"
	sqlitemigrate "github.com/louisbranch/gridfall/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/gridfall/internal/storage"
	"github.com/louisbranch/gridfall/internal/storage/cursor"
	"github.com/louisbranch/gridfall/internal/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// Store persists the event journal and match results in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite arena store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendEntry inserts one journal entry, assigning the next sequence
// number within the session.
func (s *Store) AppendEntry(ctx context.Context, entry event.Entry) (event.Entry, error) {
	if err := ctx.Err(); err != nil {
		return event.Entry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Entry{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(entry.SessionID) == "" {
		return event.Entry{}, fmt.Errorf("session id is required")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`INSERT INTO journal_entries (session_id, seq, timestamp, type, participant_id, payload_json)
		 SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?
		   FROM journal_entries
		  WHERE session_id = ?
		 RETURNING seq`,
		entry.SessionID,
		toMillis(entry.Timestamp),
		string(entry.Type),
		entry.ParticipantID,
		entry.PayloadJSON,
		entry.SessionID,
	)
	if err := row.Scan(&entry.Seq); err != nil {
		return event.Entry{}, fmt.Errorf("append journal entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns one page of a session's journal in sequence order.
func (s *Store) ListEntries(ctx context.Context, sessionID string, page storage.JournalPage) ([]event.Entry, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if s == nil || s.sqlDB == nil {
		return nil, "", fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, "", fmt.Errorf("session id is required")
	}

	limit := page.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	afterSeq := uint64(0)
	if page.Token != "" {
		c, err := cursor.Decode(page.Token)
		if err != nil {
			return nil, "", fmt.Errorf("decode page token: %w", err)
		}
		if err := cursor.Validate(c, sessionID); err != nil {
			return nil, "", fmt.Errorf("validate page token: %w", err)
		}
		afterSeq = c.Seq
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, timestamp, type, participant_id, payload_json
		   FROM journal_entries
		  WHERE session_id = ? AND seq > ?
		  ORDER BY seq ASC
		  LIMIT ?`,
		sessionID,
		afterSeq,
		limit+1,
	)
	if err != nil {
		return nil, "", fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]event.Entry, 0, limit)
	for rows.Next() {
		entry := event.Entry{SessionID: sessionID}
		var timestamp int64
		var entryType string
		if err := rows.Scan(&entry.Seq, &timestamp, &entryType, &entry.ParticipantID, &entry.PayloadJSON); err != nil {
			return nil, "", fmt.Errorf("list journal entries: %w", err)
		}
		entry.Timestamp = fromMillis(timestamp)
		entry.Type = event.Type(entryType)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("list journal entries: %w", err)
	}

	nextToken := ""
	if len(entries) > limit {
		entries = entries[:limit]
		token, err := cursor.Encode(cursor.New(entries[limit-1].Seq, sessionID))
		if err != nil {
			return nil, "", fmt.Errorf("encode page token: %w", err)
		}
		nextToken = token
	}
	return entries, nextToken, nil
}

// PutMatchResult inserts one final match record.
func (s *Store) PutMatchResult(ctx context.Context, result storage.MatchResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(result.ID) == "" {
		return fmt.Errorf("result id is required")
	}
	if strings.TrimSpace(result.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO match_results (id, session_id, map_name, winner, reason, turns, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.SessionID,
		result.MapName,
		result.Winner,
		result.Reason,
		result.Turns,
		result.Duration.Milliseconds(),
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("match result already recorded for session %s", result.SessionID)
		}
		return fmt.Errorf("put match result: %w", err)
	}
	return nil
}

// GetMatchResult returns the final record for one session.
func (s *Store) GetMatchResult(ctx context.Context, sessionID string) (storage.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.MatchResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MatchResult{}, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return storage.MatchResult{}, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, session_id, map_name, winner, reason, turns, duration_ms, created_at
		   FROM match_results
		  WHERE session_id = ?`,
		sessionID,
	)

	var result storage.MatchResult
	var durationMillis int64
	var createdAt int64
	err := row.Scan(
		&result.ID,
		&result.SessionID,
		&result.MapName,
		&result.Winner,
		&result.Reason,
		&result.Turns,
		&durationMillis,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MatchResult{}, storage.ErrNotFound
		}
		return storage.MatchResult{}, fmt.Errorf("get match result: %w", err)
	}
	result.Duration = time.Duration(durationMillis) * time.Millisecond
	result.CreatedAt = fromMillis(createdAt)
	return result, nil
}

// ListMatchResults returns the most recent records, newest first.
func (s *Store) ListMatchResults(ctx context.Context, limit int) ([]storage.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, session_id, map_name, winner, reason, turns, duration_ms, created_at
		   FROM match_results
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list match results: %w", err)
	}
	defer rows.Close()

	results := make([]storage.MatchResult, 0, limit)
	for rows.Next() {
		var result storage.MatchResult
		var durationMillis int64
		var createdAt int64
		if err := rows.Scan(
			&result.ID,
			&result.SessionID,
			&result.MapName,
			&result.Winner,
			&result.Reason,
			&result.Turns,
			&durationMillis,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list match results: %w", err)
		}
		result.Duration = time.Duration(durationMillis) * time.Millisecond
		result.CreatedAt = fromMillis(createdAt)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list match results: %w", err)
	}
	return results, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed")
}

var (
	_ storage.JournalStore     = (*Store)(nil)
	_ storage.MatchResultStore = (*Store)(nil)
)
