package storage

import (
	"context"
	"time"

	"github.com/louisbranch/gridfall/internal/arena/event"
	apperrors "github.com/louisbranch/gridfall/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// JournalPage selects a slice of a session's journal.
type JournalPage struct {
	// Token is an opaque cursor from a previous listing; empty starts at
	// the beginning.
	Token string
	// Limit bounds the page size. Implementations clamp non-positive or
	// oversized values.
	Limit int
}

// JournalStore persists the per-session event journal.
type JournalStore interface {
	event.Store
	// ListEntries returns a page of the session's journal in sequence
	// order plus the cursor for the next page, empty when exhausted.
	ListEntries(ctx context.Context, sessionID string, page JournalPage) ([]event.Entry, string, error)
}

// MatchResult is the final record of one completed match.
type MatchResult struct {
	ID        string
	SessionID string
	MapName   string
	Winner    string
	Reason    string
	Turns     int
	Duration  time.Duration
	CreatedAt time.Time
}

// MatchResultStore persists completed match results.
type MatchResultStore interface {
	PutMatchResult(ctx context.Context, result MatchResult) error
	GetMatchResult(ctx context.Context, sessionID string) (MatchResult, error)
	ListMatchResults(ctx context.Context, limit int) ([]MatchResult, error)
}
