// Package storage defines the persistence interfaces for the match engine.
//
// Gameplay itself is collaborator-backed and owns no schema; what persists
// is the observable record of matches: the journal of broadcast events and
// the final result rows. Implementations (SQLite) live in subpackages.
//
// # Error Types
//
//   - ErrNotFound: a requested record is missing.
package storage
