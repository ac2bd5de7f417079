// Package cursor provides opaque pagination token encoding/decoding for
// journal listings.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Cursor represents the internal state of a pagination cursor.
type Cursor struct {
	// Seq is the journal sequence number to paginate from (exclusive).
	Seq uint64 `json:"seq"`
	// SessionHash invalidates tokens replayed against a different session.
	SessionHash string `json:"session_hash,omitempty"`
}

// New creates a cursor continuing after seq within the session's journal.
func New(seq uint64, sessionID string) Cursor {
	return Cursor{Seq: seq, SessionHash: HashSession(sessionID)}
}

// Encode encodes a cursor to an opaque base64 string.
func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode decodes an opaque base64 string to a cursor.
// Returns an error if the token is invalid or malformed.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("empty token")
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode base64: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	return c, nil
}

// HashSession computes a short hash of the session id for cursor
// validation. Returns empty string for an empty id.
func HashSession(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	h := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(h[:8]) // 64-bit hash is sufficient for validation
}

// Validate checks that the cursor belongs to the session being listed.
func Validate(c Cursor, sessionID string) error {
	if c.SessionHash != HashSession(sessionID) {
		return fmt.Errorf("cursor issued for a different session")
	}
	return nil
}
