// Package registry owns the canonical tables of live sessions and
// combats. Everything is keyed by id: sessions by session id, combats by
// the id of the session they belong to, enforcing the one-combat-per-
// session rule structurally.
//
// The registry is confined to the engine's run loop and holds no locks;
// tearing a session down mid-callback is safe because callbacks re-fetch
// by id and abort when the lookup fails.
package registry

import (
	"github.com/louisbranch/gridfall/internal/arena/combat"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

// Registry is the owning table for sessions and combats.
type Registry struct {
	sessions map[string]*session.Session
	combats  map[string]*combat.Combat
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[string]*session.Session),
		combats:  make(map[string]*combat.Combat),
	}
}

// AddSession registers a session under its id.
func (r *Registry) AddSession(s *session.Session) {
	r.sessions[s.ID] = s
}

// Session returns the live session for the id.
func (r *Registry) Session(sessionID string) (*session.Session, bool) {
	s, ok := r.sessions[sessionID]
	return s, ok
}

// RemoveSession tears down the session and any combat it owns.
func (r *Registry) RemoveSession(sessionID string) {
	delete(r.sessions, sessionID)
	delete(r.combats, sessionID)
}

// Sessions returns the live sessions in no particular order.
func (r *Registry) Sessions() []*session.Session {
	out := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// FindByParticipant returns the session holding the participant's channel.
func (r *Registry) FindByParticipant(participantID string) (*session.Session, *session.Participant, bool) {
	if participantID == "" {
		return nil, nil, false
	}
	for _, s := range r.sessions {
		if p, ok := s.Participant(participantID); ok {
			return s, p, true
		}
	}
	return nil, nil, false
}

// OpenCombat registers a combat for its session. At most one combat may
// exist per session at a time.
func (r *Registry) OpenCombat(c *combat.Combat) error {
	if _, exists := r.combats[c.SessionID]; exists {
		return errors.New(errors.CodeCombatExists, "session already has an active combat")
	}
	r.combats[c.SessionID] = c
	return nil
}

// Combat returns the session's active combat, if any.
func (r *Registry) Combat(sessionID string) (*combat.Combat, bool) {
	c, ok := r.combats[sessionID]
	return c, ok
}

// CloseCombat deletes the session's combat. Safe to call when none exists.
func (r *Registry) CloseCombat(sessionID string) {
	delete(r.combats, sessionID)
}
