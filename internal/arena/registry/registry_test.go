package registry

import (
	"testing"
	"time"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/arena/combat"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.Create(session.CreateInput{
		MapName: "open",
		Document: board.Document{
			Name:       "open",
			Width:      5,
			Height:     5,
			StartTiles: []board.Coord{{X: 0, Y: 0}, {X: 4, Y: 4}},
		},
	}, func() time.Time { return time.Unix(0, 0) }, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func TestSessionLifecycle(t *testing.T) {
	r := New()
	s := newSession(t)

	r.AddSession(s)
	got, ok := r.Session(s.ID)
	if !ok || got != s {
		t.Fatal("session lookup failed")
	}
	if len(r.Sessions()) != 1 {
		t.Fatal("expected one live session")
	}

	r.RemoveSession(s.ID)
	if _, ok := r.Session(s.ID); ok {
		t.Fatal("removed session still resolves")
	}
}

func TestFindByParticipant(t *testing.T) {
	r := New()
	s := newSession(t)
	r.AddSession(s)
	p, err := s.AddParticipant(session.JoinInput{ChannelID: "ch-1", Name: "rook"})
	if err != nil {
		t.Fatalf("add participant: %v", err)
	}

	foundSession, foundParticipant, ok := r.FindByParticipant("ch-1")
	if !ok || foundSession != s || foundParticipant != p {
		t.Fatal("participant lookup failed")
	}

	if _, _, ok := r.FindByParticipant(""); ok {
		t.Fatal("empty channel id must never resolve")
	}

	s.Started = true
	s.Degrade(p)
	if _, _, ok := r.FindByParticipant("ch-1"); ok {
		t.Fatal("degraded channel id must not resolve")
	}
}

func TestOneCombatPerSession(t *testing.T) {
	r := New()
	s := newSession(t)
	r.AddSession(s)

	a := &session.Participant{Name: "a", Speed: 6, Life: 4}
	b := &session.Participant{Name: "b", Speed: 4, Life: 6}

	first := combat.New(s.ID, a, b)
	if err := r.OpenCombat(first); err != nil {
		t.Fatalf("open combat: %v", err)
	}
	if err := r.OpenCombat(combat.New(s.ID, a, b)); !errors.IsCode(err, errors.CodeCombatExists) {
		t.Fatalf("expected COMBAT_EXISTS, got %v", err)
	}

	got, ok := r.Combat(s.ID)
	if !ok || got != first {
		t.Fatal("combat lookup failed")
	}

	r.CloseCombat(s.ID)
	if _, ok := r.Combat(s.ID); ok {
		t.Fatal("closed combat still resolves")
	}
	r.CloseCombat(s.ID)
}

func TestRemoveSessionClosesCombat(t *testing.T) {
	r := New()
	s := newSession(t)
	r.AddSession(s)

	a := &session.Participant{Name: "a"}
	b := &session.Participant{Name: "b"}
	if err := r.OpenCombat(combat.New(s.ID, a, b)); err != nil {
		t.Fatalf("open combat: %v", err)
	}

	r.RemoveSession(s.ID)
	if _, ok := r.Combat(s.ID); ok {
		t.Fatal("combat must not outlive its session")
	}
}
