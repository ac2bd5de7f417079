package session

import (
	"math/rand"
	"testing"
	"time"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

func testDocument() board.Document {
	return board.Document{
		Name:   "proving-grounds",
		Width:  10,
		Height: 10,
		StartTiles: []board.Coord{
			{X: 0, Y: 0}, {X: 9, Y: 9}, {X: 0, Y: 9}, {X: 9, Y: 0},
		},
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := Create(CreateInput{
		MapName:  "proving-grounds",
		Document: testDocument(),
	}, func() time.Time { return time.Unix(1000, 0) }, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func TestCreateRejectsInvalidDocument(t *testing.T) {
	_, err := Create(CreateInput{Document: board.Document{}}, nil, nil)
	if !errors.IsCode(err, errors.CodeSessionInvalidBoard) {
		t.Fatalf("expected SESSION_INVALID_BOARD, got %v", err)
	}
}

func TestAddParticipantNameCollision(t *testing.T) {
	s := newTestSession(t)

	first, err := s.AddParticipant(JoinInput{ChannelID: "ch-1", Name: "rook", Quick: true})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	second, err := s.AddParticipant(JoinInput{ChannelID: "ch-2", Name: "rook"})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	third, err := s.AddParticipant(JoinInput{ChannelID: "ch-3", Name: "rook"})
	if err != nil {
		t.Fatalf("add third: %v", err)
	}

	if first.Name != "rook" || second.Name != "rook-2" || third.Name != "rook-3" {
		t.Fatalf("unexpected names: %q %q %q", first.Name, second.Name, third.Name)
	}
}

func TestAddParticipantStatSpreads(t *testing.T) {
	s := newTestSession(t)

	quick, err := s.AddParticipant(JoinInput{ChannelID: "ch-1", Name: "a", Quick: true, AttackHighDie: true})
	if err != nil {
		t.Fatalf("add quick: %v", err)
	}
	tough, err := s.AddParticipant(JoinInput{ChannelID: "ch-2", Name: "b"})
	if err != nil {
		t.Fatalf("add tough: %v", err)
	}

	if quick.Speed != StatHigh || quick.MaxLife != StatLow || quick.AttackDie != 6 || quick.DefenseDie != 4 {
		t.Fatalf("unexpected quick spread: %+v", quick)
	}
	if tough.Speed != StatLow || tough.MaxLife != StatHigh || tough.AttackDie != 4 || tough.DefenseDie != 6 {
		t.Fatalf("unexpected tough spread: %+v", tough)
	}
	if tough.Life != tough.MaxLife {
		t.Fatalf("expected full life, got %d/%d", tough.Life, tough.MaxLife)
	}
}

func TestAddParticipantGuards(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.AddParticipant(JoinInput{ChannelID: "ch-1", Name: "  "}); !errors.IsCode(err, errors.CodeParticipantEmptyName) {
		t.Fatalf("expected PARTICIPANT_EMPTY_NAME, got %v", err)
	}

	s.Locked = true
	if _, err := s.AddParticipant(JoinInput{ChannelID: "ch-1", Name: "x"}); !errors.IsCode(err, errors.CodeSessionLocked) {
		t.Fatalf("expected SESSION_LOCKED, got %v", err)
	}
	s.Locked = false

	s.Started = true
	if _, err := s.AddParticipant(JoinInput{ChannelID: "ch-1", Name: "x"}); !errors.IsCode(err, errors.CodeSessionStarted) {
		t.Fatalf("expected SESSION_ALREADY_STARTED, got %v", err)
	}
}

func TestAddParticipantFull(t *testing.T) {
	s := newTestSession(t)
	for i := 0; i < MaxParticipants; i++ {
		if _, err := s.AddParticipant(JoinInput{ChannelID: string(rune('a' + i)), Name: "p"}); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if _, err := s.AddParticipant(JoinInput{ChannelID: "extra", Name: "p"}); !errors.IsCode(err, errors.CodeSessionFull) {
		t.Fatalf("expected SESSION_FULL, got %v", err)
	}
}

func TestRemoveParticipantReindexes(t *testing.T) {
	s := newTestSession(t)
	s.AddParticipant(JoinInput{ChannelID: "ch-1", Name: "a"})
	s.AddParticipant(JoinInput{ChannelID: "ch-2", Name: "b"})
	s.AddParticipant(JoinInput{ChannelID: "ch-3", Name: "c"})

	if !s.RemoveParticipant("ch-2") {
		t.Fatal("expected removal")
	}
	if len(s.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(s.Participants))
	}
	for i, p := range s.Participants {
		if p.TurnOrder != i {
			t.Fatalf("participant %s has order %d, want %d", p.Name, p.TurnOrder, i)
		}
	}
	if s.RemoveParticipant("ch-2") {
		t.Fatal("second removal should fail")
	}
}

func TestDegradeInvalidatesChannel(t *testing.T) {
	s := newTestSession(t)
	p, _ := s.AddParticipant(JoinInput{ChannelID: "ch-1", Name: "a"})
	s.Started = true

	s.Degrade(p)

	if p.Active {
		t.Fatal("degraded participant should be inactive")
	}
	if p.ID != "" {
		t.Fatal("channel reference should be invalidated")
	}
	if !p.WasActive {
		t.Fatal("was-active flag should persist")
	}
	if _, ok := s.Participant("ch-1"); ok {
		t.Fatal("stale channel id should not resolve")
	}
}

func TestDegradeUnderElimination(t *testing.T) {
	s := newTestSession(t)
	s.Settings.Elimination = true
	p, _ := s.AddParticipant(JoinInput{ChannelID: "ch-1", Name: "a"})
	s.Started = true

	s.Degrade(p)

	if !p.Eliminated || !p.Observer {
		t.Fatalf("expected eliminated observer, got %+v", p)
	}
	if p.Eligible() {
		t.Fatal("degraded participant must not be eligible")
	}
}

func TestAssignSpawns(t *testing.T) {
	s := newTestSession(t)
	s.AddParticipant(JoinInput{ChannelID: "ch-1", Name: "a"})
	s.AddParticipant(JoinInput{ChannelID: "ch-2", Name: "b"})

	if err := s.AssignSpawns(rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("assign spawns: %v", err)
	}

	seen := map[board.Coord]bool{}
	for _, p := range s.Participants {
		if p.Position == nil {
			t.Fatalf("participant %s has no position", p.Name)
		}
		if *p.Position != p.Spawn {
			t.Fatalf("participant %s not at spawn", p.Name)
		}
		if seen[p.Spawn] {
			t.Fatalf("spawn %s assigned twice", p.Spawn)
		}
		seen[p.Spawn] = true
		if !p.WasActive {
			t.Fatal("spawned participant should be marked was-active")
		}
	}
}

func TestAdvanceTurnWraps(t *testing.T) {
	s := newTestSession(t)
	s.AddParticipant(JoinInput{ChannelID: "ch-1", Name: "a"})
	s.AddParticipant(JoinInput{ChannelID: "ch-2", Name: "b"})

	s.CurrentTurn = 1
	s.AdvanceTurn()
	if s.CurrentTurn != 0 {
		t.Fatalf("expected wrap to 0, got %d", s.CurrentTurn)
	}
}
