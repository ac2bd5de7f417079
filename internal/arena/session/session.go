// Package session holds the domain model for one match: the session itself,
// its participants and the bookkeeping both need. Sessions are owned by the
// registry and mutated only from the engine's run loop; the cooperative
// scheduling model stands in for locks.
package session

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/platform/errors"
	"github.com/louisbranch/gridfall/internal/platform/id"
)

// Participant count bounds for a match.
const (
	MinParticipants = 2
	MaxParticipants = 6
)

// InventoryCapacity bounds each participant's item list. Items beyond the
// capacity are dropped at the holder's position at the start of another
// participant's next turn.
const InventoryCapacity = 2

// KillCountTarget is the number of combat wins that ends a match.
const KillCountTarget = 3

// Settings carries the match options chosen at creation.
type Settings struct {
	// Elimination marks combat losses as permanent eliminations instead of
	// respawns.
	Elimination bool
	// EntryFee is collected from each joining participant into the prize
	// pool. Zero disables economy integration for the match.
	EntryFee int64
}

// DoorEvent records one door manipulation for the session history.
type DoorEvent struct {
	ActorID string
	At      board.Coord
	Open    bool
	Turn    int
}

// Session is one in-progress match.
type Session struct {
	ID      string
	MapName string

	Board *board.Board

	Participants []*Participant

	// CurrentTurn indexes Participants. It may transiently reference an
	// ineligible slot; the turn scheduler's skip logic resolves it.
	CurrentTurn int
	TurnCount   int

	DoorHistory []DoorEvent

	Locked  bool
	Started bool

	Settings  Settings
	PrizePool int64

	CreatedAt time.Time
}

// CreateInput describes the data needed to create a session.
type CreateInput struct {
	MapName  string
	Document board.Document
	Settings Settings
}

// Create builds a new session from a validated map document.
func Create(input CreateInput, clock func() time.Time, idGenerator func() (string, error)) (*Session, error) {
	if clock == nil {
		clock = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	grid, err := board.FromDocument(input.Document)
	if err != nil {
		return nil, errors.Wrap(errors.CodeSessionInvalidBoard, "build board from document", err)
	}

	sessionID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	return &Session{
		ID:        sessionID,
		MapName:   input.MapName,
		Board:     grid,
		Settings:  input.Settings,
		CreatedAt: clock().UTC(),
	}, nil
}

// JoinInput describes a participant joining a session.
type JoinInput struct {
	ChannelID string
	Name      string
	Profile   Profile
	// Quick selects the speed-6/life-4 spread; otherwise speed 4, life 6.
	Quick bool
	// AttackHighDie assigns the d6 to attack and the d4 to defense;
	// otherwise the reverse.
	AttackHighDie bool
}

// AddParticipant appends a participant to the roster. Display names are
// unique per session; collisions get a numeric suffix.
func (s *Session) AddParticipant(input JoinInput) (*Participant, error) {
	if s.Locked {
		return nil, errors.New(errors.CodeSessionLocked, "session is locked")
	}
	if s.Started {
		return nil, errors.New(errors.CodeSessionStarted, "session already started")
	}
	if len(s.Participants) >= MaxParticipants {
		return nil, errors.New(errors.CodeSessionFull, "session is full")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeParticipantEmptyName, "participant name is required")
	}

	p := &Participant{
		ID:      input.ChannelID,
		Name:    s.dedupeName(name),
		Profile: input.Profile,
		Active:  true,
	}
	if input.Quick {
		p.Speed, p.MaxLife = StatHigh, StatLow
	} else {
		p.Speed, p.MaxLife = StatLow, StatHigh
	}
	p.Life = p.MaxLife
	p.Attack = BaseAttack
	p.Defense = BaseDefense
	if input.AttackHighDie {
		p.AttackDie, p.DefenseDie = 6, 4
	} else {
		p.AttackDie, p.DefenseDie = 4, 6
	}
	p.TurnOrder = len(s.Participants)

	s.Participants = append(s.Participants, p)
	return p, nil
}

// Participant returns the participant with the given channel ID.
func (s *Session) Participant(participantID string) (*Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == participantID && p.ID != "" {
			return p, true
		}
	}
	return nil, false
}

// RenameParticipant updates a display name before the match starts.
// Combat and challenge records key on names, so renames are rejected once
// the session is running. Collisions are suffixed like joins.
func (s *Session) RenameParticipant(p *Participant, name string) (string, error) {
	if s.Started {
		return "", errors.New(errors.CodeSessionStarted, "session already started")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New(errors.CodeParticipantEmptyName, "participant name is required")
	}
	if name == p.Name {
		return name, nil
	}
	p.Name = s.dedupeName(name)
	return p.Name, nil
}

// ParticipantByName returns the participant with the display name. Names
// are stable for the lifetime of a started session, unlike channel IDs.
func (s *Session) ParticipantByName(name string) (*Participant, bool) {
	for _, p := range s.Participants {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// RemoveParticipant deletes a participant from the roster. Only valid
// before the session starts; afterwards participants degrade instead.
func (s *Session) RemoveParticipant(participantID string) bool {
	for i, p := range s.Participants {
		if p.ID == participantID {
			s.Participants = append(s.Participants[:i], s.Participants[i+1:]...)
			for j := i; j < len(s.Participants); j++ {
				s.Participants[j].TurnOrder = j
			}
			return true
		}
	}
	return false
}

// Degrade marks a participant as gone after the session started: the
// channel reference is invalidated so it is never reused for delivery, and
// elimination settings decide whether the slot observes or merely idles.
func (s *Session) Degrade(p *Participant) {
	p.WasActive = p.WasActive || p.Active
	p.Active = false
	p.ID = ""
	if s.Settings.Elimination {
		p.Eliminated = true
		p.Observer = true
	}
}

// Eligible returns participants that can still take turns.
func (s *Session) Eligible() []*Participant {
	var out []*Participant
	for _, p := range s.Participants {
		if p.Eligible() {
			out = append(out, p)
		}
	}
	return out
}

// EligibleCount counts participants that can still take turns.
func (s *Session) EligibleCount() int {
	count := 0
	for _, p := range s.Participants {
		if p.Eligible() {
			count++
		}
	}
	return count
}

// Current returns the participant the turn index references.
func (s *Session) Current() (*Participant, bool) {
	if len(s.Participants) == 0 {
		return nil, false
	}
	if s.CurrentTurn < 0 || s.CurrentTurn >= len(s.Participants) {
		return nil, false
	}
	return s.Participants[s.CurrentTurn], true
}

// AdvanceTurn moves the turn index circularly by one slot.
func (s *Session) AdvanceTurn() {
	if len(s.Participants) == 0 {
		return
	}
	s.CurrentTurn = (s.CurrentTurn + 1) % len(s.Participants)
}

// OccupiedBy returns the active participant standing on the coordinate.
func (s *Session) OccupiedBy(c board.Coord) (*Participant, bool) {
	for _, p := range s.Participants {
		if p.Active && !p.Eliminated && p.Position != nil && *p.Position == c {
			return p, true
		}
	}
	return nil, false
}

// AssignSpawns shuffles the map's start tiles and places each participant
// on one, recording it as their spawn point.
func (s *Session) AssignSpawns(rng *rand.Rand) error {
	starts := s.Board.StartTiles()
	if len(starts) < len(s.Participants) {
		return errors.New(errors.CodeSessionInvalidBoard, "not enough start tiles for roster")
	}
	if rng != nil {
		rng.Shuffle(len(starts), func(i, j int) {
			starts[i], starts[j] = starts[j], starts[i]
		})
	}
	for i, p := range s.Participants {
		at := starts[i]
		p.Spawn = at
		pos := at
		p.Position = &pos
		p.WasActive = true
	}
	return nil
}

// RecordDoorEvent appends to the session's door-manipulation history.
func (s *Session) RecordDoorEvent(actorID string, at board.Coord, open bool) {
	s.DoorHistory = append(s.DoorHistory, DoorEvent{
		ActorID: actorID,
		At:      at,
		Open:    open,
		Turn:    s.TurnCount,
	})
}

// dedupeName suffixes the name until it is unique within the roster.
func (s *Session) dedupeName(name string) string {
	taken := make(map[string]bool, len(s.Participants))
	for _, p := range s.Participants {
		taken[p.Name] = true
	}
	if !taken[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", name, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
