package session

import "github.com/louisbranch/gridfall/internal/arena/board"

// Profile selects who drives a participant's decisions.
type Profile int

const (
	// ProfileHuman waits for external commands.
	ProfileHuman Profile = iota
	// ProfileAggressive is a virtual participant that hunts opponents.
	ProfileAggressive
	// ProfileDefensive is a virtual participant that favors survival.
	ProfileDefensive
)

func (p Profile) String() string {
	switch p {
	case ProfileHuman:
		return "human"
	case ProfileAggressive:
		return "aggressive"
	case ProfileDefensive:
		return "defensive"
	default:
		return "unknown"
	}
}

// Virtual reports whether the profile is engine-driven.
func (p Profile) Virtual() bool {
	return p == ProfileAggressive || p == ProfileDefensive
}

// Default attribute values. A participant gets one of the two paired stat
// spreads: quick (speed 6, life 4) or tough (speed 4, life 6), and one of
// the two die assignments (attack d6/defense d4 or the reverse).
const (
	StatHigh = 6
	StatLow  = 4

	BaseAttack  = 4
	BaseDefense = 4

	// TurnActions is the number of actions granted each turn.
	TurnActions = 1
)

// Participant is one actor in a session, human or virtual.
//
// Participants are owned by their Session's slice; all cross-references
// use the participant ID, never stored pointers.
type Participant struct {
	// ID is the identity-channel reference for event delivery. It is
	// cleared (and never reused) when the channel disconnects.
	ID      string
	Name    string
	Profile Profile

	// Position is nil until spawns are assigned, and may become nil again
	// if the participant's placement is lost; the engine then attempts
	// recovery at the spawn point.
	Position *board.Coord
	Spawn    board.Coord

	Life       int
	MaxLife    int
	Attack     int
	Defense    int
	Speed      int
	AttackDie  int
	DefenseDie int

	MovementLeft int
	ActionsLeft  int

	Inventory []board.ItemCategory

	Active     bool
	Eliminated bool
	Observer   bool
	// WasActive records that the participant was ever an active player,
	// disambiguating leave (degrade) from remove (pre-start).
	WasActive bool
	// TurnEnded guards against double-processing one logical turn after a
	// stuck-turn auto-skip. Cleared when the participant's turn starts.
	TurnEnded bool
	// OnIce tracks whether the ice stat debuff is currently applied.
	OnIce bool

	Wins        int
	Losses      int
	DamageDealt int
	DamageTaken int

	TurnOrder int
}

// Eligible reports whether the participant can take turns.
func (p *Participant) Eligible() bool {
	return p != nil && p.Active && !p.Eliminated && !p.Observer
}

// Quick reports the speed-6 stat spread.
func (p *Participant) Quick() bool {
	return p.Speed >= StatHigh
}

// ResetTurnBudgets restores the per-turn movement and action allowances.
func (p *Participant) ResetTurnBudgets() {
	p.MovementLeft = p.Speed
	p.ActionsLeft = TurnActions
}

// Holds reports whether the participant carries an item of the category.
func (p *Participant) Holds(category board.ItemCategory) bool {
	for _, item := range p.Inventory {
		if item == category {
			return true
		}
	}
	return false
}

// RemoveFromInventory removes one item of the category, reporting success.
func (p *Participant) RemoveFromInventory(category board.ItemCategory) bool {
	for i, item := range p.Inventory {
		if item == category {
			p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// AtSpawn reports whether the participant stands on their spawn tile.
func (p *Participant) AtSpawn() bool {
	return p.Position != nil && *p.Position == p.Spawn
}
