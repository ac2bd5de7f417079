// Package bot decides the next atomic action for virtual participants.
// Strategies are pure: given the current session, participant and a
// roller they return one action, and the engine re-invokes them after the
// action completes. That mirrors the human command loop exactly, so
// virtual players exercise the same movement, item and combat paths.
package bot

import (
	"sort"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/arena/combat"
	"github.com/louisbranch/gridfall/internal/arena/dice"
	"github.com/louisbranch/gridfall/internal/arena/items"
	"github.com/louisbranch/gridfall/internal/arena/movement"
	"github.com/louisbranch/gridfall/internal/arena/session"
)

// ContinueChance bounds wandering: after an unconstrained move the
// strategy flips this coin to decide whether to keep going.
const ContinueChance = 0.5

// ActionKind enumerates what a strategy can ask for.
type ActionKind int

const (
	// ActionEnd finishes the turn.
	ActionEnd ActionKind = iota
	// ActionMove walks to a reachable tile.
	ActionMove
	// ActionFight starts combat with an adjacent opponent.
	ActionFight
)

// Action is one decision for the outer turn loop.
type Action struct {
	Kind     ActionKind
	To       board.Coord
	Opponent string
}

// CombatChoice enumerates in-combat decisions.
type CombatChoice int

const (
	// ChoiceAttack rolls an attack.
	ChoiceAttack CombatChoice = iota
	// ChoiceEvade attempts to flee.
	ChoiceEvade
)

// Strategy drives one virtual participant.
type Strategy interface {
	// NextAction picks the next step of the participant's turn.
	NextAction(s *session.Session, p *session.Participant, roller dice.Roller) Action
	// InCombat picks attack or evasion on the participant's combat turn.
	InCombat(c *combat.Combat, p *session.Participant, roller dice.Roller) CombatChoice
}

// ForProfile returns the strategy for a virtual profile, or nil for
// human participants.
func ForProfile(profile session.Profile) Strategy {
	switch profile {
	case session.ProfileAggressive:
		return Aggressive{}
	case session.ProfileDefensive:
		return Defensive{}
	default:
		return nil
	}
}

// Aggressive hunts opponents: fight anyone adjacent, close on anyone
// visible, pursue weapons, otherwise wander.
type Aggressive struct{}

func (Aggressive) NextAction(s *session.Session, p *session.Participant, roller dice.Roller) Action {
	if fight, ok := fightAdjacent(s, p); ok {
		return fight
	}

	reach := movement.ReachableTiles(s, p, p.MovementLeft)
	if len(reach) <= 1 {
		return Action{Kind: ActionEnd}
	}

	if to, ok := tileNearOpponent(s, p, reach); ok {
		return Action{Kind: ActionMove, To: to}
	}
	if to, ok := tileWithItem(s, reach, func(c board.ItemCategory) bool { return c == board.ItemWeapon }); ok {
		return Action{Kind: ActionMove, To: to}
	}
	return wander(reach, p, roller)
}

func (Aggressive) InCombat(_ *combat.Combat, _ *session.Participant, _ dice.Roller) CombatChoice {
	return ChoiceAttack
}

// Defensive favors survival: grab defensive items before engaging, and
// flee combat when fast and fragile.
type Defensive struct{}

func (Defensive) NextAction(s *session.Session, p *session.Participant, roller dice.Roller) Action {
	reach := movement.ReachableTiles(s, p, p.MovementLeft)

	if to, ok := tileWithItem(s, reach, items.Defensive); ok {
		return Action{Kind: ActionMove, To: to}
	}
	if fight, ok := fightAdjacent(s, p); ok {
		return fight
	}
	if len(reach) <= 1 {
		return Action{Kind: ActionEnd}
	}
	if to, ok := tileNearOpponent(s, p, reach); ok {
		return Action{Kind: ActionMove, To: to}
	}
	return wander(reach, p, roller)
}

func (Defensive) InCombat(c *combat.Combat, p *session.Participant, _ dice.Roller) CombatChoice {
	if c.Evasions[p.Name] <= 0 {
		return ChoiceAttack
	}
	if shouldFlee(p) {
		return ChoiceEvade
	}
	return ChoiceAttack
}

// shouldFlee marks the fast-and-fragile thresholds where a human would
// disengage.
func shouldFlee(p *session.Participant) bool {
	return (p.Speed == session.StatHigh && p.Life < session.StatLow) ||
		(p.Speed == session.StatLow && p.Life < session.StatHigh)
}

func fightAdjacent(s *session.Session, p *session.Participant) (Action, bool) {
	if p.ActionsLeft <= 0 {
		return Action{}, false
	}
	opponents := movement.AdjacentOpponents(s, p)
	if len(opponents) == 0 {
		return Action{}, false
	}
	return Action{Kind: ActionFight, Opponent: opponents[0].Name}, true
}

// tileNearOpponent finds the cheapest reachable tile adjacent to a
// visible opponent. Visibility is the reachable set expanded by one
// adjacency ring.
func tileNearOpponent(s *session.Session, p *session.Participant, reach map[board.Coord]movement.Reach) (board.Coord, bool) {
	var best board.Coord
	bestCost := -1
	for at, r := range reach {
		if at == *p.Position {
			continue
		}
		for _, n := range at.Neighbors() {
			occupant, ok := s.OccupiedBy(n)
			if !ok || occupant == p || !occupant.Eligible() {
				continue
			}
			if bestCost == -1 || r.Cost < bestCost {
				best = at
				bestCost = r.Cost
			}
			break
		}
	}
	return best, bestCost != -1
}

func tileWithItem(s *session.Session, reach map[board.Coord]movement.Reach, want func(board.ItemCategory) bool) (board.Coord, bool) {
	var best board.Coord
	bestCost := -1
	for at, r := range reach {
		category, ok := s.Board.ItemAt(at)
		if !ok || !want(category) {
			continue
		}
		if bestCost == -1 || r.Cost < bestCost {
			best = at
			bestCost = r.Cost
		}
	}
	return best, bestCost != -1
}

// wander takes a random reachable tile, or stops on a coin flip so
// unconstrained turns terminate.
func wander(reach map[board.Coord]movement.Reach, p *session.Participant, roller dice.Roller) Action {
	if roller != nil && !roller.Chance(ContinueChance) {
		return Action{Kind: ActionEnd}
	}

	candidates := make([]board.Coord, 0, len(reach))
	for at := range reach {
		if p.Position != nil && at == *p.Position {
			continue
		}
		candidates = append(candidates, at)
	}
	if len(candidates) == 0 {
		return Action{Kind: ActionEnd}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Y != candidates[j].Y {
			return candidates[i].Y < candidates[j].Y
		}
		return candidates[i].X < candidates[j].X
	})

	pick := 0
	if roller != nil {
		pick = roller.Roll(len(candidates)) - 1
	}
	return Action{Kind: ActionMove, To: candidates[pick]}
}
