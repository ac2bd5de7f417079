// Package event defines the outbound event vocabulary for a match and the
// delivery contracts it flows through. Events represent facts that have
// occurred, not commands.
package event

import (
	"strings"
	"time"
)

// Type identifies the type of a match event.
type Type string

// Session lifecycle events.
const (
	// TypeSessionCreated records the creation of a session.
	TypeSessionCreated Type = "session.created"
	// TypeSessionStarted records the match starting.
	TypeSessionStarted Type = "session.started"
	// TypeSessionEnded records the match terminating, with or without a winner.
	TypeSessionEnded Type = "session.ended"
)

// Roster events.
const (
	// TypeParticipantJoined records a participant joining before start.
	TypeParticipantJoined Type = "participant.joined"
	// TypeParticipantLeft records a participant leaving before start.
	TypeParticipantLeft Type = "participant.left"
	// TypeParticipantRenamed records a display-name change.
	TypeParticipantRenamed Type = "participant.renamed"
	// TypeParticipantDegraded records a disconnect after start.
	TypeParticipantDegraded Type = "participant.degraded"
	// TypeParticipantEliminated records a permanent elimination.
	TypeParticipantEliminated Type = "participant.eliminated"
)

// Turn events.
const (
	// TypeTurnStarted records the beginning of a participant's turn.
	TypeTurnStarted Type = "turn.started"
	// TypeTurnCountdown records one tick of the active turn countdown.
	TypeTurnCountdown Type = "turn.countdown"
	// TypeTurnEnded records the turn ending by action, timeout or stuck
	// detection.
	TypeTurnEnded Type = "turn.ended"
	// TypeTurnReachable carries the acting participant's reachable tiles.
	// Sent to that participant only, never journaled.
	TypeTurnReachable Type = "turn.reachable"
)

// Grid events.
const (
	// TypeMoveStepped records one movement step taken.
	TypeMoveStepped Type = "move.stepped"
	// TypeItemPicked records an item moving from the grid to an inventory.
	TypeItemPicked Type = "item.picked"
	// TypeItemDropped records an item returning to the grid.
	TypeItemDropped Type = "item.dropped"
	// TypeInventoryFull records items shed over the capacity limit.
	TypeInventoryFull Type = "item.overflow"
	// TypeDoorToggled records a door opening or closing.
	TypeDoorToggled Type = "door.toggled"
	// TypeWallBroken records a wall tile turning into floor.
	TypeWallBroken Type = "wall.broken"
	// TypeFlagCaptured records a flag carried back to its holder's spawn.
	TypeFlagCaptured Type = "flag.captured"
)

// Combat events.
const (
	// TypeCombatStarted records a combat sub-session opening.
	TypeCombatStarted Type = "combat.started"
	// TypeCombatAttack records one resolved attack exchange.
	TypeCombatAttack Type = "combat.attack"
	// TypeCombatEvasion records an evasion attempt and its outcome.
	TypeCombatEvasion Type = "combat.evasion"
	// TypeCombatEnded records the combat closing, with or without a winner.
	TypeCombatEnded Type = "combat.ended"
)

// Challenge events.
const (
	// TypeChallengeAssigned records a side objective being handed out.
	TypeChallengeAssigned Type = "challenge.assigned"
	// TypeChallengeCompleted records a side objective reaching its target.
	TypeChallengeCompleted Type = "challenge.completed"
)

// Settlement events.
const (
	// TypeRewardSettled records prize-pool distribution after a match.
	TypeRewardSettled Type = "reward.settled"
)

// Envelope is one event as delivered to a session's audience and the
// journal. ParticipantID is the acting participant when one exists.
type Envelope struct {
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id,omitempty"`
	Type          Type      `json:"type"`
	At            time.Time `json:"at"`
	Payload       any       `json:"payload,omitempty"`
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g. "turn", "combat").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}
