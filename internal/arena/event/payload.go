package event

// Payload structs carried inside envelopes. Coordinates are flattened to
// ints so clients never depend on internal grid types.

// SessionCreatedPayload describes a new session.
type SessionCreatedPayload struct {
	MapName     string `json:"map_name"`
	Elimination bool   `json:"elimination"`
	EntryFee    int64  `json:"entry_fee,omitempty"`
}

// SessionStartedPayload describes the match starting.
type SessionStartedPayload struct {
	Participants []string `json:"participants"`
	PrizePool    int64    `json:"prize_pool,omitempty"`
}

// SessionEndedPayload describes the match terminating.
type SessionEndedPayload struct {
	Winner string `json:"winner,omitempty"`
	Reason string `json:"reason"`
}

// ParticipantPayload describes roster membership changes.
type ParticipantPayload struct {
	Name    string `json:"name"`
	Virtual bool   `json:"virtual,omitempty"`
}

// RenamedPayload describes a display-name change.
type RenamedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TurnPayload describes turn boundaries.
type TurnPayload struct {
	Name      string `json:"name"`
	TurnCount int    `json:"turn_count"`
	Reason    string `json:"reason,omitempty"`
}

// CountdownPayload describes one countdown tick.
type CountdownPayload struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

// StepPayload describes a single movement step.
type StepPayload struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	// MovementLeft is the budget remaining after the step.
	MovementLeft int `json:"movement_left"`
}

// TilePayload is one reachable tile and its cost.
type TilePayload struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Cost int `json:"cost"`
}

// ReachablePayload carries a turn's reachable set.
type ReachablePayload struct {
	Tiles []TilePayload `json:"tiles"`
}

// OverflowPayload describes items shed over the capacity limit.
type OverflowPayload struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// ItemPayload describes items changing hands.
type ItemPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// DoorPayload describes a door toggle.
type DoorPayload struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Open bool   `json:"open"`
}

// WallPayload describes a broken wall.
type WallPayload struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// CombatStartedPayload describes a combat opening.
type CombatStartedPayload struct {
	Challenger string `json:"challenger"`
	Defender   string `json:"defender"`
	First      string `json:"first"`
}

// AttackPayload describes one resolved attack exchange.
type AttackPayload struct {
	Attacker     string `json:"attacker"`
	Defender     string `json:"defender"`
	AttackTotal  int    `json:"attack_total"`
	DefenseTotal int    `json:"defense_total"`
	Damage       int    `json:"damage"`
	DefenderLife int    `json:"defender_life"`
	FlaskUsed    bool   `json:"flask_used,omitempty"`
}

// EvasionPayload describes an evasion attempt.
type EvasionPayload struct {
	Name         string `json:"name"`
	Success      bool   `json:"success"`
	AttemptsLeft int    `json:"attempts_left"`
	ForcedAttack bool   `json:"forced_attack,omitempty"`
}

// CombatEndedPayload describes a combat closing.
type CombatEndedPayload struct {
	Winner string `json:"winner,omitempty"`
	Loser  string `json:"loser,omitempty"`
	Reason string `json:"reason"`
}

// ChallengePayload describes side-objective lifecycle.
type ChallengePayload struct {
	Name   string `json:"name"`
	Goal   string `json:"goal"`
	Target int    `json:"target"`
}

// FlagPayload describes a flag capture.
type FlagPayload struct {
	Name string `json:"name"`
}

// RewardPayload describes one settled payout.
type RewardPayload struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}
