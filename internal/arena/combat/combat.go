// Package combat implements the paired sub-session opened when one
// participant attacks an adjacent one. A combat pauses the outer turn
// countdown, alternates strictly between the two fighters, and is deleted
// on any resolution: a defeat, a successful evasion, or a disconnection.
//
// Combats reference their fighters by participant name, never by stored
// pointer; the engine resolves the live participants on every step.
package combat

import (
	"fmt"

	"github.com/louisbranch/gridfall/internal/arena/dice"
	"github.com/louisbranch/gridfall/internal/arena/items"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

const (
	// EvasionCharges is the number of evasion attempts each fighter gets.
	EvasionCharges = 2
	// EvasionChance is the probability a single evasion attempt succeeds.
	EvasionChance = 0.30
)

// Snapshot preserves pre-combat stats, restored to a fighter when the
// combat ends without defeating them.
type Snapshot struct {
	Life    int
	Attack  int
	Defense int
}

// Combat is one in-progress fight.
type Combat struct {
	ID        string
	SessionID string

	Challenger string
	Defender   string

	// Turn names the fighter allowed to act.
	Turn string

	Snapshots map[string]Snapshot
	Evasions  map[string]int
}

// New opens a combat between two fighters. The faster fighter acts first;
// the challenger wins speed ties.
func New(sessionID string, challenger, defender *session.Participant) *Combat {
	c := &Combat{
		ID:         fmt.Sprintf("%s/combat", sessionID),
		SessionID:  sessionID,
		Challenger: challenger.Name,
		Defender:   defender.Name,
		Turn:       challenger.Name,
		Snapshots: map[string]Snapshot{
			challenger.Name: {Life: challenger.Life, Attack: challenger.Attack, Defense: challenger.Defense},
			defender.Name:   {Life: defender.Life, Attack: defender.Attack, Defense: defender.Defense},
		},
		Evasions: map[string]int{
			challenger.Name: EvasionCharges,
			defender.Name:   EvasionCharges,
		},
	}
	if defender.Speed > challenger.Speed {
		c.Turn = defender.Name
	}
	return c
}

// Opponent returns the other fighter's name.
func (c *Combat) Opponent(name string) string {
	if name == c.Challenger {
		return c.Defender
	}
	return c.Challenger
}

// Involves reports whether the named participant is one of the fighters.
func (c *Combat) Involves(name string) bool {
	return name == c.Challenger || name == c.Defender
}

// AttackResult describes one resolved attack exchange.
type AttackResult struct {
	AttackRoll   int
	DefenseRoll  int
	AttackTotal  int
	DefenseTotal int
	Damage       int
	FlaskUsed    bool
	// DefenderDefeated is set when the defender's life reached zero or
	// below; the caller tears the combat down.
	DefenderDefeated bool
}

// ResolveAttack rolls both fighters' dice and applies the outcome. An
// attack lands when attack + attack roll strictly exceeds defense +
// defense roll; damage is the margin. A defender dropping to exactly one
// life auto-consumes a held flask. Turn ownership flips to the defender
// unless they were defeated.
func (c *Combat) ResolveAttack(attacker, defender *session.Participant, roller dice.Roller) (AttackResult, error) {
	if c.Turn != attacker.Name {
		return AttackResult{}, errors.New(errors.CodeCombatNotYourTurn, "not this fighter's combat turn")
	}

	result := AttackResult{
		AttackRoll:  roller.Roll(attacker.AttackDie),
		DefenseRoll: roller.Roll(defender.DefenseDie),
	}
	result.AttackTotal = attacker.Attack + result.AttackRoll
	result.DefenseTotal = defender.Defense + result.DefenseRoll

	if result.AttackTotal > result.DefenseTotal {
		result.Damage = result.AttackTotal - result.DefenseTotal
		defender.Life -= result.Damage
		attacker.DamageDealt += result.Damage
		defender.DamageTaken += result.Damage

		if defender.Life == 1 && items.ConsumeFlask(defender) {
			result.FlaskUsed = true
		}
	}

	if defender.Life <= 0 {
		result.DefenderDefeated = true
		attacker.Wins++
		defender.Losses++
		return result, nil
	}

	c.Turn = defender.Name
	return result, nil
}

// EvasionResult describes one evasion attempt.
type EvasionResult struct {
	Success      bool
	AttemptsLeft int
}

// ResolveEvasion spends one evasion charge. On success the caller deletes
// the combat and restores both fighters; on failure the turn flips to the
// opponent. With no charges left the attempt is rejected and the caller
// forces an attack instead.
func (c *Combat) ResolveEvasion(evader *session.Participant, roller dice.Roller) (EvasionResult, error) {
	if c.Turn != evader.Name {
		return EvasionResult{}, errors.New(errors.CodeCombatNotYourTurn, "not this fighter's combat turn")
	}
	if c.Evasions[evader.Name] <= 0 {
		return EvasionResult{}, errors.New(errors.CodeNoEvasionsLeft, "no evasion attempts remaining")
	}

	c.Evasions[evader.Name]--
	result := EvasionResult{
		Success:      roller.Chance(EvasionChance),
		AttemptsLeft: c.Evasions[evader.Name],
	}
	if !result.Success {
		c.Turn = c.Opponent(evader.Name)
	}
	return result, nil
}

// Restore returns a fighter to their pre-combat life, attack and defense.
// Applied to the winner after a defeat and to both fighters after an
// evasion or disconnection.
func (c *Combat) Restore(p *session.Participant) {
	snap, ok := c.Snapshots[p.Name]
	if !ok {
		return
	}
	p.Life = snap.Life
	p.Attack = snap.Attack
	p.Defense = snap.Defense
}
