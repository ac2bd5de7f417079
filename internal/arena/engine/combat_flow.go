package engine

import (
	"context"

	"github.com/louisbranch/gridfall/internal/arena/challenge"
	"github.com/louisbranch/gridfall/internal/arena/combat"
	"github.com/louisbranch/gridfall/internal/arena/event"
	"github.com/louisbranch/gridfall/internal/arena/items"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/arena/turns"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

// StartCombat opens a combat sub-session against an adjacent opponent,
// pausing the outer turn countdown until it resolves.
func (e *Engine) StartCombat(ctx context.Context, sessionID, channelID, targetName string) error {
	return e.call(func() error {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return err
		}
		if err := e.requireTurn(s, p); err != nil {
			return err
		}
		return e.startCombat(ctx, s, p, targetName)
	})
}

// startCombat is shared by the human command and the bot flow; the turn
// ownership check happens in the callers.
func (e *Engine) startCombat(ctx context.Context, s *session.Session, challenger *session.Participant, targetName string) error {
	if challenger.Name == targetName {
		return errors.New(errors.CodeCombatSelfTargeted, "cannot fight yourself")
	}
	if challenger.ActionsLeft <= 0 {
		return errors.New(errors.CodeNoActionsLeft, "no actions left this turn")
	}
	defender, ok := s.ParticipantByName(targetName)
	if !ok {
		return errors.New(errors.CodeParticipantNotFound, "opponent not found")
	}
	if !defender.Eligible() {
		return errors.New(errors.CodeCombatTargetGone, "opponent is already out of the match")
	}
	if challenger.Position == nil || defender.Position == nil {
		return errors.New(errors.CodePositionUnknown, "both fighters need a known position")
	}
	if !challenger.Position.Adjacent(*defender.Position) {
		return errors.New(errors.CodeCombatNotAdjacent, "opponent is not adjacent")
	}

	c := combat.New(s.ID, challenger, defender)
	if err := e.registry.OpenCombat(c); err != nil {
		return err
	}
	challenger.ActionsLeft--

	e.countdowns.Pause(s.ID, turns.KindTurn)
	e.countdowns.Create(s.ID, turns.KindCombat, turns.CombatTurnSeconds, 0)

	e.journal.Emit(ctx, event.Envelope{
		SessionID:     s.ID,
		ParticipantID: challenger.ID,
		Type:          event.TypeCombatStarted,
		Payload: event.CombatStartedPayload{
			Challenger: challenger.Name,
			Defender:   defender.Name,
			First:      c.Turn,
		},
	})

	e.scheduleCombatBot(ctx, s.ID)
	return nil
}

// Attack resolves one attack by the acting fighter.
func (e *Engine) Attack(ctx context.Context, sessionID, channelID string) error {
	return e.call(func() error {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return err
		}
		return e.resolveAttack(ctx, s, p)
	})
}

func (e *Engine) resolveAttack(ctx context.Context, s *session.Session, attacker *session.Participant) error {
	c, ok := e.registry.Combat(s.ID)
	if !ok {
		return errors.New(errors.CodeCombatNotFound, "no active combat")
	}
	if !c.Involves(attacker.Name) {
		return errors.New(errors.CodeCombatNotYourTurn, "not part of this combat")
	}
	defender, ok := s.ParticipantByName(c.Opponent(attacker.Name))
	if !ok {
		// Opponent vanished mid-combat; treat as forfeit in the
		// attacker's favor.
		e.finishCombatForfeit(ctx, s, c, attacker.Name)
		return nil
	}

	result, err := c.ResolveAttack(attacker, defender, e.roller)
	if err != nil {
		return err
	}

	e.journal.Emit(ctx, event.Envelope{
		SessionID:     s.ID,
		ParticipantID: attacker.ID,
		Type:          event.TypeCombatAttack,
		Payload: event.AttackPayload{
			Attacker:     attacker.Name,
			Defender:     defender.Name,
			AttackTotal:  result.AttackTotal,
			DefenseTotal: result.DefenseTotal,
			Damage:       result.Damage,
			DefenderLife: defender.Life,
			FlaskUsed:    result.FlaskUsed,
		},
	})
	if result.Damage > 0 {
		if tracker, ok := e.challenges[s.ID]; ok {
			tracker.Reset(defender.Name, challenge.GoalUnscathed)
		}
	}

	if result.DefenderDefeated {
		e.finishCombatDefeat(ctx, s, c, attacker, defender)
		return nil
	}

	e.countdowns.Create(s.ID, turns.KindCombat, turns.CombatTurnSeconds, 0)
	e.scheduleCombatBot(ctx, s.ID)
	return nil
}

// Evade attempts to flee the combat.
func (e *Engine) Evade(ctx context.Context, sessionID, channelID string) error {
	return e.call(func() error {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return err
		}
		return e.resolveEvasion(ctx, s, p)
	})
}

func (e *Engine) resolveEvasion(ctx context.Context, s *session.Session, evader *session.Participant) error {
	c, ok := e.registry.Combat(s.ID)
	if !ok {
		return errors.New(errors.CodeCombatNotFound, "no active combat")
	}
	if !c.Involves(evader.Name) {
		return errors.New(errors.CodeCombatNotYourTurn, "not part of this combat")
	}

	result, err := c.ResolveEvasion(evader, e.roller)
	if err != nil {
		if errors.IsCode(err, errors.CodeNoEvasionsLeft) {
			// Out of charges: the attempt becomes an attack.
			e.journal.Emit(ctx, event.Envelope{
				SessionID:     s.ID,
				ParticipantID: evader.ID,
				Type:          event.TypeCombatEvasion,
				Payload: event.EvasionPayload{
					Name:         evader.Name,
					ForcedAttack: true,
				},
			})
			return e.resolveAttack(ctx, s, evader)
		}
		return err
	}

	e.journal.Emit(ctx, event.Envelope{
		SessionID:     s.ID,
		ParticipantID: evader.ID,
		Type:          event.TypeCombatEvasion,
		Payload: event.EvasionPayload{
			Name:         evader.Name,
			Success:      result.Success,
			AttemptsLeft: result.AttemptsLeft,
		},
	})

	if result.Success {
		e.finishCombatEvasion(ctx, s, c)
		return nil
	}

	e.countdowns.Create(s.ID, turns.KindCombat, turns.CombatTurnSeconds, 0)
	e.scheduleCombatBot(ctx, s.ID)
	return nil
}

// expireCombatTurn forces an attack when a fighter's combat countdown
// runs out.
func (e *Engine) expireCombatTurn(ctx context.Context, sessionID string) {
	s, ok := e.registry.Session(sessionID)
	if !ok {
		e.countdowns.Delete(sessionID, turns.KindCombat)
		return
	}
	c, ok := e.registry.Combat(sessionID)
	if !ok {
		e.countdowns.Delete(sessionID, turns.KindCombat)
		return
	}
	actor, ok := s.ParticipantByName(c.Turn)
	if !ok {
		e.finishCombatForfeit(ctx, s, c, c.Opponent(c.Turn))
		return
	}
	_ = e.resolveAttack(ctx, s, actor)
}

// finishCombatDefeat tears the combat down after a defeat: the loser
// drops everything and respawns or is eliminated, the winner is restored
// to pre-combat stats, and kill-count victory is checked.
func (e *Engine) finishCombatDefeat(ctx context.Context, s *session.Session, c *combat.Combat, winner, loser *session.Participant) {
	e.closeCombat(s.ID)

	dropped := items.DropAll(s, loser)
	for _, at := range dropped {
		if category, ok := s.Board.ItemAt(at); ok {
			e.journal.Emit(ctx, event.Envelope{
				SessionID: s.ID,
				Type:      event.TypeItemDropped,
				Payload:   event.ItemPayload{Name: loser.Name, Category: string(category), X: at.X, Y: at.Y},
			})
		}
	}

	if s.Settings.Elimination {
		loser.Eliminated = true
		loser.Observer = true
		e.journal.Emit(ctx, event.Envelope{
			SessionID: s.ID,
			Type:      event.TypeParticipantEliminated,
			Payload:   event.ParticipantPayload{Name: loser.Name},
		})
	} else {
		loser.Life = loser.MaxLife
		loser.Position = nil
		e.recoverPosition(s, loser)
	}

	c.Restore(winner)
	e.recordChallenge(ctx, s, winner.Name, challenge.GoalFirstBlood, 1)

	e.journal.Emit(ctx, event.Envelope{
		SessionID: s.ID,
		Type:      event.TypeCombatEnded,
		Payload:   event.CombatEndedPayload{Winner: winner.Name, Loser: loser.Name, Reason: "defeat"},
	})

	if winner.Wins >= session.KillCountTarget {
		e.teardown(ctx, s, winner.Name, "kill count reached")
		return
	}
	e.resumeAfterCombat(ctx, s, winner.Name)
}

// finishCombatEvasion ends the combat with no winner; both fighters are
// restored to their pre-combat stats.
func (e *Engine) finishCombatEvasion(ctx context.Context, s *session.Session, c *combat.Combat) {
	e.closeCombat(s.ID)
	for _, name := range []string{c.Challenger, c.Defender} {
		if p, ok := s.ParticipantByName(name); ok {
			c.Restore(p)
		}
	}
	e.journal.Emit(ctx, event.Envelope{
		SessionID: s.ID,
		Type:      event.TypeCombatEnded,
		Payload:   event.CombatEndedPayload{Reason: "evasion"},
	})
	e.resumeAfterCombat(ctx, s, c.Challenger)
}

// finishCombatForfeit ends the combat because one fighter is gone; the
// survivor wins and is restored.
func (e *Engine) finishCombatForfeit(ctx context.Context, s *session.Session, c *combat.Combat, winnerName string) {
	e.closeCombat(s.ID)
	loserName := c.Opponent(winnerName)
	winner, ok := s.ParticipantByName(winnerName)
	if ok {
		winner.Wins++
		c.Restore(winner)
	}
	if loser, ok := s.ParticipantByName(loserName); ok {
		loser.Losses++
	}
	e.journal.Emit(ctx, event.Envelope{
		SessionID: s.ID,
		Type:      event.TypeCombatEnded,
		Payload:   event.CombatEndedPayload{Winner: winnerName, Loser: loserName, Reason: "disconnection"},
	})
	if ok && winner.Wins >= session.KillCountTarget {
		e.teardown(ctx, s, winner.Name, "kill count reached")
		return
	}
	e.resumeAfterCombat(ctx, s, winnerName)
}

// closeCombat removes the combat and its countdown.
func (e *Engine) closeCombat(sessionID string) {
	e.registry.CloseCombat(sessionID)
	e.countdowns.Delete(sessionID, turns.KindCombat)
}

// resumeAfterCombat hands control back to the outer turn flow: the
// current turn resumes when it belongs to the surviving fighter, and is
// cut short otherwise.
func (e *Engine) resumeAfterCombat(ctx context.Context, s *session.Session, survivorName string) {
	if e.settleIfDecided(ctx, s) {
		return
	}
	current, ok := s.Current()
	if !ok {
		e.prepareNextTurn(ctx, s.ID)
		return
	}
	if current.Name == survivorName && current.Eligible() {
		e.countdowns.Resume(s.ID, turns.KindTurn)
		if e.autoEndIfStuck(ctx, s, current) {
			return
		}
		e.sendReachable(s, current)
		if current.Profile.Virtual() {
			name := current.Name
			e.deferFn(e.botDelay, func() { e.runBotStep(ctx, s.ID, name) })
		}
		return
	}
	e.endTurn(ctx, s, current, "combat")
}

// scheduleCombatBot hands the combat turn to a strategy when its holder
// is virtual.
func (e *Engine) scheduleCombatBot(ctx context.Context, sessionID string) {
	c, ok := e.registry.Combat(sessionID)
	if !ok {
		return
	}
	s, ok := e.registry.Session(sessionID)
	if !ok {
		return
	}
	actor, ok := s.ParticipantByName(c.Turn)
	if !ok || !actor.Profile.Virtual() {
		return
	}
	name := actor.Name
	e.deferFn(e.botDelay, func() { e.runBotCombat(ctx, sessionID, name) })
}
