package engine

import (
	"context"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/arena/challenge"
	"github.com/louisbranch/gridfall/internal/arena/event"
	"github.com/louisbranch/gridfall/internal/arena/items"
	"github.com/louisbranch/gridfall/internal/arena/movement"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/arena/turns"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

// EndTurn is the explicit end-of-turn command. Only the acting
// participant may shortcut their own countdown.
func (e *Engine) EndTurn(ctx context.Context, sessionID, channelID string) error {
	return e.call(func() error {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return err
		}
		if err := e.requireTurn(s, p); err != nil {
			return err
		}
		e.endTurn(ctx, s, p, "ended")
		return nil
	})
}

// requireTurn validates that the participant is the session's acting
// participant and no combat is in flight.
func (e *Engine) requireTurn(s *session.Session, p *session.Participant) error {
	if !s.Started {
		return errors.New(errors.CodeSessionNotStarted, "session has not started")
	}
	current, ok := s.Current()
	if !ok || current != p {
		return errors.New(errors.CodeNotYourTurn, "not this participant's turn")
	}
	if _, busy := e.registry.Combat(s.ID); busy {
		return errors.New(errors.CodeCombatExists, "combat in progress")
	}
	return nil
}

// prepareNextTurn advances circularly to the next eligible participant,
// or tears the session down when none (or only one) remains.
func (e *Engine) prepareNextTurn(ctx context.Context, sessionID string) {
	s, ok := e.registry.Session(sessionID)
	if !ok {
		return
	}
	if e.settleIfDecided(ctx, s) {
		return
	}

	for range s.Participants {
		s.AdvanceTurn()
		p, ok := s.Current()
		if !ok {
			break
		}
		if !p.Eligible() {
			continue
		}
		e.startTurn(ctx, s, p)
		return
	}

	// Full revolution with nobody eligible.
	e.teardown(ctx, s, "", "no eligible participants")
}

// startTurn opens the participant's turn: recover placement, reset
// budgets, shed other participants' overflow, announce, arm the
// countdown, and hand virtual participants to their strategy.
func (e *Engine) startTurn(ctx context.Context, s *session.Session, p *session.Participant) {
	if !e.recoverPosition(s, p) {
		// Placement is unrecoverable; skip. TurnEnded only resets on a
		// successful start, so a full revolution of failures tears the
		// session down instead of cycling forever.
		p.TurnEnded = true
		for _, other := range s.Participants {
			if other.Eligible() && !other.TurnEnded {
				e.prepareNextTurn(ctx, s.ID)
				return
			}
		}
		e.teardown(ctx, s, "", "no placeable participants")
		return
	}

	s.TurnCount++
	p.TurnEnded = false
	p.ResetTurnBudgets()

	for _, other := range s.Participants {
		if other == p {
			continue
		}
		if shed := items.Overflow(s, other); len(shed) > 0 {
			categories := make([]string, len(shed))
			for i, category := range shed {
				categories[i] = string(category)
			}
			e.journal.Emit(ctx, event.Envelope{
				SessionID:     s.ID,
				ParticipantID: other.ID,
				Type:          event.TypeInventoryFull,
				Payload:       event.OverflowPayload{Name: other.Name, Categories: categories},
			})
		}
	}

	if tracker, ok := e.challenges[s.ID]; ok {
		if tracker.Record(p.Name, challenge.GoalUnscathed, 1) {
			e.emitChallengeCompleted(ctx, s, p.Name)
		}
	}

	e.journal.Emit(ctx, event.Envelope{
		SessionID:     s.ID,
		ParticipantID: p.ID,
		Type:          event.TypeTurnStarted,
		Payload:       event.TurnPayload{Name: p.Name, TurnCount: s.TurnCount},
	})
	e.sendReachable(s, p)

	e.countdowns.Create(s.ID, turns.KindTurn, turns.TurnSeconds, turns.PreTurnDelayTicks)

	if p.Profile.Virtual() {
		name := p.Name
		e.deferFn(e.botDelay, func() { e.runBotStep(ctx, s.ID, name) })
	}
}

// endTurn closes the acting participant's turn and opens the next. The
// TurnEnded flag guards against a stale expiry double-processing one
// logical turn.
func (e *Engine) endTurn(ctx context.Context, s *session.Session, p *session.Participant, reason string) {
	if p.TurnEnded {
		return
	}
	p.TurnEnded = true
	e.countdowns.Delete(s.ID, turns.KindTurn)

	e.journal.Emit(ctx, event.Envelope{
		SessionID:     s.ID,
		ParticipantID: p.ID,
		Type:          event.TypeTurnEnded,
		Payload:       event.TurnPayload{Name: p.Name, TurnCount: s.TurnCount, Reason: reason},
	})

	e.prepareNextTurn(ctx, s.ID)
}

// expireTurn handles a turn countdown reaching zero.
func (e *Engine) expireTurn(ctx context.Context, sessionID string) {
	s, ok := e.registry.Session(sessionID)
	if !ok {
		e.countdowns.Delete(sessionID, turns.KindTurn)
		return
	}
	p, ok := s.Current()
	if !ok {
		e.countdowns.Delete(sessionID, turns.KindTurn)
		return
	}
	e.endTurn(ctx, s, p, "timeout")
}

// autoEndIfStuck ends the turn when the participant has nothing left to
// do: no actions and no tile to spend remaining movement on.
func (e *Engine) autoEndIfStuck(ctx context.Context, s *session.Session, p *session.Participant) bool {
	exhausted := p.ActionsLeft <= 0 && p.MovementLeft <= 0
	if !exhausted && !movement.IsStuck(s, p) {
		return false
	}
	reason := "exhausted"
	if !exhausted {
		reason = "stuck"
	}
	e.endTurn(ctx, s, p, reason)
	return true
}

// recoverPosition restores a lost placement: spawn point first, else the
// nearest free tile to it.
func (e *Engine) recoverPosition(s *session.Session, p *session.Participant) bool {
	if p.Position != nil {
		return true
	}
	if _, passable := s.Board.MoveCost(p.Spawn); passable {
		if _, occupied := s.OccupiedBy(p.Spawn); !occupied {
			pos := p.Spawn
			p.Position = &pos
			return true
		}
	}
	at, ok := s.Board.NearestFreeTile(p.Spawn, func(c board.Coord) bool {
		_, occupied := s.OccupiedBy(c)
		return !occupied
	})
	if !ok {
		return false
	}
	pos := at
	p.Position = &pos
	return true
}

// sendReachable privately sends the acting participant their reachable
// set. Virtual participants have no channel and are skipped.
func (e *Engine) sendReachable(s *session.Session, p *session.Participant) {
	if p.ID == "" {
		return
	}
	reach := movement.ReachableTiles(s, p, p.MovementLeft)
	tiles := make([]event.TilePayload, 0, len(reach))
	for at, r := range reach {
		tiles = append(tiles, event.TilePayload{X: at.X, Y: at.Y, Cost: r.Cost})
	}
	e.journal.SendTo(p.ID, event.Envelope{
		SessionID:     s.ID,
		ParticipantID: p.ID,
		Type:          event.TypeTurnReachable,
		Payload:       event.ReachablePayload{Tiles: tiles},
	})
}

func (e *Engine) emitChallengeCompleted(ctx context.Context, s *session.Session, name string) {
	tracker, ok := e.challenges[s.ID]
	if !ok {
		return
	}
	assigned, ok := tracker.Get(name)
	if !ok {
		return
	}
	e.journal.Emit(ctx, event.Envelope{
		SessionID: s.ID,
		Type:      event.TypeChallengeCompleted,
		Payload: event.ChallengePayload{
			Name:   name,
			Goal:   string(assigned.Goal),
			Target: assigned.Target,
		},
	})
}
