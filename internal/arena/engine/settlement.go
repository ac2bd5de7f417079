package engine

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/gridfall/internal/arena/event"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/storage"
)

// disconnect degrades a participant after the match started. Any combat
// they were in resolves as a forfeit for the opponent, and their turn, if
// current, is cut short.
func (e *Engine) disconnect(ctx context.Context, s *session.Session, p *session.Participant) {
	e.setWalking(s.ID, p.Name, false)

	wasCurrent := false
	if current, ok := s.Current(); ok && current == p {
		wasCurrent = true
	}

	s.Degrade(p)
	e.journal.Emit(ctx, event.Envelope{
		SessionID: s.ID,
		Type:      event.TypeParticipantDegraded,
		Payload:   event.ParticipantPayload{Name: p.Name},
	})
	if p.Eliminated {
		e.journal.Emit(ctx, event.Envelope{
			SessionID: s.ID,
			Type:      event.TypeParticipantEliminated,
			Payload:   event.ParticipantPayload{Name: p.Name},
		})
	}

	if c, ok := e.registry.Combat(s.ID); ok && c.Involves(p.Name) {
		e.finishCombatForfeit(ctx, s, c, c.Opponent(p.Name))
		return
	}

	if e.settleIfDecided(ctx, s) {
		return
	}
	if wasCurrent {
		e.endTurn(ctx, s, p, "disconnected")
	}
}

// settleIfDecided ends the match when at most one eligible participant
// remains. Kill-count and flag victories settle at their own sites.
func (e *Engine) settleIfDecided(ctx context.Context, s *session.Session) bool {
	if !s.Started {
		return false
	}
	eligible := s.Eligible()
	if len(eligible) > 1 {
		return false
	}
	if len(eligible) == 1 {
		e.teardown(ctx, s, eligible[0].Name, "last participant standing")
	} else {
		e.teardown(ctx, s, "", "no eligible participants")
	}
	return true
}

// teardown ends a session: announce the outcome, pay out the prize pool,
// persist the result, and release every piece of per-session state. An
// empty winner records a match with no victor.
func (e *Engine) teardown(ctx context.Context, s *session.Session, winner, reason string) {
	e.registry.CloseCombat(s.ID)
	e.countdowns.DeleteSession(s.ID)
	delete(e.challenges, s.ID)
	for key := range e.walking {
		if strings.HasPrefix(key, s.ID+"/") {
			delete(e.walking, key)
		}
	}

	duration := e.clock().Sub(s.CreatedAt)
	if start, ok := e.startedAt[s.ID]; ok {
		duration = e.clock().Sub(start)
		delete(e.startedAt, s.ID)
	}

	e.journal.Emit(ctx, event.Envelope{
		SessionID: s.ID,
		Type:      event.TypeSessionEnded,
		Payload:   event.SessionEndedPayload{Winner: winner, Reason: reason},
	})

	e.distributePrize(ctx, s, winner)

	if e.results != nil {
		e.persistResult(ctx, s, winner, reason, duration)
	}

	e.registry.RemoveSession(s.ID)
	e.journal.CloseSession(s.ID)
}

// distributePrize pays the pool to the winner's account. Virtual and
// degraded winners have no delivery channel and forfeit the payout.
func (e *Engine) distributePrize(ctx context.Context, s *session.Session, winner string) {
	if winner == "" || s.PrizePool <= 0 || e.economy == nil {
		return
	}
	p, ok := s.ParticipantByName(winner)
	if !ok || p.ID == "" {
		return
	}
	accountID, err := e.identity.AccountID(ctx, p.ID)
	if err != nil {
		log.Printf("engine: resolve winner account for session %s: %v", s.ID, err)
		return
	}
	if err := e.economy.Distribute(ctx, accountID, s.PrizePool); err != nil {
		log.Printf("engine: distribute prize for session %s: %v", s.ID, err)
		return
	}
	e.journal.Emit(ctx, event.Envelope{
		SessionID:     s.ID,
		ParticipantID: p.ID,
		Type:          event.TypeRewardSettled,
		Payload:       event.RewardPayload{Name: winner, Amount: s.PrizePool},
	})
}

// persistResult writes the final match record. Failures are logged, not
// surfaced; the match outcome already reached the journal.
func (e *Engine) persistResult(ctx context.Context, s *session.Session, winner, reason string, duration time.Duration) {
	resultID, err := e.newID()
	if err != nil {
		log.Printf("engine: generate result id for session %s: %v", s.ID, err)
		return
	}
	result := storage.MatchResult{
		ID:        resultID,
		SessionID: s.ID,
		MapName:   s.MapName,
		Winner:    winner,
		Reason:    reason,
		Turns:     s.TurnCount,
		Duration:  duration,
		CreatedAt: e.clock().UTC(),
	}
	if err := e.results.PutMatchResult(ctx, result); err != nil {
		log.Printf("engine: persist result for session %s: %v", s.ID, err)
	}
}
