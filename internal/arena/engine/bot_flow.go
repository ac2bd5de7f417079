package engine

import (
	"context"

	"github.com/louisbranch/gridfall/internal/arena/bot"
	"github.com/louisbranch/gridfall/internal/arena/movement"
	"github.com/louisbranch/gridfall/internal/arena/session"
)

// runBotStep advances a virtual participant's turn by one action. Each
// completed action loops back here via the same deferred scheduling the
// human flows use, so bots and humans share every validation path.
func (e *Engine) runBotStep(ctx context.Context, sessionID, name string) {
	s, ok := e.registry.Session(sessionID)
	if !ok {
		return
	}
	p, ok := s.ParticipantByName(name)
	if !ok || !p.Eligible() || !p.Profile.Virtual() {
		return
	}
	current, ok := s.Current()
	if !ok || current != p || p.TurnEnded {
		return
	}
	if _, busy := e.registry.Combat(sessionID); busy {
		return
	}
	if e.isWalking(sessionID, name) {
		return
	}

	e.botToggleDoor(ctx, s, p)

	strategy := bot.ForProfile(p.Profile)
	if strategy == nil {
		e.endTurn(ctx, s, p, "ended")
		return
	}

	switch action := strategy.NextAction(s, p, e.roller); action.Kind {
	case bot.ActionFight:
		if err := e.startCombat(ctx, s, p, action.Opponent); err != nil {
			e.endTurn(ctx, s, p, "ended")
		}
	case bot.ActionMove:
		if err := e.beginWalk(ctx, s, p, action.To); err != nil {
			e.endTurn(ctx, s, p, "ended")
		}
	default:
		e.endTurn(ctx, s, p, "ended")
	}
}

// botToggleDoor occasionally flips one adjacent door at the start of the
// turn, so bot matches exercise door mechanics. Guarded on a full
// movement budget so it fires at most once before the bot moves.
func (e *Engine) botToggleDoor(ctx context.Context, s *session.Session, p *session.Participant) {
	if p.MovementLeft != p.Speed {
		return
	}
	doors := movement.AdjacentDoors(s, p)
	if len(doors) == 0 || !e.roller.Chance(0.25) {
		return
	}
	at := doors[e.rng.Intn(len(doors))]
	_ = e.toggleDoor(ctx, s, p, at)
}

// runBotCombat resolves one combat decision for a virtual fighter.
func (e *Engine) runBotCombat(ctx context.Context, sessionID, name string) {
	s, ok := e.registry.Session(sessionID)
	if !ok {
		return
	}
	c, ok := e.registry.Combat(sessionID)
	if !ok || c.Turn != name {
		return
	}
	p, ok := s.ParticipantByName(name)
	if !ok || !p.Profile.Virtual() {
		return
	}
	strategy := bot.ForProfile(p.Profile)
	if strategy == nil {
		return
	}

	if strategy.InCombat(c, p, e.roller) == bot.ChoiceEvade {
		if err := e.resolveEvasion(ctx, s, p); err == nil {
			return
		}
	}
	_ = e.resolveAttack(ctx, s, p)
}
