package engine

import (
	"context"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/arena/challenge"
	"github.com/louisbranch/gridfall/internal/arena/event"
	"github.com/louisbranch/gridfall/internal/arena/items"
	"github.com/louisbranch/gridfall/internal/arena/movement"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

// Move walks the acting participant toward the destination one tile per
// deferred op, so observers see incremental motion. The walk stops early
// at the first item-bearing tile, on a terrain change invalidating the
// plan, or when the turn times out underneath it.
func (e *Engine) Move(ctx context.Context, sessionID, channelID string, to board.Coord) error {
	return e.call(func() error {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return err
		}
		if err := e.requireTurn(s, p); err != nil {
			return err
		}
		return e.beginWalk(ctx, s, p, to)
	})
}

// beginWalk validates and schedules a walk for the acting participant.
// Shared by the human Move command and the bot flow.
func (e *Engine) beginWalk(ctx context.Context, s *session.Session, p *session.Participant, to board.Coord) error {
	if e.isWalking(s.ID, p.Name) {
		return errors.New(errors.CodeMovementInProgress, "movement already in progress")
	}
	if !e.recoverPosition(s, p) {
		return errors.New(errors.CodePositionUnknown, "participant has no recoverable position")
	}
	if p.MovementLeft <= 0 {
		return errors.New(errors.CodeNoMovementLeft, "no movement budget left")
	}

	path := movement.PathTo(s, p, to, p.MovementLeft)
	if path == nil {
		return errors.New(errors.CodeDestinationUnreachable, "destination is not reachable")
	}
	if len(path) < 2 {
		return nil // already there
	}

	e.setWalking(s.ID, p.Name, true)
	name := p.Name
	steps := path[1:]
	e.deferFn(e.stepDelay, func() { e.walkStep(ctx, s.ID, name, steps) })
	return nil
}

// walkStep executes one tile of a walk and schedules the next. Every
// invocation re-fetches its state and aborts silently when the session,
// participant or turn is gone.
func (e *Engine) walkStep(ctx context.Context, sessionID, name string, steps []board.Coord) {
	s, ok := e.registry.Session(sessionID)
	if !ok {
		return
	}
	p, ok := s.ParticipantByName(name)
	if !ok || !p.Eligible() || p.Position == nil {
		e.setWalking(sessionID, name, false)
		return
	}
	current, ok := s.Current()
	if !ok || current != p || p.TurnEnded {
		e.setWalking(sessionID, name, false)
		return
	}
	if _, busy := e.registry.Combat(sessionID); busy {
		e.setWalking(sessionID, name, false)
		return
	}

	step := steps[0]
	cost, passable := s.Board.MoveCost(step)
	if !passable || !p.Position.Adjacent(step) || cost > p.MovementLeft {
		e.finishWalk(ctx, s, p)
		return
	}
	if occupant, occupied := s.OccupiedBy(step); occupied && occupant != p {
		e.finishWalk(ctx, s, p)
		return
	}

	pos := step
	p.Position = &pos
	p.MovementLeft -= cost
	e.applyIceTransition(p, s.Board.TerrainAt(step))

	e.journal.Emit(ctx, event.Envelope{
		SessionID:     s.ID,
		ParticipantID: p.ID,
		Type:          event.TypeMoveStepped,
		Payload:       event.StepPayload{Name: p.Name, X: step.X, Y: step.Y, MovementLeft: p.MovementLeft},
	})
	e.recordChallenge(ctx, s, p.Name, challenge.GoalTraverse, 1)

	if category, picked := items.Pickup(s, p, e.rng); picked {
		e.journal.Emit(ctx, event.Envelope{
			SessionID:     s.ID,
			ParticipantID: p.ID,
			Type:          event.TypeItemPicked,
			Payload:       event.ItemPayload{Name: p.Name, Category: string(category), X: step.X, Y: step.Y},
		})
		e.recordChallenge(ctx, s, p.Name, challenge.GoalCollect, 1)
		// Items halt traversal for the rest of this command.
		e.finishWalk(ctx, s, p)
		return
	}

	if p.Holds(board.ItemFlag) && p.AtSpawn() {
		e.setWalking(s.ID, p.Name, false)
		e.journal.Emit(ctx, event.Envelope{
			SessionID:     s.ID,
			ParticipantID: p.ID,
			Type:          event.TypeFlagCaptured,
			Payload:       event.FlagPayload{Name: p.Name},
		})
		e.teardown(ctx, s, p.Name, "flag captured")
		return
	}

	if len(steps) > 1 {
		remaining := steps[1:]
		e.deferFn(e.stepDelay, func() { e.walkStep(ctx, sessionID, name, remaining) })
		return
	}
	e.finishWalk(ctx, s, p)
}

// finishWalk closes out a walk: refresh the private reachable view and
// auto-end the turn when nothing remains to do.
func (e *Engine) finishWalk(ctx context.Context, s *session.Session, p *session.Participant) {
	e.setWalking(s.ID, p.Name, false)
	if e.autoEndIfStuck(ctx, s, p) {
		return
	}
	e.sendReachable(s, p)
	if p.Profile.Virtual() {
		name := p.Name
		e.deferFn(e.botDelay, func() { e.runBotStep(ctx, s.ID, name) })
	}
}

// applyIceTransition keeps the ice speed debuff in sync with footing.
func (e *Engine) applyIceTransition(p *session.Participant, terrain board.Terrain) {
	onIce := terrain == board.TerrainIce
	switch {
	case onIce && !p.OnIce:
		p.OnIce = true
		if p.Speed > 1 {
			p.Speed--
		}
	case !onIce && p.OnIce:
		p.OnIce = false
		p.Speed++
	}
}

// ToggleDoor opens or closes an adjacent door. Toggling is free but the
// door tile must be unoccupied.
func (e *Engine) ToggleDoor(ctx context.Context, sessionID, channelID string, at board.Coord) error {
	return e.call(func() error {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return err
		}
		if err := e.requireTurn(s, p); err != nil {
			return err
		}
		return e.toggleDoor(ctx, s, p, at)
	})
}

func (e *Engine) toggleDoor(ctx context.Context, s *session.Session, p *session.Participant, at board.Coord) error {
	if p.Position == nil || !p.Position.Adjacent(at) {
		return errors.New(errors.CodeTileNotAdjacent, "door is not adjacent")
	}
	if !s.Board.IsDoor(at) {
		return errors.New(errors.CodeTileNotAdjacent, "tile is not a door")
	}
	if _, occupied := s.OccupiedBy(at); occupied {
		return errors.New(errors.CodeDoorBlocked, "door tile is occupied")
	}

	open, ok := s.Board.ToggleDoor(at)
	if !ok {
		return errors.New(errors.CodeTileNotAdjacent, "tile is not a door")
	}
	s.RecordDoorEvent(p.Name, at, open)

	e.journal.Emit(ctx, event.Envelope{
		SessionID:     s.ID,
		ParticipantID: p.ID,
		Type:          event.TypeDoorToggled,
		Payload:       event.DoorPayload{Name: p.Name, X: at.X, Y: at.Y, Open: open},
	})
	e.recordChallenge(ctx, s, p.Name, challenge.GoalDoors, 1)
	return nil
}

// BreakWall turns an adjacent wall tile into floor. Costs the turn's
// action; walls shoring up a doorway cannot be broken.
func (e *Engine) BreakWall(ctx context.Context, sessionID, channelID string, at board.Coord) error {
	return e.call(func() error {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return err
		}
		if err := e.requireTurn(s, p); err != nil {
			return err
		}
		if p.ActionsLeft <= 0 {
			return errors.New(errors.CodeNoActionsLeft, "no actions left this turn")
		}
		if p.Position == nil || !p.Position.Adjacent(at) {
			return errors.New(errors.CodeTileNotAdjacent, "wall is not adjacent")
		}
		breakable := false
		for _, candidate := range movement.AdjacentWalls(s, p) {
			if candidate == at {
				breakable = true
				break
			}
		}
		if !breakable || !s.Board.BreakWall(at) {
			return errors.New(errors.CodeTileNotBreakable, "wall cannot be broken")
		}
		p.ActionsLeft--

		e.journal.Emit(ctx, event.Envelope{
			SessionID:     s.ID,
			ParticipantID: p.ID,
			Type:          event.TypeWallBroken,
			Payload:       event.WallPayload{Name: p.Name, X: at.X, Y: at.Y},
		})
		e.autoEndIfStuck(ctx, s, p)
		return nil
	})
}

// DropItem places a carried item back on the grid.
func (e *Engine) DropItem(ctx context.Context, sessionID, channelID string, category board.ItemCategory) error {
	return e.call(func() error {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return err
		}
		if err := e.requireTurn(s, p); err != nil {
			return err
		}
		if len(p.Inventory) == 0 {
			return errors.New(errors.CodeInventoryEmpty, "inventory is empty")
		}
		at, err := items.Drop(s, p, category)
		if err != nil {
			return err
		}
		e.journal.Emit(ctx, event.Envelope{
			SessionID:     s.ID,
			ParticipantID: p.ID,
			Type:          event.TypeItemDropped,
			Payload:       event.ItemPayload{Name: p.Name, Category: string(category), X: at.X, Y: at.Y},
		})
		return nil
	})
}

func (e *Engine) recordChallenge(ctx context.Context, s *session.Session, name string, goal challenge.Goal, delta int) {
	tracker, ok := e.challenges[s.ID]
	if !ok {
		return
	}
	if tracker.Record(name, goal, delta) {
		e.emitChallengeCompleted(ctx, s, name)
	}
}
