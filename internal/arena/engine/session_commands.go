package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/louisbranch/gridfall/internal/arena/challenge"
	"github.com/louisbranch/gridfall/internal/arena/event"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

// CreateSessionInput describes a new match request.
type CreateSessionInput struct {
	MapName     string
	Elimination bool
	EntryFee    int64
}

// CreateSession loads the map document and registers a fresh session.
func (e *Engine) CreateSession(ctx context.Context, input CreateSessionInput) (string, error) {
	return callValue(e, func() (string, error) {
		doc, err := e.maps.Load(ctx, input.MapName)
		if err != nil {
			return "", fmt.Errorf("load map %q: %w", input.MapName, err)
		}

		settings := session.Settings{Elimination: input.Elimination, EntryFee: input.EntryFee}
		if e.economy == nil {
			// No economy collaborator wired: fees are disabled, not owed.
			settings.EntryFee = 0
		}
		s, err := session.Create(session.CreateInput{
			MapName:  input.MapName,
			Document: doc,
			Settings: settings,
		}, e.clock, e.newID)
		if err != nil {
			return "", err
		}

		e.registry.AddSession(s)
		e.challenges[s.ID] = challenge.NewTracker()

		e.journal.Emit(ctx, event.Envelope{
			SessionID: s.ID,
			Type:      event.TypeSessionCreated,
			Payload: event.SessionCreatedPayload{
				MapName:     s.MapName,
				Elimination: s.Settings.Elimination,
				EntryFee:    s.Settings.EntryFee,
			},
		})
		return s.ID, nil
	})
}

// JoinInput describes a human joining a session.
type JoinInput struct {
	SessionID     string
	ChannelID     string
	Name          string
	Quick         bool
	AttackHighDie bool
}

// Join adds a human participant, collecting the entry fee first. The
// assigned (possibly suffixed) display name is returned.
func (e *Engine) Join(ctx context.Context, input JoinInput) (string, error) {
	return callValue(e, func() (string, error) {
		s, ok := e.registry.Session(input.SessionID)
		if !ok {
			return "", errors.New(errors.CodeSessionNotFound, "session not found")
		}

		if s.Settings.EntryFee > 0 {
			if err := e.collectFee(ctx, s, input.ChannelID); err != nil {
				return "", err
			}
		}

		p, err := s.AddParticipant(session.JoinInput{
			ChannelID:     input.ChannelID,
			Name:          input.Name,
			Profile:       session.ProfileHuman,
			Quick:         input.Quick,
			AttackHighDie: input.AttackHighDie,
		})
		if err != nil {
			if s.Settings.EntryFee > 0 {
				e.refundFee(ctx, s, input.ChannelID)
			}
			return "", err
		}

		e.journal.Emit(ctx, event.Envelope{
			SessionID:     s.ID,
			ParticipantID: p.ID,
			Type:          event.TypeParticipantJoined,
			Payload:       event.ParticipantPayload{Name: p.Name},
		})
		return p.Name, nil
	})
}

// AddVirtualInput describes a scripted participant.
type AddVirtualInput struct {
	SessionID string
	Name      string
	Profile   session.Profile
}

// AddVirtual adds a scripted participant. Virtual participants have no
// delivery channel, pay no fee, and get a random stat spread.
func (e *Engine) AddVirtual(ctx context.Context, input AddVirtualInput) (string, error) {
	return callValue(e, func() (string, error) {
		s, ok := e.registry.Session(input.SessionID)
		if !ok {
			return "", errors.New(errors.CodeSessionNotFound, "session not found")
		}
		if !input.Profile.Virtual() {
			return "", errors.New(errors.CodeParticipantNotFound, "profile is not virtual")
		}

		p, err := s.AddParticipant(session.JoinInput{
			Name:          input.Name,
			Profile:       input.Profile,
			Quick:         e.rng.Intn(2) == 0,
			AttackHighDie: e.rng.Intn(2) == 0,
		})
		if err != nil {
			return "", err
		}

		e.journal.Emit(ctx, event.Envelope{
			SessionID: s.ID,
			Type:      event.TypeParticipantJoined,
			Payload:   event.ParticipantPayload{Name: p.Name, Virtual: true},
		})
		return p.Name, nil
	})
}

// Rename changes a participant's display name before the match starts.
func (e *Engine) Rename(ctx context.Context, sessionID, channelID, name string) (string, error) {
	return callValue(e, func() (string, error) {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return "", err
		}
		from := p.Name
		to, err := s.RenameParticipant(p, name)
		if err != nil {
			return "", err
		}
		if to != from {
			e.journal.Emit(ctx, event.Envelope{
				SessionID:     s.ID,
				ParticipantID: p.ID,
				Type:          event.TypeParticipantRenamed,
				Payload:       event.RenamedPayload{From: from, To: to},
			})
		}
		return to, nil
	})
}

// Leave removes a participant before start (with refund) or degrades them
// after start, exactly like a disconnect.
func (e *Engine) Leave(ctx context.Context, sessionID, channelID string) error {
	return e.call(func() error {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return err
		}
		if !s.Started {
			name := p.Name
			if s.Settings.EntryFee > 0 {
				e.refundFee(ctx, s, channelID)
			}
			s.RemoveParticipant(channelID)
			e.journal.Emit(ctx, event.Envelope{
				SessionID: s.ID,
				Type:      event.TypeParticipantLeft,
				Payload:   event.ParticipantPayload{Name: name},
			})
			return nil
		}
		e.disconnect(ctx, s, p)
		return nil
	})
}

// Disconnect handles a dropped delivery channel wherever it is attached.
// Unknown channels are a no-op.
func (e *Engine) Disconnect(ctx context.Context, channelID string) {
	e.submit(func() {
		s, p, ok := e.registry.FindByParticipant(channelID)
		if !ok {
			return
		}
		if !s.Started {
			if s.Settings.EntryFee > 0 {
				e.refundFee(ctx, s, channelID)
			}
			name := p.Name
			s.RemoveParticipant(channelID)
			e.journal.Emit(ctx, event.Envelope{
				SessionID: s.ID,
				Type:      event.TypeParticipantLeft,
				Payload:   event.ParticipantPayload{Name: name},
			})
			return
		}
		e.disconnect(ctx, s, p)
	})
}

// StartSession locks the roster, seats everyone, and opens the first turn.
func (e *Engine) StartSession(ctx context.Context, sessionID string) error {
	return e.call(func() error {
		s, ok := e.registry.Session(sessionID)
		if !ok {
			return errors.New(errors.CodeSessionNotFound, "session not found")
		}
		if s.Started {
			return errors.New(errors.CodeSessionStarted, "session already started")
		}
		if len(s.Participants) < session.MinParticipants {
			return errors.New(errors.CodeSessionBelowQuorum, "not enough participants to start")
		}

		// Turn order is speed descending; joins broke ties by arrival.
		sort.SliceStable(s.Participants, func(i, j int) bool {
			return s.Participants[i].Speed > s.Participants[j].Speed
		})
		for i, p := range s.Participants {
			p.TurnOrder = i
		}

		if err := s.AssignSpawns(e.rng); err != nil {
			return err
		}
		s.Started = true
		s.Locked = true
		s.CurrentTurn = -1
		e.startedAt[s.ID] = e.clock()

		tracker := e.challenges[s.ID]
		names := make([]string, 0, len(s.Participants))
		for _, p := range s.Participants {
			names = append(names, p.Name)
			if tracker == nil {
				continue
			}
			assigned := tracker.Assign(p.Name, e.rng)
			e.journal.Emit(ctx, event.Envelope{
				SessionID:     s.ID,
				ParticipantID: p.ID,
				Type:          event.TypeChallengeAssigned,
				Payload: event.ChallengePayload{
					Name:   p.Name,
					Goal:   string(assigned.Goal),
					Target: assigned.Target,
				},
			})
		}

		e.journal.Emit(ctx, event.Envelope{
			SessionID: s.ID,
			Type:      event.TypeSessionStarted,
			Payload:   event.SessionStartedPayload{Participants: names, PrizePool: s.PrizePool},
		})

		e.prepareNextTurn(ctx, s.ID)
		return nil
	})
}

// resolve looks up the session and the participant attached to the
// channel.
func (e *Engine) resolve(sessionID, channelID string) (*session.Session, *session.Participant, error) {
	s, ok := e.registry.Session(sessionID)
	if !ok {
		return nil, nil, errors.New(errors.CodeSessionNotFound, "session not found")
	}
	p, ok := s.Participant(channelID)
	if !ok {
		return nil, nil, errors.New(errors.CodeParticipantNotFound, "participant not found")
	}
	return s, p, nil
}

func (e *Engine) collectFee(ctx context.Context, s *session.Session, channelID string) error {
	accountID, err := e.identity.AccountID(ctx, channelID)
	if err != nil {
		return fmt.Errorf("resolve account: %w", err)
	}
	affords, err := e.economy.CanAfford(ctx, accountID, s.Settings.EntryFee)
	if err != nil {
		return fmt.Errorf("check balance: %w", err)
	}
	if !affords {
		return errors.New(errors.CodeInsufficientFunds, "balance below entry fee")
	}
	if err := e.economy.Deduct(ctx, accountID, s.Settings.EntryFee); err != nil {
		return err
	}
	s.PrizePool += s.Settings.EntryFee
	return nil
}

func (e *Engine) refundFee(ctx context.Context, s *session.Session, channelID string) {
	accountID, err := e.identity.AccountID(ctx, channelID)
	if err != nil {
		return
	}
	if err := e.economy.Refund(ctx, accountID, s.Settings.EntryFee); err != nil {
		return
	}
	s.PrizePool -= s.Settings.EntryFee
}
