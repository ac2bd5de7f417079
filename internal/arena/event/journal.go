package event

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Entry is one persisted journal record. Seq is assigned by storage on
// append.
type Entry struct {
	SessionID     string
	Seq           uint64
	Timestamp     time.Time
	Type          Type
	ParticipantID string
	PayloadJSON   []byte
}

// Store persists journal entries.
type Store interface {
	AppendEntry(ctx context.Context, entry Entry) (Entry, error)
}

// Journal fans events out to the session audience and appends them to the
// store. Persistence is best effort: a failed append is logged and never
// blocks gameplay.
type Journal struct {
	store     Store
	broadcast Broadcaster
	now       func() time.Time
}

// NewJournal creates a journal. A nil store disables persistence; a nil
// broadcaster disables delivery.
func NewJournal(store Store, broadcast Broadcaster) *Journal {
	if broadcast == nil {
		broadcast = NopBroadcaster{}
	}
	return &Journal{
		store:     store,
		broadcast: broadcast,
		now:       time.Now,
	}
}

// Emit timestamps the envelope, broadcasts it, and appends it to the
// store when one is configured.
func (j *Journal) Emit(ctx context.Context, env Envelope) {
	if !env.Type.IsValid() {
		return
	}
	if env.At.IsZero() {
		env.At = j.now().UTC()
	}

	j.broadcast.Broadcast(env)

	if j.store == nil {
		return
	}
	payloadJSON, err := json.Marshal(env.Payload)
	if err != nil {
		log.Printf("marshal journal payload for %s: %v", env.Type, err)
		return
	}
	entry := Entry{
		SessionID:     env.SessionID,
		Timestamp:     env.At,
		Type:          env.Type,
		ParticipantID: env.ParticipantID,
		PayloadJSON:   payloadJSON,
	}
	if _, err := j.store.AppendEntry(ctx, entry); err != nil {
		log.Printf("append journal entry for %s: %v", env.Type, err)
	}
}

// Announce broadcasts without persisting. Per-second countdown ticks
// would flood the journal.
func (j *Journal) Announce(env Envelope) {
	if env.At.IsZero() {
		env.At = j.now().UTC()
	}
	j.broadcast.Broadcast(env)
}

// SendTo delivers a targeted envelope without journaling it. Used for
// private views such as a participant's reachable tiles.
func (j *Journal) SendTo(participantID string, env Envelope) {
	if env.At.IsZero() {
		env.At = j.now().UTC()
	}
	j.broadcast.SendTo(participantID, env)
}

// CloseSession releases the session's audience.
func (j *Journal) CloseSession(sessionID string) {
	j.broadcast.CloseSession(sessionID)
}
