package event

import "sync"

// Broadcaster delivers envelopes to a session's audience. The engine
// depends on this contract only; transports register concrete delivery
// behind it.
type Broadcaster interface {
	// Broadcast delivers to every subscriber of the session.
	Broadcast(env Envelope)
	// SendTo delivers to one participant's channel only.
	SendTo(participantID string, env Envelope)
	// CloseSession releases every subscription for the session.
	CloseSession(sessionID string)
}

// NopBroadcaster discards everything. Used by simulations and tests that
// do not observe delivery.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(Envelope)      {}
func (NopBroadcaster) SendTo(string, Envelope) {}
func (NopBroadcaster) CloseSession(string)     {}

// Hub is an in-process Broadcaster: buffered channels per subscriber,
// non-blocking sends so one slow consumer never stalls the engine loop.
type Hub struct {
	mu   sync.Mutex
	subs map[string][]*subscription // session id -> audience
	byID map[string]*subscription   // participant id -> direct channel
}

type subscription struct {
	sessionID     string
	participantID string
	ch            chan Envelope
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string][]*subscription),
		byID: make(map[string]*subscription),
	}
}

// Subscribe registers a consumer for the session's events and returns its
// receive channel plus a cancel function. A non-empty participantID also
// enables SendTo delivery.
func (h *Hub) Subscribe(sessionID, participantID string, buffer int) (<-chan Envelope, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	sub := &subscription{
		sessionID:     sessionID,
		participantID: participantID,
		ch:            make(chan Envelope, buffer),
	}

	h.mu.Lock()
	h.subs[sessionID] = append(h.subs[sessionID], sub)
	if participantID != "" {
		h.byID[participantID] = sub
	}
	h.mu.Unlock()

	return sub.ch, func() { h.remove(sub) }
}

// Broadcast delivers to every subscriber of the session. Envelopes are
// dropped for subscribers whose buffer is full.
func (h *Hub) Broadcast(env Envelope) {
	h.mu.Lock()
	audience := h.subs[env.SessionID]
	h.mu.Unlock()

	for _, sub := range audience {
		select {
		case sub.ch <- env:
		default:
		}
	}
}

// SendTo delivers to a single participant's channel.
func (h *Hub) SendTo(participantID string, env Envelope) {
	h.mu.Lock()
	sub, ok := h.byID[participantID]
	h.mu.Unlock()
	if !ok {
		return
	}
	select {
	case sub.ch <- env:
	default:
	}
}

// CloseSession drops and closes every subscription for the session.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	audience := h.subs[sessionID]
	delete(h.subs, sessionID)
	for _, sub := range audience {
		if sub.participantID != "" {
			delete(h.byID, sub.participantID)
		}
	}
	h.mu.Unlock()

	for _, sub := range audience {
		close(sub.ch)
	}
}

func (h *Hub) remove(target *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	audience := h.subs[target.sessionID]
	for i, sub := range audience {
		if sub == target {
			h.subs[target.sessionID] = append(audience[:i], audience[i+1:]...)
			break
		}
	}
	if target.participantID != "" && h.byID[target.participantID] == target {
		delete(h.byID, target.participantID)
	}
}
