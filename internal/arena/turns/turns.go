// Package turns implements the countdowns that bound player thinking time
// and the registry that holds at most one countdown per session and kind.
//
// Countdowns hold no timers of their own: the engine loop feeds them
// 1-second ticks and acts on the reported outcome, so all timing decisions
// stay on the single goroutine that owns session state.
package turns

// Default countdown configuration, in ticks (seconds).
const (
	// TurnSeconds bounds one outer movement turn.
	TurnSeconds = 30
	// CombatTurnSeconds bounds one combat decision.
	CombatTurnSeconds = 5
	// PreTurnDelayTicks is the pause between a turn being scheduled and
	// its countdown starting, giving clients time to render the handoff.
	PreTurnDelayTicks = 3
)

// Kind separates the two independent countdown families.
type Kind string

const (
	KindTurn   Kind = "turn"
	KindCombat Kind = "combat"
)

// Outcome reports what a tick did.
type Outcome int

const (
	// OutcomePaused means the countdown is suspended and the tick was ignored.
	OutcomePaused Outcome = iota
	// OutcomeDelay means the pre-start delay consumed the tick.
	OutcomeDelay
	// OutcomeStarted means the delay just elapsed and the countdown began.
	OutcomeStarted
	// OutcomeRunning means one second elapsed with time remaining.
	OutcomeRunning
	// OutcomeExpired means the countdown just hit zero.
	OutcomeExpired
)

// Countdown is the per-turn or per-combat clock.
type Countdown struct {
	Duration  int
	Remaining int
	Delay     int
	Paused    bool
}

// New returns a countdown that waits delay ticks, then runs for duration.
func New(duration, delay int) *Countdown {
	return &Countdown{
		Duration:  duration,
		Remaining: duration,
		Delay:     delay,
	}
}

// Tick advances the clock by one second and reports the transition.
func (c *Countdown) Tick() Outcome {
	if c.Paused {
		return OutcomePaused
	}
	if c.Delay > 0 {
		c.Delay--
		if c.Delay == 0 {
			return OutcomeStarted
		}
		return OutcomeDelay
	}
	if c.Remaining <= 0 {
		return OutcomeExpired
	}
	c.Remaining--
	if c.Remaining == 0 {
		return OutcomeExpired
	}
	return OutcomeRunning
}

// Reset restores the full duration, clearing any pause. Used when a
// combat ends and the outer turn resumes fresh.
func (c *Countdown) Reset() {
	c.Remaining = c.Duration
	c.Paused = false
}

type key struct {
	sessionID string
	kind      Kind
}

// Registry holds at most one countdown per (session, kind). It is owned
// by the engine loop and needs no locking.
type Registry struct {
	countdowns map[key]*Countdown
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{countdowns: make(map[key]*Countdown)}
}

// Create replaces any existing countdown for the slot and returns the new
// one.
func (r *Registry) Create(sessionID string, kind Kind, duration, delay int) *Countdown {
	c := New(duration, delay)
	r.countdowns[key{sessionID, kind}] = c
	return c
}

// Get returns the countdown for the slot, if present.
func (r *Registry) Get(sessionID string, kind Kind) (*Countdown, bool) {
	c, ok := r.countdowns[key{sessionID, kind}]
	return c, ok
}

// Delete removes the countdown for the slot.
func (r *Registry) Delete(sessionID string, kind Kind) {
	delete(r.countdowns, key{sessionID, kind})
}

// DeleteSession removes every countdown belonging to the session.
func (r *Registry) DeleteSession(sessionID string) {
	for k := range r.countdowns {
		if k.sessionID == sessionID {
			delete(r.countdowns, k)
		}
	}
}

// Pause suspends the slot's countdown. Returns false when absent.
func (r *Registry) Pause(sessionID string, kind Kind) bool {
	c, ok := r.countdowns[key{sessionID, kind}]
	if !ok {
		return false
	}
	c.Paused = true
	return true
}

// Resume restarts the slot's countdown at full duration. Returns false
// when absent.
func (r *Registry) Resume(sessionID string, kind Kind) bool {
	c, ok := r.countdowns[key{sessionID, kind}]
	if !ok {
		return false
	}
	c.Reset()
	return true
}

// Each calls fn for every countdown. The callback must not create or
// delete entries; callers collect outcomes and act after iteration.
func (r *Registry) Each(fn func(sessionID string, kind Kind, c *Countdown)) {
	for k, c := range r.countdowns {
		fn(k.sessionID, k.kind, c)
	}
}
