// Package engine orchestrates matches: it owns the run loop that all
// session, turn, combat and bot flows execute on.
//
// Concurrency model: one goroutine drains the op queue; commands from
// transports enqueue closures and wait for the result. Timers never touch
// state directly, they post ops. Every deferred op re-fetches its session,
// participant or combat by id and aborts silently when the lookup fails,
// which makes tearing a session down mid-flight safe.
package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/arena/challenge"
	"github.com/louisbranch/gridfall/internal/arena/dice"
	"github.com/louisbranch/gridfall/internal/arena/economy"
	"github.com/louisbranch/gridfall/internal/arena/event"
	"github.com/louisbranch/gridfall/internal/arena/registry"
	"github.com/louisbranch/gridfall/internal/arena/turns"
	"github.com/louisbranch/gridfall/internal/platform/id"
	"github.com/louisbranch/gridfall/internal/storage"
)

// Inter-step and bot pacing defaults. Observers see incremental motion
// because each movement step is a separate deferred op.
const (
	DefaultStepDelay = 350 * time.Millisecond
	DefaultBotDelay  = 900 * time.Millisecond
)

// MapSource supplies validated map documents by name.
type MapSource interface {
	Load(ctx context.Context, name string) (board.Document, error)
}

// Config wires the engine's collaborators. Zero values get working
// defaults: a discarding journal, no economy, in-process identity.
type Config struct {
	Maps     MapSource
	Journal  *event.Journal
	Economy  economy.Service
	Identity economy.Identity
	Results  storage.MatchResultStore

	Seed  int64
	Clock func() time.Time
	NewID func() (string, error)

	StepDelay time.Duration
	BotDelay  time.Duration

	// Synchronous runs every op inline on the caller's goroutine and
	// collapses deferred delays. Used by tests and the simulator.
	Synchronous bool
}

// Engine coordinates all live sessions.
type Engine struct {
	registry   *registry.Registry
	countdowns *turns.Registry
	challenges map[string]*challenge.Tracker

	journal  *event.Journal
	economy  economy.Service
	identity economy.Identity
	results  storage.MatchResultStore
	maps     MapSource

	clock  func() time.Time
	newID  func() (string, error)
	roller dice.Roller
	rng    *rand.Rand

	stepDelay time.Duration
	botDelay  time.Duration

	ops     chan func()
	sync    bool
	deferFn func(d time.Duration, fn func())
	// pending holds deferred ops in synchronous mode. Draining them in a
	// loop instead of invoking inline keeps long bot matches from
	// recursing one stack frame per action.
	pending []func()

	// startedAt tracks match start times for result duration, keyed by
	// session id.
	startedAt map[string]time.Time
	// walking marks participants with a step chain in flight, keyed by
	// session id + "/" + name.
	walking map[string]bool
}

func (e *Engine) isWalking(sessionID, name string) bool {
	return e.walking[sessionID+"/"+name]
}

func (e *Engine) setWalking(sessionID, name string, moving bool) {
	if moving {
		e.walking[sessionID+"/"+name] = true
		return
	}
	delete(e.walking, sessionID+"/"+name)
}

// New builds an engine. Call Run to start draining ops unless the config
// is synchronous.
func New(cfg Config) *Engine {
	e := &Engine{
		registry:   registry.New(),
		countdowns: turns.NewRegistry(),
		challenges: make(map[string]*challenge.Tracker),
		journal:    cfg.Journal,
		economy:    cfg.Economy,
		identity:   cfg.Identity,
		results:    cfg.Results,
		maps:       cfg.Maps,
		clock:      cfg.Clock,
		newID:      cfg.NewID,
		roller:     dice.NewRoller(cfg.Seed),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		stepDelay:  cfg.StepDelay,
		botDelay:   cfg.BotDelay,
		ops:        make(chan func(), 256),
		sync:       cfg.Synchronous,
		startedAt:  make(map[string]time.Time),
		walking:    make(map[string]bool),
	}
	if e.journal == nil {
		e.journal = event.NewJournal(nil, nil)
	}
	if e.identity == nil {
		e.identity = economy.StaticIdentity{}
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.newID == nil {
		e.newID = id.NewID
	}
	if e.stepDelay <= 0 {
		e.stepDelay = DefaultStepDelay
	}
	if e.botDelay <= 0 {
		e.botDelay = DefaultBotDelay
	}
	if e.sync {
		e.deferFn = func(_ time.Duration, fn func()) {
			e.pending = append(e.pending, fn)
		}
	} else {
		e.deferFn = func(d time.Duration, fn func()) {
			time.AfterFunc(d, func() { e.submit(fn) })
		}
	}
	return e
}

// Run drains ops and drives countdowns until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		case fn := <-e.ops:
			fn()
		}
	}
}

// Tick advances every countdown by one second. Run calls this from its
// own ticker; tests and the simulator call it directly.
func (e *Engine) Tick(ctx context.Context) {
	if e.sync {
		e.tick(ctx)
		e.drainPending()
		return
	}
	e.submit(func() { e.tick(ctx) })
}

// drainPending runs deferred ops queued in synchronous mode, including
// ones they queue in turn.
func (e *Engine) drainPending() {
	for len(e.pending) > 0 {
		fn := e.pending[0]
		e.pending = e.pending[1:]
		fn()
	}
}

// submit enqueues an op for the run loop.
func (e *Engine) submit(fn func()) {
	if e.sync {
		fn()
		e.drainPending()
		return
	}
	e.ops <- fn
}

// call enqueues an op and waits for its result.
func (e *Engine) call(fn func() error) error {
	if e.sync {
		err := fn()
		e.drainPending()
		return err
	}
	errc := make(chan error, 1)
	e.ops <- func() { errc <- fn() }
	return <-errc
}

// callValue is call for ops that also produce a value.
func callValue[T any](e *Engine, fn func() (T, error)) (T, error) {
	if e.sync {
		value, err := fn()
		e.drainPending()
		return value, err
	}
	type result struct {
		value T
		err   error
	}
	resc := make(chan result, 1)
	e.ops <- func() {
		value, err := fn()
		resc <- result{value, err}
	}
	res := <-resc
	return res.value, res.err
}

// tick advances all countdowns, collecting expiries first so acting on
// them may freely mutate the countdown registry.
func (e *Engine) tick(ctx context.Context) {
	type expiry struct {
		sessionID string
		kind      turns.Kind
	}
	var expired []expiry

	e.countdowns.Each(func(sessionID string, kind turns.Kind, c *turns.Countdown) {
		switch c.Tick() {
		case turns.OutcomePaused, turns.OutcomeDelay:
		case turns.OutcomeStarted, turns.OutcomeRunning:
			e.emitCountdown(sessionID, kind, c.Remaining)
		case turns.OutcomeExpired:
			expired = append(expired, expiry{sessionID, kind})
		}
	})

	for _, x := range expired {
		switch x.kind {
		case turns.KindTurn:
			e.expireTurn(ctx, x.sessionID)
		case turns.KindCombat:
			e.expireCombatTurn(ctx, x.sessionID)
		}
	}
}

func (e *Engine) emitCountdown(sessionID string, kind turns.Kind, remaining int) {
	s, ok := e.registry.Session(sessionID)
	if !ok {
		return
	}
	name := ""
	if kind == turns.KindCombat {
		if c, ok := e.registry.Combat(sessionID); ok {
			name = c.Turn
		}
	} else if p, ok := s.Current(); ok {
		name = p.Name
	}
	e.journal.Announce(event.Envelope{
		SessionID: sessionID,
		Type:      event.TypeTurnCountdown,
		Payload:   event.CountdownPayload{Name: name, Remaining: remaining},
	})
}
