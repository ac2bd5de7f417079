package turns

import "testing"

func TestCountdownDelayThenRun(t *testing.T) {
	c := New(3, 2)

	if got := c.Tick(); got != OutcomeDelay {
		t.Fatalf("first tick = %v, want delay", got)
	}
	if got := c.Tick(); got != OutcomeStarted {
		t.Fatalf("second tick = %v, want started", got)
	}
	if got := c.Tick(); got != OutcomeRunning {
		t.Fatalf("third tick = %v, want running", got)
	}
	if c.Remaining != 2 {
		t.Fatalf("remaining = %d, want 2", c.Remaining)
	}
	c.Tick()
	if got := c.Tick(); got != OutcomeExpired {
		t.Fatalf("final tick = %v, want expired", got)
	}
}

func TestCountdownNoDelay(t *testing.T) {
	c := New(2, 0)

	if got := c.Tick(); got != OutcomeRunning {
		t.Fatalf("first tick = %v, want running", got)
	}
	if got := c.Tick(); got != OutcomeExpired {
		t.Fatalf("second tick = %v, want expired", got)
	}
	// A countdown already at zero keeps reporting expired until deleted.
	if got := c.Tick(); got != OutcomeExpired {
		t.Fatalf("post-expiry tick = %v, want expired", got)
	}
}

func TestCountdownPause(t *testing.T) {
	c := New(5, 0)
	c.Tick()
	c.Paused = true

	if got := c.Tick(); got != OutcomePaused {
		t.Fatalf("paused tick = %v", got)
	}
	if c.Remaining != 4 {
		t.Fatalf("paused tick consumed time: %d", c.Remaining)
	}

	c.Reset()
	if c.Paused || c.Remaining != 5 {
		t.Fatalf("reset state: paused=%v remaining=%d", c.Paused, c.Remaining)
	}
}

func TestRegistrySlots(t *testing.T) {
	r := NewRegistry()

	turn := r.Create("s-1", KindTurn, TurnSeconds, PreTurnDelayTicks)
	combat := r.Create("s-1", KindCombat, CombatTurnSeconds, 0)

	if got, ok := r.Get("s-1", KindTurn); !ok || got != turn {
		t.Fatal("turn slot lookup failed")
	}
	if got, ok := r.Get("s-1", KindCombat); !ok || got != combat {
		t.Fatal("combat slot lookup failed")
	}

	// Create replaces in place.
	replacement := r.Create("s-1", KindTurn, TurnSeconds, 0)
	if got, _ := r.Get("s-1", KindTurn); got != replacement {
		t.Fatal("create should replace the slot")
	}

	r.Delete("s-1", KindCombat)
	if _, ok := r.Get("s-1", KindCombat); ok {
		t.Fatal("deleted slot still resolves")
	}
}

func TestRegistryPauseResume(t *testing.T) {
	r := NewRegistry()
	c := r.Create("s-1", KindTurn, 10, 0)
	c.Tick()
	c.Tick()

	if !r.Pause("s-1", KindTurn) {
		t.Fatal("pause failed")
	}
	if !c.Paused {
		t.Fatal("countdown not paused")
	}

	if !r.Resume("s-1", KindTurn) {
		t.Fatal("resume failed")
	}
	if c.Paused || c.Remaining != 10 {
		t.Fatalf("resume should reset: paused=%v remaining=%d", c.Paused, c.Remaining)
	}

	if r.Pause("s-x", KindTurn) || r.Resume("s-x", KindTurn) {
		t.Fatal("missing slots must report false")
	}
}

func TestRegistryDeleteSession(t *testing.T) {
	r := NewRegistry()
	r.Create("s-1", KindTurn, 10, 0)
	r.Create("s-1", KindCombat, 5, 0)
	r.Create("s-2", KindTurn, 10, 0)

	r.DeleteSession("s-1")

	if _, ok := r.Get("s-1", KindTurn); ok {
		t.Fatal("s-1 turn countdown survived")
	}
	if _, ok := r.Get("s-1", KindCombat); ok {
		t.Fatal("s-1 combat countdown survived")
	}
	if _, ok := r.Get("s-2", KindTurn); !ok {
		t.Fatal("s-2 countdown should survive")
	}
}
