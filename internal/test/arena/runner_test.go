//go:build scenario

package arena

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/arena/engine"
	"github.com/louisbranch/gridfall/internal/arena/event"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

const scenarioLuaGlob = "scenarios/*.lua"

// maxCombatRounds bounds resolve_combat so a broken combat loop fails
// the scenario instead of hanging it.
const maxCombatRounds = 64

type scenarioEnv struct {
	eng   *engine.Engine
	store *memStore
}

type scenarioState struct {
	sessionID string
}

// memStore is an in-memory journal for scripted matches.
type memStore struct {
	mu      sync.Mutex
	entries []event.Entry
}

func (m *memStore) AppendEntry(_ context.Context, entry event.Entry) (event.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.Seq = uint64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *memStore) has(kind event.Type) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.entries {
		if entry.Type == kind {
			return true
		}
	}
	return false
}

func (m *memStore) winner() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Type != event.TypeSessionEnded {
			continue
		}
		var payload struct {
			Winner string `json:"winner"`
		}
		if err := json.Unmarshal(m.entries[i].PayloadJSON, &payload); err != nil {
			return "", false
		}
		return payload.Winner, true
	}
	return "", false
}

// docCatalog serves the harness's built-in boards by name.
type docCatalog map[string]board.Document

func (c docCatalog) Load(_ context.Context, name string) (board.Document, error) {
	doc, ok := c[name]
	if !ok {
		return board.Document{}, errors.New(errors.CodeNotFound, "map not found")
	}
	return doc, nil
}

// scenarioCatalog holds the boards scripts can request via
// session{map = ...}. The duel board spawns both fighters on adjacent
// tiles so combat scripts need no approach phase.
func scenarioCatalog() docCatalog {
	return docCatalog{
		"skirmish": {
			Name:   "skirmish",
			Width:  5,
			Height: 5,
			StartTiles: []board.Coord{
				{X: 0, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}, {X: 4, Y: 0},
			},
		},
		"duel": {
			Name:       "duel",
			Width:      4,
			Height:     2,
			StartTiles: []board.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}},
		},
	}
}

func TestScenarioScripts(t *testing.T) {
	paths, err := filepath.Glob(scenarioLuaGlob)
	if err != nil {
		t.Fatalf("glob scenarios: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no scenarios found for %s", scenarioLuaGlob)
	}
	sort.Strings(paths)

	for _, path := range paths {
		path := path
		scenario, err := loadScenarioFromFile(path)
		if err != nil {
			t.Fatalf("load scenario %s: %v", path, err)
		}
		t.Run(scenario.Name, func(t *testing.T) {
			runScenario(t, scenario)
		})
	}
}

func runScenario(t *testing.T, scenario *Scenario) {
	t.Helper()

	store := &memStore{}
	env := scenarioEnv{
		eng: engine.New(engine.Config{
			Maps:        scenarioCatalog(),
			Journal:     event.NewJournal(store, nil),
			Seed:        1789,
			Synchronous: true,
		}),
		store: store,
	}

	state := &scenarioState{}
	for index, step := range scenario.Steps {
		step := step
		t.Run(fmt.Sprintf("%02d_%s", index+1, step.Kind), func(t *testing.T) {
			runStep(t, env, state, step)
		})
	}
}

func runStep(t *testing.T, env scenarioEnv, state *scenarioState, step Step) {
	t.Helper()
	ctx := context.Background()

	switch step.Kind {
	case "session":
		id, err := env.eng.CreateSession(ctx, engine.CreateSessionInput{
			MapName:     stringArg(step, "map", "skirmish"),
			Elimination: boolArg(step, "elimination"),
			EntryFee:    int64(intArg(t, step, "entry_fee", 0)),
		})
		if err != nil {
			t.Fatalf("create session: %v", err)
		}
		state.sessionID = id
	case "join":
		name := stringArg(step, "name", "")
		if _, err := env.eng.Join(ctx, engine.JoinInput{
			SessionID:     state.sessionID,
			ChannelID:     channelFor(name),
			Name:          name,
			Quick:         boolArg(step, "quick"),
			AttackHighDie: boolArg(step, "attack_high_die"),
		}); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	case "bot":
		name := stringArg(step, "name", "")
		if _, err := env.eng.AddVirtual(ctx, engine.AddVirtualInput{
			SessionID: state.sessionID,
			Name:      name,
			Profile:   profileFor(t, stringArg(step, "profile", "aggressive")),
		}); err != nil {
			t.Fatalf("add bot %s: %v", name, err)
		}
	case "start":
		if err := env.eng.StartSession(ctx, state.sessionID); err != nil {
			t.Fatalf("start session: %v", err)
		}
	case "move":
		name := stringArg(step, "name", "")
		at := offsetFrom(t, env, state, name, intArg(t, step, "dx", 0), intArg(t, step, "dy", 0))
		if err := env.eng.Move(ctx, state.sessionID, channelFor(name), at); err != nil {
			t.Fatalf("move %s: %v", name, err)
		}
	case "end_turn":
		name := stringArg(step, "name", "")
		if err := env.eng.EndTurn(ctx, state.sessionID, channelFor(name)); err != nil {
			t.Fatalf("end turn %s: %v", name, err)
		}
	case "toggle_door":
		name := stringArg(step, "name", "")
		at := offsetFrom(t, env, state, name, intArg(t, step, "dx", 0), intArg(t, step, "dy", 0))
		if err := env.eng.ToggleDoor(ctx, state.sessionID, channelFor(name), at); err != nil {
			t.Fatalf("toggle door for %s: %v", name, err)
		}
	case "drop_item":
		name := stringArg(step, "name", "")
		category := board.ItemCategory(stringArg(step, "category", ""))
		if err := env.eng.DropItem(ctx, state.sessionID, channelFor(name), category); err != nil {
			t.Fatalf("drop item for %s: %v", name, err)
		}
	case "fight":
		name := stringArg(step, "name", "")
		target := stringArg(step, "target", "")
		if err := env.eng.StartCombat(ctx, state.sessionID, channelFor(name), target); err != nil {
			t.Fatalf("fight %s vs %s: %v", name, target, err)
		}
	case "resolve_combat":
		resolveCombat(t, env, state)
	case "disconnect":
		env.eng.Disconnect(ctx, channelFor(stringArg(step, "name", "")))
	case "tick":
		for i := 0; i < intArg(t, step, "count", 1); i++ {
			env.eng.Tick(ctx)
		}
	case "expect_turn":
		name := stringArg(step, "name", "")
		view := sessionView(t, env, state)
		if view.Current != name {
			t.Fatalf("expected %s's turn, got %q", name, view.Current)
		}
	case "expect_event":
		kind := event.Type(stringArg(step, "type", ""))
		if !env.store.has(kind) {
			t.Fatalf("expected %q in the journal", kind)
		}
	case "expect_winner":
		name := stringArg(step, "name", "")
		winner, ended := env.store.winner()
		if !ended {
			t.Fatal("match has not ended")
		}
		if winner != name {
			t.Fatalf("expected winner %s, got %q", name, winner)
		}
	case "expect_eligible":
		want := intArg(t, step, "count", 0)
		view := sessionView(t, env, state)
		got := 0
		for _, p := range view.Participants {
			if p.Active && !p.Eliminated && !p.Observer {
				got++
			}
		}
		if got != want {
			t.Fatalf("expected %d eligible participants, got %d", want, got)
		}
	default:
		t.Fatalf("unknown step kind %q", step.Kind)
	}
}

// resolveCombat plays the open combat out by attacking with whoever
// holds the combat turn.
func resolveCombat(t *testing.T, env scenarioEnv, state *scenarioState) {
	t.Helper()
	ctx := context.Background()

	for round := 0; round < maxCombatRounds; round++ {
		view := sessionView(t, env, state)
		if view.Combat == nil {
			return
		}
		if err := env.eng.Attack(ctx, state.sessionID, channelFor(view.Combat.Turn)); err != nil {
			t.Fatalf("attack by %s: %v", view.Combat.Turn, err)
		}
	}
	t.Fatalf("combat did not resolve within %d rounds", maxCombatRounds)
}

func sessionView(t *testing.T, env scenarioEnv, state *scenarioState) engine.SessionView {
	t.Helper()
	view, err := env.eng.SessionView(state.sessionID)
	if err != nil {
		t.Fatalf("session view: %v", err)
	}
	return view
}

func offsetFrom(t *testing.T, env scenarioEnv, state *scenarioState, name string, dx, dy int) board.Coord {
	t.Helper()
	view := sessionView(t, env, state)
	for _, p := range view.Participants {
		if p.Name == name {
			if !p.Placed {
				t.Fatalf("%s has no position", name)
			}
			return board.Coord{X: p.X + dx, Y: p.Y + dy}
		}
	}
	t.Fatalf("participant %s not found", name)
	return board.Coord{}
}

func channelFor(name string) string {
	return "ch-" + name
}

func profileFor(t *testing.T, name string) session.Profile {
	t.Helper()
	switch name {
	case "aggressive":
		return session.ProfileAggressive
	case "defensive":
		return session.ProfileDefensive
	default:
		t.Fatalf("unknown bot profile %q", name)
		return session.ProfileAggressive
	}
}

func stringArg(step Step, key, fallback string) string {
	if value, ok := step.Args[key].(string); ok {
		return value
	}
	return fallback
}

func intArg(t *testing.T, step Step, key string, fallback int) int {
	t.Helper()
	value, ok := step.Args[key]
	if !ok {
		return fallback
	}
	number, ok := value.(int)
	if !ok {
		t.Fatalf("argument %q must be a whole number, got %T", key, value)
	}
	return number
}

func boolArg(step Step, key string) bool {
	value, _ := step.Args[key].(bool)
	return value
}
