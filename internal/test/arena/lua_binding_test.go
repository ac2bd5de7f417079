//go:build scenario

package arena

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a scripted match: an ordered list of commands and
// expectations that the runner replays against a live engine.
type Scenario struct {
	Name  string
	Steps []Step
}

type Step struct {
	Kind string
	Args map[string]any
}

func loadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "session", Function: scenarioSession},
	{Name: "join", Function: scenarioJoin},
	{Name: "bot", Function: scenarioBot},
	{Name: "start", Function: scenarioStart},
	{Name: "move", Function: scenarioMove},
	{Name: "end_turn", Function: scenarioEndTurn},
	{Name: "toggle_door", Function: scenarioToggleDoor},
	{Name: "drop_item", Function: scenarioDropItem},
	{Name: "fight", Function: scenarioFight},
	{Name: "resolve_combat", Function: scenarioResolveCombat},
	{Name: "disconnect", Function: scenarioDisconnect},
	{Name: "tick", Function: scenarioTick},
	{Name: "expect_turn", Function: scenarioExpectTurn},
	{Name: "expect_event", Function: scenarioExpectEvent},
	{Name: "expect_winner", Function: scenarioExpectWinner},
	{Name: "expect_eligible", Function: scenarioExpectEligible},
}

// session(opts) configures the match before anyone joins. Recognized
// options: elimination (bool), entry_fee (number).
func scenarioSession(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "session", optionalTable(state, 2))
	return 0
}

// join(name, opts) adds a human participant. Recognized options:
// quick (bool), attack_high_die (bool).
func scenarioJoin(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	data := map[string]any{"name": name}
	for key, value := range optionalTable(state, 3) {
		data[key] = value
	}
	appendStep(scenario, "join", data)
	return 0
}

// bot(name, profile) adds a virtual participant. Profile is
// "aggressive" or "defensive".
func scenarioBot(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	profile := lua.OptString(state, 3, "aggressive")
	appendStep(scenario, "bot", map[string]any{"name": name, "profile": profile})
	return 0
}

func scenarioStart(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "start", nil)
	return 0
}

// move(name, dx, dy) walks relative to the participant's current tile.
func scenarioMove(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	dx := lua.CheckInteger(state, 3)
	dy := lua.CheckInteger(state, 4)
	appendStep(scenario, "move", map[string]any{"name": name, "dx": dx, "dy": dy})
	return 0
}

func scenarioEndTurn(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	appendStep(scenario, "end_turn", map[string]any{"name": name})
	return 0
}

// toggle_door(name, dx, dy) flips the door on the tile at the given
// offset from the participant.
func scenarioToggleDoor(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	dx := lua.CheckInteger(state, 3)
	dy := lua.CheckInteger(state, 4)
	appendStep(scenario, "toggle_door", map[string]any{"name": name, "dx": dx, "dy": dy})
	return 0
}

func scenarioDropItem(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	category := lua.CheckString(state, 3)
	appendStep(scenario, "drop_item", map[string]any{"name": name, "category": category})
	return 0
}

func scenarioFight(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	target := lua.CheckString(state, 3)
	appendStep(scenario, "fight", map[string]any{"name": name, "target": target})
	return 0
}

// resolve_combat() attacks with whoever holds the combat turn until the
// open combat finishes.
func scenarioResolveCombat(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "resolve_combat", nil)
	return 0
}

func scenarioDisconnect(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	appendStep(scenario, "disconnect", map[string]any{"name": name})
	return 0
}

// tick(count) advances the clock by count one-second ticks.
func scenarioTick(state *lua.State) int {
	scenario := checkScenario(state)
	count := lua.CheckInteger(state, 2)
	appendStep(scenario, "tick", map[string]any{"count": count})
	return 0
}

func scenarioExpectTurn(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	appendStep(scenario, "expect_turn", map[string]any{"name": name})
	return 0
}

func scenarioExpectEvent(state *lua.State) int {
	scenario := checkScenario(state)
	kind := lua.CheckString(state, 2)
	appendStep(scenario, "expect_event", map[string]any{"type": kind})
	return 0
}

func scenarioExpectWinner(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	appendStep(scenario, "expect_winner", map[string]any{"name": name})
	return 0
}

// expect_eligible(count) asserts how many participants can still act.
func scenarioExpectEligible(state *lua.State) int {
	scenario := checkScenario(state)
	count := lua.CheckInteger(state, 2)
	appendStep(scenario, "expect_eligible", map[string]any{"count": count})
	return 0
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	default:
		return nil
	}
}

func normalizeNumber(value float64) any {
	if value == math.Trunc(value) {
		return int(value)
	}
	return value
}
