// Package challenge tracks optional per-participant side objectives.
// Progress is independent of the match's win condition: completing a
// challenge never ends a session, it only marks the record for the final
// summary.
package challenge

import "math/rand"

// Goal identifies what a challenge measures.
type Goal string

const (
	// GoalTraverse counts tiles walked.
	GoalTraverse Goal = "traverse"
	// GoalCollect counts items picked up.
	GoalCollect Goal = "collect"
	// GoalDoors counts doors opened or closed.
	GoalDoors Goal = "doors"
	// GoalFirstBlood is complete after one combat win.
	GoalFirstBlood Goal = "first_blood"
	// GoalUnscathed counts turns survived without taking damage. Taking
	// damage resets it.
	GoalUnscathed Goal = "unscathed"
)

// Challenge is one side objective with its progress.
type Challenge struct {
	Goal     Goal
	Target   int
	Progress int
	Done     bool
}

var catalog = []Challenge{
	{Goal: GoalTraverse, Target: 20},
	{Goal: GoalCollect, Target: 3},
	{Goal: GoalDoors, Target: 4},
	{Goal: GoalFirstBlood, Target: 1},
	{Goal: GoalUnscathed, Target: 5},
}

// Tracker holds challenge assignments for one session, keyed by
// participant name. Names are stable for the whole match while channel
// IDs are invalidated on disconnect.
type Tracker struct {
	assigned map[string]*Challenge
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{assigned: make(map[string]*Challenge)}
}

// Assign gives the participant a random challenge from the catalog.
// Re-assigning replaces any previous challenge and its progress.
func (t *Tracker) Assign(participant string, rng *rand.Rand) Challenge {
	pick := catalog[0]
	if rng != nil {
		pick = catalog[rng.Intn(len(catalog))]
	}
	c := pick
	t.assigned[participant] = &c
	return c
}

// Get returns the participant's challenge, if any.
func (t *Tracker) Get(participant string) (Challenge, bool) {
	c, ok := t.assigned[participant]
	if !ok {
		return Challenge{}, false
	}
	return *c, ok
}

// Record adds progress toward the named goal. Progress on other goals is
// ignored, and completed challenges stay completed. Returns true when
// this call completed the challenge.
func (t *Tracker) Record(participant string, goal Goal, delta int) bool {
	c, ok := t.assigned[participant]
	if !ok || c.Done || c.Goal != goal || delta <= 0 {
		return false
	}
	c.Progress += delta
	if c.Progress >= c.Target {
		c.Progress = c.Target
		c.Done = true
		return true
	}
	return false
}

// Reset zeroes progress toward the named goal without unassigning it.
// Used for streak goals such as surviving turns unscathed.
func (t *Tracker) Reset(participant string, goal Goal) {
	c, ok := t.assigned[participant]
	if !ok || c.Done || c.Goal != goal {
		return
	}
	c.Progress = 0
}

// Remove drops the participant's assignment.
func (t *Tracker) Remove(participant string) {
	delete(t.assigned, participant)
}

// Completed lists the participants whose challenge is done.
func (t *Tracker) Completed() []string {
	var out []string
	for name, c := range t.assigned {
		if c.Done {
			out = append(out, name)
		}
	}
	return out
}
