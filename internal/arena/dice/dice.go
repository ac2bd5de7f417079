// Package dice implements the dice-rolling logic for combat resolution.
package dice

import (
	"errors"
	"math/rand"
)

// ErrInvalidSides indicates a die with non-positive sides.
var ErrInvalidSides = errors.New("dice must have positive sides")

// Roller produces the random draws combat resolution depends on.
// Implementations must be safe for use from a single goroutine only;
// the engine confines all rolling to its run loop.
type Roller interface {
	// Roll returns a uniform value in [1, sides]. Sides must be positive.
	Roll(sides int) int
	// Chance reports success with the given probability in [0, 1].
	Chance(probability float64) bool
}

// SeededRoller is a deterministic Roller backed by math/rand.
//
// Given the same seed and the same call sequence, a SeededRoller always
// produces the same draws, which keeps combat resolution replayable.
type SeededRoller struct {
	rng *rand.Rand
}

// NewRoller creates a deterministic roller from the provided seed.
func NewRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a uniform value in [1, sides]. Non-positive sides roll 0.
func (r *SeededRoller) Roll(sides int) int {
	if sides <= 0 {
		return 0
	}
	return r.rng.Intn(sides) + 1
}

// Chance reports success with the given probability.
func (r *SeededRoller) Chance(probability float64) bool {
	if probability <= 0 {
		return false
	}
	if probability >= 1 {
		return true
	}
	return r.rng.Float64() < probability
}
