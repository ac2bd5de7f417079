// Package items moves items between the grid and participant inventories
// and applies their stat effects.
package items

import (
	"math/rand"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

// Stat effects applied while an item is held. The flask has no passive
// effect; it triggers automatically in combat when its holder falls to
// exactly 1 life.
const (
	WeaponAttackBonus  = 2
	ArmorDefenseBonus  = 2
	ArmorSpeedPenalty  = 1
	AmuletDefenseBonus = 1

	// FlaskLifeRestore is the life returned by a triggered flask.
	FlaskLifeRestore = 2
)

// Pickup moves the item under the participant's position into their
// inventory and applies its effect. Random items resolve to a concrete
// category first. Returns the resolved category and false when there is
// nothing to pick up.
func Pickup(s *session.Session, p *session.Participant, rng *rand.Rand) (board.ItemCategory, bool) {
	if s == nil || p == nil || p.Position == nil {
		return "", false
	}
	category, ok := s.Board.RemoveItem(*p.Position)
	if !ok {
		return "", false
	}
	if category == board.ItemRandom {
		category = ResolveRandom(rng)
	}
	p.Inventory = append(p.Inventory, category)
	applyEffect(p, category)
	return category, true
}

// Drop removes the item from the inventory and places it at the
// participant's position, or the nearest free tile when that tile already
// holds an item. Stat effects are removed with the item.
func Drop(s *session.Session, p *session.Participant, category board.ItemCategory) (board.Coord, error) {
	if p == nil || p.Position == nil {
		return board.Coord{}, errors.New(errors.CodePositionUnknown, "participant has no position")
	}
	if !p.RemoveFromInventory(category) {
		return board.Coord{}, errors.New(errors.CodeItemNotHeld, "item is not in inventory")
	}
	removeEffect(p, category)

	at, ok := placeNear(s, *p.Position, category)
	if !ok {
		// No free tile anywhere: the item is forfeited rather than blocking.
		return board.Coord{}, errors.New(errors.CodeNoFreeTileForDrop, "no free tile to drop item")
	}
	return at, nil
}

// DropAll scatters the participant's whole inventory around their
// position. Used when a combat loss empties the loser's hands.
func DropAll(s *session.Session, p *session.Participant) []board.Coord {
	if p == nil {
		return nil
	}
	var dropped []board.Coord
	for len(p.Inventory) > 0 {
		category := p.Inventory[0]
		p.RemoveFromInventory(category)
		removeEffect(p, category)
		if p.Position == nil {
			continue
		}
		if at, ok := placeNear(s, *p.Position, category); ok {
			dropped = append(dropped, at)
		}
	}
	return dropped
}

// Overflow drops items beyond the inventory capacity at the participant's
// position, returning what was shed. Called at the start of another
// participant's turn so holders are notified before they act again.
func Overflow(s *session.Session, p *session.Participant) []board.ItemCategory {
	if p == nil || len(p.Inventory) <= session.InventoryCapacity {
		return nil
	}
	var shed []board.ItemCategory
	for len(p.Inventory) > session.InventoryCapacity {
		category := p.Inventory[len(p.Inventory)-1]
		p.RemoveFromInventory(category)
		removeEffect(p, category)
		shed = append(shed, category)
		if p.Position != nil {
			placeNear(s, *p.Position, category)
		}
	}
	return shed
}

// ConsumeFlask removes one flask and restores its life. Returns false when
// no flask is held.
func ConsumeFlask(p *session.Participant) bool {
	if p == nil || !p.RemoveFromInventory(board.ItemFlask) {
		return false
	}
	p.Life += FlaskLifeRestore
	if p.Life > p.MaxLife {
		p.Life = p.MaxLife
	}
	return true
}

// Defensive reports whether the category is one a defensive virtual
// participant prioritizes.
func Defensive(category board.ItemCategory) bool {
	switch category {
	case board.ItemArmor, board.ItemAmulet, board.ItemFlask:
		return true
	default:
		return false
	}
}

// ResolveRandom picks the concrete category a random item becomes.
func ResolveRandom(rng *rand.Rand) board.ItemCategory {
	concrete := []board.ItemCategory{
		board.ItemWeapon,
		board.ItemArmor,
		board.ItemFlask,
		board.ItemAmulet,
	}
	if rng == nil {
		return concrete[0]
	}
	return concrete[rng.Intn(len(concrete))]
}

func applyEffect(p *session.Participant, category board.ItemCategory) {
	switch category {
	case board.ItemWeapon:
		p.Attack += WeaponAttackBonus
	case board.ItemArmor:
		p.Defense += ArmorDefenseBonus
		p.Speed -= ArmorSpeedPenalty
	case board.ItemAmulet:
		p.Defense += AmuletDefenseBonus
	}
}

func removeEffect(p *session.Participant, category board.ItemCategory) {
	switch category {
	case board.ItemWeapon:
		p.Attack -= WeaponAttackBonus
	case board.ItemArmor:
		p.Defense -= ArmorDefenseBonus
		p.Speed += ArmorSpeedPenalty
	case board.ItemAmulet:
		p.Defense -= AmuletDefenseBonus
	}
}

func placeNear(s *session.Session, origin board.Coord, category board.ItemCategory) (board.Coord, bool) {
	if s == nil || s.Board == nil {
		return board.Coord{}, false
	}
	at, ok := s.Board.NearestFreeTile(origin, func(c board.Coord) bool {
		// The dropper's own tile is fine; anyone else's is not.
		_, occupied := s.OccupiedBy(c)
		return !occupied || c == origin
	})
	if !ok {
		return board.Coord{}, false
	}
	if !s.Board.PlaceItem(at, category) {
		return board.Coord{}, false
	}
	return at, true
}
