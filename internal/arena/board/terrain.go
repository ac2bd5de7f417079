package board

// Terrain describes a tile's terrain category.
type Terrain int

const (
	// TerrainFloor is the default walkable tile, cost 1.
	TerrainFloor Terrain = iota
	// TerrainWater slows movement, cost 2.
	TerrainWater
	// TerrainIce is frictionless, cost 0, and debuffs combat stats.
	TerrainIce
	// TerrainWall is impassable until broken.
	TerrainWall
)

func (t Terrain) String() string {
	switch t {
	case TerrainFloor:
		return "floor"
	case TerrainWater:
		return "water"
	case TerrainIce:
		return "ice"
	case TerrainWall:
		return "wall"
	default:
		return "unknown"
	}
}

// MoveCost returns the movement cost for entering a tile of this terrain
// and whether the terrain is passable at all.
func (t Terrain) MoveCost() (int, bool) {
	switch t {
	case TerrainFloor:
		return 1, true
	case TerrainWater:
		return 2, true
	case TerrainIce:
		return 0, true
	case TerrainWall:
		return 0, false
	default:
		return 1, true
	}
}

// ItemCategory tags an item either lying on the grid or held in an inventory.
type ItemCategory string

const (
	ItemWeapon ItemCategory = "weapon"
	ItemArmor  ItemCategory = "armor"
	ItemFlask  ItemCategory = "flask"
	ItemAmulet ItemCategory = "amulet"
	ItemFlag   ItemCategory = "flag"
	// ItemRandom resolves to a concrete category when picked up.
	ItemRandom ItemCategory = "random"
)
