package board

import "fmt"

// Board is the mutable grid state owned by one match session.
type Board struct {
	width  int
	height int

	terrain    map[Coord]Terrain
	doors      map[Coord]bool // coordinate -> open
	items      map[Coord]ItemCategory
	startTiles []Coord
}

// FromDocument builds a session board from a validated map document.
// Unlisted tiles default to floor terrain.
func FromDocument(doc Document) (*Board, error) {
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, ErrInvalidSize
	}
	if len(doc.StartTiles) == 0 {
		return nil, ErrNoStartTiles
	}

	b := &Board{
		width:   doc.Width,
		height:  doc.Height,
		terrain: make(map[Coord]Terrain, len(doc.Tiles)),
		doors:   make(map[Coord]bool, len(doc.Doors)),
		items:   make(map[Coord]ItemCategory, len(doc.Items)),
	}

	for _, tile := range doc.Tiles {
		if !b.InBounds(tile.At) {
			return nil, fmt.Errorf("%w: %s", ErrTileOutOfBounds, tile.At)
		}
		if tile.Terrain != TerrainFloor {
			b.terrain[tile.At] = tile.Terrain
		}
	}
	for _, door := range doc.Doors {
		if !b.InBounds(door.At) {
			return nil, fmt.Errorf("%w: door %s", ErrTileOutOfBounds, door.At)
		}
		b.doors[door.At] = door.Open
	}
	for _, start := range doc.StartTiles {
		if !b.InBounds(start) {
			return nil, fmt.Errorf("%w: start tile %s", ErrTileOutOfBounds, start)
		}
		b.startTiles = append(b.startTiles, start)
	}
	for _, item := range doc.Items {
		if !b.InBounds(item.At) {
			return nil, fmt.Errorf("%w: item %s", ErrTileOutOfBounds, item.At)
		}
		b.items[item.At] = item.Category
	}

	return b, nil
}

// Width returns the grid width.
func (b *Board) Width() int { return b.width }

// Height returns the grid height.
func (b *Board) Height() int { return b.height }

// InBounds reports whether the coordinate lies on the grid.
func (b *Board) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < b.width && c.Y >= 0 && c.Y < b.height
}

// TerrainAt returns the terrain category at the coordinate.
// Out-of-bounds coordinates report walls so they are never walkable.
func (b *Board) TerrainAt(c Coord) Terrain {
	if !b.InBounds(c) {
		return TerrainWall
	}
	if t, ok := b.terrain[c]; ok {
		return t
	}
	return TerrainFloor
}

// IsDoor reports whether the coordinate holds a door.
func (b *Board) IsDoor(c Coord) bool {
	_, ok := b.doors[c]
	return ok
}

// DoorOpen reports whether the door at the coordinate is open.
// Returns false for coordinates without a door.
func (b *Board) DoorOpen(c Coord) bool {
	return b.doors[c]
}

// ToggleDoor flips the door at the coordinate and returns its new state.
// The second return is false when the coordinate holds no door.
func (b *Board) ToggleDoor(c Coord) (open bool, ok bool) {
	current, exists := b.doors[c]
	if !exists {
		return false, false
	}
	b.doors[c] = !current
	return !current, true
}

// DoorCoords returns the coordinates of every door on the board.
func (b *Board) DoorCoords() []Coord {
	coords := make([]Coord, 0, len(b.doors))
	for c := range b.doors {
		coords = append(coords, c)
	}
	return coords
}

// BreakWall converts a wall tile to floor. Returns false when the
// coordinate is not a wall.
func (b *Board) BreakWall(c Coord) bool {
	if b.TerrainAt(c) != TerrainWall || !b.InBounds(c) {
		return false
	}
	delete(b.terrain, c)
	return true
}

// MoveCost returns the cost to enter the coordinate and whether it is
// passable. Doors override terrain: closed doors are impassable, open
// doors cost 1.
func (b *Board) MoveCost(c Coord) (int, bool) {
	if !b.InBounds(c) {
		return 0, false
	}
	if b.IsDoor(c) {
		if !b.DoorOpen(c) {
			return 0, false
		}
		return 1, true
	}
	return b.TerrainAt(c).MoveCost()
}

// ItemAt returns the item lying at the coordinate, if any.
func (b *Board) ItemAt(c Coord) (ItemCategory, bool) {
	item, ok := b.items[c]
	return item, ok
}

// RemoveItem takes the item off the grid. The move from grid to inventory
// is atomic from the engine's perspective: callers remove and add within
// one cooperative step.
func (b *Board) RemoveItem(c Coord) (ItemCategory, bool) {
	item, ok := b.items[c]
	if !ok {
		return "", false
	}
	delete(b.items, c)
	return item, true
}

// PlaceItem puts an item onto the grid. Returns false if the tile is
// occupied by another item or impassable.
func (b *Board) PlaceItem(c Coord, category ItemCategory) bool {
	if _, occupied := b.items[c]; occupied {
		return false
	}
	if _, passable := b.MoveCost(c); !passable {
		return false
	}
	b.items[c] = category
	return true
}

// Items returns a copy of all items lying on the grid.
func (b *Board) Items() map[Coord]ItemCategory {
	out := make(map[Coord]ItemCategory, len(b.items))
	for c, item := range b.items {
		out[c] = item
	}
	return out
}

// StartTiles returns the spawn positions declared by the map document.
func (b *Board) StartTiles() []Coord {
	out := make([]Coord, len(b.startTiles))
	copy(out, b.startTiles)
	return out
}

// NearestFreeTile searches outward from origin for a passable tile that
// holds no item and satisfies the free predicate (typically "not occupied
// by a participant"). The origin itself is considered first.
func (b *Board) NearestFreeTile(origin Coord, free func(Coord) bool) (Coord, bool) {
	visited := map[Coord]bool{origin: true}
	queue := []Coord{origin}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		if _, passable := b.MoveCost(c); passable {
			if _, occupied := b.items[c]; !occupied && (free == nil || free(c)) {
				return c, true
			}
		}

		for _, n := range c.Neighbors() {
			if !b.InBounds(n) || visited[n] {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return Coord{}, false
}
