// Package board models the tile grid a match session is played on.
//
// A Board is built from a Document supplied by the external map repository.
// Documents arrive already validated; the board only guards against
// out-of-bounds access. The Board is mutable: doors toggle, walls break and
// items move between the grid and participant inventories as the match
// progresses.
package board

import "fmt"

// Coord is a tile position on the grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the coordinate as "x,y".
func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Neighbors returns the four orthogonally adjacent coordinates.
// Callers must bounds-check the results themselves.
func (c Coord) Neighbors() [4]Coord {
	return [4]Coord{
		{X: c.X, Y: c.Y - 1},
		{X: c.X, Y: c.Y + 1},
		{X: c.X - 1, Y: c.Y},
		{X: c.X + 1, Y: c.Y},
	}
}

// Adjacent reports whether other is orthogonally adjacent to c.
func (c Coord) Adjacent(other Coord) bool {
	dx := c.X - other.X
	dy := c.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx+dy == 1
}
