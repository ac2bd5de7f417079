package board

import "errors"

var (
	// ErrInvalidSize indicates a document with non-positive dimensions.
	ErrInvalidSize = errors.New("map dimensions must be positive")
	// ErrTileOutOfBounds indicates a tile outside the document dimensions.
	ErrTileOutOfBounds = errors.New("tile is out of bounds")
	// ErrNoStartTiles indicates a document without spawn positions.
	ErrNoStartTiles = errors.New("map has no start tiles")
)

// Tile pairs a coordinate with its terrain category.
type Tile struct {
	At      Coord   `json:"at"`
	Terrain Terrain `json:"terrain"`
}

// Door is a toggleable passage tile.
type Door struct {
	At   Coord `json:"at"`
	Open bool  `json:"open"`
}

// PlacedItem is an item lying on the grid.
type PlacedItem struct {
	At       Coord        `json:"at"`
	Category ItemCategory `json:"category"`
}

// Document is a validated map description from the external map repository.
// Design-validity rules (isolation, door adjacency, tile ratios) are the
// repository's concern; the engine trusts them.
type Document struct {
	Name       string       `json:"name"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Tiles      []Tile       `json:"tiles"`
	Doors      []Door       `json:"doors"`
	StartTiles []Coord      `json:"startTiles"`
	Items      []PlacedItem `json:"items"`
}
