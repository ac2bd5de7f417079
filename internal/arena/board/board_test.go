package board

import "testing"

func testDocument() Document {
	return Document{
		Name:   "test-map",
		Width:  10,
		Height: 10,
		Tiles: []Tile{
			{At: Coord{X: 1, Y: 0}, Terrain: TerrainWall},
			{At: Coord{X: 0, Y: 1}, Terrain: TerrainWater},
			{At: Coord{X: 0, Y: 2}, Terrain: TerrainWater},
			{At: Coord{X: 5, Y: 5}, Terrain: TerrainIce},
		},
		Doors:      []Door{{At: Coord{X: 3, Y: 3}, Open: false}},
		StartTiles: []Coord{{X: 0, Y: 0}, {X: 9, Y: 9}},
		Items:      []PlacedItem{{At: Coord{X: 4, Y: 4}, Category: ItemWeapon}},
	}
}

func TestFromDocumentValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Document)
		wantErr error
	}{
		{name: "valid", mutate: func(*Document) {}},
		{
			name:    "zero width",
			mutate:  func(d *Document) { d.Width = 0 },
			wantErr: ErrInvalidSize,
		},
		{
			name:    "no start tiles",
			mutate:  func(d *Document) { d.StartTiles = nil },
			wantErr: ErrNoStartTiles,
		},
		{
			name: "tile out of bounds",
			mutate: func(d *Document) {
				d.Tiles = append(d.Tiles, Tile{At: Coord{X: 10, Y: 0}, Terrain: TerrainWall})
			},
			wantErr: ErrTileOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDocument()
			tt.mutate(&doc)
			_, err := FromDocument(doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("from document: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMoveCost(t *testing.T) {
	b, err := FromDocument(testDocument())
	if err != nil {
		t.Fatalf("from document: %v", err)
	}

	tests := []struct {
		name     string
		at       Coord
		cost     int
		passable bool
	}{
		{name: "floor", at: Coord{X: 2, Y: 2}, cost: 1, passable: true},
		{name: "water", at: Coord{X: 0, Y: 1}, cost: 2, passable: true},
		{name: "ice", at: Coord{X: 5, Y: 5}, cost: 0, passable: true},
		{name: "wall", at: Coord{X: 1, Y: 0}, passable: false},
		{name: "closed door", at: Coord{X: 3, Y: 3}, passable: false},
		{name: "out of bounds", at: Coord{X: -1, Y: 0}, passable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, passable := b.MoveCost(tt.at)
			if passable != tt.passable {
				t.Fatalf("passable = %v, want %v", passable, tt.passable)
			}
			if passable && cost != tt.cost {
				t.Fatalf("cost = %d, want %d", cost, tt.cost)
			}
		})
	}
}

func TestToggleDoor(t *testing.T) {
	b, err := FromDocument(testDocument())
	if err != nil {
		t.Fatalf("from document: %v", err)
	}
	door := Coord{X: 3, Y: 3}

	open, ok := b.ToggleDoor(door)
	if !ok || !open {
		t.Fatalf("expected door to open, got open=%v ok=%v", open, ok)
	}
	if cost, passable := b.MoveCost(door); !passable || cost != 1 {
		t.Fatalf("open door should cost 1, got cost=%d passable=%v", cost, passable)
	}

	open, ok = b.ToggleDoor(door)
	if !ok || open {
		t.Fatalf("expected door to close, got open=%v ok=%v", open, ok)
	}

	if _, ok := b.ToggleDoor(Coord{X: 0, Y: 0}); ok {
		t.Fatal("expected toggle on non-door to fail")
	}
}

func TestBreakWall(t *testing.T) {
	b, err := FromDocument(testDocument())
	if err != nil {
		t.Fatalf("from document: %v", err)
	}
	wall := Coord{X: 1, Y: 0}

	if !b.BreakWall(wall) {
		t.Fatal("expected wall to break")
	}
	if b.TerrainAt(wall) != TerrainFloor {
		t.Fatalf("expected floor after break, got %s", b.TerrainAt(wall))
	}
	if b.BreakWall(Coord{X: 2, Y: 2}) {
		t.Fatal("expected break on floor to fail")
	}
}

func TestItemLifecycle(t *testing.T) {
	b, err := FromDocument(testDocument())
	if err != nil {
		t.Fatalf("from document: %v", err)
	}
	at := Coord{X: 4, Y: 4}

	item, ok := b.RemoveItem(at)
	if !ok || item != ItemWeapon {
		t.Fatalf("expected weapon pickup, got %q ok=%v", item, ok)
	}
	if _, ok := b.ItemAt(at); ok {
		t.Fatal("item should be gone from the grid")
	}
	if !b.PlaceItem(at, ItemArmor) {
		t.Fatal("expected item placement to succeed")
	}
	if b.PlaceItem(at, ItemFlask) {
		t.Fatal("expected placement on occupied tile to fail")
	}
	if b.PlaceItem(Coord{X: 1, Y: 0}, ItemFlask) {
		t.Fatal("expected placement on wall to fail")
	}
}

func TestNearestFreeTile(t *testing.T) {
	b, err := FromDocument(testDocument())
	if err != nil {
		t.Fatalf("from document: %v", err)
	}

	// Origin occupied by a participant: search expands to a neighbor.
	occupied := Coord{X: 2, Y: 2}
	got, ok := b.NearestFreeTile(occupied, func(c Coord) bool { return c != occupied })
	if !ok {
		t.Fatal("expected a free tile")
	}
	if !occupied.Adjacent(got) {
		t.Fatalf("expected adjacent tile, got %s", got)
	}

	// Free origin returns itself.
	got, ok = b.NearestFreeTile(Coord{X: 7, Y: 7}, nil)
	if !ok || got != (Coord{X: 7, Y: 7}) {
		t.Fatalf("expected origin, got %s ok=%v", got, ok)
	}
}
