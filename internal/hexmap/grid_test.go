package hexmap

import (
	"errors"
	"strings"
	"testing"
)

func TestGridPlaceAndMove(t *testing.T) {
	g := NewGrid(8, 8)

	g2, err := g.PlaceUnit("atlas", Coord{Q: 2, R: 2})
	if err != nil {
		t.Fatalf("PlaceUnit: %v", err)
	}

	// Original snapshot untouched.
	if _, ok := g.OccupantAt(Coord{Q: 2, R: 2}); ok {
		t.Fatal("original grid mutated by PlaceUnit")
	}
	if id, _ := g2.OccupantAt(Coord{Q: 2, R: 2}); id != "atlas" {
		t.Fatalf("occupant = %q, want atlas", id)
	}

	if _, err := g2.PlaceUnit("shadowhawk", Coord{Q: 2, R: 2}); !errors.Is(err, ErrOccupied) {
		t.Fatalf("double occupancy err = %v, want ErrOccupied", err)
	}
	if _, err := g2.PlaceUnit("shadowhawk", Coord{Q: 99, R: 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("out of bounds err = %v, want ErrOutOfBounds", err)
	}

	g3, err := g2.MoveUnit("atlas", Coord{Q: 3, R: 2})
	if err != nil {
		t.Fatalf("MoveUnit: %v", err)
	}
	if _, ok := g3.OccupantAt(Coord{Q: 2, R: 2}); ok {
		t.Fatal("source hex still occupied after move")
	}
	if pos, _ := g3.PositionOf("atlas"); pos != (Coord{Q: 3, R: 2}) {
		t.Fatalf("PositionOf = %v", pos)
	}
	// Prior snapshot still sees the old position.
	if pos, _ := g2.PositionOf("atlas"); pos != (Coord{Q: 2, R: 2}) {
		t.Fatalf("old snapshot PositionOf = %v", pos)
	}

	g4, err := g3.RemoveUnit("atlas")
	if err != nil {
		t.Fatalf("RemoveUnit: %v", err)
	}
	if _, ok := g4.PositionOf("atlas"); ok {
		t.Fatal("unit still placed after removal")
	}
}

func TestGridMissingHexIsClear(t *testing.T) {
	g := NewGrid(4, 4)
	h, ok := g.At(Coord{Q: 1, R: 1})
	if !ok {
		t.Fatal("in-bounds hex not found")
	}
	if len(h.Terrain) != 0 || h.Elevation != 0 {
		t.Fatalf("default hex = %+v, want clear at elevation 0", h)
	}
	if _, ok := g.At(Coord{Q: -1, R: 0}); ok {
		t.Fatal("out-of-bounds hex reported present")
	}
}

func TestGridSetTerrain(t *testing.T) {
	g := NewGrid(4, 4)
	g2, err := g.SetTerrain(Coord{Q: 0, R: 0}, ParseTerrain("heavy_woods"))
	if err != nil {
		t.Fatalf("SetTerrain: %v", err)
	}
	h, _ := g2.At(Coord{Q: 0, R: 0})
	if ok, _ := h.HasTerrain(TerrainHeavyWoods); !ok {
		t.Fatal("terrain not applied")
	}
	h0, _ := g.At(Coord{Q: 0, R: 0})
	if len(h0.Terrain) != 0 {
		t.Fatal("original grid terrain mutated")
	}
}

func TestParseBoard(t *testing.T) {
	src := `size 3 3
hex 0101 0 "woods:2" ""
hex 0202 1 "water:1" ""
hex 0303 0 "bogus_token" ""
end
`
	g, err := ParseBoard(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	if g.Width != 3 || g.Height != 3 {
		t.Fatalf("size = %dx%d", g.Width, g.Height)
	}
	h, _ := g.At(Coord{Q: 0, R: 0})
	if ok, _ := h.HasTerrain(TerrainHeavyWoods); !ok {
		t.Error("0101 missing heavy woods")
	}
	h, _ = g.At(Coord{Q: 1, R: 1})
	if h.Elevation != 1 {
		t.Errorf("0202 elevation = %d, want 1", h.Elevation)
	}
	h, _ = g.At(Coord{Q: 2, R: 2})
	if len(h.Terrain) != 0 {
		t.Errorf("unknown token parsed to %v, want empty", h.Terrain)
	}
}
