package los

import (
	"testing"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"
)

func withTerrain(t *testing.T, g *hexmap.Grid, c hexmap.Coord, desc string) *hexmap.Grid {
	t.Helper()
	ng, err := g.SetTerrain(c, hexmap.ParseTerrain(desc))
	if err != nil {
		t.Fatal(err)
	}
	return ng
}

func TestAdjacentAndSameHexAlwaysClear(t *testing.T) {
	g := hexmap.NewGrid(5, 5)
	a := hexmap.Coord{Q: 1, R: 1}

	if r := Calculate(g, a, a); !r.Clear || len(r.Intervening) != 0 {
		t.Errorf("same hex = %+v, want clear with no intervening", r)
	}
	for _, n := range hexmap.Neighbors(a) {
		if !g.InBounds(n) {
			continue
		}
		if r := Calculate(g, a, n); !r.Clear || len(r.Intervening) != 0 {
			t.Errorf("adjacent %v = %+v, want clear", n, r)
		}
	}
}

func TestBlockingTerrain(t *testing.T) {
	a := hexmap.Coord{Q: 0, R: 2}
	mid := hexmap.Coord{Q: 2, R: 2}
	b := hexmap.Coord{Q: 4, R: 2}

	tests := []struct {
		terrain string
		clear   bool
	}{
		{"heavy_woods", false},
		{"building:2", false},
		{"light_woods", true},
		{"water:1", true},
		{"clear", true},
	}
	for _, tt := range tests {
		g := withTerrain(t, hexmap.NewGrid(5, 5), mid, tt.terrain)
		r := Calculate(g, a, b)
		if r.Clear != tt.clear {
			t.Errorf("%s between: clear=%v, want %v", tt.terrain, r.Clear, tt.clear)
			continue
		}
		if !tt.clear {
			if r.BlockedBy == nil || *r.BlockedBy != mid {
				t.Errorf("%s between: BlockedBy=%v, want %v", tt.terrain, r.BlockedBy, mid)
			}
		} else if r.BlockedBy != nil {
			t.Errorf("%s between: unexpected BlockedBy %v", tt.terrain, *r.BlockedBy)
		}
	}
}

func TestElevationAdvantageRestoresLOS(t *testing.T) {
	a := hexmap.Coord{Q: 0, R: 2}
	mid := hexmap.Coord{Q: 2, R: 2}
	b := hexmap.Coord{Q: 4, R: 2}

	g := withTerrain(t, hexmap.NewGrid(5, 5), mid, "heavy_woods")
	if r := Calculate(g, a, b); r.Clear {
		t.Fatal("ground-level sightline through heavy woods should be blocked")
	}

	// Woods at elevation 0 obstruct up to height 2; an attacker on a
	// level-2 hill sees over them.
	g2, err := g.SetElevation(a, 2)
	if err != nil {
		t.Fatal(err)
	}
	if r := Calculate(g2, a, b); !r.Clear {
		t.Errorf("level-2 attacker still blocked: %+v", r)
	}

	// Level 1 is not enough.
	g1, err := g.SetElevation(a, 1)
	if err != nil {
		t.Fatal(err)
	}
	if r := Calculate(g1, a, b); r.Clear {
		t.Error("level-1 attacker should not clear level-2 woods")
	}

	// Explicit elevations work the same way without touching the grid.
	if r := CalculateAt(g, a, b, 2, 0); !r.Clear {
		t.Errorf("CalculateAt with fromElev=2 blocked: %+v", r)
	}
}

func TestElevatedBlockerBeatsElevatedViewer(t *testing.T) {
	a := hexmap.Coord{Q: 0, R: 2}
	mid := hexmap.Coord{Q: 2, R: 2}
	b := hexmap.Coord{Q: 4, R: 2}

	g := withTerrain(t, hexmap.NewGrid(5, 5), mid, "heavy_woods")
	g, err := g.SetElevation(mid, 2)
	if err != nil {
		t.Fatal(err)
	}
	// Blocker now obstructs to height 4; a level-2 viewer cannot clear it.
	if r := CalculateAt(g, a, b, 2, 0); r.Clear {
		t.Error("elevated woods should still block a level-2 viewer")
	}
}

func TestBareHillsNeverBlock(t *testing.T) {
	a := hexmap.Coord{Q: 0, R: 2}
	mid := hexmap.Coord{Q: 2, R: 2}
	b := hexmap.Coord{Q: 4, R: 2}

	g, err := hexmap.NewGrid(5, 5).SetElevation(mid, 4)
	if err != nil {
		t.Fatal(err)
	}
	if r := Calculate(g, a, b); !r.Clear {
		t.Errorf("bare elevation blocked the line: %+v", r)
	}
}
