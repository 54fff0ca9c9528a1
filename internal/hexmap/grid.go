package hexmap

import (
	"errors"
	"fmt"
)

// ─── Hex & Grid ─────────────────────────────────────────────────────────────
// Grid is a bounded rectangular battlefield snapshot. It is never mutated in
// place: PlaceUnit/RemoveUnit/MoveUnit/SetTerrain return a new grid sharing
// unchanged hexes, so a retained reference to a prior snapshot stays valid
// for replay and undo.

var (
	ErrOutOfBounds = errors.New("hexmap: coordinate out of bounds")
	ErrOccupied    = errors.New("hexmap: hex already occupied")
	ErrNotFound    = errors.New("hexmap: occupant not found")
)

type Hex struct {
	Coord      Coord            `json:"coord"`
	OccupantID string           `json:"occupantId,omitempty"`
	Terrain    []TerrainFeature `json:"terrain,omitempty"`
	Elevation  int              `json:"elevation"`
}

// HasTerrain reports whether the hex carries a feature of the given type and
// returns its level.
func (h Hex) HasTerrain(t TerrainType) (bool, int) {
	for _, f := range h.Terrain {
		if f.Type == t {
			return true, f.Level
		}
	}
	return false, 0
}

// BlockingHeight returns the tallest sightline obstruction the hex presents:
// elevation plus the highest blocking feature, or -1 when nothing blocks.
func (h Hex) BlockingHeight() int {
	blocked := false
	height := 0
	for _, f := range h.Terrain {
		if f.Type.Blocks() {
			blocked = true
			if fh := f.Height(); fh > height {
				height = fh
			}
		}
	}
	if !blocked {
		return -1
	}
	return h.Elevation + height
}

type Grid struct {
	Width  int
	Height int

	// Only non-default hexes are stored; At synthesizes clear hexes for
	// in-bounds coordinates that have no entry.
	hexes     map[string]Hex
	occupants map[string]Coord // unit id → coordinate
}

// NewGrid returns an empty, all-clear grid covering q∈[0,w) r∈[0,h).
func NewGrid(w, h int) *Grid {
	return &Grid{
		Width:     w,
		Height:    h,
		hexes:     map[string]Hex{},
		occupants: map[string]Coord{},
	}
}

func (g *Grid) InBounds(c Coord) bool {
	return c.Q >= 0 && c.Q < g.Width && c.R >= 0 && c.R < g.Height
}

// At returns the hex at c. Missing hex data degrades to clear terrain at
// elevation 0; out-of-bounds returns ok=false.
func (g *Grid) At(c Coord) (Hex, bool) {
	if !g.InBounds(c) {
		return Hex{}, false
	}
	if h, ok := g.hexes[c.Key()]; ok {
		return h, true
	}
	return Hex{Coord: c}, true
}

// OccupantAt returns the unit occupying c, if any.
func (g *Grid) OccupantAt(c Coord) (string, bool) {
	h, ok := g.At(c)
	if !ok || h.OccupantID == "" {
		return "", false
	}
	return h.OccupantID, true
}

// PositionOf returns the coordinate of a placed unit.
func (g *Grid) PositionOf(unitID string) (Coord, bool) {
	c, ok := g.occupants[unitID]
	return c, ok
}

// Units returns the ids of all placed units.
func (g *Grid) Units() []string {
	out := make([]string, 0, len(g.occupants))
	for id := range g.occupants {
		out = append(out, id)
	}
	return out
}

// clone copies the grid's maps so a transform can mutate its own copy.
func (g *Grid) clone() *Grid {
	ng := &Grid{
		Width:     g.Width,
		Height:    g.Height,
		hexes:     make(map[string]Hex, len(g.hexes)),
		occupants: make(map[string]Coord, len(g.occupants)),
	}
	for k, v := range g.hexes {
		ng.hexes[k] = v
	}
	for k, v := range g.occupants {
		ng.occupants[k] = v
	}
	return ng
}

func (g *Grid) setHex(h Hex) {
	g.hexes[h.Coord.Key()] = h
}

// Hexes returns every hex carrying non-default data, in no particular order.
func (g *Grid) Hexes() []Hex {
	out := make([]Hex, 0, len(g.hexes))
	for _, h := range g.hexes {
		out = append(out, h)
	}
	return out
}

// FromHexes builds a grid of the given size pre-populated with hex data.
// Hexes carrying an occupant register that unit on the board.
func FromHexes(w, h int, hexes []Hex) *Grid {
	g := NewGrid(w, h)
	for _, hx := range hexes {
		if !g.InBounds(hx.Coord) {
			continue
		}
		g.setHex(hx)
		if hx.OccupantID != "" {
			g.occupants[hx.OccupantID] = hx.Coord
		}
	}
	return g
}

// PlaceUnit returns a new grid with the unit at c. At most one occupant per
// hex; a unit already on the board cannot be placed twice.
func (g *Grid) PlaceUnit(unitID string, c Coord) (*Grid, error) {
	if !g.InBounds(c) {
		return nil, fmt.Errorf("place %s at %s: %w", unitID, c.Key(), ErrOutOfBounds)
	}
	if occ, ok := g.OccupantAt(c); ok {
		return nil, fmt.Errorf("place %s at %s (held by %s): %w", unitID, c.Key(), occ, ErrOccupied)
	}
	if _, ok := g.occupants[unitID]; ok {
		return nil, fmt.Errorf("place %s: already on the board", unitID)
	}

	ng := g.clone()
	h, _ := ng.At(c)
	h.OccupantID = unitID
	ng.setHex(h)
	ng.occupants[unitID] = c
	return ng, nil
}

// RemoveUnit returns a new grid without the unit.
func (g *Grid) RemoveUnit(unitID string) (*Grid, error) {
	c, ok := g.occupants[unitID]
	if !ok {
		return nil, fmt.Errorf("remove %s: %w", unitID, ErrNotFound)
	}

	ng := g.clone()
	h, _ := ng.At(c)
	h.OccupantID = ""
	ng.setHex(h)
	delete(ng.occupants, unitID)
	return ng, nil
}

// MoveUnit returns a new grid with the unit relocated to dest.
func (g *Grid) MoveUnit(unitID string, dest Coord) (*Grid, error) {
	from, ok := g.occupants[unitID]
	if !ok {
		return nil, fmt.Errorf("move %s: %w", unitID, ErrNotFound)
	}
	if from == dest {
		return g, nil
	}
	if !g.InBounds(dest) {
		return nil, fmt.Errorf("move %s to %s: %w", unitID, dest.Key(), ErrOutOfBounds)
	}
	if occ, ok := g.OccupantAt(dest); ok {
		return nil, fmt.Errorf("move %s to %s (held by %s): %w", unitID, dest.Key(), occ, ErrOccupied)
	}

	ng := g.clone()
	src, _ := ng.At(from)
	src.OccupantID = ""
	ng.setHex(src)
	dst, _ := ng.At(dest)
	dst.OccupantID = unitID
	ng.setHex(dst)
	ng.occupants[unitID] = dest
	return ng, nil
}

// SetTerrain returns a new grid with the hex's terrain replaced.
func (g *Grid) SetTerrain(c Coord, features []TerrainFeature) (*Grid, error) {
	if !g.InBounds(c) {
		return nil, fmt.Errorf("set terrain at %s: %w", c.Key(), ErrOutOfBounds)
	}
	ng := g.clone()
	h, _ := ng.At(c)
	h.Terrain = append([]TerrainFeature(nil), features...)
	ng.setHex(h)
	return ng, nil
}

// SetElevation returns a new grid with the hex's elevation replaced.
func (g *Grid) SetElevation(c Coord, elev int) (*Grid, error) {
	if !g.InBounds(c) {
		return nil, fmt.Errorf("set elevation at %s: %w", c.Key(), ErrOutOfBounds)
	}
	ng := g.clone()
	h, _ := ng.At(c)
	h.Elevation = elev
	ng.setHex(h)
	return ng, nil
}
