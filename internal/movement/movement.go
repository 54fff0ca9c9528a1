// Package movement computes legal movement on a hex grid: movement-point
// budgets, per-hex terrain and elevation costs, reachable-set enumeration and
// cost-aware pathfinding. All functions are pure computations over an
// immutable grid snapshot.
package movement

import (
	"math"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"
)

// ─── Modes & capability ─────────────────────────────────────────────────────

type Mode string

const (
	ModeStationary Mode = "stationary"
	ModeWalk       Mode = "walk"
	ModeRun        Mode = "run"
	ModeJump       Mode = "jump"
)

type Capability struct {
	WalkMP int `json:"walkMP"`
	JumpMP int `json:"jumpMP"`
}

// RunMP derives the run budget: ceil(walk × 1.5).
func (c Capability) RunMP() int {
	return int(math.Ceil(float64(c.WalkMP) * 1.5))
}

// Budget returns the MP budget for a movement mode.
func (c Capability) Budget(mode Mode) int {
	switch mode {
	case ModeWalk:
		return c.WalkMP
	case ModeRun:
		return c.RunMP()
	case ModeJump:
		return c.JumpMP
	default:
		return 0
	}
}

// ─── Per-hex cost ───────────────────────────────────────────────────────────

// impassable marks hexes walk/run movement can never enter.
const impassable = math.MaxInt32

// entryCost returns the MP cost to enter dest from from, or impassable.
// Jump ignores terrain and elevation entirely: every hex costs 1.
func entryCost(grid *hexmap.Grid, from, dest hexmap.Coord, mode Mode) int {
	if mode == ModeJump {
		return 1
	}

	destHex, ok := grid.At(dest)
	if !ok {
		return impassable
	}

	cost := 1
	if ok, _ := destHex.HasTerrain(hexmap.TerrainWater); ok {
		return impassable
	}
	if ok, _ := destHex.HasTerrain(hexmap.TerrainHeavyWoods); ok {
		cost = 3
	} else if ok, _ := destHex.HasTerrain(hexmap.TerrainLightWoods); ok {
		cost = 2
	}

	fromHex, ok := grid.At(from)
	if !ok {
		return impassable
	}
	diff := destHex.Elevation - fromHex.Elevation
	if diff < 0 {
		diff = -diff
	}
	if diff > 2 {
		return impassable
	}
	cost += diff

	return cost
}

// ─── Validation ─────────────────────────────────────────────────────────────

// Validation is the structured result query functions surface to callers;
// rejected moves carry a reason, never an error.
type Validation struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Cost   int    `json:"cost"`
}

func invalid(reason string) Validation {
	return Validation{OK: false, Reason: reason}
}

// Validate checks a movement declaration from from to dest for the given
// mode and capability. The moving unit itself never blocks its own path.
func Validate(grid *hexmap.Grid, unitID string, from, dest hexmap.Coord, mode Mode, cap Capability) Validation {
	if !grid.InBounds(dest) {
		return invalid("destination out of bounds")
	}
	if mode == ModeStationary {
		if dest != from {
			return invalid("stationary movement cannot change hex")
		}
		return Validation{OK: true}
	}
	if mode == ModeJump && cap.JumpMP <= 0 {
		return invalid("unit has no jump capability")
	}
	if occ, ok := grid.OccupantAt(dest); ok && occ != unitID {
		return invalid("destination occupied")
	}
	if dest == from {
		return Validation{OK: true}
	}

	cost, reachable := pathCost(grid, from, dest, mode, cap.Budget(mode))
	if !reachable {
		return invalid("destination unreachable")
	}
	if cost > cap.Budget(mode) {
		return invalid("insufficient movement points")
	}
	return Validation{OK: true, Cost: cost}
}

// ─── Reachability & pathfinding ─────────────────────────────────────────────

type searchNode struct {
	coord hexmap.Coord
	cost  int
}

// dijkstra expands all hexes reachable within budget MP and returns the
// cheapest cost and predecessor per visited coordinate. Occupied hexes are
// traversable; only ending movement in one is illegal, which callers
// enforce when picking destinations.
func dijkstra(grid *hexmap.Grid, from hexmap.Coord, mode Mode, budget int) (map[hexmap.Coord]int, map[hexmap.Coord]hexmap.Coord) {
	dist := map[hexmap.Coord]int{from: 0}
	prev := map[hexmap.Coord]hexmap.Coord{}

	// Linear frontier scan; boards are map-sheet sized and budgets single
	// digit, so no heap.
	frontier := []searchNode{{coord: from, cost: 0}}
	for len(frontier) > 0 {
		best := 0
		for i := 1; i < len(frontier); i++ {
			if frontier[i].cost < frontier[best].cost {
				best = i
			}
		}
		cur := frontier[best]
		frontier = append(frontier[:best], frontier[best+1:]...)

		if cur.cost > dist[cur.coord] {
			continue
		}

		for _, next := range hexmap.Neighbors(cur.coord) {
			if !grid.InBounds(next) {
				continue
			}
			step := entryCost(grid, cur.coord, next, mode)
			if step >= impassable {
				continue
			}
			nc := cur.cost + step
			if nc > budget {
				continue
			}
			if old, seen := dist[next]; !seen || nc < old {
				dist[next] = nc
				prev[next] = cur.coord
				frontier = append(frontier, searchNode{coord: next, cost: nc})
			}
		}
	}
	return dist, prev
}

func pathCost(grid *hexmap.Grid, from, dest hexmap.Coord, mode Mode, budget int) (int, bool) {
	if mode == ModeJump {
		// Jump cost is straight-line distance, one MP per hex.
		return hexmap.Distance(from, dest), true
	}
	dist, _ := dijkstra(grid, from, mode, budget)
	c, ok := dist[dest]
	return c, ok
}

// ValidDestinations enumerates every hex the unit can legally end its
// movement in, bounded by the mode's MP budget and the grid. Stationary
// yields only the current hex.
func ValidDestinations(grid *hexmap.Grid, unitID string, from hexmap.Coord, mode Mode, cap Capability) []hexmap.Coord {
	if mode == ModeStationary {
		return []hexmap.Coord{from}
	}
	budget := cap.Budget(mode)
	if budget <= 0 {
		return nil
	}

	if mode == ModeJump {
		var out []hexmap.Coord
		for _, c := range hexmap.InRange(from, budget) {
			if !grid.InBounds(c) {
				continue
			}
			if occ, ok := grid.OccupantAt(c); ok && occ != unitID {
				continue
			}
			out = append(out, c)
		}
		return out
	}

	dist, _ := dijkstra(grid, from, mode, budget)
	out := make([]hexmap.Coord, 0, len(dist))
	for c := range dist {
		if occ, ok := grid.OccupantAt(c); ok && occ != unitID {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FindPath returns the cheapest ordered hex sequence from from to dest
// inclusive, or nil when unreachable. Identical start and end yield the
// single-hex path.
func FindPath(grid *hexmap.Grid, unitID string, from, dest hexmap.Coord, mode Mode, cap Capability) []hexmap.Coord {
	if from == dest {
		return []hexmap.Coord{from}
	}
	if !grid.InBounds(dest) {
		return nil
	}
	if occ, ok := grid.OccupantAt(dest); ok && occ != unitID {
		return nil
	}

	if mode == ModeJump {
		if hexmap.Distance(from, dest) > cap.JumpMP {
			return nil
		}
		return hexmap.Line(from, dest)
	}

	budget := cap.Budget(mode)
	dist, prev := dijkstra(grid, from, mode, budget)
	if _, ok := dist[dest]; !ok {
		return nil
	}

	var path []hexmap.Coord
	for cur := dest; ; {
		path = append([]hexmap.Coord{cur}, path...)
		if cur == from {
			break
		}
		cur = prev[cur]
	}
	return path
}

// ─── Movement heat & TMM ────────────────────────────────────────────────────

// Heat returns the heat generated by a move: stationary 0, walk 1, run 2,
// jump max(hexes,3).
func Heat(mode Mode, hexesMoved int) int {
	switch mode {
	case ModeWalk:
		return 1
	case ModeRun:
		return 2
	case ModeJump:
		if hexesMoved > 3 {
			return hexesMoved
		}
		return 3
	default:
		return 0
	}
}

// TMM is the target movement modifier a defender earns: 0 when stationary,
// otherwise ceil(hexes/5) with a minimum of 1, plus 1 when jumping.
func TMM(mode Mode, hexesMoved int) int {
	if mode == ModeStationary {
		return 0
	}
	tmm := (hexesMoved + 4) / 5
	if tmm < 1 {
		tmm = 1
	}
	if mode == ModeJump {
		tmm++
	}
	return tmm
}
