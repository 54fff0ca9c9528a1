// Package los answers sightline queries between two hexes. A sightline is
// blocked only by blocking terrain (heavy woods, buildings) whose obstruction
// height the higher endpoint cannot see over; bare elevation changes never
// block on their own.
package los

import "github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"

// Result is the outcome of one sightline query. BlockedBy names the first
// intervening hex that broke the line, nil when clear.
type Result struct {
	Clear       bool           `json:"clear"`
	BlockedBy   *hexmap.Coord  `json:"blockedBy,omitempty"`
	Intervening []hexmap.Coord `json:"intervening,omitempty"`
}

// Calculate traces the sightline between from and to using the elevations
// recorded on the grid. Same-hex and adjacent queries are always clear.
func Calculate(grid *hexmap.Grid, from, to hexmap.Coord) Result {
	return CalculateAt(grid, from, to, elevationAt(grid, from), elevationAt(grid, to))
}

// CalculateAt traces the sightline with explicit endpoint elevations,
// letting callers model a unit standing above its hex floor.
func CalculateAt(grid *hexmap.Grid, from, to hexmap.Coord, fromElev, toElev int) Result {
	between := hexmap.Between(from, to)
	res := Result{Clear: true, Intervening: between}

	// A viewer one level above the higher endpoint sees over anything
	// strictly below that line.
	eye := fromElev
	if toElev > eye {
		eye = toElev
	}
	eye++

	for i, c := range between {
		h, ok := grid.At(c)
		if !ok {
			// Missing hex data never blocks.
			continue
		}
		if bh := h.BlockingHeight(); bh >= eye {
			blocked := between[i]
			res.Clear = false
			res.BlockedBy = &blocked
			return res
		}
	}
	return res
}

func elevationAt(grid *hexmap.Grid, c hexmap.Coord) int {
	h, ok := grid.At(c)
	if !ok {
		return 0
	}
	return h.Elevation
}
