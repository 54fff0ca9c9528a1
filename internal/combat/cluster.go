package combat

import "github.com/SwiggitySwerve/MekStation-sub005/internal/unit"

// ─── Cluster hits table ─────────────────────────────────────────────────────

// Recognized rack sizes; an odd size snaps up to the next column, capped
// at 20.
var clusterSizes = [7]int{2, 4, 5, 6, 10, 15, 20}

// clusterTable[roll-2][column] is the hit count for a 2d6 cluster roll.
var clusterTable = [11][7]int{
	{1, 1, 1, 2, 3, 5, 6},    // roll 2
	{1, 2, 2, 2, 3, 5, 6},    // roll 3
	{1, 2, 2, 3, 4, 6, 9},    // roll 4
	{1, 2, 3, 3, 6, 9, 12},   // roll 5
	{1, 2, 3, 4, 6, 9, 12},   // roll 6
	{1, 3, 3, 4, 6, 9, 12},   // roll 7
	{2, 3, 3, 4, 6, 9, 12},   // roll 8
	{2, 3, 4, 5, 8, 12, 16},  // roll 9
	{2, 3, 4, 5, 8, 12, 16},  // roll 10
	{2, 4, 5, 6, 10, 15, 20}, // roll 11
	{2, 4, 5, 6, 10, 15, 20}, // roll 12
}

func clusterColumn(size int) int {
	for i, s := range clusterSizes {
		if size <= s {
			return i
		}
	}
	return len(clusterSizes) - 1 // cap at 20
}

// ClusterHitsForRoll looks up the hit count for a given 2d6 roll and rack
// size without consuming the roller.
func ClusterHitsForRoll(roll, size int) int {
	if roll < 2 {
		roll = 2
	}
	if roll > 12 {
		roll = 12
	}
	return clusterTable[roll-2][clusterColumn(size)]
}

// ClusterHits rolls 2d6 and returns how many sub-munitions of a volley hit.
func ClusterHits(r Roller, size int) int {
	return ClusterHitsForRoll(Roll2D6(r), size)
}

// ─── Hit grouping ───────────────────────────────────────────────────────────

// HitGroup aggregates cluster hits that landed on the same location.
type HitGroup struct {
	Location unit.Location `json:"location"`
	Hits     int           `json:"hits"`
	Damage   int           `json:"damage"`
	Critical bool          `json:"critical,omitempty"`
}

// GroupHits rolls a hit location per sub-munition and aggregates counts and
// damage by location, preserving first-strike order.
func GroupHits(r Roller, hits, damagePerHit int, rear bool) []HitGroup {
	var groups []HitGroup
	index := map[unit.Location]int{}
	for i := 0; i < hits; i++ {
		res := RollHitLocation(r, rear)
		gi, ok := index[res.Location]
		if !ok {
			gi = len(groups)
			index[res.Location] = gi
			groups = append(groups, HitGroup{Location: res.Location})
		}
		groups[gi].Hits++
		groups[gi].Damage += damagePerHit
		if res.Critical {
			groups[gi].Critical = true
		}
	}
	return groups
}
