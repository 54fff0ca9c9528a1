package combat

import "github.com/SwiggitySwerve/MekStation-sub005/internal/unit"

// ─── Hit location tables ────────────────────────────────────────────────────

// Front hit location table (2d6, index 0-10 for rolls 2-12).
var frontHitTable = [11]unit.Location{
	unit.LocCenterTorso, // 2
	unit.LocRightArm,    // 3
	unit.LocRightArm,    // 4
	unit.LocRightLeg,    // 5
	unit.LocRightTorso,  // 6
	unit.LocCenterTorso, // 7
	unit.LocLeftTorso,   // 8
	unit.LocLeftLeg,     // 9
	unit.LocLeftArm,     // 10
	unit.LocLeftArm,     // 11
	unit.LocHead,        // 12
}

// HitResult is one resolved hit-location roll. Natural 2 or 12 flags a
// critical regardless of the location struck.
type HitResult struct {
	Roll     int           `json:"roll"`
	Location unit.Location `json:"location"`
	Critical bool          `json:"critical"`
}

// RollHitLocation rolls 2d6 on the front or rear table. The rear table is
// the front table with torso locations renamed to their rear facings.
func RollHitLocation(r Roller, rear bool) HitResult {
	roll := Roll2D6(r)
	loc := frontHitTable[roll-2]
	if rear {
		loc = loc.Rear()
	}
	return HitResult{
		Roll:     roll,
		Location: loc,
		Critical: roll == 2 || roll == 12,
	}
}

// CriticalHitCount maps a 2d6 critical check roll onto the number of
// critical hits scored: <8 none, 8-9 one, 10-11 two, 12 three.
func CriticalHitCount(roll int) int {
	switch {
	case roll >= 12:
		return 3
	case roll >= 10:
		return 2
	case roll >= 8:
		return 1
	default:
		return 0
	}
}
