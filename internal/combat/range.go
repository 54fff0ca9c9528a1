package combat

import "github.com/SwiggitySwerve/MekStation-sub005/internal/unit"

// ─── Range brackets ─────────────────────────────────────────────────────────

type RangeBracket int

const (
	RangeShort RangeBracket = iota
	RangeMedium
	RangeLong
	RangeExtreme
	OutOfRange
)

var bracketNames = [...]string{"short", "medium", "long", "extreme", "out_of_range"}

func (b RangeBracket) String() string {
	if int(b) < len(bracketNames) {
		return bracketNames[b]
	}
	return "out_of_range"
}

// GenericBracket maps a hex distance onto the generic range bands:
// short 0-3, medium 4-6, long 7-15, extreme 16+.
func GenericBracket(dist int) RangeBracket {
	switch {
	case dist <= 3:
		return RangeShort
	case dist <= 6:
		return RangeMedium
	case dist <= 15:
		return RangeLong
	default:
		return RangeExtreme
	}
}

// BracketModifier is the to-hit modifier for a bracket. OutOfRange shots
// are impossible and carry no finite modifier; callers check InRange first.
func BracketModifier(b RangeBracket) int {
	switch b {
	case RangeShort:
		return 0
	case RangeMedium:
		return 2
	case RangeLong:
		return 4
	case RangeExtreme:
		return 6
	default:
		return 0
	}
}

// WeaponBracket maps a distance onto a weapon's own range thresholds.
// Beyond the weapon's long range the shot is out of range.
func WeaponBracket(w unit.Weapon, dist int) RangeBracket {
	switch {
	case dist > w.LongRange:
		return OutOfRange
	case dist <= w.ShortRange:
		return RangeShort
	case dist <= w.MediumRange:
		return RangeMedium
	default:
		return RangeLong
	}
}

// MinimumRangePenalty is minimum − distance + 1 when inside the weapon's
// minimum range, else 0.
func MinimumRangePenalty(w unit.Weapon, dist int) int {
	if w.MinRange > 0 && dist <= w.MinRange {
		return w.MinRange - dist + 1
	}
	return 0
}
