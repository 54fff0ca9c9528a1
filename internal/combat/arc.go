package combat

import "github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"

// ─── Firing arcs ────────────────────────────────────────────────────────────

type Arc int

const (
	ArcFront Arc = iota
	ArcLeft
	ArcRight
	ArcRear
)

var arcNames = [...]string{"front", "left", "right", "rear"}

func (a Arc) String() string {
	if int(a) < len(arcNames) {
		return arcNames[a]
	}
	return "front"
}

// ArcFromString maps an arc name to its Arc; anything unrecognized,
// including the empty string, is a front mount.
func ArcFromString(s string) Arc {
	for i, n := range arcNames {
		if n == s {
			return Arc(i)
		}
	}
	return ArcFront
}

// DetermineArc partitions the 6 hexsides relative to facing:
// facing ±1 = Front (3 hexsides), +2 = Right, +3 = Rear, +4 = Left.
// A target in the attacker's own hex counts as Front.
func DetermineArc(from hexmap.Coord, facing hexmap.Facing, target hexmap.Coord) Arc {
	if from == target {
		return ArcFront
	}
	dir := hexmap.DirectionTo(from, target)
	diff := (dir - facing).Normalize()
	switch diff {
	case 2:
		return ArcRight
	case 3:
		return ArcRear
	case 4:
		return ArcLeft
	default: // 0, 1, 5
		return ArcFront
	}
}

// CanFireFromArc reports whether a weapon mounted in weaponArc bears on a
// target sitting in targetArc.
func CanFireFromArc(weaponArc, targetArc Arc) bool {
	return weaponArc == targetArc
}

// IsRearAttack reports whether an attack from attackerPos strikes the
// defender's rear arc, flagging rear-armor targeting.
func IsRearAttack(attackerPos, defenderPos hexmap.Coord, defenderFacing hexmap.Facing) bool {
	return DetermineArc(defenderPos, defenderFacing, attackerPos) == ArcRear
}
