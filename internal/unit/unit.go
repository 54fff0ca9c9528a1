package unit

import "math"

// ─── Locations ──────────────────────────────────────────────────────────────

type Location string

const (
	LocHead        Location = "head"
	LocCenterTorso Location = "center_torso"
	LocLeftTorso   Location = "left_torso"
	LocRightTorso  Location = "right_torso"
	LocLeftArm     Location = "left_arm"
	LocRightArm    Location = "right_arm"
	LocLeftLeg     Location = "left_leg"
	LocRightLeg    Location = "right_leg"
)

const rearSuffix = "-rear"

// Locations lists the 8 physical locations in hit-table order.
var Locations = []Location{
	LocHead, LocCenterTorso, LocLeftTorso, LocRightTorso,
	LocLeftArm, LocRightArm, LocLeftLeg, LocRightLeg,
}

// Rear returns the rear-facing name for a torso location ("center_torso-rear").
// Non-torso locations are returned unchanged.
func (l Location) Rear() Location {
	switch l {
	case LocCenterTorso, LocLeftTorso, LocRightTorso:
		return l + rearSuffix
	default:
		return l
	}
}

// Base strips a rear suffix, returning the physical location.
func (l Location) Base() Location {
	if n := len(l) - len(rearSuffix); n > 0 && l[n:] == rearSuffix {
		return l[:n]
	}
	return l
}

// IsRear reports whether the location names a rear torso facing.
func (l Location) IsRear() bool {
	return l != l.Base()
}

// DefaultTransferMap is the humanoid damage-transfer chain: arms and legs
// feed their side torso, side torsos feed the center torso. Head and center
// torso transfer nowhere.
func DefaultTransferMap() map[Location]Location {
	return map[Location]Location{
		LocLeftArm:    LocLeftTorso,
		LocRightArm:   LocRightTorso,
		LocLeftLeg:    LocLeftTorso,
		LocRightLeg:   LocRightTorso,
		LocLeftTorso:  LocCenterTorso,
		LocRightTorso: LocCenterTorso,
	}
}

// ─── Weapons ────────────────────────────────────────────────────────────────

type WeaponCategory string

const (
	CategoryEnergy    WeaponCategory = "energy"
	CategoryBallistic WeaponCategory = "ballistic"
	CategoryMissile   WeaponCategory = "missile"
)

// Weapon is a static weapon record supplied by the construction subsystem.
// For cluster weapons Damage is the per-missile damage and ClusterSize the
// volley size; otherwise Damage is the full single-hit damage. Arc names
// the mounting arc ("front", "left", "right", "rear"); empty means front.
type Weapon struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Damage      int            `json:"damage"`
	Heat        int            `json:"heat"`
	Category    WeaponCategory `json:"category"`
	Arc         string         `json:"arc,omitempty"`
	MinRange    int            `json:"minRange"`
	ShortRange  int            `json:"shortRange"`
	MediumRange int            `json:"mediumRange"`
	LongRange   int            `json:"longRange"`
	Cluster     bool           `json:"cluster,omitempty"`
	ClusterSize int            `json:"clusterSize,omitempty"`
}

// ─── Unit ───────────────────────────────────────────────────────────────────

// LocationPlate holds the armor and structure totals for one location.
type LocationPlate struct {
	Armor     int `json:"armor"`
	RearArmor int `json:"rearArmor,omitempty"`
	Structure int `json:"structure"`
}

// Unit is the static combat capability of a single unit. It is referenced,
// never owned, by a game session; all dynamic state lives in the session's
// derived game state.
type Unit struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Side     string `json:"side"`
	Tonnage  int    `json:"tonnage,omitempty"`
	Gunnery  int    `json:"gunnery"`
	Piloting int    `json:"piloting"`

	WalkMP    int `json:"walkMP"`
	JumpMP    int `json:"jumpMP"`
	HeatSinks int `json:"heatSinks"`

	Weapons []Weapon `json:"weapons"`

	Plates   map[Location]LocationPlate `json:"plates"`
	Transfer map[Location]Location      `json:"transfer,omitempty"`
}

// RunMP derives run movement points: ceil(walk × 1.5).
func (u *Unit) RunMP() int {
	return int(math.Ceil(float64(u.WalkMP) * 1.5))
}

// TransferTarget returns where overflow damage from loc goes, using the
// default humanoid chain when the unit carries no explicit map.
func (u *Unit) TransferTarget(loc Location) (Location, bool) {
	m := u.Transfer
	if m == nil {
		m = DefaultTransferMap()
	}
	to, ok := m[loc.Base()]
	return to, ok
}

// Weapon returns the weapon with the given id.
func (u *Unit) Weapon(id string) (Weapon, bool) {
	for _, w := range u.Weapons {
		if w.ID == id {
			return w, true
		}
	}
	return Weapon{}, false
}
