package combat

import "github.com/SwiggitySwerve/MekStation-sub005/internal/unit"

// ─── Damage cascade ─────────────────────────────────────────────────────────

// LocationDamage records the effect of damage on a single location: armor
// depleted first, then structure, with any excess surfaced as overflow for
// the transfer chain.
type LocationDamage struct {
	Location        unit.Location `json:"location"`
	Rear            bool          `json:"rear,omitempty"`
	ArmorDamage     int           `json:"armorDamage"`
	StructureDamage int           `json:"structureDamage"`
	Destroyed       bool          `json:"destroyed,omitempty"`
	Overflow        int           `json:"overflow,omitempty"`
}

// ApplyDamageToLocation applies damage to one location in place: armor
// first, then structure. A rear-facing location depletes rear armor. The
// returned record carries any overflow; the caller decides whether it
// transfers.
func ApplyDamageToLocation(cond *unit.Condition, loc unit.Location, dmg int) LocationDamage {
	base := loc.Base()
	rear := loc.IsRear()
	out := LocationDamage{Location: loc, Rear: rear}
	if dmg <= 0 {
		return out
	}

	st := cond.Locations[base]
	if st.Destroyed {
		// Already gone; everything passes through.
		out.Destroyed = true
		out.Overflow = dmg
		return out
	}

	remaining := dmg
	if rear {
		if st.RearArmor > 0 {
			a := minInt(st.RearArmor, remaining)
			st.RearArmor -= a
			remaining -= a
			out.ArmorDamage = a
		}
	} else if st.Armor > 0 {
		a := minInt(st.Armor, remaining)
		st.Armor -= a
		remaining -= a
		out.ArmorDamage = a
	}

	if remaining > 0 {
		s := minInt(st.Structure, remaining)
		st.Structure -= s
		remaining -= s
		out.StructureDamage = s
		if st.Structure == 0 {
			st.Destroyed = true
			out.Destroyed = true
			out.Overflow = remaining
		}
	}

	cond.Locations[base] = st
	return out
}

// ApplyDamageWithTransfer applies damage to loc and walks overflow down the
// unit's transfer chain until absorbed or the chain ends. A destroyed-set
// guards against revisiting a chain link.
func ApplyDamageWithTransfer(cond *unit.Condition, u *unit.Unit, loc unit.Location, dmg int) []LocationDamage {
	var results []LocationDamage
	visited := map[unit.Location]bool{}

	cur := loc
	for dmg > 0 {
		if visited[cur.Base()] {
			break
		}
		visited[cur.Base()] = true

		res := ApplyDamageToLocation(cond, cur, dmg)
		results = append(results, res)
		if res.Overflow <= 0 {
			break
		}

		next, ok := u.TransferTarget(cur)
		if !ok {
			break
		}
		// Rear hits keep striking rear armor down the chain.
		if cur.IsRear() {
			next = next.Rear()
		}
		cur = next
		dmg = res.Overflow
	}
	return results
}

// ─── Pilot damage ───────────────────────────────────────────────────────────

// consciousnessTarget[wounds] is the 2d6 number the pilot must meet to stay
// conscious after taking that cumulative wound.
var consciousnessTarget = [6]int{0, 3, 5, 7, 10, 11}

// ConsciousnessTarget returns the 2d6 check number for a pilot at the given
// cumulative wound count. Six or more wounds is past saving.
func ConsciousnessTarget(wounds int) int {
	if wounds <= 0 {
		return 0
	}
	if wounds >= len(consciousnessTarget) {
		return 13
	}
	return consciousnessTarget[wounds]
}

// PilotResult reports the aftermath of pilot wounds.
type PilotResult struct {
	Wounds             int  `json:"wounds"`
	ConsciousnessCheck bool `json:"consciousnessCheck"`
	Dead               bool `json:"dead,omitempty"`
}

// ApplyPilotDamage adds wounds to the pilot. Any wound requires a
// consciousness check; six cumulative wounds kill the pilot and destroy
// the unit.
func ApplyPilotDamage(cond *unit.Condition, wounds int) PilotResult {
	if wounds <= 0 {
		return PilotResult{Wounds: cond.PilotWounds}
	}
	cond.PilotWounds += wounds
	cond.ConsciousnessDue = true

	out := PilotResult{Wounds: cond.PilotWounds, ConsciousnessCheck: true}
	if cond.PilotWounds >= 6 {
		cond.PilotDead = true
		cond.PilotConscious = false
		cond.Destroyed = true
		cond.DestructionCause = "pilot_death"
		out.Dead = true
	}
	return out
}

// ResolveConsciousness performs the pending consciousness check. A failed
// check knocks the pilot out; the unit survives but cannot act.
func ResolveConsciousness(cond *unit.Condition, r Roller) bool {
	if !cond.ConsciousnessDue || cond.PilotDead {
		cond.ConsciousnessDue = false
		return cond.PilotConscious
	}
	cond.ConsciousnessDue = false
	if Roll2D6(r) < ConsciousnessTarget(cond.PilotWounds) {
		cond.PilotConscious = false
	}
	return cond.PilotConscious
}

// ─── Unit destruction ───────────────────────────────────────────────────────

// CheckUnitDestruction marks the unit destroyed when its head or center
// torso structure is gone, or its pilot is dead. Limb loss alone never
// destroys. Returns the cause when destroyed.
func CheckUnitDestruction(cond *unit.Condition) (bool, string) {
	if cond.Destroyed {
		return true, cond.DestructionCause
	}
	switch {
	case cond.PilotDead:
		cond.Destroyed = true
		cond.DestructionCause = "pilot_death"
	case cond.LocationDestroyed(unit.LocHead):
		cond.Destroyed = true
		cond.DestructionCause = "head_destroyed"
	case cond.LocationDestroyed(unit.LocCenterTorso):
		cond.Destroyed = true
		cond.DestructionCause = "center_torso_destroyed"
	default:
		return false, ""
	}
	return true, cond.DestructionCause
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
