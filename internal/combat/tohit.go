package combat

import (
	"github.com/SwiggitySwerve/MekStation-sub005/internal/movement"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/unit"
)

// ─── To-hit accumulation ────────────────────────────────────────────────────

// ToHit is the fully itemized modifier stack for one attack. Each field is
// kept separate so transcripts can show where a number came from.
type ToHit struct {
	Gunnery         int `json:"gunnery"`
	RangeMod        int `json:"rangeMod"`
	AttackerMoveMod int `json:"attackerMoveMod"`
	TargetTMM       int `json:"targetTMM"`
	HeatMod         int `json:"heatMod"`
	MinRangeMod     int `json:"minRangeMod"`
}

func (t ToHit) Total() int {
	return t.Gunnery + t.RangeMod + t.AttackerMoveMod + t.TargetTMM + t.HeatMod + t.MinRangeMod
}

// Impossible reports whether the accumulated target exceeds 2d6.
func (t ToHit) Impossible() bool {
	return t.Total() > 12
}

func (t ToHit) Probability() float64 {
	return HitProbability(t.Total())
}

// AttackerMovementMod is the penalty for the attacker's own movement:
// stationary 0, walk 1, run 2, jump 3.
func AttackerMovementMod(mode movement.Mode) int {
	switch mode {
	case movement.ModeWalk:
		return 1
	case movement.ModeRun:
		return 2
	case movement.ModeJump:
		return 3
	default:
		return 0
	}
}

// HeatModifier maps accumulated heat onto a to-hit penalty:
// 0-4 none, 5-7 +1, 8-12 +2, 13+ +3.
func HeatModifier(heat int) int {
	switch {
	case heat >= 13:
		return 3
	case heat >= 8:
		return 2
	case heat >= 5:
		return 1
	default:
		return 0
	}
}

// BuildToHit assembles the modifier stack for one weapon attack. dist is the
// hex distance attacker to target; the weapon supplies range thresholds.
func BuildToHit(attacker *unit.Unit, w unit.Weapon, dist int, attackerMode movement.Mode, targetTMM, attackerHeat int) (ToHit, RangeBracket) {
	bracket := WeaponBracket(w, dist)
	return ToHit{
		Gunnery:         attacker.Gunnery,
		RangeMod:        BracketModifier(bracket),
		AttackerMoveMod: AttackerMovementMod(attackerMode),
		TargetTMM:       targetTMM,
		HeatMod:         HeatModifier(attackerHeat),
		MinRangeMod:     MinimumRangePenalty(w, dist),
	}, bracket
}
