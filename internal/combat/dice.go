// Package combat resolves weapon attacks: range and firing-arc checks,
// to-hit accumulation with exact 2d6 probabilities, hit-location tables,
// cluster hit counts, and the armor/structure/transfer damage cascade.
// Every function is a pure computation; the only side-effecting input is an
// explicitly injected Roller, which keeps resolution reproducible.
package combat

import "math/rand/v2"

// ─── Dice ───────────────────────────────────────────────────────────────────

// Roller is the single injected source of randomness for all resolution.
type Roller interface {
	// D6 returns a uniform value in 1..6.
	D6() int
}

// Roll2D6 sums two dice from the roller.
func Roll2D6(r Roller) int {
	return r.D6() + r.D6()
}

// SeededRoller is a deterministic PCG-backed roller. Two sessions created
// with the same seed produce identical roll sequences.
type SeededRoller struct {
	rng *rand.Rand
}

func NewSeededRoller(seed uint64) *SeededRoller {
	return &SeededRoller{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (s *SeededRoller) D6() int { return s.rng.IntN(6) + 1 }

// ScriptedRoller replays a fixed die sequence, wrapping at the end. Used by
// tests that need exact roll outcomes.
type ScriptedRoller struct {
	Rolls []int
	next  int
}

func (s *ScriptedRoller) D6() int {
	if len(s.Rolls) == 0 {
		return 1
	}
	v := s.Rolls[s.next%len(s.Rolls)]
	s.next++
	return v
}

// ─── 2d6 probability table ─────────────────────────────────────────────────

// hitChance[target] is the exact meet-or-exceed probability for 2d6.
var hitChance = [13]float64{
	0, 0, 1.0, 35.0 / 36, 33.0 / 36, 30.0 / 36, 26.0 / 36,
	21.0 / 36, 15.0 / 36, 10.0 / 36, 6.0 / 36, 3.0 / 36, 1.0 / 36,
}

// HitProbability returns the chance of rolling target or higher on 2d6.
// Targets above 12 are impossible.
func HitProbability(target int) float64 {
	if target <= 2 {
		return 1.0
	}
	if target > 12 {
		return 0.0
	}
	return hitChance[target]
}
