package combat

import (
	"testing"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/movement"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/unit"
)

func TestHitProbabilityFractions(t *testing.T) {
	tests := []struct {
		target int
		want   float64
	}{
		{2, 1.0},
		{3, 35.0 / 36},
		{7, 21.0 / 36},
		{10, 6.0 / 36},
		{12, 1.0 / 36},
		{13, 0},
		{20, 0},
	}
	for _, tt := range tests {
		if got := HitProbability(tt.target); got != tt.want {
			t.Errorf("HitProbability(%d) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestHeatModifier(t *testing.T) {
	tests := []struct{ heat, want int }{
		{0, 0}, {4, 0}, {5, 1}, {7, 1}, {8, 2}, {12, 2}, {13, 3}, {30, 3},
	}
	for _, tt := range tests {
		if got := HeatModifier(tt.heat); got != tt.want {
			t.Errorf("HeatModifier(%d) = %d, want %d", tt.heat, got, tt.want)
		}
	}
}

func TestAttackerMovementMod(t *testing.T) {
	tests := []struct {
		mode movement.Mode
		want int
	}{
		{movement.ModeStationary, 0},
		{movement.ModeWalk, 1},
		{movement.ModeRun, 2},
		{movement.ModeJump, 3},
	}
	for _, tt := range tests {
		if got := AttackerMovementMod(tt.mode); got != tt.want {
			t.Errorf("AttackerMovementMod(%s) = %d, want %d", tt.mode, got, tt.want)
		}
	}
}

func TestBuildToHitAccumulation(t *testing.T) {
	attacker := &unit.Unit{Gunnery: 4}
	w := unit.Weapon{ShortRange: 3, MediumRange: 6, LongRange: 15}

	// Walking attacker, target ran 6 hexes, medium range, heat 5.
	tmm := movement.TMM(movement.ModeRun, 6)
	th, bracket := BuildToHit(attacker, w, 5, movement.ModeWalk, tmm, 5)
	if bracket != RangeMedium {
		t.Fatalf("bracket = %v, want medium", bracket)
	}
	if got := th.Total(); got != 10 {
		t.Fatalf("Total = %d (%+v), want 10", got, th)
	}
	if th.Impossible() {
		t.Fatal("10 should not be impossible")
	}
	if got := th.Probability(); got != 6.0/36 {
		t.Errorf("Probability = %v, want 6/36", got)
	}
}

func TestImpossibleShot(t *testing.T) {
	th := ToHit{Gunnery: 5, RangeMod: 6, TargetTMM: 3}
	if !th.Impossible() {
		t.Fatalf("total %d should be impossible", th.Total())
	}
	if p := th.Probability(); p != 0 {
		t.Errorf("impossible shot probability = %v, want 0", p)
	}
}

func TestMinimumRangePenalty(t *testing.T) {
	w := unit.Weapon{MinRange: 6, ShortRange: 7, MediumRange: 14, LongRange: 21}
	tests := []struct{ dist, want int }{
		{1, 6}, {4, 3}, {6, 1}, {7, 0}, {15, 0},
	}
	for _, tt := range tests {
		if got := MinimumRangePenalty(w, tt.dist); got != tt.want {
			t.Errorf("MinimumRangePenalty(dist=%d) = %d, want %d", tt.dist, got, tt.want)
		}
	}
}

func TestRangeBrackets(t *testing.T) {
	generic := []struct {
		dist int
		want RangeBracket
	}{
		{0, RangeShort}, {3, RangeShort}, {4, RangeMedium}, {6, RangeMedium},
		{7, RangeLong}, {15, RangeLong}, {16, RangeExtreme},
	}
	for _, tt := range generic {
		if got := GenericBracket(tt.dist); got != tt.want {
			t.Errorf("GenericBracket(%d) = %v, want %v", tt.dist, got, tt.want)
		}
	}

	mods := map[RangeBracket]int{RangeShort: 0, RangeMedium: 2, RangeLong: 4, RangeExtreme: 6}
	for b, want := range mods {
		if got := BracketModifier(b); got != want {
			t.Errorf("BracketModifier(%v) = %d, want %d", b, got, want)
		}
	}

	w := unit.Weapon{ShortRange: 3, MediumRange: 6, LongRange: 9}
	if got := WeaponBracket(w, 10); got != OutOfRange {
		t.Errorf("beyond long range = %v, want out of range", got)
	}
	if got := WeaponBracket(w, 5); got != RangeMedium {
		t.Errorf("WeaponBracket(5) = %v, want medium", got)
	}
}
