package combat

import (
	"testing"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/unit"
)

func TestClusterTableVectors(t *testing.T) {
	tests := []struct{ roll, size, want int }{
		{7, 10, 6},
		{12, 20, 20},
		{2, 2, 1},
		{7, 2, 1},
		{12, 2, 2},
		{2, 20, 6},
		{7, 15, 9},
		{11, 6, 6},
	}
	for _, tt := range tests {
		if got := ClusterHitsForRoll(tt.roll, tt.size); got != tt.want {
			t.Errorf("ClusterHitsForRoll(%d, %d) = %d, want %d", tt.roll, tt.size, got, tt.want)
		}
	}
}

func TestClusterSizeSnapping(t *testing.T) {
	// Odd sizes snap up to the next recognized column; oversized caps at 20.
	tests := []struct{ size, equalTo int }{
		{3, 4},
		{7, 10},
		{12, 15},
		{25, 20},
	}
	for _, tt := range tests {
		for roll := 2; roll <= 12; roll++ {
			if got, want := ClusterHitsForRoll(roll, tt.size), ClusterHitsForRoll(roll, tt.equalTo); got != want {
				t.Errorf("size %d roll %d = %d, want column of size %d (%d)", tt.size, roll, got, tt.equalTo, want)
			}
		}
	}
}

func TestClusterHitsNeverExceedSize(t *testing.T) {
	for _, size := range clusterSizes {
		for roll := 2; roll <= 12; roll++ {
			if got := ClusterHitsForRoll(roll, size); got < 1 || got > size {
				t.Errorf("roll %d size %d yields %d hits", roll, size, got)
			}
		}
	}
}

func TestGroupHitsAggregation(t *testing.T) {
	// Five hits, scripted to land 7, 7, 4, 7, 12.
	r := &ScriptedRoller{Rolls: []int{3, 4, 3, 4, 2, 2, 3, 4, 6, 6}}
	groups := GroupHits(r, 5, 2, false)

	if len(groups) != 3 {
		t.Fatalf("groups = %+v, want 3 entries", groups)
	}
	if groups[0].Location != unit.LocCenterTorso || groups[0].Hits != 3 || groups[0].Damage != 6 {
		t.Errorf("center torso group = %+v, want 3 hits / 6 damage", groups[0])
	}
	if groups[1].Location != unit.LocRightArm || groups[1].Hits != 1 {
		t.Errorf("right arm group = %+v", groups[1])
	}
	if groups[2].Location != unit.LocHead || !groups[2].Critical {
		t.Errorf("head group = %+v, want critical natural 12", groups[2])
	}
}

func TestGroupHitsRearRenamesTorsos(t *testing.T) {
	// Single hit on 7 against the rear arc.
	r := &ScriptedRoller{Rolls: []int{3, 4}}
	groups := GroupHits(r, 1, 5, true)
	if len(groups) != 1 || groups[0].Location != unit.LocCenterTorso.Rear() {
		t.Fatalf("rear group = %+v, want center_torso-rear", groups)
	}
}
