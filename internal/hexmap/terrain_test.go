package hexmap

import "testing"

func TestParseTerrain(t *testing.T) {
	tests := []struct {
		desc string
		want []TerrainFeature
	}{
		{"", nil},
		{"clear", []TerrainFeature{{TerrainClear, 0}}},
		{"woods:1", []TerrainFeature{{TerrainLightWoods, 1}}},
		{"woods:2", []TerrainFeature{{TerrainHeavyWoods, 2}}},
		{"heavy_woods", []TerrainFeature{{TerrainHeavyWoods, 2}}},
		{"water:1;woods:1", []TerrainFeature{{TerrainWater, 1}, {TerrainLightWoods, 1}}},
		{"building:3", []TerrainFeature{{TerrainBuilding, 3}}},
		{"ground_fluff:1", nil},
		{"snow; ice", []TerrainFeature{{TerrainSnow, 1}, {TerrainIce, 1}}},
	}
	for _, tt := range tests {
		got := ParseTerrain(tt.desc)
		if len(got) != len(tt.want) {
			t.Errorf("ParseTerrain(%q) = %v, want %v", tt.desc, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseTerrain(%q)[%d] = %v, want %v", tt.desc, i, got[i], tt.want[i])
			}
		}
	}
}

func TestTerrainBlocks(t *testing.T) {
	blocking := []TerrainType{TerrainHeavyWoods, TerrainBuilding}
	open := []TerrainType{
		TerrainClear, TerrainLightWoods, TerrainWater, TerrainPavement,
		TerrainSand, TerrainSnow, TerrainIce, TerrainRoad,
	}
	for _, tt := range blocking {
		if !tt.Blocks() {
			t.Errorf("%v should block LOS", tt)
		}
	}
	for _, tt := range open {
		if tt.Blocks() {
			t.Errorf("%v should not block LOS", tt)
		}
	}
}
