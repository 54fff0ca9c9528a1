package hexmap

import (
	"strconv"
	"strings"
)

// ─── Terrain ────────────────────────────────────────────────────────────────

type TerrainType int

const (
	TerrainClear TerrainType = iota
	TerrainLightWoods
	TerrainHeavyWoods
	TerrainWater // level = depth
	TerrainRough
	TerrainPavement
	TerrainRoad
	TerrainBuilding // level = building height
	TerrainSand
	TerrainSnow
	TerrainIce
	TerrainSwamp
	TerrainMud
)

var terrainNames = map[TerrainType]string{
	TerrainClear:      "clear",
	TerrainLightWoods: "light_woods",
	TerrainHeavyWoods: "heavy_woods",
	TerrainWater:      "water",
	TerrainRough:      "rough",
	TerrainPavement:   "pavement",
	TerrainRoad:       "road",
	TerrainBuilding:   "building",
	TerrainSand:       "sand",
	TerrainSnow:       "snow",
	TerrainIce:        "ice",
	TerrainSwamp:      "swamp",
	TerrainMud:        "mud",
}

func (t TerrainType) String() string {
	if s, ok := terrainNames[t]; ok {
		return s
	}
	return "clear"
}

// Blocks reports whether this terrain type blocks line of sight.
// Heavy woods and buildings block; light woods, water, pavement, sand,
// snow and ice do not.
func (t TerrainType) Blocks() bool {
	return t == TerrainHeavyWoods || t == TerrainBuilding
}

type TerrainFeature struct {
	Type  TerrainType `json:"type"`
	Level int         `json:"level"`
}

// Height returns the vertical extent a feature adds to its hex for
// sightline purposes: woods rise 2 levels, buildings their own level.
func (f TerrainFeature) Height() int {
	switch f.Type {
	case TerrainLightWoods, TerrainHeavyWoods:
		return 2
	case TerrainBuilding:
		return f.Level
	default:
		return 0
	}
}

// ─── Terrain descriptor parsing ─────────────────────────────────────────────
// Accepts a plain token ("heavy_woods") or a structured feature list
// ("woods:2;water:1"). Unknown tokens are skipped, never fatal.

func ParseTerrain(desc string) []TerrainFeature {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil
	}

	var out []TerrainFeature
	for _, tok := range strings.Split(desc, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if f, ok := parseTerrainToken(tok); ok {
			out = append(out, f)
		}
	}
	return out
}

func parseTerrainToken(tok string) (TerrainFeature, bool) {
	// Format: "type", "type:level" or "type:level:extra" (extras ignored).
	parts := strings.Split(tok, ":")
	name := strings.ToLower(strings.TrimSpace(parts[0]))
	level := 1
	if len(parts) >= 2 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			level = n
		}
	}

	switch name {
	case "clear":
		return TerrainFeature{Type: TerrainClear, Level: 0}, true
	case "woods":
		if level >= 2 {
			return TerrainFeature{Type: TerrainHeavyWoods, Level: level}, true
		}
		return TerrainFeature{Type: TerrainLightWoods, Level: 1}, true
	case "light_woods":
		return TerrainFeature{Type: TerrainLightWoods, Level: 1}, true
	case "heavy_woods":
		return TerrainFeature{Type: TerrainHeavyWoods, Level: 2}, true
	case "water":
		return TerrainFeature{Type: TerrainWater, Level: level}, true
	case "rough":
		return TerrainFeature{Type: TerrainRough, Level: level}, true
	case "pavement":
		return TerrainFeature{Type: TerrainPavement, Level: level}, true
	case "road":
		return TerrainFeature{Type: TerrainRoad, Level: level}, true
	case "building", "bldg_elev":
		return TerrainFeature{Type: TerrainBuilding, Level: level}, true
	case "sand":
		return TerrainFeature{Type: TerrainSand, Level: level}, true
	case "snow":
		return TerrainFeature{Type: TerrainSnow, Level: level}, true
	case "ice":
		return TerrainFeature{Type: TerrainIce, Level: level}, true
	case "swamp":
		return TerrainFeature{Type: TerrainSwamp, Level: level}, true
	case "mud":
		return TerrainFeature{Type: TerrainMud, Level: level}, true
	default:
		// ground_fluff, foliage_elev, bridge, etc. — cosmetic, skip
		return TerrainFeature{}, false
	}
}
