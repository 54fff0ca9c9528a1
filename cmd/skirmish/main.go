// Command skirmish runs a seeded, scripted battle through the session
// engine: both sides close to range and trade fire until one side is
// destroyed or the turn limit runs out. The full transcript prints to
// stdout; -db persists the event log for later replay.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/combat"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/movement"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/session"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/store"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/unit"
)

type rosterFile struct {
	Name       string                       `json:"name"`
	Width      int                          `json:"width,omitempty"`
	Height     int                          `json:"height,omitempty"`
	Units      []*unit.Unit                 `json:"units"`
	Placements map[string]session.Placement `json:"placements"`
}

func main() {
	rosterPath := flag.String("roster", "", "roster JSON (units + placements); omit for the built-in demo lance")
	boardPath := flag.String("board", "", "optional .board map file")
	seed := flag.Uint64("seed", 1, "dice seed; same seed, same battle")
	maxTurns := flag.Int("turns", 20, "turn limit")
	dbPath := flag.String("db", "", "optional SQLite path to persist the event log")
	flag.Parse()

	roster, err := loadRoster(*rosterPath)
	if err != nil {
		log.Fatalf("load roster: %v", err)
	}

	grid, err := buildGrid(roster, *boardPath)
	if err != nil {
		log.Fatalf("build map: %v", err)
	}

	s, err := session.New(session.Config{
		Name:       roster.Name,
		Grid:       grid,
		Units:      roster.Units,
		Placements: roster.Placements,
	})
	if err != nil {
		log.Fatalf("create session: %v", err)
	}

	roller := combat.NewSeededRoller(*seed)
	if err := runBattle(s, roller, *maxTurns); err != nil {
		log.Fatalf("battle: %v", err)
	}

	for _, line := range s.GameLog() {
		fmt.Println(line)
	}

	if *dbPath != "" {
		st, err := store.OpenSQLite(*dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer st.Close()
		if err := st.SaveSession(context.Background(), s); err != nil {
			log.Fatalf("save session: %v", err)
		}
		log.Printf("Saved session %s (%d events) to %s", s.ID, len(s.Events), *dbPath)
	}
}

func loadRoster(path string) (*rosterFile, error) {
	if path == "" {
		return demoRoster(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var roster rosterFile
	if err := json.Unmarshal(raw, &roster); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(roster.Units) == 0 {
		return nil, fmt.Errorf("%s: no units", path)
	}
	return &roster, nil
}

func buildGrid(roster *rosterFile, boardPath string) (*hexmap.Grid, error) {
	if boardPath != "" {
		return hexmap.LoadBoard(boardPath)
	}
	w, h := roster.Width, roster.Height
	if w <= 0 {
		w = 15
	}
	if h <= 0 {
		h = 17
	}
	return hexmap.NewGrid(w, h), nil
}

// ─── Battle script ──────────────────────────────────────────────────────────

// runBattle drives full turns through the declare/lock/resolve protocol:
// every unit closes on its nearest enemy and fires what it can.
func runBattle(s *session.Session, roller combat.Roller, maxTurns int) error {
	if _, err := s.Start(); err != nil {
		return err
	}

	for turn := 1; turn <= maxTurns; turn++ {
		if _, err := s.RollInitiative(roller); err != nil {
			return err
		}
		if _, err := s.AdvancePhase(); err != nil { // movement
			return err
		}
		moveAll(s)
		if _, err := s.AdvancePhase(); err != nil { // weapon attack
			return err
		}
		declareAll(s)
		if _, err := s.ResolveAllAttacks(roller); err != nil {
			return err
		}
		if _, err := s.AdvancePhase(); err != nil { // heat
			return err
		}
		if _, err := s.AdvancePhase(); err != nil { // end
			return err
		}

		if winner, over := battleOver(s); over {
			_, err := s.End(winner, "destruction")
			return err
		}
		if _, err := s.AdvancePhase(); err != nil { // next turn
			return err
		}
	}

	_, err := s.End("", "turn limit")
	return err
}

func livingUnits(s *session.Session) []string {
	st := s.State()
	var ids []string
	for id, us := range st.Units {
		if !us.Condition.Destroyed {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func side(s *session.Session, id string) string {
	for _, u := range s.Config.Units {
		if u.ID == id {
			return u.Side
		}
	}
	return ""
}

// nearestEnemy returns the closest living opposing unit's position.
func nearestEnemy(s *session.Session, id string) (hexmap.Coord, bool) {
	st := s.State()
	me := st.Units[id]
	best, found := hexmap.Coord{}, false
	bestDist := 0
	for _, other := range livingUnits(s) {
		if other == id || side(s, other) == side(s, id) {
			continue
		}
		d := hexmap.Distance(me.Position, st.Units[other].Position)
		if !found || d < bestDist {
			best, bestDist, found = st.Units[other].Position, d, true
		}
	}
	return best, found
}

// moveAll walks every unit toward its nearest enemy, stopping at the
// reachable hex that closes the most distance.
func moveAll(s *session.Session) {
	for _, id := range livingUnits(s) {
		enemy, ok := nearestEnemy(s, id)
		if !ok {
			continue
		}
		st := s.State()
		here := st.Units[id].Position

		dests, err := s.ValidDestinations(id, movement.ModeWalk)
		if err != nil {
			continue
		}
		best := here
		bestDist := hexmap.Distance(here, enemy)
		for _, d := range dests {
			// Never stand on top of the target hex ring.
			if dist := hexmap.Distance(d, enemy); dist >= 1 && dist < bestDist {
				best, bestDist = d, dist
			}
		}

		facing := hexmap.DirectionTo(best, enemy)
		mode := movement.ModeWalk
		if best == here {
			mode = movement.ModeStationary
		}
		if _, err := s.DeclareMovement(id, best, facing, mode); err != nil {
			continue
		}
		s.LockMovement(id)
	}
}

// declareAll locks the heaviest in-range attack per unit, skipping units
// with nothing to shoot.
func declareAll(s *session.Session) {
	for _, id := range livingUnits(s) {
		targets, err := s.GetValidTargets(id)
		if err != nil || len(targets) == 0 {
			continue
		}
		u := unitByID(s, id)
		declared := false
		for _, target := range targets {
			for _, w := range bestFirst(u.Weapons) {
				if _, err := s.DeclareAttack(id, target, w.ID); err == nil {
					declared = true
					break
				}
			}
			if declared {
				break
			}
		}
		if declared {
			s.LockAttack(id)
		}
	}
}

func unitByID(s *session.Session, id string) *unit.Unit {
	for _, u := range s.Config.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// bestFirst orders weapons by volley damage, heaviest first.
func bestFirst(weapons []unit.Weapon) []unit.Weapon {
	out := append([]unit.Weapon(nil), weapons...)
	sort.SliceStable(out, func(i, j int) bool {
		return volleyDamage(out[i]) > volleyDamage(out[j])
	})
	return out
}

func volleyDamage(w unit.Weapon) int {
	if w.Cluster {
		return w.Damage * w.ClusterSize
	}
	return w.Damage
}

// battleOver reports whether at most one side still has living units.
func battleOver(s *session.Session) (string, bool) {
	sides := map[string]bool{}
	for _, id := range livingUnits(s) {
		sides[side(s, id)] = true
	}
	if len(sides) > 1 {
		return "", false
	}
	for winner := range sides {
		return winner, true
	}
	return "", true
}

// ─── Demo lance ─────────────────────────────────────────────────────────────

func demoRoster() *rosterFile {
	plates := func(armor, structure int) map[unit.Location]unit.LocationPlate {
		m := map[unit.Location]unit.LocationPlate{}
		for _, loc := range unit.Locations {
			p := unit.LocationPlate{Armor: armor, Structure: structure}
			switch loc {
			case unit.LocCenterTorso, unit.LocLeftTorso, unit.LocRightTorso:
				p.RearArmor = armor / 2
			case unit.LocHead:
				p = unit.LocationPlate{Armor: 9, Structure: 3}
			}
			m[loc] = p
		}
		return m
	}
	laser := unit.Weapon{
		ID: "ml", Name: "Medium Laser", Damage: 5, Heat: 3,
		Category: unit.CategoryEnergy, ShortRange: 3, MediumRange: 6, LongRange: 9,
	}
	ac10 := unit.Weapon{
		ID: "ac10", Name: "AC/10", Damage: 10, Heat: 3,
		Category: unit.CategoryBallistic, ShortRange: 5, MediumRange: 10, LongRange: 15,
	}
	lrm10 := unit.Weapon{
		ID: "lrm10", Name: "LRM 10", Damage: 1, Heat: 4,
		Category: unit.CategoryMissile, MinRange: 6, ShortRange: 7, MediumRange: 14, LongRange: 21,
		Cluster: true, ClusterSize: 10,
	}

	return &rosterFile{
		Name:   "demo skirmish",
		Width:  15,
		Height: 17,
		Units: []*unit.Unit{
			{ID: "alpha-1", Name: "Ronin", Side: "alpha", Tonnage: 55,
				Gunnery: 4, Piloting: 5, WalkMP: 5, JumpMP: 3, HeatSinks: 10,
				Weapons: []unit.Weapon{ac10, laser}, Plates: plates(16, 10)},
			{ID: "alpha-2", Name: "Drifter", Side: "alpha", Tonnage: 40,
				Gunnery: 4, Piloting: 5, WalkMP: 6, HeatSinks: 10,
				Weapons: []unit.Weapon{lrm10, laser}, Plates: plates(12, 8)},
			{ID: "bravo-1", Name: "Warden", Side: "bravo", Tonnage: 60,
				Gunnery: 3, Piloting: 4, WalkMP: 4, HeatSinks: 12,
				Weapons: []unit.Weapon{ac10, laser, laser}, Plates: plates(18, 11)},
			{ID: "bravo-2", Name: "Vagrant", Side: "bravo", Tonnage: 35,
				Gunnery: 5, Piloting: 5, WalkMP: 6, JumpMP: 5, HeatSinks: 10,
				Weapons: []unit.Weapon{laser, laser}, Plates: plates(10, 7)},
		},
		Placements: map[string]session.Placement{
			"alpha-1": {Coord: hexmap.Coord{Q: 6, R: 1}, Facing: 3},
			"alpha-2": {Coord: hexmap.Coord{Q: 8, R: 1}, Facing: 3},
			"bravo-1": {Coord: hexmap.Coord{Q: 6, R: 15}, Facing: 0},
			"bravo-2": {Coord: hexmap.Coord{Q: 8, R: 15}, Facing: 0},
		},
	}
}
