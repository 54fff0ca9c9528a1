package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/combat"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/movement"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/session"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/unit"
)

func fixtureSession(t *testing.T) *session.Session {
	t.Helper()

	plates := func() map[unit.Location]unit.LocationPlate {
		m := map[unit.Location]unit.LocationPlate{}
		for _, loc := range unit.Locations {
			m[loc] = unit.LocationPlate{Armor: 8, Structure: 6}
		}
		return m
	}
	weapon := unit.Weapon{
		ID: "ml", Name: "Medium Laser", Damage: 5, Heat: 3,
		Category: unit.CategoryEnergy, ShortRange: 3, MediumRange: 6, LongRange: 9,
	}

	grid := hexmap.NewGrid(10, 10)
	g, err := grid.SetTerrain(hexmap.Coord{Q: 4, R: 2}, hexmap.ParseTerrain("light_woods"))
	if err != nil {
		t.Fatal(err)
	}
	g, err = g.SetElevation(hexmap.Coord{Q: 5, R: 5}, 2)
	if err != nil {
		t.Fatal(err)
	}

	cfg := session.Config{
		Name: "store round trip",
		Grid: g,
		Units: []*unit.Unit{
			{ID: "a1", Name: "Alpha", Side: "alpha", Gunnery: 4, Piloting: 5,
				WalkMP: 4, HeatSinks: 10, Weapons: []unit.Weapon{weapon}, Plates: plates()},
			{ID: "b1", Name: "Bravo", Side: "bravo", Gunnery: 4, Piloting: 5,
				WalkMP: 4, HeatSinks: 10, Weapons: []unit.Weapon{weapon}, Plates: plates()},
		},
		Placements: map[string]session.Placement{
			"a1": {Coord: hexmap.Coord{Q: 2, R: 5}, Facing: 2},
			"b1": {Coord: hexmap.Coord{Q: 6, R: 5}, Facing: 5},
		},
	}
	s, err := session.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// driveTurn pushes the fixture through movement and one resolved attack so
// the log carries every payload shape the store must round-trip.
func driveTurn(t *testing.T, s *session.Session) {
	t.Helper()
	must := func(_ session.Event, err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.Start())
	must(s.RollInitiative(&combat.ScriptedRoller{Rolls: []int{3, 3, 5, 6}}))
	must(s.AdvancePhase())
	must(s.DeclareMovement("a1", hexmap.Coord{Q: 3, R: 5}, 2, movement.ModeWalk))
	must(s.LockMovement("a1"))
	must(s.AdvancePhase())
	must(s.DeclareAttack("a1", "b1", "ml"))
	must(s.LockAttack("a1"))
	if _, err := s.ResolveAttack("a1", &combat.ScriptedRoller{Rolls: []int{5, 4, 3, 4}}); err != nil {
		t.Fatal(err)
	}
	must(s.AdvancePhase())
	must(s.AdvancePhase())
}

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "battles.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	s := fixtureSession(t)
	driveTurn(t, s)

	if err := st.SaveSession(ctx, s); err != nil {
		t.Fatal(err)
	}

	loaded, err := st.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ID != s.ID {
		t.Errorf("id = %s, want %s", loaded.ID, s.ID)
	}
	if len(loaded.Events) != len(s.Events) {
		t.Fatalf("events = %d, want %d", len(loaded.Events), len(s.Events))
	}
	for i, e := range loaded.Events {
		if e.Type != s.Events[i].Type || e.Seq != s.Events[i].Seq {
			t.Errorf("event %d = %s/%d, want %s/%d", i, e.Type, e.Seq, s.Events[i].Type, s.Events[i].Seq)
		}
	}

	// The rehydrated log folds to the same state as the live session.
	a, _ := json.Marshal(loaded.State())
	b, _ := json.Marshal(s.State())
	if string(a) != string(b) {
		t.Errorf("rehydrated state diverges:\n%s\n%s", a, b)
	}

	// The board terrain survives the map column.
	hex, ok := loaded.Config.Grid.At(hexmap.Coord{Q: 4, R: 2})
	if !ok {
		t.Fatal("terrain hex missing after load")
	}
	if has, _ := hex.HasTerrain(hexmap.TerrainLightWoods); !has {
		t.Error("light woods lost in round trip")
	}
	if hex, _ := loaded.Config.Grid.At(hexmap.Coord{Q: 5, R: 5}); hex.Elevation != 2 {
		t.Errorf("elevation = %d, want 2", hex.Elevation)
	}
}

func TestSQLiteSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	s := fixtureSession(t)
	driveTurn(t, s)

	if err := st.SaveSession(ctx, s); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveSession(ctx, s); err != nil {
		t.Fatalf("second save: %v", err)
	}

	recs, err := st.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("sessions = %d, want 1", len(recs))
	}
	if recs[0].EventCount != len(s.Events) {
		t.Errorf("event count = %d, want %d", recs[0].EventCount, len(s.Events))
	}
}

func TestSQLiteAppendEvents(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	s := fixtureSession(t)
	if err := st.SaveSession(ctx, s); err != nil {
		t.Fatal(err)
	}
	saved := len(s.Events)

	driveTurn(t, s)
	if err := st.AppendEvents(ctx, s.ID, s.Events[saved:]); err != nil {
		t.Fatal(err)
	}
	// Re-appending the same slice is a no-op.
	if err := st.AppendEvents(ctx, s.ID, s.Events[saved:]); err != nil {
		t.Fatal(err)
	}

	loaded, err := st.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Events) != len(s.Events) {
		t.Errorf("events = %d, want %d", len(loaded.Events), len(s.Events))
	}
}

func TestLoadUnknownSession(t *testing.T) {
	st := openTestStore(t)
	s := fixtureSession(t)
	if _, err := st.LoadSession(context.Background(), s.ID); err == nil {
		t.Fatal("expected error for unknown session")
	}
}
