package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/store"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/unit"
)

func testServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewSessionHandler(st).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func createPayload() map[string]any {
	plates := map[unit.Location]unit.LocationPlate{}
	for _, loc := range unit.Locations {
		plates[loc] = unit.LocationPlate{Armor: 8, Structure: 6}
	}
	weapon := unit.Weapon{
		ID: "ml", Name: "Medium Laser", Damage: 5, Heat: 3,
		Category: unit.CategoryEnergy, ShortRange: 3, MediumRange: 6, LongRange: 9,
	}
	return map[string]any{
		"name": "api smoke",
		"map":  map[string]any{"width": 10, "height": 10},
		"units": []*unit.Unit{
			{ID: "a1", Name: "Alpha", Side: "alpha", Gunnery: 4, Piloting: 5,
				WalkMP: 4, HeatSinks: 10, Weapons: []unit.Weapon{weapon}, Plates: plates},
			{ID: "b1", Name: "Bravo", Side: "bravo", Gunnery: 4, Piloting: 5,
				WalkMP: 4, HeatSinks: 10, Weapons: []unit.Weapon{weapon}, Plates: plates},
		},
		"placements": map[string]any{
			"a1": map[string]any{"coord": map[string]int{"q": 2, "r": 5}, "facing": 2},
			"b1": map[string]any{"coord": map[string]int{"q": 6, "r": 5}, "facing": 5},
		},
	}
}

func post(t *testing.T, srv *httptest.Server, path string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var out map[string]json.RawMessage
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSessionAPIFlow(t *testing.T) {
	srv := testServer(t, nil)

	resp, out := post(t, srv, "/api/sessions", createPayload())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d", resp.StatusCode)
	}
	var id string
	if err := json.Unmarshal(out["id"], &id); err != nil {
		t.Fatal(err)
	}
	base := "/api/sessions/" + id

	if resp, _ := post(t, srv, base+"/start", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("start = %d", resp.StatusCode)
	}
	// Second start conflicts.
	if resp, _ := post(t, srv, base+"/start", nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("double start = %d, want 409", resp.StatusCode)
	}

	if resp, _ := post(t, srv, base+"/initiative", map[string]any{"seed": 7}); resp.StatusCode != http.StatusOK {
		t.Fatalf("initiative = %d", resp.StatusCode)
	}
	if resp, _ := post(t, srv, base+"/advance-phase", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("advance = %d", resp.StatusCode)
	}

	// Movement: declare, then lock.
	move := map[string]any{"unitId": "a1", "to": map[string]int{"q": 3, "r": 5}, "facing": 2, "mode": "walk"}
	if resp, _ := post(t, srv, base+"/move", move); resp.StatusCode != http.StatusOK {
		t.Fatalf("move = %d", resp.StatusCode)
	}
	if resp, _ := post(t, srv, base+"/move/lock", map[string]any{"unitId": "a1"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("move lock = %d", resp.StatusCode)
	}
	// Locking again conflicts.
	if resp, _ := post(t, srv, base+"/move/lock", map[string]any{"unitId": "a1"}); resp.StatusCode != http.StatusConflict {
		t.Fatalf("double lock = %d, want 409", resp.StatusCode)
	}

	if resp, _ := post(t, srv, base+"/advance-phase", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("advance = %d", resp.StatusCode)
	}

	// Attack protocol with a fixed seed.
	attack := map[string]any{"attackerId": "a1", "targetId": "b1", "weaponId": "ml"}
	if resp, _ := post(t, srv, base+"/attack", attack); resp.StatusCode != http.StatusOK {
		t.Fatalf("attack = %d", resp.StatusCode)
	}
	if resp, _ := post(t, srv, base+"/attack/lock", map[string]any{"attackerId": "a1"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("attack lock = %d", resp.StatusCode)
	}
	if resp, _ := post(t, srv, base+"/resolve", map[string]any{"seed": 42}); resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve = %d", resp.StatusCode)
	}

	// Queries.
	for _, path := range []string{base, base + "/events", base + "/log", base + "/replay?seq=3", base + "/replay?turn=1"} {
		if resp := get(t, srv, path); resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d", path, resp.StatusCode)
		}
	}
	if resp := get(t, srv, base+"/replay"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("replay without selector = %d, want 400", resp.StatusCode)
	}
	if resp := get(t, srv, base+"/units/ghost/targets"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown unit targets = %d, want 404", resp.StatusCode)
	}
	if resp := get(t, srv, base+"/units/a1/destinations?mode=walk"); resp.StatusCode != http.StatusOK {
		t.Errorf("destinations = %d", resp.StatusCode)
	}
}

func TestSessionAPIPersistsAcrossHandlers(t *testing.T) {
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	srv := testServer(t, st)
	resp, out := post(t, srv, "/api/sessions", createPayload())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d", resp.StatusCode)
	}
	var id string
	json.Unmarshal(out["id"], &id)

	if resp, _ := post(t, srv, "/api/sessions/"+id+"/start", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("start = %d", resp.StatusCode)
	}

	// A fresh handler over the same store serves the session from disk.
	srv2 := testServer(t, st)
	resp2 := get(t, srv2, "/api/sessions/"+id)
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("reload = %d", resp2.StatusCode)
	}
	var body struct {
		State struct {
			Status string `json:"status"`
		} `json:"state"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.State.Status != "active" {
		t.Errorf("status = %q, want active", body.State.Status)
	}

	if resp := get(t, srv2, fmt.Sprintf("/api/sessions/%s", "00000000-0000-0000-0000-000000000000")); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown session = %d, want 404", resp.StatusCode)
	}
}
