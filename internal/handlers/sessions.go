// Package handlers exposes the battle engine over HTTP: session lifecycle,
// the declare/lock/resolve protocol, and log/replay queries. Handlers hold a
// per-session mutex; the engine itself is single-threaded by design.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/combat"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/movement"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/session"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/store"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/unit"
)

type SessionHandler struct {
	Store store.Store // optional; nil keeps sessions in memory only

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
}

type sessionEntry struct {
	mu    sync.Mutex
	s     *session.Session
	saved int // events already persisted
}

func NewSessionHandler(st store.Store) *SessionHandler {
	return &SessionHandler{
		Store:    st,
		sessions: map[uuid.UUID]*sessionEntry{},
	}
}

// Register binds every session route onto the mux.
func (h *SessionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.Create)
	mux.HandleFunc("GET /api/sessions", h.List)
	mux.HandleFunc("GET /api/sessions/{id}", h.Get)
	mux.HandleFunc("GET /api/sessions/{id}/events", h.Events)
	mux.HandleFunc("GET /api/sessions/{id}/log", h.Log)
	mux.HandleFunc("GET /api/sessions/{id}/replay", h.Replay)
	mux.HandleFunc("POST /api/sessions/{id}/start", h.Start)
	mux.HandleFunc("POST /api/sessions/{id}/end", h.End)
	mux.HandleFunc("POST /api/sessions/{id}/advance-phase", h.AdvancePhase)
	mux.HandleFunc("POST /api/sessions/{id}/initiative", h.Initiative)
	mux.HandleFunc("POST /api/sessions/{id}/move", h.DeclareMove)
	mux.HandleFunc("POST /api/sessions/{id}/move/lock", h.LockMove)
	mux.HandleFunc("POST /api/sessions/{id}/attack", h.DeclareAttack)
	mux.HandleFunc("POST /api/sessions/{id}/attack/lock", h.LockAttack)
	mux.HandleFunc("POST /api/sessions/{id}/resolve", h.Resolve)
	mux.HandleFunc("GET /api/sessions/{id}/units/{unitID}/destinations", h.Destinations)
	mux.HandleFunc("GET /api/sessions/{id}/units/{unitID}/targets", h.Targets)
}

// ─── Session creation ───────────────────────────────────────────────────────

type hexSpec struct {
	Q         int    `json:"q"`
	R         int    `json:"r"`
	Elevation int    `json:"elevation,omitempty"`
	Terrain   string `json:"terrain,omitempty"`
}

type mapSpec struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Hexes  []hexSpec `json:"hexes,omitempty"`
}

type createSessionRequest struct {
	Name       string                       `json:"name"`
	Map        *mapSpec                     `json:"map,omitempty"`
	Board      string                       `json:"board,omitempty"` // board-file text, alternative to map
	Units      []*unit.Unit                 `json:"units"`
	Placements map[string]session.Placement `json:"placements"`
}

func buildGrid(req createSessionRequest) (*hexmap.Grid, error) {
	if req.Board != "" {
		return hexmap.ParseBoard(strings.NewReader(req.Board))
	}
	if req.Map == nil {
		return nil, fmt.Errorf("either map or board is required")
	}
	hexes := make([]hexmap.Hex, 0, len(req.Map.Hexes))
	for _, hs := range req.Map.Hexes {
		hexes = append(hexes, hexmap.Hex{
			Coord:     hexmap.Coord{Q: hs.Q, R: hs.R},
			Elevation: hs.Elevation,
			Terrain:   hexmap.ParseTerrain(hs.Terrain),
		})
	}
	g := hexmap.FromHexes(req.Map.Width, req.Map.Height, hexes)
	if g.Width <= 0 || g.Height <= 0 {
		return nil, fmt.Errorf("bad map size %dx%d", g.Width, g.Height)
	}
	return g, nil
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	grid, err := buildGrid(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := session.New(session.Config{
		Name:       req.Name,
		Grid:       grid,
		Units:      req.Units,
		Placements: req.Placements,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry := &sessionEntry{s: s}
	if h.Store != nil {
		if err := h.Store.SaveSession(r.Context(), s); err != nil {
			http.Error(w, "Failed to persist session", http.StatusInternalServerError)
			return
		}
		entry.saved = len(s.Events)
	}

	h.mu.Lock()
	h.sessions[s.ID] = entry
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"id": s.ID, "state": s.State()})
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store != nil {
		recs, err := h.Store.ListSessions(r.Context())
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if recs == nil {
			recs = []store.SessionRecord{}
		}
		writeJSON(w, recs)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	recs := []store.SessionRecord{}
	for id, entry := range h.sessions {
		recs = append(recs, store.SessionRecord{
			ID:         id,
			Name:       entry.s.Config.Name,
			EventCount: len(entry.s.Events),
		})
	}
	writeJSON(w, recs)
}

// ─── Session lookup ─────────────────────────────────────────────────────────

func (h *SessionHandler) entry(r *http.Request) (*sessionEntry, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, fmt.Errorf("invalid session id")
	}

	h.mu.Lock()
	entry, ok := h.sessions[id]
	h.mu.Unlock()
	if ok {
		return entry, nil
	}

	if h.Store == nil {
		return nil, fmt.Errorf("session %s not found", id)
	}
	s, err := h.Store.LoadSession(r.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("session %s not found", id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.sessions[id]; ok {
		return existing, nil
	}
	entry = &sessionEntry{s: s, saved: len(s.Events)}
	h.sessions[id] = entry
	return entry, nil
}

// persist appends any events the store has not seen yet.
func (h *SessionHandler) persist(r *http.Request, entry *sessionEntry) {
	if h.Store == nil {
		return
	}
	pending := entry.s.Events[entry.saved:]
	if len(pending) == 0 {
		return
	}
	if err := h.Store.AppendEvents(r.Context(), entry.s.ID, pending); err == nil {
		entry.saved = len(entry.s.Events)
	}
}

// ─── Queries ────────────────────────────────────────────────────────────────

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entry(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	writeJSON(w, map[string]any{"id": entry.s.ID, "name": entry.s.Config.Name, "state": entry.s.State()})
}

func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entry(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	writeJSON(w, entry.s.Events)
}

func (h *SessionHandler) Log(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entry(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	writeJSON(w, entry.s.GameLog())
}

// Replay folds a log prefix selected by ?seq=N or ?turn=N.
func (h *SessionHandler) Replay(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entry(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	var st *session.State
	switch {
	case r.URL.Query().Get("seq") != "":
		seq, err := strconv.Atoi(r.URL.Query().Get("seq"))
		if err != nil {
			http.Error(w, "Invalid seq", http.StatusBadRequest)
			return
		}
		st, err = entry.s.ReplayToSequence(seq)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	case r.URL.Query().Get("turn") != "":
		turn, err := strconv.Atoi(r.URL.Query().Get("turn"))
		if err != nil {
			http.Error(w, "Invalid turn", http.StatusBadRequest)
			return
		}
		st, err = entry.s.ReplayToTurn(turn)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	default:
		http.Error(w, "seq or turn query parameter required", http.StatusBadRequest)
		return
	}
	writeJSON(w, st)
}

func (h *SessionHandler) Destinations(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entry(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	mode := movement.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = movement.ModeWalk
	}
	dests, err := entry.s.ValidDestinations(r.PathValue("unitID"), mode)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	if dests == nil {
		dests = []hexmap.Coord{}
	}
	writeJSON(w, dests)
}

func (h *SessionHandler) Targets(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entry(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	targets, err := entry.s.GetValidTargets(r.PathValue("unitID"))
	if err != nil {
		writeCommandError(w, err)
		return
	}
	if targets == nil {
		targets = []string{}
	}
	writeJSON(w, targets)
}

// ─── Commands ───────────────────────────────────────────────────────────────

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(s *session.Session) (any, error) {
		return s.Start()
	})
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Winner string `json:"winner"`
		Cause  string `json:"cause"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	h.command(w, r, func(s *session.Session) (any, error) {
		return s.End(req.Winner, req.Cause)
	})
}

func (h *SessionHandler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(s *session.Session) (any, error) {
		return s.AdvancePhase()
	})
}

// requestRoller reads an optional {"seed": N}; absent seeds fall back to the
// clock.
func requestRoller(r *http.Request) combat.Roller {
	var req struct {
		Seed *uint64 `json:"seed"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	if req.Seed != nil {
		return combat.NewSeededRoller(*req.Seed)
	}
	return combat.NewSeededRoller(uint64(time.Now().UnixNano()))
}

func (h *SessionHandler) Initiative(w http.ResponseWriter, r *http.Request) {
	roller := requestRoller(r)
	h.command(w, r, func(s *session.Session) (any, error) {
		return s.RollInitiative(roller)
	})
}

func (h *SessionHandler) DeclareMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UnitID string        `json:"unitId"`
		To     hexmap.Coord  `json:"to"`
		Facing hexmap.Facing `json:"facing"`
		Mode   movement.Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	h.command(w, r, func(s *session.Session) (any, error) {
		return s.DeclareMovement(req.UnitID, req.To, req.Facing, req.Mode)
	})
}

func (h *SessionHandler) LockMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UnitID string `json:"unitId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	h.command(w, r, func(s *session.Session) (any, error) {
		return s.LockMovement(req.UnitID)
	})
}

func (h *SessionHandler) DeclareAttack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AttackerID string `json:"attackerId"`
		TargetID   string `json:"targetId"`
		WeaponID   string `json:"weaponId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	h.command(w, r, func(s *session.Session) (any, error) {
		return s.DeclareAttack(req.AttackerID, req.TargetID, req.WeaponID)
	})
}

func (h *SessionHandler) LockAttack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AttackerID string `json:"attackerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	h.command(w, r, func(s *session.Session) (any, error) {
		return s.LockAttack(req.AttackerID)
	})
}

// Resolve fires one attacker's locked attack, or every locked attack in
// declaration order when attackerId is omitted.
func (h *SessionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AttackerID string  `json:"attackerId,omitempty"`
		Seed       *uint64 `json:"seed"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	var roller combat.Roller
	if req.Seed != nil {
		roller = combat.NewSeededRoller(*req.Seed)
	} else {
		roller = combat.NewSeededRoller(uint64(time.Now().UnixNano()))
	}

	h.command(w, r, func(s *session.Session) (any, error) {
		if req.AttackerID != "" {
			return s.ResolveAttack(req.AttackerID, roller)
		}
		return s.ResolveAllAttacks(roller)
	})
}

// command runs a session mutation under the per-session lock, persists new
// events, and writes the result plus the refreshed state.
func (h *SessionHandler) command(w http.ResponseWriter, r *http.Request, fn func(*session.Session) (any, error)) {
	entry, err := h.entry(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	result, err := fn(entry.s)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	h.persist(r, entry)
	writeJSON(w, map[string]any{"result": result, "state": entry.s.State()})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeCommandError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, session.ErrUnknownUnit):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrWrongStatus),
		errors.Is(err, session.ErrWrongPhase),
		errors.Is(err, session.ErrUnitLocked),
		errors.Is(err, session.ErrNotLocked):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
