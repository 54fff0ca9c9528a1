// Package store persists sessions and their event logs. Two backends share
// one schema: sessions(id, name, created_at, map_json, roster_json) and
// events(session_id, seq, ...) with payloads as JSON. Loading a session
// decodes the log and rehydrates it; the derived state is never stored.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/session"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/unit"
)

// SessionRecord is a listing row: identity plus log size, no state.
type SessionRecord struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	EventCount int       `json:"eventCount"`
}

type Store interface {
	// SaveSession inserts the session row and its full event log.
	SaveSession(ctx context.Context, s *session.Session) error
	// AppendEvents persists new events for an already-saved session.
	// Re-appending an already-stored seq is a no-op.
	AppendEvents(ctx context.Context, id uuid.UUID, events []session.Event) error
	// LoadSession rehydrates a session from its stored config and log.
	LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error)
	ListSessions(ctx context.Context) ([]SessionRecord, error)
	Close() error
}

// ─── Config serialization ───────────────────────────────────────────────────
// The board and the roster are stored in separate columns: the map is pure
// terrain (occupants always derive from the log), the roster carries units
// and placements.

type mapDoc struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Hexes  []hexmap.Hex `json:"hexes,omitempty"`
}

type rosterDoc struct {
	Units      []*unit.Unit                 `json:"units"`
	Placements map[string]session.Placement `json:"placements"`
}

func encodeMap(g *hexmap.Grid) ([]byte, error) {
	doc := mapDoc{Width: g.Width, Height: g.Height}
	for _, h := range g.Hexes() {
		h.OccupantID = ""
		if len(h.Terrain) == 0 && h.Elevation == 0 {
			continue
		}
		doc.Hexes = append(doc.Hexes, h)
	}
	return json.Marshal(doc)
}

func decodeMap(raw []byte) (*hexmap.Grid, error) {
	var doc mapDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode map: %w", err)
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("decode map: bad size %dx%d", doc.Width, doc.Height)
	}
	return hexmap.FromHexes(doc.Width, doc.Height, doc.Hexes), nil
}

func encodeRoster(cfg session.Config) ([]byte, error) {
	return json.Marshal(rosterDoc{Units: cfg.Units, Placements: cfg.Placements})
}

func decodeConfig(name string, mapJSON, rosterJSON []byte) (session.Config, error) {
	grid, err := decodeMap(mapJSON)
	if err != nil {
		return session.Config{}, err
	}
	var roster rosterDoc
	if err := json.Unmarshal(rosterJSON, &roster); err != nil {
		return session.Config{}, fmt.Errorf("decode roster: %w", err)
	}
	return session.Config{
		Name:       name,
		Grid:       grid,
		Units:      roster.Units,
		Placements: roster.Placements,
	}, nil
}

// ─── Event serialization ────────────────────────────────────────────────────

func encodePayload(e session.Event) ([]byte, error) {
	if e.Payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload for event %d (%s): %w", e.Seq, e.Type, err)
	}
	return raw, nil
}

func decodeEvent(e *session.Event, raw []byte) error {
	payload, err := session.DecodePayload(e.Type, raw)
	if err != nil {
		return fmt.Errorf("decode payload for event %d (%s): %w", e.Seq, e.Type, err)
	}
	e.Payload = payload
	return nil
}
