// Package session orchestrates a battle: the phase ring, the per-unit
// declare/lock/resolve protocol, and the append-only event log from which
// all game state is derived. Engines are invoked as pure functions; the
// session's only job is to validate commands, append events, and fold.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/combat"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/movement"
)

// ─── Phases, status, locks ──────────────────────────────────────────────────

type Phase string

const (
	PhaseInitiative   Phase = "initiative"
	PhaseMovement     Phase = "movement"
	PhaseWeaponAttack Phase = "weapon_attack"
	PhaseHeat         Phase = "heat"
	PhaseEnd          Phase = "end"
)

var phaseRing = [...]Phase{PhaseInitiative, PhaseMovement, PhaseWeaponAttack, PhaseHeat, PhaseEnd}

// Next returns the following phase and whether the ring wrapped into a new
// turn.
func (p Phase) Next() (Phase, bool) {
	for i, ph := range phaseRing {
		if ph == p {
			ni := (i + 1) % len(phaseRing)
			return phaseRing[ni], ni == 0
		}
	}
	return PhaseInitiative, false
}

type Status string

const (
	StatusSetup     Status = "setup"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// LockState is the per-unit per-phase progression. Transitions are the
// sequencing discipline; there are no mutexes in the engine.
type LockState string

const (
	LockUnlocked LockState = "unlocked"
	LockPlanning LockState = "planning"
	LockLocked   LockState = "locked"
)

// ─── Events ─────────────────────────────────────────────────────────────────

type EventType string

const (
	EventGameCreated      EventType = "game_created"
	EventGameStarted      EventType = "game_started"
	EventGameEnded        EventType = "game_ended"
	EventPhaseAdvanced    EventType = "phase_advanced"
	EventInitiativeRolled EventType = "initiative_rolled"
	EventMovementDeclared EventType = "movement_declared"
	EventMovementLocked   EventType = "movement_locked"
	EventAttackDeclared   EventType = "attack_declared"
	EventAttackLocked     EventType = "attack_locked"
	EventAttackResolved   EventType = "attack_resolved"
	EventDamageApplied    EventType = "damage_applied"
	EventUnitDestroyed    EventType = "unit_destroyed"
	EventHeatAdjusted     EventType = "heat_adjusted"
)

// Event is one immutable entry in a session's log. Seq is strictly
// increasing from 1; Turn and Phase snapshot when the event was appended.
type Event struct {
	ID      uuid.UUID `json:"id"`
	Seq     int       `json:"seq"`
	Turn    int       `json:"turn"`
	Phase   Phase     `json:"phase"`
	Type    EventType `json:"type"`
	Actor   string    `json:"actor,omitempty"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// ─── Payloads ───────────────────────────────────────────────────────────────

type GameCreatedPayload struct {
	Name    string   `json:"name"`
	UnitIDs []string `json:"unitIds"`
}

type GameEndedPayload struct {
	Winner string `json:"winner,omitempty"`
	Cause  string `json:"cause,omitempty"`
}

type PhaseAdvancedPayload struct {
	From Phase `json:"from"`
	To   Phase `json:"to"`
	Turn int   `json:"turn"`
}

type InitiativeRolledPayload struct {
	Rolls  map[string]int `json:"rolls"`
	Winner string         `json:"winner"`
	// TieBroken marks a winner picked by side order after the reroll cap.
	TieBroken bool `json:"tieBroken,omitempty"`
}

type MovementDeclaredPayload struct {
	UnitID     string        `json:"unitId"`
	From       hexmap.Coord  `json:"from"`
	To         hexmap.Coord  `json:"to"`
	Facing     hexmap.Facing `json:"facing"`
	Mode       movement.Mode `json:"mode"`
	Cost       int           `json:"cost"`
	HexesMoved int           `json:"hexesMoved"`
}

type MovementLockedPayload struct {
	UnitID     string        `json:"unitId"`
	To         hexmap.Coord  `json:"to"`
	Facing     hexmap.Facing `json:"facing"`
	Mode       movement.Mode `json:"mode"`
	HexesMoved int           `json:"hexesMoved"`
	Heat       int           `json:"heat"`
}

type AttackDeclaredPayload struct {
	AttackerID string       `json:"attackerId"`
	TargetID   string       `json:"targetId"`
	WeaponID   string       `json:"weaponId"`
	Distance   int          `json:"distance"`
	Rear       bool         `json:"rear,omitempty"`
	ToHit      combat.ToHit `json:"toHit"`
}

type AttackLockedPayload struct {
	AttackerID string `json:"attackerId"`
}

type AttackResolvedPayload struct {
	AttackerID      string `json:"attackerId"`
	TargetID        string `json:"targetId"`
	WeaponID        string `json:"weaponId"`
	Roll            int    `json:"roll"`
	TargetNumber    int    `json:"targetNumber"`
	Hit             bool   `json:"hit"`
	WeaponHeat      int    `json:"weaponHeat"`
	TargetDestroyed bool   `json:"targetDestroyed,omitempty"` // resolved against an already-dead target
}

// CritRecord is one critical check triggered by a natural 2 or 12.
type CritRecord struct {
	Location string `json:"location"`
	Roll     int    `json:"roll"`
	Count    int    `json:"count"`
}

type DamageAppliedPayload struct {
	TargetID          string                  `json:"targetId"`
	Groups            []combat.HitGroup       `json:"groups"`
	Results           []combat.LocationDamage `json:"results"`
	PilotWounds       int                     `json:"pilotWounds,omitempty"`
	ConsciousnessRoll int                     `json:"consciousnessRoll,omitempty"`
	PilotUnconscious  bool                    `json:"pilotUnconscious,omitempty"`
	Crits             []CritRecord            `json:"crits,omitempty"`
}

type UnitDestroyedPayload struct {
	UnitID string `json:"unitId"`
	Cause  string `json:"cause"`
}

type HeatAdjustedPayload struct {
	UnitID string `json:"unitId"`
	Delta  int    `json:"delta"`
	Heat   int    `json:"heat"`
}

// ─── Payload decoding ───────────────────────────────────────────────────────
// The store persists payloads as JSON; DecodePayload restores the concrete
// type when a session is rehydrated.

func decodeInto[T any](raw json.RawMessage) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func DecodePayload(t EventType, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch t {
	case EventGameCreated:
		return decodeInto[GameCreatedPayload](raw)
	case EventGameStarted:
		return nil, nil
	case EventGameEnded:
		return decodeInto[GameEndedPayload](raw)
	case EventPhaseAdvanced:
		return decodeInto[PhaseAdvancedPayload](raw)
	case EventInitiativeRolled:
		return decodeInto[InitiativeRolledPayload](raw)
	case EventMovementDeclared:
		return decodeInto[MovementDeclaredPayload](raw)
	case EventMovementLocked:
		return decodeInto[MovementLockedPayload](raw)
	case EventAttackDeclared:
		return decodeInto[AttackDeclaredPayload](raw)
	case EventAttackLocked:
		return decodeInto[AttackLockedPayload](raw)
	case EventAttackResolved:
		return decodeInto[AttackResolvedPayload](raw)
	case EventDamageApplied:
		return decodeInto[DamageAppliedPayload](raw)
	case EventUnitDestroyed:
		return decodeInto[UnitDestroyedPayload](raw)
	case EventHeatAdjusted:
		return decodeInto[HeatAdjustedPayload](raw)
	default:
		return nil, fmt.Errorf("decode payload: unknown event type %q", t)
	}
}
