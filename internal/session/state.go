package session

import (
	"fmt"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/combat"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/movement"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/unit"
)

// ─── Derived state ──────────────────────────────────────────────────────────
// State is a pure projection of the event log over the session config. It is
// never a source of truth: any prefix of the log folds to the exact state
// that existed at that point.

type UnitState struct {
	ID       string        `json:"id"`
	Position hexmap.Coord  `json:"position"`
	Facing   hexmap.Facing `json:"facing"`
	Prone    bool          `json:"prone,omitempty"`

	MoveMode   movement.Mode `json:"moveMode"`
	HexesMoved int           `json:"hexesMoved"`
	Heat       int           `json:"heat"`

	MoveLock   LockState `json:"moveLock"`
	AttackLock LockState `json:"attackLock"`

	PendingMove   *MovementDeclaredPayload `json:"pendingMove,omitempty"`
	PendingAttack *AttackDeclaredPayload   `json:"pendingAttack,omitempty"`

	Condition unit.Condition `json:"condition"`
}

type State struct {
	Status           Status `json:"status"`
	Turn             int    `json:"turn"`
	Phase            Phase  `json:"phase"`
	InitiativeWinner string `json:"initiativeWinner,omitempty"`
	Winner           string `json:"winner,omitempty"`
	EndCause         string `json:"endCause,omitempty"`

	Grid  *hexmap.Grid          `json:"-"`
	Units map[string]*UnitState `json:"units"`
}

// Unit returns the dynamic state for a unit id.
func (s *State) Unit(id string) (*UnitState, bool) {
	u, ok := s.Units[id]
	return u, ok
}

// DeriveState folds the event log over the session config. An empty log
// yields Setup at turn 0 with the roster placed per config.
func DeriveState(cfg Config, events []Event) (*State, error) {
	grid := cfg.Grid
	if grid == nil {
		return nil, fmt.Errorf("derive state: config has no grid")
	}

	st := &State{
		Status: StatusSetup,
		Turn:   0,
		Phase:  PhaseInitiative,
		Units:  make(map[string]*UnitState, len(cfg.Units)),
	}
	for _, u := range cfg.Units {
		p, ok := cfg.Placements[u.ID]
		if !ok {
			return nil, fmt.Errorf("derive state: unit %s has no placement", u.ID)
		}
		ng, err := grid.PlaceUnit(u.ID, p.Coord)
		if err != nil {
			return nil, fmt.Errorf("derive state: %w", err)
		}
		grid = ng
		st.Units[u.ID] = &UnitState{
			ID:         u.ID,
			Position:   p.Coord,
			Facing:     p.Facing.Normalize(),
			MoveMode:   movement.ModeStationary,
			MoveLock:   LockUnlocked,
			AttackLock: LockUnlocked,
			Condition:  unit.NewCondition(u),
		}
	}
	st.Grid = grid

	units := unitIndex(cfg)
	for _, e := range events {
		if err := st.apply(units, e); err != nil {
			return nil, fmt.Errorf("derive state: event %d (%s): %w", e.Seq, e.Type, err)
		}
	}
	return st, nil
}

func unitIndex(cfg Config) map[string]*unit.Unit {
	m := make(map[string]*unit.Unit, len(cfg.Units))
	for _, u := range cfg.Units {
		m[u.ID] = u
	}
	return m
}

// unitState resolves an event's unit id, erroring on ids outside the
// roster so a tampered or mismatched log fails the fold instead of
// panicking.
func (st *State) unitState(id string) (*UnitState, error) {
	us, ok := st.Units[id]
	if !ok {
		return nil, fmt.Errorf("unknown unit %q", id)
	}
	return us, nil
}

// apply folds one event into the state in place. Callers always fold onto a
// freshly built state, so in-place mutation never leaks into a retained
// snapshot.
func (st *State) apply(units map[string]*unit.Unit, e Event) error {
	switch p := e.Payload.(type) {
	case GameCreatedPayload:
		return nil

	case PhaseAdvancedPayload:
		st.Phase = p.To
		st.Turn = p.Turn
		for _, us := range st.Units {
			us.MoveLock = LockUnlocked
			us.AttackLock = LockUnlocked
			us.PendingMove = nil
			us.PendingAttack = nil
			if p.To == PhaseMovement {
				us.MoveMode = movement.ModeStationary
				us.HexesMoved = 0
			}
		}
		return nil

	case InitiativeRolledPayload:
		st.InitiativeWinner = p.Winner
		return nil

	case MovementDeclaredPayload:
		us, err := st.unitState(p.UnitID)
		if err != nil {
			return err
		}
		us.MoveLock = LockPlanning
		decl := p
		us.PendingMove = &decl
		return nil

	case MovementLockedPayload:
		us, err := st.unitState(p.UnitID)
		if err != nil {
			return err
		}
		ng, err := st.Grid.MoveUnit(p.UnitID, p.To)
		if err != nil {
			return err
		}
		st.Grid = ng
		us.Position = p.To
		us.Facing = p.Facing.Normalize()
		us.MoveMode = p.Mode
		us.HexesMoved = p.HexesMoved
		us.Heat += p.Heat
		us.MoveLock = LockLocked
		us.PendingMove = nil
		return nil

	case AttackDeclaredPayload:
		us, err := st.unitState(p.AttackerID)
		if err != nil {
			return err
		}
		us.AttackLock = LockPlanning
		decl := p
		us.PendingAttack = &decl
		return nil

	case AttackLockedPayload:
		us, err := st.unitState(p.AttackerID)
		if err != nil {
			return err
		}
		us.AttackLock = LockLocked
		return nil

	case AttackResolvedPayload:
		us, err := st.unitState(p.AttackerID)
		if err != nil {
			return err
		}
		us.Heat += p.WeaponHeat
		us.PendingAttack = nil
		return nil

	case DamageAppliedPayload:
		tgt, err := st.unitState(p.TargetID)
		if err != nil {
			return err
		}
		u, ok := units[p.TargetID]
		if !ok {
			return fmt.Errorf("unknown unit %q", p.TargetID)
		}
		for _, g := range p.Groups {
			combat.ApplyDamageWithTransfer(&tgt.Condition, u, g.Location, g.Damage)
		}
		if p.PilotWounds > 0 {
			combat.ApplyPilotDamage(&tgt.Condition, p.PilotWounds)
			// The consciousness check rolled at resolution time; the fold
			// replays its recorded outcome.
			tgt.Condition.ConsciousnessDue = false
			if p.PilotUnconscious {
				tgt.Condition.PilotConscious = false
			}
		}
		return nil

	case UnitDestroyedPayload:
		us, err := st.unitState(p.UnitID)
		if err != nil {
			return err
		}
		us.Condition.Destroyed = true
		if us.Condition.DestructionCause == "" {
			us.Condition.DestructionCause = p.Cause
		}
		if _, ok := st.Grid.PositionOf(p.UnitID); ok {
			ng, err := st.Grid.RemoveUnit(p.UnitID)
			if err != nil {
				return err
			}
			st.Grid = ng
		}
		return nil

	case HeatAdjustedPayload:
		us, err := st.unitState(p.UnitID)
		if err != nil {
			return err
		}
		us.Heat = p.Heat
		return nil

	case GameEndedPayload:
		st.Status = StatusCompleted
		st.Winner = p.Winner
		st.EndCause = p.Cause
		return nil
	}

	switch e.Type {
	case EventGameStarted:
		st.Status = StatusActive
		st.Turn = 1
		st.Phase = PhaseInitiative
		return nil
	}
	return fmt.Errorf("unhandled event type %q", e.Type)
}
