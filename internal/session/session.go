package session

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/SwiggitySwerve/MekStation-sub005/internal/combat"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/hexmap"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/los"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/movement"
	"github.com/SwiggitySwerve/MekStation-sub005/internal/unit"
)

// ─── Errors ─────────────────────────────────────────────────────────────────
// Every rejection is caller-recoverable; a rejected command appends nothing.

var (
	ErrWrongStatus   = errors.New("session: wrong status for action")
	ErrWrongPhase    = errors.New("session: wrong phase for action")
	ErrUnknownUnit   = errors.New("session: unknown unit")
	ErrUnitLocked    = errors.New("session: unit already locked")
	ErrNotLocked     = errors.New("session: no locked declaration to resolve")
	ErrInvalidMove   = errors.New("session: invalid movement")
	ErrInvalidTarget = errors.New("session: invalid target")
)

// ─── Session ────────────────────────────────────────────────────────────────

// Placement is a unit's starting hex and facing.
type Placement struct {
	Coord  hexmap.Coord  `json:"coord"`
	Facing hexmap.Facing `json:"facing"`
}

// Config is the immutable battle setup: board, roster, placements. It never
// changes after New; everything dynamic lives in the event log.
type Config struct {
	Name       string               `json:"name"`
	Grid       *hexmap.Grid         `json:"-"`
	Units      []*unit.Unit         `json:"units"`
	Placements map[string]Placement `json:"placements"`
}

// Session is the aggregate: id, config, ordered events, cached projection.
type Session struct {
	ID     uuid.UUID
	Config Config
	Events []Event

	units map[string]*unit.Unit
	state *State
}

// New builds a session and appends the game_created event. The config is
// validated by deriving the initial state once.
func New(cfg Config) (*Session, error) {
	s := &Session{
		ID:     uuid.New(),
		Config: cfg,
		units:  unitIndex(cfg),
	}
	if _, err := DeriveState(cfg, nil); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cfg.Units))
	for _, u := range cfg.Units {
		ids = append(ids, u.ID)
	}
	s.append(EventGameCreated, "", GameCreatedPayload{Name: cfg.Name, UnitIDs: ids})
	return s, nil
}

// Rehydrate rebuilds a session from a persisted log.
func Rehydrate(id uuid.UUID, cfg Config, events []Event) (*Session, error) {
	s := &Session{ID: id, Config: cfg, Events: events, units: unitIndex(cfg)}
	if _, err := DeriveState(cfg, events); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns the current projection, folding the log on first use after
// an append.
func (s *Session) State() *State {
	if s.state == nil {
		st, err := DeriveState(s.Config, s.Events)
		if err != nil {
			// The log only ever contains events this session validated.
			panic(fmt.Sprintf("session %s: corrupt event log: %v", s.ID, err))
		}
		s.state = st
	}
	return s.state
}

func (s *Session) append(t EventType, actor string, payload any) Event {
	st := s.State()
	e := Event{
		ID:      uuid.New(),
		Seq:     len(s.Events) + 1,
		Turn:    st.Turn,
		Phase:   st.Phase,
		Type:    t,
		Actor:   actor,
		Payload: payload,
		At:      time.Now().UTC(),
	}
	s.Events = append(s.Events, e)
	s.state = nil
	return e
}

func (s *Session) unit(id string) (*unit.Unit, error) {
	u, ok := s.units[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, id)
	}
	return u, nil
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

// Start transitions Setup → Active. A second call errors.
func (s *Session) Start() (Event, error) {
	if st := s.State(); st.Status != StatusSetup {
		return Event{}, fmt.Errorf("start game from %s: %w", st.Status, ErrWrongStatus)
	}
	return s.append(EventGameStarted, "", nil), nil
}

// End completes an Active session, recording winner and cause.
func (s *Session) End(winner, cause string) (Event, error) {
	if st := s.State(); st.Status != StatusActive {
		return Event{}, fmt.Errorf("end game from %s: %w", st.Status, ErrWrongStatus)
	}
	return s.append(EventGameEnded, "", GameEndedPayload{Winner: winner, Cause: cause}), nil
}

// AdvancePhase moves the ring one step. Leaving the heat phase first sinks
// each unit's heat by its dissipation, floored at zero.
func (s *Session) AdvancePhase() (Event, error) {
	st := s.State()
	if st.Status != StatusActive {
		return Event{}, fmt.Errorf("advance phase from %s: %w", st.Status, ErrWrongStatus)
	}

	if st.Phase == PhaseHeat {
		for _, id := range sortedUnitIDs(st) {
			us := st.Units[id]
			if us.Condition.Destroyed || us.Heat == 0 {
				continue
			}
			u := s.units[id]
			cooled := us.Heat - u.HeatSinks
			if cooled < 0 {
				cooled = 0
			}
			if cooled != us.Heat {
				s.append(EventHeatAdjusted, id, HeatAdjustedPayload{
					UnitID: id, Delta: cooled - us.Heat, Heat: cooled,
				})
				st = s.State()
			}
		}
	}

	next, wrapped := st.Phase.Next()
	turn := st.Turn
	if wrapped {
		turn++
	}
	return s.append(EventPhaseAdvanced, "", PhaseAdvancedPayload{From: st.Phase, To: next, Turn: turn}), nil
}

// maxInitiativeRerolls bounds tie rerolls so a degenerate roller cannot
// stall the game; a tie still standing breaks by sorted side order.
const maxInitiativeRerolls = 10

// RollInitiative rolls 2d6 per side, rerolling ties, and records the winner.
func (s *Session) RollInitiative(r combat.Roller) (Event, error) {
	st := s.State()
	if st.Status != StatusActive {
		return Event{}, fmt.Errorf("initiative: %w", ErrWrongStatus)
	}
	if st.Phase != PhaseInitiative {
		return Event{}, fmt.Errorf("initiative during %s: %w", st.Phase, ErrWrongPhase)
	}

	sides := s.sides()
	if len(sides) == 0 {
		return Event{}, fmt.Errorf("initiative: %w: no units", ErrInvalidTarget)
	}

	rolls := make(map[string]int, len(sides))
	winner := ""
	tieBroken := false
	for attempt := 0; ; attempt++ {
		best, tie := -1, false
		for _, side := range sides {
			v := combat.Roll2D6(r)
			rolls[side] = v
			switch {
			case v > best:
				best, winner, tie = v, side, false
			case v == best:
				tie = true
			}
		}
		if !tie || len(sides) == 1 {
			break
		}
		if attempt >= maxInitiativeRerolls {
			for _, side := range sides {
				if rolls[side] == best {
					winner = side
					break
				}
			}
			tieBroken = true
			break
		}
	}
	return s.append(EventInitiativeRolled, "", InitiativeRolledPayload{Rolls: rolls, Winner: winner, TieBroken: tieBroken}), nil
}

func (s *Session) sides() []string {
	seen := map[string]bool{}
	var out []string
	for _, u := range s.Config.Units {
		if !seen[u.Side] {
			seen[u.Side] = true
			out = append(out, u.Side)
		}
	}
	sort.Strings(out)
	return out
}

// ─── Movement ───────────────────────────────────────────────────────────────

// DeclareMovement validates a move and appends movement_declared. The unit
// enters Planning; the board does not change until LockMovement.
func (s *Session) DeclareMovement(unitID string, dest hexmap.Coord, facing hexmap.Facing, mode movement.Mode) (Event, error) {
	st := s.State()
	if st.Status != StatusActive {
		return Event{}, fmt.Errorf("declare movement: %w", ErrWrongStatus)
	}
	if st.Phase != PhaseMovement {
		return Event{}, fmt.Errorf("declare movement during %s: %w", st.Phase, ErrWrongPhase)
	}
	u, err := s.unit(unitID)
	if err != nil {
		return Event{}, err
	}
	us := st.Units[unitID]
	if us.Condition.Destroyed {
		return Event{}, fmt.Errorf("%w: %s is destroyed", ErrInvalidMove, unitID)
	}
	if us.MoveLock == LockLocked {
		return Event{}, fmt.Errorf("%w: %s movement", ErrUnitLocked, unitID)
	}

	cap := movement.Capability{WalkMP: u.WalkMP, JumpMP: u.JumpMP}
	v := movement.Validate(st.Grid, unitID, us.Position, dest, mode, cap)
	if !v.OK {
		return Event{}, fmt.Errorf("%w: %s", ErrInvalidMove, v.Reason)
	}

	hexes := 0
	if path := movement.FindPath(st.Grid, unitID, us.Position, dest, mode, cap); path != nil {
		hexes = len(path) - 1
	}
	return s.append(EventMovementDeclared, unitID, MovementDeclaredPayload{
		UnitID:     unitID,
		From:       us.Position,
		To:         dest,
		Facing:     facing.Normalize(),
		Mode:       mode,
		Cost:       v.Cost,
		HexesMoved: hexes,
	}), nil
}

// LockMovement commits the pending declaration: the unit moves on the board
// and accrues movement heat.
func (s *Session) LockMovement(unitID string) (Event, error) {
	st := s.State()
	if st.Status != StatusActive || st.Phase != PhaseMovement {
		return Event{}, fmt.Errorf("lock movement during %s: %w", st.Phase, ErrWrongPhase)
	}
	us, ok := st.Units[unitID]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrUnknownUnit, unitID)
	}
	if us.MoveLock == LockLocked {
		return Event{}, fmt.Errorf("%w: %s movement", ErrUnitLocked, unitID)
	}
	if us.PendingMove == nil {
		return Event{}, fmt.Errorf("lock movement for %s: %w", unitID, ErrNotLocked)
	}

	d := us.PendingMove
	return s.append(EventMovementLocked, unitID, MovementLockedPayload{
		UnitID:     unitID,
		To:         d.To,
		Facing:     d.Facing,
		Mode:       d.Mode,
		HexesMoved: d.HexesMoved,
		Heat:       movement.Heat(d.Mode, d.HexesMoved),
	}), nil
}

// ValidDestinations surfaces the movement engine's reachable set for a unit
// against current state.
func (s *Session) ValidDestinations(unitID string, mode movement.Mode) ([]hexmap.Coord, error) {
	u, err := s.unit(unitID)
	if err != nil {
		return nil, err
	}
	st := s.State()
	us := st.Units[unitID]
	if us.Condition.Destroyed {
		return nil, nil
	}
	cap := movement.Capability{WalkMP: u.WalkMP, JumpMP: u.JumpMP}
	return movement.ValidDestinations(st.Grid, unitID, us.Position, mode, cap), nil
}

// ─── Attacks ────────────────────────────────────────────────────────────────

// DeclareAttack validates range, arc, and line of sight, builds the to-hit
// stack, and appends attack_declared.
func (s *Session) DeclareAttack(attackerID, targetID, weaponID string) (Event, error) {
	st := s.State()
	if st.Status != StatusActive {
		return Event{}, fmt.Errorf("declare attack: %w", ErrWrongStatus)
	}
	if st.Phase != PhaseWeaponAttack {
		return Event{}, fmt.Errorf("declare attack during %s: %w", st.Phase, ErrWrongPhase)
	}
	attacker, err := s.unit(attackerID)
	if err != nil {
		return Event{}, err
	}
	if _, err := s.unit(targetID); err != nil {
		return Event{}, err
	}

	aus := st.Units[attackerID]
	tus := st.Units[targetID]
	if aus.Condition.Destroyed || !aus.Condition.PilotConscious {
		return Event{}, fmt.Errorf("%w: attacker %s cannot act", ErrInvalidTarget, attackerID)
	}
	// Target validity outranks the attacker's lock state: a wreck is
	// untargetable no matter what the attacker already committed.
	if tus.Condition.Destroyed {
		return Event{}, fmt.Errorf("%w: %s is destroyed", ErrInvalidTarget, targetID)
	}
	if attacker.Side == s.units[targetID].Side {
		return Event{}, fmt.Errorf("%w: %s is friendly", ErrInvalidTarget, targetID)
	}
	if aus.AttackLock == LockLocked {
		return Event{}, fmt.Errorf("%w: %s attack", ErrUnitLocked, attackerID)
	}

	w, ok := attacker.Weapon(weaponID)
	if !ok {
		return Event{}, fmt.Errorf("%w: %s has no weapon %s", ErrInvalidTarget, attackerID, weaponID)
	}

	if sight := los.Calculate(st.Grid, aus.Position, tus.Position); !sight.Clear {
		return Event{}, fmt.Errorf("%w: no line of sight to %s", ErrInvalidTarget, targetID)
	}

	dist := hexmap.Distance(aus.Position, tus.Position)
	if combat.WeaponBracket(w, dist) == combat.OutOfRange {
		return Event{}, fmt.Errorf("%w: %s out of range (%d hexes)", ErrInvalidTarget, targetID, dist)
	}
	targetArc := combat.DetermineArc(aus.Position, aus.Facing, tus.Position)
	if !combat.CanFireFromArc(combat.ArcFromString(w.Arc), targetArc) {
		return Event{}, fmt.Errorf("%w: %s outside %s's firing arc", ErrInvalidTarget, targetID, weaponID)
	}

	tmm := movement.TMM(tus.MoveMode, tus.HexesMoved)
	toHit, _ := combat.BuildToHit(attacker, w, dist, aus.MoveMode, tmm, aus.Heat)
	if toHit.Impossible() {
		return Event{}, fmt.Errorf("%w: target number %d is impossible", ErrInvalidTarget, toHit.Total())
	}

	return s.append(EventAttackDeclared, attackerID, AttackDeclaredPayload{
		AttackerID: attackerID,
		TargetID:   targetID,
		WeaponID:   weaponID,
		Distance:   dist,
		Rear:       combat.IsRearAttack(aus.Position, tus.Position, tus.Facing),
		ToHit:      toHit,
	}), nil
}

// LockAttack finalizes a declared attack for resolution.
func (s *Session) LockAttack(attackerID string) (Event, error) {
	st := s.State()
	if st.Status != StatusActive || st.Phase != PhaseWeaponAttack {
		return Event{}, fmt.Errorf("lock attack during %s: %w", st.Phase, ErrWrongPhase)
	}
	us, ok := st.Units[attackerID]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrUnknownUnit, attackerID)
	}
	if us.AttackLock == LockLocked {
		return Event{}, fmt.Errorf("%w: %s attack", ErrUnitLocked, attackerID)
	}
	if us.PendingAttack == nil {
		return Event{}, fmt.Errorf("lock attack for %s: %w", attackerID, ErrNotLocked)
	}
	return s.append(EventAttackLocked, attackerID, AttackLockedPayload{AttackerID: attackerID}), nil
}

// ResolveAttack consumes the attacker's locked declaration: one to-hit roll,
// then hit location, cluster grouping, and the damage cascade, appending
// attack_resolved and, on a hit, damage_applied (plus unit_destroyed when a
// cascade kills).
func (s *Session) ResolveAttack(attackerID string, r combat.Roller) ([]Event, error) {
	st := s.State()
	if st.Status != StatusActive || st.Phase != PhaseWeaponAttack {
		return nil, fmt.Errorf("resolve attack during %s: %w", st.Phase, ErrWrongPhase)
	}
	us, ok := st.Units[attackerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, attackerID)
	}
	if us.AttackLock != LockLocked || us.PendingAttack == nil {
		return nil, fmt.Errorf("resolve attack for %s: %w", attackerID, ErrNotLocked)
	}
	return s.resolveDeclared(*us.PendingAttack, r)
}

func (s *Session) resolveDeclared(decl AttackDeclaredPayload, r combat.Roller) ([]Event, error) {
	st := s.State()
	attacker := s.units[decl.AttackerID]
	w, _ := attacker.Weapon(decl.WeaponID)

	tus := st.Units[decl.TargetID]
	if tus.Condition.Destroyed {
		// Target died earlier in the batch; consume the declaration.
		e := s.append(EventAttackResolved, decl.AttackerID, AttackResolvedPayload{
			AttackerID:      decl.AttackerID,
			TargetID:        decl.TargetID,
			WeaponID:        decl.WeaponID,
			TargetNumber:    decl.ToHit.Total(),
			Hit:             false,
			TargetDestroyed: true,
		})
		return []Event{e}, nil
	}

	roll := combat.Roll2D6(r)
	tn := decl.ToHit.Total()
	hit := roll >= tn

	events := []Event{s.append(EventAttackResolved, decl.AttackerID, AttackResolvedPayload{
		AttackerID:   decl.AttackerID,
		TargetID:     decl.TargetID,
		WeaponID:     decl.WeaponID,
		Roll:         roll,
		TargetNumber: tn,
		Hit:          hit,
		WeaponHeat:   w.Heat,
	})}
	if !hit {
		return events, nil
	}

	var groups []combat.HitGroup
	if w.Cluster {
		hits := combat.ClusterHits(r, w.ClusterSize)
		groups = combat.GroupHits(r, hits, w.Damage, decl.Rear)
	} else {
		res := combat.RollHitLocation(r, decl.Rear)
		groups = []combat.HitGroup{{Location: res.Location, Hits: 1, Damage: w.Damage, Critical: res.Critical}}
	}

	// Scratch condition to compute the cascade the fold will reproduce.
	target := s.units[decl.TargetID]
	scratch := tus.Condition.Clone()
	var results []combat.LocationDamage
	wounds := 0
	var crits []CritRecord
	for _, g := range groups {
		results = append(results, combat.ApplyDamageWithTransfer(&scratch, target, g.Location, g.Damage)...)
		if g.Location.Base() == unit.LocHead {
			wounds += g.Hits
		}
		if g.Critical {
			cr := combat.Roll2D6(r)
			crits = append(crits, CritRecord{Location: string(g.Location), Roll: cr, Count: combat.CriticalHitCount(cr)})
		}
	}
	consciousRoll := 0
	unconscious := false
	if wounds > 0 {
		pr := combat.ApplyPilotDamage(&scratch, wounds)
		if !pr.Dead {
			// Every wound forces an immediate consciousness check.
			consciousRoll = combat.Roll2D6(r)
			if consciousRoll < combat.ConsciousnessTarget(scratch.PilotWounds) {
				unconscious = true
				scratch.PilotConscious = false
			}
		}
		scratch.ConsciousnessDue = false
	}

	events = append(events, s.append(EventDamageApplied, decl.AttackerID, DamageAppliedPayload{
		TargetID:          decl.TargetID,
		Groups:            groups,
		Results:           results,
		PilotWounds:       wounds,
		ConsciousnessRoll: consciousRoll,
		PilotUnconscious:  unconscious,
		Crits:             crits,
	}))

	if destroyed, cause := combat.CheckUnitDestruction(&scratch); destroyed {
		events = append(events, s.append(EventUnitDestroyed, decl.TargetID, UnitDestroyedPayload{
			UnitID: decl.TargetID,
			Cause:  cause,
		}))
	}
	return events, nil
}

// ResolveAllAttacks resolves every locked declaration of the current turn in
// event order, each against the state produced by the previous resolution.
func (s *Session) ResolveAllAttacks(r combat.Roller) ([]Event, error) {
	st := s.State()
	if st.Status != StatusActive || st.Phase != PhaseWeaponAttack {
		return nil, fmt.Errorf("resolve attacks during %s: %w", st.Phase, ErrWrongPhase)
	}

	var order []string
	for _, e := range s.Events {
		if e.Turn != st.Turn || e.Type != EventAttackDeclared {
			continue
		}
		p := e.Payload.(AttackDeclaredPayload)
		if us := st.Units[p.AttackerID]; us.AttackLock == LockLocked && us.PendingAttack != nil {
			order = append(order, p.AttackerID)
		}
	}

	var out []Event
	for _, id := range order {
		us := s.State().Units[id]
		if us.PendingAttack == nil {
			continue
		}
		events, err := s.resolveDeclared(*us.PendingAttack, r)
		if err != nil {
			return out, err
		}
		out = append(out, events...)
	}
	return out, nil
}

// GetValidTargets lists live enemies the attacker can engage: line of sight,
// inside some weapon's range, inside the firing arc.
func (s *Session) GetValidTargets(attackerID string) ([]string, error) {
	attacker, err := s.unit(attackerID)
	if err != nil {
		return nil, err
	}
	st := s.State()
	aus := st.Units[attackerID]
	if aus.Condition.Destroyed {
		return nil, nil
	}

	var out []string
	for _, id := range sortedUnitIDs(st) {
		if id == attackerID || s.units[id].Side == attacker.Side {
			continue
		}
		tus := st.Units[id]
		if tus.Condition.Destroyed {
			continue
		}
		if sight := los.Calculate(st.Grid, aus.Position, tus.Position); !sight.Clear {
			continue
		}
		arc := combat.DetermineArc(aus.Position, aus.Facing, tus.Position)
		dist := hexmap.Distance(aus.Position, tus.Position)
		for _, w := range attacker.Weapons {
			if combat.WeaponBracket(w, dist) == combat.OutOfRange {
				continue
			}
			if !combat.CanFireFromArc(combat.ArcFromString(w.Arc), arc) {
				continue
			}
			out = append(out, id)
			break
		}
	}
	return out, nil
}

// ─── Replay ─────────────────────────────────────────────────────────────────

// ReplayToSequence folds the log prefix up to and including seq, without
// touching the live session.
func (s *Session) ReplayToSequence(seq int) (*State, error) {
	n := 0
	for _, e := range s.Events {
		if e.Seq > seq {
			break
		}
		n++
	}
	return DeriveState(s.Config, s.Events[:n])
}

// ReplayToTurn folds every event belonging to turns up to and including
// turn.
func (s *Session) ReplayToTurn(turn int) (*State, error) {
	n := 0
	for _, e := range s.Events {
		if e.Turn > turn {
			break
		}
		n++
	}
	return DeriveState(s.Config, s.Events[:n])
}

func sortedUnitIDs(st *State) []string {
	ids := make([]string, 0, len(st.Units))
	for id := range st.Units {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
