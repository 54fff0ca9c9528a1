package session

import (
	"fmt"
	"strings"
)

// ─── Transcript ─────────────────────────────────────────────────────────────

// GameLog renders the event log as a readable battle transcript, one line
// per event.
func (s *Session) GameLog() []string {
	out := make([]string, 0, len(s.Events))
	for _, e := range s.Events {
		out = append(out, renderEvent(e))
	}
	return out
}

func renderEvent(e Event) string {
	prefix := fmt.Sprintf("[T%d %s #%d]", e.Turn, e.Phase, e.Seq)

	switch p := e.Payload.(type) {
	case GameCreatedPayload:
		return fmt.Sprintf("%s Game %q created with %d units", prefix, p.Name, len(p.UnitIDs))
	case GameEndedPayload:
		if p.Winner == "" {
			return fmt.Sprintf("%s Game over (%s)", prefix, p.Cause)
		}
		return fmt.Sprintf("%s Game over: %s wins (%s)", prefix, p.Winner, p.Cause)
	case PhaseAdvancedPayload:
		if p.To == PhaseInitiative {
			return fmt.Sprintf("%s --- Turn %d ---", prefix, p.Turn)
		}
		return fmt.Sprintf("%s Phase: %s", prefix, p.To)
	case InitiativeRolledPayload:
		parts := make([]string, 0, len(p.Rolls))
		for side, roll := range p.Rolls {
			parts = append(parts, fmt.Sprintf("%s=%d", side, roll))
		}
		return fmt.Sprintf("%s Initiative: %s wins (%s)", prefix, p.Winner, strings.Join(parts, " "))
	case MovementDeclaredPayload:
		return fmt.Sprintf("%s %s plans %s to %s (%d MP)", prefix, p.UnitID, p.Mode, p.To.Key(), p.Cost)
	case MovementLockedPayload:
		return fmt.Sprintf("%s %s moves to %s (%s, %d hexes, +%d heat)",
			prefix, p.UnitID, p.To.Key(), p.Mode, p.HexesMoved, p.Heat)
	case AttackDeclaredPayload:
		arc := ""
		if p.Rear {
			arc = ", rear"
		}
		return fmt.Sprintf("%s %s targets %s with %s (TN %d at %d hexes%s)",
			prefix, p.AttackerID, p.TargetID, p.WeaponID, p.ToHit.Total(), p.Distance, arc)
	case AttackLockedPayload:
		return fmt.Sprintf("%s %s locks in attack", prefix, p.AttackerID)
	case AttackResolvedPayload:
		if p.TargetDestroyed {
			return fmt.Sprintf("%s %s holds fire: %s already destroyed", prefix, p.AttackerID, p.TargetID)
		}
		verdict := "MISSES"
		if p.Hit {
			verdict = "HITS"
		}
		return fmt.Sprintf("%s %s fires %s at %s: rolls %d vs TN %d, %s",
			prefix, p.AttackerID, p.WeaponID, p.TargetID, p.Roll, p.TargetNumber, verdict)
	case DamageAppliedPayload:
		parts := make([]string, 0, len(p.Groups))
		for _, g := range p.Groups {
			parts = append(parts, fmt.Sprintf("%d to %s", g.Damage, g.Location))
		}
		line := fmt.Sprintf("%s %s takes %s", prefix, p.TargetID, strings.Join(parts, ", "))
		if p.PilotWounds > 0 {
			line += fmt.Sprintf(" (pilot +%d wounds)", p.PilotWounds)
		}
		if p.PilotUnconscious {
			line += " - pilot knocked out"
		}
		return line
	case UnitDestroyedPayload:
		return fmt.Sprintf("%s %s DESTROYED (%s)", prefix, p.UnitID, p.Cause)
	case HeatAdjustedPayload:
		return fmt.Sprintf("%s %s sinks %d heat (now %d)", prefix, p.UnitID, -p.Delta, p.Heat)
	}

	switch e.Type {
	case EventGameStarted:
		return fmt.Sprintf("%s Game started", prefix)
	}
	return fmt.Sprintf("%s %s", prefix, e.Type)
}
