package unit

// ─── Condition — per-unit damage state ──────────────────────────────────────
// Condition is the mutable damage bookkeeping for one unit: per-location
// armor/structure remaining, pilot wounds, destruction. Sessions keep one
// Condition per unit inside the derived game state and clone it before every
// fold step, so a retained snapshot is never touched by later events.

type LocationState struct {
	Armor     int  `json:"armor"`
	RearArmor int  `json:"rearArmor,omitempty"`
	Structure int  `json:"structure"`
	Destroyed bool `json:"destroyed,omitempty"`
}

type Condition struct {
	Locations map[Location]LocationState `json:"locations"`

	PilotWounds      int    `json:"pilotWounds,omitempty"`
	PilotConscious   bool   `json:"pilotConscious"`
	PilotDead        bool   `json:"pilotDead,omitempty"`
	ConsciousnessDue bool   `json:"consciousnessDue,omitempty"`
	Destroyed        bool   `json:"destroyed,omitempty"`
	DestructionCause string `json:"destructionCause,omitempty"`
}

// NewCondition builds a fresh, undamaged condition from the unit's plates.
func NewCondition(u *Unit) Condition {
	locs := make(map[Location]LocationState, len(u.Plates))
	for loc, p := range u.Plates {
		locs[loc] = LocationState{
			Armor:     p.Armor,
			RearArmor: p.RearArmor,
			Structure: p.Structure,
		}
	}
	return Condition{Locations: locs, PilotConscious: true}
}

// Clone deep-copies the condition.
func (c Condition) Clone() Condition {
	out := c
	out.Locations = make(map[Location]LocationState, len(c.Locations))
	for k, v := range c.Locations {
		out.Locations[k] = v
	}
	return out
}

// LocationDestroyed reports whether a location's structure is gone.
func (c Condition) LocationDestroyed(loc Location) bool {
	return c.Locations[loc.Base()].Destroyed
}
