package game

import "github.com/pefman/w40k-sim/internal/engine"

// SaveProfile holds the defender's save characteristics.
type SaveProfile struct {
	Armour       int  `json:"armour"`                 // 2-6, 7 means no armour save
	Invulnerable *int `json:"invulnerable,omitempty"` // ignores AP
	FeelNoPain   *int `json:"feel_no_pain,omitempty"` // rolled per point of damage
}

// UnitProfile captures the minimal stats needed for resolution.
type UnitProfile struct {
	Name      string          `json:"name"`
	Toughness int             `json:"toughness"`
	Wounds    int             `json:"wounds"`
	Save      SaveProfile     `json:"save"`
	Weapons   []WeaponProfile `json:"weapons,omitempty"`
}

// WeaponProfile is a single weapon profile.
type WeaponProfile struct {
	Name     string                `json:"name"`
	Attacks  engine.DiceExpression `json:"attacks"`
	Skill    int                   `json:"skill"` // hit threshold (2-6)
	Strength int                   `json:"strength"`
	AP       int                   `json:"ap"` // e.g. -1 worsens the save by 1
	Damage   engine.DiceExpression `json:"damage"`
	Melee    bool                  `json:"melee,omitempty"`
	Keywords []string              `json:"keywords,omitempty"`
}

// AttackModifiers are flat offsets applied to rolls plus the thresholds at
// which an unmodified hit or wound roll is critical.
type AttackModifiers struct {
	Hit       int `json:"hit_modifier"`
	Wound     int `json:"wound_modifier"`
	AP        int `json:"ap_modifier"`
	Damage    int `json:"damage_modifier"`
	CritHit   int `json:"crit_hit_threshold"`
	CritWound int `json:"crit_wound_threshold"`
}

// DefaultModifiers applies no offsets and crits on 6s.
func DefaultModifiers() AttackModifiers {
	return AttackModifiers{CritHit: 6, CritWound: 6}
}

// critHit and critWound treat an unset threshold as 6.
func (m AttackModifiers) critHit() int {
	if m.CritHit <= 0 {
		return 6
	}
	return m.CritHit
}

func (m AttackModifiers) critWound() int {
	if m.CritWound <= 0 {
		return 6
	}
	return m.CritWound
}

// AttackStatistics tallies per-phase outcomes. Counters only ever add, so
// tallies from independent trials can be summed in any order.
type AttackStatistics struct {
	Hits       int `json:"hits"`
	CritHits   int `json:"crit_hits"`
	Wounds     int `json:"wounds"`
	CritWounds int `json:"crit_wounds"`
	// FailedSaves counts attacks whose save did NOT stop them, i.e. attacks
	// that went on to inflict damage. The name follows the defender's
	// perspective; it is not a count of saves that were passed.
	FailedSaves int `json:"failed_saves"`
}

// Add returns the element-wise sum of s and o.
func (s AttackStatistics) Add(o AttackStatistics) AttackStatistics {
	return AttackStatistics{
		Hits:        s.Hits + o.Hits,
		CritHits:    s.CritHits + o.CritHits,
		Wounds:      s.Wounds + o.Wounds,
		CritWounds:  s.CritWounds + o.CritWounds,
		FailedSaves: s.FailedSaves + o.FailedSaves,
	}
}

// Outcome is the result of one trial.
type Outcome struct {
	Damage int
	Kills  int // attacks whose damage alone met the defender's wounds
	Stats  AttackStatistics
}

// WeaponByName finds a weapon on u, case-insensitively.
func (u UnitProfile) WeaponByName(name string) (WeaponProfile, bool) {
	key := normalizeKeyword(name)
	for _, w := range u.Weapons {
		if normalizeKeyword(w.Name) == key {
			return w, true
		}
	}
	return WeaponProfile{}, false
}
