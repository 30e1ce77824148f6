package models

// ========================= Profile Records =========================
// Datasheet-shaped records as written in roster files and API requests.
// They are converted to engine profiles with Profile().

type Weapon struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"` // "melee" or "ranged"
	Range string `json:"range,omitempty" yaml:"range,omitempty"`
	// Attacks and Damage accept numbers or dice expressions ("D6", "2D3+1").
	Attacks  Quantity  `json:"attacks" yaml:"attacks"`
	Skill    Threshold `json:"skill" yaml:"skill"` // BS or WS, e.g. "3+"
	Strength int       `json:"strength" yaml:"strength"`
	AP       int       `json:"ap" yaml:"ap"` // e.g. -1
	Damage   Quantity  `json:"damage" yaml:"damage"`
	Keywords []string  `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

type Unit struct {
	Faction string    `json:"Faction,omitempty" yaml:"faction,omitempty"`
	Name    string    `json:"Name" yaml:"name"`
	T       int       `json:"T" yaml:"t"`
	W       int       `json:"W" yaml:"w"`
	Sv      Threshold `json:"Sv" yaml:"sv"` // "-" or 7 means no armour save
	InvSv   Threshold `json:"InvSv,omitempty" yaml:"inv_sv,omitempty"`
	FNP     Threshold `json:"FNP,omitempty" yaml:"fnp,omitempty"`
	// Abilities are free text; "Feel No Pain 5+" is picked up when FNP is unset.
	Abilities []string `json:"Abilities,omitempty" yaml:"abilities,omitempty"`
	Weapons   []Weapon `json:"Weapons,omitempty" yaml:"weapons,omitempty"`
}

// Modifiers mirrors game.AttackModifiers; unset crit thresholds default to 6.
type Modifiers struct {
	Hit       int `json:"hit" yaml:"hit"`
	Wound     int `json:"wound" yaml:"wound"`
	AP        int `json:"ap" yaml:"ap"`
	Damage    int `json:"damage" yaml:"damage"`
	CritHit   int `json:"crit_hit,omitempty" yaml:"crit_hit,omitempty"`
	CritWound int `json:"crit_wound,omitempty" yaml:"crit_wound,omitempty"`
}

// Matchup names an attacker, one of its weapons and a defender.
type Matchup struct {
	Attacker string    `json:"attacker" yaml:"attacker"`
	Weapon   string    `json:"weapon" yaml:"weapon"`
	Defender string    `json:"defender" yaml:"defender"`
	Mods     Modifiers `json:"modifiers" yaml:"modifiers"`
}
