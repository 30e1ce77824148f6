package models

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pefman/w40k-sim/internal/engine"
	"github.com/pefman/w40k-sim/internal/game"
)

var (
	ErrUnknownUnit   = errors.New("unknown unit")
	ErrUnknownWeapon = errors.New("unknown weapon")
	ErrInvalidUnit   = errors.New("invalid unit profile")
)

// Roster is a set of units loaded from a YAML (or JSON) file:
//
//	units:
//	  - name: Intercessors
//	    t: 4
//	    w: 2
//	    sv: 3+
//	    weapons:
//	      - {name: Bolt rifle, attacks: 2, skill: 3+, strength: 4, ap: -1, damage: 1}
type Roster struct {
	Units []Unit `json:"units" yaml:"units"`
}

// LoadRoster reads a roster file.
func LoadRoster(path string) (*Roster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Roster
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return &r, nil
}

// Find returns the unit named name, case-insensitively.
func (r *Roster) Find(name string) (Unit, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, u := range r.Units {
		if strings.ToLower(strings.TrimSpace(u.Name)) == key {
			return u, nil
		}
	}
	return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
}

// Resolve looks up the matchup and converts it to engine inputs.
func (r *Roster) Resolve(m Matchup) (attacker game.UnitProfile, weapon game.WeaponProfile, defender game.UnitProfile, err error) {
	au, err := r.Find(m.Attacker)
	if err != nil {
		return
	}
	du, err := r.Find(m.Defender)
	if err != nil {
		return
	}
	if attacker, err = au.Profile(); err != nil {
		return
	}
	if defender, err = du.Profile(); err != nil {
		return
	}
	if m.Weapon == "" && len(attacker.Weapons) > 0 {
		weapon = attacker.Weapons[0]
		return
	}
	w, ok := attacker.WeaponByName(m.Weapon)
	if !ok {
		err = fmt.Errorf("%w: %q on %s", ErrUnknownWeapon, m.Weapon, attacker.Name)
		return
	}
	weapon = w
	return
}

// Profile converts the record to an engine profile. Dice expressions are
// checked here so a bad roster fails before any simulation starts.
func (u Unit) Profile() (game.UnitProfile, error) {
	if strings.TrimSpace(u.Name) == "" {
		return game.UnitProfile{}, fmt.Errorf("%w: missing name", ErrInvalidUnit)
	}
	if u.T < 1 || u.W < 1 {
		return game.UnitProfile{}, fmt.Errorf("%w: %s needs positive T and W", ErrInvalidUnit, u.Name)
	}
	p := game.UnitProfile{
		Name:      u.Name,
		Toughness: u.T,
		Wounds:    u.W,
		Save:      game.SaveProfile{Armour: int(u.Sv)},
	}
	if p.Save.Armour == 0 || p.Save.Armour > 7 {
		p.Save.Armour = 7
	}
	if u.InvSv > 0 {
		inv := int(u.InvSv)
		p.Save.Invulnerable = &inv
	}
	fnp := int(u.FNP)
	if fnp == 0 {
		fnp = parseFNP(u.Abilities)
	}
	if fnp > 0 {
		p.Save.FeelNoPain = &fnp
	}
	for _, w := range u.Weapons {
		wp, err := w.Profile()
		if err != nil {
			return game.UnitProfile{}, fmt.Errorf("%s: %w", u.Name, err)
		}
		p.Weapons = append(p.Weapons, wp)
	}
	return p, nil
}

// Profile converts the weapon record to an engine profile.
func (w Weapon) Profile() (game.WeaponProfile, error) {
	p := game.WeaponProfile{
		Name:     w.Name,
		Attacks:  engine.NewDiceExpression(string(w.Attacks)),
		Skill:    int(w.Skill),
		Strength: w.Strength,
		AP:       w.AP,
		Damage:   engine.NewDiceExpression(string(w.Damage)),
		Melee:    strings.EqualFold(strings.TrimSpace(w.Type), "melee"),
		Keywords: w.Keywords,
	}
	if p.Skill == 0 {
		// Torrent-style weapons list no skill; treat as always hitting.
		p.Skill = 1
	}
	if err := p.Attacks.Validate(); err != nil {
		return game.WeaponProfile{}, fmt.Errorf("%s attacks: %w", w.Name, err)
	}
	if err := p.Damage.Validate(); err != nil {
		return game.WeaponProfile{}, fmt.Errorf("%s damage: %w", w.Name, err)
	}
	return p, nil
}

// Modifiers converts to engine modifiers.
func (m Modifiers) Modifiers() game.AttackModifiers {
	out := game.DefaultModifiers()
	out.Hit, out.Wound, out.AP, out.Damage = m.Hit, m.Wound, m.AP, m.Damage
	if m.CritHit != 0 {
		out.CritHit = m.CritHit
	}
	if m.CritWound != 0 {
		out.CritWound = m.CritWound
	}
	return out
}

// DemoRoster is used when no roster file is given.
func DemoRoster() *Roster {
	return &Roster{Units: []Unit{
		{
			Name:  "Demo Captain",
			T:     4,
			W:     5,
			Sv:    2,
			InvSv: 4,
			Weapons: []Weapon{{
				Name:     "Tempest Blade",
				Type:     "melee",
				Attacks:  "6",
				Skill:    2,
				Strength: 5,
				AP:       -2,
				Damage:   "2",
				Keywords: []string{"Lethal Hits"},
			}},
		},
		{
			Name: "Demo Termagant",
			T:    3,
			W:    1,
			Sv:   5,
		},
	}}
}

// DemoMatchup pits the demo captain against the termagants.
func DemoMatchup() Matchup {
	return Matchup{Attacker: "Demo Captain", Weapon: "Tempest Blade", Defender: "Demo Termagant"}
}
