package game

import (
	"fmt"
	"strings"

	"github.com/pefman/w40k-sim/internal/engine"
)

// WoundTarget returns the roll (2-6) needed to wound.
func WoundTarget(strength, toughness int) int {
	switch {
	case strength >= 2*toughness:
		return 2
	case strength > toughness:
		return 3
	case strength == toughness:
		return 4
	case strength*2 <= toughness:
		return 6
	default:
		return 5
	}
}

// EffectiveSave returns the save threshold after AP. ap is the combined
// weapon and modifier value; negative AP makes the save harder. An
// invulnerable save ignores AP and is used when it is easier. The result is
// clamped to [2,6]: a save never passes automatically and never needs more
// than a natural 6.
func EffectiveSave(save SaveProfile, ap int) int {
	eff := save.Armour - ap
	if save.Invulnerable != nil && *save.Invulnerable < eff {
		eff = *save.Invulnerable
	}
	return min(6, max(2, eff))
}

// Resolver runs single attack sequences. The zero value has no keyword
// rules; use NewResolver.
type Resolver struct {
	rules *Ruleset
}

// NewResolver uses rules for weapon keywords, or DefaultRuleset when nil.
func NewResolver(rules *Ruleset) *Resolver {
	if rules == nil {
		rules = DefaultRuleset()
	}
	return &Resolver{rules: rules}
}

// Resolve executes one full exchange of weapon against defender. The attack
// count is rolled once, then every attack goes through hit, wound, save,
// damage, feel-no-pain and the kill check. An invalid dice expression
// aborts the trial with engine.ErrInvalidExpression.
func (r *Resolver) Resolve(src engine.Source, attacker UnitProfile, weapon WeaponProfile, defender UnitProfile, mods AttackModifiers) (Outcome, error) {
	return r.resolve(src, attacker, weapon, defender, mods, nil)
}

// Explain is Resolve with a step-by-step log of every roll.
func (r *Resolver) Explain(src engine.Source, attacker UnitProfile, weapon WeaponProfile, defender UnitProfile, mods AttackModifiers) (Outcome, []string, error) {
	logs := []string{}
	out, err := r.resolve(src, attacker, weapon, defender, mods, func(format string, args ...any) {
		logs = append(logs, fmt.Sprintf(format, args...))
	})
	return out, logs, err
}

type tracer func(format string, args ...any)

func (t tracer) printf(format string, args ...any) {
	if t != nil {
		t(format, args...)
	}
}

func (r *Resolver) resolve(src engine.Source, attacker UnitProfile, weapon WeaponProfile, defender UnitProfile, mods AttackModifiers, trace tracer) (Outcome, error) {
	var out Outcome
	var rules []Rule
	if r != nil {
		rules = r.rules.For(weapon)
	}

	attacks, err := weapon.Attacks.Roll(src)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s attacks: %w", weapon.Name, err)
	}
	trace.printf("%s attacks %s with %s", attacker.Name, defender.Name, weapon.Name)
	if len(weapon.Keywords) > 0 {
		trace.printf("Weapon Abilities: [%s]", strings.Join(weapon.Keywords, ", "))
		if r != nil {
			for _, kw := range weapon.Keywords {
				if !r.rules.Has(kw) {
					trace.printf("Ability %q has no rule and is ignored", kw)
				}
			}
		}
	}
	trace.printf("Attacks A=%s -> %d", strings.TrimSpace(weapon.Attacks.String()), attacks)

	woundTN := WoundTarget(weapon.Strength, defender.Toughness)
	saveTN := EffectiveSave(defender.Save, weapon.AP+mods.AP)
	trace.printf("To Hit: needs %d+ (modifier %+d), To Wound: S %d vs T %d -> needs %d+, Save: %d+",
		weapon.Skill, mods.Hit, weapon.Strength, defender.Toughness, woundTN, saveTN)

	for i := 1; i <= attacks; i++ {
		roll := engine.D6(src)
		hit := HitRoll{Roll: roll, Critical: roll >= mods.critHit()}
		if roll+mods.Hit < weapon.Skill {
			trace.printf("Attack %d: hit roll %d -> MISS", i, roll)
			continue
		}
		out.Stats.Hits++
		if hit.Critical {
			out.Stats.CritHits++
		}

		critWound := false
		if autoWound(rules, hit) {
			critWound = true
			trace.printf("Attack %d: hit roll %d -> CRITICAL HIT, wounds automatically", i, roll)
		} else {
			wr := engine.D6(src)
			critWound = wr >= mods.critWound()
			if wr+mods.Wound < woundTN {
				trace.printf("Attack %d: hit roll %d -> HIT, wound roll %d -> FAIL", i, roll, wr)
				continue
			}
			trace.printf("Attack %d: hit roll %d -> HIT, wound roll %d -> WOUND", i, roll, wr)
		}
		out.Stats.Wounds++
		if critWound {
			out.Stats.CritWounds++
		}

		sr := engine.D6(src)
		if sr >= saveTN {
			trace.printf("Attack %d: save roll %d -> SAVED", i, sr)
			continue
		}
		trace.printf("Attack %d: save roll %d -> FAILED", i, sr)
		out.Stats.FailedSaves++

		dmg, err := weapon.Damage.Roll(src)
		if err != nil {
			return Outcome{}, fmt.Errorf("%s damage: %w", weapon.Name, err)
		}
		dmg = max(1, dmg+mods.Damage)
		if fnp := defender.Save.FeelNoPain; fnp != nil {
			ignored := feelNoPain(src, dmg, *fnp)
			trace.printf("Attack %d: Feel No Pain %d+ ignored %d of %d damage", i, *fnp, ignored, dmg)
			dmg -= ignored
		}
		out.Damage += dmg
		if dmg >= defender.Wounds {
			out.Kills++
			trace.printf("Attack %d: %d damage -> KILL", i, dmg)
		} else {
			trace.printf("Attack %d: %d damage", i, dmg)
		}
	}
	trace.printf("Total Damage: %d, Kills %d, Hits %d, Wounds %d, Unsaved %d", out.Damage, out.Kills, out.Stats.Hits, out.Stats.Wounds, out.Stats.FailedSaves)
	return out, nil
}

// feelNoPain rolls once per point of damage and returns how many were ignored.
func feelNoPain(src engine.Source, damage, threshold int) int {
	ignored := 0
	for i := 0; i < damage; i++ {
		if engine.D6(src) >= threshold {
			ignored++
		}
	}
	return ignored
}
