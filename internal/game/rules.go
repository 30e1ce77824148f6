package game

import (
	"strings"
	"sync"
)

// KeywordLethalHits makes critical hits wound automatically.
const KeywordLethalHits = "lethal hits"

// HitRoll describes a successful hit as seen by keyword rules.
type HitRoll struct {
	Roll     int // unmodified
	Critical bool
}

// Rule is the resolution-time behaviour attached to a weapon keyword.
// Nil hooks are skipped.
type Rule struct {
	// AutoWound reports whether the hit skips the wound roll and counts as
	// a critical wound.
	AutoWound func(hit HitRoll) bool
}

// Ruleset maps normalized weapon keywords to rules. It is safe for
// concurrent use.
type Ruleset struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

func NewRuleset() *Ruleset { return &Ruleset{rules: map[string]Rule{}} }

// DefaultRuleset knows "lethal hits".
func DefaultRuleset() *Ruleset {
	rs := NewRuleset()
	rs.Register(KeywordLethalHits, Rule{
		AutoWound: func(hit HitRoll) bool { return hit.Critical },
	})
	return rs
}

// Register binds rule to keyword, replacing any previous binding.
func (rs *Ruleset) Register(keyword string, rule Rule) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.rules[normalizeKeyword(keyword)] = rule
}

// Has reports whether keyword has a registered rule.
func (rs *Ruleset) Has(keyword string) bool {
	if rs == nil {
		return false
	}
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	_, ok := rs.rules[normalizeKeyword(keyword)]
	return ok
}

// For returns the rules matching the weapon's keywords. Unknown keywords are
// ignored.
func (rs *Ruleset) For(w WeaponProfile) []Rule {
	if rs == nil || len(w.Keywords) == 0 {
		return nil
	}
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	var out []Rule
	for _, kw := range w.Keywords {
		if r, ok := rs.rules[normalizeKeyword(kw)]; ok {
			out = append(out, r)
		}
	}
	return out
}

func autoWound(rules []Rule, hit HitRoll) bool {
	for _, r := range rules {
		if r.AutoWound != nil && r.AutoWound(hit) {
			return true
		}
	}
	return false
}

func normalizeKeyword(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
