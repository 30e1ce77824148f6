package models

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pefman/w40k-sim/internal/engine"
)

const rosterYAML = `
units:
  - name: Intercessors
    faction: Ultramarines
    t: 4
    w: 2
    sv: 3+
    weapons:
      - name: Bolt rifle
        type: ranged
        attacks: 2
        skill: 3+
        strength: 4
        ap: -1
        damage: 1
      - name: Close combat weapon
        type: melee
        attacks: 3
        skill: "3"
        strength: 4
        ap: 0
        damage: 1
        keywords: [Lethal Hits]
  - name: Plague Marines
    t: 5
    w: 2
    sv: 3+
    abilities:
      - "Disgustingly Resilient: Feel No Pain 5+"
  - name: Cultists
    t: 3
    w: 1
    sv: "-"
    inv_sv: 6+
`

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRoster(t *testing.T) {
	r, err := LoadRoster(writeRoster(t, rosterYAML))
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(r.Units) != 3 {
		t.Fatalf("units = %d, want 3", len(r.Units))
	}
	att, w, def, err := r.Resolve(Matchup{Attacker: "intercessors", Weapon: "close combat weapon", Defender: "Plague Marines"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if att.Save.Armour != 3 || len(att.Weapons) != 2 {
		t.Fatalf("attacker = %+v", att)
	}
	if !w.Melee || w.Skill != 3 || w.Attacks.String() != "3" || len(w.Keywords) != 1 {
		t.Fatalf("weapon = %+v", w)
	}
	if def.Save.FeelNoPain == nil || *def.Save.FeelNoPain != 5 {
		t.Fatalf("defender FNP not parsed from abilities: %+v", def.Save)
	}

	cultists, err := r.Find("Cultists")
	if err != nil {
		t.Fatal(err)
	}
	p, err := cultists.Profile()
	if err != nil {
		t.Fatal(err)
	}
	if p.Save.Armour != 7 || p.Save.Invulnerable == nil || *p.Save.Invulnerable != 6 {
		t.Fatalf("cultist save = %+v", p.Save)
	}
}

func TestRoster_ResolveErrors(t *testing.T) {
	r := DemoRoster()
	if _, _, _, err := r.Resolve(Matchup{Attacker: "Nobody", Defender: "Demo Termagant"}); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("err = %v, want ErrUnknownUnit", err)
	}
	if _, _, _, err := r.Resolve(Matchup{Attacker: "Demo Captain", Weapon: "Lascannon", Defender: "Demo Termagant"}); !errors.Is(err, ErrUnknownWeapon) {
		t.Fatalf("err = %v, want ErrUnknownWeapon", err)
	}
	_, w, _, err := r.Resolve(Matchup{Attacker: "Demo Captain", Defender: "Demo Termagant"})
	if err != nil || w.Name != "Tempest Blade" {
		t.Fatalf("default weapon = %q, err %v", w.Name, err)
	}
}

func TestUnitProfile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		unit Unit
		want error
	}{
		{"no name", Unit{T: 4, W: 1}, ErrInvalidUnit},
		{"zero toughness", Unit{Name: "X", W: 1}, ErrInvalidUnit},
		{"bad damage", Unit{Name: "X", T: 4, W: 1, Weapons: []Weapon{{Name: "Gun", Attacks: "1", Damage: "lots"}}}, engine.ErrInvalidExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.unit.Profile(); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		in      string
		want    Threshold
		wantErr bool
	}{
		{"3+", 3, false},
		{"4", 4, false},
		{" 5+ ", 5, false},
		{"-", 0, false},
		{"", 0, false},
		{"N/A", 0, false},
		{"x+", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseThreshold(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseThreshold(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestUnit_JSON(t *testing.T) {
	body := `{"Name":"Termagants","T":3,"W":1,"Sv":"5+","InvSv":null,"FNP":6,
		"Weapons":[{"name":"Fleshborer","attacks":"D3","skill":4,"strength":5,"ap":0,"damage":1}]}`
	var u Unit
	if err := json.Unmarshal([]byte(body), &u); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if u.Sv != 5 || u.FNP != 6 || u.InvSv != 0 {
		t.Fatalf("unit = %+v", u)
	}
	if u.Weapons[0].Attacks != "D3" || u.Weapons[0].Damage != "1" || u.Weapons[0].Skill != 4 {
		t.Fatalf("weapon = %+v", u.Weapons[0])
	}
	out, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	var back Unit
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-decode %s: %v", out, err)
	}
	if back.Sv != 5 {
		t.Fatalf("round trip lost save: %s", out)
	}
}

func TestParseFNP(t *testing.T) {
	if got := parseFNP([]string{"Feel No Pain 6+", "FNP 4+"}); got != 4 {
		t.Fatalf("parseFNP = %d, want 4", got)
	}
	if got := parseFNP([]string{"Deep Strike", "3+ invulnerable"}); got != 0 {
		t.Fatalf("parseFNP = %d, want 0", got)
	}
}

func TestModifiers_Defaults(t *testing.T) {
	m := Modifiers{Hit: 1}.Modifiers()
	if m.CritHit != 6 || m.CritWound != 6 || m.Hit != 1 {
		t.Fatalf("modifiers = %+v", m)
	}
	if m := (Modifiers{CritHit: 5}).Modifiers(); m.CritHit != 5 {
		t.Fatalf("crit hit = %d, want 5", m.CritHit)
	}
}

func TestSampleRoster(t *testing.T) {
	r, err := LoadRoster(filepath.Join("..", "..", "rosters", "sample.yaml"))
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	for _, u := range r.Units {
		if _, err := u.Profile(); err != nil {
			t.Errorf("%s: %v", u.Name, err)
		}
	}
	_, w, def, err := r.Resolve(Matchup{Attacker: "Lictor", Defender: "Lictor"})
	if err != nil {
		t.Fatal(err)
	}
	if w.Damage.String() != "D3+1" || def.Save.Invulnerable == nil || *def.Save.Invulnerable != 5 {
		t.Fatalf("weapon = %+v, save = %+v", w, def.Save)
	}
}
