package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidExpression is returned when a dice text is neither an integer
// literal nor of the form [count]d<faces>[+/-modifier].
var ErrInvalidExpression = errors.New("invalid dice expression")

var diceRe = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// DiceExpression is a textual quantity such as "4", "D3" or "2D6+1".
// Every call to Roll produces a fresh value; nothing is cached.
type DiceExpression struct {
	raw string
}

func NewDiceExpression(text string) DiceExpression { return DiceExpression{raw: text} }

// FixedDice returns an expression that always evaluates to n.
func FixedDice(n int) DiceExpression { return DiceExpression{raw: strconv.Itoa(n)} }

func (d DiceExpression) String() string { return d.raw }

func (d DiceExpression) MarshalText() ([]byte, error) { return []byte(d.raw), nil }

func (d *DiceExpression) UnmarshalText(b []byte) error {
	d.raw = string(b)
	return nil
}

type diceSpec struct {
	fixed    bool
	value    int
	count    int
	faces    int
	modifier int
}

func (d DiceExpression) parse() (diceSpec, error) {
	expr := strings.ToLower(strings.TrimSpace(d.raw))
	if expr != "" && isDigits(expr) {
		n, err := strconv.Atoi(expr)
		if err != nil {
			return diceSpec{}, fmt.Errorf("%w: %q", ErrInvalidExpression, d.raw)
		}
		return diceSpec{fixed: true, value: n}, nil
	}
	m := diceRe.FindStringSubmatch(expr)
	if m == nil {
		return diceSpec{}, fmt.Errorf("%w: %q", ErrInvalidExpression, d.raw)
	}
	spec := diceSpec{count: 1}
	var err error
	if m[1] != "" {
		if spec.count, err = strconv.Atoi(m[1]); err != nil {
			return diceSpec{}, fmt.Errorf("%w: %q count: %v", ErrInvalidExpression, d.raw, err)
		}
	}
	if spec.faces, err = strconv.Atoi(m[2]); err != nil {
		return diceSpec{}, fmt.Errorf("%w: %q faces: %v", ErrInvalidExpression, d.raw, err)
	}
	if spec.faces < 1 {
		return diceSpec{}, fmt.Errorf("%w: %q has no faces", ErrInvalidExpression, d.raw)
	}
	if m[3] != "" {
		if spec.modifier, err = strconv.Atoi(m[3]); err != nil {
			return diceSpec{}, fmt.Errorf("%w: %q modifier: %v", ErrInvalidExpression, d.raw, err)
		}
	}
	return spec, nil
}

// Validate reports whether the expression parses, without rolling.
func (d DiceExpression) Validate() error {
	_, err := d.parse()
	return err
}

// Roll evaluates the expression. Literals consume no randomness; NdM+K
// draws N values in [1,M] from src. The result is not clamped and may be
// zero or negative when the modifier is.
func (d DiceExpression) Roll(src Source) (int, error) {
	spec, err := d.parse()
	if err != nil {
		return 0, err
	}
	if spec.fixed {
		return spec.value, nil
	}
	total := spec.modifier
	for i := 0; i < spec.count; i++ {
		total += 1 + src.IntN(spec.faces)
	}
	return total, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
