package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Threshold is an "N+" roll characteristic such as a save or skill.
// It decodes from 3, "3" or "3+". "", "-" and "N/A" decode to 0 (none).
type Threshold int

// ParseThreshold parses "3+", "3" or "-".
func ParseThreshold(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "n/a", "none":
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid threshold %q", s)
	}
	return Threshold(n), nil
}

func (t Threshold) String() string {
	if t == 0 {
		return "-"
	}
	return strconv.Itoa(int(t)) + "+"
}

func (t Threshold) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *Threshold) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("threshold: %s is neither a number nor a string", b)
		}
		s = strconv.Itoa(n)
	}
	v, err := ParseThreshold(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t Threshold) MarshalYAML() (any, error) { return t.String(), nil }

func (t *Threshold) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: threshold must be a scalar", n.Line)
	}
	v, err := ParseThreshold(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*t = v
	return nil
}

// Quantity is a number or dice expression kept as text.
type Quantity string

func (q *Quantity) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*q = Quantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("quantity: %s is neither a number nor a string", b)
	}
	*q = Quantity(n.String())
	return nil
}

func (q *Quantity) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: quantity must be a scalar", n.Line)
	}
	*q = Quantity(n.Value)
	return nil
}

// parseFNP finds the best "Feel No Pain N+" (or "FNP N+") among abilities.
func parseFNP(abilities []string) int {
	fnp := 0
	for _, a := range abilities {
		text := strings.ToLower(a)
		if !strings.Contains(text, "feel no pain") && !strings.Contains(text, "fnp") {
			continue
		}
		for i := 0; i+1 < len(text); i++ {
			if text[i] >= '2' && text[i] <= '6' && text[i+1] == '+' {
				n := int(text[i] - '0')
				if fnp == 0 || n < fnp {
					fnp = n
				}
				break
			}
		}
	}
	return fnp
}
