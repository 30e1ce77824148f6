package sim

import (
	"github.com/pefman/w40k-sim/internal/game"
	"github.com/pefman/w40k-sim/internal/stats"
)

// Summary is the JSON view of a SimulationResult without the raw samples.
type Summary struct {
	Attacker        string                `json:"attacker"`
	Defender        string                `json:"defender"`
	Weapon          string                `json:"weapon"`
	Iterations      int                   `json:"iterations"`
	Seed            uint64                `json:"seed"`
	AverageDamage   float64               `json:"average_damage"`
	StdDevDamage    float64               `json:"stddev_damage"`
	KillProbability float64               `json:"kill_probability"`
	Percentiles     map[string]float64    `json:"percentiles"`
	Stats           game.AttackStatistics `json:"stats"`
	Histogram       []stats.Bucket        `json:"histogram,omitempty"`
}

var summaryPercentiles = []struct {
	key string
	p   float64
}{
	{"p10", 10}, {"p25", 25}, {"p50", 50}, {"p75", 75}, {"p90", 90},
}

// Summary derives the reported metrics. withHistogram adds per-damage
// counts for plotting.
func (r *SimulationResult) Summary(withHistogram bool) Summary {
	ps := make([]float64, len(summaryPercentiles))
	for i, sp := range summaryPercentiles {
		ps[i] = sp.p
	}
	values := stats.Percentiles(r.Damage, ps...)
	pm := make(map[string]float64, len(values))
	for i, sp := range summaryPercentiles {
		pm[sp.key] = values[i]
	}
	s := Summary{
		Attacker:        r.Attacker,
		Defender:        r.Defender,
		Weapon:          r.Weapon,
		Iterations:      r.Iterations,
		Seed:            r.Seed,
		AverageDamage:   r.AverageDamage(),
		StdDevDamage:    stats.StdDev(r.Damage),
		KillProbability: r.KillProbability(),
		Percentiles:     pm,
		Stats:           r.Stats,
	}
	if withHistogram {
		s.Histogram = stats.Histogram(r.Damage)
	}
	return s
}
