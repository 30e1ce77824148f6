// Package stats summarizes integer samples such as per-trial damage.
package stats

import (
	"math"
	"slices"
)

// Percentile returns the p-th percentile (0-100) of values, interpolating
// linearly between the two nearest order statistics at (len-1)*p/100.
// An empty sample yields 0. values is not modified.
func Percentile(values []int, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return percentileSorted(sorted, p)
}

// Percentiles computes several percentiles with a single sort.
func Percentiles(values []int, ps ...float64) []float64 {
	out := make([]float64, len(ps))
	if len(values) == 0 {
		return out
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	for i, p := range ps {
		out[i] = percentileSorted(sorted, p)
	}
	return out
}

func percentileSorted(sorted []int, p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	p = min(100, max(0, p))
	pos := float64(len(sorted)-1) * p / 100
	lower := int(math.Floor(pos))
	upper := min(lower+1, len(sorted)-1)
	w := pos - float64(lower)
	return float64(sorted[lower])*(1-w) + float64(sorted[upper])*w
}

// Mean returns the arithmetic mean, or 0 for an empty sample.
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var acc float64
	for _, v := range values {
		d := float64(v) - mean
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(values)))
}
