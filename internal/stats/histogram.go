package stats

import "slices"

// Bucket counts how many samples took Value.
type Bucket struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// Histogram groups values into one bucket per distinct value, ascending.
func Histogram(values []int) []Bucket {
	counts := map[int]int{}
	for _, v := range values {
		counts[v]++
	}
	out := make([]Bucket, 0, len(counts))
	for v, c := range counts {
		out = append(out, Bucket{Value: v, Count: c})
	}
	slices.SortFunc(out, func(a, b Bucket) int { return a.Value - b.Value })
	return out
}
