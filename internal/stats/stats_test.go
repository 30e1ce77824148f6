package stats

import (
	"math"
	"slices"
	"testing"
)

func TestPercentile(t *testing.T) {
	seq := []int{1, 2, 3, 4, 5}
	tests := []struct {
		values []int
		p      float64
		want   float64
	}{
		{seq, 50, 3},
		{seq, 0, 1},
		{seq, 100, 5},
		{seq, 25, 2},
		{seq, 90, 4.6},
		{[]int{5, 1, 4, 2, 3}, 50, 3},
		{[]int{10, 20}, 50, 15},
		{[]int{7}, 99, 7},
		{nil, 50, 0},
		{[]int{}, 0, 0},
		{seq, -5, 1},
		{seq, 150, 5},
		{seq, math.NaN(), 0},
	}
	for _, tt := range tests {
		got := Percentile(tt.values, tt.p)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
		}
	}
}

func TestPercentile_DoesNotMutate(t *testing.T) {
	values := []int{3, 1, 2}
	Percentile(values, 50)
	if !slices.Equal(values, []int{3, 1, 2}) {
		t.Fatalf("input mutated: %v", values)
	}
}

func TestPercentiles(t *testing.T) {
	got := Percentiles([]int{1, 2, 3, 4, 5}, 0, 50, 100)
	if !slices.Equal(got, []float64{1, 3, 5}) {
		t.Fatalf("Percentiles = %v", got)
	}
	if got := Percentiles(nil, 50); !slices.Equal(got, []float64{0}) {
		t.Fatalf("Percentiles(nil) = %v", got)
	}
}

func TestMeanStdDev(t *testing.T) {
	if got := Mean([]int{2, 4, 4, 4, 5, 5, 7, 9}); got != 5 {
		t.Fatalf("Mean = %v, want 5", got)
	}
	if got := StdDev([]int{2, 4, 4, 4, 5, 5, 7, 9}); got != 2 {
		t.Fatalf("StdDev = %v, want 2", got)
	}
	if Mean(nil) != 0 || StdDev(nil) != 0 {
		t.Fatalf("empty sample should be 0")
	}
}

func TestHistogram(t *testing.T) {
	got := Histogram([]int{3, 0, 3, 1, 0, 3})
	want := []Bucket{{0, 2}, {1, 1}, {3, 3}}
	if !slices.Equal(got, want) {
		t.Fatalf("Histogram = %v, want %v", got, want)
	}
	if len(Histogram(nil)) != 0 {
		t.Fatalf("expected empty histogram")
	}
}
