// Package stats holds the numeric primitives shared by the analytics engines.
// Every function returns a neutral value for degenerate input instead of NaN.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Sum returns the sum of xs.
func Sum(xs []float64) float64 {
	return floats.Sum(xs)
}

// PopStdDev returns the population standard deviation (ddof = 0).
func PopStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	_, std := stat.PopMeanStdDev(xs, nil)
	return std
}

// StdDev returns the sample standard deviation (ddof = 1), 0 below two samples.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// MinMax returns the extremes of xs, zeros when empty.
func MinMax(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	return floats.Min(xs), floats.Max(xs)
}

// Sorted returns a sorted copy of xs.
func Sorted(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// Percentile interpolates linearly between closest ranks of sorted values,
// rank = p/100 * (n-1).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n == 1 || p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[n-1]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	w := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*w
}

// PercentileRank returns the share of values strictly below v plus half of
// the ties, in percent. Empty input yields 50.
func PercentileRank(values []float64, v float64) float64 {
	if len(values) == 0 {
		return 50
	}
	var below, equal int
	for _, x := range values {
		switch {
		case x < v:
			below++
		case x == v:
			equal++
		}
	}
	return (float64(below) + 0.5*float64(equal)) / float64(len(values)) * 100
}

// ChangePercent is (last-first)/first*100 with first = 0 mapping to 0 when
// last is also 0 and to 100 otherwise.
func ChangePercent(first, last float64) float64 {
	if first == 0 {
		if last == 0 {
			return 0
		}
		return 100
	}
	return (last - first) / first * 100
}

// Index returns 0..n-1 as float64.
func Index(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// Pearson returns the correlation of x and y and whether it is defined:
// at least two pairs and non-zero variance on both sides.
func Pearson(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	if variance(x) == 0 || variance(y) == 0 {
		return 0, false
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, false
	}
	return clamp(r, -1, 1), true
}

func variance(xs []float64) float64 {
	m := stat.Mean(xs, nil)
	var ss float64
	for _, v := range xs {
		d := v - m
		ss += d * d
	}
	return ss
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 { return clamp(v, lo, hi) }
