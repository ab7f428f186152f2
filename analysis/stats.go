package analysis

import (
	"math"
	"sort"
)

// mean computes the arithmetic mean
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// centralMoment computes the k-th central moment
func centralMoment(xs []float64, k int) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		sum += math.Pow(x-m, float64(k))
	}
	return sum / float64(len(xs))
}

// populationStd computes the standard deviation with n in the denominator
func populationStd(xs []float64) float64 {
	return math.Sqrt(centralMoment(xs, 2))
}

// sampleStd computes the standard deviation with n-1 in the denominator
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// skewness computes the population skewness g1 = m3 / m2^1.5.
// A flat distribution has no defined skew and reports 0.
func skewness(xs []float64) float64 {
	m2 := centralMoment(xs, 2)
	if m2 == 0 {
		return 0
	}
	return centralMoment(xs, 3) / math.Pow(m2, 1.5)
}

// kurtosis computes the population excess kurtosis g2 = m4 / m2^2 - 3.
// A flat distribution reports 0.
func kurtosis(xs []float64) float64 {
	m2 := centralMoment(xs, 2)
	if m2 == 0 {
		return 0
	}
	return centralMoment(xs, 4)/(m2*m2) - 3
}

// percentile computes the p-th percentile with linear interpolation
// between the two nearest order statistics.
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// clamp bounds x to the closed interval [lo, hi]
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// linspace samples count evenly spaced values across [start, end]
func linspace(start, end float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []float64{start}
	}
	step := (end - start) / float64(count-1)
	xs := make([]float64, count)
	for i := range xs {
		xs[i] = start + float64(i)*step
	}
	return xs
}
