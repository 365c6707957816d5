package domain

import (
	"gonum.org/v1/gonum/floats"
)

// StateDistribution holds P0..PN; index n is the probability that exactly n
// machines are broken.
type StateDistribution []float64

// Total returns the sum of all state probabilities.
func (d StateDistribution) Total() float64 {
	if len(d) == 0 {
		return 0
	}
	return floats.Sum(d)
}

// Mass returns the probability of fewer than below broken machines.
func (d StateDistribution) Mass(below int) float64 {
	below = min(max(below, 0), len(d))
	if below == 0 {
		return 0
	}
	return floats.Sum(d[:below])
}

// Mean returns sum(n*Pn) over n < below.
func (d StateDistribution) Mean(below int) float64 {
	below = min(max(below, 0), len(d))
	if below == 0 {
		return 0
	}
	return floats.Dot(d[:below], states(below))
}

// Tail returns sum((n-from)*Pn) over n >= from.
func (d StateDistribution) Tail(from int) float64 {
	from = min(max(from, 0), len(d))
	if from == len(d) {
		return 0
	}
	excess := states(len(d) - from)
	return floats.Dot(d[from:], excess)
}

func states(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i)
	}
	return s
}
