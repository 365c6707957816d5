// Package queueing implements the finite-source (machine repair) M/M/c/N
// model: N machines fail independently at rate λ, c repairers each fix one
// machine at a time at rate μ.
package queueing

import (
	"crewopt/internal/domain"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// saturationTolerance is the smallest N-L treated as a working population.
const saturationTolerance = 1e-12

// stateTerms returns the unnormalized steady-state weights for n = 0..N.
//
//	n <  c: N!/((N-n)! n!)          * ρ^n
//	n >= c: N!/((N-n)! c! c^(n-c))  * ρ^n
//
// Both regimes share the recurrence term(n) = term(n-1) * (N-n+1) * ρ / min(n, c),
// which avoids evaluating factorials and agrees at n = c.
func stateTerms(population, crew int, rho float64) []float64 {
	terms := make([]float64, population+1)
	terms[0] = 1
	for n := 1; n <= population; n++ {
		terms[n] = terms[n-1] * float64(population-n+1) * rho / float64(min(n, crew))
	}
	return terms
}

func checkArgs(population, crew int, lambda, mu float64) (domain.SystemParameters, error) {
	params := domain.SystemParameters{Population: population, FailureRate: lambda, ServiceRate: mu}
	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, checkCrew(population, crew)
}

func checkCrew(population, crew int) error {
	if population < 1 {
		return fmt.Errorf("%w: population %d must be at least 1", domain.ErrInvalidParameter, population)
	}
	if crew < 1 || crew > population {
		return fmt.Errorf("%w: crew size %d outside [1,%d]", domain.ErrInvalidParameter, crew, population)
	}
	return nil
}

func checkDistribution(population int, dist domain.StateDistribution) error {
	if len(dist) != population+1 {
		return fmt.Errorf("%w: distribution has %d states, want %d", domain.ErrInvalidParameter, len(dist), population+1)
	}
	return nil
}

// BaseProbability returns P0, the probability that no machine is broken.
func BaseProbability(population, crew int, lambda, mu float64) (float64, error) {
	params, err := checkArgs(population, crew, lambda, mu)
	if err != nil {
		return 0, err
	}

	denominator := floats.Sum(stateTerms(population, crew, params.Ratio()))
	// Unreachable for finite positive rates unless the terms overflow.
	if denominator == 0 || math.IsInf(denominator, 0) || math.IsNaN(denominator) {
		return 0, fmt.Errorf("%w: normalizing sum is %v for N=%d c=%d", domain.ErrDegenerateSystem, denominator, population, crew)
	}
	return 1 / denominator, nil
}

// StateDistribution returns P0..PN for the given crew size, scaled by p0.
func StateDistribution(population, crew int, lambda, mu, p0 float64) (domain.StateDistribution, error) {
	params, err := checkArgs(population, crew, lambda, mu)
	if err != nil {
		return nil, err
	}
	if p0 < 0 || p0 > 1 || math.IsNaN(p0) {
		return nil, fmt.Errorf("%w: P0 %v is not a probability", domain.ErrInvalidParameter, p0)
	}

	terms := stateTerms(population, crew, params.Ratio())
	floats.Scale(p0, terms)
	return domain.StateDistribution(terms), nil
}

// QueueLength returns Lq, the expected number of broken machines waiting for
// a free repairer.
func QueueLength(population, crew int, dist domain.StateDistribution) (float64, error) {
	if err := checkCrew(population, crew); err != nil {
		return 0, err
	}
	if err := checkDistribution(population, dist); err != nil {
		return 0, err
	}
	return dist.Tail(crew), nil
}

// SystemLength returns L, the expected number of broken machines, waiting or
// in repair.
func SystemLength(population, crew int, dist domain.StateDistribution, lq float64) (float64, error) {
	if err := checkCrew(population, crew); err != nil {
		return 0, err
	}
	if err := checkDistribution(population, dist); err != nil {
		return 0, err
	}
	return lq + dist.Mean(crew) + float64(crew)*(1-dist.Mass(crew)), nil
}

// WaitTimes returns W and Wq through Little's law with the finite-source
// arrival rate λ(N-L). A saturated system (L = N) has no arrivals and fails
// with ErrDegenerateSystem.
func WaitTimes(l, lq, lambda float64, population int) (w, wq float64, err error) {
	rate := EffectiveArrivalRate(l, lambda, population)
	if float64(population)-l <= saturationTolerance || rate <= 0 || math.IsNaN(rate) {
		return 0, 0, fmt.Errorf("%w: effective arrival rate %v with L=%v N=%d", domain.ErrDegenerateSystem, rate, l, population)
	}
	return l / rate, lq / rate, nil
}

// EffectiveArrivalRate is the failure rate of the machines still running.
func EffectiveArrivalRate(l, lambda float64, population int) float64 {
	return lambda * (float64(population) - l)
}
