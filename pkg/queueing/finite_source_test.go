package queueing

import (
	"crewopt/internal/domain"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/combin"
)

var referenceSystem = domain.SystemParameters{Population: 5, FailureRate: 0.125, ServiceRate: 0.5}

var referenceWeights = domain.CostWeights{BrokenMachineHour: 50, RepairerHour: 10}

var sweepSystems = []domain.SystemParameters{
	referenceSystem,
	{Population: 10, FailureRate: 0.25, ServiceRate: 0.5},
	{Population: 20, FailureRate: 1, ServiceRate: 0.3},
	{Population: 30, FailureRate: 0.05, ServiceRate: 1},
}

// literalTerm evaluates the textbook factorial form of a state weight.
func literalTerm(population, crew, n int, rho float64) float64 {
	fact := func(k int) float64 {
		f := 1.0
		for i := 2; i <= k; i++ {
			f *= float64(i)
		}
		return f
	}
	if n < crew {
		return fact(population) / (fact(population-n) * fact(n)) * math.Pow(rho, float64(n))
	}
	return fact(population) / (fact(population-n) * fact(crew) * math.Pow(float64(crew), float64(n-crew))) * math.Pow(rho, float64(n))
}

func TestStateTerms_MatchFactorialForm(t *testing.T) {
	for _, population := range []int{1, 2, 5, 8, 12} {
		for crew := 1; crew <= population; crew++ {
			terms := stateTerms(population, crew, 0.37)
			for n, term := range terms {
				assert.InEpsilon(t, literalTerm(population, crew, n, 0.37), term, 1e-12,
					"N=%d c=%d n=%d", population, crew, n)
			}
		}
	}
}

func TestReferenceScenario_SingleRepairer(t *testing.T) {
	n, lambda, mu := referenceSystem.Population, referenceSystem.FailureRate, referenceSystem.ServiceRate

	p0, err := BaseProbability(n, 1, lambda, mu)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.19906687402799378, p0, 1e-4)

	dist, err := StateDistribution(n, 1, lambda, mu, p0)
	require.NoError(t, err)
	require.Len(t, dist, n+1)
	expected := []float64{0.199066874, 0.2488335925, 0.2488335925, 0.1866251944, 0.0933125972, 0.0233281493}
	for i, pn := range dist {
		assert.InEpsilon(t, expected[i], pn, 1e-4, "P%d", i)
	}

	lq, err := QueueLength(n, 1, dist)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.995334370139969, lq, 1e-4)

	l, err := SystemLength(n, 1, dist, lq)
	require.NoError(t, err)
	assert.InEpsilon(t, 1.7962674961119753, l, 1e-4)

	w, wq, err := WaitTimes(l, lq, lambda, n)
	require.NoError(t, err)
	assert.InEpsilon(t, 4.485436893203884, w, 1e-4)
	assert.InEpsilon(t, 2.4854368932038837, wq, 1e-4)

	assert.InEpsilon(t, 99.81337480559877, Cost(1, l, referenceWeights), 1e-4)
}

func TestDistribution_IsProbability(t *testing.T) {
	for _, params := range append(sweepSystems, domain.SystemParameters{Population: 200, FailureRate: 0.01, ServiceRate: 1}) {
		for crew := 1; crew <= params.Population; crew++ {
			p0, err := BaseProbability(params.Population, crew, params.FailureRate, params.ServiceRate)
			require.NoError(t, err)
			dist, err := StateDistribution(params.Population, crew, params.FailureRate, params.ServiceRate, p0)
			require.NoError(t, err)

			assert.InDelta(t, 1.0, dist.Total(), 1e-9, "N=%d c=%d", params.Population, crew)
			for n, pn := range dist {
				assert.True(t, pn >= 0 && pn <= 1, "P%d=%v out of [0,1] for N=%d c=%d", n, pn, params.Population, crew)
			}
		}
	}
}

func TestLengths_OrderedAndMonotoneInCrew(t *testing.T) {
	for _, params := range sweepSystems {
		t.Run(fmt.Sprintf("N=%d", params.Population), func(t *testing.T) {
			prevL, prevLq := math.Inf(1), math.Inf(1)
			for crew := 1; crew <= params.Population; crew++ {
				p0, err := BaseProbability(params.Population, crew, params.FailureRate, params.ServiceRate)
				require.NoError(t, err)
				dist, err := StateDistribution(params.Population, crew, params.FailureRate, params.ServiceRate, p0)
				require.NoError(t, err)
				lq, err := QueueLength(params.Population, crew, dist)
				require.NoError(t, err)
				l, err := SystemLength(params.Population, crew, dist, lq)
				require.NoError(t, err)

				assert.GreaterOrEqual(t, lq, 0.0)
				assert.GreaterOrEqual(t, l, lq)
				assert.LessOrEqual(t, l, prevL+1e-12, "L grew at c=%d", crew)
				assert.LessOrEqual(t, lq, prevLq+1e-12, "Lq grew at c=%d", crew)
				prevL, prevLq = l, lq
			}
		})
	}
}

func TestFullCrew_HasNoQueue(t *testing.T) {
	// With c = N every broken machine is in repair: Pn = C(N,n) ρ^n / (1+ρ)^N.
	n, lambda, mu := referenceSystem.Population, referenceSystem.FailureRate, referenceSystem.ServiceRate
	rho := lambda / mu

	p0, err := BaseProbability(n, n, lambda, mu)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(1+rho, -float64(n)), p0, 1e-12)

	dist, err := StateDistribution(n, n, lambda, mu, p0)
	require.NoError(t, err)
	for i, pn := range dist {
		binomial := float64(combin.Binomial(n, i)) * math.Pow(rho, float64(i))
		assert.InDelta(t, binomial*p0, pn, 1e-12, "P%d", i)
	}

	lq, err := QueueLength(n, n, dist)
	require.NoError(t, err)
	assert.Zero(t, lq)

	l, err := SystemLength(n, n, dist, lq)
	require.NoError(t, err)
	assert.InDelta(t, float64(n)*rho/(1+rho), l, 1e-12)
}

func TestLargePopulation_DoesNotOverflow(t *testing.T) {
	// 200! overflows float64; the running product does not.
	p0, err := BaseProbability(200, 3, 0.01, 1)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(p0) || math.IsInf(p0, 0))
	assert.Greater(t, p0, 0.0)
}

func TestInvalidParameters(t *testing.T) {
	tests := []struct {
		name       string
		population int
		crew       int
		lambda     float64
		mu         float64
	}{
		{name: "empty population", population: 0, crew: 1, lambda: 1, mu: 1},
		{name: "zero crew", population: 5, crew: 0, lambda: 1, mu: 1},
		{name: "crew above population", population: 5, crew: 6, lambda: 1, mu: 1},
		{name: "zero failure rate", population: 5, crew: 1, lambda: 0, mu: 1},
		{name: "negative service rate", population: 5, crew: 1, lambda: 1, mu: -1},
		{name: "NaN failure rate", population: 5, crew: 1, lambda: math.NaN(), mu: 1},
		{name: "infinite service rate", population: 5, crew: 1, lambda: 1, mu: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BaseProbability(tt.population, tt.crew, tt.lambda, tt.mu)
			assert.ErrorIs(t, err, domain.ErrInvalidParameter)

			_, err = StateDistribution(tt.population, tt.crew, tt.lambda, tt.mu, 0.5)
			assert.ErrorIs(t, err, domain.ErrInvalidParameter)
		})
	}
}

func TestQueueLength_RejectsMismatchedDistribution(t *testing.T) {
	_, err := QueueLength(5, 2, domain.StateDistribution{0.5, 0.5})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = SystemLength(5, 2, domain.StateDistribution{0.5, 0.5}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestOverflowingLoad_IsDegenerate(t *testing.T) {
	_, err := BaseProbability(5, 1, 1e300, 1e-300)
	assert.ErrorIs(t, err, domain.ErrDegenerateSystem)
}

func TestWaitTimes_SaturatedSystem(t *testing.T) {
	_, _, err := WaitTimes(5, 4, 0.1, 5)
	assert.ErrorIs(t, err, domain.ErrDegenerateSystem)

	_, _, err = WaitTimes(5.5, 4, 0.1, 5)
	assert.ErrorIs(t, err, domain.ErrDegenerateSystem)

	w, wq, err := WaitTimes(1, 0.5, 0.25, 5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w, 1e-12)
	assert.InDelta(t, 0.5, wq, 1e-12)
}

func TestCost(t *testing.T) {
	assert.InDelta(t, 50*1.5+10*3, Cost(3, 1.5, referenceWeights), 1e-12)
	assert.InDelta(t, 7.0, Cost(7, 100, domain.CostWeights{RepairerHour: 1}), 1e-12)
}
