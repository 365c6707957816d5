package queueing

import (
	"crewopt/internal/domain"
	"fmt"

	"go.uber.org/zap"
)

// Evaluator runs the finite-source pipeline for one crew size at a time.
type Evaluator struct {
	logger *zap.Logger
}

func NewEvaluator(logger *zap.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Evaluate computes P0, the state distribution and the performance metrics for
// a crew size. Failures are reported in the result's Err field.
func (e *Evaluator) Evaluate(params domain.SystemParameters, crew int, weights domain.CostWeights) domain.CandidateResult {
	result := domain.CandidateResult{Crew: crew}
	n, lambda, mu := params.Population, params.FailureRate, params.ServiceRate

	p0, err := BaseProbability(n, crew, lambda, mu)
	if err != nil {
		return e.fail(result, err)
	}
	dist, err := StateDistribution(n, crew, lambda, mu, p0)
	if err != nil {
		return e.fail(result, err)
	}
	lq, err := QueueLength(n, crew, dist)
	if err != nil {
		return e.fail(result, err)
	}
	l, err := SystemLength(n, crew, dist, lq)
	if err != nil {
		return e.fail(result, err)
	}
	w, wq, err := WaitTimes(l, lq, lambda, n)
	if err != nil {
		return e.fail(result, err)
	}

	result.BaseProbability = p0
	result.Distribution = dist
	result.Metrics = domain.PerformanceMetrics{
		QueueLength:          lq,
		SystemLength:         l,
		SystemTime:           w,
		QueueTime:            wq,
		Cost:                 Cost(crew, l, weights),
		EffectiveArrivalRate: EffectiveArrivalRate(l, lambda, n),
		BusyRepairers:        l - lq,
		Utilization:          (l - lq) / float64(crew),
	}

	e.logger.Debug("Crew evaluated",
		zap.Int("c", crew),
		zap.Float64("P0", p0),
		zap.Float64("L", l),
		zap.Float64("Lq", lq),
		zap.Float64("W", w),
		zap.Float64("Wq", wq),
		zap.Float64("cost", result.Metrics.Cost))

	return result
}

func (e *Evaluator) fail(result domain.CandidateResult, err error) domain.CandidateResult {
	e.logger.Warn("Crew evaluation failed", zap.Int("c", result.Crew), zap.Error(err))
	result.Err = fmt.Errorf("crew %d: %w", result.Crew, err)
	return result
}

// Optimize evaluates every crew size of the range in ascending order and
// selects the cheapest. Failed candidates stay in the table but never win.
func (e *Evaluator) Optimize(params domain.SystemParameters, crewRange domain.CrewRange, weights domain.CostWeights) (*domain.OptimizationResult, error) {
	crews, err := Prepare(params, crewRange, weights)
	if err != nil {
		return nil, err
	}

	result := &domain.OptimizationResult{
		Parameters: params,
		Weights:    weights,
		Candidates: make([]domain.CandidateResult, 0, len(crews)),
	}
	for _, c := range crews {
		result.Candidates = append(result.Candidates, e.Evaluate(params, c, weights))
	}

	return Finish(result)
}

// Prepare validates the inputs of a sweep and resolves its crew sizes.
func Prepare(params domain.SystemParameters, crewRange domain.CrewRange, weights domain.CostWeights) ([]int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return crewRange.Candidates(params.Population)
}

// Finish selects the optimum of a filled result table.
func Finish(result *domain.OptimizationResult) (*domain.OptimizationResult, error) {
	result.Optimal = SelectOptimal(result.Candidates)
	if result.Optimal == nil {
		return result, fmt.Errorf("%w: all %d candidates failed", domain.ErrNoFeasibleCrew, len(result.Candidates))
	}
	return result, nil
}

// SelectOptimal returns the successful candidate with the lowest cost. The
// scan keeps the first minimum, so ties go to the earliest (smallest) crew.
func SelectOptimal(candidates []domain.CandidateResult) *domain.CandidateResult {
	var best *domain.CandidateResult
	for i := range candidates {
		c := &candidates[i]
		if !c.OK() {
			continue
		}
		if best == nil || c.Metrics.Cost < best.Metrics.Cost {
			best = c
		}
	}
	return best
}

// Optimize is Evaluator.Optimize without logging.
func Optimize(params domain.SystemParameters, crewRange domain.CrewRange, weights domain.CostWeights) (*domain.OptimizationResult, error) {
	return NewEvaluator(zap.NewNop()).Optimize(params, crewRange, weights)
}
