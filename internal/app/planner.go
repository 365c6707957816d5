package app

import (
	"crewopt/internal/domain"
	"crewopt/pkg/queueing"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type RepairCrewPlanner struct {
	logger    *zap.Logger
	evaluator domain.CrewEvaluator
	config    *domain.Config
}

func NewRepairCrewPlanner(logger *zap.Logger, config *domain.Config) *RepairCrewPlanner {
	return &RepairCrewPlanner{
		logger:    logger,
		evaluator: queueing.NewEvaluator(logger),
		config:    config,
	}
}

// Plan evaluates every candidate crew size of the scenario on the worker pool
// and selects the cheapest one.
func (p *RepairCrewPlanner) Plan(scenario domain.Scenario) (*domain.OptimizationResult, error) {
	crews, err := queueing.Prepare(scenario.Parameters, scenario.Crew, scenario.Costs)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	p.logger.Info("Starting crew sweep",
		zap.String("scenario", scenario.Name),
		zap.Int("N", scenario.Parameters.Population),
		zap.Float64("lambda", scenario.Parameters.FailureRate),
		zap.Float64("mu", scenario.Parameters.ServiceRate),
		zap.Int("candidates", len(crews)),
		zap.Int("workers", p.workers(len(crews))))

	result := &domain.OptimizationResult{
		Parameters: scenario.Parameters,
		Weights:    scenario.Costs,
		Candidates: p.evaluateAll(scenario, crews),
	}

	if p.config.Strict {
		var errs error
		for _, c := range result.Failed() {
			errs = multierr.Append(errs, c.Err)
		}
		if errs != nil {
			return result, fmt.Errorf("scenario %q: %w", scenario.Name, errs)
		}
	}

	result, err = queueing.Finish(result)
	if err != nil {
		return result, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	p.logger.Info("Crew sweep completed",
		zap.String("scenario", scenario.Name),
		zap.Int("optimal_crew", result.Optimal.Crew),
		zap.Float64("cost", result.Optimal.Metrics.Cost),
		zap.Int("failed", len(result.Failed())))

	return result, nil
}

// PlanAll runs Plan for every scenario. A failing scenario does not stop the batch.
func (p *RepairCrewPlanner) PlanAll(scenarios []domain.Scenario) []domain.ScenarioResult {
	results := make([]domain.ScenarioResult, 0, len(scenarios))
	for _, s := range scenarios {
		res, err := p.Plan(s)
		if err != nil {
			p.logger.Error("Scenario failed", zap.String("scenario", s.Name), zap.Error(err))
		}
		results = append(results, domain.ScenarioResult{Scenario: s, Result: res, Err: err})
	}
	return results
}

func (p *RepairCrewPlanner) evaluateAll(scenario domain.Scenario, crews []int) []domain.CandidateResult {
	workers := p.workers(len(crews))

	var wg sync.WaitGroup
	taskChan := make(chan domain.EvaluationTask, workers*2)
	resultChan := make(chan *domain.EvaluationResult, len(crews))

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.worker(i, taskChan, &wg)
	}

	go func() {
		for i, c := range crews {
			taskChan <- domain.EvaluationTask{
				Index:   i,
				Crew:    c,
				Params:  scenario.Parameters,
				Weights: scenario.Costs,
				Result:  resultChan,
			}
		}
		close(taskChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Results arrive in any order; slot them back by crew index.
	candidates := make([]domain.CandidateResult, len(crews))
	for result := range resultChan {
		candidates[result.Index] = result.Candidate
	}
	return candidates
}

func (p *RepairCrewPlanner) worker(id int, tasks <-chan domain.EvaluationTask, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range tasks {
		p.logger.Debug("Evaluating crew",
			zap.Int("worker", id),
			zap.Int("c", task.Crew))

		task.Result <- &domain.EvaluationResult{
			Index:     task.Index,
			Candidate: p.evaluator.Evaluate(task.Params, task.Crew, task.Weights),
		}
	}
}

func (p *RepairCrewPlanner) workers(tasks int) int {
	return max(1, min(p.config.Workers, tasks))
}
