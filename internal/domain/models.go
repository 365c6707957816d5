package domain

import (
	"errors"
	"fmt"
	"math"
)

// Config represents the application configuration
type Config struct {
	System       SystemParameters `yaml:"system" envPrefix:"SYSTEM_"`
	Costs        CostWeights      `yaml:"costs" envPrefix:"COST_"`
	Crew         CrewRange        `yaml:"crew" envPrefix:"CREW_"`
	Workers      int              `yaml:"workers" env:"WORKERS" validate:"gte=0"`
	Strict       bool             `yaml:"strict" env:"STRICT"`
	LogLevel     string           `yaml:"log_level" env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	LogFile      string           `yaml:"log_file" env:"LOG_FILE"`
	Decimals     int              `yaml:"decimals" env:"DECIMALS" validate:"gte=0,lte=12"`
	ScenarioFile string           `yaml:"scenario_file" env:"SCENARIO_FILE"`
	OutputFile   string           `yaml:"output_file" env:"OUTPUT_FILE"`
}

// Scenario returns the single scenario described by the config itself.
func (c *Config) Scenario() Scenario {
	return Scenario{
		Name:       "default",
		Parameters: c.System,
		Costs:      c.Costs,
		Crew:       c.Crew,
	}
}

// SystemParameters describes the machine population and its failure/repair rates.
type SystemParameters struct {
	Population  int     `yaml:"population" env:"POPULATION" validate:"gte=1"`
	FailureRate float64 `yaml:"failure_rate" env:"FAILURE_RATE" validate:"gt=0"`
	ServiceRate float64 `yaml:"service_rate" env:"SERVICE_RATE" validate:"gt=0"`
}

func (p SystemParameters) Validate() error {
	if p.Population < 1 {
		return fmt.Errorf("%w: population %d must be at least 1", ErrInvalidParameter, p.Population)
	}
	if !positiveFinite(p.FailureRate) {
		return fmt.Errorf("%w: failure rate %v must be positive", ErrInvalidParameter, p.FailureRate)
	}
	if !positiveFinite(p.ServiceRate) {
		return fmt.Errorf("%w: service rate %v must be positive", ErrInvalidParameter, p.ServiceRate)
	}
	return nil
}

// Ratio returns the offered load per machine, λ/μ.
func (p SystemParameters) Ratio() float64 {
	return p.FailureRate / p.ServiceRate
}

// CostWeights holds the hourly unit costs of the objective.
type CostWeights struct {
	BrokenMachineHour float64 `yaml:"broken_machine_hour" env:"BROKEN_MACHINE_HOUR" validate:"gte=0"`
	RepairerHour      float64 `yaml:"repairer_hour" env:"REPAIRER_HOUR" validate:"gte=0"`
}

func (w CostWeights) Validate() error {
	if w.BrokenMachineHour < 0 || math.IsNaN(w.BrokenMachineHour) || math.IsInf(w.BrokenMachineHour, 0) {
		return fmt.Errorf("%w: broken machine cost %v", ErrInvalidParameter, w.BrokenMachineHour)
	}
	if w.RepairerHour < 0 || math.IsNaN(w.RepairerHour) || math.IsInf(w.RepairerHour, 0) {
		return fmt.Errorf("%w: repairer cost %v", ErrInvalidParameter, w.RepairerHour)
	}
	return nil
}

// CrewRange bounds the crew sizes to test. Zero bounds mean 1 and N.
type CrewRange struct {
	Min int `yaml:"min" env:"MIN" validate:"gte=0"`
	Max int `yaml:"max" env:"MAX" validate:"gte=0"`
}

// Candidates resolves the range against a population and returns the crew
// sizes in ascending order.
func (r CrewRange) Candidates(population int) ([]int, error) {
	lo, hi := r.Min, r.Max
	if lo == 0 {
		lo = 1
	}
	if hi == 0 {
		hi = population
	}
	if lo < 1 || hi > population || lo > hi {
		return nil, fmt.Errorf("%w: crew range [%d,%d] outside [1,%d]", ErrInvalidParameter, lo, hi, population)
	}

	crews := make([]int, 0, hi-lo+1)
	for c := lo; c <= hi; c++ {
		crews = append(crews, c)
	}
	return crews, nil
}

// Scenario is one parameter set of a batch run
type Scenario struct {
	Name       string
	Parameters SystemParameters
	Costs      CostWeights
	Crew       CrewRange
}

// PerformanceMetrics holds the queueing measures for one crew size
type PerformanceMetrics struct {
	QueueLength          float64 // Lq
	SystemLength         float64 // L
	SystemTime           float64 // W, hours
	QueueTime            float64 // Wq, hours
	Cost                 float64 // per hour
	EffectiveArrivalRate float64
	BusyRepairers        float64
	Utilization          float64
}

// CandidateResult is the outcome of evaluating one crew size.
// Err is set when the candidate could not be evaluated.
type CandidateResult struct {
	Crew            int
	BaseProbability float64
	Distribution    StateDistribution
	Metrics         PerformanceMetrics
	Err             error
}

func (r *CandidateResult) OK() bool {
	return r != nil && r.Err == nil
}

// OptimizationResult holds every tested crew size plus the cheapest one
type OptimizationResult struct {
	Parameters SystemParameters
	Weights    CostWeights
	Candidates []CandidateResult
	Optimal    *CandidateResult
}

// Failed returns the candidates whose evaluation failed.
func (r *OptimizationResult) Failed() []CandidateResult {
	var failed []CandidateResult
	for _, c := range r.Candidates {
		if c.Err != nil {
			failed = append(failed, c)
		}
	}
	return failed
}

// ScenarioResult pairs a scenario with its optimization outcome
type ScenarioResult struct {
	Scenario Scenario
	Result   *OptimizationResult
	Err      error
}

var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrDegenerateSystem  = errors.New("degenerate system")
	ErrNoFeasibleCrew    = errors.New("no feasible crew size")
	ErrInvalidFileFormat = errors.New("invalid file format")
)

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
