package domain

// CrewEvaluator evaluates a single crew size for a parameter set
type CrewEvaluator interface {
	Evaluate(params SystemParameters, crew int, weights CostWeights) CandidateResult
}

// EvaluationTask is one crew size queued for a planner worker
type EvaluationTask struct {
	Index   int
	Crew    int
	Params  SystemParameters
	Weights CostWeights
	Result  chan<- *EvaluationResult
}

type EvaluationResult struct {
	Index     int
	Candidate CandidateResult
}
