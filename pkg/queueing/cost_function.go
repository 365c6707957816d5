package queueing

import "crewopt/internal/domain"

// Cost returns the expected hourly cost of running crew repairers while l
// machines are broken on average.
func Cost(crew int, l float64, weights domain.CostWeights) float64 {
	return weights.BrokenMachineHour*l + weights.RepairerHour*float64(crew)
}
