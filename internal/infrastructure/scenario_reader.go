package infrastructure

import (
	"bufio"
	"crewopt/internal/domain"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// TXTScenarioReader reads a whitespace separated scenario table:
//
//	name  population  failure_rate  service_rate  [cost_broken cost_repairer [min_crew max_crew]]
//
// The first line is a header. Blank lines and lines starting with # are skipped.
type TXTScenarioReader struct {
	logger *zap.Logger
}

func NewTXTScenarioReader(logger *zap.Logger) *TXTScenarioReader {
	return &TXTScenarioReader{logger: logger}
}

// ReadScenarios parses filename. Omitted cost columns come from base; omitted
// crew columns sweep the scenario's own range 1..N.
func (r *TXTScenarioReader) ReadScenarios(filename string, base *domain.Config) ([]domain.Scenario, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(lines) < 2 {
		return nil, domain.ErrInvalidFileFormat
	}

	var scenarios []domain.Scenario
	// Header first
	for i := 1; i < len(lines); i++ {
		fields := strings.Fields(lines[i])
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		scenario, err := parseScenario(fields, base)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, i+1, err)
		}
		scenarios = append(scenarios, scenario)
	}

	if len(scenarios) == 0 {
		return nil, domain.ErrInvalidFileFormat
	}

	r.logger.Info("Scenarios loaded", zap.String("file", filename), zap.Int("count", len(scenarios)))
	return scenarios, nil
}

func parseScenario(fields []string, base *domain.Config) (domain.Scenario, error) {
	switch len(fields) {
	case 4, 6, 8:
	default:
		return domain.Scenario{}, fmt.Errorf("%w: expected 4, 6 or 8 columns, got %d", domain.ErrInvalidFileFormat, len(fields))
	}

	scenario := domain.Scenario{
		Name:  fields[0],
		Costs: base.Costs,
	}

	population, err := parseCount(fields[1])
	if err != nil {
		return scenario, err
	}
	values, err := parseRates(fields[2:4])
	if err != nil {
		return scenario, err
	}
	scenario.Parameters = domain.SystemParameters{
		Population:  population,
		FailureRate: values[0],
		ServiceRate: values[1],
	}

	if len(fields) >= 6 {
		costs, err := parseRates(fields[4:6])
		if err != nil {
			return scenario, err
		}
		scenario.Costs = domain.CostWeights{BrokenMachineHour: costs[0], RepairerHour: costs[1]}
	}

	if len(fields) == 8 {
		lo, err := parseCount(fields[6])
		if err != nil {
			return scenario, err
		}
		hi, err := parseCount(fields[7])
		if err != nil {
			return scenario, err
		}
		scenario.Crew = domain.CrewRange{Min: lo, Max: hi}
	}

	return scenario, nil
}

func parseCount(field string) (int, error) {
	value, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidFileFormat, field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative value %d", domain.ErrInvalidParameter, value)
	}
	return value, nil
}

func parseRates(fields []string) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidFileFormat, field)
		}
		if value < 0 {
			return nil, fmt.Errorf("%w: negative value %v", domain.ErrInvalidParameter, value)
		}
		values[i] = value
	}
	return values, nil
}
