package infrastructure

import (
	"crewopt/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var baseConfig = &domain.Config{
	Costs: domain.CostWeights{BrokenMachineHour: 50, RepairerHour: 10},
	Crew:  domain.CrewRange{Min: 1, Max: 5},
}

func TestReadScenarios(t *testing.T) {
	path := writeFile(t, "scenarios.txt", `name	population	failure_rate	service_rate	cost_broken	cost_repairer	min	max
reference	5	0.125	0.5

# larger shop with cheap labour
shop	10	0.25	0.5	45	2
narrow	8	0.1	1	50	10	2	3
`)

	scenarios, err := NewTXTScenarioReader(zap.NewNop()).ReadScenarios(path, baseConfig)
	require.NoError(t, err)
	require.Len(t, scenarios, 3)

	assert.Equal(t, domain.Scenario{
		Name:       "reference",
		Parameters: domain.SystemParameters{Population: 5, FailureRate: 0.125, ServiceRate: 0.5},
		Costs:      baseConfig.Costs,
	}, scenarios[0])

	assert.Equal(t, domain.CostWeights{BrokenMachineHour: 45, RepairerHour: 2}, scenarios[1].Costs)
	assert.Equal(t, domain.CrewRange{}, scenarios[1].Crew)

	assert.Equal(t, domain.CrewRange{Min: 2, Max: 3}, scenarios[2].Crew)
}

func TestReadScenarios_CrewRangeFollowsPopulation(t *testing.T) {
	path := writeFile(t, "scenarios.txt", `name	population	failure_rate	service_rate
small	3	0.125	0.5
large	10	0.25	0.5
`)

	scenarios, err := NewTXTScenarioReader(zap.NewNop()).ReadScenarios(path, baseConfig)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	small, err := scenarios[0].Crew.Candidates(scenarios[0].Parameters.Population)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, small)

	large, err := scenarios[1].Crew.Candidates(scenarios[1].Parameters.Population)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, large)
}

func TestReadScenarios_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "header only", content: "name population failure_rate service_rate\n", wantErr: domain.ErrInvalidFileFormat},
		{name: "wrong column count", content: "header\nshop 5 0.1\n", wantErr: domain.ErrInvalidFileFormat},
		{name: "not a number", content: "header\nshop 5 fast 0.5\n", wantErr: domain.ErrInvalidFileFormat},
		{name: "fractional population", content: "header\nshop 5.5 0.1 0.5\n", wantErr: domain.ErrInvalidFileFormat},
		{name: "negative rate", content: "header\nshop 5 -0.1 0.5\n", wantErr: domain.ErrInvalidParameter},
		{name: "only comments", content: "header\n# nothing\n\n", wantErr: domain.ErrInvalidFileFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTXTScenarioReader(zap.NewNop()).ReadScenarios(writeFile(t, "s.txt", tt.content), baseConfig)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := NewTXTScenarioReader(zap.NewNop()).ReadScenarios("/nonexistent/scenarios.txt", baseConfig)
	assert.Error(t, err)
}
