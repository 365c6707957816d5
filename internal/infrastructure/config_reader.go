package infrastructure

import (
	"crewopt/internal/domain"
	"fmt"
	"os"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CREWOPT_SYSTEM_POPULATION.
const EnvPrefix = "CREWOPT_"

type YAMLConfigReader struct {
	logger   *zap.Logger
	validate *validator.Validate
}

func NewYAMLConfigReader(logger *zap.Logger) *YAMLConfigReader {
	return &YAMLConfigReader{
		logger:   logger,
		validate: validator.New(),
	}
}

// ReadConfig loads the YAML file at path, applies environment overrides and
// defaults, then validates the result. An empty path skips the file.
func (r *YAMLConfigReader) ReadConfig(path string) (*domain.Config, error) {
	var config domain.Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		r.logger.Debug("No config file, using defaults")
	}

	if err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	r.SetDefaults(&config)

	if err := r.Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks struct constraints after flags or env changed the config.
func (r *YAMLConfigReader) Validate(config *domain.Config) error {
	if err := r.validate.Struct(config); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
	}
	return nil
}

// SetDefaults fills unset fields with the reference scenario: five machines,
// one failure per eight hours, two repairs per hour, costs 50 and 10.
func (r *YAMLConfigReader) SetDefaults(config *domain.Config) {
	if config.System.Population == 0 {
		config.System.Population = 5
	}
	if config.System.FailureRate == 0 {
		config.System.FailureRate = 1.0 / 8
	}
	if config.System.ServiceRate == 0 {
		config.System.ServiceRate = 1.0 / 2
	}
	if config.Costs.BrokenMachineHour == 0 && config.Costs.RepairerHour == 0 {
		config.Costs.BrokenMachineHour = 50
		config.Costs.RepairerHour = 10
	}
	if config.Workers == 0 {
		config.Workers = max(1, runtime.NumCPU()-1)
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Decimals == 0 {
		config.Decimals = 4
	}
}
