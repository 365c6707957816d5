package domain

// ConfigReader reads the application configuration
type ConfigReader interface {
	ReadConfig(path string) (*Config, error)
	Validate(config *Config) error
}

// ScenarioReader reads a batch of scenarios
type ScenarioReader interface {
	ReadScenarios(filename string, base *Config) ([]Scenario, error)
}

// ReportWriter persists an optimization report
type ReportWriter interface {
	WriteReport(filename string, result *OptimizationResult) error
}
