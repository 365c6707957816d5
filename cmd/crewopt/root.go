package main

import (
	"crewopt/internal/app"
	"crewopt/internal/domain"
	"crewopt/internal/infrastructure"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "crewopt",
	Short: "Pick the repair crew size that minimizes hourly cost",
	Long: `crewopt evaluates the finite-source (machine repair) queueing model for every
candidate crew size and reports P0..PN, L, Lq, W, Wq and the expected hourly cost.

Settings come from the YAML config, then CREWOPT_* environment variables,
then command-line flags.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "config.yaml", "Path to config file")
	flags.Int("population", 0, "Number of machines (N)")
	flags.Float64("failure-rate", 0, "Failures per machine per hour (lambda)")
	flags.Float64("service-rate", 0, "Repairs per repairer per hour (mu)")
	flags.Int("min-crew", 0, "Smallest crew size to test (default 1)")
	flags.Int("max-crew", 0, "Largest crew size to test (default N)")
	flags.Float64("cost-broken", 0, "Cost per broken machine hour")
	flags.Float64("cost-repairer", 0, "Cost per repairer hour")
	flags.Int("workers", 0, "Number of workers")
	flags.Bool("strict", false, "Fail when any crew size cannot be evaluated")
	flags.String("log-level", "", "Log level")
	flags.String("log-file", "", "Log file")
	flags.String("scenarios", "", "Scenario table to run instead of the configured system")
	flags.String("output", "", "Write a tab separated report to this file")
	flags.Int("decimals", 0, "Decimals in reports")
}

func run(cmd *cobra.Command, _ []string) error {
	logger := initLogger("info")
	defer logger.Sync()

	var configReader domain.ConfigReader = infrastructure.NewYAMLConfigReader(logger)
	config, err := configReader.ReadConfig(resolveConfigPath(configPath, cmd.Flags().Changed("config")))
	if err != nil {
		logger.Error("Failed to read config", zap.Error(err))
		return err
	}
	if err := applyFlags(cmd, config); err != nil {
		return err
	}
	if err := configReader.Validate(config); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return err
	}

	logger = initLogger(config.LogLevel, config.LogFile)
	defer logger.Sync()

	scenarios := []domain.Scenario{config.Scenario()}
	if config.ScenarioFile != "" {
		var scenarioReader domain.ScenarioReader = infrastructure.NewTXTScenarioReader(logger)
		scenarios, err = scenarioReader.ReadScenarios(config.ScenarioFile, config)
		if err != nil {
			logger.Error("Failed to read scenarios", zap.String("file", config.ScenarioFile), zap.Error(err))
			return err
		}
	}

	planner := app.NewRepairCrewPlanner(logger, config)
	renderer := infrastructure.NewConsoleRenderer(config.Decimals)
	var writer domain.ReportWriter = infrastructure.NewTXTReportWriter(logger, infrastructure.DecimalFormatter(config.Decimals))

	var failed []error
	for _, res := range planner.PlanAll(scenarios) {
		if res.Err != nil {
			failed = append(failed, res.Err)
		}
		if res.Result == nil {
			continue
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderer.Render(res.Scenario.Name, res.Result))

		if config.OutputFile == "" {
			continue
		}
		filename := reportName(config.OutputFile, res.Scenario.Name, len(scenarios))
		if err := writer.WriteReport(filename, res.Result); err != nil {
			logger.Error("Failed to write report", zap.String("file", filename), zap.Error(err))
			failed = append(failed, err)
		}
	}

	if len(failed) > 0 {
		return multierr.Combine(failed...)
	}
	logger.Info("Crew optimization completed successfully", zap.Int("scenarios", len(scenarios)))
	return nil
}

// resolveConfigPath drops the default config path when no such file exists.
// An explicitly requested file is always read, so a missing one is an error.
func resolveConfigPath(path string, explicit bool) string {
	if explicit {
		return path
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return ""
	}
	return path
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, config *domain.Config) error {
	flags := cmd.Flags()
	var err error
	get := func(name string, apply func()) {
		if err == nil && flags.Changed(name) {
			apply()
		}
	}

	get("population", func() { config.System.Population, err = flags.GetInt("population") })
	get("failure-rate", func() { config.System.FailureRate, err = flags.GetFloat64("failure-rate") })
	get("service-rate", func() { config.System.ServiceRate, err = flags.GetFloat64("service-rate") })
	get("min-crew", func() { config.Crew.Min, err = flags.GetInt("min-crew") })
	get("max-crew", func() { config.Crew.Max, err = flags.GetInt("max-crew") })
	get("cost-broken", func() { config.Costs.BrokenMachineHour, err = flags.GetFloat64("cost-broken") })
	get("cost-repairer", func() { config.Costs.RepairerHour, err = flags.GetFloat64("cost-repairer") })
	get("workers", func() { config.Workers, err = flags.GetInt("workers") })
	get("strict", func() { config.Strict, err = flags.GetBool("strict") })
	get("log-level", func() { config.LogLevel, err = flags.GetString("log-level") })
	get("log-file", func() { config.LogFile, err = flags.GetString("log-file") })
	get("scenarios", func() { config.ScenarioFile, err = flags.GetString("scenarios") })
	get("output", func() { config.OutputFile, err = flags.GetString("output") })
	get("decimals", func() { config.Decimals, err = flags.GetInt("decimals") })

	return err
}

// reportName derives one report file per scenario when a batch is run.
func reportName(output, scenario string, total int) string {
	if total <= 1 {
		return output
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "_" + scenario + ext
}
