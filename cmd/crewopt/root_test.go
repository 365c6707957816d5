package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportName(t *testing.T) {
	assert.Equal(t, "out/report.txt", reportName("out/report.txt", "shop", 1))
	assert.Equal(t, "out/report_shop.txt", reportName("out/report.txt", "shop", 3))
	assert.Equal(t, "report_shop", reportName("report", "shop", 2))
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(present, []byte("workers: 1\n"), 0o644))
	absent := filepath.Join(dir, "absent.yaml")

	assert.Equal(t, present, resolveConfigPath(present, false))
	assert.Equal(t, "", resolveConfigPath(absent, false))
	assert.Equal(t, absent, resolveConfigPath(absent, true))
}

func TestRootCommand_ReferenceScenario(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`
system:
  population: 5
  failure_rate: 0.125
  service_rate: 0.5
costs:
  broken_machine_hour: 50
  repairer_hour: 10
`), 0o644))
	output := filepath.Join(dir, "report.txt")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--config", config,
		"--workers", "2",
		"--log-level", "error",
		"--output", output,
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Number of repairmen (c) = 2")
	assert.Contains(t, out.String(), "Minimum expected cost per hour = $74.71")

	report, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(report), "74.7055\t*")
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "typo.yaml")})

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotContains(t, out.String(), "Optimal solution")
}
