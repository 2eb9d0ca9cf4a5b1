package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5, cfg.Performance.MaxConcurrentCollectors)
	assert.Equal(t, 1.0, cfg.Performance.CollectorTimeoutSeconds)
	assert.Equal(t, 3.0, cfg.Performance.RunTimeoutSeconds)
	assert.Equal(t, 10, cfg.Output.MaxDisplayIssues)
	assert.Equal(t, "text", cfg.Output.DefaultFormat)
	assert.Equal(t, 48, cfg.Forecast.DefaultHorizonHours)
	assert.True(t, cfg.Scoring.LogCorrelationEnabled)
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KUBECTL_SMART_CONFIG", filepath.Join(dir, "does-not-exist.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Performance, cfg.Performance)
}

func TestLoad_OverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
performance:
  max_concurrent_collectors: 8
output:
  default_format: json
`), 0o644))
	t.Setenv("KUBECTL_SMART_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Performance.MaxConcurrentCollectors)
	assert.Equal(t, 1.0, cfg.Performance.CollectorTimeoutSeconds) // untouched default
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
}

func TestLoad_MalformedFileIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid yaml"), 0o644))
	t.Setenv("KUBECTL_SMART_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestClampHorizon(t *testing.T) {
	assert.Equal(t, 1, ClampHorizon(0))
	assert.Equal(t, 1, ClampHorizon(1))
	assert.Equal(t, 168, ClampHorizon(168))
	assert.Equal(t, 168, ClampHorizon(169))
	assert.Equal(t, 48, ClampHorizon(48))
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KUBECTL_SMART_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("KUBECTL_SMART_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
