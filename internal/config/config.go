// Package config loads kubectl-smart's user configuration.
//
// Precedence (spec §6): command flags > environment variables > user config
// file > built-in defaults. This package implements the default, file and
// KUBECTL_SMART_* environment layers (see applyEnv); internal/cli applies
// command flags on top.
//
// Shaped after kcli's internal/config: a typed struct loaded from a YAML
// file under the user's home directory, with a Default() that is always a
// valid, usable configuration on its own.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".kube-smart"
	configFileName = "config.yaml"
)

// Config is the full set of user-tunable options named in spec §6.
type Config struct {
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Forecast    ForecastConfig    `yaml:"forecast"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// PerformanceConfig controls collector concurrency and deadlines (spec §5).
type PerformanceConfig struct {
	MaxConcurrentCollectors int     `yaml:"max_concurrent_collectors"`
	CollectorTimeoutSeconds float64 `yaml:"collector_timeout_seconds"`
	RunTimeoutSeconds       float64 `yaml:"run_timeout_seconds"`
}

// OutputConfig controls rendering (spec §4.7).
type OutputConfig struct {
	ColorsEnabled    bool   `yaml:"colors_enabled"`
	MaxDisplayIssues int    `yaml:"max_display_issues"`
	DefaultFormat    string `yaml:"default_format"` // "text" | "json"
}

// ScoringConfig controls the ScoringEngine (spec §4.5).
type ScoringConfig struct {
	WeightsFile           string `yaml:"weights_file"`
	LogCorrelationEnabled bool   `yaml:"log_correlation_enabled"`
}

// ForecastConfig controls the Forecaster (spec §4.6).
type ForecastConfig struct {
	DefaultHorizonHours int    `yaml:"default_horizon_hours"`
	CacheDir            string `yaml:"cache_dir"`
	PrometheusURL       string `yaml:"prometheus_url,omitempty"`
}

// LoggingConfig controls internal/log.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
}

// Default returns the built-in defaults named throughout spec §6.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Performance: PerformanceConfig{
			MaxConcurrentCollectors: 5,
			CollectorTimeoutSeconds: 1.0,
			RunTimeoutSeconds:       3.0,
		},
		Output: OutputConfig{
			ColorsEnabled:    true,
			MaxDisplayIssues: 10,
			DefaultFormat:    "text",
		},
		Scoring: ScoringConfig{
			WeightsFile:           "",
			LogCorrelationEnabled: true,
		},
		Forecast: ForecastConfig{
			DefaultHorizonHours: 48,
			CacheDir:            filepath.Join(home, configDirName, "forecast-cache"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the config file path, honoring KUBECTL_SMART_CONFIG.
func Path() string {
	if p := strings.TrimSpace(os.Getenv("KUBECTL_SMART_CONFIG")); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", configDirName, configFileName)
	}
	return filepath.Join(home, configDirName, configFileName)
}

// Load reads the user config file, overlays it onto Default(), and applies
// environment variable overrides. A missing file is not an error: Load
// returns Default() unchanged. A malformed file is an error; callers should
// fall back to Default() and surface the error (kcli's newRootCommand does
// the same: fall back but keep cfgErr for later reporting).
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", Path(), err)
	}
	mergeNonZero(cfg, &fileCfg)
	// mergeNonZero cannot tell an explicit false from an unset key, so the
	// log-correlation switch is re-read as a pointer to honor an explicit false.
	var explicit struct {
		Scoring struct {
			LogCorrelationEnabled *bool `yaml:"log_correlation_enabled"`
		} `yaml:"scoring"`
	}
	if err := yaml.Unmarshal(data, &explicit); err == nil && explicit.Scoring.LogCorrelationEnabled != nil {
		cfg.Scoring.LogCorrelationEnabled = *explicit.Scoring.LogCorrelationEnabled
	}
	applyEnv(cfg)
	return cfg, nil
}

// mergeNonZero overlays non-zero-value fields of src onto dst. YAML files
// are expected to set only the keys the user wants to override; zero values
// in src (unset keys) never clobber Default()'s values.
func mergeNonZero(dst *Config, src *Config) {
	if src.Performance.MaxConcurrentCollectors != 0 {
		dst.Performance.MaxConcurrentCollectors = src.Performance.MaxConcurrentCollectors
	}
	if src.Performance.CollectorTimeoutSeconds != 0 {
		dst.Performance.CollectorTimeoutSeconds = src.Performance.CollectorTimeoutSeconds
	}
	if src.Performance.RunTimeoutSeconds != 0 {
		dst.Performance.RunTimeoutSeconds = src.Performance.RunTimeoutSeconds
	}
	dst.Output.ColorsEnabled = src.Output.ColorsEnabled || dst.Output.ColorsEnabled
	if src.Output.MaxDisplayIssues != 0 {
		dst.Output.MaxDisplayIssues = src.Output.MaxDisplayIssues
	}
	if src.Output.DefaultFormat != "" {
		dst.Output.DefaultFormat = src.Output.DefaultFormat
	}
	if src.Scoring.WeightsFile != "" {
		dst.Scoring.WeightsFile = src.Scoring.WeightsFile
	}
	dst.Scoring.LogCorrelationEnabled = src.Scoring.LogCorrelationEnabled || dst.Scoring.LogCorrelationEnabled
	if src.Forecast.DefaultHorizonHours != 0 {
		dst.Forecast.DefaultHorizonHours = src.Forecast.DefaultHorizonHours
	}
	if src.Forecast.CacheDir != "" {
		dst.Forecast.CacheDir = src.Forecast.CacheDir
	}
	if src.Forecast.PrometheusURL != "" {
		dst.Forecast.PrometheusURL = src.Forecast.PrometheusURL
	}
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("KUBECTL_SMART_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("KUBECTL_SMART_OUTPUT")); v != "" {
		cfg.Output.DefaultFormat = v
	}
	if v := strings.TrimSpace(os.Getenv("KUBECTL_SMART_WEIGHTS_FILE")); v != "" {
		cfg.Scoring.WeightsFile = v
	}
	if v := strings.TrimSpace(os.Getenv("KUBECTL_SMART_CACHE_DIR")); v != "" {
		cfg.Forecast.CacheDir = v
	}
}

// ClampHorizon enforces spec §6's horizon range [1,168].
func ClampHorizon(hours int) int {
	if hours < 1 {
		return 1
	}
	if hours > 168 {
		return 168
	}
	return hours
}
