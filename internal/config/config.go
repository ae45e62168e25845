package config

import (
	"os"
	"strconv"

	"phenostats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine EngineConfig
	Paths  PathConfig
}

// EngineConfig holds statistical policy knobs. Defaults reproduce the
// published analysis behavior exactly; deployments may tighten them but the
// engine itself never reads the environment.
type EngineConfig struct {
	MinGroupSize int     // minimum per-group n before a comparison test runs
	Alpha        float64 // significance level for corrected p-values
	ExactLimit   int     // largest per-group n for the exact rank-sum p-value
	CIZScore     float64 // z multiplier for survival confidence intervals
}

// PathConfig holds file system paths
type PathConfig struct {
	CohortFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Engine: loadEngineConfig(),
		Paths:  loadPathConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// DefaultEngineConfig returns the policy used for all published figures.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MinGroupSize: 3,
		Alpha:        0.05,
		ExactLimit:   20,
		CIZScore:     1.96,
	}
}

func loadEngineConfig() EngineConfig {
	defaults := DefaultEngineConfig()
	return EngineConfig{
		MinGroupSize: getEnvIntOrDefault("STATS_MIN_GROUP_SIZE", defaults.MinGroupSize),
		Alpha:        getEnvFloatOrDefault("STATS_ALPHA", defaults.Alpha),
		ExactLimit:   getEnvIntOrDefault("STATS_EXACT_LIMIT", defaults.ExactLimit),
		CIZScore:     getEnvFloatOrDefault("STATS_CI_Z", defaults.CIZScore),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		CohortFile: getEnvOrDefault("COHORT_FILE", ""),
	}
}

func validateConfig(config *Config) error {
	if config.Engine.MinGroupSize < 1 {
		return errors.ConfigInvalid("STATS_MIN_GROUP_SIZE must be >= 1")
	}
	if config.Engine.Alpha <= 0 || config.Engine.Alpha >= 1 {
		return errors.ConfigInvalid("STATS_ALPHA must be in (0, 1)")
	}
	if config.Engine.ExactLimit < 0 {
		return errors.ConfigInvalid("STATS_EXACT_LIMIT must be >= 0")
	}
	if config.Engine.CIZScore <= 0 {
		return errors.ConfigInvalid("STATS_CI_Z must be > 0")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
