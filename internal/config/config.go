package config

import (
	"os"
	"strconv"
	"strings"

	"abcalc/internal/errors"
	"abcalc/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Defaults DefaultsConfig `json:"defaults"`
	Output   OutputConfig   `json:"output"`
	Logging  LoggingConfig  `json:"logging"`
}

// DefaultsConfig seeds the calculator flags when they are not given
type DefaultsConfig struct {
	Alpha         float64 `json:"alpha" validate:"gt=0,lt=1"`
	Power         float64 `json:"power" validate:"gt=0,lt=1"`
	Ratio         float64 `json:"ratio" validate:"gt=0"`
	TwoSided      bool    `json:"two_sided"`
	EqualVariance bool    `json:"equal_variance"`
}

// OutputConfig holds result rendering settings
type OutputConfig struct {
	Format string `json:"format" validate:"oneof=text json markdown html"`
	Color  bool   `json:"color"`
}

// LoggingConfig holds zerolog settings
type LoggingConfig struct {
	Level  string `json:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `json:"format" validate:"oneof=text json"`
}

// Load reads configuration from environment variables and validates it.
// Callers load a .env file first when they want one.
func Load() (*Config, error) {
	config := &Config{
		Defaults: *loadDefaultsConfig(),
		Output:   *loadOutputConfig(),
		Logging:  *loadLoggingConfig(),
	}

	if err := validation.Config(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDefaultsConfig() *DefaultsConfig {
	return &DefaultsConfig{
		Alpha:         getEnvFloatOrDefault("ABCALC_ALPHA", 0.05),
		Power:         getEnvFloatOrDefault("ABCALC_POWER", 0.8),
		Ratio:         getEnvFloatOrDefault("ABCALC_RATIO", 1.0),
		TwoSided:      getEnvBoolOrDefault("ABCALC_TWO_SIDED", true),
		EqualVariance: getEnvBoolOrDefault("ABCALC_EQUAL_VARIANCE", true),
	}
}

func loadOutputConfig() *OutputConfig {
	return &OutputConfig{
		Format: strings.ToLower(getEnvOrDefault("ABCALC_FORMAT", "text")),
		Color:  getEnvBoolOrDefault("ABCALC_COLOR", true),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  strings.ToLower(getEnvOrDefault("ABCALC_LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("ABCALC_LOG_FORMAT", "text")),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
