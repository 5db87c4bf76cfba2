package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "PQ"

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// AnalysisConfig holds the instrument and regulatory constants of a run.
type AnalysisConfig struct {
	// SampleInterval is the recording cadence of the instrument.
	SampleInterval time.Duration `yaml:"sample_interval" envconfig:"SAMPLE_INTERVAL" default:"2m" validate:"gt=0"`
	BandCount      int           `yaml:"band_count" envconfig:"BAND_COUNT" default:"4" validate:"min=1,max=20"`
	TopHarmonics   int           `yaml:"top_harmonics" envconfig:"TOP_HARMONICS" default:"3" validate:"min=1,max=49"`
	MinHarmonic    int           `yaml:"min_harmonic" envconfig:"MIN_HARMONIC" default:"2" validate:"min=2,max=50"`
	MaxHarmonic    int           `yaml:"max_harmonic" envconfig:"MAX_HARMONIC" default:"50" validate:"min=2,max=50,gtefield=MinHarmonic"`
	Limits         LimitsConfig  `yaml:"limits" envconfig:"LIMITS"`
}

// LimitsConfig contains the IEEE 519-2014 thresholds, in percent.
type LimitsConfig struct {
	VoltageTHD float64 `yaml:"voltage_thd" envconfig:"VOLTAGE_THD" default:"8" validate:"gt=0"`
	TDD        float64 `yaml:"tdd" envconfig:"TDD" default:"5" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"console" validate:"oneof=json console"`
	OutputPath  string `yaml:"output_path" envconfig:"OUTPUT_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// Default returns the built-in configuration without reading the environment.
func Default() Config {
	return Config{
		Analysis: AnalysisConfig{
			SampleInterval: 2 * time.Minute,
			BandCount:      4,
			TopHarmonics:   3,
			MinHarmonic:    2,
			MaxHarmonic:    50,
			Limits: LimitsConfig{
				VoltageTHD: 8,
				TDD:        5,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from environment variables and, when filePath is
// not empty, from a YAML file. Values set in the environment take precedence
// over the file.
func Load(filePath string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if filePath != "" {
		fileConfig, err := loadFromFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs overlays the file config with every variable that was
// explicitly present in the environment.
func mergeConfigs(fileConfig, envConfig Config) Config {
	merged := Default()
	overlay(&merged, fileConfig)

	if envSet("ANALYSIS_SAMPLE_INTERVAL") {
		merged.Analysis.SampleInterval = envConfig.Analysis.SampleInterval
	}
	if envSet("ANALYSIS_BAND_COUNT") {
		merged.Analysis.BandCount = envConfig.Analysis.BandCount
	}
	if envSet("ANALYSIS_TOP_HARMONICS") {
		merged.Analysis.TopHarmonics = envConfig.Analysis.TopHarmonics
	}
	if envSet("ANALYSIS_MIN_HARMONIC") {
		merged.Analysis.MinHarmonic = envConfig.Analysis.MinHarmonic
	}
	if envSet("ANALYSIS_MAX_HARMONIC") {
		merged.Analysis.MaxHarmonic = envConfig.Analysis.MaxHarmonic
	}
	if envSet("ANALYSIS_LIMITS_VOLTAGE_THD") {
		merged.Analysis.Limits.VoltageTHD = envConfig.Analysis.Limits.VoltageTHD
	}
	if envSet("ANALYSIS_LIMITS_TDD") {
		merged.Analysis.Limits.TDD = envConfig.Analysis.Limits.TDD
	}
	if envSet("LOGGING_LEVEL") {
		merged.Logging.Level = envConfig.Logging.Level
	}
	if envSet("LOGGING_FORMAT") {
		merged.Logging.Format = envConfig.Logging.Format
	}
	if envSet("LOGGING_OUTPUT_PATH") {
		merged.Logging.OutputPath = envConfig.Logging.OutputPath
	}
	if envSet("LOGGING_DEVELOPMENT") {
		merged.Logging.Development = envConfig.Logging.Development
	}
	return merged
}

// overlay copies the non-zero fields of src onto dst.
func overlay(dst *Config, src Config) {
	a := src.Analysis
	if a.SampleInterval != 0 {
		dst.Analysis.SampleInterval = a.SampleInterval
	}
	if a.BandCount != 0 {
		dst.Analysis.BandCount = a.BandCount
	}
	if a.TopHarmonics != 0 {
		dst.Analysis.TopHarmonics = a.TopHarmonics
	}
	if a.MinHarmonic != 0 {
		dst.Analysis.MinHarmonic = a.MinHarmonic
	}
	if a.MaxHarmonic != 0 {
		dst.Analysis.MaxHarmonic = a.MaxHarmonic
	}
	if a.Limits.VoltageTHD != 0 {
		dst.Analysis.Limits.VoltageTHD = a.Limits.VoltageTHD
	}
	if a.Limits.TDD != 0 {
		dst.Analysis.Limits.TDD = a.Limits.TDD
	}
	l := src.Logging
	if l.Level != "" {
		dst.Logging.Level = l.Level
	}
	if l.Format != "" {
		dst.Logging.Format = l.Format
	}
	if l.OutputPath != "" {
		dst.Logging.OutputPath = l.OutputPath
	}
	if l.Development {
		dst.Logging.Development = true
	}
}

func envSet(name string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + name)
	return ok
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
