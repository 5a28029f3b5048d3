// Package config loads application configuration from an optional YAML file
// merged with TSAGG_* environment variables. Command-line flags override both.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Input   InputConfig   `yaml:"input" envconfig:"INPUT"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/tsagg.log"`
}

// InputConfig controls how source workbooks are interpreted.
type InputConfig struct {
	// TimestampColumn is the header of the column parsed as the row instant.
	TimestampColumn string `yaml:"timestamp_column" envconfig:"TIMESTAMP_COLUMN" default:"Date Time"`
	// SheetPrefix is stripped from sheet names when deriving device names.
	SheetPrefix string `yaml:"sheet_prefix" envconfig:"SHEET_PREFIX" default:"Input "`
	// SkipBadRows drops rows with unparseable timestamps instead of failing.
	SkipBadRows bool `yaml:"skip_bad_rows" envconfig:"SKIP_BAD_ROWS" default:"false"`
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	// Path is overwritten without confirmation on every successful run.
	Path string `yaml:"path" envconfig:"PATH" default:"aggregated_output.csv"`
}

// Load builds the configuration from environment variables and, when path is
// non-empty and the file exists, a YAML file. File values override env values.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TSAGG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := loadFromFile(path, &cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration with no file and no environment applied
// beyond struct defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: "logs/tsagg.log",
		},
		Input: InputConfig{
			TimestampColumn: "Date Time",
			SheetPrefix:     "Input ",
		},
		Output: OutputConfig{
			Path: "aggregated_output.csv",
		},
	}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}
	if c.Input.TimestampColumn == "" {
		return fmt.Errorf("timestamp column must not be empty")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output path must not be empty")
	}
	return nil
}
