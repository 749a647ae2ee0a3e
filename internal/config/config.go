package config

import (
	"fmt"
	"os"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"acadcli/internal/transform"
)

// Parser mode values accepted in configuration and on the command line.
// "auto" defers the layout decision to transform.Detect.
const (
	ModeAuto    = "auto"
	ModeColumns = "columns"
	ModeCells   = "cells"
)

// Config holds all application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Parser    ParserConfig    `yaml:"parser" envconfig:"PARSER"`
	Batch     BatchConfig     `yaml:"batch" envconfig:"BATCH"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stderr file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig holds the directories the commands read from and write to
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// ParserConfig holds the token grammar settings. It maps one-to-one onto
// transform.Options via TransformOptions.
type ParserConfig struct {
	Mode              string            `yaml:"mode" envconfig:"MODE" validate:"oneof=auto columns cells"`
	IdentityColumn    string            `yaml:"identity_column" envconfig:"IDENTITY_COLUMN" validate:"required"`
	CourseSlotColumns []string          `yaml:"course_slot_columns" envconfig:"COURSE_SLOT_COLUMNS"`
	MinYear           int               `yaml:"min_year" envconfig:"MIN_YEAR" validate:"min=1000,max=9999"`
	MaxYear           int               `yaml:"max_year" envconfig:"MAX_YEAR" validate:"min=1000,max=9999"`
	Delimiters        string            `yaml:"delimiters" envconfig:"DELIMITERS" validate:"required,delims"`
	GradeAliases      map[string]string `yaml:"grade_aliases" envconfig:"GRADE_ALIASES"`
}

// BatchConfig holds archive processing settings
type BatchConfig struct {
	MaxParallel int  `yaml:"max_parallel" envconfig:"MAX_PARALLEL" validate:"min=1,max=64"`
	DedupeFiles bool `yaml:"dedupe_files" envconfig:"DEDUPE_FILES"`
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
}

// Load reads configuration from defaults, an optional config file, and the
// environment, in ascending order of precedence, then validates the result.
func Load() (*Config, error) {
	return loadWith(getConfigFilePath())
}

// LoadFile behaves like Load but reads the named config file instead of
// searching the standard locations. The file must exist.
func LoadFile(path string) (*Config, error) {
	return loadWith(path)
}

func loadWith(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Environment variables override file values. Fields without a matching
	// ACAD_* variable are left untouched.
	if err := envconfig.Process("ACAD", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays values from a YAML file onto the receiver.
// Keys absent from the file leave the current values in place.
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the path to the configuration file, checking the
// ACAD_CONFIG_FILE override first and then the standard locations.
func getConfigFilePath() string {
	if path := os.Getenv("ACAD_CONFIG_FILE"); path != "" {
		return path
	}

	candidates := []string{
		"config.yaml",
		"config.yml",
		"configs/config.yaml",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// validate checks the configuration for invalid values
func (c *Config) validate() error {
	v := validator.New()
	if err := v.RegisterValidation("delims", validateDelimiters); err != nil {
		return fmt.Errorf("failed to register delimiter rule: %w", err)
	}

	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Logging.Output != "stderr" && c.Logging.FilePath == "" {
		return fmt.Errorf("invalid configuration: logging.file_path is required when logging.output is %q", c.Logging.Output)
	}

	if c.Parser.MinYear > c.Parser.MaxYear {
		return fmt.Errorf("invalid configuration: parser.min_year %d exceeds parser.max_year %d",
			c.Parser.MinYear, c.Parser.MaxYear)
	}

	if c.Parser.Mode == ModeCells && len(c.Parser.CourseSlotColumns) == 0 {
		return fmt.Errorf("invalid configuration: parser.course_slot_columns is required when parser.mode is %q", ModeCells)
	}

	return nil
}

// validateDelimiters rejects delimiter sets containing letters, digits, or
// whitespace, which would collide with token content.
func validateDelimiters(fl validator.FieldLevel) bool {
	delims := fl.Field().String()
	for _, r := range delims {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return len(delims) > 0
}

// TransformOptions maps the parser section onto transform.Options.
// In auto mode the returned Options carry an empty Mode; the caller is
// expected to run transform.Detect before constructing a Normalizer.
func (c *Config) TransformOptions() transform.Options {
	opts := transform.Options{
		IdentityColumn:    c.Parser.IdentityColumn,
		CourseSlotColumns: append([]string(nil), c.Parser.CourseSlotColumns...),
		MinYear:           c.Parser.MinYear,
		MaxYear:           c.Parser.MaxYear,
		Delimiters:        c.Parser.Delimiters,
	}

	if len(c.Parser.GradeAliases) > 0 {
		opts.GradeAliases = make(map[string]string, len(c.Parser.GradeAliases))
		for spelling, target := range c.Parser.GradeAliases {
			opts.GradeAliases[spelling] = target
		}
	}

	switch c.Parser.Mode {
	case ModeColumns:
		opts.Mode = transform.ModeColumnEncoded
	case ModeCells:
		opts.Mode = transform.ModeCellEncoded
	}

	return opts
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/acadcli.log",
		},
		Paths: PathsConfig{
			OutputDir: DefaultOutputDir,
			LogsDir:   DefaultLogsDir,
		},
		Parser: ParserConfig{
			Mode:           ModeAuto,
			IdentityColumn: DefaultIdentityColumn,
			MinYear:        DefaultMinYear,
			MaxYear:        DefaultMaxYear,
			Delimiters:     DefaultDelimiters,
		},
		Batch: BatchConfig{
			MaxParallel: DefaultMaxParallel,
			DedupeFiles: true,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: AppName,
		},
	}
}
