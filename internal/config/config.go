// Package config loads the analysis defaults from the environment.
//
// The loading sequence is:
//  1. Load a .env file via godotenv (non-fatal if absent). Variables already
//     present in the environment win.
//  2. Use envconfig to populate Config from LINEAMENT_* variables.
//  3. Validate the struct with the shared validator.
package config

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/NazyrovaD/Sobel-Morphostructure-KZ/internal/lineament"
)

// Prefix is the environment variable prefix for every key.
const Prefix = "LINEAMENT"

// ErrorType categorizes configuration failures.
type ErrorType string

const (
	// ErrDotenv indicates an explicitly requested .env file could not be read.
	ErrDotenv ErrorType = "DOTENV_ERROR"

	// ErrParsing indicates a variable could not be converted to its field type.
	ErrParsing ErrorType = "PARSING_ERROR"

	// ErrValidation indicates the populated struct failed validation.
	ErrValidation ErrorType = "VALIDATION_ERROR"
)

// ConfigError is returned by Load.
type ConfigError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds server-wide analysis defaults. Tool arguments override them
// per call.
type Config struct {
	// LogLevel is "debug" or "info".
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info"`

	// Percentile is the default zone threshold percentile.
	Percentile float64 `envconfig:"PERCENTILE" default:"85" validate:"gte=0,lte=100"`

	// Percentiles is the default trade-off list, in reporting order.
	Percentiles []float64 `envconfig:"PERCENTILES" default:"70,75,80,85,90,95" validate:"min=1,dive,gte=0,lte=100"`

	// BinWidth is the orientation histogram bin width in degrees.
	BinWidth float64 `envconfig:"BIN_WIDTH" default:"10" validate:"divides180"`

	// BufferDistances are fault buffer distances in grid length units.
	BufferDistances []float64 `envconfig:"BUFFER_DISTANCES" default:"1000,3000,6000" validate:"dive,gte=0"`

	// MaxCellBudget caps full-resolution percentile and distance
	// computations. 0 disables the cap.
	MaxCellBudget int `envconfig:"MAX_CELL_BUDGET" default:"4000000" validate:"gte=0"`

	// Workers bounds the goroutines used by trade-off and overlap batches.
	Workers int `envconfig:"WORKERS" default:"4" validate:"gte=1,lte=64"`

	// CellSizeOverride replaces the georeferenced cell size when positive.
	CellSizeOverride float64 `envconfig:"CELL_SIZE_OVERRIDE" default:"0" validate:"gte=0"`
}

// Default returns the configuration Load produces from an empty
// environment.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		Percentile:      85,
		Percentiles:     []float64{70, 75, 80, 85, 90, 95},
		BinWidth:        10,
		BufferDistances: []float64{1000, 3000, 6000},
		MaxCellBudget:   4000000,
		Workers:         4,
	}
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// Load reads the configuration.
//
// With no arguments an optional ./.env is loaded. Named files must exist.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(dotenvFiles...); err != nil {
		return nil, &ConfigError{
			Type:    ErrDotenv,
			Message: "failed to load env file",
			Err:     err,
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}
	return &cfg, nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the process-wide validator with the custom rules
// registered:
//   - divides180: a float bin width in (0, 180] that divides 180 evenly.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("divides180", func(fl validator.FieldLevel) bool {
			return lineament.ValidBinWidth(fl.Field().Float())
		})
	})
	return validate
}

// Validate checks v's validate tags.
func Validate(v interface{}) error {
	return Validator().Struct(v)
}
