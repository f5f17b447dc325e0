// Package config provides the configuration management for the gofcalc demo
// command. It defines the data structure for the configuration, handles the
// parsing of command-line arguments, and performs validation on the
// configuration values.
package config

import (
	"flag"
	"io"
	"time"

	apperrors "github.com/agbru/gofcalc/internal/errors"
)

// EnvPrefix is the prefix for all environment variables used by gofcalc.
// Environment variables provide an alternative to CLI flags for
// configuration, following the 12-Factor App methodology.
const EnvPrefix = "GOFCALC_"

// Default configuration values. These can be overridden via command-line
// flags or environment variables.
const (
	// DefaultEvents is the default synthetic dataset size.
	DefaultEvents = 100_000
	// DefaultWorkers is the default worker count (1 disables the fan-out).
	DefaultWorkers = 1
	// DefaultSeed seeds the synthetic dataset generator.
	DefaultSeed int64 = 1
	// DefaultTimeout is the default evaluation timeout.
	DefaultTimeout = 2 * time.Minute
)

// AppConfig aggregates the demo command's configuration parameters.
type AppConfig struct {
	// Events is the number of synthetic events to generate.
	Events int
	// Workers is the requested worker count for the evaluation fan-out.
	Workers int
	// Seed seeds the synthetic dataset generator for reproducible runs.
	Seed int64
	// Timeout sets the maximum duration for the evaluation.
	Timeout time.Duration
	// Simultaneous, if true, builds a two-category composite model and a
	// category-labelled dataset instead of a single Gaussian.
	Simultaneous bool
	// Verbose, if true, enables debug-level logging.
	Verbose bool
	// JSONOutput, if true, prints the result as a JSON object.
	JSONOutput bool
}

// ParseConfig parses flags and environment variables into an AppConfig.
// Environment variables supply defaults; flags override them.
//
// Parameters:
//   - programName: The program name for flag usage output.
//   - args: The command-line arguments (without the program name).
//   - errWriter: The writer for flag parse errors and usage.
//
// Returns:
//   - AppConfig: The validated configuration.
//   - error: A ConfigError if parsing or validation fails.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := AppConfig{}
	fs.IntVar(&cfg.Events, "events", getEnvInt("EVENTS", DefaultEvents), "Number of synthetic events to generate")
	fs.IntVar(&cfg.Workers, "workers", getEnvInt("WORKERS", DefaultWorkers), "Worker count for parallel evaluation (>1 enables fan-out)")
	fs.Int64Var(&cfg.Seed, "seed", getEnvInt64("SEED", DefaultSeed), "Random seed for the synthetic dataset")
	fs.DurationVar(&cfg.Timeout, "timeout", getEnvDuration("TIMEOUT", DefaultTimeout), "Evaluation timeout")
	fs.BoolVar(&cfg.Simultaneous, "sim", getEnvBool("SIM", false), "Use a two-category simultaneous model")
	fs.BoolVar(&cfg.Verbose, "v", getEnvBool("VERBOSE", false), "Enable debug logging")
	fs.BoolVar(&cfg.JSONOutput, "json", getEnvBool("JSON", false), "Output the result as JSON")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, apperrors.NewConfigError("parsing flags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c AppConfig) Validate() error {
	if c.Events < 0 {
		return apperrors.NewConfigError("events must be >= 0, got %d", c.Events)
	}
	if c.Workers < 1 {
		return apperrors.NewConfigError("workers must be >= 1, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
