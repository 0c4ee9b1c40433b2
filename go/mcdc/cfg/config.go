// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package cfg provides the configuration of test suite generation runs.
package cfg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/Fantom-foundation/Certa/go/mcdc/common"
	"github.com/Fantom-foundation/Certa/go/mcdc/eng"
	"github.com/Fantom-foundation/Certa/go/mcdc/obl"
	"github.com/Fantom-foundation/Certa/go/mcdc/rcn"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const ErrInvalidConfig = common.ConstErr("invalid configuration")

// EnvPrefix is the prefix of environment variables overriding configuration
// values, e.g. MCDC_SOLVER_TIMEOUT.
const EnvPrefix = "MCDC_"

// Config is the complete configuration of a run.
type Config struct {
	Policy    obl.Policy      `yaml:"policy"`
	Jobs      int             `yaml:"jobs"`
	Solver    SolverConfig    `yaml:"solver"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Log       LogConfig       `yaml:"log"`
}

type SolverConfig struct {
	// Timeout bounds a single solver call; zero disables the bound.
	Timeout time.Duration `yaml:"timeout"`
	// Alternatives is the number of pairs searched per obligation.
	Alternatives int `yaml:"alternatives"`
	// CacheSize is the number of solver answers kept.
	CacheSize int `yaml:"cache_size"`
}

type ReconcileConfig struct {
	Conflicts rcn.ConflictPolicy `yaml:"conflicts"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used in the absence of any file or
// environment overrides.
func Default() *Config {
	options := eng.DefaultOptions()
	return &Config{
		Policy: options.Policy,
		Jobs:   options.Jobs,
		Solver: SolverConfig{
			Timeout:      10 * time.Second,
			Alternatives: options.Alternatives,
			CacheSize:    1 << 12,
		},
		Reconcile: ReconcileConfig{
			Conflicts: rcn.Reject,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a configuration from a YAML file. Values missing in the file
// keep their defaults; unknown keys are rejected. An empty path yields the
// default configuration.
func Load(path string) (*Config, error) {
	res := Default()
	if path == "" {
		return res, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(res); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return res, nil
}

// LoadEnvFile adds the variables of a .env file to the environment of the
// process. Variables already set are not overridden. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides configuration values by environment variables looked up
// with the given function, typically os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	get := func(key string) (string, bool) {
		return lookup(EnvPrefix + key)
	}
	parseInt := func(key string, target *int) {
		if text, found := get(key); found {
			value, err := strconv.Atoi(text)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*target = value
		}
	}
	parseText := func(key string, target interface{ UnmarshalText([]byte) error }) {
		if text, found := get(key); found {
			if err := target.UnmarshalText([]byte(text)); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			}
		}
	}

	parseText("POLICY", &c.Policy)
	parseInt("JOBS", &c.Jobs)
	if text, found := get("SOLVER_TIMEOUT"); found {
		timeout, err := time.ParseDuration(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSOLVER_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Solver.Timeout = timeout
		}
	}
	parseInt("SOLVER_ALTERNATIVES", &c.Solver.Alternatives)
	parseInt("SOLVER_CACHE_SIZE", &c.Solver.CacheSize)
	parseText("RECONCILE_CONFLICTS", &c.Reconcile.Conflicts)
	if text, found := get("LOG_LEVEL"); found {
		c.Log.Level = text
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Validate checks the ranges of all values.
func (c *Config) Validate() error {
	var errs []error
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must not be negative, got %d", c.Jobs))
	}
	if c.Solver.Timeout < 0 {
		errs = append(errs, fmt.Errorf("solver.timeout must not be negative, got %v", c.Solver.Timeout))
	}
	if c.Solver.Alternatives < 1 {
		errs = append(errs, fmt.Errorf("solver.alternatives must be at least 1, got %d", c.Solver.Alternatives))
	}
	if c.Solver.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("solver.cache_size must be at least 1, got %d", c.Solver.CacheSize))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *Config) LogLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// EngineOptions derives the options of the generation engine.
func (c *Config) EngineOptions() eng.Options {
	res := eng.DefaultOptions()
	res.Policy = c.Policy
	if c.Jobs > 0 {
		res.Jobs = c.Jobs
	}
	res.Alternatives = c.Solver.Alternatives
	return res
}

// Marshal renders the configuration as YAML, in the format read by Load.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
