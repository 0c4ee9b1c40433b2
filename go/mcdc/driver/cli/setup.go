// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cliUtils

import (
	"os"

	"github.com/Fantom-foundation/Certa/go/mcdc/cfg"
	"github.com/Fantom-foundation/Certa/go/mcdc/slv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// LoadConfig assembles the configuration of a command. Explicit flags take
// precedence over environment variables, which take precedence over the
// configuration file.
func LoadConfig(context *cli.Context) (*cfg.Config, error) {
	if err := cfg.LoadEnvFile(EnvFileFlag.Fetch(context)); err != nil {
		return nil, err
	}
	config, err := cfg.Load(ConfigFlag.Fetch(context))
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if jobs, set := JobsFlag.Fetch(context); set {
		config.Jobs = jobs
	}
	if policy, set, err := PolicyFlag.Fetch(context); err != nil {
		return nil, err
	} else if set {
		config.Policy = policy
	}
	if conflicts, set, err := ConflictsFlag.Fetch(context); err != nil {
		return nil, err
	} else if set {
		config.Reconcile.Conflicts = conflicts
	}
	if timeout, set := TimeoutFlag.Fetch(context); set {
		config.Solver.Timeout = timeout
	}
	if alternatives, set := AlternativesFlag.Fetch(context); set {
		config.Solver.Alternatives = alternatives
	}
	if VerboseFlag.Fetch(context) {
		config.Log.Level = "debug"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// NewLogger creates a production logger at the configured level.
func NewLogger(config *cfg.Config) (*zap.Logger, error) {
	level, err := config.LogLevel()
	if err != nil {
		return nil, err
	}
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zap.NewAtomicLevelAt(level)
	loggerConfig.Encoding = "console"
	return loggerConfig.Build()
}

// NewOracle creates the oracle stack of a run: answers are cached, and
// solver failures are retried once with a fresh SAT solver.
func NewOracle(config *cfg.Config) (*slv.CachingOracle, error) {
	retrying := slv.NewRetryingOracle(func() slv.Oracle {
		return slv.NewSATOracle(config.Solver.Timeout)
	})
	return slv.NewCachingOracle(retrying, config.Solver.CacheSize)
}
