// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cfg

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Fantom-foundation/Certa/go/mcdc/obl"
	"github.com/Fantom-foundation/Certa/go/mcdc/rcn"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("default configuration is invalid: %v", err)
	}
	if want, got := obl.UniqueCause, config.Policy; want != got {
		t.Errorf("unexpected default policy, wanted %v, got %v", want, got)
	}
	if want, got := rcn.Reject, config.Reconcile.Conflicts; want != got {
		t.Errorf("unexpected default conflict policy, wanted %v, got %v", want, got)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, "mcdc.yaml", `
policy: masking
solver:
  timeout: 1m30s
  cache_size: 16
reconcile:
  conflicts: keep-last
`)
	config, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load configuration: %v", err)
	}
	if want, got := obl.Masking, config.Policy; want != got {
		t.Errorf("unexpected policy, wanted %v, got %v", want, got)
	}
	if want, got := 90*time.Second, config.Solver.Timeout; want != got {
		t.Errorf("unexpected timeout, wanted %v, got %v", want, got)
	}
	if want, got := 16, config.Solver.CacheSize; want != got {
		t.Errorf("unexpected cache size, wanted %d, got %d", want, got)
	}
	if want, got := Default().Solver.Alternatives, config.Solver.Alternatives; want != got {
		t.Errorf("missing values should keep their default, wanted %d, got %d", want, got)
	}
	if want, got := rcn.KeepLast, config.Reconcile.Conflicts; want != got {
		t.Errorf("unexpected conflict policy, wanted %v, got %v", want, got)
	}
}

func TestLoad_EmptyPathOrFileYieldsDefaults(t *testing.T) {
	for _, path := range []string{"", writeFile(t, "empty.yaml", "")} {
		config, err := Load(path)
		if err != nil {
			t.Fatalf("failed to load %q: %v", path, err)
		}
		if want, got := Default().Solver, config.Solver; want != got {
			t.Errorf("unexpected solver configuration, wanted %v, got %v", want, got)
		}
	}
}

func TestLoad_RejectsInvalidFiles(t *testing.T) {
	tests := map[string]string{
		"unknown key":    "colour: blue\n",
		"unknown policy": "policy: sometimes\n",
		"bad duration":   "solver:\n  timeout: soon\n",
		"bad conflicts":  "reconcile:\n  conflicts: coin-flip\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "mcdc.yaml", content))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("unexpected error, wanted %v, got %v", ErrInvalidConfig, err)
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing file should be reported")
	}
}

func TestApplyEnv_OverridesValues(t *testing.T) {
	env := map[string]string{
		"MCDC_POLICY":              "mask",
		"MCDC_JOBS":                "3",
		"MCDC_SOLVER_TIMEOUT":      "250ms",
		"MCDC_SOLVER_ALTERNATIVES": "7",
		"MCDC_SOLVER_CACHE_SIZE":   "9",
		"MCDC_RECONCILE_CONFLICTS": "first",
		"MCDC_LOG_LEVEL":           "debug",
	}
	lookup := func(key string) (string, bool) {
		value, found := env[key]
		return value, found
	}
	config := Default()
	if err := config.ApplyEnv(lookup); err != nil {
		t.Fatalf("failed to apply environment: %v", err)
	}
	want := Config{
		Policy: obl.Masking,
		Jobs:   3,
		Solver: SolverConfig{
			Timeout:      250 * time.Millisecond,
			Alternatives: 7,
			CacheSize:    9,
		},
		Reconcile: ReconcileConfig{Conflicts: rcn.KeepFirst},
		Log:       LogConfig{Level: "debug"},
	}
	if want, got := want, *config; want != got {
		t.Errorf("unexpected configuration, wanted %+v, got %+v", want, got)
	}
	if level, err := config.LogLevel(); err != nil || level != zapcore.DebugLevel {
		t.Errorf("unexpected log level %v, error %v", level, err)
	}
}

func TestApplyEnv_ReportsAllInvalidValues(t *testing.T) {
	env := map[string]string{
		"MCDC_JOBS":           "many",
		"MCDC_SOLVER_TIMEOUT": "soon",
		"MCDC_POLICY":         "sometimes",
	}
	config := Default()
	err := config.ApplyEnv(func(key string) (string, bool) {
		value, found := env[key]
		return value, found
	})
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, obl.ErrUnknownPolicy) {
		t.Fatalf("unexpected error: %v", err)
	}
	for key := range env {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error does not mention %s: %v", key, err)
		}
	}
}

func TestValidate_RejectsOutOfRangeValues(t *testing.T) {
	tests := map[string]func(*Config){
		"negative jobs":    func(c *Config) { c.Jobs = -1 },
		"negative timeout": func(c *Config) { c.Solver.Timeout = -time.Second },
		"no alternatives":  func(c *Config) { c.Solver.Alternatives = 0 },
		"no cache":         func(c *Config) { c.Solver.CacheSize = 0 },
		"unknown level":    func(c *Config) { c.Log.Level = "chatty" },
	}
	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			config := Default()
			modify(config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("unexpected error, wanted %v, got %v", ErrInvalidConfig, err)
			}
		})
	}
}

func TestMarshal_CanBeLoadedAgain(t *testing.T) {
	config := Default()
	config.Policy = obl.Masking
	config.Solver.Timeout = 3 * time.Second
	config.Reconcile.Conflicts = rcn.KeepFirst
	data, err := config.Marshal()
	if err != nil {
		t.Fatalf("failed to marshal configuration: %v", err)
	}
	loaded, err := Load(writeFile(t, "mcdc.yaml", string(data)))
	if err != nil {
		t.Fatalf("failed to load marshaled configuration: %v\n%s", err, data)
	}
	if want, got := *config, *loaded; want != got {
		t.Errorf("unexpected configuration, wanted %+v, got %+v", want, got)
	}
}

func TestEngineOptions_FollowConfiguration(t *testing.T) {
	config := Default()
	config.Policy = obl.Masking
	config.Jobs = 0
	config.Solver.Alternatives = 2
	options := config.EngineOptions()
	if want, got := obl.Masking, options.Policy; want != got {
		t.Errorf("unexpected policy, wanted %v, got %v", want, got)
	}
	if options.Jobs <= 0 {
		t.Errorf("jobs should default to a positive number, got %d", options.Jobs)
	}
	if want, got := 2, options.Alternatives; want != got {
		t.Errorf("unexpected alternatives, wanted %d, got %d", want, got)
	}
}

func TestLoadEnvFile_SetsVariables(t *testing.T) {
	path := writeFile(t, ".env", "MCDC_TEST_ENV_FILE=loaded\n")
	t.Setenv("MCDC_TEST_ENV_FILE", "")
	os.Unsetenv("MCDC_TEST_ENV_FILE")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("failed to load env file: %v", err)
	}
	if want, got := "loaded", os.Getenv("MCDC_TEST_ENV_FILE"); want != got {
		t.Errorf("unexpected variable value, wanted %q, got %q", want, got)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}
