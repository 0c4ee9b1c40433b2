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
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/Fantom-foundation/Certa/go/mcdc/obl"
	"github.com/Fantom-foundation/Certa/go/mcdc/rcn"
	"github.com/urfave/cli/v2"
)

type configFlagType struct {
	cli.StringFlag
}

var ConfigFlag = &configFlagType{
	cli.StringFlag{
		Name:      "config",
		Aliases:   []string{"c"},
		Usage:     "load the configuration from the given YAML file",
		TakesFile: true,
	},
}

func (f *configFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type envFileFlagType struct {
	cli.StringFlag
}

var EnvFileFlag = &envFileFlagType{
	cli.StringFlag{
		Name:      "env-file",
		Usage:     "load environment variables from the given file if it exists",
		Value:     ".env",
		TakesFile: true,
	},
}

func (f *envFileFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type jobsFlagType struct {
	cli.IntFlag
}

var JobsFlag = &jobsFlagType{
	cli.IntFlag{
		Name:    "jobs",
		Aliases: []string{"j"},
		Usage:   "number of obligations solved simultaneously",
	},
}

// Fetch returns the number of jobs and whether it was given explicitly.
func (f *jobsFlagType) Fetch(context *cli.Context) (int, bool) {
	return context.Int(f.Name), context.IsSet(f.Name)
}

type policyFlagType struct {
	cli.StringFlag
}

var PolicyFlag = &policyFlagType{
	cli.StringFlag{
		Name:    "policy",
		Aliases: []string{"p"},
		Usage:   "MC/DC variant, either unique-cause or masking",
	},
}

// Fetch returns the policy and whether it was given explicitly.
func (f *policyFlagType) Fetch(context *cli.Context) (obl.Policy, bool, error) {
	if !context.IsSet(f.Name) {
		return obl.UniqueCause, false, nil
	}
	res, err := obl.ParsePolicy(context.String(f.Name))
	return res, true, err
}

type conflictsFlagType struct {
	cli.StringFlag
}

var ConflictsFlag = &conflictsFlagType{
	cli.StringFlag{
		Name:  "conflicts",
		Usage: "resolution of conflicting input values, one of reject, keep-first, keep-last",
	},
}

// Fetch returns the conflict policy and whether it was given explicitly.
func (f *conflictsFlagType) Fetch(context *cli.Context) (rcn.ConflictPolicy, bool, error) {
	if !context.IsSet(f.Name) {
		return rcn.Reject, false, nil
	}
	res, err := rcn.ParseConflictPolicy(context.String(f.Name))
	return res, true, err
}

type timeoutFlagType struct {
	cli.DurationFlag
}

var TimeoutFlag = &timeoutFlagType{
	cli.DurationFlag{
		Name:  "timeout",
		Usage: "time limit of a single solver call, 0 for none",
	},
}

// Fetch returns the timeout and whether it was given explicitly.
func (f *timeoutFlagType) Fetch(context *cli.Context) (time.Duration, bool) {
	return context.Duration(f.Name), context.IsSet(f.Name)
}

type alternativesFlagType struct {
	cli.IntFlag
}

var AlternativesFlag = &alternativesFlagType{
	cli.IntFlag{
		Name:  "alternatives",
		Usage: "number of pairs searched per obligation to minimize suites",
	},
}

// Fetch returns the number of alternatives and whether it was given
// explicitly.
func (f *alternativesFlagType) Fetch(context *cli.Context) (int, bool) {
	return context.Int(f.Name), context.IsSet(f.Name)
}

type verboseFlagType struct {
	cli.BoolFlag
}

var VerboseFlag = &verboseFlagType{
	cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "enable debug logging",
	},
}

func (f *verboseFlagType) Fetch(context *cli.Context) bool {
	return context.Bool(f.Name)
}

type outputFlagType struct {
	cli.StringFlag
}

var OutputFlag = &outputFlagType{
	cli.StringFlag{
		Name:      "output",
		Aliases:   []string{"o"},
		Usage:     "workbook the test cases are written to",
		Value:     "testcases.xlsx",
		TakesFile: true,
	},
}

func (f *outputFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type rowsFlagType struct {
	cli.StringSliceFlag
}

var RowsFlag = &rowsFlagType{
	cli.StringSliceFlag{
		Name:      "rows",
		Aliases:   []string{"r"},
		Usage:     "workbook of externally authored test cases, may be repeated",
		TakesFile: true,
	},
}

func (f *rowsFlagType) Fetch(context *cli.Context) []string {
	return context.StringSlice(f.Name)
}

type sheetFlagType struct {
	cli.StringFlag
}

var SheetFlag = &sheetFlagType{
	cli.StringFlag{
		Name:  "sheet",
		Usage: "sheet of the test case workbooks to read, the first sheet by default",
	},
}

func (f *sheetFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type catalogFlagType struct {
	cli.StringFlag
}

var CatalogFlag = &catalogFlagType{
	cli.StringFlag{
		Name:      "catalog",
		Usage:     "catalog of variables, constants, and modules rows are matched against",
		TakesFile: true,
	},
}

func (f *catalogFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

var commonFlags = []cli.Flag{
	cpuProfileFlag,
	ConfigFlag,
	EnvFileFlag,
	VerboseFlag,
}

var cpuProfileFlag = &cli.StringFlag{
	Name:      "cpuprofile",
	Usage:     "store CPU profile in the provided filename",
	TakesFile: true,
}

// AddCommonFlags adds the configuration, logging, and profiling flags to a
// command.
func AddCommonFlags(command cli.Command) cli.Command {
	command.Flags = append(command.Flags, commonFlags...)

	action := command.Action
	command.Action = func(ctx *cli.Context) (err error) {
		if cpuprofileFilename := ctx.String(cpuProfileFlag.Name); cpuprofileFilename != "" {
			f, err := os.Create(cpuprofileFilename)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		return action(ctx)
	}
	return command
}
