// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Fantom-foundation/Certa/go/mcdc/cat"
	cliUtils "github.com/Fantom-foundation/Certa/go/mcdc/driver/cli"
	"github.com/Fantom-foundation/Certa/go/mcdc/eng"
	"github.com/Fantom-foundation/Certa/go/mcdc/rcn"
	"github.com/Fantom-foundation/Certa/go/mcdc/xls"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var GenerateCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doGenerate,
	Name:      "generate",
	Usage:     "Generate MC/DC test cases for the decisions of a catalog",
	ArgsUsage: "<catalog>",
	Flags: []cli.Flag{
		cliUtils.JobsFlag,
		cliUtils.PolicyFlag,
		cliUtils.ConflictsFlag,
		cliUtils.TimeoutFlag,
		cliUtils.AlternativesFlag,
		cliUtils.OutputFlag,
		cliUtils.RowsFlag,
		cliUtils.SheetFlag,
	},
})

func doGenerate(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one catalog file, got %d arguments", context.Args().Len())
	}
	config, err := cliUtils.LoadConfig(context)
	if err != nil {
		return err
	}
	logger, err := cliUtils.NewLogger(config)
	if err != nil {
		return err
	}
	defer logger.Sync()

	catalog, err := cat.Load(context.Args().Get(0))
	if err != nil {
		return err
	}
	external, err := readRows(logger, cliUtils.RowsFlag.Fetch(context), cliUtils.SheetFlag.Fetch(context))
	if err != nil {
		return err
	}

	oracle, err := cliUtils.NewOracle(config)
	if err != nil {
		return err
	}
	run := eng.NewRunContext(logger)
	ctx, stop := signal.NotifyContext(context.Context, os.Interrupt)
	defer stop()

	fmt.Printf("Generating test cases for %d modules using %v MC/DC ...\n", len(catalog.Modules), config.Policy)
	output, err := eng.New(oracle, config.EngineOptions()).Generate(ctx, run, catalog)
	if err != nil {
		return fmt.Errorf("generation aborted: %w", err)
	}
	hits, misses := oracle.Stats()
	logger.Debug("solver cache", zap.Uint64("hits", hits), zap.Uint64("misses", misses))

	result := eng.Reconcile(run, catalog, config.Reconcile.Conflicts, append([][]*rcn.Record{output.Records}, external...)...)
	path := cliUtils.OutputFlag.Fetch(context)
	if err := xls.Write(path, xls.Workbook{
		Records:  result.Records,
		Coverage: output.Coverage,
		Defects:  result.Defects,
	}); err != nil {
		return err
	}

	return summarize(output.Coverage, result, path)
}

// readRows reads the external test case workbooks. Malformed rows are
// logged and skipped.
func readRows(logger *zap.Logger, paths []string, sheet string) ([][]*rcn.Record, error) {
	res := [][]*rcn.Record{}
	for _, path := range paths {
		records, err := xls.ReadRecords(path, sheet)
		if records == nil && err != nil {
			return nil, err
		}
		if err != nil {
			logger.Warn("skipping malformed rows", zap.String("workbook", path), zap.Error(err))
		}
		res = append(res, records)
	}
	return res, nil
}

// summarize prints the outcome of a run and fails if any obligation errored
// or any test case is defective.
func summarize(coverage *eng.Report, result *rcn.Result, path string) error {
	if coverage != nil {
		fmt.Printf("Coverage: %v\n", coverage.Summary())
		for _, entry := range coverage.Entries {
			if entry.Status != eng.Discharged {
				fmt.Printf("  %v\n", entry)
			}
		}
	}
	fmt.Printf("Wrote %d test cases to %s\n", len(result.Records), path)
	for _, defect := range result.Defects {
		fmt.Printf("  defective: %v\n", defect)
	}

	numErrored := 0
	if coverage != nil {
		numErrored = coverage.Summary().Errored
	}
	if numErrored == 0 && len(result.Defects) == 0 {
		return nil
	}
	return fmt.Errorf("%d obligations errored, %d test cases defective", numErrored, len(result.Defects))
}
