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

	"github.com/Fantom-foundation/Certa/go/mcdc/cat"
	cliUtils "github.com/Fantom-foundation/Certa/go/mcdc/driver/cli"
	"github.com/Fantom-foundation/Certa/go/mcdc/eng"
	"github.com/Fantom-foundation/Certa/go/mcdc/xls"
	"github.com/urfave/cli/v2"
)

var ReconcileCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doReconcile,
	Name:      "reconcile",
	Usage:     "Merge externally authored test cases and match them against a catalog",
	ArgsUsage: "<workbook>...",
	Flags: []cli.Flag{
		cliUtils.CatalogFlag,
		cliUtils.ConflictsFlag,
		cliUtils.OutputFlag,
		cliUtils.SheetFlag,
	},
})

func doReconcile(context *cli.Context) error {
	if context.Args().Len() == 0 {
		return fmt.Errorf("expected at least one workbook")
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

	var catalog *cat.Catalog
	if path := cliUtils.CatalogFlag.Fetch(context); path != "" {
		if catalog, err = cat.Load(path); err != nil {
			return err
		}
	}
	rows, err := readRows(logger, context.Args().Slice(), cliUtils.SheetFlag.Fetch(context))
	if err != nil {
		return err
	}

	result := eng.Reconcile(eng.NewRunContext(logger), catalog, config.Reconcile.Conflicts, rows...)
	path := cliUtils.OutputFlag.Fetch(context)
	if err := xls.Write(path, xls.Workbook{Records: result.Records, Defects: result.Defects}); err != nil {
		return err
	}
	return summarize(nil, result, path)
}
