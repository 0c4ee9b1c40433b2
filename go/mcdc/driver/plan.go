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
	"strings"

	"github.com/Fantom-foundation/Certa/go/mcdc/cat"
	cliUtils "github.com/Fantom-foundation/Certa/go/mcdc/driver/cli"
	"github.com/Fantom-foundation/Certa/go/mcdc/eng"
	"github.com/urfave/cli/v2"
)

var PlanCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doPlan,
	Name:      "plan",
	Usage:     "List the independence obligations of the decisions of a catalog",
	ArgsUsage: "<catalog>",
	Flags: []cli.Flag{
		cliUtils.PolicyFlag,
	},
})

func doPlan(context *cli.Context) error {
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

	// Planning does not solve anything, hence no oracle is needed.
	plan := eng.New(nil, config.EngineOptions()).Plan(eng.NewRunContext(logger), catalog)
	verbose := cliUtils.VerboseFlag.Fetch(context)
	for _, planned := range plan.Decisions {
		fmt.Printf("%s (%s/%s): %v\n", planned.Decision.ID, planned.Module.Requirement, planned.Module.Name, planned.Decision.Root)
		for _, o := range planned.Obligations {
			status := ""
			if o.Infeasible != nil {
				status = fmt.Sprintf(" - %v", o.Infeasible)
			}
			fmt.Printf("  %v%s\n", o, status)
			if verbose {
				fmt.Print(indent(o.Problem.String(), "    "))
			}
		}
	}
	for _, failure := range plan.Failures {
		fmt.Printf("%v\n", failure)
	}
	if len(plan.Failures) > 0 {
		return fmt.Errorf("failed to resolve %d decisions", len(plan.Failures))
	}
	return nil
}

func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var res strings.Builder
	for _, line := range lines {
		if line != "" {
			res.WriteString(prefix)
			res.WriteString(line)
		}
	}
	return res.String()
}
