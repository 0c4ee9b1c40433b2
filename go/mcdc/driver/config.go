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

	cliUtils "github.com/Fantom-foundation/Certa/go/mcdc/driver/cli"
	"github.com/urfave/cli/v2"
)

var ConfigCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doConfig,
	Name:   "config",
	Usage:  "Print the effective configuration",
	Flags: []cli.Flag{
		cliUtils.JobsFlag,
		cliUtils.PolicyFlag,
		cliUtils.ConflictsFlag,
		cliUtils.TimeoutFlag,
		cliUtils.AlternativesFlag,
	},
})

func doConfig(context *cli.Context) error {
	config, err := cliUtils.LoadConfig(context)
	if err != nil {
		return err
	}
	data, err := config.Marshal()
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
