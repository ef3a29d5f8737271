// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"github.com/kvsql/rangepush/pkg/cli/cliflags"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// The flag helpers take their defaults from the current values, which
// setCLIContextDefaults derives from the environment.

func stringFlag(f *pflag.FlagSet, valPtr *string, flagInfo cliflags.FlagInfo) {
	f.StringVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
}

func intFlag(f *pflag.FlagSet, valPtr *int, flagInfo cliflags.FlagInfo) {
	f.IntVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
}

func boolFlag(f *pflag.FlagSet, valPtr *bool, flagInfo cliflags.FlagInfo) {
	f.BoolVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
}

func init() {
	setCLIContextDefaults()

	// Logging flags apply to every command.
	{
		pf := rangepushCmd.PersistentFlags()
		intFlag(pf, &cliCtx.verbosity, cliflags.Verbosity)
		boolFlag(pf, &cliCtx.redactLogs, cliflags.RedactLogs)
	}

	// Flags common to the commands that plan filters.
	for _, cmd := range []*cobra.Command{explainCmd, verifyCmd} {
		f := cmd.Flags()
		stringFlag(f, &cliCtx.schemaPath, cliflags.Schema)
		stringFlag(f, &cliCtx.tableName, cliflags.Table)
		stringFlag(f, &cliCtx.configPath, cliflags.Config)
		boolFlag(f, &cliCtx.printMetrics, cliflags.PrintMetrics)
	}
	stringFlag(configCmd.Flags(), &cliCtx.configPath, cliflags.Config)
	stringFlag(verifyCmd.Flags(), &cliCtx.rowsPath, cliflags.Rows)
}
