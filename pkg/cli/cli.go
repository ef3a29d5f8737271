// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/cli/exit"
	"github.com/kvsql/rangepush/pkg/util/log"
	"github.com/spf13/cobra"
)

// Proxy to allow overrides in tests.
var osStderr io.Writer = os.Stderr

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "output version information",
	Long: `
Output build version information.
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 1, 2, ' ', 0)
		version, revision := "(devel)", "unknown"
		if info, ok := debug.ReadBuildInfo(); ok {
			version = info.Main.Version
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					revision = s.Value
				}
			}
		}
		fmt.Fprintf(tw, "Build Tag:\t%s\n", version)
		fmt.Fprintf(tw, "Revision:\t%s\n", revision)
		fmt.Fprintf(tw, "Platform:\t%s %s/%s\n", runtime.Compiler, runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(tw, "Go Version:\t%s\n", runtime.Version())
		_ = tw.Flush()
	},
}

var rangepushCmd = &cobra.Command{
	Use:   "rangepush [command] (flags)",
	Short: "scan planner for filters over primary key tables",
	Long: `
Derive the primary key scan of a filter over a table: the range of row keys
holding every row the filter can match, and the conjuncts still to be
evaluated on the rows in that range.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetVerbosity(int32(cliCtx.verbosity))
		log.SetRedaction(cliCtx.redactLogs)
	},
}

func init() {
	cobra.EnableCommandSorting = false

	rangepushCmd.AddCommand(
		explainCmd,
		verifyCmd,
		configCmd,
		versionCmd,
	)
	rangepushCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Mark(err, errFlag)
	})
}

var (
	errFlag               = errors.New("invalid command line")
	errVerificationFailed = errors.New("verification failed")
)

// Run executes the command line given by args.
func Run(args []string) error {
	setCLIContextDefaults()
	rangepushCmd.SetArgs(args)
	return rangepushCmd.Execute()
}

// Main runs the command line of the process and exits.
func Main() {
	err := Run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(osStderr, "ERROR: %v\n", err)
		if h := errors.FlattenHints(err); h != "" {
			fmt.Fprintf(osStderr, "HINT: %s\n", h)
		}
	}
	os.Exit(exitCode(err).Int())
}

// exitCode maps the outcome of a command to the process exit code.
func exitCode(err error) exit.Code {
	switch {
	case err == nil:
		return exit.Success()
	case errors.Is(err, errFlag):
		return exit.CommandLineFlagError()
	case errors.Is(err, errVerificationFailed):
		return exit.VerificationFailed()
	case errors.HasAssertionFailure(err):
		return exit.UnspecifiedGoPanic()
	}
	return exit.UnspecifiedError()
}
