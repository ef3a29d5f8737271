// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/kvsql/rangepush/pkg/sql/opt/idxconstraint"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/util/log"
	isatty "github.com/mattn/go-isatty"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var explainCmd = &cobra.Command{
	Use:   "explain [filter]...",
	Short: "show the scan plans of filters",
	Long: `
Show the primary key scan of each filter: the span of row keys to read and
the residual conjuncts to evaluate on the rows read.

When no filters are given as arguments they are read from standard input,
one per line. Blank lines and lines starting with "--" are skipped.
`,
	Example: `  rangepush explain --schema schema.yaml "a = 5 AND left(s, 2) = 'ab'"`,
	RunE:    runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := logtags.AddTag(context.Background(), "explain", nil)
	e, err := loadPlanEnv(ctx)
	if err != nil {
		return err
	}
	filters, err := readFilters(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	results := planAll(ctx, e, filters)

	out := cmd.OutOrStdout()
	var failed int
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "filter: %s\n", filters[i])
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "error: %v\n", r.err)
			continue
		}
		fmt.Fprintln(out, r.plan)
	}
	if err := e.dumpMetrics(cmd.ErrOrStderr()); err != nil {
		return err
	}
	if failed > 0 {
		return errors.Newf("%d of %d filters failed", failed, len(filters))
	}
	return nil
}

// readFilters returns args, or the filters on the lines of in if there
// are no args.
func readFilters(in io.Reader, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return nil, errors.WithHint(
			errors.Mark(errors.New("no filters given"), errFlag),
			"pass filters as arguments or on standard input")
	}
	var filters []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		filters = append(filters, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading filters")
	}
	if len(filters) == 0 {
		return nil, errors.Mark(errors.New("no filters given"), errFlag)
	}
	return filters, nil
}

type planResult struct {
	filter tree.Expr
	plan   *idxconstraint.ScanPlan
	err    error
}

// planAll parses and plans the filters, QueryConcurrency of them at a
// time. The results are in the order of filters.
func planAll(ctx context.Context, e *planEnv, filters []string) []planResult {
	results := make([]planResult, len(filters))
	var g errgroup.Group
	g.SetLimit(e.cfg.QueryConcurrency())
	for i, sql := range filters {
		g.Go(func() error {
			ctx := logtags.AddTag(ctx, "f", i+1)
			r := &results[i]
			if r.filter, r.err = e.parser.Parse(sql); r.err != nil {
				log.VEventf(ctx, 1, "%v", r.err)
				return nil
			}
			r.plan, r.err = idxconstraint.Build(ctx, r.filter, e.table, idxconstraint.Options{Metrics: e.metrics})
			if r.err != nil && e.logEvery.ShouldLog() {
				log.Errorf(ctx, "%v", r.err)
			}
			return nil
		})
	}
	// Errors are kept per filter in results; no goroutine returns one.
	_ = g.Wait()
	return results
}

// dumpMetrics writes the planner metrics to w if --metrics is set.
func (e *planEnv) dumpMetrics(w io.Writer) error {
	if !cliCtx.printMetrics {
		return nil
	}
	families, err := e.reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}
	return nil
}
