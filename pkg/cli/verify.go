// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	humanize "github.com/dustin/go-humanize"
	"github.com/kvsql/rangepush/pkg/cli/cliflags"
	"github.com/kvsql/rangepush/pkg/keys"
	"github.com/kvsql/rangepush/pkg/sql/opt/idxconstraint"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/testutils/memstore"
	"github.com/kvsql/rangepush/pkg/util/log"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify --rows <file> [filter]...",
	Short: "check scan plans against sample rows",
	Long: `
Load the rows of a YAML file into an in-memory table and check, for each
filter, that scanning the span of its plan and applying the residual
conjuncts selects exactly the rows the filter selects.

Filters are read as for the explain command.
`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := logtags.AddTag(context.Background(), "verify", nil)
	e, err := loadPlanEnv(ctx)
	if err != nil {
		return err
	}
	store, err := loadStore(e)
	if err != nil {
		return err
	}
	filters, err := readFilters(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	results := planAll(ctx, e, filters)

	out := cmd.OutOrStdout()
	var failed, mismatched int
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
		res, err := checkPlan(store, r.filter, r.plan)
		if err != nil {
			failed++
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if len(res.missing) > 0 || len(res.extra) > 0 {
			mismatched++
			if e.logEvery.ShouldLog() {
				log.Warningf(ctx, "plan of %s selects the wrong rows", r.filter)
			}
			fmt.Fprintf(out, "MISMATCH: missing %s, extra %s\n",
				strings.Join(res.missing, " "), strings.Join(res.extra, " "))
			continue
		}
		fmt.Fprintf(out, "ok: scanned %s of %s rows, %s matched\n",
			humanize.Comma(int64(res.scanned)), humanize.Comma(int64(store.Len())),
			humanize.Comma(int64(res.matched)))
	}
	if err := e.dumpMetrics(cmd.ErrOrStderr()); err != nil {
		return err
	}
	switch {
	case mismatched > 0:
		return errors.Mark(
			errors.Newf("%d of %d plans select the wrong rows", mismatched, len(filters)),
			errVerificationFailed)
	case failed > 0:
		return errors.Newf("%d of %d filters failed", failed, len(filters))
	}
	return nil
}

func loadStore(e *planEnv) (*memstore.Store, error) {
	if cliCtx.rowsPath == "" {
		return nil, errors.Mark(errors.Newf("--%s is required", cliflags.Rows.Name), errFlag)
	}
	f, err := os.Open(cliCtx.rowsPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening rows")
	}
	defer f.Close()
	rows, err := e.table.LoadRows(f, e.cfg.DateFormat)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", cliCtx.rowsPath)
	}
	return memstore.Load(e.table, rows)
}

type checkResult struct {
	scanned, matched int
	// missing and extra hold the keys of rows the plan wrongly omits or
	// includes.
	missing, extra []string
}

// checkPlan compares the rows selected by plan with the rows selected by
// filter.
func checkPlan(
	store *memstore.Store, filter tree.Expr, plan *idxconstraint.ScanPlan,
) (checkResult, error) {
	var res checkResult
	var evalErr error
	want := make(map[string]bool)
	store.All(func(key keys.Key, row tree.Datums) bool {
		ok, err := tree.IsTrue(filter, row)
		if err != nil {
			evalErr = errors.Wrapf(err, "row %s", row)
			return false
		}
		if ok {
			want[string(key)] = true
		}
		return true
	})
	if evalErr != nil {
		return res, evalErr
	}

	residual := plan.Filter()
	store.Scan(plan.Span, func(key keys.Key, row tree.Datums) bool {
		res.scanned++
		ok := true
		if residual != nil {
			var err error
			if ok, err = tree.IsTrue(residual, row); err != nil {
				evalErr = errors.Wrapf(err, "row %s", row)
				return false
			}
		}
		if !ok {
			return true
		}
		res.matched++
		if want[string(key)] {
			delete(want, string(key))
		} else {
			res.extra = append(res.extra, key.String())
		}
		return true
	})
	if evalErr != nil {
		return res, evalErr
	}
	store.All(func(key keys.Key, _ tree.Datums) bool {
		if want[string(key)] {
			res.missing = append(res.missing, key.String())
		}
		return true
	})
	return res, nil
}
