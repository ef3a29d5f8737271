// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/base"
	"github.com/kvsql/rangepush/pkg/cli/exit"
	"github.com/kvsql/rangepush/pkg/sql/catalog"
	"github.com/kvsql/rangepush/pkg/sql/opt/idxconstraint"
	"github.com/kvsql/rangepush/pkg/sql/parser"
	"github.com/kvsql/rangepush/pkg/sql/span"
	"github.com/kvsql/rangepush/pkg/testutils/memstore"
	"github.com/kvsql/rangepush/pkg/util/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Cleanup(log.SetOutput(io.Discard))
	var out, errBuf bytes.Buffer
	rangepushCmd.SetOut(&out)
	rangepushCmd.SetErr(&errBuf)
	rangepushCmd.SetIn(strings.NewReader(stdin))
	defer func() {
		rangepushCmd.SetOut(nil)
		rangepushCmd.SetErr(nil)
		rangepushCmd.SetIn(nil)
	}()
	err = Run(args)
	return out.String(), errBuf.String(), err
}

func TestExplain(t *testing.T) {
	out, _, err := runCLI(t, "",
		"explain", "--schema", "testdata/schema.yaml", "-t", "t", "a = 5", "a = x")
	require.NoError(t, err)
	require.Equal(t, `filter: a = 5
span: [\x80\x00\x00\x05 - \x80\x00\x00\x06)

filter: a = x
span: [ - ]
residual: a = x
`, out)
}

func TestExplainStdin(t *testing.T) {
	out, _, err := runCLI(t, "-- leading equality\na = 1 AND s = 'b'\n\n  a > 1\n",
		"explain", "--schema", "testdata/schema.yaml", "--table", "t", "--config", "testdata/config.yaml")
	require.NoError(t, err)
	require.Equal(t, `filter: a = 1 AND s = 'b'
span: [\x80\x00\x00\x01b - \x80\x00\x00\x01b\x00)

filter: a > 1
span: [\x80\x00\x00\x02 - ]
`, out)

	_, _, err = runCLI(t, "\n-- nothing\n", "explain", "--schema", "testdata/schema.yaml", "-t", "t")
	require.Error(t, err)
	require.Equal(t, exit.CommandLineFlagError(), exitCode(err))
}

func TestExplainErrors(t *testing.T) {
	out, _, err := runCLI(t, "",
		"explain", "--schema", "testdata/schema.yaml", "-t", "t", "a =", "a = 1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 of 2 filters failed")
	require.Equal(t, exit.UnspecifiedError(), exitCode(err))
	require.Contains(t, out, "filter: a =\nerror: ")
	require.Contains(t, out, "filter: a = 1\nspan: ")
}

func TestExplainTableSelection(t *testing.T) {
	_, _, err := runCLI(t, "", "explain", "--schema", "testdata/schema.yaml", "a = 5")
	require.Error(t, err)
	require.Equal(t, exit.CommandLineFlagError(), exitCode(err))
	require.Contains(t, errors.FlattenHints(err), "t, u")

	_, _, err = runCLI(t, "", "explain", "--schema", "testdata/schema.yaml", "-t", "w", "a = 5")
	require.Error(t, err)
	require.Contains(t, err.Error(), `schema has no table "w"`)

	_, _, err = runCLI(t, "", "explain", "a = 5")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--schema is required")

	_, _, err = runCLI(t, "", "explain", "--bogus")
	require.Error(t, err)
	require.Equal(t, exit.CommandLineFlagError(), exitCode(err))
}

func TestSchemaFromEnvironment(t *testing.T) {
	t.Setenv("RANGEPUSH_SCHEMA", "testdata/schema.yaml")
	out, _, err := runCLI(t, "", "explain", "-t", "u", "k = x'01'")
	require.NoError(t, err)
	require.Equal(t, "filter: k = x'01'\nspan: [\\x01 - \\x01\\x00)\n", out)
}

func TestExplainMetrics(t *testing.T) {
	_, stderr, err := runCLI(t, "",
		"explain", "--schema", "testdata/schema.yaml", "-t", "t", "--metrics", "a = 5", "a = 1 AND a = 2")
	require.NoError(t, err)
	require.Contains(t, stderr, "rangepush_scan_plans_total 2")
	require.Contains(t, stderr, "rangepush_scan_plan_contradictions_total 1")
	require.Contains(t, stderr, `rangepush_derived_ranges_total{operator="="} 3`)
}

func TestVerify(t *testing.T) {
	out, _, err := runCLI(t, "",
		"verify", "--schema", "testdata/schema.yaml", "-t", "t", "--rows", "testdata/rows.yaml",
		"a = 1 AND s >= 'b'", "x = 12", "a = 9")
	require.NoError(t, err)
	require.Contains(t, out, `filter: a = 1 AND s >= 'b'
span: [\x80\x00\x00\x01b - \x80\x00\x00\x02)
ok: scanned 1 of 4 rows, 1 matched`)
	require.Contains(t, out, `filter: x = 12
span: [ - ]
residual: x = 12
ok: scanned 4 of 4 rows, 1 matched`)
	require.Contains(t, out, "filter: a = 9\nspan: [\\x80\\x00\\x00\\x09 - \\x80\\x00\\x00\\x0a)\nok: scanned 0 of 4 rows, 0 matched")

	_, _, err = runCLI(t, "", "verify", "--schema", "testdata/schema.yaml", "-t", "t", "a = 1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--rows is required")
}

func TestCheckPlanMismatch(t *testing.T) {
	f, err := os.Open("testdata/schema.yaml")
	require.NoError(t, err)
	defer f.Close()
	schema, err := catalog.LoadSchema(f)
	require.NoError(t, err)
	table := schema.Tables[0]

	rf, err := os.Open("testdata/rows.yaml")
	require.NoError(t, err)
	defer rf.Close()
	rows, err := table.LoadRows(rf, "")
	require.NoError(t, err)
	store, err := memstore.Load(table, rows)
	require.NoError(t, err)

	filter, err := parser.Parse("a = 2", table)
	require.NoError(t, err)
	// A plan that drops the filter without narrowing the scan.
	res, err := checkPlan(store, filter, &idxconstraint.ScanPlan{Span: span.Full})
	require.NoError(t, err)
	require.Len(t, res.extra, 3)
	require.Empty(t, res.missing)

	// A plan that scans nothing.
	res, err = checkPlan(store, filter, &idxconstraint.ScanPlan{Span: span.Empty, Contradiction: true})
	require.NoError(t, err)
	require.Equal(t, []string{`\x80\x00\x00\x02a`}, res.missing)
}

func TestPlanErrorsLogRateLimited(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(log.SetOutput(&buf))
	t.Cleanup(log.SetVerbosity(0))

	f, err := os.Open("testdata/schema.yaml")
	require.NoError(t, err)
	defer f.Close()
	schema, err := catalog.LoadSchema(f)
	require.NoError(t, err)
	table := schema.Tables[0]
	reg := prometheus.NewRegistry()
	e := &planEnv{
		cfg:      base.DefaultQueryConfig(),
		table:    table,
		parser:   &parser.Parser{Table: table},
		reg:      reg,
		metrics:  idxconstraint.NewMetrics(reg),
		logEvery: log.Every(time.Hour),
	}

	// VARCHAR key values cannot hold the key separator.
	results := planAll(context.Background(), e, []string{"s = 'a\x00'", "a = 1", "s = 'b\x00'"})
	require.Len(t, results, 3)
	require.Error(t, results[0].err)
	require.NoError(t, results[1].err)
	require.Error(t, results[2].err)
	require.Equal(t, 1, strings.Count(buf.String(), "contains a zero byte"), buf.String())
}

func TestConfig(t *testing.T) {
	out, _, err := runCLI(t, "", "config", "--config", "testdata/config.yaml")
	require.NoError(t, err)
	require.Contains(t, out, "thread_pool_size: 4\n")
	require.Contains(t, out, "max_memory_bytes: 1.0 GiB\n")
	require.Contains(t, out, "queue_size: 250\n")

	_, _, err = runCLI(t, "", "config", "--config", "testdata/missing.yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "opening configuration")
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	require.Contains(t, out, "Go Version:")
}

func TestExitCode(t *testing.T) {
	require.Equal(t, exit.Success(), exitCode(nil))
	require.Equal(t, exit.VerificationFailed(),
		exitCode(errors.Wrap(errors.Mark(errors.New("x"), errVerificationFailed), "verify")))
	require.Equal(t, exit.UnspecifiedGoPanic(), exitCode(errors.AssertionFailedf("boom")))
	require.Equal(t, 125, exit.VerificationFailed().Int())
}
