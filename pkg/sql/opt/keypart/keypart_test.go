// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package keypart

import (
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/kvsql/rangepush/pkg/keys"
	"github.com/kvsql/rangepush/pkg/sql/catalog"
	"github.com/kvsql/rangepush/pkg/sql/parser"
	"github.com/kvsql/rangepush/pkg/sql/sem/builtins"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/sql/span"
	"github.com/kvsql/rangepush/pkg/sql/types"
	"github.com/stretchr/testify/require"
)

// TestKeyPartDataDriven runs the testdata files. Commands:
//
//   - schema: loads the YAML schema in the input; later commands use its
//     first table.
//   - derive column=<name>: each input line is "<op> <hex literal>", with
//     "-" for the empty literal. Prints the span Derive returns.
//   - range: each input line is a comparison. Prints the span of the key
//     part of its left side and the expressions it extracts.
func TestKeyPartDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		var table *catalog.Table
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "schema":
				s, err := catalog.LoadSchema(strings.NewReader(d.Input))
				if err != nil {
					d.Fatalf(t, "%v", err)
				}
				table = s.Tables[0]
				return ""

			case "derive":
				var colName string
				d.ScanArgs(t, "column", &colName)
				col, ok := table.ColumnByName(colName)
				if !ok {
					d.Fatalf(t, "unknown column %s", colName)
				}
				var buf strings.Builder
				for _, line := range strings.Split(d.Input, "\n") {
					fields := strings.Fields(line)
					if len(fields) != 2 {
						d.Fatalf(t, "malformed line %q", line)
					}
					op, ok := tree.ParseComparisonOperator(fields[0])
					if !ok {
						d.Fatalf(t, "unknown operator %q", fields[0])
					}
					var lit []byte
					if fields[1] != "-" {
						var err error
						if lit, err = hex.DecodeString(fields[1]); err != nil {
							d.Fatalf(t, "%v", err)
						}
					}
					sp, err := Derive(op, lit, col)
					fmt.Fprintf(&buf, "%s %s: %s\n", fields[0], fields[1], formatResult(sp, err))
				}
				return buf.String()

			case "range":
				var buf strings.Builder
				for _, line := range strings.Split(d.Input, "\n") {
					fmt.Fprintf(&buf, "%s: %s\n", line, keyRange(t, table, line))
				}
				return buf.String()

			default:
				d.Fatalf(t, "unknown command %s", d.Cmd)
				return ""
			}
		})
	})
}

func keyRange(t *testing.T, table *catalog.Table, sql string) string {
	e, err := parser.Parse(sql, table)
	require.NoError(t, err, sql)
	cmp, ok := e.(*tree.ComparisonExpr)
	require.True(t, ok, sql)
	kp, err := FromExpr(cmp.Left, table)
	if err != nil {
		return "error: " + err.Error()
	}
	sp, err := kp.KeyRange(cmp.Operator, cmp.Right)
	if err != nil {
		return "error: " + err.Error()
	}
	var extract []string
	for _, n := range kp.ExtractNodes() {
		extract = append(extract, n.String())
	}
	return fmt.Sprintf("%s extract=(%s)", sp, strings.Join(extract, ", "))
}

func formatResult(sp span.Span, err error) string {
	if err != nil {
		if errors.HasAssertionFailure(err) {
			return "assertion failure"
		}
		return "error: " + err.Error()
	}
	return sp.String()
}

// exactLeft behaves like left() but declares its ranges exact.
var exactLeft = &tree.FunctionDefinition{
	Name:    "exact_left",
	MinArgs: 2,
	MaxArgs: 2,
	Classify: func(args []tree.Expr) tree.OrderPreserving {
		if n, ok := tree.ConstantInt(args[1]); ok && n >= 0 {
			return tree.PreservesAscending
		}
		return tree.NoOrder
	},
	PrefixLength: func(args []tree.Expr) (int, bool) {
		n, ok := tree.ConstantInt(args[1])
		return int(n), ok
	},
	ExactRange: true,
	Fn: func(args tree.Datums) (tree.Datum, error) {
		s := string(args[0].(tree.DString))
		n := int(args[1].(tree.DInt))
		if n < len(s) {
			s = s[:n]
		}
		return tree.DString(s), nil
	},
}

func mustCall(t *testing.T, name string, args ...tree.Expr) *tree.FuncExpr {
	t.Helper()
	def, ok := builtins.Lookup(name)
	require.True(t, ok, name)
	fn, err := tree.NewFuncExpr(def, args...)
	require.NoError(t, err)
	return fn
}

func testTable(t *testing.T) *catalog.Table {
	tab, err := catalog.NewTable("t", []catalog.ColumnDef{
		{Name: "s", Type: types.Varchar},
		{Name: "k", Type: types.Int},
	}, []string{"s", "k"})
	require.NoError(t, err)
	return tab
}

func TestExtractNodes(t *testing.T) {
	tab := testTable(t)
	s := tab.Columns[0]
	ref := s.Ref()

	col, err := FromExpr(ref, tab)
	require.NoError(t, err)
	require.Equal(t, []tree.Expr{ref}, col.ExtractNodes())
	require.Equal(t, s, col.Column())

	exact, err := tree.NewFuncExpr(exactLeft, ref, tree.DInt(2))
	require.NoError(t, err)
	require.False(t, exact.ExtractNode())
	kp, err := FromExpr(exact, tab)
	require.NoError(t, err)
	require.Equal(t, []tree.Expr{exact}, kp.ExtractNodes())
	require.Equal(t, s, kp.Column())
	sp, err := kp.KeyRange(tree.EQ, tree.DString("ab"))
	require.NoError(t, err)
	require.Equal(t, "[ab - ac)", sp.String())

	// A bare column part is also built by NewColumnKeyPart.
	direct := NewColumnKeyPart(s)
	sp, err = direct.KeyRange(tree.GE, tree.DString("ab"))
	require.NoError(t, err)
	require.Equal(t, `[ab\x00 - ]`, sp.String())

	// An exact function over an inexact one is not exact.
	def, err := tree.NewFuncExpr(exactLeft, mustCall(t, "left", ref, tree.DInt(3)), tree.DInt(2))
	require.NoError(t, err)
	kp, err = FromExpr(def, tab)
	require.NoError(t, err)
	require.Empty(t, kp.ExtractNodes())
}

func TestNonConstantLiteral(t *testing.T) {
	tab := testTable(t)
	s, k := tab.Columns[0], tab.Columns[1]
	left := mustCall(t, "left", s.Ref(), tree.DInt(2))
	kp, err := FromExpr(left, tab)
	require.NoError(t, err)

	_, err = kp.KeyRange(tree.EQ, s.Ref())
	require.Error(t, err)
	require.True(t, errors.Is(err, tree.ErrNotConstant))

	_, err = NewColumnKeyPart(k).KeyRange(tree.LT, k.Ref())
	require.True(t, errors.Is(err, tree.ErrNotConstant))

	// Operators the prefix part does not bound are delegated without
	// evaluating the literal.
	sp, err := kp.KeyRange(tree.NE, s.Ref())
	require.NoError(t, err)
	require.True(t, sp.IsFull())

	_, err = kp.KeyRange(tree.ComparisonOperator(99), tree.DString("a"))
	require.True(t, errors.Is(err, ErrUnsupportedOperator))
}

// TestColumnKeyRangeMatchesDerive checks that a column key part bounds a
// prefix-free column the same way Derive bounds its encoded value.
func TestColumnKeyRangeMatchesDerive(t *testing.T) {
	tab, err := catalog.NewTable("t", []catalog.ColumnDef{
		{Name: "a", Type: types.Int},
		{Name: "s", Type: types.Varchar},
		{Name: "k", Type: types.Int},
	}, []string{"a", "s", "k"})
	require.NoError(t, err)
	a, s := tab.Columns[0], tab.Columns[1]
	ops := []tree.ComparisonOperator{tree.EQ, tree.GT, tree.GE, tree.LT, tree.LE}
	for _, d := range []tree.Datum{
		tree.DInt(0), tree.DInt(-1), tree.DInt(math.MaxInt32), tree.DString(""), tree.DString("ab"),
	} {
		col := a
		if _, ok := d.(tree.DString); ok {
			col = s
		}
		enc, err := col.EncodeKey(d)
		require.NoError(t, err)
		for _, op := range ops {
			got, err := NewColumnKeyPart(col).KeyRange(op, d)
			require.NoError(t, err)
			expected, err := Derive(op, enc, col)
			require.NoError(t, err)
			require.True(t, expected.Equal(got), "%s %s %s: %s != %s", col.Name, op, d, got, expected)
		}
	}
	// No key follows the largest integer.
	sp, err := NewColumnKeyPart(a).KeyRange(tree.GT, tree.DInt(math.MaxInt32))
	require.NoError(t, err)
	require.True(t, sp.IsEmpty())
}

func TestLiteralEvaluatedOnce(t *testing.T) {
	tab := testTable(t)
	calls := 0
	counting := &tree.FunctionDefinition{
		Name:    "counting",
		MinArgs: 0,
		MaxArgs: 0,
		Fn: func(tree.Datums) (tree.Datum, error) {
			calls++
			return tree.DString("ab"), nil
		},
	}
	rhs, err := tree.NewFuncExpr(counting)
	require.NoError(t, err)
	kp, err := FromExpr(mustCall(t, "substr", tab.Columns[0].Ref(), tree.DInt(1), tree.DInt(2)), tab)
	require.NoError(t, err)
	for _, op := range []tree.ComparisonOperator{tree.EQ, tree.GT, tree.GE, tree.LT, tree.LE} {
		calls = 0
		_, err := kp.KeyRange(op, rhs)
		require.NoError(t, err)
		require.Equal(t, 1, calls, "operator %s", op)
	}
}

func TestNormalizePrefixComparison(t *testing.T) {
	testCases := []struct {
		op       tree.ComparisonOperator
		lit      string
		maxLen   int
		expOp    tree.ComparisonOperator
		expLit   string
		expMatch bool
	}{
		{tree.EQ, "ab", 2, tree.EQ, "ab", true},
		{tree.EQ, "abc", 2, tree.EQ, "", false},
		{tree.GE, "abc", 2, tree.GT, "ab", true},
		{tree.LT, "abc", 2, tree.LE, "ab", true},
		{tree.GT, "abc", 2, tree.GT, "ab", true},
		{tree.LE, "abc", 2, tree.LE, "ab", true},
		{tree.GT, "a", 2, tree.GE, "a\x00", true},
		{tree.GT, "a", -1, tree.GE, "a\x00", true},
		{tree.GE, "a", 2, tree.GE, "a", true},
		{tree.LT, "a", -1, tree.LT, "a", true},
	}
	for _, c := range testCases {
		op, lit, ok := normalizePrefixComparison(c.op, []byte(c.lit), c.maxLen)
		require.Equal(t, c.expMatch, ok, "%s %q", c.op, c.lit)
		if ok {
			require.Equal(t, c.expOp, op, "%s %q", c.op, c.lit)
			require.Equal(t, keys.Key(c.expLit), keys.Key(lit), "%s %q", c.op, c.lit)
		}
	}
}

// TestKeyRangeContainsMatchingRows checks that every column value satisfying
// a comparison on a prefix of it has key bytes inside the derived span.
func TestKeyRangeContainsMatchingRows(t *testing.T) {
	tab, err := catalog.NewTable("p", []catalog.ColumnDef{
		{Name: "s", Type: types.Varchar},
		{Name: "c", Type: types.MakeChar(4)},
		{Name: "v", Type: types.Varchar},
	}, []string{"s", "c", "v"})
	require.NoError(t, err)

	const alphabet = "ab \xff"
	toString := func(idx []int, max int) string {
		var buf strings.Builder
		for i, c := range idx {
			if i == max {
				break
			}
			buf.WriteByte(alphabet[c])
		}
		return buf.String()
	}
	ops := []tree.ComparisonOperator{tree.EQ, tree.GT, tree.GE, tree.LT, tree.LE, tree.NE}

	properties := gopter.NewProperties(nil)
	properties.Property("matching rows are inside the key range", prop.ForAll(
		func(val, lit []int, n, opIdx, colIdx int, useSubstr bool) bool {
			v := tree.DString(toString(val, 4))
			row, err := tab.CoerceRow(tree.Datums{v, v, v})
			if err != nil {
				t.Log(err)
				return false
			}
			col := tab.Columns[colIdx]
			var fn *tree.FuncExpr
			if useSubstr {
				fn = mustCall(t, "substr", col.Ref(), tree.DInt(1), tree.DInt(n))
			} else {
				fn = mustCall(t, "left", col.Ref(), tree.DInt(n))
			}
			cmp := tree.NewComparisonExpr(ops[opIdx], fn, tree.DString(toString(lit, 6)))
			matches, err := tree.IsTrue(cmp, row)
			if err != nil {
				t.Log(err)
				return false
			}
			kp, err := FromExpr(fn, tab)
			if err != nil {
				t.Log(err)
				return false
			}
			sp, err := kp.KeyRange(cmp.Operator, cmp.Right)
			if err != nil {
				t.Log(err)
				return false
			}
			key, err := col.EncodeKey(row[colIdx])
			if err != nil {
				t.Log(err)
				return false
			}
			if matches && !sp.ContainsKey(key) {
				t.Logf("%s matches %s but %s is outside %s", cmp, row[colIdx], key, sp)
				return false
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, len(alphabet)-1)),
		gen.SliceOf(gen.IntRange(0, len(alphabet)-1)),
		gen.IntRange(0, 5),
		gen.IntRange(0, len(ops)-1),
		gen.IntRange(0, 2),
		gen.Bool(),
	))
	properties.TestingRun(t)
}
