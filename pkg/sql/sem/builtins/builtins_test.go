// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package builtins

import (
	"testing"

	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/sql/types"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, name string, args ...tree.Expr) *tree.FuncExpr {
	t.Helper()
	def, ok := Lookup(name)
	require.True(t, ok, name)
	f, err := tree.NewFuncExpr(def, args...)
	require.NoError(t, err)
	return f
}

func TestLookup(t *testing.T) {
	def, ok := Lookup("SUBSTR")
	require.True(t, ok)
	require.Equal(t, "substr", def.Name)
	_, ok = Lookup("nope")
	require.False(t, ok)
	require.Equal(t, []string{"abs", "invert", "left", "length", "lower", "reverse", "substr", "trunc", "upper"}, AllBuiltinNames)
}

func TestClassification(t *testing.T) {
	col := &tree.ColumnRef{Name: "s", Typ: types.Varchar}
	n := &tree.ColumnRef{Ordinal: 1, Name: "n", Typ: types.Int}
	testCases := []struct {
		f         *tree.FuncExpr
		order     tree.OrderPreserving
		traversal int
		prefix    int
		bounded   bool
	}{
		{call(t, "substr", col, tree.DInt(1), tree.DInt(3)), tree.PreservesAscending, 0, 3, true},
		{call(t, "substr", col, tree.DInt(1)), tree.PreservesAscending, 0, 0, false},
		{call(t, "substr", col, tree.DInt(2), tree.DInt(3)), tree.NoOrder, tree.NoTraversal, 3, true},
		{call(t, "substr", col, tree.DInt(1), n), tree.NoOrder, tree.NoTraversal, 0, false},
		{call(t, "substr", col, tree.DInt(1), tree.DInt(-1)), tree.NoOrder, tree.NoTraversal, 0, false},
		{call(t, "left", col, tree.DInt(2)), tree.PreservesAscending, 0, 2, true},
		{call(t, "left", col, tree.DInt(-2)), tree.NoOrder, tree.NoTraversal, 0, false},
		{call(t, "invert", col), tree.PreservesDescending, 0, 0, false},
		{call(t, "lower", col), tree.NoOrder, tree.NoTraversal, 0, false},
		{call(t, "upper", col), tree.NoOrder, tree.NoTraversal, 0, false},
		{call(t, "length", col), tree.NoOrder, tree.NoTraversal, 0, false},
		{call(t, "reverse", col), tree.NoOrder, tree.NoTraversal, 0, false},
		{call(t, "abs", n), tree.NoOrder, tree.NoTraversal, 0, false},
		{call(t, "trunc", n), tree.NoOrder, tree.NoTraversal, 0, false},
	}
	for _, c := range testCases {
		t.Run(c.f.String(), func(t *testing.T) {
			if expected, actual := c.order, c.f.PreservesOrder(); expected != actual {
				t.Fatalf("bad order: expected %s got %s", expected, actual)
			}
			require.Equal(t, c.traversal, c.f.KeyFormationTraversalIndex())
			require.True(t, c.f.ExtractNode())
			prefix, bounded := c.f.PrefixLength()
			require.Equal(t, c.bounded, bounded)
			require.Equal(t, c.prefix, prefix)
		})
	}
}

func TestWrongArgCount(t *testing.T) {
	def, _ := Lookup("left")
	_, err := tree.NewFuncExpr(def, tree.DString("a"))
	require.Error(t, err)
	_, err = tree.NewFuncExpr(def, tree.DString("a"), tree.DInt(1), tree.DInt(2))
	require.Error(t, err)
}

func TestEval(t *testing.T) {
	dec := func(s string) tree.Datum {
		d, err := tree.ParseDDecimal(s)
		require.NoError(t, err)
		return d
	}
	testCases := []struct {
		f        *tree.FuncExpr
		expected tree.Datum
	}{
		{call(t, "substr", tree.DString("abcdef"), tree.DInt(1), tree.DInt(3)), tree.DString("abc")},
		{call(t, "substr", tree.DString("abcdef"), tree.DInt(3)), tree.DString("cdef")},
		{call(t, "substr", tree.DString("abcdef"), tree.DInt(0), tree.DInt(3)), tree.DString("ab")},
		{call(t, "substr", tree.DString("ab"), tree.DInt(5), tree.DInt(3)), tree.DString("")},
		{call(t, "substr", tree.DBytes("\x01\x02\x03"), tree.DInt(1), tree.DInt(2)), tree.DBytes("\x01\x02")},
		{call(t, "left", tree.DString("abc"), tree.DInt(5)), tree.DString("abc")},
		{call(t, "left", tree.DString("abc"), tree.DInt(-1)), tree.DString("ab")},
		{call(t, "invert", tree.DBytes("\x00\xf0")), tree.DBytes("\xff\x0f")},
		{call(t, "lower", tree.DString("AbC")), tree.DString("abc")},
		{call(t, "upper", tree.DString("AbC")), tree.DString("ABC")},
		{call(t, "reverse", tree.DString("abc")), tree.DString("cba")},
		{call(t, "length", tree.DString("abc")), tree.DInt(3)},
		{call(t, "abs", tree.DInt(-4)), tree.DInt(4)},
		{call(t, "substr", tree.DNull, tree.DInt(1)), tree.DNull},
	}
	for _, c := range testCases {
		d, err := c.f.Eval(&tree.EvalContext{})
		require.NoError(t, err, c.f.String())
		require.Equal(t, c.expected, d, c.f.String())
	}

	d, err := call(t, "trunc", dec("-2.75")).Eval(&tree.EvalContext{})
	require.NoError(t, err)
	require.Equal(t, "-2", d.String())
	d, err = call(t, "abs", dec("-2.75")).Eval(&tree.EvalContext{})
	require.NoError(t, err)
	require.Equal(t, "2.75", d.String())

	_, err = call(t, "substr", tree.DString("a"), tree.DInt(1), tree.DInt(-1)).Eval(&tree.EvalContext{})
	require.Error(t, err)
	_, err = call(t, "length", tree.DInt(1)).Eval(&tree.EvalContext{})
	require.Error(t, err)
}
