// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package memstore

import (
	"testing"

	"github.com/kvsql/rangepush/pkg/keys"
	"github.com/kvsql/rangepush/pkg/sql/catalog"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/sql/span"
	"github.com/kvsql/rangepush/pkg/sql/types"
	"github.com/stretchr/testify/require"
)

func scanKeys(s *Store, sp span.Span) []string {
	var res []string
	s.Scan(sp, func(key keys.Key, _ tree.Datums) bool {
		res = append(res, string(key))
		return true
	})
	return res
}

func TestScan(t *testing.T) {
	s := New()
	for _, k := range []string{"a", "ab", "b", "ba", "c"} {
		require.False(t, s.Put(keys.Key(k), tree.Datums{tree.DString(k)}))
	}
	require.True(t, s.Put(keys.Key("c"), tree.Datums{tree.DString("c2")}))
	require.Equal(t, 5, s.Len())

	testCases := []struct {
		sp       span.Span
		expected []string
	}{
		{span.Full, []string{"a", "ab", "b", "ba", "c"}},
		{span.Empty, nil},
		{span.Make(span.Inclusive(keys.Key("ab")), span.Exclusive(keys.Key("ba"))), []string{"ab", "b"}},
		{span.Make(span.Exclusive(keys.Key("ab")), span.Inclusive(keys.Key("ba"))), []string{"b", "ba"}},
		{span.Make(span.Unbounded, span.Exclusive(keys.Key("b"))), []string{"a", "ab"}},
		{span.Make(span.Inclusive(keys.Key("bb")), span.Unbounded), []string{"c"}},
		{span.Make(span.Inclusive(keys.Key("d")), span.Unbounded), nil},
	}
	for _, c := range testCases {
		require.Equal(t, c.expected, scanKeys(s, c.sp), c.sp.String())
	}

	var first []string
	s.All(func(key keys.Key, row tree.Datums) bool {
		first = append(first, string(key))
		return len(first) < 2
	})
	require.Equal(t, []string{"a", "ab"}, first)
}

func TestLoad(t *testing.T) {
	tab, err := catalog.NewTable("t", []catalog.ColumnDef{
		{Name: "a", Type: types.Int},
		{Name: "s", Type: types.Varchar},
	}, []string{"a", "s"})
	require.NoError(t, err)

	s, err := Load(tab, []tree.Datums{
		{tree.DInt(2), tree.DString("x")},
		{tree.DInt(1), tree.DString("y")},
		{tree.DInt(1), tree.DString("x")},
	})
	require.NoError(t, err)
	var rows []string
	s.All(func(_ keys.Key, row tree.Datums) bool {
		rows = append(rows, row.String())
		return true
	})
	require.Equal(t, []string{"(1, 'x')", "(1, 'y')", "(2, 'x')"}, rows)

	_, err = Load(tab, []tree.Datums{
		{tree.DInt(1), tree.DString("x")},
		{tree.DInt(1), tree.DString("x")},
	})
	require.Regexp(t, "row 2 .* duplicates primary key", err)

	_, err = Load(tab, []tree.Datums{{tree.DInt(1), tree.DNull}})
	require.Regexp(t, "row 1", err)
}
