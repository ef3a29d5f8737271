// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package catalog describes tables, their columns and how a row's primary
// key columns are laid out in its row key.
package catalog

import (
	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/keys"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/sql/types"
)

// keySeparator terminates a variable-width key column that is followed by
// further key columns. Encodings of such columns never contain it.
const keySeparator = 0x00

// Column is a column of a table. A Column is immutable once its table has
// been constructed.
type Column struct {
	Name string
	Type *types.T
	// Ordinal is the position of the column in its table.
	Ordinal int

	// keyPos is the position of the column in the primary key, or -1.
	keyPos int
	// separated is set for variable-width key columns that are followed by
	// another key column; their key bytes end with keySeparator.
	separated bool
}

// DataType returns the column's type.
func (c *Column) DataType() *types.T { return c.Type }

// FixedByteWidth returns the number of bytes every key encoding of the
// column occupies, or false if the width varies.
func (c *Column) FixedByteWidth() (int, bool) { return c.Type.FixedByteWidth() }

// KeyPosition returns the position of the column in the primary key.
func (c *Column) KeyPosition() (int, bool) { return c.keyPos, c.keyPos >= 0 }

// Separated returns whether the column's key bytes are terminated by a
// separator byte.
func (c *Column) Separated() bool { return c.separated }

// PrefixFree returns whether no key encoding of the column is a proper
// prefix of another. This holds for fixed-width columns and for separated
// columns, and makes PrefixEnd the exact successor of a single value.
func (c *Column) PrefixFree() bool {
	_, fixed := c.FixedByteWidth()
	return fixed || c.separated
}

// EncodeKey returns the bytes the column contributes to a row key for d,
// including the trailing separator of a separated column.
func (c *Column) EncodeKey(d tree.Datum) (keys.Key, error) {
	b, err := tree.EncodeKey(d, c.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "column %q", c.Name)
	}
	if c.separated {
		b = append(b, keySeparator)
	}
	return keys.Key(b), nil
}

// Ref returns an expression referring to the column.
func (c *Column) Ref() *tree.ColumnRef {
	return &tree.ColumnRef{Ordinal: c.Ordinal, Name: c.Name, Typ: c.Type}
}

func (c *Column) String() string { return c.Name + " " + c.Type.SQLString() }

// Table is a table whose rows are addressed by the concatenated key
// encodings of its primary key columns.
type Table struct {
	Name    string
	Columns []*Column
	// PrimaryKey lists the ordinals of the key columns in key order.
	PrimaryKey []int
}

// ColumnDef is the definition of a column passed to NewTable.
type ColumnDef struct {
	Name string
	Type *types.T
}

// NewTable validates a table definition and binds its columns.
func NewTable(name string, defs []ColumnDef, primaryKey []string) (*Table, error) {
	if name == "" {
		return nil, errors.New("table name must not be empty")
	}
	t := &Table{Name: name}
	byName := make(map[string]*Column, len(defs))
	for i, d := range defs {
		if d.Name == "" {
			return nil, errors.Newf("table %q: column %d has no name", name, i)
		}
		if _, ok := byName[d.Name]; ok {
			return nil, errors.Newf("table %q: duplicate column %q", name, d.Name)
		}
		col := &Column{Name: d.Name, Type: d.Type, Ordinal: i, keyPos: -1}
		byName[d.Name] = col
		t.Columns = append(t.Columns, col)
	}
	if len(primaryKey) == 0 {
		return nil, errors.WithHint(
			errors.Newf("table %q has no primary key", name),
			"every table needs at least one primary key column")
	}
	for pos, colName := range primaryKey {
		col, ok := byName[colName]
		if !ok {
			return nil, errors.Newf("table %q: primary key column %q does not exist", name, colName)
		}
		if col.keyPos >= 0 {
			return nil, errors.Newf("table %q: column %q appears twice in the primary key", name, colName)
		}
		last := pos == len(primaryKey)-1
		if _, fixed := col.FixedByteWidth(); !fixed && !last {
			if col.Type.Family() == types.VarbinaryFamily {
				return nil, errors.WithHint(
					errors.Newf("table %q: VARBINARY column %q must be the last primary key column", name, colName),
					"use BINARY(n) for binary key columns followed by other key columns")
			}
			col.separated = true
		}
		col.keyPos = pos
		t.PrimaryKey = append(t.PrimaryKey, col.Ordinal)
	}
	return t, nil
}

// ColumnByName looks up a column.
func (t *Table) ColumnByName(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// KeyColumn returns the column at the given primary key position.
func (t *Table) KeyColumn(pos int) *Column { return t.Columns[t.PrimaryKey[pos]] }

// KeyColumnCount returns the number of primary key columns.
func (t *Table) KeyColumnCount() int { return len(t.PrimaryKey) }

// IsLastKeyColumn returns whether col is the final primary key column.
func (t *Table) IsLastKeyColumn(col *Column) bool {
	return col.keyPos == len(t.PrimaryKey)-1
}

// EncodeRowKey returns the row key of a row. Primary key columns may not be
// NULL.
func (t *Table) EncodeRowKey(row tree.Datums) (keys.Key, error) {
	if len(row) != len(t.Columns) {
		return nil, errors.Newf("table %q has %d columns, row has %d values", t.Name, len(t.Columns), len(row))
	}
	var key keys.Key
	for _, ord := range t.PrimaryKey {
		col := t.Columns[ord]
		if row[ord] == tree.DNull {
			return nil, errors.Newf("table %q: primary key column %q may not be NULL", t.Name, col.Name)
		}
		b, err := col.EncodeKey(row[ord])
		if err != nil {
			return nil, err
		}
		key = append(key, b...)
	}
	return key, nil
}

// CoerceRow converts every value of row to its column's type.
func (t *Table) CoerceRow(row tree.Datums) (tree.Datums, error) {
	if len(row) != len(t.Columns) {
		return nil, errors.Newf("table %q has %d columns, row has %d values", t.Name, len(t.Columns), len(row))
	}
	res := make(tree.Datums, len(row))
	for i, d := range row {
		c, err := tree.Coerce(d, t.Columns[i].Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", t.Columns[i].Name)
		}
		res[i] = c
	}
	return res, nil
}

func (t *Table) String() string {
	s := t.Name + " ("
	for i, c := range t.Columns {
		if i > 0 {
			s += ", "
		}
		s += c.String()
	}
	s += ", PRIMARY KEY ("
	for i, ord := range t.PrimaryKey {
		if i > 0 {
			s += ", "
		}
		s += t.Columns[ord].Name
	}
	return s + "))"
}
