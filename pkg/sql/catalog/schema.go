// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package catalog

import (
	"encoding/hex"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/sql/types"
	"gopkg.in/yaml.v2"
)

// Schema is a set of tables loaded from a schema file.
type Schema struct {
	Tables []*Table
}

type schemaFile struct {
	Tables []tableFile `yaml:"tables"`
}

type tableFile struct {
	Name       string       `yaml:"name"`
	Columns    []columnFile `yaml:"columns"`
	PrimaryKey []string     `yaml:"primary_key"`
}

type columnFile struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadSchema reads a YAML schema:
//
//	tables:
//	- name: t
//	  columns:
//	  - {name: a, type: INTEGER}
//	  - {name: b, type: VARCHAR}
//	  primary_key: [a, b]
func LoadSchema(r io.Reader) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading schema")
	}
	var f schemaFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, errors.Wrap(err, "parsing schema")
	}
	if len(f.Tables) == 0 {
		return nil, errors.New("schema defines no tables")
	}
	s := &Schema{}
	for _, tf := range f.Tables {
		if _, ok := s.Table(tf.Name); ok {
			return nil, errors.Newf("duplicate table %q", tf.Name)
		}
		defs := make([]ColumnDef, len(tf.Columns))
		for i, cf := range tf.Columns {
			typ, err := types.Parse(cf.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "table %q column %q", tf.Name, cf.Name)
			}
			defs[i] = ColumnDef{Name: cf.Name, Type: typ}
		}
		t, err := NewTable(tf.Name, defs, tf.PrimaryKey)
		if err != nil {
			return nil, err
		}
		s.Tables = append(s.Tables, t)
	}
	return s, nil
}

// Table looks up a table by name.
func (s *Schema) Table(name string) (*Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// LoadRows reads a YAML list of rows, each a list of column values in table
// order, and converts them to datums of the column types. Dates and
// timestamps are parsed with dateFormat, falling back to ISO dates.
func (t *Table) LoadRows(r io.Reader, dateFormat string) ([]tree.Datums, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading rows")
	}
	var raw [][]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing rows")
	}
	rows := make([]tree.Datums, len(raw))
	for i, vals := range raw {
		row, err := t.ParseRow(vals, dateFormat)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+1)
		}
		rows[i] = row
	}
	return rows, nil
}

// ParseRow converts plain values, as decoded from YAML, to a row of t.
func (t *Table) ParseRow(vals []interface{}, dateFormat string) (tree.Datums, error) {
	if len(vals) != len(t.Columns) {
		return nil, errors.Newf("table %q has %d columns, row has %d values", t.Name, len(t.Columns), len(vals))
	}
	row := make(tree.Datums, len(vals))
	for i, v := range vals {
		col := t.Columns[i]
		d, err := parseValue(v, col.Type, dateFormat)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", col.Name)
		}
		if row[i], err = tree.Coerce(d, col.Type); err != nil {
			return nil, errors.Wrapf(err, "column %q", col.Name)
		}
	}
	return row, nil
}

func parseValue(v interface{}, typ *types.T, dateFormat string) (tree.Datum, error) {
	if v == nil {
		return tree.DNull, nil
	}
	switch typ.Family() {
	case types.BoolFamily:
		if b, ok := v.(bool); ok {
			return tree.MakeDBool(b), nil
		}
	case types.IntFamily, types.BigIntFamily:
		if i, ok := v.(int); ok {
			return tree.DInt(i), nil
		}
	case types.DecimalFamily:
		switch n := v.(type) {
		case int:
			return tree.ParseDDecimal(strconv.Itoa(n))
		case float64:
			return tree.ParseDDecimal(strconv.FormatFloat(n, 'f', -1, 64))
		case string:
			return tree.ParseDDecimal(n)
		}
	case types.DateFamily, types.TimestampFamily:
		s, ok := v.(string)
		if !ok {
			break
		}
		ts, err := ParseTime(s, dateFormat)
		if err != nil {
			return nil, err
		}
		if typ.Family() == types.DateFamily {
			return tree.MakeDDate(ts), nil
		}
		return tree.MakeDTimestamp(ts), nil
	case types.CharFamily, types.VarcharFamily:
		switch s := v.(type) {
		case string:
			return tree.DString(s), nil
		case int:
			return tree.DString(strconv.Itoa(s)), nil
		}
	case types.BinaryFamily, types.VarbinaryFamily:
		if s, ok := v.(string); ok {
			if strings.HasPrefix(s, `\x`) {
				b, err := hex.DecodeString(s[2:])
				if err != nil {
					return nil, errors.Wrapf(err, "invalid hex value %q", s)
				}
				return tree.DBytes(b), nil
			}
			return tree.DBytes(s), nil
		}
	}
	return nil, errors.Newf("cannot use %v (%T) as a value of type %s", v, v, typ)
}

// ParseTime parses a date or timestamp with the configured layout, falling
// back to a plain ISO date.
func ParseTime(s, layout string) (time.Time, error) {
	for _, l := range []string{layout, "2006-01-02 15:04:05.000", "2006-01-02"} {
		if l == "" {
			continue
		}
		if ts, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.WithHintf(
		errors.Newf("could not parse %q as a date", s),
		"expected the layout %q", layout)
}
