// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/sql/types"
)

// A Datum is a fully evaluated value. Datums are also expressions that
// evaluate to themselves, which is how constants appear in an expression
// tree.
type Datum interface {
	Expr
	// ResolvedType returns the natural type of the datum. Column types with
	// a declared width are applied by Coerce.
	ResolvedType() *types.T
}

// Datums is a slice of Datum values, typically one row.
type Datums []Datum

func (d Datums) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i, v := range d {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(v.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

var (
	// DNull is the NULL Datum.
	DNull Datum = dNull{}
	// DBoolTrue is the true Datum.
	DBoolTrue Datum = DBool(true)
	// DBoolFalse is the false Datum.
	DBoolFalse Datum = DBool(false)
)

// DBool is the boolean Datum.
type DBool bool

// MakeDBool converts its argument to a Datum.
func MakeDBool(b bool) Datum {
	if b {
		return DBoolTrue
	}
	return DBoolFalse
}

// ResolvedType implements the Datum interface.
func (DBool) ResolvedType() *types.T { return types.Bool }

// Eval implements the Expr interface.
func (d DBool) Eval(*EvalContext) (Datum, error) { return d, nil }

func (d DBool) String() string { return strconv.FormatBool(bool(d)) }

// DInt is the integer Datum. It is used for both INTEGER and BIGINT values;
// Coerce checks the narrower range.
type DInt int64

// ResolvedType implements the Datum interface.
func (DInt) ResolvedType() *types.T { return types.BigInt }

// Eval implements the Expr interface.
func (d DInt) Eval(*EvalContext) (Datum, error) { return d, nil }

func (d DInt) String() string { return strconv.FormatInt(int64(d), 10) }

// DDecimal is the decimal Datum.
type DDecimal struct {
	apd.Decimal
}

// ParseDDecimal parses a decimal literal.
func ParseDDecimal(s string) (*DDecimal, error) {
	d := &DDecimal{}
	if _, _, err := d.SetString(s); err != nil {
		return nil, errors.Wrapf(err, "could not parse %q as type decimal", s)
	}
	if d.Form != apd.Finite {
		return nil, errors.Newf("decimal value %q is not finite", s)
	}
	return d, nil
}

// ResolvedType implements the Datum interface.
func (*DDecimal) ResolvedType() *types.T { return types.Decimal }

// Eval implements the Expr interface.
func (d *DDecimal) Eval(*EvalContext) (Datum, error) { return d, nil }

func (d *DDecimal) String() string { return d.Decimal.String() }

// DString is the character string Datum.
type DString string

// ResolvedType implements the Datum interface.
func (DString) ResolvedType() *types.T { return types.Varchar }

// Eval implements the Expr interface.
func (d DString) Eval(*EvalContext) (Datum, error) { return d, nil }

func (d DString) String() string {
	return "'" + strings.ReplaceAll(string(d), "'", "''") + "'"
}

// DBytes is the byte string Datum. The underlying type is a string so that
// values are immutable.
type DBytes string

// ResolvedType implements the Datum interface.
func (DBytes) ResolvedType() *types.T { return types.Varbinary }

// Eval implements the Expr interface.
func (d DBytes) Eval(*EvalContext) (Datum, error) { return d, nil }

func (d DBytes) String() string { return fmt.Sprintf("x'%x'", string(d)) }

// DDate is the date Datum, in milliseconds since the Unix epoch at UTC
// midnight.
type DDate int64

// MakeDDate truncates t to its UTC day.
func MakeDDate(t time.Time) DDate {
	t = t.UTC()
	return DDate(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).UnixMilli())
}

// ResolvedType implements the Datum interface.
func (DDate) ResolvedType() *types.T { return types.Date }

// Eval implements the Expr interface.
func (d DDate) Eval(*EvalContext) (Datum, error) { return d, nil }

func (d DDate) String() string {
	return "DATE '" + timeOf(int64(d)).Format("2006-01-02") + "'"
}

// DTimestamp is the timestamp Datum, in milliseconds since the Unix epoch.
type DTimestamp int64

// MakeDTimestamp truncates t to millisecond precision.
func MakeDTimestamp(t time.Time) DTimestamp { return DTimestamp(t.UnixMilli()) }

// ResolvedType implements the Datum interface.
func (DTimestamp) ResolvedType() *types.T { return types.Timestamp }

// Eval implements the Expr interface.
func (d DTimestamp) Eval(*EvalContext) (Datum, error) { return d, nil }

func (d DTimestamp) String() string {
	return "TIMESTAMP '" + timeOf(int64(d)).Format("2006-01-02 15:04:05.000") + "'"
}

type dNull struct{}

// ResolvedType implements the Datum interface.
func (dNull) ResolvedType() *types.T { return types.Unknown }

// Eval implements the Expr interface.
func (d dNull) Eval(*EvalContext) (Datum, error) { return d, nil }

func (dNull) String() string { return "NULL" }

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal
// to, or after b. Integers and decimals compare numerically, dates and
// timestamps compare as instants, and character and byte strings compare
// bytewise. Other combinations, and NULL, are an error.
func Compare(a, b Datum) (int, error) {
	switch l := a.(type) {
	case DBool:
		if r, ok := b.(DBool); ok {
			switch {
			case l == r:
				return 0, nil
			case !bool(l):
				return -1, nil
			default:
				return 1, nil
			}
		}
	case DInt:
		switch r := b.(type) {
		case DInt:
			return cmpInt64(int64(l), int64(r)), nil
		case *DDecimal:
			var ld apd.Decimal
			ld.SetInt64(int64(l))
			return ld.Cmp(&r.Decimal), nil
		}
	case *DDecimal:
		switch r := b.(type) {
		case DInt:
			var rd apd.Decimal
			rd.SetInt64(int64(r))
			return l.Cmp(&rd), nil
		case *DDecimal:
			return l.Cmp(&r.Decimal), nil
		}
	case DString, DBytes:
		if ls, rs, ok := stringPair(a, b); ok {
			return bytes.Compare([]byte(ls), []byte(rs)), nil
		}
	case DDate:
		switch r := b.(type) {
		case DDate:
			return cmpInt64(int64(l), int64(r)), nil
		case DTimestamp:
			return cmpInt64(int64(l), int64(r)), nil
		}
	case DTimestamp:
		switch r := b.(type) {
		case DDate:
			return cmpInt64(int64(l), int64(r)), nil
		case DTimestamp:
			return cmpInt64(int64(l), int64(r)), nil
		}
	}
	return 0, errors.Newf("cannot compare %s with %s", a.ResolvedType(), b.ResolvedType())
}

func stringPair(a, b Datum) (string, string, bool) {
	as, ok := AsRawBytes(a)
	if !ok {
		return "", "", false
	}
	bs, ok := AsRawBytes(b)
	return as, bs, ok
}

// AsRawBytes returns the bytes of a DString or DBytes.
func AsRawBytes(d Datum) (string, bool) {
	switch t := d.(type) {
	case DString:
		return string(t), true
	case DBytes:
		return string(t), true
	}
	return "", false
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func timeOf(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
