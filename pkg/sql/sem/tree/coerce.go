// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import (
	"math"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/sql/types"
	"github.com/kvsql/rangepush/pkg/util/encoding"
)

// ErrLossyCoercion marks coercion errors for values of a comparable type
// that the target type cannot represent exactly, such as 5.5 as an INTEGER
// or a timestamp with a time of day as a DATE.
var ErrLossyCoercion = errors.New("value cannot be represented exactly")

// Coerce converts d to a value of type t. CHAR values are padded with spaces
// and BINARY values with zero bytes to the declared width; values longer
// than the width are rejected. NULL coerces to NULL.
func Coerce(d Datum, t *types.T) (Datum, error) {
	if d == DNull {
		return DNull, nil
	}
	switch t.Family() {
	case types.BoolFamily:
		if b, ok := d.(DBool); ok {
			return b, nil
		}
	case types.IntFamily, types.BigIntFamily:
		i, err := asInt(d)
		if err != nil {
			return nil, err
		}
		if i == nil {
			break
		}
		if t.Family() == types.IntFamily && (*i < math.MinInt32 || *i > math.MaxInt32) {
			return nil, errors.Mark(errors.Newf("integer %d out of range for type %s", *i, t), ErrLossyCoercion)
		}
		return *i, nil
	case types.DecimalFamily:
		switch v := d.(type) {
		case *DDecimal:
			return v, nil
		case DInt:
			dd := &DDecimal{}
			dd.SetInt64(int64(v))
			return dd, nil
		}
	case types.DateFamily:
		switch v := d.(type) {
		case DDate:
			return v, nil
		case DTimestamp:
			if dd := MakeDDate(timeOf(int64(v))); int64(dd) == int64(v) {
				return dd, nil
			}
			return nil, errors.Mark(errors.Newf("timestamp %s has a time of day", v), ErrLossyCoercion)
		}
	case types.TimestampFamily:
		switch v := d.(type) {
		case DTimestamp:
			return v, nil
		case DDate:
			return DTimestamp(v), nil
		}
	case types.CharFamily, types.VarcharFamily:
		s, ok := AsRawBytes(d)
		if !ok {
			break
		}
		if t.Family() == types.CharFamily {
			if len(s) > t.Width() {
				return nil, errors.Mark(errors.Newf("value too long for type %s", t), ErrLossyCoercion)
			}
			s += strings.Repeat(" ", t.Width()-len(s))
		}
		return DString(s), nil
	case types.BinaryFamily, types.VarbinaryFamily:
		s, ok := AsRawBytes(d)
		if !ok {
			break
		}
		if t.Family() == types.BinaryFamily {
			if len(s) > t.Width() {
				return nil, errors.Mark(errors.Newf("value too long for type %s", t), ErrLossyCoercion)
			}
			s += strings.Repeat("\x00", t.Width()-len(s))
		}
		return DBytes(s), nil
	}
	return nil, errors.Newf("could not coerce %s of type %s to %s", d, d.ResolvedType(), t)
}

func asInt(d Datum) (*DInt, error) {
	switch v := d.(type) {
	case DInt:
		return &v, nil
	case *DDecimal:
		var integ, frac apd.Decimal
		v.Modf(&integ, &frac)
		if !frac.IsZero() {
			return nil, errors.Mark(errors.Newf("decimal %s is not an integer", v), ErrLossyCoercion)
		}
		i, err := integ.Int64()
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "decimal %s out of integer range", v), ErrLossyCoercion)
		}
		r := DInt(i)
		return &r, nil
	}
	return nil, nil
}

// EncodeKey coerces d to t and returns its key encoding. The encoding sorts
// bytewise in the same order as the values of t:
//
//	INTEGER            4 bytes, big-endian, sign bit flipped
//	BIGINT             8 bytes, big-endian, sign bit flipped
//	DATE, TIMESTAMP    8 bytes of milliseconds, as BIGINT
//	BOOLEAN            1 byte
//	CHAR(n), BINARY(n) the padded value
//	VARCHAR, VARBINARY the raw value
//	DECIMAL            see encoding.EncodeDecimalAscending
//
// VARCHAR values may not contain a zero byte, which is reserved as the
// separator after variable-width key columns.
func EncodeKey(d Datum, t *types.T) ([]byte, error) {
	if d == DNull {
		return nil, errors.Newf("NULL has no key encoding")
	}
	c, err := Coerce(d, t)
	if err != nil {
		return nil, err
	}
	switch v := c.(type) {
	case DBool:
		return encoding.EncodeBoolAscending(nil, bool(v)), nil
	case DInt:
		if t.Family() == types.IntFamily {
			return encoding.EncodeInt32Ascending(nil, int32(v)), nil
		}
		return encoding.EncodeInt64Ascending(nil, int64(v)), nil
	case DDate:
		return encoding.EncodeInt64Ascending(nil, int64(v)), nil
	case DTimestamp:
		return encoding.EncodeInt64Ascending(nil, int64(v)), nil
	case *DDecimal:
		return encoding.EncodeDecimalAscending(nil, &v.Decimal)
	case DString:
		if t.Family() == types.VarcharFamily && strings.IndexByte(string(v), 0) >= 0 {
			return nil, errors.WithHint(
				errors.Newf("VARCHAR value %s contains a zero byte", v),
				"use VARBINARY for binary data")
		}
		return []byte(v), nil
	case DBytes:
		return []byte(v), nil
	}
	return nil, errors.AssertionFailedf("unhandled datum %T", c)
}

// EncodeRawPrefix returns the bytes a prefix of a string-like key column is
// compared against: the literal's own bytes, without padding.
func EncodeRawPrefix(d Datum) ([]byte, error) {
	s, ok := AsRawBytes(d)
	if !ok {
		return nil, errors.Newf("%s of type %s is not a string or bytes value", d, d.ResolvedType())
	}
	return []byte(s), nil
}
