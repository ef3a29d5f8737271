// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package types describes the SQL data types that can appear in a row key
// and how each one builds and pads key ranges.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/keys"
	"github.com/kvsql/rangepush/pkg/sql/span"
)

// Family identifies a group of types with the same key encoding.
type Family int

// Family values.
const (
	UnknownFamily Family = iota
	BoolFamily
	IntFamily
	BigIntFamily
	DecimalFamily
	DateFamily
	TimestampFamily
	CharFamily
	VarcharFamily
	BinaryFamily
	VarbinaryFamily
)

var familyNames = map[Family]string{
	UnknownFamily:   "unknown",
	BoolFamily:      "BOOLEAN",
	IntFamily:       "INTEGER",
	BigIntFamily:    "BIGINT",
	DecimalFamily:   "DECIMAL",
	DateFamily:      "DATE",
	TimestampFamily: "TIMESTAMP",
	CharFamily:      "CHAR",
	VarcharFamily:   "VARCHAR",
	BinaryFamily:    "BINARY",
	VarbinaryFamily: "VARBINARY",
}

func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// T is a data type. Values of T are immutable and shared.
type T struct {
	family Family
	// width is the declared length of CHAR and BINARY types.
	width int
}

// Singleton types.
var (
	Unknown   = &T{family: UnknownFamily}
	Bool      = &T{family: BoolFamily}
	Int       = &T{family: IntFamily}
	BigInt    = &T{family: BigIntFamily}
	Decimal   = &T{family: DecimalFamily}
	Date      = &T{family: DateFamily}
	Timestamp = &T{family: TimestampFamily}
	Varchar   = &T{family: VarcharFamily}
	Varbinary = &T{family: VarbinaryFamily}
)

// MakeChar returns the CHAR(width) type.
func MakeChar(width int) *T { return &T{family: CharFamily, width: width} }

// MakeBinary returns the BINARY(width) type.
func MakeBinary(width int) *T { return &T{family: BinaryFamily, width: width} }

// Family returns the type's family.
func (t *T) Family() Family { return t.family }

// Width returns the declared length of a CHAR or BINARY type, or 0.
func (t *T) Width() int { return t.width }

// FixedByteWidth returns the number of bytes every key encoding of the type
// occupies, or false for variable-length types.
func (t *T) FixedByteWidth() (int, bool) {
	switch t.family {
	case BoolFamily:
		return 1, true
	case IntFamily:
		return 4, true
	case BigIntFamily, DateFamily, TimestampFamily:
		return 8, true
	case CharFamily, BinaryFamily:
		return t.width, true
	}
	return 0, false
}

// IsStringLike returns whether key encodings of the type are the raw bytes
// of the value, so that byte prefixes of the value are byte prefixes of the
// key.
func (t *T) IsStringLike() bool {
	switch t.family {
	case CharFamily, VarcharFamily, BinaryFamily, VarbinaryFamily:
		return true
	}
	return false
}

// PadByte is the byte used to extend a short range boundary to the type's
// fixed width.
func (t *T) PadByte() byte { return 0x00 }

// Equivalent returns whether two types share a family and width.
func (t *T) Equivalent(other *T) bool {
	return t.family == other.family && t.width == other.width
}

// SQLString returns the type as it is written in a schema.
func (t *T) SQLString() string {
	switch t.family {
	case CharFamily, BinaryFamily:
		return fmt.Sprintf("%s(%d)", t.family, t.width)
	}
	return t.family.String()
}

func (t *T) String() string { return t.SQLString() }

// BuildRange constructs the span between two encoded boundaries. A nil
// boundary key means that end is unbounded.
func (t *T) BuildRange(lower keys.Key, lowerInclusive bool, upper keys.Key, upperInclusive bool) span.Span {
	start, end := span.Unbounded, span.Unbounded
	if lower != nil {
		if lowerInclusive {
			start = span.Inclusive(lower)
		} else {
			start = span.Exclusive(lower)
		}
	}
	if upper != nil {
		if upperInclusive {
			end = span.Inclusive(upper)
		} else {
			end = span.Exclusive(upper)
		}
	}
	return span.Make(start, end)
}

// PadToWidth extends the bounded ends of sp to width using the type's pad
// byte. See span.Span.Fill.
func (t *T) PadToWidth(sp span.Span, width int) (span.Span, error) {
	return sp.Fill(width, t.PadByte())
}

// Parse resolves a type name as written in a schema file, e.g. "INTEGER" or
// "CHAR(3)".
func Parse(name string) (*T, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	base, arg := s, ""
	if i := strings.IndexByte(s, '('); i >= 0 {
		if !strings.HasSuffix(s, ")") {
			return nil, errors.Newf("malformed type %q", name)
		}
		base, arg = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:len(s)-1])
	}
	var width int
	if arg != "" {
		w, err := strconv.Atoi(arg)
		if err != nil || w <= 0 {
			return nil, errors.WithHint(
				errors.Newf("invalid length in type %q", name),
				"lengths must be positive integers")
		}
		width = w
	}
	switch base {
	case "CHAR", "CHARACTER":
		if width == 0 {
			width = 1
		}
		return MakeChar(width), nil
	case "BINARY":
		if width == 0 {
			width = 1
		}
		return MakeBinary(width), nil
	}
	if arg != "" && base != "VARCHAR" && base != "VARBINARY" && base != "DECIMAL" {
		return nil, errors.Newf("type %s does not take a length", base)
	}
	switch base {
	case "BOOL", "BOOLEAN":
		return Bool, nil
	case "INT", "INTEGER":
		return Int, nil
	case "BIGINT":
		return BigInt, nil
	case "DECIMAL", "NUMERIC":
		return Decimal, nil
	case "DATE":
		return Date, nil
	case "TIMESTAMP":
		return Timestamp, nil
	case "VARCHAR", "STRING", "TEXT":
		return Varchar, nil
	case "VARBINARY", "BYTES":
		return Varbinary, nil
	}
	return nil, errors.WithHint(
		errors.Newf("unknown type %q", name),
		"supported types: BOOLEAN, INTEGER, BIGINT, DECIMAL, DATE, TIMESTAMP, CHAR(n), VARCHAR, BINARY(n), VARBINARY")
}
