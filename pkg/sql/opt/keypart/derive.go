// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package keypart

import (
	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/keys"
	"github.com/kvsql/rangepush/pkg/sql/catalog"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/sql/span"
)

// ErrUnsupportedOperator marks errors for operators a key part cannot turn
// into a range.
var ErrUnsupportedOperator = errors.New("unsupported comparison operator")

// Derive returns the span of key bytes of col whose leading len(literal)
// bytes compare to literal as op requires:
//
//	EQ  [literal, PrefixEnd(literal))
//	GT  [PrefixEnd(literal), +inf)
//	GE  [literal, +inf)
//	LT  (-inf, literal)
//	LE  (-inf, PrefixEnd(literal))
//
// When literal has no finite PrefixEnd the corresponding end is unbounded,
// except for GT where no key can qualify and the span is empty. Bounded ends
// are padded to the column's fixed width, if it has one. A literal longer
// than that width is an assertion failure.
func Derive(op tree.ComparisonOperator, literal []byte, col *catalog.Column) (span.Span, error) {
	lit := keys.Key(literal)
	if lit == nil {
		lit = keys.KeyMin
	}
	end, hasEnd := lit.PrefixEnd()
	return rangeFor(op, lit, end, hasEnd, col)
}

// rangeFor returns the span of key bytes of col comparing to lit as op
// requires. succ is the smallest key after every key that equals lit in the
// compared bytes; hasSucc is false if there is none.
func rangeFor(
	op tree.ComparisonOperator, lit, succ keys.Key, hasSucc bool, col *catalog.Column,
) (span.Span, error) {
	if !hasSucc {
		succ = nil
	}
	typ := col.DataType()
	var sp span.Span
	switch op {
	case tree.EQ:
		sp = typ.BuildRange(lit, true, succ, false)
	case tree.GT:
		if !hasSucc {
			return span.Empty, nil
		}
		sp = typ.BuildRange(succ, true, nil, false)
	case tree.GE:
		sp = typ.BuildRange(lit, true, nil, false)
	case tree.LT:
		sp = typ.BuildRange(nil, false, lit, false)
	case tree.LE:
		sp = typ.BuildRange(nil, false, succ, false)
	default:
		return span.Span{}, errors.Mark(
			errors.Newf("cannot derive a range for operator %s", op), ErrUnsupportedOperator)
	}
	return padToColumn(sp, col)
}

func padToColumn(sp span.Span, col *catalog.Column) (span.Span, error) {
	if w, ok := col.FixedByteWidth(); ok {
		padded, err := col.DataType().PadToWidth(sp, w)
		if err != nil {
			return span.Span{}, errors.Wrapf(err, "column %q", col.Name)
		}
		return padded, nil
	}
	return sp, nil
}
