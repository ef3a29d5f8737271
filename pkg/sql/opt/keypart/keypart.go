// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package keypart turns comparisons between a key-forming expression and a
// constant into spans over the key bytes of a single primary key column.
//
// A key-forming expression is a column reference, possibly wrapped in
// order-preserving functions. Each level of the expression gets a KeyPart;
// function key parts hold the key part of the argument they traverse into
// and fall back to it for comparisons they cannot bound themselves.
package keypart

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/keys"
	"github.com/kvsql/rangepush/pkg/sql/catalog"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/sql/span"
	"github.com/kvsql/rangepush/pkg/sql/types"
	"github.com/kvsql/rangepush/pkg/util/encoding"
)

// ErrNoKeyPart marks errors for expressions that cannot constrain the row
// key.
var ErrNoKeyPart = errors.New("expression does not form a key part")

// KeyPart computes key spans for comparisons against one level of a
// key-forming expression.
type KeyPart interface {
	// Column returns the key column whose bytes the spans constrain.
	Column() *catalog.Column
	// ExtractNodes returns the expressions whose comparisons are captured
	// exactly by the spans of this key part. A comparison on any other
	// expression must be kept as a residual filter.
	ExtractNodes() []tree.Expr
	// KeyRange returns a span containing the key bytes of every row for
	// which the expression compares to rhs as op requires. rhs is evaluated
	// once, without a row.
	KeyRange(op tree.ComparisonOperator, rhs tree.Expr) (span.Span, error)
}

// FromExpr builds the key part chain for a key-forming expression over a
// table's columns. The chain ends at a reference to a primary key column;
// each function on the way must preserve order through its traversal index.
func FromExpr(e tree.Expr, table *catalog.Table) (KeyPart, error) {
	switch t := e.(type) {
	case *tree.ColumnRef:
		if t.Ordinal < 0 || t.Ordinal >= len(table.Columns) {
			return nil, errors.AssertionFailedf("column %q has invalid ordinal %d", t.Name, t.Ordinal)
		}
		col := table.Columns[t.Ordinal]
		if _, ok := col.KeyPosition(); !ok {
			return nil, errors.Mark(errors.Newf("column %q is not part of the primary key", col.Name), ErrNoKeyPart)
		}
		return &columnKeyPart{col: col, node: t}, nil
	case *tree.FuncExpr:
		idx := t.KeyFormationTraversalIndex()
		if idx == tree.NoTraversal || idx >= len(t.Exprs) {
			return nil, errors.Mark(errors.Newf("%s does not preserve order", t), ErrNoKeyPart)
		}
		child, err := FromExpr(t.Exprs[idx], table)
		if err != nil {
			return nil, err
		}
		return ForFunction(t, child)
	}
	return nil, errors.Mark(errors.Newf("%s is not a column or function", e), ErrNoKeyPart)
}

// ForFunction wraps child in the key part for an order-preserving function
// call.
func ForFunction(fn *tree.FuncExpr, child KeyPart) (KeyPart, error) {
	col := child.Column()
	switch fn.PreservesOrder() {
	case tree.PreservesAscending:
		return NewPrefixKeyPart(fn, child)
	case tree.PreservesDescending:
		return NewDescendingKeyPart(fn, child)
	}
	return nil, errors.Mark(errors.Newf("%s does not preserve the order of %s", fn, col.Name), ErrNoKeyPart)
}

// NewColumnKeyPart returns the key part of a bare column reference.
func NewColumnKeyPart(col *catalog.Column) KeyPart {
	return &columnKeyPart{col: col, node: col.Ref()}
}

// columnKeyPart bounds comparisons on the column value itself. Its spans
// are exact.
type columnKeyPart struct {
	col  *catalog.Column
	node tree.Expr
}

func (c *columnKeyPart) Column() *catalog.Column { return c.col }

func (c *columnKeyPart) ExtractNodes() []tree.Expr { return []tree.Expr{c.node} }

func (c *columnKeyPart) KeyRange(op tree.ComparisonOperator, rhs tree.Expr) (span.Span, error) {
	switch op {
	case tree.EQ, tree.GT, tree.GE, tree.LT, tree.LE:
	case tree.NE:
		return span.Full, nil
	default:
		return span.Span{}, errors.Mark(
			errors.Newf("cannot derive a range for operator %s", op), ErrUnsupportedOperator)
	}
	d, err := tree.EvalConstant(rhs)
	if err != nil {
		return span.Span{}, err
	}
	if d == tree.DNull {
		// Comparisons with NULL are never true.
		return span.Empty, nil
	}
	v, err := c.col.EncodeKey(d)
	if err != nil {
		return span.Span{}, err
	}
	// succ is the smallest key after every row key holding exactly v in this
	// column. For prefix-free encodings that is PrefixEnd; otherwise v is
	// the last value in the key and Next suffices.
	succ, hasSucc := v.Next(), true
	if c.col.PrefixFree() {
		succ, hasSucc = v.PrefixEnd()
	}
	return rangeFor(op, v, succ, hasSucc, c.col)
}

// prefixKeyPart bounds comparisons on a function that returns a byte prefix
// of its argument, such as substr(s, 1, n). Comparisons it does not handle
// go to the child key part.
type prefixKeyPart struct {
	fn    *tree.FuncExpr
	child KeyPart
	// maxLen is the longest prefix the function can return, or -1.
	maxLen int
}

// NewPrefixKeyPart returns the key part of fn, a function returning a byte
// prefix of the value child ranges over. Prefixes of reversed values are
// not supported.
func NewPrefixKeyPart(fn *tree.FuncExpr, child KeyPart) (KeyPart, error) {
	col := child.Column()
	if !col.DataType().IsStringLike() {
		return nil, errors.Mark(
			errors.Newf("%s requires a string or bytes column, %s is %s", fn, col.Name, col.DataType()),
			ErrNoKeyPart)
	}
	maxLen := -1
	if n, ok := fn.PrefixLength(); ok {
		maxLen = n
	}
	switch c := child.(type) {
	case *columnKeyPart:
	case *prefixKeyPart:
		// A prefix of a prefix is bounded by the shorter of the two.
		if c.maxLen >= 0 && (maxLen < 0 || c.maxLen < maxLen) {
			maxLen = c.maxLen
		}
	default:
		return nil, errors.Mark(errors.Newf("%s cannot take a prefix of a reversed value", fn), ErrNoKeyPart)
	}
	if w, ok := col.FixedByteWidth(); ok && (maxLen < 0 || w < maxLen) {
		maxLen = w
	}
	return &prefixKeyPart{fn: fn, child: child, maxLen: maxLen}, nil
}

func (p *prefixKeyPart) Column() *catalog.Column { return p.child.Column() }

func (p *prefixKeyPart) ExtractNodes() []tree.Expr {
	if p.fn.ExtractNode() {
		return nil
	}
	if _, ok := p.child.(*prefixKeyPart); ok && len(p.child.ExtractNodes()) == 0 {
		return nil
	}
	return []tree.Expr{p.fn}
}

func (p *prefixKeyPart) KeyRange(op tree.ComparisonOperator, rhs tree.Expr) (span.Span, error) {
	switch op {
	case tree.EQ, tree.GT, tree.GE, tree.LT, tree.LE:
	default:
		return p.child.KeyRange(op, rhs)
	}
	d, err := tree.EvalConstant(rhs)
	if err != nil {
		return span.Span{}, err
	}
	if d == tree.DNull {
		return span.Empty, nil
	}
	lit, err := tree.EncodeRawPrefix(d)
	if err != nil {
		return span.Span{}, err
	}
	if p.Column().Separated() && bytes.IndexByte(lit, 0) >= 0 {
		// The separator after the column value would compare against the
		// literal's zero byte.
		return span.Span{}, errors.Mark(
			errors.Newf("literal %s contains the key separator", keys.Key(lit)), ErrNoKeyPart)
	}
	op, lit, ok := normalizePrefixComparison(op, lit, p.maxLen)
	if !ok {
		return span.Empty, nil
	}
	return Derive(op, lit, p.Column())
}

// normalizePrefixComparison rewrites "prefix op lit", where prefix is at
// most maxLen bytes long, into an equivalent comparison whose literal is
// exactly as long as the prefixes it can match. ok is false when no prefix
// can satisfy the comparison.
//
// A literal longer than maxLen is cut to maxLen bytes; a prefix never
// equals it, and GE and LT become GT and LE on the shorter literal. A
// prefix longer than a short literal can extend it, so GT becomes GE on the
// literal's immediate successor.
func normalizePrefixComparison(
	op tree.ComparisonOperator, lit []byte, maxLen int,
) (_ tree.ComparisonOperator, _ []byte, ok bool) {
	switch {
	case maxLen >= 0 && len(lit) > maxLen:
		lit = lit[:maxLen]
		switch op {
		case tree.EQ:
			return op, nil, false
		case tree.GE:
			op = tree.GT
		case tree.LT:
			op = tree.LE
		}
	case maxLen < 0 || len(lit) < maxLen:
		if op == tree.GT {
			op, lit = tree.GE, keys.Key(lit).Next()
		}
	}
	return op, lit, true
}

// descendingKeyPart bounds comparisons on a function that reverses the
// order of a fixed-width column, such as invert(b). A full-width literal is
// complemented and compared against the column with the operator flipped.
type descendingKeyPart struct {
	fn    *tree.FuncExpr
	child KeyPart
	width int
}

// NewDescendingKeyPart returns the key part of fn, a function reversing the
// byte order of the column child ranges over.
func NewDescendingKeyPart(fn *tree.FuncExpr, child KeyPart) (KeyPart, error) {
	col := child.Column()
	w, fixed := col.FixedByteWidth()
	_, isColumn := child.(*columnKeyPart)
	if !fixed || !isColumn || !col.DataType().IsStringLike() {
		return nil, errors.Mark(
			errors.Newf("%s reverses order only over a fixed-width string or bytes column", fn),
			ErrNoKeyPart)
	}
	return &descendingKeyPart{fn: fn, child: child, width: w}, nil
}

func (p *descendingKeyPart) Column() *catalog.Column { return p.child.Column() }

func (p *descendingKeyPart) ExtractNodes() []tree.Expr {
	if p.fn.ExtractNode() {
		return nil
	}
	return []tree.Expr{p.fn}
}

func (p *descendingKeyPart) KeyRange(op tree.ComparisonOperator, rhs tree.Expr) (span.Span, error) {
	switch op {
	case tree.EQ, tree.GT, tree.GE, tree.LT, tree.LE:
	default:
		return p.child.KeyRange(op, rhs)
	}
	d, err := tree.EvalConstant(rhs)
	if err != nil {
		return span.Span{}, err
	}
	if d == tree.DNull {
		return span.Empty, nil
	}
	lit, err := tree.EncodeRawPrefix(d)
	if err != nil {
		return span.Span{}, err
	}
	if len(lit) != p.width {
		return span.Span{}, errors.Mark(
			errors.Newf("%s is compared to %d bytes, not %d", p.fn, len(lit), p.width), ErrNoKeyPart)
	}
	return p.child.KeyRange(op.Flip(), complemented(lit, p.Column().DataType()))
}

func complemented(lit []byte, typ *types.T) tree.Datum {
	c := encoding.Complement(lit)
	if typ.Family() == types.CharFamily {
		return tree.DString(c)
	}
	return tree.DBytes(c)
}
