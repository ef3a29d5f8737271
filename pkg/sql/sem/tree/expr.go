// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/sql/types"
)

// ErrRowContextRequired is returned when an expression that refers to a
// column is evaluated without a row.
var ErrRowContextRequired = errors.New("expression requires a row context")

// ErrNotConstant marks errors from evaluating an expression that was
// expected to fold to a constant.
var ErrNotConstant = errors.New("expression is not constant")

// Expr represents an expression.
type Expr interface {
	fmt.Stringer
	// Eval evaluates the expression. Eval never mutates the expression.
	Eval(ctx *EvalContext) (Datum, error)
}

// EvalContext holds the state needed to evaluate an expression. A nil Row
// restricts evaluation to constant folding.
type EvalContext struct {
	Row Datums
}

// EvalConstant evaluates e with no row context. Failures are marked with
// ErrNotConstant.
func EvalConstant(e Expr) (Datum, error) {
	d, err := e.Eval(&EvalContext{})
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "evaluating %s", e), ErrNotConstant)
	}
	return d, nil
}

// ColumnRef is a reference to a column of the table being filtered, by its
// ordinal in the table's column list.
type ColumnRef struct {
	Ordinal int
	Name    string
	Typ     *types.T
}

var _ Expr = &ColumnRef{}

// Eval implements the Expr interface.
func (c *ColumnRef) Eval(ctx *EvalContext) (Datum, error) {
	if ctx == nil || ctx.Row == nil {
		return nil, errors.Wrapf(ErrRowContextRequired, "column %q", c.Name)
	}
	if c.Ordinal < 0 || c.Ordinal >= len(ctx.Row) {
		return nil, errors.AssertionFailedf(
			"column %q ordinal %d out of range for row of %d values", c.Name, c.Ordinal, len(ctx.Row))
	}
	return ctx.Row[c.Ordinal], nil
}

func (c *ColumnRef) String() string { return c.Name }

// ComparisonExpr represents a two-value comparison expression.
type ComparisonExpr struct {
	Operator    ComparisonOperator
	Left, Right Expr
}

var _ Expr = &ComparisonExpr{}

// NewComparisonExpr constructs a ComparisonExpr.
func NewComparisonExpr(op ComparisonOperator, left, right Expr) *ComparisonExpr {
	return &ComparisonExpr{Operator: op, Left: left, Right: right}
}

// Eval implements the Expr interface. A NULL operand yields NULL.
func (c *ComparisonExpr) Eval(ctx *EvalContext) (Datum, error) {
	l, err := c.Left.Eval(ctx)
	if err != nil {
		return nil, err
	}
	r, err := c.Right.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if l == DNull || r == DNull {
		return DNull, nil
	}
	cmp, err := Compare(l, r)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating %s", c)
	}
	return MakeDBool(c.Operator.Satisfied(cmp)), nil
}

func (c *ComparisonExpr) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Operator.Symbol(), c.Right)
}

// AndExpr represents an AND expression.
type AndExpr struct {
	Left, Right Expr
}

var _ Expr = &AndExpr{}

// Eval implements the Expr interface using three-valued logic.
func (a *AndExpr) Eval(ctx *EvalContext) (Datum, error) {
	l, err := a.Left.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if l == DBoolFalse {
		return DBoolFalse, nil
	}
	r, err := a.Right.Eval(ctx)
	if err != nil {
		return nil, err
	}
	if r == DBoolFalse {
		return DBoolFalse, nil
	}
	if l == DNull || r == DNull {
		return DNull, nil
	}
	if _, ok := l.(DBool); !ok {
		return nil, errors.Newf("argument of AND must be type boolean, not %s", l.ResolvedType())
	}
	if _, ok := r.(DBool); !ok {
		return nil, errors.Newf("argument of AND must be type boolean, not %s", r.ResolvedType())
	}
	return DBoolTrue, nil
}

func (a *AndExpr) String() string { return fmt.Sprintf("%s AND %s", a.Left, a.Right) }

// Conjuncts flattens nested AndExprs into the list of their operands.
func Conjuncts(e Expr) []Expr {
	if a, ok := e.(*AndExpr); ok {
		return append(Conjuncts(a.Left), Conjuncts(a.Right)...)
	}
	return []Expr{e}
}

// MakeAnd folds a list of conjuncts back into a single expression. It
// returns nil for an empty list.
func MakeAnd(exprs []Expr) Expr {
	if len(exprs) == 0 {
		return nil
	}
	e := exprs[0]
	for _, next := range exprs[1:] {
		e = &AndExpr{Left: e, Right: next}
	}
	return e
}

// IsTrue evaluates a filter against a row. NULL counts as false.
func IsTrue(e Expr, row Datums) (bool, error) {
	d, err := e.Eval(&EvalContext{Row: row})
	if err != nil {
		return false, err
	}
	return d == DBoolTrue, nil
}
