// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// OrderPreserving describes how a function's output sorts relative to the
// key encoding of its key-forming argument.
type OrderPreserving int

const (
	// NoOrder means the output order says nothing about the input order.
	NoOrder OrderPreserving = iota
	// PreservesAscending means the function is monotonically non-decreasing
	// over the encoded bytes of its input.
	PreservesAscending
	// PreservesDescending means the function reverses the order of its
	// input.
	PreservesDescending
)

func (o OrderPreserving) String() string {
	switch o {
	case PreservesAscending:
		return "ascending"
	case PreservesDescending:
		return "descending"
	}
	return "none"
}

// NoTraversal is the traversal index of a function that does not
// participate in key formation.
const NoTraversal = -1

// FunctionProperties is the classification every scalar function exposes to
// the planner.
type FunctionProperties interface {
	// PreservesOrder reports the order preservation of the function. It is a
	// property of the function and the shape of its arguments, never of the
	// values the arguments take on a row.
	PreservesOrder() OrderPreserving
	// KeyFormationTraversalIndex returns the index of the argument through
	// which key matching continues, or NoTraversal.
	KeyFormationTraversalIndex() int
	// ExtractNode reports whether the predicate must still be evaluated on
	// each row after a range derived through this function is scanned.
	ExtractNode() bool
}

// FunctionDefinition describes a builtin scalar function.
type FunctionDefinition struct {
	// Name is the lower-case name of the function.
	Name string
	// MinArgs and MaxArgs bound the number of arguments.
	MinArgs, MaxArgs int
	// Classify returns the order preservation of a call with the given
	// arguments. A nil Classify means NoOrder.
	Classify func(args []Expr) OrderPreserving
	// PrefixLength returns the maximum number of bytes of the key-forming
	// argument the function can return for the given arguments. ok is false
	// when the output length is not bounded.
	PrefixLength func(args []Expr) (n int, ok bool)
	// ExactRange is set when a range derived through the function brackets
	// exactly the matching rows, so the predicate need not be re-checked.
	ExactRange bool
	// Fn evaluates the function. It is never called with NULL arguments.
	Fn func(args Datums) (Datum, error)
}

// FuncExpr is a call to a builtin function. The classification is computed
// once on construction.
type FuncExpr struct {
	Func  *FunctionDefinition
	Exprs []Expr

	order OrderPreserving
}

var _ Expr = &FuncExpr{}
var _ FunctionProperties = &FuncExpr{}

// NewFuncExpr checks the number of arguments and classifies the call.
func NewFuncExpr(def *FunctionDefinition, args ...Expr) (*FuncExpr, error) {
	if len(args) < def.MinArgs || (def.MaxArgs >= 0 && len(args) > def.MaxArgs) {
		return nil, errors.WithHintf(
			errors.Newf("wrong number of arguments to %s(): %d", def.Name, len(args)),
			"%s() takes between %d and %d arguments", def.Name, def.MinArgs, def.MaxArgs)
	}
	f := &FuncExpr{Func: def, Exprs: args, order: NoOrder}
	if def.Classify != nil {
		f.order = def.Classify(args)
	}
	return f, nil
}

// PreservesOrder implements the FunctionProperties interface.
func (f *FuncExpr) PreservesOrder() OrderPreserving { return f.order }

// KeyFormationTraversalIndex implements the FunctionProperties interface.
func (f *FuncExpr) KeyFormationTraversalIndex() int {
	if f.order == NoOrder {
		return NoTraversal
	}
	return 0
}

// ExtractNode implements the FunctionProperties interface.
func (f *FuncExpr) ExtractNode() bool { return !f.Func.ExactRange }

// PrefixLength returns the bound on the function's output length, if any.
func (f *FuncExpr) PrefixLength() (int, bool) {
	if f.Func.PrefixLength == nil {
		return 0, false
	}
	return f.Func.PrefixLength(f.Exprs)
}

// Eval implements the Expr interface. Any NULL argument yields NULL.
func (f *FuncExpr) Eval(ctx *EvalContext) (Datum, error) {
	args := make(Datums, len(f.Exprs))
	for i, e := range f.Exprs {
		d, err := e.Eval(ctx)
		if err != nil {
			return nil, err
		}
		if d == DNull {
			return DNull, nil
		}
		args[i] = d
	}
	res, err := f.Func.Fn(args)
	if err != nil {
		return nil, errors.Wrapf(err, "%s()", f.Func.Name)
	}
	return res, nil
}

func (f *FuncExpr) String() string {
	var buf strings.Builder
	buf.WriteString(f.Func.Name)
	buf.WriteByte('(')
	for i, e := range f.Exprs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// ConstantInt folds e and returns its value if it is an integer constant.
func ConstantInt(e Expr) (int64, bool) {
	d, err := EvalConstant(e)
	if err != nil {
		return 0, false
	}
	i, ok := d.(DInt)
	return int64(i), ok
}
