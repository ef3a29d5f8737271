// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import "fmt"

// ComparisonOperator represents a binary comparison operator.
type ComparisonOperator int

// ComparisonExpr.Operator values.
const (
	EQ ComparisonOperator = iota + 1
	GT
	GE
	LT
	LE
	NE
)

var comparisonOpName = [...]string{
	EQ: "=",
	GT: ">",
	GE: ">=",
	LT: "<",
	LE: "<=",
	NE: "!=",
}

// Symbol returns the operator as it is written in SQL.
func (op ComparisonOperator) Symbol() string {
	if op > 0 && int(op) < len(comparisonOpName) {
		return comparisonOpName[op]
	}
	return fmt.Sprintf("ComparisonOp(%d)", int(op))
}

func (op ComparisonOperator) String() string { return op.Symbol() }

// Flip returns the operator that gives the same result when the operands
// are swapped: a < b is b > a. The same mapping describes how a comparison
// changes when both sides are passed through an order-reversing function.
func (op ComparisonOperator) Flip() ComparisonOperator {
	switch op {
	case GT:
		return LT
	case GE:
		return LE
	case LT:
		return GT
	case LE:
		return GE
	}
	return op
}

// Satisfied reports whether a three-way comparison result satisfies op.
func (op ComparisonOperator) Satisfied(cmp int) bool {
	switch op {
	case EQ:
		return cmp == 0
	case GT:
		return cmp > 0
	case GE:
		return cmp >= 0
	case LT:
		return cmp < 0
	case LE:
		return cmp <= 0
	case NE:
		return cmp != 0
	}
	return false
}

// ParseComparisonOperator resolves an operator symbol. Both "!=" and "<>"
// name NE.
func ParseComparisonOperator(s string) (ComparisonOperator, bool) {
	if s == "<>" {
		return NE, true
	}
	for op, name := range comparisonOpName {
		if op > 0 && name == s {
			return ComparisonOperator(op), true
		}
	}
	return 0, false
}
