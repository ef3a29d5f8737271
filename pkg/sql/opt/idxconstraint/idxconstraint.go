// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package idxconstraint builds the primary key scan for a filter: the span
// of row keys that contains every row the filter can match, and the
// conjuncts that must still be evaluated against the rows in that span.
package idxconstraint

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/kvsql/rangepush/pkg/keys"
	"github.com/kvsql/rangepush/pkg/sql/catalog"
	"github.com/kvsql/rangepush/pkg/sql/opt/keypart"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/sql/span"
	"github.com/kvsql/rangepush/pkg/util/log"
)

// Options configures Build.
type Options struct {
	// Metrics, if set, records planning outcomes.
	Metrics *Metrics
}

// ScanPlan is a scan over a span of row keys followed by a filter.
type ScanPlan struct {
	// Span contains the key of every row the filter can match.
	Span span.Span
	// Residual holds the conjuncts the span does not capture exactly. A row
	// in the span matches the filter iff it satisfies all of them.
	Residual []tree.Expr
	// Contradiction is set when no row can match; Span is then empty.
	Contradiction bool
}

// Filter returns the residual conjuncts as one expression, or nil.
func (p *ScanPlan) Filter() tree.Expr {
	return tree.MakeAnd(p.Residual)
}

// String formats the plan:
//
//	span: [\x80\x00\x00\x05 - \x80\x00\x00\x06)
//	residual: lower(s) = 'a'
func (p *ScanPlan) String() string {
	if p.Contradiction {
		return "contradiction"
	}
	var buf strings.Builder
	buf.WriteString("span: ")
	buf.WriteString(p.Span.String())
	if len(p.Residual) > 0 {
		buf.WriteString("\nresidual: ")
		buf.WriteString(p.Filter().String())
	}
	return buf.String()
}

// slot accumulates the constraints on one primary key column.
type slot struct {
	sp span.Span
	// point is the span of a direct equality on the column, if any.
	point    span.Span
	hasPoint bool
}

// conjunctResult records how a conjunct was planned.
type conjunctResult struct {
	// residual is set when the conjunct constrains no key column.
	residual      bool
	contradiction bool
	// pos is the key position of the constrained column.
	pos int
	// exact is set when the column span contains only matching rows.
	exact bool
}

// Build plans the scan of table for filter, a conjunction of comparisons.
// A nil filter scans the whole table.
//
// Each conjunct whose left or right side forms a key part over a primary
// key column constrains that column; the constraints on a column are
// intersected. The row key span is composed from the leading columns
// constrained to a single value, followed by the constraint on the next
// column. A conjunct is dropped only if its constraint is exact and was
// used to compose the span; all others become residual filters.
//
// Errors other than the ones explaining why a conjunct cannot constrain the
// scan, such as assertion failures, abort planning.
func Build(
	ctx context.Context, filter tree.Expr, table *catalog.Table, opts Options,
) (_ *ScanPlan, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = catchPlanningError(r)
		}
	}()
	ctx = logtags.AddTag(ctx, "table", table.Name)
	if filter != nil {
		ctx = logtags.AddTag(ctx, "filter", filter)
	}

	slots := make([]slot, table.KeyColumnCount())
	for i := range slots {
		slots[i].sp = span.Full
	}
	var conjuncts []tree.Expr
	if filter != nil {
		conjuncts = tree.Conjuncts(filter)
	}
	results := make([]conjunctResult, len(conjuncts))
	plan := &ScanPlan{}
	for i, c := range conjuncts {
		res, err := planConjunct(ctx, c, table, slots, opts.Metrics)
		if err != nil {
			return nil, errors.Wrapf(err, "planning %s", c)
		}
		results[i] = res
		if res.contradiction {
			plan.Contradiction = true
		}
	}
	for i := range slots {
		if slots[i].sp.IsEmpty() {
			plan.Contradiction = true
		}
	}
	if plan.Contradiction {
		plan.Span = span.Empty
		log.VEventf(ctx, 1, "filter %s is a contradiction", filter)
		opts.Metrics.plan(true)
		return plan, nil
	}

	var used int
	plan.Span, used = compose(table, slots)
	for i, res := range results {
		if !res.residual && res.exact && res.pos <= used {
			continue
		}
		plan.Residual = append(plan.Residual, conjuncts[i])
	}
	log.VEventf(ctx, 1, "scan span %s, %d residual conjuncts", plan.Span, len(plan.Residual))
	opts.Metrics.plan(false)
	return plan, nil
}

// planConjunct applies one conjunct to the key slots.
func planConjunct(
	ctx context.Context, c tree.Expr, table *catalog.Table, slots []slot, m *Metrics,
) (conjunctResult, error) {
	if d, err := tree.EvalConstant(c); err == nil {
		// Constant conjuncts are folded: true is dropped, false and NULL
		// match nothing.
		if d == tree.DBoolTrue {
			return conjunctResult{pos: -1, exact: true}, nil
		}
		return conjunctResult{contradiction: true}, nil
	}
	cmp, ok := c.(*tree.ComparisonExpr)
	if !ok {
		m.fallback(reasonNoKeyPart)
		return conjunctResult{residual: true}, nil
	}
	lhs, op, rhs := cmp.Left, cmp.Operator, cmp.Right
	kp, err := keypart.FromExpr(lhs, table)
	if errors.Is(err, keypart.ErrNoKeyPart) {
		// Try the comparison the other way around, as in 5 < a.
		if flipped, ferr := keypart.FromExpr(rhs, table); ferr == nil {
			kp, err = flipped, nil
			lhs, op, rhs = rhs, op.Flip(), lhs
		}
	}
	if err != nil {
		return fallback(ctx, c, err, m)
	}
	sp, err := kp.KeyRange(op, rhs)
	if err != nil {
		return fallback(ctx, c, err, m)
	}
	pos, ok := kp.Column().KeyPosition()
	if !ok {
		return conjunctResult{}, errors.AssertionFailedf(
			"key part over non-key column %q", kp.Column().Name)
	}
	log.VEventf(ctx, 2, "%s constrains %s to %s", c, kp.Column().Name, sp)
	m.derived(op.String())

	s := &slots[pos]
	s.sp = s.sp.Intersect(sp)
	if _, direct := lhs.(*tree.ColumnRef); direct && op == tree.EQ {
		if s.hasPoint {
			s.point = s.point.Intersect(sp)
		} else {
			s.point, s.hasPoint = sp, true
		}
	}
	return conjunctResult{pos: pos, exact: exact(op, lhs, kp)}, nil
}

// exact returns whether the span of kp for "lhs op ..." contains only
// matching rows.
func exact(op tree.ComparisonOperator, lhs tree.Expr, kp keypart.KeyPart) bool {
	switch op {
	case tree.EQ, tree.GT, tree.GE, tree.LT, tree.LE:
	default:
		return false
	}
	for _, n := range kp.ExtractNodes() {
		if n == lhs {
			return true
		}
	}
	return false
}

// fallback keeps a conjunct that cannot constrain the scan as a residual
// filter, or returns err if it is not one of the expected reasons.
func fallback(ctx context.Context, c tree.Expr, err error, m *Metrics) (conjunctResult, error) {
	var reason string
	switch {
	case errors.Is(err, tree.ErrNotConstant):
		reason = reasonNotConstant
	case errors.Is(err, keypart.ErrNoKeyPart):
		reason = reasonNoKeyPart
	case errors.Is(err, keypart.ErrUnsupportedOperator):
		reason = reasonUnsupportedOperator
	case errors.Is(err, tree.ErrLossyCoercion):
		// The constant has no key encoding in the column type, as in
		// a > 5.5 on an INTEGER column.
		reason = reasonInexactConstant
	default:
		return conjunctResult{}, err
	}
	log.VEventf(ctx, 2, "%s is a residual filter (%s): %v", c, reason, err)
	m.fallback(reason)
	return conjunctResult{residual: true}, nil
}

// compose builds the row key span from the per-column spans of table's key
// columns, in key order, and returns
// the key position of the last column it used. Leading columns equal to a
// single value contribute their key bytes to a common prefix; the span of
// the first other column is appended to it and later columns are ignored.
// The last key column never joins the prefix, since its point span may not
// be prefix-free.
func compose(table *catalog.Table, slots []slot) (_ span.Span, used int) {
	var prefix keys.Key
	for i := range slots {
		s := &slots[i]
		last := table.IsLastKeyColumn(table.KeyColumn(i))
		if !last && s.hasPoint && s.sp.Equal(s.point) && !s.sp.Start.IsUnbounded() {
			prefix = prefix.Concat(s.sp.Start.Key())
			continue
		}
		return withPrefix(prefix, s.sp), i
	}
	return span.Full, -1
}

// withPrefix returns the span of keys starting with prefix whose remainder
// lies in sp. An unbounded end of sp is bounded by the prefix.
func withPrefix(prefix keys.Key, sp span.Span) span.Span {
	if len(prefix) == 0 || sp.IsEmpty() {
		return sp
	}
	start := span.Inclusive(prefix)
	if !sp.Start.IsUnbounded() {
		start = boundary(prefix.Concat(sp.Start.Key()), sp.Start.IsInclusive())
	}
	end := span.Unbounded
	if e, ok := prefix.PrefixEnd(); ok {
		end = span.Exclusive(e)
	}
	if !sp.End.IsUnbounded() {
		end = boundary(prefix.Concat(sp.End.Key()), sp.End.IsInclusive())
	}
	return span.Make(start, end)
}

func boundary(k keys.Key, inclusive bool) span.Boundary {
	if inclusive {
		return span.Inclusive(k)
	}
	return span.Exclusive(k)
}
