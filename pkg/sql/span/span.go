// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package span defines the byte-range descriptors handed to the storage
// engine's range scan.
package span

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/kvsql/rangepush/pkg/keys"
)

// Boundary is one end of a Span. The zero value is Unbounded.
type Boundary struct {
	key       keys.Key
	bounded   bool
	inclusive bool
}

// Unbounded is the boundary that does not restrict its end of the span.
var Unbounded = Boundary{}

// Inclusive returns a boundary that includes key.
func Inclusive(key keys.Key) Boundary {
	return Boundary{key: key.Clone(), bounded: true, inclusive: true}
}

// Exclusive returns a boundary that excludes key.
func Exclusive(key keys.Key) Boundary {
	return Boundary{key: key.Clone(), bounded: true}
}

// IsUnbounded returns whether the boundary places no restriction.
func (b Boundary) IsUnbounded() bool { return !b.bounded }

// Key returns the boundary key; it is nil for Unbounded.
func (b Boundary) Key() keys.Key { return b.key }

// IsInclusive returns whether a bounded boundary includes its key.
func (b Boundary) IsInclusive() bool { return b.inclusive }

// Equal returns whether two boundaries are identical.
func (b Boundary) Equal(o Boundary) bool {
	if b.bounded != o.bounded {
		return false
	}
	return !b.bounded || (b.inclusive == o.inclusive && b.key.Equal(o.key))
}

// Span is a contiguous range of keys. Spans are immutable values; every
// method returns a fresh span.
//
// Invariant: if both ends are bounded, Start sorts before End (or they share
// the same key with both ends inclusive). Spans that would violate this are
// normalized to Empty by Make.
type Span struct {
	Start, End Boundary
	empty      bool
}

// Full is the span containing every key.
var Full = Span{}

// Empty is the span containing no keys.
var Empty = Span{empty: true}

// Make returns the span [start, end], normalized to Empty if no key can lie
// between the two boundaries.
func Make(start, end Boundary) Span {
	sp := Span{Start: start, End: end}
	if !sp.valid() {
		return Empty
	}
	return sp
}

func (sp Span) valid() bool {
	if sp.empty {
		return false
	}
	if sp.End.bounded && !sp.End.inclusive && len(sp.End.key) == 0 {
		// Nothing sorts before the empty key.
		return false
	}
	if sp.Start.IsUnbounded() || sp.End.IsUnbounded() {
		return true
	}
	cmp := sp.Start.key.Compare(sp.End.key)
	if cmp != 0 {
		return cmp < 0
	}
	return sp.Start.inclusive && sp.End.inclusive
}

// IsEmpty returns whether the span contains no keys.
func (sp Span) IsEmpty() bool { return sp.empty }

// IsFull returns whether the span is unrestricted at both ends.
func (sp Span) IsFull() bool {
	return !sp.empty && sp.Start.IsUnbounded() && sp.End.IsUnbounded()
}

// ContainsKey returns whether key falls within the span.
func (sp Span) ContainsKey(key keys.Key) bool {
	if sp.empty {
		return false
	}
	if sp.Start.bounded {
		cmp := key.Compare(sp.Start.key)
		if cmp < 0 || (cmp == 0 && !sp.Start.inclusive) {
			return false
		}
	}
	if sp.End.bounded {
		cmp := key.Compare(sp.End.key)
		if cmp > 0 || (cmp == 0 && !sp.End.inclusive) {
			return false
		}
	}
	return true
}

// Equal returns whether two spans contain the same boundaries.
func (sp Span) Equal(o Span) bool {
	if sp.empty || o.empty {
		return sp.empty == o.empty
	}
	return sp.Start.Equal(o.Start) && sp.End.Equal(o.End)
}

// Intersect returns the keys contained in both spans. An unbounded end is
// absorbed by the other span's corresponding end.
func (sp Span) Intersect(o Span) Span {
	if sp.empty || o.empty {
		return Empty
	}
	return Make(tighterStart(sp.Start, o.Start), tighterEnd(sp.End, o.End))
}

func tighterStart(a, b Boundary) Boundary {
	if a.IsUnbounded() {
		return b
	}
	if b.IsUnbounded() {
		return a
	}
	if cmp := a.key.Compare(b.key); cmp != 0 {
		if cmp > 0 {
			return a
		}
		return b
	}
	if !a.inclusive {
		return a
	}
	return b
}

func tighterEnd(a, b Boundary) Boundary {
	if a.IsUnbounded() {
		return b
	}
	if b.IsUnbounded() {
		return a
	}
	if cmp := a.key.Compare(b.key); cmp != 0 {
		if cmp < 0 {
			return a
		}
		return b
	}
	if !a.inclusive {
		return a
	}
	return b
}

// Fill pads every bounded end that is shorter than width with pad. Keys of a
// fixed-width column all have exactly width bytes, so a short boundary is a
// prefix that must be extended before it can bracket full-width keys. A
// boundary longer than width means the caller encoded a value inconsistently
// with the column and is reported as an assertion failure; it is never
// truncated. Fill is idempotent.
func (sp Span) Fill(width int, pad byte) (Span, error) {
	if sp.empty {
		return sp, nil
	}
	start, err := fillBoundary(sp.Start, width, pad)
	if err != nil {
		return Span{}, err
	}
	end, err := fillBoundary(sp.End, width, pad)
	if err != nil {
		return Span{}, err
	}
	return Make(start, end), nil
}

func fillBoundary(b Boundary, width int, pad byte) (Boundary, error) {
	if b.IsUnbounded() || len(b.key) == width {
		return b, nil
	}
	if len(b.key) > width {
		return Boundary{}, errors.AssertionFailedf(
			"boundary %s is %d bytes, longer than the fixed column width %d",
			b.key, len(b.key), width)
	}
	k := make(keys.Key, width)
	copy(k, b.key)
	for i := len(b.key); i < width; i++ {
		k[i] = pad
	}
	return Boundary{key: k, bounded: true, inclusive: b.inclusive}, nil
}

// String formats a span using brackets for inclusive boundaries and
// parentheses for exclusive ones. Unbounded ends are printed empty:
//
//	[\x00\x00\x00\x05 - \x00\x00\x00\x06)
//	[abd - ]
//	[ - ]
func (sp Span) String() string {
	return redact.StringWithoutMarkers(sp)
}

// SafeFormat implements the redact.SafeFormatter interface.
func (sp Span) SafeFormat(w redact.SafePrinter, _ rune) {
	if sp.empty {
		w.SafeString("<empty>")
		return
	}
	if sp.Start.IsUnbounded() || sp.Start.inclusive {
		w.SafeRune('[')
	} else {
		w.SafeRune('(')
	}
	if sp.Start.bounded {
		w.Print(sp.Start.key)
	}
	w.SafeString(" - ")
	if sp.End.bounded {
		w.Print(sp.End.key)
	}
	if sp.End.IsUnbounded() || sp.End.inclusive {
		w.SafeRune(']')
	} else {
		w.SafeRune(')')
	}
}

var _ redact.SafeFormatter = Span{}
