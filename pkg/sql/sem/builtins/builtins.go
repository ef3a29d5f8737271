// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package builtins

import (
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
	"github.com/kvsql/rangepush/pkg/util/encoding"
)

var builtins = map[string]*tree.FunctionDefinition{
	// substr(s, start[, length]) returns length bytes of s starting at the
	// 1-based position start. With start fixed at 1 the result is a prefix
	// of s.
	"substr": {
		MinArgs: 2,
		MaxArgs: 3,
		Classify: func(args []tree.Expr) tree.OrderPreserving {
			if start, ok := tree.ConstantInt(args[1]); !ok || start != 1 {
				return tree.NoOrder
			}
			if len(args) == 3 {
				if n, ok := tree.ConstantInt(args[2]); !ok || n < 0 {
					return tree.NoOrder
				}
			}
			return tree.PreservesAscending
		},
		PrefixLength: func(args []tree.Expr) (int, bool) {
			if len(args) < 3 {
				return 0, false
			}
			return constantLength(args[2])
		},
		Fn: func(args tree.Datums) (tree.Datum, error) {
			s, err := stringArg(args[0])
			if err != nil {
				return nil, err
			}
			start, err := intArg(args[1])
			if err != nil {
				return nil, err
			}
			// Positions before the first byte still count against length.
			begin := start - 1
			end := int64(len(s))
			if len(args) == 3 {
				n, err := intArg(args[2])
				if err != nil {
					return nil, err
				}
				if n < 0 {
					return nil, errors.Newf("negative substring length %d not allowed", n)
				}
				if begin+n < end {
					end = begin + n
				}
			}
			if begin < 0 {
				begin = 0
			}
			if begin >= end {
				return sameKind(args[0], ""), nil
			}
			return sameKind(args[0], s[begin:end]), nil
		},
	},

	// left(s, n) returns the first n bytes of s.
	"left": {
		MinArgs: 2,
		MaxArgs: 2,
		Classify: func(args []tree.Expr) tree.OrderPreserving {
			if n, ok := tree.ConstantInt(args[1]); !ok || n < 0 {
				return tree.NoOrder
			}
			return tree.PreservesAscending
		},
		PrefixLength: func(args []tree.Expr) (int, bool) {
			return constantLength(args[1])
		},
		Fn: func(args tree.Datums) (tree.Datum, error) {
			s, err := stringArg(args[0])
			if err != nil {
				return nil, err
			}
			n, err := intArg(args[1])
			if err != nil {
				return nil, err
			}
			if n < 0 {
				n += int64(len(s))
				if n < 0 {
					n = 0
				}
			}
			if n > int64(len(s)) {
				n = int64(len(s))
			}
			return sameKind(args[0], s[:n]), nil
		},
	},

	// invert(b) complements every bit of b, reversing the byte order of
	// equal-length values.
	"invert": {
		MinArgs: 1,
		MaxArgs: 1,
		Classify: func([]tree.Expr) tree.OrderPreserving {
			return tree.PreservesDescending
		},
		Fn: func(args tree.Datums) (tree.Datum, error) {
			s, err := stringArg(args[0])
			if err != nil {
				return nil, err
			}
			return tree.DBytes(encoding.Complement([]byte(s))), nil
		},
	},

	"lower": unaryString(strings.ToLower),
	"upper": unaryString(strings.ToUpper),
	"reverse": unaryString(func(s string) string {
		b := []byte(s)
		for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
		return string(b)
	}),

	"length": {
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args tree.Datums) (tree.Datum, error) {
			s, err := stringArg(args[0])
			if err != nil {
				return nil, err
			}
			return tree.DInt(len(s)), nil
		},
	},

	"abs": {
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args tree.Datums) (tree.Datum, error) {
			switch v := args[0].(type) {
			case tree.DInt:
				if v < 0 {
					if -v < 0 {
						return nil, errors.New("integer out of range")
					}
					return -v, nil
				}
				return v, nil
			case *tree.DDecimal:
				res := &tree.DDecimal{}
				res.Abs(&v.Decimal)
				return res, nil
			}
			return nil, errors.Newf("unsupported argument type %s", args[0].ResolvedType())
		},
	},

	// trunc(d) drops the fractional part of a number.
	"trunc": {
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args tree.Datums) (tree.Datum, error) {
			switch v := args[0].(type) {
			case tree.DInt:
				return v, nil
			case *tree.DDecimal:
				res := &tree.DDecimal{}
				var frac apd.Decimal
				v.Modf(&res.Decimal, &frac)
				return res, nil
			}
			return nil, errors.Newf("unsupported argument type %s", args[0].ResolvedType())
		},
	},
}

func unaryString(fn func(string) string) *tree.FunctionDefinition {
	return &tree.FunctionDefinition{
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args tree.Datums) (tree.Datum, error) {
			s, err := stringArg(args[0])
			if err != nil {
				return nil, err
			}
			return sameKind(args[0], fn(s)), nil
		},
	}
}

func constantLength(e tree.Expr) (int, bool) {
	n, ok := tree.ConstantInt(e)
	if !ok || n < 0 {
		return 0, false
	}
	return int(n), true
}

func stringArg(d tree.Datum) (string, error) {
	s, ok := tree.AsRawBytes(d)
	if !ok {
		return "", errors.Newf("unsupported argument type %s", d.ResolvedType())
	}
	return s, nil
}

func intArg(d tree.Datum) (int64, error) {
	i, ok := d.(tree.DInt)
	if !ok {
		return 0, errors.Newf("expected integer argument, got %s", d.ResolvedType())
	}
	return int64(i), nil
}

// sameKind returns s as the same string kind (DString or DBytes) as like.
func sameKind(like tree.Datum, s string) tree.Datum {
	if _, ok := like.(tree.DBytes); ok {
		return tree.DBytes(s)
	}
	return tree.DString(s)
}
