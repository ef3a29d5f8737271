// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package parser parses filter predicates over the columns of one table:
// conjunctions of comparisons between columns, builtin function calls and
// literals.
//
//	filter  := cmp { AND cmp }
//	cmp     := '(' filter ')' | operand op operand
//	operand := column | function '(' [operand {',' operand}] ')' | literal
//	literal := integer | decimal | 'string' | x'hex' | DATE 'd' |
//	           TIMESTAMP 't' | TRUE | FALSE | NULL
package parser

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kvsql/rangepush/pkg/sql/catalog"
	"github.com/kvsql/rangepush/pkg/sql/sem/builtins"
	"github.com/kvsql/rangepush/pkg/sql/sem/tree"
)

// Parser parses filters over the columns of Table.
type Parser struct {
	Table *catalog.Table
	// DateFormat is the layout, in the notation of the time package, used
	// for DATE and TIMESTAMP literals. ISO dates are always accepted.
	DateFormat string
}

type parseState struct {
	*Parser
	sql  string
	toks []token
	pos  int
}

// Parse parses a filter. Constants compared directly with a column are
// coerced to the column's type.
func (p *Parser) Parse(sql string) (tree.Expr, error) {
	toks, err := (&lexer{in: sql}).tokens()
	if err != nil {
		return nil, err
	}
	s := &parseState{Parser: p, sql: sql, toks: toks}
	e, err := s.filter()
	if err != nil {
		return nil, err
	}
	if tok := s.peek(); tok.kind != tokEOF {
		return nil, s.syntaxError(tok)
	}
	return e, nil
}

// Parse parses a filter over table using the default date layout.
func Parse(sql string, table *catalog.Table) (tree.Expr, error) {
	return (&Parser{Table: table}).Parse(sql)
}

func (s *parseState) peek() token { return s.toks[s.pos] }

func (s *parseState) advance() token {
	tok := s.toks[s.pos]
	if tok.kind != tokEOF {
		s.pos++
	}
	return tok
}

func (s *parseState) expect(kind tokenKind) (token, error) {
	tok := s.advance()
	if tok.kind != kind {
		return tok, s.syntaxError(tok)
	}
	return tok, nil
}

func (s *parseState) syntaxError(tok token) error {
	return errors.Newf("syntax error at or near %q: %s", tok, s.sql)
}

func (s *parseState) isKeyword(kw string) bool {
	tok := s.peek()
	return tok.kind == tokIdent && !tok.quoted && tok.val == kw
}

func (s *parseState) filter() (tree.Expr, error) {
	left, err := s.comparison()
	if err != nil {
		return nil, err
	}
	for s.isKeyword("and") {
		s.advance()
		right, err := s.comparison()
		if err != nil {
			return nil, err
		}
		left = &tree.AndExpr{Left: left, Right: right}
	}
	return left, nil
}

func (s *parseState) comparison() (tree.Expr, error) {
	if s.peek().kind == tokLParen {
		s.advance()
		e, err := s.filter()
		if err != nil {
			return nil, err
		}
		if _, err := s.expect(tokRParen); err != nil {
			return nil, err
		}
		return e, nil
	}
	left, err := s.operand()
	if err != nil {
		return nil, err
	}
	opTok, err := s.expect(tokOp)
	if err != nil {
		return nil, err
	}
	op, ok := tree.ParseComparisonOperator(opTok.val)
	if !ok {
		return nil, s.syntaxError(opTok)
	}
	right, err := s.operand()
	if err != nil {
		return nil, err
	}
	if left, err = coerceAgainst(left, right); err != nil {
		return nil, err
	}
	if right, err = coerceAgainst(right, left); err != nil {
		return nil, err
	}
	return tree.NewComparisonExpr(op, left, right), nil
}

// coerceAgainst coerces e to the type of other if e is a constant and other
// is a column reference. A constant the column type cannot represent
// exactly, such as 5.5 against an INTEGER column, is left as is; it still
// compares with the column's values, but cannot bound the scan.
func coerceAgainst(e, other tree.Expr) (tree.Expr, error) {
	d, isDatum := e.(tree.Datum)
	col, isCol := other.(*tree.ColumnRef)
	if !isDatum || !isCol {
		return e, nil
	}
	c, err := tree.Coerce(d, col.Typ)
	if errors.Is(err, tree.ErrLossyCoercion) {
		return d, nil
	}
	if err != nil {
		return nil, errors.WithHintf(
			errors.Wrapf(err, "comparing %s with %s", col.Name, d),
			"column %s has type %s", col.Name, col.Typ)
	}
	return c, nil
}

func (s *parseState) operand() (tree.Expr, error) {
	tok := s.advance()
	switch tok.kind {
	case tokInt:
		return parseInt(tok.val)
	case tokDecimal:
		return tree.ParseDDecimal(tok.val)
	case tokString:
		return tree.DString(tok.val), nil
	case tokBytes:
		return tree.DBytes(tok.val), nil
	case tokIdent:
		if !tok.quoted {
			switch tok.val {
			case "true":
				return tree.DBoolTrue, nil
			case "false":
				return tree.DBoolFalse, nil
			case "null":
				return tree.DNull, nil
			case "date", "timestamp":
				if s.peek().kind == tokString {
					return s.typedString(tok.val, s.advance())
				}
			}
		}
		if s.peek().kind == tokLParen {
			return s.call(tok)
		}
		return s.column(tok)
	}
	return nil, s.syntaxError(tok)
}

func (s *parseState) typedString(kind string, lit token) (tree.Expr, error) {
	ts, err := catalog.ParseTime(lit.val, s.DateFormat)
	if err != nil {
		return nil, err
	}
	if kind == "date" {
		return tree.MakeDDate(ts), nil
	}
	return tree.MakeDTimestamp(ts), nil
}

func (s *parseState) call(name token) (tree.Expr, error) {
	def, ok := builtins.Lookup(name.val)
	if !ok {
		return nil, errors.WithHintf(
			errors.Newf("unknown function: %s()", name.val),
			"available functions: %s", strings.Join(builtins.AllBuiltinNames, ", "))
	}
	s.advance()
	var args []tree.Expr
	if s.peek().kind != tokRParen {
		for {
			arg, err := s.operand()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if s.peek().kind != tokComma {
				break
			}
			s.advance()
		}
	}
	if _, err := s.expect(tokRParen); err != nil {
		return nil, err
	}
	return tree.NewFuncExpr(def, args...)
}

func (s *parseState) column(name token) (tree.Expr, error) {
	for _, col := range s.Table.Columns {
		if col.Name == name.val || (!name.quoted && strings.EqualFold(col.Name, name.val)) {
			return col.Ref(), nil
		}
	}
	return nil, errors.Newf("column %q does not exist in table %q", name.val, s.Table.Name)
}

func parseInt(s string) (tree.Expr, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Out of BIGINT range; keep the exact value as a decimal.
		return tree.ParseDDecimal(s)
	}
	return tree.DInt(i), nil
}
