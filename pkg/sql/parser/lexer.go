// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package parser

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokDecimal
	tokString
	tokBytes
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	// val is the identifier (lower-cased unless quoted), the operator
	// symbol, the digits of a number, or the decoded string or bytes.
	val string
	// quoted is set for identifiers written in double quotes.
	quoted bool
	pos    int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "EOF"
	}
	return t.val
}

type lexer struct {
	in  string
	pos int
}

func (l *lexer) tokens() ([]token, error) {
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.in) && isSpace(l.in[l.pos]) {
		l.pos++
	}
	start := l.pos
	if l.pos >= len(l.in) {
		return token{kind: tokEOF, pos: start}, nil
	}
	ch := l.in[l.pos]
	switch {
	case ch == '(':
		l.pos++
		return token{kind: tokLParen, val: "(", pos: start}, nil
	case ch == ')':
		l.pos++
		return token{kind: tokRParen, val: ")", pos: start}, nil
	case ch == ',':
		l.pos++
		return token{kind: tokComma, val: ",", pos: start}, nil
	case ch == '=' || ch == '<' || ch == '>' || ch == '!':
		l.pos++
		if l.pos < len(l.in) && (l.in[l.pos] == '=' || (ch == '<' && l.in[l.pos] == '>')) {
			l.pos++
		}
		op := l.in[start:l.pos]
		if op == "!" {
			return token{}, errors.Newf("syntax error at or near %q", op)
		}
		return token{kind: tokOp, val: op, pos: start}, nil
	case ch == '\'':
		s, err := l.quoted('\'')
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, val: s, pos: start}, nil
	case ch == '"':
		s, err := l.quoted('"')
		if err != nil {
			return token{}, err
		}
		return token{kind: tokIdent, val: s, quoted: true, pos: start}, nil
	case (ch == 'x' || ch == 'X') && l.pos+1 < len(l.in) && l.in[l.pos+1] == '\'':
		l.pos++
		s, err := l.quoted('\'')
		if err != nil {
			return token{}, err
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return token{}, errors.Wrapf(err, "invalid hexadecimal bytes literal at position %d", start)
		}
		return token{kind: tokBytes, val: string(b), pos: start}, nil
	case isDigit(ch) || (ch == '-' && l.pos+1 < len(l.in) && (isDigit(l.in[l.pos+1]) || l.in[l.pos+1] == '.')) || ch == '.':
		return l.number()
	case isIdentStart(ch):
		for l.pos < len(l.in) && isIdentChar(l.in[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, val: strings.ToLower(l.in[start:l.pos]), pos: start}, nil
	}
	return token{}, errors.Newf("syntax error: unexpected character %q at position %d", ch, start)
}

// quoted reads a literal delimited by q. A doubled delimiter stands for
// itself.
func (l *lexer) quoted(q byte) (string, error) {
	start := l.pos
	l.pos++
	var buf strings.Builder
	for l.pos < len(l.in) {
		ch := l.in[l.pos]
		l.pos++
		if ch != q {
			buf.WriteByte(ch)
			continue
		}
		if l.pos < len(l.in) && l.in[l.pos] == q {
			buf.WriteByte(q)
			l.pos++
			continue
		}
		return buf.String(), nil
	}
	return "", errors.Newf("unterminated literal starting at position %d", start)
}

func (l *lexer) number() (token, error) {
	start := l.pos
	if l.in[l.pos] == '-' {
		l.pos++
	}
	kind := tokInt
	for l.pos < len(l.in) && isDigit(l.in[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.in) && l.in[l.pos] == '.' {
		kind = tokDecimal
		l.pos++
		for l.pos < len(l.in) && isDigit(l.in[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.in) && (l.in[l.pos] == 'e' || l.in[l.pos] == 'E') {
		kind = tokDecimal
		l.pos++
		if l.pos < len(l.in) && (l.in[l.pos] == '+' || l.in[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.in) && isDigit(l.in[l.pos]) {
			l.pos++
		}
	}
	return token{kind: kind, val: l.in[start:l.pos], pos: start}, nil
}

func isSpace(ch byte) bool { return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' }

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentChar(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
