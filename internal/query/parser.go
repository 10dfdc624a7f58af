// Copyright 2025 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package query

import (
	"fmt"
	"strings"
)

// parser builds an Expr tree with the usual precedence: "||" binds loosest,
// then "&&", then unary "!", then comparisons and parentheses, mirroring
// Query.cpp's hand-written recursive-descent grammar.
type parser struct {
	lex *lexer
	cur token
}

// Parse compiles a query string into an Expr tree, the first stage of
// Compile.
func Parse(src string) (Expr, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, fmt.Errorf("query: unexpected trailing input near %q", p.cur.text)
	}
	return expr, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.cur.kind == tokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	if p.cur.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, fmt.Errorf("query: expected ')'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseCompare()
}

func (p *parser) parseCompare() (Expr, error) {
	if p.cur.kind != tokIdent {
		return nil, fmt.Errorf("query: expected attribute name, got %q", p.cur.text)
	}
	attr := p.cur.text
	if err := p.advance(); err != nil {
		return nil, err
	}

	var op Op
	switch p.cur.kind {
	case tokEq:
		op = OpEq
	case tokNe:
		op = OpNe
	case tokGt:
		op = OpGt
	case tokGe:
		op = OpGe
	case tokLt:
		op = OpLt
	case tokLe:
		op = OpLe
	default:
		return nil, fmt.Errorf("query: expected comparison operator after %q", attr)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var val Value
	switch p.cur.kind {
	case tokString:
		val = Value{Type: ValString, Str: p.cur.text}
		if op == OpEq && (strings.ContainsRune(val.Str, '*') || strings.ContainsRune(val.Str, '?')) {
			op = OpContains
		}
	case tokNumber:
		v, err := parseNumberLiteral(p.cur.text)
		if err != nil {
			return nil, err
		}
		val = v
	default:
		return nil, fmt.Errorf("query: expected literal value after operator, got %q", p.cur.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	return &Compare{Attr: attr, Op: op, Value: val}, nil
}
