// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package parser

import (
	"github.com/chili-lang/chili/ast"
	"github.com/chili-lang/chili/token"
	"github.com/chili-lang/chili/value"
)

// legacyCallPostfix handles the two legacy call shapes that have no
// equivalent in the extended surface: a bracketed n-ary call
// `f[a;b;c]`, and whitespace-juxtaposed unary application `f arg`
// (e.g. `count x`, `neg prices`). Either form may chain, so `f[a] b`
// and `count sum x` both parse left-to-right.
func (p *parser) legacyCallPostfix(n ast.Node) (ast.Node, error) {
	for {
		switch {
		case p.isPunc("["):
			args, err := p.legacyBracketArgs()
			if err != nil {
				return nil, err
			}
			n = &ast.Call{Base: ast.Base{P: n.Pos()}, Callee: n, Args: args}
		case canStartPrimary(p.peek()):
			arg, err := p.primary()
			if err != nil {
				return nil, err
			}
			arg, err = p.legacyCallPostfix(arg)
			if err != nil {
				return nil, err
			}
			n = &ast.Call{Base: ast.Base{P: n.Pos()}, Callee: n, Args: []ast.Node{arg}}
			return n, nil
		default:
			return n, nil
		}
	}
}

// canStartPrimary reports whether t can begin a primary expression,
// used to recognize legacy juxtaposed unary application without
// swallowing a following binary operator or binop-word.
func canStartPrimary(t token.Token) bool {
	switch t.Kind {
	case token.Null, token.Bool, token.Hex, token.Int, token.Float, token.Symbol,
		token.Str, token.Quote, token.Date, token.TimeLit, token.Timestamp,
		token.Datetime, token.Duration, token.Ident:
		return true
	case token.Keyword:
		return t.Text == "function" || t.Text == "select" || t.Text == "update" || t.Text == "delete"
	case token.Punc:
		return t.Text == "(" || t.Text == "[" || t.Text == "{"
	}
	return false
}

// legacyBracketArgs parses a ';'-separated argument list inside
// `[...]`; a bare ';' or an immediate ']' denotes a DelayedArg hole.
func (p *parser) legacyBracketArgs() ([]ast.Node, error) {
	p.advance() // '['
	var args []ast.Node
	if p.isPunc("]") {
		p.advance()
		return args, nil
	}
	for {
		if p.isPunc(";") || p.isPunc("]") {
			args = append(args, &ast.DelayedArgNode{Base: ast.Base{P: p.pos_()}})
		} else {
			n, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, n)
		}
		if p.skipPunc(";") {
			continue
		}
		break
	}
	if err := p.expectPunc("]"); err != nil {
		return nil, err
	}
	return args, nil
}

// legacyList parses a semicolon-separated list `(e1; e2; ...)`, with
// the leading '(' already consumed by the caller. A single expression
// with no ';' before the closing ')' is plain parenthesized grouping,
// not a one-element list.
func (p *parser) legacyList(pos value.SourcePos) (ast.Node, error) {
	var items []ast.Node
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.isPunc(";") {
		if err := p.expectPunc(")"); err != nil {
			return nil, err
		}
		return first, nil
	}
	items = append(items, first)
	for p.skipPunc(";") {
		if p.isPunc(")") {
			break
		}
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := p.expectPunc(")"); err != nil {
		return nil, err
	}
	return &ast.ListLit{Base: ast.Base{P: pos}, Items: items}, nil
}

// legacyFuncLit parses `{[p1;p2] stmt1; stmt2; ...}`; the parameter
// bracket is optional (a niladic function is just `{ stmts }`). The
// leading '{' has already been recognized by primary() but not yet
// consumed.
func (p *parser) legacyFuncLit() (ast.Node, error) {
	pos := p.pos_()
	p.advance() // '{'
	var params []string
	if p.isPunc("[") {
		p.advance()
		for !p.isPunc("]") {
			if p.peek().Kind != token.Ident {
				return nil, p.errorf("expected parameter name")
			}
			params = append(params, p.advance().Text)
			if !p.skipPunc(";") {
				break
			}
		}
		if err := p.expectPunc("]"); err != nil {
			return nil, err
		}
	}
	var body []ast.Node
	for !p.isPunc("}") {
		p.skipPunc(";")
		if p.isPunc("}") {
			break
		}
		n, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, n)
		if !p.skipPunc(";") && !p.isPunc("}") {
			return nil, p.errorf("expected ';' or '}' in function body")
		}
	}
	if err := p.expectPunc("}"); err != nil {
		return nil, err
	}
	return &ast.FuncLit{Base: ast.Base{P: pos}, Params: params, Body: body}, nil
}
