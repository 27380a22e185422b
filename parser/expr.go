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
	"strings"

	"github.com/chili-lang/chili/ast"
	"github.com/chili-lang/chili/token"
	"github.com/chili-lang/chili/value"
)

// expr parses one expression, including an assignment form at its
// head if the shape matches one of three assignment target shapes
// (plain name, dotted global name, indexed target).
func (p *parser) expr() (ast.Node, error) {
	pos := p.pos_()
	lhs, err := p.primaryPostfix()
	if err != nil {
		return nil, err
	}

	if p.isOp(":") {
		return p.finishAssign(pos, lhs)
	}
	if p.isOp("::") {
		p.advance()
		id, ok := lhs.(*ast.Identifier)
		if !ok {
			return nil, p.errorf("'::' global assignment requires a plain name on the left")
		}
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Base: ast.Base{P: pos}, Name: id.Name, Global: true, Value: rhs}, nil
	}
	return p.continueBinaryChain(pos, lhs)
}

func (p *parser) finishAssign(pos value.SourcePos, lhs ast.Node) (ast.Node, error) {
	p.advance() // ':'
	rhs, err := p.expr()
	if err != nil {
		return nil, err
	}
	switch target := lhs.(type) {
	case *ast.Identifier:
		return &ast.Assign{Base: ast.Base{P: pos}, Name: target.Name, Global: strings.HasPrefix(target.Name, "."), Value: rhs}, nil
	case *ast.Call:
		id, ok := target.Callee.(*ast.Identifier)
		if !ok {
			return nil, p.errorf("invalid indexed-assignment target")
		}
		return &ast.IndexAssign{Base: ast.Base{P: pos}, Name: id.Name, Index: target.Args, Value: rhs}, nil
	}
	return nil, p.errorf("invalid assignment target")
}

// continueBinaryChain implements the "single precedence level,
// left-associative" general binary operator loop, folding in the
// three short-circuit operators as their own node kind.
func (p *parser) continueBinaryChain(pos value.SourcePos, lhs ast.Node) (ast.Node, error) {
	for {
		if p.isOp("||") || p.isOp("&&") || p.isOp("??") {
			opTok := p.advance()
			rhs, err := p.primaryPostfix()
			if err != nil {
				return nil, err
			}
			var op ast.ShortCircuitOp
			switch opTok.Text {
			case "||":
				op = ast.OpOr
			case "&&":
				op = ast.OpAnd
			default:
				op = ast.OpCoalesce
			}
			lhs = &ast.ShortCircuit{Base: ast.Base{P: pos}, Op: op, Lhs: lhs, Rhs: rhs}
			continue
		}
		t := p.peek()
		if (t.Kind == token.Op && t.Text != ":" && t.Text != "::") || t.Kind == token.BinOpWord {
			p.advance()
			rhs, err := p.primaryPostfix()
			if err != nil {
				return nil, err
			}
			lhs = &ast.BinaryCall{Base: ast.Base{P: pos}, Op: t.Text, Lhs: lhs, Rhs: rhs}
			continue
		}
		break
	}
	return lhs, nil
}

// primaryPostfix parses one primary expression and then any
// following postfix call syntax (extended form only: `expr(args)`,
// which may chain, e.g. applying a projection's result again).
func (p *parser) primaryPostfix() (ast.Node, error) {
	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.legacy {
		return p.legacyCallPostfix(n)
	}
	for p.isPunc("(") {
		args, err := p.callArgs()
		if err != nil {
			return nil, err
		}
		n = &ast.Call{Base: ast.Base{P: n.Pos()}, Callee: n, Args: args}
	}
	return n, nil
}

// callArgs parses a parenthesised, comma-separated argument list; a
// bare comma (nothing before the next comma or the closing paren)
// denotes a DelayedArg hole.
func (p *parser) callArgs() ([]ast.Node, error) {
	p.advance() // '('
	var args []ast.Node
	if p.isPunc(")") {
		p.advance()
		return args, nil
	}
	for {
		if p.isPunc(",") || p.isPunc(")") {
			args = append(args, &ast.DelayedArgNode{Base: ast.Base{P: p.pos_()}})
		} else {
			n, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, n)
		}
		if p.skipPunc(",") {
			continue
		}
		break
	}
	if err := p.expectPunc(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) primary() (ast.Node, error) {
	pos := p.pos_()
	t := p.peek()

	switch t.Kind {
	case token.Null, token.Bool, token.Hex, token.Int, token.Float, token.Symbol,
		token.Str, token.Quote, token.Date, token.TimeLit, token.Timestamp,
		token.Datetime, token.Duration:
		p.advance()
		v, err := literalValue(t)
		if err != nil {
			return nil, err
		}
		return &ast.Literal{Base: ast.Base{P: pos}, Value: v}, nil

	case token.Ident:
		p.advance()
		return &ast.Identifier{Base: ast.Base{P: pos}, Name: t.Text}, nil

	case token.Keyword:
		switch t.Text {
		case "function":
			return p.functionLiteral()
		case "select", "update", "delete":
			return p.query()
		}
		return nil, p.errorf("unexpected keyword %q in expression", t.Text)

	case token.Op:
		// unary prefix operator, binds to one primary
		p.advance()
		operand, err := p.primaryPostfix()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryCall{Base: ast.Base{P: pos}, Op: t.Text, Operand: operand}, nil

	case token.Punc:
		switch t.Text {
		case "(":
			return p.parenOrDataFrame()
		case "[":
			return p.listOrMatrix()
		case "{":
			if p.legacy {
				return p.legacyFuncLit()
			}
			return p.dictLiteral()
		}
	}
	return nil, p.errorf("unexpected token %v", t)
}

func (p *parser) parenOrDataFrame() (ast.Node, error) {
	pos := p.pos_()
	p.advance() // '('
	if p.isPunc("[") && p.peekAt(1).Kind == token.Punc && p.peekAt(1).Text == "]" {
		p.advance() // '['
		p.advance() // ']'
		return p.dataFrameLiteral(pos)
	}
	if p.legacy {
		return p.legacyList(pos)
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunc(")"); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) dataFrameLiteral(pos value.SourcePos) (ast.Node, error) {
	var cols []ast.DataFrameColumn
	for !p.isPunc(")") {
		col, err := p.dataFrameColumn()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if !p.skipPunc(",") {
			break
		}
	}
	if err := p.expectPunc(")"); err != nil {
		return nil, err
	}
	return &ast.DataFrameLit{Base: ast.Base{P: pos}, Columns: cols}, nil
}

func (p *parser) dataFrameColumn() (ast.DataFrameColumn, error) {
	if p.peek().Kind == token.Ident && p.peekAt(1).Kind == token.Op && p.peekAt(1).Text == ":" {
		name := p.advance().Text
		p.advance() // ':'
		e, err := p.expr()
		if err != nil {
			return ast.DataFrameColumn{}, err
		}
		return ast.DataFrameColumn{Name: name, Expr: e}, nil
	}
	e, err := p.expr()
	if err != nil {
		return ast.DataFrameColumn{}, err
	}
	return ast.DataFrameColumn{Expr: e}, nil
}

func (p *parser) listOrMatrix() (ast.Node, error) {
	pos := p.pos_()
	p.advance() // '['
	if p.isPunc("[") {
		return p.matrixLiteral(pos)
	}
	var items []ast.Node
	for !p.isPunc("]") {
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
		if !p.skipPunc(",") {
			break
		}
	}
	if err := p.expectPunc("]"); err != nil {
		return nil, err
	}
	return &ast.ListLit{Base: ast.Base{P: pos}, Items: items}, nil
}

func (p *parser) matrixLiteral(pos value.SourcePos) (ast.Node, error) {
	var rows [][]ast.Node
	for p.isPunc("[") {
		p.advance()
		var row []ast.Node
		for !p.isPunc("]") {
			n, err := p.expr()
			if err != nil {
				return nil, err
			}
			row = append(row, n)
			if !p.skipPunc(",") {
				break
			}
		}
		if err := p.expectPunc("]"); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if !p.skipPunc(",") {
			break
		}
	}
	if err := p.expectPunc("]"); err != nil {
		return nil, err
	}
	return &ast.MatrixLit{Base: ast.Base{P: pos}, Rows: rows}, nil
}

func (p *parser) dictLiteral() (ast.Node, error) {
	pos := p.pos_()
	p.advance() // '{'
	var keys []string
	var vals []ast.Node
	for !p.isPunc("}") {
		if p.peek().Kind != token.Ident {
			return nil, p.errorf("expected identifier key in dict literal")
		}
		keys = append(keys, p.advance().Text)
		if !p.isOp(":") {
			return nil, p.errorf("expected ':' in dict literal")
		}
		p.advance()
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		if !p.skipPunc(",") {
			break
		}
	}
	if err := p.expectPunc("}"); err != nil {
		return nil, err
	}
	return &ast.DictLit{Base: ast.Base{P: pos}, Keys: keys, Values: vals}, nil
}

func (p *parser) functionLiteral() (ast.Node, error) {
	pos := p.pos_()
	p.advance() // 'function'
	if err := p.expectPunc("("); err != nil {
		return nil, err
	}
	var params []string
	for !p.isPunc(")") {
		if p.peek().Kind != token.Ident {
			return nil, p.errorf("expected parameter name")
		}
		params = append(params, p.advance().Text)
		if !p.skipPunc(",") {
			break
		}
	}
	if err := p.expectPunc(")"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.FuncLit{Base: ast.Base{P: pos}, Params: params, Body: body}, nil
}
