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
)

// query parses the select/update/delete query forms:
//
//	select <op-list>? (by <by-list>)? from <source> (where <cond-list>)? (limit <expr>)?
//	update <op-list> (by <by-list>)? from <source> (where <cond-list>)?
//	delete <op-list>? from <source> (where <cond-list>)?
//
// op-list and by-list items may be a bare expression or `name: expr`
// (producing an ast.ColumnExpr); every clause but the query keyword
// itself and `from` is optional.
func (p *parser) query() (ast.Node, error) {
	pos := p.pos_()
	var op ast.QueryOp
	switch p.advance().Text {
	case "select":
		op = ast.Select
	case "update":
		op = ast.Update
	case "delete":
		op = ast.Delete
	}

	q := &ast.Query{Base: ast.Base{P: pos}, Op: op}

	if !p.isKeyword("by") && !p.isKeyword("from") {
		ops, err := p.columnExprList()
		if err != nil {
			return nil, err
		}
		q.OpExprs = ops
	}

	if p.isKeyword("by") {
		p.advance()
		by, err := p.columnExprList()
		if err != nil {
			return nil, err
		}
		q.ByExprs = by
	}

	if !p.isKeyword("from") {
		return nil, p.errorf("expected 'from' in query")
	}
	p.advance()
	from, err := p.primaryPostfix()
	if err != nil {
		return nil, err
	}
	q.From = from

	if p.isKeyword("where") {
		p.advance()
		where, err := p.exprList()
		if err != nil {
			return nil, err
		}
		q.WhereExprs = where
	}

	if p.isKeyword("limit") {
		p.advance()
		limit, err := p.expr()
		if err != nil {
			return nil, err
		}
		q.Limit = limit
	}

	return q, nil
}

// columnExprList parses a comma-separated list of `name: expr` or
// bare expr items into ast.ColumnExpr nodes (Name == "" for a bare
// expression).
func (p *parser) columnExprList() ([]ast.Node, error) {
	var out []ast.Node
	for {
		pos := p.pos_()
		name := ""
		if p.peek().Kind == token.Ident && p.peekAt(1).Kind == token.Op && p.peekAt(1).Text == ":" {
			name = p.advance().Text
			p.advance() // ':'
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, &ast.ColumnExpr{Base: ast.Base{P: pos}, Name: name, Expr: e})
		if !p.skipPunc(",") {
			break
		}
	}
	return out, nil
}

// exprList parses a comma-separated list of bare expressions, used
// for the where-clause's conjunctive predicate list.
func (p *parser) exprList() ([]ast.Node, error) {
	var out []ast.Node
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if !p.skipPunc(",") {
			break
		}
	}
	return out, nil
}
