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

// Package parser implements the two grammar-driven entry points
// (ParseExtended, ParseLegacy) that both build the single ast.Node
// vocabulary, grounded on expr/sfw.go's Binding shape for query
// clauses, covering the legacy-vs-extended surface differences
// (statement delimiters, `f arg` unary application, `f[a;b;c]` n-ary
// legacy calls).
//
// Open-question resolution (see DESIGN.md): both surfaces delimit
// statements inside blocks with ';', matching the function-literal
// grammar and every worked example; a "extended uses ','" reading is
// treated as referring only to top-level list items, not block
// statements.
package parser

import (
	"fmt"

	"github.com/chili-lang/chili/ast"
	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/token"
	"github.com/chili-lang/chili/value"
)

// parser holds the shared state for both surface grammars; Legacy
// selects the call/list/function-literal dialect.
type parser struct {
	toks []token.Token
	pos int
	sourceID uint32
	legacy bool
}

// ParseExtended parses the C-like extended surface.
func ParseExtended(sourceID uint32, src []byte) ([]ast.Node, error) {
	return parse(sourceID, src, false)
}

// ParseLegacy parses the bracket-list legacy surface.
func ParseLegacy(sourceID uint32, src []byte) ([]ast.Node, error) {
	return parse(sourceID, src, true)
}

func parse(sourceID uint32, src []byte, legacy bool) ([]ast.Node, error) {
	p := &parser{toks: token.New(src).Lex(), sourceID: sourceID, legacy: legacy}
	var out []ast.Node
	for !p.atEnd() {
		p.skipPunc(";")
		if p.atEnd() {
			break
		}
		n, err := p.statement()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		if !p.skipPunc(";") && !p.atEnd() {
			return nil, p.errorf("expected ';' between statements")
		}
	}
	return out, nil
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token.Token {
	if p.atEnd() {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(off int) token.Token {
	if p.pos+off >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos+off]
}

func (p *parser) advance() token.Token {
	t := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *parser) isPunc(s string) bool {
	t := p.peek()
	return t.Kind == token.Punc && t.Text == s
}

func (p *parser) isOp(s string) bool {
	t := p.peek()
	return t.Kind == token.Op && t.Text == s
}

func (p *parser) isKeyword(s string) bool {
	t := p.peek()
	return t.Kind == token.Keyword && t.Text == s
}

func (p *parser) skipPunc(s string) bool {
	if p.isPunc(s) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectPunc(s string) error {
	if !p.skipPunc(s) {
		return p.errorf("expected %q", s)
	}
	return nil
}

func (p *parser) pos_() value.SourcePos {
	off := 0
	if !p.atEnd() {
		off = p.toks[p.pos].Span.Start
	} else if len(p.toks) > 0 {
		off = p.toks[len(p.toks)-1].Span.End
	}
	return value.SourcePos{ByteOffset: off, SourceID: p.sourceID}
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	t := p.peek()
	span := [2]int{t.Span.Start, t.Span.End}
	return &chilierr.ParserErr{Msg: msg, Span: span, AtEOF: p.atEnd()}
}

// ---- statements ----

func (p *parser) statement() (ast.Node, error) {
	switch {
	case p.isKeyword("if"):
		return p.ifStmt()
	case p.isKeyword("while"):
		return p.whileStmt()
	case p.isKeyword("try"):
		return p.tryStmt()
	case p.isKeyword("return"):
		return p.returnStmt()
	case p.isKeyword("raise"):
		return p.raiseStmt()
	}
	return p.expr()
}

func (p *parser) block() ([]ast.Node, error) {
	if err := p.expectPunc("{"); err != nil {
		return nil, err
	}
	var out []ast.Node
	for !p.isPunc("}") {
		p.skipPunc(";")
		if p.isPunc("}") {
			break
		}
		n, err := p.statement()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		if !p.skipPunc(";") && !p.isPunc("}") {
			return nil, p.errorf("expected ';' or '}'")
		}
	}
	return out, p.expectPunc("}")
}

func (p *parser) ifStmt() (ast.Node, error) {
	pos := p.pos_()
	p.advance() // if
	if err := p.expectPunc("("); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunc(")"); err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("else") {
		return &ast.If{Base: ast.Base{P: pos}, Cond: cond, Then: then}, nil
	}
	p.advance() // else
	var els []ast.Node
	if p.isKeyword("if") {
		n, err := p.ifStmt()
		if err != nil {
			return nil, err
		}
		els = []ast.Node{n}
	} else {
		els, err = p.block()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfElse{Base: ast.Base{P: pos}, Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) whileStmt() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	if err := p.expectPunc("("); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunc(")"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.While{Base: ast.Base{P: pos}, Cond: cond, Body: body}, nil
}

func (p *parser) tryStmt() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	tryBlock, err := p.block()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("catch") {
		return nil, p.errorf("expected 'catch' after 'try' block")
	}
	p.advance()
	errName := "err"
	if p.isPunc("(") {
		p.advance()
		if p.peek().Kind != token.Ident {
			return nil, p.errorf("expected identifier in catch(...)")
		}
		errName = p.advance().Text
		if err := p.expectPunc(")"); err != nil {
			return nil, err
		}
	}
	catchBlock, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.Try{Base: ast.Base{P: pos}, Try: tryBlock, Catch: catchBlock, ErrName: errName}, nil
}

func (p *parser) returnStmt() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	var v ast.Node = &ast.Literal{Base: ast.Base{P: pos}, Value: value.Null{}}
	if !p.isPunc(";") && !p.isPunc("}") && !p.atEnd() {
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		v = n
	}
	return &ast.ReturnStmt{Base: ast.Base{P: pos}, Value: v}, nil
}

func (p *parser) raiseStmt() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	v, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &ast.Raise{Base: ast.Base{P: pos}, Value: v}, nil
}
