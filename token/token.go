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

// Package token implements the lexer: source text to a (Token, Span)
// stream, grounded on the hand-written scanner in
// expr/partiql/lex.go (position tracking, eof sentinel, keyword
// lookup) generalized from SQL tokens to the chili token set.
package token

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Keyword
	BinOpWord // identifier-shaped tokens that are binary operators: as, within, in, like, match, join, cross, corr, ...

	Null
	Bool
	Hex
	Int
	Float
	Symbol
	Str
	Quote // single-quoted "column quote"
	Date
	TimeLit
	Timestamp
	Datetime
	Duration

	Op // run of operator characters
	Punc // one of ()[]{};,
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "ident"
	case Keyword:
		return "keyword"
	case BinOpWord:
		return "binop-word"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Hex:
		return "hex"
	case Int:
		return "int"
	case Float:
		return "float"
	case Symbol:
		return "symbol"
	case Str:
		return "string"
	case Quote:
		return "quote"
	case Date:
		return "date"
	case TimeLit:
		return "time"
	case Timestamp:
		return "timestamp"
	case Datetime:
		return "datetime"
	case Duration:
		return "duration"
	case Op:
		return "op"
	case Punc:
		return "punc"
	}
	return "?"
}

// Span is a byte range [Start, End) within the source text.
type Span struct {
	Start, End int
}

// Token is one lexical unit together with its source span. For
// whitespace-joined homogeneous literal runs (e.g. "1 2 3" or
// "`a`b`b"), Text holds the whole run and Parts holds the
// individually-lexed pieces.
type Token struct {
	Kind Kind
	Text string
	Span Span
	Parts []string
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Text, t.Span.Start, t.Span.End)
}

// keywords become Keyword tokens.
var keywords = map[string]bool{
	"function": true, "if": true, "else": true, "while": true,
	"try": true, "catch": true, "return": true, "raise": true,
	"select": true, "update": true, "delete": true, "by": true,
	"from": true, "where": true, "limit": true,
}

// binOpWords look like identifiers but are binary operators.
var binOpWords = map[string]bool{
	"as": true, "bottom": true, "corr": true, "cov0": true, "cov1": true,
	"cross": true, "differ": true, "div": true, "each": true, "emean": true,
	"equal": true, "estd": true, "evar": true, "explode": true, "extend": true,
	"fby": true, "gather": true, "hstack": true, "in": true, "intersect": true,
	"join": true, "like": true, "log": true, "match": true, "matches": true,
	"mmax": true, "mmean": true, "mmedian": true, "mmin": true, "mod": true,
	"mskew": true, "mstd0": true, "mstd1": true, "msum": true, "mvar0": true,
	"mvar1": true, "pad": true, "parallel": true, "pow": true, "quantile": true,
	"reshape": true, "rotate": true, "round": true, "set": true, "shift": true,
	"split": true, "ss": true, "ssr": true, "sub": true, "top": true,
	"union": true, "upsert": true, "vstack": true, "within": true, "wmean": true,
	"wsum": true, "xasc": true, "xbar": true, "xdesc": true, "xrename": true,
	"xreorder": true,
}

// LookupIdent classifies an identifier-shaped run as Keyword,
// BinOpWord, or plain Ident.
func LookupIdent(s string) Kind {
	if keywords[s] {
		return Keyword
	}
	if binOpWords[s] {
		return BinOpWord
	}
	return Ident
}
