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

// Package ast defines the single node vocabulary shared by both
// surface-syntax parsers and the evaluator, grounded
// on the Visitor/Node shape of expr/node.go generalized from an
// immutable SQL expression tree to a mutable statement+expression
// tree with two call shapes (unary/binary) and query forms.
package ast

import "github.com/chili-lang/chili/value"

// Node is implemented by every AST variant.
type Node interface {
	Pos() value.SourcePos
}

// Visitor mirrors expr.Visitor: Walk traverses a tree in depth-first
// order, calling v.Visit(n) for every node, followed by
// v.Visit(nil) once its children are done.
type Visitor interface {
	Visit(Node) Visitor
}

// Walk traverses n in depth-first order.
func Walk(v Visitor, n Node) {
	if n == nil || v == nil {
		return
	}
	v2 := v.Visit(n)
	if v2 == nil {
		return
	}
	for _, c := range children(n) {
		Walk(v2, c)
	}
	v2.Visit(nil)
}

func children(n Node) []Node {
	switch x := n.(type) {
	case *UnaryCall:
		return []Node{x.Operand}
	case *BinaryCall:
		return []Node{x.Lhs, x.Rhs}
	case *Call:
		out := make([]Node, 0, len(x.Args))
		for _, a := range x.Args {
			if a != nil {
				out = append(out, a)
			}
		}
		return out
	case *Assign:
		return []Node{x.Value}
	case *IndexAssign:
		out := append([]Node{}, x.Index...)
		return append(out, x.Value)
	case *ListLit:
		return x.Items
	case *MatrixLit:
		var out []Node
		for _, row := range x.Rows {
			out = append(out, row...)
		}
		return out
	case *DataFrameLit:
		out := make([]Node, len(x.Columns))
		for i, c := range x.Columns {
			out[i] = c.Expr
		}
		return out
	case *DictLit:
		out := make([]Node, len(x.Values))
		copy(out, x.Values)
		return out
	case *ColumnExpr:
		return []Node{x.Expr}
	case *If:
		out := []Node{x.Cond}
		out = append(out, x.Then...)
		return out
	case *IfElse:
		out := []Node{x.Cond}
		out = append(out, x.Then...)
		out = append(out, x.Else...)
		return out
	case *While:
		out := []Node{x.Cond}
		return append(out, x.Body...)
	case *Try:
		out := append([]Node{}, x.Try...)
		return append(out, x.Catch...)
	case *ReturnStmt:
		return []Node{x.Value}
	case *Raise:
		return []Node{x.Value}
	case *ShortCircuit:
		return []Node{x.Lhs, x.Rhs}
	case *FuncLit:
		return x.Body
	case *Query:
		var out []Node
		out = append(out, x.OpExprs...)
		out = append(out, x.ByExprs...)
		if x.From != nil {
			out = append(out, x.From)
		}
		out = append(out, x.WhereExprs...)
		if x.Limit != nil {
			out = append(out, x.Limit)
		}
		return out
	}
	return nil
}

// Base is embedded by every node to carry its SourcePos.
type Base struct{ P value.SourcePos }

func (b Base) Pos() value.SourcePos { return b.P }

// Literal wraps a constant Obj produced directly by the parser
// (number/string/symbol/null/bool literals).
type Literal struct {
	Base
	Value value.Obj
}

// Identifier is a bare name reference.
type Identifier struct {
	Base
	Name string
}

// DelayedArgNode marks an explicit partial-application hole in a
// call's argument list.
type DelayedArgNode struct{ Base }

// UnaryCall applies a unary operator to one operand, e.g. `-x` or
// `count x` (legacy unary application).
type UnaryCall struct {
	Base
	Op string
	Operand Node
}

// BinaryCall applies a binary operator to two operands.
type BinaryCall struct {
	Base
	Op string
	Lhs, Rhs Node
}

// Call is an n-ary call `f(a,, c)`; a nil entry in Args denotes a
// DelayedArg hole left by a bare comma.
type Call struct {
	Base
	Callee Node
	Args []Node
}

// Assign binds Name (possibly a dotted global name) to the result
// of Value.
type Assign struct {
	Base
	Name string
	Global bool // true for a leading-dot name, or legacy `::`
	Value Node
}

// IndexAssign performs `name(idx...): value` / `name[idx...]: value`.
type IndexAssign struct {
	Base
	Name string
	Index []Node
	Value Node
}

// ListLit is a list literal `[e, ...]` / `(e; e; ...)`.
type ListLit struct {
	Base
	Items []Node
}

// MatrixLit is `[[e,...],[e,...],...]`.
type MatrixLit struct {
	Base
	Rows [][]Node
}

// DataFrameColumn is one column spec inside a DataFrameLit: either
// `name: expr` (Name != "") or a bare `expr` (auto-named later).
type DataFrameColumn struct {
	Name string
	Expr Node
}

// DataFrameLit is `([] col, col, ...)`.
type DataFrameLit struct {
	Base
	Columns []DataFrameColumn
}

// DictLit is `{k: v, ...}`; keys are bare identifiers.
type DictLit struct {
	Base
	Keys []string
	Values []Node
}

// ColumnExpr names an expression's output column inside a query
// op-list, e.g. `newCol: col2`.
type ColumnExpr struct {
	Base
	Name string
	Expr Node
}

// If is a statement-level `if (cond) { ... }` with no else branch.
type If struct {
	Base
	Cond Node
	Then []Node
}

// IfElse is an if/else chain; nested `else if` is represented by
// making Else a single-element []Node containing another *IfElse.
type IfElse struct {
	Base
	Cond Node
	Then, Else []Node
}

// While is a `while (cond) { ... }` loop.
type While struct {
	Base
	Cond Node
	Body []Node
}

// Try is `try { ... } catch { ... }`, binding the caught error text
// to ErrName inside the catch block.
type Try struct {
	Base
	Try, Catch []Node
	ErrName string
}

// ReturnStmt wraps the produced value in a Return marker.
type ReturnStmt struct {
	Base
	Value Node
}

// Raise fails evaluation with the stringified Value.
type Raise struct {
	Base
	Value Node
}

// ShortCircuitOp enumerates the three short-circuit operators.
type ShortCircuitOp int

const (
	OpOr ShortCircuitOp = iota
	OpAnd
	OpCoalesce
)

// ShortCircuit is `lhs || rhs`, `lhs && rhs`, or `lhs ?? rhs`.
type ShortCircuit struct {
	Base
	Op ShortCircuitOp
	Lhs, Rhs Node
}

// QueryOp enumerates the four query forms.
type QueryOp int

const (
	Select QueryOp = iota
	Update
	Delete
	Exec
)

// FuncLit is a function literal, `function(p1, p2) { ... }` in the
// extended syntax or `{[p1;p2] ...}` in the legacy syntax.
type FuncLit struct {
	Base
	Params []string
	Body []Node
}

// Query is a select/update/delete/exec form; every clause is
// optional except From.
type Query struct {
	Base
	Op QueryOp
	OpExprs []Node
	ByExprs []Node
	From Node
	WhereExprs []Node
	Limit Node
}
