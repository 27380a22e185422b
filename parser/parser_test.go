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
	"testing"

	"github.com/chili-lang/chili/ast"
)

func mustParseExtended(t *testing.T, src string) []ast.Node {
	t.Helper()
	nodes, err := ParseExtended(1, []byte(src))
	if err != nil {
		t.Fatalf("ParseExtended(%q): %v", src, err)
	}
	return nodes
}

func mustParseLegacy(t *testing.T, src string) []ast.Node {
	t.Helper()
	nodes, err := ParseLegacy(1, []byte(src))
	if err != nil {
		t.Fatalf("ParseLegacy(%q): %v", src, err)
	}
	return nodes
}

func TestExtendedAssignAndArith(t *testing.T) {
	nodes := mustParseExtended(t, "total: 1 + 2 * 3;")
	if len(nodes) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(nodes))
	}
	assign, ok := nodes[0].(*ast.Assign)
	if !ok {
		t.Fatalf("expected *ast.Assign, got %T", nodes[0])
	}
	if assign.Name != "total" {
		t.Errorf("Name = %q, want total", assign.Name)
	}
	// single-precedence left-associative: (1 + 2) * 3
	outer, ok := assign.Value.(*ast.BinaryCall)
	if !ok || outer.Op != "*" {
		t.Fatalf("expected outer '*' BinaryCall, got %#v", assign.Value)
	}
	inner, ok := outer.Lhs.(*ast.BinaryCall)
	if !ok || inner.Op != "+" {
		t.Fatalf("expected inner '+' BinaryCall, got %#v", outer.Lhs)
	}
}

func TestExtendedGlobalAssign(t *testing.T) {
	nodes := mustParseExtended(t, "x:: 5;")
	assign, ok := nodes[0].(*ast.Assign)
	if !ok || !assign.Global {
		t.Fatalf("expected global assign, got %#v", nodes[0])
	}
}

func TestExtendedIfElse(t *testing.T) {
	nodes := mustParseExtended(t, `if (x > 0) { y: 1; } else { y: 2; }`)
	ie, ok := nodes[0].(*ast.IfElse)
	if !ok {
		t.Fatalf("expected *ast.IfElse, got %T", nodes[0])
	}
	if len(ie.Then) != 1 || len(ie.Else) != 1 {
		t.Fatalf("expected 1 statement per branch, got then=%d else=%d", len(ie.Then), len(ie.Else))
	}
}

func TestExtendedWhileAndCall(t *testing.T) {
	nodes := mustParseExtended(t, `while (i < 10) { sum(i, 1); }`)
	w, ok := nodes[0].(*ast.While)
	if !ok {
		t.Fatalf("expected *ast.While, got %T", nodes[0])
	}
	call, ok := w.Body[0].(*ast.Call)
	if !ok {
		t.Fatalf("expected *ast.Call in while body, got %T", w.Body[0])
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
}

func TestExtendedTryCatch(t *testing.T) {
	nodes := mustParseExtended(t, `try { raise "boom"; } catch (e) { y: e; }`)
	tr, ok := nodes[0].(*ast.Try)
	if !ok {
		t.Fatalf("expected *ast.Try, got %T", nodes[0])
	}
	if tr.ErrName != "e" {
		t.Errorf("ErrName = %q, want e", tr.ErrName)
	}
	if _, ok := tr.Try[0].(*ast.Raise); !ok {
		t.Fatalf("expected *ast.Raise in try block, got %T", tr.Try[0])
	}
}

func TestExtendedShortCircuit(t *testing.T) {
	nodes := mustParseExtended(t, "y: a && b || c;")
	assign := nodes[0].(*ast.Assign)
	outer, ok := assign.Value.(*ast.ShortCircuit)
	if !ok || outer.Op != ast.OpOr {
		t.Fatalf("expected outer OpOr, got %#v", assign.Value)
	}
	if _, ok := outer.Lhs.(*ast.ShortCircuit); !ok {
		t.Fatalf("expected nested ShortCircuit on lhs, got %#v", outer.Lhs)
	}
}

func TestExtendedListAndDict(t *testing.T) {
	nodes := mustParseExtended(t, `x: [1, 2, 3]; y: {a: 1, b: 2};`)
	lst, ok := nodes[0].(*ast.Assign).Value.(*ast.ListLit)
	if !ok || len(lst.Items) != 3 {
		t.Fatalf("expected 3-item ListLit, got %#v", nodes[0])
	}
	dict, ok := nodes[1].(*ast.Assign).Value.(*ast.DictLit)
	if !ok || len(dict.Keys) != 2 {
		t.Fatalf("expected 2-key DictLit, got %#v", nodes[1])
	}
}

func TestExtendedDataFrameLiteral(t *testing.T) {
	nodes := mustParseExtended(t, `t: ([] a: [1, 2], b: [3, 4]);`)
	df, ok := nodes[0].(*ast.Assign).Value.(*ast.DataFrameLit)
	if !ok || len(df.Columns) != 2 {
		t.Fatalf("expected 2-column DataFrameLit, got %#v", nodes[0])
	}
	if df.Columns[0].Name != "a" || df.Columns[1].Name != "b" {
		t.Fatalf("unexpected column names: %#v", df.Columns)
	}
}

func TestExtendedFunctionLiteral(t *testing.T) {
	nodes := mustParseExtended(t, `f: function(a, b) { return a + b; };`)
	fn, ok := nodes[0].(*ast.Assign).Value.(*ast.FuncLit)
	if !ok {
		t.Fatalf("expected *ast.FuncLit, got %#v", nodes[0])
	}
	if len(fn.Params) != 2 || fn.Params[0] != "a" || fn.Params[1] != "b" {
		t.Fatalf("unexpected params: %#v", fn.Params)
	}
	if _, ok := fn.Body[0].(*ast.ReturnStmt); !ok {
		t.Fatalf("expected ReturnStmt body, got %T", fn.Body[0])
	}
}

func TestExtendedIndexedAssign(t *testing.T) {
	nodes := mustParseExtended(t, "t(`a): 5;")
	ia, ok := nodes[0].(*ast.IndexAssign)
	if !ok {
		t.Fatalf("expected *ast.IndexAssign, got %#v", nodes[0])
	}
	if ia.Name != "t" || len(ia.Index) != 1 {
		t.Fatalf("unexpected IndexAssign: %#v", ia)
	}
}

func TestExtendedQuerySelect(t *testing.T) {
	nodes := mustParseExtended(t, "select a, total: sum(b) by g from t where a > 0 limit 10;")
	q, ok := nodes[0].(*ast.Query)
	if !ok {
		t.Fatalf("expected *ast.Query, got %T", nodes[0])
	}
	if q.Op != ast.Select {
		t.Errorf("Op = %v, want Select", q.Op)
	}
	if len(q.OpExprs) != 2 {
		t.Fatalf("expected 2 op-exprs, got %d", len(q.OpExprs))
	}
	if q.OpExprs[1].(*ast.ColumnExpr).Name != "total" {
		t.Errorf("expected named column 'total'")
	}
	if len(q.ByExprs) != 1 {
		t.Fatalf("expected 1 by-expr, got %d", len(q.ByExprs))
	}
	if ident, ok := q.From.(*ast.Identifier); !ok || ident.Name != "t" {
		t.Fatalf("expected From identifier 't', got %#v", q.From)
	}
	if len(q.WhereExprs) != 1 {
		t.Fatalf("expected 1 where-expr, got %d", len(q.WhereExprs))
	}
	if q.Limit == nil {
		t.Fatalf("expected non-nil Limit")
	}
}

func TestLegacyUnaryApplicationAndBracketCall(t *testing.T) {
	nodes := mustParseLegacy(t, "count x; f[a;b]")
	call1, ok := nodes[0].(*ast.Call)
	if !ok || len(call1.Args) != 1 {
		t.Fatalf("expected unary juxtaposed Call, got %#v", nodes[0])
	}
	callee, ok := call1.Callee.(*ast.Identifier)
	if !ok || callee.Name != "count" {
		t.Fatalf("expected callee 'count', got %#v", call1.Callee)
	}

	call2, ok := nodes[1].(*ast.Call)
	if !ok || len(call2.Args) != 2 {
		t.Fatalf("expected 2-ary bracket Call, got %#v", nodes[1])
	}
}

func TestLegacyListVsGrouping(t *testing.T) {
	nodes := mustParseLegacy(t, "(1); (1;2;3)")
	if _, ok := nodes[0].(*ast.Literal); !ok {
		t.Fatalf("expected grouped literal, got %#v", nodes[0])
	}
	lst, ok := nodes[1].(*ast.ListLit)
	if !ok || len(lst.Items) != 3 {
		t.Fatalf("expected 3-item ListLit, got %#v", nodes[1])
	}
}

func TestLegacyFunctionLiteral(t *testing.T) {
	nodes := mustParseLegacy(t, "f: {[a;b] a + b}")
	fn, ok := nodes[0].(*ast.Assign).Value.(*ast.FuncLit)
	if !ok {
		t.Fatalf("expected *ast.FuncLit, got %#v", nodes[0])
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %#v", fn.Params)
	}
}

func TestDelayedArgHole(t *testing.T) {
	nodes := mustParseExtended(t, "g: add(1,, 3);")
	call, ok := nodes[0].(*ast.Assign).Value.(*ast.Call)
	if !ok || len(call.Args) != 3 {
		t.Fatalf("expected 3-arg Call, got %#v", nodes[0])
	}
	if _, ok := call.Args[1].(*ast.DelayedArgNode); !ok {
		t.Fatalf("expected DelayedArgNode hole at position 1, got %#v", call.Args[1])
	}
}
