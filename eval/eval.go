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

// Package eval implements the recursive tree-walking evaluator over
// ast.Node, in the same style as yaegi's Interp.Eval recursive
// dispatch (one function per node kind, walked directly rather than
// compiled to bytecode, since chili programs are short REPL-driven
// scripts rather than large precompiled pipelines), generalized from
// Go's AST to chili's statement/expression/query node set.
package eval

import (
	"strings"

	"github.com/chili-lang/chili/ast"
	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/parser"
	"github.com/chili-lang/chili/value"
)

// Eval runs a top-level sequence of statements (a parsed source unit)
// and returns the value of the last statement, unwrapping an explicit
// top-level `return`.
func Eval(state *engine.State, frame *engine.Frame, nodes []ast.Node) (value.Obj, error) {
	v, err := evalBlock(state, frame, nodes)
	if err != nil {
		return nil, err
	}
	if ret, ok := v.(value.Return); ok {
		return ret.Value, nil
	}
	return v, nil
}

// evalBlock runs nodes in order, short-circuiting as soon as one
// produces a value.Return sentinel (propagated unwrapped so an outer
// block or call boundary can see it).
func evalBlock(state *engine.State, frame *engine.Frame, nodes []ast.Node) (value.Obj, error) {
	var last value.Obj = value.Null{}
	for _, n := range nodes {
		v, err := evalNode(state, frame, n)
		if err != nil {
			return nil, err
		}
		last = v
		if _, ok := v.(value.Return); ok {
			return v, nil
		}
	}
	return last, nil
}

func evalNode(state *engine.State, frame *engine.Frame, n ast.Node) (value.Obj, error) {
	switch x := n.(type) {
	case *ast.Literal:
		return x.Value, nil

	case *ast.Identifier:
		return evalIdentifier(state, frame, x)

	case *ast.DelayedArgNode:
		return value.DelayedArg{}, nil

	case *ast.UnaryCall:
		return evalUnary(state, frame, x)

	case *ast.BinaryCall:
		return evalBinary(state, frame, x)

	case *ast.Call:
		return evalCall(state, frame, x)

	case *ast.Assign:
		v, err := evalNode(state, frame, x.Value)
		if err != nil {
			return nil, err
		}
		if x.Global || strings.HasPrefix(x.Name, ".") {
			state.SetVar(x.Name, v)
		} else {
			frame.Set(x.Name, v)
		}
		return v, nil

	case *ast.IndexAssign:
		return evalIndexAssign(state, frame, x)

	case *ast.ListLit:
		items := make([]value.Obj, len(x.Items))
		for i, it := range x.Items {
			v, err := evalNode(state, frame, it)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		ml := &value.MixedList{Items: items}
		if s, ok := ml.Unify(); ok {
			return s, nil
		}
		return ml, nil

	case *ast.MatrixLit:
		return evalMatrix(state, frame, x)

	case *ast.DataFrameLit:
		return evalDataFrame(state, frame, x)

	case *ast.DictLit:
		d := value.NewDict()
		for i, k := range x.Keys {
			v, err := evalNode(state, frame, x.Values[i])
			if err != nil {
				return nil, err
			}
			d.Set(k, v)
		}
		return d, nil

	case *ast.ColumnExpr:
		return evalNode(state, frame, x.Expr)

	case *ast.If:
		cond, err := evalNode(state, frame, x.Cond)
		if err != nil {
			return nil, err
		}
		if value.Truthy(cond) {
			return evalBlock(state, frame, x.Then)
		}
		return value.Null{}, nil

	case *ast.IfElse:
		cond, err := evalNode(state, frame, x.Cond)
		if err != nil {
			return nil, err
		}
		if value.Truthy(cond) {
			return evalBlock(state, frame, x.Then)
		}
		return evalBlock(state, frame, x.Else)

	case *ast.While:
		return evalWhile(state, frame, x)

	case *ast.Try:
		return evalTry(state, frame, x)

	case *ast.ReturnStmt:
		v, err := evalNode(state, frame, x.Value)
		if err != nil {
			return nil, err
		}
		return value.Return{Value: v}, nil

	case *ast.Raise:
		v, err := evalNode(state, frame, x.Value)
		if err != nil {
			return nil, err
		}
		return nil, &chilierr.RaiseErr{Msg: v.String()}

	case *ast.ShortCircuit:
		return evalShortCircuit(state, frame, x)

	case *ast.FuncLit:
		return &value.Fn{
			Params: x.Params,
			Arity: len(x.Params),
			Missing: sequentialIndices(len(x.Params)),
			PartArgs: map[int]value.Obj{},
			Statements: x.Body,
			Pos: x.Pos(),
		}, nil

	case *ast.Query:
		return evalQuery(state, frame, x)
	}
	return nil, &chilierr.EvalErr{Msg: "unrecognized node"}
}

func sequentialIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func evalIdentifier(state *engine.State, frame *engine.Frame, id *ast.Identifier) (value.Obj, error) {
	if v, ok := frame.Get(id.Name); ok {
		return v, nil
	}
	if v, ok := state.GetVar(id.Name); ok {
		return v, nil
	}
	if fn, ok := state.Builtin(id.Name); ok {
		return fn, nil
	}
	if _, ok := state.GetParDF(id.Name); ok {
		return &value.ParDataFrame{Name: id.Name}, nil
	}
	return nil, &chilierr.NameErr{Name: id.Name}
}

func evalWhile(state *engine.State, frame *engine.Frame, w *ast.While) (value.Obj, error) {
	for {
		cond, err := evalNode(state, frame, w.Cond)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(cond) {
			return value.Null{}, nil
		}
		v, err := evalBlock(state, frame, w.Body)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(value.Return); ok {
			return v, nil
		}
	}
}

func evalTry(state *engine.State, frame *engine.Frame, t *ast.Try) (value.Obj, error) {
	v, err := evalBlock(state, frame, t.Try)
	if err == nil {
		return v, nil
	}
	frame.Set(t.ErrName, &value.Err{Message: err.Error()})
	return evalBlock(state, frame, t.Catch)
}

func evalShortCircuit(state *engine.State, frame *engine.Frame, sc *ast.ShortCircuit) (value.Obj, error) {
	lhs, err := evalNode(state, frame, sc.Lhs)
	if err != nil {
		return nil, err
	}
	switch sc.Op {
	case ast.OpOr:
		if value.Truthy(lhs) {
			return lhs, nil
		}
		return evalNode(state, frame, sc.Rhs)
	case ast.OpAnd:
		if !value.Truthy(lhs) {
			return lhs, nil
		}
		return evalNode(state, frame, sc.Rhs)
	default: // OpCoalesce
		if _, isNull := lhs.(value.Null); !isNull {
			return lhs, nil
		}
		return evalNode(state, frame, sc.Rhs)
	}
}

func evalMatrix(state *engine.State, frame *engine.Frame, m *ast.MatrixLit) (value.Obj, error) {
	if len(m.Rows) == 0 {
		return &value.Matrix{}, nil
	}
	cols := len(m.Rows[0])
	data := make([]float64, 0, len(m.Rows)*cols)
	for _, row := range m.Rows {
		if len(row) != cols {
			return nil, &chilierr.MismatchedLengthErr{A: cols, B: len(row)}
		}
		for _, e := range row {
			v, err := evalNode(state, frame, e)
			if err != nil {
				return nil, err
			}
			f, ok := value.AsF64(v)
			if !ok {
				return nil, &chilierr.MismatchedArgTypeErr{Want: "numeric", Pos: len(data), Got: v.Code().String()}
			}
			data = append(data, f)
		}
	}
	return &value.Matrix{Rows: len(m.Rows), Cols: cols, Data: data}, nil
}

func evalDataFrame(state *engine.State, frame *engine.Frame, d *ast.DataFrameLit) (value.Obj, error) {
	df := &value.DataFrame{}
	for i, col := range d.Columns {
		v, err := evalNode(state, frame, col.Expr)
		if err != nil {
			return nil, err
		}
		name := col.Name
		if name == "" {
			name = defaultColumnName(i)
		}
		s, err := asColumnSeries(v)
		if err != nil {
			return nil, err
		}
		if err := df.AddColumn(name, s); err != nil {
			return nil, err
		}
	}
	return df, nil
}

func defaultColumnName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < len(letters) {
		return string(letters[i])
	}
	return "col" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}

func asColumnSeries(v value.Obj) (*value.Series, error) {
	switch x := v.(type) {
	case *value.Series:
		return x, nil
	case *value.MixedList:
		if s, ok := x.Unify(); ok {
			return s, nil
		}
		return nil, &chilierr.Generic{Msg: "dataframe column must be a homogeneous series"}
	default:
		s := value.NewSeries(v.Code())
		if err := s.Append(v); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// reparseIfRaw lazily parses a builtin-free, body-only Fn the first
// time it is called . It always uses the extended grammar for stored function
// text.
func reparseIfRaw(fn *value.Fn) error {
	if !fn.IsRaw {
		return nil
	}
	nodes, err := parser.ParseExtended(0, []byte(fn.Body))
	if err != nil {
		return err
	}
	fn.Statements = nodes
	fn.IsRaw = false
	return nil
}
