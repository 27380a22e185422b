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

package eval

import (
	"github.com/chili-lang/chili/ast"
	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/value"
)

// evalUnary and evalBinary resolve the operator's name the same way
// an Identifier would and invoke its Fn directly with exactly the one or
// two operand values the parser already fixed for that node. Unlike
// a generic *ast.Call, an operator node's arity is never ambiguous,
// so it skips the arity-check/projection machinery in evalCall and
// calls straight into Pure/Impure.
func evalUnary(state *engine.State, frame *engine.Frame, u *ast.UnaryCall) (value.Obj, error) {
	operand, err := evalNode(state, frame, u.Operand)
	if err != nil {
		return nil, err
	}
	fn, err := lookupOperator(state, frame, u.Op)
	if err != nil {
		return nil, err
	}
	return invokeOperator(state, frame, fn, []value.Obj{operand})
}

func evalBinary(state *engine.State, frame *engine.Frame, b *ast.BinaryCall) (value.Obj, error) {
	lhs, err := evalNode(state, frame, b.Lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := evalNode(state, frame, b.Rhs)
	if err != nil {
		return nil, err
	}
	fn, err := lookupOperator(state, frame, b.Op)
	if err != nil {
		return nil, err
	}
	return invokeOperator(state, frame, fn, []value.Obj{lhs, rhs})
}

func lookupOperator(state *engine.State, frame *engine.Frame, name string) (*value.Fn, error) {
	if v, ok := frame.Get(name); ok {
		if fn, ok := v.(*value.Fn); ok {
			return fn, nil
		}
	}
	if v, ok := state.GetVar(name); ok {
		if fn, ok := v.(*value.Fn); ok {
			return fn, nil
		}
	}
	fn, ok := state.Builtin(name)
	if !ok {
		return nil, &chilierr.NameErr{Name: name}
	}
	return fn, nil
}

func invokeOperator(state *engine.State, frame *engine.Frame, fn *value.Fn, args []value.Obj) (value.Obj, error) {
	if fn.Pure != nil {
		return fn.Pure(args)
	}
	if fn.Impure != nil {
		return fn.Impure(state, frame, args)
	}
	return callUserFn(state, frame, fn, args)
}
