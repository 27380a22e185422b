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

// evalCall implements the call-dispatch rules on the callee's value:
// (1) a builtin or user Fn is called, with partial application when
// arguments are missing or left as holes; (2) a Dict or DataFrame is
// indexed by its single argument; (3) an I64 is a connection handle
// and its single argument is forwarded to the peer; (4) a MixedList
// is indexed by its single argument. Any other callee or argument
// count is NotYetImplemented.
func evalCall(state *engine.State, frame *engine.Frame, c *ast.Call) (value.Obj, error) {
	callee, err := evalNode(state, frame, c.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]value.Obj, len(c.Args))
	for i, a := range c.Args {
		if a == nil {
			args[i] = value.DelayedArg{}
			continue
		}
		v, err := evalNode(state, frame, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch x := callee.(type) {
	case *value.Fn:
		return callFn(state, frame, x, args)
	case *value.Dict:
		if len(args) == 1 {
			return indexDict(x, args[0])
		}
	case *value.DataFrame:
		if len(args) == 1 {
			return indexDataFrame(x, args[0])
		}
	case value.I64:
		if len(args) == 1 {
			return forwardToHandle(state, int64(x), args[0])
		}
	case *value.MixedList:
		if len(args) == 1 {
			return indexMixedList(x, args[0])
		}
	}
	return nil, &chilierr.NotYetImplemented{What: "call dispatch for " + callee.Code().String()}
}

// forwardToHandle implements call-dispatch rule 3: an I64 callee is
// a connection handle id, and calling it forwards the single argument
// to the peer and returns its response.
func forwardToHandle(state *engine.State, handle int64, arg value.Obj) (value.Obj, error) {
	h, ok := state.GetHandle(handle)
	if !ok {
		return nil, &chilierr.InvalidHandleErr{Handle: handle}
	}
	if h.RoundTrip == nil {
		return nil, &chilierr.NotYetImplemented{What: "remote handle forwarding over the wire layer"}
	}
	return h.RoundTrip(arg)
}

// CallFn calls fn with args, exported so callers outside this package
// (the disconnect-callback path in cmd/chilid) can invoke an
// already-resolved *value.Fn without going through name lookup.
func CallFn(state *engine.State, frame *engine.Frame, fn *value.Fn, args []value.Obj) (value.Obj, error) {
	return callFn(state, frame, fn, args)
}

// callFn applies the arity-check/projection half of call-dispatch
// rule 1; invokeFull runs what's left once Missing is empty.
func callFn(state *engine.State, frame *engine.Frame, fn *value.Fn, args []value.Obj) (value.Obj, error) {
	if fn.IsRaw {
		if err := reparseIfRaw(fn); err != nil {
			return nil, err
		}
	}
	if fn.Arity == 0 && len(args) == 1 && (isHole(args[0]) || isEmptyContainer(args[0])) {
		args = nil
	}
	if len(args) > len(fn.Missing) {
		return nil, &chilierr.MismatchedArgNumErr{Want: len(fn.Missing), Got: len(args)}
	}
	projected := fn.Project(args)
	if len(projected.Missing) > 0 {
		return projected, nil
	}
	return invokeFull(state, frame, projected)
}

// invokeFull dispatches a fully-applied Fn (Missing is empty) to its
// pure/impure/user-defined body, ordering PartArgs back into
// positional order first.
func invokeFull(state *engine.State, frame *engine.Frame, fn *value.Fn) (value.Obj, error) {
	argv := make([]value.Obj, fn.Arity)
	for i := range argv {
		v, ok := fn.PartArgs[i]
		if !ok {
			v = value.Null{}
		}
		argv[i] = v
	}
	if fn.Pure != nil {
		return fn.Pure(argv)
	}
	if fn.Impure != nil {
		return fn.Impure(state, frame, argv)
	}
	return callUserFn(state, frame, fn, argv)
}

// callUserFn pushes a new stack frame, binds parameters, and runs the
// function body, unwrapping an explicit Return.
func callUserFn(state *engine.State, frame *engine.Frame, fn *value.Fn, argv []value.Obj) (value.Obj, error) {
	child, err := frame.Child(fn.Name)
	if err != nil {
		return nil, err
	}
	for i, p := range fn.Params {
		if i < len(argv) {
			child.Set(p, argv[i])
		}
	}
	body, _ := fn.Statements.([]ast.Node)
	result, err := evalBlock(state, child, body)
	if err != nil {
		return nil, err
	}
	if ret, ok := result.(value.Return); ok {
		return ret.Value, nil
	}
	return result, nil
}

func isHole(v value.Obj) bool {
	_, ok := v.(value.DelayedArg)
	return ok
}

func isEmptyContainer(v value.Obj) bool {
	switch x := v.(type) {
	case *value.Series:
		return x.Len() == 0
	case *value.MixedList:
		return len(x.Items) == 0
	case *value.Dict:
		return len(x.Keys) == 0
	}
	return false
}

// evalIndexAssign implements `name(idx): value` / `name[idx]: value`.
// Only Dict targets are supported, writing d[k]
// inserts or overwrites the key.
func evalIndexAssign(state *engine.State, frame *engine.Frame, ia *ast.IndexAssign) (value.Obj, error) {
	current, ok := frame.Get(ia.Name)
	local := ok
	if !ok {
		current, ok = state.GetVar(ia.Name)
	}
	if !ok {
		return nil, &chilierr.NameErr{Name: ia.Name}
	}
	d, ok := current.(*value.Dict)
	if !ok {
		return nil, &chilierr.NotYetImplemented{What: "indexed assignment for " + current.Code().String()}
	}
	if len(ia.Index) != 1 {
		return nil, &chilierr.MismatchedArgNumErr{Want: 1, Got: len(ia.Index)}
	}
	idx, err := evalNode(state, frame, ia.Index[0])
	if err != nil {
		return nil, err
	}
	key, ok := dictKey(idx)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string/symbol", Pos: 0, Got: idx.Code().String()}
	}
	v, err := evalNode(state, frame, ia.Value)
	if err != nil {
		return nil, err
	}
	d.Set(key, v)
	if local {
		frame.Set(ia.Name, d)
	} else {
		state.SetVar(ia.Name, d)
	}
	return v, nil
}
