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
	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/parser"
	"github.com/chili-lang/chili/value"
)

// EvalWireRequest evaluates one request Obj read off a wire
// connection: a
// String carries chili source text to parse and run in frame's scope;
// a MixedList is a `(name; arg...)` remote call, dispatched by looking
// name up in globals then built-ins, the same resolution order
// dispatchJobByName uses for a job's target. Any other Obj has no code
// attached and round-trips unevaluated.
func EvalWireRequest(state *engine.State, frame *engine.Frame, req value.Obj) (value.Obj, error) {
	switch x := req.(type) {
	case value.String:
		sourceID := state.RegisterSource([]byte(x))
		nodes, err := parser.ParseExtended(sourceID, []byte(x))
		if err != nil {
			return nil, err
		}
		return Eval(state, frame, nodes)
	case *value.MixedList:
		return evalRemoteCall(state, frame, x)
	default:
		return req, nil
	}
}

func evalRemoteCall(state *engine.State, frame *engine.Frame, call *value.MixedList) (value.Obj, error) {
	if len(call.Items) == 0 {
		return call, nil
	}
	name, ok := remoteCallName(call.Items[0])
	if !ok {
		return call, nil
	}
	fn, err := resolveCallable(state, name)
	if err != nil {
		return nil, err
	}
	return callFn(state, frame, fn, call.Items[1:])
}

func remoteCallName(v value.Obj) (string, bool) {
	switch x := v.(type) {
	case value.Symbol:
		return string(x), true
	case value.String:
		return string(x), true
	}
	return "", false
}

func resolveCallable(state *engine.State, name string) (*value.Fn, error) {
	if v, ok := state.GetVar(name); ok {
		if fn, ok := v.(*value.Fn); ok {
			return fn, nil
		}
		return nil, &chilierr.MismatchedArgTypeErr{Want: "fn", Pos: 0, Got: v.Code().String()}
	}
	if fn, ok := state.Builtin(name); ok {
		return fn, nil
	}
	return nil, &chilierr.NameErr{Name: name}
}
