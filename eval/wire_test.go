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
	"testing"

	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/parser"
	"github.com/chili-lang/chili/value"
)

func TestEvalWireRequestEvaluatesStringAsSource(t *testing.T) {
	state := engine.NewState(Builtins())
	frame := engine.NewRootFrame(1, "")
	v, err := EvalWireRequest(state, frame, value.String("1+1;"))
	if err != nil {
		t.Fatalf("EvalWireRequest: %v", err)
	}
	wantI64(t, v, 2)
}

func TestEvalWireRequestRunsRemoteCallAgainstBuiltin(t *testing.T) {
	state := engine.NewState(Builtins())
	frame := engine.NewRootFrame(1, "")
	call := &value.MixedList{Items: []value.Obj{value.Symbol("+"), value.I64(2), value.I64(3)}}
	v, err := EvalWireRequest(state, frame, call)
	if err != nil {
		t.Fatalf("EvalWireRequest: %v", err)
	}
	wantI64(t, v, 5)
}

func TestEvalWireRequestRunsRemoteCallAgainstGlobal(t *testing.T) {
	state := engine.NewState(Builtins())
	frame := engine.NewRootFrame(1, "")
	nodes, err := parser.ParseExtended(1, []byte("f:: function(x) { return x * 2; };"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Eval(state, frame, nodes); err != nil {
		t.Fatalf("eval: %v", err)
	}

	call := &value.MixedList{Items: []value.Obj{value.Symbol("f"), value.I64(21)}}
	v, err := EvalWireRequest(state, frame, call)
	if err != nil {
		t.Fatalf("EvalWireRequest: %v", err)
	}
	wantI64(t, v, 42)
}

func TestEvalWireRequestPassesThroughPlainData(t *testing.T) {
	state := engine.NewState(Builtins())
	frame := engine.NewRootFrame(1, "")
	v, err := EvalWireRequest(state, frame, value.I64(7))
	if err != nil {
		t.Fatalf("EvalWireRequest: %v", err)
	}
	wantI64(t, v, 7)
}
