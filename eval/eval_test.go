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

// run parses src with the extended grammar and evaluates it against a
// fresh State/root Frame, returning the final statement's value.
func run(t *testing.T, src string) value.Obj {
	t.Helper()
	nodes, err := parser.ParseExtended(1, []byte(src))
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	state := engine.NewState(Builtins())
	frame := engine.NewRootFrame(1, "")
	v, err := Eval(state, frame, nodes)
	if err != nil {
		t.Fatalf("eval(%q): %v", src, err)
	}
	return v
}

// runWithFlags is run but lets the caller set engine.State flags
// (engine.FlagLazyMode and friends) before evaluation.
func runWithFlags(t *testing.T, src string, flags map[string]bool) value.Obj {
	t.Helper()
	nodes, err := parser.ParseExtended(1, []byte(src))
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	state := engine.NewState(Builtins())
	for name, v := range flags {
		state.SetFlag(name, v)
	}
	frame := engine.NewRootFrame(1, "")
	v, err := Eval(state, frame, nodes)
	if err != nil {
		t.Fatalf("eval(%q): %v", src, err)
	}
	return v
}

func wantI64(t *testing.T, v value.Obj, want int64) {
	t.Helper()
	n, ok := value.AsI64(v)
	if !ok || n != want {
		t.Fatalf("got %#v, want I64(%d)", v, want)
	}
}

func wantF64(t *testing.T, v value.Obj, want float64) {
	t.Helper()
	f, ok := value.AsF64(v)
	if !ok || f != want {
		t.Fatalf("got %#v, want F64(%v)", v, want)
	}
}

func TestArithPrecedenceIsSinglePrecedence(t *testing.T) {
	// single left-associative chain: (1 + 2) * 3 = 9, not 1 + 6
	wantI64(t, run(t, "1 + 2 * 3;"), 9)
}

func TestUnaryMinusVsBinaryMinus(t *testing.T) {
	wantI64(t, run(t, "-5;"), -5)
	wantI64(t, run(t, "10 - 3;"), 7)
}

func TestDivisionAlwaysFloat(t *testing.T) {
	wantF64(t, run(t, "7 / 2;"), 3.5)
}

func TestBroadcastScalarAgainstSeries(t *testing.T) {
	s := run(t, "[1, 2, 3] + 1;")
	series, ok := s.(*value.Series)
	if !ok || series.Len() != 3 {
		t.Fatalf("expected a 3-element Series, got %#v", s)
	}
	wantI64(t, series.At(0), 2)
	wantI64(t, series.At(2), 4)
}

func TestBroadcastSeriesLengthMismatchErrors(t *testing.T) {
	nodes, err := parser.ParseExtended(1, []byte("[1, 2] + [1, 2, 3];"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	state := engine.NewState(Builtins())
	frame := engine.NewRootFrame(1, "")
	if _, err := Eval(state, frame, nodes); err == nil {
		t.Fatal("expected a length-mismatch error, got nil")
	}
}

func TestComparisonAndShortCircuit(t *testing.T) {
	v := run(t, "1 < 2 && 3 > 2;")
	b, ok := v.(value.Bool)
	if !ok || !bool(b) {
		t.Fatalf("got %#v, want true", v)
	}
}

func TestUserFunctionCallAndReturn(t *testing.T) {
	wantI64(t, run(t, `
f: function(a, b) { return a * b + 1; };
f(3, 4);
`), 13)
}

func TestPartialApplicationProjectsIntoNewFn(t *testing.T) {
	v := run(t, `
f: function(a, b, c) { return a + b + c; };
g: f(1,, 3);
g(10);
`)
	wantI64(t, v, 14)
}

func TestIndexingDictAndSeries(t *testing.T) {
	wantI64(t, run(t, "d: {a: 1, b: 2}; d(`b);"), 2)
	wantI64(t, run(t, "s: [10, 20, 30]; s @ 1;"), 20)
}

func TestWhileLoopAccumulates(t *testing.T) {
	wantI64(t, run(t, `
i: 0;
total: 0;
while (i < 5) { total: total + i; i: i + 1; };
total;
`), 10)
}

func TestTryCatchRunsCatchBlockOnRaise(t *testing.T) {
	v := run(t, `
result: 0;
try { raise "boom"; } catch (e) { result: 1; };
result;
`)
	wantI64(t, v, 1)
}
