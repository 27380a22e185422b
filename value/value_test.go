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

package value

import "testing"

func TestWidenLadder(t *testing.T) {
	cases := []struct {
		a, b, want Code
	}{
		{CodeI64, CodeF32, CodeF32},
		{CodeF32, CodeI64, CodeF32},
		{CodeBool, CodeI16, CodeI16},
		{CodeU8, CodeI64, CodeI64},
		{CodeF64, CodeI64, CodeF64},
	}
	for _, c := range cases {
		got, err := Widen(c.a, c.b)
		if err != nil {
			t.Fatalf("Widen(%v,%v): %v", c.a, c.b, err)
		}
		if got != c.want {
			t.Errorf("Widen(%v,%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestDictOrdering(t *testing.T) {
	d := NewDict()
	order := []string{"z", "a", "m", "b"}
	for _, k := range order {
		d.Set(k, I64(1))
	}
	d.Set("a", I64(2)) // overwrite should not move position
	if len(d.Keys) != len(order) {
		t.Fatalf("expected %d keys, got %d", len(order), len(d.Keys))
	}
	for i, k := range order {
		if d.Keys[i] != k {
			t.Errorf("key[%d] = %q, want %q", i, d.Keys[i], k)
		}
	}
}

func TestSeriesAppendAndTake(t *testing.T) {
	s := NewSeries(CodeI64)
	for _, v := range []int64{1, 2, 3} {
		if err := s.Append(I64(v)); err != nil {
			t.Fatal(err)
		}
	}
	got := s.Take([]int64{-1, 0, 99})
	want := []Obj{I64(3), I64(1), Null{}}
	for i, w := range want {
		if got.At(i).String() != w.String() {
			t.Errorf("Take[%d] = %v, want %v", i, got.At(i), w)
		}
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v Obj
		want bool
	}{
		{Null{}, false},
		{Bool(false), false},
		{I64(0), false},
		{I64(3), true},
		{String(""), false},
		{String("x"), true},
		{&Err{Message: "boom"}, false},
	}
	for _, c := range cases {
		if got := Truthy(c.v); got != c.want {
			t.Errorf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestMixedListUnify(t *testing.T) {
	l := &MixedList{Items: []Obj{I64(1), F64(2.5), I64(3)}}
	s, ok := l.Unify()
	if !ok {
		t.Fatal("expected unify to succeed")
	}
	if s.Code() != CodeF64.SeriesCode() {
		t.Errorf("unified code = %v, want series of f64", s.Code())
	}
}

func TestSymbolInterning(t *testing.T) {
	a := Intern("foo")
	b := Intern("foo")
	if string(a) != string(b) {
		t.Fatalf("interned symbols differ: %q vs %q", a, b)
	}
}
