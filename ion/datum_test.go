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

package ion

import (
	"testing"

	"github.com/chili-lang/chili/date"
)

func TestDatumRoundtrip(t *testing.T) {
	row := NewStruct(nil, []Field{
		{Label: "foo", Value: String("foo")},
		{Label: "bar", Value: Null},
		{Label: "inner", Value: NewList(nil, []Datum{
			Int(-1), Uint(0), Uint(1),
		}).Datum()},
		{Label: "name", Value: String("should-come-first")},
	}).Datum()

	cases := []Datum{
		Null,
		String("foo"),
		Int(-1),
		Uint(1000),
		Bool(true),
		Bool(false),
		Float(3.5),
		Timestamp(date.Date(2022, 6, 1, 12, 0, 0, 0)),
		row,
	}

	var buf Buffer
	var st Symtab
	for i := range cases {
		buf.Reset()
		st = Symtab{}
		cases[i].Encode(&buf, &st)
		out, rest, err := ReadDatum(&st, buf.Bytes())
		if err != nil {
			t.Fatalf("case %d: decoding: %s", i, err)
		}
		if len(rest) != 0 {
			t.Fatalf("case %d: %d trailing bytes", i, len(rest))
		}
		if !Equal(out, cases[i]) {
			t.Fatalf("case %d: got %#v, want %#v", i, out, cases[i])
		}
	}
}

func TestStructFieldLookup(t *testing.T) {
	var st Symtab
	s := NewStruct(&st, []Field{
		{Label: "a", Value: Int(1)},
		{Label: "b", Value: Int(2)},
	})
	f, ok := s.FieldByName("b")
	if !ok {
		t.Fatal("missing field b")
	}
	if v, _ := f.Value.Int(); v != 2 {
		t.Fatalf("field b = %d, want 2", v)
	}
	if _, ok := s.FieldByName("c"); ok {
		t.Fatal("field c should not exist")
	}
}

func TestListEach(t *testing.T) {
	l := NewList(nil, []Datum{Int(1), Int(2), Int(3)})
	var sum int64
	err := l.Each(func(d Datum) bool {
		v, _ := d.Int()
		sum += v
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum != 6 {
		t.Fatalf("sum = %d, want 6", sum)
	}
}

func FuzzReadDatum(f *testing.F) {
	var buf Buffer
	var st Symtab
	for _, d := range []Datum{Int(1), String("x"), Bool(true), Null} {
		buf.Reset()
		d.Encode(&buf, &st)
		f.Add(buf.Bytes())
	}
	f.Fuzz(func(t *testing.T, raw []byte) {
		var st Symtab
		var err error
		var d Datum
		for len(raw) > 0 {
			d, raw, err = ReadDatum(&st, raw)
			if err != nil {
				return
			}
			if s, ok := d.Struct(); ok {
				s.Each(func(Field) bool { return true })
			}
			if l, ok := d.List(); ok {
				l.Each(func(Datum) bool { return true })
			}
		}
	})
}
