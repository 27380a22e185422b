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

import (
	"fmt"
	"strings"
)

// MixedList is an ordered heterogeneous sequence of Obj.
type MixedList struct {
	Items []Obj
}

func (*MixedList) Code() Code { return CodeMixedList }

func (l *MixedList) String() string {
	parts := make([]string, len(l.Items))
	for i, v := range l.Items {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ";") + ")"
}

// Unify attempts to collapse a MixedList of scalars with a common
// (or widenable) code into a Series, the way a list literal does
// during evaluation of List nodes . It returns false
// if the items are not all scalar atoms of compatible codes.
func (l *MixedList) Unify() (*Series, bool) {
	if len(l.Items) == 0 {
		return nil, false
	}
	code := l.Items[0].Code()
	if !code.IsAtomCode() {
		return nil, false
	}
	for _, it := range l.Items[1:] {
		c := it.Code()
		if !c.IsAtomCode() {
			return nil, false
		}
		w, err := Widen(code, c)
		if err != nil {
			// temporal/string/symbol: only unify if identical
			if c != code {
				return nil, false
			}
			continue
		}
		code = w
	}
	s := NewSeries(code)
	for _, it := range l.Items {
		if err := s.Append(it); err != nil {
			return nil, false
		}
	}
	return s, true
}

// Dict is an ordered String-keyed mapping that preserves insertion
// order.
type Dict struct {
	Keys []string
	Values map[string]Obj
}

// NewDict returns an empty, ready-to-use Dict.
func NewDict() *Dict {
	return &Dict{Values: make(map[string]Obj)}
}

func (*Dict) Code() Code { return CodeDict }

// Set inserts or overwrites the value for key, preserving the
// position of an existing key and appending new keys at the end.
func (d *Dict) Set(key string, v Obj) {
	if _, ok := d.Values[key]; !ok {
		d.Keys = append(d.Keys, key)
	}
	d.Values[key] = v
}

// Get returns the value for key, or Null and false if absent.
func (d *Dict) Get(key string) (Obj, bool) {
	v, ok := d.Values[key]
	if !ok {
		return Null{}, false
	}
	return v, true
}

func (d *Dict) String() string {
	parts := make([]string, len(d.Keys))
	for i, k := range d.Keys {
		parts[i] = fmt.Sprintf("%s:%s", k, d.Values[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// DataFrame is an ordered sequence of named, equal-length Series.
type DataFrame struct {
	Names []string
	Columns []*Series
}

func (*DataFrame) Code() Code { return CodeDataFrame }

// NRow returns the row count (the shared column length), or 0 for a
// frame with no columns.
func (df *DataFrame) NRow() int {
	if len(df.Columns) == 0 {
		return 0
	}
	return df.Columns[0].Len()
}

// NCol returns the column count.
func (df *DataFrame) NCol() int { return len(df.Columns) }

// Column returns the named column, or nil if absent.
func (df *DataFrame) Column(name string) *Series {
	for i, n := range df.Names {
		if n == name {
			return df.Columns[i]
		}
	}
	return nil
}

// AddColumn appends or replaces a named column. It returns an error
// if the column's length does not match the frame's existing row
// count and the frame already has at least one column, enforcing the
// "series within a DataFrame must share length" invariant.
func (df *DataFrame) AddColumn(name string, s *Series) error {
	if len(df.Columns) > 0 && s.Len() != df.NRow() {
		return fmt.Errorf("value: column %q has length %d, frame has %d rows", name, s.Len(), df.NRow())
	}
	for i, n := range df.Names {
		if n == name {
			df.Columns[i] = s
			return nil
		}
	}
	df.Names = append(df.Names, name)
	df.Columns = append(df.Columns, s)
	return nil
}

func (df *DataFrame) String() string {
	return fmt.Sprintf("([]%s) %dx%d", strings.Join(df.Names, ","), df.NRow(), df.NCol())
}

// Matrix is a 2-D floating-point tensor; data is stored row-major
// with Rows*Cols entries.
type Matrix struct {
	Rows, Cols int
	Data []float64
}

func (*Matrix) Code() Code { return CodeMatrix }

func (m *Matrix) At(r, c int) float64 { return m.Data[r*m.Cols+c] }

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for r := 0; r < m.Rows; r++ {
		if r > 0 {
			sb.WriteString(";")
		}
		sb.WriteString("[")
		for c := 0; c < m.Cols; c++ {
			if c > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "%g", m.At(r, c))
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}
