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

	"github.com/chili-lang/chili/date"
)

// Series is a homogeneous typed column. It follows the columnar
// convention of "one Go slice per primitive type" (see ion/datum.go):
// a Series stores exactly one of the typed slices
// below; ElemCode says which one is populated.
type Series struct {
	elem Code

	bools []bool
	u8s []uint8
	i16s []int16
	i32s []int32
	i64s []int64
	f32s []float32
	f64s []float64
	times []date.Time // Date/Time/Datetime/Timestamp share this backing
	durs []int64
	strs []string
	syms []Symbol
	valids []bool // nil means "no nulls"; else marks valid[i]
}

// NewSeries builds an empty Series of the given element code.
func NewSeries(elem Code) *Series {
	return &Series{elem: elem.ElemCode()}
}

func (s *Series) Code() Code { return s.elem.SeriesCode() }

func (s *Series) ElemCode() Code { return s.elem }

// Len returns the number of elements (including nulls) in the series.
func (s *Series) Len() int {
	switch s.elem {
	case CodeBool:
		return len(s.bools)
	case CodeU8:
		return len(s.u8s)
	case CodeI16:
		return len(s.i16s)
	case CodeI32:
		return len(s.i32s)
	case CodeI64:
		return len(s.i64s)
	case CodeF32:
		return len(s.f32s)
	case CodeF64:
		return len(s.f64s)
	case CodeDate, CodeTime, CodeDatetime, CodeTimestamp:
		return len(s.times)
	case CodeDuration:
		return len(s.durs)
	case CodeString:
		return len(s.strs)
	case CodeSymbol:
		return len(s.syms)
	}
	return 0
}

// IsValid reports whether the i-th slot holds a non-null value.
func (s *Series) IsValid(i int) bool {
	if s.valids == nil {
		return true
	}
	return s.valids[i]
}

// SetNull marks slot i as null.
func (s *Series) SetNull(i int) {
	for len(s.valids) < s.Len() {
		s.valids = append(s.valids, true)
	}
	s.valids[i] = false
}

// Append appends a scalar Obj, coercing it to the series' element
// code via the coercion ladder in coerce.go. Appending Null marks
// the new slot invalid.
func (s *Series) Append(v Obj) error {
	if _, ok := v.(Null); ok {
		s.appendZero()
		s.SetNull(s.Len() - 1)
		return nil
	}
	c, err := CoerceTo(v, s.elem)
	if err != nil {
		return err
	}
	switch s.elem {
	case CodeBool:
		s.bools = append(s.bools, bool(c.(Bool)))
	case CodeU8:
		s.u8s = append(s.u8s, uint8(c.(U8)))
	case CodeI16:
		s.i16s = append(s.i16s, int16(c.(I16)))
	case CodeI32:
		s.i32s = append(s.i32s, int32(c.(I32)))
	case CodeI64:
		s.i64s = append(s.i64s, int64(c.(I64)))
	case CodeF32:
		s.f32s = append(s.f32s, float32(c.(F32)))
	case CodeF64:
		s.f64s = append(s.f64s, float64(c.(F64)))
	case CodeDate:
		s.times = append(s.times, c.(Date).T)
	case CodeTime:
		s.times = append(s.times, c.(Time).T)
	case CodeDatetime:
		s.times = append(s.times, c.(Datetime).T)
	case CodeTimestamp:
		s.times = append(s.times, c.(Timestamp).T)
	case CodeDuration:
		s.durs = append(s.durs, int64(c.(Duration)))
	case CodeString:
		s.strs = append(s.strs, string(c.(String)))
	case CodeSymbol:
		s.syms = append(s.syms, c.(Symbol))
	default:
		return fmt.Errorf("value: cannot append to series of code %v", s.elem)
	}
	if s.valids != nil {
		s.valids = append(s.valids, true)
	}
	return nil
}

func (s *Series) appendZero() {
	switch s.elem {
	case CodeBool:
		s.bools = append(s.bools, false)
	case CodeU8:
		s.u8s = append(s.u8s, 0)
	case CodeI16:
		s.i16s = append(s.i16s, 0)
	case CodeI32:
		s.i32s = append(s.i32s, 0)
	case CodeI64:
		s.i64s = append(s.i64s, 0)
	case CodeF32:
		s.f32s = append(s.f32s, 0)
	case CodeF64:
		s.f64s = append(s.f64s, 0)
	case CodeDate, CodeTime, CodeDatetime, CodeTimestamp:
		s.times = append(s.times, date.Time{})
	case CodeDuration:
		s.durs = append(s.durs, 0)
	case CodeString:
		s.strs = append(s.strs, "")
	case CodeSymbol:
		s.syms = append(s.syms, "")
	}
}

// At returns the scalar Obj at index i (negative indices wrap from
// the end), or Null if i is out of range or the slot is invalid.
func (s *Series) At(i int) Obj {
	n := s.Len()
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n || !s.IsValid(i) {
		return Null{}
	}
	switch s.elem {
	case CodeBool:
		return Bool(s.bools[i])
	case CodeU8:
		return U8(s.u8s[i])
	case CodeI16:
		return I16(s.i16s[i])
	case CodeI32:
		return I32(s.i32s[i])
	case CodeI64:
		return I64(s.i64s[i])
	case CodeF32:
		return F32(s.f32s[i])
	case CodeF64:
		return F64(s.f64s[i])
	case CodeDate:
		return Date{s.times[i]}
	case CodeTime:
		return Time{s.times[i]}
	case CodeDatetime:
		return Datetime{s.times[i]}
	case CodeTimestamp:
		return Timestamp{s.times[i]}
	case CodeDuration:
		return Duration(s.durs[i])
	case CodeString:
		return String(s.strs[i])
	case CodeSymbol:
		return s.syms[i]
	}
	return Null{}
}

// Take gathers the elements at idx (negative wraps; out-of-range or
// negative-after-wrap yields a null slot) into a new Series.
func (s *Series) Take(idx []int64) *Series {
	out := NewSeries(s.elem)
	n := s.Len()
	for _, raw := range idx {
		i := int(raw)
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			out.appendZero()
			out.SetNull(out.Len() - 1)
			continue
		}
		out.Append(s.At(i))
	}
	return out
}

// Slice returns a new Series over rows [lo, hi).
func (s *Series) Slice(lo, hi int) *Series {
	out := NewSeries(s.elem)
	for i := lo; i < hi; i++ {
		out.Append(s.At(i))
	}
	return out
}

func (s *Series) String() string {
	n := s.Len()
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = s.At(i).String()
	}
	return strings.Join(parts, " ")
}
