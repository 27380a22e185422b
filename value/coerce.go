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

import "fmt"

// Widen returns the type code that both a and b should be promoted
// to before a binary numeric op, following a coercion ladder where
// widening goes toward the larger absolute rank; mixing float with
// integer yields the wider float.
func Widen(a, b Code) (Code, error) {
	a, b = a.ElemCode(), b.ElemCode()
	if a == b {
		return a, nil
	}
	if !a.isNumeric() || !b.isNumeric() {
		return 0, fmt.Errorf("value: cannot widen non-numeric codes %v and %v", a, b)
	}
	if a.isFloat() || b.isFloat() {
		if a.rank() >= CodeF64.rank() || b.rank() >= CodeF64.rank() {
			return CodeF64, nil
		}
		return CodeF32, nil
	}
	if a.rank() > b.rank() {
		return a, nil
	}
	return b, nil
}

// CoerceTo converts the scalar v to the target atom code following
// the widening ladder. Temporal values only coerce to their own
// code (conversion across temporal units is a built-in concern, not
// an implicit coercion).
func CoerceTo(v Obj, to Code) (Obj, error) {
	to = to.ElemCode()
	if v.Code().ElemCode() == to {
		return v, nil
	}
	f, isNum, err := asFloat(v)
	if err != nil {
		return nil, err
	}
	if !isNum {
		return nil, fmt.Errorf("value: cannot coerce %v to %v", v.Code(), to)
	}
	switch to {
	case CodeBool:
		return Bool(f != 0), nil
	case CodeU8:
		return U8(f), nil
	case CodeI16:
		return I16(f), nil
	case CodeI32:
		return I32(f), nil
	case CodeI64:
		return I64(f), nil
	case CodeF32:
		return F32(f), nil
	case CodeF64:
		return F64(f), nil
	}
	return nil, fmt.Errorf("value: cannot coerce %v to %v", v.Code(), to)
}

// asFloat extracts the numeric value of an atom as a float64 for use
// by the widening machinery above. Non-numeric atoms return ok=false.
func asFloat(v Obj) (f float64, ok bool, err error) {
	switch x := v.(type) {
	case Bool:
		if x {
			return 1, true, nil
		}
		return 0, true, nil
	case U8:
		return float64(x), true, nil
	case I16:
		return float64(x), true, nil
	case I32:
		return float64(x), true, nil
	case I64:
		return float64(x), true, nil
	case F32:
		return float64(x), true, nil
	case F64:
		return float64(x), true, nil
	}
	return 0, false, nil
}

// AsI64 extracts an integer atom (or bool) as an int64, for use by
// indexing and partition-key arithmetic.
func AsI64(v Obj) (int64, bool) {
	f, ok, _ := asFloat(v)
	if !ok || v.Code().isFloat() {
		return 0, false
	}
	return int64(f), true
}

// AsF64 extracts any numeric atom as a float64.
func AsF64(v Obj) (float64, bool) {
	f, ok, _ := asFloat(v)
	return f, ok
}

// Truthy implements the truthiness contract:
// Bool is itself; numeric atoms are != 0; Null is false; String/
// Symbol are non-empty; Series/MixedList/Dict/DataFrame are
// "all truthy"; Err is false; NaN is false.
func Truthy(v Obj) bool {
	switch x := v.(type) {
	case Null:
		return false
	case Bool:
		return bool(x)
	case String:
		return x != ""
	case Symbol:
		return x != ""
	case *Err:
		return false
	case *Series:
		for i := 0; i < x.Len(); i++ {
			if !Truthy(x.At(i)) {
				return false
			}
		}
		return true
	case *MixedList:
		for _, e := range x.Items {
			if !Truthy(e) {
				return false
			}
		}
		return true
	case *Dict:
		for _, k := range x.Keys {
			if !Truthy(x.Values[k]) {
				return false
			}
		}
		return true
	case *DataFrame:
		return true
	}
	if f, isNum, _ := asFloat(v); isNum {
		if f != f { // NaN
			return false
		}
		return f != 0
	}
	return true
}
