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
	"strings"

	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/value"
)

// broadcastBinary applies elemFn across two Obj operands, broadcasting
// a scalar against a Series and zipping two equal-length Series
// . Two atoms apply
// elemFn directly.
func broadcastBinary(a, b value.Obj, elemFn func(a, b value.Obj) (value.Obj, error)) (value.Obj, error) {
	as, aIsSeries := a.(*value.Series)
	bs, bIsSeries := b.(*value.Series)
	if !aIsSeries && !bIsSeries {
		return elemFn(a, b)
	}
	n := 0
	switch {
	case aIsSeries && bIsSeries:
		if as.Len() != bs.Len() {
			return nil, &chilierr.MismatchedLengthErr{A: as.Len(), B: bs.Len()}
		}
		n = as.Len()
	case aIsSeries:
		n = as.Len()
	default:
		n = bs.Len()
	}
	items := make([]value.Obj, n)
	for i := 0; i < n; i++ {
		av, bv := a, b
		if aIsSeries {
			av = as.At(i)
		}
		if bIsSeries {
			bv = bs.At(i)
		}
		v, err := elemFn(av, bv)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	ml := &value.MixedList{Items: items}
	if s, ok := ml.Unify(); ok {
		return s, nil
	}
	return ml, nil
}

func isFloatAtom(v value.Obj) bool {
	switch v.(type) {
	case value.F32, value.F64:
		return true
	}
	return false
}

func numericElem(op string, f func(a, b float64) float64) func(a, b value.Obj) (value.Obj, error) {
	return func(a, b value.Obj) (value.Obj, error) {
		if _, ok := a.(value.Null); ok {
			return value.Null{}, nil
		}
		if _, ok := b.(value.Null); ok {
			return value.Null{}, nil
		}
		x, ok1 := value.AsF64(a)
		y, ok2 := value.AsF64(b)
		if !ok1 || !ok2 {
			return nil, &chilierr.UnsupportedBinaryOpErr{Op: op, Lhs: a.Code().String(), Rhs: b.Code().String()}
		}
		r := f(x, y)
		if isFloatAtom(a) || isFloatAtom(b) {
			return value.F64(r), nil
		}
		return value.I64(int64(r)), nil
	}
}

func numericElemFloat(op string, f func(a, b float64) float64) func(a, b value.Obj) (value.Obj, error) {
	return func(a, b value.Obj) (value.Obj, error) {
		x, ok1 := value.AsF64(a)
		y, ok2 := value.AsF64(b)
		if !ok1 || !ok2 {
			return nil, &chilierr.UnsupportedBinaryOpErr{Op: op, Lhs: a.Code().String(), Rhs: b.Code().String()}
		}
		return value.F64(f(x, y)), nil
	}
}

func binaryNumeric(op string, f func(a, b float64) float64) value.PureBuiltin {
	return func(args []value.Obj) (value.Obj, error) {
		if len(args) != 2 {
			return nil, &chilierr.MismatchedArgNumErr{Want: 2, Got: len(args)}
		}
		return broadcastBinary(args[0], args[1], numericElem(op, f))
	}
}

func binaryNumericFloat(op string, f func(a, b float64) float64) value.PureBuiltin {
	return func(args []value.Obj) (value.Obj, error) {
		if len(args) != 2 {
			return nil, &chilierr.MismatchedArgNumErr{Want: 2, Got: len(args)}
		}
		return broadcastBinary(args[0], args[1], numericElemFloat(op, f))
	}
}

func unaryNegElem(v value.Obj) (value.Obj, error) {
	if s, ok := v.(*value.Series); ok {
		items := make([]value.Obj, s.Len())
		for i := 0; i < s.Len(); i++ {
			e, err := unaryNegElem(s.At(i))
			if err != nil {
				return nil, err
			}
			items[i] = e
		}
		ml := &value.MixedList{Items: items}
		if u, ok := ml.Unify(); ok {
			return u, nil
		}
		return ml, nil
	}
	f, ok := value.AsF64(v)
	if !ok {
		return nil, &chilierr.UnsupportedUnaryOpErr{Op: "-", Type: v.Code().String()}
	}
	if isFloatAtom(v) {
		return value.F64(-f), nil
	}
	return value.I64(-int64(f)), nil
}

// unaryOrBinaryMinus backs the `-` builtin, which is invoked with one
// operand from a UnaryCall node and two from a BinaryCall node
// (operator nodes bypass the generic arity-check path, see ops.go).
func unaryOrBinaryMinus() value.PureBuiltin {
	return func(args []value.Obj) (value.Obj, error) {
		switch len(args) {
		case 1:
			return unaryNegElem(args[0])
		case 2:
			return broadcastBinary(args[0], args[1], numericElem("-", func(a, b float64) float64 { return a - b }))
		}
		return nil, &chilierr.MismatchedArgNumErr{Want: 2, Got: len(args)}
	}
}

func unaryNeg() value.PureBuiltin {
	return func(args []value.Obj) (value.Obj, error) { return unaryNegElem(args[0]) }
}

func unaryNot() value.PureBuiltin {
	return func(args []value.Obj) (value.Obj, error) { return value.Bool(!value.Truthy(args[0])), nil }
}

func unaryCount() value.PureBuiltin {
	return func(args []value.Obj) (value.Obj, error) {
		switch x := args[0].(type) {
		case *value.Series:
			return value.I64(x.Len()), nil
		case *value.MixedList:
			return value.I64(len(x.Items)), nil
		case *value.Dict:
			return value.I64(len(x.Keys)), nil
		case *value.DataFrame:
			return value.I64(x.NRow()), nil
		}
		return value.I64(1), nil
	}
}

// compareScalars orders two atoms, supporting the numeric ladder and
// lexical String/Symbol comparison; ok is false for any other pairing.
func compareScalars(a, b value.Obj) (c int, ok bool) {
	if af, ok1 := value.AsF64(a); ok1 {
		if bf, ok2 := value.AsF64(b); ok2 {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	if as, ok1 := a.(value.String); ok1 {
		if bs, ok2 := b.(value.String); ok2 {
			return strings.Compare(string(as), string(bs)), true
		}
	}
	if as, ok1 := a.(value.Symbol); ok1 {
		if bs, ok2 := b.(value.Symbol); ok2 {
			return strings.Compare(string(as), string(bs)), true
		}
	}
	return 0, false
}

func binaryCompare(op string, pred func(c int) bool) value.PureBuiltin {
	return func(args []value.Obj) (value.Obj, error) {
		if len(args) != 2 {
			return nil, &chilierr.MismatchedArgNumErr{Want: 2, Got: len(args)}
		}
		return broadcastBinary(args[0], args[1], func(a, b value.Obj) (value.Obj, error) {
			c, ok := compareScalars(a, b)
			if !ok {
				return nil, &chilierr.UnsupportedBinaryOpErr{Op: op, Lhs: a.Code().String(), Rhs: b.Code().String()}
			}
			return value.Bool(pred(c)), nil
		})
	}
}

func seriesOrUnify(v value.Obj) (*value.Series, bool) {
	if s, ok := v.(*value.Series); ok {
		return s, true
	}
	if ml, ok := v.(*value.MixedList); ok {
		return ml.Unify()
	}
	return nil, false
}

func reduceNumeric(name string, init float64, f func(acc, x float64) float64) value.PureBuiltin {
	return func(args []value.Obj) (value.Obj, error) {
		s, ok := seriesOrUnify(args[0])
		if !ok {
			return nil, &chilierr.MismatchedArgTypeErr{Want: "series", Pos: 0, Got: args[0].Code().String()}
		}
		isFloat := s.ElemCode() == value.CodeF32 || s.ElemCode() == value.CodeF64
		acc := init
		for i := 0; i < s.Len(); i++ {
			if !s.IsValid(i) {
				continue
			}
			x, ok := value.AsF64(s.At(i))
			if !ok {
				return nil, &chilierr.UnsupportedUnaryOpErr{Op: name, Type: s.At(i).Code().String()}
			}
			acc = f(acc, x)
		}
		if isFloat {
			return value.F64(acc), nil
		}
		return value.I64(int64(acc)), nil
	}
}

func avgFn(args []value.Obj) (value.Obj, error) {
	s, ok := seriesOrUnify(args[0])
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "series", Pos: 0, Got: args[0].Code().String()}
	}
	var sum float64
	n := 0
	for i := 0; i < s.Len(); i++ {
		if !s.IsValid(i) {
			continue
		}
		x, ok := value.AsF64(s.At(i))
		if !ok {
			return nil, &chilierr.UnsupportedUnaryOpErr{Op: "avg", Type: s.At(i).Code().String()}
		}
		sum += x
		n++
	}
	if n == 0 {
		return value.Null{}, nil
	}
	return value.F64(sum / float64(n)), nil
}

func reduceSeries(name string, better func(cur, cand float64) bool) value.PureBuiltin {
	return func(args []value.Obj) (value.Obj, error) {
		s, ok := seriesOrUnify(args[0])
		if !ok {
			return nil, &chilierr.MismatchedArgTypeErr{Want: "series", Pos: 0, Got: args[0].Code().String()}
		}
		bestIdx := -1
		var bestVal float64
		for i := 0; i < s.Len(); i++ {
			if !s.IsValid(i) {
				continue
			}
			x, ok := value.AsF64(s.At(i))
			if !ok {
				return nil, &chilierr.UnsupportedUnaryOpErr{Op: name, Type: s.At(i).Code().String()}
			}
			if bestIdx == -1 || better(bestVal, x) {
				bestIdx = i
				bestVal = x
			}
		}
		if bestIdx == -1 {
			return value.Null{}, nil
		}
		return s.At(bestIdx), nil
	}
}
