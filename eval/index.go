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
	"github.com/chili-lang/chili/value"
)

// indexInto implements the `x @ i` contract, shared
// by the `@` built-in operator and by calling a Dict/DataFrame/
// MixedList value directly as `x(i)`.
func indexInto(x, i value.Obj) (value.Obj, error) {
	switch xv := x.(type) {
	case *value.Series:
		return indexSeries(xv, i)
	case *value.MixedList:
		return indexMixedList(xv, i)
	case *value.Dict:
		return indexDict(xv, i)
	case *value.DataFrame:
		return indexDataFrame(xv, i)
	}
	return nil, &chilierr.UnsupportedBinaryOpErr{Op: "@", Lhs: x.Code().String(), Rhs: i.Code().String()}
}

func indexSeries(s *value.Series, i value.Obj) (value.Obj, error) {
	if n, ok := value.AsI64(i); ok {
		return s.At(int(n)), nil
	}
	if idxs, ok := series(i); ok {
		ns := make([]int64, idxs.Len())
		for j := 0; j < idxs.Len(); j++ {
			n, ok := value.AsI64(idxs.At(j))
			if !ok {
				return nil, &chilierr.MismatchedArgTypeErr{Want: "integer", Pos: j, Got: idxs.At(j).Code().String()}
			}
			ns[j] = n
		}
		return s.Take(ns), nil
	}
	return nil, &chilierr.UnsupportedBinaryOpErr{Op: "@", Lhs: "series", Rhs: i.Code().String()}
}

func indexMixedList(l *value.MixedList, i value.Obj) (value.Obj, error) {
	if n, ok := value.AsI64(i); ok {
		idx := int(n)
		if idx < 0 {
			idx += len(l.Items)
		}
		if idx < 0 || idx >= len(l.Items) {
			return value.Null{}, nil
		}
		return l.Items[idx], nil
	}
	if idxs, ok := series(i); ok {
		out := &value.MixedList{}
		for j := 0; j < idxs.Len(); j++ {
			n, ok := value.AsI64(idxs.At(j))
			if !ok {
				return nil, &chilierr.MismatchedArgTypeErr{Want: "integer", Pos: j, Got: idxs.At(j).Code().String()}
			}
			v, err := indexMixedList(l, value.I64(n))
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, v)
		}
		if s, ok := out.Unify(); ok {
			return s, nil
		}
		return out, nil
	}
	return nil, &chilierr.UnsupportedBinaryOpErr{Op: "@", Lhs: "mixedlist", Rhs: i.Code().String()}
}

func indexDict(d *value.Dict, i value.Obj) (value.Obj, error) {
	if key, ok := dictKey(i); ok {
		v, _ := d.Get(key)
		return v, nil
	}
	if keys, ok := series(i); ok {
		out := &value.MixedList{}
		for j := 0; j < keys.Len(); j++ {
			key, ok := dictKey(keys.At(j))
			if !ok {
				return nil, &chilierr.MismatchedArgTypeErr{Want: "string/symbol", Pos: j, Got: keys.At(j).Code().String()}
			}
			v, _ := d.Get(key)
			out.Items = append(out.Items, v)
		}
		if s, ok := out.Unify(); ok {
			return s, nil
		}
		return out, nil
	}
	return nil, &chilierr.UnsupportedBinaryOpErr{Op: "@", Lhs: "dict", Rhs: i.Code().String()}
}

func indexDataFrame(df *value.DataFrame, i value.Obj) (value.Obj, error) {
	if key, ok := dictKey(i); ok {
		col := df.Column(key)
		if col == nil {
			return value.Null{}, nil
		}
		return col, nil
	}
	if n, ok := value.AsI64(i); ok {
		return rowSelect(df, []int64{n})
	}
	if keys, ok := series(i); ok && (keys.ElemCode() == value.CodeString || keys.ElemCode() == value.CodeSymbol) {
		out := &value.DataFrame{}
		for j := 0; j < keys.Len(); j++ {
			key, _ := dictKey(keys.At(j))
			col := df.Column(key)
			if col != nil {
				out.AddColumn(key, col)
			}
		}
		return out, nil
	}
	if idxs, ok := series(i); ok {
		ns := make([]int64, idxs.Len())
		for j := 0; j < idxs.Len(); j++ {
			n, ok := value.AsI64(idxs.At(j))
			if !ok {
				return nil, &chilierr.MismatchedArgTypeErr{Want: "integer", Pos: j, Got: idxs.At(j).Code().String()}
			}
			ns[j] = n
		}
		return rowSelect(df, ns)
	}
	return nil, &chilierr.UnsupportedBinaryOpErr{Op: "@", Lhs: "dataframe", Rhs: i.Code().String()}
}

func rowSelect(df *value.DataFrame, idx []int64) (*value.DataFrame, error) {
	out := &value.DataFrame{}
	for i, name := range df.Names {
		if err := out.AddColumn(name, df.Columns[i].Take(idx)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func series(v value.Obj) (*value.Series, bool) {
	s, ok := v.(*value.Series)
	return s, ok
}

func dictKey(v value.Obj) (string, bool) {
	switch x := v.(type) {
	case value.String:
		return string(x), true
	case value.Symbol:
		return string(x), true
	}
	return "", false
}
