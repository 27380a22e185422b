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

package wire

import (
	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/ion"
	"github.com/chili-lang/chili/value"
)

// errField tags the ion struct that carries a failed evaluation's
// message, so decode can tell it apart from a Dict, which rides as a
// plain struct. Atoms, Series, MixedList, Dict and DataFrame each map
// to one ion shape; on decode, integer atoms come back as I64, float
// atoms as F64, and Date/Time/Datetime/Timestamp atoms as Timestamp.
// Any other Obj (Fn, ParDataFrame, Matrix, LazyFrame, Expr, Err, ...)
// makes encode report NotYetImplemented.
const errField = "__chili_err__"

// EncodeBytes serialises v as one ion datum plus its symbol table,
// ordered the same way pardf/codec.go's encodeFile orders its output
// (data first, symtab appended, then swapped to the front) so the
// wire payload is self-contained.
func EncodeBytes(v value.Obj) ([]byte, error) {
	d, err := encode(v)
	if err != nil {
		return nil, err
	}
	var buf ion.Buffer
	var st ion.Symtab
	d.Encode(&buf, &st)
	stpos := buf.Size()
	st.Marshal(&buf, true)
	return append(buf.Bytes()[stpos:], buf.Bytes()[:stpos]...), nil
}

// DecodeBytes deserialises a payload written by EncodeBytes.
func DecodeBytes(raw []byte) (value.Obj, error) {
	var st ion.Symtab
	d, _, err := ion.ReadDatum(&st, raw)
	if err != nil {
		return nil, &chilierr.DeserializationErr{Msg: err.Error()}
	}
	return decode(d)
}

// EncodeErr wraps the message of a failed Sync evaluation into the
// Err-typed value the wire layer sends back.
func EncodeErr(evalErr error) ([]byte, error) {
	return EncodeBytes(errObj{msg: evalErr.Error()})
}

// errObj is a transient wire-only representation of a failed
// evaluation; it is never constructed during ordinary evaluation, only
// at the wire boundary, so it lives here rather than in package value.
type errObj struct{ msg string }

func (errObj) Code() value.Code { return value.CodeString }
func (e errObj) String() string { return e.msg }

func encode(v value.Obj) (ion.Datum, error) {
	switch x := v.(type) {
	case errObj:
		return ion.NewStruct(nil, []ion.Field{{Label: errField, Value: ion.String(x.msg)}}).Datum(), nil
	case value.Null:
		return ion.Null, nil
	case value.Bool:
		return ion.Bool(bool(x)), nil
	case value.U8:
		return ion.Uint(uint64(x)), nil
	case value.I16:
		return ion.Int(int64(x)), nil
	case value.I32:
		return ion.Int(int64(x)), nil
	case value.I64:
		return ion.Int(int64(x)), nil
	case value.F32:
		return ion.Float(float64(x)), nil
	case value.F64:
		return ion.Float(float64(x)), nil
	case value.String:
		return ion.String(string(x)), nil
	case value.Symbol:
		return ion.Annotation(nil, "symbol", ion.String(string(x))), nil
	case value.Date:
		return ion.Timestamp(x.T), nil
	case value.Time:
		return ion.Timestamp(x.T), nil
	case value.Datetime:
		return ion.Timestamp(x.T), nil
	case value.Timestamp:
		return ion.Timestamp(x.T), nil
	case value.Duration:
		return ion.Annotation(nil, "duration", ion.Int(int64(x))), nil
	case *value.Series:
		items := make([]ion.Datum, x.Len())
		for i := 0; i < x.Len(); i++ {
			d, err := encode(x.At(i))
			if err != nil {
				return ion.Datum{}, err
			}
			items[i] = d
		}
		return ion.Annotation(nil, "series", ion.NewList(nil, items).Datum()), nil
	case *value.MixedList:
		items := make([]ion.Datum, len(x.Items))
		for i, it := range x.Items {
			d, err := encode(it)
			if err != nil {
				return ion.Datum{}, err
			}
			items[i] = d
		}
		return ion.NewList(nil, items).Datum(), nil
	case *value.Dict:
		fields := make([]ion.Field, len(x.Keys))
		for i, k := range x.Keys {
			d, err := encode(x.Values[k])
			if err != nil {
				return ion.Datum{}, err
			}
			fields[i] = ion.Field{Label: k, Value: d}
		}
		return ion.NewStruct(nil, fields).Datum(), nil
	case *value.DataFrame:
		fields := make([]ion.Field, x.NCol())
		for i, name := range x.Names {
			col := x.Columns[i]
			items := make([]ion.Datum, col.Len())
			for r := 0; r < col.Len(); r++ {
				d, err := encode(col.At(r))
				if err != nil {
					return ion.Datum{}, err
				}
				items[r] = d
			}
			fields[i] = ion.Field{Label: name, Value: ion.NewList(nil, items).Datum()}
		}
		return ion.Annotation(nil, "dataframe", ion.NewStruct(nil, fields).Datum()), nil
	}
	return ion.Datum{}, &chilierr.NotYetImplemented{What: "wire encoding of " + v.Code().String()}
}

func decode(d ion.Datum) (value.Obj, error) {
	if label, inner, ok := d.Annotation(); ok {
		switch label {
		case "symbol":
			s, _ := inner.String()
			return value.Symbol(s), nil
		case "duration":
			n, _ := inner.Int()
			return value.Duration(n), nil
		case "series":
			return decodeSeries(inner)
		case "dataframe":
			return decodeDataFrame(inner)
		}
		return decode(inner)
	}
	switch d.Type() {
	case ion.NullType:
		return value.Null{}, nil
	case ion.BoolType:
		b, _ := d.Bool()
		return value.Bool(b), nil
	case ion.UintType:
		u, _ := d.Uint()
		return value.I64(int64(u)), nil
	case ion.IntType:
		i, _ := d.Int()
		return value.I64(i), nil
	case ion.FloatType:
		f, _ := d.Float()
		return value.F64(f), nil
	case ion.TimestampType:
		t, _ := d.Timestamp()
		return value.Timestamp{T: t}, nil
	case ion.StringType:
		s, _ := d.String()
		return value.String(s), nil
	case ion.ListType:
		return decodeList(d)
	case ion.StructType:
		return decodeStruct(d)
	}
	return nil, &chilierr.DeserializationErr{Msg: "wire: unsupported ion type in payload"}
}

func decodeSeries(d ion.Datum) (value.Obj, error) {
	l, ok := d.List()
	if !ok {
		return nil, &chilierr.DeserializationErr{Msg: "wire: expected a series list"}
	}
	items, err := decodeItems(l)
	if err != nil {
		return nil, err
	}
	ml := &value.MixedList{Items: items}
	if s, ok := ml.Unify(); ok {
		return s, nil
	}
	return ml, nil
}

func decodeList(d ion.Datum) (value.Obj, error) {
	l, ok := d.List()
	if !ok {
		return nil, &chilierr.DeserializationErr{Msg: "wire: expected a list"}
	}
	items, err := decodeItems(l)
	if err != nil {
		return nil, err
	}
	return &value.MixedList{Items: items}, nil
}

func decodeItems(l ion.List) ([]value.Obj, error) {
	var out []value.Obj
	var failure error
	l.Each(func(item ion.Datum) bool {
		v, err := decode(item)
		if err != nil {
			failure = err
			return false
		}
		out = append(out, v)
		return true
	})
	if failure != nil {
		return nil, failure
	}
	return out, nil
}

func decodeStruct(d ion.Datum) (value.Obj, error) {
	s, ok := d.Struct()
	if !ok {
		return nil, &chilierr.DeserializationErr{Msg: "wire: expected a struct"}
	}
	if f, ok := s.FieldByName(errField); ok {
		msg, _ := f.Value.String()
		return nil, &chilierr.Generic{Msg: msg}
	}
	out := value.NewDict()
	var failure error
	s.Each(func(f ion.Field) bool {
		v, err := decode(f.Value)
		if err != nil {
			failure = err
			return false
		}
		out.Set(f.Label, v)
		return true
	})
	if failure != nil {
		return nil, failure
	}
	return out, nil
}

func decodeDataFrame(d ion.Datum) (value.Obj, error) {
	s, ok := d.Struct()
	if !ok {
		return nil, &chilierr.DeserializationErr{Msg: "wire: expected a dataframe struct"}
	}
	df := &value.DataFrame{}
	var failure error
	s.Each(func(f ion.Field) bool {
		l, ok := f.Value.List()
		if !ok {
			failure = &chilierr.DeserializationErr{Msg: "wire: dataframe column must be a list"}
			return false
		}
		items, err := decodeItems(l)
		if err != nil {
			failure = err
			return false
		}
		var code value.Code
		if len(items) > 0 {
			code = items[0].Code()
		}
		col := value.NewSeries(code)
		for _, it := range items {
			if err := col.Append(it); err != nil {
				failure = &chilierr.Generic{Msg: err.Error()}
				return false
			}
		}
		if err := df.AddColumn(f.Label, col); err != nil {
			failure = &chilierr.Generic{Msg: err.Error()}
			return false
		}
		return true
	})
	if failure != nil {
		return nil, failure
	}
	return df, nil
}
