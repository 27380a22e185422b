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

package pardf

import (
	"os"

	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/ion"
	"github.com/chili-lang/chili/value"
)

// encodeFile serializes df as one ion Bag of row-structs plus a
// leading symbol table (the exact byte shape ion/bag_test.go exercises:
// encode the bag first to learn its symbols, then prepend the marshaled
// Symtab with a BVM), and writes it atomically via write-to-temp then
// rename.
func encodeFile(path string, df *value.DataFrame) error {
	var bag ion.Bag
	for row := 0; row < df.NRow(); row++ {
		fields := make([]ion.Field, 0, df.NCol())
		for ci, name := range df.Names {
			fields = append(fields, ion.Field{Label: name, Value: scalarToDatum(df.Columns[ci].At(row))})
		}
		s := ion.NewStruct(nil, fields)
		bag.AddDatum(s.Datum())
	}

	var buf ion.Buffer
	var st ion.Symtab
	bag.Encode(&buf, &st)
	stpos := buf.Size()
	st.Marshal(&buf, true)
	data := append(buf.Bytes()[stpos:], buf.Bytes()[:stpos]...)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &chilierr.OsErr{Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &chilierr.OsErr{Err: err}
	}
	return nil
}

// decodeFile reads one partition file's rows into dst, appending to
// any columns dst already has (so scanning several sub-partition files
// of one key accumulates into a single DataFrame).
func decodeFile(path string, dst *value.DataFrame) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &chilierr.OsErr{Err: err}
	}
	var st ion.Symtab
	rest := raw
	for len(rest) > 0 {
		var d ion.Datum
		d, rest, err = ion.ReadDatum(&st, rest)
		if err != nil {
			return &chilierr.DeserializationErr{Msg: err.Error()}
		}
		if d.Empty() {
			continue
		}
		row, ok := d.Struct()
		if !ok {
			return &chilierr.DeserializationErr{Msg: "partition file: expected a struct row"}
		}
		if err := appendRow(dst, row); err != nil {
			return err
		}
	}
	return nil
}

// appendRow appends one decoded struct's fields to dst, creating any
// column dst doesn't yet have (initialised as all-null up to the
// current row count first, to handle a ragged union of sub-partition
// schemas when partition fields vary row to row).
func appendRow(dst *value.DataFrame, row ion.Struct) error {
	before := dst.NRow()
	seen := make(map[string]bool, dst.NCol())
	var failure error
	row.Each(func(f ion.Field) bool {
		seen[f.Label] = true
		col := dst.Column(f.Label)
		if col == nil {
			col = value.NewSeries(datumElemCode(f.Value))
			for i := 0; i < before; i++ {
				col.Append(value.Null{})
			}
		}
		v, err := datumToScalar(f.Value)
		if err != nil {
			failure = err
			return false
		}
		if err := col.Append(v); err != nil {
			failure = err
			return false
		}
		if err := dst.AddColumn(f.Label, col); err != nil {
			failure = &chilierr.Generic{Msg: err.Error()}
			return false
		}
		return true
	})
	if failure != nil {
		return failure
	}
	for _, name := range dst.Names {
		if seen[name] {
			continue
		}
		col := dst.Column(name)
		col.Append(value.Null{})
		if err := dst.AddColumn(name, col); err != nil {
			return &chilierr.Generic{Msg: err.Error()}
		}
	}
	return nil
}

// scalarToDatum encodes one column value as an ion Datum.
func scalarToDatum(v value.Obj) ion.Datum {
	switch x := v.(type) {
	case value.Null:
		return ion.Null
	case value.Bool:
		return ion.Bool(bool(x))
	case value.U8:
		return ion.Uint(uint64(x))
	case value.I16:
		return ion.Int(int64(x))
	case value.I32:
		return ion.Int(int64(x))
	case value.I64:
		return ion.Int(int64(x))
	case value.F32:
		return ion.Float(float64(x))
	case value.F64:
		return ion.Float(float64(x))
	case value.String:
		return ion.String(string(x))
	case value.Symbol:
		return ion.String(string(x))
	case value.Date:
		return ion.Timestamp(x.T)
	case value.Time:
		return ion.Timestamp(x.T)
	case value.Datetime:
		return ion.Timestamp(x.T)
	case value.Timestamp:
		return ion.Timestamp(x.T)
	case value.Duration:
		return ion.Int(int64(x))
	}
	return ion.Null
}

func datumElemCode(d ion.Datum) value.Code {
	switch d.Type() {
	case ion.BoolType:
		return value.CodeBool
	case ion.UintType:
		return value.CodeU8
	case ion.IntType:
		return value.CodeI64
	case ion.FloatType:
		return value.CodeF64
	case ion.TimestampType:
		return value.CodeTimestamp
	case ion.StringType:
		return value.CodeString
	}
	return value.CodeI64
}

func datumToScalar(d ion.Datum) (value.Obj, error) {
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
	}
	return value.Null{}, nil
}
