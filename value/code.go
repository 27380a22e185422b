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

// Package value implements the tagged value model (Obj) shared by the
// lexer, parser, evaluator, and wire codecs: scalars, typed vectors,
// mixed lists, ordered maps, dataframes, matrices, lazy frames, and
// expression trees.
package value

// Code is the signed type code used for dispatch across the
// evaluator and the wire codecs. The sign encodes atom vs. vector:
// a negative code is a scalar atom, a positive code is a Series of
// the element type whose atom code has the same absolute value, and
// zero is reserved for Null. MixedList and the other container/control
// variants use the distinct positive codes from 32 up.
type Code int8

const (
	CodeNull Code = 0

	CodeBool Code = -1
	CodeU8 Code = -2
	CodeI16 Code = -3
	CodeI32 Code = -4
	CodeI64 Code = -5

	CodeDate Code = -6
	CodeTime Code = -7
	CodeDatetime Code = -8
	CodeTimestamp Code = -9
	CodeDuration Code = -10

	CodeF32 Code = -11
	CodeF64 Code = -12

	CodeString Code = -13
	CodeSymbol Code = -14

	// Distinct codes for the container/control variants that do not
	// participate in the atom/series dispatch ladder. These sit
	// outside the [-14,14] range used by atoms and series so they
	// can never collide with a series code.
	CodeMixedList Code = 32
	CodeDict Code = 33
	CodeDataFrame Code = 34
	CodeLazyFrame Code = 35
	CodeParDataFrame Code = 36
	CodeMatrix Code = 37
	CodeExpr Code = 38
	CodeFn Code = 39
	CodeDelayedArg Code = 40
	CodeReturn Code = 41
	CodeErr Code = 42
)

// IsAtomCode returns whether c identifies a scalar atom type.
func (c Code) IsAtomCode() bool { return c < 0 }

// IsSeriesCode returns whether c identifies a Series (vector) type.
func (c Code) IsSeriesCode() bool { return c > 0 && c < CodeMixedList }

// SeriesCode returns the Series code corresponding to the atom
// code c (i.e. +|c|).
func (c Code) SeriesCode() Code {
	if c < 0 {
		return -c
	}
	return c
}

// ElemCode returns the atom code for the element type of a Series
// code (i.e. -|c|). For an atom code it is a no-op.
func (c Code) ElemCode() Code {
	if c > 0 {
		return -c
	}
	return c
}

// isFloat, isInt, isTemporal classify atom codes for the coercion
// ladder in coerce.go.
func (c Code) isFloat() bool {
	c = c.ElemCode()
	return c == CodeF32 || c == CodeF64
}

func (c Code) isInt() bool {
	c = c.ElemCode()
	return c == CodeBool || c == CodeU8 || c == CodeI16 || c == CodeI32 || c == CodeI64
}

func (c Code) isTemporal() bool {
	c = c.ElemCode()
	return c == CodeDate || c == CodeTime || c == CodeDatetime || c == CodeTimestamp || c == CodeDuration
}

func (c Code) isNumeric() bool {
	return c.isInt() || c.isFloat()
}

// rank orders the integer/float ladder for widening coercions;
// larger rank wins. Temporal codes do not participate in rank.
func (c Code) rank() int {
	switch c.ElemCode() {
	case CodeBool:
		return 0
	case CodeU8:
		return 1
	case CodeI16:
		return 2
	case CodeI32:
		return 3
	case CodeI64:
		return 4
	case CodeF32:
		return 5
	case CodeF64:
		return 6
	}
	return -1
}

func (c Code) String() string {
	switch c.ElemCode() {
	case CodeNull:
		return "null"
	case CodeBool:
		return "bool"
	case CodeU8:
		return "u8"
	case CodeI16:
		return "i16"
	case CodeI32:
		return "i32"
	case CodeI64:
		return "i64"
	case CodeF32:
		return "f32"
	case CodeF64:
		return "f64"
	case CodeDate:
		return "date"
	case CodeTime:
		return "time"
	case CodeDatetime:
		return "datetime"
	case CodeTimestamp:
		return "timestamp"
	case CodeDuration:
		return "duration"
	case CodeString:
		return "string"
	case CodeSymbol:
		return "symbol"
	}
	return "obj"
}
