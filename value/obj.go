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
	"math"

	"github.com/chili-lang/chili/date"
)

// Obj is the tagged value every AST node evaluates to. All of the
// concrete types in this package implement Obj.
type Obj interface {
	// Code returns the signed type code used for dispatch.
	Code() Code
	// String renders the value the way the REPL echoes it.
	String() string
}

// Null is the absence-of-value atom.
type Null struct{}

func (Null) Code() Code { return CodeNull }
func (Null) String() string { return "" }

// Bool is a boolean atom.
type Bool bool

func (Bool) Code() Code { return CodeBool }
func (b Bool) String() string {
	if b {
		return "1b"
	}
	return "0b"
}

// U8 is an 8-bit unsigned integer atom.
type U8 uint8

func (U8) Code() Code { return CodeU8 }
func (v U8) String() string { return fmt.Sprintf("%du", uint8(v)) }

// I16 is a 16-bit signed integer atom.
type I16 int16

func (I16) Code() Code { return CodeI16 }
func (v I16) String() string { return fmt.Sprintf("%dh", int16(v)) }

// I32 is a 32-bit signed integer atom.
type I32 int32

func (I32) Code() Code { return CodeI32 }
func (v I32) String() string { return fmt.Sprintf("%di", int32(v)) }

// I64 is a 64-bit signed integer atom, the default integer width.
type I64 int64

func (I64) Code() Code { return CodeI64 }
func (v I64) String() string { return fmt.Sprintf("%d", int64(v)) }

// F32 is a 32-bit floating point atom.
type F32 float32

func (F32) Code() Code { return CodeF32 }
func (v F32) String() string {
	if math.IsInf(float64(v), 1) {
		return "0w"
	}
	if math.IsInf(float64(v), -1) {
		return "-0w"
	}
	return fmt.Sprintf("%gf", float32(v))
}

// F64 is a 64-bit floating point atom.
type F64 float64

func (F64) Code() Code { return CodeF64 }
func (v F64) String() string {
	if math.IsInf(float64(v), 1) {
		return "0w"
	}
	if math.IsInf(float64(v), -1) {
		return "-0w"
	}
	return fmt.Sprintf("%g", float64(v))
}

// String is a UTF-8 string atom.
type String string

func (String) Code() Code { return CodeString }
func (s String) String() string { return string(s) }

// Symbol is an interned-style short name atom. The zero value is the
// empty symbol. Symbols compare equal iff their text is equal; the
// process-wide intern table in symtab.go lets repeated symbols share
// one backing string.
type Symbol string

func (Symbol) Code() Code { return CodeSymbol }
func (s Symbol) String() string { return "`" + string(s) }

// Date is a days-since-epoch temporal atom.
type Date struct{ T date.Time }

func (Date) Code() Code { return CodeDate }
func (d Date) String() string { return fmt.Sprintf("%04d.%02d.%02d", d.T.Year(), d.T.Month(), d.T.Day()) }

// Time is a nanosecond-of-day temporal atom.
type Time struct{ T date.Time }

func (Time) Code() Code { return CodeTime }
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%09d", t.T.Hour(), t.T.Minute(), t.T.Second(), t.T.Nanosecond())
}

// Datetime is a millisecond-since-epoch temporal atom.
type Datetime struct{ T date.Time }

func (Datetime) Code() Code { return CodeDatetime }
func (d Datetime) String() string {
	return fmt.Sprintf("%04d.%02d.%02dT%02d:%02d:%02d.%03d", d.T.Year(), d.T.Month(), d.T.Day(),
		d.T.Hour(), d.T.Minute(), d.T.Second(), d.T.Nanosecond()/1e6)
}

// Timestamp is a nanosecond-since-epoch temporal atom.
type Timestamp struct{ T date.Time }

func (Timestamp) Code() Code { return CodeTimestamp }
func (t Timestamp) String() string {
	return fmt.Sprintf("%04d.%02d.%02dD%02d:%02d:%02d.%09d", t.T.Year(), t.T.Month(), t.T.Day(),
		t.T.Hour(), t.T.Minute(), t.T.Second(), t.T.Nanosecond())
}

// Duration is a signed nanosecond duration atom. Unlike date.Duration
// (a calendar year/month/day span used elsewhere in this module),
// chili durations are fixed-width spans of nanoseconds, so Duration
// is its own int64 type rather than a reuse of date.Duration.
type Duration int64

func (Duration) Code() Code { return CodeDuration }
func (d Duration) String() string {
	neg := ""
	n := int64(d)
	if n < 0 {
		neg = "-"
		n = -n
	}
	days := n / int64(24*3600*1e9)
	rem := n % int64(24*3600*1e9)
	h := rem / int64(3600*1e9)
	rem %= int64(3600 * 1e9)
	m := rem / int64(60*1e9)
	rem %= int64(60 * 1e9)
	s := rem / 1e9
	ns := rem % 1e9
	return fmt.Sprintf("%s%dD%02d:%02d:%02d.%09d", neg, days, h, m, s, ns)
}
