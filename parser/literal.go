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

package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/date"
	"github.com/chili-lang/chili/token"
	"github.com/chili-lang/chili/value"
)

// literalValue converts one lexed literal token into a value.Obj. A
// whitespace-joined homogeneous run (t.Parts populated) becomes a
// Series, or for symbols a Series of CodeSymbol; a lone literal
// becomes a scalar atom.
func literalValue(t token.Token) (value.Obj, error) {
	texts := t.Parts
	if len(texts) == 0 {
		texts = []string{t.Text}
	}
	atoms := make([]value.Obj, len(texts))
	for i, txt := range texts {
		a, err := parseAtom(t.Kind, txt)
		if err != nil {
			return nil, err
		}
		atoms[i] = a
	}
	if len(atoms) == 1 {
		return atoms[0], nil
	}
	s := value.NewSeries(atoms[0].Code())
	for _, a := range atoms {
		if err := s.Append(a); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseAtom(kind token.Kind, txt string) (value.Obj, error) {
	switch kind {
	case token.Null:
		return value.Null{}, nil
	case token.Bool:
		return value.Bool(strings.HasPrefix(txt, "1")), nil
	case token.Hex:
		return parseHexLiteral(txt)
	case token.Int:
		return parseIntLiteral(txt)
	case token.Float:
		return parseFloatLiteral(txt)
	case token.Symbol:
		return value.Symbol(txt), nil
	case token.Str:
		return value.String(unescape(trimQuotes(txt))), nil
	case token.Quote:
		return value.Symbol(unescape(trimQuotes(txt))), nil
	case token.Date:
		return parseDate(txt)
	case token.TimeLit:
		return parseTimeOfDay(txt)
	case token.Timestamp:
		return parseTimestamp(txt)
	case token.Datetime:
		return parseDatetime(txt)
	case token.Duration:
		return parseDuration(txt)
	}
	return nil, &chilierr.Generic{Msg: "parser: cannot convert " + kind.String() + " token to a value"}
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		return s[1: len(s)-1]
	}
	return s
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(s[i])
			}
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// intSuffixes is ordered longest-suffix-first so a greedy HasSuffix
// scan never mistakes e.g. "i128" for "i8".
var intSuffixes = []struct {
	suf string
	code value.Code
}{
	{"i128", value.CodeI64},
	{"i64", value.CodeI64},
	{"i32", value.CodeI32},
	{"i16", value.CodeI16},
	{"u64", value.CodeI64},
	{"u32", value.CodeI64},
	{"u16", value.CodeI64},
	{"i8", value.CodeI16},
	{"u8", value.CodeU8},
	{"h", value.CodeI16},
	{"i", value.CodeI32},
	{"u", value.CodeI64},
}

func parseIntLiteral(txt string) (value.Obj, error) {
	base, code := txt, value.CodeI64
	for _, s := range intSuffixes {
		if strings.HasSuffix(txt, s.suf) {
			base = txt[:len(txt)-len(s.suf)]
			code = s.code
			break
		}
	}
	n, err := strconv.ParseInt(base, 10, 64)
	if err != nil {
		return nil, err
	}
	switch code {
	case value.CodeU8:
		return value.U8(n), nil
	case value.CodeI16:
		return value.I16(n), nil
	case value.CodeI32:
		return value.I32(n), nil
	default:
		return value.I64(n), nil
	}
}

func parseHexLiteral(txt string) (value.Obj, error) {
	neg := strings.HasPrefix(txt, "-")
	body := strings.TrimPrefix(strings.TrimPrefix(txt, "-"), "0x")
	n, err := strconv.ParseUint(body, 16, 64)
	if err != nil {
		return nil, err
	}
	v := int64(n)
	if neg {
		v = -v
	}
	return value.I64(v), nil
}

func parseFloatLiteral(txt string) (value.Obj, error) {
	if txt == "0w" {
		return value.F64(math.Inf(1)), nil
	}
	if txt == "-0w" {
		return value.F64(math.Inf(-1)), nil
	}
	base, isF32 := txt, false
	if strings.HasSuffix(base, "f32") {
		base, isF32 = base[:len(base)-3], true
	} else if strings.HasSuffix(base, "f64") {
		base = base[:len(base)-3]
	} else if strings.HasSuffix(base, "f") {
		base = base[:len(base)-1]
	}
	f, err := strconv.ParseFloat(base, 64)
	if err != nil {
		return nil, err
	}
	if isF32 {
		return value.F32(f), nil
	}
	return value.F64(f), nil
}

func parseDate(txt string) (value.Obj, error) {
	y, m, d, _, err := splitDateParts(txt)
	if err != nil {
		return nil, err
	}
	return value.Date{T: date.Date(y, m, d, 0, 0, 0, 0)}, nil
}

func parseDatetime(txt string) (value.Obj, error) {
	idx := strings.IndexByte(txt, 'T')
	y, m, d, _, err := splitDateParts(txt[:idx])
	if err != nil {
		return nil, err
	}
	hh, mm, ss, ns := parseTimeOfDayParts(txt[idx+1:])
	return value.Datetime{T: date.Date(y, m, d, hh, mm, ss, ns)}, nil
}

func parseTimestamp(txt string) (value.Obj, error) {
	idx := strings.IndexByte(txt, 'D')
	y, m, d, _, err := splitDateParts(txt[:idx])
	if err != nil {
		return nil, err
	}
	hh, mm, ss, ns := parseTimeOfDayParts(txt[idx+1:])
	return value.Timestamp{T: date.Date(y, m, d, hh, mm, ss, ns)}, nil
}

func parseTimeOfDay(txt string) (value.Obj, error) {
	hh, mm, ss, ns := parseTimeOfDayParts(txt)
	return value.Time{T: date.Date(0, 1, 1, hh, mm, ss, ns)}, nil
}

// parseDuration parses "[-]N D[HH:MM:SS[.fraction]]" into a fixed
// nanosecond count.
func parseDuration(txt string) (value.Obj, error) {
	neg := strings.HasPrefix(txt, "-")
	body := strings.TrimPrefix(txt, "-")
	idx := strings.IndexByte(body, 'D')
	days, err := strconv.ParseInt(body[:idx], 10, 64)
	if err != nil {
		return nil, err
	}
	var hh, mm, ss, ns int
	if idx+1 < len(body) {
		hh, mm, ss, ns = parseTimeOfDayParts(body[idx+1:])
	}
	total := days*24*3600*int64(1e9) + int64(hh)*3600*int64(1e9) + int64(mm)*60*int64(1e9) + int64(ss)*int64(1e9) + int64(ns)
	if neg {
		total = -total
	}
	return value.Duration(total), nil
}

func splitDateParts(txt string) (year, month, day int, rest string, err error) {
	parts := strings.SplitN(txt, ".", 3)
	if len(parts) < 3 {
		return 0, 0, 0, "", &chilierr.Generic{Msg: "parser: malformed date literal " + txt}
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, "", err
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, "", err
	}
	day, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, "", err
	}
	return year, month, day, "", nil
}

func parseTimeOfDayParts(txt string) (hh, mm, ss, ns int) {
	if txt == "" {
		return 0, 0, 0, 0
	}
	fracIdx := strings.IndexByte(txt, '.')
	whole, frac := txt, ""
	if fracIdx >= 0 {
		whole, frac = txt[:fracIdx], txt[fracIdx+1:]
	}
	fields := strings.Split(whole, ":")
	if len(fields) > 0 {
		hh, _ = strconv.Atoi(fields[0])
	}
	if len(fields) > 1 {
		mm, _ = strconv.Atoi(fields[1])
	}
	if len(fields) > 2 {
		ss, _ = strconv.Atoi(fields[2])
	}
	if frac != "" {
		for len(frac) < 9 {
			frac += "0"
		}
		ns, _ = strconv.Atoi(frac[:9])
	}
	return hh, mm, ss, ns
}
