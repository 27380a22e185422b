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

package date

import "bytes"

// Parse parses an RFC3339-ish timestamp from data and returns the
// associated time and true, or the zero value and false if data isn't
// recognizable as one.
//
// Parse is lenient in three ways RFC3339 itself is not: surrounding
// whitespace is ignored, a space is accepted in place of the 'T'
// separator, and a missing UTC offset is treated as "Z" rather than
// rejected. This keeps it compatible with timestamps a user might type
// by hand as well as ones a machine emits.
func Parse(data []byte) (Time, bool) {
	year, month, day, hour, min, sec, ns, ok := parse(data)
	if !ok {
		return Time{}, false
	}
	return Date(year, month, day, hour, min, sec, ns), true
}

func parse(data []byte) (year, month, day, hour, min, sec, ns int, ok bool) {
	b := bytes.TrimSpace(data)
	if len(b) < 19 {
		return
	}
	var y, mo, d int
	if y, ok = digits4(b[0:4]); !ok {
		return
	}
	if b[4] != '-' {
		ok = false
		return
	}
	if mo, ok = digits2(b[5:7]); !ok {
		return
	}
	if b[7] != '-' {
		ok = false
		return
	}
	if d, ok = digits2(b[8:10]); !ok {
		return
	}
	b = b[10:]
	if len(b) == 0 || (b[0] != 'T' && b[0] != 't' && b[0] != ' ') {
		ok = false
		return
	}
	b = b[1:]
	if len(b) < 8 {
		ok = false
		return
	}
	var h, mi, s int
	if h, ok = digits2(b[0:2]); !ok {
		return
	}
	if b[2] != ':' {
		ok = false
		return
	}
	if mi, ok = digits2(b[3:5]); !ok {
		return
	}
	if b[5] != ':' {
		ok = false
		return
	}
	if s, ok = digits2(b[6:8]); !ok {
		return
	}
	b = b[8:]

	fracNS := 0
	if len(b) > 0 && b[0] == '.' {
		rest := b[1:]
		n := 0
		for n < len(rest) && isDigit(rest[n]) {
			n++
		}
		if n == 0 {
			ok = false
			return
		}
		fracNS = fracToNanos(rest[:n])
		b = rest[n:]
	}

	offsetSec, rest, ok2 := readOffset(b)
	if !ok2 {
		ok = false
		return
	}
	if len(rest) != 0 {
		ok = false
		return
	}

	return y, mo, d, h, mi, s - offsetSec, fracNS, true
}

// readOffset consumes a trailing "Z", "+HH:MM", "-HH:MM", or nothing
// (treated as UTC) and returns the offset in seconds east of UTC.
func readOffset(b []byte) (offsetSec int, rest []byte, ok bool) {
	if len(b) == 0 {
		return 0, b, true
	}
	switch b[0] {
	case 'Z', 'z':
		return 0, b[1:], true
	case '+', '-':
		sign := 1
		if b[0] == '-' {
			sign = -1
		}
		b = b[1:]
		if len(b) < 5 || b[2] != ':' {
			return 0, nil, false
		}
		oh, ok := digits2(b[0:2])
		if !ok {
			return 0, nil, false
		}
		om, ok := digits2(b[3:5])
		if !ok {
			return 0, nil, false
		}
		return sign * (oh*3600 + om*60), b[5:], true
	default:
		return 0, nil, false
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digits2(b []byte) (int, bool) {
	if len(b) < 2 || !isDigit(b[0]) || !isDigit(b[1]) {
		return 0, false
	}
	return int(b[0]-'0')*10 + int(b[1]-'0'), true
}

func digits4(b []byte) (int, bool) {
	if len(b) < 4 {
		return 0, false
	}
	v := 0
	for i := 0; i < 4; i++ {
		if !isDigit(b[i]) {
			return 0, false
		}
		v = v*10 + int(b[i]-'0')
	}
	return v, true
}

// fracToNanos converts up to nine digits of a fractional-second
// string into nanoseconds, truncating anything past the ninth digit
// and scaling up a shorter string (".52" -> 520000000).
func fracToNanos(digits []byte) int {
	if len(digits) > 9 {
		digits = digits[:9]
	}
	v := 0
	for _, c := range digits {
		v = v*10 + int(c-'0')
	}
	for i := len(digits); i < 9; i++ {
		v *= 10
	}
	return v
}
