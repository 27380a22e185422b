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

package ion

// resymbolizer transcodes datums that were read under srctab so that
// they are re-encoded under dsttab, interning any symbol they carry
// into dsttab as it goes. Bag uses one per Add/Encode/Append call
// instead of re-decoding every datum into a Go value.
type resymbolizer struct {
	srctab *Symtab
	dsttab *Symtab
	expand bool // un-intern symbol datums into plain strings
}

// resym transcodes the single datum at the head of src into dst and
// returns the remaining bytes of src.
func (rs *resymbolizer) resym(dst *Buffer, src []byte) []byte {
	size := SizeOf(src)
	d := rawDatum(rs.srctab, src)
	if rs.expand && d.Type() == SymbolType {
		s, _ := d.String()
		String(s).Encode(dst, rs.dsttab)
		return src[size:]
	}
	d.Encode(dst, rs.dsttab)
	return src[size:]
}
