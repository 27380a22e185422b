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

import (
	"encoding/binary"
	"fmt"
	"io"
	"reflect"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Symtab maps column and field names to small integer symbols so that
// a row's shape doesn't have to be repeated, byte for byte, in every
// struct that shares it.
type Symtab struct {
	interned []string       // symbol -> string
	aliased  int            // prefix of interned shared with a prior clone; must not be mutated in place
	toindex  map[string]int // string -> symbol
	memsize  int
}

func (s *Symtab) init() {
	s.toindex = maps.Clone(system2id)
}

// Reset drops every interned symbol above the ion-predefined ones.
func (s *Symtab) Reset() {
	s.clear()
}

// Get returns the string for x, or "" if x was never interned.
func (s *Symtab) Get(x Symbol) string {
	lbl, _ := s.Lookup(x)
	return lbl
}

// Lookup returns the string for x and whether x is present at all.
func (s *Symtab) Lookup(x Symbol) (string, bool) {
	if int(x) < len(systemsyms) {
		return systemsyms[x], true
	}
	id := int(x) - len(systemsyms)
	if id < len(s.interned) {
		return s.interned[id], true
	}
	return "", false
}

// MaxID reports how many symbols (predefined plus interned) s holds.
// A freshly-reset table reports len(systemsyms).
func (s *Symtab) MaxID() int {
	return len(systemsyms) + len(s.interned)
}

func (s *Symtab) getBytes(buf []byte) (Symbol, bool) {
	if s.toindex == nil {
		i, ok := system2id[string(buf)]
		return Symbol(i), ok
	}
	i, ok := s.toindex[string(buf)]
	return Symbol(i), ok
}

// InternBytes is Intern for a []byte, avoiding a string copy when buf
// is already interned.
func (s *Symtab) InternBytes(buf []byte) Symbol {
	if s.toindex == nil {
		s.init()
	}
	if i, ok := s.toindex[string(buf)]; ok {
		return Symbol(i)
	}
	id := len(s.interned) + len(systemsyms)
	s.toindex[string(buf)] = id
	s.append(string(buf))
	s.memsize += len(buf)
	return Symbol(id)
}

// Intern assigns x a Symbol, reusing its existing one if already present.
func (s *Symtab) Intern(x string) Symbol {
	if s.toindex == nil {
		s.init()
	}
	if i, ok := s.toindex[x]; ok {
		return Symbol(i)
	}
	id := len(s.interned) + len(systemsyms)
	s.toindex[x] = id
	s.append(x)
	s.memsize += len(x)
	return Symbol(id)
}

// Symbolize looks up x's Symbol without interning it.
func (s *Symtab) Symbolize(x string) (Symbol, bool) {
	if s.toindex == nil {
		i, ok := system2id[x]
		return Symbol(i), ok
	}
	i, ok := s.toindex[x]
	return Symbol(i), ok
}

// SymbolizeBytes is Symbolize for a []byte.
func (s *Symtab) SymbolizeBytes(x []byte) (Symbol, bool) {
	if s.toindex == nil {
		i, ok := system2id[string(x)]
		return Symbol(i), ok
	}
	i, ok := s.toindex[string(x)]
	return Symbol(i), ok
}

// Equal reports whether s and o intern the same symbols in the same order.
func (s *Symtab) Equal(o *Symtab) bool {
	return reflect.DeepEqual(s, o)
}

// CloneInto deep-copies s into o, reusing o's existing backing storage
// for whatever prefix of symbols the two tables already share.
func (s *Symtab) CloneInto(o *Symtab) {
	i := 0
	for i < len(o.interned) && i < len(s.interned) && s.interned[i] == o.interned[i] {
		i++
	}
	if o.toindex == nil {
		o.init()
	}
	for ; i < len(o.interned); i++ {
		str := o.interned[i]
		if old, ok := o.toindex[str]; ok && old == i+len(systemsyms) {
			// only safe to drop the lookup entry if it still
			// points at this slot and wasn't since overwritten
			delete(o.toindex, str)
		}
		s.memsize -= len(o.interned[i])
		if i < len(s.interned) {
			o.set(i, s.interned[i])
			s.memsize += len(s.interned[i])
			o.toindex[o.interned[i]] = i + len(systemsyms)
		}
	}
	for len(o.interned) < len(s.interned) {
		x := s.interned[len(o.interned)]
		o.memsize += len(x)
		o.toindex[x] = len(o.interned) + len(systemsyms)
		o.append(x)
	}
	o.interned = o.interned[:len(s.interned)]
}

func (s *Symtab) append(v string) {
	if i := len(s.interned); i < cap(s.interned) {
		s.interned = s.interned[:i+1]
		s.set(i, v)
	} else {
		s.interned = append(s.interned, v)
		s.aliased = 0
	}
}

func (s *Symtab) set(i int, v string) {
	if s.interned[i] == v {
		return
	}
	if i < s.aliased {
		// a live alias() slice still points at this backing array;
		// copy-on-write rather than mutate what it sees
		s.interned = slices.Clone(s.interned)
		s.aliased = 0
	}
	s.interned[i] = v
}

// systemsyms are the ten symbols every ion stream starts with, whether
// or not the stream ever uses them.
var systemsyms = []string{
	"$0",
	"$ion",
	"$ion_1_0",
	"$ion_symbol_table",
	"name",
	"version",
	"imports",
	"symbols",
	"max_id",
	"$ion_shared_symbol_table",
}

const (
	symbolImports              = 6
	symbolSymbols              = 7
	dollarIonSymbolTable       = 3
	dollarIonSharedSymbolTable = 9
)

var system2id map[string]int

func init() {
	system2id = make(map[string]int, len(systemsyms))
	for i, name := range systemsyms {
		system2id[name] = i
	}
}

// MinimumID reports the lowest Symbol str could ever be assigned: one
// of the ten system IDs if str names a system symbol, or len(systemsyms)
// otherwise (the first ID available for interning).
func MinimumID(str string) int {
	if i, ok := system2id[str]; ok {
		return i
	}
	return len(systemsyms)
}

// IsBVM reports whether buf begins with the 4-byte ion version marker.
func IsBVM(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	word := binary.LittleEndian.Uint32(buf)
	return word&0xff0000ff == 0xea0000e0
}

func (s *Symtab) clear() {
	s.interned = s.interned[:0]
	s.memsize = 0
	if s.toindex != nil {
		maps.Clear(s.toindex)
		maps.Copy(s.toindex, system2id)
	}
}

func leading(x []byte) []byte {
	if len(x) > 8 {
		x = x[:8]
	}
	return x
}

// Unmarshal reads a symbol table from the front of src into s. A
// leading BVM clears s first; otherwise the symbols found in src are
// interned above whatever s already holds, so a stream of incremental
// symbol tables accumulates rather than resets.
//
// Shared ion symbol tables (imports from a table other than the
// current one) are not supported.
func (s *Symtab) Unmarshal(src []byte) ([]byte, error) {
	if IsBVM(src) {
		s.clear()
		src = src[4:]
	}
	if len(src) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if t := TypeOf(src); t != AnnotationType {
		return nil, bad(t, AnnotationType, "Symtab.Unmarshal")
	}
	if len(src) < SizeOf(src) {
		return nil, fmt.Errorf("Symtab.Unmarshal: len(src)=%d, SizeOf(src)=%d", len(src), SizeOf(src))
	}
	body, rest := Contents(src)
	if body == nil {
		return nil, fmt.Errorf("Symtab.Unmarshal: Contents(%x)==nil", leading(src))
	}
	fields, body, err := ReadLabel(body)
	if err != nil {
		return nil, err
	}
	if fields != 1 {
		return nil, fmt.Errorf("%d annotations?", fields)
	}
	sym, body, err := ReadLabel(body)
	if err != nil {
		return nil, err
	}
	if sym != dollarIonSymbolTable {
		return nil, fmt.Errorf("first annotation field not $ion_symbol_table")
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("reading $ion_symbol_table: %w", io.ErrUnexpectedEOF)
	}
	if t := TypeOf(body); t != StructType {
		return nil, bad(t, StructType, "Symtab.Unmarshal (in annotation)")
	}
	if s.toindex == nil {
		s.init()
	}
	body, _ = Contents(body)
	if body == nil {
		return nil, fmt.Errorf("Symtab.Unmarshal: Contents(structure(%x))==nil", leading(body))
	}
	if err := s.internFields(body); err != nil {
		return nil, err
	}
	return rest, nil
}

// internFields walks the field list of a $ion_symbol_table struct body
// and interns every string found under the "symbols:" field, skipping
// any other field (e.g. "imports:") since shared tables aren't supported.
func (s *Symtab) internFields(body []byte) error {
	for len(body) > 0 {
		sym, rest, err := ReadLabel(body)
		if err != nil {
			return fmt.Errorf("Symtab.Unmarshal (reading fields): %w", err)
		}
		body = rest
		if sym != symbolSymbols {
			n := SizeOf(body)
			if n < 0 || len(body) < n {
				return fmt.Errorf("Symtab.Unmarshal: skipping field len=%d; len(body)=%d", n, len(body))
			}
			body = body[n:]
			continue
		}
		lst, next := Contents(body)
		if lst == nil {
			return fmt.Errorf("Symtab.Unmarshal: Contents(%x)==nil", leading(body))
		}
		for len(lst) > 0 {
			str, rest, err := ReadString(lst)
			if err != nil {
				return fmt.Errorf("Symtab.Unmarshal (in 'symbols:') %w", err)
			}
			lst = rest
			s.append(str)
			s.memsize += len(str)
			if _, ok := s.toindex[str]; !ok {
				s.toindex[str] = len(s.interned) - 1 + len(systemsyms)
			}
		}
		body = next
	}
	return nil
}

// MarshalPart writes only the symbols interned at or above starting,
// so a caller that remembers a prior MaxID can emit just the delta.
func (s *Symtab) MarshalPart(dst *Buffer, starting Symbol) {
	s.marshal(dst, starting, false)
}

// Marshal writes the full symbol table to dst, optionally prefixed
// with a BVM. If withBVM is false and s is empty, nothing is written.
func (s *Symtab) Marshal(dst *Buffer, withBVM bool) {
	s.marshal(dst, 0, withBVM)
}

func (s *Symtab) marshal(dst *Buffer, starting Symbol, withBVM bool) {
	if withBVM {
		dst.buf = append(dst.buf, 0xe0, 0x01, 0x00, 0xea)
	}
	count := 0
	if int(starting) > len(systemsyms) {
		count = int(starting) - len(systemsyms)
		if count > len(s.interned) {
			count = len(s.interned)
		}
	}
	interned := s.interned[count:]
	if len(interned) == 0 && !withBVM {
		return
	}
	dst.BeginAnnotation(1)
	dst.BeginField(dollarIonSymbolTable)
	dst.BeginStruct(-1)
	if !withBVM {
		dst.BeginField(symbolImports)
		dst.WriteSymbol(dollarIonSymbolTable)
	}
	dst.BeginField(symbolSymbols)
	dst.BeginList(-1)
	for i := range interned {
		dst.WriteString(interned[i])
	}
	dst.EndList()
	dst.EndStruct()
	dst.EndAnnotation()
}

// Contains reports whether s is a prefix-compatible superset of inner:
// every symbol inner has, s has under the same ID. When true, s can
// stand in for inner without re-encoding anything inner produced.
func (s *Symtab) Contains(inner *Symtab) bool {
	return s.contains(inner.interned)
}

func (s *Symtab) contains(in []string) bool {
	return stcontains(s.interned, in)
}

func stcontains(s, in []string) bool {
	return len(in) == 0 || len(in) <= len(s) &&
		(&in[0] == &s[0] || slices.Equal(s[:len(in)], in))
}

// alias returns the live symbol slice and marks it as shared, so a
// later append through s must copy-on-write rather than clobber it.
func (s *Symtab) alias() []string {
	n := len(s.interned)
	if n > s.aliased {
		s.aliased = n
	}
	return s.interned[:n:n]
}
