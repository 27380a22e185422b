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
	"sync"

	"github.com/dchest/siphash"
)

const symtabK0, symtabK1 = 0x5ca1ab1e, 0xc001d00d

// symtab interns Symbol text so that repeated symbol atoms/series
// (e.g. a `a`b`b run) share one backing string instead of allocating
// a fresh one per occurrence. Strings are bucketed by their siphash
// (github.com/dchest/siphash) under the fixed keys above.
type symtab struct {
	mu sync.RWMutex
	buckets map[uint64][]string
}

var globalSymtab = &symtab{buckets: make(map[uint64][]string)}

func (t *symtab) intern(s string) string {
	h := siphash.Hash(symtabK0, symtabK1, []byte(s))
	t.mu.RLock()
	for _, cand := range t.buckets[h] {
		if cand == s {
			t.mu.RUnlock()
			return cand
		}
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, cand := range t.buckets[h] {
		if cand == s {
			return cand
		}
	}
	t.buckets[h] = append(t.buckets[h], s)
	return s
}

// Intern returns a Symbol sharing backing storage with any
// previously interned Symbol of the same text.
func Intern(s string) Symbol {
	return Symbol(globalSymtab.intern(s))
}
