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
	"fmt"
	"os"

	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/value"
)

// WritePartition appends df as a new numbered sub-partition of key
// under t. It is the Catalogue's exclusive writer: callers are
// expected to serialize calls per table themselves (the catalogue
// mutex only guards the in-memory key list, not file creation), an
// implicit file-system lock.
func (c *Catalogue) WritePartition(name string, key int32, df *value.DataFrame) error {
	c.mu.RLock()
	t, ok := c.tables[name]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("pardf: no such table %q", name)
	}
	dir := t.dir()
	if t.Scheme != value.SchemeSingle {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &chilierr.OsErr{Err: err}
		}
	} else {
		if err := os.MkdirAll(t.Root, 0755); err != nil {
			return &chilierr.OsErr{Err: err}
		}
	}

	var path string
	if t.Scheme == value.SchemeSingle {
		path = dir
		existing := &value.DataFrame{}
		if _, err := os.Stat(path); err == nil {
			if err := decodeFile(path, existing); err != nil {
				return err
			}
			df = concatFrames(existing, df)
		}
	} else {
		seq, err := nextSeq(dir, t.Scheme, key)
		if err != nil {
			return err
		}
		path = fmt.Sprintf("%s/%s_%04d", dir, keyString(t.Scheme, key), seq)
	}

	if err := encodeFile(path, df); err != nil {
		return err
	}

	c.mu.Lock()
	if !containsKey(t.Keys, key) && t.Scheme != value.SchemeSingle {
		t.Keys = append(t.Keys, key)
		sortKeys(t.Keys)
	} else if t.Scheme == value.SchemeSingle && !containsKey(t.Keys, 0) {
		t.Keys = []int32{0}
	}
	c.mu.Unlock()
	return nil
}

// Rechunk rewrites every sub-partition file of key into a single
// file, sorted ascending by sortColumn when that is non-empty (rows
// stay in file order otherwise), via write-to-temp
// then atomic rename so readers never observe a partial rewrite.
func (c *Catalogue) Rechunk(name string, key int32, sortColumn string) error {
	c.mu.RLock()
	t, ok := c.tables[name]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("pardf: no such table %q", name)
	}
	p, err := t.PartitionOf(key)
	if err != nil {
		return err
	}
	if len(p.Files) <= 1 {
		return nil
	}
	merged := &value.DataFrame{}
	for _, f := range p.Files {
		if err := decodeFile(f, merged); err != nil {
			return err
		}
	}
	if sortColumn != "" {
		if err := sortFrameByColumn(merged, sortColumn); err != nil {
			return err
		}
	}

	tmp := fmt.Sprintf("%s.rechunk.tmp", p.Files[0])
	if err := encodeFile(tmp, merged); err != nil {
		return err
	}
	final := fmt.Sprintf("%s/%s_0000", t.dir(), keyString(t.Scheme, key))
	if err := os.Rename(tmp, final); err != nil {
		return &chilierr.OsErr{Err: err}
	}
	for _, f := range p.Files {
		if f == final {
			continue
		}
		os.Remove(f)
	}
	return nil
}

func containsKey(keys []int32, k int32) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}

func sortKeys(keys []int32) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}

// concatFrames stacks b's rows after a's, used by the Single-scheme
// write path (one file, appended in place rather than sub-partitioned).
func concatFrames(a, b *value.DataFrame) *value.DataFrame {
	out := &value.DataFrame{}
	names := a.Names
	if len(names) == 0 {
		names = b.Names
	}
	for _, name := range names {
		ac := a.Column(name)
		bc := b.Column(name)
		code := value.CodeI64
		switch {
		case ac != nil:
			code = ac.ElemCode()
		case bc != nil:
			code = bc.ElemCode()
		}
		merged := value.NewSeries(code)
		if ac != nil {
			for i := 0; i < ac.Len(); i++ {
				merged.Append(ac.At(i))
			}
		}
		if bc != nil {
			for i := 0; i < bc.Len(); i++ {
				merged.Append(bc.At(i))
			}
		}
		out.AddColumn(name, merged)
	}
	return out
}

// sortFrameByColumn reorders every column of df by ascending values of
// the named column (a stable insertion sort, adequate for rechunking
// the modest row counts a single partition key holds).
func sortFrameByColumn(df *value.DataFrame, name string) error {
	key := df.Column(name)
	if key == nil {
		return fmt.Errorf("pardf: rechunk sort column %q not found", name)
	}
	n := df.NRow()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 1; i < n; i++ {
		for j := i; j > 0; j-- {
			a, b := key.At(idx[j-1]), key.At(idx[j])
			af, aok := value.AsF64(a)
			bf, bok := value.AsF64(b)
			less := false
			if aok && bok {
				less = bf < af
			} else {
				less = b.String() < a.String()
			}
			if !less {
				break
			}
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
	idx64 := make([]int64, n)
	for i, v := range idx {
		idx64[i] = int64(v)
	}
	for ci, col := range df.Columns {
		df.Columns[ci] = col.Take(idx64)
	}
	return nil
}
