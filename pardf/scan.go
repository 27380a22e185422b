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
	"sort"

	"github.com/chili-lang/chili/value"
)

// ScanPartition opens every sub-partition file under key and returns
// their concatenated rows as one DataFrame.
func (t *Table) ScanPartition(key int32) (*value.DataFrame, error) {
	p, err := t.PartitionOf(key)
	if err != nil {
		return nil, err
	}
	out := &value.DataFrame{}
	for _, f := range p.Files {
		if err := decodeFile(f, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ScanPartitionByRange scans every registered key in [lo, hi] inclusive
//, in ascending key
// order, opening only the partitions the range actually covers.
func (t *Table) ScanPartitionByRange(lo, hi int32) (*value.DataFrame, error) {
	out := &value.DataFrame{}
	for _, k := range t.Keys {
		if k < lo || k > hi {
			continue
		}
		p, err := t.PartitionOf(k)
		if err != nil {
			return nil, err
		}
		for _, f := range p.Files {
			if err := decodeFile(f, out); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// ScanPartitions scans exactly the given set of keys, in ascending order regardless of the
// caller's input order, and silently skips keys the table doesn't
// actually have.
func (t *Table) ScanPartitions(keys []int32) (*value.DataFrame, error) {
	have := make(map[int32]bool, len(t.Keys))
	for _, k := range t.Keys {
		have[k] = true
	}
	want := make([]int32, 0, len(keys))
	for _, k := range keys {
		if have[k] {
			want = append(want, k)
		}
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

	out := &value.DataFrame{}
	for _, k := range want {
		p, err := t.PartitionOf(k)
		if err != nil {
			return nil, err
		}
		for _, f := range p.Files {
			if err := decodeFile(f, out); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
