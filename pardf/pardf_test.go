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
	"testing"

	"github.com/chili-lang/chili/value"
)

func frame(t *testing.T, names []string, col []int64) *value.DataFrame {
	t.Helper()
	df := &value.DataFrame{}
	s := value.NewSeries(value.CodeI64)
	for _, v := range col {
		if err := s.Append(value.I64(v)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := df.AddColumn(names[0], s); err != nil {
		t.Fatalf("add column: %v", err)
	}
	return df
}

func TestKeyStringRoundTrip(t *testing.T) {
	cases := []struct {
		scheme value.PartitionScheme
		key int32
		want string
	}{
		{value.SchemeByDate, 10957, "2000-01-01"}, // 2000-01-01 is day 10957 since epoch
		{value.SchemeByYear, 2000, "2000"},
	}
	for _, c := range cases {
		got := keyString(c.scheme, c.key)
		if got != c.want {
			t.Fatalf("keyString(%v, %d) = %q, want %q", c.scheme, c.key, got, c.want)
		}
		back, ok := parseKey(c.scheme, got)
		if !ok || back != c.key {
			t.Fatalf("parseKey(%q) = %d,%v want %d,true", got, back, ok, c.key)
		}
	}
}

func TestWriteScanPartitionRoundTrip(t *testing.T) {
	root := t.TempDir()
	cat := NewCatalogue()
	tbl, err := cat.Load(root, "events", value.SchemeByDate)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	day1 := int32(10957) // 2000-01-01
	df1 := frame(t, []string{"v"}, []int64{1, 2, 3})
	if err := cat.WritePartition("events", day1, df1); err != nil {
		t.Fatalf("write partition: %v", err)
	}
	df2 := frame(t, []string{"v"}, []int64{4, 5})
	if err := cat.WritePartition("events", day1, df2); err != nil {
		t.Fatalf("write partition (2nd file): %v", err)
	}

	got, err := tbl.ScanPartition(day1)
	if err != nil {
		t.Fatalf("scan partition: %v", err)
	}
	if got.NRow() != 5 {
		t.Fatalf("NRow = %d, want 5", got.NRow())
	}
	sum := int64(0)
	col := got.Column("v")
	for i := 0; i < col.Len(); i++ {
		n, ok := value.AsI64(col.At(i))
		if !ok {
			t.Fatalf("row %d not an integer: %#v", i, col.At(i))
		}
		sum += n
	}
	if sum != 15 {
		t.Fatalf("sum = %d, want 15", sum)
	}
}

func TestScanPartitionByRangeOpensOnlyCoveredKeys(t *testing.T) {
	root := t.TempDir()
	cat := NewCatalogue()
	if _, err := cat.Load(root, "t1", value.SchemeByDate); err != nil {
		t.Fatalf("load: %v", err)
	}

	day1 := int32(10957) // 2000-01-01
	day2 := day1 + 1 // 2000-01-02
	if err := cat.WritePartition("t1", day1, frame(t, []string{"v"}, []int64{1})); err != nil {
		t.Fatalf("write day1: %v", err)
	}
	if err := cat.WritePartition("t1", day2, frame(t, []string{"v"}, []int64{2, 3})); err != nil {
		t.Fatalf("write day2: %v", err)
	}

	tbl, err := cat.Load(root, "t1", value.SchemeByDate)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(tbl.Keys) != 2 {
		t.Fatalf("Keys = %v, want 2 entries", tbl.Keys)
	}

	// date < 2000-01-02 should only cover day1.
	got, err := tbl.ScanPartitionByRange(day1, day2-1)
	if err != nil {
		t.Fatalf("scan by range: %v", err)
	}
	if got.NRow() != 1 {
		t.Fatalf("NRow = %d, want 1 (only day1's partition)", got.NRow())
	}
}

func TestScanPartitionsSkipsUnknownKeys(t *testing.T) {
	root := t.TempDir()
	cat := NewCatalogue()
	if _, err := cat.Load(root, "t1", value.SchemeByYear); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cat.WritePartition("t1", 2020, frame(t, []string{"v"}, []int64{7})); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := cat.Load(root, "t1", value.SchemeByYear)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := tbl.ScanPartitions([]int32{2020, 2099})
	if err != nil {
		t.Fatalf("scan partitions: %v", err)
	}
	if got.NRow() != 1 {
		t.Fatalf("NRow = %d, want 1 (2099 doesn't exist)", got.NRow())
	}
}

func TestRaggedSchemaPaddedWithNulls(t *testing.T) {
	root := t.TempDir()
	cat := NewCatalogue()
	if _, err := cat.Load(root, "t1", value.SchemeByYear); err != nil {
		t.Fatalf("load: %v", err)
	}

	df1 := &value.DataFrame{}
	a1 := value.NewSeries(value.CodeI64)
	a1.Append(value.I64(1))
	df1.AddColumn("a", a1)
	if err := cat.WritePartition("t1", 2020, df1); err != nil {
		t.Fatalf("write df1: %v", err)
	}

	df2 := &value.DataFrame{}
	a2 := value.NewSeries(value.CodeI64)
	a2.Append(value.I64(2))
	b2 := value.NewSeries(value.CodeI64)
	b2.Append(value.I64(99))
	df2.AddColumn("a", a2)
	df2.AddColumn("b", b2)
	if err := cat.WritePartition("t1", 2020, df2); err != nil {
		t.Fatalf("write df2: %v", err)
	}

	tbl, err := cat.Load(root, "t1", value.SchemeByYear)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := tbl.ScanPartition(2020)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got.NRow() != 2 {
		t.Fatalf("NRow = %d, want 2", got.NRow())
	}
	b := got.Column("b")
	if _, ok := b.At(0).(value.Null); !ok {
		t.Fatalf("row 0 of b should be null (absent from df1), got %#v", b.At(0))
	}
	n, ok := value.AsI64(b.At(1))
	if !ok || n != 99 {
		t.Fatalf("row 1 of b = %#v, want 99", b.At(1))
	}
}

func TestRechunkMergesSubPartitions(t *testing.T) {
	root := t.TempDir()
	cat := NewCatalogue()
	if _, err := cat.Load(root, "t1", value.SchemeByYear); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cat.WritePartition("t1", 2021, frame(t, []string{"v"}, []int64{3})); err != nil {
		t.Fatalf("write 1: %v", err)
	}
	if err := cat.WritePartition("t1", 2021, frame(t, []string{"v"}, []int64{1, 2})); err != nil {
		t.Fatalf("write 2: %v", err)
	}

	tbl, err := cat.Load(root, "t1", value.SchemeByYear)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	p, err := tbl.PartitionOf(2021)
	if err != nil {
		t.Fatalf("partition of: %v", err)
	}
	if len(p.Files) != 2 {
		t.Fatalf("Files = %v, want 2 sub-partitions before rechunk", p.Files)
	}

	if err := cat.Rechunk("t1", 2021, "v"); err != nil {
		t.Fatalf("rechunk: %v", err)
	}

	p, err = tbl.PartitionOf(2021)
	if err != nil {
		t.Fatalf("partition of after rechunk: %v", err)
	}
	if len(p.Files) != 1 {
		t.Fatalf("Files = %v, want exactly 1 file after rechunk", p.Files)
	}
	got, err := tbl.ScanPartition(2021)
	if err != nil {
		t.Fatalf("scan after rechunk: %v", err)
	}
	if got.NRow() != 3 {
		t.Fatalf("NRow = %d, want 3", got.NRow())
	}
	col := got.Column("v")
	prev := int64(-1 << 62)
	for i := 0; i < col.Len(); i++ {
		n, _ := value.AsI64(col.At(i))
		if n < prev {
			t.Fatalf("rechunk did not sort ascending: %v", col)
		}
		prev = n
	}
}

func TestGetUnknownTable(t *testing.T) {
	cat := NewCatalogue()
	if _, ok := cat.Get("nope"); ok {
		t.Fatal("expected Get of unregistered table to report false")
	}
}
