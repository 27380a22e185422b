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

package eval

import (
	"testing"

	"github.com/chili-lang/chili/date"
	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/parser"
	"github.com/chili-lang/chili/value"
)

func dayFrame(t *testing.T, v []int64) *value.DataFrame {
	t.Helper()
	df := &value.DataFrame{}
	s := value.NewSeries(value.CodeI64)
	for _, x := range v {
		if err := s.Append(value.I64(x)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := df.AddColumn("v", s); err != nil {
		t.Fatalf("add column: %v", err)
	}
	return df
}

func dayKey(y, m, d int) int32 {
	return int32(date.Date(y, m, d, 0, 0, 0, 0).Unix() / 86400)
}

// runOn parses and evaluates src against a pre-built state/frame pair,
// rather than run's fresh State, so a test can seed a pardf catalogue
// first.
func runOn(t *testing.T, state *engine.State, frame *engine.Frame, src string) value.Obj {
	t.Helper()
	nodes, err := parser.ParseExtended(1, []byte(src))
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	v, err := Eval(state, frame, nodes)
	if err != nil {
		t.Fatalf("eval(%q): %v", src, err)
	}
	return v
}

// TestSelectFromParDataFrameOpensOnlyCoveredPartition exercises the
// from-expression lowering in eval/query.go end to end: a `date<...`
// where-clause against a by-date partitioned table should scan only
// the partition(s) the predicate covers.
func TestSelectFromParDataFrameOpensOnlyCoveredPartition(t *testing.T) {
	root := t.TempDir()
	state := engine.NewState(Builtins())
	if _, err := state.LoadParDFTable(root, "table1", value.SchemeByDate); err != nil {
		t.Fatalf("LoadParDFTable: %v", err)
	}
	day1, day2 := dayKey(2000, 1, 1), dayKey(2000, 1, 2)
	if err := state.WriteParDF("table1", day1, dayFrame(t, []int64{1, 2, 3})); err != nil {
		t.Fatalf("WriteParDF day1: %v", err)
	}
	if err := state.WriteParDF("table1", day2, dayFrame(t, []int64{10, 20})); err != nil {
		t.Fatalf("WriteParDF day2: %v", err)
	}

	frame := engine.NewRootFrame(1, "")
	df := wantDataFrame(t, runOn(t, state, frame, `select v from table1 where date<2000.01.02;`))
	if df.NRow() != 3 {
		t.Fatalf("NRow = %d, want 3 (only the 2000-01-01 partition)", df.NRow())
	}
	wantI64(t, df.Column("v").At(0), 1)
	wantI64(t, df.Column("v").At(2), 3)
}

func TestSelectFromParDataFrameEqualityPredicate(t *testing.T) {
	root := t.TempDir()
	state := engine.NewState(Builtins())
	if _, err := state.LoadParDFTable(root, "table1", value.SchemeByDate); err != nil {
		t.Fatalf("LoadParDFTable: %v", err)
	}
	day1, day2 := dayKey(2000, 1, 1), dayKey(2000, 1, 2)
	if err := state.WriteParDF("table1", day1, dayFrame(t, []int64{1, 2, 3})); err != nil {
		t.Fatalf("WriteParDF day1: %v", err)
	}
	if err := state.WriteParDF("table1", day2, dayFrame(t, []int64{10, 20})); err != nil {
		t.Fatalf("WriteParDF day2: %v", err)
	}

	frame := engine.NewRootFrame(1, "")
	df := wantDataFrame(t, runOn(t, state, frame, `select v from table1 where date=2000.01.02;`))
	if df.NRow() != 2 {
		t.Fatalf("NRow = %d, want 2 (only the 2000-01-02 partition)", df.NRow())
	}
	wantI64(t, df.Column("v").At(0), 10)
	wantI64(t, df.Column("v").At(1), 20)
}

func TestSelectFromParDataFrameWithNoDatePredicateScansAllPartitions(t *testing.T) {
	root := t.TempDir()
	state := engine.NewState(Builtins())
	if _, err := state.LoadParDFTable(root, "table1", value.SchemeByDate); err != nil {
		t.Fatalf("LoadParDFTable: %v", err)
	}
	day1, day2 := dayKey(2000, 1, 1), dayKey(2000, 1, 2)
	if err := state.WriteParDF("table1", day1, dayFrame(t, []int64{1, 2})); err != nil {
		t.Fatalf("WriteParDF day1: %v", err)
	}
	if err := state.WriteParDF("table1", day2, dayFrame(t, []int64{10, 20})); err != nil {
		t.Fatalf("WriteParDF day2: %v", err)
	}

	frame := engine.NewRootFrame(1, "")
	df := wantDataFrame(t, runOn(t, state, frame, `select v from table1;`))
	if df.NRow() != 4 {
		t.Fatalf("NRow = %d, want 4 (all partitions scanned)", df.NRow())
	}
}
