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

	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/parser"
	"github.com/chili-lang/chili/value"
)

func wantDataFrame(t *testing.T, v value.Obj) *value.DataFrame {
	t.Helper()
	df, ok := v.(*value.DataFrame)
	if !ok {
		t.Fatalf("got %#v (%T), want *value.DataFrame", v, v)
	}
	return df
}

func TestSelectFilterAndProject(t *testing.T) {
	df := wantDataFrame(t, run(t, `
t: ([] a: [1, 2, 3, 4], b: [10, 20, 30, 40]);
select a, b from t where a > 2;
`))
	if df.NRow() != 2 {
		t.Fatalf("NRow = %d, want 2", df.NRow())
	}
	wantI64(t, df.Column("a").At(0), 3)
	wantI64(t, df.Column("b").At(1), 40)
}

func TestSelectLazyModeReturnsLazyFrame(t *testing.T) {
	v := runWithFlags(t, `
t: ([] a: [1, 2, 3, 4], b: [10, 20, 30, 40]);
select a, b from t where a > 2;
`, map[string]bool{engine.FlagLazyMode: true})
	lf, ok := v.(*value.LazyFrame)
	if !ok {
		t.Fatalf("got %#v (%T), want *value.LazyFrame", v, v)
	}
	df, err := lf.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if df.NRow() != 2 {
		t.Fatalf("NRow = %d, want 2", df.NRow())
	}
	wantI64(t, df.Column("a").At(0), 3)
	wantI64(t, df.Column("b").At(1), 40)
}

func TestCollectBuiltinForcesLazyFrame(t *testing.T) {
	df := wantDataFrame(t, runWithFlags(t, `
t: ([] a: [1, 2, 3]);
collect(select a from t where a > 1);
`, map[string]bool{engine.FlagLazyMode: true}))
	if df.NRow() != 2 {
		t.Fatalf("NRow = %d, want 2", df.NRow())
	}
}

func TestCollectBuiltinIsNoopOnNonLazyFrame(t *testing.T) {
	df := wantDataFrame(t, run(t, `collect(([] a: [1, 2]))`))
	if df.NRow() != 2 {
		t.Fatalf("NRow = %d, want 2", df.NRow())
	}
}

func TestSelectAllColumnsWithEmptyOpList(t *testing.T) {
	df := wantDataFrame(t, run(t, `
t: ([] a: [1, 2], b: [3, 4]);
select from t;
`))
	if df.NRow() != 2 || df.NCol() != 2 {
		t.Fatalf("got %dx%d, want 2x2", df.NRow(), df.NCol())
	}
}

func TestSelectWholeTableAggregate(t *testing.T) {
	df := wantDataFrame(t, run(t, `
t: ([] a: [1, 2, 3], b: [10, 20, 30]);
select total: sum(b) from t;
`))
	if df.NRow() != 1 {
		t.Fatalf("NRow = %d, want 1", df.NRow())
	}
	wantI64(t, df.Column("total").At(0), 60)
}

func TestSelectGroupedAggregate(t *testing.T) {
	df := wantDataFrame(t, run(t, `
t: ([] g: [1, 1, 2, 2], b: [10, 20, 30, 40]);
select total: sum(b) by g from t;
`))
	if df.NRow() != 2 {
		t.Fatalf("NRow = %d, want 2", df.NRow())
	}
	wantI64(t, df.Column("g").At(0), 1)
	wantI64(t, df.Column("total").At(0), 30)
	wantI64(t, df.Column("g").At(1), 2)
	wantI64(t, df.Column("total").At(1), 70)
}

func TestSelectGroupedNoOpListTakesLastOfGroup(t *testing.T) {
	df := wantDataFrame(t, run(t, `
t: ([] g: [1, 1, 2], b: [10, 20, 30]);
select by g from t;
`))
	if df.NRow() != 2 {
		t.Fatalf("NRow = %d, want 2", df.NRow())
	}
	wantI64(t, df.Column("b").At(0), 20)
	wantI64(t, df.Column("b").At(1), 30)
}

func TestSelectLimitHeadAndTail(t *testing.T) {
	head := wantDataFrame(t, run(t, `
t: ([] a: [1, 2, 3, 4, 5]);
select a from t limit 2;
`))
	if head.NRow() != 2 || mustI64(t, head.Column("a").At(0)) != 1 {
		t.Fatalf("head limit: got NRow=%d first=%v", head.NRow(), head.Column("a").At(0))
	}

	tail := wantDataFrame(t, run(t, `
t: ([] a: [1, 2, 3, 4, 5]);
select a from t limit -2;
`))
	if tail.NRow() != 2 || mustI64(t, tail.Column("a").At(0)) != 4 {
		t.Fatalf("tail limit: got NRow=%d first=%v", tail.NRow(), tail.Column("a").At(0))
	}
}

func mustI64(t *testing.T, v value.Obj) int64 {
	t.Helper()
	n, ok := value.AsI64(v)
	if !ok {
		t.Fatalf("not an integer: %#v", v)
	}
	return n
}

func TestUpdateRowWise(t *testing.T) {
	df := wantDataFrame(t, run(t, `
t: ([] a: [1, 2, 3]);
update c: a + 1 from t;
`))
	wantI64(t, df.Column("c").At(0), 2)
	wantI64(t, df.Column("c").At(2), 4)
}

func TestUpdateWithWhereKeepsOtherRowsNull(t *testing.T) {
	df := wantDataFrame(t, run(t, `
t: ([] a: [1, 2, 3]);
update c: a * 10 from t where a > 1;
`))
	if _, ok := df.Column("c").At(0).(value.Null); !ok {
		t.Fatalf("row 0 should stay null, got %#v", df.Column("c").At(0))
	}
	wantI64(t, df.Column("c").At(1), 20)
	wantI64(t, df.Column("c").At(2), 30)
}

func TestUpdateByGroupBroadcasts(t *testing.T) {
	df := wantDataFrame(t, run(t, `
t: ([] g: [1, 1, 2], b: [10, 20, 30]);
update total: sum(b) by g from t;
`))
	wantI64(t, df.Column("total").At(0), 30)
	wantI64(t, df.Column("total").At(1), 30)
	wantI64(t, df.Column("total").At(2), 30)
}

func TestDeleteRowsMatchingWhere(t *testing.T) {
	df := wantDataFrame(t, run(t, `
t: ([] a: [1, 2, 3, 4]);
delete from t where a > 2;
`))
	if df.NRow() != 2 {
		t.Fatalf("NRow = %d, want 2", df.NRow())
	}
	wantI64(t, df.Column("a").At(1), 2)
}

func TestDeleteColumns(t *testing.T) {
	df := wantDataFrame(t, run(t, `
t: ([] a: [1, 2], b: [3, 4]);
delete b from t;
`))
	if df.NCol() != 1 || df.Column("b") != nil {
		t.Fatalf("expected only column a left, got %#v", df.Names)
	}
}

func TestDeleteColumnsAndWhereIsAnError(t *testing.T) {
	nodes, err := parser.ParseExtended(1, []byte(`
t: ([] a: [1, 2]);
delete a from t where a > 1;
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	state := engine.NewState(Builtins())
	frame := engine.NewRootFrame(1, "")
	if _, err := Eval(state, frame, nodes); err == nil {
		t.Fatal("expected an error combining column list and where clause")
	}
}
