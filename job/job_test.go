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

package job

import (
	"errors"
	"testing"

	"github.com/chili-lang/chili/value"
)

func TestAddGetList(t *testing.T) {
	tbl := NewTable()
	id := tbl.Add(&Job{Name: "tick1", NextRunNs: 100, Active: true})
	got, ok := tbl.Get(id)
	if !ok || got.Name != "tick1" {
		t.Fatalf("Get(%q) = %v, %v", id, got, ok)
	}
	list := tbl.List()
	if len(list) != 1 || list[0].ID != id {
		t.Fatalf("List() = %v, want one job with id %q", list, id)
	}
}

func TestDueOnlyReturnsActiveElapsedJobs(t *testing.T) {
	tbl := NewTable()
	tbl.Add(&Job{Name: "a", NextRunNs: 100, Active: true})
	tbl.Add(&Job{Name: "b", NextRunNs: 200, Active: true})
	tbl.Add(&Job{Name: "c", NextRunNs: 50, Active: false})

	due := tbl.Due(150)
	if len(due) != 1 || due[0].Name != "a" {
		t.Fatalf("Due(150) = %v, want just job a", due)
	}
}

func TestAdvanceReschedulesRecurringJob(t *testing.T) {
	tbl := NewTable()
	id := tbl.Add(&Job{Name: "a", NextRunNs: 100, IntervalNs: 50, Active: true})

	tbl.Advance(id, 100, Done, value.I64(1), nil)

	got, _ := tbl.Get(id)
	if got.NextRunNs != 150 {
		t.Fatalf("NextRunNs = %d, want 150", got.NextRunNs)
	}
	if !got.Active {
		t.Fatalf("recurring job should stay active")
	}
	if got.Status != Done || got.LastRunNs != 100 {
		t.Fatalf("got Status=%v LastRunNs=%d, want Done/100", got.Status, got.LastRunNs)
	}
}

func TestAdvanceDeactivatesOneShotJob(t *testing.T) {
	tbl := NewTable()
	id := tbl.Add(&Job{Name: "a", NextRunNs: 100, IntervalNs: 0, Active: true})

	tbl.Advance(id, 100, Failed, nil, errors.New("boom"))

	got, _ := tbl.Get(id)
	if got.Active {
		t.Fatalf("one-shot job should go inactive after running")
	}
	if got.Status != Failed || got.Err == nil {
		t.Fatalf("got Status=%v Err=%v, want Failed/non-nil", got.Status, got.Err)
	}
}

func TestSetActiveAndClear(t *testing.T) {
	tbl := NewTable()
	id := tbl.Add(&Job{Name: "a", Active: true})

	tbl.SetActive(id, false)
	got, _ := tbl.Get(id)
	if got.Active {
		t.Fatalf("SetActive(false) did not take effect")
	}

	tbl.Clear(id)
	if _, ok := tbl.Get(id); ok {
		t.Fatalf("job survived Clear")
	}
}

func TestSchedulerTickDispatchesDueJobsAndAdvances(t *testing.T) {
	tbl := NewTable()
	id := tbl.Add(&Job{Name: "ping", NextRunNs: 0, IntervalNs: 10, Active: true})

	var dispatched []string
	sched := NewScheduler(tbl, func(name string) (value.Obj, error) {
		dispatched = append(dispatched, name)
		return value.Null{}, nil
	}, 0)

	sched.Tick(5)
	if len(dispatched) != 1 || dispatched[0] != "ping" {
		t.Fatalf("dispatched = %v, want [ping]", dispatched)
	}
	got, _ := tbl.Get(id)
	if got.NextRunNs != 10 {
		t.Fatalf("NextRunNs = %d, want 10", got.NextRunNs)
	}

	sched.Tick(9)
	if len(dispatched) != 1 {
		t.Fatalf("job dispatched again before its next_run_ns: %v", dispatched)
	}
}
