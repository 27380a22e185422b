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

// Package job holds the engine's background job table: named,
// interval-scheduled calls dispatched by the scheduler tick. It uses
// the same one-RWMutex-guarded-map convention as engine.State's other
// resource tables.
package job

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/chili-lang/chili/value"
)

// Status records the outcome of a job's most recent dispatch. It is
// orthogonal to Active: a job can be Active with a Failed last run,
// and a job that has gone inactive (its interval expired) keeps
// whatever Status its last run left it in.
type Status int

const (
	Pending Status = iota
	Running
	Done
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Job is one scheduled background call: "name,
// start_ns, end_ns, interval_ns, last_run_ns, next_run_ns, active,
// description". Name is looked up in globals or built-ins at dispatch
// time rather than holding a direct Fn reference, so reassigning the
// global rebinds what a running job calls.
type Job struct {
	ID string
	Name string
	StartNs int64
	EndNs int64
	IntervalNs int64
	LastRunNs int64
	NextRunNs int64
	Active bool
	Description string

	Status Status
	Result value.Obj
	Err error
}

// Table is the process-wide job registry.
type Table struct {
	mu sync.RWMutex
	jobs map[string]*Job
}

// NewTable returns an empty job table.
func NewTable() *Table {
	return &Table{jobs: make(map[string]*Job)}
}

// Add registers j under a fresh uuid (unless j.ID is already set) and
// returns that id.
func (t *Table) Add(j *Job) string {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[j.ID] = j
	return j.ID
}

// Get returns the job registered under id.
func (t *Table) Get(id string) (*Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	j, ok := t.jobs[id]
	return j, ok
}

// List returns a snapshot of every job, ordered by id for stable
// `list_job` output.
func (t *Table) List() []*Job {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := maps.Keys(t.jobs)
	slices.Sort(ids)
	out := make([]*Job, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.jobs[id])
	}
	return out
}

// SetActive toggles a job's active flag (`set_job_status(id, bool)`).
func (t *Table) SetActive(id string, active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[id]; ok {
		j.Active = active
	}
}

// Clear removes a job's record (`clear_job`).
func (t *Table) Clear(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
}

// Due returns a snapshot of every active job whose next_run_ns has
// arrived, ordered by id.
func (t *Table) Due(nowNs int64) []*Job {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := maps.Keys(t.jobs)
	slices.Sort(ids)
	var out []*Job
	for _, id := range ids {
		j := t.jobs[id]
		if j.Active && j.NextRunNs <= nowNs {
			out = append(out, j)
		}
	}
	return out
}

// Advance records a dispatch outcome and schedules the next run
//: next_run_ns advances by interval_ns if interval_ns
// is positive, else the job goes inactive.
func (t *Table) Advance(id string, nowNs int64, status Status, result value.Obj, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok {
		return
	}
	j.LastRunNs = nowNs
	j.Status = status
	j.Result = result
	j.Err = err
	if j.IntervalNs > 0 {
		j.NextRunNs += j.IntervalNs
	} else {
		j.Active = false
	}
}
