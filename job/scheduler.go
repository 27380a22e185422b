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
	"time"

	"github.com/chili-lang/chili/value"
)

// Dispatch looks up name in globals or built-ins and calls it with no
// arguments, returning whatever the call returns. The job package
// holds no reference to the evaluator, so the caller supplies this;
// cmd/chilid's runScheduler passes a closure over eval.DispatchByName,
// the same name resolution the execute_jobs builtin uses.
type Dispatch func(name string) (value.Obj, error)

// Scheduler runs Tick on a fixed interval until Stop is called, using
// a plain ticker+done-channel loop.
type Scheduler struct {
	table *Table
	dispatch Dispatch
	interval time.Duration
	done chan struct{}
}

// NewScheduler returns a Scheduler over table, dispatching due jobs
// through dispatch every interval.
func NewScheduler(table *Table, dispatch Dispatch, interval time.Duration) *Scheduler {
	return &Scheduler{table: table, dispatch: dispatch, interval: interval, done: make(chan struct{})}
}

// Run blocks, ticking until Stop is called.
func (s *Scheduler) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Tick(time.Now().UnixNano())
		case <-s.done:
			return
		}
	}
}

// Stop ends a running Scheduler's Run loop.
func (s *Scheduler) Stop() {
	close(s.done)
}

// Tick dispatches every active, due job by name and advances its
// schedule. A dispatch error marks that job Failed and does not stop
// the tick from reaching the rest.
func (s *Scheduler) Tick(nowNs int64) {
	for _, j := range s.table.Due(nowNs) {
		result, err := s.dispatch(j.Name)
		status := Done
		if err != nil {
			status = Failed
		}
		s.table.Advance(j.ID, nowNs, status, result, err)
	}
}
