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
	"time"

	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/job"
	"github.com/chili-lang/chili/value"
)

// registerJobBuiltins adds the job-table builtins to
// reg.
func registerJobBuiltins(reg map[string]*value.Fn) {
	reg["add_job"] = impureFn("add_job", 3, builtinAddJob)
	reg["list_job"] = impureFn("list_job", 0, builtinListJob)
	reg["clear_job"] = impureFn("clear_job", 1, builtinClearJob)
	reg["set_job_status"] = impureFn("set_job_status", 2, builtinSetJobStatus)
	reg["execute_jobs"] = impureFn("execute_jobs", 0, builtinExecuteJobs)
}

// builtinAddJob registers a job dispatched every interval_ns
// nanoseconds by looking name up in globals or built-ins
// (`add_job(name, interval_ns, description)`). The first run is due
// immediately; interval_ns=0 makes it one-shot.
func builtinAddJob(state, _ any, args []value.Obj) (value.Obj, error) {
	name, ok := args[0].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 0, Got: args[0].Code().String()}
	}
	intervalNs, ok := value.AsI64(args[1])
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "numeric", Pos: 1, Got: args[1].Code().String()}
	}
	description, ok := args[2].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 2, Got: args[2].Code().String()}
	}
	now := time.Now().UnixNano()
	id := asEngine(state).AddJob(&job.Job{
		Name: string(name),
		StartNs: now,
		IntervalNs: intervalNs,
		NextRunNs: now,
		Active: true,
		Description: string(description),
	})
	return value.String(id), nil
}

func jobDict(j *job.Job) *value.Dict {
	d := value.NewDict()
	d.Set("id", value.String(j.ID))
	d.Set("name", value.String(j.Name))
	d.Set("start_ns", value.I64(j.StartNs))
	d.Set("end_ns", value.I64(j.EndNs))
	d.Set("interval_ns", value.I64(j.IntervalNs))
	d.Set("last_run_ns", value.I64(j.LastRunNs))
	d.Set("next_run_ns", value.I64(j.NextRunNs))
	d.Set("active", value.Bool(j.Active))
	d.Set("description", value.String(j.Description))
	d.Set("status", value.Symbol(j.Status.String()))
	return d
}

func builtinListJob(state, _ any, _ []value.Obj) (value.Obj, error) {
	jobs := asEngine(state).ListJobs()
	out := &value.MixedList{}
	for _, j := range jobs {
		out.Items = append(out.Items, jobDict(j))
	}
	return out, nil
}

func builtinClearJob(state, _ any, args []value.Obj) (value.Obj, error) {
	id, ok := args[0].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 0, Got: args[0].Code().String()}
	}
	asEngine(state).ClearJob(string(id))
	return value.Null{}, nil
}

// builtinSetJobStatus implements `set_job_status(id, bool)`: the bool
// toggles whether the scheduler still considers the job active.
func builtinSetJobStatus(state, _ any, args []value.Obj) (value.Obj, error) {
	id, ok := args[0].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 0, Got: args[0].Code().String()}
	}
	active, ok := args[1].(value.Bool)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "bool", Pos: 1, Got: args[1].Code().String()}
	}
	asEngine(state).SetJobActive(string(id), bool(active))
	return value.Null{}, nil
}

// builtinExecuteJobs is the scheduler tick's entry point: every active, due job is dispatched by name
// (looked up in globals, then built-ins) with no arguments, and its
// schedule advanced. A job whose name resolves to nothing, or whose
// resolved value isn't callable as a zero-arg Fn, is recorded Failed
// rather than aborting the rest of the tick.
func builtinExecuteJobs(state, frame any, _ []value.Obj) (value.Obj, error) {
	st := asEngine(state)
	fr, _ := frame.(*engine.Frame)
	now := time.Now().UnixNano()
	ran := int64(0)
	for _, j := range st.DueJobs(now) {
		result, err := dispatchJobByName(st, fr, j.Name)
		status := job.Done
		if err != nil {
			status = job.Failed
		}
		st.AdvanceJob(j.ID, now, status, result, err)
		ran++
	}
	return value.I64(ran), nil
}

// DispatchByName resolves name against globals then built-ins and
// calls it with no arguments — the same resolution `execute_jobs`
// uses, exported so cmd/chilid can hand it to job.NewScheduler as the
// job.Dispatch closure without re-entering through a built-in call.
func DispatchByName(state *engine.State, frame *engine.Frame, name string) (value.Obj, error) {
	return dispatchJobByName(state, frame, name)
}

func dispatchJobByName(state *engine.State, frame *engine.Frame, name string) (value.Obj, error) {
	var callee value.Obj
	if v, ok := state.GetVar(name); ok {
		callee = v
	} else if fn, ok := state.Builtin(name); ok {
		callee = fn
	} else {
		return nil, &chilierr.NameErr{Name: name}
	}
	fn, ok := callee.(*value.Fn)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "fn", Pos: 0, Got: callee.Code().String()}
	}
	return callFn(state, frame, fn, nil)
}
