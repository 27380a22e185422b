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

// Package engine holds the process-wide interpreter state: registered
// sources, global variables, connection handles, disconnect
// callbacks, and the background job table, each guarded by its own
// RWMutex-guarded map rather than one coarse global lock.
//
// Lock ordering: globals -> sources -> handles -> callbacks -> jobs.
// Any code path that must hold more than one of these locks at once
// acquires them in this order to avoid deadlock; nothing in this
// package acquires them in reverse.
package engine

import (
	"sync"

	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/job"
	"github.com/chili-lang/chili/pardf"
	"github.com/chili-lang/chili/value"
)

// State is the shared, concurrency-safe interpreter state for one
// chili process. A State is created once per server (or once per
// REPL process) and handed to every Frame.
type State struct {
	globalsMu sync.RWMutex
	globals map[string]value.Obj

	builtins map[string]*value.Fn // populated once at startup, read-only thereafter

	sourcesMu sync.RWMutex
	sources map[uint32][]byte
	nextSourceID uint32

	handlesMu sync.RWMutex
	handles map[int64]*Handle
	nextHandleID int64

	callbacksMu sync.RWMutex
	callbacks map[int64]*value.Fn

	jobs *job.Table

	parDFs *pardf.Catalogue

	flagsMu sync.RWMutex
	flags map[string]bool
}

// Recognized State flag names. A flag not in this list can still be
// set/read (Flag/SetFlag take an arbitrary string) but these are the
// ones the interpreter itself consults.
const (
	// FlagReplExtendedSyntax selects parser.ParseExtended over
	// parser.ParseLegacy for source fed into this State's process; see
	// cmd/chili's parseSource.
	FlagReplExtendedSyntax = "repl-uses-extended-syntax"
	// FlagLazyMode makes a `select` query return a *value.LazyFrame
	// instead of eagerly materializing a *value.DataFrame; see
	// eval.evalSelect.
	FlagLazyMode = "lazy-mode"
	// FlagDebug enables verbose per-step tracing in the evaluator.
	FlagDebug = "debug"
)

// NewState returns an empty State with its builtin registry seeded
// from reg (typically eval.Builtins()); reg may be nil.
func NewState(reg map[string]*value.Fn) *State {
	if reg == nil {
		reg = map[string]*value.Fn{}
	}
	return &State{
		globals: make(map[string]value.Obj),
		builtins: reg,
		sources: make(map[uint32][]byte),
		handles: make(map[int64]*Handle),
		callbacks: make(map[int64]*value.Fn),
		jobs: job.NewTable(),
		parDFs: pardf.NewCatalogue(),
		flags: make(map[string]bool),
	}
}

// SetFlag sets a named process-wide toggle (FlagLazyMode and
// friends). Unrecognized names are accepted too, so a caller can stash
// its own ad hoc toggle without changing this package.
func (s *State) SetFlag(name string, v bool) {
	s.flagsMu.Lock()
	defer s.flagsMu.Unlock()
	s.flags[name] = v
}

// Flag reports whether name has been set, defaulting to false.
func (s *State) Flag(name string) bool {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	return s.flags[name]
}

// Builtin looks up a registered built-in function by name.
func (s *State) Builtin(name string) (*value.Fn, bool) {
	fn, ok := s.builtins[name]
	return fn, ok
}

// SetVar binds name to v in the global namespace (`::` assignment, or
// a bare dotted name).
func (s *State) SetVar(name string, v value.Obj) {
	s.globalsMu.Lock()
	defer s.globalsMu.Unlock()
	s.globals[name] = v
}

// GetVar returns the global binding for name.
func (s *State) GetVar(name string) (value.Obj, bool) {
	s.globalsMu.RLock()
	defer s.globalsMu.RUnlock()
	v, ok := s.globals[name]
	return v, ok
}

// GetDisplayedVars returns a snapshot of every global variable, for
// the REPL's `vars` introspection built-in.
func (s *State) GetDisplayedVars() map[string]value.Obj {
	s.globalsMu.RLock()
	defer s.globalsMu.RUnlock()
	out := make(map[string]value.Obj, len(s.globals))
	for k, v := range s.globals {
		out[k] = v
	}
	return out
}

// RegisterSource stores src under a fresh source id, for later
// traceback rendering against value.SourcePos.SourceID.
func (s *State) RegisterSource(src []byte) uint32 {
	s.sourcesMu.Lock()
	defer s.sourcesMu.Unlock()
	id := s.nextSourceID
	s.nextSourceID++
	cp := make([]byte, len(src))
	copy(cp, src)
	s.sources[id] = cp
	return id
}

// SourceText returns the registered text for id.
func (s *State) SourceText(id uint32) ([]byte, bool) {
	s.sourcesMu.RLock()
	defer s.sourcesMu.RUnlock()
	src, ok := s.sources[id]
	return src, ok
}

// Handle is one live inbound or outbound wire connection.
type Handle struct {
	ID int64
	Addr string
	User string
	Outbound bool
	Connected bool

	// RoundTrip sends a Sync request over this handle's connection and
	// returns the peer's response. Set by the connect builtin for
	// outbound handles; nil for inbound handles registered by the
	// server and for handles that exist only in tests.
	RoundTrip func(value.Obj) (value.Obj, error)

	// Close tears down the underlying connection.
	Close func() error
}

// SetHandle registers h under a fresh id and returns it.
func (s *State) SetHandle(h *Handle) int64 {
	s.handlesMu.Lock()
	defer s.handlesMu.Unlock()
	s.nextHandleID++
	h.ID = s.nextHandleID
	s.handles[h.ID] = h
	return h.ID
}

// GetHandle looks up a connection handle by id.
func (s *State) GetHandle(id int64) (*Handle, bool) {
	s.handlesMu.RLock()
	defer s.handlesMu.RUnlock()
	h, ok := s.handles[id]
	return h, ok
}

// DisconnectHandle marks a handle closed and drops its registered
// disconnect callback, if any.
func (s *State) DisconnectHandle(id int64) error {
	s.handlesMu.Lock()
	h, ok := s.handles[id]
	if !ok {
		s.handlesMu.Unlock()
		return &chilierr.InvalidHandleErr{Handle: id}
	}
	h.Connected = false
	delete(s.handles, id)
	s.handlesMu.Unlock()

	s.callbacksMu.Lock()
	delete(s.callbacks, id)
	s.callbacksMu.Unlock()
	return nil
}

// SetCallback registers fn to run when handle id disconnects.
func (s *State) SetCallback(id int64, fn *value.Fn) {
	s.callbacksMu.Lock()
	defer s.callbacksMu.Unlock()
	s.callbacks[id] = fn
}

// GetCallback returns the disconnect callback for handle id, if any.
func (s *State) GetCallback(id int64) (*value.Fn, bool) {
	s.callbacksMu.RLock()
	defer s.callbacksMu.RUnlock()
	fn, ok := s.callbacks[id]
	return fn, ok
}

// AddJob registers j under a fresh uuid and returns that id.
func (s *State) AddJob(j *job.Job) string {
	return s.jobs.Add(j)
}

// GetJob returns the job registered under id.
func (s *State) GetJob(id string) (*job.Job, bool) {
	return s.jobs.Get(id)
}

// SetJobActive toggles a job's scheduling flag (`set_job_status(id,
// bool)`).
func (s *State) SetJobActive(id string, active bool) {
	s.jobs.SetActive(id, active)
}

// ListJobs returns a snapshot of every job, ordered by id.
func (s *State) ListJobs() []*job.Job {
	return s.jobs.List()
}

// ClearJob removes a job's record.
func (s *State) ClearJob(id string) {
	s.jobs.Clear(id)
}

// DueJobs returns every active job whose next_run_ns has arrived.
func (s *State) DueJobs(nowNs int64) []*job.Job {
	return s.jobs.Due(nowNs)
}

// AdvanceJob records a dispatch outcome and reschedules the job.
func (s *State) AdvanceJob(id string, nowNs int64, status job.Status, result value.Obj, err error) {
	s.jobs.Advance(id, nowNs, status, result, err)
}

// JobTable returns the process-wide job table, for a caller (the
// scheduler daemon in cmd/chilid) that needs to construct a
// job.Scheduler directly rather than through State's builtin-facing
// wrappers.
func (s *State) JobTable() *job.Table {
	return s.jobs
}

// LoadParDF discovers every partitioned table under root and
// registers each in the process-wide catalogue, replacing any prior registration of the same table
// name.
func (s *State) LoadParDF(root string) ([]*pardf.Table, error) {
	return s.parDFs.LoadRoot(root)
}

// LoadParDFTable registers a single table at root/name under an
// explicit scheme, for callers (tests, `write-partition` of a
// brand-new table) that already know the scheme rather than relying
// on on-disk inference.
func (s *State) LoadParDFTable(root, name string, scheme value.PartitionScheme) (*pardf.Table, error) {
	return s.parDFs.Load(root, name, scheme)
}

// GetParDF returns the registered partitioned table by name.
func (s *State) GetParDF(name string) (*pardf.Table, bool) {
	return s.parDFs.Get(name)
}

// WriteParDF appends df as a new sub-partition of key under the named
// table.
func (s *State) WriteParDF(name string, key int32, df *value.DataFrame) error {
	return s.parDFs.WritePartition(name, key, df)
}

// RechunkParDF merges and sorts every sub-partition file of key into a
// single file . sortColumn, if
// non-empty, orders the merged rows ascending by that column.
func (s *State) RechunkParDF(name string, key int32, sortColumn ...string) error {
	col := ""
	if len(sortColumn) > 0 {
		col = sortColumn[0]
	}
	return s.parDFs.Rechunk(name, key, col)
}

// Sync is a no-op flush hook placeholder; chili has no durable
// catalogue of its own to flush yet.
func (s *State) Sync() error { return nil }
