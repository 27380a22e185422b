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

package engine

import (
	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/value"
)

// MaxStackDepth is the hard call-depth limit:
// the 38th nested call fails with StackOverflow.
const MaxStackDepth = 37

// Frame is one call's local variable scope . Function
// bodies see only their own parameters and locals plus the State's
// global namespace: chili has no lexical closure over a caller's
// frame, so Locals has no parent-frame fallback (an Open Question
// resolved this way in DESIGN.md — a plain function call does not
// capture its caller's scope, matching the q/k family's
// dynamic-global-only cross-scope convention).
type Frame struct {
	Locals map[string]value.Obj
	Fn string // current Fn's Name, for traceback rendering
	SourceID uint32
	Depth int
	HandleID int64
	User string
}

// NewRootFrame returns the depth-0 frame for a freshly parsed
// top-level source unit.
func NewRootFrame(sourceID uint32, user string) *Frame {
	return &Frame{Locals: make(map[string]value.Obj), SourceID: sourceID, User: user}
}

// Child returns a fresh call frame for invoking fn, or a
// StackOverflow error if the depth limit is exceeded.
func (f *Frame) Child(fnName string) (*Frame, error) {
	depth := 0
	if f != nil {
		depth = f.Depth + 1
	}
	if depth > MaxStackDepth {
		return nil, &chilierr.StackOverflow{}
	}
	nf := &Frame{
		Locals: make(map[string]value.Obj),
		Fn: fnName,
		Depth: depth,
		HandleID: 0,
		User: "",
	}
	if f != nil {
		nf.SourceID = f.SourceID
		nf.HandleID = f.HandleID
		nf.User = f.User
	}
	return nf, nil
}

// Get returns the local binding for name in this frame only (no
// enclosing-frame fallback).
func (f *Frame) Get(name string) (value.Obj, bool) {
	v, ok := f.Locals[name]
	return v, ok
}

// Set binds name to v in this frame.
func (f *Frame) Set(name string, v value.Obj) {
	f.Locals[name] = v
}
