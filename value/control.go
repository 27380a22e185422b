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

package value

// Return wraps a value to signal an early return from a function
// body; it is transient and never escapes a completed call.
type Return struct {
	Value Obj
}

func (Return) Code() Code { return CodeReturn }
func (r Return) String() string { return r.Value.String() }

// Err is a value-carried, serialisable error . Unlike
// a Go error, an Err is a first-class Obj that can be bound by a
// try/catch, stored in a Dict, or sent over the wire.
type Err struct {
	Message string
}

func (*Err) Code() Code { return CodeErr }
func (e *Err) String() string { return e.Message }

// Error implements error so that an *Err can be returned directly
// from evaluator/engine functions that use Go's error convention.
func (e *Err) Error() string { return e.Message }
