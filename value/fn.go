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

import (
	"fmt"
	"strings"
)

// SourcePos locates a node in a registered source, for traceback
// rendering.
type SourcePos struct {
	ByteOffset int
	SourceID uint32
}

// PureBuiltin is a built-in that cannot observe or mutate engine
// state; it is called with only its evaluated arguments.
type PureBuiltin func(args []Obj) (Obj, error)

// SideEffectingBuiltin is a built-in that needs access to engine
// state and the calling stack, e.g. to register globals or touch
// the handle table. The concrete types of state/stack are supplied
// by the engine package via an opaque interface to avoid an import
// cycle between value and engine.
type SideEffectingBuiltin func(state, stack any, args []Obj) (Obj, error)

// Fn is a function object: either a user-defined
// function (Body != nil), a pure built-in, or a state-mutating
// built-in.
type Fn struct {
	Name string // empty for anonymous lambdas
	Body string // source text of the body, for re-parse-on-first-use
	Pos SourcePos

	Params []string
	Arity int
	PartArgs map[int]Obj // positions already bound by a projection
	Missing []int // still-open positions, in ascending order

	Pure PureBuiltin
	Impure SideEffectingBuiltin
	Statements any // []ast.Node, typed any to avoid an eval<->value import cycle

	IsRaw bool // body must be (re)parsed on first call
	IsBuiltIn bool
}

func (*Fn) Code() Code { return CodeFn }

// IsBuiltin reports whether f dispatches to Pure or Impure rather
// than to parsed Statements.
func (f *Fn) IsBuiltin() bool { return f.Pure != nil || f.Impure != nil }

func (f *Fn) String() string {
	name := f.Name
	if name == "" {
		name = "{...}"
	}
	if len(f.PartArgs) == 0 {
		return fmt.Sprintf("%s/%d", name, f.Arity)
	}
	open := make([]string, len(f.Missing))
	for i, idx := range f.Missing {
		if idx < len(f.Params) {
			open[i] = f.Params[idx]
		} else {
			open[i] = fmt.Sprintf("_%d", idx)
		}
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(open, ","))
}

// Project builds a new Fn with args bound to the next len(args)
// still-open positions (or to explicit holes marked by DelayedArg),
// implementing partial application, also called "projection".
func (f *Fn) Project(args []Obj) *Fn {
	np := &Fn{
		Name: f.Name,
		Body: f.Body,
		Pos: f.Pos,
		Params: f.Params,
		Arity: f.Arity,
		Pure: f.Pure,
		Impure: f.Impure,
		Statements: f.Statements,
		IsRaw: f.IsRaw,
		IsBuiltIn: f.IsBuiltIn,
	}
	np.PartArgs = make(map[int]Obj, len(f.PartArgs))
	for k, v := range f.PartArgs {
		np.PartArgs[k] = v
	}
	missing := append([]int(nil), f.Missing...)
	var stillOpen []int
	ai := 0
	for _, pos := range missing {
		if ai >= len(args) {
			stillOpen = append(stillOpen, pos)
			continue
		}
		a := args[ai]
		ai++
		if _, hole := a.(DelayedArg); hole {
			stillOpen = append(stillOpen, pos)
			continue
		}
		np.PartArgs[pos] = a
	}
	np.Missing = stillOpen
	return np
}

// DelayedArg is an explicit "hole" marker for partial application
//.
type DelayedArg struct{}

func (DelayedArg) Code() Code { return CodeDelayedArg }
func (DelayedArg) String() string { return "_" }
