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
	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/regexp2"
	"github.com/chili-lang/chili/value"
)

// registerPatternBuiltins adds the `like`, `match`, `in`, and `within`
// binary operators to reg. The lexer also reserves "as", "join",
// "cross", and "corr" as binary-operator words, but those are left
// unregistered here: `join`/`cross`/`corr` are columnar join and
// aggregation kernels treated as external collaborators rather than
// given a core-evaluator implementation, and `as` has no described
// runtime semantics beyond its token. A use of any of the four
// surfaces the same NameErr an unbound identifier would.
func registerPatternBuiltins(reg map[string]*value.Fn) {
	reg["like"] = pureFn("like", 2, binaryPattern("like", regexp2.GolangSimilarTo))
	reg["match"] = pureFn("match", 2, binaryPattern("match", regexp2.Regexp))
	reg["in"] = pureFn("in", 2, binaryIn)
	reg["within"] = pureFn("within", 2, binaryWithin)
}

// binaryPattern implements `like` (SQL SIMILAR-TO-style `%`/`_`
// wildcards, anchored to the whole string) and `match` (substring
// search against a Go regexp), both compiled through regexp2.Compile.
// chili's tree-walking evaluator runs the compiled *regexp.Regexp
// directly rather than building a DFA automaton for SIMD execution.
func binaryPattern(op string, kind regexp2.RegexType) func([]value.Obj) (value.Obj, error) {
	return func(args []value.Obj) (value.Obj, error) {
		if len(args) != 2 {
			return nil, &chilierr.MismatchedArgNumErr{Want: 2, Got: len(args)}
		}
		s, ok := args[0].(value.String)
		if !ok {
			return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 0, Got: args[0].Code().String()}
		}
		pat, ok := args[1].(value.String)
		if !ok {
			return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 1, Got: args[1].Code().String()}
		}
		if err := regexp2.IsSupported(string(pat)); err != nil {
			return nil, &chilierr.UnsupportedBinaryOpErr{Op: op, Lhs: args[0].Code().String(), Rhs: args[1].Code().String()}
		}
		re, err := regexp2.Compile(string(pat), kind)
		if err != nil {
			return nil, &chilierr.UnsupportedBinaryOpErr{Op: op, Lhs: args[0].Code().String(), Rhs: args[1].Code().String()}
		}
		return value.Bool(re.MatchString(string(s))), nil
	}
}

// binaryIn implements `x in coll`: coll is a Series or MixedList,
// compared element-wise with the same scalar ordering binaryCompare
// uses for `=`.
func binaryIn(args []value.Obj) (value.Obj, error) {
	if len(args) != 2 {
		return nil, &chilierr.MismatchedArgNumErr{Want: 2, Got: len(args)}
	}
	items, err := patternCollItems(args[1])
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if c, ok := compareScalars(args[0], it); ok && c == 0 {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

// binaryWithin implements `x within (lo; hi)`: an inclusive range
// check against a two-element Series or MixedList.
func binaryWithin(args []value.Obj) (value.Obj, error) {
	if len(args) != 2 {
		return nil, &chilierr.MismatchedArgNumErr{Want: 2, Got: len(args)}
	}
	items, err := patternCollItems(args[1])
	if err != nil {
		return nil, err
	}
	if len(items) != 2 {
		return nil, &chilierr.MismatchedArgNumErr{Want: 2, Got: len(items)}
	}
	lo, ok1 := compareScalars(args[0], items[0])
	hi, ok2 := compareScalars(args[0], items[1])
	if !ok1 || !ok2 {
		return nil, &chilierr.UnsupportedBinaryOpErr{Op: "within", Lhs: args[0].Code().String(), Rhs: args[1].Code().String()}
	}
	return value.Bool(lo >= 0 && hi <= 0), nil
}

func patternCollItems(v value.Obj) ([]value.Obj, error) {
	switch x := v.(type) {
	case *value.MixedList:
		return x.Items, nil
	case *value.Series:
		items := make([]value.Obj, x.Len())
		for i := range items {
			items[i] = x.At(i)
		}
		return items, nil
	}
	return nil, &chilierr.MismatchedArgTypeErr{Want: "series/mixedlist", Pos: 1, Got: v.Code().String()}
}
