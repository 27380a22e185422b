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
	"fmt"

	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/value"
)

// Builtins returns the registry handed to engine.NewState. Operator
// names (`+`, `-`, `<`, ...) are registered the same way ordinary
// functions are, since unary/binary call nodes look the operator name
// up like any other identifier; eval/ops.go then invokes the Fn's body
// directly instead of going through Call's arity check and projection.
func Builtins() map[string]*value.Fn {
	reg := map[string]*value.Fn{}
	reg["+"] = pureFn("+", 2, binaryNumeric("+", func(a, b float64) float64 { return a + b }))
	reg["*"] = pureFn("*", 2, binaryNumeric("*", func(a, b float64) float64 { return a * b }))
	reg["%"] = pureFn("%", 2, binaryNumeric("%", func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return float64(int64(a) % int64(b))
	}))
	reg["/"] = pureFn("/", 2, binaryNumericFloat("/", func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	}))
	reg["-"] = pureFn("-", 2, unaryOrBinaryMinus())
	reg["<"] = pureFn("<", 2, binaryCompare("<", func(c int) bool { return c < 0 }))
	reg[">"] = pureFn(">", 2, binaryCompare(">", func(c int) bool { return c > 0 }))
	reg["<="] = pureFn("<=", 2, binaryCompare("<=", func(c int) bool { return c <= 0 }))
	reg[">="] = pureFn(">=", 2, binaryCompare(">=", func(c int) bool { return c >= 0 }))
	reg["="] = pureFn("=", 2, binaryCompare("=", func(c int) bool { return c == 0 }))
	reg["=="] = reg["="]
	reg["<>"] = pureFn("<>", 2, binaryCompare("<>", func(c int) bool { return c != 0 }))
	reg["!="] = reg["<>"]
	reg["~"] = pureFn("~", 2, func(args []value.Obj) (value.Obj, error) {
		return value.Bool(args[0].String() == args[1].String()), nil
	})
	reg["&"] = pureFn("&", 2, binaryNumeric("&", func(a, b float64) float64 {
		if a < b {
			return a
		}
		return b
	}))
	reg["|"] = pureFn("|", 2, binaryNumeric("|", func(a, b float64) float64 {
		if a > b {
			return a
		}
		return b
	}))
	reg["!"] = pureFn("!", 1, unaryNot())
	reg["#"] = pureFn("#", 1, unaryCount())
	reg["@"] = pureFn("@", 2, func(args []value.Obj) (value.Obj, error) {
		return indexInto(args[0], args[1])
	})

	reg["count"] = pureFn("count", 1, unaryCount())
	reg["neg"] = pureFn("neg", 1, unaryNeg())
	reg["not"] = pureFn("not", 1, unaryNot())
	reg["type"] = pureFn("type", 1, func(args []value.Obj) (value.Obj, error) {
		return value.Symbol(args[0].Code().String()), nil
	})
	reg["string"] = pureFn("string", 1, func(args []value.Obj) (value.Obj, error) {
		return value.String(args[0].String()), nil
	})
	reg["sum"] = pureFn("sum", 1, reduceNumeric("sum", 0, func(acc, x float64) float64 { return acc + x }))
	reg["avg"] = pureFn("avg", 1, avgFn)
	reg["max"] = pureFn("max", 1, reduceSeries("max", func(a, b float64) bool { return b > a }))
	reg["min"] = pureFn("min", 1, reduceSeries("min", func(a, b float64) bool { return b < a }))

	reg["print"] = impureFn("print", 1, func(_, _ any, args []value.Obj) (value.Obj, error) {
		fmt.Println(args[0].String())
		return value.Null{}, nil
	})
	reg["collect"] = impureFn("collect", 1, builtinCollect)
	reg["set_flag"] = impureFn("set_flag", 2, builtinSetFlag)
	reg["flag"] = impureFn("flag", 1, builtinFlag)
	registerJobBuiltins(reg)
	registerParDFBuiltins(reg)
	registerHandleBuiltins(reg)
	registerPatternBuiltins(reg)
	return reg
}

func pureFn(name string, arity int, f value.PureBuiltin) *value.Fn {
	return &value.Fn{Name: name, Arity: arity, Missing: sequentialIndices(arity), PartArgs: map[int]value.Obj{}, Pure: f, IsBuiltIn: true}
}

func impureFn(name string, arity int, f value.SideEffectingBuiltin) *value.Fn {
	return &value.Fn{Name: name, Arity: arity, Missing: sequentialIndices(arity), PartArgs: map[int]value.Obj{}, Impure: f, IsBuiltIn: true}
}

func asEngine(state any) *engine.State {
	s, _ := state.(*engine.State)
	return s
}

