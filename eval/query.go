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
	"math"
	"strings"

	"github.com/chili-lang/chili/ast"
	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/pardf"
	"github.com/chili-lang/chili/value"
)

// evalQuery lowers a select/update/delete query. The from-expression's
// column scope is resolved by binding column values straight into a
// child Frame's Locals and reusing evalNode/evalBlock unmodified,
// rather than building a column-scope-aware expression evaluator: see
// DESIGN.md's "query column scope" decision. A select query additionally
// defers that lowering behind a *value.LazyFrame when the engine's
// lazy-mode flag is set (evalSelect); update/delete always run eagerly.
func evalQuery(state *engine.State, frame *engine.Frame, q *ast.Query) (value.Obj, error) {
	from, err := evalNode(state, frame, q.From)
	if err != nil {
		return nil, err
	}

	df, ok := from.(*value.DataFrame)
	where := q.WhereExprs
	if !ok {
		par, isPar := from.(*value.ParDataFrame)
		if !isPar {
			return nil, &chilierr.MismatchedArgTypeErr{Want: "dataframe", Pos: 0, Got: from.Code().String()}
		}
		df, where, err = scanParDataFrame(state, frame, par, q.WhereExprs)
		if err != nil {
			return nil, err
		}
	}
	if len(where) != len(q.WhereExprs) {
		qCopy := *q
		qCopy.WhereExprs = where
		q = &qCopy
	}

	switch q.Op {
	case ast.Select:
		return evalSelect(state, frame, df, q)
	case ast.Update:
		return evalUpdate(state, frame, df, q)
	case ast.Delete:
		return evalDelete(state, frame, df, q)
	}
	return nil, &chilierr.NotYetImplemented{What: "exec query form"}
}

// parDFMinKey/parDFMaxKey bound an unconstrained partition scan across
// every registered key.
const (
	parDFMinKey = math.MinInt32
	parDFMaxKey = math.MaxInt32
)

// scanParDataFrame resolves a ParDataFrame from-expression into a
// concrete DataFrame by scanning only the partitions the query's
// leading date/year where-clause selects, returning the
// residual where-list with that clause stripped. A Single-scheme table
// has no partition predicate to strip; an unrecognized or absent
// leading predicate scans every registered partition.
func scanParDataFrame(state *engine.State, frame *engine.Frame, par *value.ParDataFrame, where []ast.Node) (*value.DataFrame, []ast.Node, error) {
	t, ok := state.GetParDF(par.Name)
	if !ok {
		return nil, nil, &chilierr.Generic{Msg: "pardf: no such table " + par.Name}
	}
	if t.Scheme == value.SchemeSingle {
		df, err := t.ScanPartition(0)
		return df, where, err
	}

	keyIdent := "date"
	if t.Scheme == value.SchemeByYear {
		keyIdent = "year"
	}

	if len(where) > 0 {
		if bc, ok := where[0].(*ast.BinaryCall); ok {
			if id, ok := bc.Lhs.(*ast.Identifier); ok && id.Name == keyIdent {
				df, err := scanByPartitionPredicate(state, frame, t, bc)
				if err != nil {
					return nil, nil, err
				}
				return df, where[1:], nil
			}
		}
	}

	df, err := t.ScanPartitionByRange(parDFMinKey, parDFMaxKey)
	return df, where, err
}

// scanByPartitionPredicate implements the five comparison ops and the
// `in`/`within` operators, turning the predicate's right-hand side
// into an inclusive key range or an explicit key set.
func scanByPartitionPredicate(state *engine.State, frame *engine.Frame, t *pardf.Table, bc *ast.BinaryCall) (*value.DataFrame, error) {
	rhs, err := evalNode(state, frame, bc.Rhs)
	if err != nil {
		return nil, err
	}
	switch bc.Op {
	case "=":
		key, err := partitionKeyArg(rhs, 0)
		if err != nil {
			return nil, err
		}
		return t.ScanPartition(key)
	case "<":
		key, err := partitionKeyArg(rhs, 0)
		if err != nil {
			return nil, err
		}
		return t.ScanPartitionByRange(parDFMinKey, key-1)
	case "<=":
		key, err := partitionKeyArg(rhs, 0)
		if err != nil {
			return nil, err
		}
		return t.ScanPartitionByRange(parDFMinKey, key)
	case ">":
		key, err := partitionKeyArg(rhs, 0)
		if err != nil {
			return nil, err
		}
		return t.ScanPartitionByRange(key+1, parDFMaxKey)
	case ">=":
		key, err := partitionKeyArg(rhs, 0)
		if err != nil {
			return nil, err
		}
		return t.ScanPartitionByRange(key, parDFMaxKey)
	case "within":
		lo, hi, err := partitionKeyPair(rhs)
		if err != nil {
			return nil, err
		}
		return t.ScanPartitionByRange(lo, hi)
	case "in":
		keys, err := partitionKeySet(rhs)
		if err != nil {
			return nil, err
		}
		return t.ScanPartitions(keys)
	}
	return nil, &chilierr.NotYetImplemented{What: "partition predicate op " + bc.Op}
}

// partitionKeyPair reduces a 2-element Series or MixedList to an
// inclusive (lo, hi) partition key range, for the `within` predicate.
func partitionKeyPair(v value.Obj) (int32, int32, error) {
	items, err := twoElements(v)
	if err != nil {
		return 0, 0, err
	}
	lo, err := partitionKeyArg(items[0], 0)
	if err != nil {
		return 0, 0, err
	}
	hi, err := partitionKeyArg(items[1], 1)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// partitionKeySet reduces a Series or MixedList to an explicit set of
// partition keys, for the `in` predicate.
func partitionKeySet(v value.Obj) ([]int32, error) {
	switch x := v.(type) {
	case *value.Series:
		out := make([]int32, x.Len())
		for i := 0; i < x.Len(); i++ {
			k, err := partitionKeyArg(x.At(i), i)
			if err != nil {
				return nil, err
			}
			out[i] = k
		}
		return out, nil
	case *value.MixedList:
		out := make([]int32, len(x.Items))
		for i, it := range x.Items {
			k, err := partitionKeyArg(it, i)
			if err != nil {
				return nil, err
			}
			out[i] = k
		}
		return out, nil
	}
	return nil, &chilierr.MismatchedArgTypeErr{Want: "series or list", Pos: 0, Got: v.Code().String()}
}

func twoElements(v value.Obj) ([]value.Obj, error) {
	switch x := v.(type) {
	case *value.Series:
		if x.Len() != 2 {
			return nil, &chilierr.Generic{Msg: "within: expected a 2-element range"}
		}
		return []value.Obj{x.At(0), x.At(1)}, nil
	case *value.MixedList:
		if len(x.Items) != 2 {
			return nil, &chilierr.Generic{Msg: "within: expected a 2-element range"}
		}
		return x.Items, nil
	}
	return nil, &chilierr.MismatchedArgTypeErr{Want: "2-element range", Pos: 0, Got: v.Code().String()}
}

// rowBindings returns the column-scope local bindings for one row:
// every column name bound to its scalar value at that row, plus `i`
// bound to the row index.
func rowBindings(df *value.DataFrame, row int) map[string]value.Obj {
	m := make(map[string]value.Obj, len(df.Names)+1)
	for i, name := range df.Names {
		m[name] = df.Columns[i].At(row)
	}
	m["i"] = value.I64(row)
	return m
}

// groupBindings returns the column-scope local bindings for a group
// of rows: every column name bound to the group's own Series (so
// aggregate builtins like sum/avg/max/min see only that group's
// values).
func groupBindings(df *value.DataFrame, rows []int) map[string]value.Obj {
	idx := make([]int64, len(rows))
	for i, r := range rows {
		idx[i] = int64(r)
	}
	m := make(map[string]value.Obj, len(df.Names))
	for i, name := range df.Names {
		m[name] = df.Columns[i].Take(idx)
	}
	return m
}

// wholeTableBindings binds every column name to its full Series,
// used for select/update with no by-list: a bare column name passes
// the whole column through, and an aggregate call reduces it to one
// scalar.
func wholeTableBindings(df *value.DataFrame) map[string]value.Obj {
	m := make(map[string]value.Obj, len(df.Names))
	for i, name := range df.Names {
		m[name] = df.Columns[i]
	}
	return m
}

// scopedFrame builds a fresh Frame whose Locals are the column-scope
// bindings, sharing the enclosing frame's call identity (this isn't a
// function call, so Depth does not advance).
func scopedFrame(frame *engine.Frame, bindings map[string]value.Obj) *engine.Frame {
	return &engine.Frame{
		Locals: bindings,
		Fn: frame.Fn,
		SourceID: frame.SourceID,
		Depth: frame.Depth,
		HandleID: frame.HandleID,
		User: frame.User,
	}
}

func evalScoped(state *engine.State, frame *engine.Frame, n ast.Node, bindings map[string]value.Obj) (value.Obj, error) {
	return evalNode(state, scopedFrame(frame, bindings), n)
}

// exprColumnName names an op-list/by-list entry's output column: its
// explicit `name:` if given, else the bare identifier it wraps, else
// an auto-generated name.
func exprColumnName(n ast.Node, fallback int) string {
	if ce, ok := n.(*ast.ColumnExpr); ok {
		if ce.Name != "" {
			return ce.Name
		}
		return exprColumnName(ce.Expr, fallback)
	}
	if id, ok := n.(*ast.Identifier); ok {
		return id.Name
	}
	return defaultColumnName(fallback)
}

func exprOf(n ast.Node) ast.Node {
	if ce, ok := n.(*ast.ColumnExpr); ok {
		return ce.Expr
	}
	return n
}

// collectScalar reduces a one-element Series down to its sole value;
// a longer Series means an op-expr in a by-grouped query did not fully
// aggregate.
func collectScalar(v value.Obj) (value.Obj, error) {
	if s, ok := v.(*value.Series); ok {
		if s.Len() != 1 {
			return nil, &chilierr.MismatchedLengthErr{A: 1, B: s.Len()}
		}
		return s.At(0), nil
	}
	return v, nil
}

// scalarsToSeries builds a typed column from per-row/per-group scalar
// results, inferring the element code from the non-null values (widening
// across them the way arithmetic does) so a column can carry nulls
// alongside a determinate type; MixedList.Unify alone can't do this, since
// it infers its code from item zero and Null isn't numeric.
func scalarsToSeries(vals []value.Obj) (*value.Series, error) {
	code := value.CodeNull
	found := false
	for _, v := range vals {
		if _, isNull := v.(value.Null); isNull {
			continue
		}
		if !found {
			code = v.Code()
			found = true
			continue
		}
		w, err := value.Widen(code, v.Code())
		if err != nil {
			if v.Code() != code {
				return nil, &chilierr.Generic{Msg: "query: column values are not of a uniform type"}
			}
			continue
		}
		code = w
	}
	if !found {
		code = value.CodeI64
	}
	s := value.NewSeries(code)
	for _, v := range vals {
		if err := s.Append(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// filterRows evaluates every where-predicate against each row's
// column scope, keeping only rows where all predicates are truthy
//.
func filterRows(state *engine.State, frame *engine.Frame, df *value.DataFrame, where []ast.Node) ([]int64, error) {
	var kept []int64
	for row := 0; row < df.NRow(); row++ {
		b := rowBindings(df, row)
		ok := true
		for _, w := range where {
			v, err := evalScoped(state, frame, w, b)
			if err != nil {
				return nil, err
			}
			if !value.Truthy(v) {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, int64(row))
		}
	}
	return kept, nil
}

type rowGroup struct {
	key []value.Obj
	rows []int
}

// groupRows partitions df's rows by the by-expr tuple evaluated
// against each row's column scope, preserving first-seen group order.
func groupRows(state *engine.State, frame *engine.Frame, df *value.DataFrame, by []ast.Node) ([]rowGroup, error) {
	order := make([]string, 0)
	groups := make(map[string]*rowGroup)
	for row := 0; row < df.NRow(); row++ {
		b := rowBindings(df, row)
		key := make([]value.Obj, len(by))
		parts := make([]string, len(by))
		for i, be := range by {
			v, err := evalScoped(state, frame, exprOf(be), b)
			if err != nil {
				return nil, err
			}
			key[i] = v
			parts[i] = v.String()
		}
		k := strings.Join(parts, "\x00")
		g, ok := groups[k]
		if !ok {
			g = &rowGroup{key: key}
			groups[k] = g
			order = append(order, k)
		}
		g.rows = append(g.rows, row)
	}
	out := make([]rowGroup, len(order))
	for i, k := range order {
		out[i] = *groups[k]
	}
	return out, nil
}

// evalSelect lowers a select query. When state's lazy-mode flag
// (engine.FlagLazyMode) is set, it returns a *value.LazyFrame that
// defers the work to selectCollector.Collect instead of materializing
// a *value.DataFrame immediately.
func evalSelect(state *engine.State, frame *engine.Frame, df *value.DataFrame, q *ast.Query) (value.Obj, error) {
	if state.Flag(engine.FlagLazyMode) {
		return &value.LazyFrame{Plan: &selectCollector{state: state, frame: frame, df: df, q: q}}, nil
	}
	return evalSelectEager(state, frame, df, q)
}

// selectCollector is the Collector a lazy select query is wrapped in;
// Collect just runs the ordinary eager lowering on demand, so a lazy
// select costs nothing beyond deferring when that lowering happens.
type selectCollector struct {
	state *engine.State
	frame *engine.Frame
	df *value.DataFrame
	q *ast.Query
}

func (c *selectCollector) Collect() (*value.DataFrame, error) {
	return evalSelectEager(c.state, c.frame, c.df, c.q)
}

// builtinCollect forces a *value.LazyFrame, returning the DataFrame it
// already held unchanged when called on anything else.
func builtinCollect(_, _ any, args []value.Obj) (value.Obj, error) {
	lf, ok := args[0].(*value.LazyFrame)
	if !ok {
		return args[0], nil
	}
	return lf.Collect()
}

// builtinSetFlag sets one of engine's named State toggles
// (`set_flag("lazy-mode", true)`).
func builtinSetFlag(state, _ any, args []value.Obj) (value.Obj, error) {
	name, ok := args[0].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 0, Got: args[0].Code().String()}
	}
	v, ok := args[1].(value.Bool)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "bool", Pos: 1, Got: args[1].Code().String()}
	}
	asEngine(state).SetFlag(string(name), bool(v))
	return value.Null{}, nil
}

// builtinFlag reads back a State toggle set by set_flag.
func builtinFlag(state, _ any, args []value.Obj) (value.Obj, error) {
	name, ok := args[0].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 0, Got: args[0].Code().String()}
	}
	return value.Bool(asEngine(state).Flag(string(name))), nil
}

func evalSelectEager(state *engine.State, frame *engine.Frame, df *value.DataFrame, q *ast.Query) (*value.DataFrame, error) {
	kept, err := filterRows(state, frame, df, q.WhereExprs)
	if err != nil {
		return nil, err
	}
	filtered, err := rowSelect(df, kept)
	if err != nil {
		return nil, err
	}

	var result *value.DataFrame
	switch {
	case len(q.ByExprs) == 0 && len(q.OpExprs) == 0:
		result = filtered
	case len(q.ByExprs) == 0:
		result, err = selectNoGroup(state, frame, filtered, q.OpExprs)
	default:
		result, err = selectGrouped(state, frame, filtered, q)
	}
	if err != nil {
		return nil, err
	}

	if q.Limit != nil {
		result, err = applyLimit(state, frame, result, q.Limit)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// selectNoGroup evaluates each op-expr once against whole-table column
// bindings: a bare column name passes its full Series through, an
// aggregate call (e.g. `sum(b)`) reduces to a one-row summary column.
// Mixing the two shapes in one op-list surfaces as a column-length
// mismatch from AddColumn, matching the DataFrame invariant.
func selectNoGroup(state *engine.State, frame *engine.Frame, df *value.DataFrame, ops []ast.Node) (*value.DataFrame, error) {
	out := &value.DataFrame{}
	b := wholeTableBindings(df)
	for i, op := range ops {
		name := exprColumnName(op, i)
		v, err := evalScoped(state, frame, exprOf(op), b)
		if err != nil {
			return nil, err
		}
		s, err := asColumnSeries(v)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(name, s); err != nil {
			return nil, &chilierr.Generic{Msg: err.Error()}
		}
	}
	return out, nil
}

// selectGrouped groups rows by the by-list, then evaluates op-exprs
// (or takes the last row of each group, if op-list is empty) against
// each group's column scope.
func selectGrouped(state *engine.State, frame *engine.Frame, df *value.DataFrame, q *ast.Query) (*value.DataFrame, error) {
	groups, err := groupRows(state, frame, df, q.ByExprs)
	if err != nil {
		return nil, err
	}
	out := &value.DataFrame{}
	byNames := make(map[string]bool, len(q.ByExprs))

	for i, be := range q.ByExprs {
		name := exprColumnName(be, i)
		byNames[name] = true
		vals := make([]value.Obj, len(groups))
		for gi, g := range groups {
			vals[gi] = g.key[i]
		}
		s, err := scalarsToSeries(vals)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(name, s); err != nil {
			return nil, &chilierr.Generic{Msg: err.Error()}
		}
	}

	if len(q.OpExprs) == 0 {
		for ci, name := range df.Names {
			if byNames[name] {
				continue
			}
			vals := make([]value.Obj, len(groups))
			for gi, g := range groups {
				last := g.rows[len(g.rows)-1]
				vals[gi] = df.Columns[ci].At(last)
			}
			s, err := scalarsToSeries(vals)
			if err != nil {
				return nil, err
			}
			if err := out.AddColumn(name, s); err != nil {
				return nil, &chilierr.Generic{Msg: err.Error()}
			}
		}
		return out, nil
	}

	for i, op := range q.OpExprs {
		name := exprColumnName(op, i)
		vals := make([]value.Obj, len(groups))
		for gi, g := range groups {
			b := groupBindings(df, g.rows)
			v, err := evalScoped(state, frame, exprOf(op), b)
			if err != nil {
				return nil, err
			}
			scalar, err := collectScalar(v)
			if err != nil {
				return nil, err
			}
			vals[gi] = scalar
		}
		s, err := scalarsToSeries(vals)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(name, s); err != nil {
			return nil, &chilierr.Generic{Msg: err.Error()}
		}
	}
	return out, nil
}

func applyLimit(state *engine.State, frame *engine.Frame, df *value.DataFrame, limitExpr ast.Node) (*value.DataFrame, error) {
	lv, err := evalNode(state, frame, limitExpr)
	if err != nil {
		return nil, err
	}
	n, ok := value.AsI64(lv)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "integer", Pos: 0, Got: lv.Code().String()}
	}
	rows := df.NRow()
	var idx []int64
	switch {
	case n >= 0:
		k := int(n)
		if k > rows {
			k = rows
		}
		idx = make([]int64, k)
		for i := range idx {
			idx[i] = int64(i)
		}
	default:
		k := int(-n)
		if k > rows {
			k = rows
		}
		idx = make([]int64, k)
		for i := range idx {
			idx[i] = int64(rows - k + i)
		}
	}
	return rowSelect(df, idx)
}

// evalUpdate implements update lowering: group-wide
// aggregates broadcast back to every row of their group, where-guarded
// op-exprs leave non-matching rows at their existing value (or null).
func evalUpdate(state *engine.State, frame *engine.Frame, df *value.DataFrame, q *ast.Query) (*value.DataFrame, error) {
	out := &value.DataFrame{Names: append([]string{}, df.Names...), Columns: append([]*value.Series{}, df.Columns...)}

	var groups []rowGroup
	var err error
	if len(q.ByExprs) > 0 {
		groups, err = groupRows(state, frame, df, q.ByExprs)
		if err != nil {
			return nil, err
		}
	}

	for i, op := range q.OpExprs {
		name := exprColumnName(op, i)
		vals := make([]value.Obj, df.NRow())

		if len(q.ByExprs) > 0 {
			for _, g := range groups {
				b := groupBindings(df, g.rows)
				v, err := evalScoped(state, frame, exprOf(op), b)
				if err != nil {
					return nil, err
				}
				scalar, err := collectScalar(v)
				if err != nil {
					return nil, err
				}
				for _, r := range g.rows {
					vals[r] = scalar
				}
			}
		} else {
			b := wholeTableBindings(df)
			v, err := evalScoped(state, frame, exprOf(op), b)
			if err != nil {
				return nil, err
			}
			if s, ok := v.(*value.Series); ok && s.Len() == df.NRow() {
				for r := 0; r < df.NRow(); r++ {
					vals[r] = s.At(r)
				}
			} else {
				scalar, err := collectScalar(v)
				if err != nil {
					return nil, err
				}
				for r := range vals {
					vals[r] = scalar
				}
			}
		}

		if len(q.WhereExprs) > 0 {
			existing := out.Column(name)
			for row := 0; row < df.NRow(); row++ {
				b := rowBindings(df, row)
				keep := true
				for _, w := range q.WhereExprs {
					wv, err := evalScoped(state, frame, w, b)
					if err != nil {
						return nil, err
					}
					if !value.Truthy(wv) {
						keep = false
						break
					}
				}
				if !keep {
					if existing != nil {
						vals[row] = existing.At(row)
					} else {
						vals[row] = value.Null{}
					}
				}
			}
		}

		s, err := scalarsToSeries(vals)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(name, s); err != nil {
			return nil, &chilierr.Generic{Msg: err.Error()}
		}
	}
	return out, nil
}

// evalDelete implements delete lowering.
func evalDelete(state *engine.State, frame *engine.Frame, df *value.DataFrame, q *ast.Query) (*value.DataFrame, error) {
	hasOp := len(q.OpExprs) > 0
	hasWhere := len(q.WhereExprs) > 0
	switch {
	case hasOp && hasWhere:
		return nil, &chilierr.Generic{Msg: "delete: cannot combine a column list and a where clause"}
	case !hasOp && !hasWhere:
		out := &value.DataFrame{}
		for i, name := range df.Names {
			if err := out.AddColumn(name, value.NewSeries(df.Columns[i].ElemCode())); err != nil {
				return nil, &chilierr.Generic{Msg: err.Error()}
			}
		}
		return out, nil
	case hasOp:
		drop := make(map[string]bool, len(q.OpExprs))
		for _, op := range q.OpExprs {
			id, ok := exprOf(op).(*ast.Identifier)
			if !ok {
				return nil, &chilierr.Generic{Msg: "delete: column list entries must be bare column names"}
			}
			drop[id.Name] = true
		}
		out := &value.DataFrame{}
		for i, name := range df.Names {
			if drop[name] {
				continue
			}
			if err := out.AddColumn(name, df.Columns[i]); err != nil {
				return nil, &chilierr.Generic{Msg: err.Error()}
			}
		}
		return out, nil
	default:
		var keep []int64
		for row := 0; row < df.NRow(); row++ {
			b := rowBindings(df, row)
			drop := false
			for _, w := range q.WhereExprs {
				v, err := evalScoped(state, frame, w, b)
				if err != nil {
					return nil, err
				}
				if value.Truthy(v) {
					drop = true
					break
				}
			}
			if !drop {
				keep = append(keep, int64(row))
			}
		}
		return rowSelect(df, keep)
	}
}
