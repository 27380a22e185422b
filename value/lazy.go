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

import "fmt"

// Expr is an opaque column/expression value for a query scope. No
// code in this module constructs an Expr or interprets its Tree.
type Expr struct {
	// Tree holds an expression-tree representation, typed any so
	// that package value imports no evaluator types.
	Tree any
	// Text is a human-readable rendering, used by String and by
	// auto-naming of query output columns.
	Text string
}

func (*Expr) Code() Code { return CodeExpr }
func (e *Expr) String() string { return e.Text }

// Collector is implemented by a LazyFrame's backing plan (eval's
// selectCollector) so that Collect can force it into a concrete
// DataFrame without the value package needing to import eval.
type Collector interface {
	Collect() (*DataFrame, error)
}

// LazyFrame is a deferred computation that produces a DataFrame on
// Collect . It is returned instead of a DataFrame
// whenever the engine's lazy-mode flag is set.
type LazyFrame struct {
	Plan Collector
}

func (*LazyFrame) Code() Code { return CodeLazyFrame }
func (l *LazyFrame) String() string { return "lazyframe" }

// Collect forces the lazy plan into a concrete DataFrame.
func (l *LazyFrame) Collect() (*DataFrame, error) {
	return l.Plan.Collect()
}

// PartitionScheme enumerates how a ParDataFrame's on-disk partitions
// are keyed.
type PartitionScheme int

const (
	SchemeSingle PartitionScheme = iota
	SchemeByDate
	SchemeByYear
)

func (s PartitionScheme) String() string {
	switch s {
	case SchemeSingle:
		return "single"
	case SchemeByDate:
		return "by-date"
	case SchemeByYear:
		return "by-year"
	}
	return "unknown"
}

// ParDataFrame is a reference to a partitioned on-disk dataset
// . The pardf package owns the catalogue entry
// this refers to; this struct is the lightweight Obj handle that
// flows through the evaluator.
type ParDataFrame struct {
	Name string
}

func (*ParDataFrame) Code() Code { return CodeParDataFrame }
func (p *ParDataFrame) String() string { return fmt.Sprintf("par[%s]", p.Name) }
