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
	"github.com/chili-lang/chili/pardf"
	"github.com/chili-lang/chili/value"
)

// registerParDFBuiltins adds the partitioned-table catalogue builtins
// to reg. scan_partition/scan_partition_by_range/
// scan_partitions each take the ParDataFrame handle as their first
// argument so the table it resolves against is explicit at the call
// site, rather than threading an ambient "current table" through the
// engine; `eval/query.go`'s from-expression lowering is the primary
// caller of the underlying `pardf.Table` methods and calls them
// directly rather than through this registry.
func registerParDFBuiltins(reg map[string]*value.Fn) {
	reg["load_par_df"] = impureFn("load_par_df", 1, builtinLoadParDF)
	reg["get_par_df"] = impureFn("get_par_df", 1, builtinGetParDF)
	reg["scan_partition"] = impureFn("scan_partition", 2, builtinScanPartition)
	reg["scan_partition_by_range"] = impureFn("scan_partition_by_range", 3, builtinScanPartitionByRange)
	reg["scan_partitions"] = impureFn("scan_partitions", 2, builtinScanPartitions)
	reg["write_partition"] = impureFn("write_partition", 3, builtinWritePartition)
	reg["rechunk_partition"] = impureFn("rechunk_partition", 2, builtinRechunkPartition)
}

func builtinLoadParDF(state, _ any, args []value.Obj) (value.Obj, error) {
	root, ok := args[0].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 0, Got: args[0].Code().String()}
	}
	tables, err := asEngine(state).LoadParDF(string(root))
	if err != nil {
		return nil, err
	}
	out := &value.MixedList{}
	for _, t := range tables {
		out.Items = append(out.Items, &value.ParDataFrame{Name: t.Name})
	}
	return out, nil
}

func builtinGetParDF(state, _ any, args []value.Obj) (value.Obj, error) {
	name, ok := args[0].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 0, Got: args[0].Code().String()}
	}
	if _, ok := asEngine(state).GetParDF(string(name)); !ok {
		return nil, &chilierr.Generic{Msg: "pardf: no such table " + string(name)}
	}
	return &value.ParDataFrame{Name: string(name)}, nil
}

// parDFTable resolves v (expected to be the ParDataFrame at position
// pos) against the engine's catalogue.
func parDFTable(state any, v value.Obj, pos int) (*pardf.Table, error) {
	par, ok := v.(*value.ParDataFrame)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "pardataframe", Pos: pos, Got: v.Code().String()}
	}
	t, ok := asEngine(state).GetParDF(par.Name)
	if !ok {
		return nil, &chilierr.Generic{Msg: "pardf: no such table " + par.Name}
	}
	return t, nil
}

// partitionKeyArg accepts either a bare integer (a calendar year, for
// ByYear tables) or a value.Date (days since epoch, for ByDate tables)
// and reduces it to the i32 partition key a Table stores.
func partitionKeyArg(v value.Obj, pos int) (int32, error) {
	if d, ok := v.(value.Date); ok {
		return int32(d.T.Unix() / 86400), nil
	}
	n, ok := value.AsI64(v)
	if !ok {
		return 0, &chilierr.MismatchedArgTypeErr{Want: "numeric", Pos: pos, Got: v.Code().String()}
	}
	return int32(n), nil
}

func builtinScanPartition(state, _ any, args []value.Obj) (value.Obj, error) {
	t, err := parDFTable(state, args[0], 0)
	if err != nil {
		return nil, err
	}
	key, err := partitionKeyArg(args[1], 1)
	if err != nil {
		return nil, err
	}
	return t.ScanPartition(key)
}

func builtinScanPartitionByRange(state, _ any, args []value.Obj) (value.Obj, error) {
	t, err := parDFTable(state, args[0], 0)
	if err != nil {
		return nil, err
	}
	lo, err := partitionKeyArg(args[1], 1)
	if err != nil {
		return nil, err
	}
	hi, err := partitionKeyArg(args[2], 2)
	if err != nil {
		return nil, err
	}
	return t.ScanPartitionByRange(lo, hi)
}

func builtinScanPartitions(state, _ any, args []value.Obj) (value.Obj, error) {
	t, err := parDFTable(state, args[0], 0)
	if err != nil {
		return nil, err
	}
	set, ok := args[1].(*value.Series)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "series", Pos: 1, Got: args[1].Code().String()}
	}
	keys := make([]int32, set.Len())
	for i := 0; i < set.Len(); i++ {
		k, err := partitionKeyArg(set.At(i), 1)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return t.ScanPartitions(keys)
}

func builtinWritePartition(state, _ any, args []value.Obj) (value.Obj, error) {
	par, ok := args[0].(*value.ParDataFrame)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "pardataframe", Pos: 0, Got: args[0].Code().String()}
	}
	key, err := partitionKeyArg(args[1], 1)
	if err != nil {
		return nil, err
	}
	df, ok := args[2].(*value.DataFrame)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "dataframe", Pos: 2, Got: args[2].Code().String()}
	}
	if err := asEngine(state).WriteParDF(par.Name, key, df); err != nil {
		return nil, err
	}
	return value.Null{}, nil
}

func builtinRechunkPartition(state, _ any, args []value.Obj) (value.Obj, error) {
	par, ok := args[0].(*value.ParDataFrame)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "pardataframe", Pos: 0, Got: args[0].Code().String()}
	}
	key, err := partitionKeyArg(args[1], 1)
	if err != nil {
		return nil, err
	}
	if err := asEngine(state).RechunkParDF(par.Name, key); err != nil {
		return nil, err
	}
	return value.Null{}, nil
}
