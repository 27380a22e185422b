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

// Package chilierr defines the typed error kinds used across the
// lexer, parser, evaluator, engine, and wire layers: small wrapped
// error types rather than bare fmt.Errorf strings at call sites that
// need to be distinguished programmatically.
package chilierr

import "fmt"

// Generic is a plain message error with no further structure.
type Generic struct{ Msg string }

func (e *Generic) Error() string { return e.Msg }

// EvalErr reports a failure during AST evaluation.
type EvalErr struct{ Msg string }

func (e *EvalErr) Error() string { return "failed to eval: " + e.Msg }

// RaiseErr carries a user-`raise`d value, stringified.
type RaiseErr struct{ Msg string }

func (e *RaiseErr) Error() string { return "raised: " + e.Msg }

// NameErr reports an unbound identifier.
type NameErr struct{ Name string }

func (e *NameErr) Error() string { return fmt.Sprintf("name %q is not defined", e.Name) }

// MismatchedArgNumErr reports an arity mismatch on a direct call.
type MismatchedArgNumErr struct{ Want, Got int }

func (e *MismatchedArgNumErr) Error() string {
	return fmt.Sprintf("expect %d argument(s), %d given", e.Want, e.Got)
}

// MismatchedArgNumFnErr reports an arity mismatch when projecting a
// function-valued argument.
type MismatchedArgNumFnErr struct{ Want, Got int }

func (e *MismatchedArgNumFnErr) Error() string {
	return fmt.Sprintf("expect %d argument(s) function, %d argument(s) function given", e.Want, e.Got)
}

// MismatchedArgTypeErr reports a type mismatch at a specific
// argument position.
type MismatchedArgTypeErr struct {
	Want string
	Pos int
	Got string
}

func (e *MismatchedArgTypeErr) Error() string {
	return fmt.Sprintf("expect %q for argument %d, got %q", e.Want, e.Pos, e.Got)
}

// MismatchedLengthErr reports a vectorised length mismatch.
type MismatchedLengthErr struct{ A, B int }

func (e *MismatchedLengthErr) Error() string {
	return fmt.Sprintf("length error %d vs %d", e.A, e.B)
}

// UnsupportedUnaryOpErr reports a unary operator/type combination
// that is not in the dispatch matrix.
type UnsupportedUnaryOpErr struct{ Op, Type string }

func (e *UnsupportedUnaryOpErr) Error() string {
	return fmt.Sprintf("unsupported unary op %q for %q", e.Op, e.Type)
}

// UnsupportedBinaryOpErr reports a binary operator/type combination
// that is not in the dispatch matrix.
type UnsupportedBinaryOpErr struct{ Op, Lhs, Rhs string }

func (e *UnsupportedBinaryOpErr) Error() string {
	return fmt.Sprintf("unsupported binary op %q between %q and %q", e.Op, e.Lhs, e.Rhs)
}

// ForbiddenKeywordErr reports the use of a reserved name as a
// function parameter.
type ForbiddenKeywordErr struct{ Name string }

func (e *ForbiddenKeywordErr) Error() string { return fmt.Sprintf("forbidden %q keyword", e.Name) }

// InvalidHandleErr reports an unknown connection handle id.
type InvalidHandleErr struct{ Handle int64 }

func (e *InvalidHandleErr) Error() string { return fmt.Sprintf("invalid handle err %d", e.Handle) }

// ParserErr reports a lexer/parser failure with the offending byte
// span, so the REPL can tell "incomplete input" (span touches EOF)
// from a terminal syntax error.
type ParserErr struct {
	Msg string
	Span [2]int // [start, end) byte offsets
	AtEOF bool
}

func (e *ParserErr) Error() string { return "parser err: " + e.Msg }

// OsErr wraps an I/O failure.
type OsErr struct{ Err error }

func (e *OsErr) Error() string { return "os err: " + e.Err.Error() }
func (e *OsErr) Unwrap() error { return e.Err }

// ReadLockErr / WriteLockErr report lock poisoning in the engine's
// shared state.
type ReadLockErr struct{ Resource string }

func (e *ReadLockErr) Error() string { return fmt.Sprintf("failed to read lock %q", e.Resource) }

type WriteLockErr struct{ Resource string }

func (e *WriteLockErr) Error() string { return fmt.Sprintf("failed to write lock %q", e.Resource) }

// NotYetImplemented reports a call-dispatch shape the evaluator
// recognizes but does not (yet) handle.
type NotYetImplemented struct{ What string }

func (e *NotYetImplemented) Error() string { return fmt.Sprintf("not yet implemented: %s", e.What) }

// StackOverflow is raised when call depth reaches the hard limit
//.
type StackOverflow struct{}

func (e *StackOverflow) Error() string { return "Stack overflow reached" }

// --- serialisation family ---

// UnsupportedTypeCodeErr reports a value whose type code the wire
// codec does not know how to serialise.
type UnsupportedTypeCodeErr struct{ Code int }

func (e *UnsupportedTypeCodeErr) Error() string {
	return fmt.Sprintf("not able to serialize type code %d", e.Code)
}

// UnsupportedMixedListItemErr reports a MixedList element the wire
// codec cannot serialise.
type UnsupportedMixedListItemErr struct{ Type string }

func (e *UnsupportedMixedListItemErr) Error() string {
	return fmt.Sprintf("not supported mixed list item %q", e.Type)
}

// OverLengthErr is raised when a length to be serialised exceeds
// math.MaxInt32.
type OverLengthErr struct{}

func (e *OverLengthErr) Error() string { return "length over i32::MAX" }

// DeserializationErr wraps a free-form deserialisation failure.
type DeserializationErr struct{ Msg string }

func (e *DeserializationErr) Error() string { return e.Msg }
