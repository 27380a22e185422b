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

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/eval"
)

func newTestState() (*engine.State, *engine.Frame) {
	state := engine.NewState(eval.Builtins())
	state.SetFlag(engine.FlagReplExtendedSyntax, true)
	frame := engine.NewRootFrame(0, "test")
	return state, frame
}

func TestRunREPLEchoesExpressionResult(t *testing.T) {
	state, frame := newTestState()
	in := strings.NewReader("1 + 2;\n")
	var out, errw bytes.Buffer
	runREPL(state, frame, in, &out, &errw)
	if errw.Len() != 0 {
		t.Fatalf("unexpected stderr: %s", errw.String())
	}
	if !strings.Contains(out.String(), "3") {
		t.Fatalf("expected output to contain 3, got %q", out.String())
	}
}

func TestRunREPLPrintsParseErrorsInRed(t *testing.T) {
	state, frame := newTestState()
	in := strings.NewReader("(((\n")
	var out, errw bytes.Buffer
	runREPL(state, frame, in, &out, &errw)
	if !strings.Contains(errw.String(), "\x1b[31m") {
		t.Fatalf("expected a red-coded error, got %q", errw.String())
	}
}

func TestRunREPLStopsCleanlyOnEOF(t *testing.T) {
	state, frame := newTestState()
	in := strings.NewReader("")
	var out, errw bytes.Buffer
	done := make(chan struct{})
	go func() {
		runREPL(state, frame, in, &out, &errw)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runREPL did not return on EOF")
	}
}

func TestEvalKwargsBindsGlobal(t *testing.T) {
	state, frame := newTestState()
	if err := evalKwargs(state, frame, `42;`); err != nil {
		t.Fatalf("evalKwargs: %v", err)
	}
	if _, ok := state.GetVar("kwargs"); !ok {
		t.Fatal("expected kwargs global to be set")
	}
}

func TestCurrentUserFallsBackToAnonymous(t *testing.T) {
	t.Setenv("USER", "")
	if got := currentUser(); got != "anonymous" {
		t.Fatalf("got %q, want anonymous", got)
	}
}
