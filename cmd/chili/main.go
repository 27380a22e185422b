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

// chili is the REPL and file-runner binary: given a
// positional source path it loads and evaluates that file once; given
// none it reads statements from stdin one line at a time. Readline
// and completer integration are out of scope.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chili-lang/chili/ast"
	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/eval"
	"github.com/chili-lang/chili/parser"
)

var version = "development"

func main() {
	lazy := flag.Bool("lazy", false, "evaluate query forms lazily where possible")
	legacy := flag.Bool("legacy-syntax", false, "parse input with the legacy bracketed grammar instead of the extended one")
	debug := flag.Bool("debug", false, "enable verbose evaluator tracing")
	kwargsSrc := flag.String("kwargs", "", "chili source evaluated once at startup and bound to the kwargs global")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	memMB := flag.Int("memory", 0, "memory limit in MB (0 = unlimited; values under 1024 round up to 1024)")
	flag.Parse()

	if *memMB > 0 && *memMB < 1024 {
		*memMB = 1024
	}
	os.Setenv("CHILI_MEMORY_LIMIT", fmt.Sprintf("%d", *memMB))
	os.Setenv("CHILI_SYNTAX", "chili")

	logger := newLogger(os.Stderr, *logLevel)

	state := engine.NewState(eval.Builtins())
	frame := engine.NewRootFrame(0, currentUser())
	state.SetFlag(engine.FlagLazyMode, *lazy)
	state.SetFlag(engine.FlagReplExtendedSyntax, !*legacy)
	state.SetFlag(engine.FlagDebug, *debug)

	if *kwargsSrc != "" {
		if err := evalKwargs(state, frame, *kwargsSrc); err != nil {
			logger.Errorf("kwargs: %v", err)
			os.Exit(1)
		}
	}

	args := flag.Args()
	if len(args) > 0 {
		if err := runFile(state, frame, args[0]); err != nil {
			printErr(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	runREPL(state, frame, os.Stdin, os.Stdout, os.Stderr)
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "anonymous"
}

// parseSource dispatches to the legacy or extended grammar depending
// on state's repl-uses-extended-syntax flag.
func parseSource(state *engine.State, sourceID uint32, src []byte) ([]ast.Node, error) {
	if state.Flag(engine.FlagReplExtendedSyntax) {
		return parser.ParseExtended(sourceID, src)
	}
	return parser.ParseLegacy(sourceID, src)
}

func evalKwargs(state *engine.State, frame *engine.Frame, src string) error {
	sourceID := state.RegisterSource([]byte(src))
	nodes, err := parseSource(state, sourceID, []byte(src))
	if err != nil {
		return err
	}
	v, err := eval.Eval(state, frame, nodes)
	if err != nil {
		return err
	}
	state.SetVar("kwargs", v)
	return nil
}

func runFile(state *engine.State, frame *engine.Frame, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sourceID := state.RegisterSource(src)
	frame.SourceID = sourceID
	nodes, err := parseSource(state, sourceID, src)
	if err != nil {
		return err
	}
	_, err = eval.Eval(state, frame, nodes)
	return err
}

// runREPL reads one statement per line from in, evaluating each
// against the shared state and printing its result (or error, in
// red) to out/errw. A blank read error (io.EOF) ends the loop
// cleanly; any other read error is fatal.
func runREPL(state *engine.State, frame *engine.Frame, in io.Reader, out, errw io.Writer) {
	r := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "chili> ")
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			evalLine(state, frame, line, out, errw)
		}
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(errw, "read error: %v\n", err)
			}
			return
		}
	}
}

func evalLine(state *engine.State, frame *engine.Frame, line string, out, errw io.Writer) {
	sourceID := state.RegisterSource([]byte(line))
	frame.SourceID = sourceID
	nodes, err := parseSource(state, sourceID, []byte(line))
	if err != nil {
		printErr(errw, err)
		return
	}
	v, err := eval.Eval(state, frame, nodes)
	if err != nil {
		printErr(errw, err)
		return
	}
	if v != nil {
		fmt.Fprintln(out, v.String())
	}
}

// printErr renders an evaluation error in red, the REPL's error
// convention.
func printErr(w io.Writer, err error) {
	fmt.Fprintf(w, "\x1b[31m%v\x1b[0m\n", err)
}
