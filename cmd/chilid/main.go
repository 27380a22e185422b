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

// chilid is the TCP server binary: it
// accepts wire connections on --port, authenticates each with an
// optional user whitelist and CHILI_IPC_TOKEN, and optionally runs a
// job scheduler tick on --interval. Flag parsing, logging setup, and
// the memory watchdog are the ambient stack around the core.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/eval"
	"github.com/chili-lang/chili/job"
	"github.com/chili-lang/chili/parser"
	"github.com/chili-lang/chili/value"
	"github.com/chili-lang/chili/wire"
)

var version = "development"

func main() {
	port := flag.Int("port", 7070, "TCP port to listen on")
	remote := flag.Bool("remote", false, "bind 0.0.0.0 instead of 127.0.0.1")
	users := flag.String("users", "", "comma-separated user whitelist (empty accepts any user)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	dir := flag.String("dir", "", "directory for log output (empty uses stderr)")
	intervalMs := flag.Int64("interval", 1000, "scheduler tick interval in ms (0 disables the scheduler)")
	kwargsSrc := flag.String("kwargs", "", "chili source evaluated once at startup and bound to the kwargs global")
	memMB := flag.Int("memory", 0, "memory limit in MB (0 = unlimited; values under 1024 round up to 1024)")
	lazy := flag.Bool("lazy", false, "evaluate query forms lazily where possible")
	debug := flag.Bool("debug", false, "enable verbose evaluator tracing")
	configPath := flag.String("config", "", "optional YAML config file (table roots, job definitions)")
	flag.Parse()

	if *memMB > 0 && *memMB < 1024 {
		*memMB = 1024
	}
	os.Setenv("CHILI_MEMORY_LIMIT", fmt.Sprintf("%d", *memMB))
	os.Setenv("CHILI_SYNTAX", "chili")

	logw := os.Stderr
	if *dir != "" {
		f, err := openLogFile(*dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "chilid: unable to open log directory %q: %v\n", *dir, err)
			os.Exit(1)
		}
		defer f.Close()
		logw = f
	}
	logger := newLogger(logw, *logLevel)

	state := engine.NewState(eval.Builtins())
	frame := engine.NewRootFrame(0, "")
	state.SetFlag(engine.FlagLazyMode, *lazy)
	state.SetFlag(engine.FlagReplExtendedSyntax, true)
	state.SetFlag(engine.FlagDebug, *debug)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}
	bootstrap(state, frame, cfg, logger)

	if *kwargsSrc != "" {
		if err := evalOnce(state, frame, *kwargsSrc, "kwargs"); err != nil {
			logger.Errorf("kwargs: %v", err)
			os.Exit(1)
		}
	}

	auth := wire.ServerAuth{Token: os.Getenv("CHILI_IPC_TOKEN")}
	if *users != "" {
		auth.Users = strings.Split(*users, ",")
	}

	bindAddr := "127.0.0.1"
	if *remote {
		bindAddr = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", bindAddr, *port)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Errorf("listen on %s: %v", addr, err)
		os.Exit(1)
	}

	srv := newServer(logger, state, auth)

	var schedDone chan struct{}
	if *intervalMs > 0 {
		schedDone = runScheduler(state, frame, time.Duration(*intervalMs)*time.Millisecond)
	}

	go func() {
		logger.Infof("chilid %s listening on %s", version, addr)
		if err := srv.Serve(l); err != nil {
			logger.Errorf("serve: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Infof("shutting down")
	srv.Shutdown()
	l.Close()
	if schedDone != nil {
		close(schedDone)
	}
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(dir+"/chilid.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func evalOnce(state *engine.State, frame *engine.Frame, src, bindTo string) error {
	sourceID := state.RegisterSource([]byte(src))
	nodes, err := parser.ParseExtended(sourceID, []byte(src))
	if err != nil {
		return err
	}
	v, err := eval.Eval(state, frame, nodes)
	if err != nil {
		return err
	}
	state.SetVar(bindTo, v)
	return nil
}

// bootstrap loads cfg's table roots and registers its job
// definitions before the scheduler starts ticking.
func bootstrap(state *engine.State, frame *engine.Frame, cfg *config, logger *logger) {
	for _, root := range cfg.Tables {
		if _, err := state.LoadParDF(root); err != nil {
			logger.Warnf("load_par_df(%q): %v", root, err)
		}
	}
	for _, jc := range cfg.Jobs {
		now := time.Now().UnixNano()
		state.AddJob(&job.Job{
			Name: jc.Name,
			StartNs: now,
			IntervalNs: jc.IntervalMs * int64(time.Millisecond),
			NextRunNs: now,
			Active: true,
			Description: jc.Description,
		})
	}
}

// runScheduler starts a job.Scheduler dispatching by name against
// state, returning a channel the caller closes to stop it.
func runScheduler(state *engine.State, frame *engine.Frame, interval time.Duration) chan struct{} {
	dispatch := func(name string) (value.Obj, error) {
		return eval.DispatchByName(state, frame, name)
	}
	sched := job.NewScheduler(state.JobTable(), dispatch, interval)
	go sched.Run()
	done := make(chan struct{})
	go func() {
		<-done
		sched.Stop()
	}()
	return done
}
