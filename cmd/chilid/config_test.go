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
	"os"
	"path/filepath"
	"testing"

	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/eval"
)

func TestLoadConfigEmptyPathReturnsEmpty(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Tables) != 0 || len(cfg.Jobs) != 0 {
		t.Fatalf("expected an empty config, got %+v", cfg)
	}
}

func TestLoadConfigParsesTablesAndJobs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chilid.yaml")
	contents := "tables:\n  - /data/orders\njobs:\n  - name: compact\n    interval_ms: 60000\n    description: hourly compaction\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Tables) != 1 || cfg.Tables[0] != "/data/orders" {
		t.Fatalf("got tables %v", cfg.Tables)
	}
	if len(cfg.Jobs) != 1 || cfg.Jobs[0].Name != "compact" || cfg.Jobs[0].IntervalMs != 60000 {
		t.Fatalf("got jobs %+v", cfg.Jobs)
	}
}

func TestBootstrapRegistersJobs(t *testing.T) {
	state := engine.NewState(eval.Builtins())
	frame := engine.NewRootFrame(0, "")
	cfg := &config{Jobs: []jobConfig{{Name: "noop", IntervalMs: 1000, Description: "test job"}}}
	bootstrap(state, frame, cfg, newLogger(discard{}, "error"))

	jobs := state.ListJobs()
	if len(jobs) != 1 || jobs[0].Name != "noop" {
		t.Fatalf("got jobs %+v", jobs)
	}
	if jobs[0].IntervalNs != 1000*int64(1e6) {
		t.Fatalf("got interval_ns %d", jobs[0].IntervalNs)
	}
}

func TestBootstrapWarnsOnBadTableRootWithoutFailing(t *testing.T) {
	state := engine.NewState(eval.Builtins())
	frame := engine.NewRootFrame(0, "")
	cfg := &config{Tables: []string{"/does/not/exist"}}
	bootstrap(state, frame, cfg, newLogger(discard{}, "error"))
}
