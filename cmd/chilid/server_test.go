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
	"net"
	"testing"
	"time"

	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/eval"
	"github.com/chili-lang/chili/value"
	"github.com/chili-lang/chili/wire"
)

func startTestServer(t *testing.T, auth wire.ServerAuth) (net.Addr, *server) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	state := engine.NewState(eval.Builtins())
	srv := newServer(newLogger(discard{}, "error"), state, auth)
	go srv.Serve(l)
	t.Cleanup(func() {
		srv.Shutdown()
		l.Close()
	})
	return l.Addr(), srv
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestServerServesOneSyncRequest(t *testing.T) {
	addr, _ := startTestServer(t, wire.ServerAuth{})
	cc, err := wire.Dial(addr.String(), "alice", "", wire.ClientPrefersV9)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer cc.Close()

	req := &value.MixedList{Items: []value.Obj{value.Symbol("+"), value.I64(2), value.I64(3)}}
	resp, err := cc.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	got, ok := resp.(value.I64)
	if !ok || got != 5 {
		t.Fatalf("got %#v, want I64(5)", resp)
	}
}

func TestServerRejectsUnlistedUser(t *testing.T) {
	addr, _ := startTestServer(t, wire.ServerAuth{Users: []string{"alice"}})
	_, err := wire.Dial(addr.String(), "mallory", "", wire.ClientPrefersV9)
	if err == nil {
		t.Fatal("expected dial to fail for an unlisted user")
	}
}

func TestServerRegistersHandleAndDisconnectRemovesIt(t *testing.T) {
	addr, srv := startTestServer(t, wire.ServerAuth{})
	cc, err := wire.Dial(addr.String(), "bob", "", wire.ClientPrefersV9)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if _, err := cc.RoundTrip(value.String("1+1;")); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	cc.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		found := false
		for id := int64(1); id <= 4; id++ {
			if h, ok := srv.state.GetHandle(id); ok && h.Connected {
				found = true
			}
		}
		if !found {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("handle was not marked disconnected after client close")
}
