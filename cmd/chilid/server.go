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
	"context"
	"fmt"
	"net"

	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/eval"
	"github.com/chili-lang/chili/value"
	"github.com/chili-lang/chili/wire"
)

// server owns the listening socket and the shared engine state every
// accepted connection runs against, grounded on cmd/snellerd's
// server/Serve split (cmd/snellerd/server.go) but over one plain TCP
// listener instead of HTTP plus a tenant remote socket.
type server struct {
	logger *logger
	state *engine.State
	auth wire.ServerAuth

	ctx context.Context
	cancel context.CancelFunc
}

func newServer(logger *logger, state *engine.State, auth wire.ServerAuth) *server {
	ctx, cancel := context.WithCancel(context.Background())
	return &server{logger: logger, state: state, auth: auth, ctx: ctx, cancel: cancel}
}

// Serve accepts connections on l until it is closed, spawning one
// goroutine per connection.
func (s *server) Serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handle(conn)
	}
}

// Shutdown stops accepting disconnect-callback retries and returns;
// the caller is responsible for closing the listener itself, which
// unblocks Serve's Accept call.
func (s *server) Shutdown() {
	s.cancel()
}

func (s *server) handle(conn net.Conn) {
	defer conn.Close()

	user, version, r, err := wire.ServerHandshake(conn, s.auth)
	if err != nil {
		s.logger.Warnf("handshake from %s failed: %v", conn.RemoteAddr(), err)
		return
	}

	h := &engine.Handle{
		Addr: conn.RemoteAddr().String(),
		User: user,
		Outbound: false,
		Connected: true,
		Close: conn.Close,
	}
	handleID := s.state.SetHandle(h)
	s.logger.Infof("handle %d connected: user=%s addr=%s wire=v%d", handleID, user, h.Addr, version)

	sourceID := s.state.RegisterSource([]byte(fmt.Sprintf("<connection %s>", h.Addr)))
	c := wire.NewConn(conn, r, version, s.state, handleID, user, eval.EvalWireRequest)
	serveErr := c.Serve(sourceID)

	cb, hasCallback := s.state.GetCallback(handleID)
	s.state.DisconnectHandle(handleID)
	s.logger.Infof("handle %d disconnected: %v", handleID, serveErr)

	if hasCallback {
		msg := wire.DisconnectMessage(cb.Name, handleID)
		go wire.RunDisconnectCallback(s.ctx, func() error {
			frame := engine.NewRootFrame(sourceID, user)
			_, err := eval.CallFn(s.state, frame, cb, []value.Obj{msg})
			return err
		})
	}
}
