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

package wire

import (
	"bufio"
	"net"

	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/value"
)

// ClientConn is an outbound wire session opened by the chili-language
// `connect` built-in.
type ClientConn struct {
	conn net.Conn
	r *bufio.Reader
	version byte
}

// Dial opens addr, runs the auth handshake as user/password, and
// returns a ClientConn ready for RoundTrip.
func Dial(addr, user, password string, preferred byte) (*ClientConn, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, &chilierr.OsErr{Err: err}
	}
	version, err := ClientHandshake(conn, user, password, preferred)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &ClientConn{conn: conn, r: bufio.NewReader(conn), version: version}, nil
}

// RoundTrip sends req as a Sync request and waits for the matching
// Response frame.
func (c *ClientConn) RoundTrip(req value.Obj) (value.Obj, error) {
	payload, err := EncodeBytes(req)
	if err != nil {
		return nil, err
	}
	if err := c.write(Sync, payload); err != nil {
		return nil, err
	}
	typ, body, err := ReadFrame(c.r, c.version)
	if err != nil {
		return nil, err
	}
	if typ != Response {
		return nil, &chilierr.DeserializationErr{Msg: "wire: expected a Response frame"}
	}
	return DecodeBytes(body)
}

func (c *ClientConn) write(typ MsgType, payload []byte) error {
	if c.version == 6 {
		return WriteV6(c.conn, typ, payload, compressionFor(len(payload)))
	}
	return WriteV9(c.conn, typ, payload)
}

// Close closes the underlying connection.
func (c *ClientConn) Close() error { return c.conn.Close() }
