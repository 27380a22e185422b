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
	"bytes"
	"crypto/subtle"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/chili-lang/chili/chilierr"
)

// ClientPrefersV6 and ClientPrefersV9 are the preferred IPC versions a client offers during
// the handshake; the server replies with the version actually in
// effect for the rest of the session.
const (
	ClientPrefersV6 byte = 6
	ClientPrefersV9 byte = 9
)

// ClientHandshake sends "<user>:<password>" followed by preferred and
// a terminating zero byte, then reads back the single byte fixing the
// session's wire version.
func ClientHandshake(conn io.ReadWriter, user, password string, preferred byte) (byte, error) {
	msg := append([]byte(user+":"+password), preferred, 0)
	if _, err := conn.Write(msg); err != nil {
		return 0, &chilierr.OsErr{Err: err}
	}
	var v [1]byte
	if _, err := io.ReadFull(conn, v[:]); err != nil {
		return 0, &chilierr.OsErr{Err: err}
	}
	return v[0], nil
}

// ServerAuth holds the access-control inputs the server checks a
// handshake against: a non-empty Users whitelist restricts which user
// names are accepted, and a non-empty Token (from CHILI_IPC_TOKEN)
// requires the password to match it.
type ServerAuth struct {
	Users []string
	Token string
}

func (a ServerAuth) allowedUser(user string) bool {
	if len(a.Users) == 0 {
		return true
	}
	for _, u := range a.Users {
		if u == user {
			return true
		}
	}
	return false
}

// tokenMatches compares password to the configured token using a
// blake2b digest and constant-time comparison, rather than naive `==`.
func tokenMatches(token, password string) bool {
	want := blake2b.Sum256([]byte(token))
	got := blake2b.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}

// ServerHandshake reads a client's "<user>:<password>" + version +
// zero-byte message, validates it against auth, and writes back the
// single byte fixing the session's wire version (6 if the client
// asked for <= 6, else 9). It returns the authenticated user name, the
// negotiated version, and a buffered reader the caller must use for
// every subsequent read on conn: the handshake has no length prefix of
// its own, so a bufio.Reader scanning for the terminating zero byte
// may have already buffered bytes belonging to the first framed
// message, and those bytes would be lost if the caller went back to
// reading conn directly.
func ServerHandshake(conn io.ReadWriter, auth ServerAuth) (user string, version byte, r *bufio.Reader, err error) {
	r = bufio.NewReader(conn)
	raw, err := r.ReadBytes(0)
	if err != nil {
		return "", 0, nil, &chilierr.OsErr{Err: err}
	}
	if len(raw) < 2 {
		return "", 0, nil, &chilierr.DeserializationErr{Msg: "wire: truncated handshake"}
	}
	clientVersion := raw[len(raw)-2]
	userpass := raw[:len(raw)-2]

	idx := bytes.IndexByte(userpass, ':')
	if idx < 0 {
		return "", 0, nil, &chilierr.DeserializationErr{Msg: "wire: malformed handshake, missing ':'"}
	}
	user = string(userpass[:idx])
	password := string(userpass[idx+1:])

	if !auth.allowedUser(user) {
		return "", 0, nil, &chilierr.Generic{Msg: "wire: user not in whitelist"}
	}
	if auth.Token != "" && !tokenMatches(auth.Token, password) {
		return "", 0, nil, &chilierr.Generic{Msg: "wire: bad token"}
	}

	version = 9
	if clientVersion <= 6 {
		version = 6
	}
	if _, err := conn.Write([]byte{version}); err != nil {
		return "", 0, nil, &chilierr.OsErr{Err: err}
	}
	return user, version, r, nil
}
