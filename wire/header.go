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

// Package wire implements the two chili IPC framings, the plaintext
// auth handshake that negotiates between them, and the connection
// read/serve loop built on top. The header type is a fixed-size byte
// array with binary.LittleEndian field accessors and io.ReadFull-based
// readers.
package wire

import (
	"encoding/binary"

	"github.com/chili-lang/chili/chilierr"
)

// MsgType is the message kind carried in every header.
type MsgType byte

const (
	Async MsgType = 0
	Sync MsgType = 1
	Response MsgType = 2
)

// Compression is v6's payload compression mode.
type Compression byte

const (
	CompressNone Compression = 0
	CompressLen32 Compression = 1 // 4-byte uncompressed-length prefix
	CompressLen64 Compression = 2 // 8-byte uncompressed-length prefix
)

// V6HeaderSize is the fixed v6 frame header length:
// [endian=1, type, compression, len_hi_byte, len_lo_32le].
const V6HeaderSize = 8

// V6Header is the legacy 8-byte frame header. The payload length is
// split across a high byte and a little-endian 32-bit low word,
// giving a 40-bit length space.
type V6Header struct {
	Type MsgType
	Compression Compression
	Len uint64
}

// MarshalV6 encodes h into an 8-byte frame header.
func MarshalV6(h V6Header) [V6HeaderSize]byte {
	var b [V6HeaderSize]byte
	b[0] = 1 // endian marker
	b[1] = byte(h.Type)
	b[2] = byte(h.Compression)
	b[3] = byte(h.Len >> 32)
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.Len))
	return b
}

// UnmarshalV6 decodes an 8-byte frame header.
func UnmarshalV6(b [V6HeaderSize]byte) (V6Header, error) {
	if b[0] != 1 {
		return V6Header{}, &chilierr.DeserializationErr{Msg: "wire: bad v6 endian marker"}
	}
	lo := binary.LittleEndian.Uint32(b[4:8])
	return V6Header{
		Type: MsgType(b[1]),
		Compression: Compression(b[2]),
		Len: uint64(b[3])<<32 | uint64(lo),
	}, nil
}

// V9HeaderSize is the fixed v9 frame header length:
// [endian=1, type, 0,0,0,0,0,0, len_u64le].
const V9HeaderSize = 16

// V9Header is the newer 16-byte frame header, carrying a full 64-bit
// payload length and no compression mode of its own (v9 payloads are
// chunked vectors, not single compressed blobs).
type V9Header struct {
	Type MsgType
	Len uint64
}

// MarshalV9 encodes h into a 16-byte frame header.
func MarshalV9(h V9Header) [V9HeaderSize]byte {
	var b [V9HeaderSize]byte
	b[0] = 1
	b[1] = byte(h.Type)
	binary.LittleEndian.PutUint64(b[8:16], h.Len)
	return b
}

// UnmarshalV9 decodes a 16-byte frame header.
func UnmarshalV9(b [V9HeaderSize]byte) (V9Header, error) {
	if b[0] != 1 {
		return V9Header{}, &chilierr.DeserializationErr{Msg: "wire: bad v9 endian marker"}
	}
	return V9Header{
		Type: MsgType(b[1]),
		Len: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}
