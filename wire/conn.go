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
	"context"
	"encoding/binary"
	"io"
	"log"
	"time"

	"github.com/klauspost/compress/s2"

	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/value"
)

// compressThreshold picks between v6's two compressed-length-prefix
// widths: below it a 4-byte prefix is
// wide enough, at or above it the message needs the 8-byte form.
const compressThreshold = 1 << 32

// ReadFrame reads one message from r under the wire version fixed by
// the handshake, returning its type and decompressed payload.
func ReadFrame(r *bufio.Reader, version byte) (MsgType, []byte, error) {
	if version == 6 {
		return readV6(r)
	}
	return readV9(r)
}

func readV6(r *bufio.Reader) (MsgType, []byte, error) {
	var hb [V6HeaderSize]byte
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		return 0, nil, unexpectedEOF(err)
	}
	h, err := UnmarshalV6(hb)
	if err != nil {
		return 0, nil, err
	}
	if h.Len < V6HeaderSize {
		return 0, nil, &chilierr.DeserializationErr{Msg: "wire: v6 length shorter than header"}
	}
	body := make([]byte, h.Len-V6HeaderSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, unexpectedEOF(err)
	}
	switch h.Compression {
	case CompressNone:
		return h.Type, body, nil
	case CompressLen32:
		if len(body) < 4 {
			return 0, nil, &chilierr.DeserializationErr{Msg: "wire: truncated v6 compressed length"}
		}
		n := binary.LittleEndian.Uint32(body[:4])
		dst := make([]byte, 0, n)
		plain, err := s2.Decode(dst, body[4:])
		if err != nil {
			return 0, nil, &chilierr.DeserializationErr{Msg: "wire: s2 decode: " + err.Error()}
		}
		return h.Type, plain, nil
	case CompressLen64:
		if len(body) < 8 {
			return 0, nil, &chilierr.DeserializationErr{Msg: "wire: truncated v6 compressed length"}
		}
		n := binary.LittleEndian.Uint64(body[:8])
		dst := make([]byte, 0, n)
		plain, err := s2.Decode(dst, body[8:])
		if err != nil {
			return 0, nil, &chilierr.DeserializationErr{Msg: "wire: s2 decode: " + err.Error()}
		}
		return h.Type, plain, nil
	}
	return 0, nil, &chilierr.DeserializationErr{Msg: "wire: unknown v6 compression mode"}
}

// WriteV6 writes payload as a v6 frame of type typ, compressing it
// with s2 when compress requests it.
func WriteV6(w io.Writer, typ MsgType, payload []byte, compress Compression) error {
	var body []byte
	switch compress {
	case CompressNone:
		body = payload
	case CompressLen32:
		prefix := make([]byte, 4)
		binary.LittleEndian.PutUint32(prefix, uint32(len(payload)))
		body = append(prefix, s2.Encode(nil, payload)...)
	case CompressLen64:
		prefix := make([]byte, 8)
		binary.LittleEndian.PutUint64(prefix, uint64(len(payload)))
		body = append(prefix, s2.Encode(nil, payload)...)
	default:
		return &chilierr.Generic{Msg: "wire: unknown v6 compression mode"}
	}
	h := MarshalV6(V6Header{Type: typ, Compression: compress, Len: uint64(V6HeaderSize + len(body))})
	if _, err := w.Write(h[:]); err != nil {
		return &chilierr.OsErr{Err: err}
	}
	if _, err := w.Write(body); err != nil {
		return &chilierr.OsErr{Err: err}
	}
	return nil
}

// compressionFor picks a v6 compression mode for an outgoing payload
// of the given length, derived from the length-field width each
// mode's prefix can hold.
func compressionFor(size int) Compression {
	if size < (1 << 20) {
		return CompressNone
	}
	if size < compressThreshold {
		return CompressLen32
	}
	return CompressLen64
}

func readV9(r *bufio.Reader) (MsgType, []byte, error) {
	var hb [V9HeaderSize]byte
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		return 0, nil, unexpectedEOF(err)
	}
	h, err := UnmarshalV9(hb)
	if err != nil {
		return 0, nil, err
	}
	body := make([]byte, h.Len)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, unexpectedEOF(err)
	}
	return h.Type, body, nil
}

// WriteV9 writes payload as a single-chunk v9 frame of type typ. v9's
// payload is "a vector of byte chunks"; a connection that never splits
// its own payloads is still a conforming single-chunk producer, so
// WriteV9 always emits one chunk spanning the whole payload.
func WriteV9(w io.Writer, typ MsgType, payload []byte) error {
	h := MarshalV9(V9Header{Type: typ, Len: uint64(len(payload))})
	if _, err := w.Write(h[:]); err != nil {
		return &chilierr.OsErr{Err: err}
	}
	if _, err := w.Write(payload); err != nil {
		return &chilierr.OsErr{Err: err}
	}
	return nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return &chilierr.OsErr{Err: err}
}

// Evaluator runs one deserialised request Obj against state in the
// frame's scope and returns the evaluation's result. Conn takes this
// as a dependency rather than importing eval directly, the same way
// job.Scheduler takes a Dispatch closure instead of importing eval.
type Evaluator func(state *engine.State, frame *engine.Frame, req value.Obj) (value.Obj, error)

// Conn is one live server-side wire session: an authenticated
// connection pinned to the wire version its handshake negotiated
//.
type Conn struct {
	rw io.ReadWriter
	r *bufio.Reader
	version byte
	state *engine.State
	handleID int64
	user string
	eval Evaluator
}

// NewConn wraps rw (and its already-buffered reader r, as returned by
// ServerHandshake) into a Conn ready to Serve.
func NewConn(rw io.ReadWriter, r *bufio.Reader, version byte, state *engine.State, handleID int64, user string, eval Evaluator) *Conn {
	return &Conn{rw: rw, r: r, version: version, state: state, handleID: handleID, user: user, eval: eval}
}

// Serve runs the read loop until the peer disconnects or an I/O error
// occurs. A single request on this connection runs to completion
// before the next is read, a single-handle ordering guarantee.
func (c *Conn) Serve(sourceID uint32) error {
	for {
		typ, body, err := ReadFrame(c.r, c.version)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		req, err := DecodeBytes(body)
		if err != nil {
			if typ == Sync {
				if werr := c.writeErr(err); werr != nil {
					return werr
				}
			} else {
				log.Printf("wire: async request decode error: %v", err)
			}
			continue
		}

		frame := engine.NewRootFrame(sourceID, c.user)
		frame.HandleID = c.handleID
		result, evalErr := c.eval(c.state, frame, req)
		if typ == Sync {
			if evalErr != nil {
				if werr := c.writeErr(evalErr); werr != nil {
					return werr
				}
				continue
			}
			if werr := c.writeResponse(result); werr != nil {
				return werr
			}
		} else if evalErr != nil {
			log.Printf("wire: async evaluation error: %v", evalErr)
		}
	}
}

func (c *Conn) writeResponse(v value.Obj) error {
	payload, err := EncodeBytes(v)
	if err != nil {
		return err
	}
	return c.write(Response, payload)
}

func (c *Conn) writeErr(evalErr error) error {
	payload, err := EncodeErr(evalErr)
	if err != nil {
		return err
	}
	return c.write(Response, payload)
}

func (c *Conn) write(typ MsgType, payload []byte) error {
	if c.version == 6 {
		return WriteV6(c.rw, typ, payload, compressionFor(len(payload)))
	}
	return WriteV9(c.rw, typ, payload)
}

// RunDisconnectCallback runs call, which delivers the disconnect
// message to the callback registered via set_callback, retrying on
// error with exponential backoff (1s doubling, capped at 64s) until
// call succeeds or ctx is cancelled.
func RunDisconnectCallback(ctx context.Context, call func() error) {
	retry := 0
	for {
		if err := call(); err == nil {
			return
		}
		delay := time.Duration(1<<uint(retry)) * time.Second
		if max := 64 * time.Second; delay > max {
			delay = max
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if retry < 6 {
			retry++
		}
	}
}

// DisconnectMessage builds the (callback_name, handle) MixedList sent
// to a disconnect callback.
func DisconnectMessage(name string, handleID int64) *value.MixedList {
	return &value.MixedList{Items: []value.Obj{value.String(name), value.I64(handleID)}}
}
