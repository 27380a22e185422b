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
	"testing"

	"github.com/chili-lang/chili/value"
)

func TestV6HeaderRoundTrip(t *testing.T) {
	h := V6Header{Type: Sync, Compression: CompressLen32, Len: 1<<33 + 7}
	b := MarshalV6(h)
	got, err := UnmarshalV6(b)
	if err != nil {
		t.Fatalf("UnmarshalV6: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestV9HeaderRoundTrip(t *testing.T) {
	h := V9Header{Type: Response, Len: 1 << 40}
	b := MarshalV9(h)
	got, err := UnmarshalV9(b)
	if err != nil {
		t.Fatalf("UnmarshalV9: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestBadEndianMarkerRejected(t *testing.T) {
	var b [V6HeaderSize]byte
	b[0] = 2
	if _, err := UnmarshalV6(b); err == nil {
		t.Fatal("expected an error for a bad endian marker")
	}
}

func TestHandshakeNegotiatesRequestedVersion(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	auth := ServerAuth{Users: []string{"alice"}, Token: "secret"}
	done := make(chan error, 1)
	go func() {
		_, err := ClientHandshake(client, "alice", "secret", ClientPrefersV6)
		done <- err
	}()

	user, version, r, err := ServerHandshake(server, auth)
	if err != nil {
		t.Fatalf("ServerHandshake: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("ClientHandshake: %v", err)
	}
	if user != "alice" {
		t.Fatalf("got user %q, want alice", user)
	}
	if version != 6 {
		t.Fatalf("got version %d, want 6", version)
	}
	if r == nil {
		t.Fatal("ServerHandshake returned a nil buffered reader")
	}
}

func TestHandshakeRejectsUnlistedUser(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	auth := ServerAuth{Users: []string{"alice"}}
	go ClientHandshake(client, "mallory", "", ClientPrefersV9)

	if _, _, _, err := ServerHandshake(server, auth); err == nil {
		t.Fatal("expected an error for a user outside the whitelist")
	}
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	auth := ServerAuth{Token: "secret"}
	go ClientHandshake(client, "alice", "wrong", ClientPrefersV9)

	if _, _, _, err := ServerHandshake(server, auth); err == nil {
		t.Fatal("expected an error for a mismatched token")
	}
}

func TestHandshakeBufferedReaderCarriesFollowingBytes(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	go func() {
		ClientHandshake(client, "alice", "", ClientPrefersV9)
		client.Write([]byte("trailing"))
	}()

	_, _, r, err := ServerHandshake(server, ServerAuth{})
	if err != nil {
		t.Fatalf("ServerHandshake: %v", err)
	}
	buf := make([]byte, len("trailing"))
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("read through handshake reader: %v", err)
	}
	if string(buf) != "trailing" {
		t.Fatalf("got %q, want %q", buf, "trailing")
	}
}

func TestCodecRoundTripScalars(t *testing.T) {
	cases := []value.Obj{
		value.Null{},
		value.Bool(true),
		value.I64(-42),
		value.F64(3.25),
		value.String("hello"),
		value.Symbol("sym"),
	}
	for _, v := range cases {
		raw, err := EncodeBytes(v)
		if err != nil {
			t.Fatalf("EncodeBytes(%v): %v", v, err)
		}
		got, err := DecodeBytes(raw)
		if err != nil {
			t.Fatalf("DecodeBytes: %v", err)
		}
		if got.String() != v.String() {
			t.Fatalf("got %v, want %v", got, v)
		}
	}
}

func TestCodecRoundTripMixedList(t *testing.T) {
	in := &value.MixedList{Items: []value.Obj{value.I64(1), value.String("two"), value.Bool(false)}}
	raw, err := EncodeBytes(in)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	out, err := DecodeBytes(raw)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	ml, ok := out.(*value.MixedList)
	if !ok {
		t.Fatalf("got %T, want *value.MixedList", out)
	}
	if len(ml.Items) != 3 || ml.Items[1].String() != "two" {
		t.Fatalf("got %v", ml)
	}
}

func TestCodecRoundTripDict(t *testing.T) {
	in := value.NewDict()
	in.Set("a", value.I64(1))
	in.Set("b", value.String("x"))
	raw, err := EncodeBytes(in)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	out, err := DecodeBytes(raw)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	d, ok := out.(*value.Dict)
	if !ok {
		t.Fatalf("got %T, want *value.Dict", out)
	}
	v, ok := d.Get("b")
	if !ok || v.String() != "x" {
		t.Fatalf("got %v", d)
	}
}

func TestCodecErrValueRoundTrips(t *testing.T) {
	raw, err := EncodeErr(&testErr{"boom"})
	if err != nil {
		t.Fatalf("EncodeErr: %v", err)
	}
	_, decodeErr := DecodeBytes(raw)
	if decodeErr == nil || decodeErr.Error() != "boom" {
		t.Fatalf("got %v, want boom", decodeErr)
	}
}

type testErr struct{ msg string }

func (e *testErr) Error() string { return e.msg }

func TestV6FrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go WriteV6(client, Sync, []byte("payload"), CompressNone)

	r := bufio.NewReader(server)
	typ, body, err := ReadFrame(r, 6)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if typ != Sync || string(body) != "payload" {
		t.Fatalf("got %v %q", typ, body)
	}
}

func TestV9FrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go WriteV9(client, Async, []byte("another payload"))

	r := bufio.NewReader(server)
	typ, body, err := ReadFrame(r, 9)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if typ != Async || string(body) != "another payload" {
		t.Fatalf("got %v %q", typ, body)
	}
}
