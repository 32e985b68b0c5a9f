// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package mcwire_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/creachadair/mcwire"
	"github.com/creachadair/mcwire/packet"
	"github.com/google/go-cmp/cmp"
)

func TestFrameEncoding(t *testing.T) {
	tests := []struct {
		frame *mcwire.Frame
		want  []byte
	}{
		{&mcwire.Frame{ID: 0}, []byte{1, 0}},
		{&mcwire.Frame{ID: 0x23, Payload: []byte{1, 2, 3}}, []byte{4, 0x23, 1, 2, 3}},
		{&mcwire.Frame{ID: 0x80, Payload: []byte("x")}, []byte{3, 0x80, 0x01, 'x'}},
		{&mcwire.Frame{ID: 1, Payload: make([]byte, 127)}, append([]byte{0x80, 0x01, 1}, make([]byte, 127)...)},
	}
	for _, tc := range tests {
		got := tc.frame.Encode()
		if diff := cmp.Diff(got, tc.want); diff != "" {
			t.Errorf("Encode %v (-got, +want):\n%s", tc.frame, diff)
		}

		var buf bytes.Buffer
		nw, err := tc.frame.WriteTo(&buf)
		if err != nil {
			t.Errorf("WriteTo: unexpected error: %v", err)
		} else if nw != int64(len(tc.want)) || !bytes.Equal(buf.Bytes(), tc.want) {
			t.Errorf("WriteTo: got %d bytes %x, want %x", nw, buf.Bytes(), tc.want)
		}

		var dec mcwire.Frame
		nr, err := dec.ReadFrom(iotest.OneByteReader(&buf))
		if err != nil {
			t.Errorf("ReadFrom: unexpected error: %v", err)
		} else if nr != int64(len(tc.want)) {
			t.Errorf("ReadFrom: read %d bytes, want %d", nr, len(tc.want))
		}
		if diff := cmp.Diff(&dec, tc.frame); diff != "" {
			t.Errorf("ReadFrom (-got, +want):\n%s", diff)
		}
	}
}

func TestFrameSequence(t *testing.T) {
	// ReadFrom must not consume input past the end of its frame, even when the
	// reader does not support io.ByteReader.
	var wire []byte
	want := []*mcwire.Frame{
		{ID: 0x00, Payload: []byte("first")},
		{ID: 0x12},
		{ID: 0x64, Payload: bytes.Repeat([]byte{0xaa}, 1000)},
	}
	for _, f := range want {
		wire = append(wire, f.Encode()...)
	}

	r := struct{ io.Reader }{bytes.NewReader(wire)}
	var got []*mcwire.Frame
	for {
		f := new(mcwire.Frame)
		if _, err := f.ReadFrom(r); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			t.Fatalf("ReadFrom: unexpected error: %v", err)
		}
		got = append(got, f)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Frames (-got, +want):\n%s", diff)
	}
}

func TestFrameErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"Empty", nil, io.EOF},
		{"ZeroLength", []byte{0}, nil},
		{"TooLong", []byte{0x80, 0x80, 0x80, 0x01}, nil},
		{"Negative", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, nil},
		{"PartialLength", []byte{0x80}, io.ErrUnexpectedEOF},
		{"MalformedLength", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, packet.ErrMalformedVarInt},
		{"ShortBody", []byte{5, 0x00, 1, 2}, io.ErrUnexpectedEOF},
		{"MalformedID", []byte{2, 0x80, 0x80}, packet.ErrMalformedVarInt},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f mcwire.Frame
			_, err := f.ReadFrom(bytes.NewReader(tc.input))
			if err == nil {
				t.Fatalf("ReadFrom: got %v, want error", &f)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("ReadFrom: got %v, want %v", err, tc.want)
			}
			t.Logf("Error OK: %v", err)
		})
	}

	t.Run("WriteTooLong", func(t *testing.T) {
		f := &mcwire.Frame{ID: 1, Payload: make([]byte, mcwire.MaxFrameLen)}
		if _, err := f.WriteTo(io.Discard); err == nil {
			t.Error("WriteTo: got nil, want error")
		}
	})
	t.Run("ReaderError", func(t *testing.T) {
		errBad := errors.New("bad")
		var f mcwire.Frame
		if _, err := f.ReadFrom(iotest.ErrReader(errBad)); !errors.Is(err, errBad) {
			t.Errorf("ReadFrom: got %v, want %v", err, errBad)
		}
	})
}

func TestFrameString(t *testing.T) {
	short := &mcwire.Frame{ID: 0x23, Payload: []byte{1, 2}}
	if got, want := short.String(), "Frame(ID=0x23, 2 bytes, 0102)"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
	long := &mcwire.Frame{ID: 0x64, Payload: make([]byte, 40)}
	if got := long.String(); !strings.HasSuffix(got, " ...)") {
		t.Errorf("String: got %q, want elided", got)
	}
}
