// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package envelope detects and removes the compression envelope around a
// stored byte stream.
//
// Storage files may be raw, gzip-compressed, or zlib-compressed. The format is
// recognized from the first two bytes of the stream:
//
//	1F 8B  gzip
//	78 ..  zlib
//	other  raw (passed through unchanged)
//
// The gzip and zlib codecs are provided by github.com/klauspost/compress.
package envelope

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// ErrTruncatedStream is reported by [Detect] when the input ends before the
// two bytes needed to classify it.
var ErrTruncatedStream = errors.New("stream too short to classify")

// Kind identifies the compression envelope of a stream.
type Kind byte

const (
	Raw  Kind = iota // no compression
	Gzip             // RFC 1952
	Zlib             // RFC 1950
)

var kindNames = [...]string{Raw: "raw", Gzip: "gzip", Zlib: "zlib"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind returns the Kind whose name is s, ignoring case.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compression kind %q", s)
}

// Sniff classifies a stream from its first two bytes. If head has fewer than
// two bytes, Sniff reports Raw.
func Sniff(head []byte) Kind {
	switch {
	case len(head) < 2:
		return Raw
	case head[0] == 0x1f && head[1] == 0x8b:
		return Gzip
	case head[0] == 0x78:
		return Zlib
	default:
		return Raw
	}
}

// Detect peeks at the first two bytes of r without consuming them, and returns
// a reader that yields the decompressed contents of r along with the detected
// kind. For a raw stream the result yields the bytes of r unchanged,
// including the two that were examined.
//
// If r ends before two bytes are available, Detect reports an error wrapping
// both [ErrTruncatedStream] and the underlying read error. The caller must
// close the returned reader when finished with it; closing it does not close r.
func Detect(r io.Reader) (io.ReadCloser, Kind, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	head, err := br.Peek(2)
	if len(head) < 2 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, Raw, fmt.Errorf("%w (have %d bytes): %w", ErrTruncatedStream, len(head), err)
	}

	switch kind := Sniff(head); kind {
	case Gzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, kind, fmt.Errorf("open gzip stream: %w", err)
		}
		return gz, kind, nil
	case Zlib:
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, kind, fmt.Errorf("open zlib stream: %w", err)
		}
		return zr, kind, nil
	default:
		return io.NopCloser(br), kind, nil
	}
}

// NewWriter returns a writer that compresses data written to it in the
// envelope specified by kind, and writes the result to w. The caller must
// close the writer to flush the envelope trailer; closing it does not close w.
func NewWriter(w io.Writer, kind Kind) (io.WriteCloser, error) {
	switch kind {
	case Raw:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zlib:
		return zlib.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression kind %v", kind)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
