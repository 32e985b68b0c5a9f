// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package nbt

import (
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/mcwire/envelope"
	"github.com/creachadair/mcwire/packet"
)

// Parse parses a single named root compound from the head of s.
// If s is exhausted before the first byte of the document, Parse reports
// [io.EOF]. A document that ends early reports [io.ErrUnexpectedEOF].
func Parse(s *packet.Scanner) (*Compound, error) {
	d := &decoder{s: s}
	return d.root()
}

// ParseAll parses root compounds from s until it is exhausted.
func ParseAll(s *packet.Scanner) ([]*Compound, error) {
	var out []*Compound
	for {
		c, err := Parse(s)
		if err == io.EOF {
			return out, nil
		} else if err != nil {
			return out, fmt.Errorf("document %d: %w", len(out)+1, err)
		}
		out = append(out, c)
	}
}

// Write appends the encoding of c as a named root compound to b.
// If Write reports an error, the contents of b are unspecified.
func Write(b *packet.Builder, c *Compound) error {
	e := &encoder{b: b}
	return e.root(c)
}

// Marshal returns the uncompressed encoding of c.
func Marshal(c *Compound) ([]byte, error) {
	var b packet.Builder
	if err := Write(&b, c); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal parses a single uncompressed document from data. It is an error
// if data contains anything after the document.
func Unmarshal(data []byte) (*Compound, error) {
	s := packet.NewScanner(data)
	c, err := Parse(s)
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: %w", io.ErrUnexpectedEOF)
	} else if err != nil {
		return nil, err
	}
	if s.Len() != 0 {
		return nil, fmt.Errorf("extra data after document (%d bytes)", s.Len())
	}
	return c, nil
}

// Load reads a single document from r, which may be raw or compressed with
// gzip or zlib. The compression is detected from the content of the stream.
func Load(r io.Reader) (_ *Compound, err error) {
	rc, _, err := envelope.Detect(r)
	if err != nil {
		return nil, err
	}
	defer closeInto(rc, &err)
	return readOne(rc)
}

// LoadRaw reads a single uncompressed document from r.
func LoadRaw(r io.Reader) (*Compound, error) { return readOne(r) }

// LoadAll reads all the documents from r, which may be raw or compressed with
// gzip or zlib.
func LoadAll(r io.Reader) (_ []*Compound, err error) {
	rc, _, err := envelope.Detect(r)
	if err != nil {
		return nil, err
	}
	defer closeInto(rc, &err)
	return ParseAll(packet.NewStreamScanner(rc))
}

func readOne(r io.Reader) (*Compound, error) {
	c, err := Parse(packet.NewStreamScanner(r))
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: %w", io.ErrUnexpectedEOF)
	}
	return c, err
}

func closeInto(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}

// A DumpOption controls the behavior of [Dump].
type DumpOption func(*dumpOptions)

type dumpOptions struct {
	kind envelope.Kind
}

// Compress is a [DumpOption] that selects the compression envelope of the
// output. The default is [envelope.Raw].
func Compress(kind envelope.Kind) DumpOption {
	return func(o *dumpOptions) { o.kind = kind }
}

// Dump writes c to w as a named root compound. By default the output is
// uncompressed; use [Compress] to select an envelope.
func Dump(w io.Writer, c *Compound, opts ...DumpOption) error {
	var o dumpOptions
	for _, opt := range opts {
		opt(&o)
	}
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	zw, err := envelope.NewWriter(w, o.kind)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// DumpRaw writes c to w as an uncompressed named root compound.
func DumpRaw(w io.Writer, c *Compound) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
