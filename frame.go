// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package mcwire

import (
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/mcwire/packet"
)

// MaxFrameLen is the largest length prefix accepted for a frame, covering the
// packet ID and payload. It is the largest value a 3-byte [packet.VarInt] can
// represent.
const MaxFrameLen = 1<<21 - 1

// Frame is one length-delimited unit of the wire protocol:
//
//	[length: VarInt][id: VarInt][payload]
//
// The length counts the bytes of the encoded ID and the payload. The meaning
// of the ID depends on the connection [State] and the [Direction] of travel.
type Frame struct {
	ID      int32
	Payload []byte
}

// Len reports the value of the length prefix for f.
func (f *Frame) Len() int { return packet.VarIntSize(f.ID) + len(f.Payload) }

// Encode encodes f in binary format.
func (f *Frame) Encode() []byte {
	n := f.Len()
	b := packet.NewBuilder(packet.VarIntSize(int32(n)) + n)
	b.VarInt(int32(n))
	b.VarInt(f.ID)
	b.Put(f.Payload...)
	return b.Bytes()
}

// WriteTo writes the frame to w in binary format. It satisfies io.WriterTo.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	if n := f.Len(); n > MaxFrameLen {
		return 0, fmt.Errorf("frame length %d exceeds %d", n, MaxFrameLen)
	}
	nw, err := w.Write(f.Encode())
	return int64(nw), err
}

// ReadFrom reads a frame from r in binary format. It satisfies io.ReaderFrom.
//
// ReadFrom does not read past the end of the frame. If r does not implement
// [io.ByteReader], the length prefix is read one byte at a time.
//
// If r is exhausted before the first byte of the frame, ReadFrom reports an
// error wrapping [io.EOF]. A frame that ends early reports
// [io.ErrUnexpectedEOF].
func (f *Frame) ReadFrom(r io.Reader) (int64, error) {
	cr := &countReader{r: r}
	size, err := cr.varint()
	if err != nil {
		return cr.n, fmt.Errorf("frame length: %w", err)
	} else if size <= 0 || size > MaxFrameLen {
		return cr.n, fmt.Errorf("invalid frame length %d", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(cr, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return cr.n, fmt.Errorf("short frame: %w", err)
	}
	nb, id := packet.ParseVarInt(body)
	if nb < 0 {
		return cr.n, fmt.Errorf("frame packet ID: %w", packet.ErrMalformedVarInt)
	}
	f.ID = id
	if nb < len(body) {
		f.Payload = body[nb:]
	} else {
		f.Payload = nil
	}
	return cr.n, nil
}

// String returns a human-friendly rendering of the frame.
func (f *Frame) String() string {
	if len(f.Payload) > 16 {
		return fmt.Sprintf("Frame(ID=0x%02x, %d bytes, %x ...)", f.ID, len(f.Payload), f.Payload[:16])
	}
	return fmt.Sprintf("Frame(ID=0x%02x, %d bytes, %x)", f.ID, len(f.Payload), f.Payload)
}

// countReader counts the bytes read from r.
type countReader struct {
	r   io.Reader
	n   int64
	buf [1]byte
}

func (c *countReader) Read(p []byte) (int, error) {
	nr, err := c.r.Read(p)
	c.n += int64(nr)
	return nr, err
}

func (c *countReader) ReadByte() (byte, error) {
	if br, ok := c.r.(io.ByteReader); ok {
		b, err := br.ReadByte()
		if err == nil {
			c.n++
		}
		return b, err
	}
	_, err := io.ReadFull(c, c.buf[:])
	return c.buf[0], err
}

// varint reads a VarInt without reading past its last byte.
func (c *countReader) varint() (int32, error) {
	var v uint32
	for i := range packet.MaxVarIntLen {
		b, err := c.ReadByte()
		if err != nil {
			if i > 0 && errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int32(v), nil
		}
	}
	return 0, packet.ErrMalformedVarInt
}
