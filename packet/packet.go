// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package packet provides support for encoding and decoding binary packet data
// in the byte formats shared by the game protocol and its storage files.
//
// All multi-byte numeric values are big-endian. Signed values use two's
// complement and floating-point values use IEEE 754. Length-prefixed strings
// in this package carry a [VarInt] length; the u16-prefixed strings used by
// NBT are handled by the nbt package.
package packet

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/creachadair/mds/value"
)

// MaxStringLen is the maximum length in bytes of a length-prefixed string
// accepted by [Scanner.VString]. It corresponds to 32767 UTF-16 code units of
// at most 3 bytes each.
const MaxStringLen = 32767 * 3

// A Builder is a buffer that accumulates data into a packet. The zero value is
// ready for use as an empty builder.
//
// A Builder is not safe for concurrent use; it belongs to the single call that
// is encoding into it.
type Builder struct {
	buf []byte
}

// NewBuilder constructs an empty [Builder] with at least the given capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, max(capacity, 0))}
}

// Bool appends a Boolean to b. The encoding is a single byte with value 0 or 1.
func (b *Builder) Bool(ok bool) { b.Put(value.Cond[byte](ok, 1, 0)) }

// Byte appends a single byte to b.
func (b *Builder) Byte(v byte) { b.buf = append(b.buf, v) }

// Put appends the specified bytes to b in order.
func (b *Builder) Put(vs ...byte) { b.buf = append(b.buf, vs...) }

// PutString appends the specified string to b without framing.
func (b *Builder) PutString(s string) { b.buf = append(b.buf, s...) }

// VPutString appends a length-prefixed string to b. The length is encoded as
// a [VarInt].
func (b *Builder) VPutString(s string) {
	b.Grow(VLen(len(s)))
	b.VarInt(int32(len(s)))
	b.buf = append(b.buf, s...)
}

// VPut appends a length-prefixed byte string to b. The length is encoded as a
// [VarInt].
func (b *Builder) VPut(vs []byte) {
	b.Grow(VLen(len(vs)))
	b.VarInt(int32(len(vs)))
	b.buf = append(b.buf, vs...)
}

// Int8 appends v to b as a single byte.
func (b *Builder) Int8(v int8) { b.buf = append(b.buf, byte(v)) }

// Int16 appends v to b in big-endian order.
func (b *Builder) Int16(v int16) { b.Uint16(uint16(v)) }

// Uint16 appends v to b in big-endian order.
func (b *Builder) Uint16(v uint16) { b.buf = binary.BigEndian.AppendUint16(b.buf, v) }

// Int32 appends v to b in big-endian order.
func (b *Builder) Int32(v int32) { b.Uint32(uint32(v)) }

// Uint32 appends v to b in big-endian order.
func (b *Builder) Uint32(v uint32) { b.buf = binary.BigEndian.AppendUint32(b.buf, v) }

// Int64 appends v to b in big-endian order.
func (b *Builder) Int64(v int64) { b.Uint64(uint64(v)) }

// Uint64 appends v to b in big-endian order.
func (b *Builder) Uint64(v uint64) { b.buf = binary.BigEndian.AppendUint64(b.buf, v) }

// Float32 appends the IEEE 754 bits of v to b in big-endian order.
func (b *Builder) Float32(v float32) { b.Uint32(math.Float32bits(v)) }

// Float64 appends the IEEE 754 bits of v to b in big-endian order.
func (b *Builder) Float64(v float64) { b.Uint64(math.Float64bits(v)) }

// VarInt appends a [VarInt] value to b.
func (b *Builder) VarInt(v int32) { b.buf = AppendVarInt(b.buf, v) }

// VarLong appends a [VarLong] value to b.
func (b *Builder) VarLong(v int64) { b.buf = AppendVarLong(b.buf, v) }

// SetByte overwrites the byte at offset off with v. If off is at or past the
// end of the buffer, the buffer is first extended with zeroes so that off is
// its last byte. SetByte panics if off < 0.
func (b *Builder) SetByte(off int, v byte) {
	if off < 0 {
		panic(fmt.Sprintf("negative offset %d", off))
	}
	if n := len(b.buf); off >= n {
		b.Grow(off + 1 - n)
		b.buf = b.buf[:off+1]
		clear(b.buf[n:])
	}
	b.buf[off] = v
}

// Write appends p to b. It implements [io.Writer] and never fails.
func (b *Builder) Write(p []byte) (int, error) { b.buf = append(b.buf, p...); return len(p), nil }

// WriteByte appends c to b. It implements [io.ByteWriter] and never fails.
func (b *Builder) WriteByte(c byte) error { b.buf = append(b.buf, c); return nil }

// Len reports the number of bytes currently in the buffer.
func (b *Builder) Len() int { return len(b.buf) }

// Cap reports the current capacity of the buffer.
func (b *Builder) Cap() int { return cap(b.buf) }

// Bytes reports the current contents of the buffer. The builder retains ownership
// of the reported slice, and the caller must not retain or modify its contents
// unless b will no longer be accessed.
func (b *Builder) Bytes() []byte { return b.buf }

// Copy returns a copy of the current contents of the buffer, which the caller
// owns.
func (b *Builder) Copy() []byte { return bytes.Clone(b.buf) }

// Reset discards the contents of b and leaves it empty. The capacity of the
// buffer is retained.
func (b *Builder) Reset() { b.buf = b.buf[:0] }

// Clear discards the contents and storage of b, and replaces them with an
// empty buffer having capacity n.
func (b *Builder) Clear(n int) { b.buf = make([]byte, 0, max(n, 0)) }

// Grow resizes the internal buffer of b if necessary to ensure that at least n
// more bytes can be added without triggering another allocation.
func (b *Builder) Grow(n int) {
	want := len(b.buf) + n
	if cap(b.buf) < want {
		r := make([]byte, len(b.buf), max(want, 2*cap(b.buf)))
		copy(r, b.buf)
		b.buf = r
	}
}

// A Scanner reads encoded values from the contents of a packet or a stream.
//
// The methods of a scanner return [io.EOF] when no further input is available
// at the start of a value. Incomplete values report [io.ErrUnexpectedEOF].
// Errors from an underlying reader are returned unmodified.
type Scanner struct {
	input  []byte
	rest   []byte
	r      *bufio.Reader // if non-nil, the scanner reads from a stream
	offset int           // of rest from input, or bytes consumed from r
	tmp    [8]byte
}

// NewScanner constructs a [Scanner] that consumes data from input.
// The scanner does not modify the contents of input, but retain slices
// into it, so the caller should ensure it is not modified while the scanner
// is in use.
func NewScanner[Str ~string | ~[]byte](input Str) *Scanner {
	data := []byte(input)
	return &Scanner{input: data, rest: data}
}

// NewStreamScanner constructs a [Scanner] that consumes data from r.
// If r is already a [*bufio.Reader] it is used directly; otherwise r is
// wrapped in a buffer, and the scanner may read ahead of the values it has
// returned.
func NewStreamScanner(r io.Reader) *Scanner {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Scanner{r: br}
}

// next returns exactly n bytes from the head of the input. It reports io.EOF
// if no input remains, or io.ErrUnexpectedEOF if fewer than n bytes remain.
// For stream input the result may alias s.tmp and is only valid until the
// next call.
func (s *Scanner) next(n int) ([]byte, error) {
	if s.r == nil {
		if len(s.rest) < n {
			if len(s.rest) == 0 && n > 0 {
				return nil, io.EOF
			}
			return nil, io.ErrUnexpectedEOF
		}
		out := s.rest[:n]
		s.rest = s.rest[n:]
		s.offset += n
		return out, nil
	}

	var out []byte
	if n <= len(s.tmp) {
		out = s.tmp[:n]
	} else {
		out = make([]byte, n)
	}
	nr, err := io.ReadFull(s.r, out)
	s.offset += nr
	if err != nil {
		return nil, err
	}
	return out, nil
}

// fixed reads exactly n bytes for a fixed-width value.
func (s *Scanner) fixed(n int) ([]byte, error) {
	out, err := s.next(n)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("value truncated (want %d bytes): %w", n, io.ErrUnexpectedEOF)
	}
	return out, err
}

// own returns a copy of b if it may alias the scanner's scratch space.
func (s *Scanner) own(b []byte) []byte {
	if s.r != nil && len(b) <= len(s.tmp) {
		return bytes.Clone(b)
	}
	return b
}

// Bool scans a single byte from the head of the input and converts it into a
// Boolean value (0 means false, non-zero means true).
func (s *Scanner) Bool() (bool, error) {
	b, err := s.Byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// Byte scans a single byte from the head of the input.
func (s *Scanner) Byte() (byte, error) {
	if s.r == nil {
		if len(s.rest) == 0 {
			return 0, io.EOF
		}
		s.offset++
		out := s.rest[0]
		s.rest = s.rest[1:]
		return out, nil
	}
	out, err := s.r.ReadByte()
	if err != nil {
		return 0, err
	}
	s.offset++
	return out, nil
}

// Int8 scans a single signed byte from the head of the input.
func (s *Scanner) Int8() (int8, error) {
	b, err := s.Byte()
	return int8(b), err
}

// Uint16 parses a big-endian uint16 value from the head of the input.
func (s *Scanner) Uint16() (uint16, error) {
	b, err := s.fixed(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Int16 parses a big-endian int16 value from the head of the input.
func (s *Scanner) Int16() (int16, error) {
	v, err := s.Uint16()
	return int16(v), err
}

// Uint32 parses a big-endian uint32 value from the head of the input.
func (s *Scanner) Uint32() (uint32, error) {
	b, err := s.fixed(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Int32 parses a big-endian int32 value from the head of the input.
func (s *Scanner) Int32() (int32, error) {
	v, err := s.Uint32()
	return int32(v), err
}

// Uint64 parses a big-endian uint64 value from the head of the input.
func (s *Scanner) Uint64() (uint64, error) {
	b, err := s.fixed(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Int64 parses a big-endian int64 value from the head of the input.
func (s *Scanner) Int64() (int64, error) {
	v, err := s.Uint64()
	return int64(v), err
}

// Float32 parses a big-endian IEEE 754 single-precision value from the head
// of the input.
func (s *Scanner) Float32() (float32, error) {
	v, err := s.Uint32()
	return math.Float32frombits(v), err
}

// Float64 parses a big-endian IEEE 754 double-precision value from the head
// of the input.
func (s *Scanner) Float64() (float64, error) {
	v, err := s.Uint64()
	return math.Float64frombits(v), err
}

// VarInt parses a single [VarInt] value from the head of the input.
// It reports [ErrMalformedVarInt] if the encoding exceeds [MaxVarIntLen] bytes.
func (s *Scanner) VarInt() (int32, error) {
	v, err := s.uvarint(MaxVarIntLen)
	return int32(v), err
}

// VarLong parses a single [VarLong] value from the head of the input.
// It reports [ErrMalformedVarInt] if the encoding exceeds [MaxVarLongLen] bytes.
func (s *Scanner) VarLong() (int64, error) {
	v, err := s.uvarint(MaxVarLongLen)
	return int64(v), err
}

func (s *Scanner) uvarint(maxLen int) (uint64, error) {
	var v uint64
	for i := range maxLen {
		b, err := s.Byte()
		if err != nil {
			if i > 0 && err == io.EOF {
				return 0, fmt.Errorf("varint truncated after %d bytes: %w", i, io.ErrUnexpectedEOF)
			}
			return 0, err
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrMalformedVarInt
}

// VString parses a single length-prefixed UTF-8 string from the head of the
// input. The length must be encoded as a [VarInt] no greater than
// [MaxStringLen].
func (s *Scanner) VString() (string, error) {
	return VGet[string](s)
}

// Len reports the number of remaining unconsumed input bytes in s.
// For a stream scanner, Len reports only the number of bytes buffered but
// not yet consumed.
func (s *Scanner) Len() int {
	if s.r != nil {
		return s.r.Buffered()
	}
	return len(s.rest)
}

// Offset reports the offset (0-based) of the next unconsumed input byte in s.
func (s *Scanner) Offset() int { return s.offset }

// Rest returns a slice of the remaining unconsumed input of s.
// The reported slice is only valid until the next call to a method of s,
// and the caller must not modify its contents. For a stream scanner, Rest
// returns nil.
func (s *Scanner) Rest() []byte { return s.rest }

// VLen reports the encoded size in bytes of a length-prefixed encoding of an
// n-byte string, where the length is encoded as a [VarInt].
func VLen(n int) int { return VarIntSize(int32(n)) + n }

// VGet parses a single length-prefixed string from the head of s.
// The length must be encoded as a [VarInt] no greater than [MaxStringLen].
// When the result is a slice of a buffer scanner, the value aliases the input,
// and the caller must not modify its contents.
func VGet[Str ~string | ~[]byte](s *Scanner) (out Str, err error) {
	nb, err := s.VarInt()
	if err != nil {
		return out, err
	}
	if nb < 0 || nb > MaxStringLen {
		return out, fmt.Errorf("invalid string length %d", nb)
	}
	b, err := s.next(int(nb))
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return out, fmt.Errorf("value truncated (want %d bytes): %w", nb, io.ErrUnexpectedEOF)
	} else if err != nil {
		return out, err
	}
	return Str(s.own(b)), nil
}

// Get returns a string of exactly n bytes from the head of the input.
// When the result is a slice of a buffer scanner, the value aliases the
// input, and the caller must not modify its contents.
func Get[Str ~string | ~[]byte](s *Scanner, n int) (Str, error) {
	b, err := s.next(n)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		var zero Str
		return zero, fmt.Errorf("value truncated (want %d bytes): %w", n, io.ErrUnexpectedEOF)
	} else if err != nil {
		var zero Str
		return zero, err
	}
	return Str(s.own(b)), nil
}
