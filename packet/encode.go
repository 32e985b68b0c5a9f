// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package packet

import "encoding/binary"

// An Encoder is a value that can be appended to a buffer in binary form.
type Encoder interface {
	// Append appends the binary encoding of the receiver to buf, and returns
	// the updated slice.
	Append(buf []byte) []byte

	// EncodedLen reports the number of bytes Append will add.
	EncodedLen() int
}

// EncodedLen implements the Encoder interface.
func (v VarInt) EncodedLen() int { return v.Size() }

// EncodedLen implements the Encoder interface.
func (v VarLong) EncodedLen() int { return v.Size() }

// Bytes is a byte string encoded with a [VarInt] length prefix.
type Bytes []byte

// Append implements the Encoder interface.
func (b Bytes) Append(buf []byte) []byte {
	return append(AppendVarInt(buf, int32(len(b))), b...)
}

// EncodedLen implements the Encoder interface.
func (b Bytes) EncodedLen() int { return VLen(len(b)) }

// String is a UTF-8 string encoded with a [VarInt] length prefix.
type String string

// Append implements the Encoder interface.
func (s String) Append(buf []byte) []byte {
	return append(AppendVarInt(buf, int32(len(s))), s...)
}

// EncodedLen implements the Encoder interface.
func (s String) EncodedLen() int { return VLen(len(s)) }

// Literal is a string encoded without framing.
type Literal string

// Append implements the Encoder interface.
func (s Literal) Append(buf []byte) []byte { return append(buf, s...) }

// EncodedLen implements the Encoder interface.
func (s Literal) EncodedLen() int { return len(s) }

// Raw is a byte string encoded without framing.
type Raw []byte

// Append implements the Encoder interface.
func (r Raw) Append(buf []byte) []byte { return append(buf, r...) }

// EncodedLen implements the Encoder interface.
func (r Raw) EncodedLen() int { return len(r) }

// Bool is a Boolean encoded as a single byte with value 0 or 1.
type Bool bool

// Append implements the Encoder interface.
func (b Bool) Append(buf []byte) []byte {
	if b {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// EncodedLen implements the Encoder interface.
func (Bool) EncodedLen() int { return 1 }

// Int32 is a 4-byte big-endian signed integer.
type Int32 int32

// Append implements the Encoder interface.
func (v Int32) Append(buf []byte) []byte { return binary.BigEndian.AppendUint32(buf, uint32(v)) }

// EncodedLen implements the Encoder interface.
func (Int32) EncodedLen() int { return 4 }

// Int64 is an 8-byte big-endian signed integer.
type Int64 int64

// Append implements the Encoder interface.
func (v Int64) Append(buf []byte) []byte { return binary.BigEndian.AppendUint64(buf, uint64(v)) }

// EncodedLen implements the Encoder interface.
func (Int64) EncodedLen() int { return 8 }

// Slice is a sequence of encoders that are concatenated in order without
// additional framing.
type Slice []Encoder

// Append implements the Encoder interface.
func (s Slice) Append(buf []byte) []byte {
	for _, e := range s {
		buf = e.Append(buf)
	}
	return buf
}

// EncodedLen implements the Encoder interface.
func (s Slice) EncodedLen() int {
	var n int
	for _, e := range s {
		n += e.EncodedLen()
	}
	return n
}

// Encode returns the concatenated encoding of s appended to buf.
func (s Slice) Encode(buf []byte) []byte {
	if buf == nil {
		buf = make([]byte, 0, s.EncodedLen())
	}
	return s.Append(buf)
}
