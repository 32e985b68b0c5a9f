// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package packet

import (
	"encoding/binary"
	"fmt"
)

// A Decoder is a value that supports being decoded from binary form.
type Decoder interface {
	// Decode decodes into the receiver from a prefix of buf, and returns the
	// number of bytes consumed. If there is no valid encoding at the front of
	// buf, Decode returns -1.
	Decode(buf []byte) int
}

// Decode implements the Decoder interface.
func (v *VarInt) Decode(buf []byte) int {
	nb, z := ParseVarInt(buf)
	if nb < 0 {
		return -1
	}
	*v = VarInt(z)
	return nb
}

// Decode implements the Decoder interface.
func (v *VarLong) Decode(buf []byte) int {
	nb, z := ParseVarLong(buf)
	if nb < 0 {
		return -1
	}
	*v = VarLong(z)
	return nb
}

// Decode implements the Decoder interface. The decoded value aliases buf.
func (b *Bytes) Decode(buf []byte) int {
	nb, n := ParseVarInt(buf)
	if nb < 0 || n < 0 || len(buf)-nb < int(n) {
		return -1
	}
	*b = buf[nb : nb+int(n)]
	return nb + int(n)
}

// Decode implements the Decoder interface.
func (s *String) Decode(buf []byte) int {
	var b Bytes
	nb := b.Decode(buf)
	if nb < 0 || len(b) > MaxStringLen {
		return -1
	}
	*s = String(b)
	return nb
}

// Decode implements the Decoder interface. Decoding succeeds if buf begins
// with exactly the bytes of s.
func (s Literal) Decode(buf []byte) int {
	if len(buf) < len(s) || string(buf[:len(s)]) != string(s) {
		return -1
	}
	return len(s)
}

// Decode implements the Decoder interface.
func (b *Bool) Decode(buf []byte) int {
	if len(buf) == 0 {
		return -1
	}
	*b = buf[0] != 0
	return 1
}

// Decode implements the Decoder interface.
func (v *Int32) Decode(buf []byte) int {
	if len(buf) < 4 {
		return -1
	}
	*v = Int32(binary.BigEndian.Uint32(buf))
	return 4
}

// Decode implements the Decoder interface.
func (v *Int64) Decode(buf []byte) int {
	if len(buf) < 8 {
		return -1
	}
	*v = Int64(binary.BigEndian.Uint64(buf))
	return 8
}

// Decode implements the Decoder interface.  Decoding succeeds if buf is at
// least as long as *r, and in that case copies those bytes into r.
func (r *Raw) Decode(buf []byte) int {
	if len(buf) < len(*r) {
		return -1
	}
	return copy(*r, buf)
}

// Parse parses buf into the specified decoder values, returning the total
// number of bytes consumed.
func Parse(buf []byte, into ...Decoder) (int, error) {
	var nr int
	cur := buf
	for i, dec := range into {
		nb := dec.Decode(cur)
		if nb < 0 {
			return nr, fmt.Errorf("arg %d: invalid %T", i+1, dec)
		}
		nr += nb
		cur = cur[nb:]
	}
	return nr, nil
}
