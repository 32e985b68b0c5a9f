// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package packet

import "errors"

// ErrMalformedVarInt is reported when a variable-length integer does not
// terminate within its maximum encoded length.
var ErrMalformedVarInt = errors.New("malformed varint")

const (
	// MaxVarIntLen is the maximum encoded length of a [VarInt].
	MaxVarIntLen = 5

	// MaxVarLongLen is the maximum encoded length of a [VarLong].
	MaxVarLongLen = 10
)

// VarInt is a signed 32-bit integer that uses a variable-width encoding from 1
// to 5 bytes.
//
// Each byte carries 7 bits of the value, least-significant group first, and
// the high-order bit of each byte is set if more bytes follow. The value is
// shifted as unsigned, so negative values always use the full 5 bytes:
//
//	0          → 00
//	127        → 7f
//	128        → 80 01
//	2147483647 → ff ff ff ff 07
//	-1         → ff ff ff ff 0f
//
// This is not a zig-zag encoding; small negative values are not compact.
type VarInt int32

// Size reports the number of bytes required to encode v.
func (v VarInt) Size() int { return VarIntSize(int32(v)) }

// Append appends the encoded value of v to buf, and returns the updated slice.
func (v VarInt) Append(buf []byte) []byte { return AppendVarInt(buf, int32(v)) }

// VarLong is a signed 64-bit integer that uses the [VarInt] encoding scheme,
// with from 1 to 10 bytes.
type VarLong int64

// Size reports the number of bytes required to encode v.
func (v VarLong) Size() int { return VarLongSize(int64(v)) }

// Append appends the encoded value of v to buf, and returns the updated slice.
func (v VarLong) Append(buf []byte) []byte { return AppendVarLong(buf, int64(v)) }

// AppendVarInt appends the [VarInt] encoding of v to buf, and returns the
// updated slice.
func AppendVarInt(buf []byte, v int32) []byte {
	u := uint32(v)
	for u&^0x7f != 0 {
		buf = append(buf, byte(u&0x7f)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// AppendVarLong appends the [VarLong] encoding of v to buf, and returns the
// updated slice.
func AppendVarLong(buf []byte, v int64) []byte {
	u := uint64(v)
	for u&^0x7f != 0 {
		buf = append(buf, byte(u&0x7f)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// VarIntSize reports the number of bytes in the [VarInt] encoding of v.
func VarIntSize(v int32) int {
	n, u := 1, uint32(v)
	for u&^0x7f != 0 {
		n++
		u >>= 7
	}
	return n
}

// VarLongSize reports the number of bytes in the [VarLong] encoding of v.
func VarLongSize(v int64) int {
	n, u := 1, uint64(v)
	for u&^0x7f != 0 {
		n++
		u >>= 7
	}
	return n
}

// ParseVarInt parses a [VarInt] from the front of buf, and reports the number
// of bytes consumed along with the value. If buf does not begin with a
// complete, well-formed encoding, ParseVarInt returns -1.
func ParseVarInt(buf []byte) (int, int32) {
	nb, v := parseUvarint(buf, MaxVarIntLen)
	return nb, int32(v)
}

// ParseVarLong parses a [VarLong] from the front of buf, and reports the
// number of bytes consumed along with the value. If buf does not begin with a
// complete, well-formed encoding, ParseVarLong returns -1.
func ParseVarLong(buf []byte) (int, int64) {
	nb, v := parseUvarint(buf, MaxVarLongLen)
	return nb, int64(v)
}

func parseUvarint(buf []byte, maxLen int) (int, uint64) {
	var v uint64
	for i, b := range buf {
		if i == maxLen {
			break
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return i + 1, v
		}
	}
	return -1, 0
}
