package main

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/creachadair/command"
	"github.com/creachadair/mcwire/packet"
)

var unpackCommand = &command.C{
	Name:  "unpack",
	Usage: "<pattern> <hex>...",
	Help: `Unpack a binary packet payload given in hex.

The hex arguments are concatenated, and spaces within them are ignored. The
pattern names the sequence of values to read from the front of the payload,
one per line of output. Whitespace in the pattern is ignored.

  s  : a string with a VarInt length prefix
  b  : a byte string with a VarInt length prefix (printed in hex)
  %  : a Boolean byte
  v  : a VarInt value (signed 32-bit)
  V  : a VarLong value (signed 64-bit)
  1  : a uint8 value (1 byte)
  2  : a uint16 value (2 bytes, big-endian)
  4  : an int32 value (4 bytes, big-endian)
  8  : an int64 value (8 bytes, big-endian)

It is an error if the payload ends before the pattern does. Bytes left over
after the pattern are reported as an error after the values are printed.
A frame can be split with "v v", giving its length and packet ID.
`,
	Run: func(env *command.Env) error {
		if len(env.Args) < 2 {
			return env.Usagef("Missing pattern or payload")
		}
		data, err := hex.DecodeString(strings.ReplaceAll(strings.Join(env.Args[1:], ""), " ", ""))
		if err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		vals, rest, err := parseData(env.Args[0], data)
		if err != nil {
			return err
		}
		for _, v := range vals {
			fmt.Println(formatValue(v))
		}
		if len(rest) != 0 {
			return fmt.Errorf("%d unused bytes: %x", len(rest), rest)
		}
		return nil
	},
}

// parseData decodes values from the front of data according to pat, and
// returns them along with the bytes pat did not consume.
func parseData(pat string, data []byte) ([]packet.Decoder, []byte, error) {
	var into []packet.Decoder
	for _, c := range pat {
		var d packet.Decoder
		switch c {
		case ' ', '\t', '\n':
			continue
		case 's':
			d = new(packet.String)
		case 'b':
			d = new(packet.Bytes)
		case '%':
			d = new(packet.Bool)
		case 'v':
			d = new(packet.VarInt)
		case 'V':
			d = new(packet.VarLong)
		case '1', '2':
			r := make(packet.Raw, c-'0')
			d = &r
		case '4':
			d = new(packet.Int32)
		case '8':
			d = new(packet.Int64)
		default:
			return nil, nil, fmt.Errorf("invalid pattern code %c", c)
		}
		into = append(into, d)
	}
	nr, err := packet.Parse(data, into...)
	if err != nil {
		return nil, nil, err
	}
	return into, data[nr:], nil
}

// formatValue renders a decoded value for display.
func formatValue(d packet.Decoder) string {
	switch v := d.(type) {
	case *packet.String:
		return fmt.Sprintf("%q", string(*v))
	case *packet.Bytes:
		return hex.EncodeToString(*v)
	case *packet.Bool:
		return fmt.Sprint(bool(*v))
	case *packet.VarInt:
		return fmt.Sprint(int32(*v))
	case *packet.VarLong:
		return fmt.Sprint(int64(*v))
	case *packet.Raw:
		if len(*v) == 1 {
			return fmt.Sprint((*v)[0])
		}
		return fmt.Sprint(binary.BigEndian.Uint16(*v))
	case *packet.Int32:
		return fmt.Sprint(int32(*v))
	case *packet.Int64:
		return fmt.Sprint(int64(*v))
	default:
		return fmt.Sprint(d)
	}
}
