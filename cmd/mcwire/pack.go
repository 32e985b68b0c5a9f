package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/creachadair/command"
	"github.com/creachadair/mcwire/packet"
)

var packCommand = &command.C{
	Name:  "pack",
	Usage: "<pattern> <argument>...",
	Help: `Pack arguments into a binary packet payload.

The pattern specifies the sequence of values to concatenate into the payload.
Whitespace in the pattern is ignored; otherwise the pattern specifies how the
corresponding argument is processed:

  p  : a Pascal style string with a 1-byte length prefix
  q  : a quoted literal string (Go style) without framing
  r  : a raw literal string encoded without framing
  s  : a string encoded with a VarInt length prefix
  %  : a Boolean constant (true or false)
  v  : a VarInt value (signed 32-bit)
  V  : a VarLong value (signed 64-bit)
  1  : a uint8 value (1 byte)
  2  : a uint16 value (2 bytes)
  4  : a uint32 value (4 bytes)
  8  : a uint64 value (8 bytes)

Fixed-width integers are big-endian unless one of these symbols changes the
byte order for the values after it:

  <  : encode as little-endian
  >  : encode as big-endian (this is the default)

In addition, a "(" begins a subpattern, which goes until a matching ")".
The subpattern is packed with the settings in effect where it begins, and its
encoding is prefixed with its length. Lengths are VarInt by default; these
symbols select the length encoding for later subpatterns:

  @  : encode length as a uint16 (2 bytes)
  $  : encode length as a uint32 (4 bytes)
  *  : encode length as a uint64 (8 bytes)
  ?  : encode length as a VarInt (this is the default)

Subpatterns may be nested. A complete frame for packet ID 0x00 carrying a
VarInt and a string is "(v v s) 0 763 localhost".
`,
	Run: func(env *command.Env) error {
		if len(env.Args) == 0 {
			return env.Usagef("Missing pattern argument")
		}
		enc, rest, err := formatData(env.Args[0], env.Args[1:])
		if err != nil {
			return err
		} else if len(rest) != 0 {
			return fmt.Errorf("unused arguments: %q", rest)
		}
		_, err = os.Stdout.Write(enc.Encode(nil))
		return err
	},
}

// formatData packs args according to pat, and returns the encoders along with
// any arguments pat did not consume.
func formatData(pat string, args []string) (packet.Slice, []string, error) {
	p := &packer{order: binary.BigEndian, prefix: '?', args: args}
	enc, err := p.pack(pat)
	return enc, p.args, err
}

// A packer holds the settings and remaining arguments for a pattern.
type packer struct {
	order  binary.AppendByteOrder
	prefix byte // length encoding for subpatterns: ? @ $ *
	args   []string
}

// valueCodes maps each pattern code that consumes an argument to a function
// that encodes that argument.
var valueCodes = map[byte]func(*packer, string) (packet.Encoder, error){
	'p': func(_ *packer, arg string) (packet.Encoder, error) {
		if len(arg) > 255 {
			return nil, fmt.Errorf("length %d is too long for a Pascal string", len(arg))
		}
		return packet.Slice{packet.Raw{byte(len(arg))}, packet.Literal(arg)}, nil
	},
	'q': func(_ *packer, arg string) (packet.Encoder, error) {
		s, err := strconv.Unquote(`"` + arg + `"`)
		return packet.Literal(s), err
	},
	'r': func(_ *packer, arg string) (packet.Encoder, error) { return packet.Literal(arg), nil },
	's': func(_ *packer, arg string) (packet.Encoder, error) { return packet.String(arg), nil },
	'%': func(_ *packer, arg string) (packet.Encoder, error) {
		v, err := strconv.ParseBool(arg)
		return packet.Bool(v), err
	},
	'v': func(_ *packer, arg string) (packet.Encoder, error) {
		v, err := strconv.ParseInt(arg, 0, 32)
		return packet.VarInt(v), err
	},
	'V': func(_ *packer, arg string) (packet.Encoder, error) {
		v, err := strconv.ParseInt(arg, 0, 64)
		return packet.VarLong(v), err
	},
	'1': fixedCode(8),
	'2': fixedCode(16),
	'4': fixedCode(32),
	'8': fixedCode(64),
}

// fixedCode returns a value encoder for an unsigned integer of the given width
// in bits, packed in the current byte order.
func fixedCode(bits int) func(*packer, string) (packet.Encoder, error) {
	return func(p *packer, arg string) (packet.Encoder, error) {
		v, err := strconv.ParseUint(arg, 0, bits)
		if err != nil {
			return nil, err
		}
		return packet.Raw(p.appendUint(nil, bits, v)), nil
	}
}

func (p *packer) appendUint(buf []byte, bits int, v uint64) []byte {
	switch bits {
	case 8:
		return append(buf, byte(v))
	case 16:
		return p.order.AppendUint16(buf, uint16(v))
	case 32:
		return p.order.AppendUint32(buf, uint32(v))
	default:
		return p.order.AppendUint64(buf, v)
	}
}

// lengthOf returns an encoder for the length prefix of a subpattern.
func (p *packer) lengthOf(n int) packet.Encoder {
	switch p.prefix {
	case '@':
		return packet.Raw(p.appendUint(nil, 16, uint64(n)))
	case '$':
		return packet.Raw(p.appendUint(nil, 32, uint64(n)))
	case '*':
		return packet.Raw(p.appendUint(nil, 64, uint64(n)))
	default:
		return packet.VarInt(n)
	}
}

func (p *packer) pack(pat string) (packet.Slice, error) {
	var enc packet.Slice
	for i := 0; i < len(pat); i++ {
		c := pat[i]
		switch c {
		case ' ', '\t', '\n':
		case '?', '@', '$', '*':
			p.prefix = c
		case '<':
			p.order = binary.LittleEndian
		case '>':
			p.order = binary.BigEndian
		case '(':
			sub, ok := cutParen(pat[i+1:], '(', ')')
			if !ok {
				return nil, errors.New("missing close parenthesis")
			}
			inner := &packer{order: p.order, prefix: p.prefix, args: p.args}
			sd, err := inner.pack(sub)
			if err != nil {
				return nil, fmt.Errorf("subpattern %q: %w", sub, err)
			}
			enc = append(enc, p.lengthOf(sd.EncodedLen()), sd)
			p.args = inner.args
			i += len(sub) + 1
		default:
			code, ok := valueCodes[c]
			if !ok {
				return nil, fmt.Errorf("invalid pattern code %c", c)
			} else if len(p.args) == 0 {
				return nil, fmt.Errorf("missing argument for %c", c)
			}
			e, err := code(p, p.args[0])
			if err != nil {
				return nil, fmt.Errorf("argument %q for %c: %w", p.args[0], c, err)
			}
			enc = append(enc, e)
			p.args = p.args[1:]
		}
	}
	return enc, nil
}

// cutParen returns the prefix of s before the close bracket r that balances
// an open bracket l already consumed.
func cutParen(s string, l, r rune) (string, bool) {
	depth := 1
	for i, c := range s {
		switch c {
		case l:
			depth++
		case r:
			if depth--; depth == 0 {
				return s[:i], true
			}
		}
	}
	return s, false
}
