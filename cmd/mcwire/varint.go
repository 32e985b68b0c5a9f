package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/creachadair/command"
	"github.com/creachadair/mcwire/packet"
)

var varintCommand = &command.C{
	Name: "varint",
	Help: "Encode and decode variable-length integers.",
	Commands: []*command.C{
		{
			Name:  "encode",
			Usage: "<value>...",
			Help:  "Print the VarInt encoding of each value in hex. Values outside the int32 range use VarLong.",
			Run: func(env *command.Env) error {
				if len(env.Args) == 0 {
					return env.Usagef("missing values")
				}
				for _, arg := range env.Args {
					v, err := strconv.ParseInt(arg, 0, 64)
					if err != nil {
						return fmt.Errorf("invalid value: %w", err)
					}
					var enc []byte
					if int64(int32(v)) == v {
						enc = packet.AppendVarInt(nil, int32(v))
					} else {
						enc = packet.AppendVarLong(nil, v)
					}
					fmt.Printf("%d\t% x\n", v, enc)
				}
				return nil
			},
		},
		{
			Name:  "decode",
			Usage: "<hex>...",
			Help: `Decode a sequence of VarLong values from hex input.

Spaces within and between the arguments are ignored.`,
			Run: func(env *command.Env) error {
				if len(env.Args) == 0 {
					return env.Usagef("missing input")
				}
				data, err := hex.DecodeString(strings.Join(strings.Fields(strings.Join(env.Args, " ")), ""))
				if err != nil {
					return fmt.Errorf("invalid hex: %w", err)
				}
				for len(data) != 0 {
					nb, v := packet.ParseVarLong(data)
					if nb < 0 {
						return fmt.Errorf("at % x: %w", data, packet.ErrMalformedVarInt)
					}
					fmt.Printf("% x\t%d\n", data[:nb], v)
					data = data[nb:]
				}
				return nil
			},
		},
	},
}
