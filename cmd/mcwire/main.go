// Program mcwire is a command-line utility for working with game protocol
// data: NBT files, variable-length integers, ad-hoc packet payloads, and a
// minimal server that answers status requests.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/rs/zerolog"
)

var logFlags struct {
	Level string `flag:"log-level,default=info,Log level (trace, debug, info, warn, error)"`
	JSON  bool   `flag:"log-json,Write log records as JSON instead of console text"`
}

func main() {
	root := &command.C{
		Name:     filepath.Base(os.Args[0]),
		Help:     "Utilities for working with game protocol data.",
		SetFlags: command.Flags(flax.MustBind, &logFlags),
		Commands: []*command.C{
			nbtCommand,
			varintCommand,
			packCommand,
			unpackCommand,
			serveCommand,
			command.VersionCommand(),
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

// newLogger constructs a logger writing to w according to the log flags.
func newLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(logFlags.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	if !logFlags.JSON {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
