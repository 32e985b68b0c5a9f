package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/mcwire/envelope"
	"github.com/creachadair/mcwire/nbt"
	"github.com/creachadair/mcwire/packet"
)

var nbtFlags struct {
	Pretty   bool   `flag:"pretty,Render one entry per line"`
	Compress string `flag:"compress,default=raw,Output compression (raw, gzip, zlib)"`
}

var nbtCommand = &command.C{
	Name:     "nbt",
	Help:     "Inspect and convert NBT documents.",
	SetFlags: command.Flags(flax.MustBind, &nbtFlags),
	Commands: []*command.C{
		{
			Name:  "show",
			Usage: "<path>...",
			Help: `Print the documents in each file in stringified NBT.

Input may be raw, gzip, or zlib compressed; the format is detected from the
first bytes of the file. Use "-" to read from stdin.`,
			Run: runNBTShow,
		},
		{
			Name:  "convert",
			Usage: "<input> <output>",
			Help: `Convert an NBT document to the compression given by --compress.

Input compression is detected. Use "-" for stdin or stdout.`,
			Run: runNBTConvert,
		},
		{
			Name:  "json",
			Usage: "<path>",
			Help:  "Print an NBT document as JSON.",
			Run:   runNBTJSON,
		},
		{
			Name:  "fromjson",
			Usage: "<input.json> <output>",
			Help: `Encode a JSON object as an NBT document.

Objects become compounds with their keys in sorted order, arrays become lists,
numbers become doubles, and booleans become bytes. Output compression is set
by --compress.`,
			Run: runNBTFromJSON,
		},
	},
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func createOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func runNBTShow(env *command.Env) error {
	if len(env.Args) == 0 {
		return env.Usagef("missing input path")
	}
	for _, path := range env.Args {
		docs, kind, err := loadFile(path)
		if err != nil {
			return err
		}
		fmt.Printf("# %s (%v, %d documents)\n", path, kind, len(docs))
		for _, doc := range docs {
			if nbtFlags.Pretty {
				fmt.Println(nbt.FormatIndent(doc, "  "))
			} else {
				fmt.Println(nbt.Format(doc))
			}
		}
	}
	return nil
}

func loadFile(path string) ([]*nbt.Compound, envelope.Kind, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, envelope.Raw, err
	}
	defer f.Close()
	rc, kind, err := envelope.Detect(f)
	if err != nil {
		return nil, kind, fmt.Errorf("%s: %w", path, err)
	}
	defer rc.Close()
	docs, err := nbt.ParseAll(packet.NewStreamScanner(rc))
	if err != nil {
		return nil, kind, fmt.Errorf("%s: %w", path, err)
	}
	return docs, kind, nil
}

func loadOne(path string) (*nbt.Compound, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := nbt.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func dumpFile(path string, doc *nbt.Compound) (err error) {
	kind, err := envelope.ParseKind(nbtFlags.Compress)
	if err != nil {
		return err
	}
	out, err := createOutput(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, out.Close()) }()
	return nbt.Dump(out, doc, nbt.Compress(kind))
}

func runNBTConvert(env *command.Env) error {
	if len(env.Args) != 2 {
		return env.Usagef("want input and output paths")
	}
	doc, err := loadOne(env.Args[0])
	if err != nil {
		return err
	}
	return dumpFile(env.Args[1], doc)
}

func runNBTJSON(env *command.Env) error {
	if len(env.Args) != 1 {
		return env.Usagef("want one input path")
	}
	doc, err := loadOne(env.Args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(map[string]any{doc.Name(): nbt.ToValue(doc)}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runNBTFromJSON(env *command.Env) error {
	if len(env.Args) != 2 {
		return env.Usagef("want input and output paths")
	}
	in, err := openInput(env.Args[0])
	if err != nil {
		return err
	}
	defer in.Close()
	var obj map[string]any
	if err := json.NewDecoder(in).Decode(&obj); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	tag, err := nbt.FromValue(obj)
	if err != nil {
		return err
	}
	return dumpFile(env.Args[1], tag.(*nbt.Compound))
}
