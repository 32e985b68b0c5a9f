// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package nbt_test

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/creachadair/mcwire/envelope"
	"github.com/creachadair/mcwire/nbt"
	"github.com/creachadair/mcwire/packet"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

// sampleTree returns a document that uses every tag kind.
func sampleTree() *nbt.Compound {
	pos := nbt.MustList(nbt.Double(1.5), nbt.Double(64), nbt.Double(-3.25))
	items := nbt.MustList(
		nbt.NewCompound("").Set("id", nbt.String("minecraft:stone")).Set("Count", nbt.Byte(64)),
		nbt.NewCompound("").Set("id", nbt.String("minecraft:torch")).Set("Count", nbt.Byte(3)),
	)
	grid := nbt.MustList(
		nbt.MustList(nbt.Int(1), nbt.Int(2)),
		nbt.MustList(nbt.Int(3)),
		nbt.List{Elem: nbt.KindEnd},
	)
	return nbt.NewCompound("Level").
		Set("byte", nbt.Byte(-7)).
		Set("short", nbt.Short(-30000)).
		Set("int", nbt.Int(2147483647)).
		Set("long", nbt.Long(-1<<60)).
		Set("float", nbt.Float(0.5)).
		Set("double", nbt.Double(math.Pi)).
		Set("bytes", nbt.ByteArray{0, 1, 0xfe, 0xff}).
		Set("string", nbt.String("héllo, wörld")).
		Set("empty string", nbt.String("")).
		Set("pos", pos).
		Set("items", items).
		Set("grid", grid).
		Set("nothing", nbt.List{Elem: nbt.KindEnd}).
		Set("no ints", nbt.List{Elem: nbt.KindInt}).
		Set("child", nbt.NewCompound("").
			Set("grandchild", nbt.NewCompound("").Set("deep", nbt.Long(1))).
			Set("empty", nbt.NewCompound(""))).
		Set("ints", nbt.IntArray{-1, 0, 1 << 30})
}

func TestRoundTrip(t *testing.T) {
	want := sampleTree()
	data, err := nbt.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: unexpected error: %v", err)
	}
	t.Logf("Encoded %d bytes", len(data))

	got, err := nbt.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: unexpected error: %v", err)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Round trip (-got, +want):\n%s", diff)
	}
	if diff := cmp.Diff(got.Names(), want.Names()); diff != "" {
		t.Errorf("Entry order (-got, +want):\n%s", diff)
	}

	// Re-encoding the parsed tree must reproduce the same bytes.
	again, err := nbt.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal again: unexpected error: %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Errorf("Re-encoded tree differs:\ngot  %q\nwant %q", again, data)
	}
}

func TestRoundTripTrees(t *testing.T) {
	nan32, nan64 := nbt.Float(float32(math.NaN())), nbt.Double(math.NaN())
	tests := []struct {
		name  string
		input *nbt.Compound
	}{
		{"NamedChild",
			nbt.NewCompound("root").Set("child", nbt.NewCompound("inner").Set("x", nbt.Int(1)))},
		{"NamedListItems",
			nbt.NewCompound("").Set("l", nbt.MustList(
				nbt.NewCompound("e"),
				nbt.NewCompound("f").Set("y", nbt.String("z")),
			))},
		{"NestedNames",
			nbt.NewCompound("a").Set("b", nbt.NewCompound("b").
				Set("c", nbt.NewCompound("c").Set("d", nbt.NewCompound("d"))))},
		{"EmptyList", nbt.NewCompound("").Set("e", nbt.List{Elem: nbt.KindEnd})},
		{"EmptyTypedList", nbt.NewCompound("").Set("e", nbt.List{Elem: nbt.KindCompound})},
		{"NaN",
			nbt.NewCompound("").Set("f", nan32).Set("d", nan64).
				Set("l", nbt.MustList(nan64, nbt.Double(math.Inf(-1))))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := nbt.Marshal(tc.input)
			if err != nil {
				t.Fatalf("Marshal: unexpected error: %v", err)
			}
			got, err := nbt.Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: unexpected error: %v", err)
			}
			if !got.Equal(tc.input) {
				t.Errorf("Round trip: got %v, want %v", got, tc.input)
			}
			if diff := cmp.Diff(got, tc.input); diff != "" {
				t.Errorf("Round trip (-got, +want):\n%s", diff)
			}
		})
	}
}

func TestEncoding(t *testing.T) {
	tests := []struct {
		name  string
		input *nbt.Compound
		want  string
	}{
		{"Empty", nbt.NewCompound(""), "\x0a\x00\x00\x00"},
		{"Greeting",
			nbt.NewCompound("").Set("greeting", nbt.String("hi")),
			"\x0a\x00\x00" + "\x08\x00\x08greeting\x00\x02hi" + "\x00"},
		{"HelloWorld",
			nbt.NewCompound("hello world").Set("name", nbt.String("Bananrama")),
			"\x0a\x00\x0bhello world" + "\x08\x00\x04name\x00\x09Bananrama" + "\x00"},
		{"Numbers",
			nbt.NewCompound("").Set("b", nbt.Byte(-1)).Set("s", nbt.Short(258)).Set("f", nbt.Float(1)),
			"\x0a\x00\x00" +
				"\x01\x00\x01b\xff" +
				"\x02\x00\x01s\x01\x02" +
				"\x05\x00\x01f\x3f\x80\x00\x00" +
				"\x00"},
		{"Lists",
			nbt.NewCompound("").
				Set("l", nbt.MustList(nbt.Short(1), nbt.Short(2))).
				Set("e", nbt.List{Elem: nbt.KindEnd}),
			"\x0a\x00\x00" +
				"\x09\x00\x01l\x02\x00\x00\x00\x02\x00\x01\x00\x02" +
				"\x09\x00\x01e\x00\x00\x00\x00\x00" +
				"\x00"},
		{"Arrays",
			nbt.NewCompound("").Set("a", nbt.ByteArray{1, 2}).Set("i", nbt.IntArray{-1}),
			"\x0a\x00\x00" +
				"\x07\x00\x01a\x00\x00\x00\x02\x01\x02" +
				"\x0b\x00\x01i\x00\x00\x00\x01\xff\xff\xff\xff" +
				"\x00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := nbt.Marshal(tc.input)
			if err != nil {
				t.Fatalf("Marshal: unexpected error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("Marshal:\ngot  %q\nwant %q", got, tc.want)
			}
			back, err := nbt.Unmarshal([]byte(tc.want))
			if err != nil {
				t.Fatalf("Unmarshal: unexpected error: %v", err)
			}
			if diff := cmp.Diff(back, tc.input); diff != "" {
				t.Errorf("Unmarshal (-got, +want):\n%s", diff)
			}
		})
	}
}

func TestUnknownKind(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Root", "\x0c\x00\x00"},
		{"Entry", "\x0a\x00\x00\x0c\x00\x01x\x00\x00\x00\x00\x00"},
		{"ListElement", "\x0a\x00\x00\x09\x00\x01l\x0c\x00\x00\x00\x00\x00"},
		{"Nested", "\x0a\x00\x00\x0a\x00\x01c\x01\x00\x01b\x05\x0c\x00\x00\x00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := nbt.Unmarshal([]byte(tc.input))
			var uk *nbt.UnknownKindError
			if !errors.As(err, &uk) {
				t.Fatalf("Unmarshal: got %v, want %T", err, uk)
			}
			if uk.Kind != 12 {
				t.Errorf("Unknown kind: got %d, want 12", uk.Kind)
			}
		})
	}
}

func TestTruncated(t *testing.T) {
	data, err := nbt.Marshal(sampleTree())
	if err != nil {
		t.Fatalf("Marshal: unexpected error: %v", err)
	}
	for n := range len(data) {
		_, err := nbt.Unmarshal(data[:n])
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("Unmarshal %d of %d bytes: got %v, want %v", n, len(data), err, io.ErrUnexpectedEOF)
		}
	}

	// The same holds when reading from a stream.
	for _, n := range []int{1, 5, len(data) / 2, len(data) - 1} {
		_, err := nbt.LoadRaw(bytes.NewReader(data[:n]))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("LoadRaw %d of %d bytes: got %v, want %v", n, len(data), err, io.ErrUnexpectedEOF)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error // if nil, any error
	}{
		{"RootNotCompound", "\x08\x00\x00\x00\x00", nil},
		{"NegativeArray", "\x0a\x00\x00\x07\x00\x01a\xff\xff\xff\xff\x00", nil},
		{"NegativeList", "\x0a\x00\x00\x09\x00\x01l\x01\x80\x00\x00\x00\x00", nil},
		{"EndListWithItems", "\x0a\x00\x00\x09\x00\x01l\x00\x00\x00\x00\x01\x00", nil},
		{"HugeArray", "\x0a\x00\x00\x0b\x00\x01i\x7f\xff\xff\xff", nbt.ErrLimitExceeded},
		{"TooDeep", "\x0a\x00\x00" + strings.Repeat("\x0a\x00\x01c", nbt.MaxDepth+1), nbt.ErrLimitExceeded},
		{"ExtraData", "\x0a\x00\x00\x00\x00", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := nbt.Unmarshal([]byte(tc.input))
			if err == nil {
				t.Fatalf("Unmarshal: got %v, want error", got)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("Unmarshal: got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	deep := nbt.NewCompound("")
	cur := deep
	for range nbt.MaxDepth + 1 {
		next := nbt.NewCompound("")
		cur.Set("c", next)
		cur = next
	}

	tests := []struct {
		name  string
		input *nbt.Compound
		want  error
	}{
		{"MixedList", nbt.NewCompound("").Set("l", nbt.List{
			Elem: nbt.KindInt, Items: []nbt.Tag{nbt.Int(1), nbt.String("x")},
		}), nil},
		{"EndListWithItems", nbt.NewCompound("").Set("l", nbt.List{
			Elem: nbt.KindEnd, Items: []nbt.Tag{nbt.Int(1)},
		}), nil},
		{"BadElemKind", nbt.NewCompound("").Set("l", nbt.List{Elem: 12}), nil},
		{"LongName", nbt.NewCompound("").Set(strings.Repeat("x", 70000), nbt.Byte(0)), nil},
		{"NilChild", nbt.NewCompound("").Set("c", (*nbt.Compound)(nil)), nil},
		{"TooDeep", deep, nbt.ErrLimitExceeded},
		{"NilRoot", nil, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := nbt.Marshal(tc.input)
			if err == nil {
				t.Fatalf("Marshal: got %q, want error", got)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("Marshal: got %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := nbt.NewList(nbt.Int(1), nbt.Long(2)); err == nil {
		t.Error("NewList with mixed kinds: got nil error")
	}
	mtest.MustPanic(t, func() { nbt.MustList(nbt.Byte(1), nbt.Short(2)) })
}

func TestLoad(t *testing.T) {
	doc := nbt.NewCompound("").Set("greeting", nbt.String("hi"))

	t.Run("GzipWrapped", func(t *testing.T) {
		var raw bytes.Buffer
		if err := nbt.DumpRaw(&raw, doc); err != nil {
			t.Fatalf("DumpRaw: unexpected error: %v", err)
		}
		var zipped bytes.Buffer
		zw, err := envelope.NewWriter(&zipped, envelope.Gzip)
		if err != nil {
			t.Fatalf("NewWriter: %v", err)
		}
		zw.Write(raw.Bytes())
		if err := zw.Close(); err != nil {
			t.Fatalf("Close gzip: %v", err)
		}

		got, err := nbt.Load(&zipped)
		if err != nil {
			t.Fatalf("Load: unexpected error: %v", err)
		}
		if diff := cmp.Diff(got, doc); diff != "" {
			t.Errorf("Load (-got, +want):\n%s", diff)
		}
	})

	for _, kind := range []envelope.Kind{envelope.Raw, envelope.Gzip, envelope.Zlib} {
		t.Run("Dump/"+kind.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := nbt.Dump(&buf, sampleTree(), nbt.Compress(kind)); err != nil {
				t.Fatalf("Dump: unexpected error: %v", err)
			}
			if got := envelope.Sniff(buf.Bytes()); got != kind {
				t.Errorf("Dump envelope: got %v, want %v", got, kind)
			}
			got, err := nbt.Load(&buf)
			if err != nil {
				t.Fatalf("Load: unexpected error: %v", err)
			}
			if diff := cmp.Diff(got, sampleTree()); diff != "" {
				t.Errorf("Load (-got, +want):\n%s", diff)
			}
		})
	}

	t.Run("Default", func(t *testing.T) {
		var buf bytes.Buffer
		if err := nbt.Dump(&buf, doc); err != nil {
			t.Fatalf("Dump: unexpected error: %v", err)
		}
		got, err := nbt.LoadRaw(&buf)
		if err != nil {
			t.Fatalf("LoadRaw: unexpected error: %v", err)
		}
		if diff := cmp.Diff(got, doc); diff != "" {
			t.Errorf("LoadRaw (-got, +want):\n%s", diff)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := nbt.Load(strings.NewReader("\x0a"))
		if !errors.Is(err, envelope.ErrTruncatedStream) {
			t.Errorf("Load: got %v, want %v", err, envelope.ErrTruncatedStream)
		}
	})
}

func TestLoadAll(t *testing.T) {
	docs := []*nbt.Compound{
		nbt.NewCompound("a").Set("n", nbt.Int(1)),
		nbt.NewCompound("b").Set("n", nbt.Int(2)),
		sampleTree(),
	}
	var raw packet.Builder
	for _, d := range docs {
		if err := nbt.Write(&raw, d); err != nil {
			t.Fatalf("Write: unexpected error: %v", err)
		}
	}

	got, err := nbt.ParseAll(packet.NewScanner(raw.Bytes()))
	if err != nil {
		t.Fatalf("ParseAll: unexpected error: %v", err)
	}
	if diff := cmp.Diff(got, docs); diff != "" {
		t.Errorf("ParseAll (-got, +want):\n%s", diff)
	}

	var zipped bytes.Buffer
	zw, _ := envelope.NewWriter(&zipped, envelope.Zlib)
	zw.Write(raw.Bytes())
	zw.Close()
	got, err = nbt.LoadAll(&zipped)
	if err != nil {
		t.Fatalf("LoadAll: unexpected error: %v", err)
	}
	if diff := cmp.Diff(got, docs); diff != "" {
		t.Errorf("LoadAll (-got, +want):\n%s", diff)
	}

	// A trailing partial document is an error, but the complete ones are kept.
	got, err = nbt.ParseAll(packet.NewScanner(append(raw.Copy(), 0x0a, 0x00)))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ParseAll partial: got %v, want %v", err, io.ErrUnexpectedEOF)
	}
	if len(got) != len(docs) {
		t.Errorf("ParseAll partial: got %d documents, want %d", len(got), len(docs))
	}
}

func TestCompound(t *testing.T) {
	c := nbt.NewCompound("root").
		Set("b", nbt.Int(1)).
		Set("a", nbt.String("x")).
		Set("c", nbt.NewCompound("").Set("z", nbt.Long(9)))

	if diff := cmp.Diff(c.Names(), []string{"b", "a", "c"}); diff != "" {
		t.Errorf("Names (-got, +want):\n%s", diff)
	}
	c.Set("b", nbt.Int(2)) // replace keeps position
	if diff := cmp.Diff(c.Names(), []string{"b", "a", "c"}); diff != "" {
		t.Errorf("Names after replace (-got, +want):\n%s", diff)
	}

	if v, ok := c.Int("b"); !ok || v != 2 {
		t.Errorf(`Int("b"): got (%v, %v), want (2, true)`, v, ok)
	}
	if v, ok := c.Str("a"); !ok || v != "x" {
		t.Errorf(`Str("a"): got (%q, %v), want ("x", true)`, v, ok)
	}
	if _, ok := c.Str("b"); ok {
		t.Error(`Str("b"): got ok for an Int entry`)
	}
	if child, ok := c.Child("c"); !ok {
		t.Error(`Child("c"): not found`)
	} else if v, ok := child.Long("z"); !ok || v != 9 {
		t.Errorf(`Long("z"): got (%v, %v), want (9, true)`, v, ok)
	}
	if _, ok := c.Get("nonesuch"); ok {
		t.Error(`Get("nonesuch"): got ok`)
	}

	cp := c.Clone()
	if !cp.Equal(c) {
		t.Error("Clone is not equal to the original")
	}
	child, _ := cp.Child("c")
	child.Set("z", nbt.Long(10))
	if v, _ := c.Child("c"); !v.Equal(nbt.NewCompound("").Set("z", nbt.Long(9))) {
		t.Errorf("Clone shares storage with the original: %v", c)
	}

	if !c.Delete("a") || c.Delete("a") {
		t.Error("Delete did not report presence correctly")
	}
	if c.Has("a") || c.Len() != 2 {
		t.Errorf("After Delete: Has = %v, Len = %d", c.Has("a"), c.Len())
	}
	var names []string
	for name := range c.All() {
		names = append(names, name)
	}
	if diff := cmp.Diff(names, []string{"b", "c"}); diff != "" {
		t.Errorf("All (-got, +want):\n%s", diff)
	}

	// Equality ignores entry order but not the root name. Names of nested
	// compounds are not compared.
	x := nbt.NewCompound("").Set("p", nbt.Byte(1)).Set("q", nbt.Byte(2))
	y := nbt.NewCompound("").Set("q", nbt.Byte(2)).Set("p", nbt.Byte(1))
	if !x.Equal(y) {
		t.Error("Compounds with reordered entries are not equal")
	}
	if x.Equal(y.Clone().SetName("other")) {
		t.Error("Compounds with different names are equal")
	}
	nx := nbt.NewCompound("").Set("c", nbt.NewCompound("a").Set("p", nbt.Byte(1)))
	ny := nbt.NewCompound("").Set("c", nbt.NewCompound("b").Set("p", nbt.Byte(1)))
	if !nx.Equal(ny) {
		t.Error("Compounds differing only in nested names are not equal")
	}
	if !nbt.Equal(nbt.NewCompound("a"), nbt.NewCompound("b")) {
		t.Error("Equal compared compound names")
	}
	if !nbt.Equal(nbt.Float(float32(math.NaN())), nbt.Float(float32(math.NaN()))) {
		t.Error("NaN is not equal to itself")
	}

	var zero nbt.Compound
	zero.Set("ok", nbt.Byte(1))
	if !zero.Has("ok") {
		t.Error("Zero compound did not accept an entry")
	}

	mtest.MustPanic(t, func() { c.Set("nil", nil) })
}

func TestFromValue(t *testing.T) {
	got, err := nbt.FromValue(map[string]any{
		"name":   "Steve",
		"alive":  true,
		"health": float32(20),
		"xp":     5,
		"big":    int64(1) << 40,
		"pos":    []float64{1.5, 64, -3.25},
		"tags":   []string{"a", "b"},
		"inv":    []map[string]any{{"id": "stone"}},
		"raw":    []byte{1, 2},
		"ints":   []int32{7},
		"nested": map[string]any{"k": int16(3)},
		"empty":  []any{},
	})
	if err != nil {
		t.Fatalf("FromValue: unexpected error: %v", err)
	}
	want := nbt.NewCompound("").
		Set("alive", nbt.Byte(1)).
		Set("big", nbt.Long(1<<40)).
		Set("empty", nbt.List{Elem: nbt.KindEnd}).
		Set("health", nbt.Float(20)).
		Set("ints", nbt.IntArray{7}).
		Set("inv", nbt.MustList(nbt.NewCompound("").Set("id", nbt.String("stone")))).
		Set("name", nbt.String("Steve")).
		Set("nested", nbt.NewCompound("").Set("k", nbt.Short(3))).
		Set("pos", nbt.MustList(nbt.Double(1.5), nbt.Double(64), nbt.Double(-3.25))).
		Set("raw", nbt.ByteArray{1, 2}).
		Set("tags", nbt.MustList(nbt.String("a"), nbt.String("b"))).
		Set("xp", nbt.Int(5))
	if diff := cmp.Diff(got, nbt.Tag(want)); diff != "" {
		t.Errorf("FromValue (-got, +want):\n%s", diff)
	}
	if diff := cmp.Diff(got.(*nbt.Compound).Names(), want.Names()); diff != "" {
		t.Errorf("FromValue entry order (-got, +want):\n%s", diff)
	}

	// Converting back yields native values.
	back := nbt.ToValue(got).(map[string]any)
	if v := back["xp"]; v != int32(5) {
		t.Errorf("ToValue xp: got %T %v, want int32 5", v, v)
	}
	if diff := cmp.Diff(back["pos"], []any{1.5, 64.0, -3.25}); diff != "" {
		t.Errorf("ToValue pos (-got, +want):\n%s", diff)
	}
	if diff := cmp.Diff(back["nested"], map[string]any{"k": int16(3)}); diff != "" {
		t.Errorf("ToValue nested (-got, +want):\n%s", diff)
	}
	again, err := nbt.FromValue(back)
	if err != nil {
		t.Fatalf("FromValue(ToValue): unexpected error: %v", err)
	}
	if !nbt.Equal(again, got) {
		t.Errorf("FromValue(ToValue(t)) = %v, want %v", again, got)
	}
}

func TestUnencodable(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, "<nil>"},
		{struct{}{}, "struct {}"},
		{make(chan int), "chan int"},
		{uint64(math.MaxUint64), "uint64"},
		{map[string]any{"x": complex(1, 2)}, "complex128"},
		{[]any{1, func() {}}, "func()"},
		{map[int]string{}, "map[int]string"},
		{(*nbt.Compound)(nil), "*nbt.Compound"},
		{map[string]any{"c": (*nbt.Compound)(nil)}, "*nbt.Compound"},
	}
	for _, tc := range tests {
		_, err := nbt.FromValue(tc.input)
		var ue *nbt.UnencodableError
		if !errors.As(err, &ue) {
			t.Errorf("FromValue(%T): got %v, want %T", tc.input, err, ue)
		} else if ue.Type != tc.want {
			t.Errorf("FromValue(%T): type %q, want %q", tc.input, ue.Type, tc.want)
		}
	}

	if _, err := nbt.FromValue([]any{1, "x"}); err == nil {
		t.Error("FromValue with mixed list: got nil error")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input nbt.Tag
		want  string
	}{
		{nbt.Byte(-1), "-1b"},
		{nbt.Short(5), "5s"},
		{nbt.Int(7), "7"},
		{nbt.Long(9), "9L"},
		{nbt.Float(20), "20.0f"},
		{nbt.Double(-3.25), "-3.25d"},
		{nbt.String(`say "hi"`), `"say \"hi\""`},
		{nbt.ByteArray{1, 0xff}, "[B;1b,-1b]"},
		{nbt.IntArray{1, 2}, "[I;1,2]"},
		{nbt.List{Elem: nbt.KindEnd}, "[]"},
		{nbt.MustList(nbt.Int(1), nbt.Int(2)), "[1,2]"},
		{nbt.NewCompound(""), "{}"},
		{nbt.NewCompound("").
			Set("name", nbt.String("Steve")).
			Set("pos", nbt.MustList(nbt.Double(1.5), nbt.Double(64))).
			Set("odd key", nbt.Byte(1)),
			`{name:"Steve",pos:[1.5d,64.0d],"odd key":1b}`},
	}
	for _, tc := range tests {
		if got := nbt.Format(tc.input); got != tc.want {
			t.Errorf("Format(%#v): got %s, want %s", tc.input, got, tc.want)
		}
	}

	c := nbt.NewCompound("").
		Set("a", nbt.Int(1)).
		Set("l", nbt.MustList(nbt.NewCompound("").Set("b", nbt.Byte(2))))
	const want = `{
  a: 1,
  l: [
    {
      b: 2b
    }
  ]
}`
	if got := nbt.FormatIndent(c, "  "); got != want {
		t.Errorf("FormatIndent:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
