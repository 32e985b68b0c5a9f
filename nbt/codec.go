// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package nbt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/creachadair/mcwire/packet"
)

const (
	// MaxDepth is the maximum nesting depth of compounds and lists accepted
	// by the decoder and produced by the encoder.
	MaxDepth = 512

	// MaxArrayLen is the maximum number of elements accepted by the decoder
	// in a single array or list.
	MaxArrayLen = 1 << 24

	// MaxNameLen is the maximum encoded length of a name or string tag.
	MaxNameLen = math.MaxUint16
)

// A kindCodec reads and writes the payload of one tag kind.
type kindCodec struct {
	read  func(*decoder) (Tag, error)
	write func(*encoder, Tag) error
}

// codecs is indexed by Kind. It is populated by init because the compound
// and list readers refer back to it.
var codecs [numKinds]kindCodec

func init() {
	codecs = [numKinds]kindCodec{
		KindEnd:       {read: readEnd, write: writeEnd},
		KindByte:      {read: readByte, write: writeByte},
		KindShort:     {read: readShort, write: writeShort},
		KindInt:       {read: readInt, write: writeInt},
		KindLong:      {read: readLong, write: writeLong},
		KindFloat:     {read: readFloat, write: writeFloat},
		KindDouble:    {read: readDouble, write: writeDouble},
		KindByteArray: {read: readByteArray, write: writeByteArray},
		KindString:    {read: readString, write: writeString},
		KindList:      {read: readList, write: writeList},
		KindCompound:  {read: readCompound, write: writeCompound},
		KindIntArray:  {read: readIntArray, write: writeIntArray},
	}
}

// A decoder holds the state of one parse. It is not shared between calls.
type decoder struct {
	s     *packet.Scanner
	depth int
}

// truncated converts a clean end of input inside a value into an unexpected
// end of input.
func truncated(err error) error {
	if err == io.EOF {
		return fmt.Errorf("tag truncated: %w", io.ErrUnexpectedEOF)
	}
	return err
}

func (d *decoder) kind() (Kind, error) {
	b, err := d.s.Byte()
	if err != nil {
		return 0, truncated(err)
	}
	if k := Kind(b); !k.Valid() {
		return 0, &UnknownKindError{Kind: k}
	}
	return Kind(b), nil
}

func (d *decoder) str() (string, error) {
	n, err := d.s.Uint16()
	if err != nil {
		return "", err
	}
	return packet.Get[string](d.s, int(n))
}

func (d *decoder) count(what Kind) (int, error) {
	n, err := d.s.Int32()
	if err != nil {
		return 0, err
	} else if n < 0 {
		return 0, fmt.Errorf("negative %v length %d", what, n)
	} else if n > MaxArrayLen {
		return 0, fmt.Errorf("%w: %v length %d > %d", ErrLimitExceeded, what, n, MaxArrayLen)
	}
	return int(n), nil
}

func (d *decoder) enter() error {
	d.depth++
	if d.depth > MaxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, MaxDepth)
	}
	return nil
}

func (d *decoder) payload(k Kind) (Tag, error) { return codecs[k].read(d) }

// root reads a named root compound. It reports io.EOF without wrapping if the
// input is exhausted before the first byte.
func (d *decoder) root() (*Compound, error) {
	b, err := d.s.Byte()
	if err != nil {
		return nil, err
	}
	if k := Kind(b); !k.Valid() {
		return nil, &UnknownKindError{Kind: k}
	} else if k != KindCompound {
		return nil, fmt.Errorf("root tag has kind %v, want %v", k, KindCompound)
	}
	name, err := d.str()
	if err != nil {
		return nil, fmt.Errorf("root name: %w", err)
	}
	t, err := readCompound(d)
	if err != nil {
		return nil, err
	}
	c := t.(*Compound)
	c.name = name
	return c, nil
}

func readEnd(*decoder) (Tag, error) { return nil, errors.New("unexpected End tag") }

func readByte(d *decoder) (Tag, error) {
	v, err := d.s.Int8()
	return Byte(v), truncated(err)
}

func readShort(d *decoder) (Tag, error) {
	v, err := d.s.Int16()
	return Short(v), err
}

func readInt(d *decoder) (Tag, error) {
	v, err := d.s.Int32()
	return Int(v), err
}

func readLong(d *decoder) (Tag, error) {
	v, err := d.s.Int64()
	return Long(v), err
}

func readFloat(d *decoder) (Tag, error) {
	v, err := d.s.Float32()
	return Float(v), err
}

func readDouble(d *decoder) (Tag, error) {
	v, err := d.s.Float64()
	return Double(v), err
}

func readByteArray(d *decoder) (Tag, error) {
	n, err := d.count(KindByteArray)
	if err != nil {
		return nil, err
	}
	b, err := packet.Get[[]byte](d.s, n)
	if err != nil {
		return nil, err
	}
	return ByteArray(bytes.Clone(b)), nil
}

func readString(d *decoder) (Tag, error) {
	s, err := d.str()
	return String(s), err
}

func readIntArray(d *decoder) (Tag, error) {
	n, err := d.count(KindIntArray)
	if err != nil {
		return nil, err
	}
	out := make(IntArray, 0, min(n, 4096))
	for range n {
		v, err := d.s.Int32()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func readList(d *decoder) (Tag, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()

	elem, err := d.kind()
	if err != nil {
		return nil, err
	}
	n, err := d.count(KindList)
	if err != nil {
		return nil, err
	}
	if elem == KindEnd && n > 0 {
		return nil, fmt.Errorf("list of %v has %d elements", elem, n)
	}
	out := List{Elem: elem}
	if n > 0 {
		out.Items = make([]Tag, 0, min(n, 1024))
	}
	for i := range n {
		t, err := d.payload(elem)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, truncated(err))
		}
		out.Items = append(out.Items, t)
	}
	return out, nil
}

func readCompound(d *decoder) (Tag, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()

	c := new(Compound)
	for {
		k, err := d.kind()
		if err != nil {
			return nil, err
		} else if k == KindEnd {
			return c, nil
		}
		name, err := d.str()
		if err != nil {
			return nil, fmt.Errorf("entry name: %w", err)
		}
		t, err := d.payload(k)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, truncated(err))
		}
		c.Set(name, t)
	}
}

// An encoder holds the state of one write. It is not shared between calls.
type encoder struct {
	b     *packet.Builder
	depth int
}

func (e *encoder) enter() error {
	e.depth++
	if e.depth > MaxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, MaxDepth)
	}
	return nil
}

func (e *encoder) str(s string) error {
	if len(s) > MaxNameLen {
		return fmt.Errorf("string length %d exceeds %d", len(s), MaxNameLen)
	}
	e.b.Uint16(uint16(len(s)))
	e.b.PutString(s)
	return nil
}

func (e *encoder) payload(t Tag) error {
	k := t.Kind()
	if !k.Valid() {
		return &UnknownKindError{Kind: k}
	}
	return codecs[k].write(e, t)
}

func (e *encoder) root(c *Compound) error {
	if c == nil {
		return errors.New("nil root compound")
	}
	e.b.Byte(byte(KindCompound))
	if err := e.str(c.name); err != nil {
		return fmt.Errorf("root name: %w", err)
	}
	return writeCompound(e, c)
}

func writeEnd(*encoder, Tag) error { return errors.New("cannot write an End tag") }

func writeByte(e *encoder, t Tag) error   { e.b.Int8(int8(t.(Byte))); return nil }
func writeShort(e *encoder, t Tag) error  { e.b.Int16(int16(t.(Short))); return nil }
func writeInt(e *encoder, t Tag) error    { e.b.Int32(int32(t.(Int))); return nil }
func writeLong(e *encoder, t Tag) error   { e.b.Int64(int64(t.(Long))); return nil }
func writeFloat(e *encoder, t Tag) error  { e.b.Float32(float32(t.(Float))); return nil }
func writeDouble(e *encoder, t Tag) error { e.b.Float64(float64(t.(Double))); return nil }
func writeString(e *encoder, t Tag) error { return e.str(string(t.(String))) }

func writeByteArray(e *encoder, t Tag) error {
	v := t.(ByteArray)
	if len(v) > math.MaxInt32 {
		return fmt.Errorf("byte array length %d exceeds %d", len(v), math.MaxInt32)
	}
	e.b.Int32(int32(len(v)))
	e.b.Put(v...)
	return nil
}

func writeIntArray(e *encoder, t Tag) error {
	v := t.(IntArray)
	if len(v) > math.MaxInt32 {
		return fmt.Errorf("int array length %d exceeds %d", len(v), math.MaxInt32)
	}
	e.b.Grow(4 + 4*len(v))
	e.b.Int32(int32(len(v)))
	for _, z := range v {
		e.b.Int32(z)
	}
	return nil
}

func writeList(e *encoder, t Tag) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer func() { e.depth-- }()

	v := t.(List)
	if !v.Elem.Valid() {
		return &UnknownKindError{Kind: v.Elem}
	} else if v.Elem == KindEnd && len(v.Items) > 0 {
		return fmt.Errorf("list of %v has %d elements", v.Elem, len(v.Items))
	} else if len(v.Items) > math.MaxInt32 {
		return fmt.Errorf("list length %d exceeds %d", len(v.Items), math.MaxInt32)
	}
	e.b.Byte(byte(v.Elem))
	e.b.Int32(int32(len(v.Items)))
	for i, item := range v.Items {
		if item == nil {
			return fmt.Errorf("[%d]: nil tag", i)
		} else if item.Kind() != v.Elem {
			return fmt.Errorf("[%d]: kind %v in list of %v", i, item.Kind(), v.Elem)
		}
		if err := e.payload(item); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return nil
}

func writeCompound(e *encoder, t Tag) error {
	c := t.(*Compound)
	if c == nil {
		return errors.New("nil compound")
	}
	if err := e.enter(); err != nil {
		return err
	}
	defer func() { e.depth-- }()

	for name, t := range c.All() {
		e.b.Byte(byte(t.Kind()))
		if err := e.str(name); err != nil {
			return fmt.Errorf("entry name: %w", err)
		}
		if err := e.payload(t); err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}
	}
	e.b.Byte(byte(KindEnd))
	return nil
}
