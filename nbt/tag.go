// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package nbt implements the Named Binary Tag (NBT) format, a recursive typed
// binary tree used for persisted game data.
//
// A tree is made of [Tag] values. Each tag has one of the kinds enumerated by
// [Kind], and the set of tag types is closed: the only implementations of Tag
// are the types defined in this package. A document is a single root
// [*Compound], optionally named, encoded as
//
//	[kind:1][name:u16-length UTF-8][payload]
//
// Use [Parse] and [Write] to convert between trees and bytes, and [Load] and
// [Dump] to read and write storage files, which may be compressed.
package nbt

import (
	"bytes"
	"fmt"
	"iter"
	"math"
	"slices"
)

// Kind is the one-byte kind identifier of a tag.
type Kind byte

const (
	KindEnd       Kind = iota // compound terminator; never stored as a value
	KindByte                  // int8
	KindShort                 // int16
	KindInt                   // int32
	KindLong                  // int64
	KindFloat                 // float32
	KindDouble                // float64
	KindByteArray             // [count:i32][bytes]
	KindString                // [len:u16][UTF-8]
	KindList                  // [elem:1][count:i32][payloads]
	KindCompound              // entries terminated by KindEnd
	KindIntArray              // [count:i32][int32...]

	numKinds
)

var kindNames = [numKinds]string{
	"End", "Byte", "Short", "Int", "Long", "Float", "Double",
	"ByteArray", "String", "List", "Compound", "IntArray",
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// Valid reports whether k is a known kind, including KindEnd.
func (k Kind) Valid() bool { return k < numKinds }

// A Tag is a single node of an NBT tree.
type Tag interface {
	// Kind reports the kind of the tag.
	Kind() Kind

	isTag()
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	String    string
	IntArray  []int32
)

func (Byte) Kind() Kind      { return KindByte }
func (Short) Kind() Kind     { return KindShort }
func (Int) Kind() Kind       { return KindInt }
func (Long) Kind() Kind      { return KindLong }
func (Float) Kind() Kind     { return KindFloat }
func (Double) Kind() Kind    { return KindDouble }
func (ByteArray) Kind() Kind { return KindByteArray }
func (String) Kind() Kind    { return KindString }
func (List) Kind() Kind      { return KindList }
func (*Compound) Kind() Kind { return KindCompound }
func (IntArray) Kind() Kind  { return KindIntArray }

func (Byte) isTag()      {}
func (Short) isTag()     {}
func (Int) isTag()       {}
func (Long) isTag()      {}
func (Float) isTag()     {}
func (Double) isTag()    {}
func (ByteArray) isTag() {}
func (String) isTag()    {}
func (List) isTag()      {}
func (*Compound) isTag() {}
func (IntArray) isTag()  {}

// A List is a homogeneous sequence of unnamed tags. Every element of Items
// must have kind Elem. An empty list may have any element kind, including
// KindEnd.
type List struct {
	Elem  Kind
	Items []Tag
}

// NewList constructs a List of the given tags. The element kind is taken from
// the first item; an empty list has element kind KindEnd. NewList reports an
// error if the items do not all have the same kind.
func NewList(items ...Tag) (List, error) {
	if len(items) == 0 {
		return List{Elem: KindEnd}, nil
	}
	elem := items[0].Kind()
	for i, t := range items {
		if t.Kind() != elem {
			return List{}, fmt.Errorf("list item %d has kind %v, want %v", i, t.Kind(), elem)
		}
	}
	return List{Elem: elem, Items: items}, nil
}

// MustList is as [NewList], but panics if the list is not homogeneous.
func MustList(items ...Tag) List {
	lst, err := NewList(items...)
	if err != nil {
		panic(err)
	}
	return lst
}

// Len reports the number of elements in the list.
func (l List) Len() int { return len(l.Items) }

// A Compound is an insertion-ordered mapping from names to tags.
// The zero value is ready for use as an empty, unnamed compound.
//
// The name of a compound is only encoded when it is the root of a document.
// A nested compound is named by its entry, and its own name is ignored when
// it is written or compared.
type Compound struct {
	name  string
	names []string
	tags  map[string]Tag
}

// NewCompound constructs an empty compound with the given root name.
func NewCompound(name string) *Compound { return &Compound{name: name} }

// Name reports the root name of c.
func (c *Compound) Name() string { return c.name }

// SetName sets the root name of c and returns c.
func (c *Compound) SetName(name string) *Compound { c.name = name; return c }

// Set adds or replaces the entry for name, and returns c to permit chaining.
// A replaced entry keeps its original position. Set panics if t == nil.
func (c *Compound) Set(name string, t Tag) *Compound {
	if t == nil {
		panic(fmt.Sprintf("nil tag for entry %q", name))
	}
	if c.tags == nil {
		c.tags = make(map[string]Tag)
	}
	if _, ok := c.tags[name]; !ok {
		c.names = append(c.names, name)
	}
	c.tags[name] = t
	return c
}

// Get reports the tag stored under name, if any.
func (c *Compound) Get(name string) (Tag, bool) {
	t, ok := c.tags[name]
	return t, ok
}

// Has reports whether c has an entry for name.
func (c *Compound) Has(name string) bool { _, ok := c.tags[name]; return ok }

// Delete removes the entry for name, and reports whether it was present.
func (c *Compound) Delete(name string) bool {
	if _, ok := c.tags[name]; !ok {
		return false
	}
	delete(c.tags, name)
	i := slices.Index(c.names, name)
	c.names = slices.Delete(c.names, i, i+1)
	return true
}

// Len reports the number of entries in c.
func (c *Compound) Len() int { return len(c.names) }

// Names returns the entry names of c in insertion order.
func (c *Compound) Names() []string { return slices.Clone(c.names) }

// All returns an iterator over the entries of c in insertion order.
func (c *Compound) All() iter.Seq2[string, Tag] {
	return func(yield func(string, Tag) bool) {
		for _, name := range c.names {
			if !yield(name, c.tags[name]) {
				return
			}
		}
	}
}

// Lookup returns the tag stored under name in c if it has type T.
func Lookup[T Tag](c *Compound, name string) (T, bool) {
	t, ok := c.tags[name].(T)
	return t, ok
}

// Int returns the value of an Int entry.
func (c *Compound) Int(name string) (int32, bool) {
	v, ok := Lookup[Int](c, name)
	return int32(v), ok
}

// Long returns the value of a Long entry.
func (c *Compound) Long(name string) (int64, bool) {
	v, ok := Lookup[Long](c, name)
	return int64(v), ok
}

// Double returns the value of a Double entry.
func (c *Compound) Double(name string) (float64, bool) {
	v, ok := Lookup[Double](c, name)
	return float64(v), ok
}

// Str returns the value of a String entry.
func (c *Compound) Str(name string) (string, bool) {
	v, ok := Lookup[String](c, name)
	return string(v), ok
}

// Child returns the value of a Compound entry.
func (c *Compound) Child(name string) (*Compound, bool) { return Lookup[*Compound](c, name) }

// Clone returns a deep copy of c.
func (c *Compound) Clone() *Compound {
	if c == nil {
		return nil
	}
	out := &Compound{name: c.name, names: slices.Clone(c.names)}
	if c.tags != nil {
		out.tags = make(map[string]Tag, len(c.tags))
		for name, t := range c.tags {
			out.tags[name] = Clone(t)
		}
	}
	return out
}

// Equal reports whether c and o have the same root name and the same
// entries. The order of entries is not significant. The names of nested
// compounds are not compared, since they are not part of the encoding.
func (c *Compound) Equal(o *Compound) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.name == o.name && c.sameEntries(o)
}

func (c *Compound) sameEntries(o *Compound) bool {
	if c == nil || o == nil {
		return c == o
	}
	if len(c.names) != len(o.names) {
		return false
	}
	for name, t := range c.tags {
		u, ok := o.tags[name]
		if !ok || !Equal(t, u) {
			return false
		}
	}
	return true
}

// String renders c in stringified NBT form.
func (c *Compound) String() string { return Format(c) }

// Clone returns a deep copy of t.
func Clone(t Tag) Tag {
	switch t := t.(type) {
	case ByteArray:
		return slices.Clone(t)
	case IntArray:
		return slices.Clone(t)
	case List:
		items := make([]Tag, len(t.Items))
		for i, item := range t.Items {
			items[i] = Clone(item)
		}
		return List{Elem: t.Elem, Items: items}
	case *Compound:
		return t.Clone()
	default:
		return t
	}
}

// Equal reports whether a and b are deeply equal. Floating-point values are
// compared by their bit patterns, so a NaN is equal to itself. Compounds are
// compared by their entries only; use [Compound.Equal] to compare root names.
func Equal(a, b Tag) bool {
	switch a := a.(type) {
	case Float:
		b, ok := b.(Float)
		return ok && math.Float32bits(float32(a)) == math.Float32bits(float32(b))
	case Double:
		b, ok := b.(Double)
		return ok && math.Float64bits(float64(a)) == math.Float64bits(float64(b))
	case ByteArray:
		b, ok := b.(ByteArray)
		return ok && bytes.Equal(a, b)
	case IntArray:
		b, ok := b.(IntArray)
		return ok && slices.Equal(a, b)
	case List:
		b, ok := b.(List)
		return ok && a.Elem == b.Elem && slices.EqualFunc(a.Items, b.Items, Equal)
	case *Compound:
		b, ok := b.(*Compound)
		return ok && a.sameEntries(b)
	default:
		return a == b
	}
}
