// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package nbt

import (
	"strconv"
	"strings"
)

// Format renders t in stringified NBT (SNBT) form on a single line, for
// example:
//
//	{name:"Steve",pos:[1.5d,64.0d,-3.25d],health:20.0f,xp:5L}
func Format(t Tag) string { return FormatIndent(t, "") }

// FormatIndent renders t in stringified NBT form. If indent is non-empty,
// each compound entry and list element begins on a new line indented by one
// copy of indent per nesting level. Lists of numbers are kept on one line.
func FormatIndent(t Tag, indent string) string {
	f := &formatter{indent: indent}
	f.tag(t, 0)
	return f.buf.String()
}

type formatter struct {
	buf    strings.Builder
	indent string
}

func (f *formatter) newline(depth int) {
	if f.indent != "" {
		f.buf.WriteByte('\n')
		f.buf.WriteString(strings.Repeat(f.indent, depth))
	}
}

func (f *formatter) sep() {
	if f.indent != "" {
		f.buf.WriteString(": ")
	} else {
		f.buf.WriteByte(':')
	}
}

func (f *formatter) tag(t Tag, depth int) {
	switch t := t.(type) {
	case Byte:
		f.buf.WriteString(strconv.Itoa(int(t)) + "b")
	case Short:
		f.buf.WriteString(strconv.Itoa(int(t)) + "s")
	case Int:
		f.buf.WriteString(strconv.Itoa(int(t)))
	case Long:
		f.buf.WriteString(strconv.FormatInt(int64(t), 10) + "L")
	case Float:
		f.buf.WriteString(formatFloat(float64(t), 32) + "f")
	case Double:
		f.buf.WriteString(formatFloat(float64(t), 64) + "d")
	case String:
		f.buf.WriteString(strconv.Quote(string(t)))
	case ByteArray:
		f.buf.WriteString("[B;")
		for i, v := range t {
			if i > 0 {
				f.buf.WriteByte(',')
			}
			f.buf.WriteString(strconv.Itoa(int(int8(v))) + "b")
		}
		f.buf.WriteByte(']')
	case IntArray:
		f.buf.WriteString("[I;")
		for i, v := range t {
			if i > 0 {
				f.buf.WriteByte(',')
			}
			f.buf.WriteString(strconv.Itoa(int(v)))
		}
		f.buf.WriteByte(']')
	case List:
		flat := t.Elem != KindList && t.Elem != KindCompound && t.Elem != KindString
		f.buf.WriteByte('[')
		for i, item := range t.Items {
			if i > 0 {
				f.buf.WriteByte(',')
			}
			if !flat {
				f.newline(depth + 1)
			}
			f.tag(item, depth+1)
		}
		if !flat && len(t.Items) > 0 {
			f.newline(depth)
		}
		f.buf.WriteByte(']')
	case *Compound:
		f.buf.WriteByte('{')
		var n int
		for name, v := range t.All() {
			if n > 0 {
				f.buf.WriteByte(',')
			}
			n++
			f.newline(depth + 1)
			f.buf.WriteString(quoteName(name))
			f.sep()
			f.tag(v, depth+1)
		}
		if n > 0 {
			f.newline(depth)
		}
		f.buf.WriteByte('}')
	default:
		f.buf.WriteString("<nil>")
	}
}

// formatFloat renders v so that it always reads back as a floating-point
// literal.
func formatFloat(v float64, bits int) string {
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eEnNI") {
		s += ".0"
	}
	return s
}

// quoteName returns name bare if it consists only of characters permitted in
// an unquoted SNBT name, otherwise quoted.
func quoteName(name string) string {
	if name == "" {
		return `""`
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '-', c == '.', c == '+':
		default:
			return strconv.Quote(name)
		}
	}
	return name
}
