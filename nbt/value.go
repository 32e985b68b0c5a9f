// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package nbt

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// FromValue converts a native Go value into a tag.
//
// The conversions are:
//
//	Tag                         itself
//	bool                        Byte (0 or 1)
//	int8, uint8                 Byte
//	int16                       Short
//	int32, uint16               Int
//	int64, uint32               Long
//	int, uint, uint64           Int if the value fits, otherwise Long
//	float32                     Float
//	float64                     Double
//	string                      String
//	[]byte                      ByteArray
//	[]int32                     IntArray
//	[]string, []int64, []any    List
//	[]float64, []Tag            List
//	map[string]any              Compound (unnamed, entries sorted by name)
//	[]map[string]any            List of Compound
//
// Any other value, including nil or a nil *Compound, reports an
// [*UnencodableError]. A List whose elements convert to different kinds is an
// error.
func FromValue(v any) (Tag, error) {
	switch v := v.(type) {
	case *Compound:
		if v == nil {
			return nil, unencodable(v)
		}
		return v, nil
	case Tag:
		return v, nil
	case bool:
		if v {
			return Byte(1), nil
		}
		return Byte(0), nil
	case int8:
		return Byte(v), nil
	case uint8:
		return Byte(int8(v)), nil
	case int16:
		return Short(v), nil
	case uint16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case uint32:
		return Long(v), nil
	case int64:
		return Long(v), nil
	case int:
		return intTag(int64(v)), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, unencodable(v)
		}
		return intTag(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, unencodable(v)
		}
		return intTag(int64(v)), nil
	case float32:
		return Float(v), nil
	case float64:
		return Double(v), nil
	case string:
		return String(v), nil
	case []byte:
		return ByteArray(slices.Clone(v)), nil
	case []int32:
		return IntArray(slices.Clone(v)), nil
	case []string:
		return listOf(v)
	case []int64:
		return listOf(v)
	case []float64:
		return listOf(v)
	case []Tag:
		return NewList(v...)
	case []any:
		return listOf(v)
	case []map[string]any:
		return listOf(v)
	case map[string]any:
		c := new(Compound)
		for _, name := range slices.Sorted(maps.Keys(v)) {
			t, err := FromValue(v[name])
			if err != nil {
				return nil, fmt.Errorf("%q: %w", name, err)
			}
			c.Set(name, t)
		}
		return c, nil
	default:
		return nil, unencodable(v)
	}
}

func intTag(v int64) Tag {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return Int(v)
	}
	return Long(v)
}

func listOf[T any](vs []T) (Tag, error) {
	items := make([]Tag, len(vs))
	for i, v := range vs {
		t, err := FromValue(v)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		items[i] = t
	}
	return NewList(items...)
}

// ToValue converts a tag into a native Go value. It is the inverse of
// [FromValue] for the types FromValue produces directly:
//
//	Byte       int8
//	Short      int16
//	Int        int32
//	Long       int64
//	Float      float32
//	Double     float64
//	ByteArray  []byte
//	String     string
//	IntArray   []int32
//	List       []any
//	Compound   map[string]any
//
// Slices in the result do not share storage with t.
func ToValue(t Tag) any {
	switch t := t.(type) {
	case Byte:
		return int8(t)
	case Short:
		return int16(t)
	case Int:
		return int32(t)
	case Long:
		return int64(t)
	case Float:
		return float32(t)
	case Double:
		return float64(t)
	case ByteArray:
		return []byte(slices.Clone(t))
	case String:
		return string(t)
	case IntArray:
		return []int32(slices.Clone(t))
	case List:
		out := make([]any, len(t.Items))
		for i, item := range t.Items {
			out[i] = ToValue(item)
		}
		return out
	case *Compound:
		out := make(map[string]any, t.Len())
		for name, v := range t.All() {
			out[name] = ToValue(v)
		}
		return out
	default:
		return nil
	}
}
