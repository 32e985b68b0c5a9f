// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package nbt

import (
	"errors"
	"fmt"
)

// ErrLimitExceeded is reported when a document nests deeper than [MaxDepth]
// or declares an array or list longer than [MaxArrayLen].
var ErrLimitExceeded = errors.New("nbt: limit exceeded")

// UnknownKindError is the concrete type of errors reported when a kind byte
// in the input does not name a known tag kind.
type UnknownKindError struct {
	Kind Kind
}

// Error satisfies the error interface.
func (u *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown tag kind %d", byte(u.Kind))
}

// UnencodableError is the concrete type of errors reported by [FromValue]
// when a native value has no corresponding tag.
type UnencodableError struct {
	Type string // the Go type of the value, as formatted by %T
}

// Error satisfies the error interface.
func (u *UnencodableError) Error() string {
	return fmt.Sprintf("no tag for value of type %s", u.Type)
}

func unencodable(v any) error { return &UnencodableError{Type: fmt.Sprintf("%T", v)} }
