// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package mcwire

import "fmt"

// TransitionError is the concrete type of errors reported for a rejected
// change of connection state.
type TransitionError struct {
	From State
	To   State // the requested state, if the request named one

	// If the request came from the next-state field of a handshake, Intent is
	// the value of that field and FromIntent is true.
	Intent     int32
	FromIntent bool
}

// Error satisfies the error interface.
func (t *TransitionError) Error() string {
	if t.FromIntent {
		return fmt.Sprintf("invalid next state %d requested in %v", t.Intent, t.From)
	}
	return fmt.Sprintf("invalid transition from %v to %v", t.From, t.To)
}

// UnknownPacketError is the concrete type of errors reported for a packet ID
// that has no definition in the current state and direction.
type UnknownPacketError struct {
	State     State
	Direction Direction
	ID        int32
}

// Error satisfies the error interface.
func (u *UnknownPacketError) Error() string {
	return fmt.Sprintf("unknown %v packet 0x%02x in %v state", u.Direction, u.ID, u.State)
}

// SizeError is the concrete type of errors reported when an encoded packet
// exceeds its declared maximum size.
type SizeError struct {
	ID   int32
	Max  int // the declared maximum
	Size int // the actual encoded size
}

// Error satisfies the error interface.
func (s *SizeError) Error() string {
	return fmt.Sprintf("packet 0x%02x encoded %d bytes, exceeding its limit of %d", s.ID, s.Size, s.Max)
}

// HandlerError is the concrete type of errors reported by [Conn.Dispatch]
// when a packet handler fails.
type HandlerError struct {
	Packet string // the registered name of the packet
	Err    error  // the error reported by the handler
}

// Unwrap reports the underlying error of h.
func (h *HandlerError) Unwrap() error { return h.Err }

// Error satisfies the error interface.
func (h *HandlerError) Error() string { return fmt.Sprintf("handler for %s: %v", h.Packet, h.Err) }
