// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package mcwire

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/creachadair/mcwire/packet"
)

// A Sendable is a packet value that can be encoded into a frame.
type Sendable interface {
	// PacketID reports the packet ID of the value in its state and direction.
	PacketID() int32

	// MaxSize reports the maximum encoded size of the payload in bytes.
	// If MaxSize is not positive, the size is limited only by the frame.
	MaxSize() int

	// Encode appends the payload encoding of the value to b.
	Encode(b *packet.Builder)
}

// A Receivable is a packet value that can be decoded from a frame payload.
type Receivable interface {
	// Decode decodes the payload from s into the receiver.
	Decode(s *packet.Scanner) error
}

// A StateRequest is implemented by a received packet that asks to change the
// state of the connection. A [Conn] in the Handshake state honors the request
// before dispatching the packet to its handler.
type StateRequest interface {
	// NextState reports the requested next state: 1 for Status, 2 for Login.
	NextState() int32
}

// A Route describes a packet definition in a [Registry].
type Route struct {
	State     State
	Direction Direction
	ID        int32
	Name      string

	// New returns a new empty value of the packet type.
	New func() Receivable
}

func (r Route) String() string {
	return fmt.Sprintf("%v/%v 0x%02x %s", r.State, r.Direction, r.ID, r.Name)
}

type routeKey struct {
	state State
	dir   Direction
	id    int32
}

// A Registry maps packet IDs to packet definitions for each combination of
// connection state and direction. A registry is populated once at startup and
// is read-only thereafter; it is then safe for concurrent use by any number of
// connections.
type Registry struct {
	routes map[routeKey]Route
	names  map[string]routeKey
}

// NewRegistry constructs a new empty registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[routeKey]Route), names: make(map[string]routeKey)}
}

// Register adds a packet definition to r and returns r to permit chaining.
// Register panics if the ID is already defined for the state and direction,
// if name is empty or already in use, or if newPacket == nil.
func (r *Registry) Register(state State, dir Direction, id int32, name string, newPacket func() Receivable) *Registry {
	key := routeKey{state, dir, id}
	if old, ok := r.routes[key]; ok {
		panic(fmt.Sprintf("duplicate packet ID 0x%02x for %s (have %s)", id, name, old.Name))
	} else if name == "" {
		panic("empty packet name")
	} else if _, ok := r.names[name]; ok {
		panic(fmt.Sprintf("duplicate packet name %q", name))
	} else if newPacket == nil {
		panic(fmt.Sprintf("nil constructor for packet %q", name))
	}
	r.routes[key] = Route{State: state, Direction: dir, ID: id, Name: name, New: newPacket}
	r.names[name] = key
	return r
}

// Lookup returns the packet definition for the given state, direction, and ID.
func (r *Registry) Lookup(state State, dir Direction, id int32) (Route, bool) {
	rt, ok := r.routes[routeKey{state, dir, id}]
	return rt, ok
}

// Named returns the packet definition with the given name.
func (r *Registry) Named(name string) (Route, bool) {
	key, ok := r.names[name]
	if !ok {
		return Route{}, false
	}
	return r.routes[key], true
}

// Len reports the number of packet definitions in r.
func (r *Registry) Len() int { return len(r.routes) }

// All returns an iterator over the packet definitions in r, ordered by state,
// then direction, then ID.
func (r *Registry) All() iter.Seq[Route] {
	keys := slices.SortedFunc(maps.Keys(r.routes), func(a, b routeKey) int {
		return cmp.Or(cmp.Compare(a.state, b.state), cmp.Compare(a.dir, b.dir), cmp.Compare(a.id, b.id))
	})
	return func(yield func(Route) bool) {
		for _, key := range keys {
			if !yield(r.routes[key]) {
				return
			}
		}
	}
}

// EncodeFrame encodes p into a frame, using a buffer presized to p.MaxSize.
// It reports a [*SizeError] if the
// encoded payload exceeds p.MaxSize or the frame would exceed [MaxFrameLen].
func EncodeFrame(p Sendable) (*Frame, error) {
	limit, size := p.MaxSize(), p.MaxSize()
	if limit <= 0 || limit > MaxFrameLen {
		limit, size = MaxFrameLen, 64
	}
	b := packet.NewBuilder(size)
	p.Encode(b)
	f := &Frame{ID: p.PacketID(), Payload: b.Bytes()}
	if b.Len() > limit || f.Len() > MaxFrameLen {
		return nil, &SizeError{ID: f.ID, Max: limit, Size: b.Len()}
	}
	return f, nil
}
