// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package mcwire

import "fmt"

// State is the protocol phase of a connection. The meaning of a packet ID
// depends on the state in which it is sent.
type State byte

const (
	Handshake State = iota // initial state of every connection
	Status                 // server list ping
	Login                  // authentication and setup
	Play                   // game session
)

func (s State) String() string {
	switch s {
	case Handshake:
		return "handshake"
	case Status:
		return "status"
	case Login:
		return "login"
	case Play:
		return "play"
	default:
		return fmt.Sprintf("State(%d)", byte(s))
	}
}

// CanTransition reports whether a connection in state s may move to next.
// The permitted moves are Handshake to Status, Handshake to Login, and Login
// to Play.
func (s State) CanTransition(next State) bool {
	switch s {
	case Handshake:
		return next == Status || next == Login
	case Login:
		return next == Play
	default:
		return false
	}
}

// IntentState returns the state requested by the next-state field of a
// handshake. The value 1 requests Status and 2 requests Login.
func IntentState(intent int32) (State, bool) {
	switch intent {
	case 1:
		return Status, true
	case 2:
		return Login, true
	default:
		return Handshake, false
	}
}

// Direction is the direction of travel of a packet.
type Direction byte

const (
	Serverbound Direction = iota // sent by the client
	Clientbound                  // sent by the server
)

func (d Direction) String() string {
	switch d {
	case Serverbound:
		return "serverbound"
	case Clientbound:
		return "clientbound"
	default:
		return fmt.Sprintf("Direction(%d)", byte(d))
	}
}

// Side identifies which end of a connection a [Conn] represents.
type Side byte

const (
	ServerSide Side = iota
	ClientSide
)

func (s Side) String() string {
	if s == ClientSide {
		return "client"
	}
	return "server"
}

// Inbound reports the direction of packets received by s.
func (s Side) Inbound() Direction {
	if s == ClientSide {
		return Clientbound
	}
	return Serverbound
}

// Outbound reports the direction of packets sent by s.
func (s Side) Outbound() Direction {
	if s == ClientSide {
		return Serverbound
	}
	return Clientbound
}
