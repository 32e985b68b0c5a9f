// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package catalog defines the standard packets of the wire protocol and a
// registry that maps their IDs for use with an mcwire.Conn.
//
// # Usage
//
// Construct the registry once at startup and share it among connections:
//
//	reg := catalog.Registry()
//
// Each packet is registered under a mnemonic name, which is used to attach
// handlers to a connection:
//
//	mcwire.NewConn(ch, reg, mcwire.ServerSide).
//	  Handle("status_request", handleStatus).
//	  Handle("ping_request", handlePing)
//
// Note that Handle will panic if given a name not registered with the catalog,
// or one that this side of the connection does not receive.
//
// Every packet type implements both mcwire.Sendable and mcwire.Receivable, so
// the same types serve clients and servers.
//
// The packet IDs are those of protocol version [ProtocolVersion].
package catalog

import (
	"fmt"
	"unicode/utf8"

	"github.com/creachadair/mcwire"
	"github.com/creachadair/mcwire/packet"
)

// ProtocolVersion is the protocol version whose packet IDs this package uses.
const ProtocolVersion = 763

// Registered packet names.
const (
	NameHandshake         = "handshake"
	NameStatusRequest     = "status_request"
	NamePingRequest       = "ping_request"
	NameStatusResponse    = "status_response"
	NamePongResponse      = "pong_response"
	NameLoginStart        = "login_start"
	NameLoginDisconnect   = "login_disconnect"
	NameLoginSuccess      = "login_success"
	NameKeepAliveResponse = "keep_alive_response"
	NameChatMessage       = "chat_message"
	NameKeepAlive         = "keep_alive"
	NameDisconnect        = "disconnect"
	NameSystemChat        = "system_chat"
)

// Registry returns a new registry containing the standard packets.
func Registry() *mcwire.Registry {
	const (
		sb = mcwire.Serverbound
		cb = mcwire.Clientbound
	)
	return mcwire.NewRegistry().
		Register(mcwire.Handshake, sb, idHandshake, NameHandshake, newOf[Handshake]).
		Register(mcwire.Status, sb, idStatusRequest, NameStatusRequest, newOf[StatusRequest]).
		Register(mcwire.Status, sb, idPingRequest, NamePingRequest, newOf[PingRequest]).
		Register(mcwire.Status, cb, idStatusResponse, NameStatusResponse, newOf[StatusResponse]).
		Register(mcwire.Status, cb, idPongResponse, NamePongResponse, newOf[PongResponse]).
		Register(mcwire.Login, sb, idLoginStart, NameLoginStart, newOf[LoginStart]).
		Register(mcwire.Login, cb, idLoginDisconnect, NameLoginDisconnect, newOf[LoginDisconnect]).
		Register(mcwire.Login, cb, idLoginSuccess, NameLoginSuccess, newOf[LoginSuccess]).
		Register(mcwire.Play, sb, idKeepAliveResponse, NameKeepAliveResponse, newOf[KeepAliveResponse]).
		Register(mcwire.Play, sb, idChatMessage, NameChatMessage, newOf[ChatMessage]).
		Register(mcwire.Play, cb, idKeepAlive, NameKeepAlive, newOf[KeepAlive]).
		Register(mcwire.Play, cb, idDisconnect, NameDisconnect, newOf[Disconnect]).
		Register(mcwire.Play, cb, idSystemChat, NameSystemChat, newOf[SystemChat])
}

// newOf returns a constructor for packets of type P.
func newOf[P any, PP interface {
	*P
	mcwire.Receivable
}]() mcwire.Receivable {
	return PP(new(P))
}

// Limits on string lengths, in characters.
const (
	maxAddress  = 255
	maxUsername = 16
	maxChat     = 256
	maxJSON     = 262144
	maxStatus   = 32767
)

// stringSize reports the maximum encoded size of a string of n characters.
func stringSize(n int) int { return packet.VLen(3 * n) }

// getString scans a length-prefixed string of at most n characters.
func getString(s *packet.Scanner, n int) (string, error) {
	nb, err := s.VarInt()
	if err != nil {
		return "", err
	} else if nb < 0 || int(nb) > 3*n {
		return "", fmt.Errorf("string length %d exceeds %d", nb, 3*n)
	}
	v, err := packet.Get[string](s, int(nb))
	if err != nil {
		return "", err
	} else if !utf8.ValidString(v) {
		return "", fmt.Errorf("invalid UTF-8 in string")
	} else if nc := utf8.RuneCountInString(v); nc > n {
		return "", fmt.Errorf("string has %d characters, limit is %d", nc, n)
	}
	return v, nil
}
