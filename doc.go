// Copyright (C) 2022 Michael J. Fromberger. All Rights Reserved.

// Package mcwire implements packet framing and per-state dispatch for the
// wire protocol spoken between game clients and servers.
//
// Endpoints exchange [Frame] values over a shared reliable channel. Each
// frame carries a length prefix, a packet ID, and a payload:
//
//	[length: VarInt][id: VarInt][payload]
//
// The meaning of a packet ID depends on the [State] of the connection and the
// [Direction] the packet travels, so the same ID names different packets in
// different states.
//
// # Registries
//
// A [Registry] maps (state, direction, ID) to a packet definition. It is
// built once at startup and shared read-only by all connections:
//
//	reg := mcwire.NewRegistry().
//	   Register(mcwire.Handshake, mcwire.Serverbound, 0x00, "handshake", newHandshake).
//	   Register(mcwire.Status, mcwire.Serverbound, 0x00, "status_request", newStatusRequest)
//
// The catalog package provides a registry with the standard packets.
//
// # Connections
//
// The core type defined by this package is the [Conn]. A Conn decodes the
// frames it receives into packet values and delivers them to handlers:
//
//	c := mcwire.NewConn(ch, reg, mcwire.ServerSide).
//	   Handle("status_request", handleStatus)
//
// To run the connection, call [Conn.Serve]. It blocks until the channel
// closes or its context ends; the caller decides which goroutine runs it:
//
//	if err := c.Serve(ctx); err != nil {
//	   log.Printf("Connection failed: %v", err)
//	}
//
// A connection begins in the Handshake state. A received packet that
// implements [StateRequest] moves it to Status or Login; any other request is
// logged at warning level and the packet is dropped. Packets with IDs unknown
// in the current state, and packets that do not decode, are also logged and
// dropped without closing the connection.
//
// # Channels
//
// The [Channel] interface defines the ability to send and receive frames. A
// Channel implementation must allow concurrent use by one sender and one
// receiver. The channel package provides some basic implementations.
//
// # Sending
//
// Packet values that implement [Sendable] are sent with [Conn.Send]. Each
// Sendable declares a maximum encoded size, and Send reports a [*SizeError]
// rather than sending a payload that exceeds it.
//
// # Logging
//
// Use [Conn.SetLogger] to supply a zerolog.Logger. Rejected transitions,
// unknown packets, and decode failures are logged at warning level; state
// transitions and unhandled packets at debug level. Use [Conn.LogFrames] to
// observe every frame exchanged.
//
// # Metrics
//
// Connections maintain a collection of metrics while running. Use the
// [Conn.Metrics] method to obtain an [expvar.Map] containing the metrics
// exported by the connection. By default, metrics are shared globally among
// all connections and are also reported by [Metrics]; use [Conn.Detach] to
// give a connection its own map.
//
// The metrics currently exported include:
//
//   - frames_received: counter of frames received
//   - frames_sent: counter of frames sent
//   - frames_dropped: counter of frames received and discarded
//   - decode_errors: counter of payloads that failed to decode
//   - unknown_packets: counter of IDs not defined in the current state
//   - transitions: counter of state transitions
//   - transitions_rejected: counter of rejected transition requests
//   - handler_errors: counter of handlers reporting an error
//   - conns_active: gauge of connections currently serving
//
// Compressed frames, in which the payload is deflated above a negotiated
// threshold, are not implemented.
package mcwire
