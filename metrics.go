// Copyright (C) 2022 Michael J. Fromberger. All Rights Reserved.

package mcwire

import "expvar"

// connMetrics record connection activity counters.
type connMetrics struct {
	frameRecv     expvar.Int
	frameSent     expvar.Int
	frameDropped  expvar.Int // received and not handled
	decodeErr     expvar.Int // payloads that failed to decode
	unknownPacket expvar.Int // IDs with no definition in the current state
	transitions   expvar.Int
	transRejected expvar.Int
	handlerErr    expvar.Int
	connActive    expvar.Int // gauge

	emap *expvar.Map
}

var rootMetrics = newConnMetrics()

func newConnMetrics() *connMetrics {
	cm := &connMetrics{emap: new(expvar.Map)}
	cm.emap.Set("frames_received", &cm.frameRecv)
	cm.emap.Set("frames_sent", &cm.frameSent)
	cm.emap.Set("frames_dropped", &cm.frameDropped)
	cm.emap.Set("decode_errors", &cm.decodeErr)
	cm.emap.Set("unknown_packets", &cm.unknownPacket)
	cm.emap.Set("transitions", &cm.transitions)
	cm.emap.Set("transitions_rejected", &cm.transRejected)
	cm.emap.Set("handler_errors", &cm.handlerErr)
	cm.emap.Set("conns_active", &cm.connActive)
	return cm
}

// Metrics returns the metrics map shared by all connections that have not
// been detached with [Conn.Detach].
func Metrics() *expvar.Map { return rootMetrics.emap }
