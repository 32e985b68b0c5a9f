// Copyright (C) 2022 Michael J. Fromberger. All Rights Reserved.

package mcwire

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/creachadair/mcwire/packet"
	"github.com/rs/zerolog"
)

// A Channel is a reliable ordered stream of frames shared by two endpoints.
//
// The methods of an implementation must be safe for concurrent use by one
// sender and one receiver.
type Channel interface {
	// Send the frame in binary format to the receiver.
	Send(*Frame) error

	// Receive the next available frame from the channel.
	Recv() (*Frame, error)

	// Close the channel, causing any pending send or receive operations to
	// terminate and report an error. After a channel is closed, all further
	// operations on it must report an error.
	Close() error
}

// A Message is a received packet, delivered to a [Handler].
type Message struct {
	*Frame            // the frame as received
	Route  Route      // the definition of the packet
	Packet Receivable // the decoded packet value
}

// A Handler processes a packet received from the remote endpoint. A handler
// can obtain the connection from its context argument using [ContextConn].
type Handler func(context.Context, *Message) error

// A FrameLogger logs a frame exchanged with the remote endpoint.
type FrameLogger func(FrameInfo)

// A FrameInfo combines a frame with the state of the connection and a flag
// indicating whether the frame was sent or received.
type FrameInfo struct {
	*Frame       // the frame being logged
	State  State // the connection state when the frame was exchanged
	Sent   bool  // whether the frame was sent (true) or received (false)
}

func (f FrameInfo) dir() string {
	if f.Sent {
		return "send"
	}
	return "recv"
}

func (f FrameInfo) String() string {
	return fmt.Sprintf("%v [%v] %v", f.dir(), f.State, f.Frame)
}

// A Conn is one endpoint of a protocol connection. It tracks the connection
// state, decodes received frames into packets using a [Registry], and
// dispatches them to handlers.
//
// A Conn starts in the Handshake state. While in that state, a received packet
// that implements [StateRequest] moves the connection to the requested state
// before it is dispatched; an invalid request is logged and the packet is
// dropped. Other transitions are made explicitly with [Conn.Transition].
//
// Call [Conn.Serve] to receive and dispatch frames in arrival order. Serve
// blocks until the channel closes; the caller decides where it runs. Use
// [Conn.Send] to send packets. Send is safe for concurrent use by multiple
// goroutines, and may be called by handlers.
type Conn struct {
	ch   Channel
	reg  *Registry
	side Side

	out sync.Mutex // held while sending

	μ sync.Mutex

	state    State
	serving  bool
	handlers map[string]Handler // packet name → handler
	flog     FrameLogger        // what it says on the tin
	log      zerolog.Logger     // protocol anomalies and transitions
	derive   func(context.Context) context.Context
	onExit   func(error)
	metrics  *connMetrics
}

// NewConn constructs a new connection endpoint for the given side, receiving
// and sending frames on ch and interpreting packets according to reg.
func NewConn(ch Channel, reg *Registry, side Side) *Conn {
	return &Conn{
		ch:      ch,
		reg:     reg,
		side:    side,
		log:     zerolog.Nop(),
		metrics: rootMetrics,
	}
}

// Side reports which end of the connection c represents.
func (c *Conn) Side() Side { return c.side }

// Registry returns the packet registry used by c.
func (c *Conn) Registry() *Registry { return c.reg }

// State reports the current state of c.
func (c *Conn) State() State {
	c.μ.Lock()
	defer c.μ.Unlock()
	return c.state
}

// Metrics returns a metrics map for the connection. It is safe for the caller
// to add additional metrics to the map while the connection is active.
func (c *Conn) Metrics() *expvar.Map {
	c.μ.Lock()
	defer c.μ.Unlock()
	return c.metrics.emap
}

// Detach detaches c from the global metrics, so that its activity is recorded
// in a separate map. It returns c to permit chaining.
func (c *Conn) Detach() *Conn {
	c.μ.Lock()
	defer c.μ.Unlock()
	c.metrics = newConnMetrics()
	return c
}

// Handle registers a handler for the packet with the given registered name.
// Passing a nil handler removes any handler for that packet. Handle returns c
// to permit chaining.
//
// Handle panics if name is not registered, or if the named packet is not
// received by this side of the connection.
func (c *Conn) Handle(name string, h Handler) *Conn {
	rt, ok := c.reg.Named(name)
	if !ok {
		panic(fmt.Sprintf("packet %q not registered", name))
	} else if rt.Direction != c.side.Inbound() {
		panic(fmt.Sprintf("packet %q is %v, not received by the %v", name, rt.Direction, c.side))
	}

	c.μ.Lock()
	defer c.μ.Unlock()
	if c.handlers == nil {
		c.handlers = make(map[string]Handler)
	}
	if h == nil {
		delete(c.handlers, name)
	} else {
		c.handlers[name] = h
	}
	return c
}

// SetLogger sets the logger used to report protocol anomalies and state
// transitions, and returns c to permit chaining. The default discards all
// output.
func (c *Conn) SetLogger(log zerolog.Logger) *Conn {
	c.μ.Lock()
	defer c.μ.Unlock()
	c.log = log.With().Stringer("side", c.side).Logger()
	return c
}

// LogFrames registers a callback that will be invoked for each frame
// exchanged with the remote endpoint, including frames that are dropped.
//
// Passing a nil callback disables frame logging. The frame logger is invoked
// synchronously, prior to sending or dispatching the frame.
func (c *Conn) LogFrames(log FrameLogger) *Conn {
	c.μ.Lock()
	defer c.μ.Unlock()
	c.flog = log
	return c
}

// OnExit registers a callback to be invoked when [Conn.Serve] returns. The
// callback is executed synchronously with the error Serve will report.
//
// Only one exit callback can be registered at a time; if f == nil the callback
// is removed.
func (c *Conn) OnExit(f func(error)) *Conn {
	c.μ.Lock()
	defer c.μ.Unlock()
	c.onExit = f
	return c
}

// NewContext registers a function that derives the context passed to each
// handler from the context given to [Conn.Dispatch]. This allows
// request-specific host resources to be plumbed into a handler. If f == nil
// the context is passed unmodified.
func (c *Conn) NewContext(f func(context.Context) context.Context) *Conn {
	c.μ.Lock()
	defer c.μ.Unlock()
	c.derive = f
	return c
}

// Transition moves c to the next state. It reports a [*TransitionError] if
// the move is not permitted from the current state, in which case the state
// is unchanged.
func (c *Conn) Transition(next State) error {
	c.μ.Lock()
	defer c.μ.Unlock()
	return c.transitionLocked(&TransitionError{From: c.state, To: next}, next)
}

func (c *Conn) transitionLocked(fail *TransitionError, next State) error {
	prev := c.state
	if fail.FromIntent || !prev.CanTransition(next) {
		c.metrics.transRejected.Add(1)
		c.log.Warn().Err(fail).Stringer("state", prev).Msg("rejected state transition")
		return fail
	}
	c.state = next
	c.metrics.transitions.Add(1)
	c.log.Debug().Stringer("from", prev).Stringer("to", next).Msg("state transition")
	return nil
}

// Send encodes p and sends it to the remote endpoint. It reports an
// [*UnknownPacketError] if p is not defined for the current state in the
// direction this side sends, or a [*SizeError] if p exceeds its size limit.
func (c *Conn) Send(p Sendable) error {
	state, dir := c.State(), c.side.Outbound()
	if _, ok := c.reg.Lookup(state, dir, p.PacketID()); !ok {
		return &UnknownPacketError{State: state, Direction: dir, ID: p.PacketID()}
	}
	f, err := EncodeFrame(p)
	if err != nil {
		return err
	}
	return c.SendFrame(f)
}

// SendFrame sends a frame to the remote endpoint without checking its ID.
func (c *Conn) SendFrame(f *Frame) error {
	c.μ.Lock()
	flog, state, m := c.flog, c.state, c.metrics
	c.μ.Unlock()

	c.out.Lock()
	defer c.out.Unlock()
	m.frameSent.Add(1)
	if flog != nil {
		flog(FrameInfo{Frame: f, State: state, Sent: true})
	}
	return c.ch.Send(f)
}

// Dispatch decodes a received frame and delivers it to the handler registered
// for its packet.
//
// A frame whose ID is not defined for the current state, or whose payload
// does not decode cleanly, is logged and dropped, and Dispatch reports nil. A
// frame with no registered handler is dropped silently. If the handler
// reports an error or panics, Dispatch returns a [*HandlerError]; what to do
// about it is the caller's decision.
func (c *Conn) Dispatch(ctx context.Context, f *Frame) error {
	c.μ.Lock()
	state, flog, log, m := c.state, c.flog, c.log, c.metrics
	c.μ.Unlock()

	if flog != nil {
		flog(FrameInfo{Frame: f, State: state})
	}
	dir := c.side.Inbound()
	rt, ok := c.reg.Lookup(state, dir, f.ID)
	if !ok {
		err := &UnknownPacketError{State: state, Direction: dir, ID: f.ID}
		m.unknownPacket.Add(1)
		m.frameDropped.Add(1)
		log.Warn().Err(err).Msg("dropped packet")
		return nil
	}

	pkt := rt.New()
	s := packet.NewScanner(f.Payload)
	err := pkt.Decode(s)
	if err == nil && s.Len() != 0 {
		err = fmt.Errorf("%d unused bytes after payload", s.Len())
	}
	if err != nil {
		m.decodeErr.Add(1)
		m.frameDropped.Add(1)
		log.Warn().Err(err).Str("packet", rt.Name).Stringer("state", state).Msg("dropped malformed packet")
		return nil
	}

	if req, ok := pkt.(StateRequest); ok && state == Handshake {
		if err := c.honor(req); err != nil {
			m.frameDropped.Add(1)
			return nil
		}
	}

	c.μ.Lock()
	h, derive := c.handlers[rt.Name], c.derive
	c.μ.Unlock()
	if h == nil {
		log.Debug().Str("packet", rt.Name).Msg("no handler for packet")
		return nil
	}

	hctx := context.WithValue(ctx, connContextKey{}, c)
	if derive != nil {
		hctx = derive(hctx)
	}
	if err := func() (err error) {
		// Ensure a panic out of a handler is reported as an error.
		defer func() {
			if x := recover(); x != nil && err == nil {
				err = fmt.Errorf("handler panicked (recovered): %v", x)
			}
		}()
		return h(hctx, &Message{Frame: f, Route: rt, Packet: pkt})
	}(); err != nil {
		m.handlerErr.Add(1)
		return &HandlerError{Packet: rt.Name, Err: err}
	}
	return nil
}

// honor applies the state change requested by a handshake.
func (c *Conn) honor(req StateRequest) error {
	c.μ.Lock()
	defer c.μ.Unlock()
	intent := req.NextState()
	next, ok := IntentState(intent)
	return c.transitionLocked(&TransitionError{
		From:       c.state,
		To:         next,
		Intent:     intent,
		FromIntent: !ok,
	}, next)
}

// Serve receives frames from the channel and dispatches them in arrival order
// until the channel closes, ctx ends, or a handler fails. It closes the
// channel before returning. Serve panics if c is already serving.
//
// If the channel closed or ctx ended, Serve reports nil; otherwise it returns
// the error that stopped it.
func (c *Conn) Serve(ctx context.Context) (err error) {
	c.μ.Lock()
	if c.serving {
		c.μ.Unlock()
		panic("connection is already serving")
	}
	c.serving = true
	m := c.metrics
	c.μ.Unlock()

	m.connActive.Add(1)
	stop := context.AfterFunc(ctx, func() { c.ch.Close() })
	defer func() {
		stop()
		c.ch.Close()
		m.connActive.Add(-1)

		c.μ.Lock()
		c.serving = false
		onExit := c.onExit
		c.μ.Unlock()
		if onExit != nil {
			onExit(err)
		}
	}()

	for {
		f, err := c.ch.Recv()
		if err != nil {
			if treatErrorAsSuccess(err) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		m.frameRecv.Add(1)
		if err := c.Dispatch(ctx, f); err != nil {
			return err
		}
	}
}

// Close closes the channel of c, causing a pending [Conn.Serve] to return.
func (c *Conn) Close() error { return c.ch.Close() }

func treatErrorAsSuccess(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}

type connContextKey struct{}

// ContextConn returns the Conn associated with the given context, or nil if
// none is defined. The context passed to a [Handler] has this value.
func ContextConn(ctx context.Context) *Conn {
	if v := ctx.Value(connContextKey{}); v != nil {
		return v.(*Conn)
	}
	return nil
}

// SplitAddress parses an address string to guess a network type and target.
//
// The assignment of a network type uses the following heuristics:
//
// If s does not have the form [host]:port, the network is assigned as "unix".
// The network "unix" is also assigned if port == "", port contains characters
// other than ASCII letters, digits, and "-", or if host contains a "/".
//
// Otherwise, the network is assigned as "tcp". Note that this function does
// not verify whether the address is lexically valid.
func SplitAddress(s string) (network, address string) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return "unix", s
	}
	host, port := s[:i], s[i+1:]
	if port == "" || !isServiceName(port) {
		return "unix", s
	} else if strings.IndexByte(host, '/') >= 0 {
		return "unix", s
	}
	return "tcp", s
}

// isServiceName reports whether s looks like a legal service name from the
// services(5) file. The grammar of such names is not well-defined, but for our
// purposes it includes letters, digits, and "-".
func isServiceName(s string) bool {
	for _, b := range s {
		if b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b == '-' {
			continue
		}
		return false
	}
	return true
}
