// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package handler provides adapters to the mcwire.Handler type for functions
// with typed signatures.
//
// Parameters are decoded packet values, usually pointers to the packet types
// of the catalog package. Results are packets to send back to the remote
// endpoint on the same connection.
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/creachadair/mcwire"
)

// msgContextKey is a context key for the message delivered to a handler.
type msgContextKey struct{}

// ContextMessage returns the original message passed to the handler, or nil
// if ctx has no associated message. The context passed to a handler returned
// by this package will have this value.
func ContextMessage(ctx context.Context) *mcwire.Message {
	if v := ctx.Value(msgContextKey{}); v != nil {
		return v.(*mcwire.Message)
	}
	return nil
}

// ContextFrame returns the raw frame of the message passed to the handler, or
// nil if ctx has no associated message.
func ContextFrame(ctx context.Context) *mcwire.Frame {
	if msg := ContextMessage(ctx); msg != nil {
		return msg.Frame
	}
	return nil
}

// errNoConn is reported by a reply handler invoked without a connection.
var errNoConn = errors.New("no connection in handler context")

// param extracts the packet of type P from msg.
func param[P mcwire.Receivable](msg *mcwire.Message) (P, error) {
	p, ok := msg.Packet.(P)
	if !ok {
		var zero P
		return zero, fmt.Errorf("packet %q has type %T, handler wants %T", msg.Route.Name, msg.Packet, zero)
	}
	return p, nil
}

// send sends r on the connection attached to ctx.
func send(ctx context.Context, r mcwire.Sendable) error {
	conn := mcwire.ContextConn(ctx)
	if conn == nil {
		return errNoConn
	}
	return conn.Send(r)
}

// Func adapts a function f that accepts a packet of type P and returns an
// error, to an mcwire.Handler.
func Func[P mcwire.Receivable](f func(context.Context, P) error) mcwire.Handler {
	return func(ctx context.Context, msg *mcwire.Message) error {
		p, err := param[P](msg)
		if err != nil {
			return err
		}
		return f(context.WithValue(ctx, msgContextKey{}, msg), p)
	}
}

// Reply adapts a function f that accepts a packet of type P and returns a
// reply packet of type R and an error, to an mcwire.Handler. If f succeeds,
// its result is sent to the remote endpoint; otherwise nothing is sent.
func Reply[P mcwire.Receivable, R mcwire.Sendable](f func(context.Context, P) (R, error)) mcwire.Handler {
	return func(ctx context.Context, msg *mcwire.Message) error {
		p, err := param[P](msg)
		if err != nil {
			return err
		}
		r, err := f(context.WithValue(ctx, msgContextKey{}, msg), p)
		if err != nil {
			return err
		}
		return send(ctx, r)
	}
}

// Result adapts a function f that ignores the packet content and returns a
// reply packet of type R and an error, to an mcwire.Handler. If f succeeds,
// its result is sent to the remote endpoint.
func Result[R mcwire.Sendable](f func(context.Context) (R, error)) mcwire.Handler {
	return func(ctx context.Context, msg *mcwire.Message) error {
		r, err := f(context.WithValue(ctx, msgContextKey{}, msg))
		if err != nil {
			return err
		}
		return send(ctx, r)
	}
}
