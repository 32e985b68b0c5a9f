// Copyright (C) 2022 Michael J. Fromberger. All Rights Reserved.

// Package serve provides support code for running and testing connections.
//
// The mcwire package never starts goroutines of its own: each connection is
// served by a call to [mcwire.Conn.Serve] on a goroutine of the caller's
// choosing. This package supplies the usual choices, one goroutine per
// accepted connection ([Loop]) and an in-memory pair for tests ([Local]).
package serve

import (
	"context"
	"errors"
	"net"

	"github.com/creachadair/mcwire"
	"github.com/creachadair/mcwire/channel"
	"github.com/creachadair/taskgroup"
)

// Local is a pair of in-memory connected endpoints, suitable for testing.
type Local struct {
	Server *mcwire.Conn
	Client *mcwire.Conn

	tasks *taskgroup.Group
	errs  [2]error
}

// NewLocal creates a pair of connected endpoints sharing reg, that communicate
// via a direct channel without encoding. The endpoints are not served until
// [Local.Start] is called.
func NewLocal(reg *mcwire.Registry) *Local {
	s2c, c2s := channel.Direct()
	return &Local{
		Server: mcwire.NewConn(s2c, reg, mcwire.ServerSide),
		Client: mcwire.NewConn(c2s, reg, mcwire.ClientSide),
	}
}

// Start begins serving both endpoints in separate goroutines, and returns p
// to permit chaining. Start panics if p is already started.
func (p *Local) Start(ctx context.Context) *Local {
	if p.tasks != nil {
		panic("local pair is already started")
	}
	p.tasks = taskgroup.New(nil)
	for i, c := range []*mcwire.Conn{p.Server, p.Client} {
		p.tasks.Go(func() error {
			p.errs[i] = c.Serve(ctx)
			return nil
		})
	}
	return p
}

// Stop shuts down both endpoints and blocks until both have exited. It
// reports the first error returned by either lane.
func (p *Local) Stop() error {
	p.Server.Close()
	p.Client.Close()
	if p.tasks != nil {
		p.tasks.Wait()
	}
	return errors.Join(p.errs[:]...)
}

// An Accepter accepts channels for new connections.
type Accepter interface {
	Accept(context.Context) (mcwire.Channel, error)
}

// Loop accepts connections from acc and serves a [mcwire.Conn] for each one
// in a goroutine. The newConn function is called once for each accepted
// channel to construct its connection. Loop continues until acc closes or ctx
// ends.
//
// When ctx terminates, all running connections are closed. When acc closes,
// the loop waits for running connections to exit before returning. An error
// that stops one connection does not affect the others; use
// [mcwire.Conn.OnExit] to observe it.
func Loop(ctx context.Context, acc Accepter, newConn func(mcwire.Channel) *mcwire.Conn) error {
	g := taskgroup.New(nil)
	for {
		ch, err := acc.Accept(ctx)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				err = nil
			}
			g.Wait()
			return err
		}
		g.Go(func() error {
			newConn(ch).Serve(ctx)
			return nil
		})
	}
}

// NetAccepter adapts a net.Listener to the Accepter interface.
func NetAccepter(lst net.Listener) Accepter {
	return netAccepter{Listener: lst}
}

type netAccepter struct {
	net.Listener
}

func (n netAccepter) Accept(ctx context.Context) (mcwire.Channel, error) {
	// A net.Listener does not obey a context, so simulate it by closing the
	// listener if ctx ends. The ok channel allows the context watcher to clean
	// up when we return before ctx ends.
	ok := make(chan struct{})
	defer close(ok)
	taskgroup.Go(func() error {
		select {
		case <-ctx.Done():
			n.Listener.Close()
		case <-ok:
			// release the waiter
		}
		return nil
	})

	conn, err := n.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return channel.Conn(conn), nil
}

// Dial connects to the server at addr and returns a channel for it. The
// network type is chosen by [mcwire.SplitAddress].
func Dial(ctx context.Context, addr string) (mcwire.Channel, error) {
	var d net.Dialer
	network, address := mcwire.SplitAddress(addr)
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return channel.Conn(conn), nil
}
