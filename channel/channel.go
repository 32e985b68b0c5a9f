// Copyright (C) 2022 Michael J. Fromberger. All Rights Reserved.

// Package channel provides implementations of the mcwire.Channel interface.
package channel

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/creachadair/mcwire"
)

// Direct constructs a connected pair of in-memory channels that pass frames
// directly without encoding into binary. Frames sent to A are received by B
// and vice versa. Closing either endpoint terminates pending and future
// operations on both.
func Direct() (A, B mcwire.Channel) {
	a2b := make(chan *mcwire.Frame)
	b2a := make(chan *mcwire.Frame)
	da, db := newDone(), newDone()
	A = direct{out: a2b, in: b2a, self: da, peer: db}
	B = direct{out: b2a, in: a2b, self: db, peer: da}
	return
}

type done struct {
	once sync.Once
	ch   chan struct{}
}

func newDone() *done { return &done{ch: make(chan struct{})} }

func (d *done) close() (closed bool) {
	d.once.Do(func() { close(d.ch); closed = true })
	return
}

type direct struct {
	out  chan<- *mcwire.Frame
	in   <-chan *mcwire.Frame
	self *done
	peer *done
}

// Send implements a method of the [mcwire.Channel] interface.
func (d direct) Send(f *mcwire.Frame) error {
	select {
	case <-d.self.ch:
		return net.ErrClosed
	case <-d.peer.ch:
		return net.ErrClosed
	default:
	}
	select {
	case d.out <- f:
		return nil
	case <-d.self.ch:
		return net.ErrClosed
	case <-d.peer.ch:
		return net.ErrClosed
	}
}

// Recv implements a method of the [mcwire.Channel] interface.
func (d direct) Recv() (*mcwire.Frame, error) {
	select {
	case f := <-d.in:
		return f, nil
	case <-d.self.ch:
		return nil, net.ErrClosed
	case <-d.peer.ch:
		return nil, io.EOF
	}
}

// Close implements a method of the [mcwire.Channel] interface.
func (d direct) Close() error {
	if !d.self.close() {
		return net.ErrClosed
	}
	return nil
}

// IO constructs a channel that receives from r and sends to wc.
func IO(r io.Reader, wc io.WriteCloser) IOChannel {
	// N.B. The bufio package will reuse existing buffers if possible.
	return IOChannel{r: bufio.NewReader(r), w: bufio.NewWriter(wc), c: wc}
}

// Conn constructs a channel that sends and receives frames on c.
func Conn(c net.Conn) IOChannel { return IO(c, c) }

// An IOChannel sends and receives frames on a reader and a writer.
type IOChannel struct {
	r *bufio.Reader
	w *bufio.Writer
	c io.Closer
}

// Send implements a method of the [mcwire.Channel] interface.
func (c IOChannel) Send(f *mcwire.Frame) error {
	if _, err := f.WriteTo(c.w); err != nil {
		return err
	}
	return c.w.Flush()
}

// Recv implements a method of the [mcwire.Channel] interface.
func (c IOChannel) Recv() (*mcwire.Frame, error) {
	var f mcwire.Frame
	if _, err := f.ReadFrom(c.r); err != nil {
		return nil, err
	}
	return &f, nil
}

// Close implements a method of the [mcwire.Channel] interface.
func (c IOChannel) Close() error { return c.c.Close() }
