// Copyright (C) 2022 Michael J. Fromberger. All Rights Reserved.

package mcwire_test

import (
	"context"
	"io"
	"testing"

	"github.com/creachadair/mcwire"
	"github.com/creachadair/mcwire/catalog"
	"github.com/creachadair/mcwire/channel"
	"github.com/creachadair/mcwire/handler"
	"github.com/creachadair/mcwire/serve"
	"github.com/creachadair/taskgroup"
)

func BenchmarkPing(b *testing.B) {
	b.Run("Direct", func(b *testing.B) {
		loc := serve.NewLocal(catalog.Registry())
		runBench(b, loc.Server, loc.Client, func() { loc.Start(b.Context()) })
		loc.Stop()
	})
	b.Run("IO", func(b *testing.B) {
		srv, cli := pipeConns(b)
		g := taskgroup.New(nil)
		runBench(b, srv, cli, func() {
			g.Go(func() error { return srv.Serve(b.Context()) })
			g.Go(func() error { return cli.Serve(b.Context()) })
		})
		srv.Close()
		cli.Close()
		g.Wait()
	})
}

func runBench(b *testing.B, srv, cli *mcwire.Conn, start func()) {
	b.Helper()
	srv.Transition(mcwire.Status)
	cli.Transition(mcwire.Status)
	srv.Handle(catalog.NamePingRequest, handler.Reply(func(_ context.Context, p *catalog.PingRequest) (*catalog.PongResponse, error) {
		return &catalog.PongResponse{Payload: p.Payload}, nil
	}))
	pong := make(chan int64)
	cli.Handle(catalog.NamePongResponse, handler.Func(func(_ context.Context, p *catalog.PongResponse) error {
		pong <- p.Payload
		return nil
	}))
	start()

	var seq int64
	for b.Loop() {
		seq++
		if err := cli.Send(&catalog.PingRequest{Payload: seq}); err != nil {
			b.Fatal(err)
		}
		if got := <-pong; got != seq {
			b.Fatalf("Pong: got %d, want %d", got, seq)
		}
	}
}

func BenchmarkFrame(b *testing.B) {
	f := &mcwire.Frame{ID: 0x64, Payload: make([]byte, 512)}
	b.Run("WriteTo", func(b *testing.B) {
		for b.Loop() {
			f.WriteTo(io.Discard)
		}
	})
}

func pipeConns(tb testing.TB) (srv, cli *mcwire.Conn) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	reg := catalog.Registry()
	srv = mcwire.NewConn(channel.IO(ar, aw), reg, mcwire.ServerSide).Detach()
	cli = mcwire.NewConn(channel.IO(br, bw), reg, mcwire.ClientSide).Detach()
	return
}
