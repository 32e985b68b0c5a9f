package main

import (
	"bytes"
	"context"
	"expvar"
	"strings"
	"testing"

	"github.com/creachadair/mcwire"
	"github.com/creachadair/mcwire/catalog"
	"github.com/creachadair/mcwire/channel"
	"github.com/creachadair/mcwire/handler"
	"github.com/creachadair/taskgroup"
	"github.com/fortytw2/leaktest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestExportMetrics(t *testing.T) {
	m := new(expvar.Map)
	var active, sent expvar.Int
	m.Set("conns_active", &active)
	m.Set("frames_sent", &sent)
	m.Set("label", new(expvar.String))
	active.Set(3)
	sent.Add(17)

	reg := prometheus.NewRegistry()
	exportMetrics(reg, "test", m)

	const want = `
# HELP test_conns_active mcwire metric conns active
# TYPE test_conns_active gauge
test_conns_active 3
# HELP test_frames_sent_total mcwire metric frames sent
# TYPE test_frames_sent_total counter
test_frames_sent_total 17
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want)); err != nil {
		t.Errorf("Metrics: %v", err)
	}
}

func TestStatusServer(t *testing.T) {
	defer leaktest.Check(t)()

	var logBuf bytes.Buffer
	st := &catalog.ServerStatus{}
	st.Description.Text = "hello"
	st.Players.Max = 7
	s := &statusServer{
		reg:    catalog.Registry(),
		status: st,
		log:    zerolog.New(&logBuf),
	}

	a, b := channel.Direct()
	srv := s.newConn(a).Detach()
	status := make(chan *catalog.StatusResponse, 1)
	cli := mcwire.NewConn(b, s.reg, mcwire.ClientSide).
		Handle(catalog.NameStatusResponse, handler.Func(func(_ context.Context, r *catalog.StatusResponse) error {
			status <- r
			return nil
		}))

	g := taskgroup.New(nil)
	g.Go(func() error { return srv.Serve(t.Context()) })
	g.Go(func() error { return cli.Serve(t.Context()) })

	// Status exchange.
	if err := cli.Send(&catalog.Handshake{Protocol: catalog.ProtocolVersion, Next: 1}); err != nil {
		t.Fatalf("Send handshake: %v", err)
	}
	cli.Transition(mcwire.Status)
	if err := cli.Send(catalog.StatusRequest{}); err != nil {
		t.Fatalf("Send status request: %v", err)
	}
	got, err := (<-status).Status()
	if err != nil {
		t.Fatalf("Decode status: %v", err)
	}
	if got.Description.Text != "hello" || got.Players.Max != 7 {
		t.Errorf("Status: got %+v", got)
	}
	cli.Close()
	g.Wait()

	// Login is refused, and the server closes the connection.
	refused := make(chan string, 1)
	a, b = channel.Direct()
	srv = s.newConn(a).Detach()
	cli = mcwire.NewConn(b, s.reg, mcwire.ClientSide).
		Handle(catalog.NameLoginDisconnect, handler.Func(func(_ context.Context, d *catalog.LoginDisconnect) error {
			refused <- d.Reason
			return nil
		}))
	g = taskgroup.New(nil)
	g.Go(func() error { return srv.Serve(t.Context()) })
	g.Go(func() error { return cli.Serve(t.Context()) })

	cli.Send(&catalog.Handshake{Protocol: catalog.ProtocolVersion, Next: 2})
	cli.Transition(mcwire.Login)
	if err := cli.Send(&catalog.LoginStart{Name: "Steve"}); err != nil {
		t.Fatalf("Send login: %v", err)
	}
	if reason := <-refused; !strings.Contains(reason, "only answers status") {
		t.Errorf("Disconnect reason: got %q", reason)
	}
	g.Wait()

	if !strings.Contains(logBuf.String(), "refusing login") {
		t.Errorf("Log missing login refusal:\n%s", logBuf.String())
	}
}
