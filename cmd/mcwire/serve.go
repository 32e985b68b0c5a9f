package main

import (
	"context"
	"errors"
	"expvar"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/creachadair/command"
	"github.com/creachadair/mcwire"
	"github.com/creachadair/mcwire/catalog"
	"github.com/creachadair/mcwire/handler"
	"github.com/creachadair/mcwire/serve"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// serveConfig is the configuration of the serve command. Values are read from
// MCWIRE_* environment variables, then overridden by flags.
type serveConfig struct {
	Addr        string `envconfig:"ADDR" default:"localhost:25565"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`
	MOTD        string `envconfig:"MOTD" default:"An mcwire server"`
	MaxPlayers  int    `envconfig:"MAX_PLAYERS" default:"20"`
	VersionName string `envconfig:"VERSION_NAME" default:"1.20.1"`
	LogFrames   bool   `envconfig:"LOG_FRAMES"`
}

var (
	serveCfg    serveConfig
	serveEnvErr error
)

var serveCommand = &command.C{
	Name:  "serve",
	Usage: "[flags]",
	Help: `Run a server that answers status and ping requests.

Login attempts are refused with a disconnect message. Settings are read from
MCWIRE_* environment variables (for example MCWIRE_ADDR, MCWIRE_MOTD), and
flags take precedence over the environment.

If a metrics address is set, connection metrics are served in Prometheus
format at /metrics and as expvar JSON at /debug/vars.`,

	SetFlags: func(env *command.Env, fs *flag.FlagSet) {
		serveEnvErr = envconfig.Process("MCWIRE", &serveCfg)
		fs.StringVar(&serveCfg.Addr, "addr", serveCfg.Addr, "Service address (host:port or socket path)")
		fs.StringVar(&serveCfg.MetricsAddr, "metrics-addr", serveCfg.MetricsAddr, "Metrics HTTP address (empty to disable)")
		fs.StringVar(&serveCfg.MOTD, "motd", serveCfg.MOTD, "Server description")
		fs.IntVar(&serveCfg.MaxPlayers, "max-players", serveCfg.MaxPlayers, "Maximum player count to report")
		fs.StringVar(&serveCfg.VersionName, "version-name", serveCfg.VersionName, "Version name to report")
		fs.BoolVar(&serveCfg.LogFrames, "log-frames", serveCfg.LogFrames, "Log every frame at debug level")
	},

	Run: runServe,
}

func runServe(env *command.Env) error {
	if serveEnvErr != nil {
		return fmt.Errorf("environment: %w", serveEnvErr)
	} else if len(env.Args) != 0 {
		return env.Usagef("extra arguments after flags")
	}
	log, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if serveCfg.MetricsAddr != "" {
		expvar.Publish("mcwire", mcwire.Metrics())
		preg := prometheus.NewRegistry()
		exportMetrics(preg, "mcwire", mcwire.Metrics())
		srv := metricsServer(serveCfg.MetricsAddr, preg)
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer srv.Close()
	}

	lst, err := net.Listen(mcwire.SplitAddress(serveCfg.Addr))
	if err != nil {
		return err
	}
	log.Info().Str("addr", lst.Addr().String()).Int("protocol", catalog.ProtocolVersion).Msg("server started")

	st := &catalog.ServerStatus{}
	st.Version.Name = serveCfg.VersionName
	st.Version.Protocol = catalog.ProtocolVersion
	st.Players.Max = serveCfg.MaxPlayers
	st.Description.Text = serveCfg.MOTD

	s := &statusServer{
		reg:       catalog.Registry(),
		status:    st,
		log:       log,
		logFrames: serveCfg.LogFrames,
	}
	err = serve.Loop(ctx, serve.NetAccepter(lst), s.newConn)
	log.Info().Err(err).Msg("server stopped")
	return err
}

// statusServer constructs connections that answer status requests.
type statusServer struct {
	reg       *mcwire.Registry
	status    *catalog.ServerStatus
	log       zerolog.Logger
	logFrames bool
}

func (s *statusServer) newConn(ch mcwire.Channel) *mcwire.Conn {
	log := s.log.With().Str("conn", fmt.Sprintf("%p", ch)).Logger()
	c := mcwire.NewConn(ch, s.reg, mcwire.ServerSide).
		SetLogger(log).
		OnExit(func(err error) {
			if err != nil {
				log.Warn().Err(err).Msg("connection failed")
			} else {
				log.Debug().Msg("connection closed")
			}
		}).
		Handle(catalog.NameHandshake, handler.Func(func(_ context.Context, h *catalog.Handshake) error {
			log.Debug().Int32("protocol", h.Protocol).Str("address", h.Address).
				Uint16("port", h.Port).Int32("next", h.Next).Msg("handshake")
			return nil
		})).
		Handle(catalog.NameStatusRequest, handler.Result(func(context.Context) (*catalog.StatusResponse, error) {
			return catalog.NewStatusResponse(s.status)
		})).
		Handle(catalog.NamePingRequest, handler.Reply(func(_ context.Context, p *catalog.PingRequest) (*catalog.PongResponse, error) {
			return &catalog.PongResponse{Payload: p.Payload}, nil
		})).
		Handle(catalog.NameLoginStart, handler.Func(s.refuseLogin))
	if s.logFrames {
		c.LogFrames(func(fi mcwire.FrameInfo) { log.Debug().Stringer("frame", fi).Msg("frame") })
	}
	return c
}

// refuseLogin answers a login attempt with a disconnect and closes the
// connection.
func (s *statusServer) refuseLogin(ctx context.Context, p *catalog.LoginStart) error {
	conn := mcwire.ContextConn(ctx)
	s.log.Info().Str("name", p.Name).Msg("refusing login")
	reason := fmt.Sprintf(`{"text":%q}`, "This server only answers status requests.")
	if err := conn.Send(&catalog.LoginDisconnect{Reason: reason}); err != nil {
		return err
	}
	conn.Close()
	return nil
}

// exportMetrics registers a Prometheus collector in reg for each integer
// variable in m. Gauges are named as-is; counters get a "_total" suffix.
func exportMetrics(reg prometheus.Registerer, namespace string, m *expvar.Map) {
	m.Do(func(kv expvar.KeyValue) {
		v, ok := kv.Value.(*expvar.Int)
		if !ok {
			return
		}
		read := func() float64 { return float64(v.Value()) }
		help := "mcwire metric " + strings.ReplaceAll(kv.Key, "_", " ")
		if strings.HasSuffix(kv.Key, "_active") {
			reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace, Name: kv.Key, Help: help,
			}, read))
			return
		}
		reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace, Name: kv.Key + "_total", Help: help,
		}, read))
	})
}

func metricsServer(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
}
