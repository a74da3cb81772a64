// Package server exposes a keyword engine to remote clients over the
// remote library protocol (XML-RPC over HTTP) and, alternatively, as MCP tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/keyword-server/internal/keyword"
)

// Defaults for the listening address.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8270
)

// Config holds the listener settings.
type Config struct {
	Host          string
	Port          int
	ExposeMetrics bool
}

// Addr returns host:port.
func (c Config) Addr() string {
	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// Server owns the keyword engine, its catalog and the listener lifecycle.
// Every procedure runs under one lock, so keywords execute strictly one at
// a time and see a consistent library state.
type Server struct {
	cfg     Config
	engine  *keyword.Engine
	catalog *keyword.Catalog
	metrics *Metrics
	log     *zap.Logger

	mu sync.Mutex

	stopOnce sync.Once
	stop     chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics records procedure metrics and, when the config asks for it,
// serves them on /metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a server. Documentation is read from catalog, which is built
// once and never reloaded.
func New(cfg Config, engine *keyword.Engine, catalog *keyword.Catalog, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  engine,
		catalog: catalog,
		log:     zap.NewNop(),
		stop:    make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Stop asks the server to shut down. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Stopped is closed once Stop has been called.
func (s *Server) Stopped() <-chan struct{} {
	return s.stop
}

// ListenAndServe binds the configured address and serves until ctx is done
// or stop_remote_server is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts remote calls on ln. It returns after the listener has been
// closed and in-flight requests have completed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- httpSrv.Serve(ln) }()

	s.log.Info("remote library started",
		zap.String("addr", ln.Addr().String()),
		zap.Int("keywords", len(s.catalog.Names())))

	select {
	case err := <-errc:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	case <-s.stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	s.log.Info("remote library stopped", zap.String("addr", ln.Addr().String()))
	return nil
}
