// Package server wires the gateway's HTTP routes, health checks, and
// lifecycle into a single listening http.Server, grounded on
// nico-hyperjump-sagasu/internal/server/server.go's NewServer/Start/Stop
// shape.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/splitgraph/seafowl/internal/healthcheck"
	"github.com/splitgraph/seafowl/internal/httpgateway"
	"github.com/splitgraph/seafowl/internal/sync2"
)

// Config is the subset of the gateway's configuration the HTTP server
// needs to bind.
type Config struct {
	BindHost string
	BindPort int
}

// Server binds the gateway's routes and health checks on a chi router and
// owns the underlying http.Server.
type Server struct {
	config  Config
	gateway *httpgateway.Gateway
	health  *healthcheck.Server
	logger  *zap.Logger

	httpServer *http.Server
	listener   net.Listener

	// ready is released once the listener is accepting connections, so
	// callers coordinating startup (such as tests) can wait
	// on something sturdier than a sleep.
	ready sync2.Fence
}

// New builds a Server. health may be nil, in which case no /healthz route
// is mounted.
func New(cfg Config, gateway *httpgateway.Gateway, health *healthcheck.Server, logger *zap.Logger) *Server {
	return &Server{
		config:  cfg,
		gateway: gateway,
		health:  health,
		logger:  logger,
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	s.gateway.Routes(r)
	if s.health != nil {
		r.Mount("/healthz", s.health)
	}

	return r
}

// Ready blocks until the server has started listening, or ctx is done.
func (s *Server) Ready(ctx context.Context) bool {
	return s.ready.Wait(ctx)
}

// Addr returns the address the server is bound to. It is only meaningful
// after Ready returns true.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run starts the HTTP server and blocks until ctx is canceled or the
// server fails. It is suitable for registration in an
// internal/lifecycle.Group as an Item's Run.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.BindHost, s.config.BindPort)

	listener, err := newListener(addr)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{Handler: s.router()}
	s.listener = listener
	s.ready.Release()

	s.logger.Info("starting http server", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(listener) }()

	select {
	case <-ctx.Done():
		return s.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Close gracefully shuts the server down; it is suitable for registration
// as an Item's Close.
func (s *Server) Close() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
