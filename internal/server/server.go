// Package server runs an http.Handler with a background session sweeper and
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// Sweeper drops expired state and reports how much it removed.
type Sweeper interface {
	Sweep() int
}

// Server serves a handler on a TCP listener
type Server struct {
	listener net.Listener
	server   *http.Server
	logger   *slog.Logger

	stopSweep chan struct{}
	wg        sync.WaitGroup
	serveErr  chan error
}

// Options configures Start.
type Options struct {
	Addr          string
	Handler       http.Handler
	Sweeper       Sweeper
	SweepInterval time.Duration
	Logger        *slog.Logger
}

// Start listens on opts.Addr and serves in the background.
func Start(opts Options) (*Server, error) {
	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		listener: listener,
		logger:   logger,
		server: &http.Server{
			Handler:           opts.Handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			// Analysis calls can take as long as the provider timeout.
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		stopSweep: make(chan struct{}),
		serveErr:  make(chan error, 1),
	}

	go func() {
		if err := srv.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.serveErr <- err
		}
		close(srv.serveErr)
	}()

	if opts.Sweeper != nil && opts.SweepInterval > 0 {
		srv.wg.Add(1)
		go srv.sweepLoop(opts.Sweeper, opts.SweepInterval)
	}

	return srv, nil
}

func (s *Server) sweepLoop(sw Sweeper, interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopSweep:
			return
		case <-ticker.C:
			if n := sw.Sweep(); n > 0 {
				s.logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// URL returns the base URL of the server
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Wait blocks until ctx is done or the server fails, then shuts down.
func (s *Server) Wait(ctx context.Context, shutdownTimeout time.Duration) error {
	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-s.serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		return err
	}
	return serveErr
}

// Stop shuts the server down gracefully and stops the sweeper.
func (s *Server) Stop(ctx context.Context) error {
	select {
	case <-s.stopSweep:
	default:
		close(s.stopSweep)
	}
	s.wg.Wait()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
