// Package server exposes the service over HTTP with gin
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/brettbedarf/mirrorfs/internal/event"
	"github.com/brettbedarf/mirrorfs/internal/util"
	"github.com/brettbedarf/mirrorfs/service"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	svc    *service.Service
	engine *gin.Engine

	mu   sync.Mutex
	addr net.Addr
}

// New builds the router. emitter may be nil, in which case /events is not
// registered.
func New(svc *service.Service, emitter *event.Emitter) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger())

	s := &Server{svc: svc, engine: engine}
	s.routes()
	if emitter != nil {
		engine.GET("/events", event.NewWSHandler(emitter).Handle)
	}
	return s
}

// Handler returns the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr is the bound listener address, nil until Run has started listening
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run listens on addr and serves until ctx is cancelled or the server fails
func (s *Server) Run(ctx context.Context, addr string) error {
	logger := util.GetLogger("Server")

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	srv := &http.Server{Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errChan := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
		return err
	}
	logger.Info().Msg("HTTP server stopped")
	return nil
}
