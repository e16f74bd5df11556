package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Server wraps the echo instance.
type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer registers the handler routes and, when metrics is non-nil,
// GET /metrics.
func NewServer(addr string, h *Handler, metrics http.Handler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = 10 * time.Second

	e.Use(recoverer())
	e.Use(requestLogging())

	h.RegisterRoutes(e)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
	return &Server{echo: e, addr: addr}
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("http server stopped")
	return nil
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo { return s.echo }
