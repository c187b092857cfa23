// Package server exposes the JSON API consumed by the browser UI.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"arcanum/internal/logger"
	"arcanum/internal/services"
)

type Server struct {
	e    *echo.Echo
	port string
}

// New builds the echo server with middleware and routes registered.
func New(svcs *services.Services, port string, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = echo.ExtractIPFromRealIPHeader()

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	}))
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())

	h := newHandler(svcs, log)
	h.register(e)

	return &Server{e: e, port: port}
}

// Start runs the server until Shutdown is called.
func (s *Server) Start() error {
	return s.e.Start(":" + s.port)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
