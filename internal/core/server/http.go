// Package server provides HTTP server lifecycle management.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/adspilot/engine/internal/core/api"
	"github.com/adspilot/engine/internal/core/auth"
	"github.com/adspilot/engine/internal/core/config"
)

// HTTPServer manages the read API's server lifecycle.
type HTTPServer struct {
	echo   *echo.Echo
	config *config.EngineConfig
}

// NewHTTPServer creates the echo instance with middleware and routes mounted.
func NewHTTPServer(cfg *config.EngineConfig, service *api.Service, authenticator *auth.Authenticator) (*HTTPServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator cannot be nil")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())

	service.RegisterRoutes(e, authenticator)

	return &HTTPServer{echo: e, config: cfg}, nil
}

// Start binds the listener and serves requests.
// Blocks until Shutdown is called; returns nil on graceful close.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve on %s: %w", addr, err)
	}
	return nil
}

// Shutdown gracefully stops the server with a 30-second ceiling.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
