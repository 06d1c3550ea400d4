// Package api provides the HTTP read API for the AdsPilot engine.
//
// One endpoint carries the product surface (execution log detail); health
// and prometheus metrics ride alongside. Authentication happens in the auth
// middleware; handlers only check permissions and map domain errors to
// HTTP statuses.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adspilot/engine/internal/core/auth"
	"github.com/adspilot/engine/internal/logs"
)

// Service holds the handlers' collaborators.
type Service struct {
	reader *logs.Reader
	logger *slog.Logger
}

// NewService creates the API service.
func NewService(reader *logs.Reader, logger *slog.Logger) (*Service, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	return &Service{reader: reader, logger: logger}, nil
}

// envelope is the JSON response wrapper the panel expects.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// RegisterRoutes mounts the API on the echo instance.
// Health and metrics stay outside authentication; the log detail endpoint
// requires an authenticated principal.
func (s *Service) RegisterRoutes(e *echo.Echo, authenticator *auth.Authenticator) {
	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1", authenticator.Middleware())
	v1.GET("/logs/detail", s.logDetail)
}

// health reports liveness.
func (s *Service) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
