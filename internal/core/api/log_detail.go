package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adspilot/engine/internal/core/auth"
	"github.com/adspilot/engine/internal/types"
)

// logDetail serves GET /api/v1/logs/detail?logId=<id>.
//
// Status mapping:
//   - 400 malformed or missing logId
//   - 403 caller lacks both log-view permissions, or their non-empty
//     allowed-store set excludes the log's toko
//   - 404 unknown logId
//
// A caller with logs.view.own and an empty allowed-store set receives an
// empty campaignDetails list, never an error that would reveal which toko
// ids exist.
func (s *Service) logDetail(c echo.Context) error {
	principal := auth.PrincipalFromContext(c)
	if principal == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	if !principal.Has(auth.PermLogsViewOwn) && !principal.Has(auth.PermLogsViewAll) {
		return echo.NewHTTPError(http.StatusForbidden, "missing logs.view permission")
	}

	rawID := c.QueryParam("logId")
	if rawID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "logId query parameter required")
	}
	logID, err := types.ParseLogID(rawID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed logId")
	}

	detail, err := s.reader.GetLogDetail(c.Request().Context(), principal, logID)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrLogNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "log not found")
		case errors.Is(err, types.ErrAccessDenied):
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		default:
			s.logger.Error("log detail lookup failed", "log_id", logID, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "log detail unavailable")
		}
	}

	return c.JSON(http.StatusOK, envelope{Success: true, Data: detail})
}
