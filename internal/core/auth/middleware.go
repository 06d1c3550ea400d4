package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// principalContextKey stores the authenticated principal on the echo context.
const principalContextKey = "auth.principal"

// Middleware returns an echo middleware that authenticates the X-Api-Key
// header and attaches the resulting principal to the request context.
//
// Error mapping: missing/malformed/unknown keys are 401 without confirming
// whether the key exists; a revoked key is 403.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get("X-Api-Key")
			if apiKey == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrMissingKey.Error())
			}

			principal, err := a.Authenticate(c.Request().Context(), apiKey)
			if err != nil {
				switch {
				case errors.Is(err, ErrKeyRevoked):
					return echo.NewHTTPError(http.StatusForbidden, err.Error())
				case errors.Is(err, ErrInvalidKeyFormat),
					errors.Is(err, ErrUnknownKey),
					errors.Is(err, ErrInvalidKey):
					return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
				default:
					return echo.NewHTTPError(http.StatusInternalServerError, "authentication unavailable")
				}
			}

			c.Set(principalContextKey, principal)
			return next(c)
		}
	}
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// request did not pass through the auth middleware.
func PrincipalFromContext(c echo.Context) *Principal {
	p, _ := c.Get(principalContextKey).(*Principal)
	return p
}
