package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"  // Authenticator calls are bounded by the request context
	"errors"   // errors.Is maps auth sentinels to responses
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-center-listings/internal/auth"
	"github.com/iliyamo/fitness-center-listings/internal/logger"
)

// Authenticator resolves a raw bearer token to the caller it belongs to.
// auth.Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*auth.Caller, error)
}

// RequireAuth returns an Echo middleware that validates a Bearer access
// token and stores the resolved *auth.Caller in the context, where handlers
// read it back with CallerFrom.  It wraps every mutating route; reads are
// public and never pass through it.
func RequireAuth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "authentication credentials were not provided."})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "authentication credentials were not provided."})
			}

			caller, err := authn.Authenticate(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "given token not valid"})
				}
				logger.FromEcho(c).Error("authenticate request", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "internal server error"})
			}

			setCaller(c, caller)
			return next(c)
		}
	}
}
