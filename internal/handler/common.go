package handler // handler defines http handlers

import (
	"context"  // request-scoped deadlines for store calls
	"errors"   // errors.Is / errors.As match sentinel and typed errors
	"net/http" // status codes
	"strconv"  // strconv converts path parameters to numeric IDs
	"time"     // timeouts for store calls

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-center-listings/internal/auth"
	"github.com/iliyamo/fitness-center-listings/internal/logger"
	"github.com/iliyamo/fitness-center-listings/internal/repository"
	"github.com/iliyamo/fitness-center-listings/internal/validation"
)

// storeTimeout bounds every store call made while serving a request.
const storeTimeout = 5 * time.Second

var (
	detailNotFound     = echo.Map{"detail": "not found."}
	detailForbidden    = echo.Map{"detail": "you do not have permission to perform this action."}
	detailUnauthorized = echo.Map{"detail": "authentication credentials were not provided."}
	detailInternal     = echo.Map{"detail": "internal server error"}
	detailBadBody      = echo.Map{"detail": "malformed request body."}
)

func storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// parseID reads the :id path parameter.  Anything that is not a positive
// integer cannot name a record, so callers answer 404.
func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// writeError is the single place where domain errors become HTTP responses.
// Anything it does not recognise is logged and answered with a bare 500.
func writeError(c echo.Context, err error) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return c.JSON(http.StatusBadRequest, verrs)
	case errors.Is(err, repository.ErrDuplicateName):
		return c.JSON(http.StatusBadRequest, validation.Errors{"name": {validation.MsgNameTaken}})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, detailNotFound)
	case errors.Is(err, auth.ErrAuthenticationRequired):
		return c.JSON(http.StatusUnauthorized, detailUnauthorized)
	case errors.Is(err, auth.ErrForbidden):
		return c.JSON(http.StatusForbidden, detailForbidden)
	}
	logger.FromEcho(c).Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, detailInternal)
}
