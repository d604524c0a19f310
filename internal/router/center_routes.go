package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-center-listings/internal/handler"
	"github.com/iliyamo/fitness-center-listings/internal/middleware"
)

// RegisterCenters registers the fitness center endpoints.  Listing and
// detail are public so guests can browse; every write requires a valid
// access token, and the handlers then check that the caller owns the
// record or is staff.
func RegisterCenters(e *echo.Echo, h *handler.CenterHandler, authn middleware.Authenticator) {
	requireAuth := middleware.RequireAuth(authn)

	e.GET("/centers", h.List)
	e.POST("/centers", h.Create, requireAuth)
	// the static category segment wins over :id in Echo's router
	e.GET("/centers/category/:category", h.ListByCategory)
	e.GET("/centers/:id", h.Get)
	e.PUT("/centers/:id", h.Update, requireAuth)
	e.PATCH("/centers/:id", h.Patch, requireAuth)
	e.DELETE("/centers/:id", h.Delete, requireAuth)
}
