package router // package router defines how HTTP routes are registered for the API

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-center-listings/internal/auth"
	"github.com/iliyamo/fitness-center-listings/internal/config"
	"github.com/iliyamo/fitness-center-listings/internal/handler"
	"github.com/iliyamo/fitness-center-listings/internal/logger"
	"github.com/iliyamo/fitness-center-listings/internal/metrics"
	"github.com/iliyamo/fitness-center-listings/internal/middleware"
	"github.com/iliyamo/fitness-center-listings/internal/queue"
	"github.com/iliyamo/fitness-center-listings/internal/repository"
	"github.com/iliyamo/fitness-center-listings/internal/validation"
)

// Deps is everything the HTTP layer needs.  Log, Metrics, Auth and Centers
// are required; the rest have working zero values.
type Deps struct {
	Log       *zap.Logger
	Metrics   *metrics.Metrics
	Auth      *auth.Service
	Centers   repository.CenterStore
	Events    queue.Publisher
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	DB        handler.Pinger
	Now       func() time.Time // clock for "today" and event timestamps
}

// New builds the Echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	if d.Now == nil {
		d.Now = time.Now
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	// Order matters: the request ID must exist before anything logs, the
	// access log sees the final status, and Recover turns panics into 500s
	// that the metrics still count.
	e.Use(
		middleware.RequestID(d.Log),
		middleware.AccessLog(),
		echomw.Recover(),
		d.Metrics.Middleware(),
		middleware.RateLimit(d.RateLimit, d.Redis),
	)

	validator := &validation.Validator{Names: d.Centers, Now: d.Now}
	centers := handler.NewCenterHandler(d.Centers, validator, d.Events, d.Metrics)
	centers.Now = d.Now

	RegisterRoutes(e, d.DB, d.Metrics)
	RegisterAuth(e, handler.NewAuthHandler(d.Auth, d.Metrics))
	RegisterCenters(e, centers, d.Auth)
	return e
}

// RegisterRoutes registers the operational endpoints.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
}

// RegisterAuth registers the account endpoints.  None of them require an
// existing session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/register", a.Register)
	e.POST("/login", a.Login)
	e.POST("/token/refresh", a.Refresh)
	e.POST("/logout", a.Logout)
}

// errorHandler renders errors that escaped the handlers, such as unknown
// routes, wrong methods and recovered panics, in the same {"detail": ...}
// shape the handlers use.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch code {
		case http.StatusNotFound:
			msg = "not found."
		case http.StatusMethodNotAllowed:
			msg = "method \"" + c.Request().Method + "\" not allowed."
		default:
			msg = strings.ToLower(http.StatusText(code))
		}
	}
	if code >= http.StatusInternalServerError {
		logger.FromEcho(c).Error("unhandled error", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"detail": msg})
}
