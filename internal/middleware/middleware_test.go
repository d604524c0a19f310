package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-center-listings/internal/auth"
	"github.com/iliyamo/fitness-center-listings/internal/config"
)

type fakeAuthenticator map[string]*auth.Caller

func (f fakeAuthenticator) Authenticate(_ context.Context, raw string) (*auth.Caller, error) {
	if raw == "explode" {
		return nil, errors.New("db down")
	}
	if c, ok := f[raw]; ok {
		return c, nil
	}
	return nil, auth.ErrInvalidToken
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()
	authn := fakeAuthenticator{"good": {ID: 7, Username: "owner1"}}
	e.POST("/centers", func(c echo.Context) error {
		caller := CallerFrom(c)
		require.NotNil(t, caller)
		return c.String(http.StatusCreated, caller.Username)
	}, RequireAuth(authn))

	testCases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing", header: "", status: http.StatusUnauthorized, body: `{"detail":"authentication credentials were not provided."}`},
		{name: "wrong scheme", header: "Token good", status: http.StatusUnauthorized, body: `{"detail":"authentication credentials were not provided."}`},
		{name: "empty bearer", header: "Bearer ", status: http.StatusUnauthorized, body: `{"detail":"authentication credentials were not provided."}`},
		{name: "invalid", header: "Bearer nope", status: http.StatusUnauthorized, body: `{"detail":"given token not valid"}`},
		{name: "backend failure", header: "Bearer explode", status: http.StatusInternalServerError, body: `{"detail":"internal server error"}`},
		{name: "valid", header: "Bearer good", status: http.StatusCreated, body: "owner1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/centers", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusCreated {
				assert.Equal(t, tc.body, rec.Body.String())
			} else {
				assert.JSONEq(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestCallerFromAnonymous(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, CallerFrom(c))
	assert.Equal(t, "anon", userID(c))

	setCaller(c, &auth.Caller{ID: 12})
	assert.Equal(t, "12", userID(c))
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID(zap.NewNop()), AccessLog())
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestRequestID_ReplacesUnsafeHeader(t *testing.T) {
	e := echo.New()
	e.Use(RequestID(zap.NewNop()))
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	tests := []struct {
		name string
		id   string
		keep bool
	}{
		{"dotted", "svc.req_01-a", true},
		{"max length", strings.Repeat("a", 128), true},
		{"too long", strings.Repeat("a", 129), false},
		{"space", "abc 123", false},
		{"backslash", `abc\nlevel=error`, false},
		{"non ascii", "zé", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set(HeaderRequestID, tt.id)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if tt.keep {
				assert.Equal(t, tt.id, got)
				return
			}
			assert.NotEqual(t, tt.id, got)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		})
	}
}

func TestAccessLogWritesErrorResponse(t *testing.T) {
	e := echo.New()
	e.Use(RequestID(zap.NewNop()), AccessLog())
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "short and stout") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRateLimit_LocalBucket(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "test",
	}
	e := echo.New()
	e.Use(RateLimit(cfg, nil))
	e.GET("/centers", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/centers", nil)
		req.RemoteAddr = ip + ":4321"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	rec := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, rec.Body.String(), `"too_many_requests"`)

	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code, "buckets are per client")
}

func TestRateLimit_Disabled(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(config.RateLimitConfig{Enabled: false}, nil))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/centers/5", nil)
	req.RemoteAddr = "192.0.2.1:1000"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/centers/:id")

	assert.Equal(t, "rl:ip:192.0.2.1", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:ip:192.0.2.1:route:PATCH /centers/:id", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}, c))
}
