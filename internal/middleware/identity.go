package middleware

// identity.go holds the context accessors for the authenticated caller.
// RequireAuth stores the caller under callerKey; handlers and the access log
// read it back through CallerFrom.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-center-listings/internal/auth"
)

const callerKey = "caller"

func setCaller(c echo.Context, caller *auth.Caller) {
	c.Set(callerKey, caller)
}

// CallerFrom returns the authenticated caller or nil for anonymous requests.
func CallerFrom(c echo.Context) *auth.Caller {
	caller, _ := c.Get(callerKey).(*auth.Caller)
	return caller
}

// userID is the caller's ID for log fields, or "anon".
func userID(c echo.Context) string {
	if caller := CallerFrom(c); caller != nil {
		return strconv.FormatUint(caller.ID, 10)
	}
	return "anon"
}
