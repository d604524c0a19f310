package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-center-listings/internal/repository"
	"github.com/iliyamo/fitness-center-listings/internal/validation"
)

const (
	msgInvalidInteger = "a valid integer is required."
	msgInvalidBoolean = "must be a valid boolean."
)

// parseCenterQuery turns the list endpoint's query string into a
// CenterQuery.  A parameter with an empty value is treated as absent.  All
// malformed parameters are reported together.
func parseCenterQuery(c echo.Context) (repository.CenterQuery, error) {
	var q repository.CenterQuery
	errs := validation.Errors{}

	parseFee := func(name string) *int64 {
		raw := strings.TrimSpace(c.QueryParam(name))
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add(name, msgInvalidInteger)
			return nil
		}
		return &n
	}
	q.MinFee = parseFee("min_fee")
	q.MaxFee = parseFee("max_fee")

	q.Facilities = c.QueryParam("facilities")

	if raw := c.QueryParam("is_verified"); raw != "" {
		if v, ok := parseBoolParam(raw); ok {
			q.IsVerified = &v
		} else {
			errs.Add("is_verified", msgInvalidBoolean)
		}
	}

	if raw := c.QueryParam("ordering"); raw != "" {
		ord, err := repository.ParseOrdering(raw)
		if err != nil {
			field := strings.TrimPrefix(strings.TrimSpace(raw), "-")
			errs.Add("ordering", fmt.Sprintf("invalid ordering field %q.", field))
		} else {
			q.Ordering = ord
		}
	}

	if len(errs) > 0 {
		return repository.CenterQuery{}, errs
	}
	return q, nil
}

// parseBoolParam reads a boolean query parameter.  Besides true/false it takes
// 1/0, yes/no and on/off in any case.
func parseBoolParam(raw string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
