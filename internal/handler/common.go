package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user id placed in the context by
// the JWT middleware and converts it to uint64.  JWT numeric claims
// arrive as float64, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseDate parses a YYYY-MM-DD request field into a UTC midnight
// instant, the precision all stay dates are kept at.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

const dateLayout = "2006-01-02"
