package middleware

// identity.go holds helpers shared across middleware files.  It
// normalizes the "user_id" context value set by JWTAuth into a string
// suitable for cache and rate-limit key construction; unauthenticated
// requests are keyed as "anon".

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user's id,
// or "anon" when the request carries no identity.  JWT claims decode
// numbers as float64, so several representations are accepted.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return "anon"
}
