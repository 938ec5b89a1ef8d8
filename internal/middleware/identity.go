package middleware

// identity.go defines helper functions shared across middleware files.
// currentUserID pulls the authenticated user's identifier out of the Echo
// context, where JWTAuth stored the token's subject claim. When no user is
// authenticated the caller gets "anon", which keeps per-user rate-limit
// buckets from collapsing onto one key.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user id, or
// "anon" when the request carries no identity. JWT numeric claims
// unmarshal as float64, so both forms are handled.
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
	}
	return "anon"
}
