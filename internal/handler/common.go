package handler // handler defines http handlers

import (
	"errors"   // errors provides sentinel values used in getUserID
	"net/http" // net/http provides status codes for txError
	"strconv"  // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/airline-reservation/internal/repository"
)

// RoleAdmin may delete bookings it does not own; RoleCustomer covers every
// self-service operation. Role values come from the JWT role claim.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
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

// isAdmin reports whether the authenticated caller carries the admin role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == RoleAdmin
}

// parseIDParam parses a positive numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// txError renders the response for a failed statement inside a serializable
// transaction. InnoDB reports deadlocks (1213) and lock wait timeouts (1205)
// on the losing statement, not at commit, so every statement error has to go
// through this mapping before falling back to a 500.
func txError(c echo.Context, err error, msg string) error {
	if repository.IsSerializationFailure(err) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "lost a race with a concurrent request", "retryable": true,
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
