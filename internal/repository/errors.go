// Package repository defines the data access layer and the error types
// reused across repositories. These sentinel values allow higher layers
// such as handlers to distinguish between failure scenarios without
// inspecting database errors directly. Inventory-affecting methods run
// inside transactions supplied by the caller; any error returned from a
// Tx-suffixed method means the whole transaction must be rolled back.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation loses a race on shared seat
// inventory: a second active hold on the same (flight, seat) pair, a
// serialization failure, or a duplicate booking reference. The caller may
// retry. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrSeatTaken is returned when a seat is already attached to a confirmed
// booking leg. Unlike ErrConflict it is not retryable: the seat is gone.
var ErrSeatTaken = errors.New("seat already booked")

// ErrSessionExpired is returned when a seat session has passed its end
// time. Expired sessions are treated as absent by every check even before
// the reaper deletes the rows.
var ErrSessionExpired = errors.New("seat session expired")

// ErrNotFound is returned when a referenced flight, session, booking or
// extra does not exist. Handlers translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrExtraNotOffered is returned when a requested extra is not offered on
// any of the booking's flights.
var ErrExtraNotOffered = errors.New("extra not offered on this booking's flights")

// ErrExtraQuantity is returned when a non-stackable extra is requested
// with quantity above one, or any extra above its per-booking limit.
var ErrExtraQuantity = errors.New("extra quantity exceeds limit")

// isDuplicateKey reports whether the error is a MySQL duplicate-entry
// violation (error 1062). The uniqueness constraints on seat_sessions and
// booking_flights are the primary inventory guard; a violation means a
// concurrent transaction won the seat.
func isDuplicateKey(err error) bool {
	var my *mysql.MySQLError
	return errors.As(err, &my) && my.Number == 1062
}

// IsSerializationFailure reports whether the error is a deadlock (1213) or
// lock wait timeout (1205) raised by a serializable transaction losing a
// race. Handlers surface these as retryable Conflict; they must never be
// silently ignored.
func IsSerializationFailure(err error) bool {
	var my *mysql.MySQLError
	if !errors.As(err, &my) {
		return false
	}
	return my.Number == 1213 || my.Number == 1205
}
