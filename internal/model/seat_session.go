package model

import "time"

// SeatSession is a short-lived exclusive hold on one seat of one flight for
// one user: the concurrency gate between looking and buying.  At most one
// active (non-expired) session may exist for a (flight, seat) pair at any
// instant.  A session ends in exactly one of three ways: consumed by a
// booking, released by its owner, or expired and reclaimed by the reaper.
// Its lifetime is fixed at creation; holding a session does not guarantee
// the booking will succeed.
//
// Fields:
//  ID         - primary key identifier.
//  UserID     - user who holds the seat.
//  FlightID   - flight the seat belongs to.
//  SeatNumber - seat being held (e.g. "12A").
//  ClassType  - cabin class of the held seat, resolved at creation.
//  Token      - opaque token returned to the client for correlation.
//  StartsAt   - when the hold was created.
//  EndsAt     - when the hold expires.
type SeatSession struct {
	ID         uint64    // seat_sessions.id
	UserID     uint64    // seat_sessions.user_id
	FlightID   uint64    // seat_sessions.flight_id
	SeatNumber string    // seat_sessions.seat_number
	ClassType  ClassType // seat_sessions.class_type
	Token      string    // seat_sessions.token
	StartsAt   time.Time // seat_sessions.starts_at
	EndsAt     time.Time // seat_sessions.ends_at
}

// Active reports whether the session still blocks the seat at the given
// instant.  An expired session is treated as absent everywhere, even before
// the reaper has physically deleted the row.
func (s SeatSession) Active(now time.Time) bool {
	return s.EndsAt.After(now)
}
