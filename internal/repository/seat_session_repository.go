package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// SeatSessionRepo provides data access to seat_sessions: the short-lived
// exclusive holds that gate booking creation. The table carries a unique
// key on (flight_id, seat_number); together with the expired-row cleanup
// performed inside the creation transaction this enforces that at most one
// active session exists per seat at any instant, across processes sharing
// the database. All timestamps are UTC.
type SeatSessionRepo struct {
	db *sql.DB
}

// NewSeatSessionRepo returns a SeatSessionRepo bound to the provided database.
func NewSeatSessionRepo(db *sql.DB) *SeatSessionRepo { return &SeatSessionRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *SeatSessionRepo) DB() *sql.DB { return r.db }

// SeatConfirmedTx reports whether the seat is already attached to a
// confirmed booking leg on the flight. A confirmed seat can never be held
// again; callers surface ErrSeatTaken.
func (r *SeatSessionRepo) SeatConfirmedTx(ctx context.Context, tx *sql.Tx, flightID uint64, seatNumber string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM booking_flights WHERE flight_id = ? AND seat_number = ?`,
		flightID, seatNumber).Scan(&n)
	return n > 0, err
}

// ReapSeatTx deletes an expired session on the (flight, seat) pair, if one
// exists, so the unique key can accept a fresh hold. An expired session
// must never block a new hold even before the background reaper runs.
func (r *SeatSessionRepo) ReapSeatTx(ctx context.Context, tx *sql.Tx, flightID uint64, seatNumber string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM seat_sessions WHERE flight_id = ? AND seat_number = ? AND ends_at <= UTC_TIMESTAMP()`,
		flightID, seatNumber)
	return err
}

// CreateTx inserts a new hold inside the caller's serializable transaction
// and populates the generated ID. The unique key on (flight_id,
// seat_number) converts a lost race into ErrConflict; two concurrent
// creations can never both commit.
func (r *SeatSessionRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID, flightID uint64, seatNumber string, class model.ClassType, ttl time.Duration) (*model.SeatSession, error) {
	now := time.Now().UTC()
	s := &model.SeatSession{
		UserID:     userID,
		FlightID:   flightID,
		SeatNumber: seatNumber,
		ClassType:  class,
		Token:      uuid.NewString(),
		StartsAt:   now,
		EndsAt:     now.Add(ttl),
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO seat_sessions (user_id, flight_id, seat_number, class_type, token, starts_at, ends_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.FlightID, s.SeatNumber, string(s.ClassType), s.Token,
		s.StartsAt.Format("2006-01-02 15:04:05"), s.EndsAt.Format("2006-01-02 15:04:05"))
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	s.ID = uint64(id)
	return s, nil
}

// GetByID returns a session regardless of owner. Handlers perform the
// ownership check so they can distinguish 403 from 404.
func (r *SeatSessionRepo) GetByID(ctx context.Context, sessionID uint64) (*model.SeatSession, error) {
	const q = `SELECT id, user_id, flight_id, seat_number, class_type, token, starts_at, ends_at
	           FROM seat_sessions WHERE id = ?`
	var s model.SeatSession
	var class string
	err := r.db.QueryRowContext(ctx, q, sessionID).Scan(&s.ID, &s.UserID, &s.FlightID,
		&s.SeatNumber, &class, &s.Token, &s.StartsAt, &s.EndsAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.ClassType = model.ClassType(class)
	return &s, nil
}

// GetForUpdateTx loads a session with a row lock inside a transaction so
// booking creation can re-validate ownership and liveness without the row
// changing underneath it.
func (r *SeatSessionRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, sessionID uint64) (*model.SeatSession, error) {
	const q = `SELECT id, user_id, flight_id, seat_number, class_type, token, starts_at, ends_at
	           FROM seat_sessions WHERE id = ? FOR UPDATE`
	var s model.SeatSession
	var class string
	err := tx.QueryRowContext(ctx, q, sessionID).Scan(&s.ID, &s.UserID, &s.FlightID,
		&s.SeatNumber, &class, &s.Token, &s.StartsAt, &s.EndsAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.ClassType = model.ClassType(class)
	return &s, nil
}

// GetOwnedActiveTx loads and locks a session, then enforces the two
// conditions booking creation depends on: the caller owns the hold
// (ErrForbidden) and it has not expired (ErrSessionExpired).
func (r *SeatSessionRepo) GetOwnedActiveTx(ctx context.Context, tx *sql.Tx, sessionID, userID uint64, now time.Time) (*model.SeatSession, error) {
	s, err := r.GetForUpdateTx(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, ErrForbidden
	}
	if !s.Active(now) {
		return nil, ErrSessionExpired
	}
	return s, nil
}

// DeleteOwned releases a session before expiry. Only the owner may
// release; a mismatched owner yields ErrForbidden, a missing row
// ErrNotFound.
func (r *SeatSessionRepo) DeleteOwned(ctx context.Context, sessionID, userID uint64) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM seat_sessions WHERE id = ?`, sessionID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM seat_sessions WHERE id = ?`, sessionID)
	return err
}

// DeleteTx removes a session inside the caller's transaction. Booking
// creation uses this to consume the session it validated.
func (r *SeatSessionRepo) DeleteTx(ctx context.Context, tx *sql.Tx, sessionID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM seat_sessions WHERE id = ?`, sessionID)
	return err
}

// DeleteExpired removes every session past its end time and returns the
// number of rows reclaimed. It is idempotent and safe to run concurrently
// with booking creation: a session consumed or released between sweep and
// delete simply no longer matches the predicate.
func (r *SeatSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seat_sessions WHERE ends_at <= UTC_TIMESTAMP()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
