package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// BookingRepo provides data access to bookings, their legs and their extra
// line items. Legs carry the uniqueness constraint on (flight_id,
// seat_number) that makes a sold seat permanent; every write here runs
// inside a transaction owned by the booking handler.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// referenceAlphabet excludes 0/O and 1/I so references survive being read
// over the phone.
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateReference produces a random human-readable booking number. The
// reference column is unique; callers retry on collision.
func GenerateReference() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = referenceAlphabet[int(b[i])%len(referenceAlphabet)]
	}
	return string(b), nil
}

// CreateTx inserts a booking row inside the caller's transaction and
// populates the generated ID. A duplicate reference yields ErrConflict so
// the caller can regenerate and retry.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, reference, has_insurance, insurance_cents) VALUES (?, ?, ?, ?)`,
		b.UserID, b.Reference, b.HasInsurance, b.InsuranceCents)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// InsertLegTx attaches one confirmed seat to the booking. The unique key
// on (flight_id, seat_number) aborts the transaction with ErrSeatTaken
// when a concurrent booking won the seat; the caller must roll everything
// back so no partial booking is ever observable.
func (r *BookingRepo) InsertLegTx(ctx context.Context, tx *sql.Tx, leg *model.BookingFlight) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO booking_flights (booking_id, flight_id, seat_number, class_type, direction, price_cents)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		leg.BookingID, leg.FlightID, leg.SeatNumber, string(leg.ClassType), string(leg.Direction), leg.PriceCents)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSeatTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	leg.ID = uint64(id)
	return nil
}

// InsertExtraTx adds a priced extra line item to the booking.
func (r *BookingRepo) InsertExtraTx(ctx context.Context, tx *sql.Tx, ex *model.BookingExtra) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO booking_extras (booking_id, extra_id, flight_id, quantity, unit_price_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		ex.BookingID, ex.ExtraID, ex.FlightID, ex.Quantity, ex.UnitPriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ex.ID = uint64(id)
	return nil
}

// GetByID returns a booking regardless of owner; handlers perform the
// ownership or admin check. ErrNotFound when no row exists.
func (r *BookingRepo) GetByID(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT id, user_id, reference, has_insurance, insurance_cents, created_at FROM bookings WHERE id = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(&b.ID, &b.UserID, &b.Reference, &b.HasInsurance, &b.InsuranceCents, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListLegs returns the booking's legs ordered by direction then flight.
func (r *BookingRepo) ListLegs(ctx context.Context, bookingID uint64) ([]model.BookingFlight, error) {
	const q = `SELECT id, booking_id, flight_id, seat_number, class_type, direction, price_cents
	           FROM booking_flights WHERE booking_id = ? ORDER BY direction, flight_id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var legs []model.BookingFlight
	for rows.Next() {
		var leg model.BookingFlight
		var class, dir string
		if err := rows.Scan(&leg.ID, &leg.BookingID, &leg.FlightID, &leg.SeatNumber, &class, &dir, &leg.PriceCents); err != nil {
			return nil, err
		}
		leg.ClassType = model.ClassType(class)
		leg.Direction = model.LegDirection(dir)
		legs = append(legs, leg)
	}
	return legs, rows.Err()
}

// ListExtras returns the booking's extra line items.
func (r *BookingRepo) ListExtras(ctx context.Context, bookingID uint64) ([]model.BookingExtra, error) {
	const q = `SELECT id, booking_id, extra_id, flight_id, quantity, unit_price_cents
	           FROM booking_extras WHERE booking_id = ?`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var extras []model.BookingExtra
	for rows.Next() {
		var ex model.BookingExtra
		if err := rows.Scan(&ex.ID, &ex.BookingID, &ex.ExtraID, &ex.FlightID, &ex.Quantity, &ex.UnitPriceCents); err != nil {
			return nil, err
		}
		extras = append(extras, ex)
	}
	return extras, rows.Err()
}

// GetInfoForDeleteTx loads a booking's owner and the flights its legs
// touch, inside the delete transaction, so the handler can authorize the
// delete and recompute fully_booked afterwards. ErrNotFound when the
// booking does not exist.
func (r *BookingRepo) GetInfoForDeleteTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (uint64, []uint64, error) {
	var ownerID uint64
	err := tx.QueryRowContext(ctx, `SELECT user_id FROM bookings WHERE id = ?`, bookingID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, ErrNotFound
	}
	if err != nil {
		return 0, nil, err
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT flight_id FROM booking_flights WHERE booking_id = ?`, bookingID)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()
	var flightIDs []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return 0, nil, err
		}
		flightIDs = append(flightIDs, id)
	}
	return ownerID, flightIDs, rows.Err()
}

// DeleteTx removes the booking; legs and extras cascade via foreign keys.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, bookingID)
	return err
}

// BookedFlightIDs returns the set of flights on which the user already
// holds a confirmed leg, in either direction. The search path uses it to
// exclude journeys the user has already bought.
func (r *BookingRepo) BookedFlightIDs(ctx context.Context, userID uint64) (map[uint64]struct{}, error) {
	const q = `SELECT DISTINCT bf.flight_id
	           FROM booking_flights bf
	           JOIN bookings b ON b.id = bf.booking_id
	           WHERE b.user_id = ?`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make(map[uint64]struct{})
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}
