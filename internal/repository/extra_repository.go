package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// ExtraRepo reads flight-scoped extra offerings. Extras are reference data
// managed by an administrative surface elsewhere; booking creation only
// needs to look them up for validation and pricing.
type ExtraRepo struct {
	db *sql.DB
}

// NewExtraRepo returns an ExtraRepo bound to the provided database.
func NewExtraRepo(db *sql.DB) *ExtraRepo { return &ExtraRepo{db: db} }

// GetTx loads one extra inside an existing transaction. ErrNotFound when
// the extra does not exist.
func (r *ExtraRepo) GetTx(ctx context.Context, tx *sql.Tx, extraID uint64) (*model.Extra, error) {
	const q = `SELECT id, flight_id, name, price_cents, per_booking_limit, stackable
	           FROM extras WHERE id = ?`
	var e model.Extra
	err := tx.QueryRowContext(ctx, q, extraID).Scan(&e.ID, &e.FlightID, &e.Name, &e.PriceCents, &e.Limit, &e.Stackable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ValidateExtra checks an extra request against the booking being built:
// the extra must be offered on one of the booking's flights
// (ErrExtraNotOffered) and the quantity must be positive and within the
// per-booking cap, which is one for non-stackable extras
// (ErrExtraQuantity).
func ValidateExtra(extra *model.Extra, bookedFlights map[uint64]struct{}, quantity uint32) error {
	if _, ok := bookedFlights[extra.FlightID]; !ok {
		return ErrExtraNotOffered
	}
	if quantity == 0 || quantity > extra.MaxQuantity() {
		return ErrExtraQuantity
	}
	return nil
}
