package model

import "time"

// LegDirection distinguishes the outbound and return halves of a booking.
type LegDirection string

const (
	DirectionDeparture LegDirection = "DEPARTURE"
	DirectionReturn    LegDirection = "RETURN"
)

// Booking is a confirmed, durable purchase: one or more flight legs in each
// direction plus optional extra line items.  The booking exclusively owns
// its legs and extras (cascade delete).  Every leg references a seat that
// was exclusively held by the creating user's session at creation time; the
// (flight_id, seat_number) uniqueness constraint on booking_flights is what
// permanently attaches the seat.
//
// Fields:
//  ID             - primary key identifier.
//  UserID         - owner of the booking.
//  Reference      - unique human-readable booking number (e.g. "K7Q2XM").
//  HasInsurance   - whether booking insurance was purchased.
//  InsuranceCents - insurance premium frozen at booking time, summed over
//                   the legs' per-flight insurance prices. Zero when
//                   HasInsurance is false.
//  CreatedAt      - creation timestamp.
type Booking struct {
	ID             uint64    // bookings.id
	UserID         uint64    // bookings.user_id
	Reference      string    // bookings.reference
	HasInsurance   bool      // bookings.has_insurance
	InsuranceCents uint32    // bookings.insurance_cents
	CreatedAt      time.Time // bookings.created_at
}

// InsurancePremiumCents prices booking insurance over the covered flights:
// the sum of each flight's insurance price, or zero when insurance was not
// taken. The result is frozen onto the booking row at creation.
func InsurancePremiumCents(hasInsurance bool, flights ...*Flight) uint32 {
	if !hasInsurance {
		return 0
	}
	var total uint32
	for _, f := range flights {
		total += f.InsurancePriceCents
	}
	return total
}

// BookingFlight is one confirmed leg of a booking: a seat on a flight in a
// given direction, priced at the flight's class price at booking time.
type BookingFlight struct {
	ID         uint64       // booking_flights.id
	BookingID  uint64       // booking_flights.booking_id
	FlightID   uint64       // booking_flights.flight_id
	SeatNumber string       // booking_flights.seat_number
	ClassType  ClassType    // booking_flights.class_type
	Direction  LegDirection // booking_flights.direction
	PriceCents uint32       // booking_flights.price_cents
}

// BookingExtra is a purchased extra-service line item.  Its flight must be
// one of the booking's legs; non-stackable extras cap quantity at one.
type BookingExtra struct {
	ID             uint64 // booking_extras.id
	BookingID      uint64 // booking_extras.booking_id
	ExtraID        uint64 // booking_extras.extra_id
	FlightID       uint64 // booking_extras.flight_id
	Quantity       uint32 // booking_extras.quantity
	UnitPriceCents uint32 // booking_extras.unit_price_cents
}
