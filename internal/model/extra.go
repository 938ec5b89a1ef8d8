package model

// Extra is a flight-scoped add-on offering (extra baggage, lounge access,
// priority boarding).  Reference data managed elsewhere; this service only
// reads extras when validating and pricing booking line items.
//
// Fields:
//  ID         - primary key identifier.
//  FlightID   - flight this extra is offered on.
//  Name       - display name.
//  PriceCents - unit price.
//  Limit      - maximum quantity per booking.
//  Stackable  - when false the effective limit is one regardless of Limit.
type Extra struct {
	ID         uint64 // extras.id
	FlightID   uint64 // extras.flight_id
	Name       string // extras.name
	PriceCents uint32 // extras.price_cents
	Limit      uint32 // extras.per_booking_limit
	Stackable  bool   // extras.stackable
}

// MaxQuantity returns the effective per-booking quantity cap.
func (e Extra) MaxQuantity() uint32 {
	if !e.Stackable {
		return 1
	}
	return e.Limit
}
