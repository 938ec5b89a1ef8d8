// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is successfully confirmed.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	EventID          string   `json:"event_id"`
	BookingID        uint64   `json:"booking_id"`
	Reference        string   `json:"booking_reference"`
	UserID           uint64   `json:"user_id"`
	FlightIDs        []uint64 `json:"flight_ids"`
	SeatNumbers      []string `json:"seats"`
	HasInsurance     bool     `json:"has_insurance"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}
