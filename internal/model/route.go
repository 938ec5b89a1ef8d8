package model

import (
	"errors"
	"time"
)

// Route is a template for flights: a flight number operated by an airline
// between two airports, valid for a bounded period.  Individual flights
// must fall inside their route's validity window.
//
// Fields:
//  ID                 - primary key identifier.
//  AirlineID          - operating airline.
//  DepartureAirportID - origin airport.
//  ArrivalAirportID   - destination airport.
//  FlightNumber       - unique flight number (e.g. "BA117").
//  PeriodStart        - first day the route operates.
//  PeriodEnd          - last day the route operates.
type Route struct {
	ID                 uint64    // routes.id
	AirlineID          uint64    // routes.airline_id
	DepartureAirportID uint64    // routes.departure_airport_id
	ArrivalAirportID   uint64    // routes.arrival_airport_id
	FlightNumber       string    // routes.flight_number
	PeriodStart        time.Time // routes.period_start
	PeriodEnd          time.Time // routes.period_end
}

var (
	// ErrRouteSameAirport is returned when departure and arrival airports match.
	ErrRouteSameAirport = errors.New("route departure and arrival airports must differ")
	// ErrRoutePeriodOrder is returned when the validity window is inverted or empty.
	ErrRoutePeriodOrder = errors.New("route period_start must precede period_end")
	// ErrRoutePeriodPast is returned when a new route starts in the past.
	ErrRoutePeriodPast = errors.New("route period_start must be in the future")
)

// Validate checks the route invariants at creation time: distinct endpoints,
// an ordered validity window, and a window that starts after now.
func (r Route) Validate(now time.Time) error {
	if r.DepartureAirportID == r.ArrivalAirportID {
		return ErrRouteSameAirport
	}
	if !r.PeriodStart.Before(r.PeriodEnd) {
		return ErrRoutePeriodOrder
	}
	if !r.PeriodStart.After(now) {
		return ErrRoutePeriodPast
	}
	return nil
}

// Contains reports whether the given instant falls inside the route's
// validity window.  Used to validate flight schedules against their route.
func (r Route) Contains(t time.Time) bool {
	return !t.Before(r.PeriodStart) && !t.After(r.PeriodEnd)
}
