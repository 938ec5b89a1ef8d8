package model

import (
	"errors"
	"time"
)

// ClassType identifies a cabin class on a flight.  The three values mirror
// the seat inventories carried by an aircraft configuration.
type ClassType string

const (
	ClassFirst    ClassType = "FIRST"
	ClassBusiness ClassType = "BUSINESS"
	ClassEconomy  ClassType = "ECONOMY"
)

// Valid reports whether the class type is one of the known cabin classes.
func (c ClassType) Valid() bool {
	switch c {
	case ClassFirst, ClassBusiness, ClassEconomy:
		return true
	}
	return false
}

// Flight is a single scheduled departure of a route, operated with a
// specific aircraft configuration.  Prices are stored per cabin class in
// cents.  FullyBooked is a derived flag recomputed inside the same
// transaction whenever a booking leg is inserted or deleted; the search
// path tolerates it being slightly stale.
//
// Fields:
//  ID                  - primary key identifier.
//  RouteID             - route template this flight instantiates.
//  AircraftConfigID    - seat layout operating this flight.
//  DepartureTime       - scheduled departure (UTC).
//  ArrivalTime         - scheduled arrival (UTC), strictly after departure.
//  Terminal            - departure terminal, empty until assigned.
//  Gate                - departure gate, empty until assigned.
//  FirstPriceCents     - first class price.
//  BusinessPriceCents  - business class price.
//  EconomyPriceCents   - economy class price.
//  InsurancePriceCents - optional booking insurance price.
//  FullyBooked         - cached flag: confirmed legs == total seats.
type Flight struct {
	ID                  uint64    // flights.id
	RouteID             uint64    // flights.route_id
	AircraftConfigID    uint64    // flights.aircraft_config_id
	DepartureTime       time.Time // flights.departure_time
	ArrivalTime         time.Time // flights.arrival_time
	Terminal            string    // flights.terminal
	Gate                string    // flights.gate
	FirstPriceCents     uint32    // flights.first_price_cents
	BusinessPriceCents  uint32    // flights.business_price_cents
	EconomyPriceCents   uint32    // flights.economy_price_cents
	InsurancePriceCents uint32    // flights.insurance_price_cents
	FullyBooked         bool      // flights.fully_booked
}

// ErrFlightTimeOrder is returned when arrival does not come after departure.
var ErrFlightTimeOrder = errors.New("flight arrival must be after departure")

// ErrFlightOutsideRoute is returned when a flight is scheduled outside its
// route's validity window.
var ErrFlightOutsideRoute = errors.New("flight must lie within its route period")

// Validate checks the flight invariants against its route template.
func (f Flight) Validate(route Route) error {
	if !f.ArrivalTime.After(f.DepartureTime) {
		return ErrFlightTimeOrder
	}
	if !route.Contains(f.DepartureTime) || !route.Contains(f.ArrivalTime) {
		return ErrFlightOutsideRoute
	}
	return nil
}

// PriceCents returns the price of the given cabin class on this flight.
func (f Flight) PriceCents(class ClassType) uint32 {
	switch class {
	case ClassFirst:
		return f.FirstPriceCents
	case ClassBusiness:
		return f.BusinessPriceCents
	default:
		return f.EconomyPriceCents
	}
}

// Duration returns the scheduled block time of the flight.
func (f Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

// Check-in opens two hours before departure and closes one hour before;
// boarding opens one hour before departure and closes at departure.  All
// four are derived, never stored.

// CheckInOpens returns the start of the check-in window.
func (f Flight) CheckInOpens() time.Time { return f.DepartureTime.Add(-2 * time.Hour) }

// CheckInCloses returns the end of the check-in window.
func (f Flight) CheckInCloses() time.Time { return f.DepartureTime.Add(-1 * time.Hour) }

// BoardingOpens returns the start of the boarding window.
func (f Flight) BoardingOpens() time.Time { return f.DepartureTime.Add(-1 * time.Hour) }

// BoardingCloses returns the end of the boarding window.
func (f Flight) BoardingCloses() time.Time { return f.DepartureTime }
