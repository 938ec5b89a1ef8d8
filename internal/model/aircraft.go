package model

// AircraftConfiguration describes the seat layout of a physical aircraft:
// ordered seat inventories per cabin class, derived from a rows-by-columns
// grid minus blocked positions.  The configuration is tied one-to-one with
// an aircraft layout and referenced by flights.
//
// Seat numbers are strings like "12A".  The three slices are disjoint and
// together enumerate every sellable seat on the aircraft.
type AircraftConfiguration struct {
	ID            uint64   // aircraft_configurations.id
	Name          string   // aircraft_configurations.name (e.g. "Boeing 787-9")
	FirstSeats    []string // ordered first class seat numbers
	BusinessSeats []string // ordered business class seat numbers
	EconomySeats  []string // ordered economy class seat numbers
}

// TotalSeats returns the number of sellable seats across all classes.  The
// fully_booked flag on a flight compares confirmed legs against this count.
func (a AircraftConfiguration) TotalSeats() int {
	return len(a.FirstSeats) + len(a.BusinessSeats) + len(a.EconomySeats)
}

// ClassOf resolves the cabin class of a seat number.  The second return is
// false when the seat does not exist on this configuration.
func (a AircraftConfiguration) ClassOf(seatNumber string) (ClassType, bool) {
	for _, s := range a.FirstSeats {
		if s == seatNumber {
			return ClassFirst, true
		}
	}
	for _, s := range a.BusinessSeats {
		if s == seatNumber {
			return ClassBusiness, true
		}
	}
	for _, s := range a.EconomySeats {
		if s == seatNumber {
			return ClassEconomy, true
		}
	}
	return "", false
}
