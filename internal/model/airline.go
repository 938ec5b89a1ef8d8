package model

// Airline is reference data for a carrier.  Airline management is an
// administrative concern outside this service; rows are read-only here and
// used for rendering journeys and for the airline search filter.
type Airline struct {
	ID   uint64 // airlines.id
	Name string // airlines.name
	Code string // airlines.code (two-letter IATA carrier code)
}
