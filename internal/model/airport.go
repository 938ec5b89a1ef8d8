package model

// Airport is immutable reference data describing a single airport.  Airports
// are loaded once per search window and indexed by ID; search results refer
// to them by IATA code.
//
// Fields:
//  ID        - primary key identifier.
//  Name      - full airport name.
//  IATA      - three-letter IATA code (e.g. "JFK").
//  ICAO      - four-letter ICAO code (e.g. "KJFK").
//  Latitude  - decimal latitude.
//  Longitude - decimal longitude.
//  CityID    - owning city.
type Airport struct {
	ID        uint64  // airports.id
	Name      string  // airports.name
	IATA      string  // airports.iata_code
	ICAO      string  // airports.icao_code
	Latitude  float64 // airports.latitude
	Longitude float64 // airports.longitude
	CityID    uint64  // airports.city_id
}

// City groups one or more airports.  Searches may name a city instead of a
// single airport as origin or destination; the loader expands the city to
// its member airports.
type City struct {
	ID      uint64 // cities.id
	Name    string // cities.name
	Country string // cities.country
}
