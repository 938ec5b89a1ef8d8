package search

import "time"

// Segment is one rendered leg of a journey.
type Segment struct {
	FlightID           uint64 `json:"flight_id"`
	FlightNumber       string `json:"flight_number"`
	Airline            string `json:"airline"`
	DepartureIATA      string `json:"departure_airport"`
	ArrivalIATA        string `json:"arrival_airport"`
	DepartureTime      string `json:"departure_time"`
	ArrivalTime        string `json:"arrival_time"`
	Terminal           string `json:"terminal,omitempty"`
	Gate               string `json:"gate,omitempty"`
	DurationMinutes    int    `json:"duration_minutes"`
	FirstPriceCents    uint32 `json:"first_price_cents"`
	BusinessPriceCents uint32 `json:"business_price_cents"`
	EconomyPriceCents  uint32 `json:"economy_price_cents"`
	Aircraft           string `json:"aircraft"`
}

// Layover is the gap between two consecutive legs: the arrival airport of
// the previous leg and the wait until the next departure.
type Layover struct {
	AirportIATA     string `json:"airport"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Journey is the client-facing rendering of one itinerary: segments,
// layovers and journey-level aggregates.
type Journey struct {
	Segments           []Segment `json:"segments"`
	Layovers           []Layover `json:"layovers"`
	DurationMinutes    int       `json:"duration_minutes"`
	FirstPriceCents    uint32    `json:"first_price_cents"`
	BusinessPriceCents uint32    `json:"business_price_cents"`
	EconomyPriceCents  uint32    `json:"economy_price_cents"`
	IsDirect           bool      `json:"is_direct"`
	Stops              int       `json:"stops"`
}

// firstDeparture returns the departure time of the first segment, parsed
// back from its RFC3339 rendering.  Filtering needs it; the zero time is
// returned for an empty journey.
func (j Journey) firstDeparture() time.Time {
	if len(j.Segments) == 0 {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, j.Segments[0].DepartureTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Formatter turns raw flight paths into journeys, resolving airports,
// airlines and aircraft through the graph's lookup tables.
type Formatter struct {
	graph *Graph
}

// NewFormatter returns a formatter resolving against the given graph.
func NewFormatter(g *Graph) *Formatter { return &Formatter{graph: g} }

// Format renders one itinerary.  The second return is false when any
// referenced airport or aircraft cannot be resolved; callers drop such
// itineraries rather than surfacing them malformed.
func (f *Formatter) Format(it Itinerary) (Journey, bool) {
	if len(it.Legs) == 0 {
		return Journey{}, false
	}
	j := Journey{
		Segments: make([]Segment, 0, len(it.Legs)),
		Layovers: make([]Layover, 0, len(it.Legs)-1),
		IsDirect: len(it.Legs) == 1,
		Stops:    len(it.Legs) - 1,
	}
	for i, leg := range it.Legs {
		dep, ok := f.graph.Airports[leg.Route.DepartureAirportID]
		if !ok {
			return Journey{}, false
		}
		arr, ok := f.graph.Airports[leg.Route.ArrivalAirportID]
		if !ok {
			return Journey{}, false
		}
		craft, ok := f.graph.Aircraft[leg.Flight.AircraftConfigID]
		if !ok {
			return Journey{}, false
		}
		airline := f.graph.Airlines[leg.Route.AirlineID]

		j.Segments = append(j.Segments, Segment{
			FlightID:           leg.Flight.ID,
			FlightNumber:       leg.Route.FlightNumber,
			Airline:            airline.Name,
			DepartureIATA:      dep.IATA,
			ArrivalIATA:        arr.IATA,
			DepartureTime:      leg.Flight.DepartureTime.UTC().Format(time.RFC3339),
			ArrivalTime:        leg.Flight.ArrivalTime.UTC().Format(time.RFC3339),
			Terminal:           leg.Flight.Terminal,
			Gate:               leg.Flight.Gate,
			DurationMinutes:    int(leg.Flight.Duration() / time.Minute),
			FirstPriceCents:    leg.Flight.FirstPriceCents,
			BusinessPriceCents: leg.Flight.BusinessPriceCents,
			EconomyPriceCents:  leg.Flight.EconomyPriceCents,
			Aircraft:           craft.Name,
		})
		j.FirstPriceCents += leg.Flight.FirstPriceCents
		j.BusinessPriceCents += leg.Flight.BusinessPriceCents
		j.EconomyPriceCents += leg.Flight.EconomyPriceCents

		if i > 0 {
			prevArr := it.Legs[i-1].Flight.ArrivalTime
			j.Layovers = append(j.Layovers, Layover{
				AirportIATA:     dep.IATA,
				DurationMinutes: int(leg.Flight.DepartureTime.Sub(prevArr) / time.Minute),
			})
		}
	}
	first := it.Legs[0].Flight.DepartureTime
	last := it.Legs[len(it.Legs)-1].Flight.ArrivalTime
	j.DurationMinutes = int(last.Sub(first) / time.Minute)
	return j, true
}

// FormatAll renders every itinerary across all transfer buckets, silently
// dropping any that fail resolution.  Buckets are visited in ascending
// transfer order so the output ordering is deterministic.
func (f *Formatter) FormatAll(buckets map[int][]Itinerary, maxTransfers int) []Journey {
	journeys := make([]Journey, 0)
	for k := 0; k <= maxTransfers; k++ {
		for _, it := range buckets[k] {
			if j, ok := f.Format(it); ok {
				journeys = append(journeys, j)
			}
		}
	}
	return journeys
}
